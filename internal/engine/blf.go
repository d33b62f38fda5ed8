package engine

import (
	"context"
	"math"

	"github.com/piwi3910/NestCut/internal/clip"
	"github.com/piwi3910/NestCut/internal/collide"
	"github.com/piwi3910/NestCut/internal/geom"
	"github.com/piwi3910/NestCut/internal/model"
	"github.com/piwi3910/NestCut/internal/nfp"
)

// targetCandidates bounds the BLF grid scan: the adaptive step is chosen
// so the first valid region's bounding box holds at most this many
// lattice candidates. Further regions are scanned with the same step.
const targetCandidates = 100000

// Placer is the deterministic NFP-driven bottom-left-fill packer for a
// single design on a rectangular sheet.
//
// Placement reasoning runs in the first-vertex-at-origin frame: the
// rotated part is normalised so its anchor is the origin and positions
// name the anchor's world coordinate. Rendering uses the
// rotate-about-bbox-centre frame. Before any candidate is committed the
// rendered polygon is reconstructed and re-checked for containment and
// collision, which catches the edge cases where the two frames disagree.
type Placer struct {
	Settings model.NestSettings
	MainMode model.MainPolygonMode

	// Progress, when set, is called between outer placement iterations.
	Progress func(placed, cap int)

	gen *nfp.Generator
}

// NewPlacer returns a placer with a fresh NFP cache.
func NewPlacer(settings model.NestSettings) *Placer {
	return &Placer{
		Settings: settings,
		MainMode: model.MainPolygonLargestArea,
		gen:      nfp.NewGenerator(),
	}
}

// placedPart records one committed placement in both reference frames.
type placedPart struct {
	poly     geom.Polygon // rotated, anchor-normalised; NFP frame
	pos      geom.Point   // world position of poly's anchor
	rendered geom.Polygon // world polygon in the rendering frame
	rotation float64
}

// candidate is a potential next placement found by the NFP/IFP scan.
type candidate struct {
	pos      geom.Point
	rotation float64
	poly     geom.Polygon // rotated, anchor-normalised
}

// Pack nests as many copies of the design as fit on the sheet and returns
// the resulting layout. Rotation angles come from the settings rotation
// step. The context is observed between placement iterations.
func (p *Placer) Pack(ctx context.Context, design model.Design, sheet model.SheetPreset) (model.NestResult, error) {
	return p.pack(ctx, design, sheet, nil)
}

// PackSequence is the simplified variant used as the genetic-search
// fitness evaluator: on iteration i only rotations[i mod len] is tried.
func (p *Placer) PackSequence(ctx context.Context, design model.Design, sheet model.SheetPreset, rotations []float64) (model.NestResult, error) {
	if len(rotations) == 0 {
		return p.pack(ctx, design, sheet, nil)
	}
	return p.pack(ctx, design, sheet, rotations)
}

func (p *Placer) pack(ctx context.Context, design model.Design, sheet model.SheetPreset, rotationSeq []float64) (model.NestResult, error) {
	result := model.NestResult{Sheet: sheet}

	if !clip.Ready() {
		return result, ErrKernelUnavailable
	}

	main := design.MainPolygon(p.MainMode)
	if design.Empty() || len(main) < 3 {
		result.ComputeAreas(design.Area)
		return result, nil
	}
	// The NFP cache lives for the duration of a job: a placer instance is
	// created per job and repeated packs (the GA fitness loop) share it.
	if p.gen == nil {
		p.gen = nfp.NewGenerator()
	}

	sheetArea := sheet.Width * sheet.Height
	maxPlacements := int(math.Ceil(sheetArea/design.Area)) + 10
	maxAttempts := 2 * maxPlacements

	margin := p.Settings.Margin
	bounds := geom.BBox{
		X:      margin,
		Y:      margin,
		Width:  sheet.Width - 2*margin,
		Height: sheet.Height - 2*margin,
	}
	if bounds.Width < 0 || bounds.Height < 0 {
		result.ComputeAreas(design.Area)
		return result, nil
	}

	allRotations := p.Settings.RotationAngles()
	rotated := make(map[float64]geom.Polygon, len(allRotations))
	ensureRotated := func(rot float64) geom.Polygon {
		if poly, ok := rotated[rot]; ok {
			return poly
		}
		poly := main.Rotate(rot, geom.Point{}).NormalizeToFirstVertex()
		rotated[rot] = poly
		return poly
	}

	var placed []placedPart
	var placements []model.Placement
	attempts := 0

	for len(placed) < maxPlacements && attempts < maxAttempts {
		if err := checkCancel(ctx); err != nil {
			return model.NestResult{Sheet: sheet}, err
		}
		if p.Progress != nil {
			p.Progress(len(placed), maxPlacements)
		}

		tryRotations := allRotations
		if rotationSeq != nil {
			tryRotations = []float64{rotationSeq[len(placed)%len(rotationSeq)]}
		}

		cand, ok := p.findCandidate(placed, tryRotations, ensureRotated, bounds)
		if !ok {
			break // sheet full for every allowed rotation
		}

		placement, rendered := toRenderedFrame(design, main, cand)

		if !collide.InsideBounds(rendered, sheet.Width, sheet.Height, margin) {
			attempts++
			continue
		}
		collision := false
		for _, prev := range placed {
			if collide.Collides(rendered, prev.rendered, 0) {
				collision = true
				break
			}
		}
		if collision {
			attempts++
			continue
		}

		placed = append(placed, placedPart{
			poly:     cand.poly,
			pos:      cand.pos,
			rendered: rendered,
			rotation: cand.rotation,
		})
		placements = append(placements, placement)
	}

	result.Placements = placements
	result.ComputeAreas(design.Area)
	return result, nil
}

// findCandidate scans every allowed rotation and returns the bottom-left
// valid anchor position across all of them, if any.
func (p *Placer) findCandidate(placed []placedPart, rotations []float64, ensureRotated func(float64) geom.Polygon, bounds geom.BBox) (candidate, bool) {
	margin := p.Settings.Margin

	var best candidate
	found := false

	for _, rot := range rotations {
		part := ensureRotated(rot)
		if len(part) < 3 {
			continue
		}

		ifp := nfp.InnerFitRect(bounds, part)
		if ifp == nil {
			continue // part does not fit at this rotation
		}

		validArea, ok := p.validArea(placed, part, rot, ifp, margin)
		if !ok {
			continue
		}

		pos, ok := bottomLeftCandidate(validArea, p.baseGridStep())
		if !ok {
			continue
		}

		if !found || beatsBottomLeft(pos, best.pos) {
			best = candidate{pos: pos, rotation: rot, poly: part}
			found = true
		}
	}

	return best, found
}

// validArea computes binIFP minus the margin-expanded union of the NFPs of
// every placed part against the incoming rotated part. ok is false when no
// valid region remains (including kernel numeric edge cases).
func (p *Placer) validArea(placed []placedPart, part geom.Polygon, rot float64, ifp geom.Polygon, margin float64) ([]geom.Polygon, bool) {
	if len(placed) == 0 {
		// Nothing blocks the sheet yet; the IFP itself is the valid area.
		// This also keeps the degenerate exact-fit IFP (zero width or
		// height) alive, which the integer kernel would collapse.
		return []geom.Polygon{ifp}, true
	}

	allNFPs := make([]geom.Polygon, 0, len(placed))
	for _, prev := range placed {
		rings, err := p.gen.NoFitPolygon(prev.poly, part, prev.rotation, rot)
		if err != nil {
			return nil, false
		}
		for _, ring := range rings {
			allNFPs = append(allNFPs, ring.Translate(prev.pos.X, prev.pos.Y))
		}
	}
	if len(allNFPs) == 0 {
		return nil, false
	}

	unioned, err := clip.Union(allNFPs)
	if err != nil {
		return nil, false
	}
	expanded := unioned
	if margin > 0 {
		expanded, err = clip.Offset(unioned, margin)
		if err != nil {
			return nil, false
		}
	}

	valid, err := clip.Difference([]geom.Polygon{ifp}, expanded)
	if err != nil || len(valid) == 0 {
		return nil, false
	}
	return valid, true
}

// baseGridStep returns the configured BLF grid step, or 1mm when that is
// zero, so a zero-margin, zero-step configuration cannot stall the scan.
func (p *Placer) baseGridStep() float64 {
	step := p.Settings.EffectiveGridStep()
	if step <= 0 {
		step = 1
	}
	return step
}

// bottomLeftCandidate returns the bottom-left (min y, then min x) anchor
// among all candidate positions of the valid area: lattice points inside
// each ring on an adaptive grid, plus every ring vertex.
func bottomLeftCandidate(validArea []geom.Polygon, baseStep float64) (geom.Point, bool) {
	var best geom.Point
	found := false

	consider := func(pt geom.Point) {
		if !found || beatsBottomLeft(pt, best) {
			best = pt
			found = true
		}
	}

	// The step adapts to the first ring's extent so the scan stays within
	// the candidate budget on large valid regions.
	step := baseStep
	if len(validArea) > 0 {
		if a := validArea[0].Bounds().Area(); a > 0 {
			step = math.Max(baseStep, math.Sqrt(a/targetCandidates))
		}
	}

	for _, ring := range validArea {
		if len(ring) < 3 {
			// A collapsed ring can still carry usable anchor vertices.
			for _, v := range ring {
				consider(v)
			}
			continue
		}

		b := ring.Bounds()
		for y := b.Y; y <= b.Top()+1e-9; y += step {
			for x := b.X; x <= b.Right()+1e-9; x += step {
				pt := geom.Point{X: x, Y: y}
				if ring.ContainsPoint(pt) {
					consider(pt)
				}
			}
		}
		// Ring vertices are candidates as well; the bottom-left optimum of
		// a polygonal region lies on its boundary.
		for _, v := range ring {
			consider(v)
		}
	}

	return best, found
}

// beatsBottomLeft reports whether a is strictly better than b under the
// bottom-left rule: smaller y wins, ties break on smaller x.
func beatsBottomLeft(a, b geom.Point) bool {
	const eps = 1e-9
	if a.Y < b.Y-eps {
		return true
	}
	if math.Abs(a.Y-b.Y) <= eps && a.X < b.X-eps {
		return true
	}
	return false
}

// toRenderedFrame converts an anchor-frame candidate into a Placement in
// the rendering frame and the world polygon it occupies. The two frames
// describe the same occupied region; the placement translation is the
// axis-aligned offset between the rotated-about-centre polygon and the
// candidate's world position.
func toRenderedFrame(design model.Design, main geom.Polygon, cand candidate) (model.Placement, geom.Polygon) {
	occupied := cand.poly.Translate(cand.pos.X, cand.pos.Y)

	centre := design.BoundingBox.Centre()
	rotAboutCentre := main.Rotate(cand.rotation, centre)

	ob := occupied.Bounds()
	rb := rotAboutCentre.Bounds()

	placement := model.Placement{
		DesignID: design.ID,
		X:        ob.X - rb.X,
		Y:        ob.Y - rb.Y,
		Rotation: cand.rotation,
	}
	rendered := placement.RenderedPolygon(main, design.BoundingBox)
	return placement, rendered
}
