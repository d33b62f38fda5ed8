package engine

import (
	"math"

	"github.com/piwi3910/NestCut/internal/collide"
	"github.com/piwi3910/NestCut/internal/geom"
	"github.com/piwi3910/NestCut/internal/model"
)

// quarterTurns is the rotation set used by the grid packers.
var quarterTurns = []float64{0, 90, 180, 270}

// placementAtBBoxMin builds the rendering-frame placement that puts the
// rotated design's bounding box minimum at (minX, minY), and the world
// polygon it occupies.
func placementAtBBoxMin(design model.Design, main geom.Polygon, rot, minX, minY float64) (model.Placement, geom.Polygon) {
	centre := design.BoundingBox.Centre()
	rb := main.Rotate(rot, centre).Bounds()
	placement := model.Placement{
		DesignID: design.ID,
		X:        minX - rb.X,
		Y:        minY - rb.Y,
		Rotation: rot,
	}
	return placement, placement.RenderedPolygon(main, design.BoundingBox)
}

// RotationSweep computes, for each quarter-turn rotation, the rectilinear
// grid count floor((available+margin)/(side+margin)) per axis, and lays
// out the winning rotation on a regular lattice. It is the fastest
// strategy and exact for rectangular designs.
func RotationSweep(design model.Design, sheet model.SheetPreset, margin float64, mode model.MainPolygonMode) model.NestResult {
	result := model.NestResult{Sheet: sheet}
	main := design.MainPolygon(mode)
	if design.Empty() || len(main) < 3 {
		result.ComputeAreas(design.Area)
		return result
	}

	availW := sheet.Width - 2*margin
	availH := sheet.Height - 2*margin

	bestCount := 0
	bestRot := 0.0
	var bestW, bestH float64

	for _, rot := range quarterTurns {
		b := main.Rotate(rot, geom.Point{}).Bounds()
		if b.Width <= 0 || b.Height <= 0 {
			continue
		}
		cols := int(math.Floor((availW + margin) / (b.Width + margin)))
		rows := int(math.Floor((availH + margin) / (b.Height + margin)))
		if cols < 0 {
			cols = 0
		}
		if rows < 0 {
			rows = 0
		}
		if count := cols * rows; count > bestCount {
			bestCount = count
			bestRot = rot
			bestW = b.Width
			bestH = b.Height
		}
	}

	if bestCount == 0 {
		result.ComputeAreas(design.Area)
		return result
	}

	cols := int(math.Floor((availW + margin) / (bestW + margin)))
	rows := int(math.Floor((availH + margin) / (bestH + margin)))
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			x := margin + float64(col)*(bestW+margin)
			y := margin + float64(row)*(bestH+margin)
			placement, _ := placementAtBBoxMin(design, main, bestRot, x, y)
			result.Placements = append(result.Placements, placement)
		}
	}

	result.ComputeAreas(design.Area)
	return result
}

// MixedGridPack is the two-pass lattice packer: at every grid point it
// tries the design at 0 and 90 degrees and commits the first orientation
// that fits without colliding. The first pass uses a coarse adaptive grid,
// the second pass halves the step to fill the gaps the coarse pass left.
func MixedGridPack(design model.Design, sheet model.SheetPreset, margin float64, mode model.MainPolygonMode) model.NestResult {
	result := model.NestResult{Sheet: sheet}
	main := design.MainPolygon(mode)
	if design.Empty() || len(main) < 3 {
		result.ComputeAreas(design.Area)
		return result
	}

	minDim := math.Min(design.BoundingBox.Width, design.BoundingBox.Height)
	coarse := math.Max(margin, minDim/4)
	if coarse <= 0 {
		coarse = 1
	}

	var rendered []geom.Polygon

	for _, step := range []float64{coarse, coarse / 2} {
		for y := margin; y <= sheet.Height-margin; y += step {
			for x := margin; x <= sheet.Width-margin; x += step {
				for _, rot := range []float64{0, 90} {
					placement, poly := placementAtBBoxMin(design, main, rot, x, y)
					if !collide.InsideBounds(poly, sheet.Width, sheet.Height, margin) {
						continue
					}
					blocked := false
					for _, prev := range rendered {
						if collide.Collides(poly, prev, margin) {
							blocked = true
							break
						}
					}
					if blocked {
						continue
					}
					rendered = append(rendered, poly)
					result.Placements = append(result.Placements, placement)
					break
				}
			}
		}
	}

	result.ComputeAreas(design.Area)
	return result
}
