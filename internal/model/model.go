package model

import (
	"github.com/google/uuid"

	"github.com/piwi3910/NestCut/internal/geom"
)

// MainPolygonMode selects which ring of a multi-ring design is used as the
// collision shape.
type MainPolygonMode int

const (
	// MainPolygonLargestArea picks the ring with the largest absolute area.
	MainPolygonLargestArea MainPolygonMode = iota
	// MainPolygonMostVertices picks the ring with the most vertices. This
	// matches the behaviour of older layouts and is kept for regression
	// compatibility.
	MainPolygonMostVertices
)

// Design is an immutable master shape to be nested. It is created by an
// importer and never mutated afterwards.
type Design struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	ViewBox     geom.BBox      `json:"view_box"`
	BoundingBox geom.BBox      `json:"bounding_box"`
	Polygons    []geom.Polygon `json:"polygons"`
	Area        float64        `json:"area"`
}

// NewDesign builds a Design from its rings, computing the bounding box and
// total area. Degenerate rings (fewer than 3 vertices) are dropped.
func NewDesign(name string, polygons []geom.Polygon) Design {
	kept := make([]geom.Polygon, 0, len(polygons))
	total := 0.0
	for _, poly := range polygons {
		if len(poly) < 3 {
			continue
		}
		kept = append(kept, poly)
		total += poly.Area()
	}
	bounds := geom.UnionBounds(kept)
	return Design{
		ID:          uuid.New().String()[:8],
		Name:        name,
		ViewBox:     bounds,
		BoundingBox: bounds,
		Polygons:    kept,
		Area:        total,
	}
}

// MainPolygon returns the ring used as the collision shape, or nil for an
// empty design.
func (d Design) MainPolygon(mode MainPolygonMode) geom.Polygon {
	if len(d.Polygons) == 0 {
		return nil
	}
	best := 0
	switch mode {
	case MainPolygonMostVertices:
		for i, p := range d.Polygons {
			if len(p) > len(d.Polygons[best]) {
				best = i
			}
		}
	default:
		for i, p := range d.Polygons {
			if p.Area() > d.Polygons[best].Area() {
				best = i
			}
		}
	}
	return d.Polygons[best]
}

// Empty reports whether the design has no usable geometry.
func (d Design) Empty() bool {
	return len(d.Polygons) == 0 || d.Area == 0
}

// Placement is one committed copy of the design on a sheet. X and Y are
// the translation applied after rotating the design about its bounding box
// centre. Rotation is in real degrees; the engine does not truncate finer
// rotation steps to the quarter-turn set.
type Placement struct {
	DesignID string  `json:"design_id"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Rotation float64 `json:"rotation"`
}

// RenderedPolygon reconstructs the world-coordinate polygon occupied by a
// placement: the source ring rotated about the design bounding box centre,
// then translated by (X, Y).
func (p Placement) RenderedPolygon(source geom.Polygon, designBounds geom.BBox) geom.Polygon {
	centre := geom.Point{
		X: designBounds.X + designBounds.Width/2,
		Y: designBounds.Y + designBounds.Height/2,
	}
	return source.Rotate(p.Rotation, centre).Translate(p.X, p.Y)
}

// EdgeWarningDistance is the sheet-edge clearance below which a result is
// flagged, in mm.
const EdgeWarningDistance = 3.0

// NestResult is the outcome of nesting one design onto one sheet.
type NestResult struct {
	Sheet       SheetPreset `json:"sheet"`
	Placements  []Placement `json:"placements"`
	Count       int         `json:"count"`
	Efficiency  float64     `json:"efficiency"`
	UsedArea    float64     `json:"used_area"`
	WastedArea  float64     `json:"wasted_area"`
	EdgeWarning bool        `json:"edge_warning"`
}

// ComputeAreas fills Count, Efficiency, UsedArea and WastedArea from the
// placement list and the design area.
func (r *NestResult) ComputeAreas(designArea float64) {
	sheetArea := r.Sheet.Width * r.Sheet.Height
	r.Count = len(r.Placements)
	r.UsedArea = float64(r.Count) * designArea
	r.WastedArea = sheetArea - r.UsedArea
	if sheetArea > 0 {
		r.Efficiency = 100.0 * r.UsedArea / sheetArea
	}
}
