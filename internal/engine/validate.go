package engine

import (
	"fmt"

	"github.com/piwi3910/NestCut/internal/collide"
	"github.com/piwi3910/NestCut/internal/geom"
	"github.com/piwi3910/NestCut/internal/model"
)

// ValidateLayout checks a user-edited placement list against the sheet and
// margin. Placements must be contained in the sheet (hard bounds) and
// pairwise collision-free with the configured margin. Returned messages
// identify offending placements by 1-based index.
func ValidateLayout(design model.Design, sheet model.SheetPreset, placements []model.Placement, margin float64, mode model.MainPolygonMode) []string {
	main := design.MainPolygon(mode)
	if len(main) < 3 {
		return nil
	}

	rendered := make([]geom.Polygon, len(placements))
	var errs []string

	for i, p := range placements {
		rendered[i] = p.RenderedPolygon(main, design.BoundingBox)
		if !collide.InsideBounds(rendered[i], sheet.Width, sheet.Height, 0) {
			errs = append(errs, fmt.Sprintf("placement %d is outside the sheet", i+1))
		}
	}

	for i := 0; i < len(rendered); i++ {
		for j := i + 1; j < len(rendered); j++ {
			if collide.Collides(rendered[i], rendered[j], margin) {
				errs = append(errs, fmt.Sprintf("placements %d and %d overlap", i+1, j+1))
			}
		}
	}

	return errs
}

// MoveValid is the drag-time check: it reports whether moving the
// placement at index to the candidate position keeps the layout valid.
// The moved part must stay inside the sheet shrunk by margin and keep its
// clearance to every other placement. Invalid moves simply do not update
// the position.
func MoveValid(design model.Design, sheet model.SheetPreset, placements []model.Placement, index int, candidate model.Placement, margin float64, mode model.MainPolygonMode) bool {
	if index < 0 || index >= len(placements) {
		return false
	}
	main := design.MainPolygon(mode)
	if len(main) < 3 {
		return false
	}

	moved := candidate.RenderedPolygon(main, design.BoundingBox)
	if !collide.InsideBounds(moved, sheet.Width, sheet.Height, margin) {
		return false
	}

	for i, p := range placements {
		if i == index {
			continue
		}
		other := p.RenderedPolygon(main, design.BoundingBox)
		if collide.Collides(moved, other, margin) {
			return false
		}
	}
	return true
}
