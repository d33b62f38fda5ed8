package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/NestCut/internal/collide"
	"github.com/piwi3910/NestCut/internal/geom"
	"github.com/piwi3910/NestCut/internal/model"
)

func rectDesign(w, h float64) model.Design {
	return model.NewDesign("rect", []geom.Polygon{{
		{X: 0, Y: 0}, {X: w, Y: 0}, {X: w, Y: h}, {X: 0, Y: h},
	}})
}

// Scenario B: a 100x50 rectangle on an A3 sheet with 3mm margin.
func TestRotationSweep_RectangleOnA3(t *testing.T) {
	design := rectDesign(100, 50)

	result := RotationSweep(design, sheet("a3", 297, 420), 3, model.MainPolygonLargestArea)

	assert.GreaterOrEqual(t, result.Count, 15)
	assertLayoutValid(t, design, result, 3)

	// Placements sit on a regular lattice with spacing side+margin.
	main := design.MainPolygon(model.MainPolygonLargestArea)
	xs := make(map[float64]bool)
	for _, p := range result.Placements {
		b := p.RenderedPolygon(main, design.BoundingBox).Bounds()
		xs[b.X] = true
	}
	require.NotEmpty(t, xs)
	for x := range xs {
		offset := x - 3
		side := result.Placements[0].RenderedPolygon(main, design.BoundingBox).Bounds().Width
		steps := offset / (side + 3)
		assert.InDelta(t, float64(int(steps+0.5)), steps, 1e-6, "column origin %v is on the lattice", x)
	}
}

func TestRotationSweep_PicksBestRotation(t *testing.T) {
	// A 100x50 rectangle on a 297x420 sheet packs better rotated: 5x4
	// columns/rows against 2x7.
	result := RotationSweep(rectDesign(100, 50), sheet("a3", 297, 420), 3, model.MainPolygonLargestArea)
	assert.Equal(t, 20, result.Count)
}

func TestRotationSweep_TooLarge(t *testing.T) {
	result := RotationSweep(rectDesign(500, 500), sheet("a3", 297, 420), 3, model.MainPolygonLargestArea)
	assert.Zero(t, result.Count)
}

func TestRotationSweep_ZeroMargin(t *testing.T) {
	result := RotationSweep(rectDesign(50, 50), sheet("s", 100, 100), 0, model.MainPolygonLargestArea)
	assert.Equal(t, 4, result.Count, "four 50x50 squares tile a 100x100 sheet exactly")
	assertLayoutValid(t, rectDesign(50, 50), result, 0)
}

func TestMixedGridPack_FillsSheet(t *testing.T) {
	design := rectDesign(40, 20)

	result := MixedGridPack(design, sheet("s", 100, 100), 3, model.MainPolygonLargestArea)

	assert.GreaterOrEqual(t, result.Count, 6)
	assertLayoutValid(t, design, result, 3)

	// The oracle must hold with the full margin between parts as well.
	polys := renderedPolygons(t, design, result)
	for i := 0; i < len(polys); i++ {
		for j := i + 1; j < len(polys); j++ {
			assert.False(t, collide.Collides(polys[i], polys[j], 3))
		}
	}
}

func TestMixedGridPack_Degenerate(t *testing.T) {
	design := model.NewDesign("degenerate", []geom.Polygon{{{X: 0, Y: 0}, {X: 1, Y: 1}}})
	result := MixedGridPack(design, sheet("s", 100, 100), 3, model.MainPolygonLargestArea)
	assert.Zero(t, result.Count)
}
