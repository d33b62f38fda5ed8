package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/NestCut/internal/clip"
	"github.com/piwi3910/NestCut/internal/collide"
	"github.com/piwi3910/NestCut/internal/geom"
	"github.com/piwi3910/NestCut/internal/model"
)

func lDesign() model.Design {
	return model.NewDesign("L", []geom.Polygon{{
		{X: 0, Y: 0}, {X: 20, Y: 0}, {X: 20, Y: 10}, {X: 10, Y: 10}, {X: 10, Y: 30}, {X: 0, Y: 30},
	}})
}

func sheet(name string, w, h float64) model.SheetPreset {
	return model.SheetPreset{ID: name, Name: name, Width: w, Height: h}
}

func blfSettings(margin float64) model.NestSettings {
	s := model.DefaultSettings()
	s.Margin = margin
	s.RotationStep = 90
	return s
}

// renderedPolygons reconstructs the world polygons of a result for
// validation.
func renderedPolygons(t *testing.T, design model.Design, result model.NestResult) []geom.Polygon {
	t.Helper()
	main := design.MainPolygon(model.MainPolygonLargestArea)
	polys := make([]geom.Polygon, len(result.Placements))
	for i, p := range result.Placements {
		polys[i] = p.RenderedPolygon(main, design.BoundingBox)
	}
	return polys
}

// assertLayoutValid checks the committed-layout invariants: pairwise
// non-overlap and containment in the sheet shrunk by margin.
func assertLayoutValid(t *testing.T, design model.Design, result model.NestResult, margin float64) {
	t.Helper()
	polys := renderedPolygons(t, design, result)
	for i := 0; i < len(polys); i++ {
		assert.True(t, collide.InsideBounds(polys[i], result.Sheet.Width, result.Sheet.Height, margin),
			"placement %d must be inside the sheet shrunk by the margin", i+1)
		for j := i + 1; j < len(polys); j++ {
			assert.False(t, collide.Collides(polys[i], polys[j], 0),
				"placements %d and %d must not overlap", i+1, j+1)
		}
	}
}

// Scenario A: L-shape on a 100x100 sheet with 3mm margin, quarter-turn
// rotations, BLF only.
func TestPlacer_LShapeOn100x100(t *testing.T) {
	clip.Init()
	design := lDesign()
	placer := NewPlacer(blfSettings(3))

	result, err := placer.Pack(context.Background(), design, sheet("test", 100, 100))

	require.NoError(t, err)
	assert.GreaterOrEqual(t, result.Count, 6, "at least six L-shapes fit")
	assert.GreaterOrEqual(t, result.Efficiency, 24.0)
	assertLayoutValid(t, design, result, 3)
}

// Scenario C: the sample box polygon on a 728x1030 board.
func TestPlacer_SampleBoxOnBoard(t *testing.T) {
	if testing.Short() {
		t.Skip("large BLF run")
	}
	clip.Init()
	design := model.NewDesign("box", []geom.Polygon{{
		{X: 10, Y: 10}, {X: 190, Y: 10}, {X: 190, Y: 60}, {X: 140, Y: 60}, {X: 140, Y: 140}, {X: 10, Y: 140},
	}})
	placer := NewPlacer(blfSettings(3))

	result, err := placer.Pack(context.Background(), design, sheet("board", 728, 1030))

	require.NoError(t, err)
	assert.GreaterOrEqual(t, result.Count, 20)
	assertLayoutValid(t, design, result, 3)
}

// Scenario D: the 60x60 L variant on an A2 sheet.
func TestPlacer_LVariantOnA2(t *testing.T) {
	if testing.Short() {
		t.Skip("large BLF run")
	}
	clip.Init()
	design := model.NewDesign("L60", []geom.Polygon{{
		{X: 0, Y: 0}, {X: 60, Y: 0}, {X: 60, Y: 30}, {X: 30, Y: 30}, {X: 30, Y: 60}, {X: 0, Y: 60},
	}})
	placer := NewPlacer(blfSettings(3))

	result, err := placer.Pack(context.Background(), design, sheet("a2", 420, 594))

	require.NoError(t, err)
	assert.GreaterOrEqual(t, result.Count, 30)
	assertLayoutValid(t, design, result, 3)
}

func TestPlacer_ExactFit(t *testing.T) {
	clip.Init()
	design := model.NewDesign("square", []geom.Polygon{{
		{X: 0, Y: 0}, {X: 94, Y: 0}, {X: 94, Y: 94}, {X: 0, Y: 94},
	}})
	placer := NewPlacer(blfSettings(3))

	result, err := placer.Pack(context.Background(), design, sheet("tight", 100, 100))

	require.NoError(t, err)
	assert.Equal(t, 1, result.Count, "a design exactly the usable sheet size fits once")
	assertLayoutValid(t, design, result, 3)
}

func TestPlacer_TooLarge(t *testing.T) {
	clip.Init()
	design := model.NewDesign("huge", []geom.Polygon{{
		{X: 0, Y: 0}, {X: 200, Y: 0}, {X: 200, Y: 150}, {X: 0, Y: 150},
	}})
	placer := NewPlacer(blfSettings(3))

	result, err := placer.Pack(context.Background(), design, sheet("small", 100, 100))

	require.NoError(t, err)
	assert.Zero(t, result.Count, "no rotation of a too-large design fits")
}

func TestPlacer_DegenerateDesign(t *testing.T) {
	clip.Init()
	design := model.NewDesign("degenerate", []geom.Polygon{{{X: 0, Y: 0}, {X: 1, Y: 1}}})
	placer := NewPlacer(blfSettings(3))

	result, err := placer.Pack(context.Background(), design, sheet("s", 100, 100))

	require.NoError(t, err, "degenerate input short-circuits, it does not throw")
	assert.Zero(t, result.Count)
}

func TestPlacer_Deterministic(t *testing.T) {
	clip.Init()
	design := lDesign()

	first, err := NewPlacer(blfSettings(3)).Pack(context.Background(), design, sheet("s", 100, 100))
	require.NoError(t, err)
	second, err := NewPlacer(blfSettings(3)).Pack(context.Background(), design, sheet("s", 100, 100))
	require.NoError(t, err)

	assert.Equal(t, first.Placements, second.Placements, "the BLF is fully deterministic")
}

func TestPlacer_Cancellation(t *testing.T) {
	clip.Init()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	placer := NewPlacer(blfSettings(3))
	_, err := placer.Pack(ctx, lDesign(), sheet("s", 100, 100))

	assert.ErrorIs(t, err, ErrCancelled)
}

func TestToRenderedFrame_FramesAgree(t *testing.T) {
	design := lDesign()
	main := design.MainPolygon(model.MainPolygonLargestArea)

	// Anchor frame: the rotated, anchor-normalised polygon placed at a
	// position. Rendered frame: rotate about bbox centre then translate.
	// Both must describe the same occupied region.
	part := main.Rotate(90, geom.Point{}).NormalizeToFirstVertex()
	cand := candidate{pos: geom.Point{X: 40, Y: 25}, rotation: 90, poly: part}

	placement, rendered := toRenderedFrame(design, main, cand)

	occupied := part.Translate(cand.pos.X, cand.pos.Y)
	ob := occupied.Bounds()
	rb := rendered.Bounds()
	assert.InDelta(t, ob.X, rb.X, 1e-9)
	assert.InDelta(t, ob.Y, rb.Y, 1e-9)
	assert.InDelta(t, ob.Width, rb.Width, 1e-9)
	assert.InDelta(t, ob.Height, rb.Height, 1e-9)
	assert.Equal(t, 90.0, placement.Rotation)
}

func TestBottomLeftTieBreak(t *testing.T) {
	area := []geom.Polygon{{
		{X: 10, Y: 5}, {X: 50, Y: 5}, {X: 50, Y: 40}, {X: 10, Y: 40},
	}}

	pos, ok := bottomLeftCandidate(area, 5)

	require.True(t, ok)
	assert.InDelta(t, 5.0, pos.Y, 1e-9, "minimum y wins")
	assert.InDelta(t, 10.0, pos.X, 1e-9, "then minimum x")
}
