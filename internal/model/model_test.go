package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/NestCut/internal/geom"
)

func lShape() geom.Polygon {
	return geom.Polygon{
		{X: 0, Y: 0}, {X: 20, Y: 0}, {X: 20, Y: 10}, {X: 10, Y: 10}, {X: 10, Y: 30}, {X: 0, Y: 30},
	}
}

func TestNewDesign(t *testing.T) {
	d := NewDesign("L", []geom.Polygon{lShape()})

	assert.NotEmpty(t, d.ID)
	assert.InDelta(t, 400.0, d.Area, 1e-9)
	assert.Equal(t, 20.0, d.BoundingBox.Width)
	assert.Equal(t, 30.0, d.BoundingBox.Height)
	assert.False(t, d.Empty())
}

func TestNewDesign_DropsDegenerateRings(t *testing.T) {
	d := NewDesign("mixed", []geom.Polygon{
		{{X: 0, Y: 0}, {X: 1, Y: 1}}, // 2 vertices, dropped
		lShape(),
	})

	require.Len(t, d.Polygons, 1)
	assert.InDelta(t, 400.0, d.Area, 1e-9)
}

func TestNewDesign_Empty(t *testing.T) {
	d := NewDesign("empty", nil)
	assert.True(t, d.Empty())
	assert.Nil(t, d.MainPolygon(MainPolygonLargestArea))
}

func TestMainPolygon_Modes(t *testing.T) {
	bigTriangle := geom.Polygon{{X: 0, Y: 0}, {X: 100, Y: 0}, {X: 0, Y: 100}} // area 5000, 3 vertices
	smallOctagonish := geom.Polygon{                                          // area well under 5000, 8 vertices
		{X: 0, Y: 0}, {X: 4, Y: 0}, {X: 6, Y: 2}, {X: 6, Y: 4}, {X: 4, Y: 6}, {X: 2, Y: 6}, {X: 0, Y: 4}, {X: 0, Y: 2},
	}
	d := NewDesign("multi", []geom.Polygon{smallOctagonish, bigTriangle})

	assert.Len(t, d.MainPolygon(MainPolygonLargestArea), 3, "largest-area mode picks the triangle")
	assert.Len(t, d.MainPolygon(MainPolygonMostVertices), 8, "vertex-count mode picks the octagon")
}

func TestPlacementRenderedPolygon(t *testing.T) {
	d := NewDesign("L", []geom.Polygon{lShape()})
	p := Placement{DesignID: d.ID, X: 100, Y: 50, Rotation: 0}

	rendered := p.RenderedPolygon(d.MainPolygon(MainPolygonLargestArea), d.BoundingBox)

	require.Len(t, rendered, 6)
	assert.Equal(t, geom.Point{X: 100, Y: 50}, rendered[0])

	// A 90-degree rotation about the bbox centre swaps the bbox dimensions
	// in place, then the translation applies.
	p90 := Placement{DesignID: d.ID, X: 0, Y: 0, Rotation: 90}
	b := p90.RenderedPolygon(d.MainPolygon(MainPolygonLargestArea), d.BoundingBox).Bounds()
	assert.InDelta(t, 30.0, b.Width, 1e-9)
	assert.InDelta(t, 20.0, b.Height, 1e-9)
}

func TestNestResultComputeAreas(t *testing.T) {
	r := NestResult{
		Sheet:      SheetPreset{Width: 100, Height: 100},
		Placements: make([]Placement, 6),
	}
	r.ComputeAreas(400)

	assert.Equal(t, 6, r.Count)
	assert.InDelta(t, 2400.0, r.UsedArea, 1e-9)
	assert.InDelta(t, 7600.0, r.WastedArea, 1e-9)
	assert.InDelta(t, 24.0, r.Efficiency, 1e-9)
}

func TestRotationAngles(t *testing.T) {
	s := DefaultSettings()
	assert.Equal(t, []float64{0, 90, 180, 270}, s.RotationAngles())

	s.RotationStep = 45
	assert.Len(t, s.RotationAngles(), 8)

	s.RotationStep = 0 // invalid, falls back to quarter turns
	assert.Equal(t, []float64{0, 90, 180, 270}, s.RotationAngles())
}

func TestEffectiveGridStep(t *testing.T) {
	s := DefaultSettings()
	assert.Equal(t, s.Margin, s.EffectiveGridStep(), "grid step defaults to margin")

	s.GridStep = 5
	assert.Equal(t, 5.0, s.EffectiveGridStep())
}

func TestPresetLookup(t *testing.T) {
	p, ok := PresetByID("a3")
	require.True(t, ok)
	assert.Equal(t, 297.0, p.Width)
	assert.Equal(t, 420.0, p.Height)

	_, ok = PresetByID("nope")
	assert.False(t, ok)

	paper := PresetsByCategory("paper")
	assert.GreaterOrEqual(t, len(paper), 5)
}

func TestAppConfigApplyToSettings(t *testing.T) {
	cfg := DefaultAppConfig()
	cfg.DefaultMargin = 5
	cfg.DefaultAlgorithm = AlgorithmNFPGA

	s := DefaultSettings()
	cfg.ApplyToSettings(&s)

	assert.Equal(t, 5.0, s.Margin)
	assert.Equal(t, AlgorithmNFPGA, s.Algorithm)
}
