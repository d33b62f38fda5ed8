package nfp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/NestCut/internal/clip"
	"github.com/piwi3910/NestCut/internal/collide"
	"github.com/piwi3910/NestCut/internal/geom"
)

func square(x, y, size float64) geom.Polygon {
	return geom.Polygon{
		{X: x, Y: y}, {X: x + size, Y: y}, {X: x + size, Y: y + size}, {X: x, Y: y + size},
	}
}

func TestFingerprint(t *testing.T) {
	assert.Equal(t, "p4_a10000", Fingerprint(square(0, 0, 10)))
	assert.Equal(t, Fingerprint(square(0, 0, 10)), Fingerprint(square(50, 50, 10)),
		"fingerprint is structural, not positional")
}

func TestNoFitPolygon_SquarePair(t *testing.T) {
	clip.Init()
	g := NewGenerator()

	// NFP of two 10x10 squares is a 20x20 region: the moving square's
	// anchor collides anywhere within one side length of the fixed square.
	nfp, err := g.NoFitPolygon(square(0, 0, 10), square(0, 0, 10), 0, 0)

	require.NoError(t, err)
	require.NotEmpty(t, nfp)

	b := geom.UnionBounds(nfp)
	assert.InDelta(t, 20.0, b.Width, 0.01)
	assert.InDelta(t, 20.0, b.Height, 0.01)
}

// TestNoFitPolygon_Contract probes the NFP contract on a grid of sample
// anchor positions: anchors strictly inside the NFP produce overlap,
// anchors strictly outside produce disjoint polygons.
func TestNoFitPolygon_Contract(t *testing.T) {
	clip.Init()
	g := NewGenerator()

	fixed := square(0, 0, 10)
	moving := square(0, 0, 10)

	nfp, err := g.NoFitPolygon(fixed, moving, 0, 0)
	require.NoError(t, err)
	require.NotEmpty(t, nfp)

	const tol = 2.0 / clip.Scale
	normalized := moving.NormalizeToFirstVertex()

	for x := -15.0; x <= 25.0; x += 1.0 {
		for y := -15.0; y <= 25.0; y += 1.0 {
			anchor := geom.Point{X: x, Y: y}

			inside := false
			boundary := false
			for _, ring := range nfp {
				if ring.ContainsPoint(anchor) {
					inside = true
				}
				for i := 0; i < len(ring); i++ {
					d := geom.PointToSegmentDistance(anchor, ring[i], ring[(i+1)%len(ring)])
					if d <= tol {
						boundary = true
					}
				}
			}
			if boundary {
				continue // touching cases are not probed
			}

			placed := normalized.Translate(anchor.X, anchor.Y)
			overlaps := collide.Collides(fixed, placed, 0)

			if inside {
				assert.True(t, overlaps, "anchor (%v,%v) inside NFP must overlap", x, y)
			} else {
				assert.False(t, overlaps, "anchor (%v,%v) outside NFP must be disjoint", x, y)
			}
		}
	}
}

func TestNoFitPolygon_Cache(t *testing.T) {
	clip.Init()
	g := NewGenerator()

	_, err := g.NoFitPolygon(square(0, 0, 10), square(0, 0, 5), 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, g.CacheSize())

	// Same shapes, same rotations: served from cache.
	_, err = g.NoFitPolygon(square(0, 0, 10), square(0, 0, 5), 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, g.CacheSize())

	// Different rotation pair: distinct entry even for identical geometry.
	_, err = g.NoFitPolygon(square(0, 0, 10), square(0, 0, 5), 0, 90)
	require.NoError(t, err)
	assert.Equal(t, 2, g.CacheSize())

	g.Invalidate()
	assert.Equal(t, 0, g.CacheSize())
}

func TestInnerFitRect(t *testing.T) {
	bin := geom.BBox{X: 0, Y: 0, Width: 100, Height: 100}
	part := square(0, 0, 10)

	ifp := InnerFitRect(bin, part)

	require.NotNil(t, ifp)
	b := ifp.Bounds()
	// The anchor is the part's bottom-left corner, so it ranges over
	// [0, 90] in both axes.
	assert.InDelta(t, 0.0, b.X, 1e-9)
	assert.InDelta(t, 0.0, b.Y, 1e-9)
	assert.InDelta(t, 90.0, b.Width, 1e-9)
	assert.InDelta(t, 90.0, b.Height, 1e-9)
}

func TestInnerFitRect_ExactFit(t *testing.T) {
	bin := geom.BBox{X: 0, Y: 0, Width: 10, Height: 10}
	ifp := InnerFitRect(bin, square(0, 0, 10))

	require.NotNil(t, ifp, "a part exactly the bin size fits at exactly one anchor")
	b := ifp.Bounds()
	assert.InDelta(t, 0.0, b.Width, 1e-9)
	assert.InDelta(t, 0.0, b.Height, 1e-9)
}

func TestInnerFitRect_TooLarge(t *testing.T) {
	bin := geom.BBox{X: 0, Y: 0, Width: 10, Height: 10}
	assert.Nil(t, InnerFitRect(bin, square(0, 0, 20)))
}

func TestInnerFitGeneral_MatchesRectOnRectangles(t *testing.T) {
	clip.Init()
	g := NewGenerator()

	bin := geom.BBox{X: 0, Y: 0, Width: 100, Height: 100}
	binPoly := square(0, 0, 100)
	part := square(0, 0, 20)

	fast := InnerFitRect(bin, part)
	require.NotNil(t, fast)

	general, err := g.InnerFitGeneral(binPoly, part)
	require.NoError(t, err)
	require.NotEmpty(t, general, "general IFP of a rectangle must not be empty")

	fb := fast.Bounds()
	gb := geom.UnionBounds(general)
	assert.InDelta(t, fb.X, gb.X, 0.01)
	assert.InDelta(t, fb.Y, gb.Y, 0.01)
	assert.InDelta(t, fb.Width, gb.Width, 0.01)
	assert.InDelta(t, fb.Height, gb.Height, 0.01)
}

func TestNoFitPolygon_DegenerateInput(t *testing.T) {
	clip.Init()
	g := NewGenerator()

	out, err := g.NoFitPolygon(geom.Polygon{{X: 0, Y: 0}, {X: 1, Y: 0}}, square(0, 0, 10), 0, 0)
	require.NoError(t, err)
	assert.Empty(t, out)
}
