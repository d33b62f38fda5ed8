// Package nfp computes No-Fit Polygons and Inner-Fit Polygons for the
// placement engine. The NFP of a fixed polygon A and a moving polygon B is
// the locus of B's reference point at which the two touch; it is computed
// as the Minkowski sum A ⊕ (−B) after translating B so its anchor sits at
// the origin. Results are cached per generator instance for the duration
// of a nesting job.
package nfp

import (
	"fmt"
	"math"

	"github.com/piwi3910/NestCut/internal/clip"
	"github.com/piwi3910/NestCut/internal/geom"
)

// Fingerprint returns a cheap structural identifier for a polygon, used as
// a cache key component. Polygons of equal vertex count and area collide,
// which is why keys also carry both rotations and the inside flag, and why
// the cache is scoped to a single placer instance.
func Fingerprint(poly geom.Polygon) string {
	return fmt.Sprintf("p%d_a%d", len(poly), int(math.Round(100*poly.Area())))
}

// CacheKey identifies one cached NFP/IFP result.
type CacheKey struct {
	A      string
	B      string
	RotA   float64
	RotB   float64
	Inside bool
}

// Generator computes and caches NFPs. It is not safe for concurrent use;
// parallel searches must partition work per generator instance.
type Generator struct {
	cache map[CacheKey][]geom.Polygon
}

// NewGenerator returns an empty generator.
func NewGenerator() *Generator {
	return &Generator{cache: make(map[CacheKey][]geom.Polygon)}
}

// Invalidate drops every cached entry. Called between jobs.
func (g *Generator) Invalidate() {
	g.cache = make(map[CacheKey][]geom.Polygon)
}

// CacheSize returns the number of cached entries.
func (g *Generator) CacheSize() int {
	return len(g.cache)
}

// NoFitPolygon returns NFP(fixed, moving): the locus of moving's reference
// point at which moving touches fixed. Both polygons are passed already
// rotated; the rotation values participate only in the cache key.
func (g *Generator) NoFitPolygon(fixed, moving geom.Polygon, rotFixed, rotMoving float64) ([]geom.Polygon, error) {
	if len(fixed) < 3 || len(moving) < 3 {
		return nil, nil
	}

	key := CacheKey{
		A:    Fingerprint(fixed),
		B:    Fingerprint(moving),
		RotA: rotFixed,
		RotB: rotMoving,
	}
	if cached, ok := g.cache[key]; ok {
		return cached, nil
	}

	result, err := computeNFP(fixed, moving)
	if err != nil {
		return nil, err
	}
	g.cache[key] = result
	return result, nil
}

// computeNFP translates moving so its anchor is the origin, negates it,
// and takes the Minkowski sum with the fixed polygon.
func computeNFP(fixed, moving geom.Polygon) ([]geom.Polygon, error) {
	pattern := moving.NormalizeToFirstVertex().Negate()
	sum, err := clip.MinkowskiSum(pattern, fixed, true)
	if err != nil {
		return nil, err
	}
	if len(sum) == 0 {
		return nil, nil
	}
	return sum, nil
}

// InnerFitRect returns the Inner-Fit Polygon of a moving polygon inside an
// axis-aligned rectangular bin: the axis-aligned rectangle of anchor
// positions at which the moving polygon fits entirely inside the bin.
// Returns nil when the part does not fit.
func InnerFitRect(bin geom.BBox, moving geom.Polygon) geom.Polygon {
	if len(moving) < 3 {
		return nil
	}
	b := moving.Bounds()
	ref := moving[0]

	// Anchor offsets from the moving part's bbox extents.
	oL := ref.X - b.X
	oR := b.Right() - ref.X
	oB := ref.Y - b.Y
	oT := b.Top() - ref.Y

	x1 := bin.X + oL
	x2 := bin.Right() - oR
	y1 := bin.Y + oB
	y2 := bin.Top() - oT

	if x2 < x1 || y2 < y1 {
		return nil
	}
	return geom.Polygon{
		{X: x1, Y: y1}, {X: x2, Y: y1}, {X: x2, Y: y2}, {X: x1, Y: y2},
	}
}

// InnerFitGeneral computes the IFP for an arbitrary bin polygon via the
// Minkowski sum of the bin with the negated moving polygon. The interior
// rings of the sum are the fit region. Only exercised on rectangular bins
// in practice; InnerFitRect is authoritative for that case and the two are
// cross-tested against each other.
func (g *Generator) InnerFitGeneral(bin, moving geom.Polygon) ([]geom.Polygon, error) {
	if len(bin) < 3 || len(moving) < 3 {
		return nil, nil
	}

	key := CacheKey{
		A:      Fingerprint(bin),
		B:      Fingerprint(moving),
		Inside: true,
	}
	if cached, ok := g.cache[key]; ok {
		return cached, nil
	}

	pattern := moving.NormalizeToFirstVertex().Negate()
	sum, err := clip.MinkowskiSum(pattern, bin, true)
	if err != nil {
		return nil, err
	}

	// The outermost ring of the sum is the no-fit boundary around the bin;
	// any further rings enclose the positions where the part fits inside.
	result := interiorRings(sum)
	g.cache[key] = result
	return result, nil
}

// interiorRings drops the ring with the largest bounding box from the set;
// the remaining rings are the interior fit region. A single-ring result
// has no interior and yields nil.
func interiorRings(rings []geom.Polygon) []geom.Polygon {
	if len(rings) < 2 {
		return nil
	}
	outer := 0
	outerArea := rings[0].Bounds().Area()
	for i, r := range rings[1:] {
		if a := r.Bounds().Area(); a > outerArea {
			outer = i + 1
			outerArea = a
		}
	}
	result := make([]geom.Polygon, 0, len(rings)-1)
	for i, r := range rings {
		if i != outer {
			result = append(result, r)
		}
	}
	return result
}
