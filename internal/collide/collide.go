// Package collide implements the exact polygon collision oracle used to
// validate placements. It supports concave polygons via segment
// intersection plus containment, with a bounding-box prefilter and an
// optional clearance margin. A second path delegates to the boolean
// kernel; the pure-geometry path works before the kernel is ready and is
// authoritative.
package collide

import (
	"fmt"
	"math"

	"github.com/piwi3910/NestCut/internal/clip"
	"github.com/piwi3910/NestCut/internal/geom"
)

// Collides reports whether polygons a and b overlap, or come closer than
// margin when margin > 0. If the margin-expanded bounding boxes do not
// overlap the answer is always false.
func Collides(a, b geom.Polygon, margin float64) bool {
	if len(a) < 3 || len(b) < 3 {
		return false
	}
	if !a.Bounds().Overlaps(b.Bounds(), margin) {
		return false
	}
	if margin > 0 {
		return MinDistance(a, b) < margin
	}
	return overlapExact(a, b)
}

// overlapExact is the margin-zero test: any edge pair properly crosses,
// or either polygon's reference vertex lies inside the other. Polygons
// that merely share boundary are touching, not overlapping; placements on
// an NFP boundary and zero-margin tilings depend on that distinction.
func overlapExact(a, b geom.Polygon) bool {
	if anyEdgesCross(a, b) {
		return true
	}
	return b.ContainsPoint(a[0]) || a.ContainsPoint(b[0])
}

// anyEdgesCross reports whether any edge of a properly crosses any edge
// of b. Collinear overlap and endpoint touches do not count.
func anyEdgesCross(a, b geom.Polygon) bool {
	for i := 0; i < len(a); i++ {
		a1 := a[i]
		a2 := a[(i+1)%len(a)]
		for j := 0; j < len(b); j++ {
			if properCross(a1, a2, b[j], b[(j+1)%len(b)]) {
				return true
			}
		}
	}
	return false
}

// properCross reports a transversal segment crossing: both segments
// strictly straddle each other.
func properCross(p1, p2, p3, p4 geom.Point) bool {
	d1 := crossSign(p3, p4, p1)
	d2 := crossSign(p3, p4, p2)
	d3 := crossSign(p1, p2, p3)
	d4 := crossSign(p1, p2, p4)
	return d1*d2 < 0 && d3*d4 < 0
}

func crossSign(a, b, c geom.Point) float64 {
	return (b.X-a.X)*(c.Y-a.Y) - (b.Y-a.Y)*(c.X-a.X)
}

// anyEdgesIntersect is the inclusive variant used by the distance path:
// touching segments mean distance zero.
func anyEdgesIntersect(a, b geom.Polygon) bool {
	for i := 0; i < len(a); i++ {
		a1 := a[i]
		a2 := a[(i+1)%len(a)]
		for j := 0; j < len(b); j++ {
			b1 := b[j]
			b2 := b[(j+1)%len(b)]
			if geom.SegmentsIntersect(a1, a2, b1, b2) {
				return true
			}
		}
	}
	return false
}

// MinDistance returns the minimum distance between two polygons: zero if
// they intersect or one contains the other's reference vertex, otherwise
// the minimum vertex-to-edge distance over both directions.
func MinDistance(a, b geom.Polygon) float64 {
	if anyEdgesIntersect(a, b) {
		return 0
	}
	if b.ContainsPoint(a[0]) || a.ContainsPoint(b[0]) {
		return 0
	}

	min := math.Inf(1)
	for _, p := range a {
		for j := 0; j < len(b); j++ {
			d := geom.PointToSegmentDistance(p, b[j], b[(j+1)%len(b)])
			if d < min {
				min = d
			}
		}
	}
	for _, p := range b {
		for j := 0; j < len(a); j++ {
			d := geom.PointToSegmentDistance(p, a[j], a[(j+1)%len(a)])
			if d < min {
				min = d
			}
		}
	}
	return min
}

// CollidesBoolean is the kernel-delegated overlap test: each polygon is
// expanded by half the margin and the expansions are intersected. It
// requires the kernel to be ready; callers fall back to Collides when it
// is not. Both paths agree to within the kernel scale granularity.
func CollidesBoolean(a, b geom.Polygon, margin float64) (bool, error) {
	if len(a) < 3 || len(b) < 3 {
		return false, nil
	}
	if !a.Bounds().Overlaps(b.Bounds(), margin) {
		return false, nil
	}

	ea := []geom.Polygon{a}
	eb := []geom.Polygon{b}
	if margin > 0 {
		var err error
		ea, err = clip.Offset(ea, margin/2)
		if err != nil {
			return false, err
		}
		eb, err = clip.Offset(eb, margin/2)
		if err != nil {
			return false, err
		}
	}
	overlap, err := clip.Intersection(ea, eb)
	if err != nil {
		return false, err
	}
	return len(overlap) > 0, nil
}

// epsilon tolerance for the bounds checks below; placements computed on a
// lattice land exactly on the margin line.
const boundsEps = 1e-9

// InsideBounds reports whether every vertex of the polygon lies inside the
// sheet rectangle shrunk by margin on all sides.
func InsideBounds(poly geom.Polygon, sheetWidth, sheetHeight, margin float64) bool {
	if len(poly) == 0 {
		return false
	}
	for _, p := range poly {
		if p.X < margin-boundsEps || p.X > sheetWidth-margin+boundsEps ||
			p.Y < margin-boundsEps || p.Y > sheetHeight-margin+boundsEps {
			return false
		}
	}
	return true
}

// MinDistanceToBounds returns the minimum distance from any vertex of the
// polygon to any of the four sheet edges.
func MinDistanceToBounds(poly geom.Polygon, sheetWidth, sheetHeight float64) float64 {
	min := math.Inf(1)
	for _, p := range poly {
		d := math.Min(
			math.Min(p.X, sheetWidth-p.X),
			math.Min(p.Y, sheetHeight-p.Y),
		)
		if d < min {
			min = d
		}
	}
	return min
}

// CheckAll runs the pairwise collision check over a set of placed
// polygons and returns human-readable messages identifying each colliding
// pair by 1-based index.
func CheckAll(polys []geom.Polygon, margin float64) []string {
	var errs []string
	for i := 0; i < len(polys); i++ {
		for j := i + 1; j < len(polys); j++ {
			if Collides(polys[i], polys[j], margin) {
				errs = append(errs, fmt.Sprintf("placements %d and %d overlap", i+1, j+1))
			}
		}
	}
	return errs
}
