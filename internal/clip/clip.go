// Package clip wraps the fixed-point Clipper kernel behind a small
// floating-point API. World coordinates in mm are scaled by a fixed factor
// before crossing into the integer kernel and scaled back on the way out.
// Kernel failures never escape this package: every operation recovers and
// returns its safe default instead.
package clip

import (
	"errors"
	"sync"
	"sync/atomic"

	clipper "github.com/ctessum/go.clipper"

	"github.com/piwi3910/NestCut/internal/geom"
)

// Scale is the world-to-integer coordinate factor. 1000 gives
// sub-millimetre precision for mm world units.
const Scale = 1000.0

// arcTolerance for offset operations, in integer-scale units.
const arcTolerance = 0.25

// ErrNotReady is returned when a boolean operation is requested before the
// kernel has been initialised. Callers that need margin-accurate results
// should call Init first; the collision oracle has a pure-geometry
// fallback for this window.
var ErrNotReady = errors.New("clip: kernel not initialised")

var (
	initOnce sync.Once
	kernelUp atomic.Bool
)

// Init prepares the kernel. It is cheap and idempotent; engines call it
// once per job before the first boolean op.
func Init() {
	initOnce.Do(func() {
		kernelUp.Store(true)
	})
}

// Ready reports whether the kernel has been initialised.
func Ready() bool {
	return kernelUp.Load()
}

// roundHalfAway rounds half away from zero at the float/integer boundary.
func roundHalfAway(v float64) clipper.CInt {
	if v >= 0 {
		return clipper.CInt(v + 0.5)
	}
	return clipper.CInt(v - 0.5)
}

// toPath converts a world polygon to an integer kernel path.
func toPath(poly geom.Polygon) clipper.Path {
	path := make(clipper.Path, len(poly))
	for i, p := range poly {
		path[i] = &clipper.IntPoint{
			X: roundHalfAway(p.X * Scale),
			Y: roundHalfAway(p.Y * Scale),
		}
	}
	return path
}

// toPaths converts world polygons to kernel paths, skipping degenerate rings.
func toPaths(polys []geom.Polygon) clipper.Paths {
	paths := make(clipper.Paths, 0, len(polys))
	for _, poly := range polys {
		if len(poly) < 3 {
			continue
		}
		paths = append(paths, toPath(poly))
	}
	return paths
}

// fromPaths converts kernel paths back to world polygons.
func fromPaths(paths clipper.Paths) []geom.Polygon {
	polys := make([]geom.Polygon, 0, len(paths))
	for _, path := range paths {
		if len(path) < 3 {
			continue
		}
		poly := make(geom.Polygon, len(path))
		for i, ip := range path {
			poly[i] = geom.Point{
				X: float64(ip.X) / Scale,
				Y: float64(ip.Y) / Scale,
			}
		}
		polys = append(polys, poly)
	}
	return polys
}

// Union merges the given rings under the non-zero fill rule. On kernel
// error the input is returned unchanged.
func Union(polys []geom.Polygon) (result []geom.Polygon, err error) {
	if !Ready() {
		return polys, ErrNotReady
	}
	if len(polys) == 0 {
		return nil, nil
	}
	defer func() {
		if r := recover(); r != nil {
			result = polys
			err = nil
		}
	}()

	c := clipper.NewClipper(clipper.IoNone)
	c.AddPaths(toPaths(polys), clipper.PtSubject, true)
	solution, ok := c.Execute1(clipper.CtUnion, clipper.PftNonZero, clipper.PftNonZero)
	if !ok {
		return polys, nil
	}
	return fromPaths(solution), nil
}

// Difference subtracts the clip rings from the subject rings under the
// non-zero fill rule. On kernel error the empty sequence is returned.
func Difference(subject, clips []geom.Polygon) (result []geom.Polygon, err error) {
	if !Ready() {
		return nil, ErrNotReady
	}
	if len(subject) == 0 {
		return nil, nil
	}
	if len(clips) == 0 {
		return subject, nil
	}
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = nil
		}
	}()

	c := clipper.NewClipper(clipper.IoNone)
	c.AddPaths(toPaths(subject), clipper.PtSubject, true)
	c.AddPaths(toPaths(clips), clipper.PtClip, true)
	solution, ok := c.Execute1(clipper.CtDifference, clipper.PftNonZero, clipper.PftNonZero)
	if !ok {
		return nil, nil
	}
	return fromPaths(solution), nil
}

// Intersection intersects the subject rings with the clip rings. On kernel
// error the empty sequence is returned.
func Intersection(subject, clips []geom.Polygon) (result []geom.Polygon, err error) {
	if !Ready() {
		return nil, ErrNotReady
	}
	if len(subject) == 0 || len(clips) == 0 {
		return nil, nil
	}
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = nil
		}
	}()

	c := clipper.NewClipper(clipper.IoNone)
	c.AddPaths(toPaths(subject), clipper.PtSubject, true)
	c.AddPaths(toPaths(clips), clipper.PtClip, true)
	solution, ok := c.Execute1(clipper.CtIntersection, clipper.PftNonZero, clipper.PftNonZero)
	if !ok {
		return nil, nil
	}
	return fromPaths(solution), nil
}

// Offset expands (delta > 0) or contracts (delta < 0) the rings by delta
// mm using a miter join with limit 2. Zero delta is the identity. On
// kernel error the input is returned unchanged.
func Offset(polys []geom.Polygon, delta float64) (result []geom.Polygon, err error) {
	if !Ready() {
		return polys, ErrNotReady
	}
	if len(polys) == 0 || delta == 0 {
		return polys, nil
	}
	defer func() {
		if r := recover(); r != nil {
			result = polys
			err = nil
		}
	}()

	co := clipper.NewClipperOffset()
	co.MiterLimit = 2.0
	co.ArcTolerance = arcTolerance
	co.AddPaths(toPaths(polys), clipper.JtMiter, clipper.EtClosedPolygon)
	solution := co.Execute(delta * Scale)
	return fromPaths(solution), nil
}

// MinkowskiSum returns the Minkowski sum of pattern and subject. On kernel
// error the empty sequence is returned.
func MinkowskiSum(pattern, subject geom.Polygon, closed bool) (result []geom.Polygon, err error) {
	if !Ready() {
		return nil, ErrNotReady
	}
	if len(pattern) < 3 || len(subject) < 3 {
		return nil, nil
	}
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = nil
		}
	}()

	c := clipper.NewClipper(clipper.IoNone)
	solution := c.MinkowskiSum(toPath(pattern), toPath(subject), closed)
	return fromPaths(solution), nil
}
