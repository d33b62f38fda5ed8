package importer

import (
	"fmt"
	"math"
	"sort"

	"github.com/yofu/dxf"
	"github.com/yofu/dxf/entity"

	"github.com/piwi3910/NestCut/internal/geom"
	"github.com/piwi3910/NestCut/internal/model"
)

// closedThreshold is the maximum first-to-last distance at which a point
// chain counts as a closed ring.
const closedThreshold = 0.1

// chainTolerance is the maximum endpoint gap at which loose segments are
// considered connected while assembling rings.
const chainTolerance = 3.0

// segment represents a line segment between two 2D points, used for
// chaining disconnected LINE entities into closed rings.
type segment struct {
	start geom.Point
	end   geom.Point
}

// ImportDXF reads a DXF file and assembles its closed shapes (LWPOLYLINE,
// CIRCLE, chains of connected LINEs/ARCs) into a single Design. When the
// file contains only open paths, the convex hull of all collected points
// is used as a fallback shape.
func ImportDXF(path string) ImportResult {
	result := ImportResult{}

	drawing, err := dxf.Open(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open DXF file: %v", err))
		return result
	}

	entities := drawing.Entities()
	if len(entities) == 0 {
		result.Errors = append(result.Errors, "DXF file contains no entities")
		return result
	}

	var rings []geom.Polygon
	var segments []segment
	var loosePoints []geom.Point

	for _, ent := range entities {
		switch e := ent.(type) {
		case *entity.LwPolyline:
			ring := lwPolylineToRing(e)
			if len(ring) >= 3 {
				rings = append(rings, ring)
			} else {
				result.Warnings = append(result.Warnings,
					"Skipped LWPOLYLINE with fewer than 3 vertices")
			}

		case *entity.Circle:
			rings = append(rings, circleToRing(e, 64))

		case *entity.Arc:
			pts := arcToPoints(e, 32)
			if len(pts) >= 2 {
				segments = append(segments, pointsToSegments(pts)...)
			}
			loosePoints = append(loosePoints, pts...)

		case *entity.Line:
			seg := segment{
				start: geom.Point{X: e.Start[0], Y: e.Start[1]},
				end:   geom.Point{X: e.End[0], Y: e.End[1]},
			}
			segments = append(segments, seg)
			loosePoints = append(loosePoints, seg.start, seg.end)

		default:
			// Unsupported entity types are silently skipped
		}
	}

	chained := chainSegments(segments, chainTolerance)
	rings = append(rings, chained...)

	if len(rings) == 0 {
		// Open paths only: fall back to the convex hull of everything seen.
		hull := convexHull(loosePoints)
		if len(hull) >= 3 {
			rings = append(rings, hull)
			result.Warnings = append(result.Warnings,
				"No closed shapes found, using convex hull of open paths")
		}
	}

	if len(rings) == 0 {
		result.Errors = append(result.Errors, "No usable shapes found in DXF file")
		return result
	}

	// Normalise so the design's bbox minimum sits at the origin.
	bounds := geom.UnionBounds(rings)
	normalized := make([]geom.Polygon, len(rings))
	for i, ring := range rings {
		normalized[i] = ring.Translate(-bounds.X, -bounds.Y)
	}

	design := model.NewDesign(designName(path), normalized)
	if design.Empty() {
		result.Errors = append(result.Errors, "DXF shapes are degenerate")
		return result
	}
	result.Designs = append(result.Designs, design)
	return result
}

// lwPolylineToRing converts a DXF LWPOLYLINE entity to a ring. Bulge
// values on vertices produce interpolated arc segments.
func lwPolylineToRing(lw *entity.LwPolyline) geom.Polygon {
	var ring geom.Polygon

	for i := 0; i < len(lw.Vertices); i++ {
		v := lw.Vertices[i]
		current := geom.Point{X: v[0], Y: v[1]}

		bulge := 0.0
		if i < len(lw.Bulges) {
			bulge = lw.Bulges[i]
		}

		if math.Abs(bulge) > 1e-9 {
			nextIdx := (i + 1) % len(lw.Vertices)
			next := geom.Point{X: lw.Vertices[nextIdx][0], Y: lw.Vertices[nextIdx][1]}
			arcPts := bulgeArcPoints(current, next, bulge, 32)
			ring = append(ring, arcPts[:len(arcPts)-1]...)
		} else {
			ring = append(ring, current)
		}
	}

	return ring
}

// bulgeArcPoints generates points along an arc defined by two endpoints
// and a DXF bulge factor. The bulge is the tangent of 1/4 the included
// angle.
func bulgeArcPoints(p1, p2 geom.Point, bulge float64, numSegments int) []geom.Point {
	mx := (p1.X + p2.X) / 2
	my := (p1.Y + p2.Y) / 2
	dx := p2.X - p1.X
	dy := p2.Y - p1.Y
	chordLen := math.Sqrt(dx*dx + dy*dy)
	if chordLen < 1e-9 {
		return []geom.Point{p1, p2}
	}

	sagitta := math.Abs(bulge) * chordLen / 2
	radius := (chordLen*chordLen/(4*sagitta) + sagitta) / 2

	perpX := -dy / chordLen
	perpY := dx / chordLen
	dist := radius - sagitta
	if bulge < 0 {
		perpX, perpY = -perpX, -perpY
	}
	cx := mx + perpX*dist
	cy := my + perpY*dist

	startAngle := math.Atan2(p1.Y-cy, p1.X-cx)
	endAngle := math.Atan2(p2.Y-cy, p2.X-cx)

	if bulge < 0 {
		if endAngle > startAngle {
			endAngle -= 2 * math.Pi
		}
	} else {
		if endAngle < startAngle {
			endAngle += 2 * math.Pi
		}
	}

	pts := make([]geom.Point, 0, numSegments+1)
	for i := 0; i <= numSegments; i++ {
		t := float64(i) / float64(numSegments)
		angle := startAngle + t*(endAngle-startAngle)
		pts = append(pts, geom.Point{
			X: cx + radius*math.Cos(angle),
			Y: cy + radius*math.Sin(angle),
		})
	}
	return pts
}

// circleToRing approximates a circle as a regular polygon.
func circleToRing(c *entity.Circle, numSegments int) geom.Polygon {
	ring := make(geom.Polygon, numSegments)
	cx, cy, r := c.Center[0], c.Center[1], c.Radius
	for i := 0; i < numSegments; i++ {
		angle := 2 * math.Pi * float64(i) / float64(numSegments)
		ring[i] = geom.Point{
			X: cx + r*math.Cos(angle),
			Y: cy + r*math.Sin(angle),
		}
	}
	return ring
}

// arcToPoints converts a DXF ARC entity to a series of line points.
func arcToPoints(a *entity.Arc, numSegments int) []geom.Point {
	cx, cy := a.Circle.Center[0], a.Circle.Center[1]
	r := a.Circle.Radius
	startRad := a.Angle[0] * math.Pi / 180
	endRad := a.Angle[1] * math.Pi / 180
	if endRad <= startRad {
		endRad += 2 * math.Pi
	}

	pts := make([]geom.Point, numSegments+1)
	for i := 0; i <= numSegments; i++ {
		t := float64(i) / float64(numSegments)
		angle := startRad + t*(endRad-startRad)
		pts[i] = geom.Point{
			X: cx + r*math.Cos(angle),
			Y: cy + r*math.Sin(angle),
		}
	}
	return pts
}

// pointsToSegments converts a point sequence to connected segments.
func pointsToSegments(pts []geom.Point) []segment {
	segs := make([]segment, 0, len(pts)-1)
	for i := 0; i < len(pts)-1; i++ {
		segs = append(segs, segment{start: pts[i], end: pts[i+1]})
	}
	return segs
}

// chainSegments connects individual segments into closed rings. tolerance
// is the maximum endpoint distance considered connected; the ring itself
// closes when its first and last points fall within closedThreshold, or
// within tolerance for coarsely drawn input.
func chainSegments(segs []segment, tolerance float64) []geom.Polygon {
	if len(segs) == 0 {
		return nil
	}

	used := make([]bool, len(segs))
	var rings []geom.Polygon

	for {
		startIdx := -1
		for i, u := range used {
			if !u {
				startIdx = i
				break
			}
		}
		if startIdx == -1 {
			break
		}

		chain := []geom.Point{segs[startIdx].start, segs[startIdx].end}
		used[startIdx] = true

		changed := true
		for changed {
			changed = false
			tail := chain[len(chain)-1]

			for i, seg := range segs {
				if used[i] {
					continue
				}
				if tail.Distance(seg.start) <= tolerance {
					chain = append(chain, seg.end)
					used[i] = true
					changed = true
					break
				}
				if tail.Distance(seg.end) <= tolerance {
					chain = append(chain, seg.start)
					used[i] = true
					changed = true
					break
				}
			}
		}

		closed := false
		if len(chain) >= 3 {
			gap := chain[0].Distance(chain[len(chain)-1])
			if gap <= closedThreshold || gap <= tolerance {
				chain = chain[:len(chain)-1]
				closed = true
			}
		}

		if closed && len(chain) >= 3 {
			rings = append(rings, geom.Polygon(chain))
		}
	}

	// Largest ring first for consistent ordering; the collision shape
	// selection happens later on the Design.
	sort.SliceStable(rings, func(i, j int) bool {
		return rings[i].Area() > rings[j].Area()
	})

	return rings
}

// convexHull returns the convex hull of the points using the monotone
// chain algorithm. Used as the ingestion fallback when a drawing contains
// only open strokes.
func convexHull(pts []geom.Point) geom.Polygon {
	if len(pts) < 3 {
		return nil
	}

	sorted := make([]geom.Point, len(pts))
	copy(sorted, pts)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].X != sorted[j].X {
			return sorted[i].X < sorted[j].X
		}
		return sorted[i].Y < sorted[j].Y
	})

	crossProduct := func(o, a, b geom.Point) float64 {
		return (a.X-o.X)*(b.Y-o.Y) - (a.Y-o.Y)*(b.X-o.X)
	}

	var lower []geom.Point
	for _, p := range sorted {
		for len(lower) >= 2 && crossProduct(lower[len(lower)-2], lower[len(lower)-1], p) <= 0 {
			lower = lower[:len(lower)-1]
		}
		lower = append(lower, p)
	}

	var upper []geom.Point
	for i := len(sorted) - 1; i >= 0; i-- {
		p := sorted[i]
		for len(upper) >= 2 && crossProduct(upper[len(upper)-2], upper[len(upper)-1], p) <= 0 {
			upper = upper[:len(upper)-1]
		}
		upper = append(upper, p)
	}

	hull := append(lower[:len(lower)-1], upper[:len(upper)-1]...)
	if len(hull) < 3 {
		return nil
	}
	return geom.Polygon(hull)
}
