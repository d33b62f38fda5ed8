// Package geom provides the 2D geometry primitives used by the nesting
// engine: points, polygons, bounding boxes, and the transforms and
// predicates the placement algorithms are built on. All coordinates are
// world millimetres.
package geom

import "math"

// Point represents a 2D coordinate in mm.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add returns the vector sum of two points.
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// Sub returns the vector difference p - q.
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Neg returns the pointwise negation of p.
func (p Point) Neg() Point {
	return Point{X: -p.X, Y: -p.Y}
}

// Distance returns the Euclidean distance to another point.
func (p Point) Distance(q Point) float64 {
	dx := p.X - q.X
	dy := p.Y - q.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// Rotate rotates p by angle degrees counter-clockwise about centre.
func (p Point) Rotate(angleDeg float64, centre Point) Point {
	rad := angleDeg * math.Pi / 180.0
	sin := math.Sin(rad)
	cos := math.Cos(rad)
	dx := p.X - centre.X
	dy := p.Y - centre.Y
	return Point{
		X: centre.X + dx*cos - dy*sin,
		Y: centre.Y + dx*sin + dy*cos,
	}
}

// Polygon represents a simple closed ring as an ordered sequence of points.
// The ring is implicitly closed: the last point connects back to the first.
// The first vertex is the reference point (anchor) used by NFP/IFP
// placement reasoning.
type Polygon []Point

// BBox represents an axis-aligned bounding box.
type BBox struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Right returns the right edge X coordinate.
func (b BBox) Right() float64 { return b.X + b.Width }

// Top returns the top edge Y coordinate.
func (b BBox) Top() float64 { return b.Y + b.Height }

// Centre returns the centre point of the box.
func (b BBox) Centre() Point {
	return Point{X: b.X + b.Width/2, Y: b.Y + b.Height/2}
}

// Area returns the box area.
func (b BBox) Area() float64 { return b.Width * b.Height }

// Overlaps reports whether b and o overlap after expanding both by margin
// on every side. Touching boxes count as overlapping.
func (b BBox) Overlaps(o BBox, margin float64) bool {
	return b.X-margin <= o.Right()+margin &&
		b.Right()+margin >= o.X-margin &&
		b.Y-margin <= o.Top()+margin &&
		b.Top()+margin >= o.Y-margin
}

// Contains reports whether the point lies inside or on the box boundary.
func (b BBox) Contains(p Point) bool {
	return p.X >= b.X && p.X <= b.Right() && p.Y >= b.Y && p.Y <= b.Top()
}

// Bounds returns the bounding box of the polygon.
func (poly Polygon) Bounds() BBox {
	if len(poly) == 0 {
		return BBox{}
	}
	minX, minY := poly[0].X, poly[0].Y
	maxX, maxY := poly[0].X, poly[0].Y
	for _, p := range poly[1:] {
		minX = math.Min(minX, p.X)
		minY = math.Min(minY, p.Y)
		maxX = math.Max(maxX, p.X)
		maxY = math.Max(maxY, p.Y)
	}
	return BBox{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// UnionBounds returns the bounding box enclosing all given polygons.
func UnionBounds(polys []Polygon) BBox {
	first := true
	var minX, minY, maxX, maxY float64
	for _, poly := range polys {
		for _, p := range poly {
			if first {
				minX, minY, maxX, maxY = p.X, p.Y, p.X, p.Y
				first = false
				continue
			}
			minX = math.Min(minX, p.X)
			minY = math.Min(minY, p.Y)
			maxX = math.Max(maxX, p.X)
			maxY = math.Max(maxY, p.Y)
		}
	}
	if first {
		return BBox{}
	}
	return BBox{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// SignedArea returns the shoelace area of the polygon. Positive for
// counter-clockwise winding, negative for clockwise.
func (poly Polygon) SignedArea() float64 {
	if len(poly) < 3 {
		return 0
	}
	sum := 0.0
	for i := 0; i < len(poly); i++ {
		j := (i + 1) % len(poly)
		sum += poly[i].X*poly[j].Y - poly[j].X*poly[i].Y
	}
	return sum / 2
}

// Area returns the absolute shoelace area of the polygon.
func (poly Polygon) Area() float64 {
	return math.Abs(poly.SignedArea())
}

// Centroid returns the arithmetic mean of the polygon vertices.
func (poly Polygon) Centroid() Point {
	if len(poly) == 0 {
		return Point{}
	}
	var sx, sy float64
	for _, p := range poly {
		sx += p.X
		sy += p.Y
	}
	n := float64(len(poly))
	return Point{X: sx / n, Y: sy / n}
}

// Translate returns a fresh polygon shifted by (dx, dy).
func (poly Polygon) Translate(dx, dy float64) Polygon {
	result := make(Polygon, len(poly))
	for i, p := range poly {
		result[i] = Point{X: p.X + dx, Y: p.Y + dy}
	}
	return result
}

// Rotate returns a fresh polygon rotated by angle degrees counter-clockwise
// about centre.
func (poly Polygon) Rotate(angleDeg float64, centre Point) Polygon {
	result := make(Polygon, len(poly))
	for i, p := range poly {
		result[i] = p.Rotate(angleDeg, centre)
	}
	return result
}

// Negate returns a fresh polygon with every vertex negated.
func (poly Polygon) Negate() Polygon {
	result := make(Polygon, len(poly))
	for i, p := range poly {
		result[i] = p.Neg()
	}
	return result
}

// NormalizeToFirstVertex translates the polygon so that its first vertex
// sits at the origin. This is the anchor frame used for NFP reasoning.
func (poly Polygon) NormalizeToFirstVertex() Polygon {
	if len(poly) == 0 {
		return Polygon{}
	}
	return poly.Translate(-poly[0].X, -poly[0].Y)
}

// NormalizeToBBoxOrigin translates the polygon so that its bounding box
// minimum sits at the origin. This is the ingestion frame.
func (poly Polygon) NormalizeToBBoxOrigin() Polygon {
	if len(poly) == 0 {
		return Polygon{}
	}
	b := poly.Bounds()
	return poly.Translate(-b.X, -b.Y)
}

// ContainsPoint reports whether p lies inside the polygon using the
// standard ray-cast with the half-open edge convention, so points on a
// horizontal edge are not double counted.
func (poly Polygon) ContainsPoint(p Point) bool {
	inside := false
	n := len(poly)
	if n < 3 {
		return false
	}
	j := n - 1
	for i := 0; i < n; i++ {
		pi, pj := poly[i], poly[j]
		if (pi.Y > p.Y) != (pj.Y > p.Y) &&
			p.X < (pj.X-pi.X)*(p.Y-pi.Y)/(pj.Y-pi.Y)+pi.X {
			inside = !inside
		}
		j = i
	}
	return inside
}

// IsConvex reports whether the polygon is convex. The winding direction
// does not matter; collinear vertices are tolerated.
func (poly Polygon) IsConvex() bool {
	n := len(poly)
	if n < 4 {
		return n == 3
	}
	sign := 0
	for i := 0; i < n; i++ {
		a := poly[i]
		b := poly[(i+1)%n]
		c := poly[(i+2)%n]
		cross := (b.X-a.X)*(c.Y-b.Y) - (b.Y-a.Y)*(c.X-b.X)
		if cross == 0 {
			continue
		}
		s := 1
		if cross < 0 {
			s = -1
		}
		if sign == 0 {
			sign = s
		} else if s != sign {
			return false
		}
	}
	return true
}

// PointToSegmentDistance returns the shortest distance from p to the
// segment [a, b].
func PointToSegmentDistance(p, a, b Point) float64 {
	abx := b.X - a.X
	aby := b.Y - a.Y
	lenSq := abx*abx + aby*aby
	if lenSq == 0 {
		return p.Distance(a)
	}
	t := ((p.X-a.X)*abx + (p.Y-a.Y)*aby) / lenSq
	t = math.Max(0, math.Min(1, t))
	proj := Point{X: a.X + t*abx, Y: a.Y + t*aby}
	return p.Distance(proj)
}

// SegmentsIntersect reports whether segments [p1, p2] and [p3, p4]
// intersect, including endpoint touches and collinear overlap.
func SegmentsIntersect(p1, p2, p3, p4 Point) bool {
	d1 := cross(p3, p4, p1)
	d2 := cross(p3, p4, p2)
	d3 := cross(p1, p2, p3)
	d4 := cross(p1, p2, p4)

	if ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0)) {
		return true
	}
	if d1 == 0 && onSegment(p3, p4, p1) {
		return true
	}
	if d2 == 0 && onSegment(p3, p4, p2) {
		return true
	}
	if d3 == 0 && onSegment(p1, p2, p3) {
		return true
	}
	if d4 == 0 && onSegment(p1, p2, p4) {
		return true
	}
	return false
}

// cross returns the cross product of (b-a) x (c-a).
func cross(a, b, c Point) float64 {
	return (b.X-a.X)*(c.Y-a.Y) - (b.Y-a.Y)*(c.X-a.X)
}

// onSegment reports whether c, known to be collinear with [a, b], lies
// within the segment's bounding box.
func onSegment(a, b, c Point) bool {
	return math.Min(a.X, b.X) <= c.X && c.X <= math.Max(a.X, b.X) &&
		math.Min(a.Y, b.Y) <= c.Y && c.Y <= math.Max(a.Y, b.Y)
}

// Clone returns a deep copy of the polygon.
func (poly Polygon) Clone() Polygon {
	result := make(Polygon, len(poly))
	copy(result, poly)
	return result
}
