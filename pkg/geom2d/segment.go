package geom2d

// Segment is a finite piece of line between two points.
type Segment struct {
	P0, P1 Point
}

// Length returns the distance between the segment's endpoints.
func (s Segment) Length() float64 {
	return Distance(s.P0, s.P1)
}

// Line returns the infinite line carrying the segment.
func (s Segment) Line() Line {
	return LineThrough(s.P0, s.P1)
}

// Reverse returns the segment with its endpoints swapped.
func (s Segment) Reverse() Segment {
	return Segment{P0: s.P1, P1: s.P0}
}

// Box is an axis-aligned rectangle.
type Box struct {
	Min, Max Point
}

// SquareBox returns the box centred on the origin with the given half width.
func SquareBox(half float64) Box {
	return Box{Min: Point{X: -half, Y: -half}, Max: Point{X: half, Y: half}}
}

// Contains reports whether p lies strictly inside b.
func (b Box) Contains(p Point) bool {
	return p.X > b.Min.X && p.X < b.Max.X && p.Y > b.Min.Y && p.Y < b.Max.Y
}

// Corners returns the four corners counterclockwise from Min.
func (b Box) Corners() [4]Point {
	return [4]Point{
		b.Min,
		{X: b.Max.X, Y: b.Min.Y},
		b.Max,
		{X: b.Min.X, Y: b.Max.Y},
	}
}

// ClipLineToBox returns the part of the infinite line l that crosses b.
// ok is false when the line misses the box or only touches a corner.
func ClipLineToBox(l Line, b Box) (Segment, bool) {
	if l.IsDegenerate() {
		return Segment{}, false
	}
	tol := DefaultTolerance.Linear
	corners := b.Corners()
	var pts []Point
	for i := range corners {
		p0, p1 := corners[i], corners[(i+1)%4]
		p, ok := IntersectLines(l, LineThrough(p0, p1))
		if !ok {
			continue
		}
		if p.X < b.Min.X-tol || p.X > b.Max.X+tol || p.Y < b.Min.Y-tol || p.Y > b.Max.Y+tol {
			continue
		}
		if DefaultTolerance.Unique(p, pts) {
			pts = append(pts, p)
		}
	}
	if len(pts) < 2 {
		return Segment{}, false
	}
	return Segment{P0: pts[0], P1: pts[1]}, true
}

// ExtendSegment returns the point d beyond p1 along the direction p0→p1.
func ExtendSegment(p0, p1 Point, d float64) Point {
	return p1.Add(p1.Sub(p0).Normalize().Mul(d))
}

// ShortenSegment returns the point d back from p1 toward p0.
func ShortenSegment(p0, p1 Point, d float64) Point {
	return p1.Sub(p1.Sub(p0).Normalize().Mul(d))
}

// CommonPoint finds the endpoint shared by segments a and b. It returns the
// shared point and, for each segment, the endpoint that is not shared.
func CommonPoint(a, b Segment, tol Tolerance) (common, otherA, otherB Point, ok bool) {
	switch {
	case tol.SamePoint(a.P0, b.P0):
		return a.P0, a.P1, b.P1, true
	case tol.SamePoint(a.P0, b.P1):
		return a.P0, a.P1, b.P0, true
	case tol.SamePoint(a.P1, b.P0):
		return a.P1, a.P0, b.P1, true
	case tol.SamePoint(a.P1, b.P1):
		return a.P1, a.P0, b.P0, true
	}
	return Point{}, Point{}, Point{}, false
}
