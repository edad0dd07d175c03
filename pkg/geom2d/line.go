package geom2d

import (
	"fmt"
	"math"
)

// Line is an infinite construction line ax + by + c = 0.
//
// Lines built by this package are normalized: √(a²+b²) = 1 with a > 0, or
// a == 0 and b > 0. That makes c the signed distance of the origin from the
// line and lets tolerance comparisons ignore coefficient scale. The zero
// value is the degenerate line and never intersects anything.
type Line struct {
	A, B, C float64
}

// NewLine returns the normalized form of ax + by + c = 0, or the degenerate
// line when a and b are both zero.
func NewLine(a, b, c float64) Line {
	n := math.Hypot(a, b)
	if n == 0 {
		return Line{}
	}
	a, b, c = a/n, b/n, c/n
	if a < 0 || (a == 0 && b < 0) {
		a, b, c = -a, -b, -c
	}
	return Line{A: a, B: b, C: c}
}

// IsDegenerate reports whether the line has no direction (a = b = 0).
func (l Line) IsDegenerate() bool {
	return l.A == 0 && l.B == 0
}

// Direction returns a unit vector along the line.
func (l Line) Direction() Point {
	return Point{X: -l.B, Y: l.A}.Normalize()
}

// Normal returns the unit normal (a, b).
func (l Line) Normal() Point {
	return Point{X: l.A, Y: l.B}.Normalize()
}

// SignedDistance returns the signed distance from p to the line, positive on
// the side the normal points to. A degenerate line yields NaN.
func (l Line) SignedDistance(p Point) float64 {
	return (l.A*p.X + l.B*p.Y + l.C) / math.Hypot(l.A, l.B)
}

// Contains reports whether p lies on the line within the default tolerance.
func (l Line) Contains(p Point) bool {
	if l.IsDegenerate() {
		return false
	}
	return math.Abs(l.SignedDistance(p)) < DefaultTolerance.Linear
}

// Location returns the point of the line closest to the origin.
func (l Line) Location() Point {
	return Project(l, Point{})
}

func (l Line) String() string {
	return fmt.Sprintf("%gx + %gy + %g = 0", l.A, l.B, l.C)
}

// LineThrough returns the line through p1 and p2.
//
// Precondition: p1 and p2 are distinct. When they coincide within the
// default linear tolerance the degenerate line is returned; every consumer
// in this module treats it as "no result".
func LineThrough(p1, p2 Point) Line {
	if DefaultTolerance.SamePoint(p1, p2) {
		return Line{}
	}
	a := p2.Y - p1.Y
	b := p1.X - p2.X
	c := p2.X*p1.Y - p1.X*p2.Y
	return NewLine(a, b, c)
}

// LineAtAngle returns the line through p whose direction is deg degrees
// counterclockwise from the positive x axis.
func LineAtAngle(p Point, deg float64) Line {
	dy, dx := sincosDeg(deg)
	a, b := dy, -dx
	return NewLine(a, b, -(a*p.X + b*p.Y))
}

// Horizontal returns the horizontal line through p.
func Horizontal(p Point) Line {
	return LineAtAngle(p, 0)
}

// Vertical returns the vertical line through p.
func Vertical(p Point) Line {
	return LineAtAngle(p, 90)
}

// IntersectLines intersects l1 and l2 under DefaultTolerance.
func IntersectLines(l1, l2 Line) (p Point, ok bool) {
	return DefaultTolerance.IntersectLines(l1, l2)
}

// IntersectLines solves the two implicit equations by Cramer's rule.
// ok is false when either line is degenerate or the lines are parallel
// (|a1·b2 − b1·a2| within t.Angular; for normalized lines that determinant
// is the sine of the angle between them).
func (t Tolerance) IntersectLines(l1, l2 Line) (p Point, ok bool) {
	if l1.IsDegenerate() || l2.IsDegenerate() {
		return Point{}, false
	}
	k := l1.A*l2.B - l1.B*l2.A
	if math.Abs(k) <= t.Angular*math.Hypot(l1.A, l1.B)*math.Hypot(l2.A, l2.B) {
		return Point{}, false
	}
	i := l1.B*l2.C - l1.C*l2.B
	j := l1.C*l2.A - l1.A*l2.C
	return Point{X: i / k, Y: j / k}, true
}

// Project returns the orthogonal projection of p onto l. A degenerate line
// returns p unchanged.
func Project(l Line, p Point) Point {
	denom := l.A*l.A + l.B*l.B
	if denom == 0 {
		return p
	}
	return Point{
		X: (l.B*l.B*p.X - l.A*l.B*p.Y - l.A*l.C) / denom,
		Y: (l.A*l.A*p.Y - l.A*l.B*p.X - l.B*l.C) / denom,
	}
}

// ParallelThrough returns the line through p parallel to l.
func ParallelThrough(l Line, p Point) Line {
	return NewLine(l.A, l.B, -(l.A*p.X + l.B*p.Y))
}

// PerpendicularThrough returns the line through p perpendicular to l.
func PerpendicularThrough(l Line, p Point) Line {
	return NewLine(l.B, -l.A, l.A*p.Y-l.B*p.X)
}

// OffsetLines returns the two lines parallel to l at distance d on either
// side of it.
func OffsetLines(l Line, d float64) (Line, Line) {
	c1 := math.Hypot(l.A, l.B) * d
	return NewLine(l.A, l.B, l.C+c1), NewLine(l.A, l.B, l.C-c1)
}

// AngleBisector returns the line through vertex whose direction lies a
// fraction f of the signed angular sweep from the direction toward p1 to the
// direction toward p2. The sweep is taken in (-180°, 180°]; f = 0.5 is the
// true bisector, other fractions give skewed bisectors. When vertex
// coincides with p1 or p2 there is no ray and the degenerate line is
// returned.
func AngleBisector(vertex, p1, p2 Point, f float64) Line {
	if vertex == p1 || vertex == p2 {
		return Line{}
	}
	ang1 := math.Atan2(p1.Y-vertex.Y, p1.X-vertex.X)
	ang2 := math.Atan2(p2.Y-vertex.Y, p2.X-vertex.X)
	delta := ang2 - ang1
	if delta > math.Pi {
		delta -= 2 * math.Pi
	} else if delta <= -math.Pi {
		delta += 2 * math.Pi
	}
	return LineAtAngle(vertex, (f*delta+ang1)*180/math.Pi)
}

// LinearBisector returns the line perpendicular to segment p1–p2 through the
// point a fraction f of the way from p1 to p2.
func LinearBisector(p1, p2 Point, f float64) Line {
	return PerpendicularThrough(LineThrough(p1, p2), Midpoint(p1, p2, f))
}
