package geom2d

import (
	"fmt"
	"math"
)

// Point is a position (or vector) in the workplane's local 2D frame, in mm.
type Point struct {
	X, Y float64
}

// Pt is a convenience constructor for Point.
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Mul scales the point by s.
func (p Point) Mul(s float64) Point {
	return Point{X: p.X * s, Y: p.Y * s}
}

func (p Point) Dot(q Point) float64 {
	return p.X*q.X + p.Y*q.Y
}

// Cross returns the scalar 2D cross product.
func (p Point) Cross(q Point) float64 {
	return p.X*q.Y - p.Y*q.X
}

// Length returns the length of p taken as a vector.
func (p Point) Length() float64 {
	return math.Hypot(p.X, p.Y)
}

// Normalize returns a unit vector in the direction of p, or the zero vector
// when p has zero length.
func (p Point) Normalize() Point {
	l := p.Length()
	if l == 0 {
		return Point{}
	}
	return Point{X: p.X / l, Y: p.Y / l}
}

// Perp returns p rotated 90 degrees counterclockwise.
func (p Point) Perp() Point {
	return Point{X: -p.Y, Y: p.X}
}

func (p Point) String() string {
	return fmt.Sprintf("(%g, %g)", p.X, p.Y)
}

// Distance returns the euclidean distance between p1 and p2.
func Distance(p1, p2 Point) float64 {
	return p1.Sub(p2).Length()
}

// Midpoint returns the point a fraction f of the way from p1 to p2.
// f = 0.5 is the true midpoint.
func Midpoint(p1, p2 Point, f float64) Point {
	return Point{
		X: (p2.X-p1.X)*f + p1.X,
		Y: (p2.Y-p1.Y)*f + p1.Y,
	}
}

// Angle returns the direction from p0 to p1 in degrees, in (-180, 180].
func Angle(p0, p1 Point) float64 {
	return math.Atan2(p1.Y-p0.Y, p1.X-p0.X) * 180 / math.Pi
}

// Closer returns whichever of p1 and p2 is nearer to p0. Ties go to p2.
func Closer(p0, p1, p2 Point) Point {
	if p1.Sub(p0).Dot(p1.Sub(p0)) < p2.Sub(p0).Dot(p2.Sub(p0)) {
		return p1
	}
	return p2
}

// Farther returns whichever of p1 and p2 is farther from p0. Ties go to p2.
func Farther(p0, p1, p2 Point) Point {
	if p1.Sub(p0).Dot(p1.Sub(p0)) > p2.Sub(p0).Dot(p2.Sub(p0)) {
		return p1
	}
	return p2
}

// Rotate rotates p counterclockwise by deg degrees about center: translate
// center to the origin, rotate, translate back.
func Rotate(p Point, deg float64, center Point) Point {
	v := p.Sub(center)
	sin, cos := sincosDeg(deg)
	r := Point{
		X: v.X*cos - v.Y*sin,
		Y: v.Y*cos + v.X*sin,
	}
	return r.Add(center)
}

// RightHandSide reports whether p lies to the right of the directed line
// from start to end, using the signed angular comparison of the two
// directions seen from start. The comparison window is shifted into
// [0, 360) when the reference direction points below the x axis so that it
// never straddles the ±180° seam.
func RightHandSide(p, start, end Point) bool {
	angLine := Angle(start, end)
	angPt := Angle(start, p)
	if angLine >= 0 {
		return angLine > angPt && angPt > angLine-180
	}
	angLine += 360
	if angPt < 0 {
		angPt += 360
	}
	return angLine > angPt && angPt > angLine-180
}

// sincosDeg returns sin and cos of an angle in degrees, exact for multiples
// of 90 so that horizontal and vertical constructions carry no 1e-17 noise.
func sincosDeg(deg float64) (sin, cos float64) {
	if q := deg / 90; q == math.Trunc(q) && !math.IsInf(q, 0) {
		switch int(math.Mod(math.Mod(q, 4)+4, 4)) {
		case 0:
			return 0, 1
		case 1:
			return 1, 0
		case 2:
			return 0, -1
		case 3:
			return -1, 0
		}
	}
	return math.Sincos(deg * math.Pi / 180)
}
