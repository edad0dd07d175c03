package geom2d

import (
	"fmt"
	"math"
)

// Circle is a construction circle, centre and radius in mm.
type Circle struct {
	Center Point
	Radius float64
}

// Circ is a convenience constructor for Circle.
func Circ(center Point, r float64) Circle {
	return Circle{Center: center, Radius: r}
}

// PointAt returns the point on the circle at deg degrees from the +x axis.
func (c Circle) PointAt(deg float64) Point {
	sin, cos := sincosDeg(deg)
	return Point{X: c.Center.X + c.Radius*cos, Y: c.Center.Y + c.Radius*sin}
}

func (c Circle) String() string {
	return fmt.Sprintf("circle(%v, r=%g)", c.Center, c.Radius)
}

// IntersectLineCircle intersects l and c under DefaultTolerance.
func IntersectLineCircle(l Line, c Circle) []Point {
	return DefaultTolerance.IntersectLineCircle(l, c)
}

// IntersectLineCircle returns the 0, 1 or 2 points where l meets c. A line
// whose distance from the centre is within t.Linear of the radius is
// treated as tangent and yields the single foot point. Order of two results
// is not significant.
func (t Tolerance) IntersectLineCircle(l Line, c Circle) []Point {
	if l.IsDegenerate() || c.Radius < 0 {
		return nil
	}
	tol := t.Linear
	foot := Project(l, c.Center)
	d := math.Abs(l.SignedDistance(c.Center))
	switch {
	case math.Abs(d-c.Radius) <= tol:
		return []Point{foot}
	case d > c.Radius:
		return nil
	}
	h := math.Sqrt(c.Radius*c.Radius - d*d)
	dir := l.Direction().Mul(h)
	return []Point{foot.Add(dir), foot.Sub(dir)}
}

// IntersectCircles intersects c1 and c2 under DefaultTolerance.
func IntersectCircles(c1, c2 Circle) []Point {
	return DefaultTolerance.IntersectCircles(c1, c2)
}

// IntersectCircles intersects two circles through their radical line.
// Coincident centres yield nothing (no finite solution set). Configurations
// within t.Linear of external or internal tangency are clamped to a single
// point on the line of centres.
func (t Tolerance) IntersectCircles(c1, c2 Circle) []Point {
	if c1.Radius < 0 || c2.Radius < 0 {
		return nil
	}
	tol := t.Linear
	delta := c2.Center.Sub(c1.Center)
	d := delta.Length()
	if d < tol {
		return nil
	}
	r1, r2 := c1.Radius, c2.Radius
	if d > r1+r2+tol || d < math.Abs(r1-r2)-tol {
		return nil
	}

	a := (r1*r1 - r2*r2 + d*d) / (2 * d)
	u := delta.Mul(1 / d)
	mid := c1.Center.Add(u.Mul(a))

	var h float64
	if math.Abs(d-(r1+r2)) > tol && math.Abs(d-math.Abs(r1-r2)) > tol {
		h = math.Sqrt(math.Max(0, r1*r1-a*a))
	}
	off := u.Perp().Mul(h)
	p1, p2 := mid.Add(off), mid.Sub(off)
	if t.SamePoint(p1, p2) {
		return []Point{mid}
	}
	return []Point{p1, p2}
}

// CircleFrom3Points returns the circle through three points. ok is false
// when the points are collinear or two of them coincide.
func CircleFrom3Points(p1, p2, p3 Point) (Circle, bool) {
	b1 := LinearBisector(p1, p2, 0.5)
	b2 := LinearBisector(p2, p3, 0.5)
	ctr, ok := IntersectLines(b1, b2)
	if !ok {
		return Circle{}, false
	}
	return Circle{Center: ctr, Radius: Distance(ctr, p1)}, true
}
