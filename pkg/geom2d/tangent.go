package geom2d

import "math"

// TangentPoints finds the tangent points under DefaultTolerance.
func TangentPoints(c Circle, p Point) (t1, t2 Point, ok bool) {
	return DefaultTolerance.TangentPoints(c, p)
}

// TangentPoints returns the two points on c where lines through the external
// point p touch the circle. ok is false when p lies inside the circle or
// within t.Linear of it.
func (t Tolerance) TangentPoints(c Circle, p Point) (t1, t2 Point, ok bool) {
	tol := t.Linear
	d := Distance(c.Center, p)
	if c.Radius < 0 || d <= c.Radius+tol {
		return Point{}, Point{}, false
	}
	theta := math.Asin(math.Min(1, c.Radius/d))
	ang0 := math.Atan2(p.Y-c.Center.Y, p.X-c.Center.X)
	// Angles at the centre between the line of centres and each radius.
	ang1 := ang0 + math.Pi/2 - theta
	ang2 := ang0 - math.Pi/2 + theta
	t1 = c.Center.Add(Point{X: math.Cos(ang1), Y: math.Sin(ang1)}.Mul(c.Radius))
	t2 = c.Center.Add(Point{X: math.Cos(ang2), Y: math.Sin(ang2)}.Mul(c.Radius))
	return t1, t2, true
}

// ExternalTangent finds one external tangent under DefaultTolerance.
func ExternalTangent(c1, c2 Circle) (p1, p2 Point, ok bool) {
	return DefaultTolerance.ExternalTangent(c1, c2)
}

// ExternalTangent returns the tangent points on c1 and c2 of one external
// tangent line of the pair. Which of the two external tangents is returned
// depends on argument order: swapping c1 and c2 returns the other one.
// ok is false when the centres coincide or one circle lies inside the other.
func (t Tolerance) ExternalTangent(c1, c2 Circle) (p1, p2 Point, ok bool) {
	if c1.Radius < 0 || c2.Radius < 0 {
		return Point{}, Point{}, false
	}
	d := Distance(c1.Center, c2.Center)
	if d <= t.Linear || math.Abs(c2.Radius-c1.Radius) >= d {
		return Point{}, Point{}, false
	}
	angLoc := math.Atan2(c1.Center.Y-c2.Center.Y, c1.Center.X-c2.Center.X)
	theta := math.Asin((c2.Radius - c1.Radius) / d)
	ang := angLoc + math.Pi/2 - theta
	dir := Point{X: math.Cos(ang), Y: math.Sin(ang)}
	return c1.Center.Add(dir.Mul(c1.Radius)), c2.Center.Add(dir.Mul(c2.Radius)), true
}
