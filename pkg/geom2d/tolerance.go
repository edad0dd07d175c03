package geom2d

import (
	"errors"

	"gonum.org/v1/gonum/floats/scalar"
)

// ErrNegativeRadius is returned by callers that validate circle input at the
// boundary. The kernel itself never sees a negative radius.
var ErrNegativeRadius = errors.New("geom2d: negative radius")

// Tolerance holds the bands used to decide whether two values coincide.
// Linear applies to distances and to normalized line coefficients, Angular
// to the sine of the angle between two lines.
type Tolerance struct {
	Linear  float64 `yaml:"linear"`
	Angular float64 `yaml:"angular"`
}

// DefaultTolerance is the band the kernel applies to its own zero and sign
// tests. Workplanes may configure a different Tolerance for deduplication.
var DefaultTolerance = Tolerance{Linear: 1e-6, Angular: 1e-7}

// SamePoint reports whether p and q are closer than the linear tolerance.
func (t Tolerance) SamePoint(p, q Point) bool {
	return Distance(p, q) < t.Linear
}

// SameLine reports whether l and m describe the same infinite line. Both
// lines are expected to be normalized; the comparison accepts either sign
// of the coefficient triple.
func (t Tolerance) SameLine(l, m Line) bool {
	if l.IsDegenerate() || m.IsDegenerate() {
		return false
	}
	if t.equal(l.A, m.A) && t.equal(l.B, m.B) && t.equal(l.C, m.C) {
		return true
	}
	return t.equal(l.A, -m.A) && t.equal(l.B, -m.B) && t.equal(l.C, -m.C)
}

// SameCircle reports whether c and d share centre and radius within the
// linear tolerance.
func (t Tolerance) SameCircle(c, d Circle) bool {
	return t.SamePoint(c.Center, d.Center) && t.equal(c.Radius, d.Radius)
}

func (t Tolerance) equal(a, b float64) bool {
	return scalar.EqualWithinAbs(a, b, t.Linear)
}

// Unique reports whether p is farther than the linear tolerance from every
// point in pts.
func (t Tolerance) Unique(p Point, pts []Point) bool {
	for _, q := range pts {
		if t.SamePoint(p, q) {
			return false
		}
	}
	return true
}
