// Package construct holds the construction lines and circles of one
// workplane and answers intersection queries over them.
package construct

import (
	"math"

	"github.com/samber/lo"

	"github.com/chazu/sketchplane/pkg/geom2d"
)

// Infinity is the default cut-off beyond which intersection points are
// treated as lying at infinity and dropped (mm from the origin, per axis).
const Infinity = 1e10

// Registry is an accumulate-and-query set of construction geometry.
//
// A Registry is not safe for concurrent use. Callers that share one across
// goroutines must guard every call with a single mutex.
type Registry struct {
	tol      geom2d.Tolerance
	infinity float64
	lines    []geom2d.Line
	circles  []geom2d.Circle
}

// New returns an empty registry using tol for deduplication and discarding
// intersection points whose coordinates reach infinity in magnitude. A
// non-positive infinity selects the package default.
func New(tol geom2d.Tolerance, infinity float64) *Registry {
	if infinity <= 0 {
		infinity = Infinity
	}
	return &Registry{tol: tol, infinity: infinity}
}

// NewDefault returns an empty registry with the default tolerance.
func NewDefault() *Registry {
	return New(geom2d.DefaultTolerance, Infinity)
}

// Tolerance returns the band used for deduplication.
func (r *Registry) Tolerance() geom2d.Tolerance {
	return r.tol
}

// AddLine inserts l unless an equivalent line is already present. l is
// normalized first, so any scaling of the same coefficients matches.
// Degenerate lines are refused. It reports whether l was inserted.
func (r *Registry) AddLine(l geom2d.Line) bool {
	l = geom2d.NewLine(l.A, l.B, l.C)
	if l.IsDegenerate() {
		Logger().Debug("construct: refused degenerate line")
		return false
	}
	if lo.ContainsBy(r.lines, func(m geom2d.Line) bool { return r.tol.SameLine(l, m) }) {
		Logger().Debug("construct: duplicate line", "line", l.String())
		return false
	}
	r.lines = append(r.lines, l)
	return true
}

// AddCircle inserts c unless a circle with the same centre and radius is
// already present. Circles with a negative or non-finite radius are refused.
// It reports whether c was inserted.
func (r *Registry) AddCircle(c geom2d.Circle) bool {
	if c.Radius < 0 || math.IsNaN(c.Radius) || math.IsInf(c.Radius, 0) {
		Logger().Debug("construct: refused circle", "circle", c.String())
		return false
	}
	if lo.ContainsBy(r.circles, func(d geom2d.Circle) bool { return r.tol.SameCircle(c, d) }) {
		Logger().Debug("construct: duplicate circle", "circle", c.String())
		return false
	}
	r.circles = append(r.circles, c)
	return true
}

// Lines returns a copy of the registered lines in insertion order.
func (r *Registry) Lines() []geom2d.Line {
	return append([]geom2d.Line(nil), r.lines...)
}

// Circles returns a copy of the registered circles in insertion order.
func (r *Registry) Circles() []geom2d.Circle {
	return append([]geom2d.Circle(nil), r.circles...)
}

// Len returns the number of registered lines and circles.
func (r *Registry) Len() (lines, circles int) {
	return len(r.lines), len(r.circles)
}

// Reset empties the registry.
func (r *Registry) Reset() {
	r.lines = nil
	r.circles = nil
}

// Intersections computes every line-line, line-circle and circle-circle
// intersection among the registered entries. The result is recomputed on
// each call and deduplicated by pairwise distance. The result is never nil.
func (r *Registry) Intersections() []geom2d.Point {
	pts := make([]geom2d.Point, 0)
	add := func(p geom2d.Point) {
		if math.Abs(p.X) >= r.infinity || math.Abs(p.Y) >= r.infinity {
			Logger().Debug("construct: dropped point at infinity", "point", p.String())
			return
		}
		if r.tol.Unique(p, pts) {
			pts = append(pts, p)
		}
	}

	for i, l1 := range r.lines {
		for _, l2 := range r.lines[i+1:] {
			if p, ok := r.tol.IntersectLines(l1, l2); ok {
				add(p)
			}
		}
	}
	for _, l := range r.lines {
		for _, c := range r.circles {
			for _, p := range r.tol.IntersectLineCircle(l, c) {
				add(p)
			}
		}
	}
	for i, c1 := range r.circles {
		for _, c2 := range r.circles[i+1:] {
			for _, p := range r.tol.IntersectCircles(c1, c2) {
				add(p)
			}
		}
	}
	return pts
}
