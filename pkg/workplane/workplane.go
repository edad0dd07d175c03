// Package workplane embeds 2D construction geometry and profile sketches in
// a plane of 3D space.
//
// A Workplane owns a Frame, a construction Registry and a list of profile
// edges. Construction commands add infinite lines and circles to the
// registry; profile commands add finite edges. Everything is stored in the
// plane's local coordinates (mm) and lifted to world space on demand.
package workplane

import (
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/chazu/sketchplane/pkg/construct"
	"github.com/chazu/sketchplane/pkg/geom2d"
)

// DefaultSize is the default border half-width in mm.
const DefaultSize = 100.0

// Options configures a new workplane.
type Options struct {
	Size      float64          // border half-width, mm
	Tolerance geom2d.Tolerance // dedup, intersection and tangency band
	Infinity  float64          // intersection cut-off, mm
	SeedAxes  bool             // add HV construction lines through the origin
}

// DefaultOptions returns the options used when none are given.
func DefaultOptions() Options {
	return Options{
		Size:      DefaultSize,
		Tolerance: geom2d.DefaultTolerance,
		Infinity:  construct.Infinity,
		SeedAxes:  true,
	}
}

// Workplane is a plane in world space carrying construction geometry and a
// profile. It is not safe for concurrent use.
type Workplane struct {
	ID    uuid.UUID
	Frame Frame

	size  float64
	reg   *construct.Registry
	edges []Edge
}

// New creates a workplane on frame. With SeedAxes set, horizontal and
// vertical construction lines through the local origin are added.
func New(frame Frame, opts Options) *Workplane {
	if opts.Size <= 0 {
		opts.Size = DefaultSize
	}
	if opts.Tolerance.Linear <= 0 {
		opts.Tolerance = geom2d.DefaultTolerance
	}
	wp := &Workplane{
		ID:    uuid.New(),
		Frame: frame,
		size:  opts.Size,
		reg:   construct.New(opts.Tolerance, opts.Infinity),
	}
	if opts.SeedAxes {
		wp.HVCL(geom2d.Point{})
	}
	return wp
}

// Size returns the border half-width in mm.
func (wp *Workplane) Size() float64 {
	return wp.size
}

// Registry exposes the construction registry.
func (wp *Workplane) Registry() *construct.Registry {
	return wp.reg
}

// ---------------------------------------------------------------------------
// Construction commands
// ---------------------------------------------------------------------------

// HCL adds a horizontal construction line through p.
func (wp *Workplane) HCL(p geom2d.Point) bool {
	return wp.reg.AddLine(geom2d.Horizontal(p))
}

// VCL adds a vertical construction line through p.
func (wp *Workplane) VCL(p geom2d.Point) bool {
	return wp.reg.AddLine(geom2d.Vertical(p))
}

// HVCL adds a horizontal and a vertical construction line through p and
// returns how many were new.
func (wp *Workplane) HVCL(p geom2d.Point) int {
	return count(wp.HCL(p), wp.VCL(p))
}

// ACL adds the construction line through p1 and p2. Coincident points add
// nothing.
func (wp *Workplane) ACL(p1, p2 geom2d.Point) bool {
	return wp.reg.AddLine(geom2d.LineThrough(p1, p2))
}

// ACLAngle adds the construction line through p at deg degrees.
func (wp *Workplane) ACLAngle(p geom2d.Point, deg float64) bool {
	return wp.reg.AddLine(geom2d.LineAtAngle(p, deg))
}

// LBCL adds the linear bisector of p1 and p2 at fraction f.
func (wp *Workplane) LBCL(p1, p2 geom2d.Point, f float64) bool {
	return wp.reg.AddLine(geom2d.LinearBisector(p1, p2, f))
}

// ABCL adds the angular bisector at vertex between the directions toward
// p1 and p2, at fraction f of the sweep.
func (wp *Workplane) ABCL(vertex, p1, p2 geom2d.Point, f float64) bool {
	if wp.reg.Tolerance().SamePoint(vertex, p1) || wp.reg.Tolerance().SamePoint(vertex, p2) {
		return false
	}
	return wp.reg.AddLine(geom2d.AngleBisector(vertex, p1, p2, f))
}

// ParCL adds the line through p parallel to l.
func (wp *Workplane) ParCL(l geom2d.Line, p geom2d.Point) bool {
	if l.IsDegenerate() {
		return false
	}
	return wp.reg.AddLine(geom2d.ParallelThrough(l, p))
}

// PerpCL adds the line through p perpendicular to l.
func (wp *Workplane) PerpCL(l geom2d.Line, p geom2d.Point) bool {
	if l.IsDegenerate() {
		return false
	}
	return wp.reg.AddLine(geom2d.PerpendicularThrough(l, p))
}

// OffsetCL adds both lines parallel to l at distance d and returns how many
// were new.
func (wp *Workplane) OffsetCL(l geom2d.Line, d float64) int {
	if l.IsDegenerate() {
		return 0
	}
	a, b := geom2d.OffsetLines(l, d)
	return count(wp.reg.AddLine(a), wp.reg.AddLine(b))
}

// TanCL adds the two lines through the external point p tangent to c and
// returns how many were new. A point inside the circle adds nothing.
func (wp *Workplane) TanCL(c geom2d.Circle, p geom2d.Point) int {
	t1, t2, ok := wp.tol().TangentPoints(c, p)
	if !ok {
		return 0
	}
	return count(wp.ACL(p, t1), wp.ACL(p, t2))
}

// Tan2CL adds the external tangent line of c1 and c2 selected by argument
// order.
func (wp *Workplane) Tan2CL(c1, c2 geom2d.Circle) bool {
	p1, p2, ok := wp.tol().ExternalTangent(c1, c2)
	if !ok {
		return false
	}
	return wp.ACL(p1, p2)
}

// CCirc adds a construction circle together with horizontal and vertical
// lines through its centre.
func (wp *Workplane) CCirc(c geom2d.Circle) (bool, error) {
	if c.Radius < 0 {
		return false, geom2d.ErrNegativeRadius
	}
	added := wp.reg.AddCircle(c)
	wp.HVCL(c.Center)
	return added, nil
}

func count(added ...bool) int {
	return lo.CountBy(added, func(b bool) bool { return b })
}

// ---------------------------------------------------------------------------
// Queries
// ---------------------------------------------------------------------------

// Border returns the square area the workplane displays.
func (wp *Workplane) Border() geom2d.Box {
	return geom2d.SquareBox(wp.size)
}

// Intersections returns every construction intersection point in local
// coordinates.
func (wp *Workplane) Intersections() []geom2d.Point {
	return wp.reg.Intersections()
}

// IntersectionPoints returns every construction intersection point lifted to
// world space.
func (wp *Workplane) IntersectionPoints() []v3.Vec {
	return lo.Map(wp.reg.Intersections(), func(p geom2d.Point, _ int) v3.Vec {
		return wp.Frame.ToWorld(p)
	})
}

// ClippedLines returns the part of each construction line inside the
// border. Lines that miss the border are left out.
func (wp *Workplane) ClippedLines() []geom2d.Segment {
	border := wp.Border()
	return lo.FilterMap(wp.reg.Lines(), func(l geom2d.Line, _ int) (geom2d.Segment, bool) {
		return geom2d.ClipLineToBox(l, border)
	})
}

// Circles returns the construction circles.
func (wp *Workplane) Circles() []geom2d.Circle {
	return wp.reg.Circles()
}

// Clear removes construction geometry and profile edges, keeping the frame.
func (wp *Workplane) Clear() {
	wp.reg.Reset()
	wp.edges = nil
}
