package workplane

import (
	"errors"
	"fmt"
	"math"

	"github.com/chazu/sketchplane/pkg/geom2d"
)

var (
	// ErrDegenerateEdge is returned for a profile edge with no extent.
	ErrDegenerateEdge = errors.New("workplane: degenerate edge")
	// ErrEdgeIndex is returned when an edge index is out of range.
	ErrEdgeIndex = errors.New("workplane: edge index out of range")
	// ErrNoCommonVertex is returned when two edges picked for a fillet do
	// not share an endpoint.
	ErrNoCommonVertex = errors.New("workplane: edges share no vertex")
	// ErrFillet is returned when a fillet does not fit the corner.
	ErrFillet = errors.New("workplane: fillet does not fit")
)

// minArcSweep is the smallest arc sweep, in degrees, that is not treated as
// a zero-length arc.
const minArcSweep = 1e-6

// EdgeKind distinguishes profile edge shapes.
type EdgeKind int

const (
	EdgeLine EdgeKind = iota
	EdgeArc
	EdgeCircle
)

func (k EdgeKind) String() string {
	switch k {
	case EdgeLine:
		return "line"
	case EdgeArc:
		return "arc"
	case EdgeCircle:
		return "circle"
	default:
		return fmt.Sprintf("EdgeKind(%d)", int(k))
	}
}

// Edge is one finite piece of a profile in local coordinates.
//
// Lines run P0→P1. Arcs run from P0 to P1 about Center, sweeping Sweep
// degrees (positive counterclockwise). Circles use Center and Radius only.
type Edge struct {
	Kind   EdgeKind
	P0, P1 geom2d.Point
	Center geom2d.Point
	Radius float64
	Sweep  float64
}

// StartAngle returns the direction of P0 from the centre of an arc, in
// degrees.
func (e Edge) StartAngle() float64 {
	return geom2d.Angle(e.Center, e.P0)
}

// Length returns the edge length in mm.
func (e Edge) Length() float64 {
	switch e.Kind {
	case EdgeArc:
		return math.Abs(e.Sweep) * math.Pi / 180 * e.Radius
	case EdgeCircle:
		return 2 * math.Pi * e.Radius
	default:
		return geom2d.Distance(e.P0, e.P1)
	}
}

// Edges returns a copy of the profile edges in order.
func (wp *Workplane) Edges() []Edge {
	return append([]Edge(nil), wp.edges...)
}

// Line adds a straight profile edge.
func (wp *Workplane) Line(p1, p2 geom2d.Point) error {
	if wp.tol().SamePoint(p1, p2) {
		return fmt.Errorf("line %v %v: %w", p1, p2, ErrDegenerateEdge)
	}
	wp.edges = append(wp.edges, Edge{Kind: EdgeLine, P0: p1, P1: p2})
	return nil
}

// Rect adds the four edges of the axis-aligned rectangle with opposite
// corners p1 and p2, counterclockwise from the lower-left corner.
func (wp *Workplane) Rect(p1, p2 geom2d.Point) error {
	lo := geom2d.Pt(math.Min(p1.X, p2.X), math.Min(p1.Y, p2.Y))
	hi := geom2d.Pt(math.Max(p1.X, p2.X), math.Max(p1.Y, p2.Y))
	tol := wp.tol().Linear
	if hi.X-lo.X < tol || hi.Y-lo.Y < tol {
		return fmt.Errorf("rect %v %v: %w", p1, p2, ErrDegenerateEdge)
	}
	corners := geom2d.Box{Min: lo, Max: hi}.Corners()
	for i := range corners {
		wp.edges = append(wp.edges, Edge{Kind: EdgeLine, P0: corners[i], P1: corners[(i+1)%4]})
	}
	return nil
}

// Circle adds a full circle profile edge.
func (wp *Workplane) Circle(c geom2d.Circle) error {
	if c.Radius < 0 {
		return geom2d.ErrNegativeRadius
	}
	if c.Radius < wp.tol().Linear {
		return fmt.Errorf("circle %v: %w", c, ErrDegenerateEdge)
	}
	start := c.PointAt(0)
	wp.edges = append(wp.edges, Edge{Kind: EdgeCircle, P0: start, P1: start, Center: c.Center, Radius: c.Radius, Sweep: 360})
	return nil
}

// ArcCenter2Pts adds a counterclockwise arc about center starting at ps.
// The radius is |ps − center|; the arc ends where the ray from center
// toward pe crosses the circle.
func (wp *Workplane) ArcCenter2Pts(center, ps, pe geom2d.Point) error {
	tol := wp.tol()
	r := geom2d.Distance(center, ps)
	if r < tol.Linear || tol.SamePoint(center, pe) {
		return fmt.Errorf("arc about %v: %w", center, ErrDegenerateEdge)
	}
	end := center.Add(pe.Sub(center).Normalize().Mul(r))
	sweep := norm360(geom2d.Angle(center, end) - geom2d.Angle(center, ps))
	if sweep < minArcSweep {
		return fmt.Errorf("arc about %v: zero sweep: %w", center, ErrDegenerateEdge)
	}
	wp.edges = append(wp.edges, Edge{Kind: EdgeArc, P0: ps, P1: end, Center: center, Radius: r, Sweep: sweep})
	return nil
}

// Arc3Pts adds the arc from ps to pe passing through p3.
func (wp *Workplane) Arc3Pts(ps, pe, p3 geom2d.Point) error {
	c, ok := geom2d.CircleFrom3Points(ps, p3, pe)
	if !ok {
		return fmt.Errorf("arc %v %v %v: %w", ps, p3, pe, ErrDegenerateEdge)
	}
	start := geom2d.Angle(c.Center, ps)
	sweep := norm360(geom2d.Angle(c.Center, pe) - start)
	mid := norm360(geom2d.Angle(c.Center, p3) - start)
	if mid > sweep {
		sweep -= 360
	}
	wp.edges = append(wp.edges, Edge{Kind: EdgeArc, P0: ps, P1: pe, Center: c.Center, Radius: c.Radius, Sweep: sweep})
	return nil
}

// FilletCorner rounds the corner shared by line edges i and j with an arc
// of radius r. Both edges are trimmed back to the tangent points and the
// arc is inserted between them.
func (wp *Workplane) FilletCorner(r float64, i, j int) error {
	if r < 0 {
		return geom2d.ErrNegativeRadius
	}
	if i < 0 || j < 0 || i >= len(wp.edges) || j >= len(wp.edges) || i == j {
		return fmt.Errorf("fillet %d %d: %w", i, j, ErrEdgeIndex)
	}
	a, b := wp.edges[i], wp.edges[j]
	if a.Kind != EdgeLine || b.Kind != EdgeLine {
		return fmt.Errorf("fillet %d %d: only line edges can be filleted: %w", i, j, ErrFillet)
	}
	tol := wp.tol()
	common, farA, farB, ok := geom2d.CommonPoint(
		geom2d.Segment{P0: a.P0, P1: a.P1},
		geom2d.Segment{P0: b.P0, P1: b.P1}, tol)
	if !ok {
		return fmt.Errorf("fillet %d %d: %w", i, j, ErrNoCommonVertex)
	}
	f, ok := geom2d.FilletPoints(r, common, farA, farB)
	if !ok {
		return fmt.Errorf("fillet %d %d: %w", i, j, ErrFillet)
	}
	if geom2d.Distance(common, f.T1) > a.Length()+tol.Linear ||
		geom2d.Distance(common, f.T2) > b.Length()+tol.Linear {
		return fmt.Errorf("fillet %d %d: radius %g too large: %w", i, j, r, ErrFillet)
	}

	a = trimAt(a, common, f.T1, tol)
	b = trimAt(b, common, f.T2, tol)
	wp.edges[i], wp.edges[j] = a, b

	// The arc runs from the edge that ends at the corner to the edge that
	// starts there, and goes right after the former.
	from, to, after := f.T1, f.T2, i
	if !tol.SamePoint(a.P1, f.T1) && tol.SamePoint(b.P1, f.T2) {
		from, to, after = f.T2, f.T1, j
	}
	sweep := norm360(geom2d.Angle(f.Center, to) - geom2d.Angle(f.Center, from))
	if sweep > 180 {
		sweep -= 360
	}
	arc := Edge{Kind: EdgeArc, P0: from, P1: to, Center: f.Center, Radius: r, Sweep: sweep}
	wp.edges = append(wp.edges[:after+1], append([]Edge{arc}, wp.edges[after+1:]...)...)
	return nil
}

// EdgesAt returns the indices of line edges with an endpoint at p.
func (wp *Workplane) EdgesAt(p geom2d.Point) []int {
	tol := wp.tol()
	var idx []int
	for i, e := range wp.edges {
		if e.Kind == EdgeLine && (tol.SamePoint(e.P0, p) || tol.SamePoint(e.P1, p)) {
			idx = append(idx, i)
		}
	}
	return idx
}

// trimAt moves whichever endpoint of e sits on corner to p.
func trimAt(e Edge, corner, p geom2d.Point, tol geom2d.Tolerance) Edge {
	if tol.SamePoint(e.P0, corner) {
		e.P0 = p
	} else {
		e.P1 = p
	}
	return e
}

// IsClosed reports whether the profile bounds an area: its line and arc
// edges, taken in order, form a single loop, or it consists of circles only.
func (wp *Workplane) IsClosed() bool {
	chain, circles := wp.split()
	if len(chain) == 0 {
		return circles > 0
	}
	tol := wp.tol()
	for i, e := range chain {
		next := chain[(i+1)%len(chain)]
		if !tol.SamePoint(e.P1, next.P0) {
			return false
		}
	}
	return true
}

// Outline returns the closed loop of line and arc edges as a polygon, arcs
// sampled every maxStep degrees or finer. ok is false when the edges do not
// form a loop.
func (wp *Workplane) Outline(maxStep float64) ([]geom2d.Point, bool) {
	chain, _ := wp.split()
	if len(chain) == 0 || !wp.IsClosed() {
		return nil, false
	}
	if maxStep <= 0 {
		maxStep = 10
	}
	var pts []geom2d.Point
	for _, e := range chain {
		pts = append(pts, e.P0)
		if e.Kind != EdgeArc {
			continue
		}
		n := int(math.Ceil(math.Abs(e.Sweep) / maxStep))
		for k := 1; k < n; k++ {
			pts = append(pts, geom2d.Rotate(e.P0, e.Sweep*float64(k)/float64(n), e.Center))
		}
	}
	return pts, len(pts) >= 3
}

func (wp *Workplane) split() (chain []Edge, circles int) {
	for _, e := range wp.edges {
		if e.Kind == EdgeCircle {
			circles++
			continue
		}
		chain = append(chain, e)
	}
	return chain, circles
}

func (wp *Workplane) tol() geom2d.Tolerance {
	return wp.reg.Tolerance()
}

// norm360 maps an angle in degrees into [0, 360).
func norm360(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	return deg
}
