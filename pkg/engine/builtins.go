package engine

import (
	"errors"
	"fmt"
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"
	zygo "github.com/glycerine/zygomys/zygo"
	"github.com/samber/lo"

	"github.com/chazu/sketchplane/pkg/geom2d"
	"github.com/chazu/sketchplane/pkg/session"
	"github.com/chazu/sketchplane/pkg/workplane"
)

// builtinFunc is the signature zygomys expects for Go functions.
type builtinFunc = func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error)

// activeWorkplane returns the active workplane of s, creating one on the
// default XY frame when the script has not declared any.
func activeWorkplane(s *session.Session) *workplane.Workplane {
	wp, err := s.Active()
	if errors.Is(err, session.ErrNoWorkplane) {
		return s.NewWorkplane(workplane.DefaultFrame())
	}
	return wp
}

// registerBuiltins binds the sketch vocabulary into env. Every builtin
// writes through s, so a fresh session per evaluation keeps runs
// independent.
func registerBuiltins(env *zygo.Zlisp, s *session.Session) {
	add := func(name string, fn builtinFunc) { env.AddFunction(name, fn) }

	// -----------------------------------------------------------------------
	// Values and session state
	// -----------------------------------------------------------------------

	// (units :in)
	add("units", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("units: expected one unit name")
		}
		u, err := toKeywordString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("units: %w", err)
		}
		if err := s.SetUnits(u); err != nil {
			return zygo.SexpNull, fmt.Errorf("units: %w", err)
		}
		return zygo.SexpNull, nil
	})

	// (pt x y), coordinates in the current units.
	add("pt", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("pt: expected x and y, got %d arguments", len(args))
		}
		x, err := toNumber(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("pt: x: %w", err)
		}
		y, err := toNumber(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("pt: y: %w", err)
		}
		return &sexpPoint{p: s.PointToMM(x, y)}, nil
	})

	// (vec3 x y z), in the current units.
	add("vec3", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("vec3: expected 3 arguments, got %d", len(args))
		}
		var c [3]float64
		for i, a := range args {
			f, err := toNumber(a)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("vec3: component %d: %w", i, err)
			}
			c[i] = s.ToMM(f)
		}
		return &sexpVec3{vec: v3.Vec{X: c[0], Y: c[1], Z: c[2]}}, nil
	})

	// (circ p r) is a circle value; nothing is added to the sketch.
	add("circ", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		c, err := circleArgs("circ", s, args)
		if err != nil {
			return zygo.SexpNull, err
		}
		return &sexpCircle{c: c}, nil
	})

	// (through p1 p2) is a line value through two points.
	add("through", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		p1, p2, err := twoPoints("through", args)
		if err != nil {
			return zygo.SexpNull, err
		}
		l := geom2d.LineThrough(p1, p2)
		if l.IsDegenerate() {
			return zygo.SexpNull, fmt.Errorf("through: points coincide")
		}
		return &sexpLine{l: l}, nil
	})

	// (workplane :origin (vec3 ..) :normal (vec3 ..) :u (vec3 ..))
	add("workplane", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := splitArgs(args)
		frame := workplane.DefaultFrame()
		origin, normal, u := frame.Origin, frame.W, frame.U
		for k, dst := range map[string]*v3.Vec{"origin": &origin, "normal": &normal, "u": &u} {
			v, ok := pa.named[k]
			if !ok {
				continue
			}
			vec, err := toVec3(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("workplane: %s: %w", k, err)
			}
			*dst = vec
		}
		// Without an explicit :u, fall back to +Y when the normal is along X.
		if _, ok := pa.named["u"]; !ok && math.Abs(normal.Normalize().Dot(u)) > 0.999 {
			u = v3.Vec{Y: 1}
		}
		f, err := workplane.NewFrame(origin, normal, u)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("workplane: %w", err)
		}
		wp := s.NewWorkplane(f)
		return &sexpWorkplane{id: wp.ID}, nil
	})

	// (activate wp)
	add("activate", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("activate: expected a workplane")
		}
		ref, ok := args[0].(*sexpWorkplane)
		if !ok {
			return zygo.SexpNull, fmt.Errorf("activate: expected workplane, got %T (%s)", args[0], args[0].SexpString(nil))
		}
		if err := s.Activate(ref.id); err != nil {
			return zygo.SexpNull, fmt.Errorf("activate: %w", err)
		}
		return ref, nil
	})

	// -----------------------------------------------------------------------
	// Construction geometry
	// -----------------------------------------------------------------------

	onePoint := func(fn string, op func(*workplane.Workplane, geom2d.Point) zygo.Sexp) builtinFunc {
		return func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
			if len(args) != 1 {
				return zygo.SexpNull, fmt.Errorf("%s: expected one point", fn)
			}
			p, err := toPoint(args[0])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: %w", fn, err)
			}
			return op(activeWorkplane(s), p), nil
		}
	}
	add("hcl", onePoint("hcl", func(wp *workplane.Workplane, p geom2d.Point) zygo.Sexp {
		return boolSexp(wp.HCL(p))
	}))
	add("vcl", onePoint("vcl", func(wp *workplane.Workplane, p geom2d.Point) zygo.Sexp {
		return boolSexp(wp.VCL(p))
	}))
	add("hvcl", onePoint("hvcl", func(wp *workplane.Workplane, p geom2d.Point) zygo.Sexp {
		return intSexp(wp.HVCL(p))
	}))

	// (acl p1 p2) or (acl p :angle deg)
	add("acl", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := splitArgs(args)
		wp := activeWorkplane(s)
		if v, ok := pa.named["angle"]; ok {
			if err := pa.need("acl", 1); err != nil {
				return zygo.SexpNull, err
			}
			p, err := toPoint(pa.pos[0])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("acl: %w", err)
			}
			deg, err := toNumber(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("acl: angle: %w", err)
			}
			return boolSexp(wp.ACLAngle(p, deg)), nil
		}
		p1, p2, err := twoPoints("acl", pa.pos)
		if err != nil {
			return zygo.SexpNull, err
		}
		return boolSexp(wp.ACL(p1, p2)), nil
	})

	// (lbcl p1 p2 :f 0.5)
	add("lbcl", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := splitArgs(args)
		p1, p2, err := twoPoints("lbcl", pa.pos)
		if err != nil {
			return zygo.SexpNull, err
		}
		f, err := pa.floatOr("f", 0.5)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("lbcl: f: %w", err)
		}
		return boolSexp(activeWorkplane(s).LBCL(p1, p2, f)), nil
	})

	// (abcl vertex p1 p2 :f 0.5)
	add("abcl", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := splitArgs(args)
		if err := pa.need("abcl", 3); err != nil {
			return zygo.SexpNull, err
		}
		var pts [3]geom2d.Point
		for i, a := range pa.pos {
			p, err := toPoint(a)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("abcl: argument %d: %w", i+1, err)
			}
			pts[i] = p
		}
		f, err := pa.floatOr("f", 0.5)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("abcl: f: %w", err)
		}
		return boolSexp(activeWorkplane(s).ABCL(pts[0], pts[1], pts[2], f)), nil
	})

	// (parcl l p) and (perpcl l p)
	linePoint := func(fn string, op func(*workplane.Workplane, geom2d.Line, geom2d.Point) bool) builtinFunc {
		return func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
			if len(args) != 2 {
				return zygo.SexpNull, fmt.Errorf("%s: expected a line and a point", fn)
			}
			l, err := toLine(args[0])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: %w", fn, err)
			}
			p, err := toPoint(args[1])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: %w", fn, err)
			}
			return boolSexp(op(activeWorkplane(s), l, p)), nil
		}
	}
	add("parcl", linePoint("parcl", (*workplane.Workplane).ParCL))
	add("perpcl", linePoint("perpcl", (*workplane.Workplane).PerpCL))

	// (offsetcl l d) adds the lines at distance d on both sides of l.
	add("offsetcl", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("offsetcl: expected a line and a distance")
		}
		l, err := toLine(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("offsetcl: %w", err)
		}
		d, err := toNumber(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("offsetcl: distance: %w", err)
		}
		return intSexp(activeWorkplane(s).OffsetCL(l, s.ToMM(d))), nil
	})

	// (ccirc p r) adds a construction circle and HV lines at its centre.
	add("ccirc", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		c, err := circleArgs("ccirc", s, args)
		if err != nil {
			return zygo.SexpNull, err
		}
		if _, err := activeWorkplane(s).CCirc(c); err != nil {
			return zygo.SexpNull, fmt.Errorf("ccirc: %w", err)
		}
		return &sexpCircle{c: c}, nil
	})

	// (tancl c p) adds both tangents from p to c.
	add("tancl", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("tancl: expected a circle and a point")
		}
		c, err := toCircle(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("tancl: %w", err)
		}
		p, err := toPoint(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("tancl: %w", err)
		}
		return intSexp(activeWorkplane(s).TanCL(c, p)), nil
	})

	// (tan2cl c1 c2) adds one external tangent; swap the circles for the other.
	add("tan2cl", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("tan2cl: expected two circles")
		}
		c1, err := toCircle(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("tan2cl: first: %w", err)
		}
		c2, err := toCircle(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("tan2cl: second: %w", err)
		}
		return boolSexp(activeWorkplane(s).Tan2CL(c1, c2)), nil
	})

	// (intersections) returns the number of snap points.
	add("intersections", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		return intSexp(len(activeWorkplane(s).Intersections())), nil
	})

	// (clear) drops construction geometry and profile of the active workplane.
	add("clear", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		activeWorkplane(s).Clear()
		return zygo.SexpNull, nil
	})

	// -----------------------------------------------------------------------
	// Profile geometry
	// -----------------------------------------------------------------------

	// (line p1 p2)
	add("line", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		p1, p2, err := twoPoints("line", args)
		if err != nil {
			return zygo.SexpNull, err
		}
		if err := activeWorkplane(s).Line(p1, p2); err != nil {
			return zygo.SexpNull, fmt.Errorf("line: %w", err)
		}
		return zygo.SexpNull, nil
	})

	// (polyline p1 p2 ... :closed) or (polyline [p1 p2 ...] :closed)
	add("polyline", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := splitArgs(args)
		var pts []geom2d.Point
		if len(pa.pos) == 1 {
			list, err := toPoints(pa.pos[0])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("polyline: %w", err)
			}
			pts = list
		} else {
			for i, a := range pa.pos {
				p, err := toPoint(a)
				if err != nil {
					return zygo.SexpNull, fmt.Errorf("polyline: point %d: %w", i, err)
				}
				pts = append(pts, p)
			}
		}
		if len(pts) < 2 {
			return zygo.SexpNull, fmt.Errorf("polyline: need at least two points")
		}
		if _, ok := pa.named["closed"]; ok {
			pts = append(pts, pts[0])
		}
		wp := activeWorkplane(s)
		for i := 1; i < len(pts); i++ {
			if err := wp.Line(pts[i-1], pts[i]); err != nil {
				return zygo.SexpNull, fmt.Errorf("polyline: segment %d: %w", i-1, err)
			}
		}
		return intSexp(len(pts) - 1), nil
	})

	// (rect p1 p2)
	add("rect", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		p1, p2, err := twoPoints("rect", args)
		if err != nil {
			return zygo.SexpNull, err
		}
		if err := activeWorkplane(s).Rect(p1, p2); err != nil {
			return zygo.SexpNull, fmt.Errorf("rect: %w", err)
		}
		return zygo.SexpNull, nil
	})

	// (circle p r) adds a profile circle and returns it as a circle value.
	add("circle", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		c, err := circleArgs("circle", s, args)
		if err != nil {
			return zygo.SexpNull, err
		}
		if err := activeWorkplane(s).Circle(c); err != nil {
			return zygo.SexpNull, fmt.Errorf("circle: %w", err)
		}
		return &sexpCircle{c: c}, nil
	})

	// (arc center start end) sweeps counterclockwise from start.
	add("arc", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pts, err := threePoints("arc", args)
		if err != nil {
			return zygo.SexpNull, err
		}
		if err := activeWorkplane(s).ArcCenter2Pts(pts[0], pts[1], pts[2]); err != nil {
			return zygo.SexpNull, fmt.Errorf("arc: %w", err)
		}
		return zygo.SexpNull, nil
	})

	// (arc-thru start end via)
	add("arc_thru", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pts, err := threePoints("arc-thru", args)
		if err != nil {
			return zygo.SexpNull, err
		}
		if err := activeWorkplane(s).Arc3Pts(pts[0], pts[1], pts[2]); err != nil {
			return zygo.SexpNull, fmt.Errorf("arc-thru: %w", err)
		}
		return zygo.SexpNull, nil
	})

	// (fillet r :corner p [:a p :b p]) or (fillet r i j)
	add("fillet", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := splitArgs(args)
		if len(pa.pos) == 0 {
			return zygo.SexpNull, fmt.Errorf("fillet: missing radius")
		}
		r, err := toNumber(pa.pos[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("fillet: radius: %w", err)
		}
		r = s.ToMM(r)
		wp := activeWorkplane(s)

		var i, j int
		if v, ok := pa.named["corner"]; ok {
			corner, err := toPoint(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("fillet: corner: %w", err)
			}
			i, j, err = cornerEdges(wp, corner, pa)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("fillet: %w", err)
			}
		} else {
			if err := pa.need("fillet", 3); err != nil {
				return zygo.SexpNull, err
			}
			if i, err = toInt(pa.pos[1]); err != nil {
				return zygo.SexpNull, fmt.Errorf("fillet: first edge: %w", err)
			}
			if j, err = toInt(pa.pos[2]); err != nil {
				return zygo.SexpNull, fmt.Errorf("fillet: second edge: %w", err)
			}
		}
		if err := wp.FilletCorner(r, i, j); err != nil {
			return zygo.SexpNull, fmt.Errorf("fillet: %w", err)
		}
		return zygo.SexpNull, nil
	})
}

// cornerEdges picks the two line edges meeting at corner. With :a and :b
// the edges whose lines pass nearest those points win; otherwise exactly
// two edges must meet there.
func cornerEdges(wp *workplane.Workplane, corner geom2d.Point, pa callArgs) (int, int, error) {
	cands := wp.EdgesAt(corner)
	if len(cands) < 2 {
		return 0, 0, fmt.Errorf("corner %v: %w", corner, workplane.ErrNoCommonVertex)
	}
	va, okA := pa.named["a"]
	vb, okB := pa.named["b"]
	if !okA || !okB {
		if len(cands) != 2 {
			return 0, 0, fmt.Errorf("corner %v is shared by %d edges, pick two with :a and :b", corner, len(cands))
		}
		return cands[0], cands[1], nil
	}
	a, err := toPoint(va)
	if err != nil {
		return 0, 0, fmt.Errorf("a: %w", err)
	}
	b, err := toPoint(vb)
	if err != nil {
		return 0, 0, fmt.Errorf("b: %w", err)
	}
	edges := wp.Edges()
	nearest := func(p geom2d.Point, skip int) int {
		return lo.MinBy(lo.Without(cands, skip), func(x, y int) bool {
			return edgeDistance(edges[x], p) < edgeDistance(edges[y], p)
		})
	}
	i := nearest(a, -1)
	return i, nearest(b, i), nil
}

func edgeDistance(e workplane.Edge, p geom2d.Point) float64 {
	return math.Abs(geom2d.LineThrough(e.P0, e.P1).SignedDistance(p))
}

func twoPoints(fn string, args []zygo.Sexp) (geom2d.Point, geom2d.Point, error) {
	if len(args) != 2 {
		return geom2d.Point{}, geom2d.Point{}, fmt.Errorf("%s: expected two points, got %d arguments", fn, len(args))
	}
	p1, err := toPoint(args[0])
	if err != nil {
		return geom2d.Point{}, geom2d.Point{}, fmt.Errorf("%s: first: %w", fn, err)
	}
	p2, err := toPoint(args[1])
	if err != nil {
		return geom2d.Point{}, geom2d.Point{}, fmt.Errorf("%s: second: %w", fn, err)
	}
	return p1, p2, nil
}

func threePoints(fn string, args []zygo.Sexp) ([3]geom2d.Point, error) {
	var pts [3]geom2d.Point
	if len(args) != 3 {
		return pts, fmt.Errorf("%s: expected three points, got %d arguments", fn, len(args))
	}
	for i, a := range args {
		p, err := toPoint(a)
		if err != nil {
			return pts, fmt.Errorf("%s: argument %d: %w", fn, i+1, err)
		}
		pts[i] = p
	}
	return pts, nil
}

// circleArgs reads (fn centre radius), converting the radius to mm.
func circleArgs(fn string, s *session.Session, args []zygo.Sexp) (geom2d.Circle, error) {
	if len(args) != 2 {
		return geom2d.Circle{}, fmt.Errorf("%s: expected centre and radius", fn)
	}
	c, err := toPoint(args[0])
	if err != nil {
		return geom2d.Circle{}, fmt.Errorf("%s: centre: %w", fn, err)
	}
	r, err := toNumber(args[1])
	if err != nil {
		return geom2d.Circle{}, fmt.Errorf("%s: radius: %w", fn, err)
	}
	if r < 0 {
		return geom2d.Circle{}, fmt.Errorf("%s: %w", fn, geom2d.ErrNegativeRadius)
	}
	return geom2d.Circ(c, s.ToMM(r)), nil
}
