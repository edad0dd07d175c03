package engine

import (
	"fmt"
	"strings"

	v3 "github.com/deadsy/sdfx/vec/v3"
	zygo "github.com/glycerine/zygomys/zygo"
	"github.com/google/uuid"

	"github.com/chazu/sketchplane/pkg/geom2d"
)

// ---------------------------------------------------------------------------
// Sketch values carried through the interpreter
// ---------------------------------------------------------------------------

// sexpPoint is a point in workplane coordinates, already in millimetres.
type sexpPoint struct {
	p geom2d.Point
}

func (p *sexpPoint) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(pt %g %g)", p.p.X, p.p.Y)
}
func (p *sexpPoint) Type() *zygo.RegisteredType { return nil }

// sexpVec3 is a world space vector in millimetres.
type sexpVec3 struct {
	vec v3.Vec
}

func (v *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %g %g %g)", v.vec.X, v.vec.Y, v.vec.Z)
}
func (v *sexpVec3) Type() *zygo.RegisteredType { return nil }

type sexpCircle struct {
	c geom2d.Circle
}

func (c *sexpCircle) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(circ (pt %g %g) %g)", c.c.Center.X, c.c.Center.Y, c.c.Radius)
}
func (c *sexpCircle) Type() *zygo.RegisteredType { return nil }

// sexpLine is an infinite line value. It is not in any registry until a
// construction builtin adds something derived from it.
type sexpLine struct {
	l geom2d.Line
}

func (l *sexpLine) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(line-value %g %g %g)", l.l.A, l.l.B, l.l.C)
}
func (l *sexpLine) Type() *zygo.RegisteredType { return nil }

// sexpWorkplane refers to a workplane of the evaluating session.
type sexpWorkplane struct {
	id uuid.UUID
}

func (w *sexpWorkplane) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(workplane %s)", w.id.String()[:8])
}
func (w *sexpWorkplane) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Call arguments
// ---------------------------------------------------------------------------

// kwPrefix marks a string literal that preprocessSource made from a :keyword.
const kwPrefix = "__kw_"

func keywordName(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok || !strings.HasPrefix(str.S, kwPrefix) {
		return "", false
	}
	return str.S[len(kwPrefix):], true
}

// callArgs is a builtin's argument list split into the positional values
// and the :name value pairs.
type callArgs struct {
	pos   []zygo.Sexp
	named map[string]zygo.Sexp
}

func splitArgs(args []zygo.Sexp) callArgs {
	out := callArgs{named: map[string]zygo.Sexp{}}
	for i := 0; i < len(args); i++ {
		name, ok := keywordName(args[i])
		switch {
		case !ok:
			out.pos = append(out.pos, args[i])
		case i+1 < len(args):
			out.named[name] = args[i+1]
			i++
		default:
			// Trailing keyword: a flag.
			out.named[name] = zygo.SexpNull
		}
	}
	return out
}

// need checks the positional argument count.
func (a callArgs) need(fn string, n int) error {
	if len(a.pos) != n {
		return fmt.Errorf("%s: expected %d positional arguments, got %d", fn, n, len(a.pos))
	}
	return nil
}

// floatOr returns keyword k as a number, or def when it is absent.
func (a callArgs) floatOr(k string, def float64) (float64, error) {
	v, ok := a.named[k]
	if !ok {
		return def, nil
	}
	return toNumber(v)
}

// ---------------------------------------------------------------------------
// Conversions
// ---------------------------------------------------------------------------

// toNumber accepts integers and floats alike.
func toNumber(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toInt extracts a whole number, used for edge indices.
func toInt(s zygo.Sexp) (int, error) {
	if v, ok := s.(*zygo.SexpInt); ok {
		return int(v.Val), nil
	}
	return 0, fmt.Errorf("expected integer, got %T (%s)", s, s.SexpString(nil))
}

// toKeywordString reads :in and "in" the same way.
func toKeywordString(s zygo.Sexp) (string, error) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", fmt.Errorf("expected keyword or string, got %T (%s)", s, s.SexpString(nil))
	}
	return strings.TrimPrefix(str.S, kwPrefix), nil
}

func toPoint(s zygo.Sexp) (geom2d.Point, error) {
	if p, ok := s.(*sexpPoint); ok {
		return p.p, nil
	}
	return geom2d.Point{}, fmt.Errorf("expected point, got %T (%s)", s, s.SexpString(nil))
}

func toVec3(s zygo.Sexp) (v3.Vec, error) {
	if v, ok := s.(*sexpVec3); ok {
		return v.vec, nil
	}
	return v3.Vec{}, fmt.Errorf("expected vec3, got %T (%s)", s, s.SexpString(nil))
}

func toCircle(s zygo.Sexp) (geom2d.Circle, error) {
	if c, ok := s.(*sexpCircle); ok {
		return c.c, nil
	}
	return geom2d.Circle{}, fmt.Errorf("expected circle, got %T (%s)", s, s.SexpString(nil))
}

func toLine(s zygo.Sexp) (geom2d.Line, error) {
	if l, ok := s.(*sexpLine); ok {
		return l.l, nil
	}
	return geom2d.Line{}, fmt.Errorf("expected line, got %T (%s)", s, s.SexpString(nil))
}

// toPoints accepts either a list or array of points.
func toPoints(s zygo.Sexp) ([]geom2d.Point, error) {
	items, err := listItems(s)
	if err != nil {
		return nil, err
	}
	pts := make([]geom2d.Point, 0, len(items))
	for i, item := range items {
		p, err := toPoint(item)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		pts = append(pts, p)
	}
	return pts, nil
}

// listItems flattens a list, an array or the empty list.
func listItems(s zygo.Sexp) ([]zygo.Sexp, error) {
	switch v := s.(type) {
	case *zygo.SexpPair:
		return zygo.ListToArray(v)
	case *zygo.SexpArray:
		return v.Val, nil
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return nil, nil
		}
	}
	return nil, fmt.Errorf("expected a list of values, got %T", s)
}

func boolSexp(b bool) zygo.Sexp {
	return &zygo.SexpBool{Val: b}
}

func intSexp(n int) zygo.Sexp {
	return &zygo.SexpInt{Val: int64(n)}
}
