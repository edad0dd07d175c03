package engine

import (
	"math"
	"strings"
	"testing"

	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/chazu/sketchplane/pkg/geom2d"
	"github.com/chazu/sketchplane/pkg/session"
	"github.com/chazu/sketchplane/pkg/workplane"
)

func near(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func nearPoint(a, b geom2d.Point) bool {
	return near(a.X, b.X) && near(a.Y, b.Y)
}

// run evaluates src against a fresh session and returns the value of the
// last expression.
func run(t *testing.T, src string) (zygo.Sexp, *session.Session) {
	t.Helper()
	s := session.New(workplane.DefaultOptions())
	env := zygo.NewZlispSandbox()
	defer env.Stop()
	registerBuiltins(env, s)
	if err := env.LoadString(preprocessSource(src)); err != nil {
		t.Fatalf("load: %v", err)
	}
	v, err := env.Run()
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	return v, s
}

// runErr evaluates src and returns the runtime error.
func runErr(t *testing.T, src string) error {
	t.Helper()
	s := session.New(workplane.DefaultOptions())
	env := zygo.NewZlispSandbox()
	defer env.Stop()
	registerBuiltins(env, s)
	if err := env.LoadString(preprocessSource(src)); err != nil {
		return err
	}
	_, err := env.Run()
	return err
}

func active(t *testing.T, s *session.Session) *workplane.Workplane {
	t.Helper()
	wp, err := s.Active()
	if err != nil {
		t.Fatalf("Active(): %v", err)
	}
	return wp
}

func wantInt(t *testing.T, v zygo.Sexp, want int) {
	t.Helper()
	n, ok := v.(*zygo.SexpInt)
	if !ok {
		t.Fatalf("result = %T (%s), want integer", v, v.SexpString(nil))
	}
	if int(n.Val) != want {
		t.Errorf("result = %d, want %d", n.Val, want)
	}
}

func wantBool(t *testing.T, v zygo.Sexp, want bool) {
	t.Helper()
	b, ok := v.(*zygo.SexpBool)
	if !ok {
		t.Fatalf("result = %T (%s), want bool", v, v.SexpString(nil))
	}
	if b.Val != want {
		t.Errorf("result = %v, want %v", b.Val, want)
	}
}

// ---------------------------------------------------------------------------
// Preprocessing tests
// ---------------------------------------------------------------------------

func TestPreprocessKeywords(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		expect string
	}{
		{
			name:   "simple keyword",
			input:  `(units :in)`,
			expect: `(units "__kw_in")`,
		},
		{
			name:   "multiple keywords",
			input:  `(fillet 2 :corner c :a p)`,
			expect: `(fillet 2 "__kw_corner" c "__kw_a" p)`,
		},
		{
			name:   "keyword in string preserved",
			input:  `"thing with :keyword inside"`,
			expect: `"thing with :keyword inside"`,
		},
		{
			name:   "assignment operator preserved",
			input:  `(def x := 10)`,
			expect: `(def x := 10)`,
		},
		{
			name:   "kebab-case identifier",
			input:  `(arc-thru a b c)`,
			expect: `(arc_thru a b c)`,
		},
		{
			name:   "minus operator preserved",
			input:  `(- 10 5)`,
			expect: `(- 10 5)`,
		},
		{
			name:   "negative literal preserved",
			input:  `(pt -3 4)`,
			expect: `(pt -3 4)`,
		},
		{
			name:   "comment converted to // style",
			input:  `;; comment with :keyword`,
			expect: `// comment with :keyword`,
		},
		{
			name:   "hyphen in keyword preserved",
			input:  `:seed-axes`,
			expect: `"__kw_seed-axes"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := preprocessSource(tt.input)
			if got != tt.expect {
				t.Errorf("preprocessSource(%q) = %q, want %q", tt.input, got, tt.expect)
			}
		})
	}
}

func TestParseArgs(t *testing.T) {
	args := []zygo.Sexp{
		&zygo.SexpInt{Val: 2},
		&zygo.SexpStr{S: kwPrefix + "f"},
		&zygo.SexpFloat{Val: 0.25},
		&zygo.SexpStr{S: kwPrefix + "closed"},
	}
	pa := splitArgs(args)
	if len(pa.pos) != 1 {
		t.Fatalf("positional = %d, want 1", len(pa.pos))
	}
	f, err := pa.floatOr("f", 0.5)
	if err != nil || f != 0.25 {
		t.Errorf("floatOr(f) = %v, %v, want 0.25", f, err)
	}
	if _, ok := pa.named["closed"]; !ok {
		t.Error("trailing keyword should be recorded as a flag")
	}
	if d, _ := pa.floatOr("missing", 0.5); d != 0.5 {
		t.Errorf("floatOr(missing) = %v, want default 0.5", d)
	}
}

// ---------------------------------------------------------------------------
// Construction builtins
// ---------------------------------------------------------------------------

func TestImplicitWorkplane(t *testing.T) {
	_, s := run(t, `(hcl (pt 0 10))`)
	if n := len(s.Workplanes()); n != 1 {
		t.Fatalf("expected one implicit workplane, got %d", n)
	}
	wp := active(t, s)
	// Seeded axes plus the scripted line.
	if n := len(wp.Registry().Lines()); n != 3 {
		t.Errorf("lines = %d, want 3", n)
	}
	if n := len(wp.Intersections()); n != 2 {
		t.Errorf("intersections = %d, want 2", n)
	}
}

func TestIntersectionsBuiltin(t *testing.T) {
	v, _ := run(t, `
(hvcl (pt 5 5))
(intersections)
`)
	wantInt(t, v, 4)
}

func TestHVCLReturnsNewCount(t *testing.T) {
	// The horizontal through (0, 7) is new; the vertical x=0 is seeded.
	v, _ := run(t, `(hvcl (pt 0 7))`)
	wantInt(t, v, 1)
}

func TestDuplicateLineRejected(t *testing.T) {
	v, _ := run(t, `(hcl (pt 3 0))`)
	wantBool(t, v, false)
}

func TestACL(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want bool
	}{
		{"two points", `(acl (pt 0 0) (pt 10 10))`, true},
		{"angle", `(acl (pt 0 0) :angle 45)`, true},
		{"same line twice", `(acl (pt 0 0) (pt 10 10)) (acl (pt 1 1) :angle 225)`, false},
		{"coincident points", `(acl (pt 2 2) (pt 2 2))`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, _ := run(t, tt.src)
			wantBool(t, v, tt.want)
		})
	}
}

func TestLBCLFraction(t *testing.T) {
	v, s := run(t, `
(lbcl (pt 0 0) (pt 10 0) :f 0.25)
(vcl (pt 2.5 -4))
`)
	wantBool(t, v, false)
	if n := len(active(t, s).Registry().Lines()); n != 3 {
		t.Errorf("lines = %d, want 3", n)
	}
}

func TestABCLDefaultsToHalf(t *testing.T) {
	// Bisecting the +x and +y directions gives the 45 degree line.
	v, _ := run(t, `
(abcl (pt 0 0) (pt 10 0) (pt 0 10))
(acl (pt 0 0) :angle 45)
`)
	wantBool(t, v, false)
}

func TestParallelPerpendicularOffset(t *testing.T) {
	_, s := run(t, `
(def l (through (pt 0 0) (pt 10 10)))
(parcl l (pt 0 5))
(perpcl l (pt 0 0))
(offsetcl l 2)
`)
	// Seeded 2 + parallel + perpendicular + 2 offsets.
	if n := len(active(t, s).Registry().Lines()); n != 6 {
		t.Errorf("lines = %d, want 6", n)
	}
}

func TestCCircAndTangents(t *testing.T) {
	v, s := run(t, `
(def c (ccirc (pt 0 0) 10))
(tancl c (pt 30 0))
`)
	wantInt(t, v, 2)
	wp := active(t, s)
	if n := len(wp.Circles()); n != 1 {
		t.Errorf("circles = %d, want 1", n)
	}
	// Axes (shared with the circle's centre lines) and the two tangents.
	if n := len(wp.Registry().Lines()); n != 4 {
		t.Errorf("lines = %d, want 4", n)
	}
}

func TestTan2CL(t *testing.T) {
	v, _ := run(t, `
(def a (circ (pt 0 0) 5))
(def b (circ (pt 20 0) 5))
(tan2cl a b)
`)
	wantBool(t, v, true)

	v, _ = run(t, `(tan2cl (circ (pt 0 0) 5) (circ (pt 0 0) 2))`)
	wantBool(t, v, false)
}

func TestCircValueAddsNothing(t *testing.T) {
	_, s := run(t, `(hcl (pt 0 1)) (circ (pt 0 0) 5)`)
	wp := active(t, s)
	if n := len(wp.Circles()); n != 0 {
		t.Errorf("circles = %d, want 0", n)
	}
	if n := len(wp.Edges()); n != 0 {
		t.Errorf("edges = %d, want 0", n)
	}
}

// ---------------------------------------------------------------------------
// Units
// ---------------------------------------------------------------------------

func TestUnitsConvertAtBoundary(t *testing.T) {
	_, s := run(t, `
(units :in)
(ccirc (pt 1 0) 1)
`)
	if s.Units() != "in" {
		t.Errorf("Units() = %q, want in", s.Units())
	}
	wp := active(t, s)
	circles := wp.Circles()
	if len(circles) != 1 {
		t.Fatalf("circles = %d, want 1", len(circles))
	}
	c := circles[0]
	if !nearPoint(c.Center, geom2d.Pt(25.4, 0)) || !near(c.Radius, 25.4) {
		t.Errorf("circle = %v, want centre (25.4, 0) r=25.4", c)
	}
	// The centre's horizontal coincides with the seeded x axis.
	if n := len(wp.Registry().Lines()); n != 3 {
		t.Errorf("lines = %d, want 3", n)
	}
}

func TestUnitsPointsKeepTheirValue(t *testing.T) {
	_, s := run(t, `
(def p (pt 10 0))
(units :ft)
(line p (pt 1 0))
`)
	edges := active(t, s).Edges()
	if len(edges) != 1 {
		t.Fatalf("edges = %d, want 1", len(edges))
	}
	if !nearPoint(edges[0].P0, geom2d.Pt(10, 0)) || !nearPoint(edges[0].P1, geom2d.Pt(304.8, 0)) {
		t.Errorf("edge = %v -> %v", edges[0].P0, edges[0].P1)
	}
}

func TestUnknownUnits(t *testing.T) {
	err := runErr(t, `(units :cubit)`)
	if err == nil || !strings.Contains(err.Error(), "unknown units") {
		t.Errorf("err = %v, want unknown units", err)
	}
}

// ---------------------------------------------------------------------------
// Workplanes
// ---------------------------------------------------------------------------

func TestWorkplaneBuiltin(t *testing.T) {
	_, s := run(t, `
(def a (workplane :origin (vec3 0 0 10)))
(workplane :normal (vec3 1 0 0))
(hcl (pt 0 5))
(activate a)
(vcl (pt 3 0))
(vcl (pt 4 0))
`)
	wps := s.Workplanes()
	if len(wps) != 2 {
		t.Fatalf("workplanes = %d, want 2", len(wps))
	}
	a, b := wps[0], wps[1]
	if active(t, s).ID != a.ID {
		t.Error("activate should make the first workplane active")
	}
	if !near(a.Frame.Origin.Z, 10) {
		t.Errorf("origin z = %v, want 10", a.Frame.Origin.Z)
	}
	if !near(b.Frame.W.X, 1) || !near(b.Frame.U.Y, 1) {
		t.Errorf("side frame = %v, want normal +X and U +Y", b.Frame)
	}
	if n := len(a.Registry().Lines()); n != 4 {
		t.Errorf("first workplane lines = %d, want 4", n)
	}
	if n := len(b.Registry().Lines()); n != 3 {
		t.Errorf("second workplane lines = %d, want 3", n)
	}
}

func TestWorkplaneDegenerateNormal(t *testing.T) {
	err := runErr(t, `(workplane :normal (vec3 0 0 0))`)
	if err == nil || !strings.Contains(err.Error(), "degenerate") {
		t.Errorf("err = %v, want degenerate frame", err)
	}
}

// ---------------------------------------------------------------------------
// Profile builtins
// ---------------------------------------------------------------------------

func TestRectAndFilletAtCorner(t *testing.T) {
	_, s := run(t, `
(rect (pt 0 0) (pt 10 5))
(fillet 1 :corner (pt 10 0))
`)
	wp := active(t, s)
	edges := wp.Edges()
	if len(edges) != 5 {
		t.Fatalf("edges = %d, want 5", len(edges))
	}
	arc := edges[1]
	if arc.Kind != workplane.EdgeArc {
		t.Fatalf("edge 1 = %s, want arc", arc.Kind)
	}
	if !nearPoint(arc.Center, geom2d.Pt(9, 1)) || !near(arc.Radius, 1) {
		t.Errorf("arc centre %v r=%v, want (9, 1) r=1", arc.Center, arc.Radius)
	}
	if !wp.IsClosed() {
		t.Error("filleted rectangle should stay closed")
	}
}

func TestFilletByIndex(t *testing.T) {
	_, s := run(t, `
(rect (pt 0 0) (pt 10 5))
(fillet 1 0 1)
`)
	if n := len(active(t, s).Edges()); n != 5 {
		t.Errorf("edges = %d, want 5", n)
	}
}

func TestFilletPicksEdgesWithHints(t *testing.T) {
	// Three lines meet at the origin; :a and :b choose the pair.
	_, s := run(t, `
(line (pt 0 0) (pt 10 0))
(line (pt 0 0) (pt 0 10))
(line (pt 0 0) (pt -10 0))
(fillet 2 :corner (pt 0 0) :a (pt 5 0) :b (pt 0 5))
`)
	edges := active(t, s).Edges()
	if len(edges) != 4 {
		t.Fatalf("edges = %d, want 4", len(edges))
	}
	var arc *workplane.Edge
	for i := range edges {
		if edges[i].Kind == workplane.EdgeArc {
			arc = &edges[i]
		}
	}
	if arc == nil {
		t.Fatal("no arc inserted")
	}
	if !nearPoint(arc.Center, geom2d.Pt(2, 2)) {
		t.Errorf("arc centre = %v, want (2, 2)", arc.Center)
	}
	last := edges[3]
	if !nearPoint(last.P0, geom2d.Pt(0, 0)) || !nearPoint(last.P1, geom2d.Pt(-10, 0)) {
		t.Errorf("third line should be untouched, got %v -> %v", last.P0, last.P1)
	}
}

func TestFilletAmbiguousCorner(t *testing.T) {
	err := runErr(t, `
(line (pt 0 0) (pt 10 0))
(line (pt 0 0) (pt 0 10))
(line (pt 0 0) (pt -10 0))
(fillet 2 :corner (pt 0 0))
`)
	if err == nil || !strings.Contains(err.Error(), "shared by 3 edges") {
		t.Errorf("err = %v, want ambiguity error", err)
	}
}

func TestPolylineClosed(t *testing.T) {
	v, s := run(t, `(polyline [(pt 0 0) (pt 10 0) (pt 10 10)] :closed)`)
	wantInt(t, v, 3)
	if !active(t, s).IsClosed() {
		t.Error("closed polyline should form a loop")
	}

	v, s = run(t, `(polyline (pt 0 0) (pt 10 0) (pt 10 10))`)
	wantInt(t, v, 2)
	if active(t, s).IsClosed() {
		t.Error("open polyline should not form a loop")
	}
}

func TestArcs(t *testing.T) {
	_, s := run(t, `
(arc (pt 0 0) (pt 10 0) (pt 0 10))
(arc-thru (pt 0 10) (pt 10 0) (pt -10 0))
`)
	edges := active(t, s).Edges()
	if len(edges) != 2 {
		t.Fatalf("edges = %d, want 2", len(edges))
	}
	if !near(edges[0].Sweep, 90) {
		t.Errorf("centre arc sweep = %v, want 90", edges[0].Sweep)
	}
	if !near(edges[1].Sweep, 270) {
		t.Errorf("three point arc sweep = %v, want 270", edges[1].Sweep)
	}
	if !active(t, s).IsClosed() {
		t.Error("the two arcs make a full circle loop")
	}
}

func TestCircleReturnsValue(t *testing.T) {
	v, s := run(t, `(circle (pt 1 2) 3)`)
	c, ok := v.(*sexpCircle)
	if !ok {
		t.Fatalf("result = %T, want circle value", v)
	}
	if !nearPoint(c.c.Center, geom2d.Pt(1, 2)) || c.c.Radius != 3 {
		t.Errorf("circle = %v", c.c)
	}
	if n := len(active(t, s).Edges()); n != 1 {
		t.Errorf("edges = %d, want 1", n)
	}
}

func TestBuiltinErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"negative radius", `(circle (pt 0 0) -1)`, "negative radius"},
		{"pt arity", `(pt 1)`, "pt: expected x and y"},
		{"wrong type", `(hcl 3)`, "expected point"},
		{"degenerate line", `(line (pt 1 1) (pt 1 1))`, "degenerate edge"},
		{"through coincident", `(through (pt 1 1) (pt 1 1))`, "points coincide"},
		{"fillet missing radius", `(fillet)`, "missing radius"},
		{"fillet no vertex", `(line (pt 0 0) (pt 1 0)) (fillet 1 :corner (pt 5 5))`, "share no vertex"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := runErr(t, tt.src)
			if err == nil {
				t.Fatal("expected an error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %v, want containing %q", err, tt.want)
			}
		})
	}
}
