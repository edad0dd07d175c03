package tessellate_test

import (
	"errors"
	"math"
	"strings"
	"testing"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/sketchplane/pkg/config"
	"github.com/chazu/sketchplane/pkg/geom2d"
	"github.com/chazu/sketchplane/pkg/kernel"
	"github.com/chazu/sketchplane/pkg/kernel/sdfx"
	"github.com/chazu/sketchplane/pkg/session"
	"github.com/chazu/sketchplane/pkg/tessellate"
	"github.com/chazu/sketchplane/pkg/workplane"
)

// ---------------------------------------------------------------------------
// Recording kernel
// ---------------------------------------------------------------------------

type fakeShape struct{ kind string }

func (fakeShape) Bounds() (min, max [2]float64) { return }

type fakeSolid struct {
	kind      string
	thickness float64
	placed    *kernel.Placement
}

func (fakeSolid) BoundingBox() (min, max [3]float64) { return }

// recorder counts kernel calls and fails on demand.
type recorder struct {
	shapes     []string
	placements []kernel.Placement
	solids     []fakeSolid
	failOn     string
	ragged     bool
}

func (r *recorder) shape(kind string) (kernel.Shape, error) {
	if kind == r.failOn {
		return nil, errors.New("boom")
	}
	r.shapes = append(r.shapes, kind)
	return fakeShape{kind: kind}, nil
}

func (r *recorder) Segment(x0, y0, x1, y1, width float64) (kernel.Shape, error) {
	return r.shape("segment")
}
func (r *recorder) Circle(cx, cy, rad float64) (kernel.Shape, error) { return r.shape("circle") }
func (r *recorder) Arc(cx, cy, rad, start, sweep, width float64) (kernel.Shape, error) {
	return r.shape("arc")
}
func (r *recorder) Polygon(pts [][2]float64) (kernel.Shape, error) { return r.shape("polygon") }

func (r *recorder) Extrude(s kernel.Shape, thickness float64) (kernel.Solid, error) {
	return fakeSolid{kind: s.(fakeShape).kind, thickness: thickness}, nil
}

func (r *recorder) Place(s kernel.Solid, p kernel.Placement) kernel.Solid {
	r.placements = append(r.placements, p)
	fs := s.(fakeSolid)
	fs.placed = &p
	return fs
}

func (r *recorder) ToMesh(s kernel.Solid) (*kernel.Mesh, error) {
	r.solids = append(r.solids, s.(fakeSolid))
	if r.ragged {
		return &kernel.Mesh{Vertices: []float32{0, 0, 0}}, nil
	}
	return &kernel.Mesh{Vertices: []float32{0, 0, 0}, Normals: []float32{0, 0, 1}}, nil
}

var _ kernel.Kernel = (*recorder)(nil)

func newWorkplane(t *testing.T) *workplane.Workplane {
	t.Helper()
	return workplane.New(workplane.DefaultFrame(), workplane.DefaultOptions())
}

func partNames(meshes []*kernel.Mesh) []string {
	var names []string
	for _, m := range meshes {
		names = append(names, m.PartName[strings.Index(m.PartName, "/")+1:])
	}
	return names
}

// ---------------------------------------------------------------------------
// Profile walking
// ---------------------------------------------------------------------------

func TestNilWorkplane(t *testing.T) {
	meshes, err := tessellate.Workplane(nil, &recorder{}, tessellate.DefaultOptions())
	if err != nil || meshes != nil {
		t.Fatalf("got %v, %v; want nil, nil", meshes, err)
	}
}

func TestEmptyProfile(t *testing.T) {
	meshes, err := tessellate.Workplane(newWorkplane(t), &recorder{}, tessellate.DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(meshes) != 0 {
		t.Errorf("expected no meshes for an empty profile, got %d", len(meshes))
	}
}

func TestClosedRectangle(t *testing.T) {
	wp := newWorkplane(t)
	if err := wp.Rect(geom2d.Pt(0, 0), geom2d.Pt(10, 5)); err != nil {
		t.Fatal(err)
	}
	rec := &recorder{}
	meshes, err := tessellate.Workplane(wp, rec, tessellate.DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"edge-0-line", "edge-1-line", "edge-2-line", "edge-3-line", "face"}
	got := partNames(meshes)
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("parts = %v, want %v", got, want)
	}
	if !strings.HasPrefix(meshes[0].PartName, wp.ID.String()[:8]+"/") {
		t.Errorf("part name %q should start with the workplane ID", meshes[0].PartName)
	}

	opts := tessellate.DefaultOptions()
	face := rec.solids[len(rec.solids)-1]
	if face.kind != "polygon" || face.thickness != opts.Thickness/2 {
		t.Errorf("face solid = %+v", face)
	}
}

func TestOpenProfileHasNoFace(t *testing.T) {
	wp := newWorkplane(t)
	if err := wp.Line(geom2d.Pt(0, 0), geom2d.Pt(10, 0)); err != nil {
		t.Fatal(err)
	}
	rec := &recorder{}
	meshes, err := tessellate.Workplane(wp, rec, tessellate.DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(meshes) != 1 {
		t.Fatalf("expected one strip, got %d meshes", len(meshes))
	}
	if rec.shapes[0] != "segment" {
		t.Errorf("shape = %q, want segment", rec.shapes[0])
	}
}

func TestCircleGetsStripAndDisc(t *testing.T) {
	wp := newWorkplane(t)
	if err := wp.Circle(geom2d.Circ(geom2d.Pt(0, 0), 5)); err != nil {
		t.Fatal(err)
	}
	rec := &recorder{}
	meshes, err := tessellate.Workplane(wp, rec, tessellate.DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"edge-0-circle", "disc-0"}
	if got := partNames(meshes); strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("parts = %v, want %v", got, want)
	}
	if strings.Join(rec.shapes, ",") != "arc,circle" {
		t.Errorf("shapes = %v, want arc then circle", rec.shapes)
	}
}

func TestFilletedProfileUsesArc(t *testing.T) {
	wp := newWorkplane(t)
	if err := wp.Rect(geom2d.Pt(0, 0), geom2d.Pt(10, 5)); err != nil {
		t.Fatal(err)
	}
	if err := wp.FilletCorner(1, 0, 1); err != nil {
		t.Fatal(err)
	}
	rec := &recorder{}
	meshes, err := tessellate.Workplane(wp, rec, tessellate.DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Five edges plus the face.
	if len(meshes) != 6 {
		t.Fatalf("expected 6 meshes, got %d", len(meshes))
	}
	if rec.shapes[1] != "arc" || rec.shapes[5] != "polygon" {
		t.Errorf("shapes = %v", rec.shapes)
	}
}

func TestPlacementFromFrame(t *testing.T) {
	frame, err := workplane.NewFrame(v3.Vec{Z: 10}, v3.Vec{X: 1}, v3.Vec{Y: 1})
	if err != nil {
		t.Fatal(err)
	}
	wp := workplane.New(frame, workplane.DefaultOptions())
	if err := wp.Line(geom2d.Pt(0, 0), geom2d.Pt(10, 0)); err != nil {
		t.Fatal(err)
	}
	rec := &recorder{}
	if _, err := tessellate.Workplane(wp, rec, tessellate.DefaultOptions()); err != nil {
		t.Fatal(err)
	}
	if len(rec.placements) != 1 {
		t.Fatalf("expected one placement, got %d", len(rec.placements))
	}
	if rec.placements[0] != frame.Placement() {
		t.Errorf("placement = %+v, want %+v", rec.placements[0], frame.Placement())
	}
}

func TestKernelErrorPropagates(t *testing.T) {
	wp := newWorkplane(t)
	if err := wp.Rect(geom2d.Pt(0, 0), geom2d.Pt(10, 5)); err != nil {
		t.Fatal(err)
	}
	_, err := tessellate.Workplane(wp, &recorder{failOn: "polygon"}, tessellate.DefaultOptions())
	if err == nil || !strings.Contains(err.Error(), "face") {
		t.Errorf("err = %v, want face error", err)
	}
}

func TestMalformedMeshRejected(t *testing.T) {
	wp := newWorkplane(t)
	if err := wp.Line(geom2d.Pt(0, 0), geom2d.Pt(10, 0)); err != nil {
		t.Fatal(err)
	}
	_, err := tessellate.Workplane(wp, &recorder{ragged: true}, tessellate.DefaultOptions())
	if err == nil || !strings.Contains(err.Error(), "edge-0-line") {
		t.Errorf("err = %v, want a check error naming edge-0-line", err)
	}
}

func TestSessionWalksAllWorkplanes(t *testing.T) {
	s := session.New(workplane.DefaultOptions())
	a := s.NewWorkplane(workplane.DefaultFrame())
	b := s.NewWorkplane(workplane.DefaultFrame())
	if err := a.Line(geom2d.Pt(0, 0), geom2d.Pt(1, 0)); err != nil {
		t.Fatal(err)
	}
	if err := b.Rect(geom2d.Pt(0, 0), geom2d.Pt(1, 1)); err != nil {
		t.Fatal(err)
	}
	meshes, err := tessellate.Session(s, &recorder{}, tessellate.DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	if len(meshes) != 6 {
		t.Errorf("expected 1 + 5 meshes, got %d", len(meshes))
	}
	if meshes, err := tessellate.Session(nil, &recorder{}, tessellate.DefaultOptions()); meshes != nil || err != nil {
		t.Errorf("nil session = %v, %v", meshes, err)
	}
}

func TestOptionsFromConfig(t *testing.T) {
	cfg := config.Defaults()
	cfg.Kernel.StripWidth = 2
	cfg.Kernel.Thickness = 3
	o := tessellate.OptionsFromConfig(cfg)
	if o.StripWidth != 2 || o.Thickness != 3 || o.ArcStep <= 0 {
		t.Errorf("options = %+v", o)
	}
}

// ---------------------------------------------------------------------------
// With the sdfx kernel
// ---------------------------------------------------------------------------

func TestSdfxLiftedProfile(t *testing.T) {
	frame, err := workplane.NewFrame(v3.Vec{Z: 10}, v3.Vec{Z: 1}, v3.Vec{X: 1})
	if err != nil {
		t.Fatal(err)
	}
	wp := workplane.New(frame, workplane.DefaultOptions())
	if err := wp.Rect(geom2d.Pt(0, 0), geom2d.Pt(10, 5)); err != nil {
		t.Fatal(err)
	}
	opts := tessellate.Options{StripWidth: 1, Thickness: 1, ArcStep: 10}
	meshes, err := tessellate.Workplane(wp, sdfx.NewWithCells(64), opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(meshes) != 5 {
		t.Fatalf("expected 5 meshes, got %d", len(meshes))
	}
	for _, m := range meshes {
		if m.IsEmpty() {
			t.Errorf("%s: empty mesh", m.PartName)
			continue
		}
		for i := 2; i < len(m.Vertices); i += 3 {
			if z := float64(m.Vertices[i]); math.Abs(z-10) > 1 {
				t.Fatalf("%s: vertex z = %v, want near the plane at 10", m.PartName, z)
			}
		}
	}
}
