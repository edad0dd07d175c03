package main

import (
	"os"
	"strings"
	"testing"
)

func evalExample(t *testing.T, app *App, name string) EvalResult {
	t.Helper()
	source, err := os.ReadFile("examples/" + name)
	if err != nil {
		t.Fatalf("failed to read %s: %v", name, err)
	}
	result := app.Evaluate(string(source))
	if len(result.Errors) > 0 {
		for _, e := range result.Errors {
			t.Errorf("eval error (line %d): %s", e.Line, e.Message)
		}
		t.FailNow()
	}
	return result
}

// TestE2EBracketExample exercises the full pipeline: script -> engine ->
// session -> tessellate -> meshes. This is the same path that the Wails
// Evaluate binding takes, but without the Wails runtime.
func TestE2EBracketExample(t *testing.T) {
	app := NewApp()
	result := evalExample(t, app, "bracket.sketch")

	if len(result.Warnings) > 0 {
		t.Errorf("unexpected findings: %v", result.Warnings)
	}
	if result.Units != "mm" {
		t.Errorf("units = %q, want mm", result.Units)
	}
	if len(result.Workplanes) != 1 {
		t.Fatalf("expected 1 workplane, got %d", len(result.Workplanes))
	}
	wp := result.Workplanes[0]
	if !wp.Active {
		t.Error("the only workplane should be active")
	}
	if wp.Normal != [3]float64{0, 0, 1} {
		t.Errorf("normal = %v, want +Z", wp.Normal)
	}
	if len(wp.Lines) < 5 {
		t.Errorf("expected at least 5 construction lines, got %d", len(wp.Lines))
	}
	if len(wp.Circles) != 1 || wp.Circles[0].Radius != 6 {
		t.Errorf("circles = %+v, want one of radius 6", wp.Circles)
	}
	if len(wp.SnapPoints) < 6 {
		t.Errorf("expected at least 6 snap points, got %d", len(wp.SnapPoints))
	}

	// Four lines, four fillet arcs and the hole: nine strips, the hole's
	// disc and the plate's face.
	if len(result.Meshes) != 11 {
		t.Fatalf("expected 11 meshes, got %d", len(result.Meshes))
	}

	parts := map[string]bool{}
	for _, m := range result.Meshes {
		name := m.PartName[strings.Index(m.PartName, "/")+1:]
		parts[name] = true

		// Each mesh must have non-empty geometry.
		if len(m.Vertices) == 0 {
			t.Errorf("part %q: no vertices", m.PartName)
		}
		if len(m.Normals) == 0 {
			t.Errorf("part %q: no normals", m.PartName)
		}
		if len(m.Indices) == 0 {
			t.Errorf("part %q: no indices", m.PartName)
		}

		// Must have a color assigned.
		if m.Color == "" {
			t.Errorf("part %q: no color assigned", m.PartName)
		}
	}
	for _, name := range []string{"face", "disc-8", "edge-0-line", "edge-1-arc", "edge-8-circle"} {
		if !parts[name] {
			t.Errorf("missing mesh for part %q (have %v)", name, parts)
		}
	}
}

func TestE2EGussetExample(t *testing.T) {
	app := NewApp()
	result := evalExample(t, app, "gusset.sketch")

	if len(result.Workplanes) != 2 {
		t.Fatalf("expected 2 workplanes, got %d", len(result.Workplanes))
	}
	base, upright := result.Workplanes[0], result.Workplanes[1]
	if !base.Active || upright.Active {
		t.Error("activate should leave the base workplane active")
	}
	if upright.Normal != [3]float64{0, 1, 0} {
		t.Errorf("upright normal = %v, want +Y", upright.Normal)
	}
	if len(upright.Circles) != 2 {
		t.Errorf("upright circles = %d, want 2", len(upright.Circles))
	}

	// The upright's construction lines stay in its plane.
	for _, l := range upright.Lines {
		if l.From[1] != 0 || l.To[1] != 0 {
			t.Fatalf("line %v leaves the y=0 plane", l)
		}
	}

	// Base: four strips, the hole strip and disc, the face. Upright: three
	// strips and the face.
	if len(result.Meshes) != 11 {
		t.Errorf("expected 11 meshes, got %d", len(result.Meshes))
	}
	prefix := upright.ID[:8] + "/"
	var uprightMeshes int
	for _, m := range result.Meshes {
		if strings.HasPrefix(m.PartName, prefix) {
			uprightMeshes++
		}
	}
	if uprightMeshes != 4 {
		t.Errorf("upright meshes = %d, want 4", uprightMeshes)
	}
}

func TestE2ESingleRect(t *testing.T) {
	app := NewApp()
	result := app.Evaluate(`(rect (pt -20 -10) (pt 20 10))`)

	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	// Four strips and the face.
	if len(result.Meshes) != 5 {
		t.Fatalf("expected 5 meshes, got %d", len(result.Meshes))
	}
	if !strings.HasSuffix(result.Meshes[4].PartName, "/face") {
		t.Errorf("last part = %q, want the face", result.Meshes[4].PartName)
	}
	mn, mx := result.Bounds[0], result.Bounds[1]
	if mn[0] > -19 || mn[1] > -9 || mx[0] < 19 || mx[1] < 9 {
		t.Errorf("bounds %v..%v do not cover the rectangle", mn, mx)
	}
	if mx[0] > 23 || mn[0] < -23 {
		t.Errorf("bounds %v..%v too loose", mn, mx)
	}
}
