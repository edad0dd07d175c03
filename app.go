package main

import (
	"context"
	"log/slog"
	"sync"

	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/samber/lo"

	"github.com/chazu/sketchplane/pkg/config"
	"github.com/chazu/sketchplane/pkg/engine"
	"github.com/chazu/sketchplane/pkg/geom2d"
	"github.com/chazu/sketchplane/pkg/kernel"
	"github.com/chazu/sketchplane/pkg/kernel/manifold"
	"github.com/chazu/sketchplane/pkg/kernel/sdfx"
	applog "github.com/chazu/sketchplane/pkg/log"
	"github.com/chazu/sketchplane/pkg/session"
	"github.com/chazu/sketchplane/pkg/tessellate"
	"github.com/chazu/sketchplane/pkg/workplane"
)

// colorPalette is a default palette used to assign distinct colors to
// profile meshes.
var colorPalette = []string{
	"#4A90D9", "#E67E22", "#2ECC71", "#9B59B6",
	"#E74C3C", "#1ABC9C", "#F39C12", "#3498DB",
}

// App is the Wails backend. It exposes methods to the frontend via bindings.
type App struct {
	ctx context.Context

	// mu serializes evaluations; zygomys sandbox creation is not safe for
	// concurrent use.
	mu      sync.Mutex
	engine  *engine.Engine
	kernel  kernel.Kernel
	preview tessellate.Options
	log     *slog.Logger
}

// MeshData is the JSON-serializable mesh format sent to the frontend.
type MeshData struct {
	Vertices []float32 `json:"vertices"`
	Normals  []float32 `json:"normals"`
	Indices  []uint32  `json:"indices"`
	PartName string    `json:"partName"`
	Color    string    `json:"color"`
}

// LineData is a construction line clipped to its workplane border, in
// world coordinates.
type LineData struct {
	From [3]float64 `json:"from"`
	To   [3]float64 `json:"to"`
}

// CircleData is a construction circle in world coordinates. Normal is the
// normal of the plane it lies in.
type CircleData struct {
	Center [3]float64 `json:"center"`
	Normal [3]float64 `json:"normal"`
	Radius float64    `json:"radius"`
}

// WorkplaneData is one workplane's construction geometry.
type WorkplaneData struct {
	ID         string       `json:"id"`
	Active     bool         `json:"active"`
	Origin     [3]float64   `json:"origin"`
	Normal     [3]float64   `json:"normal"`
	U          [3]float64   `json:"u"`
	Size       float64      `json:"size"`
	Lines      []LineData   `json:"lines"`
	Circles    []CircleData `json:"circles"`
	SnapPoints [][3]float64 `json:"snapPoints"`
}

// EvalErrorData is a JSON-serializable eval error or validation finding.
type EvalErrorData struct {
	Line      int    `json:"line"`
	Col       int    `json:"col"`
	Message   string `json:"message"`
	Severity  string `json:"severity,omitempty"`
	Workplane string `json:"workplane,omitempty"`
	Edge      int    `json:"edge"`
}

// EvalResult is the full result returned to the frontend.
type EvalResult struct {
	Units      string          `json:"units"`
	Workplanes []WorkplaneData `json:"workplanes"`
	Meshes     []MeshData      `json:"meshes"`
	Errors     []EvalErrorData `json:"errors"`
	Warnings   []EvalErrorData `json:"warnings"`

	// Bounds is the world-space box around every mesh, min then max.
	// Zero when there are no meshes.
	Bounds [2][3]float32 `json:"bounds"`
}

// NewApp creates an App with default settings and the sdfx kernel.
func NewApp() *App {
	return NewAppWithConfig(config.Defaults())
}

// NewAppWithConfig creates an App from the user configuration.
func NewAppWithConfig(cfg config.Config) *App {
	log := applog.WithComponent("app")
	return &App{
		engine:  engine.NewEngineWithOptions(engine.OptionsFromConfig(cfg)),
		kernel:  newKernel(cfg, log),
		preview: tessellate.OptionsFromConfig(cfg),
		log:     log,
	}
}

// newKernel picks the configured kernel backend. Manifold needs a build
// with the manifold tag; without it the sdfx kernel is used.
func newKernel(cfg config.Config, log *slog.Logger) kernel.Kernel {
	if cfg.Kernel.Backend == "manifold" {
		k, err := manifold.New()
		if err == nil {
			return k
		}
		log.Warn("falling back to sdfx kernel", "err", err)
	}
	return sdfx.NewWithCells(cfg.Kernel.MeshCells)
}

// startup is called by Wails on app startup. The context is saved
// so we can call Wails runtime methods later if needed.
func (a *App) startup(ctx context.Context) {
	a.ctx = ctx
	a.log.Info("started")
}

// UnitNames lists the unit systems scripts can switch to with (units ...).
func (a *App) UnitNames() []string {
	return session.UnitNames()
}

// Evaluate runs a construction script and returns the construction
// geometry, profile meshes, errors and validation findings. All slices are
// non-nil so the frontend can iterate without checks.
func (a *App) Evaluate(source string) EvalResult {
	result := EvalResult{
		Workplanes: []WorkplaneData{},
		Meshes:     []MeshData{},
		Errors:     []EvalErrorData{},
		Warnings:   []EvalErrorData{},
	}
	log := applog.WithOperation(a.log, "evaluate")

	a.mu.Lock()
	defer a.mu.Unlock()

	s, evalErrs, err := a.engine.Evaluate(source)
	if err != nil {
		// Fatal error (panic, timeout, etc.)
		log.Error("evaluate failed", "err", err)
		result.Errors = append(result.Errors, EvalErrorData{Message: err.Error(), Edge: -1})
		return result
	}
	if len(evalErrs) > 0 {
		for _, e := range evalErrs {
			result.Errors = append(result.Errors, EvalErrorData{
				Line:    e.Line,
				Col:     e.Col,
				Message: e.Message,
				Edge:    -1,
			})
		}
		return result
	}

	result.Units = s.Units()
	active, _ := s.Active()
	for _, wp := range s.Workplanes() {
		result.Workplanes = append(result.Workplanes, workplaneData(wp, active == wp))
	}

	for _, f := range engine.Findings(s) {
		result.Warnings = append(result.Warnings, EvalErrorData{
			Message:   f.Message,
			Severity:  f.Severity.String(),
			Workplane: f.Workplane.String(),
			Edge:      f.Edge,
		})
	}

	meshes, err := tessellate.Session(s, a.kernel, a.preview)
	if err != nil {
		log.Error("tessellate failed", "err", err)
		result.Errors = append(result.Errors, EvalErrorData{
			Message: "tessellation failed: " + err.Error(),
			Edge:    -1,
		})
		return result
	}
	for i, m := range meshes {
		result.Meshes = append(result.Meshes, MeshData{
			Vertices: m.Vertices,
			Normals:  m.Normals,
			Indices:  m.Indices,
			PartName: m.PartName,
			Color:    colorPalette[i%len(colorPalette)],
		})
	}
	result.Bounds = sceneBounds(meshes)

	log.Debug("evaluated",
		"workplanes", len(result.Workplanes),
		"meshes", len(result.Meshes),
		"findings", len(result.Warnings),
		"bounds", result.Bounds)
	return result
}

func workplaneData(wp *workplane.Workplane, active bool) WorkplaneData {
	f := wp.Frame
	normal := arr(f.W)
	return WorkplaneData{
		ID:     wp.ID.String(),
		Active: active,
		Origin: arr(f.Origin),
		Normal: normal,
		U:      arr(f.U),
		Size:   wp.Size(),
		Lines: lo.Map(wp.ClippedLines(), func(s geom2d.Segment, _ int) LineData {
			return LineData{From: arr(f.ToWorld(s.P0)), To: arr(f.ToWorld(s.P1))}
		}),
		Circles: lo.Map(wp.Circles(), func(c geom2d.Circle, _ int) CircleData {
			return CircleData{Center: arr(f.ToWorld(c.Center)), Normal: normal, Radius: c.Radius}
		}),
		SnapPoints: lo.Map(wp.IntersectionPoints(), func(p v3.Vec, _ int) [3]float64 {
			return arr(p)
		}),
	}
}

func sceneBounds(meshes []*kernel.Mesh) [2][3]float32 {
	var box [2][3]float32
	first := true
	for _, m := range meshes {
		mn, mx, ok := m.Bounds()
		if !ok {
			continue
		}
		if first {
			box, first = [2][3]float32{mn, mx}, false
			continue
		}
		for k := 0; k < 3; k++ {
			box[0][k] = min(box[0][k], mn[k])
			box[1][k] = max(box[1][k], mx[k])
		}
	}
	return box
}

func arr(v v3.Vec) [3]float64 {
	return [3]float64{v.X, v.Y, v.Z}
}
