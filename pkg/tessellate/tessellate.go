// Package tessellate walks workplane profiles and produces triangle meshes
// using a geometry kernel. One mesh is produced per profile edge, plus one
// per filled face.
package tessellate

import (
	"fmt"

	"github.com/samber/lo"

	"github.com/chazu/sketchplane/pkg/config"
	"github.com/chazu/sketchplane/pkg/geom2d"
	"github.com/chazu/sketchplane/pkg/kernel"
	"github.com/chazu/sketchplane/pkg/session"
	"github.com/chazu/sketchplane/pkg/workplane"
)

// Options controls preview geometry.
type Options struct {
	StripWidth float64 // width of an edge strip, mm
	Thickness  float64 // slab thickness of strips; faces get half
	ArcStep    float64 // outline sampling step for arcs, degrees
}

// DefaultOptions returns the preview defaults.
func DefaultOptions() Options {
	return Options{StripWidth: 0.5, Thickness: 0.5, ArcStep: 5}
}

// OptionsFromConfig reads preview settings from the user configuration.
func OptionsFromConfig(cfg config.Config) Options {
	o := DefaultOptions()
	o.StripWidth = cfg.Kernel.StripWidth
	o.Thickness = cfg.Kernel.Thickness
	return o
}

// Workplane produces the meshes of wp's profile, lifted into world space.
// Each edge becomes a thin strip. A closed chain of lines and arcs also
// yields its filled face, and every full circle yields a disc. The
// tessellator is read-only and never mutates the workplane.
func Workplane(wp *workplane.Workplane, k kernel.Kernel, opts Options) ([]*kernel.Mesh, error) {
	if wp == nil {
		return nil, nil
	}
	place := wp.Frame.Placement()
	prefix := wp.ID.String()[:8]

	var meshes []*kernel.Mesh
	emit := func(name string, shape kernel.Shape, thickness float64) error {
		solid, err := k.Extrude(shape, thickness)
		if err != nil {
			return fmt.Errorf("tessellate: %s: %w", name, err)
		}
		mesh, err := k.ToMesh(k.Place(solid, place))
		if err != nil {
			return fmt.Errorf("tessellate: ToMesh failed for %s: %w", name, err)
		}
		mesh.PartName = prefix + "/" + name
		if err := mesh.Check(); err != nil {
			return fmt.Errorf("tessellate: %w", err)
		}
		meshes = append(meshes, mesh)
		return nil
	}

	for i, e := range wp.Edges() {
		name := fmt.Sprintf("edge-%d-%s", i, e.Kind)
		shape, err := edgeShape(k, e, opts.StripWidth)
		if err != nil {
			return nil, fmt.Errorf("tessellate: %s: %w", name, err)
		}
		if err := emit(name, shape, opts.Thickness); err != nil {
			return nil, err
		}
		if e.Kind != workplane.EdgeCircle {
			continue
		}
		disc, err := k.Circle(e.Center.X, e.Center.Y, e.Radius)
		if err != nil {
			return nil, fmt.Errorf("tessellate: disc %d: %w", i, err)
		}
		if err := emit(fmt.Sprintf("disc-%d", i), disc, opts.Thickness/2); err != nil {
			return nil, err
		}
	}

	if outline, ok := wp.Outline(opts.ArcStep); ok {
		face, err := k.Polygon(toPairs(outline))
		if err != nil {
			return nil, fmt.Errorf("tessellate: face: %w", err)
		}
		if err := emit("face", face, opts.Thickness/2); err != nil {
			return nil, err
		}
	}
	return meshes, nil
}

// Session tessellates every workplane of s in creation order.
func Session(s *session.Session, k kernel.Kernel, opts Options) ([]*kernel.Mesh, error) {
	if s == nil {
		return nil, nil
	}
	var meshes []*kernel.Mesh
	for _, wp := range s.Workplanes() {
		collected, err := Workplane(wp, k, opts)
		if err != nil {
			return nil, err
		}
		meshes = append(meshes, collected...)
	}
	return meshes, nil
}

func edgeShape(k kernel.Kernel, e workplane.Edge, width float64) (kernel.Shape, error) {
	switch e.Kind {
	case workplane.EdgeLine:
		return k.Segment(e.P0.X, e.P0.Y, e.P1.X, e.P1.Y, width)
	case workplane.EdgeArc:
		return k.Arc(e.Center.X, e.Center.Y, e.Radius, e.StartAngle(), e.Sweep, width)
	case workplane.EdgeCircle:
		return k.Arc(e.Center.X, e.Center.Y, e.Radius, 0, 360, width)
	default:
		return nil, fmt.Errorf("unknown edge kind %v", e.Kind)
	}
}

func toPairs(pts []geom2d.Point) [][2]float64 {
	return lo.Map(pts, func(p geom2d.Point, _ int) [2]float64 {
		return [2]float64{p.X, p.Y}
	})
}
