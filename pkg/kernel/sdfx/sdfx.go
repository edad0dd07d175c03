// Package sdfx implements the kernel.Kernel interface using the
// github.com/deadsy/sdfx SDF-based CAD library.
package sdfx

import (
	"errors"
	"fmt"
	"math"

	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/sketchplane/pkg/kernel"
)

// Compile-time interface check.
var _ kernel.Kernel = (*SdfxKernel)(nil)

// DefaultMeshCells is the marching cubes resolution along the longest axis.
const DefaultMeshCells = 200

const (
	// minCellsAcross is how many cells the thinnest axis of a solid gets,
	// so preview strips do not vanish between samples.
	minCellsAcross = 4
	maxMeshCells   = 1000

	// maxGridCells bounds the whole sampling grid. A strip on a tilted
	// workplane has a deep world box on every axis.
	maxGridCells = 4_000_000

	// arcStep is the largest angle, in degrees, one arc piece spans.
	arcStep = 10.0
)

var (
	// ErrDegenerate is returned for shapes with no area or solids with no
	// thickness.
	ErrDegenerate = errors.New("sdfx: degenerate shape")
	// ErrForeign is returned when a handle was built by another kernel.
	ErrForeign = errors.New("sdfx: shape or solid from another kernel")
)

type sdfxShape struct {
	s sdf.SDF2
}

func (s *sdfxShape) Bounds() (min, max [2]float64) {
	bb := s.s.BoundingBox()
	return [2]float64{bb.Min.X, bb.Min.Y}, [2]float64{bb.Max.X, bb.Max.Y}
}

// sdfxSolid wraps an sdf.SDF3 to implement kernel.Solid.
type sdfxSolid struct {
	s sdf.SDF3
}

// BoundingBox returns the axis-aligned bounding box.
func (s *sdfxSolid) BoundingBox() (min, max [3]float64) {
	bb := s.s.BoundingBox()
	min = [3]float64{bb.Min.X, bb.Min.Y, bb.Min.Z}
	max = [3]float64{bb.Max.X, bb.Max.Y, bb.Max.Z}
	return min, max
}

// SdfxKernel implements kernel.Kernel using sdfx.
type SdfxKernel struct {
	cells int
}

// New returns a kernel meshing at DefaultMeshCells.
func New() *SdfxKernel {
	return &SdfxKernel{cells: DefaultMeshCells}
}

// NewWithCells returns a kernel meshing at the given resolution. Values
// below one fall back to DefaultMeshCells.
func NewWithCells(cells int) *SdfxKernel {
	if cells < 1 {
		cells = DefaultMeshCells
	}
	return &SdfxKernel{cells: cells}
}

func shape2(s kernel.Shape) (sdf.SDF2, error) {
	sh, ok := s.(*sdfxShape)
	if !ok {
		return nil, fmt.Errorf("%T: %w", s, ErrForeign)
	}
	return sh.s, nil
}

func solid3(s kernel.Solid) (sdf.SDF3, error) {
	so, ok := s.(*sdfxSolid)
	if !ok {
		return nil, fmt.Errorf("%T: %w", s, ErrForeign)
	}
	return so.s, nil
}

// stadium is a strip of the given width around the segment p0-p1 with
// rounded ends, so consecutive pieces join without gaps.
func stadium(p0, p1 v2.Vec, width float64) (sdf.SDF2, error) {
	d := p1.Sub(p0)
	l := d.Length()
	if l < 1e-9 || width <= 0 {
		return nil, ErrDegenerate
	}
	box := sdf.Box2D(v2.Vec{X: l + width, Y: width}, width/2)
	mid := p0.Add(p1).MulScalar(0.5)
	m := sdf.Translate2d(mid).Mul(sdf.Rotate2d(math.Atan2(d.Y, d.X)))
	return sdf.Transform2D(box, m), nil
}

// Segment builds a preview strip along a line edge.
func (k *SdfxKernel) Segment(x0, y0, x1, y1, width float64) (kernel.Shape, error) {
	s, err := stadium(v2.Vec{X: x0, Y: y0}, v2.Vec{X: x1, Y: y1}, width)
	if err != nil {
		return nil, fmt.Errorf("segment: %w", err)
	}
	return &sdfxShape{s: s}, nil
}

// Circle builds a filled disc.
func (k *SdfxKernel) Circle(cx, cy, r float64) (kernel.Shape, error) {
	if r <= 0 {
		return nil, fmt.Errorf("circle r=%g: %w", r, ErrDegenerate)
	}
	c, err := sdf.Circle2D(r)
	if err != nil {
		return nil, fmt.Errorf("circle: %w", err)
	}
	return &sdfxShape{s: sdf.Transform2D(c, sdf.Translate2d(v2.Vec{X: cx, Y: cy}))}, nil
}

// Arc builds a preview strip along an arc as a chain of short strips.
func (k *SdfxKernel) Arc(cx, cy, r, startDeg, sweepDeg, width float64) (kernel.Shape, error) {
	if r <= 0 || sweepDeg == 0 {
		return nil, fmt.Errorf("arc r=%g sweep=%g: %w", r, sweepDeg, ErrDegenerate)
	}
	n := int(math.Ceil(math.Abs(sweepDeg) / arcStep))
	at := func(i int) v2.Vec {
		a := (startDeg + sweepDeg*float64(i)/float64(n)) * math.Pi / 180
		return v2.Vec{X: cx + r*math.Cos(a), Y: cy + r*math.Sin(a)}
	}
	pieces := make([]sdf.SDF2, 0, n)
	for i := 0; i < n; i++ {
		s, err := stadium(at(i), at(i+1), width)
		if err != nil {
			return nil, fmt.Errorf("arc piece %d: %w", i, err)
		}
		pieces = append(pieces, s)
	}
	return &sdfxShape{s: sdf.Union2D(pieces...)}, nil
}

// Polygon builds a filled polygon from its vertices in order.
func (k *SdfxKernel) Polygon(pts [][2]float64) (kernel.Shape, error) {
	if len(pts) < 3 {
		return nil, fmt.Errorf("polygon with %d vertices: %w", len(pts), ErrDegenerate)
	}
	vs := make([]v2.Vec, len(pts))
	for i, p := range pts {
		vs[i] = v2.Vec{X: p[0], Y: p[1]}
	}
	s, err := sdf.Polygon2D(vs)
	if err != nil {
		return nil, fmt.Errorf("polygon: %w", err)
	}
	return &sdfxShape{s: s}, nil
}

// Extrude turns a 2D shape into a slab of the given thickness centred on
// z = 0.
func (k *SdfxKernel) Extrude(s kernel.Shape, thickness float64) (kernel.Solid, error) {
	if thickness <= 0 {
		return nil, fmt.Errorf("extrude %g: %w", thickness, ErrDegenerate)
	}
	s2, err := shape2(s)
	if err != nil {
		return nil, fmt.Errorf("extrude: %w", err)
	}
	return &sdfxSolid{s: sdf.Extrude3D(s2, thickness)}, nil
}

// Place rotates by the placement's Euler angles (X, then Y, then Z) and
// then translates to its origin. A solid from another kernel is returned
// unchanged.
func (k *SdfxKernel) Place(s kernel.Solid, p kernel.Placement) kernel.Solid {
	s3, err := solid3(s)
	if err != nil {
		return s
	}
	rot := sdf.RotateZ(p.Euler[2]).Mul(sdf.RotateY(p.Euler[1])).Mul(sdf.RotateX(p.Euler[0]))
	m := sdf.Translate3d(v3.Vec{X: p.Origin[0], Y: p.Origin[1], Z: p.Origin[2]}).Mul(rot)
	return &sdfxSolid{s: sdf.Transform3D(s3, m)}
}

// cellsFor picks the marching cubes resolution along the longest axis of
// a bounding box: at least the kernel's setting, enough that the thinnest
// axis gets minCellsAcross cells, and never more than maxMeshCells on one
// axis or maxGridCells over the whole grid.
func (k *SdfxKernel) cellsFor(lo, hi [3]float64) int {
	longest, shortest := 0.0, math.Inf(1)
	for i := range lo {
		d := hi[i] - lo[i]
		longest = math.Max(longest, d)
		shortest = math.Min(shortest, d)
	}
	cells := k.cells
	if shortest > 0 {
		cells = max(cells, int(math.Ceil(minCellsAcross*longest/shortest)))
	}
	cells = min(cells, maxMeshCells)
	if longest <= 0 {
		return cells
	}
	if g := gridCells(lo, hi, longest, cells); g > maxGridCells {
		cells = int(float64(cells) * math.Cbrt(maxGridCells/g))
		for cells > 1 && gridCells(lo, hi, longest, cells) > maxGridCells {
			cells--
		}
	}
	return max(cells, 1)
}

// gridCells estimates how many samples the uniform renderer takes: one
// step is longest/cells on every axis.
func gridCells(lo, hi [3]float64, longest float64, cells int) float64 {
	g := 1.0
	for i := range lo {
		g *= math.Ceil(float64(cells)*(hi[i]-lo[i])/longest) + 1
	}
	return g
}

// ToMesh converts a solid to a triangle mesh using marching cubes.
func (k *SdfxKernel) ToMesh(s kernel.Solid) (*kernel.Mesh, error) {
	sdf3, err := solid3(s)
	if err != nil {
		return nil, fmt.Errorf("mesh: %w", err)
	}

	renderer := render.NewMarchingCubesUniform(k.cellsFor(s.BoundingBox()))
	triangles := render.ToTriangles(sdf3, renderer)

	numVerts := len(triangles) * 3
	vertices := make([]float32, 0, numVerts*3)
	normals := make([]float32, 0, numVerts*3)
	indices := make([]uint32, 0, numVerts)

	for i, tri := range triangles {
		n := tri.Normal()
		nx, ny, nz := float32(n.X), float32(n.Y), float32(n.Z)

		for j := 0; j < 3; j++ {
			v := tri[j]
			vertices = append(vertices, float32(v.X), float32(v.Y), float32(v.Z))
			normals = append(normals, nx, ny, nz)
			indices = append(indices, uint32(i*3+j))
		}
	}

	return &kernel.Mesh{
		Vertices: vertices,
		Normals:  normals,
		Indices:  indices,
	}, nil
}
