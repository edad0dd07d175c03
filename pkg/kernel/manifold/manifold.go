//go:build manifold

// Package manifold provides a CGo-based geometry kernel binding to the
// Manifold library (https://github.com/elalish/manifold). Profiles are
// extruded from exact polygon outlines, so preview strips keep sharp
// corners at any size.
//
// This package requires the Manifold C library (manifoldc) to be installed.
// Build with: go build -tags=manifold
package manifold

/*
#cgo CFLAGS: -I/usr/local/include
#cgo LDFLAGS: -L/usr/local/lib -lmanifoldc

#include <stdlib.h>
#include <manifold/manifoldc.h>
*/
import "C"

import (
	"fmt"
	"math"
	"runtime"
	"unsafe"

	"github.com/chazu/sketchplane/pkg/kernel"
)

// Compile-time interface checks.
var _ kernel.Kernel = (*ManifoldKernel)(nil)
var _ kernel.Solid = (*manifoldSolid)(nil)

// manifoldSolid wraps a C ManifoldManifold pointer and implements kernel.Solid.
type manifoldSolid struct {
	ptr *C.ManifoldManifold
}

// BoundingBox returns the axis-aligned bounding box of the solid.
func (s *manifoldSolid) BoundingBox() (min, max [3]float64) {
	bbox := C.manifold_bounding_box(C.manifold_alloc_box(), s.ptr)
	defer C.manifold_delete_box(bbox)

	min = [3]float64{
		float64(C.manifold_box_min_x(bbox)),
		float64(C.manifold_box_min_y(bbox)),
		float64(C.manifold_box_min_z(bbox)),
	}
	max = [3]float64{
		float64(C.manifold_box_max_x(bbox)),
		float64(C.manifold_box_max_y(bbox)),
		float64(C.manifold_box_max_z(bbox)),
	}
	return min, max
}

// newSolid wraps a C ManifoldManifold pointer with a finalizer that frees it.
func newSolid(ptr *C.ManifoldManifold) *manifoldSolid {
	s := &manifoldSolid{ptr: ptr}
	runtime.SetFinalizer(s, func(s *manifoldSolid) {
		if s.ptr != nil {
			C.manifold_delete_manifold(s.ptr)
			s.ptr = nil
		}
	})
	return s
}

// ManifoldKernel implements kernel.Kernel using the Manifold C library.
type ManifoldKernel struct{}

// New creates a new ManifoldKernel.
func New() (kernel.Kernel, error) {
	return &ManifoldKernel{}, nil
}

// Segment builds a rectangular preview strip along a line edge.
func (k *ManifoldKernel) Segment(x0, y0, x1, y1, width float64) (kernel.Shape, error) {
	o, err := segmentOutline(x0, y0, x1, y1, width)
	if err != nil {
		return nil, fmt.Errorf("segment: %w", err)
	}
	return o, nil
}

// Circle builds a filled disc.
func (k *ManifoldKernel) Circle(cx, cy, r float64) (kernel.Shape, error) {
	o, err := circleOutline(cx, cy, r)
	if err != nil {
		return nil, fmt.Errorf("circle r=%g: %w", r, err)
	}
	return o, nil
}

// Arc builds a preview strip along an arc.
func (k *ManifoldKernel) Arc(cx, cy, r, startDeg, sweepDeg, width float64) (kernel.Shape, error) {
	o, err := arcOutline(cx, cy, r, startDeg, sweepDeg, width)
	if err != nil {
		return nil, fmt.Errorf("arc r=%g sweep=%g: %w", r, sweepDeg, err)
	}
	return o, nil
}

// Polygon builds a filled polygon from its vertices in order.
func (k *ManifoldKernel) Polygon(pts [][2]float64) (kernel.Shape, error) {
	o, err := polygonOutline(pts)
	if err != nil {
		return nil, fmt.Errorf("polygon: %w", err)
	}
	return o, nil
}

// Extrude turns an outline into a slab centred on z = 0.
func (k *ManifoldKernel) Extrude(s kernel.Shape, thickness float64) (kernel.Solid, error) {
	if thickness <= 0 {
		return nil, fmt.Errorf("extrude %g: %w", thickness, ErrDegenerate)
	}
	o, ok := s.(*outline)
	if !ok {
		return nil, fmt.Errorf("extrude: %T is not a manifold shape", s)
	}

	simple := make([]*C.ManifoldSimplePolygon, len(o.rings))
	for i, r := range o.rings {
		pts := (*C.ManifoldVec2)(C.malloc(C.size_t(len(r)) * C.size_t(unsafe.Sizeof(C.ManifoldVec2{}))))
		view := unsafe.Slice(pts, len(r))
		for j, p := range r {
			view[j] = C.ManifoldVec2{x: C.double(p[0]), y: C.double(p[1])}
		}
		simple[i] = C.manifold_simple_polygon(C.manifold_alloc_simple_polygon(), pts, C.size_t(len(r)))
		C.free(unsafe.Pointer(pts))
	}
	defer func() {
		for _, sp := range simple {
			C.manifold_delete_simple_polygon(sp)
		}
	}()

	arr := (**C.ManifoldSimplePolygon)(C.malloc(C.size_t(len(simple)) * C.size_t(unsafe.Sizeof(simple[0]))))
	copy(unsafe.Slice(arr, len(simple)), simple)
	polys := C.manifold_polygons(C.manifold_alloc_polygons(), arr, C.size_t(len(simple)))
	C.free(unsafe.Pointer(arr))
	defer C.manifold_delete_polygons(polys)

	slab := C.manifold_extrude(C.manifold_alloc_manifold(), polys,
		C.double(thickness),
		C.int(0),    // slices
		C.double(0), // twist
		C.double(1), // scale x
		C.double(1), // scale y
	)
	centred := C.manifold_translate(C.manifold_alloc_manifold(), slab, 0, 0, C.double(-thickness/2))
	C.manifold_delete_manifold(slab)
	return newSolid(centred), nil
}

// Place rotates by the placement's Euler angles (X, then Y, then Z) and
// then translates to its origin. A solid from another kernel is returned
// unchanged.
func (k *ManifoldKernel) Place(s kernel.Solid, p kernel.Placement) kernel.Solid {
	ms, ok := s.(*manifoldSolid)
	if !ok {
		return s
	}
	deg := func(rad float64) C.double { return C.double(rad * 180 / math.Pi) }
	rotated := C.manifold_rotate(C.manifold_alloc_manifold(), ms.ptr,
		deg(p.Euler[0]), deg(p.Euler[1]), deg(p.Euler[2]))
	placed := C.manifold_translate(C.manifold_alloc_manifold(), rotated,
		C.double(p.Origin[0]), C.double(p.Origin[1]), C.double(p.Origin[2]))
	C.manifold_delete_manifold(rotated)
	return newSolid(placed)
}

// ToMesh extracts a triangle mesh from the solid using Manifold's MeshGL
// format. Positions come first in each vertex's properties; normals are
// rebuilt from the triangles.
func (k *ManifoldKernel) ToMesh(s kernel.Solid) (*kernel.Mesh, error) {
	ms, ok := s.(*manifoldSolid)
	if !ok {
		return nil, fmt.Errorf("mesh: %T is not a manifold solid", s)
	}

	meshGL := C.manifold_get_meshgl(C.manifold_alloc_meshgl(), ms.ptr)
	defer C.manifold_delete_meshgl(meshGL)

	numVert := int(C.manifold_meshgl_num_vert(meshGL))
	numTri := int(C.manifold_meshgl_num_tri(meshGL))
	if numVert == 0 || numTri == 0 {
		return &kernel.Mesh{}, nil
	}
	numProp := int(C.manifold_meshgl_num_prop(meshGL))

	props := make([]float32, numVert*numProp)
	C.manifold_meshgl_vert_properties((*C.float)(unsafe.Pointer(&props[0])), meshGL)

	indices := make([]uint32, numTri*3)
	C.manifold_meshgl_tri_verts((*C.uint32_t)(unsafe.Pointer(&indices[0])), meshGL)

	vertices := make([]float32, numVert*3)
	for i := 0; i < numVert; i++ {
		copy(vertices[i*3:i*3+3], props[i*numProp:i*numProp+3])
	}

	mesh := &kernel.Mesh{
		Vertices: vertices,
		Normals:  vertexNormals(vertices, indices),
		Indices:  indices,
	}
	if mesh.VertexCount() != numVert {
		return nil, fmt.Errorf("manifold: vertex count mismatch: got %d, expected %d",
			mesh.VertexCount(), numVert)
	}
	return mesh, nil
}
