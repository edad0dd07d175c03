package kernel

import (
	"fmt"
	"math"
)

// Mesh is a flat triangle mesh in world space, ready for the frontend:
// three floats per vertex in Vertices and Normals, three indices per
// triangle in Indices. PartName names the profile edge or face it shows.
type Mesh struct {
	Vertices []float32 `json:"vertices"`
	Normals  []float32 `json:"normals"`
	Indices  []uint32  `json:"indices"`
	PartName string    `json:"partName"`
}

func (m *Mesh) VertexCount() int   { return len(m.Vertices) / 3 }
func (m *Mesh) TriangleCount() int { return len(m.Indices) / 3 }

// IsEmpty reports whether the mesh has no vertices.
func (m *Mesh) IsEmpty() bool { return len(m.Vertices) == 0 }

// Bounds returns the axis-aligned box around every vertex. ok is false for
// an empty mesh.
func (m *Mesh) Bounds() (lo, hi [3]float32, ok bool) {
	if m.IsEmpty() {
		return lo, hi, false
	}
	inf := float32(math.Inf(1))
	lo, hi = [3]float32{inf, inf, inf}, [3]float32{-inf, -inf, -inf}
	for i := 0; i+2 < len(m.Vertices); i += 3 {
		for k := 0; k < 3; k++ {
			lo[k] = min(lo[k], m.Vertices[i+k])
			hi[k] = max(hi[k], m.Vertices[i+k])
		}
	}
	return lo, hi, true
}

// Check reports the first structural problem: arrays that are not whole
// triples, normals that do not match the vertices, or an index past the
// last vertex.
func (m *Mesh) Check() error {
	switch {
	case len(m.Vertices)%3 != 0:
		return fmt.Errorf("mesh %s: %d vertex floats is not a multiple of 3", m.PartName, len(m.Vertices))
	case len(m.Normals) != len(m.Vertices):
		return fmt.Errorf("mesh %s: %d normal floats for %d vertex floats", m.PartName, len(m.Normals), len(m.Vertices))
	case len(m.Indices)%3 != 0:
		return fmt.Errorf("mesh %s: %d indices is not a multiple of 3", m.PartName, len(m.Indices))
	}
	n := uint32(m.VertexCount())
	for i, idx := range m.Indices {
		if idx >= n {
			return fmt.Errorf("mesh %s: index %d = %d, only %d vertices", m.PartName, i, idx, n)
		}
	}
	return nil
}
