package manifold

import (
	"errors"
	"fmt"
	"math"

	"github.com/chazu/sketchplane/pkg/kernel"
)

// ErrDegenerate is returned for shapes with no area or solids with no
// thickness.
var ErrDegenerate = errors.New("manifold: degenerate shape")

// circleSegments is how many sides a full circle gets; arcs get a share of
// it proportional to their sweep.
const circleSegments = 72

// ring is one closed counter-clockwise outline.
type ring [][2]float64

// outline is a 2D shape kept on the Go side as polygon rings until it is
// extruded. It implements kernel.Shape.
type outline struct {
	rings []ring
}

var _ kernel.Shape = (*outline)(nil)

// Bounds returns the axis-aligned bounds of every ring.
func (o *outline) Bounds() (min, max [2]float64) {
	min = [2]float64{math.Inf(1), math.Inf(1)}
	max = [2]float64{math.Inf(-1), math.Inf(-1)}
	for _, r := range o.rings {
		for _, p := range r {
			for i := 0; i < 2; i++ {
				min[i] = math.Min(min[i], p[i])
				max[i] = math.Max(max[i], p[i])
			}
		}
	}
	return min, max
}

// segmentOutline is a rectangle of the given width centred on p0-p1.
func segmentOutline(x0, y0, x1, y1, width float64) (*outline, error) {
	dx, dy := x1-x0, y1-y0
	l := math.Hypot(dx, dy)
	if l < 1e-9 || width <= 0 {
		return nil, ErrDegenerate
	}
	// Unit normal scaled to half the width.
	nx, ny := -dy/l*width/2, dx/l*width/2
	return &outline{rings: []ring{{
		{x0 - nx, y0 - ny},
		{x1 - nx, y1 - ny},
		{x1 + nx, y1 + ny},
		{x0 + nx, y0 + ny},
	}}}, nil
}

// circleOutline is a regular polygon inscribed in the circle.
func circleOutline(cx, cy, r float64) (*outline, error) {
	if r <= 0 {
		return nil, ErrDegenerate
	}
	rg := make(ring, circleSegments)
	for i := range rg {
		a := 2 * math.Pi * float64(i) / circleSegments
		rg[i] = [2]float64{cx + r*math.Cos(a), cy + r*math.Sin(a)}
	}
	return &outline{rings: []ring{rg}}, nil
}

// arcOutline is the annular sector of the given width around an arc. A
// full turn yields an annulus as two rings, the inner one clockwise.
func arcOutline(cx, cy, r, startDeg, sweepDeg, width float64) (*outline, error) {
	if r <= 0 || sweepDeg == 0 || width <= 0 {
		return nil, ErrDegenerate
	}
	if sweepDeg < 0 {
		startDeg, sweepDeg = startDeg+sweepDeg, -sweepDeg
	}
	sweepDeg = math.Min(sweepDeg, 360)
	ro, ri := r+width/2, math.Max(r-width/2, 0)
	n := max(1, int(math.Ceil(circleSegments*sweepDeg/360)))
	at := func(rad float64, i int) [2]float64 {
		a := (startDeg + sweepDeg*float64(i)/float64(n)) * math.Pi / 180
		return [2]float64{cx + rad*math.Cos(a), cy + rad*math.Sin(a)}
	}

	if sweepDeg >= 360 {
		outer, inner := make(ring, n), make(ring, 0, n)
		for i := 0; i < n; i++ {
			outer[i] = at(ro, i)
		}
		if ri > 0 {
			for i := n - 1; i >= 0; i-- {
				inner = append(inner, at(ri, i))
			}
			return &outline{rings: []ring{outer, inner}}, nil
		}
		return &outline{rings: []ring{outer}}, nil
	}

	rg := make(ring, 0, 2*(n+1))
	for i := 0; i <= n; i++ {
		rg = append(rg, at(ro, i))
	}
	if ri == 0 {
		rg = append(rg, [2]float64{cx, cy})
	} else {
		for i := n; i >= 0; i-- {
			rg = append(rg, at(ri, i))
		}
	}
	return &outline{rings: []ring{rg}}, nil
}

// polygonOutline orients pts counter-clockwise.
func polygonOutline(pts [][2]float64) (*outline, error) {
	if len(pts) < 3 {
		return nil, fmt.Errorf("polygon with %d vertices: %w", len(pts), ErrDegenerate)
	}
	rg := make(ring, len(pts))
	copy(rg, pts)
	area := signedArea(rg)
	if math.Abs(area) < 1e-12 {
		return nil, fmt.Errorf("polygon has no area: %w", ErrDegenerate)
	}
	if area < 0 {
		for i, j := 0, len(rg)-1; i < j; i, j = i+1, j-1 {
			rg[i], rg[j] = rg[j], rg[i]
		}
	}
	return &outline{rings: []ring{rg}}, nil
}

func signedArea(r ring) float64 {
	var a float64
	for i, p := range r {
		q := r[(i+1)%len(r)]
		a += p[0]*q[1] - q[0]*p[1]
	}
	return a / 2
}

// vertexNormals averages the face normals of the triangles around each
// vertex. MeshGL carries positions only unless normals were requested.
func vertexNormals(vertices []float32, indices []uint32) []float32 {
	normals := make([]float32, len(vertices))
	for t := 0; t+2 < len(indices); t += 3 {
		i0, i1, i2 := indices[t], indices[t+1], indices[t+2]
		ax, ay, az := float64(vertices[i0*3]), float64(vertices[i0*3+1]), float64(vertices[i0*3+2])
		bx, by, bz := float64(vertices[i1*3]), float64(vertices[i1*3+1]), float64(vertices[i1*3+2])
		cx, cy, cz := float64(vertices[i2*3]), float64(vertices[i2*3+1]), float64(vertices[i2*3+2])

		e1x, e1y, e1z := bx-ax, by-ay, bz-az
		e2x, e2y, e2z := cx-ax, cy-ay, cz-az
		nx := float32(e1y*e2z - e1z*e2y)
		ny := float32(e1z*e2x - e1x*e2z)
		nz := float32(e1x*e2y - e1y*e2x)

		for _, idx := range []uint32{i0, i1, i2} {
			normals[idx*3+0] += nx
			normals[idx*3+1] += ny
			normals[idx*3+2] += nz
		}
	}
	for i := 0; i+2 < len(normals); i += 3 {
		l := math.Sqrt(float64(normals[i]*normals[i] + normals[i+1]*normals[i+1] + normals[i+2]*normals[i+2]))
		if l > 1e-12 {
			normals[i] = float32(float64(normals[i]) / l)
			normals[i+1] = float32(float64(normals[i+1]) / l)
			normals[i+2] = float32(float64(normals[i+2]) / l)
		}
	}
	return normals
}
