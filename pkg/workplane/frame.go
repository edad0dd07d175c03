package workplane

import (
	"errors"
	"fmt"
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/sketchplane/pkg/geom2d"
	"github.com/chazu/sketchplane/pkg/kernel"
)

// ErrDegenerateFrame is returned when the vectors given for a frame do not
// span a plane: a zero normal, a zero U direction, or a U direction
// parallel to the normal.
var ErrDegenerateFrame = errors.New("workplane: degenerate frame")

// frameEps is the smallest length accepted for a frame direction after
// orthogonalization.
const frameEps = 1e-9

// Frame is the orientation of a workplane in world space: an origin and an
// orthonormal right-handed basis U, V, W where U and V span the plane and W
// is its normal.
type Frame struct {
	Origin v3.Vec
	U, V   v3.Vec
	W      v3.Vec
}

// DefaultFrame returns the frame of the global XY plane at the origin.
func DefaultFrame() Frame {
	return Frame{
		U: v3.Vec{X: 1},
		V: v3.Vec{Y: 1},
		W: v3.Vec{Z: 1},
	}
}

// NewFrame builds a frame at origin with the given normal. uDir fixes the
// in-plane U direction; only its component perpendicular to the normal is
// used.
func NewFrame(origin, normal, uDir v3.Vec) (Frame, error) {
	if normal.Length() < frameEps {
		return Frame{}, fmt.Errorf("normal: %w", ErrDegenerateFrame)
	}
	w := normal.Normalize()
	u := uDir.Sub(w.MulScalar(uDir.Dot(w)))
	if u.Length() < frameEps {
		return Frame{}, fmt.Errorf("u direction %v: %w", uDir, ErrDegenerateFrame)
	}
	u = u.Normalize()
	return Frame{Origin: origin, U: u, V: w.Cross(u), W: w}, nil
}

// FaceSource is a planar face supplied by the surrounding geometry kernel.
type FaceSource interface {
	// Plane returns a point on the face and its outward normal.
	Plane() (point, normal v3.Vec)
}

// Face is a plain FaceSource value.
type Face struct {
	Point  v3.Vec
	Normal v3.Vec
}

func (f Face) Plane() (point, normal v3.Vec) {
	return f.Point, f.Normal
}

// FrameFromFaces builds a frame lying on face, with U running along the line
// where face meets uFace. The origin is the point face reports.
func FrameFromFaces(face, uFace FaceSource) (Frame, error) {
	origin, n := face.Plane()
	_, n2 := uFace.Plane()
	if n.Length() < frameEps || n2.Length() < frameEps {
		return Frame{}, fmt.Errorf("face normal: %w", ErrDegenerateFrame)
	}
	u := n.Cross(n2)
	if u.Length() < frameEps {
		return Frame{}, fmt.Errorf("faces are parallel: %w", ErrDegenerateFrame)
	}
	return NewFrame(origin, n, u)
}

// ToLocal expresses a world point in plane coordinates. Points off the
// plane are projected along W.
func (f Frame) ToLocal(p v3.Vec) geom2d.Point {
	d := p.Sub(f.Origin)
	return geom2d.Point{X: d.Dot(f.U), Y: d.Dot(f.V)}
}

// ToWorld lifts a plane point into world space. It is the inverse of
// ToLocal for points on the plane.
func (f Frame) ToWorld(p geom2d.Point) v3.Vec {
	return f.Origin.Add(f.U.MulScalar(p.X)).Add(f.V.MulScalar(p.Y))
}

// Elevation returns the signed distance of p from the plane along W.
func (f Frame) Elevation(p v3.Vec) float64 {
	return p.Sub(f.Origin).Dot(f.W)
}

// ProjectToPlane returns the foot of p on the plane.
func (f Frame) ProjectToPlane(p v3.Vec) v3.Vec {
	return p.Sub(f.W.MulScalar(f.Elevation(p)))
}

// Placement returns the rigid transform that maps plane-local space (x along
// U, y along V, z along W) into world space.
func (f Frame) Placement() kernel.Placement {
	// Columns of the rotation are U, V, W. Decompose R = Rz·Ry·Rx.
	var rx, ry, rz float64
	r20 := clamp(f.U.Z)
	ry = -math.Asin(r20)
	if math.Abs(r20) < 1-1e-12 {
		rx = math.Atan2(f.V.Z, f.W.Z)
		rz = math.Atan2(f.U.Y, f.U.X)
	} else if r20 < 0 {
		// Gimbal lock, ry = +90°.
		rx = math.Atan2(f.V.X, f.V.Y)
	} else {
		// Gimbal lock, ry = -90°.
		rx = math.Atan2(-f.V.X, f.V.Y)
	}
	return kernel.Placement{
		Origin: [3]float64{f.Origin.X, f.Origin.Y, f.Origin.Z},
		Euler:  [3]float64{rx, ry, rz},
	}
}

func clamp(v float64) float64 {
	return math.Max(-1, math.Min(1, v))
}

func (f Frame) String() string {
	return fmt.Sprintf("frame(origin=%v, u=%v, w=%v)", f.Origin, f.U, f.W)
}
