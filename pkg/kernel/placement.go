package kernel

import "math"

// Placement is a rigid transform from workplane-local space into world
// space: rotate by Euler angles (radians, applied X then Y then Z) and
// then translate by Origin.
type Placement struct {
	Origin [3]float64 `json:"origin"`
	Euler  [3]float64 `json:"euler"`
}

// Identity is the placement of the default XY workplane.
var Identity = Placement{}

// Apply transforms a local point to world space. It is the reference
// implementation backends must agree with.
func (p Placement) Apply(v [3]float64) [3]float64 {
	sx, cx := math.Sincos(p.Euler[0])
	sy, cy := math.Sincos(p.Euler[1])
	sz, cz := math.Sincos(p.Euler[2])

	// Rx
	x, y, z := v[0], cx*v[1]-sx*v[2], sx*v[1]+cx*v[2]
	// Ry
	x, z = cy*x+sy*z, -sy*x+cy*z
	// Rz
	x, y = cz*x-sz*y, sz*x+cz*y

	return [3]float64{x + p.Origin[0], y + p.Origin[1], z + p.Origin[2]}
}
