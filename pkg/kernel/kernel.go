// Package kernel defines the narrow geometry kernel interface the workplane
// hands its profiles to. Implementations (sdfx, and manifold behind a build
// tag) build 2D shapes from the workplane's local coordinates, extrude them
// into thin preview solids and lift them into world space with a Placement.
package kernel

// Shape is an opaque handle to a 2D kernel shape in workplane-local
// coordinates (mm).
type Shape interface {
	// Bounds returns the axis-aligned 2D bounding box.
	Bounds() (min, max [2]float64)
}

// Solid is an opaque handle to a geometry kernel solid.
// Implementations wrap their internal representation.
type Solid interface {
	// BoundingBox returns the axis-aligned bounding box.
	BoundingBox() (min, max [3]float64)
}

// Kernel is the abstract geometry kernel interface.
type Kernel interface {
	// 2D primitives, in workplane-local coordinates.
	Segment(x0, y0, x1, y1, width float64) (Shape, error)
	Circle(cx, cy, r float64) (Shape, error)
	Arc(cx, cy, r, startDeg, sweepDeg, width float64) (Shape, error)
	Polygon(pts [][2]float64) (Shape, error)

	// Extrude lifts a 2D shape into a solid of the given thickness,
	// centred on the local z = 0 plane.
	Extrude(s Shape, thickness float64) (Solid, error)

	// Place moves a solid built in workplane-local space into world space.
	Place(s Solid, p Placement) Solid

	// Mesh output
	ToMesh(s Solid) (*Mesh, error)
}
