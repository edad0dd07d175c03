package manifold

import (
	"errors"
	"math"
	"testing"
)

func TestSegmentOutline(t *testing.T) {
	o, err := segmentOutline(0, 0, 10, 0, 2)
	if err != nil {
		t.Fatal(err)
	}
	min, max := o.Bounds()
	if min != [2]float64{0, -1} || max != [2]float64{10, 1} {
		t.Errorf("Bounds() = %v %v", min, max)
	}
	if a := signedArea(o.rings[0]); math.Abs(a-20) > 1e-9 {
		t.Errorf("area = %v, want 20 counter-clockwise", a)
	}
}

func TestCircleOutline(t *testing.T) {
	o, err := circleOutline(3, 4, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(o.rings[0]) != circleSegments {
		t.Errorf("sides = %d, want %d", len(o.rings[0]), circleSegments)
	}
	for _, p := range o.rings[0] {
		if d := math.Hypot(p[0]-3, p[1]-4); math.Abs(d-2) > 1e-9 {
			t.Fatalf("vertex %v is %v from the centre", p, d)
		}
	}
}

func TestArcOutline(t *testing.T) {
	tests := []struct {
		name              string
		start, sweep, w   float64
		rings             int
		wantCCW           bool
		minRadius, maxRad float64
	}{
		{"quarter", 0, 90, 1, 1, true, 9.5, 10.5},
		{"clockwise quarter", 90, -90, 1, 1, true, 9.5, 10.5},
		{"full turn", 0, 360, 1, 2, true, 9.5, 10.5},
		{"wide strip reaches centre", 0, 90, 30, 1, true, 0, 25},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o, err := arcOutline(0, 0, 10, tt.start, tt.sweep, tt.w)
			if err != nil {
				t.Fatal(err)
			}
			if len(o.rings) != tt.rings {
				t.Fatalf("rings = %d, want %d", len(o.rings), tt.rings)
			}
			if ccw := signedArea(o.rings[0]) > 0; ccw != tt.wantCCW {
				t.Errorf("outer ring counter-clockwise = %v", ccw)
			}
			for _, r := range o.rings {
				for _, p := range r {
					d := math.Hypot(p[0], p[1])
					if d < tt.minRadius-1e-9 || d > tt.maxRad+1e-9 {
						t.Fatalf("vertex %v at radius %v outside [%v, %v]", p, d, tt.minRadius, tt.maxRad)
					}
				}
			}
			if tt.rings == 2 && signedArea(o.rings[1]) >= 0 {
				t.Error("inner ring of an annulus should be clockwise")
			}
		})
	}
}

func TestPolygonOutlineReorients(t *testing.T) {
	o, err := polygonOutline([][2]float64{{0, 0}, {0, 5}, {10, 5}, {10, 0}})
	if err != nil {
		t.Fatal(err)
	}
	if a := signedArea(o.rings[0]); math.Abs(a-50) > 1e-9 {
		t.Errorf("area = %v, want 50", a)
	}
}

func TestDegenerateOutlines(t *testing.T) {
	tests := []struct {
		name string
		fn   func() (*outline, error)
	}{
		{"zero length segment", func() (*outline, error) { return segmentOutline(1, 1, 1, 1, 1) }},
		{"zero width segment", func() (*outline, error) { return segmentOutline(0, 0, 1, 0, 0) }},
		{"zero radius circle", func() (*outline, error) { return circleOutline(0, 0, 0) }},
		{"zero sweep arc", func() (*outline, error) { return arcOutline(0, 0, 5, 0, 0, 1) }},
		{"two point polygon", func() (*outline, error) { return polygonOutline([][2]float64{{0, 0}, {1, 0}}) }},
		{"collinear polygon", func() (*outline, error) {
			return polygonOutline([][2]float64{{0, 0}, {1, 0}, {2, 0}})
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.fn(); !errors.Is(err, ErrDegenerate) {
				t.Errorf("err = %v, want ErrDegenerate", err)
			}
		})
	}
}

func TestVertexNormals(t *testing.T) {
	// One triangle in the XY plane, counter-clockwise seen from +Z.
	vertices := []float32{0, 0, 0, 1, 0, 0, 0, 1, 0}
	normals := vertexNormals(vertices, []uint32{0, 1, 2})
	for i := 0; i < 3; i++ {
		if normals[i*3] != 0 || normals[i*3+1] != 0 || normals[i*3+2] != 1 {
			t.Errorf("normal %d = %v, want +Z", i, normals[i*3:i*3+3])
		}
	}
}
