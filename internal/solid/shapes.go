// Package solid builds base objects and owns their attached features.
package solid

import (
	"errors"
	"fmt"
	gomath "math"
	"strings"

	"github.com/Faultbox/reflectsim/internal/geometry"
	"github.com/Faultbox/reflectsim/pkg/math"
)

// Solid errors.
var (
	ErrUnknownShape = errors.New("unknown shape")
	ErrZeroSize     = errors.New("object has zero size")
)

// ShapeType names a base object shape.
type ShapeType string

// Supported shapes.
const (
	Tetrahedron ShapeType = "tetrahedron"
	Cube        ShapeType = "cube"
	Sphere      ShapeType = "sphere"
	Capsule     ShapeType = "capsule"
	Cylinder    ShapeType = "cylinder"
	Custom      ShapeType = "custom"
)

// Shapes lists every shape in declaration order.
var Shapes = []ShapeType{Tetrahedron, Cube, Sphere, Capsule, Cylinder, Custom}

// ParseShape resolves a case-insensitive shape name.
func ParseShape(name string) (ShapeType, error) {
	s := ShapeType(strings.ToLower(strings.TrimSpace(name)))
	for _, known := range Shapes {
		if s == known {
			return s, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownShape, name)
}

// Tessellation of the round primitives.
const (
	roundSegments = 24
	roundRings    = 16
)

// TetrahedronMesh returns the base shape: a square-based pyramid with the
// base corners at (±1, 0, ±1) and the apex at (0, 1, 0).
func TetrahedronMesh() *geometry.Mesh {
	return &geometry.Mesh{
		Vertices: []math.Vec3{
			{X: -1, Z: -1},
			{X: 1, Z: -1},
			{X: 1, Z: 1},
			{X: -1, Z: 1},
			{Y: 1},
		},
		Triangles: [][3]int{
			{0, 1, 2}, {0, 2, 3},
			{0, 4, 1}, {1, 4, 2}, {2, 4, 3}, {3, 4, 0},
		},
	}
}

// CubeMesh returns a unit cube centred at the origin.
func CubeMesh() *geometry.Mesh {
	verts := make([]math.Vec3, 0, 8)
	for i := 0; i < 8; i++ {
		verts = append(verts, math.Vec3{
			X: float64(i&1) - 0.5,
			Y: float64((i>>1)&1) - 0.5,
			Z: float64((i>>2)&1) - 0.5,
		})
	}
	// Two triangles per face, wound outward.
	return &geometry.Mesh{
		Vertices: verts,
		Triangles: [][3]int{
			{0, 4, 6}, {0, 6, 2}, // -X
			{1, 3, 7}, {1, 7, 5}, // +X
			{0, 1, 5}, {0, 5, 4}, // -Y
			{2, 6, 7}, {2, 7, 3}, // +Y
			{0, 2, 3}, {0, 3, 1}, // -Z
			{4, 5, 7}, {4, 7, 6}, // +Z
		},
	}
}

// SphereMesh returns a sphere of diameter 1.
func SphereMesh() *geometry.Mesh {
	return geometry.UVSphere(0.5, roundSegments, roundRings)
}

// CapsuleMesh returns a capsule of radius 0.5 and total height 2.
func CapsuleMesh() *geometry.Mesh {
	const radius = 0.5
	half := roundRings / 2
	profile := make([]geometry.ProfilePoint, 0, roundRings+2)
	for r := 0; r <= half; r++ {
		phi := gomath.Pi / 2 * float64(r) / float64(half)
		profile = append(profile, geometry.ProfilePoint{Y: 0.5 + radius*gomath.Cos(phi), Radius: radius * gomath.Sin(phi)})
	}
	for r := 0; r <= half; r++ {
		phi := gomath.Pi/2 + gomath.Pi/2*float64(r)/float64(half)
		profile = append(profile, geometry.ProfilePoint{Y: -0.5 + radius*gomath.Cos(phi), Radius: radius * gomath.Sin(phi)})
	}
	profile[0].Radius = 0
	profile[len(profile)-1].Radius = 0
	return geometry.Lathe(profile, roundSegments)
}

// CylinderMesh returns a capped cylinder of radius 0.5 and height 2.
func CylinderMesh() *geometry.Mesh {
	return geometry.Lathe([]geometry.ProfilePoint{
		{Y: 1},
		{Y: 1, Radius: 0.5},
		{Y: -1, Radius: 0.5},
		{Y: -1},
	}, roundSegments)
}
