package features

import (
	"github.com/Faultbox/reflectsim/internal/geometry"
	"github.com/Faultbox/reflectsim/pkg/math"
)

// Hemisphere tessellation.
const (
	HemisphereRadius   = 0.5
	HemisphereSegments = 24
	HemisphereRings    = 16
)

// SpikeMesh returns a square-based pyramid: base corners at ±0.2 on the
// y=0 plane and apex at (0, 0.6, 0). Local +Y is the spike's axis.
func SpikeMesh() *geometry.Mesh {
	return &geometry.Mesh{
		Vertices: []math.Vec3{
			{X: -0.2, Z: -0.2},
			{X: 0.2, Z: -0.2},
			{X: 0.2, Z: 0.2},
			{X: -0.2, Z: 0.2},
			{Y: 0.6},
		},
		Triangles: [][3]int{
			{0, 1, 2}, {0, 2, 3},
			{0, 4, 1}, {1, 4, 2}, {2, 4, 3}, {3, 4, 0},
		},
	}
}

// HemisphereMesh returns the upper half of a UV sphere: triangles with any
// vertex below y=0 are dropped. rings should be even so that a vertex ring
// lies on the equator.
func HemisphereMesh(radius float64, segments, rings int) *geometry.Mesh {
	sphere := geometry.UVSphere(radius, segments, rings)
	out := &geometry.Mesh{}
	remap := make(map[int]int)
	keep := func(idx int) int {
		if j, ok := remap[idx]; ok {
			return j
		}
		remap[idx] = len(out.Vertices)
		out.Vertices = append(out.Vertices, sphere.Vertices[idx])
		return remap[idx]
	}
	for _, tri := range sphere.Triangles {
		above := true
		for _, idx := range tri {
			if sphere.Vertices[idx].Y < -1e-9 {
				above = false
				break
			}
		}
		if !above {
			continue
		}
		out.Triangles = append(out.Triangles, [3]int{keep(tri[0]), keep(tri[1]), keep(tri[2])})
	}
	return out
}
