package geometry

import (
	gomath "math"

	"github.com/Faultbox/reflectsim/pkg/math"
)

// ProfilePoint is one sample of a surface-of-revolution profile: a ring of
// the given radius at height Y. Radius zero marks a pole.
type ProfilePoint struct {
	Y      float64
	Radius float64
}

// Lathe revolves a top-to-bottom profile about the Y axis. The first and
// last points are poles and become single vertices joined by triangle fans.
// Winding is outward.
func Lathe(profile []ProfilePoint, segments int) *Mesh {
	if segments < 3 {
		segments = 3
	}
	m := &Mesh{}
	if len(profile) < 3 {
		return m
	}
	top := profile[0]
	bottom := profile[len(profile)-1]
	rings := profile[1 : len(profile)-1]

	m.Vertices = append(m.Vertices, math.Vec3{Y: top.Y})
	for _, p := range rings {
		for s := 0; s < segments; s++ {
			theta := 2 * gomath.Pi * float64(s) / float64(segments)
			m.Vertices = append(m.Vertices, math.Vec3{
				X: p.Radius * gomath.Cos(theta),
				Y: p.Y,
				Z: p.Radius * gomath.Sin(theta),
			})
		}
	}
	last := len(m.Vertices)
	m.Vertices = append(m.Vertices, math.Vec3{Y: bottom.Y})

	at := func(r, s int) int {
		return 1 + r*segments + s%segments
	}
	for s := 0; s < segments; s++ {
		m.Triangles = append(m.Triangles, [3]int{0, at(0, s+1), at(0, s)})
	}
	for r := 0; r < len(rings)-1; r++ {
		for s := 0; s < segments; s++ {
			a, b := at(r, s), at(r, s+1)
			c, d := at(r+1, s), at(r+1, s+1)
			m.Triangles = append(m.Triangles, [3]int{a, b, d}, [3]int{a, d, c})
		}
	}
	for s := 0; s < segments; s++ {
		m.Triangles = append(m.Triangles, [3]int{last, at(len(rings)-1, s), at(len(rings)-1, s+1)})
	}
	return m
}

// UVSphere tessellates a sphere centred at the origin with the given number
// of longitude segments and latitude rings.
func UVSphere(radius float64, segments, rings int) *Mesh {
	if rings < 2 {
		rings = 2
	}
	profile := make([]ProfilePoint, 0, rings+1)
	for r := 0; r <= rings; r++ {
		phi := gomath.Pi * float64(r) / float64(rings)
		profile = append(profile, ProfilePoint{Y: radius * gomath.Cos(phi), Radius: radius * gomath.Sin(phi)})
	}
	profile[0].Radius = 0
	profile[rings].Radius = 0
	return Lathe(profile, segments)
}
