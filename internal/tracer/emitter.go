package tracer

import (
	"github.com/Faultbox/reflectsim/internal/scene"
	"github.com/Faultbox/reflectsim/pkg/math"
)

// Emitter produces the rays of one sweep in a fixed order.
type Emitter interface {
	Rays() []scene.Ray
}

// SourceGrid emits N×N parallel rays from a square area centred on a light
// source. Rays are ordered by the first axis (X) then the second (Z).
type SourceGrid struct {
	Center    math.Vec3
	AreaSize  float64
	PerAxis   int
	Direction math.Vec3
}

// Rays implements Emitter.
func (g SourceGrid) Rays() []scene.Ray {
	n := g.PerAxis
	if n <= 0 {
		return nil
	}
	half := g.AreaSize / 2
	step := 0.0
	if n > 1 {
		step = g.AreaSize / float64(n-1)
	}
	dir := g.Direction
	if dir.IsZero() {
		dir = math.Down
	}

	rays := make([]scene.Ray, 0, n*n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			origin := math.Vec3{
				X: g.Center.X - half + step*float64(i),
				Y: g.Center.Y,
				Z: g.Center.Z - half + step*float64(j),
			}
			if n == 1 {
				origin = g.Center
			}
			rays = append(rays, scene.Ray{Origin: origin, Direction: dir})
		}
	}
	return rays
}

// DetectorGrid emits N×N rays from the detector's own footprint along its
// forward axis, shifted by a world-space Offset.
type DetectorGrid struct {
	Detector Detector
	PerAxis  int
	Offset   math.Vec3
}

// Rays implements Emitter.
func (g DetectorGrid) Rays() []scene.Ray {
	n := g.PerAxis
	if n <= 0 {
		return nil
	}
	forward := g.Detector.Forward()
	rays := make([]scene.Ray, 0, n*n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			u, v := 0.5, 0.5
			if n > 1 {
				u = float64(i) / float64(n-1)
				v = float64(j) / float64(n-1)
			}
			local := math.Vec3{
				X: -g.Detector.HalfWidth + 2*g.Detector.HalfWidth*u,
				Y: -g.Detector.HalfHeight + 2*g.Detector.HalfHeight*v,
			}
			origin := g.Detector.World(local).Add(g.Offset)
			rays = append(rays, scene.Ray{Origin: origin, Direction: forward})
		}
	}
	return rays
}
