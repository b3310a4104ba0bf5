// Package tracer follows rays through reflections off the scene until they
// reach the detector, escape, or run out of bounces.
package tracer

import (
	gomath "math"

	"github.com/Faultbox/reflectsim/internal/scene"
	"github.com/Faultbox/reflectsim/pkg/math"
)

// Detector plane tolerances.
const (
	parallelEpsilon = 1e-6
	planeTolerance  = 0.01
	levelEpsilon    = 1e-9
)

// Detector is a finite rectangle. Its local XY plane is the sensitive
// surface and local +Z (Forward) is the plane normal. Extents are in world
// units and ignore Transform.Scale.
type Detector struct {
	Transform  math.Transform
	HalfWidth  float64
	HalfHeight float64
}

// NewHorizontalDetector returns a square detector centred at centre, lying
// in a horizontal plane and facing down.
func NewHorizontalDetector(centre math.Vec3, size float64) Detector {
	tr := math.NewTransform()
	tr.Position = centre
	tr.Rotation = math.FromToRotation(math.Forward, math.Down)
	return Detector{Transform: tr, HalfWidth: size / 2, HalfHeight: size / 2}
}

// Forward returns the plane normal in world space.
func (d Detector) Forward() math.Vec3 {
	return d.Transform.Forward()
}

// Local maps a world point into the detector's unscaled local frame.
func (d Detector) Local(p math.Vec3) math.Vec3 {
	return d.Transform.Rotation.Conjugate().Rotate(p.Sub(d.Transform.Position))
}

// World maps an unscaled local point to world space.
func (d Detector) World(local math.Vec3) math.Vec3 {
	return d.Transform.Rotation.Rotate(local).Add(d.Transform.Position)
}

// Intersect returns where the ray crosses the detector rectangle. Rays
// parallel to the plane, crossings behind the origin and crossings outside
// the rectangle report false. Edges count as inside.
func (d Detector) Intersect(origin, dir math.Vec3) (math.Vec3, bool) {
	normal := d.Forward()
	denom := normal.Dot(dir)
	if gomath.Abs(denom) < parallelEpsilon {
		return math.Vec3{}, false
	}
	t := d.Transform.Position.Sub(origin).Dot(normal) / denom
	if t < 0 {
		return math.Vec3{}, false
	}

	hit := origin.Add(dir.Scale(t))
	if !d.Contains(hit) {
		return math.Vec3{}, false
	}
	return hit, true
}

// Level reports whether the detector plane is horizontal.
func (d Detector) Level() bool {
	n := d.Forward()
	return gomath.Abs(n.X) < levelEpsilon && gomath.Abs(n.Z) < levelEpsilon
}

// EscapeIntersect tests a ray that left the scene. A level detector is
// crossed at its height; any other falls back to Intersect.
func (d Detector) EscapeIntersect(origin, dir math.Vec3) (math.Vec3, bool) {
	if !d.Level() {
		return d.Intersect(origin, dir)
	}
	p, ok := scene.Ray{Origin: origin, Direction: dir}.IntersectPlaneY(d.Transform.Position.Y)
	if !ok || !d.Contains(p) {
		return math.Vec3{}, false
	}
	return p, true
}

// Contains reports whether a world point lies on the rectangle.
func (d Detector) Contains(p math.Vec3) bool {
	local := d.Local(p)
	return gomath.Abs(local.X) <= d.HalfWidth &&
		gomath.Abs(local.Y) <= d.HalfHeight &&
		gomath.Abs(local.Z) < planeTolerance
}

// Pixel maps a world point on the detector to a cell of a res×res grid.
// Column 0 is local -X and row 0 is local -Y. Out-of-range points clamp to
// the nearest edge cell.
func (d Detector) Pixel(p math.Vec3, res int) (x, y int) {
	local := d.Local(p)
	u := 0.5
	if d.HalfWidth > 0 {
		u = (local.X + d.HalfWidth) / (2 * d.HalfWidth)
	}
	v := 0.5
	if d.HalfHeight > 0 {
		v = (local.Y + d.HalfHeight) / (2 * d.HalfHeight)
	}
	x = math.ClampInt(int(gomath.Round(u*float64(res-1))), 0, res-1)
	y = math.ClampInt(int(gomath.Round(v*float64(res-1))), 0, res-1)
	return x, y
}
