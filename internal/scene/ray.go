// Package scene answers "where does this ray first hit the scene" queries
// over a fixed set of world-space triangles.
package scene

import (
	gomath "math"

	"github.com/Faultbox/reflectsim/internal/geometry"
	"github.com/Faultbox/reflectsim/pkg/math"
)

// Ray represents a ray in 3D space with origin and direction.
type Ray struct {
	Origin    math.Vec3
	Direction math.Vec3
}

// At returns the point at parameter t along the ray.
func (r Ray) At(t float64) math.Vec3 {
	return r.Origin.Add(r.Direction.Scale(t))
}

// IntersectPlaneY returns where the ray crosses the horizontal plane at
// planeY. Parallel rays and planes behind the origin report false.
func (r Ray) IntersectPlaneY(planeY float64) (math.Vec3, bool) {
	if gomath.Abs(r.Direction.Y) < 1e-9 {
		return math.Vec3{}, false
	}
	t := (planeY - r.Origin.Y) / r.Direction.Y
	if t < 0 {
		return math.Vec3{}, false
	}
	return r.At(t), true
}

// slabs returns the parametric interval where the ray's line is inside the box.
func (r Ray) slabs(box geometry.Bounds) (tmin, tmax float64, ok bool) {
	tmin = gomath.Inf(-1)
	tmax = gomath.Inf(1)

	for axis := 0; axis < 3; axis++ {
		o := r.Origin.Axis(axis)
		d := r.Direction.Axis(axis)
		lo, hi := box.Min.Axis(axis), box.Max.Axis(axis)
		if d == 0 {
			if o < lo || o > hi {
				return 0, 0, false
			}
			continue
		}
		t1 := (lo - o) / d
		t2 := (hi - o) / d
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		if t1 > tmin {
			tmin = t1
		}
		if t2 < tmax {
			tmax = t2
		}
	}

	if tmax < tmin || tmax < 0 {
		return 0, 0, false
	}
	return tmin, tmax, true
}

// IntersectTriangle runs the Möller–Trumbore test and returns the ray
// parameter of the hit, if any, within (tMin, tMax).
func (r Ray) IntersectTriangle(tri geometry.Triangle, tMin, tMax float64) (float64, bool) {
	const epsilon = 1e-12

	edge1 := tri.B.Sub(tri.A)
	edge2 := tri.C.Sub(tri.A)
	h := r.Direction.Cross(edge2)
	a := edge1.Dot(h)
	if a > -epsilon && a < epsilon {
		return 0, false
	}

	f := 1 / a
	s := r.Origin.Sub(tri.A)
	u := f * s.Dot(h)
	if u < 0 || u > 1 {
		return 0, false
	}

	q := s.Cross(edge1)
	v := f * r.Direction.Dot(q)
	if v < 0 || u+v > 1 {
		return 0, false
	}

	t := f * edge2.Dot(q)
	if t <= tMin || t >= tMax {
		return 0, false
	}
	return t, true
}
