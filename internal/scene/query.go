package scene

import (
	"errors"
	"fmt"
	gomath "math"

	"github.com/Faultbox/reflectsim/internal/geometry"
	"github.com/Faultbox/reflectsim/internal/solid"
	"github.com/Faultbox/reflectsim/pkg/math"
)

// ErrUnknownBackend is returned by New for an unrecognised backend name.
var ErrUnknownBackend = errors.New("unknown scene backend")

// minHitDistance keeps a ray from re-hitting the surface it starts on.
const minHitDistance = 1e-9

// Hit is the nearest intersection of a ray with the scene. Distance is the
// ray parameter, which is the distance for unit directions.
type Hit struct {
	Point    math.Vec3
	Normal   math.Vec3
	Distance float64
}

// Query casts rays against a fixed scene. Implementations are safe for
// concurrent use once built.
type Query interface {
	Cast(origin, direction math.Vec3) (Hit, bool)
}

// Backend names a Query implementation.
type Backend string

// Available backends.
const (
	BackendBVH     Backend = "bvh"
	BackendBrute   Backend = "brute"
	BackendModel3D Backend = "model3d"
)

// New builds a Query of the named backend over the triangles.
func New(backend Backend, tris []geometry.Triangle) (Query, error) {
	switch backend {
	case BackendBVH, "":
		return NewBVH(tris), nil
	case BackendBrute:
		return BruteForce(tris), nil
	case BackendModel3D:
		return NewCollider(tris), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, string(backend))
	}
}

// BruteForce tests every triangle on every cast.
type BruteForce []geometry.Triangle

// Cast implements Query.
func (b BruteForce) Cast(origin, direction math.Vec3) (Hit, bool) {
	ray := Ray{Origin: origin, Direction: direction}
	best := gomath.Inf(1)
	idx := -1
	for i, tri := range b {
		if t, ok := ray.IntersectTriangle(tri, minHitDistance, best); ok {
			best, idx = t, i
		}
	}
	if idx < 0 {
		return Hit{}, false
	}
	return Hit{Point: ray.At(best), Normal: b[idx].Normal(), Distance: best}, true
}

// FromSolid builds a Query over the object's base mesh and features in
// their current world pose.
func FromSolid(backend Backend, o *solid.Object) (Query, error) {
	return New(backend, o.WorldTriangles())
}
