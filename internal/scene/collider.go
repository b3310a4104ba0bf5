package scene

import (
	"github.com/unixpickle/model3d/model3d"

	"github.com/Faultbox/reflectsim/internal/geometry"
	"github.com/Faultbox/reflectsim/pkg/math"
)

// Collider answers queries with a model3d mesh collider.
type Collider struct {
	collider model3d.Collider
	empty    bool
}

// NewCollider builds a model3d collider over the triangles.
func NewCollider(tris []geometry.Triangle) *Collider {
	if len(tris) == 0 {
		return &Collider{empty: true}
	}
	mt := make([]*model3d.Triangle, 0, len(tris))
	for _, t := range tris {
		if t.IsDegenerate() {
			continue
		}
		mt = append(mt, &model3d.Triangle{toCoord(t.A), toCoord(t.B), toCoord(t.C)})
	}
	if len(mt) == 0 {
		return &Collider{empty: true}
	}
	mesh := model3d.NewMeshTriangles(mt)
	return &Collider{collider: model3d.MeshToCollider(mesh)}
}

// Cast implements Query.
func (c *Collider) Cast(origin, direction math.Vec3) (Hit, bool) {
	if c.empty {
		return Hit{}, false
	}
	ray := &model3d.Ray{Origin: toCoord(origin), Direction: toCoord(direction)}
	coll, ok := c.collider.FirstRayCollision(ray)
	if !ok || coll.Scale <= minHitDistance {
		return Hit{}, false
	}
	return Hit{
		Point:    origin.Add(direction.Scale(coll.Scale)),
		Normal:   fromCoord(coll.Normal).Normalize(),
		Distance: coll.Scale,
	}, true
}

func toCoord(v math.Vec3) model3d.Coord3D {
	return model3d.Coord3D{X: v.X, Y: v.Y, Z: v.Z}
}

func fromCoord(c model3d.Coord3D) math.Vec3 {
	return math.Vec3{X: c.X, Y: c.Y, Z: c.Z}
}
