package solid

import (
	"github.com/Faultbox/reflectsim/internal/features"
	"github.com/Faultbox/reflectsim/internal/geometry"
	"github.com/Faultbox/reflectsim/pkg/math"
)

// Object is a base mesh with a transform and the features attached to it.
// Feature transforms are stored relative to the object, so rotating the
// object carries its features along.
type Object struct {
	Shape     ShapeType
	Mesh      *geometry.Mesh
	Transform math.Transform

	features []features.Instance
}

// NewObject wraps a mesh at the origin with identity rotation and scale.
func NewObject(shape ShapeType, mesh *geometry.Mesh) *Object {
	return &Object{Shape: shape, Mesh: mesh, Transform: math.NewTransform()}
}

// WorldBounds returns the bounding box of the base mesh in world space.
func (o *Object) WorldBounds() geometry.Bounds {
	return o.Mesh.WorldBounds(o.Transform)
}

// LargestSide returns the longest world bounding-box side of the base mesh.
func (o *Object) LargestSide() float64 {
	return o.WorldBounds().LargestSide()
}

// ScaleToUnit scales the object uniformly so its largest world
// bounding-box side equals size. It returns ErrZeroSize and leaves the
// object untouched when the mesh has no extent.
func (o *Object) ScaleToUnit(size float64) error {
	maxSide := o.LargestSide()
	if maxSide < math.Epsilon {
		return ErrZeroSize
	}
	o.Transform.Scale = o.Transform.Scale.Scale(size / maxSide)
	return nil
}

// SetRotation sets the object's orientation from Euler angles in degrees.
func (o *Object) SetRotation(euler math.Vec3) {
	o.Transform.Rotation = math.QuatFromEulerDegrees(euler)
}

// Surface returns the base mesh resolved in world space.
func (o *Object) Surface() *geometry.Surface {
	return geometry.NewSurface(o.Mesh, o.Transform)
}

// AttachFeatures replaces the feature set. Instances carry world-space
// transforms; they are stored relative to the object.
func (o *Object) AttachFeatures(world []features.Instance) {
	o.features = make([]features.Instance, len(world))
	for i, f := range world {
		f.Transform = o.Transform.Relative(f.Transform)
		o.features[i] = f
	}
}

// ClearFeatures drops every attached feature.
func (o *Object) ClearFeatures() {
	o.features = nil
}

// FeatureCount returns the number of attached features.
func (o *Object) FeatureCount() int {
	return len(o.features)
}

// Features returns the attached features with world-space transforms.
func (o *Object) Features() []features.Instance {
	out := make([]features.Instance, len(o.features))
	for i, f := range o.features {
		f.Transform = o.Transform.Compose(f.Transform)
		out[i] = f
	}
	return out
}

// WorldTriangles returns the base mesh and every feature in world space.
func (o *Object) WorldTriangles() []geometry.Triangle {
	tris := o.Mesh.WorldTriangles(o.Transform)
	for _, f := range o.Features() {
		tris = append(tris, f.WorldTriangles()...)
	}
	return tris
}
