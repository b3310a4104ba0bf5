package math

// Transform maps local coordinates to world space: scale, then rotate, then translate.
type Transform struct {
	Position Vec3
	Rotation Quat
	Scale    Vec3
}

// NewTransform returns an identity transform.
func NewTransform() Transform {
	return Transform{Rotation: QuatIdentity(), Scale: One}
}

// LocalToWorld returns the transform as a matrix (T * R * S).
func (t Transform) LocalToWorld() Mat4 {
	return Translate(t.Position).Mul(t.Rotation.ToMat4()).Mul(Scale(t.Scale))
}

// TransformPoint maps a local point into world space.
func (t Transform) TransformPoint(p Vec3) Vec3 {
	return t.Rotation.Rotate(p.Mul(t.Scale)).Add(t.Position)
}

// TransformDirection rotates a local direction into world space, ignoring scale.
func (t Transform) TransformDirection(d Vec3) Vec3 {
	return t.Rotation.Rotate(d)
}

// InverseTransformPoint maps a world point into local space.
// Zero scale components map to zero.
func (t Transform) InverseTransformPoint(p Vec3) Vec3 {
	local := t.Rotation.Conjugate().Rotate(p.Sub(t.Position))
	return Vec3{safeDiv(local.X, t.Scale.X), safeDiv(local.Y, t.Scale.Y), safeDiv(local.Z, t.Scale.Z)}
}

// Up returns the local +Y axis in world space.
func (t Transform) Up() Vec3 {
	return t.Rotation.Rotate(Up)
}

// Forward returns the local +Z axis in world space.
func (t Transform) Forward() Vec3 {
	return t.Rotation.Rotate(Forward)
}

// SetUp orients the transform so its local +Y axis points along dir.
func (t *Transform) SetUp(dir Vec3) {
	t.Rotation = FromToRotation(Up, dir)
}

// Compose returns child, given relative to t, expressed in t's parent space.
// The result is exact when t has uniform scale.
func (t Transform) Compose(child Transform) Transform {
	return Transform{
		Position: t.TransformPoint(child.Position),
		Rotation: t.Rotation.Mul(child.Rotation).Normalize(),
		Scale:    t.Scale.Mul(child.Scale),
	}
}

// Relative is the inverse of Compose: it returns the child transform that,
// composed under t, reproduces world.
func (t Transform) Relative(world Transform) Transform {
	return Transform{
		Position: t.InverseTransformPoint(world.Position),
		Rotation: t.Rotation.Conjugate().Mul(world.Rotation).Normalize(),
		Scale: Vec3{
			safeDiv(world.Scale.X, t.Scale.X),
			safeDiv(world.Scale.Y, t.Scale.Y),
			safeDiv(world.Scale.Z, t.Scale.Z),
		},
	}
}

func safeDiv(a, b float64) float64 {
	if b > -Epsilon && b < Epsilon {
		return 0
	}
	return a / b
}
