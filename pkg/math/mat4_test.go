package math

import "testing"

func TestIdentity(t *testing.T) {
	m := Identity()
	if m[0] != 1 || m[5] != 1 || m[10] != 1 || m[15] != 1 {
		t.Error("Identity diagonal should be 1")
	}
	if m[1] != 0 || m[4] != 0 {
		t.Error("Identity off-diagonal should be 0")
	}
}

func TestTranslate(t *testing.T) {
	m := Translate(Vec3{5, 10, 15})
	if m[12] != 5 || m[13] != 10 || m[14] != 15 {
		t.Errorf("Translate: got (%f, %f, %f), want (5, 10, 15)", m[12], m[13], m[14])
	}
	got := m.TransformPoint(Vec3{1, 2, 3})
	if want := (Vec3{6, 12, 18}); got != want {
		t.Errorf("TransformPoint() = %v, want %v", got, want)
	}
}

func TestMulOrder(t *testing.T) {
	// Scale first, then translate.
	m := Translate(Vec3{1, 0, 0}).Mul(Scale(Vec3{2, 2, 2}))
	got := m.TransformPoint(Vec3{1, 1, 1})
	if want := (Vec3{3, 2, 2}); got != want {
		t.Errorf("TransformPoint() = %v, want %v", got, want)
	}
	if Identity().Mul(m) != m {
		t.Error("Identity * m should equal m")
	}
}

func TestLocalToWorldMatchesTransform(t *testing.T) {
	tr := NewTransform()
	tr.Position = Vec3{1, -2, 3}
	tr.Rotation = QuatFromEulerDegrees(Vec3{30, 45, 60})
	tr.Scale = Vec3{2, 0.5, 1.5}
	m := tr.LocalToWorld()

	for _, p := range []Vec3{{}, {1, 0, 0}, {0.3, -0.7, 2}, {-4, 5, 6}} {
		if got, want := m.TransformPoint(p), tr.TransformPoint(p); !got.ApproxEqual(want, 1e-9) {
			t.Errorf("LocalToWorld(%v) = %v, want %v", p, got, want)
		}
	}
}
