package features

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/Faultbox/reflectsim/internal/geometry"
	"github.com/Faultbox/reflectsim/internal/sampling"
	"github.com/Faultbox/reflectsim/pkg/math"
)

func TestParseConfig(t *testing.T) {
	tests := []struct {
		id          int
		spikes      bool
		hemispheres bool
		wantErr     bool
	}{
		{1, false, false, false},
		{2, true, false, false},
		{3, false, true, false},
		{4, true, true, false},
		{0, false, false, true},
		{5, false, false, true},
	}
	for _, tt := range tests {
		c, err := ParseConfig(tt.id)
		if tt.wantErr {
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("ParseConfig(%d) error = %v, want ErrInvalidConfig", tt.id, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("ParseConfig(%d): %v", tt.id, err)
		}
		if c.HasSpikes() != tt.spikes || c.HasHemispheres() != tt.hemispheres {
			t.Errorf("config %d: spikes=%v hemispheres=%v", tt.id, c.HasSpikes(), c.HasHemispheres())
		}
	}
}

func TestSpikeMesh(t *testing.T) {
	m := SpikeMesh()
	if len(m.Vertices) != 5 || len(m.Triangles) != 6 {
		t.Fatalf("spike has %d vertices, %d triangles", len(m.Vertices), len(m.Triangles))
	}
	b := m.Bounds()
	if !b.Min.ApproxEqual(math.Vec3{X: -0.2, Z: -0.2}, 1e-12) || !b.Max.ApproxEqual(math.Vec3{X: 0.2, Y: 0.6, Z: 0.2}, 1e-12) {
		t.Errorf("bounds = %+v", b)
	}
}

func TestHemisphereMesh(t *testing.T) {
	m := HemisphereMesh(HemisphereRadius, HemisphereSegments, HemisphereRings)
	if len(m.Triangles) == 0 {
		t.Fatal("hemisphere has no triangles")
	}
	for i, v := range m.Vertices {
		if v.Y < -1e-9 {
			t.Fatalf("vertex %d below equator: %v", i, v)
		}
		if d := v.Length(); d < HemisphereRadius-1e-9 || d > HemisphereRadius+1e-9 {
			t.Fatalf("vertex %d off sphere: radius %f", i, d)
		}
	}
	full := geometry.UVSphere(HemisphereRadius, HemisphereSegments, HemisphereRings)
	if want := len(full.Triangles) / 2; len(m.Triangles) != want {
		t.Errorf("hemisphere triangles = %d, want %d", len(m.Triangles), want)
	}
}

func floor() *geometry.Surface {
	m, _ := geometry.NewMesh(
		[]math.Vec3{{X: -2, Z: -2}, {X: 2, Z: -2}, {X: 2, Z: 2}, {X: -2, Z: 2}},
		[][3]int{{0, 2, 1}, {0, 3, 2}},
	)
	return geometry.NewSurface(m, math.NewTransform())
}

func TestPlaceFlatIsEmpty(t *testing.T) {
	p := NewPlacer(Flat, 0.2, sampling.DefaultOptions(0.5), nil)
	got, err := p.Place(floor(), rand.New(rand.NewSource(1)))
	if err != nil || got != nil {
		t.Errorf("Place(flat) = %v, %v; want nil, nil", got, err)
	}
}

func TestPlaceOrientsToNormal(t *testing.T) {
	p := NewPlacer(Spikes, 0.25, sampling.DefaultOptions(0.8), nil)
	got, err := p.Place(floor(), rand.New(rand.NewSource(4)))
	if err != nil {
		t.Fatalf("Place: %v", err)
	}
	if len(got) == 0 {
		t.Fatal("no features placed")
	}
	for i, f := range got {
		if f.Kind != Spike {
			t.Errorf("feature %d kind = %v, want spike", i, f.Kind)
		}
		if !f.Transform.Up().ApproxEqual(math.Up, 1e-9) {
			t.Errorf("feature %d up = %v, want +Y", i, f.Transform.Up())
		}
		if !f.Transform.Scale.ApproxEqual(math.One.Scale(0.25), 1e-12) {
			t.Errorf("feature %d scale = %v", i, f.Transform.Scale)
		}
		// The apex sits 0.6*size above the sampled point.
		apex := f.Transform.TransformPoint(math.Vec3{Y: 0.6})
		if !apex.ApproxEqual(f.Transform.Position.Add(math.Vec3{Y: 0.15}), 1e-9) {
			t.Errorf("feature %d apex = %v", i, apex)
		}
	}
}

func TestPlaceMixedUsesBothKinds(t *testing.T) {
	p := NewPlacer(Mixed, 0.1, sampling.DefaultOptions(0.4), nil)
	got, err := p.Place(floor(), rand.New(rand.NewSource(9)))
	if err != nil {
		t.Fatalf("Place: %v", err)
	}
	counts := map[Kind]int{}
	for _, f := range got {
		counts[f.Kind]++
	}
	if counts[Spike] == 0 || counts[Hemisphere] == 0 {
		t.Errorf("kinds = %v, want both spikes and hemispheres", counts)
	}
}

func TestPlaceTiltedSurface(t *testing.T) {
	m, _ := geometry.NewMesh(
		[]math.Vec3{{X: -2, Z: -2}, {X: 2, Z: -2}, {X: 2, Z: 2}, {X: -2, Z: 2}},
		[][3]int{{0, 2, 1}, {0, 3, 2}},
	)
	tr := math.NewTransform()
	tr.Rotation = math.QuatFromEulerDegrees(math.Vec3{X: 90})
	surface := geometry.NewSurface(m, tr)
	want := tr.TransformDirection(math.Up)

	p := NewPlacer(Hemispheres, 0.2, sampling.DefaultOptions(1), nil)
	got, err := p.Place(surface, rand.New(rand.NewSource(2)))
	if err != nil {
		t.Fatalf("Place: %v", err)
	}
	for i, f := range got {
		if !f.Transform.Up().ApproxEqual(want, 1e-9) {
			t.Errorf("feature %d up = %v, want %v", i, f.Transform.Up(), want)
		}
	}
}
