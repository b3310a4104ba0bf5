package sampling

import (
	"math/rand"
	"testing"

	"github.com/Faultbox/reflectsim/internal/geometry"
	"github.com/Faultbox/reflectsim/pkg/math"
)

func pyramid(t *testing.T) *geometry.Mesh {
	t.Helper()
	m, err := geometry.NewMeshFromIndices(
		[]math.Vec3{
			{X: -1, Z: -1}, {X: 1, Z: -1}, {X: 1, Z: 1}, {X: -1, Z: 1}, {Y: 1},
		},
		[]int{0, 1, 2, 0, 2, 3, 0, 4, 1, 1, 4, 2, 2, 4, 3, 3, 4, 0},
	)
	if err != nil {
		t.Fatalf("NewMeshFromIndices: %v", err)
	}
	return m
}

func TestPoissonMinimumDistance(t *testing.T) {
	mesh := pyramid(t)
	for _, minDist := range []float64{0.1, 0.3, 0.5} {
		for seed := int64(1); seed <= 3; seed++ {
			rng := rand.New(rand.NewSource(seed))
			points, err := PoissonDisk(mesh, math.NewTransform(), rng, DefaultOptions(minDist))
			if err != nil {
				t.Fatalf("PoissonDisk(%v, seed %d): %v", minDist, seed, err)
			}
			if len(points) < 2 {
				t.Fatalf("PoissonDisk(%v, seed %d) returned %d points", minDist, seed, len(points))
			}
			for i := range points {
				for j := i + 1; j < len(points); j++ {
					if d := points[i].Distance(points[j]); d < minDist-1e-9 {
						t.Fatalf("minDist %v seed %d: points %d and %d are %f apart", minDist, seed, i, j, d)
					}
				}
			}
		}
	}
}

func TestPoissonPointsNearSurface(t *testing.T) {
	mesh := pyramid(t)
	surface := geometry.NewSurface(mesh, math.NewTransform())
	rng := rand.New(rand.NewSource(11))
	opts := DefaultOptions(0.3)
	points, err := NewSampler(surface, rng, opts).Sample()
	if err != nil {
		t.Fatalf("Sample: %v", err)
	}
	limit := opts.MinDistance*opts.SurfaceTolerance + 1e-9
	for i, p := range points {
		if d := surface.Distance(p); d > limit {
			t.Errorf("point %d is %f from the surface, limit %f", i, d, limit)
		}
	}
}

func TestPoissonDeterministic(t *testing.T) {
	mesh := pyramid(t)
	run := func() []math.Vec3 {
		pts, err := PoissonDisk(mesh, math.NewTransform(), rand.New(rand.NewSource(42)), DefaultOptions(0.4))
		if err != nil {
			t.Fatalf("PoissonDisk: %v", err)
		}
		return pts
	}
	a, b := run(), run()
	if len(a) != len(b) {
		t.Fatalf("len = %d and %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("point %d differs: %v vs %v", i, a[i], b[i])
		}
	}
}

func TestPoissonMaxPoints(t *testing.T) {
	opts := DefaultOptions(0.1)
	opts.MaxPoints = 5
	pts, err := PoissonDisk(pyramid(t), math.NewTransform(), rand.New(rand.NewSource(2)), opts)
	if err != nil {
		t.Fatalf("PoissonDisk: %v", err)
	}
	if len(pts) != 5 {
		t.Errorf("len = %d, want 5", len(pts))
	}
}

func TestPoissonEmptyMesh(t *testing.T) {
	_, err := PoissonDisk(&geometry.Mesh{}, math.NewTransform(), rand.New(rand.NewSource(1)), DefaultOptions(0.3))
	if err != geometry.ErrEmptyGeometry {
		t.Errorf("error = %v, want ErrEmptyGeometry", err)
	}
}

func TestGenerateCandidateFailure(t *testing.T) {
	mesh := pyramid(t)
	s := NewSampler(geometry.NewSurface(mesh, math.NewTransform()), rand.New(rand.NewSource(3)), DefaultOptions(0.2))
	// Far from every face no direction can land on the surface.
	p, ok := s.GenerateCandidate(math.Vec3{Y: 50})
	if ok {
		t.Fatalf("GenerateCandidate returned %v, want failure", p)
	}
	if !p.IsZero() {
		t.Errorf("failed candidate = %v, want zero value", p)
	}
}
