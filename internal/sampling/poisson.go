// Package sampling distributes points over mesh surfaces.
package sampling

import (
	gomath "math"
	"math/rand"

	"github.com/Faultbox/reflectsim/internal/geometry"
	"github.com/Faultbox/reflectsim/pkg/math"
)

// Defaults for Options.
const (
	DefaultMaxAttempts      = 30
	DefaultCandidateRetries = 10
	DefaultSurfaceTolerance = 0.1
)

// Options controls Poisson-disk sampling.
type Options struct {
	// MinDistance is the minimum distance between any two accepted points.
	MinDistance float64
	// MaxAttempts bounds candidates tried around one active point before it
	// is retired.
	MaxAttempts int
	// CandidateRetries bounds the directions tried per candidate before the
	// candidate counts as failed.
	CandidateRetries int
	// SurfaceTolerance is the on-surface threshold as a fraction of MinDistance.
	SurfaceTolerance float64
	// MaxPoints stops sampling early once reached. Zero means unlimited.
	MaxPoints int
}

// DefaultOptions returns options for the given minimum distance.
func DefaultOptions(minDistance float64) Options {
	return Options{
		MinDistance:      minDistance,
		MaxAttempts:      DefaultMaxAttempts,
		CandidateRetries: DefaultCandidateRetries,
		SurfaceTolerance: DefaultSurfaceTolerance,
	}
}

func (o Options) withDefaults() Options {
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = DefaultMaxAttempts
	}
	if o.CandidateRetries <= 0 {
		o.CandidateRetries = DefaultCandidateRetries
	}
	if o.SurfaceTolerance <= 0 {
		o.SurfaceTolerance = DefaultSurfaceTolerance
	}
	return o
}

// Stats reports what a sampling pass did.
type Stats struct {
	Accepted         int
	Rejected         int
	FailedCandidates int
}

// Sampler runs Poisson-disk sampling over one surface. It is not safe for
// concurrent use; run one Sampler per goroutine.
type Sampler struct {
	surface *geometry.Surface
	rng     *rand.Rand
	opts    Options
	stats   Stats
}

// NewSampler prepares a sampler for the surface.
func NewSampler(surface *geometry.Surface, rng *rand.Rand, opts Options) *Sampler {
	return &Sampler{surface: surface, rng: rng, opts: opts.withDefaults()}
}

// Stats returns counters from the last Sample call.
func (s *Sampler) Stats() Stats {
	return s.stats
}

// Sample returns points on the surface no two of which are closer than
// MinDistance. It seeds with one uniform surface point and grows from an
// active list; a point that yields no acceptable neighbour within
// MaxAttempts is retired but stays in the output.
func (s *Sampler) Sample() ([]math.Vec3, error) {
	s.stats = Stats{}
	seed, err := s.surface.RandomPoint(s.rng)
	if err != nil {
		return nil, err
	}
	if s.opts.MinDistance <= 0 {
		s.stats.Accepted = 1
		return []math.Vec3{seed}, nil
	}

	points := []math.Vec3{seed}
	active := []math.Vec3{seed}
	for len(active) > 0 {
		if s.opts.MaxPoints > 0 && len(points) >= s.opts.MaxPoints {
			break
		}
		idx := s.rng.Intn(len(active))
		current := active[idx]

		found := false
		for i := 0; i < s.opts.MaxAttempts; i++ {
			candidate, ok := s.GenerateCandidate(current)
			if !ok {
				s.stats.FailedCandidates++
				continue
			}
			if !farEnough(candidate, points, s.opts.MinDistance) {
				s.stats.Rejected++
				continue
			}
			points = append(points, candidate)
			active = append(active, candidate)
			found = true
			break
		}

		if !found {
			active[idx] = active[len(active)-1]
			active = active[:len(active)-1]
		}
	}
	s.stats.Accepted = len(points)
	return points, nil
}

// GenerateCandidate proposes a point at exactly MinDistance from p, in a
// direction with uniform azimuth and elevation within ±45°, and keeps it only
// if it lies within SurfaceTolerance*MinDistance of the surface. It reports
// false when every retry misses the surface.
func (s *Sampler) GenerateCandidate(p math.Vec3) (math.Vec3, bool) {
	radius := s.opts.MinDistance
	threshold := radius * s.opts.SurfaceTolerance
	for retry := 0; retry < s.opts.CandidateRetries; retry++ {
		azimuth := s.rng.Float64() * 2 * gomath.Pi
		elevation := (s.rng.Float64()*2 - 1) * gomath.Pi / 4

		dir := math.Vec3{
			X: gomath.Cos(azimuth) * gomath.Cos(elevation),
			Y: gomath.Sin(elevation),
			Z: gomath.Sin(azimuth) * gomath.Cos(elevation),
		}
		candidate := p.Add(dir.Scale(radius))
		if s.surface.Distance(candidate) <= threshold {
			return candidate, true
		}
	}
	return math.Vec3{}, false
}

func farEnough(p math.Vec3, points []math.Vec3, minDistance float64) bool {
	minSq := minDistance * minDistance
	for _, q := range points {
		if p.Sub(q).LengthSquared() < minSq {
			return false
		}
	}
	return true
}

// PoissonDisk samples the surface of the transformed mesh.
func PoissonDisk(m *geometry.Mesh, tr math.Transform, rng *rand.Rand, opts Options) ([]math.Vec3, error) {
	if m.IsEmpty() {
		return nil, geometry.ErrEmptyGeometry
	}
	return NewSampler(geometry.NewSurface(m, tr), rng, opts).Sample()
}
