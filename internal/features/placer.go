package features

import (
	"math/rand"

	"go.uber.org/zap"

	"github.com/Faultbox/reflectsim/internal/geometry"
	"github.com/Faultbox/reflectsim/internal/sampling"
	"github.com/Faultbox/reflectsim/pkg/math"
)

// Instance is one placed feature: a shared template mesh plus its own
// world transform.
type Instance struct {
	Kind      Kind
	Mesh      *geometry.Mesh
	Transform math.Transform
}

// WorldTriangles returns the feature's triangles in world space.
func (f Instance) WorldTriangles() []geometry.Triangle {
	return f.Mesh.WorldTriangles(f.Transform)
}

// Placer decorates a surface according to a SurfaceConfig.
type Placer struct {
	Config SurfaceConfig
	// AbsoluteSize is the uniform scale applied to every feature template.
	AbsoluteSize float64
	Sampling     sampling.Options
	Log          *zap.Logger

	spike      *geometry.Mesh
	hemisphere *geometry.Mesh
}

// NewPlacer returns a placer with shared template meshes.
func NewPlacer(cfg SurfaceConfig, absoluteSize float64, opts sampling.Options, log *zap.Logger) *Placer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Placer{
		Config:       cfg,
		AbsoluteSize: absoluteSize,
		Sampling:     opts,
		Log:          log,
		spike:        SpikeMesh(),
		hemisphere:   HemisphereMesh(HemisphereRadius, HemisphereSegments, HemisphereRings),
	}
}

// Place samples the surface and returns one feature per accepted point.
// Flat configurations return nil without touching rng.
func (p *Placer) Place(surface *geometry.Surface, rng *rand.Rand) ([]Instance, error) {
	if !p.Config.HasFeatures() {
		return nil, nil
	}

	sampler := sampling.NewSampler(surface, rng, p.Sampling)
	points, err := sampler.Sample()
	if err != nil {
		return nil, err
	}
	stats := sampler.Stats()
	p.Log.Debug("Surface sampled",
		zap.Int("points", stats.Accepted),
		zap.Int("rejected", stats.Rejected),
		zap.Int("failed_candidates", stats.FailedCandidates),
	)
	if len(points) == 0 {
		p.Log.Warn("No feature points sampled", zap.Stringer("config", p.Config))
		return nil, nil
	}

	out := make([]Instance, 0, len(points))
	for _, pt := range points {
		hit, err := surface.Nearest(pt)
		if err != nil {
			return nil, err
		}
		normal := hit.Normal
		if normal.IsZero() {
			normal = math.Up
		}
		out = append(out, p.instance(p.chooseKind(rng), pt, normal))
	}
	return out, nil
}

// chooseKind flips a fair coin only when both kinds are enabled.
func (p *Placer) chooseKind(rng *rand.Rand) Kind {
	switch {
	case p.Config.HasSpikes() && p.Config.HasHemispheres():
		if rng.Float64() < 0.5 {
			return Spike
		}
		return Hemisphere
	case p.Config.HasSpikes():
		return Spike
	default:
		return Hemisphere
	}
}

func (p *Placer) instance(kind Kind, at, normal math.Vec3) Instance {
	tr := math.NewTransform()
	tr.Position = at
	tr.SetUp(normal)
	tr.Scale = math.One.Scale(p.AbsoluteSize)

	mesh := p.spike
	if kind == Hemisphere {
		mesh = p.hemisphere
	}
	return Instance{Kind: kind, Mesh: mesh, Transform: tr}
}
