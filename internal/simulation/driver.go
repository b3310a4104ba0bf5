// Package simulation drives one solid object through feature generation,
// orientation changes, ray sweeps and dataset export.
package simulation

import (
	"errors"
	"fmt"
	"math/rand"
	"sync"

	"go.uber.org/zap"

	"github.com/Faultbox/reflectsim/internal/config"
	"github.com/Faultbox/reflectsim/internal/dataset"
	"github.com/Faultbox/reflectsim/internal/features"
	"github.com/Faultbox/reflectsim/internal/geometry"
	"github.com/Faultbox/reflectsim/internal/sampling"
	"github.com/Faultbox/reflectsim/internal/scene"
	"github.com/Faultbox/reflectsim/internal/solid"
	"github.com/Faultbox/reflectsim/internal/tracer"
	"github.com/Faultbox/reflectsim/internal/voxel"
	"github.com/Faultbox/reflectsim/pkg/math"
)

// ErrNotConfigured is returned by operations that need an object before
// Configure has been called.
var ErrNotConfigured = errors.New("simulation: no object configured")

// Driver owns one solid object and its features. Mutating calls take the
// write lock; sweeps and voxelization share the read lock.
type Driver struct {
	mu  sync.RWMutex
	cfg *config.Config
	log *zap.Logger
	rng *rand.Rand

	factory  *solid.Factory
	detector tracer.Detector
	backend  scene.Backend

	object *solid.Object
	// baseSide is the largest side of the object before ScaleToUnit.
	baseSide    float64
	surface     features.SurfaceConfig
	featureSize float64
	minDistance float64
	rotation    math.Vec3
}

// New returns a driver for cfg. Call Configure before sweeping.
func New(cfg *config.Config, log *zap.Logger) (*Driver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}
	surface, err := features.ParseConfig(cfg.Simulation.ConfigID)
	if err != nil {
		return nil, err
	}
	return &Driver{
		cfg:         cfg,
		log:         log,
		rng:         rand.New(rand.NewSource(cfg.Simulation.Seed)),
		factory:     solid.NewFactory(cfg.Object.CustomMesh, log),
		detector:    tracer.NewHorizontalDetector(cfg.Detector.Position.Math(), cfg.Detector.Size),
		backend:     scene.Backend(cfg.Scene.Backend),
		surface:     surface,
		featureSize: cfg.Features.Size,
		minDistance: cfg.Features.MinDistance,
		rotation:    cfg.Object.Rotation.Math(),
	}, nil
}

// Detector returns the detector the driver sweeps against.
func (d *Driver) Detector() tracer.Detector {
	return d.detector
}

// Reseed replaces the random source.
func (d *Driver) Reseed(seed int64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.rng = rand.New(rand.NewSource(seed))
}

// Configure builds the base object for shape, scales it to the configured
// base size and places features for the current surface configuration.
func (d *Driver) Configure(shape solid.ShapeType) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	mesh, built, err := d.factory.Build(shape)
	if err != nil {
		return err
	}
	obj := solid.NewObject(built, mesh)
	d.baseSide = obj.LargestSide()
	if err := obj.ScaleToUnit(d.cfg.Object.BaseSize); err != nil {
		if !errors.Is(err, solid.ErrZeroSize) {
			return err
		}
		d.log.Warn("Object has no extent, scaling skipped", zap.String("shape", string(built)))
	}
	d.object = obj
	d.object.SetRotation(d.rotation)

	d.log.Info("Object configured",
		zap.String("shape", string(built)),
		zap.Int("triangles", len(mesh.Triangles)),
		zap.Float64("base_side", d.baseSide),
	)
	return d.regenerateLocked()
}

// ApplySurfaceConfiguration clears the current features and places new
// ones for configID with the given relative size and spacing.
func (d *Driver) ApplySurfaceConfiguration(configID int, featureSize, minDistance float64) error {
	surface, err := features.ParseConfig(configID)
	if err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.object == nil {
		return ErrNotConfigured
	}
	d.surface = surface
	d.featureSize = featureSize
	d.minDistance = minDistance
	return d.regenerateLocked()
}

// AbsoluteFeatureSize is the relative feature size times the object's
// unscaled largest side.
func (d *Driver) AbsoluteFeatureSize() float64 {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.featureSize * d.baseSide
}

func (d *Driver) regenerateLocked() error {
	d.object.ClearFeatures()
	if !d.surface.HasFeatures() {
		return nil
	}

	opts := sampling.DefaultOptions(d.minDistance)
	opts.MaxAttempts = d.cfg.Features.MaxAttempts
	opts.CandidateRetries = d.cfg.Features.CandidateRetries
	opts.SurfaceTolerance = d.cfg.Features.SurfaceTolerance

	placer := features.NewPlacer(d.surface, d.featureSize*d.baseSide, opts, d.log)
	placed, err := placer.Place(d.object.Surface(), d.rng)
	if err != nil {
		if errors.Is(err, geometry.ErrEmptyGeometry) {
			d.log.Warn("Object has no surface, features skipped", zap.Stringer("config", d.surface))
			return nil
		}
		return fmt.Errorf("placing features: %w", err)
	}
	d.object.AttachFeatures(placed)

	d.log.Debug("Features placed",
		zap.Stringer("config", d.surface),
		zap.Int("count", len(placed)),
		zap.Float64("min_distance", d.minDistance),
	)
	return nil
}

// OnOrientationChanged rotates the object, and its features, to the given
// Euler angles in degrees.
func (d *Driver) OnOrientationChanged(euler math.Vec3) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.rotation = euler
	if d.object != nil {
		d.object.SetRotation(euler)
	}
}

// FeatureCount returns the number of features attached to the object.
func (d *Driver) FeatureCount() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.object == nil {
		return 0
	}
	return d.object.FeatureCount()
}

func (d *Driver) tracerLocked(opts tracer.Options) (*tracer.Tracer, error) {
	if d.object == nil {
		return nil, ErrNotConfigured
	}
	q, err := scene.FromSolid(d.backend, d.object)
	if err != nil {
		return nil, err
	}
	opts.MaxReflections = d.cfg.Simulation.MaxReflections
	return tracer.New(q, d.detector, opts), nil
}

// SourceSweep casts the light source grid against the scene.
func (d *Driver) SourceSweep(recordPaths bool) (tracer.SweepResult, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	t, err := d.tracerLocked(tracer.Options{
		CheckAfterBounce: true,
		CheckOnEscape:    true,
		RecordPath:       recordPaths,
	})
	if err != nil {
		return tracer.SweepResult{}, err
	}
	grid := tracer.SourceGrid{
		Center:   d.cfg.Simulation.LightPosition.Math(),
		AreaSize: d.cfg.Simulation.LightAreaSize,
		PerAxis:  d.cfg.Simulation.RaysPerAxis,
	}
	return t.Sweep(grid, d.cfg.Simulation.Workers), nil
}

// CastAllRays returns the percentage of source rays that reach the detector.
func (d *Driver) CastAllRays() (float64, error) {
	res, err := d.SourceSweep(false)
	if err != nil {
		return 0, err
	}
	p := res.Percentage()
	d.log.Debug("Rays cast",
		zap.Int("total", res.Total),
		zap.Int("hits", res.Hits),
		zap.Float64("percentage", p),
	)
	return p, nil
}

// DetectorSweep casts rays from the detector's footprint toward the object
// and returns the sweep with a hit image. Noise is drawn after the sweep so
// the image is reproducible for a given seed.
func (d *Driver) DetectorSweep() (*tracer.HitImage, tracer.SweepResult, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	t, err := d.tracerLocked(tracer.Options{CheckAfterBounce: true})
	if err != nil {
		return nil, tracer.SweepResult{}, err
	}
	n := d.cfg.Simulation.RaysPerAxis
	grid := tracer.DetectorGrid{
		Detector: d.detector,
		PerAxis:  n,
		Offset:   d.detector.Forward().Scale(d.cfg.Detector.EmitterOffset),
	}
	res := t.Sweep(grid, d.cfg.Simulation.Workers)

	img := tracer.NewHitImage(n)
	img.Plot(d.detector, res)
	img.AddNoise(d.cfg.Detector.Noise, d.rng)

	d.log.Debug("Detector sweep",
		zap.Int("returned", res.Hits),
		zap.Int("total", res.Total),
	)
	return img, res, nil
}

// GetVoxelGrid voxelizes the base mesh in its current pose, labelling
// occupied cells with configID. Without a mesh the grid is all zero.
func (d *Driver) GetVoxelGrid(configID int) (*voxel.Grid, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.object == nil || d.object.Mesh.IsEmpty() {
		return voxel.NewGrid(voxel.Size), nil
	}
	opts := voxel.DefaultOptions()
	opts.Threshold = d.cfg.Dataset.VoxelThreshold
	opts.Workers = d.cfg.Simulation.Workers
	g, err := voxel.VoxelizeMesh(d.object.Mesh, d.object.Transform, configID, opts)
	if errors.Is(err, geometry.ErrEmptyGeometry) {
		return voxel.NewGrid(voxel.Size), nil
	}
	return g, err
}

// GenerateDataset reseeds, regenerates features, applies rotation and
// returns the resulting record.
func (d *Driver) GenerateDataset(seed int64, configID int, featureSize, minDistance float64, rotation math.Vec3) (dataset.Record, error) {
	d.Reseed(seed)
	if err := d.ApplySurfaceConfiguration(configID, featureSize, minDistance); err != nil {
		return dataset.Record{}, err
	}
	d.OnOrientationChanged(rotation)
	p, err := d.CastAllRays()
	if err != nil {
		return dataset.Record{}, err
	}
	return dataset.NewRecord(configID, rotation, p, featureSize, minDistance), nil
}

// Record returns a record for the current state and a fresh sweep.
func (d *Driver) Record() (dataset.Record, error) {
	p, err := d.CastAllRays()
	if err != nil {
		return dataset.Record{}, err
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	return dataset.NewRecord(int(d.surface), d.rotation, p, d.featureSize, d.minDistance), nil
}
