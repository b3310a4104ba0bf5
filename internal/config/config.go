// Package config handles simulator configuration loading and management.
package config

import (
	"errors"
	"fmt"

	"github.com/Faultbox/reflectsim/pkg/math"
)

// ErrInvalid is returned by Validate for out-of-range settings.
var ErrInvalid = errors.New("invalid config")

// Config holds all simulator settings.
type Config struct {
	Simulation SimulationConfig `yaml:"simulation"`
	Object     ObjectConfig     `yaml:"object"`
	Features   FeaturesConfig   `yaml:"features"`
	Detector   DetectorConfig   `yaml:"detector"`
	Dataset    DatasetConfig    `yaml:"dataset"`
	Sweep      SweepConfig      `yaml:"sweep"`
	Scene      SceneConfig      `yaml:"scene"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// Vec3 is a YAML-friendly vector.
type Vec3 struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
	Z float64 `yaml:"z"`
}

// Math converts to a math.Vec3.
func (v Vec3) Math() math.Vec3 {
	return math.Vec3{X: v.X, Y: v.Y, Z: v.Z}
}

// SimulationConfig holds the light source and tracing settings.
type SimulationConfig struct {
	Seed           int64   `yaml:"seed"`
	ConfigID       int     `yaml:"config_id"`
	RaysPerAxis    int     `yaml:"rays_per_axis"`
	MaxReflections int     `yaml:"max_reflections"`
	LightPosition  Vec3    `yaml:"light_position"`
	LightAreaSize  float64 `yaml:"light_area_size"`
	Workers        int     `yaml:"workers"` // 0 = NumCPU
}

// ObjectConfig holds the base solid settings.
type ObjectConfig struct {
	Shape      string  `yaml:"shape"`
	CustomMesh string  `yaml:"custom_mesh"` // OFF file for shape "custom"
	BaseSize   float64 `yaml:"base_size"`
	Rotation   Vec3    `yaml:"rotation"` // Euler degrees
}

// FeaturesConfig holds surface feature placement settings.
type FeaturesConfig struct {
	Size             float64 `yaml:"size"` // relative to the object's largest side
	MinDistance      float64 `yaml:"min_distance"`
	MaxAttempts      int     `yaml:"max_attempts"`
	CandidateRetries int     `yaml:"candidate_retries"`
	SurfaceTolerance float64 `yaml:"surface_tolerance"`
}

// DetectorConfig holds the detector plane and hit image settings.
type DetectorConfig struct {
	Position      Vec3    `yaml:"position"`
	Size          float64 `yaml:"size"`
	EmitterOffset float64 `yaml:"emitter_offset"`
	Noise         float64 `yaml:"noise"`
	ImageScale    int     `yaml:"image_scale"`
	ImageDir      string  `yaml:"image_dir"`
}

// DatasetConfig holds dataset output settings.
type DatasetConfig struct {
	Path           string  `yaml:"path"` // .sz or .zst selects compression
	VoxelThreshold float64 `yaml:"voxel_threshold"`
	NumpyPath      string  `yaml:"numpy_path"`
}

// SweepConfig holds the batch parameter grid.
type SweepConfig struct {
	ConfigIDs    []int     `yaml:"config_ids"`
	FeatureSizes []float64 `yaml:"feature_sizes"`
	MinDistances []float64 `yaml:"min_distances"`
	AngleStep    int       `yaml:"angle_step"`
}

// SceneConfig selects the ray cast backend.
type SceneConfig struct {
	Backend string `yaml:"backend"` // bvh, brute or model3d
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Simulation: SimulationConfig{
			Seed:           1,
			ConfigID:       1,
			RaysPerAxis:    15,
			MaxReflections: 5,
			LightPosition:  Vec3{Y: 7},
			LightAreaSize:  2,
		},
		Object: ObjectConfig{
			Shape:    "tetrahedron",
			BaseSize: 2,
		},
		Features: FeaturesConfig{
			Size:             0.2,
			MinDistance:      0.5,
			MaxAttempts:      30,
			CandidateRetries: 10,
			SurfaceTolerance: 0.1,
		},
		Detector: DetectorConfig{
			Position:   Vec3{Y: 7.76},
			Size:       4,
			Noise:      0.05,
			ImageScale: 8,
			ImageDir:   "images",
		},
		Dataset: DatasetConfig{
			Path:           "dataset.txt",
			VoxelThreshold: 0.2,
		},
		Sweep: SweepConfig{
			ConfigIDs:    []int{1, 2, 3},
			FeatureSizes: []float64{0.1, 0.15, 0.2, 0.25, 0.3},
			MinDistances: []float64{0.1, 0.2, 0.3, 0.4},
			AngleStep:    5,
		},
		Scene: SceneConfig{
			Backend: "bvh",
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Validate reports the first out-of-range setting.
func (c *Config) Validate() error {
	switch {
	case c.Simulation.RaysPerAxis <= 0:
		return fmt.Errorf("%w: rays_per_axis must be positive, got %d", ErrInvalid, c.Simulation.RaysPerAxis)
	case c.Simulation.MaxReflections < 0:
		return fmt.Errorf("%w: max_reflections must not be negative", ErrInvalid)
	case !validConfigID(c.Simulation.ConfigID):
		return fmt.Errorf("%w: config_id %d out of range 1..4", ErrInvalid, c.Simulation.ConfigID)
	case c.Object.BaseSize < 0:
		return fmt.Errorf("%w: base_size must not be negative", ErrInvalid)
	case c.Features.Size < 0 || c.Features.MinDistance < 0:
		return fmt.Errorf("%w: feature size and min distance must not be negative", ErrInvalid)
	case c.Detector.Size <= 0:
		return fmt.Errorf("%w: detector size must be positive", ErrInvalid)
	case c.Detector.Noise < 0 || c.Detector.Noise > 1:
		return fmt.Errorf("%w: detector noise must be within [0, 1]", ErrInvalid)
	case c.Sweep.AngleStep <= 0:
		return fmt.Errorf("%w: angle_step must be positive", ErrInvalid)
	}
	for _, id := range c.Sweep.ConfigIDs {
		if !validConfigID(id) {
			return fmt.Errorf("%w: sweep config id %d out of range 1..4", ErrInvalid, id)
		}
	}
	return nil
}

func validConfigID(id int) bool {
	return id >= 1 && id <= 4
}
