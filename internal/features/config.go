// Package features builds the spike and hemisphere bumps placed on a solid's
// surface and decides which kind goes where.
package features

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig is returned for surface configuration codes outside 1..4.
var ErrInvalidConfig = errors.New("invalid surface configuration")

// SurfaceConfig selects which features decorate the surface.
type SurfaceConfig int

// Surface configurations, numbered as they appear in dataset records.
const (
	Flat        SurfaceConfig = 1
	Spikes      SurfaceConfig = 2
	Hemispheres SurfaceConfig = 3
	Mixed       SurfaceConfig = 4
)

// ParseConfig validates a numeric configuration id.
func ParseConfig(id int) (SurfaceConfig, error) {
	c := SurfaceConfig(id)
	if !c.Valid() {
		return 0, fmt.Errorf("%w: %d", ErrInvalidConfig, id)
	}
	return c, nil
}

// Valid reports whether c is one of the four known configurations.
func (c SurfaceConfig) Valid() bool {
	return c >= Flat && c <= Mixed
}

// HasSpikes reports whether spikes are enabled.
func (c SurfaceConfig) HasSpikes() bool {
	return c == Spikes || c == Mixed
}

// HasHemispheres reports whether hemispheres are enabled.
func (c SurfaceConfig) HasHemispheres() bool {
	return c == Hemispheres || c == Mixed
}

// HasFeatures reports whether any feature kind is enabled.
func (c SurfaceConfig) HasFeatures() bool {
	return c.HasSpikes() || c.HasHemispheres()
}

func (c SurfaceConfig) String() string {
	switch c {
	case Flat:
		return "flat"
	case Spikes:
		return "spikes"
	case Hemispheres:
		return "hemispheres"
	case Mixed:
		return "mixed"
	default:
		return fmt.Sprintf("SurfaceConfig(%d)", int(c))
	}
}

// Kind is a feature shape.
type Kind int

// Feature kinds.
const (
	Spike Kind = iota
	Hemisphere
)

func (k Kind) String() string {
	switch k {
	case Spike:
		return "spike"
	case Hemisphere:
		return "hemisphere"
	default:
		return "unknown"
	}
}
