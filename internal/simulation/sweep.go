package simulation

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/reflectsim/internal/dataset"
	"github.com/Faultbox/reflectsim/internal/voxel"
	"github.com/Faultbox/reflectsim/pkg/math"
)

// RecordWriter receives dataset lines from a sweep.
type RecordWriter interface {
	WriteVoxels(configID int, g *voxel.Grid) error
	WriteRecord(r dataset.Record) error
}

// SweepStats summarises a batch sweep.
type SweepStats struct {
	Configurations int
	Records        int
	Elapsed        time.Duration
}

// Sweep runs the batch parameter grid: for every config id, feature size
// and minimum distance it regenerates the features, then records one line
// per rotation step over X, Y and Z in [0, 360). A voxel line is written
// the first time each config id is seen, with the object unrotated.
func (d *Driver) Sweep(ctx context.Context, w RecordWriter) (SweepStats, error) {
	sc := d.cfg.Sweep
	start := time.Now()
	stats := SweepStats{}
	written := make(map[int]bool)

	for _, id := range sc.ConfigIDs {
		for _, fs := range sc.FeatureSizes {
			for _, md := range sc.MinDistances {
				if err := ctx.Err(); err != nil {
					return stats, err
				}
				d.OnOrientationChanged(math.Vec3{})
				if err := d.ApplySurfaceConfiguration(id, fs, md); err != nil {
					return stats, err
				}
				if !written[id] {
					g, err := d.GetVoxelGrid(id)
					if err != nil {
						return stats, err
					}
					if err := w.WriteVoxels(id, g); err != nil {
						return stats, err
					}
					written[id] = true
				}
				stats.Configurations++

				n, err := d.sweepRotations(ctx, w, sc.AngleStep)
				stats.Records += n
				if err != nil {
					return stats, err
				}
				d.log.Info("Configuration swept",
					zap.Int("config_id", id),
					zap.Float64("feature_size", fs),
					zap.Float64("min_distance", md),
					zap.Int("features", d.FeatureCount()),
					zap.Int("records", stats.Records),
				)
			}
		}
	}
	stats.Elapsed = time.Since(start)
	return stats, nil
}

func (d *Driver) sweepRotations(ctx context.Context, w RecordWriter, step int) (int, error) {
	n := 0
	for ax := 0; ax < 360; ax += step {
		if err := ctx.Err(); err != nil {
			return n, err
		}
		for ay := 0; ay < 360; ay += step {
			for az := 0; az < 360; az += step {
				d.OnOrientationChanged(math.Vec3{X: float64(ax), Y: float64(ay), Z: float64(az)})
				rec, err := d.Record()
				if err != nil {
					return n, err
				}
				if err := w.WriteRecord(rec); err != nil {
					return n, err
				}
				n++
			}
		}
	}
	return n, nil
}
