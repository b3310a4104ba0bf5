package voxel

import (
	gomath "math"
	"runtime"
	"sync"

	"github.com/Faultbox/reflectsim/internal/geometry"
	"github.com/Faultbox/reflectsim/pkg/math"
)

// DefaultThreshold is the surface distance below which a cell is occupied.
const DefaultThreshold = 0.2

// Options controls voxelization.
type Options struct {
	N         int
	Threshold float64
	// Workers bounds the goroutines used; <= 0 means one per CPU.
	Workers int
}

// DefaultOptions returns a 16³ grid with the default threshold.
func DefaultOptions() Options {
	return Options{N: Size, Threshold: DefaultThreshold}
}

// Voxelize lays an N³ grid over bounds and labels every cell whose centre
// lies within Threshold of a triangle. Cell centres sit at
// min + (i+0.5)*size/N on each axis. Triangles with zero total area
// return geometry.ErrEmptyGeometry.
func Voxelize(tris []geometry.Triangle, bounds geometry.Bounds, label int, opts Options) (*Grid, error) {
	if !geometry.HasArea(tris) {
		return nil, geometry.ErrEmptyGeometry
	}
	if opts.N <= 0 {
		opts.N = Size
	}
	if opts.Threshold <= 0 {
		opts.Threshold = DefaultThreshold
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > opts.N {
		workers = opts.N
	}

	n := opts.N
	g := NewGrid(n)
	step := bounds.Size().Scale(1 / float64(n))

	slabs := make(chan int, n)
	for x := 0; x < n; x++ {
		slabs <- x
	}
	close(slabs)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for x := range slabs {
				for y := 0; y < n; y++ {
					for z := 0; z < n; z++ {
						p := math.Vec3{
							X: bounds.Min.X + (float64(x)+0.5)*step.X,
							Y: bounds.Min.Y + (float64(y)+0.5)*step.Y,
							Z: bounds.Min.Z + (float64(z)+0.5)*step.Z,
						}
						if minDistance(p, tris) < opts.Threshold {
							g.Set(x, y, z, label)
						}
					}
				}
			}
		}()
	}
	wg.Wait()
	return g, nil
}

// VoxelizeMesh voxelizes the transformed mesh over its world bounding box.
func VoxelizeMesh(m *geometry.Mesh, tr math.Transform, label int, opts Options) (*Grid, error) {
	if m.IsEmpty() {
		return nil, geometry.ErrEmptyGeometry
	}
	return Voxelize(m.WorldTriangles(tr), m.WorldBounds(tr), label, opts)
}

func minDistance(p math.Vec3, tris []geometry.Triangle) float64 {
	best := gomath.Inf(1)
	for _, t := range tris {
		if d := geometry.PointTriangleDistance(p, t.A, t.B, t.C); d < best {
			best = d
		}
	}
	return best
}
