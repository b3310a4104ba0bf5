// reflectsim simulates light reflecting off a decorated solid and measures
// how much of it reaches a detector plane.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"

	"github.com/unixpickle/essentials"
	"go.uber.org/zap"

	"github.com/Faultbox/reflectsim/internal/config"
	"github.com/Faultbox/reflectsim/internal/dataset"
	"github.com/Faultbox/reflectsim/internal/logger"
	"github.com/Faultbox/reflectsim/internal/simulation"
	"github.com/Faultbox/reflectsim/internal/solid"
	"github.com/Faultbox/reflectsim/internal/voxel"
)

func main() {
	config.ParseFlags()
	args := config.Args()
	if len(args) < 1 {
		printUsage()
		os.Exit(1)
	}

	command := args[0]
	args = args[1:]

	switch command {
	case "help", "-h", "--help":
		printUsage()
		return
	case "init-config":
		cmdInitConfig(args)
		return
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	logger.Sugar.Debugf("Config: %+v", cfg)

	switch command {
	case "run":
		cmdRun(cfg)
	case "dataset":
		cmdDataset(cfg, args)
	case "voxels":
		cmdVoxels(cfg, args)
	case "image":
		cmdImage(cfg)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`reflectsim - reflective ray detection simulator

Usage:
  reflectsim [flags] <command> [args]

Commands:
  run                       Cast the light source grid once and print the detection percentage
  dataset                   Run the batch sweep and append records to the dataset file
  dataset inspect <file>    Summarise an existing dataset file
  voxels [file.npz]         Print the voxel grid summary, optionally export it as NumPy
  image                     Cast rays from the detector and save a hit image
  init-config [file]        Write the default configuration as YAML
  help                      Show this help

Flags:
  --config <file>   Config file (default ./reflectsim.yaml)
  --debug           Debug logging
  --seed <n>        Random seed
  --config-id <n>   Surface configuration: 1 flat, 2 spikes, 3 hemispheres, 4 mixed
  --rays <n>        Rays per grid axis
  --shape <name>    tetrahedron, cube, sphere, capsule, cylinder or custom
  --out <file>      Dataset path (.sz for snappy, .zst for zstd)

Examples:
  reflectsim --config-id 2 --rays 31 run
  reflectsim --out data/spikes.zst dataset
  reflectsim dataset inspect data/spikes.zst
  reflectsim --shape sphere voxels sphere.npz`)
}

func newDriver(cfg *config.Config) *simulation.Driver {
	shape, err := solid.ParseShape(cfg.Object.Shape)
	essentials.Must(err)
	d, err := simulation.New(cfg, logger.L())
	essentials.Must(err)
	essentials.Must(d.Configure(shape))
	return d
}

func cmdRun(cfg *config.Config) {
	d := newDriver(cfg)
	res, err := d.SourceSweep(false)
	essentials.Must(err)

	fmt.Printf("Shape:      %s\n", cfg.Object.Shape)
	fmt.Printf("Config:     %d\n", cfg.Simulation.ConfigID)
	fmt.Printf("Features:   %d\n", d.FeatureCount())
	fmt.Printf("Rays:       %d\n", res.Total)
	fmt.Printf("Hits:       %d\n", res.Hits)
	fmt.Printf("Percentage: %.3f\n", res.Percentage())
}

func cmdDataset(cfg *config.Config, args []string) {
	if len(args) > 0 && args[0] == "inspect" {
		if len(args) < 2 {
			fmt.Fprintln(os.Stderr, "Usage: reflectsim dataset inspect <file>")
			os.Exit(1)
		}
		inspect(args[1], os.Stdout)
		return
	}

	d := newDriver(cfg)
	w, err := dataset.Open(cfg.Dataset.Path, logger.L())
	essentials.Must(err)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	stats, err := d.Sweep(ctx, w)
	if cerr := w.Close(); cerr != nil {
		logger.Error("closing dataset", zap.Error(cerr))
	}
	if err != nil {
		logger.Error("sweep stopped", zap.Error(err), zap.Int("records", stats.Records))
		os.Exit(1)
	}
	logger.Info("Dataset written",
		zap.String("path", cfg.Dataset.Path),
		zap.Int("configurations", stats.Configurations),
		zap.Int("records", stats.Records),
		zap.Duration("elapsed", stats.Elapsed),
	)
}

func inspect(path string, out io.Writer) {
	r, err := dataset.OpenReader(path, voxel.Size)
	essentials.Must(err)
	defer r.Close()

	grids, records, err := r.ReadAll()
	essentials.Must(err)

	type summary struct {
		count int
		sum   float64
	}
	byConfig := make(map[int]*summary)
	for _, rec := range records {
		s := byConfig[rec.ConfigID]
		if s == nil {
			s = &summary{}
			byConfig[rec.ConfigID] = s
		}
		s.count++
		s.sum += rec.Percentage
	}
	ids := make([]int, 0, len(byConfig))
	for id := range byConfig {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	fmt.Fprintf(out, "Dataset: %s\n", path)
	fmt.Fprintf(out, "Voxel grids: %d\n", len(grids))
	fmt.Fprintf(out, "Records:     %d\n", len(records))
	for _, id := range ids {
		s := byConfig[id]
		occupied := 0
		if g, ok := grids[id]; ok {
			occupied = g.Occupied()
		}
		fmt.Fprintf(out, "  config %d: %d records, mean %.3f%%, %d occupied voxels\n",
			id, s.count, s.sum/float64(s.count), occupied)
	}
}

func cmdVoxels(cfg *config.Config, args []string) {
	d := newDriver(cfg)
	g, err := d.GetVoxelGrid(cfg.Simulation.ConfigID)
	essentials.Must(err)

	fmt.Printf("Grid:     %d^3\n", g.N)
	fmt.Printf("Occupied: %d of %d\n", g.Occupied(), g.Len())

	path := cfg.Dataset.NumpyPath
	if len(args) > 0 {
		path = args[0]
	}
	if path != "" {
		essentials.Must(g.SaveNumpy(path))
		fmt.Printf("Saved:    %s\n", path)
	}
}

func cmdImage(cfg *config.Config) {
	d := newDriver(cfg)
	img, res, err := d.DetectorSweep()
	essentials.Must(err)

	name, err := img.SavePNG(cfg.Detector.ImageDir, "detector", cfg.Detector.ImageScale)
	essentials.Must(err)
	fmt.Printf("Returned: %d of %d (%.3f%%)\n", res.Hits, res.Total, res.Percentage())
	fmt.Printf("Saved:    %s\n", name)
}

func cmdInitConfig(args []string) {
	cfg := config.Default()
	if len(args) > 0 {
		essentials.Must(cfg.SaveTo(args[0]))
		fmt.Printf("Wrote %s\n", args[0])
		return
	}
	essentials.Must(cfg.Save())
	fmt.Printf("Wrote %s\n", config.ConfigDir())
}
