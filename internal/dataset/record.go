// Package dataset writes and reads the semicolon-delimited simulation
// dataset: one voxel line per configuration and one record per orientation.
package dataset

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Faultbox/reflectsim/internal/voxel"
	"github.com/Faultbox/reflectsim/pkg/math"
)

// ErrMalformedRecord is returned for lines that are not valid dataset lines.
var ErrMalformedRecord = errors.New("malformed dataset line")

// Line formats.
const (
	VoxelPrefix  = "CONFIG_VOXELS"
	FormatTitle  = "Format:"
	VoxelHeader  = "CONFIG_VOXELS;config_id;voxels"
	RecordHeader = "config_id;rotationX;rotationY;rotationZ;percentage;featureSize;minFeatureDistance"

	recordFields = 7
)

// Record is one orientation sample.
type Record struct {
	ConfigID    int
	Rotation    math.Vec3
	Percentage  float64
	FeatureSize float64
	MinDistance float64
}

// NewRecord builds a record with each rotation angle wrapped to [0, 360).
func NewRecord(configID int, rotation math.Vec3, percentage, featureSize, minDistance float64) Record {
	return Record{
		ConfigID: configID,
		Rotation: math.Vec3{
			X: wrapAngle(rotation.X),
			Y: wrapAngle(rotation.Y),
			Z: wrapAngle(rotation.Z),
		},
		Percentage:  percentage,
		FeatureSize: featureSize,
		MinDistance: minDistance,
	}
}

// String formats the record as a dataset line, numbers fixed to 3 decimals.
func (r Record) String() string {
	return strings.Join([]string{
		strconv.Itoa(r.ConfigID),
		fixed3(r.Rotation.X),
		fixed3(r.Rotation.Y),
		fixed3(r.Rotation.Z),
		fixed3(r.Percentage),
		fixed3(r.FeatureSize),
		fixed3(r.MinDistance),
	}, ";")
}

// VoxelLine formats a grid as a CONFIG_VOXELS line.
func VoxelLine(configID int, g *voxel.Grid) string {
	return VoxelPrefix + ";" + strconv.Itoa(configID) + ";" + g.String()
}

// ParseRecord parses a record line.
func ParseRecord(line string) (Record, error) {
	fields := strings.Split(strings.TrimSpace(line), ";")
	if len(fields) != recordFields {
		return Record{}, fmt.Errorf("%w: %d fields, want %d", ErrMalformedRecord, len(fields), recordFields)
	}
	id, err := strconv.Atoi(fields[0])
	if err != nil {
		return Record{}, fmt.Errorf("%w: config id: %v", ErrMalformedRecord, err)
	}
	var vals [recordFields - 1]float64
	for i := range vals {
		v, err := strconv.ParseFloat(fields[i+1], 64)
		if err != nil {
			return Record{}, fmt.Errorf("%w: field %d: %v", ErrMalformedRecord, i+1, err)
		}
		vals[i] = v
	}
	return Record{
		ConfigID:    id,
		Rotation:    math.Vec3{X: vals[0], Y: vals[1], Z: vals[2]},
		Percentage:  vals[3],
		FeatureSize: vals[4],
		MinDistance: vals[5],
	}, nil
}

// ParseVoxelLine parses a CONFIG_VOXELS line holding an n³ grid.
func ParseVoxelLine(line string, n int) (int, *voxel.Grid, error) {
	rest, ok := strings.CutPrefix(strings.TrimSpace(line), VoxelPrefix+";")
	if !ok {
		return 0, nil, fmt.Errorf("%w: missing %s prefix", ErrMalformedRecord, VoxelPrefix)
	}
	idStr, cells, ok := strings.Cut(rest, ";")
	if !ok {
		return 0, nil, fmt.Errorf("%w: missing voxels", ErrMalformedRecord)
	}
	id, err := strconv.Atoi(idStr)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: config id: %v", ErrMalformedRecord, err)
	}
	g, err := voxel.Parse(cells, n)
	if err != nil {
		return 0, nil, err
	}
	return id, g, nil
}

// wrapAngle wraps deg into [0, 360) as it will be printed, so values
// just under 360 that round up are written as 0.
func wrapAngle(deg float64) float64 {
	w := math.WrapDegrees(deg)
	if fixed3(w) == "360.000" {
		return 0
	}
	return w
}

func fixed3(v float64) string {
	s := strconv.FormatFloat(v, 'f', 3, 64)
	if s == "-0.000" {
		return "0.000"
	}
	return s
}
