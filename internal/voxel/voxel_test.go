package voxel

import (
	"archive/zip"
	"bytes"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Faultbox/reflectsim/internal/geometry"
	"github.com/Faultbox/reflectsim/pkg/math"
)

func pyramid() *geometry.Mesh {
	m, _ := geometry.NewMeshFromIndices(
		[]math.Vec3{{X: -1, Z: -1}, {X: 1, Z: -1}, {X: 1, Z: 1}, {X: -1, Z: 1}, {Y: 1}},
		[]int{0, 1, 2, 0, 2, 3, 0, 4, 1, 1, 4, 2, 2, 4, 3, 3, 4, 0},
	)
	return m
}

func TestVoxelizeShape(t *testing.T) {
	g, err := VoxelizeMesh(pyramid(), math.NewTransform(), 3, DefaultOptions())
	if err != nil {
		t.Fatalf("VoxelizeMesh: %v", err)
	}
	if g.Len() != Size*Size*Size || g.Len() != 4096 {
		t.Fatalf("cells = %d, want 4096", g.Len())
	}
	if g.Occupied() == 0 || g.Occupied() == g.Len() {
		t.Errorf("occupied = %d, want some but not all", g.Occupied())
	}
	for i, c := range g.Cells {
		if c != 0 && c != 3 {
			t.Fatalf("cell %d has label %d", i, c)
		}
	}
	// Bottom corner cells sit on the base face.
	if g.At(0, 0, 0) != 3 {
		t.Errorf("corner cell = %d, want 3", g.At(0, 0, 0))
	}
}

func TestVoxelizeEmpty(t *testing.T) {
	if _, err := VoxelizeMesh(&geometry.Mesh{}, math.NewTransform(), 1, DefaultOptions()); !errors.Is(err, geometry.ErrEmptyGeometry) {
		t.Errorf("error = %v, want ErrEmptyGeometry", err)
	}
}

func TestVoxelizeZeroArea(t *testing.T) {
	segment, err := geometry.NewMesh(
		[]math.Vec3{{}, {X: 1}, {X: 2}},
		[][3]int{{0, 1, 2}},
	)
	if err != nil {
		t.Fatal(err)
	}
	g, err := VoxelizeMesh(segment, math.NewTransform(), 1, DefaultOptions())
	if !errors.Is(err, geometry.ErrEmptyGeometry) {
		t.Errorf("error = %v, want ErrEmptyGeometry", err)
	}
	if g != nil {
		t.Errorf("grid has %d occupied cells, want nil grid", g.Occupied())
	}
}

func TestVoxelizeWorkersAgree(t *testing.T) {
	tr := math.NewTransform()
	tr.Rotation = math.QuatFromEulerDegrees(math.Vec3{X: 30, Y: 15})
	one := DefaultOptions()
	one.Workers = 1
	many := DefaultOptions()
	many.Workers = 8

	a, err := VoxelizeMesh(pyramid(), tr, 2, one)
	if err != nil {
		t.Fatal(err)
	}
	b, err := VoxelizeMesh(pyramid(), tr, 2, many)
	if err != nil {
		t.Fatal(err)
	}
	if a.String() != b.String() {
		t.Error("grids differ between 1 and 8 workers")
	}
}

func TestGridStringRoundTrip(t *testing.T) {
	g := NewGrid(Size)
	g.Set(1, 2, 3, 4)
	g.Set(15, 15, 15, 1)
	s := g.String()
	if n := strings.Count(s, ";"); n != 4095 {
		t.Fatalf("separators = %d, want 4095", n)
	}
	// x-major: (1,2,3) is index (1*16+2)*16+3.
	if fields := strings.Split(s, ";"); fields[(1*16+2)*16+3] != "4" {
		t.Errorf("label of (1,2,3) is %q", fields[(1*16+2)*16+3])
	}

	back, err := Parse(s, Size)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if back.At(1, 2, 3) != 4 || back.At(15, 15, 15) != 1 || back.Occupied() != 2 {
		t.Errorf("parsed grid differs")
	}

	if _, err := Parse("1;2;3", Size); !errors.Is(err, ErrMalformedGrid) {
		t.Errorf("short grid error = %v", err)
	}
	if _, err := Parse(strings.Repeat("x;", 4095)+"x", Size); !errors.Is(err, ErrMalformedGrid) {
		t.Errorf("bad label error = %v", err)
	}
}

func TestSaveNumpy(t *testing.T) {
	g := NewGrid(4)
	g.Set(0, 0, 1, 2)
	path := filepath.Join(t.TempDir(), "grid.npz")
	if err := g.SaveNumpy(path); err != nil {
		t.Fatalf("SaveNumpy: %v", err)
	}

	r, err := zip.OpenReader(path)
	if err != nil {
		t.Fatalf("zip.OpenReader: %v", err)
	}
	defer r.Close()
	if len(r.File) != 1 || r.File[0].Name != "voxels.npy" {
		t.Fatalf("archive entries = %v", r.File)
	}
	f, err := r.File[0].Open()
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		t.Fatal(err)
	}
	if len(data) != 128+64 {
		t.Fatalf("npy size = %d, want %d", len(data), 128+64)
	}
	if !bytes.HasPrefix(data, []byte("\x93NUMPY")) || data[127] != '\n' {
		t.Error("bad npy header")
	}
	if data[128+1] != 2 {
		t.Errorf("cell (0,0,1) = %d, want 2", data[128+1])
	}

	if err := g.SaveNumpy(filepath.Join(t.TempDir(), "missing", "grid.npz")); err == nil {
		t.Error("expected error for missing directory")
	}
}
