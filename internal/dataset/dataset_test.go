package dataset

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Faultbox/reflectsim/internal/voxel"
	"github.com/Faultbox/reflectsim/pkg/math"
)

func TestRecordString(t *testing.T) {
	tests := []struct {
		name string
		rec  Record
		want string
	}{
		{
			name: "basic",
			rec:  NewRecord(1, math.Vec3{X: 45}, 35.5, 0.2, 0.3),
			want: "1;45.000;0.000;0.000;35.500;0.200;0.300",
		},
		{
			name: "wrapped",
			rec:  NewRecord(3, math.Vec3{X: 360, Y: -5, Z: 725}, 0, 0.15, 0.1),
			want: "3;0.000;355.000;5.000;0.000;0.150;0.100",
		},
		{
			name: "rounded",
			rec:  NewRecord(2, math.Vec3{X: 12.3456}, 100.0/3.0, 0.25, 0.4),
			want: "2;12.346;0.000;0.000;33.333;0.250;0.400",
		},
		{
			name: "just under a full turn",
			rec:  NewRecord(1, math.Vec3{X: -1e-5, Y: 359.9996}, 10, 0.2, 0.5),
			want: "1;0.000;0.000;0.000;10.000;0.200;0.500",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.rec.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseRecord(t *testing.T) {
	rec, err := ParseRecord("2;10.000;20.000;30.000;12.500;0.300;0.200")
	if err != nil {
		t.Fatalf("ParseRecord: %v", err)
	}
	if rec.ConfigID != 2 || rec.Rotation.Z != 30 || rec.Percentage != 12.5 || rec.MinDistance != 0.2 {
		t.Errorf("unexpected record %+v", rec)
	}

	for _, bad := range []string{"", "1;2;3", "x;0;0;0;0;0;0", "1;0;0;0;zero;0;0"} {
		if _, err := ParseRecord(bad); !errors.Is(err, ErrMalformedRecord) {
			t.Errorf("ParseRecord(%q) error = %v, want ErrMalformedRecord", bad, err)
		}
	}
}

func TestWriterHeaderAndLines(t *testing.T) {
	var buf bytes.Buffer
	w, err := NewWriter(&buf, true, nil)
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	g := voxel.NewGrid(2)
	g.Set(1, 1, 1, 4)
	if err := w.WriteVoxels(4, g); err != nil {
		t.Fatal(err)
	}
	if err := w.WriteRecord(NewRecord(4, math.Vec3{Y: 90}, 50, 0.1, 0.1)); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	want := []string{
		"Format:",
		"CONFIG_VOXELS;config_id;voxels",
		"config_id;rotationX;rotationY;rotationZ;percentage;featureSize;minFeatureDistance",
		"",
		"CONFIG_VOXELS;4;0;0;0;0;0;0;0;4",
		"4;0.000;90.000;0.000;50.000;0.100;0.100",
	}
	if len(lines) != len(want) {
		t.Fatalf("got %d lines, want %d:\n%s", len(lines), len(want), buf.String())
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, lines[i], want[i])
		}
	}
	if w.Lines() != 2 {
		t.Errorf("Lines() = %d, want 2", w.Lines())
	}
	if w.RunID() == "" {
		t.Error("expected a run id")
	}
}

func TestOpenAppendsWithoutSecondHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "dataset.txt")

	for i := 0; i < 2; i++ {
		w, err := Open(path, nil)
		if err != nil {
			t.Fatalf("Open #%d: %v", i, err)
		}
		if err := w.WriteRecord(NewRecord(1, math.Vec3{X: float64(i * 5)}, 1, 0.1, 0.1)); err != nil {
			t.Fatal(err)
		}
		if err := w.Close(); err != nil {
			t.Fatal(err)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if n := strings.Count(string(data), FormatTitle); n != 1 {
		t.Errorf("header written %d times, want 1", n)
	}
	if n := strings.Count(string(data), "\n1;"); n != 2 {
		t.Errorf("records = %d, want 2", n)
	}
}

func TestCompressedRoundTrip(t *testing.T) {
	for _, ext := range []string{".txt", ".sz", ".zst"} {
		t.Run(ext, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "dataset"+ext)
			g := voxel.NewGrid(voxel.Size)
			g.Set(0, 0, 0, 2)
			g.Set(3, 4, 5, 2)

			// Two sessions exercise concatenated compressed streams.
			for session := 0; session < 2; session++ {
				w, err := Open(path, nil)
				if err != nil {
					t.Fatalf("Open: %v", err)
				}
				if session == 0 {
					if err := w.WriteVoxels(2, g); err != nil {
						t.Fatal(err)
					}
				}
				for i := 0; i < 3; i++ {
					rec := NewRecord(2, math.Vec3{X: float64(i * 5), Z: float64(session)}, float64(i), 0.2, 0.3)
					if err := w.WriteRecord(rec); err != nil {
						t.Fatal(err)
					}
				}
				if err := w.Close(); err != nil {
					t.Fatalf("Close: %v", err)
				}
			}

			r, err := OpenReader(path, voxel.Size)
			if err != nil {
				t.Fatalf("OpenReader: %v", err)
			}
			defer r.Close()
			grids, records, err := r.ReadAll()
			if err != nil {
				t.Fatalf("ReadAll: %v", err)
			}
			if len(records) != 6 {
				t.Fatalf("records = %d, want 6", len(records))
			}
			got, ok := grids[2]
			if !ok {
				t.Fatal("voxel grid for config 2 missing")
			}
			if got.At(3, 4, 5) != 2 || got.Occupied() != 2 {
				t.Errorf("grid mismatch: occupied %d", got.Occupied())
			}
			if records[5].Rotation.X != 10 || records[5].Rotation.Z != 1 {
				t.Errorf("last record = %+v", records[5])
			}
		})
	}
}

func TestReaderSkipsCommentsAndReportsLine(t *testing.T) {
	input := strings.Join([]string{
		FormatTitle,
		VoxelHeader,
		RecordHeader,
		"",
		"# run=abc",
		"1;0.000;0.000;0.000;10.000;0.100;0.100",
		"1;0.000;bad",
	}, "\n")
	r := NewReader(strings.NewReader(input), voxel.Size)

	e, err := r.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if e.Record == nil || e.Record.Percentage != 10 {
		t.Errorf("first entry = %+v", e)
	}

	_, err = r.Next()
	var le *LineError
	if !errors.As(err, &le) || le.Line != 7 {
		t.Fatalf("error = %v, want LineError on line 7", err)
	}
	if !errors.Is(err, ErrMalformedRecord) {
		t.Errorf("error should wrap ErrMalformedRecord")
	}
}

func TestReaderEOF(t *testing.T) {
	r := NewReader(strings.NewReader(""), voxel.Size)
	if _, err := r.Next(); err != io.EOF {
		t.Errorf("Next() error = %v, want io.EOF", err)
	}
}

func TestCompressionFor(t *testing.T) {
	cases := map[string]Compression{
		"a.txt":     Plain,
		"a.csv":     Plain,
		"a.sz":      Snappy,
		"dir/b.ZST": Zstd,
	}
	for path, want := range cases {
		if got := CompressionFor(path); got != want {
			t.Errorf("CompressionFor(%q) = %d, want %d", path, got, want)
		}
	}
}
