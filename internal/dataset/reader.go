package dataset

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/golang/snappy"
	"github.com/klauspost/compress/zstd"

	"github.com/Faultbox/reflectsim/internal/voxel"
)

// Entry is one parsed data line: either a voxel line or a record.
type Entry struct {
	Voxels   *voxel.Grid
	ConfigID int
	Record   *Record
}

// Reader parses dataset lines, skipping the header, blank lines and
// '#' comments.
type Reader struct {
	scanner *bufio.Scanner
	closer  io.Closer
	n       int
	line    int
}

// NewReader reads an uncompressed dataset with n³ voxel grids.
func NewReader(r io.Reader, n int) *Reader {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 64*1024), 1<<20)
	return &Reader{scanner: s, n: n}
}

// OpenReader opens a dataset file, decompressing by extension.
func OpenReader(path string, n int) (*Reader, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	var src io.Reader = file
	closer := io.Closer(file)
	switch CompressionFor(path) {
	case Snappy:
		src = snappy.NewReader(file)
	case Zstd:
		dec, err := zstd.NewReader(file)
		if err != nil {
			file.Close()
			return nil, err
		}
		src = dec
		closer = closerFunc(func() error {
			dec.Close()
			return file.Close()
		})
	}
	r := NewReader(src, n)
	r.closer = closer
	return r, nil
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

// Next returns the next data line, or io.EOF when the input is exhausted.
func (r *Reader) Next() (Entry, error) {
	for r.scanner.Scan() {
		r.line++
		line := strings.TrimSpace(r.scanner.Text())
		if skipLine(line) {
			continue
		}
		if strings.HasPrefix(line, VoxelPrefix+";") {
			id, g, err := ParseVoxelLine(line, r.n)
			if err != nil {
				return Entry{}, lineError(r.line, err)
			}
			return Entry{ConfigID: id, Voxels: g}, nil
		}
		rec, err := ParseRecord(line)
		if err != nil {
			return Entry{}, lineError(r.line, err)
		}
		return Entry{ConfigID: rec.ConfigID, Record: &rec}, nil
	}
	if err := r.scanner.Err(); err != nil {
		return Entry{}, err
	}
	return Entry{}, io.EOF
}

// ReadAll collects every voxel grid by config id and every record.
func (r *Reader) ReadAll() (map[int]*voxel.Grid, []Record, error) {
	grids := make(map[int]*voxel.Grid)
	var records []Record
	for {
		e, err := r.Next()
		if err == io.EOF {
			return grids, records, nil
		}
		if err != nil {
			return grids, records, err
		}
		if e.Voxels != nil {
			grids[e.ConfigID] = e.Voxels
			continue
		}
		records = append(records, *e.Record)
	}
}

// Close releases the underlying file, if any.
func (r *Reader) Close() error {
	if r.closer == nil {
		return nil
	}
	err := r.closer.Close()
	r.closer = nil
	return err
}

func skipLine(line string) bool {
	switch line {
	case "", FormatTitle, VoxelHeader, RecordHeader:
		return true
	}
	return strings.HasPrefix(line, "#")
}

func lineError(n int, err error) error {
	return &LineError{Line: n, Err: err}
}

// LineError reports the line a parse failure occurred on.
type LineError struct {
	Line int
	Err  error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("dataset line %d: %v", e.Line, e.Err)
}

func (e *LineError) Unwrap() error { return e.Err }
