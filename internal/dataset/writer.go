package dataset

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/golang/snappy"
	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Faultbox/reflectsim/internal/voxel"
)

// Compression is the encoding of a dataset file, chosen by extension.
type Compression int

// Compressions.
const (
	Plain Compression = iota
	Snappy
	Zstd
)

// CompressionFor returns the compression implied by a file name:
// ".sz" for snappy framing, ".zst" for zstd, anything else plain text.
func CompressionFor(path string) Compression {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".sz":
		return Snappy
	case ".zst":
		return Zstd
	default:
		return Plain
	}
}

// Writer appends dataset lines. Each Open starts a new compressed stream
// when compression is on; readers handle concatenated streams. Safe for
// concurrent use.
type Writer struct {
	mu     sync.Mutex
	runID  string
	log    *zap.Logger
	file   *os.File
	stream io.WriteCloser
	buf    *bufio.Writer
	lines  int
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

// Open opens path for appending, creating it if needed. The format header
// is written when the file is empty.
func Open(path string, log *zap.Logger) (*Writer, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, err
	}

	var stream io.WriteCloser
	switch CompressionFor(path) {
	case Snappy:
		stream = snappy.NewBufferedWriter(file)
	case Zstd:
		enc, err := zstd.NewWriter(file)
		if err != nil {
			file.Close()
			return nil, err
		}
		stream = enc
	default:
		stream = nopWriteCloser{file}
	}

	w := newWriter(stream, log)
	w.file = file
	if info.Size() == 0 {
		if err := w.writeHeader(); err != nil {
			w.Close()
			return nil, err
		}
	}
	if err := w.writeLine("# run=" + w.runID); err != nil {
		w.Close()
		return nil, err
	}
	log.Info("Dataset opened",
		zap.String("path", path),
		zap.String("run_id", w.runID),
		zap.Bool("new_file", info.Size() == 0),
	)
	return w, nil
}

// NewWriter writes dataset lines to w, with the header when header is true.
func NewWriter(w io.Writer, header bool, log *zap.Logger) (*Writer, error) {
	if log == nil {
		log = zap.NewNop()
	}
	dw := newWriter(nopWriteCloser{w}, log)
	if header {
		if err := dw.writeHeader(); err != nil {
			return nil, err
		}
	}
	return dw, nil
}

func newWriter(stream io.WriteCloser, log *zap.Logger) *Writer {
	id := uuid.NewString()
	return &Writer{
		runID:  id,
		log:    log.With(zap.String("run_id", id)),
		stream: stream,
		buf:    bufio.NewWriter(stream),
	}
}

// RunID identifies this writer session in logs.
func (w *Writer) RunID() string {
	return w.runID
}

// Lines returns the number of data lines written so far.
func (w *Writer) Lines() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lines
}

func (w *Writer) writeHeader() error {
	for _, line := range []string{FormatTitle, VoxelHeader, RecordHeader, ""} {
		if err := w.writeLine(line); err != nil {
			return err
		}
	}
	return nil
}

func (w *Writer) writeLine(line string) error {
	if _, err := w.buf.WriteString(line); err != nil {
		return err
	}
	return w.buf.WriteByte('\n')
}

// WriteVoxels appends the CONFIG_VOXELS line for a configuration.
func (w *Writer) WriteVoxels(configID int, g *voxel.Grid) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.writeLine(VoxelLine(configID, g)); err != nil {
		return err
	}
	w.lines++
	w.log.Debug("Voxel grid written", zap.Int("config_id", configID), zap.Int("occupied", g.Occupied()))
	return nil
}

// WriteRecord appends one orientation record.
func (w *Writer) WriteRecord(r Record) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.writeLine(r.String()); err != nil {
		return err
	}
	w.lines++
	return nil
}

// Flush pushes buffered lines through to the underlying writer.
func (w *Writer) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.flushLocked()
}

func (w *Writer) flushLocked() error {
	if err := w.buf.Flush(); err != nil {
		return err
	}
	if f, ok := w.stream.(interface{ Flush() error }); ok {
		return f.Flush()
	}
	return nil
}

// Close flushes and closes the stream and the file.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	err := w.buf.Flush()
	err = multierr.Append(err, w.stream.Close())
	if w.file != nil {
		err = multierr.Append(err, w.file.Close())
		w.file = nil
	}
	w.log.Debug("Dataset closed", zap.Int("lines", w.lines), zap.Error(err))
	return err
}
