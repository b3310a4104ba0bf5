package voxel

import (
	"archive/zip"
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
)

// SaveNumpy writes the grid to path as a NumPy .npz archive holding one
// int8 array named "voxels" of shape (N, N, N).
func (g *Grid) SaveNumpy(path string) error {
	w, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "save numpy")
	}
	if err := g.WriteNumpy(w); err != nil {
		w.Close()
		return errors.Wrap(err, "save numpy")
	}
	return errors.Wrap(w.Close(), "save numpy")
}

// WriteNumpy writes the .npz archive to w.
func (g *Grid) WriteNumpy(w io.Writer) error {
	zipWriter := zip.NewWriter(w)
	fileWriter, err := zipWriter.Create("voxels.npy")
	if err != nil {
		return err
	}
	if _, err := fileWriter.Write(g.EncodeNumpy()); err != nil {
		return err
	}
	return zipWriter.Close()
}

// EncodeNumpy returns the grid as a version 1.0 .npy payload.
func (g *Grid) EncodeNumpy() []byte {
	header := "\x93NUMPY\x01\x00\x76\x00{'descr': '|i1', 'fortran_order': False, 'shape': ("
	header += fmt.Sprintf("%d, %d, %d)}", g.N, g.N, g.N)
	for len(header) < 0x80-1 {
		header += " "
	}
	header += "\n"

	data := make([]byte, len(g.Cells))
	for i, c := range g.Cells {
		data[i] = byte(int8(c))
	}
	return append([]byte(header), data...)
}
