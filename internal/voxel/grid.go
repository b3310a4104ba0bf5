// Package voxel rasterizes triangle meshes into labelled occupancy grids.
package voxel

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Size is the grid resolution along each axis.
const Size = 16

// ErrMalformedGrid is returned when a serialized grid cannot be parsed.
var ErrMalformedGrid = errors.New("malformed voxel grid")

// Grid is an N×N×N array of labels stored x-major: index (x*N+y)*N+z.
// Zero means empty.
type Grid struct {
	N     int
	Cells []int
}

// NewGrid returns an all-zero grid.
func NewGrid(n int) *Grid {
	return &Grid{N: n, Cells: make([]int, n*n*n)}
}

func (g *Grid) index(x, y, z int) int {
	return (x*g.N+y)*g.N + z
}

// At returns the label of cell (x, y, z).
func (g *Grid) At(x, y, z int) int {
	return g.Cells[g.index(x, y, z)]
}

// Set labels cell (x, y, z).
func (g *Grid) Set(x, y, z, label int) {
	g.Cells[g.index(x, y, z)] = label
}

// Len returns the number of cells.
func (g *Grid) Len() int {
	return len(g.Cells)
}

// Occupied returns the number of non-zero cells.
func (g *Grid) Occupied() int {
	n := 0
	for _, c := range g.Cells {
		if c != 0 {
			n++
		}
	}
	return n
}

// String joins every label with semicolons in x, y, z order.
func (g *Grid) String() string {
	var sb strings.Builder
	sb.Grow(len(g.Cells) * 2)
	for i, c := range g.Cells {
		if i > 0 {
			sb.WriteByte(';')
		}
		sb.WriteString(strconv.Itoa(c))
	}
	return sb.String()
}

// Parse reads a grid of resolution n from semicolon-joined labels.
func Parse(s string, n int) (*Grid, error) {
	fields := strings.Split(s, ";")
	if len(fields) != n*n*n {
		return nil, fmt.Errorf("%w: %d labels, want %d", ErrMalformedGrid, len(fields), n*n*n)
	}
	g := NewGrid(n)
	for i, f := range fields {
		v, err := strconv.Atoi(strings.TrimSpace(f))
		if err != nil {
			return nil, fmt.Errorf("%w: label %d: %v", ErrMalformedGrid, i, err)
		}
		g.Cells[i] = v
	}
	return g, nil
}
