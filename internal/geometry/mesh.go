// Package geometry provides the triangle mesh type and the closest-point,
// distance and surface-sampling kernels used by the simulator.
package geometry

import (
	"errors"
	"fmt"

	"github.com/Faultbox/reflectsim/pkg/math"
)

// Geometry errors.
var (
	ErrEmptyGeometry   = errors.New("empty geometry")
	ErrIndexOutOfRange = errors.New("triangle index out of range")
)

// Mesh is an indexed triangle mesh in local space.
// Treat it as immutable once built; replace it wholesale to change it.
type Mesh struct {
	Vertices  []math.Vec3
	Triangles [][3]int
}

// Bounds holds an axis-aligned bounding box.
type Bounds struct {
	Min math.Vec3
	Max math.Vec3
}

// NewMesh validates the triangle indices and returns the mesh.
func NewMesh(vertices []math.Vec3, triangles [][3]int) (*Mesh, error) {
	for i, tri := range triangles {
		for _, idx := range tri {
			if idx < 0 || idx >= len(vertices) {
				return nil, fmt.Errorf("%w: triangle %d references vertex %d of %d", ErrIndexOutOfRange, i, idx, len(vertices))
			}
		}
	}
	return &Mesh{Vertices: vertices, Triangles: triangles}, nil
}

// NewMeshFromIndices builds a mesh from a flat index list (3 per triangle).
func NewMeshFromIndices(vertices []math.Vec3, indices []int) (*Mesh, error) {
	if len(indices)%3 != 0 {
		return nil, fmt.Errorf("%w: %d indices is not a multiple of 3", ErrIndexOutOfRange, len(indices))
	}
	tris := make([][3]int, 0, len(indices)/3)
	for i := 0; i < len(indices); i += 3 {
		tris = append(tris, [3]int{indices[i], indices[i+1], indices[i+2]})
	}
	return NewMesh(vertices, tris)
}

// IsEmpty reports whether the mesh has no triangles.
func (m *Mesh) IsEmpty() bool {
	return m == nil || len(m.Triangles) == 0
}

// Triangle returns triangle i in local space.
func (m *Mesh) Triangle(i int) Triangle {
	t := m.Triangles[i]
	return Triangle{A: m.Vertices[t[0]], B: m.Vertices[t[1]], C: m.Vertices[t[2]]}
}

// Bounds returns the local-space bounding box. An empty mesh yields a zero box.
func (m *Mesh) Bounds() Bounds {
	if m == nil || len(m.Vertices) == 0 {
		return Bounds{}
	}
	b := Bounds{Min: m.Vertices[0], Max: m.Vertices[0]}
	for _, v := range m.Vertices[1:] {
		b.Extend(v)
	}
	return b
}

// WorldTriangles returns every triangle mapped through the transform.
func (m *Mesh) WorldTriangles(tr math.Transform) []Triangle {
	if m == nil {
		return nil
	}
	mat := tr.LocalToWorld()
	world := make([]math.Vec3, len(m.Vertices))
	for i, v := range m.Vertices {
		world[i] = mat.TransformPoint(v)
	}
	tris := make([]Triangle, len(m.Triangles))
	for i, t := range m.Triangles {
		tris[i] = Triangle{A: world[t[0]], B: world[t[1]], C: world[t[2]]}
	}
	return tris
}

// WorldBounds returns the world-space bounding box of the transformed vertices.
func (m *Mesh) WorldBounds(tr math.Transform) Bounds {
	if m == nil || len(m.Vertices) == 0 {
		return Bounds{}
	}
	mat := tr.LocalToWorld()
	first := mat.TransformPoint(m.Vertices[0])
	b := Bounds{Min: first, Max: first}
	for _, v := range m.Vertices[1:] {
		b.Extend(mat.TransformPoint(v))
	}
	return b
}

// Extend grows the box to include p.
func (b *Bounds) Extend(p math.Vec3) {
	b.Min = b.Min.Min(p)
	b.Max = b.Max.Max(p)
}

// Size returns the extent along each axis.
func (b Bounds) Size() math.Vec3 {
	return b.Max.Sub(b.Min)
}

// Center returns the midpoint of the box.
func (b Bounds) Center() math.Vec3 {
	return b.Min.Add(b.Max).Scale(0.5)
}

// LargestSide returns the longest extent of the box.
func (b Bounds) LargestSide() float64 {
	return b.Size().MaxComponent()
}

// Union returns the smallest box containing both boxes.
func (b Bounds) Union(other Bounds) Bounds {
	return Bounds{Min: b.Min.Min(other.Min), Max: b.Max.Max(other.Max)}
}
