package solid

import (
	"fmt"
	"io"
	"os"

	"github.com/unixpickle/model3d/model3d"
	"go.uber.org/zap"

	"github.com/Faultbox/reflectsim/internal/geometry"
	"github.com/Faultbox/reflectsim/pkg/math"
)

// Factory builds base meshes by shape.
type Factory struct {
	// CustomPath is an OFF file used for the Custom shape.
	CustomPath string
	Log        *zap.Logger
}

// NewFactory returns a factory that loads custom meshes from customPath.
func NewFactory(customPath string, log *zap.Logger) *Factory {
	if log == nil {
		log = zap.NewNop()
	}
	return &Factory{CustomPath: customPath, Log: log}
}

// Build returns the mesh for shape and the shape actually built. A custom
// shape without a usable asset falls back to the cube with a warning.
func (f *Factory) Build(shape ShapeType) (*geometry.Mesh, ShapeType, error) {
	switch shape {
	case Tetrahedron:
		return TetrahedronMesh(), shape, nil
	case Cube:
		return CubeMesh(), shape, nil
	case Sphere:
		return SphereMesh(), shape, nil
	case Capsule:
		return CapsuleMesh(), shape, nil
	case Cylinder:
		return CylinderMesh(), shape, nil
	case Custom:
		if f.CustomPath == "" {
			f.Log.Warn("Custom mesh is not assigned, falling back to cube")
			return CubeMesh(), Cube, nil
		}
		mesh, err := LoadOFFFile(f.CustomPath)
		if err != nil {
			f.Log.Warn("Custom mesh failed to load, falling back to cube",
				zap.String("path", f.CustomPath),
				zap.Error(err),
			)
			return CubeMesh(), Cube, nil
		}
		return mesh, Custom, nil
	default:
		return nil, "", fmt.Errorf("%w: %q", ErrUnknownShape, string(shape))
	}
}

// LoadOFFFile reads a mesh from an OFF file.
func LoadOFFFile(path string) (*geometry.Mesh, error) {
	r, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return LoadOFF(r)
}

// LoadOFF reads an OFF mesh. Shared corners are merged into one vertex.
func LoadOFF(r io.Reader) (*geometry.Mesh, error) {
	triangles, err := model3d.ReadOFF(r)
	if err != nil {
		return nil, err
	}
	if len(triangles) == 0 {
		return nil, fmt.Errorf("%w: no faces in OFF data", geometry.ErrEmptyGeometry)
	}

	mesh := &geometry.Mesh{}
	index := make(map[model3d.Coord3D]int)
	for _, t := range triangles {
		var tri [3]int
		for i, c := range t {
			idx, ok := index[c]
			if !ok {
				idx = len(mesh.Vertices)
				index[c] = idx
				mesh.Vertices = append(mesh.Vertices, math.Vec3{X: c.X, Y: c.Y, Z: c.Z})
			}
			tri[i] = idx
		}
		mesh.Triangles = append(mesh.Triangles, tri)
	}
	return mesh, nil
}
