package geometry

import (
	gomath "math"
	"math/rand"
	"sort"

	"github.com/Faultbox/reflectsim/pkg/math"
)

// Surface is a mesh resolved into world space, with the area table used for
// uniform sampling. Build one per mesh/transform pair and reuse it.
type Surface struct {
	Triangles  []Triangle
	cumulative []float64
	totalArea  float64
}

// SurfaceHit describes the surface point nearest to a query point.
type SurfaceHit struct {
	Point    math.Vec3
	Normal   math.Vec3
	Triangle int
	Distance float64
}

// NewSurface maps the mesh through tr and prepares the area table.
func NewSurface(m *Mesh, tr math.Transform) *Surface {
	tris := m.WorldTriangles(tr)
	s := &Surface{Triangles: tris, cumulative: make([]float64, len(tris))}
	for i, t := range tris {
		s.totalArea += t.Area()
		s.cumulative[i] = s.totalArea
	}
	return s
}

// Area returns the total world-space area.
func (s *Surface) Area() float64 {
	return s.totalArea
}

// Bounds returns the world-space bounding box of all triangles.
func (s *Surface) Bounds() Bounds {
	if len(s.Triangles) == 0 {
		return Bounds{}
	}
	b := s.Triangles[0].Bounds()
	for _, t := range s.Triangles[1:] {
		b = b.Union(t.Bounds())
	}
	return b
}

// Nearest returns the surface point nearest to p, with the normal of the
// triangle it lies on.
func (s *Surface) Nearest(p math.Vec3) (SurfaceHit, error) {
	if len(s.Triangles) == 0 {
		return SurfaceHit{}, ErrEmptyGeometry
	}
	best := SurfaceHit{Triangle: -1, Distance: gomath.Inf(1)}
	for i, t := range s.Triangles {
		q := t.ClosestPoint(p)
		if d := p.Distance(q); d < best.Distance {
			best = SurfaceHit{Point: q, Triangle: i, Distance: d}
		}
	}
	best.Normal = s.Triangles[best.Triangle].Normal()
	return best, nil
}

// ClosestPoint returns the surface point nearest to p.
func (s *Surface) ClosestPoint(p math.Vec3) (math.Vec3, error) {
	hit, err := s.Nearest(p)
	if err != nil {
		return math.Vec3{}, err
	}
	return hit.Point, nil
}

// Distance returns the distance from p to the surface, or +Inf when empty.
func (s *Surface) Distance(p math.Vec3) float64 {
	best := gomath.Inf(1)
	for _, t := range s.Triangles {
		if d := PointTriangleDistance(p, t.A, t.B, t.C); d < best {
			best = d
		}
	}
	return best
}

// RandomPoint returns a point drawn uniformly over the surface area: a
// triangle is picked with probability proportional to its area, then a
// point inside it is drawn by folding the unit square onto the triangle.
func (s *Surface) RandomPoint(rng *rand.Rand) (math.Vec3, error) {
	if len(s.Triangles) == 0 || s.totalArea <= 0 {
		return math.Vec3{}, ErrEmptyGeometry
	}
	// (0, total] so a zero-area prefix can never be selected.
	r := (1 - rng.Float64()) * s.totalArea
	idx := sort.SearchFloat64s(s.cumulative, r)
	if idx >= len(s.Triangles) {
		idx = len(s.Triangles) - 1
	}
	t := s.Triangles[idx]

	u := rng.Float64()
	v := rng.Float64()
	if u+v > 1 {
		u, v = 1-u, 1-v
	}
	return t.A.Add(t.B.Sub(t.A).Scale(u)).Add(t.C.Sub(t.A).Scale(v)), nil
}

// ClosestPointOnMesh returns the point of the transformed mesh nearest to p.
func ClosestPointOnMesh(m *Mesh, tr math.Transform, p math.Vec3) (math.Vec3, error) {
	if m.IsEmpty() {
		return math.Vec3{}, ErrEmptyGeometry
	}
	return NewSurface(m, tr).ClosestPoint(p)
}

// RandomPointOnMeshSurface returns a uniformly distributed point on the
// transformed mesh surface.
func RandomPointOnMeshSurface(m *Mesh, tr math.Transform, rng *rand.Rand) (math.Vec3, error) {
	if m.IsEmpty() {
		return math.Vec3{}, ErrEmptyGeometry
	}
	return NewSurface(m, tr).RandomPoint(rng)
}
