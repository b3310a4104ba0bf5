package geometry

import (
	gomath "math"

	"github.com/Faultbox/reflectsim/pkg/math"
)

// degenerateEpsilon bounds every denominator in this file.
const degenerateEpsilon = 1e-12

// Triangle is a triangle given by its three corners.
type Triangle struct {
	A, B, C math.Vec3
}

// Area returns the triangle's area.
func (t Triangle) Area() float64 {
	return t.B.Sub(t.A).Cross(t.C.Sub(t.A)).Length() / 2
}

// Normal returns the unit face normal following the A->B->C winding,
// or the zero vector for a degenerate triangle.
func (t Triangle) Normal() math.Vec3 {
	return t.B.Sub(t.A).Cross(t.C.Sub(t.A)).Normalize()
}

// Bounds returns the triangle's bounding box.
func (t Triangle) Bounds() Bounds {
	b := Bounds{Min: t.A, Max: t.A}
	b.Extend(t.B)
	b.Extend(t.C)
	return b
}

// TotalArea sums the area of tris.
func TotalArea(tris []Triangle) float64 {
	var sum float64
	for _, t := range tris {
		sum += t.Area()
	}
	return sum
}

// HasArea reports whether tris cover a non-zero area.
func HasArea(tris []Triangle) bool {
	return TotalArea(tris) > degenerateEpsilon
}

// IsDegenerate reports whether the triangle has (near) zero area.
func (t Triangle) IsDegenerate() bool {
	return t.B.Sub(t.A).Cross(t.C.Sub(t.A)).LengthSquared() < degenerateEpsilon
}

// ClosestPoint returns the point on the triangle nearest to p.
func (t Triangle) ClosestPoint(p math.Vec3) math.Vec3 {
	return ClosestPointOnTriangle(p, t.A, t.B, t.C)
}

// ClosestPointOnTriangle returns the point of triangle abc nearest to p.
// The seven Voronoi regions (three vertices, three edges, interior) are
// resolved from barycentric sign tests. Degenerate triangles resolve to the
// nearest point on one of the three edges.
func ClosestPointOnTriangle(p, a, b, c math.Vec3) math.Vec3 {
	ab := b.Sub(a)
	ac := c.Sub(a)
	if ab.Cross(ac).LengthSquared() < degenerateEpsilon {
		return closestPointOnEdges(p, a, b, c)
	}

	ap := p.Sub(a)
	d1 := ab.Dot(ap)
	d2 := ac.Dot(ap)
	if d1 <= 0 && d2 <= 0 {
		return a
	}

	bp := p.Sub(b)
	d3 := ab.Dot(bp)
	d4 := ac.Dot(bp)
	if d3 >= 0 && d4 <= d3 {
		return b
	}

	vc := d1*d4 - d3*d2
	if vc <= 0 && d1 >= 0 && d3 <= 0 {
		den := d1 - d3
		if den < degenerateEpsilon {
			return a
		}
		return a.Add(ab.Scale(d1 / den))
	}

	cp := p.Sub(c)
	d5 := ab.Dot(cp)
	d6 := ac.Dot(cp)
	if d6 >= 0 && d5 <= d6 {
		return c
	}

	vb := d5*d2 - d1*d6
	if vb <= 0 && d2 >= 0 && d6 <= 0 {
		den := d2 - d6
		if den < degenerateEpsilon {
			return a
		}
		return a.Add(ac.Scale(d2 / den))
	}

	va := d3*d6 - d5*d4
	if va <= 0 && (d4-d3) >= 0 && (d5-d6) >= 0 {
		den := (d4 - d3) + (d5 - d6)
		if den < degenerateEpsilon {
			return b
		}
		return b.Add(c.Sub(b).Scale((d4 - d3) / den))
	}

	sum := va + vb + vc
	if gomath.Abs(sum) < degenerateEpsilon {
		return closestPointOnEdges(p, a, b, c)
	}
	denom := 1 / sum
	return a.Add(ab.Scale(vb * denom)).Add(ac.Scale(vc * denom))
}

// PointTriangleDistance returns the Euclidean distance from p to triangle abc.
// A (near) degenerate triangle falls back to the nearest of its three edges.
func PointTriangleDistance(p, a, b, c math.Vec3) float64 {
	v0 := b.Sub(a)
	v1 := c.Sub(a)
	v2 := p.Sub(a)

	dot00 := v0.Dot(v0)
	dot01 := v0.Dot(v1)
	dot02 := v0.Dot(v2)
	dot11 := v1.Dot(v1)
	dot12 := v1.Dot(v2)

	denom := dot00*dot11 - dot01*dot01
	if gomath.Abs(denom) < degenerateEpsilon {
		return edgeDistance(p, a, b, c)
	}

	inv := 1 / denom
	u := (dot11*dot02 - dot01*dot12) * inv
	v := (dot00*dot12 - dot01*dot02) * inv

	if u >= 0 && v >= 0 && u+v <= 1 {
		proj := a.Add(v0.Scale(u)).Add(v1.Scale(v))
		return p.Distance(proj)
	}
	return edgeDistance(p, a, b, c)
}

// ClosestPointOnSegment returns the point of segment ab nearest to p.
// A zero-length segment returns a.
func ClosestPointOnSegment(p, a, b math.Vec3) math.Vec3 {
	ab := b.Sub(a)
	lenSq := ab.LengthSquared()
	if lenSq < degenerateEpsilon {
		return a
	}
	t := math.Clamp(p.Sub(a).Dot(ab)/lenSq, 0, 1)
	return a.Add(ab.Scale(t))
}

// DistPointToSegment returns the distance from p to segment ab.
func DistPointToSegment(p, a, b math.Vec3) float64 {
	return p.Distance(ClosestPointOnSegment(p, a, b))
}

func edgeDistance(p, a, b, c math.Vec3) float64 {
	return gomath.Min(DistPointToSegment(p, a, b), gomath.Min(DistPointToSegment(p, b, c), DistPointToSegment(p, c, a)))
}

func closestPointOnEdges(p, a, b, c math.Vec3) math.Vec3 {
	best := ClosestPointOnSegment(p, a, b)
	bestDist := p.Sub(best).LengthSquared()
	for _, q := range []math.Vec3{ClosestPointOnSegment(p, b, c), ClosestPointOnSegment(p, c, a)} {
		if d := p.Sub(q).LengthSquared(); d < bestDist {
			best, bestDist = q, d
		}
	}
	return best
}
