package scene

import (
	gomath "math"

	"github.com/Faultbox/reflectsim/internal/geometry"
	"github.com/Faultbox/reflectsim/pkg/math"
)

// leafThreshold is the largest triangle count kept in a leaf.
const leafThreshold = 8

type bvhNode struct {
	bounds geometry.Bounds
	left   *bvhNode
	right  *bvhNode
	tris   []geometry.Triangle
}

// BVH is a bounding volume hierarchy over world-space triangles.
type BVH struct {
	root  *bvhNode
	count int
}

// NewBVH builds the hierarchy with median splits along the longest axis.
// The input slice is copied.
func NewBVH(tris []geometry.Triangle) *BVH {
	if len(tris) == 0 {
		return &BVH{}
	}
	cp := make([]geometry.Triangle, len(tris))
	copy(cp, tris)
	return &BVH{root: buildBVH(cp), count: len(tris)}
}

// Len returns the number of triangles in the hierarchy.
func (b *BVH) Len() int {
	return b.count
}

// Bounds returns the bounding box of the whole scene.
func (b *BVH) Bounds() geometry.Bounds {
	if b.root == nil {
		return geometry.Bounds{}
	}
	return b.root.bounds
}

func buildBVH(tris []geometry.Triangle) *bvhNode {
	bounds := tris[0].Bounds()
	for _, t := range tris[1:] {
		bounds = bounds.Union(t.Bounds())
	}
	if len(tris) <= leafThreshold {
		return &bvhNode{bounds: bounds, tris: tris}
	}

	size := bounds.Size()
	axis := 0
	if size.Y > size.Axis(axis) {
		axis = 1
	}
	if size.Z > size.Axis(axis) {
		axis = 2
	}
	lo, hi := bounds.Min.Axis(axis), bounds.Max.Axis(axis)
	if hi <= lo {
		return &bvhNode{bounds: bounds, tris: tris}
	}
	split := (lo + hi) / 2

	var left, right []geometry.Triangle
	for _, t := range tris {
		if t.Bounds().Center().Axis(axis) < split {
			left = append(left, t)
		} else {
			right = append(right, t)
		}
	}
	if len(left) == 0 || len(right) == 0 {
		return &bvhNode{bounds: bounds, tris: tris}
	}
	return &bvhNode{bounds: bounds, left: buildBVH(left), right: buildBVH(right)}
}

// Cast implements Query.
func (b *BVH) Cast(origin, direction math.Vec3) (Hit, bool) {
	if b.root == nil {
		return Hit{}, false
	}
	ray := Ray{Origin: origin, Direction: direction}
	best := gomath.Inf(1)
	var hitTri *geometry.Triangle

	stack := []*bvhNode{b.root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		tmin, _, ok := ray.slabs(n.bounds)
		if !ok || tmin > best {
			continue
		}
		if n.tris != nil {
			for i := range n.tris {
				if t, ok := ray.IntersectTriangle(n.tris[i], minHitDistance, best); ok {
					best = t
					hitTri = &n.tris[i]
				}
			}
			continue
		}
		stack = append(stack, n.left, n.right)
	}

	if hitTri == nil {
		return Hit{}, false
	}
	return Hit{Point: ray.At(best), Normal: hitTri.Normal(), Distance: best}, true
}
