// Package picking finds the mesh under the cursor.
package picking

import (
	gomath "math"

	"github.com/Faultbox/sonoir/internal/engine/scenegraph"
	"github.com/Faultbox/sonoir/pkg/math"
)

// Ray represents a ray in 3D space with origin and direction.
type Ray struct {
	Origin    math.Vec3
	Direction math.Vec3 // normalized
}

// AABB represents an axis-aligned bounding box.
type AABB struct {
	Min math.Vec3
	Max math.Vec3
}

// ScreenToRay converts pixel coordinates to a world-space ray.
// ok is false when the view-projection matrix cannot be inverted.
func ScreenToRay(screenX, screenY, viewportW, viewportH float32, viewProj math.Mat4) (Ray, bool) {
	inv, ok := viewProj.Inverse()
	if !ok || viewportW <= 0 || viewportH <= 0 {
		return Ray{}, false
	}

	ndcX := 2*screenX/viewportW - 1
	ndcY := 1 - 2*screenY/viewportH // flip Y

	near := inv.TransformVec3(math.V3(ndcX, ndcY, -1))
	far := inv.TransformVec3(math.V3(ndcX, ndcY, 1))

	return Ray{Origin: near, Direction: far.Sub(near).Normalize()}, true
}

// IntersectAABB returns the distance along the ray to the box. If the ray
// starts inside the box, the exit distance is returned.
func (r Ray) IntersectAABB(box AABB) (t float32, hit bool) {
	tmin := float32(-gomath.MaxFloat32)
	tmax := float32(gomath.MaxFloat32)

	o := r.Origin.Array()
	d := r.Direction.Array()
	lo := box.Min.Array()
	hi := box.Max.Array()

	for axis := 0; axis < 3; axis++ {
		if d[axis] == 0 {
			if o[axis] < lo[axis] || o[axis] > hi[axis] {
				return 0, false
			}
			continue
		}
		t1 := (lo[axis] - o[axis]) / d[axis]
		t2 := (hi[axis] - o[axis]) / d[axis]
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		if t1 > tmin {
			tmin = t1
		}
		if t2 < tmax {
			tmax = t2
		}
	}

	if tmax < tmin || tmax < 0 {
		return 0, false
	}
	if tmin < 0 {
		return tmax, true
	}
	return tmin, true
}

// Bounds returns the world-space box around g transformed by world.
func Bounds(g *scenegraph.Geometry, world math.Mat4) (AABB, bool) {
	if g == nil || len(g.Vertices) == 0 {
		return AABB{}, false
	}
	var box AABB
	for i, v := range g.Vertices {
		p := world.TransformVec3(math.V3(v.Position[0], v.Position[1], v.Position[2]))
		if i == 0 {
			box = AABB{Min: p, Max: p}
			continue
		}
		box.Min = math.V3(min(box.Min.X, p.X), min(box.Min.Y, p.Y), min(box.Min.Z, p.Z))
		box.Max = math.V3(max(box.Max.X, p.X), max(box.Max.Y, p.Y), max(box.Max.Z, p.Z))
	}
	return box, true
}

// Pick returns the nearest visible mesh under root hit by the ray, or nil.
func Pick(root *scenegraph.Node, r Ray) *scenegraph.Node {
	var (
		best  *scenegraph.Node
		bestT = float32(gomath.MaxFloat32)
	)
	root.TraverseVisible(func(n *scenegraph.Node, world math.Mat4) {
		if !n.IsMesh() {
			return
		}
		box, ok := Bounds(n.Mesh.Geometry, world)
		if !ok {
			return
		}
		if t, hit := r.IntersectAABB(box); hit && t < bestT {
			best, bestT = n, t
		}
	})
	return best
}
