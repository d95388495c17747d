// Package shapes builds simple procedural geometry.
package shapes

import (
	gomath "math"

	"github.com/Faultbox/sonoir/internal/engine/scenegraph"
	"github.com/Faultbox/sonoir/pkg/math"
)

// Box returns an axis-aligned box centered on the origin with flat normals.
func Box(w, h, d float32) *scenegraph.Geometry {
	x, y, z := w/2, h/2, d/2

	faces := []struct {
		normal  [3]float32
		corners [4][3]float32
	}{
		{[3]float32{0, 0, 1}, [4][3]float32{{-x, -y, z}, {x, -y, z}, {x, y, z}, {-x, y, z}}},
		{[3]float32{0, 0, -1}, [4][3]float32{{x, -y, -z}, {-x, -y, -z}, {-x, y, -z}, {x, y, -z}}},
		{[3]float32{1, 0, 0}, [4][3]float32{{x, -y, z}, {x, -y, -z}, {x, y, -z}, {x, y, z}}},
		{[3]float32{-1, 0, 0}, [4][3]float32{{-x, -y, -z}, {-x, -y, z}, {-x, y, z}, {-x, y, -z}}},
		{[3]float32{0, 1, 0}, [4][3]float32{{-x, y, z}, {x, y, z}, {x, y, -z}, {-x, y, -z}}},
		{[3]float32{0, -1, 0}, [4][3]float32{{-x, -y, -z}, {x, -y, -z}, {x, -y, z}, {-x, -y, z}}},
	}

	vertices := make([]scenegraph.Vertex, 0, 24)
	indices := make([]uint32, 0, 36)
	for _, f := range faces {
		base := uint32(len(vertices))
		for _, c := range f.corners {
			vertices = append(vertices, scenegraph.Vertex{Position: c, Normal: f.normal})
		}
		indices = append(indices, base, base+1, base+2, base, base+2, base+3)
	}
	return scenegraph.NewGeometry(vertices, indices)
}

// Cylinder returns a capped cylinder along the Z axis, centered on the origin.
func Cylinder(radius, length float32, segments int) *scenegraph.Geometry {
	if segments < 3 {
		segments = 3
	}
	half := length / 2

	var vertices []scenegraph.Vertex
	var indices []uint32

	// Side wall.
	for i := 0; i <= segments; i++ {
		a := 2 * gomath.Pi * float64(i) / float64(segments)
		cx, cy := float32(gomath.Cos(a)), float32(gomath.Sin(a))
		n := [3]float32{cx, cy, 0}
		vertices = append(vertices,
			scenegraph.Vertex{Position: [3]float32{cx * radius, cy * radius, -half}, Normal: n},
			scenegraph.Vertex{Position: [3]float32{cx * radius, cy * radius, half}, Normal: n},
		)
	}
	for i := 0; i < segments; i++ {
		b := uint32(i * 2)
		indices = append(indices, b, b+2, b+1, b+1, b+2, b+3)
	}

	// Caps.
	for _, side := range []float32{-1, 1} {
		center := uint32(len(vertices))
		n := [3]float32{0, 0, side}
		vertices = append(vertices, scenegraph.Vertex{Position: [3]float32{0, 0, side * half}, Normal: n})
		for i := 0; i <= segments; i++ {
			a := 2 * gomath.Pi * float64(i) / float64(segments)
			vertices = append(vertices, scenegraph.Vertex{
				Position: [3]float32{float32(gomath.Cos(a)) * radius, float32(gomath.Sin(a)) * radius, side * half},
				Normal:   n,
			})
		}
		for i := uint32(0); i < uint32(segments); i++ {
			if side > 0 {
				indices = append(indices, center, center+1+i, center+2+i)
			} else {
				indices = append(indices, center, center+2+i, center+1+i)
			}
		}
	}

	return scenegraph.NewGeometry(vertices, indices)
}

// Placement is a geometry positioned by a transform.
type Placement struct {
	Geometry  *scenegraph.Geometry
	Transform math.Mat4
}

// Place pairs g with a translation to at.
func Place(g *scenegraph.Geometry, at math.Vec3) Placement {
	return Placement{Geometry: g, Transform: math.Translate(at)}
}

// Merge bakes the placements into a single geometry, in order.
func Merge(parts ...Placement) *scenegraph.Geometry {
	out := scenegraph.NewGeometry(nil, nil)
	for _, p := range parts {
		out.Append(p.Geometry, p.Transform)
	}
	return out
}
