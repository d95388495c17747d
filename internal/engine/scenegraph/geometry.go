package scenegraph

import "github.com/Faultbox/sonoir/pkg/math"

// Vertex is an interleaved position + normal pair.
type Vertex struct {
	Position [3]float32
	Normal   [3]float32
}

// Geometry is indexed triangle data.
type Geometry struct {
	Vertices []Vertex
	Indices  []uint32

	id       uint64
	disposed bool
}

// NewGeometry wraps vertex and index data.
func NewGeometry(vertices []Vertex, indices []uint32) *Geometry {
	return &Geometry{
		Vertices: vertices,
		Indices:  indices,
		id:       newID(),
	}
}

// ID returns the identity the render device keys GPU buffers by.
func (g *Geometry) ID() uint64 {
	return g.id
}

// Dispose marks the geometry as released.
func (g *Geometry) Dispose() {
	g.disposed = true
}

// Disposed reports whether Dispose has been called.
func (g *Geometry) Disposed() bool {
	return g.disposed
}

// Append merges other into g, transforming its vertices by m.
func (g *Geometry) Append(other *Geometry, m math.Mat4) {
	base := uint32(len(g.Vertices))
	for _, v := range other.Vertices {
		p := m.TransformVec3(math.V3(v.Position[0], v.Position[1], v.Position[2]))
		g.Vertices = append(g.Vertices, Vertex{Position: p.Array(), Normal: v.Normal})
	}
	for _, i := range other.Indices {
		g.Indices = append(g.Indices, base+i)
	}
}
