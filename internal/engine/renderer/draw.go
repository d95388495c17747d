package renderer

import (
	"sort"

	"github.com/Faultbox/sonoir/internal/engine/scenegraph"
	"github.com/Faultbox/sonoir/pkg/math"
)

// materialBlockSize is the std140 size of the Material uniform block.
const materialBlockSize = 12 * 4

// drawItem is one mesh ready to be submitted.
type drawItem struct {
	node  *scenegraph.Node
	world math.Mat4
	depth float32
}

// drawList collects visible meshes with a usable material and geometry.
// Opaque meshes come first in scene order, then transparent ones back to front.
func drawList(root *scenegraph.Node, eye math.Vec3) []drawItem {
	var opaque, transparent []drawItem
	root.TraverseVisible(func(n *scenegraph.Node, world math.Mat4) {
		if !n.IsMesh() || n.Mesh.Geometry == nil || n.Mesh.Geometry.Disposed() {
			return
		}
		if !n.Mesh.Material.Valid() {
			return
		}
		item := drawItem{node: n, world: world}
		if n.Mesh.Material.Transparent {
			center := world.TransformVec3(math.Origin)
			item.depth = center.Distance(eye)
			transparent = append(transparent, item)
			return
		}
		opaque = append(opaque, item)
	})
	sort.SliceStable(transparent, func(i, j int) bool {
		return transparent[i].depth > transparent[j].depth
	})
	return append(opaque, transparent...)
}

// packMaterial lays out m in the Material block's std140 layout.
func packMaterial(m *scenegraph.Material) [12]float32 {
	transparent := float32(0)
	if m.Transparent {
		transparent = 1
	}
	return [12]float32{
		m.Color[0], m.Color[1], m.Color[2], m.Opacity,
		m.Emissive[0], m.Emissive[1], m.Emissive[2], 0,
		m.Metalness, m.Roughness, transparent, 0,
	}
}

// packVertices flattens interleaved position/normal data.
func packVertices(g *scenegraph.Geometry) []float32 {
	out := make([]float32, 0, len(g.Vertices)*6)
	for _, v := range g.Vertices {
		out = append(out,
			v.Position[0], v.Position[1], v.Position[2],
			v.Normal[0], v.Normal[1], v.Normal[2],
		)
	}
	return out
}
