// Package scenegraph holds the mutable scene the renderer draws every frame:
// a tree of named nodes, some of which carry a mesh (geometry + material).
package scenegraph

import "github.com/Faultbox/sonoir/pkg/math"

// Mesh binds geometry to a material.
type Mesh struct {
	Geometry *Geometry
	Material *Material
}

// Node is one element of the scene tree.
type Node struct {
	Name     string
	Visible  bool
	Local    math.Mat4
	Mesh     *Mesh
	Children []*Node
}

// NewGroup creates an empty visible node.
func NewGroup(name string) *Node {
	return &Node{Name: name, Visible: true, Local: math.Identity()}
}

// NewMeshNode creates a visible node carrying a mesh.
func NewMeshNode(name string, geo *Geometry, mat *Material) *Node {
	n := NewGroup(name)
	n.Mesh = &Mesh{Geometry: geo, Material: mat}
	return n
}

// Add appends children and returns n for chaining.
func (n *Node) Add(children ...*Node) *Node {
	n.Children = append(n.Children, children...)
	return n
}

// IsMesh reports whether the node carries a mesh.
func (n *Node) IsMesh() bool {
	return n.Mesh != nil
}

// Traverse visits n and every descendant depth-first, parents before children.
func (n *Node) Traverse(fn func(*Node)) {
	if n == nil {
		return
	}
	fn(n)
	for _, c := range n.Children {
		c.Traverse(fn)
	}
}

// TraverseMeshes visits every mesh node regardless of visibility.
func (n *Node) TraverseMeshes(fn func(*Node)) {
	n.Traverse(func(c *Node) {
		if c.IsMesh() {
			fn(c)
		}
	})
}

// TraverseVisible visits visible nodes with their world matrix. Hidden nodes
// hide their whole subtree.
func (n *Node) TraverseVisible(fn func(n *Node, world math.Mat4)) {
	n.traverseVisible(math.Identity(), fn)
}

func (n *Node) traverseVisible(parent math.Mat4, fn func(*Node, math.Mat4)) {
	if n == nil || !n.Visible {
		return
	}
	world := parent.Mul(n.Local)
	fn(n, world)
	for _, c := range n.Children {
		c.traverseVisible(world, fn)
	}
}

// Find returns the first node with the given name.
func (n *Node) Find(name string) *Node {
	var found *Node
	n.Traverse(func(c *Node) {
		if found == nil && c.Name == name {
			found = c
		}
	})
	return found
}
