package shapes

import (
	"fmt"

	"github.com/Faultbox/sonoir/internal/engine/scenegraph"
	"github.com/Faultbox/sonoir/pkg/math"
)

// Speaker dimensions in scene units.
const (
	speakerWidth  = 36
	speakerHeight = 20
	speakerDepth  = 14
)

// part describes one named mesh of the speaker model.
type part struct {
	index int
	geo   func() *scenegraph.Geometry
	at    math.Vec3
	color scenegraph.Color
}

// SpeakerPartName returns the mesh name of the i-th grille part.
func SpeakerPartName(i int) string {
	return fmt.Sprintf("sonoirWithGrille_%d", i)
}

// Speaker builds the configurable speaker: twelve grille-variant parts named
// sonoirWithGrille_1..12 plus a plain front panel used by the no-grille variant.
// Every mesh gets its own base material.
func Speaker() *scenegraph.Node {
	grey := scenegraph.Color{0.6, 0.6, 0.6}
	dark := scenegraph.Color{0.2, 0.2, 0.2}

	w, h, d := float32(speakerWidth), float32(speakerHeight), float32(speakerDepth)
	front := d/2 + 0.5

	parts := []part{
		{1, func() *scenegraph.Geometry { return Box(w-4, h-4, 0.5) }, math.V3(0, 0, front-0.4), dark},
		{2, func() *scenegraph.Geometry { return Box(w, h, d-2) }, math.Origin, grey},
		{3, func() *scenegraph.Geometry { return frontAndBack(w, h, d) }, math.Origin, grey},
		{4, func() *scenegraph.Geometry { return Box(w-6, 1, 0.5) }, math.V3(0, h/2-3, front), dark},
		{5, func() *scenegraph.Geometry { return knobs(w) }, math.V3(0, h/2-1.5, 0), grey},
		{6, func() *scenegraph.Geometry { return Box(0.5, h-4, d-4) }, math.V3(w/2+0.25, 0, 0), grey},
		{7, func() *scenegraph.Geometry { return feet(w, d) }, math.V3(0, -h/2-1, 0), dark},
		{8, func() *scenegraph.Geometry { return grilleBars(w-8, 3, 0) }, math.V3(0, 2, front), dark},
		{9, func() *scenegraph.Geometry { return grilleBars(w-8, 3, 1) }, math.V3(0, -2, front), dark},
		{10, func() *scenegraph.Geometry { return Box(0.5, h-4, d-4) }, math.V3(-w/2-0.25, 0, 0), grey},
		{11, func() *scenegraph.Geometry { return Box(w-4, 1, 0.6) }, math.V3(0, -h/2+2, front), grey},
		{12, func() *scenegraph.Geometry { return Box(w-4, 0.5, d-4) }, math.V3(0, h/2+0.25, 0), grey},
	}

	root := scenegraph.NewGroup("sonoir")
	for _, p := range parts {
		n := scenegraph.NewMeshNode(SpeakerPartName(p.index), p.geo(), baseMaterial(p.index, p.color))
		n.Local = math.Translate(p.at)
		root.Add(n)
	}

	plain := scenegraph.NewMeshNode("sonoirPlainFront", Box(w-4, h-4, 0.5), baseMaterial(0, grey))
	plain.Local = math.Translate(math.V3(0, 0, front-0.2))
	root.Add(plain)

	return root
}

func baseMaterial(i int, c scenegraph.Color) *scenegraph.Material {
	m := scenegraph.NewStandardMaterial()
	m.Name = fmt.Sprintf("sonoir_mat_%d", i)
	m.Color = c
	m.Roughness = 0.7
	return m
}

func frontAndBack(w, h, d float32) *scenegraph.Geometry {
	return Merge(
		Place(Box(w, h, 1), math.V3(0, 0, d/2-0.5)),
		Place(Box(w, h, 1), math.V3(0, 0, -d/2+0.5)),
	)
}

func knobs(w float32) *scenegraph.Geometry {
	return Merge(
		Place(Cylinder(1.2, 1.5, 24), math.V3(w/2-4, 0, speakerDepth/2+1)),
		Place(Cylinder(1.2, 1.5, 24), math.V3(w/2-7.5, 0, speakerDepth/2+1)),
	)
}

func feet(w, d float32) *scenegraph.Geometry {
	var parts []Placement
	for _, x := range []float32{-w/2 + 3, w/2 - 3} {
		for _, z := range []float32{-d/2 + 2, d/2 - 2} {
			parts = append(parts, Place(Box(3, 2, 3), math.V3(x, 0, z)))
		}
	}
	return Merge(parts...)
}

// grilleBars builds horizontal slats; offset shifts every other bar so the two
// grille layers interleave.
func grilleBars(width, height float32, offset int) *scenegraph.Geometry {
	const bars = 4
	step := height / bars
	parts := make([]Placement, 0, bars)
	for i := 0; i < bars; i++ {
		y := -height/2 + step*(float32(i)+0.5)
		if (i+offset)%2 == 1 {
			y += step / 4
		}
		parts = append(parts, Place(Box(width, step/3, 0.4), math.V3(0, y, 0)))
	}
	return Merge(parts...)
}
