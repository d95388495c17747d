// Package configurator holds the speaker's customization wizard: the steps,
// the material and color choices per step, and the state of a session.
package configurator

import (
	"github.com/Faultbox/sonoir/internal/engine/scenegraph"
	"github.com/Faultbox/sonoir/internal/share"
	"github.com/Faultbox/sonoir/pkg/math"
)

// MaterialOption is one material a step offers, with the colors it comes in.
type MaterialOption struct {
	Name   string
	Colors []string
}

// Step is one customizable part of the model.
type Step struct {
	Title     string
	PartName  string
	Materials []MaterialOption
}

// Option returns the named material option of the step.
func (s Step) Option(name string) (MaterialOption, bool) {
	for _, m := range s.Materials {
		if m.Name == name {
			return m, true
		}
	}
	return MaterialOption{}, false
}

// Preset holds the shading parameters of a material finish.
type Preset struct {
	Metalness float32
	Roughness float32
}

// Catalog is the full set of choices the wizard offers.
type Catalog struct {
	Steps   []Step
	Presets map[string]Preset
	Colors  map[string]string // token -> #RRGGBB
	Angles  []math.Vec3       // camera position per step
}

// UnknownColor is used for color tokens missing from the catalog.
const UnknownColor = "#CCCCCC"

// DefaultCatalog returns the sonoir speaker catalog.
func DefaultCatalog() Catalog {
	var (
		mesh      = MaterialOption{"Mesh", []string{"bg-amber-600", "bg-amber-900"}}
		metal     = MaterialOption{"Metal", []string{"bg-white", "bg-black"}}
		aluminium = MaterialOption{"Aluminium", []string{"bg-slate-300", "bg-zinc-500"}}
		carbon    = MaterialOption{"Carbon", []string{"bg-neutral-800", "bg-neutral-600"}}
		chrome    = MaterialOption{"Chrome", []string{"bg-gray-300", "bg-gray-500"}}
	)

	return Catalog{
		Steps: []Step{
			{"Center Part", "sonoirWithGrille_2", []MaterialOption{chrome, aluminium}},
			{"Front and Back Part", "sonoirWithGrille_3", []MaterialOption{carbon, metal}},
			{"Knobs", "sonoirWithGrille_5", []MaterialOption{chrome, carbon}},
			{"Feet", "sonoirWithGrille_7", []MaterialOption{aluminium, chrome}},
			{"Grille Part 8", "sonoirWithGrille_8", []MaterialOption{carbon, metal}},
			{"Grille Part 9", "sonoirWithGrille_9", []MaterialOption{mesh, chrome}},
			{"Grille Part 11", "sonoirWithGrille_11", []MaterialOption{metal, mesh}},
		},
		Presets: map[string]Preset{
			"Mesh":      {Metalness: 0.3, Roughness: 0.6},
			"Metal":     {Metalness: 1, Roughness: 0.2},
			"Aluminium": {Metalness: 0.8, Roughness: 0.4},
			"Carbon":    {Metalness: 0.6, Roughness: 0.3},
			"Chrome":    {Metalness: 1, Roughness: 0.1},
		},
		Colors: map[string]string{
			"bg-amber-600":   "#D97706",
			"bg-amber-900":   "#78350F",
			"bg-white":       "#FFFFFF",
			"bg-black":       "#000000",
			"bg-slate-300":   "#CBD5E1",
			"bg-zinc-500":    "#71717A",
			"bg-neutral-800": "#262626",
			"bg-neutral-600": "#525252",
			"bg-gray-300":    "#D1D5DB",
			"bg-gray-500":    "#6B7280",
			"bg-red-500":     "#EF4444",
			"bg-red-700":     "#B91C1C",
		},
		Angles: []math.Vec3{
			{X: 44.49, Y: 22.57, Z: 25.79},
			{X: 44.01, Y: 18.35, Z: -29.68},
			{X: 0.57, Y: 48.29, Z: 28.66},
			{X: 15, Y: 5, Z: 15},
			{X: 5, Y: -5, Z: 20},
			{X: 20, Y: 5, Z: 5},
			{X: -5, Y: 10, Z: 20},
			{X: 15, Y: 15, Z: 15},
			{X: 10, Y: -5, Z: 15},
			{X: 0, Y: 5, Z: 25},
			{X: 25, Y: 5, Z: 0},
			{X: 15, Y: 20, Z: 15},
		},
	}
}

// Hex returns the hex color for a token, or UnknownColor.
func (c Catalog) Hex(token string) string {
	if hex, ok := c.Colors[token]; ok {
		return hex
	}
	return UnknownColor
}

// Angle returns the camera position for step i. Steps past the end of the
// angle table reuse the last angle.
func (c Catalog) Angle(i int) math.Vec3 {
	if len(c.Angles) == 0 {
		return math.Origin
	}
	if i < 0 {
		i = 0
	}
	if i >= len(c.Angles) {
		i = len(c.Angles) - 1
	}
	return c.Angles[i]
}

// Material builds a fresh material for a finish and color token. Unknown
// finishes get a plain standard material; an empty token keeps the preset's
// base color.
func (c Catalog) Material(name, token string) *scenegraph.Material {
	m := scenegraph.NewStandardMaterial()
	m.Name = name
	if p, ok := c.Presets[name]; ok {
		m.Metalness = p.Metalness
		m.Roughness = p.Roughness
	}
	if token != "" {
		col, err := scenegraph.ParseHex(c.Hex(token))
		if err != nil {
			col, _ = scenegraph.ParseHex(UnknownColor)
		}
		m.Color = col
	}
	return m
}

// Highlight returns the glowing, translucent material shown on the part being
// edited before a finish is chosen.
func Highlight() *scenegraph.Material {
	m := scenegraph.NewStandardMaterial()
	m.Name = "highlight"
	m.Emissive = scenegraph.Color{0x66 / 255.0, 0x66 / 255.0, 0x66 / 255.0}
	m.Transparent = true
	m.Opacity = 0.8
	return m
}

// Codec returns the share codec for this catalog. Alphabets follow the order
// in which finishes and colors first appear in the steps.
func (c Catalog) Codec() (*share.Codec, error) {
	var options, colors []string
	seenOpt := map[string]bool{}
	seenCol := map[string]bool{}
	for _, s := range c.Steps {
		for _, m := range s.Materials {
			if !seenOpt[m.Name] {
				seenOpt[m.Name] = true
				options = append(options, m.Name)
			}
			for _, col := range m.Colors {
				if !seenCol[col] {
					seenCol[col] = true
					colors = append(colors, col)
				}
			}
		}
	}
	return share.NewCodec(options, colors)
}
