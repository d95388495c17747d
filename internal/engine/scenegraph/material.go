package scenegraph

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync/atomic"
)

// KindStandard is the physically based material every configurator preset uses.
const KindStandard = "MeshStandardMaterial"

var nextID atomic.Uint64

func newID() uint64 {
	return nextID.Add(1)
}

// Color is a linear RGB triple in [0,1].
type Color [3]float32

// White is the default material color.
var White = Color{1, 1, 1}

// ParseHex parses "#RRGGBB" or "RRGGBB".
func ParseHex(s string) (Color, error) {
	h := strings.TrimPrefix(s, "#")
	if len(h) != 6 {
		return Color{}, fmt.Errorf("color %q: want 6 hex digits", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("color %q: %w", s, err)
	}
	return Color{
		float32(v>>16&0xff) / 255,
		float32(v>>8&0xff) / 255,
		float32(v&0xff) / 255,
	}, nil
}

// Material describes how a mesh surface is shaded.
//
// A Material may be bound to exactly one mesh at a time; use Clone to share a
// preset between meshes.
type Material struct {
	Name        string
	Kind        string
	Color       Color
	Emissive    Color
	Metalness   float32
	Roughness   float32
	Opacity     float32
	Transparent bool

	id       uint64
	disposed bool
}

// NewStandardMaterial returns an opaque white standard material.
func NewStandardMaterial() *Material {
	return &Material{
		Kind:      KindStandard,
		Color:     White,
		Metalness: 0,
		Roughness: 1,
		Opacity:   1,
		id:        newID(),
	}
}

// ID returns the identity the render device keys GPU state by.
func (m *Material) ID() uint64 {
	return m.id
}

// Clone returns an independent copy with its own identity.
func (m *Material) Clone() *Material {
	c := *m
	c.id = newID()
	c.disposed = false
	return &c
}

// Dispose marks the material as released. The render device frees the GPU side.
func (m *Material) Dispose() {
	m.disposed = true
}

// Disposed reports whether Dispose has been called.
func (m *Material) Disposed() bool {
	return m.disposed
}

// Valid reports whether the material can be rendered: it must be live, have a
// kind, finite shading values and an opacity in [0,1].
func (m *Material) Valid() bool {
	if m == nil || m.disposed || m.Kind == "" {
		return false
	}
	for _, v := range m.params() {
		if !finite(v) {
			return false
		}
	}
	return m.Opacity >= 0 && m.Opacity <= 1
}

// params lists every shading value in a fixed order.
func (m *Material) params() [9]float32 {
	return [9]float32{
		m.Color[0], m.Color[1], m.Color[2],
		m.Emissive[0], m.Emissive[1], m.Emissive[2],
		m.Metalness, m.Roughness, m.Opacity,
	}
}

// Shade returns the shading values when the material is valid, and ok=false
// otherwise.
func (m *Material) Shade() (shade [9]float32, ok bool) {
	if !m.Valid() {
		return shade, false
	}
	return m.params(), true
}

func finite(v float32) bool {
	f := float64(v)
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
