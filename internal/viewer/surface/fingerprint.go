package surface

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/Faultbox/sonoir/internal/engine/scenegraph"
)

// GrilleMarker identifies the meshes that stay visible when visibility is restricted.
const GrilleMarker = "sonoirWithGrille"

// IsGrille reports whether a mesh name follows the grille naming convention.
func IsGrille(name string) bool {
	return strings.Contains(name, GrilleMarker)
}

// Selection is the surface treatment requested for one part.
type Selection struct {
	Material *scenegraph.Material
	Color    string // display color token, e.g. "bg-amber-600"
	PartName string // mesh name; the map key is used when empty
}

// Assignments maps a part identifier to its requested selection.
type Assignments map[string]Selection

func (s Selection) target(key string) string {
	if s.PartName != "" {
		return s.PartName
	}
	return key
}

// keys returns the assignment keys in a stable order so "first match" and the
// fingerprint do not depend on map iteration.
func (a Assignments) keys() []string {
	keys := make([]string, 0, len(a))
	for k := range a {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

type fingerprintEntry struct {
	Key     string     `json:"key"`
	Part    string     `json:"part"`
	Color   string     `json:"color"`
	Type    string     `json:"type"`
	Name    string     `json:"name,omitempty"`
	Shade   [9]float32 `json:"shade"`
	Invalid bool       `json:"invalid,omitempty"`
}

// Fingerprint serializes the parts of an assignment that affect what is drawn.
// Two assignments with equal fingerprints render identically. Invalid
// materials render as the fallback, so their shading values are left out.
func Fingerprint(a Assignments) string {
	entries := make([]fingerprintEntry, 0, len(a))
	for _, k := range a.keys() {
		sel := a[k]
		e := fingerprintEntry{Key: k, Part: sel.target(k), Color: sel.Color}
		if m := sel.Material; m != nil {
			e.Type = m.Kind
			e.Name = m.Name
			shade, ok := m.Shade()
			e.Shade = shade
			e.Invalid = !ok
		}
		entries = append(entries, e)
	}
	b, err := json.Marshal(entries)
	if err != nil {
		return ""
	}
	return string(b)
}
