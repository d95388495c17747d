// Package surface applies part material assignments to a live scene graph and
// manages the lifetime of the materials it allocates.
//
// All methods must be called from the render goroutine. Apply may be called
// every frame; it does no work unless the assignment changed.
package surface

import (
	"go.uber.org/zap"

	"github.com/Faultbox/sonoir/internal/engine/scenegraph"
	"github.com/Faultbox/sonoir/internal/logger"
)

// DefaultReleaseDelay is the number of rendered frames a superseded material
// survives before it is released.
const DefaultReleaseDelay = 2

// Stats counts applier activity.
type Stats struct {
	Applies   int // updates that mutated the scene
	Skipped   int // calls rejected by the fingerprint check
	Clones    int // materials cloned onto meshes
	Fallbacks int // entries replaced by the fallback material
	Scheduled int // resources queued for deferred release
}

// Applier mutates mesh materials and visibility.
type Applier struct {
	pool  *Pool
	queue releaseQueue

	delay            int
	lowMemory        bool
	maintenanceEvery int
	sinceMaintenance int

	fallback func() *scenegraph.Material
	log      *zap.Logger

	root     *scenegraph.Node
	last     string
	restrict bool
	applied  bool

	// base holds each mesh's material as first seen; those are never released
	// before teardown.
	base map[*scenegraph.Node]*scenegraph.Material
	// hidden holds meshes made invisible by the restrict rule, so lifting the
	// restriction shows exactly those again.
	hidden map[*scenegraph.Node]bool

	stats Stats
}

// Option configures an Applier.
type Option func(*Applier)

// WithReleaseDelay sets how many rendered frames pass before superseded
// materials are released. Values below one are raised to one.
func WithReleaseDelay(frames int) Option {
	return func(a *Applier) {
		if frames < 1 {
			frames = 1
		}
		a.delay = frames
	}
}

// WithLowMemory enables periodic pool maintenance every interval frames.
func WithLowMemory(interval int) Option {
	return func(a *Applier) {
		if interval < 1 {
			interval = 1
		}
		a.lowMemory = true
		a.maintenanceEvery = interval
	}
}

// WithFallback overrides the material used for missing or malformed entries.
func WithFallback(fn func() *scenegraph.Material) Option {
	return func(a *Applier) { a.fallback = fn }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(a *Applier) { a.log = l }
}

// NewApplier creates an applier that releases resources through dev.
func NewApplier(dev Device, opts ...Option) *Applier {
	a := &Applier{
		pool:     NewPool(dev),
		delay:    DefaultReleaseDelay,
		fallback: FallbackMaterial,
		log:      logger.Log,
		base:     make(map[*scenegraph.Node]*scenegraph.Material),
		hidden:   make(map[*scenegraph.Node]bool),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.log = a.log.Named("surface")
	return a
}

// FallbackMaterial is a neutral, fully opaque grey.
func FallbackMaterial() *scenegraph.Material {
	m := scenegraph.NewStandardMaterial()
	m.Name = "fallback"
	m.Color = scenegraph.Color{0.8, 0.8, 0.8}
	m.Roughness = 0.5
	return m
}

// Pool exposes the resource pool, mainly for inspection.
func (a *Applier) Pool() *Pool {
	return a.pool
}

// Stats returns a snapshot of applier counters.
func (a *Applier) Stats() Stats {
	return a.stats
}

// Pending returns how many resources wait for deferred release.
func (a *Applier) Pending() int {
	return a.queue.len()
}

// Apply brings root in line with assignments. With restrict set, only grille
// meshes stay visible.
func (a *Applier) Apply(root *scenegraph.Node, assignments Assignments, restrict bool) {
	if root == nil {
		return
	}

	fp := Fingerprint(assignments)
	if a.applied && fp != "" && fp == a.last && restrict == a.restrict && root == a.root {
		a.stats.Skipped++
		return
	}
	if a.root != nil && a.root != root {
		a.log.Debug("scene root changed, forgetting base materials")
		a.base = make(map[*scenegraph.Node]*scenegraph.Material)
		a.hidden = make(map[*scenegraph.Node]bool)
	}
	a.root = root
	a.last = fp
	a.restrict = restrict
	a.applied = true

	keys := assignments.keys()
	var superseded []*scenegraph.Material
	clones := 0

	root.TraverseMeshes(func(n *scenegraph.Node) {
		if _, seen := a.base[n]; !seen {
			a.base[n] = n.Mesh.Material
			a.pool.TrackGeometry(n.Mesh.Geometry)
		}

		a.applyVisibility(n, restrict)

		for _, k := range keys {
			sel := assignments[k]
			if sel.target(k) != n.Name {
				continue
			}
			old := n.Mesh.Material
			next := a.materialFor(k, sel).Clone()
			if old != nil && old.Name != "" {
				next.Name = old.Name
			}
			a.pool.TrackMaterial(next)
			n.Mesh.Material = next
			clones++
			if a.releasable(n, old) {
				superseded = append(superseded, old)
			}
			break
		}

		if !n.Mesh.Material.Valid() {
			old := n.Mesh.Material
			next := a.fallback()
			a.pool.TrackMaterial(next)
			n.Mesh.Material = next
			a.stats.Fallbacks++
			if a.releasable(n, old) {
				superseded = append(superseded, old)
			}
		}
	})

	a.queue.schedule(a.delay, superseded)
	a.stats.Applies++
	a.stats.Clones += clones
	a.stats.Scheduled += len(superseded)

	a.log.Debug("materials applied",
		zap.Int("assignments", len(assignments)),
		zap.Int("clones", clones),
		zap.Int("superseded", len(superseded)),
		zap.Bool("restrict", restrict),
	)
}

func (a *Applier) applyVisibility(n *scenegraph.Node, restrict bool) {
	if !restrict {
		if a.hidden[n] {
			n.Visible = true
			delete(a.hidden, n)
		}
		return
	}
	if IsGrille(n.Name) {
		n.Visible = true
		delete(a.hidden, n)
		return
	}
	if n.Visible {
		a.hidden[n] = true
	}
	n.Visible = false
}

func (a *Applier) materialFor(key string, sel Selection) *scenegraph.Material {
	if sel.Material.Valid() {
		return sel.Material
	}
	a.stats.Fallbacks++
	a.log.Warn("invalid material for part, using fallback", zap.String("part", key))
	return a.fallback()
}

// releasable reports whether old was allocated by this applier and is not the
// mesh's base material.
func (a *Applier) releasable(n *scenegraph.Node, old *scenegraph.Material) bool {
	return old != nil && old != a.base[n] && a.pool.OwnsMaterial(old)
}

// Tick is called once per rendered frame, after the draw. It releases
// superseded resources that have now been replaced on screen.
func (a *Applier) Tick() {
	if n := a.queue.advance(a.pool); n > 0 {
		a.log.Debug("released superseded resources", zap.Int("count", n))
	}
	if !a.lowMemory {
		return
	}
	a.sinceMaintenance++
	if a.sinceMaintenance >= a.maintenanceEvery {
		a.sinceMaintenance = 0
		a.pool.Maintain()
		a.log.Debug("pool maintenance", zap.Int("retained", a.pool.Retained()))
	}
}

// Teardown releases every material and geometry reachable from root along
// with everything the applier still holds. root must not be drawn afterwards.
func (a *Applier) Teardown(root *scenegraph.Node) {
	flushed := a.queue.flush(a.pool)

	meshes := 0
	root.TraverseMeshes(func(n *scenegraph.Node) {
		a.pool.ReleaseMaterial(n.Mesh.Material)
		a.pool.ReleaseGeometry(n.Mesh.Geometry)
		n.Mesh.Material = nil
		n.Mesh.Geometry = nil
		meshes++
	})
	for n, m := range a.base {
		a.pool.ReleaseMaterial(m)
		delete(a.base, n)
	}
	a.pool.Clear()
	a.hidden = make(map[*scenegraph.Node]bool)

	a.root = nil
	a.last = ""
	a.applied = false

	a.log.Info("scene torn down",
		zap.Int("meshes", meshes),
		zap.Int("flushed", flushed),
		zap.Int("released_total", a.pool.Stats().Released),
	)
}
