package surface

import (
	"github.com/Faultbox/sonoir/internal/engine/scenegraph"
)

// Device frees the GPU side of scene resources. The renderer implements it.
type Device interface {
	ReleaseMaterial(m *scenegraph.Material)
	ReleaseGeometry(g *scenegraph.Geometry)
}

// Compactor is implemented by devices that keep recycled GPU buffers around
// and can drop them on request.
type Compactor interface {
	Compact()
}

// PoolStats counts pool activity since creation.
type PoolStats struct {
	Tracked     int
	Released    int
	Maintenance int
}

// Pool owns the materials the applier allocated and the geometries of the
// meshes it manages. Every resource it tracks is released exactly once, either
// when superseded or on Clear.
type Pool struct {
	dev        Device
	materials  map[uint64]*scenegraph.Material
	geometries map[uint64]*scenegraph.Geometry
	stats      PoolStats
}

// NewPool creates an empty pool releasing through dev.
func NewPool(dev Device) *Pool {
	return &Pool{
		dev:        dev,
		materials:  make(map[uint64]*scenegraph.Material),
		geometries: make(map[uint64]*scenegraph.Geometry),
	}
}

// TrackMaterial records a material allocated by the caller.
func (p *Pool) TrackMaterial(m *scenegraph.Material) {
	if m == nil {
		return
	}
	if _, ok := p.materials[m.ID()]; !ok {
		p.materials[m.ID()] = m
		p.stats.Tracked++
	}
}

// TrackGeometry records a geometry allocated by the caller.
func (p *Pool) TrackGeometry(g *scenegraph.Geometry) {
	if g == nil {
		return
	}
	if _, ok := p.geometries[g.ID()]; !ok {
		p.geometries[g.ID()] = g
		p.stats.Tracked++
	}
}

// OwnsMaterial reports whether m was allocated through the pool and is still live.
func (p *Pool) OwnsMaterial(m *scenegraph.Material) bool {
	if m == nil {
		return false
	}
	_, ok := p.materials[m.ID()]
	return ok
}

// ReleaseMaterial frees m on the device. Untracked materials are released too,
// which is what teardown relies on. Releasing twice is a no-op.
func (p *Pool) ReleaseMaterial(m *scenegraph.Material) {
	if m == nil || m.Disposed() {
		return
	}
	delete(p.materials, m.ID())
	p.dev.ReleaseMaterial(m)
	m.Dispose()
	p.stats.Released++
}

// ReleaseGeometry frees g on the device. Releasing twice is a no-op.
func (p *Pool) ReleaseGeometry(g *scenegraph.Geometry) {
	if g == nil || g.Disposed() {
		return
	}
	delete(p.geometries, g.ID())
	p.dev.ReleaseGeometry(g)
	g.Dispose()
	p.stats.Released++
}

// Retained returns how many tracked resources are still live.
func (p *Pool) Retained() int {
	return len(p.materials) + len(p.geometries)
}

// Maintain drops bookkeeping for resources disposed behind the pool's back and
// asks the device to compact its recycled buffers.
func (p *Pool) Maintain() {
	for id, m := range p.materials {
		if m.Disposed() {
			delete(p.materials, id)
		}
	}
	for id, g := range p.geometries {
		if g.Disposed() {
			delete(p.geometries, id)
		}
	}
	if c, ok := p.dev.(Compactor); ok {
		c.Compact()
	}
	p.stats.Maintenance++
}

// Clear releases everything still tracked.
func (p *Pool) Clear() {
	for _, m := range p.materials {
		p.ReleaseMaterial(m)
	}
	for _, g := range p.geometries {
		p.ReleaseGeometry(g)
	}
}

// Stats returns a snapshot of pool counters.
func (p *Pool) Stats() PoolStats {
	return p.stats
}
