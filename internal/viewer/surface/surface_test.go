package surface

import (
	stdmath "math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/sonoir/internal/engine/scenegraph"
)

// trackingDevice stands in for the renderer and records every release.
type trackingDevice struct {
	materials  map[uint64]int
	geometries map[uint64]int
	compacts   int
}

func newTrackingDevice() *trackingDevice {
	return &trackingDevice{
		materials:  make(map[uint64]int),
		geometries: make(map[uint64]int),
	}
}

func (d *trackingDevice) ReleaseMaterial(m *scenegraph.Material) { d.materials[m.ID()]++ }
func (d *trackingDevice) ReleaseGeometry(g *scenegraph.Geometry) { d.geometries[g.ID()]++ }
func (d *trackingDevice) Compact()                               { d.compacts++ }

func mesh(name string) *scenegraph.Node {
	geo := scenegraph.NewGeometry(nil, nil)
	mat := scenegraph.NewStandardMaterial()
	mat.Name = name + "-base"
	return scenegraph.NewMeshNode(name, geo, mat)
}

func preset(name string, metalness float32) *scenegraph.Material {
	m := scenegraph.NewStandardMaterial()
	m.Name = name
	m.Metalness = metalness
	return m
}

func TestIsGrille(t *testing.T) {
	assert.True(t, IsGrille("sonoirWithGrille_2"))
	assert.True(t, IsGrille("prefix_sonoirWithGrille"))
	assert.False(t, IsGrille("sonoirBody"))
	assert.False(t, IsGrille("sonoirwithgrille_2"))
}

func TestFingerprintIgnoresMapIdentityAndOrder(t *testing.T) {
	chrome := preset("Chrome", 1)
	a := Assignments{
		"partA": {Material: chrome, Color: "bg-gray-300"},
		"partB": {Material: preset("Carbon", 0.6), Color: ""},
	}
	b := Assignments{
		"partB": {Material: preset("Carbon", 0.6), Color: ""},
		"partA": {Material: chrome.Clone(), Color: "bg-gray-300"},
	}
	assert.Equal(t, Fingerprint(a), Fingerprint(b))

	b["partA"] = Selection{Material: chrome, Color: "bg-gray-500"}
	assert.NotEqual(t, Fingerprint(a), Fingerprint(b))
}

func TestFingerprintSeesMaterialChangeWithoutColor(t *testing.T) {
	a := Assignments{"p": {Material: preset("Chrome", 1)}}
	b := Assignments{"p": {Material: preset("Carbon", 0.6)}}
	assert.NotEqual(t, Fingerprint(a), Fingerprint(b))
}

func TestApplyOnlyTouchesMatchingMesh(t *testing.T) {
	partA, partB := mesh("partA"), mesh("partB")
	root := scenegraph.NewGroup("root").Add(partA, partB)
	origA, origB := partA.Mesh.Material, partB.Mesh.Material

	x := preset("MaterialX", 0.5)
	app := NewApplier(newTrackingDevice())
	app.Apply(root, Assignments{"partA": {Material: x}}, false)

	assert.NotSame(t, origA, partA.Mesh.Material)
	assert.NotSame(t, x, partA.Mesh.Material, "assigned material must be a clone")
	assert.Equal(t, float32(0.5), partA.Mesh.Material.Metalness)
	assert.Equal(t, "partA-base", partA.Mesh.Material.Name, "display name is preserved")
	assert.Same(t, origB, partB.Mesh.Material)
}

func TestApplyIsIdempotentForEqualInput(t *testing.T) {
	dev := newTrackingDevice()
	root := scenegraph.NewGroup("root").Add(mesh("partA"), mesh("partB"))
	app := NewApplier(dev)

	build := func() Assignments {
		return Assignments{
			"partA": {Material: preset("Chrome", 1), Color: "bg-gray-300"},
			"partB": {Material: preset("Metal", 1), Color: "bg-black"},
		}
	}

	app.Apply(root, build(), true)
	first := app.Stats()
	require.Equal(t, 2, first.Clones)

	for i := 0; i < 5; i++ {
		app.Apply(root, build(), true)
		app.Tick()
	}

	after := app.Stats()
	assert.Equal(t, first.Clones, after.Clones)
	assert.Equal(t, first.Scheduled, after.Scheduled)
	assert.Equal(t, 5, after.Skipped)
	assert.Empty(t, dev.materials)
}

func TestUnchangedInvalidPresetIsSkipped(t *testing.T) {
	dev := newTrackingDevice()
	part := mesh("part")
	root := scenegraph.NewGroup("root").Add(part)
	app := NewApplier(dev)

	for i := 0; i < 10; i++ {
		app.Apply(root, Assignments{"part": {Material: preset("bad", float32(stdmath.NaN()))}}, false)
		app.Tick()
	}

	stats := app.Stats()
	assert.Equal(t, 1, stats.Applies)
	assert.Equal(t, 9, stats.Skipped)
	assert.Equal(t, 1, stats.Fallbacks)
	assert.Equal(t, 1, stats.Clones)
	assert.Empty(t, dev.materials)
	assert.Equal(t, "part-base", part.Mesh.Material.Name)
	assert.Equal(t, float32(0.5), part.Mesh.Material.Roughness)
	assert.NotEmpty(t, Fingerprint(Assignments{"part": {Material: preset("bad", float32(stdmath.NaN()))}}))
}

func TestApplyTracksMeshGeometry(t *testing.T) {
	a, b := mesh("partA"), mesh("partB")
	root := scenegraph.NewGroup("root").Add(a, b)
	app := NewApplier(newTrackingDevice())

	app.Apply(root, Assignments{"partA": {Material: preset("Metal", 1)}}, false)

	// two geometries plus the one clone
	assert.Equal(t, 3, app.Pool().Retained())
	app.Teardown(root)
	assert.Zero(t, app.Pool().Retained())
}

func TestApplyReappliesWhenRestrictionChanges(t *testing.T) {
	body := mesh("sonoirBody")
	root := scenegraph.NewGroup("root").Add(body)
	app := NewApplier(newTrackingDevice())

	app.Apply(root, nil, false)
	assert.True(t, body.Visible)
	app.Apply(root, nil, true)
	assert.False(t, body.Visible)
	assert.Equal(t, 0, app.Stats().Skipped)
}

func TestRestrictHidesNonGrilleMeshes(t *testing.T) {
	grille := mesh("sonoirWithGrille_8")
	grille.Visible = false
	body := mesh("sonoirBody")
	knob := mesh("knob")
	root := scenegraph.NewGroup("root").Add(grille, scenegraph.NewGroup("inner").Add(body, knob))

	NewApplier(newTrackingDevice()).Apply(root, Assignments{}, true)

	assert.True(t, grille.Visible)
	assert.False(t, body.Visible)
	assert.False(t, knob.Visible)
}

func TestLiftingRestrictionRestoresHiddenMeshes(t *testing.T) {
	grille := mesh("sonoirWithGrille_9")
	body := mesh("sonoirBody")
	off := mesh("cable")
	off.Visible = false
	root := scenegraph.NewGroup("root").Add(grille, body, off)
	app := NewApplier(newTrackingDevice())

	app.Apply(root, nil, true)
	require.False(t, body.Visible)
	require.False(t, off.Visible)

	app.Apply(root, nil, false)
	assert.True(t, grille.Visible)
	assert.True(t, body.Visible)
	assert.False(t, off.Visible, "mesh hidden by the scene stays hidden")
}

func TestFirstMatchWins(t *testing.T) {
	part := mesh("part")
	root := scenegraph.NewGroup("root").Add(part)

	app := NewApplier(newTrackingDevice())
	app.Apply(root, Assignments{
		"a": {Material: preset("first", 0.1), PartName: "part"},
		"b": {Material: preset("second", 0.9), PartName: "part"},
	}, false)

	assert.Equal(t, float32(0.1), part.Mesh.Material.Metalness)
	assert.Equal(t, 1, app.Stats().Clones)
}

func TestMalformedEntryFallsBack(t *testing.T) {
	a, b := mesh("a"), mesh("b")
	root := scenegraph.NewGroup("root").Add(a, b)
	disposed := preset("gone", 1)
	disposed.Dispose()

	app := NewApplier(newTrackingDevice())
	app.Apply(root, Assignments{
		"a": {Material: nil},
		"b": {Material: disposed},
	}, false)

	for _, n := range []*scenegraph.Node{a, b} {
		require.True(t, n.Mesh.Material.Valid(), n.Name)
		assert.Equal(t, float32(1), n.Mesh.Material.Opacity)
		assert.False(t, n.Mesh.Material.Transparent)
	}
	assert.Equal(t, 2, app.Stats().Fallbacks)
}

func TestMeshWithoutMaterialGetsFallback(t *testing.T) {
	bare := scenegraph.NewMeshNode("bare", scenegraph.NewGeometry(nil, nil), nil)
	root := scenegraph.NewGroup("root").Add(bare)

	NewApplier(newTrackingDevice()).Apply(root, nil, false)
	require.NotNil(t, bare.Mesh.Material)
	assert.Equal(t, "fallback", bare.Mesh.Material.Name)
}

func TestSupersededMaterialReleasedAfterDelay(t *testing.T) {
	dev := newTrackingDevice()
	part := mesh("part")
	base := part.Mesh.Material
	root := scenegraph.NewGroup("root").Add(part)
	app := NewApplier(dev, WithReleaseDelay(2))

	app.Apply(root, Assignments{"part": {Material: preset("one", 0.1)}}, false)
	first := part.Mesh.Material
	app.Tick()

	app.Apply(root, Assignments{"part": {Material: preset("two", 0.2)}}, false)
	require.Equal(t, 1, app.Pending())
	assert.False(t, first.Disposed(), "still referenced by the frame in flight")

	app.Tick()
	assert.False(t, first.Disposed(), "one frame is not enough with delay 2")
	app.Tick()
	assert.True(t, first.Disposed())
	assert.Equal(t, 1, dev.materials[first.ID()])
	assert.Equal(t, 0, app.Pending())

	assert.False(t, base.Disposed(), "base materials live until teardown")
	assert.False(t, part.Mesh.Material.Disposed())
}

func TestReleaseNeverBeforeOneRenderedFrame(t *testing.T) {
	part := mesh("part")
	root := scenegraph.NewGroup("root").Add(part)
	app := NewApplier(newTrackingDevice(), WithReleaseDelay(0))

	app.Apply(root, Assignments{"part": {Material: preset("one", 0.1)}}, false)
	first := part.Mesh.Material
	app.Apply(root, Assignments{"part": {Material: preset("two", 0.2)}}, false)

	assert.False(t, first.Disposed())
	app.Tick()
	assert.True(t, first.Disposed())
}

func TestTeardownReleasesEverything(t *testing.T) {
	dev := newTrackingDevice()
	meshes := []*scenegraph.Node{mesh("sonoirWithGrille_2"), mesh("sonoirWithGrille_3"), mesh("body")}
	root := scenegraph.NewGroup("root").Add(meshes...)

	var seenMaterials, seenGeometries []uint64
	record := func() {
		root.TraverseMeshes(func(n *scenegraph.Node) {
			seenMaterials = append(seenMaterials, n.Mesh.Material.ID())
		})
	}
	record()
	for _, n := range meshes {
		seenGeometries = append(seenGeometries, n.Mesh.Geometry.ID())
	}

	app := NewApplier(dev, WithReleaseDelay(3))
	app.Apply(root, Assignments{"sonoirWithGrille_2": {Material: preset("a", 0.1)}}, true)
	record()
	app.Apply(root, Assignments{
		"sonoirWithGrille_2": {Material: preset("b", 0.2)},
		"sonoirWithGrille_3": {Material: preset("c", 0.3)},
	}, true)
	record()
	require.Positive(t, app.Pending())

	app.Teardown(root)

	assert.Zero(t, app.Pool().Retained())
	assert.Zero(t, app.Pending())
	assert.Empty(t, app.base)
	for _, id := range seenMaterials {
		assert.Equal(t, 1, dev.materials[id], "material %d released exactly once", id)
	}
	for _, id := range seenGeometries {
		assert.Equal(t, 1, dev.geometries[id], "geometry %d released exactly once", id)
	}
	root.TraverseMeshes(func(n *scenegraph.Node) {
		assert.Nil(t, n.Mesh.Material)
		assert.Nil(t, n.Mesh.Geometry)
	})
}

func TestApplyAfterTeardownOnNewRoot(t *testing.T) {
	dev := newTrackingDevice()
	app := NewApplier(dev)
	assign := Assignments{"part": {Material: preset("x", 0.4)}}

	old := scenegraph.NewGroup("old").Add(mesh("part"))
	app.Apply(old, assign, false)
	app.Teardown(old)

	fresh := mesh("part")
	app.Apply(scenegraph.NewGroup("new").Add(fresh), assign, false)
	assert.Equal(t, float32(0.4), fresh.Mesh.Material.Metalness)
}

func TestLowMemoryMaintenance(t *testing.T) {
	dev := newTrackingDevice()
	app := NewApplier(dev, WithLowMemory(3))

	for i := 0; i < 7; i++ {
		app.Tick()
	}
	assert.Equal(t, 2, dev.compacts)
	assert.Equal(t, 2, app.Pool().Stats().Maintenance)
}

func TestPoolMaintainDropsExternallyDisposed(t *testing.T) {
	pool := NewPool(newTrackingDevice())
	m := scenegraph.NewStandardMaterial()
	pool.TrackMaterial(m)
	require.Equal(t, 1, pool.Retained())

	m.Dispose()
	pool.Maintain()
	assert.Zero(t, pool.Retained())
}

func TestPoolReleaseIsIdempotent(t *testing.T) {
	dev := newTrackingDevice()
	pool := NewPool(dev)
	g := scenegraph.NewGeometry(nil, nil)
	pool.TrackGeometry(g)

	pool.ReleaseGeometry(g)
	pool.ReleaseGeometry(g)
	pool.Clear()

	assert.Equal(t, 1, dev.geometries[g.ID()])
	assert.Equal(t, 1, pool.Stats().Released)
}
