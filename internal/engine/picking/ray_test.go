package picking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/sonoir/internal/engine/scenegraph"
	"github.com/Faultbox/sonoir/internal/engine/shapes"
	"github.com/Faultbox/sonoir/pkg/math"
)

func TestIntersectAABB(t *testing.T) {
	box := AABB{Min: math.V3(-1, -1, -1), Max: math.V3(1, 1, 1)}

	tHit, hit := Ray{Origin: math.V3(0, 0, 10), Direction: math.V3(0, 0, -1)}.IntersectAABB(box)
	require.True(t, hit)
	assert.InDelta(t, 9, tHit, 1e-5)

	_, hit = Ray{Origin: math.V3(5, 0, 10), Direction: math.V3(0, 0, -1)}.IntersectAABB(box)
	assert.False(t, hit)

	_, hit = Ray{Origin: math.V3(0, 0, 10), Direction: math.V3(0, 0, 1)}.IntersectAABB(box)
	assert.False(t, hit, "box behind the ray")

	tHit, hit = Ray{Origin: math.Origin, Direction: math.V3(1, 0, 0)}.IntersectAABB(box)
	require.True(t, hit)
	assert.InDelta(t, 1, tHit, 1e-5, "inside returns exit distance")
}

func TestScreenToRayCenter(t *testing.T) {
	eye := math.V3(0, 0, 50)
	view := math.LookAt(eye, math.Origin, math.V3(0, 1, 0))
	proj := math.Perspective(0.8, 1, 0.1, 1000)

	r, ok := ScreenToRay(400, 300, 800, 600, proj.Mul(view))
	require.True(t, ok)
	assert.InDelta(t, 0, r.Origin.X, 1e-3)
	assert.InDelta(t, 0, r.Origin.Y, 1e-3)
	assert.InDelta(t, -1, r.Direction.Z, 1e-4)

	_, ok = ScreenToRay(0, 0, 800, 600, math.Mat4{})
	assert.False(t, ok)
}

func TestPickNearest(t *testing.T) {
	root := scenegraph.NewGroup("root")
	front := scenegraph.NewMeshNode("front", shapes.Box(2, 2, 2), scenegraph.NewStandardMaterial())
	front.Local = math.Translate(math.V3(0, 0, 5))
	back := scenegraph.NewMeshNode("back", shapes.Box(2, 2, 2), scenegraph.NewStandardMaterial())
	hidden := scenegraph.NewMeshNode("hidden", shapes.Box(2, 2, 2), scenegraph.NewStandardMaterial())
	hidden.Local = math.Translate(math.V3(0, 0, 8))
	hidden.Visible = false
	root.Add(front, back, hidden)

	r := Ray{Origin: math.V3(0, 0, 20), Direction: math.V3(0, 0, -1)}
	assert.Same(t, front, Pick(root, r))

	front.Visible = false
	assert.Same(t, back, Pick(root, r))

	assert.Nil(t, Pick(root, Ray{Origin: math.V3(50, 0, 20), Direction: math.V3(0, 0, -1)}))
}

func TestPickSpeakerPart(t *testing.T) {
	root := shapes.Speaker()
	// Straight down onto the top panel.
	r := Ray{Origin: math.V3(0, 100, 0), Direction: math.V3(0, -1, 0)}
	n := Pick(root, r)
	require.NotNil(t, n)
	assert.Equal(t, shapes.SpeakerPartName(12), n.Name)
}
