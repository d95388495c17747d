package lighting

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/sonoir/pkg/math"
)

func TestFlat(t *testing.T) {
	env := Flat()
	assert.Equal(t, FlatSource, env.Source)
	assert.Equal(t, float32(0.3), env.AmbientIntensity)
	require.Len(t, env.Lights, 2)
	assert.Equal(t, math.V3(10, 10, 5), env.Lights[0].Position)
	assert.Equal(t, float32(0.6), env.Lights[0].Intensity)
	assert.LessOrEqual(t, len(env.Lights), MaxDirectionalLights)
}

func TestDirectionPointsAtOrigin(t *testing.T) {
	d := DirectionalLight{Position: math.V3(0, 10, 0)}.Direction()
	assert.Equal(t, math.V3(0, -1, 0), d)
}

func TestLoadFallsBack(t *testing.T) {
	assert.Equal(t, FlatSource, Load("").Source)
	assert.Equal(t, FlatSource, Load(filepath.Join(t.TempDir(), "missing.png")).Source)

	bad := filepath.Join(t.TempDir(), "bad.tga")
	require.NoError(t, os.WriteFile(bad, []byte{1, 2, 3}, 0644))
	assert.Equal(t, FlatSource, Load(bad).Source)
}

func TestLoadTintsFromImage(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.SetRGBA(x, y, color.RGBA{R: 255, A: 255})
		}
	}
	path := filepath.Join(t.TempDir(), "red.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())

	env := Load(path)
	assert.Equal(t, path, env.Source)
	assert.InDelta(t, 1, env.Background[0], 0.01)
	assert.InDelta(t, 0, env.Background[1], 0.01)
	assert.Greater(t, env.Ambient[0], env.Ambient[2])
}
