// Package lighting builds the light setup for the preview from an optional
// environment image.
package lighting

import (
	"go.uber.org/zap"

	"github.com/Faultbox/sonoir/internal/engine/scenegraph"
	"github.com/Faultbox/sonoir/internal/engine/texture"
	"github.com/Faultbox/sonoir/internal/logger"
	"github.com/Faultbox/sonoir/pkg/math"
)

// MaxDirectionalLights is the number of directional lights the shader accepts.
const MaxDirectionalLights = 4

// DirectionalLight shines from Position toward the origin.
type DirectionalLight struct {
	Position  math.Vec3
	Color     scenegraph.Color
	Intensity float32
}

// Direction returns the normalized direction the light travels.
func (l DirectionalLight) Direction() math.Vec3 {
	return math.Origin.Sub(l.Position).Normalize()
}

// Environment is everything the renderer needs to light and clear a frame.
type Environment struct {
	Source           string // image path, or "flat"
	Ambient          scenegraph.Color
	AmbientIntensity float32
	Lights           []DirectionalLight
	Background       scenegraph.Color
}

// FlatSource marks the built-in studio lighting.
const FlatSource = "flat"

var (
	fillColor  = scenegraph.Color{0xb0 / 255.0, 0xc4 / 255.0, 0xde / 255.0}
	background = scenegraph.Color{0xcb / 255.0, 0xd5 / 255.0, 0xe1 / 255.0}
)

// Flat returns the studio setup used when no environment image is available:
// a soft ambient term, a key light from the front right and a cool fill.
func Flat() Environment {
	return Environment{
		Source:           FlatSource,
		Ambient:          scenegraph.White,
		AmbientIntensity: 0.3,
		Lights: []DirectionalLight{
			{Position: math.V3(10, 10, 5), Color: scenegraph.White, Intensity: 0.6},
			{Position: math.V3(-5, 5, -2), Color: fillColor, Intensity: 0.3},
		},
		Background: background,
	}
}

// Load derives lighting from an equirectangular image. Any failure falls back
// to Flat; rendering is never blocked on the environment.
func Load(path string) Environment {
	if path == "" {
		return Flat()
	}

	img, err := texture.Load(path)
	if err != nil {
		logger.Warn("environment unavailable, using flat lighting",
			zap.String("path", path), zap.Error(err))
		return Flat()
	}

	sky, ground := texture.Average(img)
	env := Flat()
	env.Source = path
	env.Background = sky
	env.Ambient = mix(sky, ground, 0.5)
	env.AmbientIntensity = 0.45
	env.Lights[0].Color = mix(scenegraph.White, sky, 0.5)
	env.Lights[1].Color = mix(fillColor, ground, 0.5)

	logger.Info("environment loaded",
		zap.String("path", path),
		zap.Float32s("sky", sky[:]),
		zap.Float32s("ground", ground[:]),
	)
	return env
}

func mix(a, b scenegraph.Color, t float32) scenegraph.Color {
	return scenegraph.Color{
		a[0] + (b[0]-a[0])*t,
		a[1] + (b[1]-a[1])*t,
		a[2] + (b[2]-a[2])*t,
	}
}
