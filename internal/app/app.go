// Package app runs the preview: the window, the render loop and the wizard.
package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/sonoir/internal/config"
	"github.com/Faultbox/sonoir/internal/configurator"
	"github.com/Faultbox/sonoir/internal/engine/camera"
	"github.com/Faultbox/sonoir/internal/engine/capture"
	"github.com/Faultbox/sonoir/internal/engine/input"
	"github.com/Faultbox/sonoir/internal/engine/lighting"
	"github.com/Faultbox/sonoir/internal/engine/picking"
	"github.com/Faultbox/sonoir/internal/engine/renderer"
	"github.com/Faultbox/sonoir/internal/engine/scenegraph"
	"github.com/Faultbox/sonoir/internal/engine/shapes"
	"github.com/Faultbox/sonoir/internal/engine/window"
	"github.com/Faultbox/sonoir/internal/logger"
	"github.com/Faultbox/sonoir/internal/preview"
	"github.com/Faultbox/sonoir/internal/viewer/motion"
	"github.com/Faultbox/sonoir/internal/viewer/surface"
	"github.com/Faultbox/sonoir/pkg/math"
)

// App is the running viewer.
type App struct {
	cfg     *config.Config
	running bool
	log     *zap.Logger

	window   *window.Window
	renderer *renderer.Renderer
	input    *input.Input

	cam     *camera.PerspectiveCamera
	orbit   *camera.OrbitControls
	motion  *motion.Controller
	applier *surface.Applier
	wizard  *wizard

	model *scenegraph.Node
	env   lighting.Environment

	hub        *preview.Hub
	stopServer context.CancelFunc
	shots      *capture.Screenshots

	live math.Vec3
}

// New opens the window and builds the scene.
func New(cfg *config.Config) (*App, error) {
	a := &App{
		cfg: cfg,
		log: logger.Named("app"),
	}
	a.log.Info("initializing viewer",
		zap.Int("width", cfg.Window.Width),
		zap.Int("height", cfg.Window.Height),
	)

	var err error
	a.window, err = window.New(window.Config{
		Title:      "sonoir",
		Width:      cfg.Window.Width,
		Height:     cfg.Window.Height,
		Fullscreen: cfg.Window.Fullscreen,
		VSync:      cfg.Window.VSync,
		Samples:    4,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	// The renderer needs the GL context the window just created.
	a.renderer, err = renderer.New(renderer.Config{
		Width:  cfg.Window.Width,
		Height: cfg.Window.Height,
	})
	if err != nil {
		a.window.Close()
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}

	a.input = input.New()
	a.shots = capture.NewScreenshots(cfg.Capture.Dir, "sonoir")
	a.env = lighting.Load(cfg.Environment.Path)
	a.model = shapes.Speaker()

	a.cam = camera.NewPerspectiveCamera(cfg.Window.FOV, a.window.Aspect())
	a.orbit = camera.NewOrbitControls(a.cam)
	a.orbit.MinDistance = cfg.Camera.MinDistance
	a.orbit.MaxDistance = cfg.Camera.MaxDistance
	a.orbit.DragSensitivity = cfg.Camera.DragSensitivity
	a.orbit.ZoomSensitivity = cfg.Camera.ZoomSensitivity
	a.orbit.Damping = cfg.Camera.Damping

	a.motion = motion.New(a.cam,
		motion.WithDuration(cfg.Camera.Transition),
		motion.WithEpsilon(cfg.Camera.Epsilon),
		motion.WithControls(a.orbit),
		motion.WithReporter(func(p math.Vec3) { a.live = p }),
	)

	opts := []surface.Option{surface.WithReleaseDelay(cfg.Resources.ReleaseDelayFrames)}
	if cfg.Resources.LowMemory {
		opts = append(opts, surface.WithLowMemory(cfg.Resources.MaintenanceInterval))
	}
	a.applier = surface.NewApplier(a.renderer, opts...)

	catalog := configurator.DefaultCatalog()
	codec, err := catalog.Codec()
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to build share codec: %w", err)
	}
	a.wizard = newWizard(configurator.NewSession(catalog), codec, cfg.Share.BaseURL, a.motion, a.orbit, a.log)
	a.wizard.restore(cfg.Share.StartCode())

	if cfg.Preview.Listen != "" {
		a.hub = preview.NewHub()
		ctx, cancel := context.WithCancel(context.Background())
		a.stopServer = cancel
		go func() {
			if err := a.hub.ListenAndServe(ctx, cfg.Preview.Listen); err != nil {
				a.log.Error("preview server", zap.Error(err))
			}
		}()
	}

	a.log.Info("viewer initialized", zap.String("environment", a.env.Source))
	return a, nil
}

// Run drives the frame loop until the window closes.
func (a *App) Run() error {
	a.running = true

	lastTime := time.Now()
	frameCount := 0
	fpsTimer := time.Now()

	var frameBudget time.Duration
	if a.cfg.Window.FPSLimit > 0 {
		frameBudget = time.Second / time.Duration(a.cfg.Window.FPSLimit)
	}

	a.log.Info("starting render loop")

	for a.running {
		frameStart := time.Now()
		dt := frameStart.Sub(lastTime).Seconds()
		lastTime = frameStart

		if a.input.Update() {
			a.running = false
			break
		}
		a.handleInput()

		a.update(float32(dt))
		a.render()
		a.window.SwapBuffers()

		// The new materials have been drawn at least once; superseded ones may go.
		a.applier.Tick()

		frameCount++
		if time.Since(fpsTimer) >= time.Second {
			a.log.Debug("fps",
				zap.Int("count", frameCount),
				zap.Int("pending_release", a.applier.Pending()),
				zap.Int("retained", a.applier.Pool().Retained()),
			)
			frameCount = 0
			fpsTimer = time.Now()
		}

		if frameBudget > 0 {
			if spare := frameBudget - time.Since(frameStart); spare > 0 {
				time.Sleep(spare)
			}
		}
	}

	return nil
}

func (a *App) handleInput() {
	if w, h, ok := a.input.Resized(); ok {
		a.renderer.Resize(w, h)
		if h > 0 {
			a.cam.Aspect = float32(w) / float32(h)
		}
	}
	for _, ev := range a.input.Events() {
		if ev.Type == input.EventKeyDown && !a.wizard.handleKey(ev.Key) {
			a.running = false
		}
	}
	if dx, dy := a.input.Drag(); dx != 0 || dy != 0 {
		a.orbit.HandleDrag(dx, dy)
	}
	if wheel := a.input.Wheel(); wheel != 0 {
		a.orbit.HandleZoom(wheel)
	}
	if x, y, ok := a.input.Clicked(); ok {
		a.pick(x, y)
	}
}

func (a *App) pick(x, y int) {
	w, h := a.window.GetSize()
	viewProj := a.cam.ProjectionMatrix().Mul(a.cam.ViewMatrix())
	ray, ok := picking.ScreenToRay(float32(x), float32(y), float32(w), float32(h), viewProj)
	if !ok {
		return
	}
	if n := picking.Pick(a.model, ray); n != nil {
		a.wizard.pickPart(n.Name)
	}
}

func (a *App) update(dt float32) {
	a.orbit.Update(dt)
	a.motion.Tick()
	a.applier.Apply(a.model, a.wizard.session.Assignments(), a.wizard.restrict)

	title := a.wizard.title(a.live.Array())
	a.window.SetTitle(title)

	if a.hub != nil {
		s := a.wizard.session
		a.hub.Publish(preview.Frame{
			Camera:   a.live.Array(),
			Part:     s.Current().PartName,
			Step:     s.Step(),
			Total:    s.Total(),
			Progress: s.Progress(),
		})
	}
}

func (a *App) render() {
	a.renderer.Begin(a.env)
	a.renderer.Draw(a.model, a.cam, a.env)

	if a.wizard.capture {
		a.wizard.capture = false
		pixels, w, h := a.renderer.ReadPixels()
		name, err := a.shots.Save(pixels, w, h, a.wizard.code())
		if err != nil {
			a.log.Error("screenshot failed", zap.Error(err))
			return
		}
		a.log.Info("screenshot saved", zap.String("file", name))
	}
}

// Code returns the share code of the current configuration, or "" when it
// cannot be encoded.
func (a *App) Code() string {
	return a.wizard.code()
}

// Close releases the scene and shuts everything down.
func (a *App) Close() {
	a.log.Info("closing viewer")

	if a.stopServer != nil {
		a.stopServer()
	}
	if a.hub != nil {
		a.hub.Close()
	}
	if a.applier != nil && a.model != nil {
		a.applier.Teardown(a.model)
		a.log.Info("scene released", zap.Any("pool", a.applier.Pool().Stats()))
	}
	if a.renderer != nil {
		a.renderer.Close()
	}
	if a.window != nil {
		a.window.Close()
	}
}
