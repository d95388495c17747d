// Package motion moves the preview camera between configurator viewpoints.
//
// The Controller eases the camera from wherever it currently is toward the
// latest requested target, always looking at the origin. A new target replaces
// an animation in flight, starting from the live position so there is no jump.
// Everything runs on the render goroutine; Tick is called once per frame.
package motion

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/sonoir/internal/logger"
	"github.com/Faultbox/sonoir/pkg/math"
)

const (
	// DefaultDuration is the length of every camera transition.
	DefaultDuration = time.Second
	// DefaultEpsilon is how close the camera must be to the target to finish.
	DefaultEpsilon float32 = 1e-3
	// ReportDecimals is the precision of reported positions.
	ReportDecimals = 2
)

// Camera is the live camera owned by the renderer.
type Camera interface {
	Position() math.Vec3
	SetPosition(p math.Vec3)
	LookAt(target math.Vec3)
}

// Enableable is implemented by user input controls that can be switched off.
type Enableable interface {
	SetEnabled(enabled bool)
}

// AutoRotator is implemented by controls that can spin the camera on their own.
type AutoRotator interface {
	SetAutoRotate(on bool)
}

// Retargetable is implemented by controls that orbit around a point.
type Retargetable interface {
	SetOrbitTarget(target math.Vec3)
}

// Reporter receives the rounded live camera position every frame.
type Reporter func(pos math.Vec3)

// State is the controller state.
type State int

const (
	Idle State = iota
	Animating
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Animating:
		return "animating"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// EaseOutCubic starts fast and settles gently: 1 - (1-t)^3.
func EaseOutCubic(t float32) float32 {
	u := 1 - t
	return 1 - u*u*u
}

type animation struct {
	from   math.Vec3
	to     math.Vec3
	start  time.Time
	active bool
}

// Controller drives a Camera toward requested targets.
type Controller struct {
	cam Camera

	enabler  Enableable
	rotator  AutoRotator
	retarget Retargetable

	duration time.Duration
	epsilon  float32
	now      func() time.Time
	report   Reporter
	log      *zap.Logger

	initialized bool
	target      math.Vec3
	resets      int
	anim        animation
}

// Option configures a Controller.
type Option func(*Controller)

// WithDuration sets the transition length.
func WithDuration(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.duration = d
		}
	}
}

// WithEpsilon sets the arrival tolerance.
func WithEpsilon(eps float32) Option {
	return func(c *Controller) {
		if eps > 0 {
			c.epsilon = eps
		}
	}
}

// WithEnabler switches e off for the duration of every transition.
func WithEnabler(e Enableable) Option {
	return func(c *Controller) { c.enabler = e }
}

// WithAutoRotator stops r from spinning when a transition starts.
func WithAutoRotator(r AutoRotator) Option {
	return func(c *Controller) { c.rotator = r }
}

// WithRetargeter recenters r on the origin when a transition starts.
func WithRetargeter(r Retargetable) Option {
	return func(c *Controller) { c.retarget = r }
}

// Controls is a full orbit control set.
type Controls interface {
	Enableable
	AutoRotator
	Retargetable
}

// WithControls attaches every capability of ctl.
func WithControls(ctl Controls) Option {
	return func(c *Controller) {
		c.enabler = ctl
		c.rotator = ctl
		c.retarget = ctl
	}
}

// WithReporter sets the per-frame position callback.
func WithReporter(r Reporter) Option {
	return func(c *Controller) { c.report = r }
}

// WithClock replaces time.Now, for tests and recorded playback.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Controller) { c.log = l }
}

// New creates a controller for cam. The first SetTarget call places the
// camera without animating.
func New(cam Camera, opts ...Option) *Controller {
	c := &Controller{
		cam:      cam,
		duration: DefaultDuration,
		epsilon:  DefaultEpsilon,
		now:      time.Now,
		log:      logger.Log,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.Named("motion")
	return c
}

// State reports whether an animation is in flight.
func (c *Controller) State() State {
	if c.anim.active {
		return Animating
	}
	return Idle
}

// Animating is shorthand for State() == Animating.
func (c *Controller) Animating() bool {
	return c.anim.active
}

// Target returns the last applied target.
func (c *Controller) Target() math.Vec3 {
	return c.target
}

// Duration returns the transition length.
func (c *Controller) Duration() time.Duration {
	return c.duration
}

// SetTarget requests a new camera position. Requests equal to the current
// target are ignored; use Reset to replay the transition.
func (c *Controller) SetTarget(pos math.Vec3) {
	if !pos.IsFinite() {
		c.log.Warn("ignoring non-finite camera target",
			zap.Float32("x", pos.X), zap.Float32("y", pos.Y), zap.Float32("z", pos.Z))
		return
	}
	if !c.initialized {
		c.initialized = true
		c.target = pos
		c.cam.SetPosition(pos)
		c.cam.LookAt(math.Origin)
		c.log.Debug("camera placed", zap.Any("position", pos))
		return
	}
	if pos == c.target {
		return
	}
	c.begin(pos)
}

// Reset replays the transition toward the current target from the live
// position, even when the target has not changed.
func (c *Controller) Reset() {
	if !c.initialized {
		return
	}
	c.begin(c.target)
}

// SetResetCounter triggers Reset whenever n differs from the last value seen.
func (c *Controller) SetResetCounter(n int) {
	if n == c.resets {
		return
	}
	c.resets = n
	c.Reset()
}

func (c *Controller) begin(to math.Vec3) {
	from := c.cam.Position()
	interrupted := c.anim.active

	c.target = to
	c.anim = animation{from: from, to: to, start: c.now(), active: true}

	if c.enabler != nil {
		c.enabler.SetEnabled(false)
	}
	if c.rotator != nil {
		c.rotator.SetAutoRotate(false)
	}
	if c.retarget != nil {
		c.retarget.SetOrbitTarget(math.Origin)
	}

	c.log.Debug("camera transition started",
		zap.Any("from", from),
		zap.Any("to", to),
		zap.Bool("interrupted", interrupted),
	)
}

// Tick advances the animation and reports the live position, rounded to
// ReportDecimals places. It returns the reported value.
func (c *Controller) Tick() math.Vec3 {
	if c.anim.active {
		c.step()
	}

	live := c.cam.Position().Round(ReportDecimals)
	if c.report != nil {
		c.report(live)
	}
	return live
}

func (c *Controller) step() {
	elapsed := c.now().Sub(c.anim.start)
	progress := float32(elapsed) / float32(c.duration)
	if progress < 0 {
		progress = 0
	}
	if progress > 1 {
		progress = 1
	}

	c.cam.SetPosition(math.Lerp(c.anim.from, c.anim.to, EaseOutCubic(progress)))
	c.cam.LookAt(math.Origin)

	if progress < 1 {
		return
	}
	if c.cam.Position().Distance(c.anim.to) >= c.epsilon {
		c.cam.SetPosition(c.anim.to)
		c.cam.LookAt(math.Origin)
	}
	if c.cam.Position().Distance(c.anim.to) < c.epsilon {
		c.finish()
	}
}

func (c *Controller) finish() {
	c.anim.active = false
	if c.enabler != nil {
		c.enabler.SetEnabled(true)
	}
	c.log.Debug("camera transition finished", zap.Any("position", c.anim.to))
}
