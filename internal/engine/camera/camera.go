// Package camera provides the preview camera and its orbit controls.
package camera

import (
	gomath "math"

	"github.com/Faultbox/sonoir/pkg/math"
)

// PerspectiveCamera is a free camera defined by a position and a look-at point.
type PerspectiveCamera struct {
	position math.Vec3
	target   math.Vec3

	FOV    float32 // vertical, degrees
	Aspect float32
	Near   float32
	Far    float32
}

// NewPerspectiveCamera creates a camera with the given vertical field of view.
func NewPerspectiveCamera(fov, aspect float32) *PerspectiveCamera {
	return &PerspectiveCamera{
		position: math.V3(0, 0, 50),
		FOV:      fov,
		Aspect:   aspect,
		Near:     0.1,
		Far:      1000,
	}
}

// Position returns the camera position in world space.
func (c *PerspectiveCamera) Position() math.Vec3 {
	return c.position
}

// SetPosition moves the camera without changing where it looks.
func (c *PerspectiveCamera) SetPosition(p math.Vec3) {
	c.position = p
}

// LookAt points the camera at target.
func (c *PerspectiveCamera) LookAt(target math.Vec3) {
	c.target = target
}

// Target returns the point the camera looks at.
func (c *PerspectiveCamera) Target() math.Vec3 {
	return c.target
}

// ViewMatrix returns the view matrix for this camera.
func (c *PerspectiveCamera) ViewMatrix() math.Mat4 {
	return math.LookAt(c.position, c.target, math.V3(0, 1, 0))
}

// ProjectionMatrix returns the perspective projection.
func (c *PerspectiveCamera) ProjectionMatrix() math.Mat4 {
	return math.Perspective(c.FOV*gomath.Pi/180, c.Aspect, c.Near, c.Far)
}

// OrbitControls rotates and zooms a camera around a target point from mouse
// input. Panning is not supported.
type OrbitControls struct {
	cam *PerspectiveCamera

	Target math.Vec3

	Enabled         bool
	AutoRotate      bool
	AutoRotateSpeed float32 // radians per second

	MinDistance float32
	MaxDistance float32
	MinPitch    float32
	MaxPitch    float32

	DragSensitivity float32
	ZoomSensitivity float32
	Damping         float32 // fraction of velocity lost per update, 0 disables inertia

	yawVelocity   float32
	pitchVelocity float32
}

// NewOrbitControls attaches controls to cam with default settings.
func NewOrbitControls(cam *PerspectiveCamera) *OrbitControls {
	return &OrbitControls{
		cam:             cam,
		Enabled:         true,
		AutoRotateSpeed: 0.5,
		MinDistance:     30,
		MaxDistance:     100,
		MinPitch:        -1.5,
		MaxPitch:        1.5,
		DragSensitivity: 0.005,
		ZoomSensitivity: 0.1,
		Damping:         0.05,
	}
}

// SetEnabled switches user input on or off. Disabling also drops inertia.
func (o *OrbitControls) SetEnabled(enabled bool) {
	o.Enabled = enabled
	if !enabled {
		o.yawVelocity, o.pitchVelocity = 0, 0
	}
}

// SetAutoRotate toggles the idle spin.
func (o *OrbitControls) SetAutoRotate(on bool) {
	o.AutoRotate = on
}

// SetOrbitTarget changes the point the controls orbit around.
func (o *OrbitControls) SetOrbitTarget(target math.Vec3) {
	o.Target = target
}

// HandleDrag updates rotation based on mouse drag delta.
func (o *OrbitControls) HandleDrag(deltaX, deltaY float32) {
	if !o.Enabled {
		return
	}
	o.yawVelocity -= deltaX * o.DragSensitivity
	o.pitchVelocity += deltaY * o.DragSensitivity
}

// HandleZoom updates distance based on scroll wheel delta.
func (o *OrbitControls) HandleZoom(delta float32) {
	if !o.Enabled {
		return
	}
	yaw, pitch, dist := o.spherical()
	dist -= delta * dist * o.ZoomSensitivity
	o.place(yaw, pitch, dist)
}

// Update applies inertia and auto-rotation. dt is in seconds.
func (o *OrbitControls) Update(dt float32) {
	if !o.Enabled {
		return
	}
	if o.yawVelocity == 0 && o.pitchVelocity == 0 && !o.AutoRotate {
		return
	}

	yaw, pitch, dist := o.spherical()
	yaw += o.yawVelocity
	pitch += o.pitchVelocity
	if o.AutoRotate {
		yaw += o.AutoRotateSpeed * dt
	}
	o.place(yaw, pitch, dist)

	if o.Damping > 0 {
		o.yawVelocity *= 1 - o.Damping
		o.pitchVelocity *= 1 - o.Damping
		if abs(o.yawVelocity) < 1e-5 {
			o.yawVelocity = 0
		}
		if abs(o.pitchVelocity) < 1e-5 {
			o.pitchVelocity = 0
		}
	} else {
		o.yawVelocity, o.pitchVelocity = 0, 0
	}
}

// spherical returns the camera offset from Target as yaw, pitch and distance.
func (o *OrbitControls) spherical() (yaw, pitch, dist float32) {
	off := o.cam.Position().Sub(o.Target)
	dist = off.Length()
	if dist == 0 {
		return 0, 0, 0
	}
	yaw = float32(gomath.Atan2(float64(off.X), float64(off.Z)))
	pitch = float32(gomath.Asin(float64(off.Y / dist)))
	return yaw, pitch, dist
}

// place writes the clamped spherical coordinates back to the camera.
func (o *OrbitControls) place(yaw, pitch, dist float32) {
	if pitch < o.MinPitch {
		pitch = o.MinPitch
	}
	if pitch > o.MaxPitch {
		pitch = o.MaxPitch
	}
	if dist < o.MinDistance {
		dist = o.MinDistance
	}
	if dist > o.MaxDistance {
		dist = o.MaxDistance
	}

	x := dist * float32(gomath.Cos(float64(pitch))*gomath.Sin(float64(yaw)))
	y := dist * float32(gomath.Sin(float64(pitch)))
	z := dist * float32(gomath.Cos(float64(pitch))*gomath.Cos(float64(yaw)))

	o.cam.SetPosition(o.Target.Add(math.V3(x, y, z)))
	o.cam.LookAt(o.Target)
}

func abs(f float32) float32 {
	if f < 0 {
		return -f
	}
	return f
}
