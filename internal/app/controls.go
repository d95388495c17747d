package app

import (
	"fmt"

	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/sonoir/internal/configurator"
	"github.com/Faultbox/sonoir/internal/engine/camera"
	"github.com/Faultbox/sonoir/internal/share"
	"github.com/Faultbox/sonoir/internal/viewer/motion"
)

// Key bindings for the wizard.
const (
	keyPrev       = sdl.SCANCODE_LEFT
	keyNext       = sdl.SCANCODE_RIGHT
	keyMaterial1  = sdl.SCANCODE_1
	keyMaterial2  = sdl.SCANCODE_2
	keyColor1     = sdl.SCANCODE_Q
	keyColor2     = sdl.SCANCODE_W
	keyReset      = sdl.SCANCODE_R
	keyRestrict   = sdl.SCANCODE_G
	keyAutoRotate = sdl.SCANCODE_A
	keyShare      = sdl.SCANCODE_S
	keyCapture    = sdl.SCANCODE_P
	keyQuit       = sdl.SCANCODE_ESCAPE
)

// wizard binds keyboard input to the configurator session and drives the
// camera toward the current step's angle. It holds no GL state.
type wizard struct {
	session  *configurator.Session
	codec    *share.Codec
	baseURL  string
	motion   *motion.Controller
	orbit    *camera.OrbitControls
	restrict bool
	resets   int
	log      *zap.Logger

	// shareLink is the last link produced by keyShare.
	shareLink string
	// capture asks the render loop to save the next frame.
	capture bool
}

func newWizard(session *configurator.Session, codec *share.Codec, baseURL string, ctl *motion.Controller, orbit *camera.OrbitControls, log *zap.Logger) *wizard {
	w := &wizard{
		session:  session,
		codec:    codec,
		baseURL:  baseURL,
		motion:   ctl,
		orbit:    orbit,
		restrict: true,
		log:      log,
	}
	ctl.SetTarget(session.CameraTarget())
	return w
}

// restore loads selections from a share code. A bad code leaves defaults.
func (w *wizard) restore(code string) {
	if code == "" {
		return
	}
	code, err := w.session.RestoreCode(w.codec, code)
	if err != nil {
		w.log.Warn("ignoring share code, starting from defaults", zap.String("code", code), zap.Error(err))
		return
	}
	w.log.Info("configuration restored", zap.String("code", code))
}

// handleKey applies one key press. It reports false when the viewer should quit.
func (w *wizard) handleKey(key sdl.Scancode) bool {
	switch key {
	case keyQuit:
		return false
	case keyPrev:
		if w.session.Prev() {
			w.motion.SetTarget(w.session.CameraTarget())
		}
	case keyNext:
		if w.session.Next() {
			w.motion.SetTarget(w.session.CameraTarget())
		}
	case keyMaterial1:
		w.selectMaterial(0)
	case keyMaterial2:
		w.selectMaterial(1)
	case keyColor1:
		w.selectColor(0)
	case keyColor2:
		w.selectColor(1)
	case keyReset:
		w.resets++
		w.motion.SetResetCounter(w.resets)
	case keyRestrict:
		w.restrict = !w.restrict
	case keyAutoRotate:
		if !w.motion.Animating() {
			w.orbit.SetAutoRotate(!w.orbit.AutoRotate)
		}
	case keyShare:
		w.share()
	case keyCapture:
		w.capture = true
	}
	return true
}

// pickPart jumps to the step for a clicked part.
func (w *wizard) pickPart(name string) {
	if w.session.GoToPart(name) {
		w.motion.SetTarget(w.session.CameraTarget())
		w.log.Debug("part picked", zap.String("part", name))
	}
}

func (w *wizard) selectMaterial(i int) {
	mats := w.session.Current().Materials
	if i >= len(mats) {
		return
	}
	if err := w.session.SelectMaterial(mats[i].Name); err != nil {
		w.log.Warn("select material", zap.Error(err))
	}
}

func (w *wizard) selectColor(i int) {
	colors := w.session.Colors()
	if i >= len(colors) {
		return
	}
	if err := w.session.SelectColor(colors[i]); err != nil {
		w.log.Warn("select color", zap.Error(err))
	}
}

// code returns the share code of the current selections, or "" on error.
func (w *wizard) code() string {
	code, err := w.codec.Encode(w.session.Selections())
	if err != nil {
		w.log.Error("encode configuration", zap.Error(err))
		return ""
	}
	return code
}

func (w *wizard) share() {
	code := w.code()
	if code == "" {
		return
	}
	link, err := share.Link(w.baseURL, code)
	if err != nil {
		w.log.Error("build share link", zap.Error(err))
		return
	}
	w.shareLink = link
	w.log.Info("share link", zap.String("link", link), zap.String("code", code))
}

// title describes the wizard state for the window title bar.
func (w *wizard) title(cam [3]float32) string {
	step := w.session.Current()
	sel := w.session.Selection()
	choice := "-"
	if sel.Option != "" {
		choice = sel.Option
		if sel.Color != "" {
			choice += " " + sel.Color
		}
	}
	return fmt.Sprintf("sonoir | %s (%d/%d) %s | camera [%.2f, %.2f, %.2f]",
		step.Title, w.session.Step()+1, w.session.Total(), choice, cam[0], cam[1], cam[2])
}
