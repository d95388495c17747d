package configurator

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/sonoir/internal/logger"
	"github.com/Faultbox/sonoir/internal/share"
	"github.com/Faultbox/sonoir/internal/viewer/surface"
	"github.com/Faultbox/sonoir/pkg/math"
)

var (
	// ErrUnknownMaterial is returned when a step does not offer the finish.
	ErrUnknownMaterial = errors.New("material not offered by step")

	// ErrUnknownColor is returned when the chosen finish does not come in the color.
	ErrUnknownColor = errors.New("color not offered by material")

	// ErrStepCount is returned when restored selections do not match the steps.
	ErrStepCount = errors.New("selection count does not match steps")
)

// Session is one user's walk through the wizard.
type Session struct {
	catalog    Catalog
	step       int
	selections []share.Selection

	// assignments is rebuilt only after a change so repeated frames hand the
	// applier the same materials.
	assignments surface.Assignments
	dirty       bool
	log         *zap.Logger
}

// NewSession starts at the first step with nothing selected.
func NewSession(c Catalog) *Session {
	return &Session{
		catalog:    c,
		selections: make([]share.Selection, len(c.Steps)),
		dirty:      true,
		log:        logger.Named("configurator"),
	}
}

// Catalog returns the catalog the session draws from.
func (s *Session) Catalog() Catalog {
	return s.catalog
}

// Step returns the index of the current step.
func (s *Session) Step() int {
	return s.step
}

// Current returns the current step.
func (s *Session) Current() Step {
	return s.catalog.Steps[s.step]
}

// Total returns the number of steps.
func (s *Session) Total() int {
	return len(s.catalog.Steps)
}

// Next advances one step. It reports false on the last step.
func (s *Session) Next() bool {
	if s.step >= len(s.catalog.Steps)-1 {
		return false
	}
	s.step++
	s.dirty = true
	return true
}

// Prev goes back one step. It reports false on the first step.
func (s *Session) Prev() bool {
	if s.step == 0 {
		return false
	}
	s.step--
	s.dirty = true
	return true
}

// GoToPart jumps to the step editing the named part. It reports false when
// no step edits it or it is already current.
func (s *Session) GoToPart(part string) bool {
	for i, step := range s.catalog.Steps {
		if step.PartName == part {
			if i == s.step {
				return false
			}
			s.step = i
			s.dirty = true
			return true
		}
	}
	return false
}

// Selection returns the choice made for the current step.
func (s *Session) Selection() share.Selection {
	return s.selections[s.step]
}

// SelectMaterial picks a finish for the current step and clears its color.
func (s *Session) SelectMaterial(name string) error {
	step := s.Current()
	if _, ok := step.Option(name); !ok {
		return fmt.Errorf("%s: %q: %w", step.Title, name, ErrUnknownMaterial)
	}
	s.selections[s.step] = share.Selection{Option: name}
	s.dirty = true
	s.log.Debug("material selected", zap.String("part", step.PartName), zap.String("material", name))
	return nil
}

// SelectColor picks a color for the current step's finish.
func (s *Session) SelectColor(token string) error {
	step := s.Current()
	sel := s.selections[s.step]
	opt, ok := step.Option(sel.Option)
	if !ok || !contains(opt.Colors, token) {
		return fmt.Errorf("%s: %q: %w", step.Title, token, ErrUnknownColor)
	}
	s.selections[s.step].Color = token
	s.dirty = true
	s.log.Debug("color selected", zap.String("part", step.PartName), zap.String("color", token))
	return nil
}

// Colors returns the colors available for the current step's finish.
func (s *Session) Colors() []string {
	opt, _ := s.Current().Option(s.Selection().Option)
	return opt.Colors
}

// Progress returns how far through the wizard the user is, in percent.
func (s *Session) Progress() float64 {
	return float64(s.step+1) / float64(len(s.catalog.Steps)) * 100
}

// CameraTarget returns the camera position framing the current step.
func (s *Session) CameraTarget() math.Vec3 {
	return s.catalog.Angle(s.step)
}

// Selections returns a copy of every step's choice.
func (s *Session) Selections() []share.Selection {
	return append([]share.Selection(nil), s.selections...)
}

// Restore replaces all choices, validating them against the catalog. The
// session is left untouched on error.
func (s *Session) Restore(selections []share.Selection) error {
	if len(selections) != len(s.catalog.Steps) {
		return fmt.Errorf("got %d, want %d: %w", len(selections), len(s.catalog.Steps), ErrStepCount)
	}
	for i, sel := range selections {
		step := s.catalog.Steps[i]
		if sel.Option == "" {
			if sel.Color != "" {
				return fmt.Errorf("%s: color without material: %w", step.Title, ErrUnknownColor)
			}
			continue
		}
		opt, ok := step.Option(sel.Option)
		if !ok {
			return fmt.Errorf("%s: %q: %w", step.Title, sel.Option, ErrUnknownMaterial)
		}
		if sel.Color != "" && !contains(opt.Colors, sel.Color) {
			return fmt.Errorf("%s: %q: %w", step.Title, sel.Color, ErrUnknownColor)
		}
	}
	copy(s.selections, selections)
	s.dirty = true
	return nil
}

// RestoreCode restores from a share code or from a link carrying one, and
// returns the bare code. The session is left untouched on error.
func (s *Session) RestoreCode(codec *share.Codec, raw string) (string, error) {
	code := raw
	if c, err := share.FromURL(raw); err == nil {
		code = c
	}
	selections, err := codec.Decode(code)
	if err != nil {
		return code, err
	}
	return code, s.Restore(selections)
}

// Assignments returns the part materials to show: every chosen finish, plus
// the highlight on the current part when it has no finish yet.
func (s *Session) Assignments() surface.Assignments {
	if !s.dirty {
		return s.assignments
	}

	a := make(surface.Assignments, len(s.catalog.Steps))
	for i, step := range s.catalog.Steps {
		sel := s.selections[i]
		if sel.Option == "" {
			continue
		}
		a[step.PartName] = surface.Selection{
			Material: s.catalog.Material(sel.Option, sel.Color),
			Color:    sel.Color,
			PartName: step.PartName,
		}
	}
	if cur := s.Current(); s.selections[s.step].Option == "" {
		a[cur.PartName] = surface.Selection{Material: Highlight(), PartName: cur.PartName}
	}

	s.assignments = a
	s.dirty = false
	return a
}

func contains(values []string, v string) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}
