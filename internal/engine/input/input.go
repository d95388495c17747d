// Package input handles SDL2 input events.
package input

import (
	"github.com/veandco/go-sdl2/sdl"
)

// EventType classifies a processed event.
type EventType int

const (
	EventNone EventType = iota
	EventQuit
	EventWindowResize
	EventKeyDown
	EventKeyUp
	EventMouseMove
	EventMouseDown
	EventMouseUp
	EventMouseWheel
)

// Event represents a processed input event.
type Event struct {
	Type   EventType
	Key    sdl.Scancode
	Width  int
	Height int
	MouseX int
	MouseY int
	RelX   int
	RelY   int
	Wheel  float32
	Button uint8
}

// Input handles all input processing.
type Input struct {
	events []Event

	dragging     bool
	dragX, dragY float32
	travel       int // pointer travel since the left button went down
	wheel        float32

	clicked        bool
	clickX, clickY int
}

// clickSlop is how far the pointer may move between press and release for
// the gesture to count as a click rather than a drag.
const clickSlop = 3

// New creates a new input handler.
func New() *Input {
	return &Input{
		events: make([]Event, 0, 16),
	}
}

// Update polls SDL events for this frame.
// Returns true if the application should quit.
func (i *Input) Update() bool {
	i.Reset()
	quit := false
	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		if i.Feed(event) {
			quit = true
		}
	}
	return quit
}

// Reset clears per-frame state. Drag state survives across frames.
func (i *Input) Reset() {
	i.events = i.events[:0]
	i.dragX, i.dragY = 0, 0
	i.wheel = 0
	i.clicked = false
}

// Feed processes one SDL event. It reports whether the event asks to quit.
func (i *Input) Feed(event sdl.Event) bool {
	ev, ok := translate(event)
	if !ok {
		return false
	}
	i.events = append(i.events, ev)

	switch ev.Type {
	case EventQuit:
		return true
	case EventMouseDown:
		if ev.Button == sdl.BUTTON_LEFT {
			i.dragging = true
			i.travel = 0
		}
	case EventMouseUp:
		if ev.Button == sdl.BUTTON_LEFT {
			if i.dragging && i.travel <= clickSlop {
				i.clicked = true
				i.clickX, i.clickY = ev.MouseX, ev.MouseY
			}
			i.dragging = false
		}
	case EventMouseMove:
		if i.dragging {
			i.dragX += float32(ev.RelX)
			i.dragY += float32(ev.RelY)
			i.travel += absInt(ev.RelX) + absInt(ev.RelY)
		}
	case EventMouseWheel:
		i.wheel += ev.Wheel
	}
	return false
}

func translate(event sdl.Event) (Event, bool) {
	switch e := event.(type) {
	case *sdl.QuitEvent:
		return Event{Type: EventQuit}, true

	case *sdl.WindowEvent:
		if e.Event == sdl.WINDOWEVENT_RESIZED || e.Event == sdl.WINDOWEVENT_SIZE_CHANGED {
			return Event{Type: EventWindowResize, Width: int(e.Data1), Height: int(e.Data2)}, true
		}

	case *sdl.KeyboardEvent:
		switch e.Type {
		case sdl.KEYDOWN:
			return Event{Type: EventKeyDown, Key: e.Keysym.Scancode}, true
		case sdl.KEYUP:
			return Event{Type: EventKeyUp, Key: e.Keysym.Scancode}, true
		}

	case *sdl.MouseMotionEvent:
		return Event{
			Type:   EventMouseMove,
			MouseX: int(e.X),
			MouseY: int(e.Y),
			RelX:   int(e.XRel),
			RelY:   int(e.YRel),
		}, true

	case *sdl.MouseButtonEvent:
		t := EventMouseDown
		if e.Type == sdl.MOUSEBUTTONUP {
			t = EventMouseUp
		}
		return Event{Type: t, MouseX: int(e.X), MouseY: int(e.Y), Button: e.Button}, true

	case *sdl.MouseWheelEvent:
		y := float32(e.Y)
		if e.Direction == sdl.MOUSEWHEEL_FLIPPED {
			y = -y
		}
		return Event{Type: EventMouseWheel, Wheel: y}, true
	}
	return Event{}, false
}

// Events returns the events from the last Update.
func (i *Input) Events() []Event {
	return i.events
}

// IsKeyPressed checks if a specific key was pressed this frame.
func (i *Input) IsKeyPressed(scancode sdl.Scancode) bool {
	for _, e := range i.events {
		if e.Type == EventKeyDown && e.Key == scancode {
			return true
		}
	}
	return false
}

// Drag returns the pointer movement while the left button was held this frame.
func (i *Input) Drag() (dx, dy float32) {
	return i.dragX, i.dragY
}

// Wheel returns the accumulated scroll this frame; positive scrolls away from the user.
func (i *Input) Wheel() float32 {
	return i.wheel
}

// Clicked returns where the left button was clicked this frame, if it was.
func (i *Input) Clicked() (x, y int, ok bool) {
	return i.clickX, i.clickY, i.clicked
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// Resized returns the last window size reported this frame.
func (i *Input) Resized() (width, height int, ok bool) {
	for _, e := range i.events {
		if e.Type == EventWindowResize {
			width, height, ok = e.Width, e.Height, true
		}
	}
	return width, height, ok
}
