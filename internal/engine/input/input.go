// Package input turns SDL2 events into held editor actions and one-shot
// commands.
package input

import (
	"github.com/veandco/go-sdl2/sdl"
)

// Action is a bindable editor input.
type Action int

const (
	ActionRotateLeft Action = iota
	ActionRotateRight
	ActionScaleUp
	ActionScaleDown
	ActionAlphaUp
	ActionAlphaDown
	ActionModeHeight
	ActionModeTexture
	ActionModeVegetation
	ActionModeObject
	ActionModeWalk
	ActionNextStamp
	ActionPrevStamp
	ActionHeightMode // cycle up/down/level/blur
	ActionErase      // toggle paint/erase on binary channels
	ActionSample     // pick level target under the brush
	ActionAxisHeading
	ActionAxisPitch
	ActionAxisRoll
	ActionSave
	ActionQuit
	numActions
)

// Bindings maps actions to keys.
type Bindings [numActions]sdl.Scancode

// DefaultBindings returns the standard key layout.
func DefaultBindings() Bindings {
	var b Bindings
	b[ActionRotateLeft] = sdl.SCANCODE_Q
	b[ActionRotateRight] = sdl.SCANCODE_E
	b[ActionScaleUp] = sdl.SCANCODE_W
	b[ActionScaleDown] = sdl.SCANCODE_S
	b[ActionAlphaUp] = sdl.SCANCODE_D
	b[ActionAlphaDown] = sdl.SCANCODE_A
	b[ActionModeHeight] = sdl.SCANCODE_F1
	b[ActionModeTexture] = sdl.SCANCODE_F2
	b[ActionModeVegetation] = sdl.SCANCODE_F3
	b[ActionModeObject] = sdl.SCANCODE_F4
	b[ActionModeWalk] = sdl.SCANCODE_F5
	b[ActionNextStamp] = sdl.SCANCODE_TAB
	b[ActionPrevStamp] = sdl.SCANCODE_GRAVE
	b[ActionHeightMode] = sdl.SCANCODE_M
	b[ActionErase] = sdl.SCANCODE_X
	b[ActionSample] = sdl.SCANCODE_C
	b[ActionAxisHeading] = sdl.SCANCODE_H
	b[ActionAxisPitch] = sdl.SCANCODE_P
	b[ActionAxisRoll] = sdl.SCANCODE_R
	b[ActionSave] = sdl.SCANCODE_F9
	b[ActionQuit] = sdl.SCANCODE_ESCAPE
	return b
}

// Input accumulates SDL state between frames.
type Input struct {
	bindings Bindings
	held     map[sdl.Scancode]bool
	pressed  map[sdl.Scancode]bool

	MouseX, MouseY int
	LeftHeld       bool
	RightClicked   bool
	Resized        bool
	Width, Height  int
}

// New creates an input handler with the given bindings.
func New(b Bindings) *Input {
	return &Input{
		bindings: b,
		held:     make(map[sdl.Scancode]bool),
		pressed:  make(map[sdl.Scancode]bool),
	}
}

// Update drains pending SDL events. It returns true when the window was
// closed or the quit key pressed.
func (i *Input) Update() bool {
	clear(i.pressed)
	i.RightClicked = false
	i.Resized = false

	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		switch e := event.(type) {
		case *sdl.QuitEvent:
			return true

		case *sdl.WindowEvent:
			if e.Event == sdl.WINDOWEVENT_RESIZED {
				i.Resized = true
				i.Width, i.Height = int(e.Data1), int(e.Data2)
			}

		case *sdl.KeyboardEvent:
			sc := e.Keysym.Scancode
			switch {
			case e.Type == sdl.KEYDOWN && e.Repeat == 0:
				i.held[sc] = true
				i.pressed[sc] = true
			case e.Type == sdl.KEYUP:
				i.held[sc] = false
			}

		case *sdl.MouseMotionEvent:
			i.MouseX, i.MouseY = int(e.X), int(e.Y)

		case *sdl.MouseButtonEvent:
			i.MouseX, i.MouseY = int(e.X), int(e.Y)
			down := e.Type == sdl.MOUSEBUTTONDOWN
			switch e.Button {
			case sdl.BUTTON_LEFT:
				i.LeftHeld = down
			case sdl.BUTTON_RIGHT:
				if down {
					i.RightClicked = true
				}
			}
		}
	}
	return i.Pressed(ActionQuit)
}

// Held reports whether the action's key is down.
func (i *Input) Held(a Action) bool {
	return i.held[i.bindings[a]]
}

// Pressed reports whether the action's key went down during the last
// Update.
func (i *Input) Pressed(a Action) bool {
	return i.pressed[i.bindings[a]]
}

// SlotPressed returns the 0-based slot for a number key pressed during
// the last Update.
func (i *Input) SlotPressed() (int, bool) {
	for n := 0; n < 9; n++ {
		if i.pressed[sdl.Scancode(sdl.SCANCODE_1)+sdl.Scancode(n)] {
			return n, true
		}
	}
	return 0, false
}
