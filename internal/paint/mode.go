package paint

import (
	"github.com/Faultbox/terrapaint/internal/brush"
	"github.com/Faultbox/terrapaint/internal/canvas"
)

// Mode is an editing mode. Exactly one mode is active at a time and only
// the channels it owns are paintable.
type Mode int

const (
	ModeHeight Mode = iota
	ModeTexture
	ModeVegetation
	ModeObject
	ModeWalk
)

func (m Mode) String() string {
	switch m {
	case ModeHeight:
		return "height"
	case ModeTexture:
		return "texture"
	case ModeVegetation:
		return "vegetation"
	case ModeObject:
		return "object"
	case ModeWalk:
		return "walk"
	}
	return "unknown"
}

// Strength defaults applied when entering a mode or height sub-mode.
const (
	defaultSculptStrength = 0.05
	defaultLevelStrength  = 0.25
	defaultFullStrength   = 1.0
)

// modeState describes one state of the mode machine.
type modeState struct {
	channels []canvas.Channel
	enter    func(e *Engine)
}

var modes = map[Mode]modeState{
	ModeHeight: {
		channels: []canvas.Channel{canvas.Height},
		enter: func(e *Engine) {
			e.applyHeightDefaults(e.brushes[canvas.Height].HeightMode)
		},
	},
	ModeTexture: {
		// The weight pair is one logical channel: both canvases share the
		// transform and are written by the same paint event.
		channels: []canvas.Channel{canvas.TextureWeight, canvas.TextureWeight2},
		enter:    func(e *Engine) { e.transform.SetStrength(defaultFullStrength, e.cfg.Limits) },
	},
	ModeVegetation: {
		channels: []canvas.Channel{canvas.Vegetation},
		enter:    func(e *Engine) { e.transform.SetStrength(defaultFullStrength, e.cfg.Limits) },
	},
	ModeObject: {
		enter: func(*Engine) {},
	},
	ModeWalk: {
		channels: []canvas.Channel{canvas.Walkability},
		enter:    func(e *Engine) { e.transform.SetStrength(defaultFullStrength, e.cfg.Limits) },
	},
}

// ModeOf returns the mode that owns ch.
func ModeOf(ch canvas.Channel) Mode {
	switch ch {
	case canvas.Height:
		return ModeHeight
	case canvas.TextureWeight, canvas.TextureWeight2:
		return ModeTexture
	case canvas.Vegetation:
		return ModeVegetation
	default:
		return ModeWalk
	}
}

func heightDefaultStrength(m brush.HeightMode) float32 {
	switch m {
	case brush.Level:
		return defaultLevelStrength
	case brush.Blur:
		return defaultFullStrength
	default:
		return defaultSculptStrength
	}
}

// Texture slot colours: six slots one-hot across the two weight canvases.
var textureSlots = [6][2]canvas.RGBA{
	{{R: 1, A: 1}, {A: 1}},
	{{G: 1, A: 1}, {A: 1}},
	{{B: 1, A: 1}, {A: 1}},
	{{A: 1}, {R: 1, A: 1}},
	{{A: 1}, {G: 1, A: 1}},
	{{A: 1}, {B: 1, A: 1}},
}

// Vegetation slot colours; the slot after the last one removes vegetation.
var vegetationSlots = [3]canvas.RGBA{
	{R: 1, A: 1},
	{G: 1, A: 1},
	{B: 1, A: 1},
}

// NumTextureSlots and NumVegetationSlots bound the slot setters.
const (
	NumTextureSlots    = len(textureSlots)
	NumVegetationSlots = len(vegetationSlots)
)

// unwalkableColor marks blocked terrain on the walkability canvas.
var unwalkableColor = canvas.RGBA{R: 1, A: 1}
