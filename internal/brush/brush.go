// Package brush holds brush parameters and the per-channel compositing rules
// that write a stamp into a canvas.
package brush

import (
	"github.com/Faultbox/terrapaint/internal/canvas"
	tmath "github.com/Faultbox/terrapaint/pkg/math"
)

// HeightMode selects how a height brush changes values.
type HeightMode int

const (
	Up HeightMode = iota
	Down
	Level
	Blur
)

func (m HeightMode) String() string {
	switch m {
	case Up:
		return "up"
	case Down:
		return "down"
	case Level:
		return "level"
	case Blur:
		return "blur"
	}
	return "unknown"
}

// BinaryMode selects between writing a tag and clearing it.
type BinaryMode int

const (
	Paint BinaryMode = iota
	Erase
)

func (m BinaryMode) String() string {
	if m == Erase {
		return "erase"
	}
	return "paint"
}

// Limits bounds the continuous brush parameters.
type Limits struct {
	SizeMin, SizeMax         float32
	StrengthMin, StrengthMax float32
}

// DefaultLimits returns the stock parameter ranges.
func DefaultLimits() Limits {
	return Limits{SizeMin: 0.5, SizeMax: 128, StrengthMin: 0, StrengthMax: 1}
}

// Transform is the placement shared by every brush: where the stamp lands,
// how large it is in world units and how it is rotated.
type Transform struct {
	Position tmath.Vec2 // world XY of the stamp centre
	Size     float32    // world-space radius
	Heading  float32    // degrees in [0, 360)
	Strength float32
}

// Brush is the per-canvas painting state.
type Brush struct {
	Channel    canvas.Channel
	Color      canvas.RGBA
	HeightMode HeightMode
	BinaryMode BinaryMode
	Stamp      *Stamp
	Visible    bool
}

// New creates a brush for a channel with the given stamp.
func New(ch canvas.Channel, stamp *Stamp) *Brush {
	return &Brush{
		Channel: ch,
		Color:   RGBAOpaqueBlack,
		Stamp:   stamp,
	}
}

// RGBAOpaqueBlack is the identity colour brushes start with.
var RGBAOpaqueBlack = canvas.RGBA{A: 1}

// SetSize clamps and stores the radius.
func (t *Transform) SetSize(size float32, l Limits) {
	t.Size = tmath.Clamp(size, l.SizeMin, l.SizeMax)
}

// SetStrength clamps and stores the strength.
func (t *Transform) SetStrength(s float32, l Limits) {
	t.Strength = tmath.Clamp(s, l.StrengthMin, l.StrengthMax)
}

// SetHeading wraps and stores the heading.
func (t *Transform) SetHeading(deg float32) {
	t.Heading = tmath.WrapDegrees(deg)
}
