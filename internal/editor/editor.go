// Package editor drives the paint engine from held input at a fixed tick
// rate: stroke bracketing, brush adjustments and object placement.
package editor

import (
	"context"
	"fmt"
	"image"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/terrapaint/internal/assets"
	"github.com/Faultbox/terrapaint/internal/brush"
	"github.com/Faultbox/terrapaint/internal/canvas"
	"github.com/Faultbox/terrapaint/internal/config"
	"github.com/Faultbox/terrapaint/internal/logger"
	"github.com/Faultbox/terrapaint/internal/paint"
	"github.com/Faultbox/terrapaint/internal/scene"
	"github.com/Faultbox/terrapaint/pkg/math"
)

// DefaultTickInterval is the update period when none is configured.
const DefaultTickInterval = 30 * time.Millisecond

// Object-mode adjustment per tick.
const (
	objectTurnStep  = 0.5
	objectScaleStep = 0.01
	objectZStep     = 0.05
)

// Input is the held input state sampled once per tick.
type Input struct {
	Paint       bool
	RotateLeft  bool
	RotateRight bool
	ScaleUp     bool
	ScaleDown   bool
	AlphaUp     bool
	AlphaDown   bool

	Pointer   math.Vec2 // world XY under the cursor
	OnTerrain bool      // Pointer is valid
}

// Steps are the per-tick increments for held adjustment keys.
type Steps struct {
	Heading  float32
	Size     float32
	Strength float32
}

// DefaultSteps returns the increments from config.Default.
func DefaultSteps() Steps {
	return StepsFromConfig(config.Default().Brush)
}

// StepsFromConfig reads the increments from the brush config section.
func StepsFromConfig(c config.BrushConfig) Steps {
	return Steps{Heading: c.HeadingStep, Size: c.SizeStep, Strength: c.StrengthStep}
}

// Axis selects which rotation component object-mode turning changes.
type Axis int

const (
	AxisHeading Axis = iota
	AxisPitch
	AxisRoll
)

// Cursor is the object held for placement in object mode.
type Cursor struct {
	Model   string
	HPR     math.Vec3
	Scale   float32
	ZOffset float32
	Axis    Axis
}

// Controller applies held input to the engine once per tick. All methods
// are safe to call from an input goroutine while Run is active.
type Controller struct {
	engine *paint.Engine
	scene  *scene.Scene
	stamps *assets.Library
	steps  Steps
	log    *zap.Logger

	mu     sync.Mutex
	input  Input
	cursor Cursor
	stamp  int
	ticks  uint64
}

// New creates a controller. scene and stamps may be nil.
func New(e *paint.Engine, sc *scene.Scene, stamps *assets.Library, steps Steps) *Controller {
	return &Controller{
		engine: e,
		scene:  sc,
		stamps: stamps,
		steps:  steps,
		log:    logger.Named("editor"),
		cursor: Cursor{Scale: 1},
	}
}

// SetInput replaces the held input state.
func (c *Controller) SetInput(in Input) {
	c.mu.Lock()
	c.input = in
	c.mu.Unlock()
}

// UpdateInput edits the held input state in place.
func (c *Controller) UpdateInput(fn func(in *Input)) {
	c.mu.Lock()
	fn(&c.input)
	c.mu.Unlock()
}

// Input returns the current held input state.
func (c *Controller) Input() Input {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.input
}

// Cursor returns the held placement object.
func (c *Controller) Cursor() Cursor {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cursor
}

// Ticks returns the number of completed ticks.
func (c *Controller) Ticks() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ticks
}

// Tick performs one update and returns the rectangles painted on each
// canvas, if any.
func (c *Controller) Tick() map[canvas.Channel]image.Rectangle {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ticks++
	in := c.input

	if in.OnTerrain {
		c.engine.MoveBrush(in.Pointer.X, in.Pointer.Y)
	}

	if c.engine.Mode() == paint.ModeObject {
		if c.engine.Stroking() {
			c.engine.EndStroke()
		}
		c.tickObject(in)
		return nil
	}

	c.tickBrush(in)

	if !in.Paint || !in.OnTerrain {
		if c.engine.Stroking() {
			c.engine.EndStroke()
		}
		return nil
	}
	if !c.engine.Stroking() {
		c.engine.BeginStroke()
	}
	return c.engine.PaintActive()
}

func (c *Controller) tickBrush(in Input) {
	if in.RotateLeft {
		c.engine.AdjustBrushHeading(c.steps.Heading)
	}
	if in.RotateRight {
		c.engine.AdjustBrushHeading(-c.steps.Heading)
	}
	if in.ScaleUp {
		c.engine.AdjustBrushSize(c.steps.Size)
	}
	if in.ScaleDown {
		c.engine.AdjustBrushSize(-c.steps.Size)
	}

	level := c.engine.Mode() == paint.ModeHeight && c.engine.HeightMode() == brush.Level
	switch {
	case in.AlphaUp && level:
		c.engine.AdjustLevelTarget(c.steps.Strength)
	case in.AlphaUp:
		c.engine.AdjustBrushAlpha(c.steps.Strength)
	}
	switch {
	case in.AlphaDown && level:
		c.engine.AdjustLevelTarget(-c.steps.Strength)
	case in.AlphaDown:
		c.engine.AdjustBrushAlpha(-c.steps.Strength)
	}
}

func (c *Controller) tickObject(in Input) {
	turn := float32(0)
	if in.RotateLeft {
		turn -= objectTurnStep
	}
	if in.RotateRight {
		turn += objectTurnStep
	}
	switch c.cursor.Axis {
	case AxisHeading:
		c.cursor.HPR.X = math.WrapDegrees(c.cursor.HPR.X + turn)
	case AxisPitch:
		c.cursor.HPR.Y = math.WrapDegrees(c.cursor.HPR.Y + turn)
	case AxisRoll:
		c.cursor.HPR.Z = math.WrapDegrees(c.cursor.HPR.Z + turn)
	}

	if in.ScaleUp {
		c.cursor.Scale += objectScaleStep
	}
	if in.ScaleDown {
		c.cursor.Scale = max(objectScaleStep, c.cursor.Scale-objectScaleStep)
	}
	if in.AlphaUp {
		c.cursor.ZOffset += objectZStep
	}
	if in.AlphaDown {
		c.cursor.ZOffset -= objectZStep
	}
}

// Run ticks at interval until ctx is cancelled. A paint stroke in
// progress is ended on return.
func (c *Controller) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = DefaultTickInterval
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	c.log.Debug("tick loop started", zap.Duration("interval", interval))

	for {
		select {
		case <-ctx.Done():
			c.engine.EndStroke()
			c.log.Debug("tick loop stopped", zap.Uint64("ticks", c.Ticks()))
			return ctx.Err()
		case <-t.C:
			c.Tick()
		}
	}
}

// SetMode switches the engine mode, ending any stroke first.
func (c *Controller) SetMode(m paint.Mode) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.engine.EndStroke()
	c.engine.SetMode(m)
}

// SelectStamp switches every brush to the named library stamp.
func (c *Controller) SelectStamp(name string) error {
	if c.stamps == nil {
		return fmt.Errorf("%w: %s", assets.ErrStampNotFound, name)
	}
	s, err := c.stamps.Get(name)
	if err != nil {
		return err
	}
	c.engine.SetStamp(s)
	return nil
}

// CycleStamp moves dir entries through the library and selects that stamp.
func (c *Controller) CycleStamp(dir int) *brush.Stamp {
	if c.stamps == nil || c.stamps.Len() == 0 {
		return nil
	}
	c.mu.Lock()
	c.stamp += dir
	s := c.stamps.At(c.stamp)
	c.mu.Unlock()

	c.engine.SetStamp(s)
	return s
}

// HoldObject makes model the placement cursor, keeping rotation and scale.
func (c *Controller) HoldObject(model string) {
	c.mu.Lock()
	c.cursor.Model = model
	c.mu.Unlock()
}

// SetAxis selects the rotation component object-mode turning changes.
func (c *Controller) SetAxis(a Axis) {
	c.mu.Lock()
	c.cursor.Axis = a
	c.mu.Unlock()
}

// Drop places the held object on the terrain under the pointer.
func (c *Controller) Drop() (scene.ObjectID, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.scene == nil || c.cursor.Model == "" || !c.input.OnTerrain {
		return 0, false
	}
	p := c.input.Pointer
	id := c.scene.DropAt(c.cursor.Model, p.X, p.Y, c.cursor.ZOffset, c.engine.Picker())
	obj, _ := c.scene.Get(id)
	obj.HPR = c.cursor.HPR
	obj.Scale = c.cursor.Scale
	c.scene.Update(obj)

	c.log.Info("object placed",
		zap.Uint64("id", uint64(id)),
		zap.String("model", obj.Model),
		zap.Float32("x", p.X), zap.Float32("y", p.Y), zap.Float32("z", obj.Position.Z))
	return id, true
}
