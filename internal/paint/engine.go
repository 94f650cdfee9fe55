// Package paint owns the terrain canvases and their brushes and applies
// paint events under the active editing mode.
package paint

import (
	"errors"
	"fmt"
	"image"
	"sync"

	"go.uber.org/zap"

	"github.com/Faultbox/terrapaint/internal/brush"
	"github.com/Faultbox/terrapaint/internal/canvas"
	"github.com/Faultbox/terrapaint/internal/logger"
	tmath "github.com/Faultbox/terrapaint/pkg/math"
)

var (
	ErrChannelInactive = errors.New("paint: channel not editable in current mode")
	ErrInvalidChannel  = errors.New("paint: unknown channel")
	ErrInvalidSlot     = errors.New("paint: slot out of range")
)

// Engine owns one canvas and one brush per channel. All brushes share a
// single transform (position, size, heading, strength).
type Engine struct {
	mu sync.Mutex

	cfg       Config
	mapping   canvas.Mapping
	canvases  [canvas.NumChannels]*canvas.Canvas
	brushes   [canvas.NumChannels]*brush.Brush
	transform brush.Transform
	mode      Mode

	stroking    bool
	strokeLevel float32

	pick *PickTarget
}

// New creates the five canvases in channel order and their brushes.
func New(cfg Config, stamp *brush.Stamp) (*Engine, error) {
	if cfg.Extent <= 0 {
		cfg.Extent = canvas.DefaultExtent
	}
	if cfg.Limits == (brush.Limits{}) {
		cfg.Limits = brush.DefaultLimits()
	}
	if cfg.BlurRadius <= 0 {
		cfg.BlurRadius = brush.DefaultBlurRadius
	}
	if stamp == nil {
		stamp = brush.Circle(brush.DefaultStampResolution)
	}

	e := &Engine{
		cfg:     cfg,
		mapping: canvas.Mapping{Extent: cfg.Extent},
	}

	for _, ch := range canvas.Channels() {
		c, err := canvas.New(ch, cfg.Sizes[ch], cfg.Bases[ch])
		if err != nil {
			return nil, fmt.Errorf("creating canvas: %w", err)
		}
		e.canvases[ch] = c
		e.brushes[ch] = brush.New(ch, stamp)
	}

	e.brushes[canvas.Height].Color = canvas.Gray(0.5)
	e.setTextureSlot(NumTextureSlots - 1)
	e.brushes[canvas.Vegetation].Color = vegetationSlots[0]
	e.brushes[canvas.Walkability].Color = unwalkableColor

	e.transform.Position = tmath.Vec2{X: cfg.Extent / 2, Y: cfg.Extent / 2}
	size := cfg.DefaultSize
	if size <= 0 {
		size = cfg.Limits.SizeMin
	}
	e.transform.SetSize(size, cfg.Limits)

	e.pick = newPickTarget(e.canvases[canvas.Height], cfg.PickResolution)
	e.setModeLocked(ModeHeight)

	logger.Info("paint engine ready",
		zap.Float32("extent", cfg.Extent),
		zap.Int("height_size", cfg.Sizes[canvas.Height]),
		zap.Int("pick_resolution", e.pick.res))
	return e, nil
}

// Mapping returns the world to canvas mapping shared by every channel.
func (e *Engine) Mapping() canvas.Mapping { return e.mapping }

// HeightScale converts stored height to world units.
func (e *Engine) HeightScale() float32 { return e.cfg.HeightScale }

// Extent is the world size covered by the canvases.
func (e *Engine) Extent() float32 { return e.cfg.Extent }

// Canvas returns a read-only view of one channel, or nil for an unknown
// channel.
func (e *Engine) Canvas(ch canvas.Channel) canvas.Reader {
	if !ch.Valid() {
		return nil
	}
	return e.canvases[ch]
}

func checkChannel(ch canvas.Channel) error {
	if !ch.Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidChannel, int(ch))
	}
	return nil
}

// Canvases returns read-only views of every channel in channel order.
func (e *Engine) Canvases() []canvas.Reader {
	out := make([]canvas.Reader, 0, canvas.NumChannels)
	for _, c := range e.canvases {
		out = append(out, c)
	}
	return out
}

// CanvasTexture exposes the writable canvas to the GPU uploader, which
// binds texture handles and drains dirty rectangles.
func (e *Engine) CanvasTexture(ch canvas.Channel) *canvas.Canvas {
	if !ch.Valid() {
		return nil
	}
	return e.canvases[ch]
}

// SetMode switches the editing mode, applies its parameter defaults and
// shows only its brushes.
func (e *Engine) SetMode(m Mode) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.setModeLocked(m)
}

func (e *Engine) setModeLocked(m Mode) {
	state, ok := modes[m]
	if !ok {
		return
	}
	e.stroking = false
	e.mode = m
	for _, b := range e.brushes {
		b.Visible = false
	}
	for _, ch := range state.channels {
		e.brushes[ch].Visible = true
	}
	state.enter(e)
	logger.Debug("mode changed", zap.Stringer("mode", m))
}

// SetActiveChannel activates the mode that owns ch.
func (e *Engine) SetActiveChannel(ch canvas.Channel) error {
	if !ch.Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidChannel, int(ch))
	}
	e.SetMode(ModeOf(ch))
	return nil
}

// Mode returns the active mode.
func (e *Engine) Mode() Mode {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.mode
}

// ActiveChannels returns the channels editable in the current mode.
func (e *Engine) ActiveChannels() []canvas.Channel {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]canvas.Channel(nil), modes[e.mode].channels...)
}

// BrushVisible reports whether the brush of ch is shown.
func (e *Engine) BrushVisible(ch canvas.Channel) bool {
	if !ch.Valid() {
		return false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.brushes[ch].Visible
}

// Paint applies one compositing pass of the brush of ch at the current
// transform and returns the rectangle written on that canvas.
func (e *Engine) Paint(ch canvas.Channel) (image.Rectangle, error) {
	if err := checkChannel(ch); err != nil {
		return image.Rectangle{}, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.brushes[ch].Visible {
		return image.Rectangle{}, fmt.Errorf("%w: %s in %s mode", ErrChannelInactive, ch, e.mode)
	}
	return e.paintLocked(ch), nil
}

// PaintActive paints every channel of the current mode. Object mode
// paints nothing.
func (e *Engine) PaintActive() map[canvas.Channel]image.Rectangle {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make(map[canvas.Channel]image.Rectangle)
	for _, ch := range modes[e.mode].channels {
		out[ch] = e.paintLocked(ch)
	}
	return out
}

func (e *Engine) paintLocked(ch canvas.Channel) image.Rectangle {
	b := e.brushes[ch]
	opt := brush.Options{
		Strength:   e.transform.Strength,
		Target:     e.levelTargetLocked(),
		BlurRadius: e.cfg.BlurRadius,
	}
	tr := e.transform
	return e.canvases[ch].Modify(func(img *image.NRGBA64) image.Rectangle {
		return b.Composite(img, brush.NewDab(tr, b.Stamp, e.mapping, img.Bounds()), opt)
	})
}

// BeginStroke starts a held paint input. The level target is fixed for
// the duration of the stroke.
func (e *Engine) BeginStroke() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stroking = true
	e.strokeLevel = e.brushes[canvas.Height].Color.R
}

// EndStroke finishes a held paint input.
func (e *Engine) EndStroke() {
	e.mu.Lock()
	e.stroking = false
	e.mu.Unlock()
}

// Stroking reports whether a stroke is in progress.
func (e *Engine) Stroking() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stroking
}

func (e *Engine) levelTargetLocked() float32 {
	if e.stroking {
		return e.strokeLevel
	}
	return e.brushes[canvas.Height].Color.R
}

// LevelTarget returns the height the level brush drives toward.
func (e *Engine) LevelTarget() float32 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.brushes[canvas.Height].Color.R
}

// SetLevelTarget sets the level target, clamped to [0,1]. A stroke in
// progress keeps the target it started with.
func (e *Engine) SetLevelTarget(v float32) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.brushes[canvas.Height].Color = canvas.Gray(tmath.Clamp01(v))
}

// AdjustLevelTarget moves the level target by d.
func (e *Engine) AdjustLevelTarget(d float32) {
	e.SetLevelTarget(e.LevelTarget() + d)
}

// Transform returns the shared brush transform.
func (e *Engine) Transform() brush.Transform {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.transform
}

// MoveBrush places every brush at world (x, y).
func (e *Engine) MoveBrush(x, y float32) {
	e.mu.Lock()
	e.transform.Position = tmath.Vec2{X: x, Y: y}
	e.mu.Unlock()
}

// SetBrushSize sets the world radius, clamped to the configured range.
func (e *Engine) SetBrushSize(size float32) {
	e.mu.Lock()
	e.transform.SetSize(size, e.cfg.Limits)
	e.mu.Unlock()
}

// AdjustBrushSize changes the radius by d.
func (e *Engine) AdjustBrushSize(d float32) {
	e.mu.Lock()
	e.transform.SetSize(e.transform.Size+d, e.cfg.Limits)
	e.mu.Unlock()
}

// SetBrushAlpha sets the strength, clamped to the configured range.
func (e *Engine) SetBrushAlpha(s float32) {
	e.mu.Lock()
	e.transform.SetStrength(s, e.cfg.Limits)
	e.mu.Unlock()
}

// AdjustBrushAlpha changes the strength by d.
func (e *Engine) AdjustBrushAlpha(d float32) {
	e.mu.Lock()
	e.transform.SetStrength(e.transform.Strength+d, e.cfg.Limits)
	e.mu.Unlock()
}

// SetBrushHeading sets the heading in degrees, wrapped into [0, 360).
func (e *Engine) SetBrushHeading(deg float32) {
	e.mu.Lock()
	e.transform.SetHeading(deg)
	e.mu.Unlock()
}

// AdjustBrushHeading rotates the brush by d degrees.
func (e *Engine) AdjustBrushHeading(d float32) {
	e.mu.Lock()
	e.transform.SetHeading(e.transform.Heading + d)
	e.mu.Unlock()
}

// SetStamp changes the stamp of every brush.
func (e *Engine) SetStamp(s *brush.Stamp) {
	if s == nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, b := range e.brushes {
		b.Stamp = s
	}
}

// Stamp returns the current stamp.
func (e *Engine) Stamp() *brush.Stamp {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.brushes[canvas.Height].Stamp
}

// SetBrushIdentityColor sets the colour the brush of ch writes.
func (e *Engine) SetBrushIdentityColor(ch canvas.Channel, c canvas.RGBA) error {
	if err := checkChannel(ch); err != nil {
		return err
	}
	e.mu.Lock()
	e.brushes[ch].Color = c.Clamp()
	e.mu.Unlock()
	return nil
}

// BrushColor returns the identity colour of the brush of ch. Unknown
// channels report the zero colour.
func (e *Engine) BrushColor(ch canvas.Channel) canvas.RGBA {
	if !ch.Valid() {
		return canvas.RGBA{}
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.brushes[ch].Color
}

// SetTextureSlot selects one of six terrain textures, encoded one-hot
// across the two weight canvases.
func (e *Engine) SetTextureSlot(slot int) error {
	if slot < 0 || slot >= NumTextureSlots {
		return fmt.Errorf("%w: texture slot %d", ErrInvalidSlot, slot)
	}
	e.mu.Lock()
	e.setTextureSlot(slot)
	e.mu.Unlock()
	return nil
}

func (e *Engine) setTextureSlot(slot int) {
	e.brushes[canvas.TextureWeight].Color = textureSlots[slot][0]
	e.brushes[canvas.TextureWeight2].Color = textureSlots[slot][1]
}

// SetVegetationSlot selects a vegetation type. Slot NumVegetationSlots is
// the remover and switches the brush to erase.
func (e *Engine) SetVegetationSlot(slot int) error {
	if slot < 0 || slot > NumVegetationSlots {
		return fmt.Errorf("%w: vegetation slot %d", ErrInvalidSlot, slot)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	b := e.brushes[canvas.Vegetation]
	if slot == NumVegetationSlots {
		b.BinaryMode = brush.Erase
		return nil
	}
	b.BinaryMode = brush.Paint
	b.Color = vegetationSlots[slot]
	return nil
}

// SetHeightMode changes the height sub-mode and applies its default strength.
func (e *Engine) SetHeightMode(m brush.HeightMode) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.brushes[canvas.Height].HeightMode = m
	e.applyHeightDefaults(m)
}

// HeightMode returns the height sub-mode.
func (e *Engine) HeightMode() brush.HeightMode {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.brushes[canvas.Height].HeightMode
}

func (e *Engine) applyHeightDefaults(m brush.HeightMode) {
	e.transform.SetStrength(heightDefaultStrength(m), e.cfg.Limits)
}

// SetBinaryMode switches a binary channel between paint and erase.
func (e *Engine) SetBinaryMode(ch canvas.Channel, m brush.BinaryMode) error {
	if !ch.Binary() {
		return fmt.Errorf("%w: %s is not binary", ErrInvalidChannel, ch)
	}
	e.mu.Lock()
	e.brushes[ch].BinaryMode = m
	e.mu.Unlock()
	return nil
}

// BinaryMode returns the paint/erase state of a binary channel.
func (e *Engine) BinaryMode(ch canvas.Channel) brush.BinaryMode {
	if !ch.Binary() {
		return brush.Paint
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.brushes[ch].BinaryMode
}

// ResetChannel restores a canvas to its base image or fill.
func (e *Engine) ResetChannel(ch canvas.Channel) error {
	if err := checkChannel(ch); err != nil {
		return err
	}
	e.canvases[ch].Reset(nil)
	return nil
}

// LoadChannel replaces a canvas from an image file.
func (e *Engine) LoadChannel(ch canvas.Channel, path string) error {
	if err := checkChannel(ch); err != nil {
		return err
	}
	return e.canvases[ch].LoadFullImage(path)
}

// SaveChannel writes a canvas to an image file.
func (e *Engine) SaveChannel(ch canvas.Channel, path string) error {
	if err := checkChannel(ch); err != nil {
		return err
	}
	return e.canvases[ch].WriteFullImage(path)
}
