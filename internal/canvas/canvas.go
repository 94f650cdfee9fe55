// Package canvas implements the raster layers the terrain editor paints into.
//
// A Canvas is a fixed-size 16-bit straight-alpha RGBA image bound to one
// Channel, so every stored value survives a PNG round trip unchanged. All writes
// go through Modify, which holds the write lock, records the touched
// rectangle as dirty and bumps the generation counter. Every read-back
// returns a copy made under the read lock, so exports taken while a stroke
// is in progress see a consistent image.
package canvas

import (
	"errors"
	"fmt"
	"image"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/image/draw"

	"github.com/Faultbox/terrapaint/internal/logger"
)

var (
	ErrNotFound    = errors.New("canvas: image not found")
	ErrOutOfBounds = errors.New("canvas: region out of bounds")
	ErrInvalidSize = errors.New("canvas: size must be a positive power of two")
)

// TextureID is the handle of the GPU texture mirroring a canvas.
// Zero means no texture has been bound yet.
type TextureID uint32

// Reader is the read-only view of a canvas handed to derivation and picking.
type Reader interface {
	Channel() Channel
	Bounds() image.Rectangle
	Pixel(x, y int) RGBA
	Sample(u, v float32) RGBA
	ReadPixelRegion(x, y, w, h int) (*image.NRGBA64, error)
	Snapshot() *image.NRGBA64
	Generation() uint64
}

// Canvas is one square raster layer.
type Canvas struct {
	mu      sync.RWMutex
	channel Channel
	img     *image.NRGBA64
	base    image.Image // optional reset image; nil means DefaultColor fill
	texture TextureID
	gen     uint64
	dirty   image.Rectangle
}

var _ Reader = (*Canvas)(nil)

// New creates a canvas of size×size pixels initialised from base, or from
// the channel's default colour when base is nil.
func New(ch Channel, size int, base image.Image) (*Canvas, error) {
	if size <= 0 || size&(size-1) != 0 {
		return nil, fmt.Errorf("%w: %s canvas %d", ErrInvalidSize, ch, size)
	}
	c := &Canvas{
		channel: ch,
		img:     image.NewNRGBA64(image.Rect(0, 0, size, size)),
		base:    base,
	}
	c.fillDefault()
	return c, nil
}

// Channel returns the terrain channel this canvas stores.
func (c *Canvas) Channel() Channel { return c.channel }

// Bounds returns the pixel rectangle, always anchored at the origin.
func (c *Canvas) Bounds() image.Rectangle {
	c.mustInit()
	return c.img.Bounds()
}

// Texture returns the bound GPU texture handle.
func (c *Canvas) Texture() TextureID {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.texture
}

// BindTexture records the GPU texture that mirrors this canvas.
func (c *Canvas) BindTexture(id TextureID) {
	c.mu.Lock()
	c.texture = id
	c.mu.Unlock()
}

// SetBase replaces the image used by Reset(nil).
func (c *Canvas) SetBase(img image.Image) {
	c.mu.Lock()
	c.base = img
	c.mu.Unlock()
}

// Reset replaces the whole content with img, or with the configured base
// when img is nil. Calling it twice in a row yields identical pixels.
func (c *Canvas) Reset(img image.Image) {
	c.mustInit()
	c.mu.Lock()
	defer c.mu.Unlock()

	if img == nil {
		c.fillDefaultLocked()
	} else {
		c.blitLocked(img)
	}
	c.markLocked(c.img.Bounds())
}

func (c *Canvas) fillDefault() {
	c.mu.Lock()
	c.fillDefaultLocked()
	c.markLocked(c.img.Bounds())
	c.mu.Unlock()
}

func (c *Canvas) fillDefaultLocked() {
	if c.base != nil {
		c.blitLocked(c.base)
		return
	}
	col := c.channel.DefaultColor().NRGBA64()
	b := c.img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c.img.SetNRGBA64(x, y, col)
		}
	}
}

// blitLocked copies img over the whole canvas, scaling it with nearest
// neighbour when the dimensions differ.
func (c *Canvas) blitLocked(img image.Image) {
	b := c.img.Bounds()
	src := toNRGBA64(img)
	if src.Bounds().Dx() != b.Dx() || src.Bounds().Dy() != b.Dy() {
		logger.Warn("scaling image to canvas size",
			zap.Stringer("channel", c.channel),
			zap.Int("from_w", src.Bounds().Dx()),
			zap.Int("from_h", src.Bounds().Dy()),
			zap.Int("to", b.Dx()))
		scaled := image.NewNRGBA64(b)
		draw.NearestNeighbor.Scale(scaled, b, src, src.Bounds(), draw.Src, nil)
		src = scaled
	}
	copyRegion(c.img, src, b, src.Bounds().Min)
}

// toNRGBA64 returns img as an NRGBA64, converting only when needed.
// Decoded 16-bit PNGs with alpha are already NRGBA64 and pass through.
func toNRGBA64(img image.Image) *image.NRGBA64 {
	if n, ok := img.(*image.NRGBA64); ok {
		return n
	}
	b := img.Bounds()
	out := image.NewNRGBA64(b)
	draw.Draw(out, b, img, b.Min, draw.Src)
	return out
}

// copyRegion copies rect r of dst from src starting at sp, row by row.
// Unlike draw.Draw it never passes through premultiplied colour.
func copyRegion(dst, src *image.NRGBA64, r image.Rectangle, sp image.Point) {
	n := r.Dx() * 8
	for y := 0; y < r.Dy(); y++ {
		di := dst.PixOffset(r.Min.X, r.Min.Y+y)
		si := src.PixOffset(sp.X, sp.Y+y)
		copy(dst.Pix[di:di+n], src.Pix[si:si+n])
	}
}

// Modify runs fn with exclusive access to the pixels. fn returns the
// rectangle it wrote; a non-empty result is recorded as dirty and advances
// the generation.
func (c *Canvas) Modify(fn func(img *image.NRGBA64) image.Rectangle) image.Rectangle {
	c.mustInit()
	c.mu.Lock()
	defer c.mu.Unlock()

	touched := fn(c.img).Intersect(c.img.Bounds())
	c.markLocked(touched)
	return touched
}

func (c *Canvas) markLocked(r image.Rectangle) {
	if r.Empty() {
		return
	}
	c.gen++
	c.dirty = c.dirty.Union(r)
}

// Generation counts mutations since creation.
func (c *Canvas) Generation() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.gen
}

// TakeDirty returns the rectangle written since the last call and clears it.
func (c *Canvas) TakeDirty() (image.Rectangle, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	r := c.dirty
	c.dirty = image.Rectangle{}
	return r, !r.Empty()
}

// Pixel returns the pixel at (x, y), clamping coordinates to the edge.
func (c *Canvas) Pixel(x, y int) RGBA {
	c.mustInit()
	c.mu.RLock()
	defer c.mu.RUnlock()
	b := c.img.Bounds()
	return At(c.img, clampInt(x, 0, b.Dx()-1), clampInt(y, 0, b.Dy()-1))
}

// Sample returns the bilinear sample at normalized (u, v).
func (c *Canvas) Sample(u, v float32) RGBA {
	c.mustInit()
	c.mu.RLock()
	defer c.mu.RUnlock()
	return SampleImage(c.img, u, v)
}

// ReadPixelRegion copies the w×h region at (x, y), clipped to the canvas.
// The returned image keeps canvas coordinates in its bounds. A region that
// is empty or lies entirely outside the canvas returns ErrOutOfBounds.
func (c *Canvas) ReadPixelRegion(x, y, w, h int) (*image.NRGBA64, error) {
	c.mustInit()
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrOutOfBounds, w, h)
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	r := image.Rect(x, y, x+w, y+h).Intersect(c.img.Bounds())
	if r.Empty() {
		return nil, fmt.Errorf("%w: (%d,%d) %dx%d on %s", ErrOutOfBounds, x, y, w, h, c.channel)
	}
	out := image.NewNRGBA64(r)
	copyRegion(out, c.img, r, r.Min)
	return out, nil
}

// Snapshot returns a deep copy of the whole canvas.
func (c *Canvas) Snapshot() *image.NRGBA64 {
	c.mustInit()
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := image.NewNRGBA64(c.img.Bounds())
	copy(out.Pix, c.img.Pix)
	return out
}

// mustInit panics on a canvas that was not created with New.
func (c *Canvas) mustInit() {
	if c == nil || c.img == nil {
		panic("canvas: use of uninitialized canvas")
	}
}
