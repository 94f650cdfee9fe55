package canvas

import (
	"image"

	"github.com/chewxy/math32"
)

// DefaultExtent is the world size covered by every canvas.
const DefaultExtent = 512

// Mapping converts between world XY and canvas space. One value is shared
// by every canvas so all channels stay pixel-aligned over the same
// footprint. Canvas rows grow with world Y.
type Mapping struct {
	Extent float32
}

// ToUV maps world XY to normalized canvas coordinates.
func (m Mapping) ToUV(x, y float32) (u, v float32) {
	return x / m.Extent, y / m.Extent
}

// ToPixel maps world XY to continuous pixel coordinates on a canvas with
// the given bounds. Integer pixel (i, j) spans [i, i+1).
func (m Mapping) ToPixel(x, y float32, b image.Rectangle) (px, py float32) {
	u, v := m.ToUV(x, y)
	return u * float32(b.Dx()), v * float32(b.Dy())
}

// PixelAt returns the integer pixel containing world XY and whether it is
// inside the canvas.
func (m Mapping) PixelAt(x, y float32, b image.Rectangle) (image.Point, bool) {
	px, py := m.ToPixel(x, y, b)
	p := image.Pt(int(math32.Floor(px)), int(math32.Floor(py)))
	return p, p.In(b)
}

// PixelCenter returns the world XY of the centre of pixel (i, j).
func (m Mapping) PixelCenter(i, j int, b image.Rectangle) (x, y float32) {
	return (float32(i) + 0.5) / float32(b.Dx()) * m.Extent,
		(float32(j) + 0.5) / float32(b.Dy()) * m.Extent
}

// PixelsPerUnit is the canvas resolution along one axis per world unit.
func (m Mapping) PixelsPerUnit(b image.Rectangle) float32 {
	return float32(b.Dx()) / m.Extent
}
