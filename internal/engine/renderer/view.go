package renderer

import (
	"image"

	"github.com/Faultbox/terrapaint/internal/picking"
	"github.com/Faultbox/terrapaint/pkg/math"
)

// View maps the square world onto the largest centred square of the
// window, viewed straight down.
type View struct {
	Extent        float32
	Width, Height int
}

// Viewport returns the square drawing area in GL coordinates (origin
// bottom-left).
func (v View) Viewport() (x, y, size int) {
	size = min(v.Width, v.Height)
	return (v.Width - size) / 2, (v.Height - size) / 2, size
}

// Projection returns the orthographic world-to-clip matrix.
func (v View) Projection() math.Mat4 {
	return math.Ortho(0, v.Extent, 0, v.Extent, -1, 1)
}

// ScreenToWorld converts window pixel coordinates (origin top-left) to
// world XY. ok is false outside the drawn square.
func (v View) ScreenToWorld(sx, sy int) (math.Vec2, bool) {
	x0, y0, size := v.Viewport()
	if size <= 0 {
		return math.Vec2{}, false
	}
	top := v.Height - size - y0
	lx := float32(sx-x0) + 0.5
	ly := float32(sy-top) + 0.5
	if lx < 0 || ly < 0 || lx > float32(size) || ly > float32(size) {
		return math.Vec2{}, false
	}

	inv, ok := v.Projection().Inverse()
	if !ok {
		return math.Vec2{}, false
	}
	ray := picking.ScreenToRay(lx, ly, float32(size), float32(size), inv)
	return ray.Origin.XY(), true
}

// regionPixels returns r of img as native-endian 16-bit RGBA samples,
// row by row, ready for a GL_UNSIGNED_SHORT upload.
func regionPixels(img *image.NRGBA64, r image.Rectangle) []uint16 {
	r = r.Intersect(img.Bounds())
	out := make([]uint16, 0, r.Dx()*r.Dy()*4)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		row := img.Pix[img.PixOffset(r.Min.X, y):img.PixOffset(r.Max.X, y)]
		for i := 0; i < len(row); i += 2 {
			out = append(out, uint16(row[i])<<8|uint16(row[i+1]))
		}
	}
	return out
}
