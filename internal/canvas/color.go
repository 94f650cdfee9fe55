package canvas

import (
	"image"
	"image/color"

	"github.com/chewxy/math32"

	tmath "github.com/Faultbox/terrapaint/pkg/math"
)

// RGBA is a normalized colour with components in [0,1].
type RGBA struct {
	R, G, B, A float32
}

// Gray returns an opaque grey of value v.
func Gray(v float32) RGBA {
	return RGBA{v, v, v, 1}
}

// NRGBA64 quantizes c to 16 bits per component.
func (c RGBA) NRGBA64() color.NRGBA64 {
	return color.NRGBA64{R: quantize(c.R), G: quantize(c.G), B: quantize(c.B), A: quantize(c.A)}
}

// Lerp blends toward o by t.
func (c RGBA) Lerp(o RGBA, t float32) RGBA {
	return RGBA{
		tmath.Lerp(c.R, o.R, t),
		tmath.Lerp(c.G, o.G, t),
		tmath.Lerp(c.B, o.B, t),
		tmath.Lerp(c.A, o.A, t),
	}
}

// Clamp limits every component to [0,1].
func (c RGBA) Clamp() RGBA {
	return RGBA{tmath.Clamp01(c.R), tmath.Clamp01(c.G), tmath.Clamp01(c.B), tmath.Clamp01(c.A)}
}

// Quantize snaps v to the nearest value a canvas component can store.
func Quantize(v float32) float32 {
	return float32(quantize(v)) / 65535
}

func quantize(v float32) uint16 {
	return uint16(tmath.Clamp01(v)*65535 + 0.5)
}

func fromNRGBA64(c color.NRGBA64) RGBA {
	return RGBA{float32(c.R) / 65535, float32(c.G) / 65535, float32(c.B) / 65535, float32(c.A) / 65535}
}

// At reads the normalized pixel at (x, y) without bounds checks.
func At(img *image.NRGBA64, x, y int) RGBA {
	return fromNRGBA64(img.NRGBA64At(x, y))
}

// Set writes a normalized pixel at (x, y), quantizing to 16 bits.
func Set(img *image.NRGBA64, x, y int, c RGBA) {
	img.SetNRGBA64(x, y, c.NRGBA64())
}

// SampleImage samples img bilinearly at normalized (u, v). Texel centres
// sit at +0.5 and coordinates are clamped to the edge. This is the one
// sampling rule used for height lookups, picking and collision export.
func SampleImage(img *image.NRGBA64, u, v float32) RGBA {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()

	fx := u*float32(w) - 0.5
	fy := v*float32(h) - 0.5
	x0f, y0f := math32.Floor(fx), math32.Floor(fy)
	tx, ty := fx-x0f, fy-y0f
	x0, y0 := int(x0f), int(y0f)

	cx := func(x int) int { return b.Min.X + clampInt(x, 0, w-1) }
	cy := func(y int) int { return b.Min.Y + clampInt(y, 0, h-1) }

	c00 := At(img, cx(x0), cy(y0))
	c10 := At(img, cx(x0+1), cy(y0))
	c01 := At(img, cx(x0), cy(y0+1))
	c11 := At(img, cx(x0+1), cy(y0+1))

	return c00.Lerp(c10, tx).Lerp(c01.Lerp(c11, tx), ty)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
