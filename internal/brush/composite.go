package brush

import (
	"image"

	"github.com/chewxy/math32"

	"github.com/Faultbox/terrapaint/internal/canvas"
	tmath "github.com/Faultbox/terrapaint/pkg/math"
)

// DefaultBlurRadius is the half-width of the blur neighbourhood in pixels.
const DefaultBlurRadius = 2

// binaryThreshold is the mask value at or above which a binary brush writes.
const binaryThreshold = 0.5

// Dab is one stamp placement in the pixel space of a specific canvas.
type Dab struct {
	CX, CY  float32 // centre in continuous pixel coordinates
	Radius  float32 // pixels
	Heading float32 // degrees
	Stamp   *Stamp
}

// NewDab places the transform onto a canvas with bounds b.
func NewDab(t Transform, stamp *Stamp, m canvas.Mapping, b image.Rectangle) Dab {
	cx, cy := m.ToPixel(t.Position.X, t.Position.Y, b)
	return Dab{
		CX:      cx,
		CY:      cy,
		Radius:  t.Size * m.PixelsPerUnit(b),
		Heading: t.Heading,
		Stamp:   stamp,
	}
}

// Footprint is the pixel rectangle a dab can touch: the stamp square
// rotated by any heading fits in radius·√2. The result is clipped to b.
func (d Dab) Footprint(b image.Rectangle) image.Rectangle {
	if d.Radius <= 0 || d.Stamp == nil {
		return image.Rectangle{}
	}
	ext := d.Radius * math32.Sqrt2
	r := image.Rect(
		int(math32.Floor(d.CX-ext)), int(math32.Floor(d.CY-ext)),
		int(math32.Ceil(d.CX+ext)), int(math32.Ceil(d.CY+ext)),
	)
	return r.Intersect(b)
}

// MaskAt returns the stamp coverage of pixel (x, y), sampled at the pixel
// centre after undoing the dab's rotation and scale.
func (d Dab) MaskAt(x, y int) float32 {
	local := tmath.Vec2{X: float32(x) + 0.5 - d.CX, Y: float32(y) + 0.5 - d.CY}.Rotate(-d.Heading)
	u := (local.X/d.Radius + 1) / 2
	v := (local.Y/d.Radius + 1) / 2
	return d.Stamp.Sample(u, v)
}

// each visits every pixel with non-zero coverage. fn reports whether it
// wrote the pixel; the union of written pixels is returned.
func (d Dab) each(img *image.NRGBA64, fn func(x, y int, m float32) bool) image.Rectangle {
	var touched image.Rectangle
	fp := d.Footprint(img.Bounds())
	for y := fp.Min.Y; y < fp.Max.Y; y++ {
		for x := fp.Min.X; x < fp.Max.X; x++ {
			m := d.MaskAt(x, y)
			if m <= 0 {
				continue
			}
			if fn(x, y, m) {
				touched = touched.Union(image.Rect(x, y, x+1, y+1))
			}
		}
	}
	return touched
}

// Options carries per-pass values that do not live on the brush.
type Options struct {
	Strength   float32
	Target     float32 // level target in [0,1]
	BlurRadius int
}

// Composite applies one pass of the brush to img and returns the rectangle
// written. Pixels outside the dab footprint, or with zero coverage, are
// never touched.
func (b *Brush) Composite(img *image.NRGBA64, d Dab, opt Options) image.Rectangle {
	switch {
	case b.Channel == canvas.Height:
		return compositeHeight(img, d, b.HeightMode, opt)
	case b.Channel.Binary():
		tag := b.Color
		if b.BinaryMode == Erase {
			tag = b.Channel.ClearedColor()
		}
		return compositeBinary(img, d, tag)
	default:
		return compositeWeights(img, d, b.Color, opt.Strength)
	}
}

func compositeHeight(img *image.NRGBA64, d Dab, mode HeightMode, opt Options) image.Rectangle {
	s := tmath.Clamp01(opt.Strength)
	// Blend toward a storable target so rounding never lands past it.
	target := canvas.Quantize(opt.Target)

	var blur *boxAverager
	if mode == Blur {
		k := opt.BlurRadius
		if k <= 0 {
			k = DefaultBlurRadius
		}
		blur = newBoxAverager(img, d.Footprint(img.Bounds()), k)
	}

	return d.each(img, func(x, y int, m float32) bool {
		v := canvas.At(img, x, y).R
		sm := s * m
		switch mode {
		case Up:
			v = math32.Min(1, v+sm)
		case Down:
			v = math32.Max(0, v-sm)
		case Level:
			v += (target - v) * sm
		case Blur:
			v += (blur.at(x, y) - v) * sm
		}
		canvas.Set(img, x, y, canvas.Gray(v))
		return true
	})
}

func compositeWeights(img *image.NRGBA64, d Dab, c canvas.RGBA, strength float32) image.Rectangle {
	s := tmath.Clamp01(strength)
	return d.each(img, func(x, y int, m float32) bool {
		a := s * m * c.A
		canvas.Set(img, x, y, canvas.At(img, x, y).Lerp(c, a))
		return true
	})
}

func compositeBinary(img *image.NRGBA64, d Dab, tag canvas.RGBA) image.Rectangle {
	return d.each(img, func(x, y int, m float32) bool {
		if m < binaryThreshold {
			return false
		}
		canvas.Set(img, x, y, tag)
		return true
	})
}

// boxAverager holds the red channel of a region copied before a blur pass
// so averages never see values written during the same pass.
type boxAverager struct {
	rect image.Rectangle
	vals []float32
	k    int
}

func newBoxAverager(img *image.NRGBA64, fp image.Rectangle, k int) *boxAverager {
	r := fp.Inset(-k).Intersect(img.Bounds())
	ba := &boxAverager{rect: r, vals: make([]float32, r.Dx()*r.Dy()), k: k}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			ba.vals[(y-r.Min.Y)*r.Dx()+(x-r.Min.X)] = canvas.At(img, x, y).R
		}
	}
	return ba
}

// at averages the (2k+1)² neighbourhood of (x, y), skipping pixels outside
// the canvas.
func (ba *boxAverager) at(x, y int) float32 {
	var sum float32
	var n int
	for yy := y - ba.k; yy <= y+ba.k; yy++ {
		for xx := x - ba.k; xx <= x+ba.k; xx++ {
			if !image.Pt(xx, yy).In(ba.rect) {
				continue
			}
			sum += ba.vals[(yy-ba.rect.Min.Y)*ba.rect.Dx()+(xx-ba.rect.Min.X)]
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float32(n)
}
