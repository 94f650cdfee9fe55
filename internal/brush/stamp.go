package brush

import (
	"image"

	"github.com/chewxy/math32"

	"github.com/Faultbox/terrapaint/internal/texture"
)

// DefaultStampResolution is the side length of stamp masks.
const DefaultStampResolution = 128

// Stamp is a square monochrome mask in [0,1] that shapes a brush.
type Stamp struct {
	Name string
	Res  int
	Mask []float32 // row-major, Res*Res
}

// NewStamp converts an image into a stamp of res×res texels. The mask is
// the image luminance weighted by alpha.
func NewStamp(name string, img image.Image, res int) *Stamp {
	return &Stamp{Name: name, Res: res, Mask: texture.ToMask(img, res)}
}

func generate(name string, res int, f func(r float32, dx, dy float32) float32) *Stamp {
	s := &Stamp{Name: name, Res: res, Mask: make([]float32, res*res)}
	half := float32(res) / 2
	for y := 0; y < res; y++ {
		for x := 0; x < res; x++ {
			dx := (float32(x) + 0.5 - half) / half
			dy := (float32(y) + 0.5 - half) / half
			s.Mask[y*res+x] = f(math32.Hypot(dx, dy), dx, dy)
		}
	}
	return s
}

// Circle is a hard-edged disc filling the stamp.
func Circle(res int) *Stamp {
	return generate("circle", res, func(r, _, _ float32) float32 {
		if r <= 1 {
			return 1
		}
		return 0
	})
}

// SoftCircle falls off smoothly from the centre to the rim.
func SoftCircle(res int) *Stamp {
	return generate("soft", res, func(r, _, _ float32) float32 {
		if r >= 1 {
			return 0
		}
		t := 1 - r
		return t * t * (3 - 2*t)
	})
}

// Square fills the whole stamp.
func Square(res int) *Stamp {
	return generate("square", res, func(_, _, _ float32) float32 { return 1 })
}

// Builtins returns the stamps that are always available.
func Builtins(res int) []*Stamp {
	return []*Stamp{Circle(res), SoftCircle(res), Square(res)}
}

// Sample returns the bilinear mask value at normalized (u, v). Texels
// outside the stamp count as zero, so coordinates outside [0,1] give 0.
func (s *Stamp) Sample(u, v float32) float32 {
	if u < 0 || v < 0 || u > 1 || v > 1 {
		return 0
	}
	fx := u*float32(s.Res) - 0.5
	fy := v*float32(s.Res) - 0.5
	x0f, y0f := math32.Floor(fx), math32.Floor(fy)
	tx, ty := fx-x0f, fy-y0f
	x0, y0 := int(x0f), int(y0f)

	a := s.texel(x0, y0) + (s.texel(x0+1, y0)-s.texel(x0, y0))*tx
	b := s.texel(x0, y0+1) + (s.texel(x0+1, y0+1)-s.texel(x0, y0+1))*tx
	return a + (b-a)*ty
}

func (s *Stamp) texel(x, y int) float32 {
	if x < 0 || y < 0 || x >= s.Res || y >= s.Res {
		return 0
	}
	return s.Mask[y*s.Res+x]
}
