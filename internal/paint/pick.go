package paint

import (
	"image"
	"sync"

	"github.com/anthonynsimon/bild/transform"
	"github.com/chewxy/math32"
)

// DefaultPickResolution is the side length of the pick target.
const DefaultPickResolution = 128

// PickTarget is a low-resolution copy of the height canvas used to march
// screen rays. It is rebuilt lazily when the height canvas generation
// changes, so picking never reads back the full canvas per frame.
type PickTarget struct {
	mu       sync.Mutex
	src      generationSource
	res      int
	gen      uint64
	img      *image.RGBA
	rebuilds int
}

type generationSource interface {
	Generation() uint64
	Snapshot() *image.NRGBA64
	Bounds() image.Rectangle
}

func newPickTarget(src generationSource, res int) *PickTarget {
	if res <= 0 {
		res = DefaultPickResolution
	}
	if w := src.Bounds().Dx(); res > w {
		res = w
	}
	return &PickTarget{src: src, res: res}
}

// current returns the up-to-date downsampled image.
func (p *PickTarget) current() *image.RGBA {
	p.mu.Lock()
	defer p.mu.Unlock()

	gen := p.src.Generation()
	if p.img == nil || gen != p.gen {
		p.img = transform.Resize(p.src.Snapshot(), p.res, p.res, transform.Box)
		p.gen = gen
		p.rebuilds++
	}
	return p.img
}

// Rebuilds counts how often the target was regenerated.
func (p *PickTarget) Rebuilds() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.rebuilds
}

// Resolution returns the side length in pixels.
func (p *PickTarget) Resolution() int { return p.res }

// Sample returns the normalized height at (u, v) with the same texel
// centre and edge clamp rule as canvas sampling.
func (p *PickTarget) Sample(u, v float32) float32 {
	img := p.current()
	n := p.res

	fx := u*float32(n) - 0.5
	fy := v*float32(n) - 0.5
	x0f, y0f := math32.Floor(fx), math32.Floor(fy)
	tx, ty := fx-x0f, fy-y0f
	x0, y0 := int(x0f), int(y0f)

	at := func(x, y int) float32 {
		x = min(max(x, 0), n-1)
		y = min(max(y, 0), n-1)
		return float32(img.Pix[img.PixOffset(x, y)]) / 255
	}
	top := at(x0, y0) + (at(x0+1, y0)-at(x0, y0))*tx
	bot := at(x0, y0+1) + (at(x0+1, y0+1)-at(x0, y0+1))*tx
	return top + (bot-top)*ty
}
