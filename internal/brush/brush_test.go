package brush

import (
	"image"
	"testing"

	"github.com/chewxy/math32"

	"github.com/Faultbox/terrapaint/internal/canvas"
	tmath "github.com/Faultbox/terrapaint/pkg/math"
)

// newTestCanvas builds a size×size canvas filled with fill.
func newTestCanvas(t *testing.T, ch canvas.Channel, size int, fill canvas.RGBA) *canvas.Canvas {
	t.Helper()
	c, err := canvas.New(ch, size, nil)
	if err != nil {
		t.Fatal(err)
	}
	c.Modify(func(img *image.NRGBA64) image.Rectangle {
		b := img.Bounds()
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				canvas.Set(img, x, y, fill)
			}
		}
		return b
	})
	return c
}

func apply(c *canvas.Canvas, b *Brush, tr Transform, m canvas.Mapping, opt Options) image.Rectangle {
	return c.Modify(func(img *image.NRGBA64) image.Rectangle {
		return b.Composite(img, NewDab(tr, b.Stamp, m, img.Bounds()), opt)
	})
}

func TestHeightUpFootprint(t *testing.T) {
	c := newTestCanvas(t, canvas.Height, 256, canvas.Gray(0.5))
	before := c.Snapshot()

	b := New(canvas.Height, Circle(DefaultStampResolution))
	tr := Transform{Position: tmath.Vec2{X: 128, Y: 128}, Size: 10}
	touched := apply(c, b, tr, canvas.Mapping{Extent: 256}, Options{Strength: 0.05})

	if touched.Empty() {
		t.Fatal("expected pixels to be written")
	}
	if got := c.Pixel(128, 128).R; math32.Abs(got-0.55) > 1e-3 {
		t.Errorf("centre height = %v, want ~0.55", got)
	}

	after := c.Snapshot()
	for y := 0; y < 256; y++ {
		for x := 0; x < 256; x++ {
			d := math32.Hypot(float32(x)+0.5-128, float32(y)+0.5-128)
			if d <= 10.5 {
				continue
			}
			if before.NRGBA64At(x, y) != after.NRGBA64At(x, y) {
				t.Fatalf("pixel (%d,%d) at distance %.2f changed", x, y, d)
			}
		}
	}
}

func TestFootprintClippedAtBorder(t *testing.T) {
	c := newTestCanvas(t, canvas.Height, 64, canvas.Gray(0.5))
	before := c.Snapshot()

	b := New(canvas.Height, Square(32))
	tr := Transform{Position: tmath.Vec2{X: 1, Y: 1}, Size: 4, Heading: 30}
	m := canvas.Mapping{Extent: 64}
	touched := apply(c, b, tr, m, Options{Strength: 1})

	fp := NewDab(tr, b.Stamp, m, c.Bounds()).Footprint(c.Bounds())
	if !touched.In(fp) {
		t.Errorf("touched %v escapes footprint %v", touched, fp)
	}
	if fp.Min != image.Pt(0, 0) {
		t.Errorf("footprint not clipped: %v", fp)
	}

	after := c.Snapshot()
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			if image.Pt(x, y).In(touched) {
				continue
			}
			if before.NRGBA64At(x, y) != after.NRGBA64At(x, y) {
				t.Fatalf("pixel (%d,%d) outside touched rect changed", x, y)
			}
		}
	}
	// No wraparound onto the far edge.
	if before.NRGBA64At(63, 63) != after.NRGBA64At(63, 63) {
		t.Error("stamp wrapped around the canvas")
	}
}

func TestHeightUpMonotoneAndCapped(t *testing.T) {
	c := newTestCanvas(t, canvas.Height, 32, canvas.Gray(0.9))
	b := New(canvas.Height, Circle(64))
	tr := Transform{Position: tmath.Vec2{X: 16, Y: 16}, Size: 4}
	m := canvas.Mapping{Extent: 32}

	prev := c.Pixel(16, 16).R
	for i := 0; i < 20; i++ {
		apply(c, b, tr, m, Options{Strength: 0.05})
		v := c.Pixel(16, 16).R
		if v < prev {
			t.Fatalf("pass %d: height decreased %v -> %v", i, prev, v)
		}
		if v > 1 {
			t.Fatalf("pass %d: height %v above 1", i, v)
		}
		prev = v
	}
	if prev != 1 {
		t.Errorf("height = %v, want capped at 1", prev)
	}
}

func TestHeightDownFloored(t *testing.T) {
	c := newTestCanvas(t, canvas.Height, 32, canvas.Gray(0.1))
	b := New(canvas.Height, Circle(64))
	b.HeightMode = Down
	tr := Transform{Position: tmath.Vec2{X: 16, Y: 16}, Size: 4}

	for i := 0; i < 5; i++ {
		apply(c, b, tr, canvas.Mapping{Extent: 32}, Options{Strength: 0.05})
	}
	if v := c.Pixel(16, 16).R; v != 0 {
		t.Errorf("height = %v, want 0", v)
	}
}

func TestHeightLevelConverges(t *testing.T) {
	tests := []struct {
		name         string
		start, target float32
	}{
		{"raise", 0.2, 0.8},
		{"lower", 0.9, 0.3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestCanvas(t, canvas.Height, 32, canvas.Gray(tt.start))
			b := New(canvas.Height, Circle(64))
			b.HeightMode = Level
			tr := Transform{Position: tmath.Vec2{X: 16, Y: 16}, Size: 6}
			m := canvas.Mapping{Extent: 32}
			target := float32(canvas.Gray(tt.target).NRGBA64().R) / 65535

			prevDist := math32.Abs(c.Pixel(16, 16).R - target)
			for i := 0; i < 60; i++ {
				apply(c, b, tr, m, Options{Strength: 0.25, Target: tt.target})
				v := c.Pixel(16, 16).R
				if (tt.target > tt.start && v > target) || (tt.target < tt.start && v < target) {
					t.Fatalf("pass %d overshot: %v past %v", i, v, target)
				}
				dist := math32.Abs(v - target)
				if dist > prevDist {
					t.Fatalf("pass %d moved away from target: %v > %v", i, dist, prevDist)
				}
				prevDist = dist
			}
			if prevDist > 1e-3 {
				t.Errorf("did not converge, distance %v", prevDist)
			}
		})
	}
}

func TestHeightLevelOffGridTarget(t *testing.T) {
	const step = float32(1) / 65535
	tests := []struct {
		name   string
		start  float32
		target float32
	}{
		{"lower below half step", 0.9, 0.3 + 0.4*step},
		{"lower above half step", 0.9, 0.3 + 0.6*step},
		{"raise below half step", 0.1, 0.7 + 0.4*step},
		{"raise above half step", 0.1, 0.7 + 0.6*step},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestCanvas(t, canvas.Height, 32, canvas.Gray(tt.start))
			b := New(canvas.Height, Circle(64))
			b.HeightMode = Level
			tr := Transform{Position: tmath.Vec2{X: 16, Y: 16}, Size: 6}
			m := canvas.Mapping{Extent: 32}
			snapped := canvas.Quantize(tt.target)
			raising := tt.target > tt.start

			for i := 0; i < 200; i++ {
				apply(c, b, tr, m, Options{Strength: 0.5, Target: tt.target})
				for _, p := range [][2]int{{16, 16}, {15, 16}, {18, 14}} {
					v := c.Pixel(p[0], p[1]).R
					if (raising && v > snapped) || (!raising && v < snapped) {
						t.Fatalf("pass %d: pixel %v = %v past stored target %v", i, p, v, snapped)
					}
				}
			}
			if d := math32.Abs(c.Pixel(16, 16).R - snapped); d > 1.5*step {
				t.Errorf("centre ended %v from target", d)
			}
		})
	}
}

func TestHeightBlurUsesSnapshot(t *testing.T) {
	c := newTestCanvas(t, canvas.Height, 32, canvas.Gray(0))
	c.Modify(func(img *image.NRGBA64) image.Rectangle {
		canvas.Set(img, 16, 16, canvas.Gray(1))
		return image.Rect(16, 16, 17, 17)
	})

	b := New(canvas.Height, Square(32))
	b.HeightMode = Blur
	tr := Transform{Position: tmath.Vec2{X: 16.5, Y: 16.5}, Size: 6}
	apply(c, b, tr, canvas.Mapping{Extent: 32}, Options{Strength: 1, BlurRadius: 2})

	want := float32(1) / 25
	for _, p := range []image.Point{{16, 16}, {17, 16}, {18, 18}} {
		if got := c.Pixel(p.X, p.Y).R; math32.Abs(got-want) > 1e-3 {
			t.Errorf("pixel %v = %v, want %v", p, got, want)
		}
	}
	if got := c.Pixel(19, 16).R; got != 0 {
		t.Errorf("pixel outside blur reach = %v, want 0", got)
	}
}

func TestTextureWeights(t *testing.T) {
	c := newTestCanvas(t, canvas.TextureWeight, 32, canvas.RGBA{R: 1, A: 1})
	b := New(canvas.TextureWeight, Circle(64))
	b.Color = canvas.RGBA{G: 1, A: 1}
	tr := Transform{Position: tmath.Vec2{X: 16, Y: 16}, Size: 4}

	apply(c, b, tr, canvas.Mapping{Extent: 32}, Options{Strength: 0.5})

	got := c.Pixel(16, 16)
	if math32.Abs(got.R-0.5) > 1e-3 || math32.Abs(got.G-0.5) > 1e-3 || got.B != 0 || got.A != 1 {
		t.Errorf("blended weight = %+v, want (0.5,0.5,0,1)", got)
	}

	// Fully transparent identity colour has no effect.
	before := c.Snapshot()
	b.Color = canvas.RGBA{B: 1, A: 0}
	apply(c, b, tr, canvas.Mapping{Extent: 32}, Options{Strength: 1})
	if before.NRGBA64At(16, 16) != c.Snapshot().NRGBA64At(16, 16) {
		t.Error("zero-alpha colour changed the canvas")
	}
}

func TestBinaryPaintAndErase(t *testing.T) {
	c := newTestCanvas(t, canvas.Vegetation, 64, canvas.RGBA{A: 1})
	b := New(canvas.Vegetation, SoftCircle(64))
	b.Color = canvas.RGBA{G: 1, A: 1}
	tr := Transform{Position: tmath.Vec2{X: 32, Y: 32}, Size: 10}
	m := canvas.Mapping{Extent: 64}

	apply(c, b, tr, m, Options{Strength: 0.01})

	img := c.Snapshot()
	dab := NewDab(tr, b.Stamp, m, img.Bounds())
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			px := canvas.At(img, x, y)
			painted := px == canvas.RGBA{G: 1, A: 1}
			cleared := px == canvas.RGBA{A: 1}
			if !painted && !cleared {
				t.Fatalf("pixel (%d,%d) = %+v is a partial blend", x, y, px)
			}
			if painted != (dab.MaskAt(x, y) >= 0.5) {
				t.Fatalf("pixel (%d,%d) painted=%v with mask %v", x, y, painted, dab.MaskAt(x, y))
			}
		}
	}

	b.BinaryMode = Erase
	apply(c, b, tr, m, Options{})
	if got := c.Pixel(32, 32); got != (canvas.RGBA{A: 1}) {
		t.Errorf("erased pixel = %+v, want cleared", got)
	}
}

func TestStampSample(t *testing.T) {
	s := Circle(64)
	if v := s.Sample(0.5, 0.5); v != 1 {
		t.Errorf("centre = %v, want 1", v)
	}
	if v := s.Sample(0.02, 0.02); v != 0 {
		t.Errorf("corner = %v, want 0", v)
	}
	if v := s.Sample(-0.1, 0.5); v != 0 {
		t.Errorf("outside = %v, want 0", v)
	}
	if v := SoftCircle(64).Sample(0.75, 0.5); v <= 0 || v >= 1 {
		t.Errorf("soft mid-radius = %v, want in (0,1)", v)
	}
}

func TestTransformClamping(t *testing.T) {
	l := DefaultLimits()
	var tr Transform

	tr.SetSize(1000, l)
	if tr.Size != l.SizeMax {
		t.Errorf("size = %v, want %v", tr.Size, l.SizeMax)
	}
	tr.SetSize(-3, l)
	if tr.Size != l.SizeMin {
		t.Errorf("size = %v, want %v", tr.Size, l.SizeMin)
	}
	tr.SetStrength(1.5, l)
	if tr.Strength != 1 {
		t.Errorf("strength = %v, want 1", tr.Strength)
	}
	tr.SetHeading(-5)
	if tr.Heading != 355 {
		t.Errorf("heading = %v, want 355", tr.Heading)
	}
	tr.SetHeading(725)
	if tr.Heading != 5 {
		t.Errorf("heading = %v, want 5", tr.Heading)
	}
}
