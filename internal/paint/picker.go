package paint

import (
	"image"

	"github.com/Faultbox/terrapaint/internal/canvas"
	"github.com/Faultbox/terrapaint/internal/picking"
	"github.com/Faultbox/terrapaint/pkg/math"
)

// Picker answers host-side questions about canvas contents: single pixel
// and region read-back, world height lookups and screen picking.
type Picker struct {
	e *Engine
}

// Picker returns a picker bound to the engine's canvases.
func (e *Engine) Picker() *Picker {
	return &Picker{e: e}
}

// PickTarget returns the low-resolution height copy used for ray marching.
func (e *Engine) PickTarget() *PickTarget {
	return e.pick
}

// Hit is the result of a screen pick.
type Hit struct {
	World math.Vec3   // terrain point in world units
	Pixel image.Point // height canvas pixel under the point
}

// ReadPixel reads back one pixel of a channel.
func (p *Picker) ReadPixel(ch canvas.Channel, x, y int) (canvas.RGBA, error) {
	if err := checkChannel(ch); err != nil {
		return canvas.RGBA{}, err
	}
	region, err := p.e.canvases[ch].ReadPixelRegion(x, y, 1, 1)
	if err != nil {
		return canvas.RGBA{}, err
	}
	return canvas.At(region, x, y), nil
}

// ReadRegion reads back a rectangle of a channel, clipped to the canvas.
func (p *Picker) ReadRegion(ch canvas.Channel, r image.Rectangle) (*image.NRGBA64, error) {
	if err := checkChannel(ch); err != nil {
		return nil, err
	}
	return p.e.canvases[ch].ReadPixelRegion(r.Min.X, r.Min.Y, r.Dx(), r.Dy())
}

// HeightAt returns the terrain height in world units at world (x, y),
// sampled bilinearly from the full-resolution height canvas.
func (p *Picker) HeightAt(x, y float32) float32 {
	u, v := p.e.mapping.ToUV(x, y)
	return p.e.canvases[canvas.Height].Sample(u, v).R * p.e.cfg.HeightScale
}

// CanvasPixelAt maps world (x, y) to the pixel of ch containing it.
func (p *Picker) CanvasPixelAt(ch canvas.Channel, x, y float32) (image.Point, bool) {
	if !ch.Valid() {
		return image.Point{}, false
	}
	return p.e.mapping.PixelAt(x, y, p.e.canvases[ch].Bounds())
}

// coarseField adapts the pick target to picking.HeightField.
type coarseField struct {
	t       *PickTarget
	mapping canvas.Mapping
	scale   float32
}

func (f coarseField) HeightAt(x, y float32) float32 {
	u, v := f.mapping.ToUV(x, y)
	return f.t.Sample(u, v) * f.scale
}

// PickScreen casts a ray through screen pixel (sx, sy) and returns the
// terrain point it hits. The ray is marched against the pick target and
// the height of the hit is then refined from the full canvas.
func (p *Picker) PickScreen(sx, sy, viewportW, viewportH float32, invViewProj math.Mat4) (Hit, bool) {
	ray := picking.ScreenToRay(sx, sy, viewportW, viewportH, invViewProj)
	return p.PickRay(ray)
}

// PickRay intersects a world ray with the terrain.
func (p *Picker) PickRay(ray picking.Ray) (Hit, bool) {
	e := p.e
	bounds := picking.NewAABB(math.Vec3{}, math.Vec3{X: e.cfg.Extent, Y: e.cfg.Extent, Z: e.cfg.HeightScale})
	field := coarseField{t: e.pick, mapping: e.mapping, scale: e.cfg.HeightScale}
	step := e.cfg.Extent / float32(e.pick.Resolution()) / 2

	pt, ok := picking.MarchHeightField(ray, field, bounds, step)
	if !ok {
		return Hit{}, false
	}
	pt.Z = p.HeightAt(pt.X, pt.Y)

	px, _ := e.mapping.PixelAt(pt.X, pt.Y, e.canvases[canvas.Height].Bounds())
	return Hit{World: pt, Pixel: px}, true
}

// SampleLevelTarget sets the level target to the stored height under the
// brush centre.
func (e *Engine) SampleLevelTarget() float32 {
	tr := e.Transform()
	u, v := e.mapping.ToUV(tr.Position.X, tr.Position.Y)
	h := e.canvases[canvas.Height].Sample(u, v).R
	e.SetLevelTarget(h)
	return h
}
