// Package renderer draws the preview: one canvas on a full-window quad
// with the brush outline on top. Canvases are mirrored to GL textures and
// only their dirty regions are re-uploaded.
package renderer

import (
	"fmt"
	"image"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/terrapaint/internal/canvas"
	"github.com/Faultbox/terrapaint/internal/engine/shader"
	"github.com/Faultbox/terrapaint/internal/logger"
)

const vertexSrc = `#version 410 core
layout (location = 0) in vec2 aPos;
uniform mat4 uProj;
uniform float uExtent;
out vec2 vUV;
void main() {
	vUV = aPos;
	gl_Position = uProj * vec4(aPos * uExtent, 0.0, 1.0);
}`

const fragmentSrc = `#version 410 core
in vec2 vUV;
uniform sampler2D uCanvas;
uniform int uGray;
uniform vec3 uBrush;      // centre uv, radius uv
uniform int uBrushVisible;
out vec4 FragColor;
void main() {
	vec4 c = texture(uCanvas, vUV);
	vec3 rgb = uGray == 1 ? vec3(c.r) : c.rgb;
	if (uBrushVisible == 1) {
		float d = distance(vUV, uBrush.xy);
		float edge = fwidth(d) * 1.5;
		if (abs(d - uBrush.z) < edge) {
			rgb = mix(rgb, vec3(1.0, 0.8, 0.1), 0.8);
		}
	}
	FragColor = vec4(rgb, 1.0);
}`

// Brush is the outline drawn over the canvas, in canvas UV.
type Brush struct {
	U, V, Radius float32
	Visible      bool
}

// Renderer owns the GL resources of the preview.
type Renderer struct {
	view     View
	program  *shader.Program
	vao, vbo uint32
	canvases []*canvas.Canvas
	textures []uint32
}

// New initialises OpenGL and creates a texture per canvas. It must be
// called after the GL context exists.
func New(view View, canvases []*canvas.Canvas) (*Renderer, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}
	logger.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))))

	prog, err := shader.Compile(vertexSrc, fragmentSrc)
	if err != nil {
		return nil, fmt.Errorf("preview shader: %w", err)
	}

	r := &Renderer{view: view, program: prog, canvases: canvases}
	r.createQuad()
	for _, c := range canvases {
		r.textures = append(r.textures, r.createTexture(c))
	}
	gl.ClearColor(0.1, 0.1, 0.15, 1.0)
	r.Resize(view.Width, view.Height)
	return r, nil
}

func (r *Renderer) createQuad() {
	verts := []float32{0, 0, 1, 0, 0, 1, 1, 1}
	gl.GenVertexArrays(1, &r.vao)
	gl.BindVertexArray(r.vao)
	gl.GenBuffers(1, &r.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(verts)*4, unsafe.Pointer(&verts[0]), gl.STATIC_DRAW)
	gl.VertexAttribPointer(0, 2, gl.FLOAT, false, 2*4, nil)
	gl.EnableVertexAttribArray(0)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindVertexArray(0)
}

func (r *Renderer) createTexture(c *canvas.Canvas) uint32 {
	snap := c.Snapshot()
	b := snap.Bounds()
	px := regionPixels(snap, b)

	var id uint32
	gl.GenTextures(1, &id)
	gl.BindTexture(gl.TEXTURE_2D, id)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA16, int32(b.Dx()), int32(b.Dy()), 0,
		gl.RGBA, gl.UNSIGNED_SHORT, unsafe.Pointer(&px[0]))

	c.TakeDirty()
	c.BindTexture(canvas.TextureID(id))
	logger.Debug("canvas texture created",
		zap.Stringer("channel", c.Channel()),
		zap.Uint32("texture", id),
		zap.Int("size", b.Dx()))
	return id
}

// Sync uploads the dirty region of every canvas. Reset or load replace a
// whole canvas and show up as a full-size dirty region.
func (r *Renderer) Sync() {
	for i, c := range r.canvases {
		rect, ok := c.TakeDirty()
		if !ok {
			continue
		}
		img, err := c.ReadPixelRegion(rect.Min.X, rect.Min.Y, rect.Dx(), rect.Dy())
		if err != nil {
			continue
		}
		r.upload(r.textures[i], img, img.Bounds())
	}
}

func (r *Renderer) upload(tex uint32, img *image.NRGBA64, rect image.Rectangle) {
	px := regionPixels(img, rect)
	if len(px) == 0 {
		return
	}
	gl.BindTexture(gl.TEXTURE_2D, tex)
	gl.TexSubImage2D(gl.TEXTURE_2D, 0, int32(rect.Min.X), int32(rect.Min.Y),
		int32(rect.Dx()), int32(rect.Dy()), gl.RGBA, gl.UNSIGNED_SHORT, unsafe.Pointer(&px[0]))
}

// Resize adapts the viewport to a new window size.
func (r *Renderer) Resize(width, height int) {
	r.view.Width, r.view.Height = width, height
	x, y, size := r.view.Viewport()
	gl.Viewport(int32(x), int32(y), int32(size), int32(size))
}

// View returns the current screen mapping.
func (r *Renderer) View() View { return r.view }

// Draw clears the frame and draws canvas ch with the brush outline.
func (r *Renderer) Draw(ch canvas.Channel, br Brush) {
	gl.Clear(gl.COLOR_BUFFER_BIT)

	proj := r.view.Projection()
	r.program.Use()
	gl.UniformMatrix4fv(r.program.Uniform("uProj"), 1, false, proj.Ptr())
	gl.Uniform1f(r.program.Uniform("uExtent"), r.view.Extent)
	gl.Uniform1i(r.program.Uniform("uCanvas"), 0)
	gray := int32(0)
	if ch == canvas.Height {
		gray = 1
	}
	gl.Uniform1i(r.program.Uniform("uGray"), gray)
	gl.Uniform3f(r.program.Uniform("uBrush"), br.U, br.V, br.Radius)
	visible := int32(0)
	if br.Visible {
		visible = 1
	}
	gl.Uniform1i(r.program.Uniform("uBrushVisible"), visible)

	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, r.textures[ch])
	gl.BindVertexArray(r.vao)
	gl.DrawArrays(gl.TRIANGLE_STRIP, 0, 4)
	gl.BindVertexArray(0)
}

// Close frees all GL resources.
func (r *Renderer) Close() {
	logger.Debug("closing renderer")
	if len(r.textures) > 0 {
		gl.DeleteTextures(int32(len(r.textures)), &r.textures[0])
	}
	gl.DeleteBuffers(1, &r.vbo)
	gl.DeleteVertexArrays(1, &r.vao)
	r.program.Delete()
}
