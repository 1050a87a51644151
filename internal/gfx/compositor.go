package gfx

import (
	"github.com/danielfvm/shadow/internal/options"
	"github.com/go-gl/gl/v3.3-core/gl"
	"github.com/pkg/errors"
)

const blitVertexShader = `attribute vec2 position;
uniform vec4 transform;
varying vec2 uv;

void main() {
    uv = position * transform.xy + transform.zw;
    gl_Position = vec4(position * 2.0 - 1.0, 0.0, 1.0);
}
`

const blitFragmentShader = `uniform sampler2D frame;
varying vec2 uv;

void main() {
    gl_FragColor = vec4(texture2D(frame, uv).rgb, 1.0);
}
`

// Compositor renders the user shader into a quality-scaled offscreen target
// and stretches the result over a destination framebuffer.
type Compositor struct {
	shader   *Program
	uniforms Uniforms

	blit          *Program
	blitFrame     int32
	blitTransform int32

	quad    *Quad
	scene   *RenderTarget
	quality float64
	width   int
	height  int
}

// NewCompositor compiles fragment and prepares a compositor for a
// width x height destination.
func NewCompositor(fragment string, width, height int, quality float64, filter options.Filter) (*Compositor, error) {
	shader, err := NewShaderProgram(fragment)
	if err != nil {
		return nil, err
	}
	blit, err := NewProgram(blitVertexShader, blitFragmentShader, map[uint32]string{PositionAttrib: "position"})
	if err != nil {
		shader.Delete()
		return nil, errors.Wrap(err, "building composite program")
	}

	c := &Compositor{
		shader:        shader,
		uniforms:      LocateUniforms(shader),
		blit:          blit,
		blitFrame:     blit.Uniform("frame"),
		blitTransform: blit.Uniform("transform"),
		quad:          NewQuad(),
		quality:       quality,
		width:         width,
		height:        height,
	}

	sw, sh := ScaledSize(width, height, quality)
	c.scene, err = NewRenderTarget(sw, sh, FilterParam(filter))
	if err != nil {
		c.Delete()
		return nil, err
	}
	return c, nil
}

// FilterParam maps a magnification filter onto its GL texture parameter.
func FilterParam(f options.Filter) int32 {
	switch f {
	case options.FilterPixel:
		return gl.NEAREST
	case options.FilterSmooth:
		return gl.LINEAR
	}
	return gl.LINEAR
}

// Resize changes the destination size, reallocating the scene texture when
// the scaled size changes.
func (c *Compositor) Resize(width, height int) error {
	if width == c.width && height == c.height {
		return nil
	}
	sw, sh := ScaledSize(width, height, c.quality)
	if err := c.scene.Resize(sw, sh); err != nil {
		return err
	}
	c.width, c.height = width, height
	return nil
}

// Size returns the destination size.
func (c *Compositor) Size() (int, int) {
	return c.width, c.height
}

// RenderSize returns the scaled size the shader renders at.
func (c *Compositor) RenderSize() (int, int) {
	return c.scene.Size()
}

// Draw runs the shader pass and the composite pass into framebuffer dst
// (0 for the window's default framebuffer).
func (c *Compositor) Draw(dst uint32, time float32, mouse [2]float32) {
	gl.Disable(gl.DEPTH_TEST)
	gl.Disable(gl.BLEND)

	sw, sh := c.scene.Size()
	gl.BindFramebuffer(gl.FRAMEBUFFER, c.scene.FBO())
	gl.Viewport(0, 0, int32(sw), int32(sh))
	gl.ClearColor(0, 0, 0, 1)
	gl.Clear(gl.COLOR_BUFFER_BIT)

	c.shader.Use()
	c.uniforms.Apply(FrameInputs{
		Time:       time,
		Resolution: [2]float32{float32(sw), float32(sh)},
		Mouse:      mouse,
	})
	c.quad.Draw()

	gl.BindFramebuffer(gl.FRAMEBUFFER, dst)
	gl.Viewport(0, 0, int32(c.width), int32(c.height))
	gl.Clear(gl.COLOR_BUFFER_BIT)

	c.blit.Use()
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, c.scene.Texture())
	if c.blitFrame >= 0 {
		gl.Uniform1i(c.blitFrame, 0)
	}
	if c.blitTransform >= 0 {
		aw, ah := c.scene.Allocated()
		tr := TextureTransform(sw, sh, aw, ah)
		gl.Uniform4f(c.blitTransform, tr[0], tr[1], tr[2], tr[3])
	}
	c.quad.Draw()

	gl.BindTexture(gl.TEXTURE_2D, 0)
	gl.UseProgram(0)
}

// Delete releases every GL object the compositor owns.
func (c *Compositor) Delete() {
	if c.scene != nil {
		c.scene.Delete()
		c.scene = nil
	}
	if c.quad != nil {
		c.quad.Delete()
		c.quad = nil
	}
	if c.blit != nil {
		c.blit.Delete()
		c.blit = nil
	}
	if c.shader != nil {
		c.shader.Delete()
		c.shader = nil
	}
}
