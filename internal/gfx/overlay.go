package gfx

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/go-gl/gl/v3.3-core/gl"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const textVertexShader = `attribute vec2 position;
attribute vec2 texCoord;
uniform mat4 projection;
varying vec2 uv;

void main() {
    gl_Position = projection * vec4(position, 0.0, 1.0);
    uv = texCoord;
}
`

const textFragmentShader = `uniform sampler2D textTexture;
uniform vec3 textColor;
varying vec2 uv;

void main() {
    float a = texture2D(textTexture, uv).r;
    gl_FragColor = vec4(textColor, a);
}
`

const texCoordAttrib = 1

// TextOverlay draws a single line of white text in the top-left corner of
// the bound framebuffer.
type TextOverlay struct {
	program    *Program
	vao        uint32
	vbo        uint32
	texture    uint32
	projection int32
	textColor  int32
	img        *image.RGBA
	text       string
}

// NewTextOverlay builds the overlay program and buffers.
func NewTextOverlay() (*TextOverlay, error) {
	program, err := NewProgram(textVertexShader, textFragmentShader, map[uint32]string{
		PositionAttrib: "position",
		texCoordAttrib: "texCoord",
	})
	if err != nil {
		return nil, err
	}

	to := &TextOverlay{
		program:    program,
		projection: program.Uniform("projection"),
		textColor:  program.Uniform("textColor"),
		img:        image.NewRGBA(image.Rect(0, 0, 512, 16)),
	}

	gl.GenVertexArrays(1, &to.vao)
	gl.GenBuffers(1, &to.vbo)

	gl.BindVertexArray(to.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, to.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, 6*4*4, nil, gl.DYNAMIC_DRAW)

	gl.EnableVertexAttribArray(PositionAttrib)
	gl.VertexAttribPointer(PositionAttrib, 2, gl.FLOAT, false, 4*4, gl.PtrOffset(0))
	gl.EnableVertexAttribArray(texCoordAttrib)
	gl.VertexAttribPointer(texCoordAttrib, 2, gl.FLOAT, false, 4*4, gl.PtrOffset(2*4))

	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindVertexArray(0)

	gl.GenTextures(1, &to.texture)
	gl.BindTexture(gl.TEXTURE_2D, to.texture)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	gl.BindTexture(gl.TEXTURE_2D, 0)

	return to, nil
}

// Rasterize renders text into img with basicfont.Face7x13, starting at the
// top-left corner.
func Rasterize(img *image.RGBA, text string) {
	draw.Draw(img, img.Bounds(), image.Transparent, image.Point{}, draw.Src)
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.RGBA{255, 255, 255, 255}),
		Face: basicfont.Face7x13,
		Dot:  fixed.Point26_6{X: fixed.I(2), Y: fixed.I(basicfont.Face7x13.Ascent + 1)},
	}
	d.DrawString(text)
}

// Draw renders text at (x, y) pixels from the top-left of a viewport of
// width x height. The texture is only re-uploaded when text changes.
func (to *TextOverlay) Draw(text string, x, y float32, width, height int) {
	if text != to.text {
		Rasterize(to.img, text)
		gl.BindTexture(gl.TEXTURE_2D, to.texture)
		gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, int32(to.img.Rect.Dx()), int32(to.img.Rect.Dy()),
			0, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(to.img.Pix))
		to.text = text
	}

	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)

	w := float32(to.img.Rect.Dx())
	h := float32(to.img.Rect.Dy())

	// Y is inverted so (0,0) is the top-left corner.
	projection := []float32{
		2.0 / float32(width), 0, 0, 0,
		0, -2.0 / float32(height), 0, 0,
		0, 0, -1, 0,
		-1, 1, 0, 1,
	}

	to.program.Use()
	gl.UniformMatrix4fv(to.projection, 1, false, &projection[0])
	gl.Uniform3f(to.textColor, 1.0, 1.0, 1.0)

	// Image row 0 is the top of the text, matching texture row 0.
	vertices := []float32{
		x, y + h, 0.0, 1.0,
		x, y, 0.0, 0.0,
		x + w, y, 1.0, 0.0,
		x, y + h, 0.0, 1.0,
		x + w, y, 1.0, 0.0,
		x + w, y + h, 1.0, 1.0,
	}

	gl.BindVertexArray(to.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, to.vbo)
	gl.BufferSubData(gl.ARRAY_BUFFER, 0, len(vertices)*4, gl.Ptr(vertices))

	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, to.texture)
	gl.DrawArrays(gl.TRIANGLES, 0, 6)

	gl.BindVertexArray(0)
	gl.BindTexture(gl.TEXTURE_2D, 0)
	gl.UseProgram(0)
	gl.Disable(gl.BLEND)
}

// Delete releases the overlay's GL objects.
func (to *TextOverlay) Delete() {
	gl.DeleteTextures(1, &to.texture)
	gl.DeleteBuffers(1, &to.vbo)
	gl.DeleteVertexArrays(1, &to.vao)
	to.program.Delete()
}
