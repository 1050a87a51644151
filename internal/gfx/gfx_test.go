package gfx

import (
	"image"
	"strings"
	"testing"

	"github.com/danielfvm/shadow/internal/options"
	"github.com/go-gl/gl/v3.3-core/gl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScaledSize(t *testing.T) {
	tests := []struct {
		w, h    int
		quality float64
		wantW   int
		wantH   int
	}{
		{1920, 1080, 1, 1920, 1080},
		{1920, 1080, 0.5, 960, 540},
		{1921, 1081, 0.5, 960, 540},
		{3440, 1440, 0.01, 34, 14},
		{50, 50, 0.01, 1, 1},
		{1, 1, 0.01, 1, 1},
	}
	for _, tt := range tests {
		w, h := ScaledSize(tt.w, tt.h, tt.quality)
		assert.Equal(t, tt.wantW, w, "%dx%d@%v", tt.w, tt.h, tt.quality)
		assert.Equal(t, tt.wantH, h, "%dx%d@%v", tt.w, tt.h, tt.quality)
	}
}

func TestTextureTransform(t *testing.T) {
	assert.Equal(t, [4]float32{1, 1, 0, 0}, TextureTransform(640, 480, 640, 480))
	assert.Equal(t, [4]float32{0.5, 0.25, 0, 0}, TextureTransform(320, 120, 640, 480))
	assert.Equal(t, [4]float32{1, 1, 0, 0}, TextureTransform(10, 10, 0, 0))
}

func TestNormalizeMouse(t *testing.T) {
	assert.Equal(t, [2]float32{0, 1}, NormalizeMouse(0, 0, 1920, 1080))
	assert.Equal(t, [2]float32{0.5, 0.5}, NormalizeMouse(960, 540, 1920, 1080))
	assert.Equal(t, [2]float32{1, 0}, NormalizeMouse(1920, 1080, 1920, 1080))
	assert.Equal(t, [2]float32{}, NormalizeMouse(5, 5, 0, 0))
}

func TestVertexSourceFor(t *testing.T) {
	sandbox := "precision mediump float;\nuniform float time;\nvoid main() { gl_FragColor = vec4(time); }"
	assert.Equal(t, legacyVertexShader, VertexSourceFor(sandbox))
	assert.Equal(t, legacyVertexShader, VertexSourceFor("#version 120\nvoid main() {}"))

	modern := VertexSourceFor("// plasma\n#version 330 core\nout vec4 color;\nvoid main() {}")
	assert.True(t, strings.HasPrefix(modern, "#version 330 core\n"))
	assert.Contains(t, modern, "in vec2 position;")
	assert.Contains(t, modern, "out vec2 surfacePosition;")

	es := VertexSourceFor("#version 300 es\nprecision highp float;\nvoid main() {}")
	assert.True(t, strings.HasPrefix(es, "#version 300 es\n"))

	bare := VertexSourceFor("#version 150\nvoid main() {}")
	assert.True(t, strings.HasPrefix(bare, "#version 150\nin vec2"))
}

func TestPixelBufferReusesStorage(t *testing.T) {
	var b PixelBuffer
	b.Resize(64, 32)
	require.Len(t, b.Pix, 64*32*BytesPerPixel)

	first := &b.Pix[0]
	b.Resize(64, 32)
	assert.Same(t, first, &b.Pix[0])

	b.Resize(32, 32)
	assert.Len(t, b.Pix, 32*32*BytesPerPixel)
	assert.Same(t, first, &b.Pix[0])

	b.Resize(128, 128)
	assert.Len(t, b.Pix, 128*128*BytesPerPixel)

	b.Release()
	assert.Nil(t, b.Pix)
	assert.Zero(t, b.Width)
}

func TestFilterParam(t *testing.T) {
	assert.Equal(t, int32(gl.LINEAR), FilterParam(options.FilterSmooth))
	assert.Equal(t, int32(gl.NEAREST), FilterParam(options.FilterPixel))
}

func TestRasterize(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 128, 16))
	Rasterize(img, "60 fps")

	lit := 0
	for i := 0; i < len(img.Pix); i += 4 {
		if img.Pix[i] != 0 {
			lit++
		}
	}
	assert.Positive(t, lit)

	Rasterize(img, "")
	for i := 0; i < len(img.Pix); i++ {
		require.Zero(t, img.Pix[i])
	}
}
