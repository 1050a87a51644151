package gfx

import (
	"os"
	"runtime"
	"testing"

	"github.com/danielfvm/shadow/internal/options"
	"github.com/go-gl/gl/v3.3-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const solidRed = `void main() {
    gl_FragColor = vec4(1.0, 0.0, 0.0, 1.0);
}
`

const uniformEcho = `uniform float time;
uniform vec2 resolution;
uniform vec2 mouse;

void main() {
    gl_FragColor = vec4(mouse.x, step(640.0, resolution.x), time, 1.0);
}
`

// glContext makes a hidden window's GL context current, skipping the test
// when no display or driver is available.
func glContext(t *testing.T) {
	t.Helper()
	if os.Getenv("DISPLAY") == "" {
		t.Skip("no X display")
	}
	runtime.LockOSThread()
	t.Cleanup(runtime.UnlockOSThread)
	if err := glfw.Init(); err != nil {
		t.Skipf("glfw unavailable: %v", err)
	}
	glfw.DefaultWindowHints()
	glfw.WindowHint(glfw.Visible, glfw.False)
	win, err := glfw.CreateWindow(1, 1, "shadow-test", nil, nil)
	if err != nil {
		glfw.Terminate()
		t.Skipf("no GL window: %v", err)
	}
	win.MakeContextCurrent()
	if err := gl.Init(); err != nil {
		win.Destroy()
		glfw.Terminate()
		t.Skipf("no GL: %v", err)
	}
	t.Cleanup(func() {
		win.Destroy()
		glfw.Terminate()
	})
}

// renderOnce draws fragment into a fresh w x h target and reads it back.
func renderOnce(t *testing.T, fragment string, w, h int, quality float64, time float32, mouse [2]float32) PixelBuffer {
	t.Helper()
	comp, err := NewCompositor(fragment, w, h, quality, options.FilterSmooth)
	require.NoError(t, err)
	defer comp.Delete()

	target, err := NewRenderTarget(w, h, gl.NEAREST)
	require.NoError(t, err)
	defer target.Delete()

	comp.Draw(target.FBO(), time, mouse)

	var buf PixelBuffer
	buf.Resize(w, h)
	buf.ReadFramebuffer(target.FBO())
	assert.Equal(t, uint32(gl.NO_ERROR), gl.GetError())
	return buf
}

func assertUniform(t *testing.T, buf PixelBuffer, want [4]byte) {
	t.Helper()
	for i := 0; i < len(buf.Pix); i += BytesPerPixel {
		px := buf.Pix[i : i+BytesPerPixel]
		for c := range want {
			if !assert.InDelta(t, int(want[c]), int(px[c]), 1, "pixel %d channel %d", i/BytesPerPixel, c) {
				return
			}
		}
	}
}

func TestCompositeSolidRed(t *testing.T) {
	glContext(t)

	buf := renderOnce(t, solidRed, 640, 480, 1, 0, [2]float32{})
	require.Len(t, buf.Pix, 640*480*BytesPerPixel)
	assertUniform(t, buf, [4]byte{0, 0, 255, 255})
}

func TestCompositeScaledStaysUniform(t *testing.T) {
	glContext(t)

	buf := renderOnce(t, solidRed, 300, 200, 0.1, 0, [2]float32{})
	assertUniform(t, buf, [4]byte{0, 0, 255, 255})
}

func TestCompositeAppliesUniforms(t *testing.T) {
	glContext(t)

	buf := renderOnce(t, uniformEcho, 640, 480, 1, 0.5, [2]float32{1, 0.25})
	assertUniform(t, buf, [4]byte{128, 255, 255, 255})
}

func TestLocateUniformsSkipsAbsent(t *testing.T) {
	glContext(t)

	p, err := NewShaderProgram(solidRed)
	require.NoError(t, err)
	defer p.Delete()

	u := LocateUniforms(p)
	assert.Equal(t, Uniforms{Time: -1, Resolution: -1, Mouse: -1}, u)

	p.Use()
	u.Apply(FrameInputs{Time: 3, Resolution: [2]float32{640, 480}, Mouse: [2]float32{0.5, 0.5}})
	assert.Equal(t, uint32(gl.NO_ERROR), gl.GetError())
}
