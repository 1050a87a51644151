package gfx

import "github.com/go-gl/gl/v3.3-core/gl"

// BytesPerPixel of a read-back frame.
const BytesPerPixel = 4

// PixelBuffer is a CPU copy of a rendered frame in BGRA order with rows
// bottom-up, exactly as glReadPixels returns them. The backing slice is kept
// between frames and only reallocated when the size changes.
type PixelBuffer struct {
	Pix    []byte
	Width  int
	Height int
}

// Resize makes the buffer hold w x h pixels.
func (b *PixelBuffer) Resize(w, h int) {
	if w == b.Width && h == b.Height && b.Pix != nil {
		return
	}
	n := w * h * BytesPerPixel
	if cap(b.Pix) >= n {
		b.Pix = b.Pix[:n]
	} else {
		b.Pix = make([]byte, n)
	}
	b.Width, b.Height = w, h
}

// ReadFramebuffer copies the color attachment of fbo into the buffer. The
// call blocks until the GPU has finished rendering into fbo.
func (b *PixelBuffer) ReadFramebuffer(fbo uint32) {
	if len(b.Pix) == 0 {
		return
	}
	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, fbo)
	gl.PixelStorei(gl.PACK_ALIGNMENT, 4)
	gl.ReadPixels(0, 0, int32(b.Width), int32(b.Height), gl.BGRA, gl.UNSIGNED_BYTE, gl.Ptr(b.Pix))
	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, 0)
}

// Release drops the backing storage.
func (b *PixelBuffer) Release() {
	*b = PixelBuffer{}
}
