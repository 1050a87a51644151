package gfx

import (
	"github.com/go-gl/gl/v3.3-core/gl"
	"github.com/pkg/errors"
)

// RenderTarget is a framebuffer object with a single RGBA color texture.
// Storage only grows: shrinking keeps the allocation and marks a smaller
// region as used, so interactive window resizes do not reallocate every frame.
type RenderTarget struct {
	fbo     uint32
	texture uint32
	width   int
	height  int
	allocW  int
	allocH  int
}

// NewRenderTarget allocates a w x h target. filter is the texture's
// magnification and minification filter (gl.LINEAR or gl.NEAREST).
func NewRenderTarget(w, h int, filter int32) (*RenderTarget, error) {
	t := &RenderTarget{}
	gl.GenTextures(1, &t.texture)
	gl.BindTexture(gl.TEXTURE_2D, t.texture)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, filter)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, filter)
	gl.BindTexture(gl.TEXTURE_2D, 0)

	gl.GenFramebuffers(1, &t.fbo)
	if err := t.Resize(w, h); err != nil {
		t.Delete()
		return nil, err
	}
	return t, nil
}

// Resize sets the used size, reallocating the texture storage when it no
// longer fits.
func (t *RenderTarget) Resize(w, h int) error {
	if w <= 0 || h <= 0 {
		return errors.Errorf("invalid render target size %dx%d", w, h)
	}
	if w <= t.allocW && h <= t.allocH {
		t.width, t.height = w, h
		return nil
	}
	aw, ah := max(w, t.allocW), max(h, t.allocH)

	gl.BindTexture(gl.TEXTURE_2D, t.texture)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, int32(aw), int32(ah), 0, gl.RGBA, gl.UNSIGNED_BYTE, nil)
	gl.BindTexture(gl.TEXTURE_2D, 0)

	gl.BindFramebuffer(gl.FRAMEBUFFER, t.fbo)
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, t.texture, 0)
	status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	if status != gl.FRAMEBUFFER_COMPLETE {
		return errors.Errorf("framebuffer incomplete (status 0x%x) at %dx%d", status, aw, ah)
	}

	t.allocW, t.allocH = aw, ah
	t.width, t.height = w, h
	return nil
}

// Size returns the used size.
func (t *RenderTarget) Size() (int, int) {
	return t.width, t.height
}

// Allocated returns the size of the texture storage.
func (t *RenderTarget) Allocated() (int, int) {
	return t.allocW, t.allocH
}

// FBO returns the framebuffer name.
func (t *RenderTarget) FBO() uint32 {
	return t.fbo
}

// Texture returns the color attachment.
func (t *RenderTarget) Texture() uint32 {
	return t.texture
}

// Delete releases the framebuffer and its texture.
func (t *RenderTarget) Delete() {
	if t.fbo != 0 {
		gl.DeleteFramebuffers(1, &t.fbo)
	}
	if t.texture != 0 {
		gl.DeleteTextures(1, &t.texture)
	}
	*t = RenderTarget{}
}
