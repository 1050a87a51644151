package gfx

import "math"

// ScaledSize returns the offscreen render size for a destination of w x h at
// the given quality: floor(w*q) x floor(h*q), never smaller than 1x1.
func ScaledSize(w, h int, quality float64) (int, int) {
	sw := int(math.Floor(float64(w) * quality))
	sh := int(math.Floor(float64(h) * quality))
	return max(sw, 1), max(sh, 1)
}

// TextureTransform maps the composite quad's [0,1] texture coordinates onto the
// part of an allocated texture that the shader pass actually covered. The
// result is packed as (scaleX, scaleY, offsetX, offsetY). Both passes use GL's
// bottom-left origin, so the covered region always starts at (0, 0).
func TextureTransform(usedW, usedH, allocW, allocH int) [4]float32 {
	if allocW <= 0 || allocH <= 0 {
		return [4]float32{1, 1, 0, 0}
	}
	return [4]float32{
		float32(usedW) / float32(allocW),
		float32(usedH) / float32(allocH),
		0,
		0,
	}
}

// NormalizeMouse converts a root-relative pointer position into the [0,1]x[0,1]
// value handed to shaders. The vertical axis points up in every mode.
func NormalizeMouse(x, y, screenW, screenH int) [2]float32 {
	if screenW <= 0 || screenH <= 0 {
		return [2]float32{}
	}
	return [2]float32{
		float32(x) / float32(screenW),
		1 - float32(y)/float32(screenH),
	}
}
