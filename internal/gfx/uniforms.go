package gfx

import "github.com/go-gl/gl/v3.3-core/gl"

// FrameInputs are the per-frame values every shader may read.
type FrameInputs struct {
	Time       float32    // seconds, scaled by speed
	Resolution [2]float32 // offscreen render size in pixels
	Mouse      [2]float32 // normalized pointer position
}

// Uniforms caches the locations of the time, resolution and mouse uniforms.
// A location of -1 means the shader does not declare (or optimized away) the
// uniform and it is skipped.
type Uniforms struct {
	Time       int32
	Resolution int32
	Mouse      int32
}

// LocateUniforms looks the standard uniforms up in p.
func LocateUniforms(p *Program) Uniforms {
	return Uniforms{
		Time:       p.Uniform("time"),
		Resolution: p.Uniform("resolution"),
		Mouse:      p.Uniform("mouse"),
	}
}

// Apply uploads in to the currently bound program.
func (u Uniforms) Apply(in FrameInputs) {
	if u.Time >= 0 {
		gl.Uniform1f(u.Time, in.Time)
	}
	if u.Resolution >= 0 {
		gl.Uniform2f(u.Resolution, in.Resolution[0], in.Resolution[1])
	}
	if u.Mouse >= 0 {
		gl.Uniform2f(u.Mouse, in.Mouse[0], in.Mouse[1])
	}
}
