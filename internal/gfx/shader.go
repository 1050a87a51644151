// Package gfx is the OpenGL side of shadow: shader programs, the fullscreen
// quad, offscreen render targets and the two-pass frame compositor.
//
// Every function in this package expects the caller's GL context to be
// current on the calling OS thread.
package gfx

import (
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/go-gl/gl/v3.3-core/gl"
	"github.com/pkg/errors"
)

// PositionAttrib is the attribute slot every program in this package reads
// the quad's vertices from.
const PositionAttrib = 0

var versionDirective = regexp.MustCompile(`(?m)^\s*#version\s+(\d+)(?:\s+(\w+))?`)

const legacyVertexShader = `attribute vec2 position;
varying vec2 surfacePosition;

void main() {
    surfacePosition = position;
    gl_Position = vec4(position * 2.0 - 1.0, 0.0, 1.0);
}
`

const modernVertexBody = `in vec2 position;
out vec2 surfacePosition;

void main() {
    surfacePosition = position;
    gl_Position = vec4(position * 2.0 - 1.0, 0.0, 1.0);
}
`

// LoadFragment reads a fragment shader from disk.
func LoadFragment(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", errors.Wrapf(err, "reading shader %s", path)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return "", errors.Errorf("shader %s is empty", path)
	}
	return string(data), nil
}

// VertexSourceFor returns a vertex shader whose GLSL version matches the
// fragment source. Fragments without a #version directive (the glslsandbox
// dialect) get a GLSL 1.10 vertex stage.
func VertexSourceFor(fragment string) string {
	m := versionDirective.FindStringSubmatch(fragment)
	if m == nil {
		return legacyVertexShader
	}
	version, err := strconv.Atoi(m[1])
	if err != nil || version < 130 {
		return legacyVertexShader
	}
	header := "#version " + m[1]
	if m[2] != "" {
		header += " " + m[2]
	}
	return header + "\n" + modernVertexBody
}

// Program is a linked GL program.
type Program struct {
	ID uint32
}

// NewProgram compiles and links a vertex/fragment pair. Attribute names in
// attribs are bound to their slots before linking.
func NewProgram(vertexSrc, fragmentSrc string, attribs map[uint32]string) (*Program, error) {
	vertexShader, err := compileShader(vertexSrc, gl.VERTEX_SHADER)
	if err != nil {
		return nil, err
	}
	defer gl.DeleteShader(vertexShader)

	fragmentShader, err := compileShader(fragmentSrc, gl.FRAGMENT_SHADER)
	if err != nil {
		return nil, err
	}
	defer gl.DeleteShader(fragmentShader)

	program := gl.CreateProgram()
	gl.AttachShader(program, vertexShader)
	gl.AttachShader(program, fragmentShader)
	for slot, name := range attribs {
		gl.BindAttribLocation(program, slot, gl.Str(name+"\x00"))
	}
	gl.LinkProgram(program)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		msg := infoLog(program, gl.GetProgramiv, gl.GetProgramInfoLog)
		gl.DeleteProgram(program)
		return nil, errors.Errorf("linking shader program: %s", msg)
	}

	gl.DetachShader(program, vertexShader)
	gl.DetachShader(program, fragmentShader)
	return &Program{ID: program}, nil
}

// NewShaderProgram builds the user's fragment shader with a matching vertex stage.
func NewShaderProgram(fragment string) (*Program, error) {
	return NewProgram(VertexSourceFor(fragment), fragment, map[uint32]string{PositionAttrib: "position"})
}

// Use makes p the active program.
func (p *Program) Use() {
	gl.UseProgram(p.ID)
}

// Uniform returns the location of name, or -1 when the program lacks it.
func (p *Program) Uniform(name string) int32 {
	return gl.GetUniformLocation(p.ID, gl.Str(name+"\x00"))
}

// Delete releases the program.
func (p *Program) Delete() {
	if p.ID != 0 {
		gl.DeleteProgram(p.ID)
		p.ID = 0
	}
}

func compileShader(source string, shaderType uint32) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	csources, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csources, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		shaderTypeStr := "vertex"
		if shaderType == gl.FRAGMENT_SHADER {
			shaderTypeStr = "fragment"
		}
		msg := infoLog(shader, gl.GetShaderiv, gl.GetShaderInfoLog)
		gl.DeleteShader(shader)
		log.Debug("shader source", "type", shaderTypeStr, "source", source)
		return 0, errors.Errorf("compiling %s shader: %s", shaderTypeStr, msg)
	}
	return shader, nil
}

func infoLog(object uint32,
	getiv func(uint32, uint32, *int32),
	getLog func(uint32, int32, *int32, *uint8)) string {
	var logLength int32
	getiv(object, gl.INFO_LOG_LENGTH, &logLength)
	if logLength <= 1 {
		return "no info log"
	}
	logBytes := make([]byte, logLength)
	getLog(object, logLength, nil, &logBytes[0])
	return strings.TrimRight(string(logBytes), "\x00\n ")
}
