package gfx

import "github.com/go-gl/gl/v3.3-core/gl"

// Quad is a unit square covering [0,1]x[0,1], drawn as two triangles. Its
// vertices double as texture coordinates.
type Quad struct {
	vao uint32
	vbo uint32
	ebo uint32
}

// NewQuad uploads the quad and wires it to PositionAttrib.
func NewQuad() *Quad {
	vertices := []float32{
		0.0, 0.0, // bottom left
		1.0, 0.0, // bottom right
		1.0, 1.0, // top right
		0.0, 1.0, // top left
	}
	indices := []uint32{
		0, 1, 2,
		0, 2, 3,
	}

	q := &Quad{}
	gl.GenVertexArrays(1, &q.vao)
	gl.GenBuffers(1, &q.vbo)
	gl.GenBuffers(1, &q.ebo)

	gl.BindVertexArray(q.vao)

	gl.BindBuffer(gl.ARRAY_BUFFER, q.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*4, gl.Ptr(vertices), gl.STATIC_DRAW)

	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, q.ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(indices)*4, gl.Ptr(indices), gl.STATIC_DRAW)

	gl.VertexAttribPointer(PositionAttrib, 2, gl.FLOAT, false, 2*4, gl.PtrOffset(0))
	gl.EnableVertexAttribArray(PositionAttrib)

	gl.BindVertexArray(0)
	return q
}

// Draw issues the two triangles with whatever program is bound.
func (q *Quad) Draw() {
	gl.BindVertexArray(q.vao)
	gl.DrawElements(gl.TRIANGLES, 6, gl.UNSIGNED_INT, gl.PtrOffset(0))
	gl.BindVertexArray(0)
}

// Delete releases the GL buffers.
func (q *Quad) Delete() {
	gl.DeleteBuffers(1, &q.ebo)
	gl.DeleteBuffers(1, &q.vbo)
	gl.DeleteVertexArrays(1, &q.vao)
	*q = Quad{}
}
