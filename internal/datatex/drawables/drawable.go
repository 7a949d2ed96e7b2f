package drawables

import (
	"log"

	"github.com/go-gl/gl/v4.1-core/gl"

	"datatex/internal/datatex"
	"datatex/internal/graphics"
)

// Drawable is one compiled render-pass program. A drawable whose program
// failed to build stays usable but invalid: draw calls on it are silently
// skipped so a missing visual feature degrades instead of crashing the
// viewer.
type Drawable struct {
	spec   ProgramSpec
	shader *graphics.Shader
	valid  bool
}

func newDrawable(spec ProgramSpec) *Drawable {
	shader, err := graphics.NewShader(BuildVertexSource(spec), BuildFragmentSource(spec))
	if err != nil {
		log.Printf("drawable %s: program build failed: %v", spec.Name, err)
		return &Drawable{spec: spec}
	}
	return &Drawable{spec: spec, shader: shader, valid: true}
}

// Valid reports whether the underlying program compiled and linked.
func (d *Drawable) Valid() bool { return d.valid }

// Dispose releases the program.
func (d *Drawable) Dispose() {
	if d.shader != nil {
		d.shader.Delete()
	}
	d.valid = false
}

func (d *Drawable) bindTexture(unit int32, name string, t *datatex.DataTexture) {
	gl.ActiveTexture(uint32(gl.TEXTURE0 + unit))
	gl.BindTexture(gl.TEXTURE_2D, t.Handle())
	d.shader.SetInt(name, unit)
}

// DrawLayer binds the layer's texture set and issues one draw per
// non-empty index family. The caller has already gated on the layer's
// aggregate counters.
func (d *Drawable) DrawLayer(frame *datatex.FrameContext, layer *datatex.Layer, pass datatex.RenderPass) {
	if !d.valid {
		return
	}
	state := layer.State()
	if state == nil {
		return
	}

	d.shader.Use()

	view := frame.View
	proj := frame.Proj
	d.shader.SetMatrix4("uViewMatrix", &view[0])
	d.shader.SetMatrix4("uProjMatrix", &proj[0])
	d.shader.SetInt("uRenderPass", int32(pass))

	if d.spec.PickClipTransform {
		pct := frame.PickClipTransform
		d.shader.SetMatrix4("uPickClipTransform", &pct[0])
	}
	if d.spec.UniformColor {
		c := frame.SilhouetteColor
		d.shader.SetVector4("uSilhouetteColor", c[0], c[1], c[2], c[3])
	}
	if d.spec.Clippable {
		planes := frame.SectionPlanes
		if len(planes) > datatex.MaxSectionPlanes {
			planes = planes[:datatex.MaxSectionPlanes]
		}
		d.shader.SetInt("uNumSectionPlanes", int32(len(planes)))
		for i, p := range planes {
			idx := string(rune('0' + i))
			d.shader.SetVector3("uSectionPlanePos["+idx+"]", p.Pos.X(), p.Pos.Y(), p.Pos.Z())
			d.shader.SetVector3("uSectionPlaneDir["+idx+"]", p.Dir.X(), p.Dir.Y(), p.Dir.Z())
		}
	}

	d.bindTexture(0, "uObjectAttrs", state.ObjectAttrs)
	d.bindTexture(1, "uObjectMatrices", state.ObjectMatrices)
	d.bindTexture(2, "uObjectDecodeMatrices", state.ObjectDecodeMatrices)
	d.bindTexture(3, "uObjectOffsets", state.ObjectOffsets)
	d.bindTexture(4, "uPositions", state.Positions)

	for bits := datatex.Bits8; bits <= datatex.Bits32; bits++ {
		if d.spec.Edges {
			n := layer.NumEdgeSegments(bits)
			if n == 0 || state.EdgeIndices[bits] == nil || state.EdgeToObject[bits] == nil {
				continue
			}
			d.bindTexture(5, "uEdgeIndices", state.EdgeIndices[bits])
			d.bindTexture(6, "uEdgeToObject", state.EdgeToObject[bits])
			gl.DrawArrays(gl.LINES, 0, int32(n*2))
		} else {
			n := layer.NumPolygons(bits)
			if n == 0 || state.Indices[bits] == nil || state.PrimToObject[bits] == nil {
				continue
			}
			d.bindTexture(5, "uIndices", state.Indices[bits])
			d.bindTexture(6, "uPrimToObject", state.PrimToObject[bits])
			gl.DrawArrays(gl.TRIANGLES, 0, int32(n*3))
		}
	}
}
