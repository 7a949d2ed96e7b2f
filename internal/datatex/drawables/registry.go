package drawables

import (
	"github.com/go-gl/gl/v4.1-core/gl"

	"datatex/internal/datatex"
	"datatex/internal/profiling"
)

// Registry lazily compiles and caches one Drawable per program family and
// implements datatex.LayerRenderers. One registry is shared by every layer
// of a GL context.
type Registry struct {
	drawables map[datatex.ProgramKind]*Drawable
	vao       uint32
}

// NewRegistry creates an empty registry. Requires a current GL context;
// core profile needs a vertex array bound even for attribute-less draws.
func NewRegistry() *Registry {
	r := &Registry{drawables: make(map[datatex.ProgramKind]*Drawable)}
	gl.GenVertexArrays(1, &r.vao)
	return r
}

func (r *Registry) drawable(kind datatex.ProgramKind) *Drawable {
	if d, ok := r.drawables[kind]; ok {
		return d
	}
	spec, ok := specFor(kind)
	if !ok {
		return nil
	}
	d := newDrawable(spec)
	r.drawables[kind] = d
	return d
}

// DrawLayer implements datatex.LayerRenderers
func (r *Registry) DrawLayer(frame *datatex.FrameContext, layer *datatex.Layer, prog datatex.ProgramKind, pass datatex.RenderPass) {
	d := r.drawable(prog)
	if d == nil || !d.Valid() {
		return
	}
	defer profiling.Track("drawables." + d.spec.Name)()

	gl.BindVertexArray(r.vao)
	d.DrawLayer(frame, layer, pass)
	gl.BindVertexArray(0)
}

// Dispose releases all compiled programs and the shared vertex array.
func (r *Registry) Dispose() {
	for _, d := range r.drawables {
		d.Dispose()
	}
	r.drawables = make(map[datatex.ProgramKind]*Drawable)
	if r.vao != 0 {
		gl.DeleteVertexArrays(1, &r.vao)
		r.vao = 0
	}
}
