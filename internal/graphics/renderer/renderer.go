package renderer

import (
	"github.com/go-gl/gl/v4.1-core/gl"

	"datatex/internal/graphics"
	"datatex/internal/profiling"
)

// Renderer orchestrates rendering via renderable features
type Renderer struct {
	renderables []Renderable
	camera      *graphics.Camera
}

// NewRenderer creates a new renderer with the given renderables
func NewRenderer(width, height int, rs ...Renderable) (*Renderer, error) {
	// Configure OpenGL
	gl.Enable(gl.DEPTH_TEST)
	gl.Enable(gl.CULL_FACE)
	gl.CullFace(gl.BACK)
	gl.FrontFace(gl.CCW)

	renderer := &Renderer{
		renderables: rs,
		camera:      graphics.NewCamera(width, height),
	}

	// Initialize all renderables
	for _, r := range rs {
		if err := r.Init(); err != nil {
			return nil, err
		}
	}

	return renderer, nil
}

// Render executes one frame
func (r *Renderer) Render(dt float64) {
	profiling.ResetFrame()
	defer profiling.Track("renderer.Render")()

	gl.ClearColor(0.18, 0.2, 0.23, 1.0)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)

	ctx := RenderContext{
		Camera: r.camera,
		DT:     dt,
		View:   r.camera.GetViewMatrix(),
		Proj:   r.camera.GetProjectionMatrix(),
	}

	for _, renderable := range r.renderables {
		renderable.Render(ctx)
	}
}

// Dispose cleans up all renderables in reverse order
func (r *Renderer) Dispose() {
	for i := len(r.renderables) - 1; i >= 0; i-- {
		r.renderables[i].Dispose()
	}
}

// GetCamera returns the camera instance
func (r *Renderer) GetCamera() *graphics.Camera {
	return r.camera
}

// UpdateViewport updates the camera's viewport dimensions
func (r *Renderer) UpdateViewport(width, height int) {
	r.camera.SetViewport(width, height)
	for _, renderable := range r.renderables {
		renderable.SetViewport(width, height)
	}
}
