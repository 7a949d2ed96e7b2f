package renderer

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"

	"datatex/internal/graphics"
)

// RenderContext provides shared context for all renderables
type RenderContext struct {
	Camera *graphics.Camera
	DT     float64
	// View is the world-space view matrix; renderables with an RTC origin
	// rebase it themselves.
	View mgl64.Mat4
	Proj mgl32.Mat4
}

// Renderable interface defines the lifecycle for renderable features
type Renderable interface {
	Init() error
	Render(ctx RenderContext)
	Dispose()
	SetViewport(width, height int)
}
