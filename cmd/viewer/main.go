package main

import (
	"flag"
	"log"
	"runtime"
	"time"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/xlab/closer"

	"datatex/internal/config"
	"datatex/internal/graphics/renderables/overlay"
	"datatex/internal/graphics/renderer"
	"datatex/internal/scene"
)

const (
	winWidth  = 1280
	winHeight = 800
)

func init() {
	runtime.LockOSThread()
}

func main() {
	gridSize := flag.Int("grid", 24, "sample grid dimension (n x n boxes)")
	fontPath := flag.String("font", "/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf", "TTF font for the stats overlay")
	fpsLimit := flag.Int("fps", 0, "frame cap, 0 = uncapped")
	flag.Parse()

	config.SetFPSLimit(*fpsLimit)

	if err := glfw.Init(); err != nil {
		log.Fatalf("glfw init: %v", err)
	}
	closer.Bind(glfw.Terminate)

	window, err := setupWindow()
	if err != nil {
		log.Fatalf("window: %v", err)
	}

	if err := gl.Init(); err != nil {
		log.Fatalf("gl init: %v", err)
	}

	model, err := scene.BuildSampleGrid(*gridSize)
	if err != nil {
		log.Fatalf("sample scene: %v", err)
	}

	stats := overlay.New(*fontPath, winWidth, winHeight, model.StatsLines)

	r, err := renderer.NewRenderer(winWidth, winHeight, model, stats)
	if err != nil {
		log.Fatalf("renderer: %v", err)
	}
	closer.Bind(r.Dispose)

	// Aim the camera at the grid center; the model sits far from the world
	// origin so the view matrix is rebased per frame.
	cam := r.GetCamera()
	center := float64(*gridSize-1) * 1.6 / 2
	cam.Target = mgl64.Vec3{2500000, 0, -1200000}.Add(mgl64.Vec3{center, 0, center})

	window.SetFramebufferSizeCallback(func(w *glfw.Window, width, height int) {
		gl.Viewport(0, 0, int32(width), int32(height))
		r.UpdateViewport(width, height)
	})

	loop := newViewerLoop(window, r, model, *gridSize)
	setupInput(window, loop)
	loop.run()

	closer.Close()
}

func setupWindow() (*glfw.Window, error) {
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)

	window, err := glfw.CreateWindow(winWidth, winHeight, "datatex viewer", nil, nil)
	if err != nil {
		return nil, err
	}
	window.MakeContextCurrent()
	glfw.SwapInterval(0)

	return window, nil
}

type viewerLoop struct {
	window   *glfw.Window
	renderer *renderer.Renderer
	model    *scene.Model
	gridSize int

	limiter  *FPSLimiter
	lastTime time.Time

	orbiting bool
	yawDeg   float64
	pitchDeg float64
	radius   float64
}

func newViewerLoop(window *glfw.Window, r *renderer.Renderer, m *scene.Model, gridSize int) *viewerLoop {
	return &viewerLoop{
		window:   window,
		renderer: r,
		model:    m,
		gridSize: gridSize,
		limiter:  NewFPSLimiter(),
		lastTime: time.Now(),
		orbiting: true,
		yawDeg:   35,
		pitchDeg: 28,
		radius:   float64(gridSize) * 2.2,
	}
}

func (v *viewerLoop) run() {
	for !v.window.ShouldClose() {
		now := time.Now()
		dt := now.Sub(v.lastTime).Seconds()
		v.lastTime = now

		if v.orbiting {
			v.yawDeg += dt * 12
		}
		v.renderer.GetCamera().Orbit(v.radius, v.yawDeg, v.pitchDeg)

		v.renderer.Render(dt)

		v.window.SwapBuffers()
		glfw.PollEvents()
		v.limiter.Wait()
	}
}
