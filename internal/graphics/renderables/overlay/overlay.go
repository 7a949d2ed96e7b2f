package overlay

import (
	"fmt"
	"log"
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"datatex/internal/config"
	"datatex/internal/graphics"
	"datatex/internal/graphics/renderer"
	"datatex/internal/profiling"
)

// Overlay draws per-frame stats as text in the top-left corner.
// Extra lines come from the statsFn callback so the overlay stays
// decoupled from whatever is being rendered.
type Overlay struct {
	fontPath   string
	fontPixels int
	winWidth   int
	winHeight  int
	statsFn    func() []string

	font  *graphics.FontRenderer
	atlas *graphics.FontAtlasInfo

	frameHistory []time.Duration
}

func New(fontPath string, winWidth, winHeight int, statsFn func() []string) *Overlay {
	return &Overlay{
		fontPath:   fontPath,
		fontPixels: 18,
		winWidth:   winWidth,
		winHeight:  winHeight,
		statsFn:    statsFn,
	}
}

// Init builds the font atlas. A missing or unreadable font disables the
// overlay instead of failing the whole renderer.
func (o *Overlay) Init() error {
	atlas, err := graphics.BuildFontAtlas(o.fontPath, o.fontPixels)
	if err != nil {
		log.Printf("overlay disabled: %v", err)
		return nil
	}
	font, err := graphics.NewFontRenderer(atlas, o.winWidth, o.winHeight)
	if err != nil {
		log.Printf("overlay disabled: %v", err)
		return nil
	}
	o.atlas = atlas
	o.font = font
	return nil
}

func (o *Overlay) Render(ctx renderer.RenderContext) {
	if o.font == nil || !config.GetShowOverlay() {
		return
	}

	frame := time.Duration(ctx.DT * float64(time.Second))
	if len(o.frameHistory) >= 60 {
		o.frameHistory = o.frameHistory[1:]
	}
	o.frameHistory = append(o.frameHistory, frame)
	var total time.Duration
	for _, d := range o.frameHistory {
		total += d
	}
	avg := total / time.Duration(len(o.frameHistory))

	fps := 0.0
	if avg > 0 {
		fps = float64(time.Second) / float64(avg)
	}

	lines := []string{
		fmt.Sprintf("FPS: %.0f (%.2f ms avg)", fps, float64(avg.Microseconds())/1000.0),
	}
	if o.statsFn != nil {
		lines = append(lines, o.statsFn()...)
	}
	if top := profiling.TopN(4); top != "" {
		lines = append(lines, "CPU: "+top)
	}

	o.font.RenderLines(lines, 10, 30, float32(o.fontPixels)+6, 1.0, mgl32.Vec3{1, 1, 1})
}

func (o *Overlay) Dispose() {
	if o.font != nil {
		o.font.Dispose()
		o.font = nil
	}
}

func (o *Overlay) SetViewport(width, height int) {
	o.winWidth = width
	o.winHeight = height
	if o.font != nil {
		o.font.SetViewport(width, height)
	}
}
