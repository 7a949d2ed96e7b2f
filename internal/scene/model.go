package scene

import (
	"fmt"
	"runtime"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"

	"datatex/internal/datatex"
	"datatex/internal/datatex/drawables"
	"datatex/internal/geometry"
	"datatex/internal/graphics"
	"datatex/internal/graphics/renderer"
	"datatex/internal/profiling"
)

// ObjectCfg describes one renderable object handed to the model builder.
type ObjectCfg struct {
	ID string

	// GeometryID shares uploaded geometry between objects (instancing).
	// Empty means the geometry is unique to this object.
	GeometryID string

	Positions []float64 // model-space x,y,z triples
	Indices   []uint32

	Matrix *mgl32.Mat4
	Color  [4]uint8
	Solid  bool
}

type pendingObject struct {
	cfg       ObjectCfg
	bucket    geometry.Bucket
	decode    mgl32.Mat4
	pickColor [4]uint8
}

type objectState struct {
	layer       *datatex.Layer
	portion     datatex.PortionID
	flags       datatex.PortionFlags
	transparent bool
}

// Model groups objects into data-texture layers and renders them as one
// renderable feature. Objects are added before Init; Init builds the GPU
// textures on the current GL context.
type Model struct {
	origin mgl64.Vec3

	// Headless skips program compilation and draw dispatch; textures land
	// in a MemTexWriter. For tools and tests without a GL context.
	Headless bool

	pending     []pendingObject
	objects     map[string]*objectState
	order       []string
	initialized bool

	layers   []*datatex.Layer
	registry *drawables.Registry
	writer   datatex.TexWriter

	// silhouette fills per emphasis pass
	XRayColor      [4]float32
	HighlightColor [4]float32
	SelectedColor  [4]float32
}

// NewModel creates an empty model with the given RTC origin.
func NewModel(origin mgl64.Vec3) *Model {
	return &Model{
		origin:         origin,
		objects:        make(map[string]*objectState),
		XRayColor:      [4]float32{0.55, 0.65, 0.85, 0.4},
		HighlightColor: [4]float32{1.0, 0.85, 0.2, 0.6},
		SelectedColor:  [4]float32{0.35, 1.0, 0.35, 0.6},
	}
}

// AddObject quantizes and queues one object. Must be called before Init.
func (m *Model) AddObject(cfg ObjectCfg) error {
	if m.initialized {
		return fmt.Errorf("model already initialized")
	}
	if _, ok := m.objects[cfg.ID]; ok {
		return fmt.Errorf("duplicate object id %q", cfg.ID)
	}

	aabb := geometry.EmptyAABB()
	for i := 0; i+2 < len(cfg.Positions); i += 3 {
		aabb.ExpandPoint(mgl64.Vec3{cfg.Positions[i], cfg.Positions[i+1], cfg.Positions[i+2]})
	}
	quantized, decode := geometry.QuantizePositions(cfg.Positions, aabb)

	n := len(m.pending) + 1
	m.pending = append(m.pending, pendingObject{
		cfg: cfg,
		bucket: geometry.Bucket{
			PositionsCompressed: quantized,
			Indices:             cfg.Indices,
		},
		decode:    decode,
		pickColor: [4]uint8{uint8(n), uint8(n >> 8), uint8(n >> 16), 255},
	})
	m.objects[cfg.ID] = &objectState{}
	m.order = append(m.order, cfg.ID)
	return nil
}

// Init implements renderer.Renderable. Runs bucket preparation on a worker
// pool, routes portions into layers by capacity, and finalizes the layers
// into GPU textures.
func (m *Model) Init() error {
	if m.Headless {
		m.writer = datatex.NewMemTexWriter()
	} else {
		m.writer = graphics.NewGLTexWriter()
		m.registry = drawables.NewRegistry()
	}
	m.initialized = true

	prepared := m.prepareBuckets()

	for i, p := range m.pending {
		cfg := datatex.PortionCfg{
			GeometryID:   p.cfg.GeometryID,
			Buckets:      []geometry.Bucket{prepared[i]},
			DecodeMatrix: p.decode,
			Matrix:       p.cfg.Matrix,
			Color:        p.cfg.Color,
			PickColor:    p.pickColor,
			Solid:        p.cfg.Solid,
		}

		layer, err := m.layerFor(cfg)
		if err != nil {
			return err
		}
		portion, err := layer.CreatePortion(cfg)
		if err != nil {
			return fmt.Errorf("object %q: %w", p.cfg.ID, err)
		}

		state := m.objects[p.cfg.ID]
		state.layer = layer
		state.portion = portion
	}

	for _, l := range m.layers {
		if err := l.Finalize(); err != nil {
			return err
		}
	}

	for _, p := range m.pending {
		if err := m.initObjectFlags(p.cfg); err != nil {
			return err
		}
	}
	m.pending = nil
	return nil
}

// prepareBuckets runs uniquify + edge derivation for every pending bucket
// on a worker pool and returns the results in submission order.
func (m *Model) prepareBuckets() []geometry.Bucket {
	pool := geometry.NewPrepPool(runtime.NumCPU(), len(m.pending)+1)
	defer pool.Shutdown()

	results := make(chan geometry.PrepResult, len(m.pending))
	for i, p := range m.pending {
		pool.SubmitJobBlocking(geometry.PrepJob{Key: i, Bucket: p.bucket, ResultChan: results})
	}

	prepared := make([]geometry.Bucket, len(m.pending))
	for range m.pending {
		res := <-results
		prepared[res.Key] = res.Bucket
	}
	return prepared
}

// layerFor returns an open layer with capacity for cfg, opening a new one
// when every existing layer reports capacity pressure.
func (m *Model) layerFor(cfg datatex.PortionCfg) (*datatex.Layer, error) {
	if n := len(m.layers); n > 0 {
		ok, err := m.layers[n-1].CanCreatePortion(cfg)
		if err != nil {
			return nil, err
		}
		if ok {
			return m.layers[n-1], nil
		}
	}
	layer := datatex.NewLayer(datatex.LayerCfg{
		Origin:    m.origin,
		Writer:    m.writer,
		Renderers: m.registry,
	})
	m.layers = append(m.layers, layer)
	return layer, nil
}

func (m *Model) initObjectFlags(cfg ObjectCfg) error {
	state := m.objects[cfg.ID]
	state.flags = datatex.FlagVisible | datatex.FlagPickable | datatex.FlagClippable
	state.transparent = cfg.Color[3] < 255

	l, p := state.layer, state.portion
	if err := l.SetVisible(p, state.flags, state.transparent); err != nil {
		return err
	}
	if err := l.SetPickable(p, state.flags, state.transparent); err != nil {
		return err
	}
	if err := l.SetClippable(p, state.flags); err != nil {
		return err
	}
	if state.transparent {
		if err := l.SetTransparent(p, state.flags, true); err != nil {
			return err
		}
	}
	return nil
}

func (m *Model) stateFor(id string) (*objectState, error) {
	state, ok := m.objects[id]
	if !ok {
		return nil, fmt.Errorf("no object %q", id)
	}
	if state.layer == nil {
		return nil, fmt.Errorf("model not initialized")
	}
	return state, nil
}

func (m *Model) setFlag(id string, bit datatex.PortionFlags, on bool,
	apply func(l *datatex.Layer, p datatex.PortionID, flags datatex.PortionFlags, transparent bool) error) error {
	state, err := m.stateFor(id)
	if err != nil {
		return err
	}
	if on == (state.flags&bit != 0) {
		return nil // no transition
	}
	if on {
		state.flags |= bit
	} else {
		state.flags &^= bit
	}
	return apply(state.layer, state.portion, state.flags, state.transparent)
}

// SetVisible shows or hides one object.
func (m *Model) SetVisible(id string, visible bool) error {
	return m.setFlag(id, datatex.FlagVisible, visible, (*datatex.Layer).SetVisible)
}

// SetXRayed toggles xray emphasis on one object.
func (m *Model) SetXRayed(id string, xrayed bool) error {
	return m.setFlag(id, datatex.FlagXRayed, xrayed, (*datatex.Layer).SetXRayed)
}

// SetHighlighted toggles highlight emphasis on one object.
func (m *Model) SetHighlighted(id string, highlighted bool) error {
	return m.setFlag(id, datatex.FlagHighlighted, highlighted, (*datatex.Layer).SetHighlighted)
}

// SetSelected toggles selection emphasis on one object.
func (m *Model) SetSelected(id string, selected bool) error {
	return m.setFlag(id, datatex.FlagSelected, selected, (*datatex.Layer).SetSelected)
}

// SetEdges toggles edge emphasis on one object.
func (m *Model) SetEdges(id string, edges bool) error {
	return m.setFlag(id, datatex.FlagEdges, edges, (*datatex.Layer).SetEdges)
}

// SetCulled marks one object culled, e.g. from a frustum sweep.
func (m *Model) SetCulled(id string, culled bool) error {
	return m.setFlag(id, datatex.FlagCulled, culled, (*datatex.Layer).SetCulled)
}

// SetColor rewrites one object's color, moving it between the opaque and
// transparent passes when the opacity crosses 255.
func (m *Model) SetColor(id string, color [4]uint8) error {
	state, err := m.stateFor(id)
	if err != nil {
		return err
	}
	if err := state.layer.SetColor(state.portion, color); err != nil {
		return err
	}
	transparent := color[3] < 255
	if transparent != state.transparent {
		state.transparent = transparent
		return state.layer.SetTransparent(state.portion, state.flags, transparent)
	}
	return nil
}

// SetOffset moves one object by a world-space translation.
func (m *Model) SetOffset(id string, offset mgl32.Vec3) error {
	state, err := m.stateFor(id)
	if err != nil {
		return err
	}
	return state.layer.SetOffset(state.portion, offset)
}

// CullAll brackets a bulk cull sweep over every object in one deferred
// flags transaction per layer.
func (m *Model) CullAll(culled bool) error {
	for _, l := range m.layers {
		if err := l.BeginDeferredFlags(); err != nil {
			return err
		}
	}
	for _, id := range m.order {
		if err := m.SetCulled(id, culled); err != nil {
			return err
		}
	}
	for _, l := range m.layers {
		if err := l.CommitDeferredFlags(); err != nil {
			return err
		}
	}
	return nil
}

// Render implements renderer.Renderable: flushes deferred updates, then
// walks the render passes in compositing order.
func (m *Model) Render(ctx renderer.RenderContext) {
	defer profiling.Track("scene.Model.Render")()

	for _, l := range m.layers {
		if err := l.Flush(); err != nil {
			return
		}
	}
	if m.registry == nil {
		return
	}

	frame := datatex.NewFrameContext(
		datatex.RTCViewMatrix(ctx.View, m.origin),
		ctx.Proj,
		ctx.Camera.Eye,
	)

	for _, l := range m.layers {
		l.DrawColorOpaque(frame)
	}
	for _, l := range m.layers {
		l.DrawEdgesColorOpaque(frame)
	}

	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	gl.DepthMask(false)
	for _, l := range m.layers {
		l.DrawColorTransparent(frame)
	}
	for _, l := range m.layers {
		l.DrawEdgesColorTransparent(frame)
	}

	frame.SilhouetteColor = m.XRayColor
	for _, l := range m.layers {
		l.DrawSilhouetteXRayed(frame)
		l.DrawEdgesXRayed(frame)
	}
	frame.SilhouetteColor = m.HighlightColor
	for _, l := range m.layers {
		l.DrawSilhouetteHighlighted(frame)
		l.DrawEdgesHighlighted(frame)
	}
	frame.SilhouetteColor = m.SelectedColor
	for _, l := range m.layers {
		l.DrawSilhouetteSelected(frame)
		l.DrawEdgesSelected(frame)
	}
	gl.DepthMask(true)
	gl.Disable(gl.BLEND)
}

// DrawPick renders the pick-color pass for GPU picking.
func (m *Model) DrawPick(frame *datatex.FrameContext) {
	for _, l := range m.layers {
		l.DrawPickMesh(frame)
	}
}

// Dispose implements renderer.Renderable
func (m *Model) Dispose() {
	for _, l := range m.layers {
		l.Destroy()
	}
	m.layers = nil
	if m.registry != nil {
		m.registry.Dispose()
		m.registry = nil
	}
}

// SetViewport implements renderer.Renderable
func (m *Model) SetViewport(width, height int) {}

// NumLayers returns the number of layers the model's objects landed in.
func (m *Model) NumLayers() int { return len(m.layers) }

// StatsLines summarizes layer counters for the viewer overlay.
func (m *Model) StatsLines() []string {
	portions, visible, transparent, xrayed, highlighted, selected, culled := 0, 0, 0, 0, 0, 0, 0
	polygons, edgeSegments := 0, 0
	for _, l := range m.layers {
		portions += l.NumPortions()
		visible += l.NumVisible()
		transparent += l.NumTransparent()
		xrayed += l.NumXRayed()
		highlighted += l.NumHighlighted()
		selected += l.NumSelected()
		culled += l.NumCulled()
		for _, bits := range []datatex.BitWidth{datatex.Bits8, datatex.Bits16, datatex.Bits32} {
			polygons += l.NumPolygons(bits)
			edgeSegments += l.NumEdgeSegments(bits)
		}
	}
	return []string{
		fmt.Sprintf("Layers: %d | Objects: %d | Tris: %d | Edges: %d", len(m.layers), portions, polygons, edgeSegments),
		fmt.Sprintf("Visible: %d | Transp: %d | XRay: %d | Hilite: %d | Sel: %d | Culled: %d",
			visible, transparent, xrayed, highlighted, selected, culled),
	}
}
