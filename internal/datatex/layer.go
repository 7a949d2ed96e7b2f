package datatex

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"

	"datatex/internal/geometry"
)

// Hard capacity invariants of one layer.
const (
	// MaxTextureSize is the data-texture edge length; vertex and index
	// counts are bounded by MaxTextureSize squared texels.
	MaxTextureSize = 4096

	// MaxObjects is the 16-bit object-id budget of the primitive-to-object
	// lookup textures.
	MaxObjects = 65536
)

const maxTexels = MaxTextureSize * MaxTextureSize

var (
	// ErrNotFinalized reports a mutator or draw-state call before Finalize.
	ErrNotFinalized = errors.New("layer not finalized")

	// ErrAlreadyFinalized reports accumulation calls after Finalize.
	ErrAlreadyFinalized = errors.New("layer already finalized")
)

// PortionID is the externally-visible id of one renderable object in a
// layer. It maps to one or more internal sub-portions.
type PortionID int

// PortionCfg describes one renderable object: one or more geometry buckets
// plus its transform, colors and solidity. Loaders supply it; the layer
// consumes it during accumulation.
type PortionCfg struct {
	// GeometryID keys bucket deduplication. Portions sharing a non-empty
	// GeometryID reuse the same uploaded geometry (instancing). Empty means
	// the geometry is unique to this portion.
	GeometryID string

	Buckets []geometry.Bucket

	// DecodeMatrix maps the buckets' quantized coordinates to model space.
	DecodeMatrix mgl32.Mat4

	// Matrix is the optional instancing transform.
	Matrix *mgl32.Mat4

	Color     [4]uint8 // RGB + opacity
	PickColor [4]uint8
	Solid     bool
}

// subPortion is one bucket instance inside the layer. Its packed record
// lives in the object attribute texture at index position; only bookkeeping
// stays on the CPU side.
type subPortion struct {
	bucket *bucketGeometry
	bits   BitWidth
}

type portion struct {
	subPortionIDs []int
	aabb          geometry.AABB
}

// LayerCfg configures a new layer.
type LayerCfg struct {
	// Origin is the relative-to-center reference point. World AABBs are
	// reported relative to world space; GPU coordinates stay origin-local.
	Origin mgl64.Vec3

	// Writer performs GPU texture traffic. Use the GL writer for rendering
	// and MemTexWriter for headless work.
	Writer TexWriter

	// Renderers issues draw calls. May be nil for headless layers.
	Renderers LayerRenderers
}

// Layer owns the data textures for a set of portions and the render-pass
// state machine over them. Accumulation (CreatePortion) and mutation
// (Set* methods) are separated by Finalize. Single-threaded by contract:
// one writer, one flush point.
type Layer struct {
	origin    mgl64.Vec3
	writer    TexWriter
	renderers LayerRenderers

	buffer           *buffer
	bucketGeometries map[string]*bucketGeometry
	subPortions      []subPortion
	portions         []portion
	finalized        bool

	state *DataTextureState

	// geometry accounting during accumulation
	numVertices       int
	numTriangles      [numBitWidths]int // index-texture texels (padded)
	numEdges          [numBitWidths]int
	numPolygons       [numBitWidths]int // drawn triangles incl. instances (padded)
	numEdgeSegments   [numBitWidths]int
	numUpdatesInFrame int

	// deferred flag-update transaction
	deferredActive bool
	attrsDirty     bool
	matricesDirty  bool
	offsetsDirty   bool

	// aggregate per-pass gating counters, in portion units
	numVisible     int
	numTransparent int
	numXRayed      int
	numHighlighted int
	numSelected    int
	numClippable   int
	numEdgesOn     int
	numPickable    int
	numCulled      int
}

// NewLayer creates an empty accumulating layer.
func NewLayer(cfg LayerCfg) *Layer {
	return &Layer{
		origin:           cfg.Origin,
		writer:           cfg.Writer,
		renderers:        cfg.Renderers,
		buffer:           newBuffer(),
		bucketGeometries: make(map[string]*bucketGeometry),
	}
}

// Origin returns the layer's RTC origin.
func (l *Layer) Origin() mgl64.Vec3 { return l.origin }

// Finalized reports whether Finalize has run.
func (l *Layer) Finalized() bool { return l.finalized }

// IsEmpty reports whether the layer holds no portions.
func (l *Layer) IsEmpty() bool { return len(l.portions) == 0 }

// NumPortions returns the number of portions created so far.
func (l *Layer) NumPortions() int { return len(l.portions) }

// NumVisible returns the visible-portion counter.
func (l *Layer) NumVisible() int { return l.numVisible }

// NumTransparent returns the transparent-portion counter.
func (l *Layer) NumTransparent() int { return l.numTransparent }

// NumXRayed returns the xrayed-portion counter.
func (l *Layer) NumXRayed() int { return l.numXRayed }

// NumHighlighted returns the highlighted-portion counter.
func (l *Layer) NumHighlighted() int { return l.numHighlighted }

// NumSelected returns the selected-portion counter.
func (l *Layer) NumSelected() int { return l.numSelected }

// NumCulled returns the culled-portion counter.
func (l *Layer) NumCulled() int { return l.numCulled }

// NumPolygons returns the padded triangle count drawn for one index family,
// counting instanced copies.
func (l *Layer) NumPolygons(bits BitWidth) int { return l.numPolygons[bits] }

// NumEdgeSegments returns the padded edge count drawn for one index family.
func (l *Layer) NumEdgeSegments(bits BitWidth) int { return l.numEdgeSegments[bits] }

// State returns the texture set. Nil before Finalize.
func (l *Layer) State() *DataTextureState { return l.state }

// CanCreatePortion is a pure capacity check: false once the object budget
// or the vertex/index texel budget would be exceeded. Capacity pressure is
// not an error; callers route the portion to a new layer. Buckets already
// uploaded under cfg.GeometryID are not re-accounted.
func (l *Layer) CanCreatePortion(cfg PortionCfg) (bool, error) {
	if l.finalized {
		return false, ErrAlreadyFinalized
	}
	if len(l.subPortions)+len(cfg.Buckets) > MaxObjects {
		return false, nil
	}

	vertsNeeded := 0
	polysNeeded := 0
	for i, b := range cfg.Buckets {
		if cfg.GeometryID != "" {
			key := bucketGeometryKey(cfg.GeometryID, 0, i)
			if _, ok := l.bucketGeometries[key]; ok {
				continue
			}
		}
		vertsNeeded += b.NumVertices()
		polysNeeded += paddedPrimCount(len(b.Indices) / 3)
	}

	if l.numVertices+vertsNeeded > maxTexels {
		return false, nil
	}

	// Checked against the current maximum across the three index families,
	// not the family the new buckets would land in. Conservative for the
	// dominant family, optimistic for the others; kept for compatibility.
	maxPolygons := 0
	for bits := BitWidth(0); bits < numBitWidths; bits++ {
		if l.numPolygons[bits] > maxPolygons {
			maxPolygons = l.numPolygons[bits]
		}
	}
	if maxPolygons+polysNeeded > maxTexels {
		return false, nil
	}
	return true, nil
}

// CreatePortion adds one renderable object to the layer and returns its id.
// Each bucket reuses a cached bucketGeometry when its key is known, then an
// own sub-portion is allocated over it. The portion's world AABB is the
// union of the bucket bounds pushed through the decode and instancing
// matrices, translated by the layer origin once.
func (l *Layer) CreatePortion(cfg PortionCfg) (PortionID, error) {
	if l.finalized {
		return 0, ErrAlreadyFinalized
	}

	id := PortionID(len(l.portions))
	p := portion{aabb: geometry.EmptyAABB()}

	for i, b := range cfg.Buckets {
		key := bucketGeometryKey(cfg.GeometryID, id, i)
		bg, ok := l.bucketGeometries[key]
		if !ok {
			bg = l.createBucketGeometry(b)
			l.bucketGeometries[key] = bg
		}

		subIdx, err := l.createSubPortion(cfg, bg)
		if err != nil {
			return 0, err
		}
		p.subPortionIDs = append(p.subPortionIDs, subIdx)

		qAABB := bg.quantizedAABB(l.buffer)
		if cfg.Matrix != nil {
			// Oriented bounds: quantized corners through instancing o decode.
			p.aabb.ExpandAABB(qAABB.Transformed(cfg.Matrix.Mul4(cfg.DecodeMatrix)))
		} else {
			// Decode is translate+scale only, so the two extreme corners
			// suffice; skips the eight-corner transform for the common
			// untransformed case.
			p.aabb.ExpandAABB(decodeAxisAligned(qAABB, cfg.DecodeMatrix))
		}
	}

	p.aabb = p.aabb.Translated(l.origin)
	l.portions = append(l.portions, p)
	return id, nil
}

func decodeAxisAligned(q geometry.AABB, decode mgl32.Mat4) geometry.AABB {
	out := geometry.EmptyAABB()
	for _, c := range [2]mgl64.Vec3{q.Min, q.Max} {
		p := decode.Mul4x1(mgl32.Vec4{float32(c.X()), float32(c.Y()), float32(c.Z()), 1})
		out.ExpandPoint(mgl64.Vec3{float64(p.X()), float64(p.Y()), float64(p.Z())})
	}
	return out
}

// createSubPortion allocates one object record over a bucket geometry and
// appends its per-object arrays and primitive-to-object id entries.
func (l *Layer) createSubPortion(cfg PortionCfg, bg *bucketGeometry) (int, error) {
	objIdx := len(l.subPortions)
	if objIdx >= MaxObjects {
		return 0, fmt.Errorf("layer object budget exhausted (%d)", MaxObjects)
	}
	buf := l.buffer

	buf.colors = append(buf.colors, cfg.Color)
	buf.pickColors = append(buf.pickColors, cfg.PickColor)
	buf.solid = append(buf.solid, cfg.Solid)
	buf.offsets = append(buf.offsets, 0, 0, 0)
	buf.decodeMatrices = append(buf.decodeMatrices, cfg.DecodeMatrix[:]...)

	instance := mgl32.Ident4()
	if cfg.Matrix != nil {
		instance = *cfg.Matrix
	}
	buf.instanceMatrices = append(buf.instanceMatrices, instance[:]...)

	buf.vertexBases = append(buf.vertexBases, bg.vertexBase)

	// The shader recovers the shared index-texture texel for a drawn
	// polygon as polygonIndex - indexBaseOffset; the offset rebases this
	// object's first drawn polygon onto the bucket's triangles.
	firstPolygon := l.numPolygons[bg.bits]
	buf.indexBaseOffsets = append(buf.indexBaseOffsets, uint32(firstPolygon)-bg.indexBase)
	firstEdge := l.numEdgeSegments[bg.bits]
	buf.edgeIndexBaseOffsets = append(buf.edgeIndexBaseOffsets, uint32(firstEdge)-bg.edgeIndexBase)

	paddedTris := paddedPrimCount(int(bg.numTriangles))
	for n := paddedTris / primsPerIDTexel; n > 0; n-- {
		buf.primToObject[bg.bits] = append(buf.primToObject[bg.bits], uint16(objIdx))
	}
	paddedEdges := paddedPrimCount(int(bg.numEdges))
	for n := paddedEdges / primsPerIDTexel; n > 0; n-- {
		buf.edgeToObject[bg.bits] = append(buf.edgeToObject[bg.bits], uint16(objIdx))
	}
	l.numPolygons[bg.bits] += paddedTris
	l.numEdgeSegments[bg.bits] += paddedEdges

	l.subPortions = append(l.subPortions, subPortion{bucket: bg, bits: bg.bits})
	return objIdx, nil
}

// Finalize creates the GPU texture set from the accumulated buffers and
// discards accumulation state. After Finalize, mutators and draws are
// legal and CreatePortion is not.
func (l *Layer) Finalize() error {
	if l.finalized {
		return ErrAlreadyFinalized
	}
	state, err := newGenerator(l.writer).generate(l.buffer)
	if err != nil {
		return fmt.Errorf("finalize layer: %w", err)
	}
	l.state = state
	l.buffer = nil
	l.bucketGeometries = nil
	l.finalized = true
	return nil
}

// Destroy releases the layer's GPU textures.
func (l *Layer) Destroy() {
	if l.state != nil {
		l.state.Destroy()
		l.state = nil
	}
}

func (l *Layer) portionFor(id PortionID) (*portion, error) {
	if !l.finalized {
		return nil, ErrNotFinalized
	}
	if id < 0 || int(id) >= len(l.portions) {
		return nil, fmt.Errorf("no portion %d", id)
	}
	return &l.portions[id], nil
}

// AABB returns the world-space bounds of one portion.
func (l *Layer) AABB(id PortionID) (geometry.AABB, error) {
	if id < 0 || int(id) >= len(l.portions) {
		return geometry.AABB{}, fmt.Errorf("no portion %d", id)
	}
	return l.portions[id].aabb, nil
}
