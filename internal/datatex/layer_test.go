package datatex

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"

	"datatex/internal/config"
	"datatex/internal/geometry"
)

// triBucket returns a minimal prepared bucket: one triangle, three edges.
func triBucket() geometry.Bucket {
	return geometry.Bucket{
		PositionsCompressed: []uint16{0, 0, 0, 100, 0, 0, 0, 100, 0},
		Indices:             []uint32{0, 1, 2},
		EdgeIndices:         []uint32{0, 1, 1, 2, 2, 0},
	}
}

func testCfg(buckets ...geometry.Bucket) PortionCfg {
	return PortionCfg{
		Buckets:      buckets,
		DecodeMatrix: mgl32.Ident4(),
		Color:        [4]uint8{200, 100, 50, 255},
		PickColor:    [4]uint8{1, 2, 3, 4},
		Solid:        true,
	}
}

func TestLayerLifecycle(t *testing.T) {
	l := NewLayer(LayerCfg{Writer: NewMemTexWriter()})

	// Mutators are illegal before Finalize
	if err := l.SetVisible(0, FlagVisible, false); !errors.Is(err, ErrNotFinalized) {
		t.Fatalf("SetVisible before finalize: got %v, want ErrNotFinalized", err)
	}
	if err := l.BeginDeferredFlags(); !errors.Is(err, ErrNotFinalized) {
		t.Fatalf("BeginDeferredFlags before finalize: got %v, want ErrNotFinalized", err)
	}

	id, err := l.CreatePortion(testCfg(triBucket()))
	if err != nil {
		t.Fatalf("CreatePortion: %v", err)
	}
	if err := l.Finalize(); err != nil {
		t.Fatalf("Finalize: %v", err)
	}

	// Accumulation is illegal after Finalize
	if err := l.Finalize(); !errors.Is(err, ErrAlreadyFinalized) {
		t.Fatalf("second Finalize: got %v, want ErrAlreadyFinalized", err)
	}
	if _, err := l.CreatePortion(testCfg(triBucket())); !errors.Is(err, ErrAlreadyFinalized) {
		t.Fatalf("CreatePortion after finalize: got %v, want ErrAlreadyFinalized", err)
	}
	if _, err := l.CanCreatePortion(testCfg(triBucket())); !errors.Is(err, ErrAlreadyFinalized) {
		t.Fatalf("CanCreatePortion after finalize: got %v, want ErrAlreadyFinalized", err)
	}

	// Mutators now work
	if err := l.SetVisible(id, FlagVisible, false); err != nil {
		t.Fatalf("SetVisible after finalize: %v", err)
	}
	// Unknown ids are rejected
	if err := l.SetVisible(99, FlagVisible, false); err == nil {
		t.Fatal("SetVisible on unknown portion should fail")
	}
}

func TestIndexPadding(t *testing.T) {
	l := NewLayer(LayerCfg{Writer: NewMemTexWriter()})

	if _, err := l.CreatePortion(testCfg(triBucket())); err != nil {
		t.Fatalf("CreatePortion: %v", err)
	}

	// One triangle pads to one full object-id texel group
	if got := l.NumPolygons(Bits8); got != 8 {
		t.Errorf("NumPolygons = %d, want 8", got)
	}
	if got := l.NumEdgeSegments(Bits8); got != 8 {
		t.Errorf("NumEdgeSegments = %d, want 8", got)
	}
	if got := len(l.buffer.indices[Bits8]); got != 24 {
		t.Errorf("index array length %d, want 24 (8 padded triangles)", got)
	}
	// Real indices first, zero-filled slots after
	want := []uint32{0, 1, 2}
	for i, v := range l.buffer.indices[Bits8] {
		if i < 3 {
			if v != want[i] {
				t.Errorf("index %d = %d, want %d", i, v, want[i])
			}
		} else if v != 0 {
			t.Errorf("padding slot %d = %d, want 0", i, v)
		}
	}
	// One lookup entry covers the whole padded group
	if got := len(l.buffer.primToObject[Bits8]); got != 1 {
		t.Errorf("primToObject entries = %d, want 1", got)
	}
}

func TestInstancingSharesGeometry(t *testing.T) {
	l := NewLayer(LayerCfg{Writer: NewMemTexWriter()})

	cfg := testCfg(triBucket())
	cfg.GeometryID = "shared-tri"

	if _, err := l.CreatePortion(cfg); err != nil {
		t.Fatalf("first CreatePortion: %v", err)
	}
	if _, err := l.CreatePortion(cfg); err != nil {
		t.Fatalf("second CreatePortion: %v", err)
	}

	// Vertex data uploaded once, drawn twice
	if l.numVertices != 3 {
		t.Errorf("numVertices = %d, want 3 (geometry shared)", l.numVertices)
	}
	if got := len(l.buffer.indices[Bits8]); got != 24 {
		t.Errorf("index array length %d, want 24 (one bucket upload)", got)
	}
	if got := l.NumPolygons(Bits8); got != 16 {
		t.Errorf("NumPolygons = %d, want 16 (two instances)", got)
	}

	// The second instance rebases its drawn polygons onto the shared bucket
	if got := l.buffer.indexBaseOffsets[0]; got != 0 {
		t.Errorf("first indexBaseOffset = %d, want 0", got)
	}
	if got := l.buffer.indexBaseOffsets[1]; got != 8 {
		t.Errorf("second indexBaseOffset = %d, want 8", got)
	}
	// Both records address the same vertex base
	if l.buffer.vertexBases[0] != l.buffer.vertexBases[1] {
		t.Errorf("instances have different vertex bases: %d vs %d",
			l.buffer.vertexBases[0], l.buffer.vertexBases[1])
	}
	// Each instance still owns a lookup entry
	if got := len(l.buffer.primToObject[Bits8]); got != 2 {
		t.Errorf("primToObject entries = %d, want 2", got)
	}
}

func TestRecordLayout(t *testing.T) {
	w := NewMemTexWriter()
	l := NewLayer(LayerCfg{Writer: w})

	id, err := l.CreatePortion(testCfg(triBucket()))
	if err != nil {
		t.Fatalf("CreatePortion: %v", err)
	}
	if err := l.Finalize(); err != nil {
		t.Fatalf("Finalize: %v", err)
	}

	rec := l.State().ObjectAttrs.Mirror()[:recordBytes]

	if !bytes.Equal(rec[recColorOff:recColorOff+4], []byte{200, 100, 50, 255}) {
		t.Errorf("color bytes = %v", rec[recColorOff:recColorOff+4])
	}
	if !bytes.Equal(rec[recPickColorOff:recPickColorOff+4], []byte{1, 2, 3, 4}) {
		t.Errorf("pick color bytes = %v", rec[recPickColorOff:recPickColorOff+4])
	}
	// Pass selectors start zeroed: nothing renders before the first flag write
	if !bytes.Equal(rec[recPassOff:recPassOff+4], []byte{0, 0, 0, 0}) {
		t.Errorf("pass bytes not zeroed at finalize: %v", rec[recPassOff:recPassOff+4])
	}
	if got := unpackUint24(rec[recVertexBase:]); got != 0 {
		t.Errorf("vertex base = %d, want 0", got)
	}
	if got := unpackUint24(rec[recIndexBase:]); got != 0 {
		t.Errorf("index base offset = %d, want 0", got)
	}
	if rec[recSolidOff] != 1 {
		t.Errorf("solid byte = %d, want 1", rec[recSolidOff])
	}

	// A flag write fills the pass selectors and reaches the GPU image
	if err := l.SetVisible(id, FlagVisible|FlagPickable|FlagClippable, false); err != nil {
		t.Fatalf("SetVisible: %v", err)
	}
	wantPass := PassBytes(FlagVisible|FlagPickable|FlagClippable, false)
	if !bytes.Equal(rec[recPassOff:recPassOff+4], wantPass[:]) {
		t.Errorf("pass bytes = %v, want %v", rec[recPassOff:recPassOff+4], wantPass)
	}
	if rec[recClipOff] != 1 {
		t.Errorf("clip byte = %d, want 1", rec[recClipOff])
	}

	img := w.Images[l.State().ObjectAttrs.Handle()]
	if !bytes.Equal(img[:recordBytes], rec) {
		t.Errorf("GPU image record differs from mirror after immediate write")
	}
}

func TestCounters(t *testing.T) {
	l := finalizedLayer(t, 3)

	if l.NumVisible() != 0 {
		t.Fatalf("fresh layer NumVisible = %d", l.NumVisible())
	}
	for i := 0; i < 3; i++ {
		if err := l.SetVisible(PortionID(i), FlagVisible, false); err != nil {
			t.Fatalf("SetVisible(%d): %v", i, err)
		}
	}
	if l.NumVisible() != 3 {
		t.Errorf("NumVisible = %d, want 3", l.NumVisible())
	}

	if err := l.SetVisible(1, 0, false); err != nil {
		t.Fatalf("SetVisible off: %v", err)
	}
	if l.NumVisible() != 2 {
		t.Errorf("NumVisible after hide = %d, want 2", l.NumVisible())
	}

	if err := l.SetSelected(0, FlagVisible|FlagSelected, false); err != nil {
		t.Fatalf("SetSelected: %v", err)
	}
	if l.NumSelected() != 1 {
		t.Errorf("NumSelected = %d, want 1", l.NumSelected())
	}
	if err := l.SetTransparent(2, FlagVisible, true); err != nil {
		t.Fatalf("SetTransparent: %v", err)
	}
	if l.NumTransparent() != 1 {
		t.Errorf("NumTransparent = %d, want 1", l.NumTransparent())
	}
}

func TestHideRestoresRecord(t *testing.T) {
	w := NewMemTexWriter()
	l := NewLayer(LayerCfg{Writer: w})

	id, err := l.CreatePortion(testCfg(triBucket()))
	if err != nil {
		t.Fatalf("CreatePortion: %v", err)
	}
	if err := l.Finalize(); err != nil {
		t.Fatalf("Finalize: %v", err)
	}

	flags := FlagVisible | FlagPickable | FlagClippable
	if err := l.SetVisible(id, flags, false); err != nil {
		t.Fatalf("SetVisible on: %v", err)
	}
	rec := l.State().ObjectAttrs.Mirror()[:recordBytes]
	shown := append([]byte(nil), rec...)

	if err := l.SetVisible(id, flags&^FlagVisible, false); err != nil {
		t.Fatalf("SetVisible off: %v", err)
	}
	if bytes.Equal(rec, shown) {
		t.Fatal("record unchanged after hide")
	}
	if l.NumVisible() != 0 {
		t.Errorf("NumVisible after hide = %d, want 0", l.NumVisible())
	}

	// Showing again rebuilds the exact record the first write produced
	if err := l.SetVisible(id, flags, false); err != nil {
		t.Fatalf("SetVisible back on: %v", err)
	}
	if !bytes.Equal(rec, shown) {
		t.Errorf("record after hide/show = %v, want %v", rec, shown)
	}
	if l.NumVisible() != 1 {
		t.Errorf("NumVisible after show = %d, want 1", l.NumVisible())
	}
	img := w.Images[l.State().ObjectAttrs.Handle()]
	if !bytes.Equal(img[:recordBytes], shown) {
		t.Errorf("GPU image record differs from mirror after hide/show")
	}
}

// finalizedLayer builds a finalized layer with n single-triangle portions.
func finalizedLayer(t *testing.T, n int) *Layer {
	t.Helper()
	l := NewLayer(LayerCfg{Writer: NewMemTexWriter()})
	for i := 0; i < n; i++ {
		if _, err := l.CreatePortion(testCfg(triBucket())); err != nil {
			t.Fatalf("CreatePortion %d: %v", i, err)
		}
	}
	if err := l.Finalize(); err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	return l
}

func TestDeferredMatchesImmediate(t *testing.T) {
	restore := config.GetDeferredFlagsThreshold()
	defer config.SetDeferredFlagsThreshold(restore)
	config.SetDeferredFlagsThreshold(4096)

	mutate := func(l *Layer) {
		for i := 0; i < 8; i++ {
			id := PortionID(i)
			if err := l.SetVisible(id, FlagVisible|FlagPickable, false); err != nil {
				t.Fatalf("SetVisible: %v", err)
			}
		}
		if err := l.SetHighlighted(2, FlagVisible|FlagPickable|FlagHighlighted, false); err != nil {
			t.Fatalf("SetHighlighted: %v", err)
		}
		if err := l.SetColor(5, [4]uint8{9, 9, 9, 255}); err != nil {
			t.Fatalf("SetColor: %v", err)
		}
	}

	wImmediate := NewMemTexWriter()
	immediate := NewLayer(LayerCfg{Writer: wImmediate})
	wDeferred := NewMemTexWriter()
	deferred := NewLayer(LayerCfg{Writer: wDeferred})

	for _, l := range []*Layer{immediate, deferred} {
		for i := 0; i < 8; i++ {
			if _, err := l.CreatePortion(testCfg(triBucket())); err != nil {
				t.Fatalf("CreatePortion: %v", err)
			}
		}
		if err := l.Finalize(); err != nil {
			t.Fatalf("Finalize: %v", err)
		}
	}

	mutate(immediate)

	if err := deferred.BeginDeferredFlags(); err != nil {
		t.Fatalf("BeginDeferredFlags: %v", err)
	}
	mutate(deferred)
	if err := deferred.CommitDeferredFlags(); err != nil {
		t.Fatalf("CommitDeferredFlags: %v", err)
	}

	imgImmediate := wImmediate.Images[immediate.State().ObjectAttrs.Handle()]
	imgDeferred := wDeferred.Images[deferred.State().ObjectAttrs.Handle()]
	if !bytes.Equal(imgImmediate, imgDeferred) {
		t.Error("deferred and immediate paths produced different GPU images")
	}
}

func TestDeferredEscalation(t *testing.T) {
	restore := config.GetDeferredFlagsThreshold()
	defer config.SetDeferredFlagsThreshold(restore)
	config.SetDeferredFlagsThreshold(2)

	w := NewMemTexWriter()
	l := NewLayer(LayerCfg{Writer: w})
	for i := 0; i < 4; i++ {
		if _, err := l.CreatePortion(testCfg(triBucket())); err != nil {
			t.Fatalf("CreatePortion: %v", err)
		}
	}
	if err := l.Finalize(); err != nil {
		t.Fatalf("Finalize: %v", err)
	}

	for i := 0; i < 4; i++ {
		if err := l.SetVisible(PortionID(i), FlagVisible, false); err != nil {
			t.Fatalf("SetVisible(%d): %v", i, err)
		}
	}

	img := w.Images[l.State().ObjectAttrs.Handle()]
	mirror := l.State().ObjectAttrs.Mirror()

	// First two updates went through immediately; the third escalated to
	// deferred mode, so records 2 and 3 are stale on the GPU side.
	for i := 0; i < 2; i++ {
		off := i*recordBytes + recPassOff
		if img[off] != mirror[off] {
			t.Errorf("record %d pass byte stale before threshold", i)
		}
	}
	for i := 2; i < 4; i++ {
		off := i*recordBytes + recPassOff
		if img[off] == mirror[off] {
			t.Errorf("record %d uploaded despite deferred mode", i)
		}
	}

	// Frame-start flush uploads the whole texture and re-arms immediate mode
	if err := l.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if !bytes.Equal(img, mirror) {
		t.Error("GPU image differs from mirror after flush")
	}
	if err := l.SetVisible(0, 0, false); err != nil {
		t.Fatalf("SetVisible after flush: %v", err)
	}
	off := recPassOff
	if img[off] != mirror[off] {
		t.Error("immediate mode not restored after flush")
	}
}

func TestObjectBudget(t *testing.T) {
	l := NewLayer(LayerCfg{Writer: NewMemTexWriter()})

	cfg := testCfg(triBucket())
	cfg.GeometryID = "shared"

	for i := 0; i < MaxObjects; i++ {
		ok, err := l.CanCreatePortion(cfg)
		if err != nil {
			t.Fatalf("CanCreatePortion at %d: %v", i, err)
		}
		if !ok {
			t.Fatalf("capacity refused at %d of %d", i, MaxObjects)
		}
		if _, err := l.CreatePortion(cfg); err != nil {
			t.Fatalf("CreatePortion at %d: %v", i, err)
		}
	}

	ok, err := l.CanCreatePortion(cfg)
	if err != nil {
		t.Fatalf("CanCreatePortion at budget: %v", err)
	}
	if ok {
		t.Error("capacity check passed beyond the object budget")
	}
	if _, err := l.createSubPortion(cfg, l.bucketGeometries[bucketGeometryKey("shared", 0, 0)]); err == nil {
		t.Error("createSubPortion beyond the object budget should fail")
	}
}

func TestPolygonBudgetIsCrossFamily(t *testing.T) {
	l := NewLayer(LayerCfg{Writer: NewMemTexWriter()})

	// Saturate the 16-bit family's accounting without allocating anything
	l.numPolygons[Bits16] = maxTexels - 4

	// The incoming bucket lands in the 8-bit family, which is empty, yet
	// the check clamps against the fullest family.
	ok, err := l.CanCreatePortion(testCfg(triBucket()))
	if err != nil {
		t.Fatalf("CanCreatePortion: %v", err)
	}
	if ok {
		t.Error("capacity check ignored the cross-family clamp")
	}
}

func TestSetColorOffsetMatrix(t *testing.T) {
	l := finalizedLayer(t, 2)

	if err := l.SetColor(1, [4]uint8{10, 20, 30, 40}); err != nil {
		t.Fatalf("SetColor: %v", err)
	}
	rec := l.State().ObjectAttrs.Mirror()[recordBytes:]
	if !bytes.Equal(rec[recColorOff:recColorOff+4], []byte{10, 20, 30, 40}) {
		t.Errorf("color bytes = %v", rec[recColorOff:recColorOff+4])
	}

	if err := l.SetOffset(1, mgl32.Vec3{1.5, -2, 3}); err != nil {
		t.Fatalf("SetOffset: %v", err)
	}
	off := l.State().ObjectOffsets.Mirror()
	want := []float32{1.5, -2, 3}
	for c, wv := range want {
		got := math.Float32frombits(binary.LittleEndian.Uint32(off[(1*3+c)*4:]))
		if got != wv {
			t.Errorf("offset component %d = %g, want %g", c, got, wv)
		}
	}

	m := mgl32.Translate3D(7, 8, 9)
	if err := l.SetMatrix(1, m); err != nil {
		t.Fatalf("SetMatrix: %v", err)
	}
	mat := l.State().ObjectMatrices.Mirror()
	for c := 0; c < 16; c++ {
		got := math.Float32frombits(binary.LittleEndian.Uint32(mat[(1*16+c)*4:]))
		if got != m[c] {
			t.Errorf("matrix component %d = %g, want %g", c, got, m[c])
		}
	}
}

func TestPortionAABB(t *testing.T) {
	origin := mgl64.Vec3{1000, 0, -500}
	l := NewLayer(LayerCfg{Origin: origin, Writer: NewMemTexWriter()})

	// Decode scales quantized 0..100 into model 0..1
	cfg := testCfg(triBucket())
	cfg.DecodeMatrix = mgl32.Scale3D(0.01, 0.01, 0.01)

	id, err := l.CreatePortion(cfg)
	if err != nil {
		t.Fatalf("CreatePortion: %v", err)
	}

	aabb, err := l.AABB(id)
	if err != nil {
		t.Fatalf("AABB: %v", err)
	}
	wantMin := mgl64.Vec3{1000, 0, -500}
	wantMax := mgl64.Vec3{1001, 1, -500}
	for c := 0; c < 3; c++ {
		if math.Abs(aabb.Min[c]-wantMin[c]) > 1e-4 {
			t.Errorf("min[%d] = %g, want %g", c, aabb.Min[c], wantMin[c])
		}
		if math.Abs(aabb.Max[c]-wantMax[c]) > 1e-4 {
			t.Errorf("max[%d] = %g, want %g", c, aabb.Max[c], wantMax[c])
		}
	}

	// An instancing matrix routes through the oriented-box path
	matrix := mgl32.Translate3D(10, 0, 0)
	cfg2 := testCfg(triBucket())
	cfg2.DecodeMatrix = mgl32.Scale3D(0.01, 0.01, 0.01)
	cfg2.Matrix = &matrix
	id2, err := l.CreatePortion(cfg2)
	if err != nil {
		t.Fatalf("CreatePortion with matrix: %v", err)
	}
	aabb2, err := l.AABB(id2)
	if err != nil {
		t.Fatalf("AABB: %v", err)
	}
	if math.Abs(aabb2.Min.X()-1010) > 1e-4 {
		t.Errorf("instanced min x = %g, want 1010", aabb2.Min.X())
	}
}
