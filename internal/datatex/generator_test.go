package datatex

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestGeneratedTextureLayout(t *testing.T) {
	w := NewMemTexWriter()
	l := NewLayer(LayerCfg{Writer: w})

	cfg := testCfg(triBucket())
	cfg.DecodeMatrix = mgl32.Translate3D(1, 2, 3)
	if _, err := l.CreatePortion(cfg); err != nil {
		t.Fatalf("CreatePortion: %v", err)
	}
	if err := l.Finalize(); err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	s := l.State()

	// Object attrs: 512 wide, one row holds up to 64 records
	if s.ObjectAttrs.Width() != attrTexWidth || s.ObjectAttrs.Height() != 1 {
		t.Errorf("attrs texture %dx%d, want %dx1", s.ObjectAttrs.Width(), s.ObjectAttrs.Height(), attrTexWidth)
	}

	// Positions: little-endian uint16 triples
	pos := s.Positions.Mirror()
	wantPos := []uint16{0, 0, 0, 100, 0, 0, 0, 100, 0}
	for i, wv := range wantPos {
		if got := binary.LittleEndian.Uint16(pos[i*2:]); got != wv {
			t.Errorf("position component %d = %d, want %d", i, got, wv)
		}
	}

	// Decode matrix texture round-trips the translate
	dec := s.ObjectDecodeMatrices.Mirror()
	want := mgl32.Translate3D(1, 2, 3)
	for c := 0; c < 16; c++ {
		got := math.Float32frombits(binary.LittleEndian.Uint32(dec[c*4:]))
		if got != want[c] {
			t.Errorf("decode matrix component %d = %g, want %g", c, got, want[c])
		}
	}
	// Instance matrix defaults to identity when no matrix is given
	inst := s.ObjectMatrices.Mirror()
	ident := mgl32.Ident4()
	for c := 0; c < 16; c++ {
		got := math.Float32frombits(binary.LittleEndian.Uint32(inst[c*4:]))
		if got != ident[c] {
			t.Errorf("instance matrix component %d = %g, want %g", c, got, ident[c])
		}
	}

	// A 3-vertex bucket lands in the 8-bit family; other families have no
	// textures at all
	if s.Indices[Bits8] == nil {
		t.Fatal("8-bit index texture missing")
	}
	for _, bits := range []BitWidth{Bits16, Bits32} {
		if s.Indices[bits] != nil {
			t.Errorf("family %v has an index texture for no data", bits)
		}
		if s.PrimToObject[bits] != nil {
			t.Errorf("family %v has an object-id texture for no data", bits)
		}
	}

	// 8-bit indices are single bytes
	idx := s.Indices[Bits8].Mirror()
	if idx[0] != 0 || idx[1] != 1 || idx[2] != 2 {
		t.Errorf("first triangle = %v, want [0 1 2]", idx[:3])
	}

	// One object-id texel covering the padded group, id 0
	ids := s.PrimToObject[Bits8].Mirror()
	if got := binary.LittleEndian.Uint16(ids); got != 0 {
		t.Errorf("first object id = %d, want 0", got)
	}

	// Edge textures exist for the same family
	if s.EdgeIndices[Bits8] == nil || s.EdgeToObject[Bits8] == nil {
		t.Error("edge textures missing for 8-bit family")
	}
}

func TestPackUintsNarrowing(t *testing.T) {
	values := []uint32{0, 1, 255, 300, 70000}

	out8 := packUints(values, FormatRGB8UI, 6)
	if len(out8) != 6 {
		t.Fatalf("8-bit output length %d, want 6", len(out8))
	}
	if out8[2] != 255 || out8[3] != byte(values[3]) {
		t.Errorf("8-bit narrow: %v", out8)
	}
	if out8[5] != 0 {
		t.Errorf("8-bit padding slot = %d, want 0", out8[5])
	}

	out16 := packUints(values, FormatRG16UI, 6)
	if got := binary.LittleEndian.Uint16(out16[3*2:]); got != 300 {
		t.Errorf("16-bit value = %d, want 300", got)
	}

	out32 := packUints(values, FormatRGB32UI, 6)
	if got := binary.LittleEndian.Uint32(out32[4*4:]); got != 70000 {
		t.Errorf("32-bit value = %d, want 70000", got)
	}
}

func TestDataTextureWriteSub(t *testing.T) {
	w := NewMemTexWriter()
	mirror := make([]byte, 8*2*4)
	tex, err := newDataTexture(w, 8, 2, FormatRGBA8UI, mirror)
	if err != nil {
		t.Fatalf("newDataTexture: %v", err)
	}

	img := w.Images[tex.Handle()]

	// Interior region: rows are not contiguous in the mirror
	mirror[(1*8+2)*4] = 77
	mirror[(1*8+3)*4] = 88
	tex.WriteSub(2, 1, 2, 1)
	if img[(1*8+2)*4] != 77 || img[(1*8+3)*4] != 88 {
		t.Error("interior WriteSub did not reach the image")
	}

	// Full-width region takes the contiguous path
	mirror[0] = 11
	tex.WriteSub(0, 0, 8, 1)
	if img[0] != 11 {
		t.Error("full-width WriteSub did not reach the image")
	}

	// Mirror stays readable after Destroy
	handle := tex.Handle()
	tex.Destroy()
	if tex.Mirror()[0] != 11 {
		t.Error("mirror lost after Destroy")
	}
	if _, ok := w.Images[handle]; ok {
		t.Error("image not deleted")
	}
}

func TestMirrorSizeValidation(t *testing.T) {
	w := NewMemTexWriter()
	if _, err := newDataTexture(w, 4, 4, FormatRGBA8UI, make([]byte, 10)); err == nil {
		t.Error("undersized mirror accepted")
	}
}
