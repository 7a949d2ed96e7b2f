package datatex

import "fmt"

// TexFormat identifies the GPU storage format of a data texture.
type TexFormat int

const (
	FormatRGBA8UI TexFormat = iota
	FormatRGB8UI
	FormatRGB16UI
	FormatRGB32UI
	FormatRG8UI
	FormatRG16UI
	FormatRG32UI
	FormatR16UI
	FormatRGB32F
	FormatRGBA32F
)

// BytesPerTexel returns the texel stride of the format.
func (f TexFormat) BytesPerTexel() int {
	switch f {
	case FormatRGBA8UI:
		return 4
	case FormatRGB8UI:
		return 3
	case FormatRGB16UI:
		return 6
	case FormatRGB32UI:
		return 12
	case FormatRG8UI:
		return 2
	case FormatRG16UI:
		return 4
	case FormatRG32UI:
		return 8
	case FormatR16UI:
		return 2
	case FormatRGB32F:
		return 12
	case FormatRGBA32F:
		return 16
	}
	return 0
}

// TexWriter is the GPU side of a data texture: creation, in-place sub-region
// updates and destruction. The GL implementation lives in internal/graphics;
// MemTexWriter backs headless use and tests.
type TexWriter interface {
	Create2D(width, height int, format TexFormat, data []byte) (uint32, error)
	WriteSub2D(handle uint32, format TexFormat, x, y, width, height int, data []byte)
	Delete(handle uint32)
}

// DataTexture is a GPU texture used as addressable structured memory, plus
// its CPU-side mirror. The mirror is the write target of every mutator; GPU
// uploads copy from it either per sub-region or whole.
type DataTexture struct {
	writer TexWriter
	handle uint32
	width  int
	height int
	format TexFormat
	mirror []byte
}

func newDataTexture(w TexWriter, width, height int, format TexFormat, mirror []byte) (*DataTexture, error) {
	want := width * height * format.BytesPerTexel()
	if len(mirror) != want {
		return nil, fmt.Errorf("data texture %dx%d: mirror is %d bytes, want %d", width, height, len(mirror), want)
	}
	handle, err := w.Create2D(width, height, format, mirror)
	if err != nil {
		return nil, err
	}
	return &DataTexture{
		writer: w,
		handle: handle,
		width:  width,
		height: height,
		format: format,
		mirror: mirror,
	}, nil
}

// Handle returns the GPU texture handle.
func (t *DataTexture) Handle() uint32 { return t.handle }

// Width returns the texture width in texels.
func (t *DataTexture) Width() int { return t.width }

// Height returns the texture height in texels.
func (t *DataTexture) Height() int { return t.height }

// Mirror exposes the CPU-side byte image. Mutators write here first.
func (t *DataTexture) Mirror() []byte { return t.mirror }

// WriteSub uploads the given texel region from the mirror to the GPU.
func (t *DataTexture) WriteSub(x, y, w, h int) {
	bpt := t.format.BytesPerTexel()
	rowBytes := t.width * bpt
	if x == 0 && w == t.width {
		// Full-width regions are contiguous in the mirror.
		off := y * rowBytes
		t.writer.WriteSub2D(t.handle, t.format, x, y, w, h, t.mirror[off:off+h*rowBytes])
		return
	}
	buf := make([]byte, 0, w*h*bpt)
	for row := 0; row < h; row++ {
		off := (y+row)*rowBytes + x*bpt
		buf = append(buf, t.mirror[off:off+w*bpt]...)
	}
	t.writer.WriteSub2D(t.handle, t.format, x, y, w, h, buf)
}

// WriteAll uploads the whole mirror.
func (t *DataTexture) WriteAll() {
	t.writer.WriteSub2D(t.handle, t.format, 0, 0, t.width, t.height, t.mirror)
}

// Destroy releases the GPU texture. The mirror stays readable.
func (t *DataTexture) Destroy() {
	if t.handle != 0 {
		t.writer.Delete(t.handle)
		t.handle = 0
	}
}

// MemTexWriter is an in-memory TexWriter for headless runs: it keeps each
// texture's byte image so callers can inspect exactly what the GPU would
// hold.
type MemTexWriter struct {
	next   uint32
	Images map[uint32][]byte
	shapes map[uint32][3]int // width, height, bytes per texel
}

// NewMemTexWriter creates an empty in-memory texture store.
func NewMemTexWriter() *MemTexWriter {
	return &MemTexWriter{
		Images: make(map[uint32][]byte),
		shapes: make(map[uint32][3]int),
	}
}

// Create2D implements TexWriter.
func (m *MemTexWriter) Create2D(width, height int, format TexFormat, data []byte) (uint32, error) {
	m.next++
	img := make([]byte, width*height*format.BytesPerTexel())
	copy(img, data)
	m.Images[m.next] = img
	m.shapes[m.next] = [3]int{width, height, format.BytesPerTexel()}
	return m.next, nil
}

// WriteSub2D implements TexWriter.
func (m *MemTexWriter) WriteSub2D(handle uint32, format TexFormat, x, y, width, height int, data []byte) {
	img, ok := m.Images[handle]
	if !ok {
		return
	}
	shape := m.shapes[handle]
	bpt := shape[2]
	rowBytes := shape[0] * bpt
	for row := 0; row < height; row++ {
		dst := (y+row)*rowBytes + x*bpt
		src := row * width * bpt
		copy(img[dst:dst+width*bpt], data[src:src+width*bpt])
	}
}

// Delete implements TexWriter.
func (m *MemTexWriter) Delete(handle uint32) {
	delete(m.Images, handle)
	delete(m.shapes, handle)
}
