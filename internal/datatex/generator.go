package datatex

import (
	"encoding/binary"
	"fmt"
	"math"
)

// DataTextureGenerator turns the accumulated layer buffer into the GPU
// texture set, once, at Finalize. Geometry textures are immutable after
// creation; the object textures are mutated in place by the layer mutators.
type DataTextureGenerator struct {
	writer TexWriter
}

func newGenerator(w TexWriter) *DataTextureGenerator {
	return &DataTextureGenerator{writer: w}
}

func texHeight(numTexels, width int) int {
	h := (numTexels + width - 1) / width
	if h < 1 {
		h = 1
	}
	return h
}

// generateObjectAttrs builds the packed per-object record texture. Pass
// selector and clip bytes start zeroed; mutators fill them after Finalize.
func (g *DataTextureGenerator) generateObjectAttrs(buf *buffer) (*DataTexture, error) {
	numObjects := len(buf.colors)
	height := texHeight(numObjects*recordTexels, attrTexWidth)
	mirror := make([]byte, attrTexWidth*height*4)

	for i := 0; i < numObjects; i++ {
		rec := mirror[i*recordBytes:]
		copy(rec[recColorOff:], buf.colors[i][:])
		copy(rec[recPickColorOff:], buf.pickColors[i][:])
		packUint24(rec[recVertexBase:], buf.vertexBases[i])
		packUint24(rec[recIndexBase:], buf.indexBaseOffsets[i])
		packUint24(rec[recEdgeBase:], buf.edgeIndexBaseOffsets[i])
		if buf.solid[i] {
			rec[recSolidOff] = 1
		}
	}
	return newDataTexture(g.writer, attrTexWidth, height, FormatRGBA8UI, mirror)
}

// matrixTexWidth is the width of the float32 matrix textures: 4 RGBA32F
// texels per 4x4 matrix, 128 matrices per row.
const matrixTexWidth = 512

func (g *DataTextureGenerator) generateMatrixTexture(matrices []float32) (*DataTexture, error) {
	numMatrices := len(matrices) / 16
	height := texHeight(numMatrices*4, matrixTexWidth)
	mirror := make([]byte, matrixTexWidth*height*16)
	for i, v := range matrices {
		binary.LittleEndian.PutUint32(mirror[i*4:], math.Float32bits(v))
	}
	return newDataTexture(g.writer, matrixTexWidth, height, FormatRGBA32F, mirror)
}

func (g *DataTextureGenerator) generateObjectOffsets(offsets []float32) (*DataTexture, error) {
	numObjects := len(offsets) / 3
	height := texHeight(numObjects, matrixTexWidth)
	mirror := make([]byte, matrixTexWidth*height*12)
	for i, v := range offsets {
		binary.LittleEndian.PutUint32(mirror[i*4:], math.Float32bits(v))
	}
	return newDataTexture(g.writer, matrixTexWidth, height, FormatRGB32F, mirror)
}

func (g *DataTextureGenerator) generatePositions(positions []uint16) (*DataTexture, error) {
	numVertices := len(positions) / 3
	height := texHeight(numVertices, MaxTextureSize)
	mirror := make([]byte, MaxTextureSize*height*6)
	for i, v := range positions {
		binary.LittleEndian.PutUint16(mirror[i*2:], v)
	}
	return newDataTexture(g.writer, MaxTextureSize, height, FormatRGB16UI, mirror)
}

// generateIndices builds a triangle index texture: one texel per triangle,
// component width selected by the bucket family.
func (g *DataTextureGenerator) generateIndices(indices []uint32, bits BitWidth) (*DataTexture, error) {
	numTriangles := len(indices) / 3
	if numTriangles == 0 {
		return nil, nil
	}
	height := texHeight(numTriangles, MaxTextureSize)

	var format TexFormat
	switch bits {
	case Bits8:
		format = FormatRGB8UI
	case Bits16:
		format = FormatRGB16UI
	default:
		format = FormatRGB32UI
	}
	mirror := packUints(indices, format, MaxTextureSize*height*3)
	return newDataTexture(g.writer, MaxTextureSize, height, format, mirror)
}

// generateEdgeIndices builds an edge index texture: one texel per edge.
func (g *DataTextureGenerator) generateEdgeIndices(edgeIndices []uint32, bits BitWidth) (*DataTexture, error) {
	numEdges := len(edgeIndices) / 2
	if numEdges == 0 {
		return nil, nil
	}
	height := texHeight(numEdges, MaxTextureSize)

	var format TexFormat
	switch bits {
	case Bits8:
		format = FormatRG8UI
	case Bits16:
		format = FormatRG16UI
	default:
		format = FormatRG32UI
	}
	mirror := packUints(edgeIndices, format, MaxTextureSize*height*2)
	return newDataTexture(g.writer, MaxTextureSize, height, format, mirror)
}

// generateObjectIDs builds a primitive-to-object lookup texture: one 16-bit
// object id per texel, one texel per 8 primitives.
func (g *DataTextureGenerator) generateObjectIDs(ids []uint16) (*DataTexture, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	height := texHeight(len(ids), MaxTextureSize)
	mirror := make([]byte, MaxTextureSize*height*2)
	for i, v := range ids {
		binary.LittleEndian.PutUint16(mirror[i*2:], v)
	}
	return newDataTexture(g.writer, MaxTextureSize, height, FormatR16UI, mirror)
}

// packUints narrows uint32 components to the component width of format.
// numComponents is the padded total including the zero-filled row remainder.
func packUints(values []uint32, format TexFormat, numComponents int) []byte {
	switch format {
	case FormatRGB8UI, FormatRG8UI:
		out := make([]byte, numComponents)
		for i, v := range values {
			out[i] = byte(v)
		}
		return out
	case FormatRGB16UI, FormatRG16UI:
		out := make([]byte, numComponents*2)
		for i, v := range values {
			binary.LittleEndian.PutUint16(out[i*2:], uint16(v))
		}
		return out
	default:
		out := make([]byte, numComponents*4)
		for i, v := range values {
			binary.LittleEndian.PutUint32(out[i*4:], v)
		}
		return out
	}
}

// writeFloats stores float32 values into a mirror at a float-element offset.
func writeFloats(dst []byte, floatOff int, vals []float32) {
	for i, v := range vals {
		binary.LittleEndian.PutUint32(dst[(floatOff+i)*4:], math.Float32bits(v))
	}
}

// generate builds the full texture set from the accumulated buffer.
func (g *DataTextureGenerator) generate(buf *buffer) (*DataTextureState, error) {
	state := &DataTextureState{}

	var err error
	if state.ObjectAttrs, err = g.generateObjectAttrs(buf); err != nil {
		return nil, fmt.Errorf("object attrs: %w", err)
	}
	if state.ObjectMatrices, err = g.generateMatrixTexture(buf.instanceMatrices); err != nil {
		return nil, fmt.Errorf("object matrices: %w", err)
	}
	if state.ObjectDecodeMatrices, err = g.generateMatrixTexture(buf.decodeMatrices); err != nil {
		return nil, fmt.Errorf("decode matrices: %w", err)
	}
	if state.ObjectOffsets, err = g.generateObjectOffsets(buf.offsets); err != nil {
		return nil, fmt.Errorf("object offsets: %w", err)
	}
	if state.Positions, err = g.generatePositions(buf.positions); err != nil {
		return nil, fmt.Errorf("positions: %w", err)
	}
	for bits := BitWidth(0); bits < numBitWidths; bits++ {
		if state.Indices[bits], err = g.generateIndices(buf.indices[bits], bits); err != nil {
			return nil, fmt.Errorf("indices[%d]: %w", bits, err)
		}
		if state.EdgeIndices[bits], err = g.generateEdgeIndices(buf.edgeIndices[bits], bits); err != nil {
			return nil, fmt.Errorf("edge indices[%d]: %w", bits, err)
		}
		if state.PrimToObject[bits], err = g.generateObjectIDs(buf.primToObject[bits]); err != nil {
			return nil, fmt.Errorf("prim object ids[%d]: %w", bits, err)
		}
		if state.EdgeToObject[bits], err = g.generateObjectIDs(buf.edgeToObject[bits]); err != nil {
			return nil, fmt.Errorf("edge object ids[%d]: %w", bits, err)
		}
	}

	logger().Debug("data textures generated",
		"objects", len(buf.colors),
		"vertices", len(buf.positions)/3)

	return state, nil
}
