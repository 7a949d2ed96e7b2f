package datatex

// BitWidth tags the index-storage family of a bucket. Each family has its
// own index, edge-index and object-id textures; the family is fixed at
// bucket-creation time by the bucket's vertex count.
type BitWidth int

const (
	Bits8 BitWidth = iota
	Bits16
	Bits32
	numBitWidths
)

// bitWidthFor selects the smallest index family whose indices can address
// numVertices bucket-local vertices.
func bitWidthFor(numVertices int) BitWidth {
	switch {
	case numVertices <= 256:
		return Bits8
	case numVertices <= 65536:
		return Bits16
	default:
		return Bits32
	}
}

// primsPerIDTexel is the number of primitives sharing one texel of the
// primitive-to-object lookup texture. Index arrays are padded to a multiple
// of this so the lookup texture stores one object id per 8 primitives: an 8x
// memory reduction paid for with at most 7 primitives of padding per bucket.
const primsPerIDTexel = 8

// buffer accumulates everything between NewLayer and Finalize. It is plain
// growing slices; Finalize turns it into textures and drops it.
type buffer struct {
	positions []uint16 // x,y,z per vertex, shared across buckets

	indices      [numBitWidths][]uint32 // 3 per triangle, bucket-local values
	edgeIndices  [numBitWidths][]uint32 // 2 per edge, bucket-local values
	primToObject [numBitWidths][]uint16 // one object id per 8 triangles
	edgeToObject [numBitWidths][]uint16 // one object id per 8 edges

	// per sub-portion, index-aligned with Layer.subPortions
	colors               [][4]uint8
	pickColors           [][4]uint8
	solid                []bool
	offsets              []float32 // 3 per object
	decodeMatrices       []float32 // 16 per object
	instanceMatrices     []float32 // 16 per object
	vertexBases          []uint32
	indexBaseOffsets     []uint32
	edgeIndexBaseOffsets []uint32
}

func newBuffer() *buffer {
	return &buffer{}
}

// paddedPrimCount rounds a primitive count up to the object-id texel group.
func paddedPrimCount(n int) int {
	return (n + primsPerIDTexel - 1) / primsPerIDTexel * primsPerIDTexel
}
