package datatex

// Per-object record layout inside the object attribute texture. One record
// is 32 bytes = 8 RGBA8UI texels; every generated shader addresses the
// texture with this stride, so the layout is a hard invariant.
//
//	[0:4)   RGBA color
//	[4:8)   RGBA pick color
//	[8:12)  render-pass selector bytes: color, silhouette, edges, pick
//	[12:16) clipping byte (clippable 0/1) + three spare bytes
//	[16:20) vertex base, 24-bit little-endian + spare
//	[20:24) index base offset, 24-bit little-endian + spare
//	[24:28) edge index base offset, 24-bit little-endian + spare
//	[28:32) solid byte + three reserved bytes
const (
	recordBytes  = 32
	recordTexels = 8

	recColorOff     = 0
	recPickColorOff = 4
	recPassOff      = 8
	recClipOff      = 12
	recVertexBase   = 16
	recIndexBase    = 20
	recEdgeBase     = 24
	recSolidOff     = 28
)

// attrTexWidth is the object attribute texture width in texels. One row
// holds attrTexWidth/recordTexels records, and rows are contiguous in the
// CPU mirror, so record i starts at byte i*recordBytes.
const attrTexWidth = 512

const recordsPerRow = attrTexWidth / recordTexels

func packUint24(dst []byte, v uint32) {
	dst[0] = byte(v)
	dst[1] = byte(v >> 8)
	dst[2] = byte(v >> 16)
}

func unpackUint24(src []byte) uint32 {
	return uint32(src[0]) | uint32(src[1])<<8 | uint32(src[2])<<16
}

// recordTexelOrigin returns the texel coordinates of record i's first texel.
func recordTexelOrigin(i int) (x, y int) {
	return (i % recordsPerRow) * recordTexels, i / recordsPerRow
}
