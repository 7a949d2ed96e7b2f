package datatex

// DataTextureState holds the texture set a finalized layer draws from.
// Drawables bind these to named shader samplers for each render pass.
type DataTextureState struct {
	// ObjectAttrs holds one packed 32-byte record per object: colors, pick
	// colors, render-pass selectors, clip byte, geometry bases, solid flag.
	ObjectAttrs *DataTexture

	// ObjectMatrices holds one 4x4 float32 instancing matrix per object.
	ObjectMatrices *DataTexture

	// ObjectDecodeMatrices holds one 4x4 float32 quantization-decode matrix
	// per object.
	ObjectDecodeMatrices *DataTexture

	// ObjectOffsets holds one float32 xyz translation per object.
	ObjectOffsets *DataTexture

	// Positions holds one RGB16UI texel per unique quantized vertex.
	Positions *DataTexture

	// Per index-family textures: triangle indices (one texel per triangle),
	// edge indices (one texel per edge) and the primitive-to-object lookups
	// (one 16-bit object id per 8 primitives).
	Indices      [numBitWidths]*DataTexture
	EdgeIndices  [numBitWidths]*DataTexture
	PrimToObject [numBitWidths]*DataTexture
	EdgeToObject [numBitWidths]*DataTexture
}

func (s *DataTextureState) each(fn func(t *DataTexture)) {
	for _, t := range []*DataTexture{
		s.ObjectAttrs, s.ObjectMatrices, s.ObjectDecodeMatrices,
		s.ObjectOffsets, s.Positions,
	} {
		if t != nil {
			fn(t)
		}
	}
	for bits := BitWidth(0); bits < numBitWidths; bits++ {
		for _, t := range []*DataTexture{
			s.Indices[bits], s.EdgeIndices[bits],
			s.PrimToObject[bits], s.EdgeToObject[bits],
		} {
			if t != nil {
				fn(t)
			}
		}
	}
}

// Destroy releases every GPU texture in the set.
func (s *DataTextureState) Destroy() {
	s.each(func(t *DataTexture) { t.Destroy() })
}
