package datatex

import (
	"fmt"

	"datatex/internal/geometry"
)

// bucketGeometry is one deduplicated sub-geometry resident in the layer
// buffer. All portions sharing a geometry id reference the same entry, so
// instanced objects never duplicate vertex data.
type bucketGeometry struct {
	bits BitWidth

	vertexBase  uint32 // offset into buffer.positions, in vertices
	numVertices uint32

	indexBase    uint32 // offset into buffer.indices[bits], in triangles (padded region)
	numTriangles uint32 // unpadded

	edgeIndexBase uint32 // offset into buffer.edgeIndices[bits], in edges (padded region)
	numEdges      uint32 // unpadded

	// quantized-space bounds, computed on first use
	qAABB    geometry.AABB
	hasQAABB bool
}

// quantizedAABB returns the bucket's bounds in quantized coordinate space,
// computing them from the layer buffer on first call.
func (bg *bucketGeometry) quantizedAABB(buf *buffer) geometry.AABB {
	if bg.hasQAABB {
		return bg.qAABB
	}
	aabb := geometry.EmptyAABB()
	base := int(bg.vertexBase) * 3
	for v := 0; v < int(bg.numVertices); v++ {
		p := base + v*3
		aabb.ExpandPoint([3]float64{
			float64(buf.positions[p]),
			float64(buf.positions[p+1]),
			float64(buf.positions[p+2]),
		})
	}
	bg.qAABB = aabb
	bg.hasQAABB = true
	return aabb
}

func bucketGeometryKey(geometryID string, portionID PortionID, bucketIndex int) string {
	if geometryID != "" {
		return fmt.Sprintf("%s#%d", geometryID, bucketIndex)
	}
	return fmt.Sprintf("@%d#%d", portionID, bucketIndex)
}

// createBucketGeometry appends one bucket's arrays to the layer buffer.
// Index and edge-index arrays are padded to a multiple of primsPerIDTexel
// primitives with zero-filled slots.
func (l *Layer) createBucketGeometry(b geometry.Bucket) *bucketGeometry {
	numVertices := b.NumVertices()
	bits := bitWidthFor(numVertices)
	buf := l.buffer

	bg := &bucketGeometry{
		bits:        bits,
		vertexBase:  uint32(len(buf.positions) / 3),
		numVertices: uint32(numVertices),
	}

	buf.positions = append(buf.positions, b.PositionsCompressed...)

	numTriangles := len(b.Indices) / 3
	bg.indexBase = uint32(len(buf.indices[bits]) / 3)
	bg.numTriangles = uint32(numTriangles)
	buf.indices[bits] = append(buf.indices[bits], b.Indices...)
	for pad := (paddedPrimCount(numTriangles) - numTriangles) * 3; pad > 0; pad-- {
		buf.indices[bits] = append(buf.indices[bits], 0)
	}

	numEdges := len(b.EdgeIndices) / 2
	bg.edgeIndexBase = uint32(len(buf.edgeIndices[bits]) / 2)
	bg.numEdges = uint32(numEdges)
	buf.edgeIndices[bits] = append(buf.edgeIndices[bits], b.EdgeIndices...)
	for pad := (paddedPrimCount(numEdges) - numEdges) * 2; pad > 0; pad-- {
		buf.edgeIndices[bits] = append(buf.edgeIndices[bits], 0)
	}

	l.numVertices += numVertices
	l.numTriangles[bits] += paddedPrimCount(numTriangles)
	l.numEdges[bits] += paddedPrimCount(numEdges)

	return bg
}
