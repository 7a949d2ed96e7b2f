package geometry

import (
	"sort"
	"sync"
)

// Bucket holds one sub-geometry's quantized arrays: positions as x,y,z
// uint16 triples, triangle indices and optional edge (line) indices into
// those positions.
type Bucket struct {
	PositionsCompressed []uint16
	Indices             []uint32
	EdgeIndices         []uint32
}

// NumVertices returns the number of vertices in the bucket.
func (b Bucket) NumVertices() int { return len(b.PositionsCompressed) / 3 }

// scratch holds the reusable index-sequence array so repeated uniquify calls
// do not reallocate. Pooled because bucket prep may run on several workers.
type scratch struct {
	seq []uint32
}

var scratchPool = sync.Pool{
	New: func() any { return &scratch{} },
}

func (s *scratch) sequence(n int) []uint32 {
	if cap(s.seq) < n {
		s.seq = make([]uint32, n)
	}
	s.seq = s.seq[:n]
	for i := range s.seq {
		s.seq[i] = uint32(i)
	}
	return s.seq
}

// comparePositions orders two vertices lexicographically by (x, y, z).
// Quantized coordinates admit a total order with no float-equality hazards.
func comparePositions(positions []uint16, a, b uint32) bool {
	ia, ib := a*3, b*3
	if positions[ia] != positions[ib] {
		return positions[ia] < positions[ib]
	}
	if positions[ia+1] != positions[ib+1] {
		return positions[ia+1] < positions[ib+1]
	}
	return positions[ia+2] < positions[ib+2]
}

func samePosition(positions []uint16, a, b uint32) bool {
	ia, ib := a*3, b*3
	return positions[ia] == positions[ib] &&
		positions[ia+1] == positions[ib+1] &&
		positions[ia+2] == positions[ib+2]
}

// UniquifyPositions deduplicates a quantized position array. It returns the
// unique positions (in sorted order) and a remap table from original vertex
// index to unique vertex index.
//
// The algorithm sorts an index permutation lexicographically by (x,y,z), then
// assigns a monotonically increasing unique id in one linear pass whenever
// the sort key changes. O(N log N), allocation is one sort permutation
// (pooled) plus the two output arrays. Every duplicate set maps to one
// representative: the member appearing earliest in sorted order.
func UniquifyPositions(positions []uint16) ([]uint16, []uint32) {
	numVerts := len(positions) / 3

	s := scratchPool.Get().(*scratch)
	defer scratchPool.Put(s)

	seq := s.sequence(numVerts)
	sort.Slice(seq, func(i, j int) bool {
		return comparePositions(positions, seq[i], seq[j])
	})

	remap := make([]uint32, numVerts)
	unique := make([]uint16, 0, len(positions))

	numUnique := uint32(0)
	for i, orig := range seq {
		if i == 0 || !samePosition(positions, orig, seq[i-1]) {
			if i > 0 {
				numUnique++
			}
			p := orig * 3
			unique = append(unique, positions[p], positions[p+1], positions[p+2])
		}
		remap[orig] = numUnique
	}

	return unique, remap
}

// UniquifyBucket deduplicates a bucket's positions and remaps its triangle
// and edge indices to the deduplicated vertex set.
func UniquifyBucket(b Bucket) Bucket {
	unique, remap := UniquifyPositions(b.PositionsCompressed)

	out := Bucket{PositionsCompressed: unique}
	if len(b.Indices) > 0 {
		out.Indices = make([]uint32, len(b.Indices))
		for i, idx := range b.Indices {
			out.Indices[i] = remap[idx]
		}
	}
	if len(b.EdgeIndices) > 0 {
		out.EdgeIndices = make([]uint32, len(b.EdgeIndices))
		for i, idx := range b.EdgeIndices {
			out.EdgeIndices[i] = remap[idx]
		}
	}
	return out
}
