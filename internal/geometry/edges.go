package geometry

// BuildEdgeIndices derives line indices from a triangle index array: one
// line segment per unique undirected edge. Used when a bucket arrives
// without precomputed edge indices.
func BuildEdgeIndices(indices []uint32) []uint32 {
	seen := make(map[uint64]struct{}, len(indices))
	edges := make([]uint32, 0, len(indices))

	addEdge := func(a, b uint32) {
		lo, hi := a, b
		if lo > hi {
			lo, hi = hi, lo
		}
		key := uint64(lo)<<32 | uint64(hi)
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		edges = append(edges, a, b)
	}

	for i := 0; i+2 < len(indices); i += 3 {
		a, b, c := indices[i], indices[i+1], indices[i+2]
		addEdge(a, b)
		addEdge(b, c)
		addEdge(c, a)
	}
	return edges
}
