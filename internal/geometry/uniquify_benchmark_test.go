package geometry

import (
	"math/rand"
	"testing"
)

// benchSoup builds a soup with heavy duplication: numVerts vertices drawn
// from a much smaller set of distinct positions.
func benchSoup(numVerts, distinct int) []uint16 {
	rng := rand.New(rand.NewSource(42))
	base := make([][3]uint16, distinct)
	for i := range base {
		base[i] = [3]uint16{uint16(rng.Intn(65536)), uint16(rng.Intn(65536)), uint16(rng.Intn(65536))}
	}
	out := make([]uint16, 0, numVerts*3)
	for i := 0; i < numVerts; i++ {
		c := base[rng.Intn(distinct)]
		out = append(out, c[0], c[1], c[2])
	}
	return out
}

func BenchmarkUniquifyPositions(b *testing.B) {
	positions := benchSoup(100_000, 20_000)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		UniquifyPositions(positions)
	}
}

func BenchmarkBuildEdgeIndices(b *testing.B) {
	positions := benchSoup(30_000, 10_000)
	bucket := UniquifyBucket(Bucket{
		PositionsCompressed: positions,
		Indices:             sequentialIndices(30_000),
	})
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		BuildEdgeIndices(bucket.Indices)
	}
}
