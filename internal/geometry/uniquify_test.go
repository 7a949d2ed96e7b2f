package geometry

import (
	"testing"
)

func TestUniquifyPositions(t *testing.T) {
	tests := []struct {
		name         string
		positions    []uint16
		expectUnique int
	}{
		{
			name:         "empty input",
			positions:    nil,
			expectUnique: 0,
		},
		{
			name:         "no duplicates",
			positions:    []uint16{0, 0, 0, 1, 0, 0, 0, 1, 0},
			expectUnique: 3,
		},
		{
			name: "all duplicates collapse to one",
			positions: []uint16{
				7, 8, 9,
				7, 8, 9,
				7, 8, 9,
			},
			expectUnique: 1,
		},
		{
			name: "box soup collapses to corners",
			positions: boxSoupQuantized(),
			// 36 soup vertices share 8 corner positions
			expectUnique: 8,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			unique, remap := UniquifyPositions(tt.positions)

			if got := len(unique) / 3; got != tt.expectUnique {
				t.Fatalf("expected %d unique vertices, got %d", tt.expectUnique, got)
			}
			if len(remap) != len(tt.positions)/3 {
				t.Fatalf("remap length %d, want %d", len(remap), len(tt.positions)/3)
			}

			// Every original vertex must map to a unique vertex with the
			// exact same coordinates
			for orig, u := range remap {
				for c := 0; c < 3; c++ {
					if tt.positions[orig*3+c] != unique[int(u)*3+c] {
						t.Fatalf("vertex %d remapped to %d with different coords", orig, u)
					}
				}
			}
		})
	}
}

func TestUniquifyPositionsSortedOutput(t *testing.T) {
	positions := []uint16{
		9, 9, 9,
		0, 0, 0,
		5, 0, 5,
		0, 0, 0,
		5, 0, 5,
	}
	unique, _ := UniquifyPositions(positions)

	if got := len(unique) / 3; got != 3 {
		t.Fatalf("expected 3 unique vertices, got %d", got)
	}
	// Output comes back lexicographically ordered by (x, y, z)
	for i := 3; i < len(unique); i += 3 {
		a := [3]uint16{unique[i-3], unique[i-2], unique[i-1]}
		b := [3]uint16{unique[i], unique[i+1], unique[i+2]}
		if !lexLess(a, b) {
			t.Fatalf("unique output not sorted: %v before %v", a, b)
		}
	}
}

func TestUniquifyPositionsIdempotent(t *testing.T) {
	positions := boxSoupQuantized()

	once, _ := UniquifyPositions(positions)
	twice, remap := UniquifyPositions(once)

	if len(twice) != len(once) {
		t.Fatalf("second pass changed vertex count: %d -> %d", len(once)/3, len(twice)/3)
	}
	for i, u := range remap {
		if int(u) != i {
			t.Fatalf("second pass remapped vertex %d to %d, expected identity", i, u)
		}
	}
}

func TestUniquifyBucket(t *testing.T) {
	// Two triangles sharing an edge, written as a 6-vertex soup
	b := Bucket{
		PositionsCompressed: []uint16{
			0, 0, 0,
			10, 0, 0,
			10, 10, 0,
			0, 0, 0,
			10, 10, 0,
			0, 10, 0,
		},
		Indices: []uint32{0, 1, 2, 3, 4, 5},
	}

	out := UniquifyBucket(b)

	if got := out.NumVertices(); got != 4 {
		t.Fatalf("expected 4 unique vertices, got %d", got)
	}
	if len(out.Indices) != 6 {
		t.Fatalf("index count changed: %d", len(out.Indices))
	}
	// The shared diagonal must reference the same vertices in both triangles
	if out.Indices[0] != out.Indices[3] {
		t.Errorf("vertex (0,0,0) not shared: %d vs %d", out.Indices[0], out.Indices[3])
	}
	if out.Indices[2] != out.Indices[4] {
		t.Errorf("vertex (10,10,0) not shared: %d vs %d", out.Indices[2], out.Indices[4])
	}
	// Topology preserved: each remapped index still points at the original coords
	for i, idx := range out.Indices {
		for c := 0; c < 3; c++ {
			if out.PositionsCompressed[int(idx)*3+c] != b.PositionsCompressed[int(b.Indices[i])*3+c] {
				t.Fatalf("index %d points at wrong vertex after remap", i)
			}
		}
	}
}

func lexLess(a, b [3]uint16) bool {
	if a[0] != b[0] {
		return a[0] < b[0]
	}
	if a[1] != b[1] {
		return a[1] < b[1]
	}
	return a[2] < b[2]
}

// boxSoupQuantized returns a unit box as 36 quantized soup vertices
// touching only the 8 corner positions.
func boxSoupQuantized() []uint16 {
	corners := [8][3]uint16{
		{0, 0, 0}, {65535, 0, 0}, {65535, 65535, 0}, {0, 65535, 0},
		{0, 0, 65535}, {65535, 0, 65535}, {65535, 65535, 65535}, {0, 65535, 65535},
	}
	faces := [12][3]int{
		{0, 2, 1}, {0, 3, 2},
		{4, 5, 6}, {4, 6, 7},
		{0, 4, 7}, {0, 7, 3},
		{1, 2, 6}, {1, 6, 5},
		{3, 7, 6}, {3, 6, 2},
		{0, 1, 5}, {0, 5, 4},
	}
	out := make([]uint16, 0, 36*3)
	for _, f := range faces {
		for _, ci := range f {
			c := corners[ci]
			out = append(out, c[0], c[1], c[2])
		}
	}
	return out
}
