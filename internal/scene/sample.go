package scene

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
)

// boxSoup returns a unit box as a raw triangle soup: 36 vertices, indices
// 0..35. Position deduplication collapses it to the 8 shared corners.
func boxSoup(size float64) ([]float64, []uint32) {
	s := size / 2
	corners := [8][3]float64{
		{-s, -s, -s}, {s, -s, -s}, {s, s, -s}, {-s, s, -s},
		{-s, -s, s}, {s, -s, s}, {s, s, s}, {-s, s, s},
	}
	faces := [12][3]int{
		{0, 2, 1}, {0, 3, 2}, // back
		{4, 5, 6}, {4, 6, 7}, // front
		{0, 4, 7}, {0, 7, 3}, // left
		{1, 2, 6}, {1, 6, 5}, // right
		{3, 7, 6}, {3, 6, 2}, // top
		{0, 1, 5}, {0, 5, 4}, // bottom
	}

	positions := make([]float64, 0, 36*3)
	indices := make([]uint32, 0, 36)
	for _, f := range faces {
		for _, ci := range f {
			c := corners[ci]
			positions = append(positions, c[0], c[1], c[2])
			indices = append(indices, uint32(len(indices)))
		}
	}
	return positions, indices
}

var palette = [][4]uint8{
	{200, 80, 70, 255},
	{90, 160, 220, 255},
	{110, 190, 110, 255},
	{230, 190, 80, 255},
	{170, 120, 210, 255},
	{120, 210, 200, 140}, // transparent
}

// BuildSampleGrid creates an n x n grid of boxes sharing one uploaded unit
// box geometry, positioned far from the world origin to exercise the RTC
// path. Every sixth box is transparent.
func BuildSampleGrid(n int) (*Model, error) {
	origin := mgl64.Vec3{2500000, 0, -1200000}
	m := NewModel(origin)

	positions, indices := boxSoup(1.0)

	spacing := 1.6
	for ix := 0; ix < n; ix++ {
		for iz := 0; iz < n; iz++ {
			i := ix*n + iz
			matrix := mgl32.Translate3D(
				float32(float64(ix)*spacing),
				0,
				float32(float64(iz)*spacing),
			)
			err := m.AddObject(ObjectCfg{
				ID:         fmt.Sprintf("box-%d-%d", ix, iz),
				GeometryID: "unit-box",
				Positions:  positions,
				Indices:    indices,
				Matrix:     &matrix,
				Color:      palette[i%len(palette)],
				Solid:      true,
			})
			if err != nil {
				return nil, err
			}
		}
	}
	return m, nil
}
