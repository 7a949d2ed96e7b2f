package geometry

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
)

// Quantization range for compressed positions.
const quantMax = 65535.0

// QuantizePositions compresses float positions (x,y,z triples) into uint16
// triples spanning the given AABB and returns the decode matrix that maps
// quantized coordinates back to model space.
func QuantizePositions(positions []float64, aabb AABB) ([]uint16, mgl32.Mat4) {
	size := aabb.Max.Sub(aabb.Min)
	scale := mgl64.Vec3{
		safeScale(size.X()),
		safeScale(size.Y()),
		safeScale(size.Z()),
	}

	out := make([]uint16, len(positions))
	for i := 0; i+2 < len(positions); i += 3 {
		out[i] = quantizeCoord(positions[i], aabb.Min.X(), scale.X())
		out[i+1] = quantizeCoord(positions[i+1], aabb.Min.Y(), scale.Y())
		out[i+2] = quantizeCoord(positions[i+2], aabb.Min.Z(), scale.Z())
	}

	decode := mgl32.Translate3D(
		float32(aabb.Min.X()), float32(aabb.Min.Y()), float32(aabb.Min.Z()),
	).Mul4(mgl32.Scale3D(
		float32(size.X()/quantMax), float32(size.Y()/quantMax), float32(size.Z()/quantMax),
	))
	return out, decode
}

func safeScale(extent float64) float64 {
	if extent == 0 {
		return 0
	}
	return quantMax / extent
}

func quantizeCoord(v, min, scale float64) uint16 {
	q := (v - min) * scale
	if q < 0 {
		q = 0
	}
	if q > quantMax {
		q = quantMax
	}
	return uint16(q + 0.5)
}

// DecodePosition maps one quantized vertex back to model space through a
// decode matrix.
func DecodePosition(q [3]uint16, decode mgl32.Mat4) mgl64.Vec3 {
	p := decode.Mul4x1(mgl32.Vec4{float32(q[0]), float32(q[1]), float32(q[2]), 1})
	return mgl64.Vec3{float64(p.X()), float64(p.Y()), float64(p.Z())}
}
