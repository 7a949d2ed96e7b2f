package geometry

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
)

// AABB is an axis-aligned bounding box in model or world space.
type AABB struct {
	Min mgl64.Vec3
	Max mgl64.Vec3
}

// EmptyAABB returns a collapsed box that expands from nothing.
func EmptyAABB() AABB {
	inf := math.Inf(1)
	return AABB{
		Min: mgl64.Vec3{inf, inf, inf},
		Max: mgl64.Vec3{-inf, -inf, -inf},
	}
}

// IsEmpty reports whether the box has never been expanded.
func (a AABB) IsEmpty() bool { return a.Min.X() > a.Max.X() }

// ExpandPoint grows the box to contain p.
func (a *AABB) ExpandPoint(p mgl64.Vec3) {
	for i := 0; i < 3; i++ {
		if p[i] < a.Min[i] {
			a.Min[i] = p[i]
		}
		if p[i] > a.Max[i] {
			a.Max[i] = p[i]
		}
	}
}

// ExpandAABB grows the box to contain b.
func (a *AABB) ExpandAABB(b AABB) {
	if b.IsEmpty() {
		return
	}
	a.ExpandPoint(b.Min)
	a.ExpandPoint(b.Max)
}

// Center returns the box midpoint.
func (a AABB) Center() mgl64.Vec3 {
	return a.Min.Add(a.Max).Mul(0.5)
}

// Corners returns the eight box corners.
func (a AABB) Corners() [8]mgl64.Vec3 {
	return [8]mgl64.Vec3{
		{a.Min.X(), a.Min.Y(), a.Min.Z()},
		{a.Max.X(), a.Min.Y(), a.Min.Z()},
		{a.Min.X(), a.Max.Y(), a.Min.Z()},
		{a.Max.X(), a.Max.Y(), a.Min.Z()},
		{a.Min.X(), a.Min.Y(), a.Max.Z()},
		{a.Max.X(), a.Min.Y(), a.Max.Z()},
		{a.Min.X(), a.Max.Y(), a.Max.Z()},
		{a.Max.X(), a.Max.Y(), a.Max.Z()},
	}
}

// Transformed treats the box as an oriented box, pushes its corners through
// m and returns the axis-aligned bounds of the result.
func (a AABB) Transformed(m mgl32.Mat4) AABB {
	out := EmptyAABB()
	for _, c := range a.Corners() {
		p := m.Mul4x1(mgl32.Vec4{float32(c.X()), float32(c.Y()), float32(c.Z()), 1})
		out.ExpandPoint(mgl64.Vec3{float64(p.X()), float64(p.Y()), float64(p.Z())})
	}
	return out
}

// Translated returns the box shifted by v.
func (a AABB) Translated(v mgl64.Vec3) AABB {
	if a.IsEmpty() {
		return a
	}
	return AABB{Min: a.Min.Add(v), Max: a.Max.Add(v)}
}
