package graphics

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
)

// Camera handles the view and projection matrices. The view matrix is kept
// in float64 world space so relative-to-center rebasing stays precise far
// from the coordinate origin.
type Camera struct {
	AspectRatio float32
	FOV         float32
	NearPlane   float32
	FarPlane    float32

	Eye    mgl64.Vec3
	Target mgl64.Vec3
	Up     mgl64.Vec3
}

func NewCamera(width, height int) *Camera {
	return &Camera{
		AspectRatio: float32(width) / float32(height),
		FOV:         60.0,
		NearPlane:   0.1,
		FarPlane:    10000.0,
		Eye:         mgl64.Vec3{0, 0, 10},
		Up:          mgl64.Vec3{0, 1, 0},
	}
}

func (c *Camera) GetProjectionMatrix() mgl32.Mat4 {
	return mgl32.Perspective(mgl32.DegToRad(c.FOV), c.AspectRatio, c.NearPlane, c.FarPlane)
}

// GetViewMatrix returns the world-space view matrix.
func (c *Camera) GetViewMatrix() mgl64.Mat4 {
	return mgl64.LookAtV(c.Eye, c.Target, c.Up)
}

// Orbit positions the eye on a sphere around the target.
func (c *Camera) Orbit(radius, yawDeg, pitchDeg float64) {
	yaw := yawDeg * math.Pi / 180
	pitch := pitchDeg * math.Pi / 180
	c.Eye = c.Target.Add(mgl64.Vec3{
		radius * math.Cos(pitch) * math.Sin(yaw),
		radius * math.Sin(pitch),
		radius * math.Cos(pitch) * math.Cos(yaw),
	})
}

// SetViewport updates the aspect ratio after a window resize.
func (c *Camera) SetViewport(width, height int) {
	if height > 0 {
		c.AspectRatio = float32(width) / float32(height)
	}
}
