package datatex

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
)

// FrameContext carries the per-frame camera state into the draw entry
// points. View matrices are expected relative to the layer origin; use
// RTCViewMatrix to rebase a world-space view matrix.
type FrameContext struct {
	View mgl32.Mat4
	Proj mgl32.Mat4
	Eye  mgl64.Vec3

	// PickClipTransform remaps clip space to the picking viewport for the
	// pick, snap and occlusion passes. Identity outside those passes.
	PickClipTransform mgl32.Mat4

	// SilhouetteColor is the uniform fill for the silhouette and
	// uniform-color edge passes of the current draw.
	SilhouetteColor [4]float32

	// SectionPlanes clip objects whose clippable byte is set. At most
	// MaxSectionPlanes are honored.
	SectionPlanes []SectionPlane
}

// SectionPlane is one world-space clipping plane.
type SectionPlane struct {
	Pos mgl32.Vec3
	Dir mgl32.Vec3
}

// MaxSectionPlanes is the section-plane uniform budget of every generated
// program.
const MaxSectionPlanes = 6

// NewFrameContext returns a context with identity pick transform.
func NewFrameContext(view, proj mgl32.Mat4, eye mgl64.Vec3) *FrameContext {
	return &FrameContext{
		View:              view,
		Proj:              proj,
		Eye:               eye,
		PickClipTransform: mgl32.Ident4(),
	}
}

// RTCViewMatrix rebases a world-space view matrix onto a layer origin:
// the origin is folded into the translation column so quantized coordinates
// stay small relative to the camera.
func RTCViewMatrix(view mgl64.Mat4, origin mgl64.Vec3) mgl32.Mat4 {
	rtc := view.Mul4(mgl64.Translate3D(origin.X(), origin.Y(), origin.Z()))
	var out mgl32.Mat4
	for i := 0; i < 16; i++ {
		out[i] = float32(rtc[i])
	}
	return out
}

// ProgramKind selects the shader-program family a draw entry point needs.
// Together with the RenderPass value it fully determines one drawable.
type ProgramKind int

const (
	ProgColor ProgramKind = iota
	ProgDepth
	ProgSilhouette
	ProgEdgesColor
	ProgEdgesUniform
	ProgPickMesh
	ProgPickDepth
	ProgSnapInit
	ProgSnap
	ProgOcclusion
	numProgramKinds
)

// LayerRenderers issues the actual GPU draw for one layer, program family
// and render pass. Implemented by the drawables registry; a nil value on a
// layer makes every draw entry point a no-op (headless operation).
type LayerRenderers interface {
	DrawLayer(frame *FrameContext, layer *Layer, prog ProgramKind, pass RenderPass)
}
