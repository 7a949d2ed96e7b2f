package drawables

import "strings"

// Output names one optional vertex-stage product. A ProgramSpec lists the
// outputs its fragment stage references; the builder resolves the set once
// before emission so unused computations never appear in the generated
// program.
type Output int

const (
	OutColor Output = iota
	OutPickColor
	OutViewPosition
	OutWorldPosition
)

// ProgramSpec captures exactly what varies between the render-pass program
// variants. Everything else, in particular the object/vertex addressing
// preamble, is shared.
type ProgramSpec struct {
	Name string

	// Edges selects line topology over the edge index textures.
	Edges bool

	// PassComponent is the packed selector byte this program compares
	// against uRenderPass: r=color, g=silhouette, b=edges, a=pick.
	PassComponent string

	// PickClipTransform remaps the clip-space position into the picking
	// viewport.
	PickClipTransform bool

	// UniformColor fills fragments from uSilhouetteColor instead of the
	// per-object color.
	UniformColor bool

	// Clippable emits section-plane discard support.
	Clippable bool

	// DepthPack makes the packDepth helper available to the fragment body.
	DepthPack bool

	// ExtraUniforms are appended verbatim to the fragment declarations.
	ExtraUniforms []string

	// Outputs lists the vertex-stage products the fragment body reads.
	Outputs []Output

	// FragmentBody is the fragment main body after the clipping prologue.
	FragmentBody string
}

// needs is the resolved output set of one build.
type needs struct {
	color    bool
	pick     bool
	viewPos  bool
	worldPos bool
	clipFlag bool
}

// resolveNeeds folds the declared outputs and the implicit requirements of
// clipping into one set, once, before any text is emitted.
func resolveNeeds(spec ProgramSpec) needs {
	var n needs
	for _, out := range spec.Outputs {
		switch out {
		case OutColor:
			n.color = true
		case OutPickColor:
			n.pick = true
		case OutViewPosition:
			n.viewPos = true
		case OutWorldPosition:
			n.worldPos = true
		}
	}
	if spec.Clippable {
		n.worldPos = true
		n.clipFlag = true
	}
	return n
}

// BuildVertexSource emits the vertex program for a spec.
func BuildVertexSource(spec ProgramSpec) string {
	n := resolveNeeds(spec)

	var b strings.Builder
	b.WriteString(glslHeader)
	b.WriteString(addressingDecls(spec.Edges))
	if spec.PickClipTransform {
		b.WriteString("uniform mat4 uPickClipTransform;\n")
	}
	if n.color {
		b.WriteString(colorOutDecl)
	}
	if n.pick {
		b.WriteString(pickColorOutDecl)
	}
	if n.viewPos {
		b.WriteString(viewPosOutDecl)
	}
	if n.worldPos {
		b.WriteString(worldPosOutDecl)
	}
	if n.clipFlag {
		b.WriteString(clipFlagOutDecl)
	}

	b.WriteString("\nvoid main() {\n")
	b.WriteString(addressingBody(spec.Edges, spec.PassComponent))
	if n.color {
		b.WriteString(colorOutExpr)
	}
	if n.pick {
		b.WriteString(pickColorOutExpr)
	}
	if n.viewPos {
		b.WriteString(viewPosOutExpr)
	}
	if n.worldPos {
		b.WriteString(worldPosOutExpr)
	}
	if n.clipFlag {
		b.WriteString(clipFlagOutExpr)
	}
	b.WriteString("\tvec4 clipPosition = uProjMatrix * viewPosition;\n")
	if spec.PickClipTransform {
		b.WriteString("\tgl_Position = uPickClipTransform * clipPosition;\n")
	} else {
		b.WriteString("\tgl_Position = clipPosition;\n")
	}
	b.WriteString("}\n")
	return b.String()
}

// BuildFragmentSource emits the fragment program for a spec.
func BuildFragmentSource(spec ProgramSpec) string {
	n := resolveNeeds(spec)

	var b strings.Builder
	b.WriteString(glslHeader)
	if n.color {
		b.WriteString("flat in vec4 vColor;\n")
	}
	if n.pick {
		b.WriteString("flat in vec4 vPickColor;\n")
	}
	if n.viewPos {
		b.WriteString("in vec3 vViewPosition;\n")
	}
	if n.worldPos {
		b.WriteString("in vec3 vWorldPosition;\n")
	}
	if n.clipFlag {
		b.WriteString("flat in uint vClippable;\n")
	}
	if spec.UniformColor {
		b.WriteString("uniform vec4 uSilhouetteColor;\n")
	}
	if spec.Clippable {
		b.WriteString("uniform int uNumSectionPlanes;\n")
		b.WriteString("uniform vec3 uSectionPlanePos[6];\n")
		b.WriteString("uniform vec3 uSectionPlaneDir[6];\n")
	}
	for _, u := range spec.ExtraUniforms {
		b.WriteString(u + "\n")
	}
	if spec.DepthPack {
		b.WriteString(depthPackFunctions)
	}
	b.WriteString("out vec4 fragColor;\n")
	b.WriteString("\nvoid main() {\n")
	if spec.Clippable {
		b.WriteString(sectionPlaneFragment)
	}
	b.WriteString(spec.FragmentBody)
	b.WriteString("}\n")
	return b.String()
}
