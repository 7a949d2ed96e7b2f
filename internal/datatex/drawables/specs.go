package drawables

import "datatex/internal/datatex"

// specFor returns the declarative program description for one program
// family. The table is the complete inventory of render-pass variants; the
// builder turns each into a full program sharing the addressing preamble.
func specFor(kind datatex.ProgramKind) (ProgramSpec, bool) {
	switch kind {
	case datatex.ProgColor:
		return ProgramSpec{
			Name:          "color",
			PassComponent: "r",
			Clippable:     true,
			Outputs:       []Output{OutColor},
			FragmentBody:  "\tfragColor = vColor;\n",
		}, true

	case datatex.ProgDepth:
		return ProgramSpec{
			Name:          "depth",
			PassComponent: "r",
			Clippable:     true,
			DepthPack:     true,
			FragmentBody:  "\tfragColor = packDepth(gl_FragCoord.z);\n",
		}, true

	case datatex.ProgSilhouette:
		return ProgramSpec{
			Name:          "silhouette",
			PassComponent: "g",
			UniformColor:  true,
			Clippable:     true,
			FragmentBody:  "\tfragColor = uSilhouetteColor;\n",
		}, true

	case datatex.ProgEdgesColor:
		return ProgramSpec{
			Name:          "edgesColor",
			Edges:         true,
			PassComponent: "b",
			Clippable:     true,
			Outputs:       []Output{OutColor},
			FragmentBody:  "\tfragColor = vColor;\n",
		}, true

	case datatex.ProgEdgesUniform:
		return ProgramSpec{
			Name:          "edgesUniform",
			Edges:         true,
			PassComponent: "b",
			UniformColor:  true,
			Clippable:     true,
			FragmentBody:  "\tfragColor = uSilhouetteColor;\n",
		}, true

	case datatex.ProgPickMesh:
		return ProgramSpec{
			Name:              "pickMesh",
			PassComponent:     "a",
			PickClipTransform: true,
			Clippable:         true,
			Outputs:           []Output{OutPickColor},
			FragmentBody:      "\tfragColor = vPickColor;\n",
		}, true

	case datatex.ProgPickDepth:
		return ProgramSpec{
			Name:              "pickDepth",
			PassComponent:     "a",
			PickClipTransform: true,
			Clippable:         true,
			DepthPack:         true,
			ExtraUniforms:     []string{"uniform float uPickZFar;"},
			Outputs:           []Output{OutViewPosition},
			FragmentBody:      "\tfragColor = packDepth(-vViewPosition.z / uPickZFar);\n",
		}, true

	case datatex.ProgSnapInit:
		return ProgramSpec{
			Name:              "snapInit",
			PassComponent:     "a",
			PickClipTransform: true,
			Clippable:         true,
			Outputs:           []Output{OutPickColor},
			FragmentBody:      "\tfragColor = vPickColor;\n",
		}, true

	case datatex.ProgSnap:
		return ProgramSpec{
			Name:              "snap",
			Edges:             true,
			PassComponent:     "a",
			PickClipTransform: true,
			Clippable:         true,
			DepthPack:         true,
			FragmentBody:      "\tfragColor = packDepth(gl_FragCoord.z);\n",
		}, true

	case datatex.ProgOcclusion:
		return ProgramSpec{
			Name:          "occlusion",
			PassComponent: "r",
			Clippable:     true,
			FragmentBody:  "\tfragColor = vec4(1.0);\n",
		}, true
	}
	return ProgramSpec{}, false
}
