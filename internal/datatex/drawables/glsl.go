package drawables

import "fmt"

// The object/vertex addressing algorithm is defined once here and shared by
// every program variant. All consumers must read the packed layout the same
// way: 8-texel object records, one object id per 8 primitives, bucket-local
// indices rebased by the per-object base offsets.

// glslHeader is the common version pragma.
const glslHeader = "#version 410 core\n"

// addressingDecls declares the samplers and uniforms of the shared
// addressing preamble. Edge programs read the edge index textures instead
// of the triangle ones.
func addressingDecls(edges bool) string {
	idxTex := "uIndices"
	idTex := "uPrimToObject"
	if edges {
		idxTex = "uEdgeIndices"
		idTex = "uEdgeToObject"
	}
	return fmt.Sprintf(`
uniform mat4 uViewMatrix;
uniform mat4 uProjMatrix;
uniform int uRenderPass;

uniform usampler2D uObjectAttrs;
uniform sampler2D uObjectMatrices;
uniform sampler2D uObjectDecodeMatrices;
uniform sampler2D uObjectOffsets;
uniform usampler2D uPositions;
uniform usampler2D %s;
uniform usampler2D %s;

mat4 fetchMat4(sampler2D tex, int base) {
	int w = textureSize(tex, 0).x;
	return mat4(
		texelFetch(tex, ivec2(base %% w, base / w), 0),
		texelFetch(tex, ivec2((base + 1) %% w, (base + 1) / w), 0),
		texelFetch(tex, ivec2((base + 2) %% w, (base + 2) / w), 0),
		texelFetch(tex, ivec2((base + 3) %% w, (base + 3) / w), 0));
}

int unpack24(uvec4 texel) {
	return int(texel.r) | (int(texel.g) << 8) | (int(texel.b) << 16);
}
`, idxTex, idTex)
}

// addressingBody emits the shared vertex addressing steps:
//
//  1. primitive number from gl_VertexID,
//  2. object index from the primitive-to-object texture (one id per 8
//     primitives),
//  3. render-pass selector test against the packed record,
//  4. bucket-local vertex index from the index texture, rebased through the
//     per-object index base offset,
//  5. quantized position fetch and decode through the per-object matrices.
//
// passComponent selects which of the four packed selector bytes this
// program compares (r=color, g=silhouette, b=edges, a=pick).
func addressingBody(edges bool, passComponent string) string {
	vertsPerPrim := 3
	idxTex := "uIndices"
	idTex := "uPrimToObject"
	baseTexel := 5
	cornerExpr := "int(corner == 0 ? primIndices.r : (corner == 1 ? primIndices.g : primIndices.b))"
	fetchSwizzle := "rgb"
	if edges {
		vertsPerPrim = 2
		idxTex = "uEdgeIndices"
		idTex = "uEdgeToObject"
		baseTexel = 6
		cornerExpr = "int(corner == 0 ? primIndices.r : primIndices.g)"
		fetchSwizzle = "rg"
	}
	return fmt.Sprintf(`
	int primIndex = gl_VertexID / %d;
	int idTexel = primIndex / 8;
	int idW = textureSize(%s, 0).x;
	int objectIndex = int(texelFetch(%s, ivec2(idTexel %% idW, idTexel / idW), 0).r);
	ivec2 objBase = ivec2(8 * (objectIndex %% 64), objectIndex / 64);

	uvec4 passSelectors = texelFetch(uObjectAttrs, objBase + ivec2(2, 0), 0);
	if (int(passSelectors.%s) != uRenderPass) {
		gl_Position = vec4(0.0, 0.0, 2.0, 0.0);
		return;
	}

	int vertexBase = unpack24(texelFetch(uObjectAttrs, objBase + ivec2(4, 0), 0));
	int baseOffset = unpack24(texelFetch(uObjectAttrs, objBase + ivec2(%d, 0), 0));

	int primTexel = primIndex - baseOffset;
	int idxW = textureSize(%s, 0).x;
	uvec4 primIndices4 = texelFetch(%s, ivec2(primTexel %% idxW, primTexel / idxW), 0);
	uvec%d primIndices = primIndices4.%s;
	int corner = gl_VertexID %% %d;
	int vertexIndex = vertexBase + %s;

	int posW = textureSize(uPositions, 0).x;
	uvec3 qPosition = texelFetch(uPositions, ivec2(vertexIndex %% posW, vertexIndex / posW), 0).rgb;

	mat4 decodeMatrix = fetchMat4(uObjectDecodeMatrices, objectIndex * 4);
	mat4 instanceMatrix = fetchMat4(uObjectMatrices, objectIndex * 4);
	int offW = textureSize(uObjectOffsets, 0).x;
	vec3 objOffset = texelFetch(uObjectOffsets, ivec2(objectIndex %% offW, objectIndex / offW), 0).rgb;

	vec4 worldPosition = instanceMatrix * (decodeMatrix * vec4(vec3(qPosition), 1.0)) + vec4(objOffset, 0.0);
	vec4 viewPosition = uViewMatrix * worldPosition;
`, vertsPerPrim, idTex, idTex, passComponent, baseTexel, idxTex, idxTex, vertsPerPrim, fetchSwizzle, vertsPerPrim, cornerExpr)
}

// Optional vertex-stage output snippets, keyed by Output. Only the outputs
// a later stage references are emitted.
const (
	colorOutDecl = "flat out vec4 vColor;\n"
	colorOutExpr = "\tvColor = vec4(texelFetch(uObjectAttrs, objBase, 0)) / 255.0;\n"

	pickColorOutDecl = "flat out vec4 vPickColor;\n"
	pickColorOutExpr = "\tvPickColor = vec4(texelFetch(uObjectAttrs, objBase + ivec2(1, 0), 0)) / 255.0;\n"

	viewPosOutDecl = "out vec3 vViewPosition;\n"
	viewPosOutExpr = "\tvViewPosition = viewPosition.xyz;\n"

	worldPosOutDecl = "out vec3 vWorldPosition;\n"
	worldPosOutExpr = "\tvWorldPosition = worldPosition.xyz;\n"

	clipFlagOutDecl = "flat out uint vClippable;\n"
	clipFlagOutExpr = "\tvClippable = texelFetch(uObjectAttrs, objBase + ivec2(3, 0), 0).r;\n"
)

// sectionPlaneFragment is the fragment-stage clipping prologue shared by
// clippable programs.
const sectionPlaneFragment = `
	if (vClippable > 0u) {
		for (int i = 0; i < uNumSectionPlanes; i++) {
			if (dot(vWorldPosition - uSectionPlanePos[i], uSectionPlaneDir[i]) < 0.0) {
				discard;
			}
		}
	}
`

// depthPackFunctions encodes a 0..1 float into RGBA bytes for the depth and
// snap passes.
const depthPackFunctions = `
vec4 packDepth(float depth) {
	const vec4 bitShift = vec4(256.0 * 256.0 * 256.0, 256.0 * 256.0, 256.0, 1.0);
	const vec4 bitMask = vec4(0.0, 1.0 / 256.0, 1.0 / 256.0, 1.0 / 256.0);
	vec4 res = fract(depth * bitShift);
	res -= res.xxyz * bitMask;
	return res;
}
`
