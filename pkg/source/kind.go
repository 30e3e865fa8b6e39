package source

import "strings"

// Kind is the closed set of host node types the translator understands.
// Host tags outside the table map to [KindUnknown]; tags that only need a
// verdict and no resolution semantics share [KindBake] or [KindUnsupported].
type Kind uint8

const (
	KindUnknown Kind = iota

	// Interface and layout nodes.
	KindFrame
	KindReroute
	KindGroup
	KindGroupInput
	KindGroupOutput

	// Shaders and outputs.
	KindOutputMaterial
	KindPrincipled
	KindEmission

	// Leaves.
	KindTexImage
	KindTexEnvironment
	KindRGB
	KindValue

	// Channel extraction and normal encoding.
	KindSeparateColor
	KindSeparateXYZ
	KindNormalMap
	KindBump

	// UV plumbing.
	KindTexCoord
	KindUVMap
	KindMapping

	// Blend and arithmetic.
	KindMix
	KindMath

	// Compute nodes with a fixed target mapping.
	KindClamp
	KindMapRange
	KindHueSat
	KindInvert
	KindBrightContrast
	KindColorRamp
	KindCurveRGB
	KindRGBToBW
	KindCombineColor
	KindVectorRotate
	KindVectorTransform
	KindNormal
	KindTexNoise
	KindTexVoronoi
	KindTexMusgrave
	KindTexGradient

	// Verdict-only groups.
	KindBake
	KindUnsupported

	kindCount
)

// Support is the compatibility level of a node kind.
type Support uint8

const (
	SupportUnknown     Support = iota
	SupportUI                  // layout only, never contributes a value
	SupportFull                // resolved or emitted directly
	SupportConditional         // identity elision or a mapped operation
	SupportGroup               // supported only for authored target groups
	SupportPartial             // some parameters are ignored
	SupportBake                // needs pre-baking to a texture
	SupportNone                // no target equivalent
)

func (s Support) String() string {
	switch s {
	case SupportUI:
		return "ui"
	case SupportFull:
		return "supported"
	case SupportConditional:
		return "conditional"
	case SupportGroup:
		return "group"
	case SupportPartial:
		return "partial"
	case SupportBake:
		return "bake"
	case SupportNone:
		return "unsupported"
	}
	return "unknown"
}

var kindNames = [kindCount]string{
	KindUnknown:         "UNKNOWN",
	KindFrame:           "FRAME",
	KindReroute:         "REROUTE",
	KindGroup:           "GROUP",
	KindGroupInput:      "GROUP_INPUT",
	KindGroupOutput:     "GROUP_OUTPUT",
	KindOutputMaterial:  "OUTPUT_MATERIAL",
	KindPrincipled:      "BSDF_PRINCIPLED",
	KindEmission:        "EMISSION",
	KindTexImage:        "TEX_IMAGE",
	KindTexEnvironment:  "TEX_ENVIRONMENT",
	KindRGB:             "RGB",
	KindValue:           "VALUE",
	KindSeparateColor:   "SEPARATE_COLOR",
	KindSeparateXYZ:     "SEPARATE_XYZ",
	KindNormalMap:       "NORMAL_MAP",
	KindBump:            "BUMP",
	KindTexCoord:        "TEX_COORD",
	KindUVMap:           "UVMAP",
	KindMapping:         "MAPPING",
	KindMix:             "MIX",
	KindMath:            "MATH",
	KindClamp:           "CLAMP",
	KindMapRange:        "MAP_RANGE",
	KindHueSat:          "HUE_SAT",
	KindInvert:          "INVERT",
	KindBrightContrast:  "BRIGHTCONTRAST",
	KindColorRamp:       "VALTORGB",
	KindCurveRGB:        "CURVE_RGB",
	KindRGBToBW:         "RGBTOBW",
	KindCombineColor:    "COMBINE_COLOR",
	KindVectorRotate:    "VECTOR_ROTATE",
	KindVectorTransform: "VECTOR_TRANSFORM",
	KindNormal:          "NORMAL",
	KindTexNoise:        "TEX_NOISE",
	KindTexVoronoi:      "TEX_VORONOI",
	KindTexMusgrave:     "TEX_MUSGRAVE",
	KindTexGradient:     "TEX_GRADIENT",
	KindBake:            "BAKE",
	KindUnsupported:     "UNSUPPORTED",
}

// String returns the canonical host tag of k. Grouped kinds return a
// placeholder; the raw tag lives on [Node.Type].
func (k Kind) String() string {
	if k < kindCount {
		return kindNames[k]
	}
	return "UNKNOWN"
}

var kindSupport = [kindCount]Support{
	KindUnknown:         SupportUnknown,
	KindFrame:           SupportUI,
	KindReroute:         SupportUI,
	KindGroup:           SupportGroup,
	KindGroupInput:      SupportUI,
	KindGroupOutput:     SupportUI,
	KindOutputMaterial:  SupportFull,
	KindPrincipled:      SupportFull,
	KindEmission:        SupportFull,
	KindTexImage:        SupportFull,
	KindTexEnvironment:  SupportFull,
	KindRGB:             SupportFull,
	KindValue:           SupportFull,
	KindSeparateColor:   SupportFull,
	KindSeparateXYZ:     SupportFull,
	KindNormalMap:       SupportFull,
	KindBump:            SupportBake,
	KindTexCoord:        SupportPartial,
	KindUVMap:           SupportPartial,
	KindMapping:         SupportPartial,
	KindMix:             SupportConditional,
	KindMath:            SupportConditional,
	KindClamp:           SupportFull,
	KindMapRange:        SupportFull,
	KindHueSat:          SupportFull,
	KindInvert:          SupportFull,
	KindBrightContrast:  SupportFull,
	KindColorRamp:       SupportFull,
	KindCurveRGB:        SupportFull,
	KindRGBToBW:         SupportFull,
	KindCombineColor:    SupportFull,
	KindVectorRotate:    SupportFull,
	KindVectorTransform: SupportFull,
	KindNormal:          SupportFull,
	KindTexNoise:        SupportFull,
	KindTexVoronoi:      SupportFull,
	KindTexMusgrave:     SupportFull,
	KindTexGradient:     SupportFull,
	KindBake:            SupportBake,
	KindUnsupported:     SupportNone,
}

// Support returns the compatibility level of k.
func (k Kind) Support() Support {
	if k < kindCount {
		return kindSupport[k]
	}
	return SupportUnknown
}

// tagKinds maps every recognized host tag, including legacy spellings.
var tagKinds = map[string]Kind{
	"SEPARATE_RGB": KindSeparateColor,
	"SEPXYZ":       KindSeparateXYZ,
	"MIX_RGB":      KindMix,
}

var bakeTags = []string{
	"DISPLACEMENT", "VECTOR_DISPLACEMENT", "TEX_WAVE", "TEX_WHITE_NOISE",
	"TEX_MAGIC", "TEX_CHECKER", "TEX_BRICK", "TEX_POINTDENSITY", "TEX_SKY",
	"TEX_GABOR", "TEX_IES", "BLACKBODY", "LIGHT_FALLOFF", "WAVELENGTH",
	"VECTOR_MATH", "GAMMA", "SHADER_TO_RGB", "COMBXYZ", "CURVE_VEC",
	"RADIAL_TILING", "COMBINE_CYLINDRICAL", "SEPARATE_CYLINDRICAL",
	"COMBINE_SPHERICAL", "SEPARATE_SPHERICAL", "FLOAT_CURVE",
}

var unsupportedTags = []string{
	"OUTPUT_AOV", "OUTPUT_WORLD", "OUTPUT_LIGHT", "BACKGROUND", "HOLDOUT",
	"MIX_SHADER", "ADD_SHADER", "BSDF_DIFFUSE", "BSDF_GLOSSY", "BSDF_GLASS",
	"BSDF_METALLIC", "BSDF_REFRACTION", "BSDF_SPECULAR", "BSDF_RAY_PORTAL",
	"BSDF_TRANSLUCENT", "BSDF_TRANSPARENT", "BSDF_SHEEN", "BSDF_VELVET",
	"BSDF_TOON", "SUBSURFACE_SCATTERING", "BSDF_HAIR", "BSDF_HAIR_PRINCIPLED",
	"PRINCIPLED_HAIR", "VOLUME_ABSORPTION", "VOLUME_SCATTER",
	"PRINCIPLED_VOLUME", "VOLUME_COEFFICIENTS", "GEOMETRY", "OBJECT_INFO",
	"CAMERA_DATA", "AMBIENT_OCCLUSION", "HAIR_INFO", "CURVE_INFO",
	"PARTICLE_INFO", "POINT_INFO", "VERTEX_COLOR", "VOLUME_INFO",
	"WIREFRAME", "LIGHT_PATH", "FRESNEL", "LAYER_WEIGHT", "TANGENT", "BEVEL",
	"ATTRIBUTE",
}

func init() {
	for k := KindFrame; k < KindBake; k++ {
		tagKinds[kindNames[k]] = k
	}
	for _, t := range bakeTags {
		tagKinds[t] = KindBake
	}
	for _, t := range unsupportedTags {
		tagKinds[t] = KindUnsupported
	}
}

// KindOf maps a host type tag to its kind.
func KindOf(tag string) Kind {
	if k, ok := tagKinds[strings.ToUpper(strings.TrimSpace(tag))]; ok {
		return k
	}
	return KindUnknown
}
