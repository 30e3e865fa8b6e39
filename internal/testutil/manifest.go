// Package testutil holds fixtures shared by package tests: a small node
// definition manifest and builders for host shading graphs.
package testutil

import (
	"strings"

	"github.com/matzehuels/shaderport/pkg/manifest"
)

// def builds a definition from "name:type" or "name:type=value" ports.
func def(name, node, out string, ins ...string) manifest.NodeDef {
	d := manifest.NodeDef{Name: name, Node: node}
	for _, in := range ins {
		p := manifest.Port{}
		decl, val, _ := strings.Cut(in, "=")
		p.Name, p.Type, _ = strings.Cut(decl, ":")
		p.Value = val
		d.Inputs = append(d.Inputs, p)
	}
	for _, o := range strings.Split(out, ",") {
		oname, otype, ok := strings.Cut(o, ":")
		if !ok {
			oname, otype = "out", o
		}
		d.Outputs = append(d.Outputs, manifest.Port{Name: oname, Type: otype})
	}
	return d
}

// Defs returns the fixture node definitions.
func Defs() []manifest.NodeDef {
	img := func(t string) manifest.NodeDef {
		return def("ND_image_"+t, "image", t, "file:filename", "default:"+t, "texcoord:vector2")
	}
	bin := func(node, t string) manifest.NodeDef {
		return def("ND_"+node+"_"+t, node, t, "in1:"+t, "in2:"+t)
	}
	un := func(node, t string) manifest.NodeDef {
		return def("ND_"+node+"_"+t, node, t, "in:"+t)
	}
	conv := func(from, to string) manifest.NodeDef {
		return def("ND_convert_"+from+"_"+to, "convert", to, "in:"+from)
	}
	swz := func(from string) manifest.NodeDef {
		return def("ND_swizzle_"+from+"_float", "swizzle", "float", "in:"+from, "channels:string")
	}

	defs := []manifest.NodeDef{
		img("color3"), img("color4"), img("vector3"), img("float"),
		conv("color4", "color3"), conv("color3", "color4"), conv("float", "color3"),
		conv("color3", "vector3"), conv("vector3", "color3"), conv("float", "vector3"),
		conv("vector2", "vector3"), conv("color4", "vector4"),
		swz("color3"), swz("color4"), swz("vector2"), swz("vector3"),
		bin("add", "color3"), bin("add", "float"), bin("subtract", "color3"), bin("subtract", "float"),
		bin("multiply", "color3"), bin("multiply", "float"), bin("multiply", "vector3"),
		bin("divide", "float"), bin("power", "float"), bin("min", "float"), bin("max", "float"),
		un("absval", "float"), un("oneminus", "color3"), un("oneminus", "float"),
		def("ND_multiply_color3FA", "multiply", "color3", "in1:color3", "in2:float"),
		def("ND_mix_color3", "mix", "color3", "fg:color3", "bg:color3", "mix:float=0"),
		def("ND_mix_float", "mix", "float", "fg:float", "bg:float", "mix:float=0"),
		def("ND_mix_vector3", "mix", "vector3", "fg:vector3", "bg:vector3", "mix:float=0"),
		def("ND_clamp_float", "clamp", "float", "in:float", "low:float=0", "high:float=1"),
		def("ND_clamp_color3", "clamp", "color3", "in:color3", "low:color3=0, 0, 0", "high:color3=1, 1, 1"),
		def("ND_range_float", "range", "float", "in:float", "inlow:float=0", "inhigh:float=1",
			"gamma:float=1", "outlow:float=0", "outhigh:float=1", "doclamp:boolean=false"),
		def("ND_hsvadjust_color3", "hsvadjust", "color3", "in:color3", "amount:vector3=0, 1, 1"),
		def("ND_contrast_color3", "contrast", "color3", "in:color3", "amount:float=1", "pivot:float=0.5"),
		def("ND_ramplr_color3", "ramplr", "color3", "valuel:color3", "valuer:color3", "texcoord:vector2"),
		def("ND_ramplr_color4", "ramplr", "color4", "valuel:color4", "valuer:color4", "texcoord:vector2"),
		def("ND_ramplr_float", "ramplr", "float", "valuel:float", "valuer:float", "texcoord:vector2"),
		def("ND_curveadjust_float", "curveadjust", "float", "in:float", "knots:vector2array"),
		def("ND_luminance_color3", "luminance", "color3", "in:color3"),
		def("ND_combine2_vector2", "combine2", "vector2", "in1:float", "in2:float"),
		def("ND_combine3_color3", "combine3", "color3", "in1:float", "in2:float", "in3:float"),
		def("ND_combine3_vector3", "combine3", "vector3", "in1:float", "in2:float", "in3:float"),
		def("ND_combine4_color4", "combine4", "color4", "in1:float", "in2:float", "in3:float", "in4:float"),
		def("ND_separate3_color3", "separate3", "outr:float,outg:float,outb:float", "in:color3"),
		def("ND_rotate3d_vector3", "rotate3d", "vector3", "in:vector3", "amount:float", "axis:vector3=0, 1, 0"),
		def("ND_transformnormal_vector3", "transformnormal", "vector3", "in:vector3", "fromspace:string", "tospace:string"),
		def("ND_transformpoint_vector3", "transformpoint", "vector3", "in:vector3", "fromspace:string", "tospace:string"),
		def("ND_transformvector_vector3", "transformvector", "vector3", "in:vector3", "fromspace:string", "tospace:string"),
		def("ND_normal_vector3", "normal", "vector3", "space:string=object"),
		def("ND_unifiednoise3d_float", "unifiednoise3d", "float", "position:vector3", "freq:vector3",
			"offset:vector3", "jitter:float", "octaves:integer=3", "lacunarity:float", "diminish:float", "type:integer=0"),
		def("ND_worleynoise3d_float", "worleynoise3d", "float", "position:vector3", "jitter:float=1"),
		def("ND_fractal3d_float", "fractal3d", "float", "amplitude:float=1", "octaves:integer=3",
			"lacunarity:float=2", "diminish:float=0.5", "position:vector3"),
		def("ND_texcoord_vector2", "texcoord", "vector2", "index:integer=0"),
		def("ND_texcoord_vector3", "texcoord", "vector3", "index:integer=0"),
		def("ND_geompropvalue_vector2", "geompropvalue", "vector2", "geomprop:string", "default:vector2"),
		def("ND_place2d_vector2", "place2d", "vector2", "texcoord:vector2", "pivot:vector2=0, 0",
			"scale:vector2=1, 1", "rotate:float=0", "offset:vector2=0, 0", "operationorder:integer=0"),
		def("ND_normalmap", "normalmap", "vector3", "in:vector3", "scale:float=1", "space:string=tangent"),
		def("ND_realitykit_pbr_surfaceshader", "realitykit_pbr_surfaceshader", "surfaceshader",
			"baseColor:color3=0.18, 0.18, 0.18", "emissiveColor:color3=0, 0, 0", "normal:vector3=0, 0, 1",
			"roughness:float=0.5", "specular:float=0.5", "metallic:float=0", "ambientOcclusion:float=1",
			"clearcoat:float=0", "clearcoatRoughness:float=0.01", "clearcoatNormal:vector3=0, 0, 1",
			"opacity:float=1", "opacityThreshold:float=0", "hasPremultipliedAlpha:boolean=false"),
		def("ND_realitykit_unlit_surfaceshader", "realitykit_unlit_surfaceshader", "surfaceshader",
			"color:color3=0.18, 0.18, 0.18", "opacity:float=1", "opacityThreshold:float=0",
			"applyPostProcessToneMap:boolean=true", "hasPremultipliedAlpha:boolean=false"),
	}

	ktx := def("ND_realitykit_image_color4", "realitykit_image", "color4", "file:filename", "texcoord:vector2")
	ktx.Policy.RequiresKTX = true
	fallback := def("ND_realitykit_geometry_modifier_vertexcolor", "realitykit_vertexcolor", "color3")
	fallback.Policy.Fallback = true
	omitted := def("ND_realitykit_geometrymodifier", "realitykit_geometrymodifier", "vector3", "modelPositionOffset:vector3")
	omitted.Policy.OmittedInDefs = true
	half := def("ND_image_color3_half", "image", "half3", "file:filename", "texcoord:vector2")
	half.Policy.HalfType = true

	return append(defs, ktx, fallback, omitted, half)
}

// Manifest returns the fixture manifest.
func Manifest() *manifest.Manifest {
	return manifest.Build(Defs()...)
}

// KTXManifest returns the fixture manifest with every image variant
// flagged as requiring KTX textures.
func KTXManifest() *manifest.Manifest {
	defs := Defs()
	for i := range defs {
		if defs[i].Node == "image" {
			defs[i].Policy.RequiresKTX = true
		}
	}
	return manifest.Build(defs...)
}
