package extract

import (
	"math"
	"strings"
	"unicode"

	"github.com/matzehuels/shaderport/pkg/expr"
	"github.com/matzehuels/shaderport/pkg/manifest"
	"github.com/matzehuels/shaderport/pkg/source"
	"github.com/matzehuels/shaderport/pkg/types"
)

type pbrAnchor struct {
	input   string
	typ     types.Type
	sockets []string
	linked  bool // only exported when linked
}

// pbrAnchors maps principled sockets onto surface inputs. Alternative
// socket names cover older and newer host versions.
var pbrAnchors = []pbrAnchor{
	{"baseColor", types.Color3, []string{"Base Color"}, false},
	{"metallic", types.Float, []string{"Metallic"}, false},
	{"roughness", types.Float, []string{"Roughness"}, false},
	{"specular", types.Float, []string{"Specular", "Specular IOR Level"}, false},
	{"normal", types.Vector3, []string{"Normal"}, true},
	{"clearcoat", types.Float, []string{"Coat Weight", "Clearcoat"}, false},
	{"clearcoatRoughness", types.Float, []string{"Coat Roughness", "Clearcoat Roughness"}, false},
	{"clearcoatNormal", types.Vector3, []string{"Coat Normal", "Clearcoat Normal"}, true},
}

func (e *extraction) pbr(n *source.Node) {
	e.out.Kind, e.out.Surface = KindPBR, PBRSurface
	for _, a := range pbrAnchors {
		s := n.Input(a.sockets...)
		if s == nil || (a.linked && !s.Linked()) {
			continue
		}
		e.bind(a.input, a.typ, s)
	}
	e.emission(n)
	if !e.src.Opaque() {
		e.bind("opacity", types.Float, n.Input("Alpha"))
	}
	e.alphaThreshold()
	e.ambientOcclusion(n)
	e.premultiplied()
}

// emission adds the emissive color scaled by the emission strength.
// Nothing is exported when the strength is a literal at or below zero.
func (e *extraction) emission(n *source.Node) {
	color := n.Input("Emission Color", "Emission")
	if color == nil {
		return
	}
	strength := n.Input("Emission Strength")
	if strength == nil {
		e.bind("emissiveColor", types.Color3, color)
		return
	}
	if !strength.Linked() {
		f, _ := strength.Default.Float()
		if f <= 0 {
			return
		}
		x := e.socket(color, types.Color3)
		if x == nil {
			return
		}
		e.add(Anchor{Input: "emissiveColor", Socket: color.Name, Type: types.Color3, Expr: e.scale(x, f)})
		return
	}
	x := e.socket(color, types.Color3)
	s := e.socket(strength, types.Float)
	if x == nil || s == nil {
		return
	}
	def, ok := e.x.Manifest.Select("multiply", manifest.Query{Output: types.Color3})
	if !ok {
		def = "ND_multiply_color3"
	}
	e.add(Anchor{Input: "emissiveColor", Socket: color.Name, Type: types.Color3, Expr: expr.Node{
		NodeDef: def,
		Args:    []expr.Arg{expr.A("in1", x), expr.A("in2", s)},
		Output:  "out",
		Type:    types.Color3,
	}})
}

// scale multiplies x by the literal f, folding it into literals and
// texture reads.
func (e *extraction) scale(x expr.Expr, f float64) expr.Expr {
	if math.Abs(f-1) <= 1e-6 {
		return x
	}
	switch v := x.(type) {
	case expr.Constant:
		fs := v.Value.Floats()
		for i := range fs {
			fs[i] *= f
		}
		if len(fs) == 1 {
			return expr.Const(types.Num(fs[0]))
		}
		return expr.Const(types.Tuple(fs...))
	case expr.Texture:
		s := f
		if v.Scale != nil {
			s *= *v.Scale
		}
		v.Scale = &s
		return v
	}
	def, ok := e.x.Manifest.Select("multiply", manifest.Query{Output: types.Color3})
	if !ok {
		def = "ND_multiply_color3"
	}
	return expr.Node{
		NodeDef: def,
		Args:    []expr.Arg{expr.A("in1", x), expr.A("in2", expr.Const(types.Num(f)))},
		Output:  "out",
		Type:    types.Color3,
	}
}

// ambientOcclusion picks up an image texture named like an occlusion map
// wired directly into the shader.
func (e *extraction) ambientOcclusion(n *source.Node) {
	if _, ok := e.out.Anchor("ambientOcclusion"); ok {
		return
	}
	for _, s := range n.Inputs {
		if !s.Linked() || s.Link.Node.Kind != source.KindTexImage || !isOcclusion(s.Link.Node.DisplayName()) {
			continue
		}
		e.r.Reset()
		if t, ok := e.r.Resolve(s, "r", types.Float).(expr.Texture); ok {
			e.add(Anchor{Input: "ambientOcclusion", Socket: s.Name, Type: types.Float, Expr: t})
			return
		}
	}
}

func isOcclusion(name string) bool {
	for _, w := range strings.FieldsFunc(strings.ToLower(name), func(r rune) bool {
		return !unicode.IsLetter(r)
	}) {
		if w == "ao" || w == "occlusion" || w == "ambientocclusion" {
			return true
		}
	}
	return false
}

// unlit exports n as an unlit surface, reading its color from the socket
// color.
func (e *extraction) unlit(n *source.Node, color string) {
	e.out.Kind, e.out.Surface = KindUnlit, UnlitSurface
	e.bind("color", types.Color3, n.Input(color))
	if !e.src.Opaque() {
		if a := n.Input("Alpha"); a != nil {
			e.bind("opacity", types.Float, a)
		}
	}
	e.alphaThreshold()
	e.premultiplied()
}

// rkGroup exports an authored group as its own surface node, resolving
// every group input against the node's declared input types.
func (e *extraction) rkGroup(n *source.Node) {
	id, _ := n.Params.Group.RKNodeID()
	if id == "" {
		id = source.InferRKNodeID(n.Params.Group.Name)
	}
	e.out.Kind, e.out.Surface = KindRKGroup, id

	def, _ := e.x.Manifest.SelectDef(id, manifest.Query{Output: types.SurfaceShader})
	for _, s := range n.Inputs {
		t := socketType(s)
		if def != nil {
			if dt := def.InputType(s.Name); dt != types.None {
				t = dt
			}
		}
		e.bind(s.Name, t, s)
	}
	e.premultiplied()
}

// socketType maps a host socket type to the target type it carries.
func socketType(s *source.Socket) types.Type {
	switch s.Type {
	case "VALUE", "FLOAT", "INT":
		return types.Float
	case "VECTOR":
		return types.Vector3
	case "RGBA", "COLOR":
		return types.Color3
	case "BOOLEAN":
		return types.Boolean
	}
	return types.Infer(s.Default)
}
