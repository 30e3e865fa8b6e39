package extract

import (
	"fmt"
	"strings"

	"github.com/matzehuels/shaderport/pkg/expr"
	"github.com/matzehuels/shaderport/pkg/manifest"
	"github.com/matzehuels/shaderport/pkg/resolve"
	"github.com/matzehuels/shaderport/pkg/source"
	"github.com/matzehuels/shaderport/pkg/types"
)

// Kind is the surface kind of an extracted material.
type Kind string

const (
	KindPBR     Kind = "pbr"
	KindUnlit   Kind = "unlit"
	KindRKGroup Kind = "rk_group"
	KindSimple  Kind = "simple"
)

// Surface node ids.
const (
	PBRSurface   = "realitykit_pbr_surfaceshader"
	UnlitSurface = "realitykit_unlit_surfaceshader"
)

// Anchor is one surface input and the expression that feeds it.
type Anchor struct {
	Input  string // surface input name
	Socket string // host socket name, empty for derived anchors
	Type   types.Type
	Expr   expr.Expr
}

// Material is the extracted surface of one host material.
type Material struct {
	Name       string
	Kind       Kind
	Surface    string // surface node id
	NodeDef    string // selected surface definition
	Anchors    []Anchor
	Unresolved []string
	Warnings   []string
}

// Anchor returns the anchor for surface input name.
func (m *Material) Anchor(name string) (Anchor, bool) {
	for _, a := range m.Anchors {
		if a.Input == name {
			return a, true
		}
	}
	return Anchor{}, false
}

// Exprs returns the expression of every anchor.
func (m *Material) Exprs() []expr.Expr {
	out := make([]expr.Expr, 0, len(m.Anchors))
	for _, a := range m.Anchors {
		out = append(out, a.Expr)
	}
	return out
}

// Extractor builds anchors from host materials.
type Extractor struct {
	Manifest *manifest.Manifest
	Assets   resolve.AssetResolver

	// ForceUnlit exports every shader as unlit.
	ForceUnlit bool
}

type extraction struct {
	x   *Extractor
	r   *resolve.Resolver
	src *source.Material
	out *Material
}

// Extract reads the surface of m.
func (x *Extractor) Extract(m *source.Material) *Material {
	e := &extraction{
		x:   x,
		r:   resolve.New(x.Manifest, x.Assets),
		src: m,
		out: &Material{Name: m.Name},
	}
	e.extract()
	e.out.NodeDef = x.surfaceDef(e.out.Surface)
	return e.out
}

func (x *Extractor) surfaceDef(id string) string {
	if name, ok := x.Manifest.Select(id, manifest.Query{Output: types.SurfaceShader}); ok {
		return name
	}
	return "ND_" + id
}

func (e *extraction) extract() {
	m := e.src
	if !m.UseNodes || m.Tree == nil {
		e.simple()
		return
	}
	surface := m.SurfaceNode()
	if source.IsRKGroup(surface) {
		e.rkGroup(surface)
		return
	}

	principled := surface
	if principled == nil || principled.Kind != source.KindPrincipled {
		principled = first(m.Tree.NodesOf(source.KindPrincipled))
	}
	emission := surface
	if emission == nil || emission.Kind != source.KindEmission {
		emission = first(m.Tree.NodesOf(source.KindEmission))
	}

	switch {
	case principled != nil && e.x.ForceUnlit:
		e.unlit(principled, "Base Color")
	case principled != nil:
		e.pbr(principled)
	case emission != nil:
		e.unlit(emission, "Color")
	default:
		e.out.Warnings = append(e.out.Warnings,
			fmt.Sprintf("Material '%s': no supported surface shader; exported with its viewport color.", m.Name))
		e.simple()
	}
}

func first(ns []*source.Node) *source.Node {
	if len(ns) == 0 {
		return nil
	}
	return ns[0]
}

// simple exports the viewport color of a material without nodes.
func (e *extraction) simple() {
	m := e.src
	e.out.Kind, e.out.Surface = KindSimple, PBRSurface
	c := m.DiffuseColor
	e.add(Anchor{Input: "baseColor", Type: types.Color3, Expr: expr.Const(types.Tuple(c[0], c[1], c[2]))})
	if c[3] < 1 {
		e.add(Anchor{Input: "opacity", Type: types.Float, Expr: expr.Const(types.Num(c[3]))})
	}
}

func (e *extraction) add(a Anchor) { e.out.Anchors = append(e.out.Anchors, a) }

// socket resolves the host socket into an anchor expression. An unlinked
// socket yields its literal. An unresolved link is reported and yields
// nil, leaving the surface input at its declared default.
func (e *extraction) socket(s *source.Socket, t types.Type) expr.Expr {
	if s == nil {
		return nil
	}
	if s.Linked() {
		e.r.Reset()
		x := e.r.Resolve(s, "", t)
		if u, ok := x.(expr.Unresolved); ok {
			e.out.Unresolved = append(e.out.Unresolved, fmt.Sprintf(
				"Material '%s': Unable to resolve '%s' through chain: %s", e.src.Name, s.Name, u.Chain))
			return nil
		}
		return x
	}
	if !s.Default.IsNumeric() {
		return nil
	}
	return expr.Const(types.CoerceTo(s.Default, t))
}

func (e *extraction) bind(input string, t types.Type, s *source.Socket) {
	if x := e.socket(s, t); x != nil {
		e.add(Anchor{Input: input, Socket: s.Name, Type: t, Expr: x})
	}
}

// alphaThreshold adds the cutout threshold for clipped blend modes.
func (e *extraction) alphaThreshold() {
	switch strings.ToUpper(e.src.BlendMethod) {
	case "CLIP", "HASHED":
		e.add(Anchor{Input: "opacityThreshold", Type: types.Float, Expr: expr.Const(types.Num(e.src.AlphaThreshold))})
	}
}

// premultiplied flags the surface when any texture read is premultiplied.
func (e *extraction) premultiplied() {
	for _, a := range e.out.Anchors {
		for _, t := range expr.Textures(a.Expr) {
			if t.AlphaMode == "premul" {
				e.add(Anchor{Input: "hasPremultipliedAlpha", Type: types.Boolean, Expr: expr.Const(types.Bool(true))})
				return
			}
		}
	}
}
