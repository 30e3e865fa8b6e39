package resolve

import (
	"strings"

	"github.com/matzehuels/shaderport/pkg/expr"
	"github.com/matzehuels/shaderport/pkg/source"
	"github.com/matzehuels/shaderport/pkg/types"
)

// texture builds the leaf for an image or environment node.
func (w *walk) texture(n *source.Node, out *source.Socket, ch string, want types.Type, chain expr.Chain) expr.Expr {
	img := n.Params.Image
	if img == nil {
		return expr.Unresolved{Chain: chain}
	}
	path, ok := w.r.assets.ResolveImage(img)
	if !ok {
		return expr.Unresolved{Chain: chain}
	}
	t := expr.Texture{
		Path:       path,
		ColorSpace: source.NormalizeColorSpace(img.ColorSpace),
		AlphaMode:  source.NormalizeAlphaMode(img.AlphaMode),
		OutputType: want,
	}

	uv := n.Params.UVMap
	if vec := n.Input("Vector"); vec.Linked() {
		if uv == "" {
			uv = traceUV(vec.Link.Node)
		}
		t.Transform = mappingTransform(vec.Link.Node)
	}
	t.UVSet = source.NormalizeUVMap(uv)

	if ch == "" && n.Kind == source.KindTexImage && out != nil && out.Name == "Alpha" {
		ch = "a"
	}
	return w.extract(t, ch)
}

// skipReroutes follows reroute nodes upstream.
func skipReroutes(n *source.Node) *source.Node {
	for n != nil && n.Kind == source.KindReroute {
		in := n.InputAt(0)
		if !in.Linked() {
			return n
		}
		n = in.Link.Node
	}
	return n
}

// traceUV names the UV map feeding a texture's vector input.
func traceUV(n *source.Node) string {
	n = skipReroutes(n)
	if n == nil {
		return ""
	}
	switch n.Kind {
	case source.KindUVMap:
		return n.Params.UVMap
	case source.KindMapping:
		if v := n.Input("Vector"); v.Linked() {
			return traceUV(v.Link.Node)
		}
	case source.KindTexCoord:
		return source.DefaultUVSet
	}
	return ""
}

// mappingTransform reads the 2D placement of a mapping node. Mapping nodes
// without a stored transform fall back to their Location, Rotation and
// Scale socket literals. The identity placement yields nil.
func mappingTransform(n *source.Node) *expr.Transform {
	n = skipReroutes(n)
	if n == nil || n.Kind != source.KindMapping {
		return nil
	}
	m := n.Params.Mapping
	if m == nil {
		m = &source.Mapping{
			Translation: vec3(n.Input("Location"), 0),
			Rotation:    vec3(n.Input("Rotation"), 0),
			Scale:       vec3(n.Input("Scale"), 1),
		}
	}
	t := &expr.Transform{
		Offset: [2]float64{m.Translation[0], m.Translation[1]},
		Rotate: m.Rotation[2],
		Scale:  [2]float64{m.Scale[0], m.Scale[1]},
	}
	if *t == (expr.Transform{Scale: [2]float64{1, 1}}) {
		return nil
	}
	return t
}

func vec3(s *source.Socket, fill float64) [3]float64 {
	out := [3]float64{fill, fill, fill}
	if s == nil {
		return out
	}
	for i, f := range s.Default.Floats() {
		if i < 3 {
			out[i] = f
		}
	}
	return out
}

// constantOf reads the literal of a color or value node output.
func constantOf(n *source.Node, output string, arity int) expr.Expr {
	out := n.Output(output)
	if out == nil {
		out = n.OutputAt(0)
	}
	if out == nil || !out.Default.IsNumeric() {
		return nil
	}
	return expr.Const(types.Coerce(out.Default, arity))
}

// uvNode resolves a texture coordinate or UV map node read as a value.
func (w *walk) uvNode(n *source.Node, want types.Type) expr.Expr {
	if n.Kind == source.KindUVMap {
		if set := source.NormalizeUVMap(n.Params.UVMap); set != source.DefaultUVSet {
			return w.call("geompropvalue", types.Vector2, expr.A("geomprop", expr.Const(types.Str(set))))
		}
	}
	t := types.Vector2
	if want == types.Vector3 {
		t = types.Vector3
	}
	return w.call("texcoord", t)
}

// normalMap decodes a tangent or object space normal from its Color input.
// A texture source is annotated rather than wrapped so lowering emits the
// single normal decode.
func (w *walk) normalMap(n *source.Node, ch string, want types.Type, chain expr.Chain) expr.Expr {
	e := w.socket(n.Input("Color"), ch, want, chain)
	t, ok := e.(expr.Texture)
	if !ok {
		return e
	}
	nm := &expr.NormalMap{Strength: strength(n)}
	switch sp := strings.ToUpper(n.Params.Space); {
	case strings.Contains(sp, "TANGENT"):
		nm.Space = "tangent"
	case strings.Contains(sp, "OBJECT"):
		nm.Space = "object"
	}
	t.Normal = nm
	t.OutputType = types.Vector3
	return t
}

// bump approximates a bump node by decoding its height texture as a
// normal map.
func (w *walk) bump(n *source.Node, ch string, want types.Type, chain expr.Chain) expr.Expr {
	e := w.socket(n.Input("Height"), ch, want, chain)
	t, ok := e.(expr.Texture)
	if !ok {
		return e
	}
	t.Normal = &expr.NormalMap{Strength: strength(n), Height: true}
	t.OutputType = types.Vector3
	return t
}

func strength(n *source.Node) float64 {
	if s := n.Input("Strength"); s != nil && !s.Linked() {
		if f, ok := s.Default.Float(); ok {
			return f
		}
	}
	return 1
}
