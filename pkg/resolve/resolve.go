package resolve

import (
	"github.com/matzehuels/shaderport/pkg/expr"
	"github.com/matzehuels/shaderport/pkg/manifest"
	"github.com/matzehuels/shaderport/pkg/source"
	"github.com/matzehuels/shaderport/pkg/types"
)

// AssetResolver maps an image datablock to the path written into the
// target graph. It reports false when the image has no usable file.
type AssetResolver interface {
	ResolveImage(img *source.Image) (string, bool)
}

// AssetResolverFunc adapts a function to [AssetResolver].
type AssetResolverFunc func(img *source.Image) (string, bool)

func (f AssetResolverFunc) ResolveImage(img *source.Image) (string, bool) { return f(img) }

// ImagePaths resolves an image to its recorded path.
var ImagePaths AssetResolver = AssetResolverFunc(func(img *source.Image) (string, bool) {
	if img == nil || img.Path == "" {
		return "", false
	}
	return img.Path, true
})

type cacheKey struct {
	socket  *source.Socket
	channel string
	want    types.Type
}

// Resolver turns linked input sockets into expressions. It is not safe for
// concurrent use; give each material its own Resolver.
type Resolver struct {
	manifest *manifest.Manifest
	assets   AssetResolver
	cache    map[cacheKey]expr.Expr
}

// New creates a Resolver selecting node definitions from m. A nil assets
// resolver uses [ImagePaths].
func New(m *manifest.Manifest, assets AssetResolver) *Resolver {
	if assets == nil {
		assets = ImagePaths
	}
	return &Resolver{manifest: m, assets: assets, cache: make(map[cacheKey]expr.Expr)}
}

// Reset drops cached leaf results. Call it between anchors.
func (r *Resolver) Reset() { clear(r.cache) }

// Resolve walks upstream from s and returns the expression feeding it.
// channel selects one component ("r", "a", "x", ...) and want is the type
// the consumer expects; both may be empty. An unlinked socket yields nil.
//
// The walk never loops: a node met again on the current path resolves to
// [expr.Unresolved] with a "(cycle)" marker, while fan-out (one node read
// by several consumers) resolves normally.
func (r *Resolver) Resolve(s *source.Socket, channel string, want types.Type) expr.Expr {
	if !s.Linked() {
		return nil
	}
	w := &walk{r: r, onPath: make(map[pathKey]bool)}
	return w.socket(s, channel, want, nil)
}

type pathKey struct {
	node  *source.Node
	frame *source.Node
}

// walk is the state of one Resolve call.
type walk struct {
	r      *Resolver
	onPath map[pathKey]bool
	frames []*source.Node // enclosing group nodes, innermost last
}

func (w *walk) frame() *source.Node {
	if len(w.frames) == 0 {
		return nil
	}
	return w.frames[len(w.frames)-1]
}

func (w *walk) socket(s *source.Socket, ch string, want types.Type, chain expr.Chain) expr.Expr {
	if !s.Linked() {
		return nil
	}
	key := cacheKey{s, ch, want}
	top := len(w.frames) == 0
	if top {
		if e, ok := w.r.cache[key]; ok {
			return e
		}
	}

	n, out := s.Link.Node, s.Link.Socket
	chain = chain.With(source.Label(n, out))
	pk := pathKey{n, w.frame()}
	if w.onPath[pk] {
		return expr.Unresolved{Chain: chain.With("(cycle)")}
	}
	w.onPath[pk] = true
	defer delete(w.onPath, pk)

	e := w.node(n, out, ch, want, chain)
	if top && isLeaf(e) {
		w.r.cache[key] = e
	}
	return e
}

func isLeaf(e expr.Expr) bool {
	switch e.(type) {
	case expr.Texture, expr.Constant:
		return true
	}
	return false
}

// node dispatches on the kind of the upstream node n, read through its
// output out.
func (w *walk) node(n *source.Node, out *source.Socket, ch string, want types.Type, chain expr.Chain) expr.Expr {
	switch n.Kind {
	case source.KindReroute:
		return w.socket(n.InputAt(0), ch, want, chain)
	case source.KindMapping:
		return w.socket(n.Input("Vector"), ch, want, chain)
	case source.KindSeparateColor, source.KindSeparateXYZ:
		return w.separate(n, out, ch, chain)
	case source.KindNormalMap:
		return w.normalMap(n, ch, want, chain)
	case source.KindBump:
		return w.bump(n, ch, want, chain)
	case source.KindGroup:
		return w.group(n, out, ch, want, chain)
	case source.KindGroupInput:
		return w.groupInput(n, out, ch, want, chain)
	case source.KindMix:
		if s, ok := source.Passthrough(n); ok {
			return w.socket(s, ch, want, chain)
		}
		return w.extract(w.mix(n, want, chain), ch)
	case source.KindMath:
		if s, ok := source.Passthrough(n); ok {
			return w.socket(s, ch, want, chain)
		}
		return w.extract(w.math(n, chain), ch)
	case source.KindTexImage, source.KindTexEnvironment:
		return w.texture(n, out, ch, want, chain)
	case source.KindRGB:
		return w.extract(constantOf(n, "Color", 3), ch)
	case source.KindValue:
		return w.extract(constantOf(n, "Value", 1), ch)
	case source.KindTexCoord, source.KindUVMap:
		return w.extract(w.uvNode(n, want), ch)
	case source.KindClamp, source.KindMapRange, source.KindHueSat, source.KindInvert,
		source.KindBrightContrast, source.KindColorRamp, source.KindCurveRGB, source.KindRGBToBW,
		source.KindCombineColor, source.KindVectorRotate, source.KindVectorTransform, source.KindNormal,
		source.KindTexNoise, source.KindTexVoronoi, source.KindTexMusgrave, source.KindTexGradient:
		return w.extract(w.compute(n, want, chain), ch)
	case source.KindUnknown, source.KindFrame, source.KindGroupOutput, source.KindOutputMaterial,
		source.KindPrincipled, source.KindEmission, source.KindBake, source.KindUnsupported:
		return expr.Unresolved{Chain: chain}
	}
	return expr.Unresolved{Chain: chain}
}

// arg resolves an input of a compute node. Linked inputs are resolved with
// the consumer type want; unlinked inputs yield their literal, then def.
func (w *walk) arg(s *source.Socket, want types.Type, def types.Value, chain expr.Chain) expr.Expr {
	if s.Linked() {
		if e := w.socket(s, "", want, chain); e != nil {
			return e
		}
	}
	if s != nil && s.Default.IsNumeric() {
		return expr.Const(s.Default)
	}
	if def.IsZero() {
		return nil
	}
	return expr.Const(def)
}

// call builds a node expression for node, selecting the definition whose
// output matches want. Nil arguments are dropped.
func (w *walk) call(node string, want types.Type, args ...expr.Arg) expr.Expr {
	return w.callOut(node, want, "out", args...)
}

func (w *walk) callOut(node string, want types.Type, output string, args ...expr.Arg) expr.Node {
	name, typ := node, want
	if d, ok := w.r.manifest.SelectDef(node, manifest.Query{Output: want}); ok {
		name = d.Name
		if t := d.OutputType(output); t != types.None {
			typ = t
		}
	}
	kept := make([]expr.Arg, 0, len(args))
	for _, a := range args {
		if a.Expr != nil {
			kept = append(kept, a)
		}
	}
	return expr.Node{NodeDef: name, Args: kept, Output: output, Type: typ}
}

func or(t, def types.Type) types.Type {
	if t == types.None {
		return def
	}
	return t
}
