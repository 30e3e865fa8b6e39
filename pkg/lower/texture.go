package lower

import (
	"fmt"
	"math"
	"strings"

	"github.com/matzehuels/shaderport/pkg/expr"
	"github.com/matzehuels/shaderport/pkg/manifest"
	"github.com/matzehuels/shaderport/pkg/source"
	"github.com/matzehuels/shaderport/pkg/target"
	"github.com/matzehuels/shaderport/pkg/types"
)

type fetch struct {
	out target.Output
	typ types.Type
}

// TextureCache holds the texture reads of one material: image fetches by
// fetch key and image type, UV nodes by UV set, and placements by UV set
// and transform.
type TextureCache struct {
	fetches map[string]fetch
	coords  map[string]target.Output
	places  map[string]target.Output
	normals map[string]target.Output
}

// NewTextureCache creates an empty cache.
func NewTextureCache() *TextureCache {
	return &TextureCache{
		fetches: map[string]fetch{},
		coords:  map[string]target.Output{},
		places:  map[string]target.Output{},
		normals: map[string]target.Output{},
	}
}

// Fetches returns the number of distinct image reads emitted.
func (c *TextureCache) Fetches() int { return len(c.fetches) }

// imageType is the type an image is fetched at.
func (l *Lowerer) imageType(t expr.Texture) types.Type {
	switch {
	case t.Normal != nil:
		return types.Vector3
	case l.alpha[t.FetchKey()]:
		return types.Color4
	case t.OutputType == types.Color4 || t.OutputType == types.Vector4:
		return types.Color4
	case t.Channel == "a":
		return types.Color4
	}
	return types.Color3
}

func isKTX(path string) bool {
	p := strings.ToLower(path)
	return strings.HasSuffix(p, ".ktx") || strings.HasSuffix(p, ".ktx2")
}

func (l *Lowerer) texture(t expr.Texture, want types.Type, hint string) (Value, error) {
	f, err := l.fetch(t, hint)
	if err != nil {
		return Value{}, err
	}
	v := connected(f.out, f.typ)
	if t.Normal != nil {
		v, err = l.normal(t, v)
		if err != nil {
			return Value{}, err
		}
		return l.convert(v, want)
	}

	ch := t.Channel
	if ch == "" && want == types.Float && v.Type.IsMulti() {
		l.sink.Warnf("Texture '%s' connected to float input without a channel; defaulting to 'r'.", t.Path)
		ch = "r"
	}
	if ch != "" && v.Type.IsMulti() {
		letter, ok := channelFor(v.Type, ch)
		if !ok {
			l.sink.Warnf("Texture '%s' has no channel '%s'; using 1.0.", t.Path, ch)
			return l.constant(expr.Const(types.Num(1)), want), nil
		}
		if v, err = l.swizzle(v, letter); err != nil {
			return Value{}, err
		}
	}
	if v, err = l.convert(v, want); err != nil {
		return Value{}, err
	}
	if t.Scale != nil {
		return l.scale(v, *t.Scale)
	}
	return v, nil
}

// channelFor maps a channel letter onto the swizzle letter of t: rgba
// for colors, xyzw for vectors.
func channelFor(t types.Type, ch string) (string, bool) {
	idx := strings.IndexByte("rgba", ch[0])
	if idx < 0 {
		idx = strings.IndexByte("xyzw", ch[0])
	}
	letters := t.Channels()
	if idx < 0 || idx >= len(letters) {
		return "", false
	}
	return letters[idx : idx+1], true
}

// fetch emits, or reuses, the image node reading t.
func (l *Lowerer) fetch(t expr.Texture, hint string) (fetch, error) {
	typ := l.imageType(t)
	key := t.FetchKey() + "|" + string(typ)
	if f, ok := l.textures.fetches[key]; ok {
		return f, nil
	}

	def, name := l.pick("image", manifest.Query{Output: typ})
	if def != nil && def.Policy.RequiresKTX && !isKTX(t.Path) {
		l.sink.KTXRequired(def.Name, t.Path)
		return fetch{}, ErrSkipped
	}
	if hint != "" {
		hint += "_texture"
	}
	h, err := l.emit(def, name, hint)
	if err != nil {
		return fetch{}, err
	}
	if err := l.graph.SetInput(h, "file", types.Str(t.Path)); err != nil {
		return fetch{}, err
	}
	uv, err := l.texcoord(t)
	if err != nil {
		return fetch{}, err
	}
	if uv.Valid() {
		if err := l.graph.Connect(uv, h, "texcoord"); err != nil {
			return fetch{}, err
		}
	}
	f := fetch{out: target.Out(h), typ: typ}
	if def != nil {
		if ot := def.OutputType(""); ot != types.None {
			f.typ = ot
		}
	}
	l.textures.fetches[key] = f
	return f, nil
}

// texcoord returns the UV input for a fetch, or an invalid output when the
// fetch reads the default UV set untransformed.
func (l *Lowerer) texcoord(t expr.Texture) (target.Output, error) {
	none := target.Output{Node: target.NoNode}
	set := t.UVSet
	if set == "" {
		set = source.DefaultUVSet
	}
	if set == source.DefaultUVSet && t.Transform == nil {
		return none, nil
	}

	coord, ok := l.textures.coords[set]
	if !ok {
		var (
			def  *manifest.NodeDef
			name string
		)
		if set == source.DefaultUVSet {
			def, name = l.pick("texcoord", manifest.Query{Output: types.Vector2})
		} else {
			def, name = l.pick("geompropvalue", manifest.Query{Output: types.Vector2})
		}
		h, err := l.emit(def, name, "")
		if err != nil {
			return none, err
		}
		if set != source.DefaultUVSet {
			if err := l.graph.SetInput(h, "geomprop", types.Str(set)); err != nil {
				return none, err
			}
		}
		coord = target.Out(h)
		l.textures.coords[set] = coord
	}
	if t.Transform == nil {
		return coord, nil
	}

	x := t.Transform
	pk := fmt.Sprintf("%s|%v|%v|%v|%v|%d", set, x.Offset, x.Rotate, x.Scale, x.Pivot, x.OperationOrder)
	if o, ok := l.textures.places[pk]; ok {
		return o, nil
	}
	def, name := l.pick("place2d", manifest.Query{Output: types.Vector2})
	h, err := l.emit(def, name, "")
	if err != nil {
		return none, err
	}
	if err := l.graph.Connect(coord, h, "texcoord"); err != nil {
		return none, err
	}
	for input, v := range map[string]types.Value{
		"offset":         types.Tuple(x.Offset[0], x.Offset[1]),
		"scale":          types.Tuple(x.Scale[0], x.Scale[1]),
		"pivot":          types.Tuple(x.Pivot[0], x.Pivot[1]),
		"rotate":         types.Num(x.Rotate * 180 / math.Pi),
		"operationorder": types.Int(x.OperationOrder),
	} {
		if err := l.graph.SetInput(h, input, v); err != nil {
			return none, err
		}
	}
	o := target.Out(h)
	l.textures.places[pk] = o
	return o, nil
}

// normal decodes a fetched normal texture. The fetch is coerced to
// vector3 first; strength and space are set only when they differ from
// the decode defaults.
func (l *Lowerer) normal(t expr.Texture, v Value) (Value, error) {
	v, err := l.convert(v, types.Vector3)
	if err != nil {
		return Value{}, err
	}
	nm := t.Normal
	key := fmt.Sprintf("%v|%g|%s", v.Output, nm.Strength, nm.Space)
	if o, ok := l.textures.normals[key]; ok {
		return connected(o, types.Vector3), nil
	}
	if nm.Height {
		l.sink.Warnf("Bump height texture '%s' approximated as a normal map.", t.Path)
	}
	def, name := l.pick("normalmap", manifest.Query{Output: types.Vector3})
	h, err := l.emit(def, name, "")
	if err != nil {
		return Value{}, err
	}
	if err := l.graph.Connect(v.Output, h, "in"); err != nil {
		return Value{}, err
	}
	if math.Abs(nm.Strength-1) > 1e-6 {
		if err := l.graph.SetInput(h, "scale", types.Num(nm.Strength)); err != nil {
			return Value{}, err
		}
	}
	if nm.Space != "" {
		if err := l.graph.SetInput(h, "space", types.Str(nm.Space)); err != nil {
			return Value{}, err
		}
	}
	o := target.Out(h)
	l.textures.normals[key] = o
	return connected(o, types.Vector3), nil
}
