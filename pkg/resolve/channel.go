package resolve

import (
	"github.com/matzehuels/shaderport/pkg/expr"
	"github.com/matzehuels/shaderport/pkg/manifest"
	"github.com/matzehuels/shaderport/pkg/source"
	"github.com/matzehuels/shaderport/pkg/types"
)

func channelIndex(c string) int {
	switch c {
	case "r", "x":
		return 0
	case "g", "y":
		return 1
	case "b", "z":
		return 2
	case "a", "w":
		return 3
	}
	return -1
}

// separate reads one channel of the packed input of a separate node. The
// channel comes from the consumer or, failing that, the output name.
func (w *walk) separate(n *source.Node, out *source.Socket, ch string, chain expr.Chain) expr.Expr {
	c := ch
	if c == "" {
		c = source.ChannelFromName(out.Name)
	}
	var (
		in   *source.Socket
		want types.Type
	)
	if n.Kind == source.KindSeparateXYZ {
		in, want = n.Input("Vector"), types.Vector3
	} else {
		in, want = n.Input("Color"), types.Color3
		if c == "a" {
			want = types.Color4
		}
	}
	if in == nil {
		in = n.InputAt(0)
	}
	return w.extract(w.arg(in, want, types.Value{}, chain), c)
}

// extract narrows e to channel c. Textures record the channel for the
// fetch, constant tuples yield the component, and multi-channel nodes are
// wrapped in a swizzle.
func (w *walk) extract(e expr.Expr, c string) expr.Expr {
	if c == "" {
		return e
	}
	idx := channelIndex(c)
	switch v := e.(type) {
	case expr.Texture:
		if v.Channel == "" {
			v.Channel = c
		}
		v.OutputType = types.Float
		return v
	case expr.Constant:
		if f, ok := v.Value.Component(idx); ok && v.Value.Arity() > 1 {
			return expr.Const(types.Num(f))
		}
		return v
	case expr.Node:
		if !v.Type.IsMulti() {
			return v
		}
		return w.swizzle(v, v.Type, c)
	}
	return e
}

// swizzle wraps e, of type t, in a swizzle node selecting channel c. The
// channel letter follows t's naming: rgba for colors, xyzw for vectors.
func (w *walk) swizzle(e expr.Expr, t types.Type, c string) expr.Expr {
	letter := c
	if chans, idx := t.Channels(), channelIndex(c); idx >= 0 && idx < len(chans) {
		letter = chans[idx : idx+1]
	}
	q := manifest.Query{
		Signature: "in[in:" + string(t) + ",channels:string]|out[out:float]",
		Input:     t,
		Output:    types.Float,
	}
	name := "swizzle"
	if d, ok := w.r.manifest.SelectDef("swizzle", q); ok {
		name = d.Name
	}
	return expr.Node{
		NodeDef: name,
		Args:    []expr.Arg{expr.A("in", e), expr.A("channels", expr.Const(types.Str(letter)))},
		Output:  "out",
		Type:    types.Float,
	}
}
