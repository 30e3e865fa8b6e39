package expr

import (
	"strconv"
	"strings"
)

// Key returns a canonical structural key for e. Two expressions with the
// same key lower to the same target subgraph.
func Key(e Expr) string {
	var b strings.Builder
	writeKey(&b, e)
	return b.String()
}

func writeKey(b *strings.Builder, e Expr) {
	switch v := e.(type) {
	case nil:
		b.WriteString("nil")
	case Constant:
		b.WriteString("c(")
		b.WriteString(v.Value.String())
		b.WriteByte(')')
	case Texture:
		b.WriteString("t(")
		b.WriteString(v.FetchKey())
		b.WriteByte('|')
		b.WriteString(v.Channel)
		b.WriteByte('|')
		b.WriteString(string(v.OutputType))
		if v.Scale != nil {
			b.WriteString("|s=")
			b.WriteString(ff(*v.Scale))
		}
		if v.Normal != nil {
			b.WriteString("|n=")
			b.WriteString(ff(v.Normal.Strength))
			b.WriteByte(',')
			b.WriteString(v.Normal.Space)
		}
		b.WriteByte(')')
	case Node:
		b.WriteString("n(")
		b.WriteString(v.NodeDef)
		b.WriteByte(':')
		b.WriteString(v.Output)
		for _, a := range v.Args {
			b.WriteByte(',')
			b.WriteString(a.Name)
			b.WriteByte('=')
			writeKey(b, a.Expr)
		}
		b.WriteByte(')')
	case Unresolved:
		b.WriteString("u(")
		b.WriteString(v.Chain.String())
		b.WriteByte(')')
	}
}

// FetchKey identifies the image read behind t: path, UV set, transform,
// color space, alpha mode and whether it is decoded as a normal. Channel
// extraction and type conversion happen downstream of the fetch and are
// not part of the key.
func (t Texture) FetchKey() string {
	var b strings.Builder
	b.WriteString(t.Path)
	b.WriteByte('|')
	b.WriteString(t.UVSet)
	b.WriteByte('|')
	if x := t.Transform; x != nil {
		for _, f := range []float64{x.Offset[0], x.Offset[1], x.Rotate, x.Scale[0], x.Scale[1], x.Pivot[0], x.Pivot[1]} {
			b.WriteString(ff(f))
			b.WriteByte(',')
		}
		b.WriteString(strconv.Itoa(x.OperationOrder))
	}
	b.WriteByte('|')
	b.WriteString(t.ColorSpace)
	b.WriteByte('|')
	b.WriteString(t.AlphaMode)
	b.WriteByte('|')
	if t.Normal != nil {
		b.WriteString("normal")
	} else {
		b.WriteString("color")
	}
	return b.String()
}

func ff(f float64) string { return strconv.FormatFloat(f, 'g', 6, 64) }
