package expr

import (
	"github.com/matzehuels/shaderport/pkg/types"
)

// Expr is a resolved socket value. The concrete types are [Constant],
// [Texture], [Node] and [Unresolved].
type Expr interface {
	isExpr()
}

// Constant is a literal: a scalar or a numeric tuple.
type Constant struct {
	Value types.Value
}

// Transform is the UV placement captured from an upstream mapping node.
// Rotate is in radians.
type Transform struct {
	Offset         [2]float64
	Rotate         float64
	Scale          [2]float64
	Pivot          [2]float64
	OperationOrder int
}

// NormalMap marks a texture that is decoded as a tangent or object space
// normal. Height is set when the texture was a bump height source and the
// decode is an approximation.
type NormalMap struct {
	Strength float64
	Space    string // "tangent" or "object"; empty means tangent
	Height   bool
}

// Texture is an image fetch with its sampling metadata.
type Texture struct {
	Path       string
	Channel    string // single channel to extract: r g b a x y z w
	UVSet      string
	Transform  *Transform
	ColorSpace string
	AlphaMode  string
	Scale      *float64
	OutputType types.Type // type the consumer wants, a hint for the fetch
	Normal     *NormalMap
}

// Arg is a named input of a [Node].
type Arg struct {
	Name string
	Expr Expr
}

// Node is a target node application. NodeDef names a manifest definition or,
// when none matched, the bare node name.
type Node struct {
	NodeDef string
	Args    []Arg
	Output  string
	Type    types.Type // declared output type when known
}

// Unresolved marks a value the resolver could not express. Chain lists the
// visited node labels from the anchor outwards.
type Unresolved struct {
	Chain Chain
}

func (Constant) isExpr()   {}
func (Texture) isExpr()    {}
func (Node) isExpr()       {}
func (Unresolved) isExpr() {}

// Const wraps v as a [Constant].
func Const(v types.Value) Constant { return Constant{Value: v} }

// A builds a node argument.
func A(name string, e Expr) Arg { return Arg{Name: name, Expr: e} }

// Arg returns the input called name.
func (n Node) Arg(name string) (Expr, bool) {
	for _, a := range n.Args {
		if a.Name == name {
			return a.Expr, true
		}
	}
	return nil, false
}

// IsConstant reports whether e is a constant equal to f in every component.
func IsConstant(e Expr, f float64) bool {
	c, ok := e.(Constant)
	if !ok || !c.Value.IsNumeric() {
		return false
	}
	for _, x := range c.Value.Floats() {
		if d := x - f; d > 1e-6 || d < -1e-6 {
			return false
		}
	}
	return true
}

// Walk visits e and its subexpressions depth first. Children are skipped
// when fn returns false.
func Walk(e Expr, fn func(Expr) bool) {
	if e == nil || !fn(e) {
		return
	}
	if n, ok := e.(Node); ok {
		for _, a := range n.Args {
			Walk(a.Expr, fn)
		}
	}
}

// Unresolveds returns every unresolved subexpression of e in visit order.
func Unresolveds(e Expr) []Unresolved {
	var out []Unresolved
	Walk(e, func(x Expr) bool {
		if u, ok := x.(Unresolved); ok {
			out = append(out, u)
		}
		return true
	})
	return out
}

// Textures returns every texture leaf of e in visit order.
func Textures(e Expr) []Texture {
	var out []Texture
	Walk(e, func(x Expr) bool {
		if t, ok := x.(Texture); ok {
			out = append(out, t)
		}
		return true
	})
	return out
}
