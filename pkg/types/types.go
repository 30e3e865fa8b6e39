package types

import "strings"

// Type is a canonical target type tag such as "color3" or "float".
type Type string

// Canonical type tags. Unknown names are carried through [Normalize] as-is.
const (
	None          Type = ""
	Float         Type = "float"
	Integer       Type = "integer"
	Boolean       Type = "boolean"
	String        Type = "string"
	Filename      Type = "filename"
	Color3        Type = "color3"
	Color4        Type = "color4"
	Vector2       Type = "vector2"
	Vector3       Type = "vector3"
	Vector4       Type = "vector4"
	Matrix33      Type = "matrix33"
	Matrix44      Type = "matrix44"
	SurfaceShader Type = "surfaceshader"
)

// halfSynonyms folds half-precision and shorthand spellings onto their
// full-precision tag. Folding is for comparison only; emitted graphs still
// name the variant that was selected.
var halfSynonyms = map[string]Type{
	"half":  Float,
	"half2": Vector2,
	"half3": Color3,
	"half4": Color4,
	"int":   Integer,
	"bool":  Boolean,
}

// Normalize returns the canonical tag for a type spelling.
func Normalize(name string) Type {
	n := strings.ToLower(strings.TrimSpace(name))
	if t, ok := halfSynonyms[n]; ok {
		return t
	}
	return Type(n)
}

// IsHalf reports whether name spells a half-precision type.
func IsHalf(name string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(name)), "half")
}

// Arity is the number of numeric components carried by t, or 0 for
// non-numeric types.
func (t Type) Arity() int {
	switch t {
	case Float, Integer, Boolean:
		return 1
	case Vector2:
		return 2
	case Color3, Vector3:
		return 3
	case Color4, Vector4:
		return 4
	case Matrix33:
		return 9
	case Matrix44:
		return 16
	}
	return 0
}

// IsColor reports whether t is a color tuple.
func (t Type) IsColor() bool { return t == Color3 || t == Color4 }

// IsVector reports whether t is a vector tuple.
func (t Type) IsVector() bool { return t == Vector2 || t == Vector3 || t == Vector4 }

// IsMulti reports whether t carries more than one channel that a swizzle can pick.
func (t Type) IsMulti() bool {
	a := t.Arity()
	return a >= 2 && a <= 4
}

// Channels returns the swizzle letters addressing t's components, rgba for
// colors and xyzw for vectors.
func (t Type) Channels() string {
	switch {
	case t.IsColor():
		return "rgba"[:t.Arity()]
	case t.IsVector():
		return "xyzw"[:t.Arity()]
	}
	return ""
}

func (t Type) String() string { return string(t) }

// WithArity returns the type of the same family carrying n components.
// Colors stay colors where a color of that width exists.
func (t Type) WithArity(n int) Type {
	switch n {
	case 1:
		return Float
	case 2:
		return Vector2
	case 3:
		if t.IsColor() {
			return Color3
		}
		return Vector3
	case 4:
		if t.IsColor() {
			return Color4
		}
		return Vector4
	}
	return None
}
