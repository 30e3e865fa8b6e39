package types

import (
	"strconv"
	"strings"
)

// Coerce reshapes a numeric literal to arity components.
//
//	3 -> 4  appends alpha 1.0
//	4 -> 3  drops the 4th component
//	n -> 2  keeps the first two
//	n -> 1  keeps the first
//	1 -> n  replicates the scalar
//	2 -> 3  appends 0
//	2 -> 4  appends 0 and 1
//
// Non-numeric values and arity <= 0 are returned unchanged.
func Coerce(v Value, arity int) Value {
	if arity <= 0 || !v.IsNumeric() {
		return v
	}
	src := v.Floats()
	if len(src) == arity {
		if arity == 1 && v.kind != KindNumber {
			return Num(src[0])
		}
		return v
	}
	if len(src) == 0 {
		return v
	}
	if arity == 1 {
		return Num(src[0])
	}
	if len(src) == 1 {
		out := make([]float64, arity)
		for i := range out {
			out[i] = src[0]
		}
		return Tuple(out...)
	}
	if len(src) > arity {
		return Tuple(src[:arity]...)
	}
	out := append([]float64(nil), src...)
	for len(out) < arity {
		if len(out) == 3 {
			out = append(out, 1.0)
		} else {
			out = append(out, 0)
		}
	}
	return Tuple(out...)
}

// CoerceTo reshapes v for an input declared as t. Integer and boolean
// inputs receive integer and boolean literals.
func CoerceTo(v Value, t Type) Value {
	switch t {
	case Integer:
		if v.IsNumeric() {
			return Int(v.IntValue())
		}
		return v
	case Boolean:
		if v.IsNumeric() {
			return Bool(v.BoolValue())
		}
		return v
	case String, Filename:
		return v
	}
	return Coerce(v, t.Arity())
}

// DefaultValue parses a declared default literal according to its type.
// Tuples are comma separated. A malformed literal yields ok=false.
func DefaultValue(typeName, literal string) (Value, bool) {
	lit := strings.TrimSpace(literal)
	if lit == "" {
		return Value{}, false
	}
	t := Normalize(typeName)
	switch t {
	case Boolean:
		switch strings.ToLower(lit) {
		case "true", "1":
			return Bool(true), true
		case "false", "0":
			return Bool(false), true
		}
		return Value{}, false
	case Integer:
		i, err := strconv.Atoi(lit)
		if err != nil {
			return Value{}, false
		}
		return Int(i), true
	case String, Filename:
		return Str(lit), true
	}

	arity := t.Arity()
	if arity == 0 {
		return Value{}, false
	}
	parts := strings.Split(lit, ",")
	if len(parts) != arity {
		return Value{}, false
	}
	nums := make([]float64, arity)
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return Value{}, false
		}
		nums[i] = f
	}
	return Tuple(nums...), true
}
