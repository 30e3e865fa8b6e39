package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
)

// ValueKind tags the representation held by a [Value].
type ValueKind uint8

const (
	KindNone ValueKind = iota
	KindNumber
	KindTuple
	KindBool
	KindInt
	KindString
	KindKnots
)

// Value is an immutable literal: a scalar, a numeric tuple of 2-4 (or matrix)
// components, a bool, an int, a string, or a list of curve knots.
type Value struct {
	kind  ValueKind
	nums  []float64
	b     bool
	i     int
	s     string
	knots [][2]float64
}

// Num returns a scalar literal.
func Num(f float64) Value { return Value{kind: KindNumber, nums: []float64{f}} }

// Tuple returns a numeric tuple literal. A single component yields a scalar.
func Tuple(xs ...float64) Value {
	if len(xs) == 1 {
		return Num(xs[0])
	}
	return Value{kind: KindTuple, nums: slices.Clone(xs)}
}

// Bool returns a boolean literal.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Int returns an integer literal.
func Int(i int) Value { return Value{kind: KindInt, i: i} }

// Str returns a string literal.
func Str(s string) Value { return Value{kind: KindString, s: s} }

// Knots returns a curve-knot literal sorted by x.
func Knots(pts [][2]float64) Value {
	k := slices.Clone(pts)
	slices.SortStableFunc(k, func(a, b [2]float64) int {
		switch {
		case a[0] < b[0]:
			return -1
		case a[0] > b[0]:
			return 1
		}
		return 0
	})
	return Value{kind: KindKnots, knots: k}
}

func (v Value) Kind() ValueKind { return v.kind }

// IsZero reports whether v holds nothing.
func (v Value) IsZero() bool { return v.kind == KindNone }

// IsNumeric reports whether v is a scalar, tuple, int, or bool usable as numbers.
func (v Value) IsNumeric() bool {
	switch v.kind {
	case KindNumber, KindTuple, KindInt, KindBool:
		return true
	}
	return false
}

// Arity is the component count of a numeric value, or 0.
func (v Value) Arity() int {
	switch v.kind {
	case KindNumber, KindTuple:
		return len(v.nums)
	case KindInt, KindBool:
		return 1
	}
	return 0
}

// Floats returns the numeric components of v.
func (v Value) Floats() []float64 {
	switch v.kind {
	case KindNumber, KindTuple:
		return slices.Clone(v.nums)
	case KindInt:
		return []float64{float64(v.i)}
	case KindBool:
		if v.b {
			return []float64{1}
		}
		return []float64{0}
	}
	return nil
}

// Float returns the first numeric component.
func (v Value) Float() (float64, bool) {
	f := v.Floats()
	if len(f) == 0 {
		return 0, false
	}
	return f[0], true
}

// Component returns component i of a numeric value.
func (v Value) Component(i int) (float64, bool) {
	f := v.Floats()
	if i < 0 || i >= len(f) {
		return 0, false
	}
	return f[i], true
}

// BoolValue returns the boolean held by v. Numbers are true when non-zero.
func (v Value) BoolValue() bool {
	if v.kind == KindBool {
		return v.b
	}
	f, ok := v.Float()
	return ok && f != 0
}

// IntValue returns v as an integer, rounding numbers.
func (v Value) IntValue() int {
	if v.kind == KindInt {
		return v.i
	}
	f, _ := v.Float()
	return int(math.Round(f))
}

// StringValue returns the string held by v.
func (v Value) StringValue() string { return v.s }

// KnotsValue returns the curve knots held by v.
func (v Value) KnotsValue() [][2]float64 { return slices.Clone(v.knots) }

// Equal reports whether two values hold the same literal.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNumber, KindTuple:
		return slices.Equal(v.nums, o.nums)
	case KindBool:
		return v.b == o.b
	case KindInt:
		return v.i == o.i
	case KindString:
		return v.s == o.s
	case KindKnots:
		return slices.Equal(v.knots, o.knots)
	}
	return true
}

// Near reports whether v's first component is within eps of f.
func (v Value) Near(f, eps float64) bool {
	x, ok := v.Float()
	return ok && math.Abs(x-f) < eps
}

// String renders v in the comma separated literal syntax used by node
// definitions ("0.8, 0.1, 0.1").
func (v Value) String() string {
	switch v.kind {
	case KindNumber, KindTuple:
		parts := make([]string, len(v.nums))
		for i, f := range v.nums {
			parts[i] = formatFloat(f)
		}
		return strings.Join(parts, ", ")
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindInt:
		return strconv.Itoa(v.i)
	case KindString:
		return v.s
	case KindKnots:
		parts := make([]string, 0, 2*len(v.knots))
		for _, k := range v.knots {
			parts = append(parts, formatFloat(k[0]), formatFloat(k[1]))
		}
		return strings.Join(parts, ", ")
	}
	return ""
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// Infer returns the natural type of a literal.
func Infer(v Value) Type {
	switch v.kind {
	case KindNumber:
		return Float
	case KindTuple:
		switch len(v.nums) {
		case 2:
			return Vector2
		case 3:
			return Color3
		case 4:
			return Color4
		case 9:
			return Matrix33
		case 16:
			return Matrix44
		}
	case KindBool:
		return Boolean
	case KindInt:
		return Integer
	case KindString:
		return String
	}
	return None
}

// MarshalJSON encodes v as a JSON number, array, bool, or string.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindNumber:
		return json.Marshal(v.nums[0])
	case KindTuple:
		return json.Marshal(v.nums)
	case KindBool:
		return json.Marshal(v.b)
	case KindInt:
		return json.Marshal(v.i)
	case KindString:
		return json.Marshal(v.s)
	case KindKnots:
		return json.Marshal(v.knots)
	}
	return []byte("null"), nil
}

// UnmarshalJSON decodes a JSON literal. Integral numbers decode as scalars;
// arrays of pairs decode as knots.
func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*v = Value{}
		return nil
	}
	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = Str(s)
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(data, &b); err != nil {
			return err
		}
		*v = Bool(b)
	case '[':
		var nums []float64
		if err := json.Unmarshal(data, &nums); err == nil {
			*v = Tuple(nums...)
			return nil
		}
		var knots [][2]float64
		if err := json.Unmarshal(data, &knots); err != nil {
			return fmt.Errorf("literal: %w", err)
		}
		*v = Knots(knots)
	default:
		var f float64
		if err := json.Unmarshal(data, &f); err != nil {
			return fmt.Errorf("literal: %w", err)
		}
		*v = Num(f)
	}
	return nil
}
