package types

import (
	"encoding/json"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want Type
	}{
		{"float", Float},
		{"half", Float},
		{"half2", Vector2},
		{"half3", Color3},
		{"half4", Color4},
		{"int", Integer},
		{" Color3 ", Color3},
		{"BSDF", Type("bsdf")},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := Normalize(tt.in); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestCoerce(t *testing.T) {
	tests := []struct {
		name  string
		in    Value
		arity int
		want  Value
	}{
		{"3 to 4 appends alpha", Tuple(0.8, 0.1, 0.1), 4, Tuple(0.8, 0.1, 0.1, 1)},
		{"4 to 3 drops alpha", Tuple(0.8, 0.1, 0.1, 0.5), 3, Tuple(0.8, 0.1, 0.1)},
		{"vector2 kept", Tuple(1, 2, 3), 2, Tuple(1, 2)},
		{"scalar takes first", Tuple(0.3, 0.2, 0.1), 1, Num(0.3)},
		{"scalar replicated", Num(0.5), 3, Tuple(0.5, 0.5, 0.5)},
		{"2 to 3", Tuple(1, 2), 3, Tuple(1, 2, 0)},
		{"2 to 4", Tuple(1, 2), 4, Tuple(1, 2, 0, 1)},
		{"same arity", Tuple(1, 2, 3), 3, Tuple(1, 2, 3)},
		{"string untouched", Str("r"), 3, Str("r")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Coerce(tt.in, tt.arity); !got.Equal(tt.want) {
				t.Errorf("Coerce(%v, %d) = %v, want %v", tt.in, tt.arity, got, tt.want)
			}
		})
	}
}

func TestCoerceTo(t *testing.T) {
	if got := CoerceTo(Num(2.6), Integer); !got.Equal(Int(3)) {
		t.Errorf("CoerceTo(2.6, integer) = %v, want 3", got)
	}
	if got := CoerceTo(Num(1), Boolean); !got.Equal(Bool(true)) {
		t.Errorf("CoerceTo(1, boolean) = %v, want true", got)
	}
	if got := CoerceTo(Tuple(1, 0, 0), Color4); got.Arity() != 4 {
		t.Errorf("CoerceTo(color3, color4) arity = %d, want 4", got.Arity())
	}
}

func TestDefaultValue(t *testing.T) {
	tests := []struct {
		name    string
		typ     string
		literal string
		want    Value
		ok      bool
	}{
		{"float", "float", "0.5", Num(0.5), true},
		{"half folds", "half", "0.25", Num(0.25), true},
		{"color3", "color3", "0.8, 0.1, 0.1", Tuple(0.8, 0.1, 0.1), true},
		{"vector2", "vector2", "1,2", Tuple(1, 2), true},
		{"boolean true", "boolean", "true", Bool(true), true},
		{"boolean one", "boolean", "1", Bool(true), true},
		{"boolean false", "boolean", "false", Bool(false), true},
		{"integer", "integer", "3", Int(3), true},
		{"string", "string", "tangent", Str("tangent"), true},

		{"empty", "float", "", Value{}, false},
		{"malformed float", "float", "abc", Value{}, false},
		{"wrong arity", "color3", "1, 2", Value{}, false},
		{"malformed component", "color3", "1, x, 2", Value{}, false},
		{"bad boolean", "boolean", "yes", Value{}, false},
		{"unknown type", "surfaceshader", "0", Value{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := DefaultValue(tt.typ, tt.literal)
			if ok != tt.ok {
				t.Fatalf("DefaultValue(%q, %q) ok = %v, want %v", tt.typ, tt.literal, ok, tt.ok)
			}
			if ok && !got.Equal(tt.want) {
				t.Errorf("DefaultValue(%q, %q) = %v, want %v", tt.typ, tt.literal, got, tt.want)
			}
		})
	}
}

func TestValueJSON(t *testing.T) {
	tests := []struct {
		raw  string
		want Value
	}{
		{`0.5`, Num(0.5)},
		{`[0.8, 0.1, 0.1]`, Tuple(0.8, 0.1, 0.1)},
		{`true`, Bool(true)},
		{`"r"`, Str("r")},
		{`[[0, 0], [1, 0.5]]`, Knots([][2]float64{{0, 0}, {1, 0.5}})},
		{`null`, Value{}},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			var v Value
			if err := json.Unmarshal([]byte(tt.raw), &v); err != nil {
				t.Fatalf("Unmarshal(%s): %v", tt.raw, err)
			}
			if !v.Equal(tt.want) {
				t.Errorf("Unmarshal(%s) = %v, want %v", tt.raw, v, tt.want)
			}
		})
	}
}

func TestValueString(t *testing.T) {
	if got := Tuple(0.8, 0.1, 0.1).String(); got != "0.8, 0.1, 0.1" {
		t.Errorf("String() = %q", got)
	}
	if got := Bool(true).String(); got != "true" {
		t.Errorf("String() = %q", got)
	}
}

func TestChannels(t *testing.T) {
	if got := Color4.Channels(); got != "rgba" {
		t.Errorf("Color4.Channels() = %q", got)
	}
	if got := Vector3.Channels(); got != "xyz" {
		t.Errorf("Vector3.Channels() = %q", got)
	}
	if Float.IsMulti() {
		t.Error("Float.IsMulti() = true")
	}
}
