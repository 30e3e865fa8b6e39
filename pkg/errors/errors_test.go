package errors

import (
	"errors"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeManifestSchema, "expected schema %s", "2.0.0")

	if err.Code != ErrCodeManifestSchema {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeManifestSchema)
	}

	if err.Message != "expected schema 2.0.0" {
		t.Errorf("Message = %v, want %v", err.Message, "expected schema 2.0.0")
	}

	expected := "MANIFEST_SCHEMA: expected schema 2.0.0"
	if err.Error() != expected {
		t.Errorf("Error() = %v, want %v", err.Error(), expected)
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("unexpected EOF")
	err := Wrap(ErrCodeInvalidGraph, cause, "decode material")

	if err.Code != ErrCodeInvalidGraph {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeInvalidGraph)
	}
	if err.Cause != cause {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}
	if unwrapped := errors.Unwrap(err); unwrapped != cause {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, cause)
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
	}
}

func TestIs(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		code     Code
		expected bool
	}{
		{"matching code", New(ErrCodeUnresolved, "test"), ErrCodeUnresolved, true},
		{"non-matching code", New(ErrCodeUnresolved, "test"), ErrCodeClassification, false},
		{"wrapped error", Wrap(ErrCodeClassification, New(ErrCodeUnresolved, "inner"), "outer"), ErrCodeClassification, true},
		{"non-Error type", errors.New("plain error"), ErrCodeInvalidInput, false},
		{"nil error", nil, ErrCodeInvalidInput, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.code); got != tt.expected {
				t.Errorf("Is() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestGetCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected Code
	}{
		{"Error type", New(ErrCodeManifestMissing, "test"), ErrCodeManifestMissing},
		{"plain error", errors.New("plain"), ""},
		{"nil", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetCode(tt.err); got != tt.expected {
				t.Errorf("GetCode() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestUserMessage(t *testing.T) {
	err := New(ErrCodeClassification, "material %q has unsupported nodes", "Body")
	if got := UserMessage(err); got != `material "Body" has unsupported nodes` {
		t.Errorf("UserMessage() = %v", got)
	}
	if got := UserMessage(errors.New("plain")); got != "plain" {
		t.Errorf("UserMessage(plain) = %v, want plain", got)
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, 0},
		{"plain", errors.New("boom"), 1},
		{"classification", New(ErrCodeClassification, "x"), 2},
		{"unresolved", New(ErrCodeUnresolved, "x"), 2},
		{"manifest schema", New(ErrCodeManifestSchema, "x"), 3},
		{"invalid input", New(ErrCodeInvalidInput, "x"), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExitCode(tt.err); got != tt.want {
				t.Errorf("ExitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}
