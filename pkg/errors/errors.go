// Package errors provides structured error types for shaderport.
//
// Errors carry a machine-readable [Code] so the export driver and the CLI can
// decide between aborting an export, reporting a degraded material, or
// printing a short user message.
//
// # Error Codes
//
// Codes follow a coarse naming convention:
//   - INVALID_*: malformed input (source graphs, target graphs, flags)
//   - MANIFEST_*: node-definition manifest load failures
//   - CLASSIFICATION_FAILED / UNRESOLVED: translation failures
//   - INTERNAL_*: unexpected internal errors
//
// # Usage
//
//	err := errors.New(errors.ErrCodeManifestSchema, "expected schema %s, got %s", want, got)
//	if errors.Is(err, errors.ErrCodeManifestSchema) {
//	    // rebuild the manifest
//	}
//
//	err := errors.Wrap(errors.ErrCodeInvalidGraph, origErr, "decode material %s", name)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput       Code = "INVALID_INPUT"
	ErrCodeInvalidGraph       Code = "INVALID_GRAPH"
	ErrCodeInvalidTargetGraph Code = "INVALID_TARGET_GRAPH"
	ErrCodeInvalidManifest    Code = "INVALID_MANIFEST"
	ErrCodeInvalidPath        Code = "INVALID_PATH"

	// Manifest load errors
	ErrCodeManifestMissing Code = "MANIFEST_MISSING"
	ErrCodeManifestSchema  Code = "MANIFEST_SCHEMA"

	// Translation errors
	ErrCodeClassification Code = "CLASSIFICATION_FAILED"
	ErrCodeUnresolved     Code = "UNRESOLVED"

	// Resource not found errors
	ErrCodeNotFound     Code = "NOT_FOUND"
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// ExitCode maps an error to a process exit status for the CLI.
// Classification failures exit with 2 so batch scripts can tell a rejected
// material apart from a broken invocation.
func ExitCode(err error) int {
	switch GetCode(err) {
	case "":
		if err == nil {
			return 0
		}
		return 1
	case ErrCodeClassification, ErrCodeUnresolved:
		return 2
	case ErrCodeManifestMissing, ErrCodeManifestSchema, ErrCodeInvalidManifest:
		return 3
	default:
		return 1
	}
}
