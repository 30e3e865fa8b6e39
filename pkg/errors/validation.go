package errors

import (
	"strings"
	"unicode"
)

// ValidateMaterialName validates a material name taken from a source graph.
// Names end up in diagnostics and target node names, so control characters
// and empty names are rejected.
func ValidateMaterialName(name string) error {
	if strings.TrimSpace(name) == "" {
		return New(ErrCodeInvalidGraph, "material name cannot be empty")
	}

	if len(name) > 256 {
		return New(ErrCodeInvalidGraph, "material name too long (max 256 characters)")
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidGraph, "material name contains invalid control characters")
		}
	}

	return nil
}

// ValidateTexturePath validates an image path referenced by a texture node.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 1024 characters
//   - No null bytes or control characters
//   - No parent-directory traversal for relative paths
func ValidateTexturePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "texture path cannot be empty")
	}

	const maxPathLength = 1024
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "texture path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "texture path contains invalid characters")
		}
	}

	if !strings.HasPrefix(path, "/") {
		for _, part := range strings.FieldsFunc(path, func(r rune) bool { return r == '/' || r == '\\' }) {
			if part == ".." {
				return New(ErrCodeInvalidPath, "texture path cannot contain path traversal sequences (..)")
			}
		}
	}

	return nil
}
