package source

import "strings"

// DefaultUVSet is the geometric property name of the primary UV set.
const DefaultUVSet = "UV0"

// NormalizeUVMap maps host UV map names onto target geometric property
// names. The host's default spellings and the empty name become UV0.
func NormalizeUVMap(name string) string {
	n := strings.TrimSpace(name)
	switch strings.ToLower(n) {
	case "", "uvmap", "uv0", "uv", "st", "st0":
		return DefaultUVSet
	}
	return n
}

// NormalizeColorSpace folds host color space names to "srgb" or "raw".
// Other names are lowercased. An empty name stays empty.
func NormalizeColorSpace(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	switch {
	case n == "":
		return ""
	case n == "srgb" || n == "srgb texture" || n == "s-rgb":
		return "srgb"
	case strings.Contains(n, "non-color") || strings.Contains(n, "raw"):
		return "raw"
	}
	return n
}

// NormalizeAlphaMode folds host alpha modes to "premul" or "straight".
func NormalizeAlphaMode(mode string) string {
	switch m := strings.ToUpper(strings.TrimSpace(mode)); m {
	case "":
		return ""
	case "PREMUL":
		return "premul"
	case "STRAIGHT":
		return "straight"
	default:
		return strings.ToLower(m)
	}
}

// ChannelFromName maps a separate-node output name to a channel letter.
func ChannelFromName(name string) string {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "r", "red":
		return "r"
	case "g", "green":
		return "g"
	case "b", "blue":
		return "b"
	case "a", "alpha":
		return "a"
	case "x":
		return "x"
	case "y":
		return "y"
	case "z":
		return "z"
	}
	return ""
}
