package diag

import "fmt"

// Sink writes diagnostics for one material. A nil Sink discards
// everything.
type Sink struct {
	report   *Report
	material string
}

// Material returns the material the sink writes for.
func (s *Sink) Material() string {
	if s == nil {
		return ""
	}
	return s.material
}

// Warnf records a warning prefixed with the material name.
func (s *Sink) Warnf(format string, args ...any) {
	if s == nil {
		return
	}
	s.report.Warn(fmt.Sprintf("Material '%s': ", s.material) + fmt.Sprintf(format, args...))
}

// Errorf records an error prefixed with the material name.
func (s *Sink) Errorf(format string, args ...any) {
	if s == nil {
		return
	}
	s.report.Error(fmt.Sprintf("Material '%s': ", s.material) + fmt.Sprintf(format, args...))
}

// Fallback records that a fallback definition was emitted.
func (s *Sink) Fallback(nodedef string) {
	if s == nil {
		return
	}
	s.report.Nodes.FallbackUsed = append(s.report.Nodes.FallbackUsed, NodeUse{Node: nodedef, Material: s.material})
	s.report.Warn(fmt.Sprintf("Fallback node used: %s (material %s)", nodedef, s.material))
}

// KTXRequired records a fetch skipped because its definition reads KTX
// textures only.
func (s *Sink) KTXRequired(nodedef, path string) {
	if s == nil {
		return
	}
	s.report.Nodes.KTXRequired = append(s.report.Nodes.KTXRequired, NodeUse{Node: nodedef, Material: s.material})
	s.report.Warn(fmt.Sprintf("KTX-required node used: %s (material %s); skipped non-KTX texture %s", nodedef, s.material, path))
}

// Omitted records a definition that is not authored in the target.
func (s *Sink) Omitted(nodedef string) {
	if s == nil {
		return
	}
	s.report.Nodes.Omitted = append(s.report.Nodes.Omitted, NodeUse{Node: nodedef, Material: s.material})
	s.report.Warn(fmt.Sprintf("Omitted node used: %s (material %s)", nodedef, s.material))
}
