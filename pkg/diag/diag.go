// Package diag collects the warnings and errors of one export run.
//
// A [Report] is created per run and handed out per material as a [Sink].
// Messages keep their first-seen order and exact duplicates are dropped.
// Recoverable conditions (fallback definitions, skipped KTX-only fetches,
// omitted nodes, unresolved anchors) are warnings: the export continues
// but never silently.
package diag

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Failure records why a material was not converted.
type Failure struct {
	Material string `json:"material"`
	Reason   string `json:"reason"`
}

// NodeUse records a policy-flagged node definition used by a material.
type NodeUse struct {
	Node     string `json:"node"`
	Material string `json:"material"`
}

// MaterialStats counts converted and failed materials.
type MaterialStats struct {
	Converted int       `json:"converted"`
	Failed    int       `json:"failed"`
	Failures  []Failure `json:"failures"`
}

// NodeStats lists node definitions that triggered a policy.
type NodeStats struct {
	FallbackUsed []NodeUse `json:"fallback_used"`
	KTXRequired  []NodeUse `json:"ktx_required"`
	Omitted      []NodeUse `json:"omitted"`
}

// Report is the diagnostics of one export run.
type Report struct {
	RunID     string        `json:"run_id"`
	Timestamp time.Time     `json:"timestamp"`
	Materials MaterialStats `json:"materials"`
	Nodes     NodeStats     `json:"nodes"`
	Errors    []string      `json:"errors"`
	Warnings  []string      `json:"warnings"`

	seen map[string]bool
}

// NewReport starts a report with a fresh run id.
func NewReport() *Report {
	return &Report{
		RunID:     uuid.NewString(),
		Timestamp: time.Now().UTC(),
		Errors:    []string{},
		Warnings:  []string{},
		seen:      map[string]bool{},
	}
}

func (r *Report) add(list *[]string, kind, msg string) {
	if r.seen == nil {
		r.seen = map[string]bool{}
	}
	key := kind + "\x00" + msg
	if r.seen[key] {
		return
	}
	r.seen[key] = true
	*list = append(*list, msg)
}

// Warn records a warning.
func (r *Report) Warn(msg string) { r.add(&r.Warnings, "w", msg) }

// Error records an error.
func (r *Report) Error(msg string) { r.add(&r.Errors, "e", msg) }

// Converted counts a converted material.
func (r *Report) Converted(material string) { r.Materials.Converted++ }

// Failed counts a failed material and records an error naming it.
func (r *Report) Failed(material, reason string) {
	r.Materials.Failed++
	r.Materials.Failures = append(r.Materials.Failures, Failure{Material: material, Reason: reason})
	r.Error(fmt.Sprintf("Material conversion failed: %s (%s)", material, reason))
}

// Merge appends the messages, counters and node records of o.
func (r *Report) Merge(o *Report) {
	if o == nil {
		return
	}
	for _, m := range o.Errors {
		r.Error(m)
	}
	for _, m := range o.Warnings {
		r.Warn(m)
	}
	r.Materials.Converted += o.Materials.Converted
	r.Materials.Failed += o.Materials.Failed
	r.Materials.Failures = append(r.Materials.Failures, o.Materials.Failures...)
	r.Nodes.FallbackUsed = append(r.Nodes.FallbackUsed, o.Nodes.FallbackUsed...)
	r.Nodes.KTXRequired = append(r.Nodes.KTXRequired, o.Nodes.KTXRequired...)
	r.Nodes.Omitted = append(r.Nodes.Omitted, o.Nodes.Omitted...)
}

// OK reports whether the run recorded no errors.
func (r *Report) OK() bool { return len(r.Errors) == 0 }

// Sink returns the writer for material.
func (r *Report) Sink(material string) *Sink { return &Sink{report: r, material: material} }

// Summary renders the counters as text, one per line.
func (r *Report) Summary() string {
	lines := []string{
		"Export Diagnostics Summary",
		strings.Repeat("=", 40),
		fmt.Sprintf("Run: %s", r.RunID),
		fmt.Sprintf("Materials converted: %d", r.Materials.Converted),
		fmt.Sprintf("Materials failed: %d", r.Materials.Failed),
	}
	counts := []struct {
		label string
		n     int
	}{
		{"Fallback nodes used", len(r.Nodes.FallbackUsed)},
		{"KTX-required nodes", len(r.Nodes.KTXRequired)},
		{"Omitted nodes", len(r.Nodes.Omitted)},
		{"Errors", len(r.Errors)},
		{"Warnings", len(r.Warnings)},
	}
	for _, c := range counts {
		if c.n > 0 {
			lines = append(lines, fmt.Sprintf("%s: %d", c.label, c.n))
		}
	}
	return strings.Join(lines, "\n")
}

// WriteJSON writes r as indented JSON.
func (r *Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("encode diagnostics: %w", err)
	}
	return nil
}

// WriteFile writes r as JSON to path, creating parent directories.
func (r *Report) WriteFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create %s: %w", filepath.Dir(path), err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return r.WriteJSON(f)
}
