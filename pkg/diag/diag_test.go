package diag

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
)

func TestDeduplicatesInOrder(t *testing.T) {
	r := NewReport()
	s := r.Sink("Paint")
	s.Warnf("first")
	s.Warnf("second")
	s.Warnf("first")
	r.Warn("Material 'Paint': second")

	want := []string{"Material 'Paint': first", "Material 'Paint': second"}
	if len(r.Warnings) != len(want) {
		t.Fatalf("Warnings = %v, want %v", r.Warnings, want)
	}
	for i := range want {
		if r.Warnings[i] != want[i] {
			t.Errorf("Warnings[%d] = %q, want %q", i, r.Warnings[i], want[i])
		}
	}
	if !r.OK() {
		t.Error("OK = false with warnings only")
	}
}

func TestFailed(t *testing.T) {
	r := NewReport()
	r.Converted("A")
	r.Failed("B", "unresolved base color")
	if r.OK() {
		t.Error("OK = true after a failure")
	}
	if got, want := r.Errors[0], "Material conversion failed: B (unresolved base color)"; got != want {
		t.Errorf("error = %q, want %q", got, want)
	}
	if r.Materials.Converted != 1 || r.Materials.Failed != 1 {
		t.Errorf("stats = %+v", r.Materials)
	}
}

func TestPolicyRecords(t *testing.T) {
	r := NewReport()
	s := r.Sink("Paint")
	s.Fallback("ND_fallback")
	s.KTXRequired("ND_image_color4", "tex/a.png")
	s.Omitted("ND_geometrymodifier")

	if len(r.Nodes.FallbackUsed) != 1 || len(r.Nodes.KTXRequired) != 1 || len(r.Nodes.Omitted) != 1 {
		t.Errorf("Nodes = %+v", r.Nodes)
	}
	if len(r.Warnings) != 3 {
		t.Errorf("Warnings = %d, want 3", len(r.Warnings))
	}
	sum := r.Summary()
	for _, want := range []string{"Fallback nodes used: 1", "KTX-required nodes: 1", "Omitted nodes: 1", "Warnings: 3"} {
		if !strings.Contains(sum, want) {
			t.Errorf("Summary missing %q:\n%s", want, sum)
		}
	}
	if strings.Contains(sum, "Errors:") {
		t.Errorf("Summary lists errors:\n%s", sum)
	}
}

func TestNilSink(t *testing.T) {
	var s *Sink
	s.Warnf("ignored")
	s.Fallback("ND_x")
	if s.Material() != "" {
		t.Error("nil sink has a material")
	}
}

func TestWriteJSON(t *testing.T) {
	r := NewReport()
	r.Sink("Paint").Omitted("ND_geometrymodifier")

	var buf bytes.Buffer
	if err := r.WriteJSON(&buf); err != nil {
		t.Fatal(err)
	}
	var doc map[string]any
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatal(err)
	}
	if doc["run_id"] != r.RunID {
		t.Errorf("run_id = %v, want %s", doc["run_id"], r.RunID)
	}

	path := filepath.Join(t.TempDir(), "out", "diag.json")
	if err := r.WriteFile(path); err != nil {
		t.Errorf("WriteFile: %v", err)
	}
}

func TestMerge(t *testing.T) {
	run := NewReport()
	run.Warn("shared")

	m := NewReport()
	m.Warn("shared")
	m.Warn("own")
	m.Converted("Paint")
	m.Sink("Paint").Fallback("ND_x")

	run.Merge(m)
	run.Merge(nil)
	if len(run.Warnings) != 3 {
		t.Errorf("Warnings = %v, want 3 entries", run.Warnings)
	}
	if run.Materials.Converted != 1 || len(run.Nodes.FallbackUsed) != 1 {
		t.Errorf("counters = %+v %+v", run.Materials, run.Nodes)
	}
}
