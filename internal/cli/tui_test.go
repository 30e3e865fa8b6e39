package cli

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/shaderport/internal/testutil"
	"github.com/matzehuels/shaderport/pkg/classify"
	"github.com/matzehuels/shaderport/pkg/source"
)

func verdicts(t *testing.T) classify.Summary {
	wood := texturedMaterial(t)
	g := testutil.NewGraph(t, "Glow")
	g.Output("Out", g.Emission("Emission", 2))
	return classify.Materials([]*source.Material{wood, g.Material("Glow", "OPAQUE")}, classify.Options{})
}

func press(m tea.Model, keys ...tea.KeyMsg) tea.Model {
	for _, k := range keys {
		m, _ = m.Update(k)
	}
	return m
}

func TestVerdictModelNavigation(t *testing.T) {
	var m tea.Model = newVerdictModel(verdicts(t))

	view := m.View()
	if !strings.Contains(view, "Wood") || !strings.Contains(view, "Glow") {
		t.Fatalf("list view misses materials:\n%s", view)
	}

	m = press(m, tea.KeyMsg{Type: tea.KeyDown}, tea.KeyMsg{Type: tea.KeyDown})
	if got := m.(verdictModel).cursor; got != 1 {
		t.Errorf("cursor = %d, want 1 (clamped)", got)
	}

	m = press(m, tea.KeyMsg{Type: tea.KeyEnter})
	detail := m.View()
	if !strings.Contains(detail, "Emission") || !strings.Contains(detail, "supported") {
		t.Errorf("detail view:\n%s", detail)
	}

	m = press(m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.(verdictModel).open {
		t.Error("esc did not close the detail view")
	}
}

func TestVerdictModelQuit(t *testing.T) {
	m := newVerdictModel(verdicts(t))
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd == nil {
		t.Fatal("q returned no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q did not quit")
	}
}

func TestBucketCounts(t *testing.T) {
	s := verdicts(t)
	got := bucketCounts(s.Results[1])
	if !strings.Contains(got, "supported") {
		t.Errorf("bucketCounts = %q", got)
	}
	if bucketCounts(classify.Result{}) != "no nodes" {
		t.Error("empty result not reported as no nodes")
	}
}
