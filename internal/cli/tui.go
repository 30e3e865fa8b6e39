package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/shaderport/pkg/classify"
)

var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// verdictModel - browse classification results
// =============================================================================

// verdictModel lists materials; enter opens the node verdicts of one.
type verdictModel struct {
	results []classify.Result
	cursor  int
	offset  int
	height  int
	open    bool // showing the detail of results[cursor]
}

func newVerdictModel(s classify.Summary) verdictModel {
	return verdictModel{results: s.Results, height: 15}
}

func (m verdictModel) Init() tea.Cmd { return nil }

func (m verdictModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "esc", "backspace":
			m.open = false
		case "up", "k":
			if !m.open && m.cursor > 0 {
				m.cursor--
				if m.cursor < m.offset {
					m.offset = m.cursor
				}
			}
		case "down", "j":
			if !m.open && m.cursor < len(m.results)-1 {
				m.cursor++
				if m.cursor >= m.offset+m.height {
					m.offset = m.cursor - m.height + 1
				}
			}
		case "enter":
			if len(m.results) > 0 {
				m.open = !m.open
			}
		}
	case tea.WindowSizeMsg:
		m.height = max(msg.Height-6, 5)
	}
	return m, nil
}

func (m verdictModel) View() string {
	if m.open {
		return m.detail()
	}
	var b strings.Builder
	b.WriteString(StyleTitle.Render("Materials"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ open  q quit"))
	b.WriteString("\n\n")

	end := min(m.offset+m.height, len(m.results))
	for i := m.offset; i < end; i++ {
		r := m.results[i]
		status := StyleSuccess.Render(iconSuccess)
		switch {
		case !r.OK():
			status = StyleError.Render(iconError)
		case len(r.Warnings) > 0:
			status = StyleWarning.Render(iconWarning)
		}
		cursor := "  "
		style := listNormalStyle
		if i == m.cursor {
			cursor, style = "▸ ", listSelectedStyle
		}
		b.WriteString(fmt.Sprintf("%s%s %s  %s\n", cursor, status, style.Render(r.Material),
			listDimStyle.Render(bucketCounts(r))))
	}
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.cursor+1, len(m.results))))
	return b.String()
}

// detail renders the node verdicts of the selected material.
func (m verdictModel) detail() string {
	r := m.results[m.cursor]
	var b strings.Builder
	b.WriteString(StyleTitle.Render(r.Material))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("esc back  q quit"))
	b.WriteString("\n\n")

	t := newTable("Node", "Type", "Verdict")
	for _, v := range r.Nodes {
		t.Row(v.Node.DisplayName(), v.Node.Type, v.Bucket.String())
	}
	b.WriteString(t.StyleFunc(func(i, col int) lipgloss.Style {
		if i == table.HeaderRow {
			return styleHeader
		}
		if col == 2 && i < len(r.Nodes) {
			return bucketStyle(r.Nodes[i].Bucket)
		}
		return lipgloss.NewStyle()
	}).Render())
	b.WriteString("\n")
	for _, issue := range r.Errors {
		b.WriteString(StyleError.Render(iconError+" "+issue.String()) + "\n")
	}
	for _, issue := range r.Warnings {
		b.WriteString(StyleWarning.Render(iconWarning+" "+issue.String()) + "\n")
	}
	return b.String()
}

func bucketStyle(b classify.Bucket) lipgloss.Style {
	switch b {
	case classify.Supported, classify.Identity, classify.Group:
		return StyleSuccess
	case classify.Partial, classify.Bake:
		return StyleWarning
	case classify.Unsupported, classify.Unrecognized:
		return StyleError
	}
	return StyleDim
}
