package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/shaderport/pkg/classify"
	"github.com/matzehuels/shaderport/pkg/diag"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // Teal - primary actions
	colorGreen  = lipgloss.Color("35")  // Green - success
	colorYellow = lipgloss.Color("220") // Amber - warnings
	colorRed    = lipgloss.Color("167") // Soft red - errors
	colorBlue   = lipgloss.Color("75")  // Light blue - commands
	colorWhite  = lipgloss.Color("255") // Bright white - values
	colorGray   = lipgloss.Color("245") // Gray - secondary text
	colorDim    = lipgloss.Color("240") // Dim gray - muted text
)

// =============================================================================
// Styles
// =============================================================================

var (
	// StyleTitle for main headings.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)

	// StyleDim for secondary/muted text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	// StyleValue for data values.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)

	// StyleSuccess for success messages.
	StyleSuccess = lipgloss.NewStyle().Foreground(colorGreen)

	// StyleWarning for warning messages.
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)

	// StyleError for error messages.
	StyleError = lipgloss.NewStyle().Foreground(colorRed)
)

var (
	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)

	styleCached   = lipgloss.NewStyle().Foreground(colorGreen)
	styleComputed = lipgloss.NewStyle().Foreground(colorGray)
	styleCommand  = lipgloss.NewStyle().Foreground(colorBlue)
	styleHeader   = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
)

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
)

// =============================================================================
// Status Output
// =============================================================================

func printSuccess(format string, args ...any) {
	fmt.Println(styleIconSuccess.Render(iconSuccess) + " " + fmt.Sprintf(format, args...))
}

func printError(format string, args ...any) {
	fmt.Println(styleIconError.Render(iconError) + " " + fmt.Sprintf(format, args...))
}

func printWarning(format string, args ...any) {
	fmt.Println(styleIconWarning.Render(iconWarning) + " " + StyleWarning.Render(fmt.Sprintf(format, args...)))
}

func printInfo(format string, args ...any) {
	fmt.Println(styleIconInfo.Render(iconInfo) + " " + fmt.Sprintf(format, args...))
}

// printDetail prints an indented dim line.
func printDetail(format string, args ...any) {
	fmt.Println("  " + StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile prints a file output line.
func printFile(path string) {
	fmt.Println("  " + StyleDim.Render(iconArrow) + " " + StyleValue.Render(path))
}

// printKeyValue prints a labeled value.
func printKeyValue(key, value string) {
	keyStyle := lipgloss.NewStyle().Foreground(colorGray).Width(12)
	fmt.Println(keyStyle.Render(key) + " " + StyleValue.Render(value))
}

// printStats prints export counters on a single line.
func printStats(materials, cached, warnings int) {
	parts := []string{fmt.Sprintf("%d materials", materials)}
	if warnings > 0 {
		parts = append(parts, StyleWarning.Render(fmt.Sprintf("%d warnings", warnings)))
	}
	if cached > 0 {
		parts = append(parts, styleCached.Render(fmt.Sprintf("%d cached", cached)))
	} else {
		parts = append(parts, styleComputed.Render("fresh"))
	}
	fmt.Println("  " + strings.Join(parts, StyleDim.Render(" · ")))
}

// printNextStep prints a suggested next command.
func printNextStep(description, cmd string) {
	fmt.Println(StyleDim.Render(description+":") + " " + styleCommand.Render(cmd))
}

// =============================================================================
// Tables
// =============================================================================

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers(headers...)
}

// issueTable renders classifier issues, errors first.
func issueTable(errs, warns []classify.Issue) string {
	type row struct {
		sev   string
		issue classify.Issue
	}
	var rows []row
	for _, i := range errs {
		rows = append(rows, row{"error", i})
	}
	for _, i := range warns {
		rows = append(rows, row{"warning", i})
	}
	t := newTable("", "Material", "Node", "Type", "Issue")
	for _, r := range rows {
		t.Row(r.sev, r.issue.Material, r.issue.Node, r.issue.NodeType, r.issue.Message)
	}
	return t.StyleFunc(func(i, col int) lipgloss.Style {
		if i == table.HeaderRow {
			return styleHeader
		}
		if col == 0 && i < len(rows) {
			if rows[i].sev == "error" {
				return StyleError
			}
			return StyleWarning
		}
		return lipgloss.NewStyle()
	}).Render()
}

// reportTable renders the node policy records of a report.
func reportTable(r *diag.Report) string {
	t := newTable("Policy", "Node", "Material")
	add := func(policy string, uses []diag.NodeUse) {
		for _, u := range uses {
			t.Row(policy, u.Node, u.Material)
		}
	}
	add("fallback", r.Nodes.FallbackUsed)
	add("ktx required", r.Nodes.KTXRequired)
	add("omitted", r.Nodes.Omitted)
	return t.StyleFunc(func(i, _ int) lipgloss.Style {
		if i == table.HeaderRow {
			return styleHeader
		}
		return StyleDim
	}).Render()
}

// hasPolicyRecords reports whether r has rows for [reportTable].
func hasPolicyRecords(r *diag.Report) bool {
	return len(r.Nodes.FallbackUsed)+len(r.Nodes.KTXRequired)+len(r.Nodes.Omitted) > 0
}
