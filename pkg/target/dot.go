package target

import (
	"bytes"
	"context"
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"
)

// DOTOptions configures [ToDOT].
type DOTOptions struct {
	// Detailed adds literal inputs to node labels.
	Detailed bool
	// Title labels the whole drawing, usually with the material name.
	Title string
}

// ToDOT converts g to Graphviz DOT. Edges run from producer to consumer
// and are labeled with the consuming input.
func ToDOT(g *Graph, opts DOTOptions) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  edge [fontsize=10];\n")
	if opts.Title != "" {
		fmt.Fprintf(&buf, "  label=%q;\n  labelloc=t;\n", opts.Title)
	}
	buf.WriteString("\n")

	out, hasOut := g.Output()
	for i, n := range g.nodes {
		attrs := []string{fmt.Sprintf("label=%q", fmtLabel(n, opts.Detailed))}
		if hasOut && out.Node == NodeHandle(i) {
			attrs = append(attrs, "penwidth=2")
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", n.Name, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, c := range g.conns {
		fmt.Fprintf(&buf, "  %q -> %q [label=%q];\n", g.Name(c.From), g.Name(c.To), c.ToInput)
	}
	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(n NodeInstance, detailed bool) string {
	label := n.Name + "\n" + n.NodeDef
	if !detailed || len(n.Inputs) == 0 {
		return label
	}
	parts := make([]string, 0, len(n.Inputs))
	for _, k := range slices.Sorted(maps.Keys(n.Inputs)) {
		parts = append(parts, fmt.Sprintf("%s: %s", k, n.Inputs[k]))
	}
	return label + "\n" + strings.Join(parts, "\n")
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the root element so the drawing scales from a
// zero origin.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}
	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}
	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`, w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}
