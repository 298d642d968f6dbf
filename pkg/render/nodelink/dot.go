package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/polarcoaster/pkg/cart"
	"github.com/matzehuels/polarcoaster/pkg/render"
	"github.com/matzehuels/polarcoaster/pkg/scene"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed prefixes each label with the node's index, depth and kind.
	// When false, only the node's display text is shown.
	Detailed bool
	// Cart, when set, fills the two nodes the cart travels between.
	Cart *cart.State
}

// ToDOT converts a layout's tree to Graphviz DOT format.
// The resulting DOT string can be rendered using [RenderSVG], [RenderPDF], or [RenderPNG].
//
// Query nodes are drawn as rounded boxes and rule nodes as ellipses. Nodes
// are named by their trace index so siblings keep trace order left to right.
func ToDOT(l scene.Layout, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  ordering=out;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontname=monospace, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	active := activeNodes(l, opts.Cart)
	for _, n := range l.Nodes {
		attrs := fmtAttrs(n, fmtLabel(n, opts.Detailed), active[n.Index])
		fmt.Fprintf(&buf, "  n%d [%s];\n", n.Index, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, e := range l.Edges {
		fmt.Fprintf(&buf, "  n%d -> n%d;\n", e.From, e.To)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func activeNodes(l scene.Layout, st *cart.State) map[int]bool {
	if st == nil {
		return nil
	}
	from, to := l.Animator().Nodes(*st)
	return map[int]bool{from: true, to: true}
}

func fmtLabel(n scene.Node, detailed bool) string {
	if !detailed {
		return n.Label
	}
	return fmt.Sprintf("#%d depth: %d %s\n%s", n.Index, n.Depth, strings.ToLower(n.Kind), n.Label)
}

func fmtAttrs(n scene.Node, label string, active bool) []string {
	attrs := []string{"label=" + quoteDOT(label)}
	if n.Kind == "Rule" {
		attrs = append(attrs, "shape=ellipse", "style=filled")
	}
	if active {
		attrs = append(attrs, "fillcolor=\"#ffd6d6\"", "color=red")
	}
	return attrs
}

// dotEscaper escapes a label for a DOT double-quoted string. Only the quote
// and backslash are special there; line breaks become DOT's \n escape and
// every other rune is written as is.
var dotEscaper = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	"\r\n", `\n`,
	"\n", `\n`,
	"\r", `\n`,
)

func quoteDOT(s string) string {
	return `"` + dotEscaper.Replace(s) + `"`
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
// Returns the SVG bytes ready for display or further conversion with [render.ToPDF] or [render.ToPNG].
func RenderSVG(dot string) ([]byte, error) {
	ctx := context.Background()
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

// normalizeViewBox rewrites Graphviz's root element so the drawing starts
// at the origin and carries explicit pixel dimensions.
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

	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}

// RenderPDF renders a DOT graph as PDF via SVG conversion.
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPDF(dot string) ([]byte, error) {
	svg, err := RenderSVG(dot)
	if err != nil {
		return nil, err
	}
	return render.ToPDF(svg)
}

// RenderPNG renders a DOT graph as PNG via SVG conversion.
// A scale of 2.0 produces a 2x resolution image suitable for high-DPI displays.
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPNG(dot string, scale float64) ([]byte, error) {
	svg, err := RenderSVG(dot)
	if err != nil {
		return nil, err
	}
	return render.ToPNG(svg, scale)
}
