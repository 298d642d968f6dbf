package sink

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/matzehuels/polarcoaster/pkg/cart"
	"github.com/matzehuels/polarcoaster/pkg/geom"
	"github.com/matzehuels/polarcoaster/pkg/scene"
)

// Marker styling.
const (
	NodeRadius = 4.0
	NodeColor  = "darkblue"
	CartRadius = 6.0
	CartColor  = "red"

	TextX    = 12.0
	TextY    = 12.0
	TextSize = 18.0
)

const nodeInteractionCSS = `
    .node { transition: r 0.15s ease; }
    .node:hover { r: 6; }`

// SVGOption configures [RenderSVG].
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	state      *cart.State
	pointer    *geom.Point
	text       bool
	background string
	labels     bool
}

// WithCart draws the cart at st.
func WithCart(st cart.State) SVGOption { return func(r *svgRenderer) { r.state = &st } }

// WithPointer resolves hover text as though the pointer were at p.
func WithPointer(p geom.Point) SVGOption { return func(r *svgRenderer) { r.pointer = &p } }

// WithText draws the frame's display text in the top-left corner. Without
// [WithCart] the text is that of the first node on the walk.
func WithText() SVGOption { return func(r *svgRenderer) { r.text = true } }

// WithBackground fills the viewport with color before drawing.
func WithBackground(color string) SVGOption {
	return func(r *svgRenderer) { r.background = color }
}

// WithLabels attaches each node's text as a hover tooltip.
func WithLabels() SVGOption { return func(r *svgRenderer) { r.labels = true } }

// RenderSVG draws l as an SVG sized to its viewport: the track, a marker per
// node and, depending on options, the cart and the display text. Drawing
// order is track, nodes, cart, text.
func RenderSVG(l scene.Layout, opts ...SVGOption) []byte {
	r := svgRenderer{}
	for _, opt := range opts {
		opt(&r)
	}

	w, h := l.Viewport.Width, l.Viewport.Height

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		w, h, w, h)

	if r.background != "" {
		fmt.Fprintf(&buf, `  <rect x="0" y="0" width="%.1f" height="%.1f" fill="%s"/>`+"\n", w, h, escapeXML(r.background))
	}

	renderTrack(&buf, l)
	renderNodes(&buf, l, r.labels)
	if r.labels {
		fmt.Fprintf(&buf, "  <style>%s\n  </style>\n", nodeInteractionCSS)
	}

	st := cart.State{From: 0, To: 1}
	if r.state != nil {
		st = *r.state
	}
	frame := l.Frame(st, r.pointer)

	if r.state != nil {
		fmt.Fprintf(&buf, `  <circle class="cart" cx="%.2f" cy="%.2f" r="%.1f" fill="%s"/>`+"\n",
			frame.Cart.X, frame.Cart.Y, CartRadius, CartColor)
	}
	if r.text {
		renderText(&buf, frame.Text)
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func renderTrack(buf *bytes.Buffer, l scene.Layout) {
	buf.WriteString(`  <g class="track" stroke-linecap="round">` + "\n")
	for _, s := range l.Track {
		fmt.Fprintf(buf, `    <line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke="%s" stroke-width="%.1f"/>`+"\n",
			s.From.X, s.From.Y, s.To.X, s.To.Y, escapeXML(string(s.Color)), s.Thickness)
	}
	buf.WriteString("  </g>\n")
}

func renderNodes(buf *bytes.Buffer, l scene.Layout, labels bool) {
	buf.WriteString(`  <g class="nodes">` + "\n")
	for _, n := range l.Nodes {
		if !labels {
			fmt.Fprintf(buf, `    <circle class="node" id="node-%d" cx="%.2f" cy="%.2f" r="%.1f" fill="%s"/>`+"\n",
				n.Index, n.Position.X, n.Position.Y, NodeRadius, NodeColor)
			continue
		}
		fmt.Fprintf(buf, `    <circle class="node" id="node-%d" cx="%.2f" cy="%.2f" r="%.1f" fill="%s"><title>%s</title></circle>`+"\n",
			n.Index, n.Position.X, n.Position.Y, NodeRadius, NodeColor, escapeXML(n.Label))
	}
	buf.WriteString("  </g>\n")
}

func renderText(buf *bytes.Buffer, text string) {
	fmt.Fprintf(buf, `  <text class="frame-text" x="%.1f" y="%.1f" font-family="monospace" font-size="%.0f" dominant-baseline="hanging" xml:space="preserve">`,
		TextX, TextY, TextSize)
	for i, line := range strings.Split(text, "\n") {
		dy := "0"
		if i > 0 {
			dy = "1.2em"
		}
		fmt.Fprintf(buf, `<tspan x="%.1f" dy="%s">%s</tspan>`, TextX, dy, escapeXML(line))
	}
	buf.WriteString("</text>\n")
}

func escapeXML(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
