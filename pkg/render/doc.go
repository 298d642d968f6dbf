// Package render provides visualization rendering for coaster scenes.
//
// # Overview
//
// Every renderer works from a [scene.Layout], the serialized form of a built
// scene, so a layout loaded from disk or from the cache renders exactly like
// one computed a moment ago. This package provides:
//
//   - Generic format conversion (SVG to PDF/PNG)
//   - The coaster drawing (in [sink] subpackage)
//   - Node-link diagrams of the reconstructed tree (in [nodelink] subpackage)
//
// # Format Conversion
//
// The [ToPDF] and [ToPNG] functions convert any SVG to other formats using
// the external rsvg-convert tool (from librsvg). These are used by both the
// coaster and node-link renderers.
//
//	svg := sink.RenderSVG(l, sink.WithCart(state))
//	pdf, err := render.ToPDF(svg)
//	png, err := render.ToPNG(svg, 2.0)  // 2x scale
//
// # Coaster Drawing
//
// The [sink] subpackage draws the track, the node markers and optionally
// the cart and its display text for one animation state.
//
// # Node-Link Diagrams
//
// The [nodelink] subpackage renders the reconstructed tree as a traditional
// directed graph using Graphviz. Siblings keep trace order and the nodes the
// cart travels between can be highlighted.
//
//	dot := nodelink.ToDOT(l, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(dot)
//
// [scene.Layout]: github.com/matzehuels/polarcoaster/pkg/scene.Layout
// [sink]: github.com/matzehuels/polarcoaster/pkg/render/sink
// [nodelink]: github.com/matzehuels/polarcoaster/pkg/render/nodelink
package render
