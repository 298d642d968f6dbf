// Package sink provides output format renderers for coaster layouts.
//
// # Overview
//
// A "sink" transforms a [scene.Layout] into a final output format:
//
//   - SVG: the track, node markers, and optionally the cart and its text
//   - JSON: layout data export, optionally with a resolved frame
//   - PDF and PNG: via rsvg-convert
//
// # SVG Output
//
// [RenderSVG] draws one frame of the coaster. The track is drawn first, then
// a dark blue marker per node, then the red cart and finally the display
// text in the top-left corner:
//
//	svg := sink.RenderSVG(l,
//	    sink.WithCart(state),
//	    sink.WithText(),
//	    sink.WithLabels(),
//	)
//
// # SVG Options
//
//   - [WithCart]: Draw the cart at an animation state
//   - [WithPointer]: Resolve hover text for a pointer position
//   - [WithText]: Draw the frame's display text
//   - [WithBackground]: Fill the viewport before drawing
//   - [WithLabels]: Attach node text as hover tooltips
//
// # PDF and PNG Output
//
// [RenderPDF] and [RenderPNG] generate SVG first, then convert via
// [render.ToPDF] and [render.ToPNG]:
//
//	png, err := sink.RenderPNG(l, sink.WithScale(2), sink.WithSVGOptions(sink.WithCart(st)))
//
// These require librsvg to be installed:
//   - macOS: brew install librsvg
//   - Linux: apt install librsvg2-bin
//
// [scene.Layout]: github.com/matzehuels/polarcoaster/pkg/scene.Layout
// [render.ToPDF]: github.com/matzehuels/polarcoaster/pkg/render.ToPDF
// [render.ToPNG]: github.com/matzehuels/polarcoaster/pkg/render.ToPNG
package sink
