// Package nodelink renders the reconstructed tree as a node-link diagram.
//
// # Overview
//
// Where the coaster drawing places nodes on the layout grid and runs a cart
// over them, this package hands the same tree to Graphviz and lets it place
// the nodes. It is useful for reading long traces whose labels would
// overlap on the coaster.
//
// # Usage
//
// Convert a layout to DOT format, then render to SVG:
//
//	dot := nodelink.ToDOT(l, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(dot)
//
// For PDF or PNG output:
//
//	pdf, err := nodelink.RenderPDF(dot)
//	png, err := nodelink.RenderPNG(dot, 2.0)  // 2x scale
//
// # Options
//
//   - Detailed: prefix labels with index, depth and event kind
//   - Cart: highlight the two nodes the cart is between
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering. PDF and PNG conversion requires librsvg (rsvg-convert).
package nodelink
