package sink

import (
	"github.com/matzehuels/polarcoaster/pkg/render"
	"github.com/matzehuels/polarcoaster/pkg/scene"
)

// RasterOption configures PDF and PNG rendering.
type RasterOption func(*rasterRenderer)

type rasterRenderer struct {
	svgOpts []SVGOption
	scale   float64
}

// WithSVGOptions passes options through to the underlying SVG renderer.
func WithSVGOptions(opts ...SVGOption) RasterOption {
	return func(r *rasterRenderer) { r.svgOpts = opts }
}

// WithScale sets the PNG scale factor (default 2.0 for 2x resolution).
// PDF output ignores it.
func WithScale(s float64) RasterOption {
	return func(r *rasterRenderer) { r.scale = s }
}

func newRasterRenderer(opts []RasterOption) rasterRenderer {
	r := rasterRenderer{scale: render.DefaultPNGScale}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

// RenderPDF renders the layout as PDF via SVG conversion.
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPDF(l scene.Layout, opts ...RasterOption) ([]byte, error) {
	r := newRasterRenderer(opts)
	return render.ToPDF(RenderSVG(l, r.svgOpts...))
}

// RenderPNG renders the layout as PNG via SVG conversion.
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPNG(l scene.Layout, opts ...RasterOption) ([]byte, error) {
	r := newRasterRenderer(opts)
	return render.ToPNG(RenderSVG(l, r.svgOpts...), r.scale)
}
