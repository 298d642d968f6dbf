package pipeline

import (
	"fmt"

	"github.com/matzehuels/polarcoaster/pkg/errors"
	"github.com/matzehuels/polarcoaster/pkg/render/nodelink"
	"github.com/matzehuels/polarcoaster/pkg/render/sink"
	"github.com/matzehuels/polarcoaster/pkg/scene"
)

// Render generates output artifacts in the requested formats.
func Render(l scene.Layout, opts Options) (map[string][]byte, error) {
	if opts.IsNodelink() {
		return renderNodelink(l, opts)
	}
	return renderCoaster(l, opts)
}

// renderNodelink generates Graphviz outputs of the reconstructed tree.
func renderNodelink(l scene.Layout, opts Options) (map[string][]byte, error) {
	dot := nodelink.ToDOT(l, nodelink.Options{
		Detailed: opts.Detailed,
		Cart:     opts.CartState(l),
	})

	artifacts := make(map[string][]byte)

	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case FormatSVG:
			data, err = nodelink.RenderSVG(dot)
		case FormatPNG:
			data, err = nodelink.RenderPNG(dot, opts.Scale)
		case FormatPDF:
			data, err = nodelink.RenderPDF(dot)
		case FormatDOT:
			data = []byte(dot)
		case FormatJSON:
			data, err = scene.MarshalLayout(l)
		default:
			return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported nodelink format: %s", format)
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}

	return artifacts, nil
}

// renderCoaster generates coaster drawings.
func renderCoaster(l scene.Layout, opts Options) (map[string][]byte, error) {
	svgOpts := buildSVGOptions(l, opts)
	artifacts := make(map[string][]byte)

	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case FormatSVG:
			data = sink.RenderSVG(l, svgOpts...)
		case FormatPNG:
			data, err = sink.RenderPNG(l, sink.WithSVGOptions(svgOpts...), sink.WithScale(opts.Scale))
		case FormatPDF:
			data, err = sink.RenderPDF(l, sink.WithSVGOptions(svgOpts...))
		case FormatJSON:
			var jsonOpts []sink.JSONOption
			if st := opts.CartState(l); st != nil {
				jsonOpts = append(jsonOpts, sink.WithJSONFrame(*st))
			}
			data, err = sink.RenderJSON(l, jsonOpts...)
		case FormatDOT:
			data = []byte(nodelink.ToDOT(l, nodelink.Options{Detailed: opts.Detailed, Cart: opts.CartState(l)}))
		default:
			return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported coaster format: %s", format)
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}

	return artifacts, nil
}

// buildSVGOptions builds SVG rendering options.
func buildSVGOptions(l scene.Layout, opts Options) []sink.SVGOption {
	var svgOpts []sink.SVGOption

	if st := opts.CartState(l); st != nil {
		svgOpts = append(svgOpts, sink.WithCart(*st))
	}
	if opts.Text {
		svgOpts = append(svgOpts, sink.WithText())
	}
	if opts.Labels {
		svgOpts = append(svgOpts, sink.WithLabels())
	}
	if opts.Background != "" {
		svgOpts = append(svgOpts, sink.WithBackground(opts.Background))
	}

	return svgOpts
}
