package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/polarcoaster/pkg/pipeline"
)

// renderFlags are the drawing settings shared by render and visualize.
type renderFlags struct {
	formats    string
	vizType    string
	output     string
	at         time.Duration
	text       bool
	labels     bool
	detailed   bool
	background string
	scale      float64
}

func (f *renderFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&f.formats, "format", "f", "", "output format(s): svg (default), png, pdf, json, dot (comma-separated)")
	cmd.Flags().StringVarP(&f.vizType, "type", "t", pipeline.DefaultVizType, "visualization type: coaster, nodelink")
	cmd.Flags().DurationVar(&f.at, "at", 0, "draw the cart as it is this long into the ride (e.g. 4.5s)")
	cmd.Flags().BoolVar(&f.text, "text", false, "draw the current node's text (coaster)")
	cmd.Flags().BoolVar(&f.labels, "labels", false, "attach node text as hover tooltips (coaster svg)")
	cmd.Flags().BoolVar(&f.detailed, "detailed", false, "show index, depth and kind in node labels (nodelink)")
	cmd.Flags().StringVar(&f.background, "background", "", "background color (coaster)")
	cmd.Flags().Float64Var(&f.scale, "scale", 0, "PNG scale factor (default 2)")
}

func (f *renderFlags) apply(cmd *cobra.Command, opts *pipeline.Options) error {
	opts.Formats = parseFormats(f.formats)
	if err := pipeline.ValidateFormats(opts.Formats); err != nil {
		return err
	}
	if err := pipeline.ValidateVizType(f.vizType); err != nil {
		return err
	}
	opts.VizType = f.vizType
	opts.ShowCart = cmd.Flags().Changed("at")
	opts.At = f.at
	opts.Text = f.text
	opts.Labels = f.labels
	opts.Detailed = f.detailed
	opts.Background = f.background
	opts.Scale = f.scale
	return nil
}

// renderCommand creates the render command: trace in, drawings out.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		lf layoutFlags
		rf renderFlags
	)

	cmd := &cobra.Command{
		Use:   "render [trace.json]",
		Short: "Render a trace to SVG, PNG, PDF, JSON or DOT",
		Long: `Render a trace to SVG, PNG, PDF, JSON or DOT.

This is a shortcut for 'layout' followed by 'visualize'. Use --at to draw the
cart at a moment of the ride, and -t nodelink for a Graphviz drawing of the
proof tree.

PNG and PDF output require rsvg-convert (librsvg).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.baseOptions()
			lf.apply(cmd, &opts)
			if err := rf.apply(cmd, &opts); err != nil {
				return err
			}
			return c.runRender(cmd.Context(), args[0], opts, rf.output)
		},
	}

	lf.register(cmd)
	rf.register(cmd)

	return cmd
}

// runRender executes the full pipeline and writes each artifact.
func (c *CLI) runRender(ctx context.Context, input string, opts pipeline.Options, output string) error {
	runner, err := c.newRunner(ctx)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Rendering %s...", opts.VizType))
	spinner.Start()

	result, err := runner.Execute(ctx, input, opts)
	if err != nil {
		spinner.StopWithError("Render failed")
		return err
	}
	spinner.Stop()

	return writeArtifacts(artifactWriteParams{
		artifacts: result.Artifacts,
		formats:   opts.Formats,
		input:     input,
		output:    output,
		nodes:     result.Stats.NodeCount,
		hops:      result.Stats.PathLength,
		cacheHit:  result.CacheInfo.BuildHit && result.CacheInfo.RenderHit,
	})
}

// =============================================================================
// Artifact Output
// =============================================================================

type artifactWriteParams struct {
	artifacts map[string][]byte
	formats   []string
	input     string
	output    string
	nodes     int
	hops      int
	cacheHit  bool
}

// writeArtifacts writes each rendered format to disk and prints a summary.
func writeArtifacts(p artifactWriteParams) error {
	paths := artifactPaths(p.formats, p.input, p.output)
	for _, format := range p.formats {
		data, ok := p.artifacts[format]
		if !ok {
			return fmt.Errorf("renderer produced no %s output", format)
		}
		if err := os.WriteFile(paths[format], data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", paths[format], err)
		}
	}

	printSuccess("Rendered %s", strings.Join(p.formats, ", "))
	for _, format := range p.formats {
		printFile(paths[format])
	}
	printStats(p.nodes, p.hops, p.cacheHit)
	return nil
}

// artifactPaths maps each format to its output path. A single format writes
// to output verbatim; several formats share output's base name.
func artifactPaths(formats []string, input, output string) map[string]string {
	paths := make(map[string]string, len(formats))
	if len(formats) == 1 && output != "" {
		paths[formats[0]] = output
		return paths
	}
	base := basePath(output, input)
	for _, f := range formats {
		paths[f] = base + "." + f
	}
	return paths
}

// basePath derives the base output path from the output and input file paths.
// If output is empty, it strips the extension from input (and a trailing
// ".layout" left by the layout command). If output has a format extension
// (.svg, .pdf, etc.), it strips that extension.
func basePath(output, input string) string {
	if output == "" {
		base := strings.TrimSuffix(input, filepath.Ext(input))
		return strings.TrimSuffix(base, ".layout")
	}
	ext := filepath.Ext(output)
	if slices.Contains(pipeline.Formats, strings.TrimPrefix(ext, ".")) {
		return strings.TrimSuffix(output, ext)
	}
	return output
}
