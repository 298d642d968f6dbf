package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/polarcoaster/pkg/pipeline"
	"github.com/matzehuels/polarcoaster/pkg/scene"
)

// visualizeCommand creates the visualize command for rendering from a layout.
func (c *CLI) visualizeCommand() *cobra.Command {
	var rf renderFlags

	cmd := &cobra.Command{
		Use:   "visualize [layout.json]",
		Short: "Render drawings from a computed layout",
		Long: `Render drawings from a computed layout.

The visualize command takes a layout.json file (produced by 'layout') and
renders it. The layout contains all positioning information, so this step is
purely about drawing.

Results are cached locally for faster subsequent runs.

Use 'render' as a shortcut to go directly from a trace to drawings.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.baseOptions()
			if err := rf.apply(cmd, &opts); err != nil {
				return err
			}
			return c.runVisualize(cmd.Context(), args[0], opts, rf.output)
		},
	}

	rf.register(cmd)

	return cmd
}

// runVisualize loads the layout and renders it.
func (c *CLI) runVisualize(ctx context.Context, input string, opts pipeline.Options, output string) error {
	layout, err := scene.ReadLayoutFile(input)
	if err != nil {
		return fmt.Errorf("load layout %s: %w", input, err)
	}

	runner, err := c.newRunner(ctx)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Rendering %s...", opts.VizType))
	spinner.Start()

	artifacts, cacheHit, err := runner.RenderWithCacheInfo(ctx, layout, opts)
	if err != nil {
		spinner.StopWithError("Visualization failed")
		return fmt.Errorf("visualize: %w", err)
	}
	spinner.Stop()

	return writeArtifacts(artifactWriteParams{
		artifacts: artifacts,
		formats:   opts.Formats,
		input:     input,
		output:    output,
		nodes:     layout.Len(),
		hops:      len(layout.CartPath),
		cacheHit:  cacheHit,
	})
}
