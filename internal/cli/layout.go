package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/polarcoaster/pkg/pipeline"
	"github.com/matzehuels/polarcoaster/pkg/scene"
)

// layoutCommand creates the layout command for computing a scene layout.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output string
		lf     layoutFlags
	)

	cmd := &cobra.Command{
		Use:   "layout [trace.json]",
		Short: "Compute the coaster layout of a trace",
		Long: `Compute the coaster layout of a trace.

The layout command reads a trace (JSON or YAML), reconstructs its proof tree,
places every node on the grid and builds the track. The output is a
layout.json file that the 'visualize' command renders and 'serve' can host.

Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.baseOptions()
			lf.apply(cmd, &opts)
			return c.runLayout(cmd.Context(), args[0], opts, output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.layout.json)")
	lf.register(cmd)

	return cmd
}

// runLayout loads the trace, builds the scene, and writes the layout.
func (c *CLI) runLayout(ctx context.Context, input string, opts pipeline.Options, output string) error {
	runner, err := c.newRunner(ctx)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	t, err := runner.LoadTrace(ctx, input)
	if err != nil {
		return fmt.Errorf("load trace %s: %w", input, err)
	}

	spinner := newSpinnerWithContext(ctx, "Computing layout...")
	spinner.Start()

	layout, cacheHit, err := runner.BuildWithCacheInfo(ctx, t, opts)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return fmt.Errorf("compute layout: %w", err)
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	outputPath := output
	if outputPath == "" {
		outputPath = layoutPath(input)
	}

	if err := scene.WriteLayoutFile(layout, outputPath); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	printSuccess("Layout complete")
	printFile(outputPath)
	printStats(layout.Len(), len(layout.CartPath), cacheHit)
	printNewline()
	printNextStep("Render", appName+" visualize "+outputPath)

	return nil
}

// layoutPath derives <input>.layout.json from a trace path.
func layoutPath(input string) string {
	return strings.TrimSuffix(input, filepath.Ext(input)) + ".layout.json"
}
