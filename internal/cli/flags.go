package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/polarcoaster/pkg/pipeline"
)

// layoutFlags are the layout settings every trace command accepts. They
// override the config only when given.
type layoutFlags struct {
	width, height  float64
	timePerSegment time.Duration
	color          string
}

func (f *layoutFlags) register(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&f.width, "width", pipeline.DefaultWidth, "viewport width")
	cmd.Flags().Float64Var(&f.height, "height", pipeline.DefaultHeight, "viewport height")
	cmd.Flags().DurationVar(&f.timePerSegment, "speed", 0, "time the cart takes per track segment (e.g. 800ms)")
	cmd.Flags().StringVar(&f.color, "color", "", "track color")
}

func (f *layoutFlags) apply(cmd *cobra.Command, opts *pipeline.Options) {
	flags := cmd.Flags()
	if flags.Changed("width") {
		opts.Width = f.width
	}
	if flags.Changed("height") {
		opts.Height = f.height
	}
	if flags.Changed("speed") {
		opts.TimePerSegment = f.timePerSegment
	}
	if flags.Changed("color") {
		opts.Color = f.color
	}
}
