package cli

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/matzehuels/polarcoaster/internal/server"
	"github.com/matzehuels/polarcoaster/pkg/pipeline"
	"github.com/matzehuels/polarcoaster/pkg/session"
)

// serveCommand creates the serve command: one trace, many animation sessions.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		lf        layoutFlags
		addr      string
		noMetrics bool
	)

	cmd := &cobra.Command{
		Use:   "serve [trace.json]",
		Short: "Serve a trace's layout and animation sessions over HTTP",
		Long: `Serve a trace's layout and animation sessions over HTTP.

The trace is built once at startup. Each client creates a session and polls
its frames; sessions idle longer than the configured TTL are swept.

Routes:
  GET    /layout                   layout.json
  GET    /track.svg                static drawing (?at=, ?text, ?labels)
  GET    /tree.dot                 Graphviz source of the tree
  POST   /sessions                 start a ride
  GET    /sessions/{id}/frame      sample the ride (?x=&y= for hover)
  POST   /sessions/{id}/reset      back to the root
  DELETE /sessions/{id}            end the ride
  GET    /metrics                  Prometheus metrics`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.baseOptions()
			lf.apply(cmd, &opts)
			if cmd.Flags().Changed("addr") {
				c.cfg.Server.Addr = addr
			}
			return c.runServe(cmd.Context(), args[0], opts, !noMetrics)
		},
	}

	lf.register(cmd)
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, "+c.cfg.Server.Addr+")")
	cmd.Flags().BoolVar(&noMetrics, "no-metrics", false, "do not expose /metrics")

	return cmd
}

// runServe builds the layout and serves it until interrupted.
func (c *CLI) runServe(ctx context.Context, input string, opts pipeline.Options, metrics bool) error {
	logger := loggerFromContext(ctx)

	var gatherer prometheus.Gatherer
	if metrics {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		server.NewMetrics(reg).Install()
		gatherer = reg
	}

	runner, err := c.newRunner(ctx)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	prog := newProgress(logger)
	tr, err := runner.LoadTrace(ctx, input)
	if err != nil {
		return err
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return err
	}
	layout, cached, err := runner.BuildWithCacheInfo(ctx, tr, opts)
	if err != nil {
		return err
	}
	prog.done("built layout", "nodes", layout.Len(), "cached", cached)

	sc := c.cfg.Server
	srv, err := server.New(server.Config{
		Layout:   layout,
		Runner:   runner,
		Options:  opts,
		Store:    session.NewMemoryStore(sc.SessionTTL, sc.MaxSessions),
		Gatherer: gatherer,
		Logger:   logger,
	})
	if err != nil {
		return err
	}

	printSuccess("Serving %s", input)
	printStats(layout.Len(), len(layout.CartPath), cached)
	printKeyValue("Address", "http://"+sc.Addr)
	printKeyValue("Sessions", fmt.Sprintf("max %d, idle TTL %s", sc.MaxSessions, sc.SessionTTL))

	return srv.ListenAndServe(ctx, sc.Addr)
}
