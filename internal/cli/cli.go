package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/polarcoaster/pkg/buildinfo"
	"github.com/matzehuels/polarcoaster/pkg/cache"
	"github.com/matzehuels/polarcoaster/pkg/config"
	"github.com/matzehuels/polarcoaster/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "polarcoaster"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// Global flags
	configPath string
	noCache    bool
	redisAddr  string

	// cfg is loaded before any subcommand runs.
	cfg config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		cfg:    config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Polarcoaster replays query traces as a roller coaster over their proof tree",
		Long: `Polarcoaster turns a query evaluation trace into its proof tree, lays the tree
out on a grid and runs a cart along the track in depth-first order. Traces can
be rendered to static drawings, played in the terminal or served over HTTP.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return c.loadConfig(cmd.Context())
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (TOML)")
	root.PersistentFlags().BoolVar(&c.noCache, "no-cache", false, "disable caching")
	root.PersistentFlags().StringVar(&c.redisAddr, "redis", "", "use a redis cache at this address")

	// Register all subcommands
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.visualizeCommand())
	root.AddCommand(c.playCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig reads --config (or the default config file, if present) and
// applies the global cache flags on top.
func (c *CLI) loadConfig(ctx context.Context) error {
	path := c.configPath
	if path == "" {
		if p, err := defaultConfigPath(); err == nil {
			if _, err := os.Stat(p); err == nil {
				path = p
			}
		}
	}

	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	if c.noCache {
		cfg.Cache.Disabled = true
	}
	if c.redisAddr != "" {
		cfg.Cache.Redis = c.redisAddr
	}
	c.cfg = cfg
	if path != "" {
		c.Logger.Debug("loaded config", "path", path)
	}
	return nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context) (*pipeline.Runner, error) {
	cache, err := c.newCache(ctx)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(cache, c.newKeyer(), c.Logger), nil
}

func (c *CLI) newKeyer() cache.Keyer {
	k := cache.NewDefaultKeyer()
	if scope := c.cfg.Cache.Scope; scope != "" {
		return cache.NewScopedKeyer(k, scope+":")
	}
	return k
}

// newCache picks the backend: none, redis or the file cache.
func (c *CLI) newCache(ctx context.Context) (cache.Cache, error) {
	cc := c.cfg.Cache
	if cc.Disabled {
		return cache.NewNullCache(), nil
	}
	if cc.Redis != "" {
		c.Logger.Debug("using redis cache", "addr", cc.Redis)
		return cache.NewRedisCache(ctx, cc.Redis)
	}
	dir := cc.Dir
	if dir == "" {
		d, err := cacheDir()
		if err != nil {
			return cache.NewNullCache(), nil
		}
		dir = d
	}
	return cache.NewFileCache(dir)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/polarcoaster/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// defaultConfigPath returns ~/.config/polarcoaster/config.toml (XDG aware).
func defaultConfigPath() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// =============================================================================
// Options Helpers
// =============================================================================

// baseOptions returns pipeline options seeded from the loaded config.
func (c *CLI) baseOptions() pipeline.Options {
	opts := c.cfg.PipelineOptions()
	opts.Logger = c.Logger
	return opts
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatSVG}
	}
	return strings.Split(s, ",")
}
