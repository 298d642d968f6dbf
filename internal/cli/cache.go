package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/polarcoaster/pkg/cache"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the layout and render cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Clear all cached layouts and artifacts",
		RunE: func(cmd *cobra.Command, args []string) error {
			if c.cfg.Cache.Disabled {
				printInfo("Cache is disabled")
				return nil
			}

			store, err := c.newCache(cmd.Context())
			if err != nil {
				return fmt.Errorf("open cache: %w", err)
			}
			defer store.Close()

			clearer, ok := store.(cache.Clearer)
			if !ok {
				printWarning("This cache backend cannot be cleared")
				return nil
			}

			count, err := clearer.Clear(cmd.Context())
			if err != nil {
				return fmt.Errorf("clear cache: %w", err)
			}

			printSuccess("Cleared %d cached entries", count)
			printDetail("Location: %s", c.cacheLocation())
			return nil
		},
	}
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache location",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println(c.cacheLocation())
			return nil
		},
	}
}

// cacheLocation describes where the configured cache lives: a redis URL or a
// directory.
func (c *CLI) cacheLocation() string {
	cc := c.cfg.Cache
	if cc.Redis != "" {
		return "redis://" + cc.Redis
	}
	if cc.Dir != "" {
		return cc.Dir
	}
	dir, err := cacheDir()
	if err != nil {
		return ""
	}
	return dir
}
