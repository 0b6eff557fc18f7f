package cli

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/dshills/sem-merge/internal/cache"
	"github.com/dshills/sem-merge/internal/config"
)

var flagMaxAge time.Duration

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the merge cache",
}

// openCache loads config for the cache directory only; no credentials are
// needed to inspect the cache.
func openCache() (*cache.Cache, config.Config, error) {
	cfg, err := config.Load(buildOverrides())
	if err != nil {
		return nil, config.Config{}, err
	}
	return cache.New(cfg.Cache.Dir), cfg, nil
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Forget every certified merge",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, _, err := openCache()
		if err != nil {
			return err
		}
		n := c.Len()
		c.Clear()
		fmt.Fprintf(cmd.OutOrStdout(), "Cache cleared (%s removed).\n", plural(n, "entry", "entries"))
		return nil
	},
}

var cacheShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show cache statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, _, err := openCache()
		if err != nil {
			return err
		}
		stats := c.GetStats()

		out := cmd.OutOrStdout()
		if stats.InMemory && stats.Path == "" {
			fmt.Fprintln(out, "Location: (in memory)")
		} else {
			fmt.Fprintf(out, "Location: %s\n", stats.Path)
		}
		fmt.Fprintf(out, "Entries:  %d (%d expired)\n", stats.Entries, stats.Expired)
		fmt.Fprintf(out, "Size:     %s\n", humanize.Bytes(uint64(stats.TotalBytes)))
		if !stats.Oldest.IsZero() {
			fmt.Fprintf(out, "Oldest:   %s\n", humanize.Time(stats.Oldest))
		}
		return nil
	},
}

var cachePruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Remove entries older than --max-age",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, cfg, err := openCache()
		if err != nil {
			return err
		}
		maxAge := flagMaxAge
		if maxAge <= 0 {
			maxAge = cfg.Cache.PruneAfter.Std()
		}
		n := c.EvictOlderThan(maxAge)
		fmt.Fprintf(cmd.OutOrStdout(), "Pruned %s older than %s.\n", plural(n, "entry", "entries"), maxAge)
		return nil
	},
}

func plural(n int, one, many string) string {
	if n == 1 {
		return "1 " + one
	}
	return humanize.Comma(int64(n)) + " " + many
}

func init() {
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheShowCmd)
	cacheCmd.AddCommand(cachePruneCmd)
	cachePruneCmd.Flags().DurationVar(&flagMaxAge, "max-age", 0, "Age limit (default: cache.pruneAfter, 168h)")
}
