package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"hardsub/internal/ocrcache"
	"hardsub/internal/services"
)

func newCacheCommand(ctx *commandContext) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and maintain the recognition cache",
	}
	cacheCmd.AddCommand(newCacheStatsCommand(ctx))
	cacheCmd.AddCommand(newCacheClearCommand(ctx))
	cacheCmd.AddCommand(newCachePruneCommand(ctx))
	return cacheCmd
}

func withCache(ctx *commandContext, fn func(*ocrcache.Store) error) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	store, err := ocrcache.Open(cfg.CachePath())
	if err != nil {
		return services.Wrap(services.ErrIO, "cache", "open", cfg.CachePath(), err)
	}
	defer store.Close()
	return fn(store)
}

func newCacheStatsCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show recognition cache statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCache(ctx, func(store *ocrcache.Store) error {
				stats, err := store.Stats(cmd.Context())
				if err != nil {
					return err
				}
				if jsonOut {
					return writeJSON(cmd, stats)
				}
				rows := [][]string{
					{"Path", stats.Path},
					{"Entries", humanize.Comma(stats.Entries)},
					{"Hits", humanize.Comma(stats.Hits)},
					{"Size", humanize.IBytes(uint64(max(stats.SizeBytes, 0)))},
					{"Oldest", timeLabel(stats.Oldest)},
					{"Newest", timeLabel(stats.Newest)},
				}
				printTable(cmd.OutOrStdout(), []string{"Field", "Value"}, rows, nil)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print statistics as JSON")
	return cmd
}

func newCacheClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every cached recognition",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCache(ctx, func(store *ocrcache.Store) error {
				removed, err := store.Clear(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %s cached recognitions\n", humanize.Comma(removed))
				return nil
			})
		},
	}
}

func newCachePruneCommand(ctx *commandContext) *cobra.Command {
	var olderThan string
	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Remove cached recognitions not used recently",
		RunE: func(cmd *cobra.Command, args []string) error {
			age, err := parseAge(olderThan)
			if err != nil {
				return err
			}
			cutoff := time.Now().Add(-age)
			return withCache(ctx, func(store *ocrcache.Store) error {
				removed, err := store.Prune(cmd.Context(), cutoff)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %s recognitions unused since %s\n",
					humanize.Comma(removed), cutoff.Format(time.DateTime))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&olderThan, "older-than", "30d", "Age threshold (Go duration, or a day count like 30d)")
	return cmd
}

// parseAge accepts Go durations plus a "<n>d" day shorthand.
func parseAge(value string) (time.Duration, error) {
	value = strings.TrimSpace(value)
	if days, ok := strings.CutSuffix(value, "d"); ok {
		if n, err := strconv.Atoi(days); err == nil && n >= 0 {
			return time.Duration(n) * 24 * time.Hour, nil
		}
	}
	d, err := time.ParseDuration(value)
	if err != nil || d < 0 {
		return 0, services.Wrap(services.ErrInvalidParameter, "cache", "prune", fmt.Sprintf("invalid age %q", value), nil)
	}
	return d, nil
}

func timeLabel(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return fmt.Sprintf("%s (%s)", t.Local().Format(time.DateTime), humanize.Time(t))
}
