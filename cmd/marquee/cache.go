package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"marquee/internal/logging"
)

func newCacheCommand(ctx *commandContext) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and maintain the metadata cache",
	}

	cacheCmd.AddCommand(newCacheListCommand(ctx))
	cacheCmd.AddCommand(newCachePruneCommand(ctx))
	cacheCmd.AddCommand(newCacheClearCommand(ctx))

	return cacheCmd
}

func newCacheListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List cached metadata entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			cache, err := ctx.openCache(logging.NewNop())
			if err != nil {
				return err
			}

			entries := cache.List()
			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, "Cache is empty.")
				return nil
			}

			rows := make([][]string, 0, len(entries))
			for _, entry := range entries {
				title := entry.MatchedTitle
				if entry.Empty() {
					title = "(no match)"
				}
				tmdbID := ""
				if entry.TMDBID != 0 {
					tmdbID = strconv.FormatInt(entry.TMDBID, 10)
				}
				rows = append(rows, []string{
					entry.Key,
					title,
					entry.Year,
					tmdbID,
					entry.CachedAt.Format("2006-01-02"),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Key", "Matched Title", "Year", "TMDB ID", "Cached"},
				rows, []int{3}))
			return nil
		},
	}
}

func newCachePruneCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "prune",
		Short: "Remove expired cache entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			cache, err := ctx.openCache(ctx.logger(cmd))
			if err != nil {
				return err
			}
			removed, err := cache.Prune()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Pruned %d expired entries (%d remain).\n",
				removed, cache.Count())
			return nil
		},
	}
}

func newCacheClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every cache entry",
		RunE: func(cmd *cobra.Command, args []string) error {
			cache, err := ctx.openCache(ctx.logger(cmd))
			if err != nil {
				return err
			}
			if err := cache.Clear(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Cache cleared.")
			return nil
		},
	}
}
