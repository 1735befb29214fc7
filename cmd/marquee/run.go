package main

import (
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"marquee/internal/pipeline"
	"marquee/internal/runlog"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Scrape the listing and publish the artifacts",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			runner := pipeline.New(cfg, ctx.logger(cmd))
			result, err := runner.Run(runCtx, dryRun)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch result.Status {
			case runlog.StatusUnchanged:
				fmt.Fprintf(out, "Listing unchanged (%d films, %d showtimes); nothing published.\n",
					result.FilmCount, result.ShowtimeCount)
			case runlog.StatusDryRun:
				fmt.Fprintf(out, "Dry run: %d films, %d showtimes, fingerprint %s (changed: %s).\n",
					result.FilmCount, result.ShowtimeCount, shortFingerprint(result.Fingerprint), yesNo(result.Changed))
			default:
				fmt.Fprintf(out, "Published %d films with %d showtimes to %s in %s.\n",
					result.FilmCount, result.ShowtimeCount, cfg.Output.Dir,
					result.Duration.Round(time.Millisecond))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Run the pipeline without writing artifacts")
	return cmd
}

func shortFingerprint(fp string) string {
	if len(fp) > 12 {
		return fp[:12]
	}
	return fp
}
