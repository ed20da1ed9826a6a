package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/memkeep/memkeep/pkg/logger"
	"github.com/memkeep/memkeep/pkg/maintenance"
)

func newRunCmd() *cobra.Command {
	var (
		date   string
		dryRun bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the sleep-mode maintenance pipeline",
		Long: `Runs one maintenance pass: discovers unprocessed daily logs, analyzes
each day through the oracle, promotes durable facts into the memory
store, writes digests, and advances the watermark.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			log := logger.Global()

			sched, closeStore, err := buildScheduler(cfg, log, buildMetrics(cfg))
			if err != nil {
				return err
			}
			if closeStore != nil {
				defer closeStore()
			}

			ctx, cancel := signalContext()
			defer cancel()

			report, err := sched.Run(ctx, maintenance.RunOptions{Date: date, DryRun: dryRun})
			if err != nil {
				return err
			}
			printReport(report)
			if report.Failed() > 0 {
				return fmt.Errorf("%d day(s) failed", report.Failed())
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "process a single date (YYYY-MM-DD) instead of discovering")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "list candidate dates without processing")
	return cmd
}

const timeRound = 10 * time.Millisecond

func printReport(r *maintenance.RunReport) {
	if r.DryRun {
		if len(r.Candidates) == 0 {
			fmt.Println("Nothing to process.")
			return
		}
		fmt.Printf("Would process %d day(s):\n", len(r.Candidates))
		for _, d := range r.Candidates {
			fmt.Printf("  %s\n", d)
		}
		return
	}

	for _, d := range r.Days {
		switch {
		case d.Err != nil:
			fmt.Printf("%s  FAILED: %v\n", d.Date, d.Err)
		case d.Skipped:
			fmt.Printf("%s  skipped (no usable entries)\n", d.Date)
		default:
			fmt.Printf("%s  entries=%d chunks=%d added=%d updated=%d (%s)\n",
				d.Date, d.Entries, d.Chunks, d.Added, d.Updated, d.Duration.Round(timeRound))
		}
	}
	fmt.Printf("Processed %d day(s), %d failed.\n", r.Processed(), r.Failed())
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
