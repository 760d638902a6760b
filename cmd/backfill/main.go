// Command backfill loads grouped daily bars for every weekday in a date range.
//
//	backfill --start 2024-01-02 [--end 2024-03-28]
//
// Each day is fetched and committed on its own; a failing day is logged and
// skipped. --end defaults to the last market date whose close has passed.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/epeers/portfolio-tracker/config"
	"github.com/epeers/portfolio-tracker/internal/database"
	"github.com/epeers/portfolio-tracker/internal/ingest"
	"github.com/epeers/portfolio-tracker/internal/polygon"
	"github.com/epeers/portfolio-tracker/internal/repository"
	"github.com/epeers/portfolio-tracker/internal/services"
	"github.com/epeers/portfolio-tracker/internal/util"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

type backfillOptions struct {
	start, end time.Time
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newBackfillCmd().ExecuteContext(ctx); err != nil {
		log.Errorf("backfill failed: %v", err)
		stop()
		os.Exit(1)
	}
}

func newBackfillCmd() *cobra.Command {
	var opts backfillOptions
	var start, end string

	cmd := &cobra.Command{
		Use:           "backfill",
		Short:         "Load grouped daily bars for every weekday in a date range",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBackfill(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&start, "start", "", "First date to load, YYYY-MM-DD (required)")
	cmd.Flags().StringVar(&end, "end", "", "Last date to load, YYYY-MM-DD (default: last closed market date)")
	_ = cmd.MarkFlagRequired("start")

	cmd.PreRunE = func(cmd *cobra.Command, args []string) error {
		if start == "" {
			// reported by the required-flag check
			return nil
		}
		var err error
		if opts.start, err = time.Parse(ingest.DateLayout, start); err != nil {
			return fmt.Errorf("invalid --start %q: %w", start, err)
		}
		opts.end = util.LastClosedMarketDate(time.Now())
		if end != "" {
			if opts.end, err = time.Parse(ingest.DateLayout, end); err != nil {
				return fmt.Errorf("invalid --end %q: %w", end, err)
			}
		}
		if opts.end.Before(opts.start) {
			return fmt.Errorf("--end %s is before --start %s", opts.end.Format(ingest.DateLayout), start)
		}
		return nil
	}

	return cmd
}

func runBackfill(ctx context.Context, opts backfillOptions) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	log.SetLevel(cfg.LogLevel)
	if cfg.PolygonAPIKey == "" {
		return fmt.Errorf("POLYGON_API_KEY environment variable is required")
	}

	if cfg.MigrateOnStart {
		if err := database.Migrate(cfg.PGURL); err != nil {
			return fmt.Errorf("failed to migrate database: %w", err)
		}
	}
	db, err := database.New(ctx, cfg.PGURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	marketSvc := services.NewMarketService(polygon.NewClient(cfg.PolygonAPIKey), repository.NewBarsRepository(db.Pool))
	result, err := marketSvc.Backfill(ctx, opts.start, opts.end)
	if result != nil {
		log.Infof("done: %d days, %d rows ok, %d rows bad, %d days failed",
			len(result.Days), result.TotalOK, result.TotalBad, result.FailedDays)
	}
	return err
}
