// Command betajob computes rolling betas of the portfolio against VOO and QQQ.
//
//	betajob --mode update     # newest day without metrics only
//	betajob --mode backfill   # recompute every day
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/epeers/portfolio-tracker/config"
	"github.com/epeers/portfolio-tracker/internal/database"
	"github.com/epeers/portfolio-tracker/internal/models"
	"github.com/epeers/portfolio-tracker/internal/repository"
	"github.com/epeers/portfolio-tracker/internal/services"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newBetaJobCmd().ExecuteContext(ctx); err != nil {
		log.Errorf("betajob failed: %v", err)
		stop()
		os.Exit(1)
	}
}

func newBetaJobCmd() *cobra.Command {
	var mode string

	cmd := &cobra.Command{
		Use:           "betajob",
		Short:         "Compute rolling betas against VOO and QQQ",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if mode != services.MetricsModeUpdate && mode != services.MetricsModeBackfill {
				return fmt.Errorf("unknown --mode %q (expected %s or %s)", mode, services.MetricsModeUpdate, services.MetricsModeBackfill)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBetaJob(cmd.Context(), mode)
		},
	}

	cmd.Flags().StringVar(&mode, "mode", services.MetricsModeUpdate, "update (newest day without metrics) or backfill (every day)")
	return cmd
}

func runBetaJob(ctx context.Context, mode string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	log.SetLevel(cfg.LogLevel)

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

	betaSvc := services.NewBetaService(
		repository.NewPerformanceRepository(db.Pool),
		repository.NewMetricsRepository(db.Pool),
	)

	ctx, wc := services.NewWarningContext(ctx)
	var result *models.MetricsRunResult
	if mode == services.MetricsModeBackfill {
		result, err = betaSvc.BackfillAll(ctx)
	} else {
		result, err = betaSvc.UpdateLatestMissing(ctx)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", mode, err)
	}
	log.Infof("%s: status=%s day=%s written=%d bad=%d warnings=%d",
		result.Mode, result.Status, result.Day, result.Written, result.Bad, len(wc.GetWarnings()))
	return nil
}
