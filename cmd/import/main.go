// Package main loads dashboard metric exports into the MenuInzicht database.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/menuinzicht/backend/config"
	"github.com/menuinzicht/backend/internal/application/usecase/analytics"
	"github.com/menuinzicht/backend/internal/infra/db"
	"github.com/menuinzicht/backend/internal/integration/cache"
	"github.com/menuinzicht/backend/internal/integration/importer"
	"github.com/menuinzicht/backend/internal/integration/persistence"
)

var (
	rootCmd = &cobra.Command{
		Use:   "menuinzicht-import <file>",
		Short: "Import daily and intraday restaurant metrics from a JSON export",
		Long:  "Reads a JSON array of daily metrics (use - for stdin), upserts the days and replaces the intraday slots of every day that carries them.",
		Args:  cobra.ExactArgs(1),
		RunE:  run,
	}

	seedCatalog bool
	dryRun      bool
)

func main() {
	_ = godotenv.Load()

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	rootCmd.Flags().BoolVar(&seedCatalog, "seed-catalog", true, "seed the reference menu before importing")
	rootCmd.Flags().BoolVar(&dryRun, "dry-run", false, "validate the export without writing it")

	if err := rootCmd.Execute(); err != nil {
		slog.Error("Import failed", "error", err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	ds, err := decodeFile(args[0])
	if err != nil {
		return err
	}
	slog.Info("Export decoded", "days", len(ds.Days), "interval_days", len(ds.Intervals))
	if dryRun {
		return nil
	}

	cfg := config.Load()
	database, err := db.Open(&cfg.Database)
	if err != nil {
		return err
	}
	defer func() {
		if err := database.Close(); err != nil {
			slog.Error("Failed to close database connection", "error", err)
		}
	}()

	if err := database.Migrate(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	catalogRepo := persistence.NewCatalogRepository(database.DB())
	if seedCatalog {
		if err := catalogRepo.Seed(ctx, persistence.DefaultCatalog()); err != nil {
			return err
		}
	}

	intervalRepo := persistence.NewIntervalRepository(database.DB())

	// Drop the cached series of replaced days held by running API servers
	if cfg.Redis.URL != "" {
		client, err := db.NewRedisConnection(&cfg.Redis)
		if err != nil {
			slog.Warn("Redis connection failed, cached series expire on their own", "error", err)
		} else {
			defer client.Close()
			intervalCache := cache.NewRedisIntervalCache(client, cfg.Analytics.CacheTTL)
			intervalRepo.SetInvalidator(analytics.NewIntervalSeries(intervalRepo, intervalCache, cfg.Analytics.OpeningTime))
		}
	}

	imp := importer.New(
		persistence.NewDailyMetricRepository(database.DB()),
		intervalRepo,
		catalogRepo,
	)
	result, err := imp.Import(ctx, ds)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "imported %d days, %d with intraday data\n", result.Days, result.IntervalDays)
	return nil
}

func decodeFile(path string) (*importer.Dataset, error) {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open export: %w", err)
		}
		defer f.Close()
		r = f
	}
	return importer.Decode(r)
}
