// Package main scans for opportunities and writes the BI datasets,
// optionally mirroring analytics rows into ClickHouse.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"serp-market-lab/internal/analytics"
	"serp-market-lab/internal/config"
	"serp-market-lab/internal/opportunity"
	"serp-market-lab/internal/reporting"
	"serp-market-lab/internal/storage"
	chstore "serp-market-lab/internal/storage/clickhouse"
	"serp-market-lab/internal/storage/migrations"
	pgstore "serp-market-lab/internal/storage/postgres"
)

func main() {
	outputDir := flag.String("output-dir", "", "Output directory for generated files (default: EXPORT_PATH env)")
	windowDays := flag.Int("window-days", 7, "Opportunity detection window in days")
	mirrorAnalytics := flag.Bool("mirror-analytics", false, "Copy price history and daily metrics into ClickHouse")
	flag.Parse()

	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}
	if err := cfg.ValidateStorage(); err != nil {
		logger.Fatal("invalid config", zap.Error(err))
	}
	if *outputDir == "" {
		*outputDir = cfg.ExportPath
	}
	if *mirrorAnalytics && cfg.ClickhouseDSN == "" {
		logger.Fatal("CLICKHOUSE_URL is required with -mirror-analytics")
	}

	ctx := context.Background()
	pool, err := pgstore.NewPool(ctx, cfg.PostgresDSN)
	if err != nil {
		logger.Fatal("connect to postgres", zap.Error(err))
	}
	defer pool.Close()
	stores := pgstore.NewStores(pool)

	detector := opportunity.New(stores.Keywords, stores.DailyMetrics,
		opportunity.WithLogger(logger))
	opportunities, err := detector.Detect(ctx, *windowDays)
	if err != nil {
		logger.Fatal("detect opportunities", zap.Error(err))
	}

	keywords, err := stores.Keywords.ListActive(ctx)
	if err != nil {
		logger.Fatal("list keywords", zap.Error(err))
	}

	exporter := reporting.NewExporter(reporting.ExporterOptions{
		Stores:     stores,
		ExportPath: *outputDir,
		Logger:     logger,
	})
	result, err := exporter.ExportAll(ctx, cfg.LookbackDays)
	if err != nil {
		logger.Fatal("export datasets", zap.Error(err))
	}
	report := &reporting.Report{
		GeneratedAt:   time.Now().UTC(),
		WindowDays:    *windowDays,
		KeywordCount:  len(keywords),
		Opportunities: opportunities,
	}
	if err := exporter.WriteOpportunityReport(report); err != nil {
		logger.Fatal("write opportunity report", zap.Error(err))
	}

	if *mirrorAnalytics {
		if err := mirrorToClickhouse(ctx, cfg, stores, logger); err != nil {
			logger.Fatal("mirror analytics", zap.Error(err))
		}
	}

	fmt.Printf("Report generated in %s:\n", *outputDir)
	fmt.Printf("  keywords.csv           (%d rows)\n", result.Keywords)
	fmt.Printf("  products.csv           (%d rows)\n", result.Products)
	fmt.Printf("  price_trends.csv       (%d rows)\n", result.PricePoints)
	fmt.Printf("  daily_aggregates.csv   (%d rows)\n", result.DailyAggregates)
	fmt.Printf("  opportunities.csv / opportunities.md (%d opportunities)\n", len(opportunities))
}

func mirrorToClickhouse(ctx context.Context, cfg *config.Config, stores *storage.Stores, logger *zap.Logger) error {
	conn, err := chstore.NewConn(ctx, cfg.ClickhouseDSN)
	if err != nil {
		return fmt.Errorf("connect to clickhouse: %w", err)
	}
	defer conn.Close()
	if err := migrations.RunClickhouse(ctx, conn); err != nil {
		return fmt.Errorf("apply clickhouse migrations: %w", err)
	}

	mirror := analytics.New(analytics.Options{
		SourcePrices:  stores.PriceHistory,
		SourceMetrics: stores.DailyMetrics,
		DestPrices:    chstore.NewPriceHistoryStore(conn),
		DestMetrics:   chstore.NewDailyMetricStore(conn),
		Logger:        logger,
	})
	cutoff := time.Now().UTC().AddDate(0, 0, -cfg.LookbackDays)
	synced, err := mirror.Sync(ctx, cutoff)
	if err != nil {
		return err
	}
	fmt.Printf("Mirrored to ClickHouse: %d price points, %d daily metrics\n",
		synced.PricePoints, synced.DailyMetrics)
	return nil
}
