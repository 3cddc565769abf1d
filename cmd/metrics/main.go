// Package main computes daily metrics and scans for opportunities
// across all active keywords.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"serp-market-lab/internal/config"
	"serp-market-lab/internal/observability"
	"serp-market-lab/internal/orchestrator"
	"serp-market-lab/internal/storage/migrations"
	pgstore "serp-market-lab/internal/storage/postgres"
)

func main() {
	daysBack := flag.Int("days-back", 1, "Trailing calendar days of metrics to (re)compute, today included")
	windowDays := flag.Int("window-days", 7, "Opportunity detection window in days")
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

	ctx := context.Background()
	pool, err := pgstore.NewPool(ctx, cfg.PostgresDSN)
	if err != nil {
		logger.Fatal("connect to postgres", zap.Error(err))
	}
	defer pool.Close()
	if err := migrations.RunPostgres(ctx, pool); err != nil {
		logger.Fatal("apply migrations", zap.Error(err))
	}

	orch := orchestrator.New(orchestrator.Options{
		TxRunner:   pgstore.NewTxRunner(pool),
		Stores:     pgstore.NewStores(pool),
		DaysBack:   *daysBack,
		WindowDays: *windowDays,
		Logger:     logger,
	})

	start := time.Now()
	result, err := orch.Run(ctx)
	if err != nil {
		observability.RecordPipelineRun("metrics", "error", time.Since(start).Seconds())
		logger.Fatal("metrics run", zap.Error(err))
	}
	observability.RecordPipelineRun("metrics", "ok", time.Since(start).Seconds())
	for _, opp := range result.Opportunities {
		observability.RecordOpportunity(string(opp.Type))
	}

	fmt.Printf("Metrics run completed:\n")
	fmt.Printf("  Keywords processed:  %d\n", result.KeywordsProcessed)
	fmt.Printf("  Metrics computed:    %d\n", result.MetricsComputed)
	fmt.Printf("  Opportunities found: %d\n", result.OpportunitiesFound)
	for _, opp := range result.Opportunities {
		fmt.Printf("    [%s] %s (%s): %s\n", opp.Priority, opp.Keyword, opp.Type, opp.Reason)
	}
}
