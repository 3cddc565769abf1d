// Package main captures search snapshots from the Canopy API and
// ingests them into PostgreSQL.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"serp-market-lab/internal/canopy"
	"serp-market-lab/internal/config"
	"serp-market-lab/internal/ingestion"
	"serp-market-lab/internal/observability"
	"serp-market-lab/internal/storage/migrations"
	pgstore "serp-market-lab/internal/storage/postgres"
)

func main() {
	keywordsFlag := flag.String("keywords", "", "Comma-separated keywords to capture (default: active keywords in the database)")
	marketplace := flag.String("marketplace", "", "Marketplace code (default: MARKETPLACE env or US)")
	metricsAddr := flag.String("metrics-addr", "", "Prometheus metrics HTTP address (empty: disabled)")
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
	if err := cfg.ValidateCollector(); err != nil {
		logger.Fatal("invalid config", zap.Error(err))
	}
	if err := cfg.ValidateStorage(); err != nil {
		logger.Fatal("invalid config", zap.Error(err))
	}
	if *marketplace == "" {
		*marketplace = cfg.Marketplace
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("shutting down", zap.Stringer("signal", sig))
		cancel()
	}()

	if *metricsAddr != "" {
		go func() {
			if err := http.ListenAndServe(*metricsAddr, observability.Handler()); err != nil {
				logger.Error("metrics server stopped", zap.Error(err))
			}
		}()
	}

	pool, err := pgstore.NewPool(ctx, cfg.PostgresDSN)
	if err != nil {
		logger.Fatal("connect to postgres", zap.Error(err))
	}
	defer pool.Close()
	if err := migrations.RunPostgres(ctx, pool); err != nil {
		logger.Fatal("apply migrations", zap.Error(err))
	}

	keywords, err := resolveKeywords(ctx, pool, *keywordsFlag)
	if err != nil {
		logger.Fatal("resolve keywords", zap.Error(err))
	}
	if len(keywords) == 0 {
		logger.Fatal("no keywords to capture; pass -keywords or activate some in the database")
	}

	clientOpts := []canopy.Option{canopy.WithLogger(logger)}
	if cfg.CanopyBaseURL != "" {
		clientOpts = append(clientOpts, canopy.WithBaseURL(cfg.CanopyBaseURL))
	}
	client := canopy.NewClient(cfg.CanopyAPIKey, clientOpts...)

	start := time.Now()
	captures := client.CaptureSnapshots(ctx, keywords, *marketplace)

	runner := ingestion.New(ingestion.Options{
		TxRunner: pgstore.NewTxRunner(pool),
		Logger:   logger,
	})
	batch, err := runner.IngestAll(ctx, captures)
	if err != nil {
		observability.RecordPipelineRun("ingest", "error", time.Since(start).Seconds())
		logger.Fatal("ingest batch", zap.Error(err))
	}
	for i := 0; i < batch.SnapshotsStored; i++ {
		observability.RecordSnapshotIngested()
	}
	observability.RecordPipelineRun("ingest", "ok", time.Since(start).Seconds())

	fmt.Printf("Ingestion completed:\n")
	fmt.Printf("  Keywords captured: %d of %d\n", len(captures), len(keywords))
	fmt.Printf("  Snapshots stored:  %d (duplicates: %d)\n", batch.SnapshotsStored, batch.Duplicates)
	fmt.Printf("  Results stored:    %d\n", batch.ResultsStored)
	fmt.Printf("  Products created:  %d, updated: %d\n", batch.ProductsCreated, batch.ProductsUpdated)
	fmt.Printf("  Records skipped:   %d\n", batch.RecordsSkipped)
	if len(batch.Errors) > 0 {
		fmt.Printf("  Errors: %d\n", len(batch.Errors))
		for _, e := range batch.Errors {
			fmt.Printf("    - %s\n", e)
		}
		os.Exit(1)
	}
}

// resolveKeywords prefers the -keywords flag, falling back to the
// active keywords already tracked in storage.
func resolveKeywords(ctx context.Context, pool *pgstore.Pool, flagValue string) ([]string, error) {
	if flagValue != "" {
		var keywords []string
		for _, k := range strings.Split(flagValue, ",") {
			if k = strings.TrimSpace(k); k != "" {
				keywords = append(keywords, k)
			}
		}
		return keywords, nil
	}

	stores := pgstore.NewStores(pool)
	active, err := stores.Keywords.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("list active keywords: %w", err)
	}
	keywords := make([]string, 0, len(active))
	for _, k := range active {
		keywords = append(keywords, k.Text)
	}
	return keywords, nil
}
