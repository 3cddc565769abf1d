// Package main runs the full pipeline over fixture captures on memory
// stores: ingestion → reconciliation → daily metrics → opportunity
// detection → export. Deterministic, no network or database needed.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"serp-market-lab/internal/domain"
	"serp-market-lab/internal/ingestion"
	"serp-market-lab/internal/orchestrator"
	"serp-market-lab/internal/reporting"
	"serp-market-lab/internal/storage/memory"
)

// fixedTime anchors the run so repeated invocations produce identical
// output.
var fixedTime = time.Date(2025, 6, 8, 12, 0, 0, 0, time.UTC)

func main() {
	outputDir := flag.String("output-dir", "docs", "Output directory for generated files")
	windowDays := flag.Int("window-days", 7, "Opportunity detection window in days")
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		fmt.Printf("\nReceived signal %v, cancelling pipeline...\n", sig)
		cancel()
	}()

	stores := memory.NewStores()
	clock := func() time.Time { return fixedTime }

	fmt.Println("=== Ingestion ===")
	runner := ingestion.New(ingestion.Options{
		TxRunner: memory.NewTxRunner(stores),
		Clock:    clock,
	})
	batch, err := runner.IngestAll(ctx, fixtureCaptures())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Ingestion error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("  Snapshots: %d, results: %d, products created: %d\n",
		batch.SnapshotsStored, batch.ResultsStored, batch.ProductsCreated)

	fmt.Println("\n=== Metrics & Detection ===")
	orch := orchestrator.New(orchestrator.Options{
		TxRunner:   memory.NewTxRunner(stores),
		Stores:     stores,
		DaysBack:   *windowDays,
		WindowDays: *windowDays,
		Clock:      clock,
	})
	result, err := orch.Run(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Orchestrator error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("  Keywords: %d, metrics: %d, opportunities: %d\n",
		result.KeywordsProcessed, result.MetricsComputed, result.OpportunitiesFound)
	for _, opp := range result.Opportunities {
		fmt.Printf("    [%s] %s (%s): %s\n", opp.Priority, opp.Keyword, opp.Type, opp.Reason)
	}

	fmt.Println("\n=== Export ===")
	exporter := reporting.NewExporter(reporting.ExporterOptions{
		Stores:     stores,
		ExportPath: *outputDir,
		Clock:      clock,
	})
	exported, err := exporter.ExportAll(ctx, *windowDays)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Export error: %v\n", err)
		os.Exit(1)
	}
	report := &reporting.Report{
		GeneratedAt:   fixedTime,
		WindowDays:    *windowDays,
		KeywordCount:  result.KeywordsProcessed,
		Opportunities: result.Opportunities,
	}
	if err := exporter.WriteOpportunityReport(report); err != nil {
		fmt.Fprintf(os.Stderr, "Report error: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("\nPipeline completed successfully:")
	fmt.Printf("  - %s/keywords.csv (%d rows)\n", *outputDir, exported.Keywords)
	fmt.Printf("  - %s/products.csv (%d rows)\n", *outputDir, exported.Products)
	fmt.Printf("  - %s/price_trends.csv (%d rows)\n", *outputDir, exported.PricePoints)
	fmt.Printf("  - %s/daily_aggregates.csv (%d rows)\n", *outputDir, exported.DailyAggregates)
	fmt.Printf("  - %s/opportunities.md\n", *outputDir)
}

// fixtureCaptures builds three days of captures for two keywords: a
// sparse low-priced market that should trip the detector, and a
// saturated one that should not.
func fixtureCaptures() []*ingestion.Capture {
	var captures []*ingestion.Capture

	for day := 0; day < 3; day++ {
		at := fixedTime.AddDate(0, 0, day-2)

		sparse := &ingestion.Capture{
			Keyword:     "walnut desk organizer",
			Marketplace: "US",
			CaptureTime: at,
		}
		for i := 0; i < 4+day; i++ {
			sparse.Results = append(sparse.Results, fixtureResult("B00SPARSE", i, day, 14.99))
		}
		captures = append(captures, sparse)

		saturated := &ingestion.Capture{
			Keyword:     "phone case",
			Marketplace: "US",
			CaptureTime: at,
		}
		for i := 0; i < 40; i++ {
			saturated.Results = append(saturated.Results, fixtureResult("B00CROWD", i, 0, 9.99))
		}
		captures = append(captures, saturated)
	}
	return captures
}

func fixtureResult(prefix string, position, day int, basePrice float64) *domain.SearchResult {
	asin := fmt.Sprintf("%s%02d", prefix, position+day)
	title := fmt.Sprintf("Listing %s", asin)
	price := basePrice + float64(position)
	rating := 3.5 + float64(position%3)*0.5
	reviews := 40 + position*7
	return &domain.SearchResult{
		ASIN:        asin,
		Title:       &title,
		Price:       &price,
		Rating:      &rating,
		ReviewCount: &reviews,
		Position:    position + 1,
		IsSponsored: position%5 == 0,
	}
}
