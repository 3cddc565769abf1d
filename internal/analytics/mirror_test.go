package analytics

import (
	"context"
	"testing"
	"time"

	"serp-market-lab/internal/domain"
	"serp-market-lab/internal/storage/memory"
)

func TestSync_CopiesRowsPastCutoff(t *testing.T) {
	ctx := context.Background()
	source := memory.NewStores()
	dest := memory.NewStores()
	day := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 4; i++ {
		e := &domain.PriceHistory{
			ASIN: "B001", Date: day.AddDate(0, 0, i), Price: 10 + float64(i), Currency: "USD",
		}
		if err := source.PriceHistory.Insert(ctx, e); err != nil {
			t.Fatalf("seed price history: %v", err)
		}
		m := &domain.DailyMetric{KeywordID: 1, Date: day.AddDate(0, 0, i), TotalProducts: i + 1}
		if err := source.DailyMetrics.Upsert(ctx, m); err != nil {
			t.Fatalf("seed daily metric: %v", err)
		}
	}

	mirror := New(Options{
		SourcePrices:  source.PriceHistory,
		SourceMetrics: source.DailyMetrics,
		DestPrices:    dest.PriceHistory,
		DestMetrics:   dest.DailyMetrics,
	})

	result, err := mirror.Sync(ctx, day.AddDate(0, 0, 2))
	if err != nil {
		t.Fatalf("Sync failed: %v", err)
	}
	if result.PricePoints != 2 || result.DailyMetrics != 2 {
		t.Errorf("unexpected sync counts: %+v", result)
	}

	entries, err := dest.PriceHistory.GetByASIN(ctx, "B001")
	if err != nil {
		t.Fatalf("GetByASIN failed: %v", err)
	}
	if len(entries) != 2 {
		t.Errorf("expected 2 mirrored price points, got %d", len(entries))
	}
}

func TestSync_RerunDoesNotDuplicateMetrics(t *testing.T) {
	ctx := context.Background()
	source := memory.NewStores()
	dest := memory.NewStores()
	day := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	m := &domain.DailyMetric{KeywordID: 1, Date: day, TotalProducts: 5}
	if err := source.DailyMetrics.Upsert(ctx, m); err != nil {
		t.Fatalf("seed daily metric: %v", err)
	}

	mirror := New(Options{
		SourcePrices:  source.PriceHistory,
		SourceMetrics: source.DailyMetrics,
		DestPrices:    dest.PriceHistory,
		DestMetrics:   dest.DailyMetrics,
	})

	for i := 0; i < 2; i++ {
		if _, err := mirror.Sync(ctx, day.AddDate(0, 0, -1)); err != nil {
			t.Fatalf("sync %d failed: %v", i, err)
		}
	}

	rows, err := dest.DailyMetrics.GetSince(ctx, day.AddDate(0, 0, -7))
	if err != nil {
		t.Fatalf("GetSince failed: %v", err)
	}
	if len(rows) != 1 {
		t.Errorf("expected 1 metric row after rerun, got %d", len(rows))
	}
}
