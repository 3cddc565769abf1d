package memory

import (
	"context"
	"testing"
	"time"

	"serp-market-lab/internal/domain"
)

func TestDailyMetricStore_UpsertReplaces(t *testing.T) {
	ctx := context.Background()
	store := NewDailyMetricStore()
	day := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	first := &domain.DailyMetric{
		KeywordID:      7,
		Date:           day,
		TotalProducts:  10,
		SponsoredCount: 4,
		OrganicCount:   6,
	}
	if err := store.Upsert(ctx, first); err != nil {
		t.Fatalf("first Upsert failed: %v", err)
	}

	second := &domain.DailyMetric{
		KeywordID:      7,
		Date:           day.Add(13 * time.Hour), // same calendar day
		TotalProducts:  12,
		SponsoredCount: 5,
		OrganicCount:   7,
	}
	if err := store.Upsert(ctx, second); err != nil {
		t.Fatalf("second Upsert failed: %v", err)
	}

	got, err := store.GetByKeywordDate(ctx, 7, day)
	if err != nil {
		t.Fatalf("GetByKeywordDate failed: %v", err)
	}
	if got.TotalProducts != 12 {
		t.Errorf("expected replacement row with 12 products, got %d", got.TotalProducts)
	}

	all, err := store.GetSince(ctx, day)
	if err != nil {
		t.Fatalf("GetSince failed: %v", err)
	}
	if len(all) != 1 {
		t.Errorf("expected exactly 1 row after recomputation, got %d", len(all))
	}
}

func TestDailyMetricStore_GetSinceCutoff(t *testing.T) {
	ctx := context.Background()
	store := NewDailyMetricStore()
	day := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		m := &domain.DailyMetric{KeywordID: 7, Date: day.AddDate(0, 0, i), TotalProducts: i}
		if err := store.Upsert(ctx, m); err != nil {
			t.Fatalf("Upsert failed: %v", err)
		}
	}

	rows, err := store.GetSince(ctx, day.AddDate(0, 0, 3))
	if err != nil {
		t.Fatalf("GetSince failed: %v", err)
	}
	if len(rows) != 2 {
		t.Errorf("expected 2 rows at or after cutoff, got %d", len(rows))
	}
}
