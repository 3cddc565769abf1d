package metrics

import (
	"context"
	"fmt"
	"testing"
	"time"

	"serp-market-lab/internal/domain"
	"serp-market-lab/internal/storage/memory"
)

func floatPtr(f float64) *float64 { return &f }

func insertDay(t *testing.T, store *memory.SnapshotStore, keywordID int64, at time.Time, results []*domain.Result) {
	t.Helper()
	id := fmt.Sprintf("snap-%d-%d", keywordID, at.Unix())
	snap := &domain.Snapshot{
		SnapshotID:   id,
		KeywordID:    keywordID,
		Marketplace:  "US",
		CaptureTime:  at,
		TotalResults: len(results),
	}
	for i, res := range results {
		res.SnapshotID = id
		res.Position = i + 1
		snap.Results = append(snap.Results, res)
	}
	if err := store.Insert(context.Background(), snap); err != nil {
		t.Fatalf("insert snapshot: %v", err)
	}
}

func result(asin string, price *float64, sponsored bool) *domain.Result {
	return &domain.Result{ASIN: asin, Price: price, IsSponsored: sponsored}
}

func TestComputeForDate_FirstDay(t *testing.T) {
	ctx := context.Background()
	snapshots := memory.NewSnapshotStore()
	metrics := memory.NewDailyMetricStore()
	day := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

	insertDay(t, snapshots, 1, day, []*domain.Result{
		result("B001", floatPtr(19.99), true),
		result("B002", floatPtr(24.99), true),
		result("B003", floatPtr(14.99), false),
		result("B004", floatPtr(29.99), false),
		result("B005", floatPtr(9.99), false),
	})

	agg := New(snapshots, metrics)
	m, err := agg.ComputeForDate(ctx, 1, day)
	if err != nil {
		t.Fatalf("ComputeForDate failed: %v", err)
	}

	if m.TotalProducts != 5 {
		t.Errorf("total_products = %d, want 5", m.TotalProducts)
	}
	if m.MedianPrice == nil || *m.MedianPrice != 19.99 {
		t.Errorf("median_price = %v, want 19.99", m.MedianPrice)
	}
	if m.SponsoredCount != 2 || m.OrganicCount != 3 {
		t.Errorf("sponsored/organic = %d/%d, want 2/3", m.SponsoredCount, m.OrganicCount)
	}
	if m.SponsoredCount+m.OrganicCount != m.TotalProducts {
		t.Error("sponsored and organic must partition the result set")
	}
	// No previous day at all, so everything is a new entrant.
	if m.NewEntrants != 5 {
		t.Errorf("new_entrants = %d, want 5", m.NewEntrants)
	}

	if _, err := metrics.GetByKeywordDate(ctx, 1, day); err != nil {
		t.Errorf("expected persisted metric row, got %v", err)
	}
}

func TestComputeForDate_NewEntrantsAgainstPreviousDay(t *testing.T) {
	ctx := context.Background()
	snapshots := memory.NewSnapshotStore()
	metrics := memory.NewDailyMetricStore()
	day1 := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	day2 := day1.AddDate(0, 0, 1)

	insertDay(t, snapshots, 1, day1, []*domain.Result{
		result("B001", nil, false),
		result("B002", nil, false),
		result("B003", nil, false),
		result("B004", nil, false),
		result("B005", nil, false),
	})
	insertDay(t, snapshots, 1, day2, []*domain.Result{
		result("B001", nil, false),
		result("B002", nil, false),
		result("B003", nil, false),
		result("B004", nil, false),
		result("B006", nil, false),
		result("B007", nil, false),
	})

	agg := New(snapshots, metrics)
	m, err := agg.ComputeForDate(ctx, 1, day2)
	if err != nil {
		t.Fatalf("ComputeForDate failed: %v", err)
	}
	if m.NewEntrants != 2 {
		t.Errorf("new_entrants = %d, want 2", m.NewEntrants)
	}
	// All prices were absent, so the median is null rather than zero.
	if m.MedianPrice != nil {
		t.Errorf("median_price = %v, want nil", *m.MedianPrice)
	}
}

func TestComputeForDate_GapDayCountsAllAsNew(t *testing.T) {
	ctx := context.Background()
	snapshots := memory.NewSnapshotStore()
	metrics := memory.NewDailyMetricStore()
	day1 := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	day3 := day1.AddDate(0, 0, 2)

	insertDay(t, snapshots, 1, day1, []*domain.Result{result("B001", nil, false)})
	insertDay(t, snapshots, 1, day3, []*domain.Result{result("B001", nil, false)})

	agg := New(snapshots, metrics)
	m, err := agg.ComputeForDate(ctx, 1, day3)
	if err != nil {
		t.Fatalf("ComputeForDate failed: %v", err)
	}
	// The comparison is strictly against the preceding calendar day,
	// which is empty here.
	if m.NewEntrants != 1 {
		t.Errorf("new_entrants = %d, want 1", m.NewEntrants)
	}
}

func TestComputeForDate_EmptyDayProducesNoRow(t *testing.T) {
	ctx := context.Background()
	snapshots := memory.NewSnapshotStore()
	metrics := memory.NewDailyMetricStore()
	day := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	agg := New(snapshots, metrics)
	m, err := agg.ComputeForDate(ctx, 1, day)
	if err != nil {
		t.Fatalf("ComputeForDate failed: %v", err)
	}
	if m != nil {
		t.Errorf("expected nil metric for empty day, got %+v", m)
	}
	if _, err := metrics.GetByKeywordDate(ctx, 1, day); err == nil {
		t.Error("expected no persisted row for empty day")
	}
}

func TestComputeForDate_RecomputeReplaces(t *testing.T) {
	ctx := context.Background()
	snapshots := memory.NewSnapshotStore()
	metrics := memory.NewDailyMetricStore()
	day := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

	insertDay(t, snapshots, 1, day, []*domain.Result{result("B001", floatPtr(10), false)})

	agg := New(snapshots, metrics)
	if _, err := agg.ComputeForDate(ctx, 1, day); err != nil {
		t.Fatalf("first compute failed: %v", err)
	}

	insertDay(t, snapshots, 1, day.Add(6*time.Hour), []*domain.Result{result("B002", floatPtr(20), true)})
	if _, err := agg.ComputeForDate(ctx, 1, day); err != nil {
		t.Fatalf("second compute failed: %v", err)
	}

	rows, err := metrics.GetSince(ctx, day.AddDate(0, 0, -1))
	if err != nil {
		t.Fatalf("GetSince failed: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row after recomputation, got %d", len(rows))
	}
	if rows[0].TotalProducts != 2 {
		t.Errorf("total_products = %d, want 2 after recompute", rows[0].TotalProducts)
	}
}
