package ingestion

import (
	"context"
	"testing"
	"time"

	"serp-market-lab/internal/domain"
	"serp-market-lab/internal/storage"
	"serp-market-lab/internal/storage/memory"
)

func floatPtr(f float64) *float64 { return &f }

func newRunner(stores *storage.Stores, at time.Time) *Runner {
	return New(Options{
		TxRunner: memory.NewTxRunner(stores),
		Clock:    func() time.Time { return at },
	})
}

func makeCapture(keyword string, at time.Time, asins ...string) *Capture {
	c := &Capture{Keyword: keyword, Marketplace: "US", CaptureTime: at}
	for i, asin := range asins {
		c.Results = append(c.Results, &domain.SearchResult{
			ASIN:     asin,
			Position: i + 1,
			Price:    floatPtr(9.99 + float64(i)),
		})
	}
	return c
}

func TestIngestSnapshot_PersistsEverything(t *testing.T) {
	ctx := context.Background()
	stores := memory.NewStores()
	at := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	runner := newRunner(stores, at)

	res, err := runner.IngestSnapshot(ctx, makeCapture("walnut desk organizer", at, "B001", "B002", "B003"))
	if err != nil {
		t.Fatalf("IngestSnapshot failed: %v", err)
	}
	if res.ResultsStored != 3 || res.ProductsCreated != 3 || res.PricePoints != 3 {
		t.Errorf("unexpected counts: %+v", res)
	}

	keyword, err := stores.Keywords.GetByText(ctx, "walnut desk organizer", "US")
	if err != nil {
		t.Fatalf("keyword not onboarded: %v", err)
	}
	if !keyword.IsActive {
		t.Error("expected onboarded keyword to be active")
	}

	snap, err := stores.Snapshots.GetByID(ctx, res.SnapshotID)
	if err != nil {
		t.Fatalf("snapshot not stored: %v", err)
	}
	if snap.TotalResults != 3 {
		t.Errorf("total_results = %d, want 3", snap.TotalResults)
	}

	if _, err := stores.Products.GetByASIN(ctx, "B002"); err != nil {
		t.Errorf("product not reconciled: %v", err)
	}
}

func TestIngestSnapshot_ReplayIsNoOp(t *testing.T) {
	ctx := context.Background()
	stores := memory.NewStores()
	at := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	runner := newRunner(stores, at)

	capture := makeCapture("bamboo tray", at, "B001")
	if _, err := runner.IngestSnapshot(ctx, capture); err != nil {
		t.Fatalf("first ingest failed: %v", err)
	}

	res, err := runner.IngestSnapshot(ctx, capture)
	if err != nil {
		t.Fatalf("replay failed: %v", err)
	}
	if !res.Duplicate {
		t.Error("expected replay to be flagged duplicate")
	}
	if res.ProductsCreated != 0 {
		t.Error("expected replay to create nothing")
	}

	// The price history must not have grown either.
	entries, err := stores.PriceHistory.GetByASIN(ctx, "B001")
	if err != nil {
		t.Fatalf("GetByASIN failed: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("expected 1 price point after replay, got %d", len(entries))
	}
}

func TestIngestSnapshot_SkipsRecordsWithoutASIN(t *testing.T) {
	ctx := context.Background()
	stores := memory.NewStores()
	at := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	runner := newRunner(stores, at)

	capture := makeCapture("cork coaster", at, "B001")
	capture.Results = append(capture.Results, &domain.SearchResult{Position: 2})

	res, err := runner.IngestSnapshot(ctx, capture)
	if err != nil {
		t.Fatalf("IngestSnapshot failed: %v", err)
	}
	if res.RecordsSkipped != 1 {
		t.Errorf("records_skipped = %d, want 1", res.RecordsSkipped)
	}
	if res.ResultsStored != 1 {
		t.Errorf("results_stored = %d, want 1", res.ResultsStored)
	}
}

func TestIngestAll_ContinuesPastFailures(t *testing.T) {
	ctx := context.Background()
	stores := memory.NewStores()
	at := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	runner := newRunner(stores, at)

	captures := []*Capture{
		makeCapture("good keyword", at, "B001"),
		{Keyword: "", CaptureTime: at}, // invalid, must not stop the batch
		makeCapture("another keyword", at, "B002"),
	}

	batch, err := runner.IngestAll(ctx, captures)
	if err != nil {
		t.Fatalf("IngestAll failed: %v", err)
	}
	if batch.SnapshotsStored != 2 {
		t.Errorf("snapshots_stored = %d, want 2", batch.SnapshotsStored)
	}
	if len(batch.Errors) != 1 {
		t.Errorf("expected 1 recorded error, got %d", len(batch.Errors))
	}
}
