// Package ingestion drives captured search snapshots into storage: one
// snapshot plus its reconciled product updates land in a single
// transaction, or not at all.
package ingestion

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"serp-market-lab/internal/domain"
	"serp-market-lab/internal/idhash"
	"serp-market-lab/internal/reconcile"
	"serp-market-lab/internal/storage"
)

// Capture is one collected search page: a keyword's results at a
// moment in time.
type Capture struct {
	Keyword     string
	Marketplace string
	CaptureTime time.Time
	Results     []*domain.SearchResult
}

// Options for creating a Runner.
type Options struct {
	TxRunner storage.TxRunner
	Clock    func() time.Time
	Logger   *zap.Logger
}

// Runner persists captures.
type Runner struct {
	tx     storage.TxRunner
	now    func() time.Time
	logger *zap.Logger
}

// New creates a Runner.
func New(opts Options) *Runner {
	r := &Runner{
		tx:     opts.TxRunner,
		now:    opts.Clock,
		logger: opts.Logger,
	}
	if r.now == nil {
		r.now = time.Now
	}
	if r.logger == nil {
		r.logger = zap.NewNop()
	}
	return r
}

// Result summarizes one ingested capture.
type Result struct {
	SnapshotID      string
	Duplicate       bool
	ResultsStored   int
	ProductsCreated int
	ProductsUpdated int
	PricePoints     int
	RecordsSkipped  int
}

// BatchResult accumulates Results across a run.
type BatchResult struct {
	SnapshotsStored int
	Duplicates      int
	ResultsStored   int
	ProductsCreated int
	ProductsUpdated int
	RecordsSkipped  int
	Errors          []string
}

// IngestSnapshot persists one capture inside a single transaction. The
// snapshot id is derived from (keyword, marketplace, capture time), so
// replaying the same capture is detected as a duplicate and becomes a
// no-op rather than a double ingest. The keyword is created on first
// sight; records without an ASIN are dropped and counted, never fatal.
func (r *Runner) IngestSnapshot(ctx context.Context, capture *Capture) (*Result, error) {
	if capture == nil || capture.Keyword == "" {
		return nil, fmt.Errorf("ingest snapshot: %w", storage.ErrInvalidInput)
	}

	marketplace := capture.Marketplace
	if marketplace == "" {
		marketplace = "US"
	}
	captureTime := capture.CaptureTime
	if captureTime.IsZero() {
		captureTime = r.now().UTC()
	}

	res := &Result{}
	err := r.tx.RunInTx(ctx, func(ctx context.Context, stores *storage.Stores) error {
		keyword, err := r.ensureKeyword(ctx, stores.Keywords, capture.Keyword, marketplace)
		if err != nil {
			return err
		}

		snap := &domain.Snapshot{
			SnapshotID:  idhash.ComputeSnapshotID(keyword.ID, marketplace, captureTime),
			KeywordID:   keyword.ID,
			Marketplace: marketplace,
			CaptureTime: captureTime.UTC(),
		}
		res.SnapshotID = snap.SnapshotID

		var valid []*domain.SearchResult
		for _, record := range capture.Results {
			if record == nil || record.ASIN == "" {
				res.RecordsSkipped++
				continue
			}
			valid = append(valid, record)
			snap.Results = append(snap.Results, &domain.Result{
				SnapshotID:  snap.SnapshotID,
				ASIN:        record.ASIN,
				Position:    record.Position,
				IsSponsored: record.IsSponsored,
				Title:       record.Title,
				Price:       record.Price,
				Currency:    record.Currency,
				Rating:      record.Rating,
				ReviewCount: record.ReviewCount,
				ImageURL:    record.ImageURL,
			})
		}
		snap.TotalResults = len(snap.Results)

		err = stores.Snapshots.Insert(ctx, snap)
		if errors.Is(err, storage.ErrDuplicateKey) {
			res.Duplicate = true
			r.logger.Info("snapshot already ingested",
				zap.String("snapshot_id", snap.SnapshotID),
				zap.String("keyword", capture.Keyword))
			return nil
		}
		if err != nil {
			return fmt.Errorf("insert snapshot %s: %w", snap.SnapshotID, err)
		}
		res.ResultsStored = len(snap.Results)

		reconciler := reconcile.New(stores.Products, stores.PriceHistory,
			reconcile.WithClock(r.now), reconcile.WithLogger(r.logger))
		for _, record := range valid {
			_, created, err := reconciler.Reconcile(ctx, record)
			if err != nil {
				return fmt.Errorf("reconcile %s: %w", record.ASIN, err)
			}
			if created {
				res.ProductsCreated++
			} else {
				res.ProductsUpdated++
			}
			if record.Price != nil {
				res.PricePoints++
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !res.Duplicate {
		r.logger.Info("snapshot ingested",
			zap.String("snapshot_id", res.SnapshotID),
			zap.String("keyword", capture.Keyword),
			zap.Int("results", res.ResultsStored),
			zap.Int("created", res.ProductsCreated),
			zap.Int("skipped", res.RecordsSkipped))
	}
	return res, nil
}

// IngestAll persists captures one transaction each. A capture that
// fails is recorded and does not stop the rest of the batch.
func (r *Runner) IngestAll(ctx context.Context, captures []*Capture) (*BatchResult, error) {
	batch := &BatchResult{}
	for _, capture := range captures {
		res, err := r.IngestSnapshot(ctx, capture)
		if err != nil {
			batch.Errors = append(batch.Errors, fmt.Sprintf("%s: %v", capture.Keyword, err))
			r.logger.Error("capture failed",
				zap.String("keyword", capture.Keyword),
				zap.Error(err))
			continue
		}
		if res.Duplicate {
			batch.Duplicates++
			continue
		}
		batch.SnapshotsStored++
		batch.ResultsStored += res.ResultsStored
		batch.ProductsCreated += res.ProductsCreated
		batch.ProductsUpdated += res.ProductsUpdated
		batch.RecordsSkipped += res.RecordsSkipped
	}
	return batch, nil
}

func (r *Runner) ensureKeyword(ctx context.Context, keywords storage.KeywordStore, text, marketplace string) (*domain.Keyword, error) {
	keyword, err := keywords.GetByText(ctx, text, marketplace)
	if err == nil {
		return keyword, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("get keyword %q: %w", text, err)
	}

	keyword = &domain.Keyword{
		Text:        text,
		Marketplace: marketplace,
		IsActive:    true,
		CreatedAt:   r.now().UTC(),
	}
	if err := keywords.Insert(ctx, keyword); err != nil {
		return nil, fmt.Errorf("insert keyword %q: %w", text, err)
	}
	r.logger.Info("keyword onboarded",
		zap.String("keyword", text),
		zap.String("marketplace", marketplace))
	return keyword, nil
}
