// Package metrics computes the per-keyword daily rollups that the
// opportunity detector and the exports read.
package metrics

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"serp-market-lab/internal/domain"
	"serp-market-lab/internal/storage"
)

// Aggregator derives daily metric rows from stored snapshot results.
type Aggregator struct {
	snapshots storage.SnapshotStore
	metrics   storage.DailyMetricStore
	logger    *zap.Logger
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithLogger attaches a logger.
func WithLogger(logger *zap.Logger) Option {
	return func(a *Aggregator) { a.logger = logger }
}

// New creates an Aggregator over the given stores.
func New(snapshots storage.SnapshotStore, metrics storage.DailyMetricStore, opts ...Option) *Aggregator {
	a := &Aggregator{
		snapshots: snapshots,
		metrics:   metrics,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// ComputeForDate builds and upserts the metric row for one keyword and
// one calendar day from every result captured that day. A day with no
// captures produces no row and returns nil.
//
// The price median ignores results without a price, as does the rating
// average. Sponsored and organic counts partition the full result set,
// so they always sum to total_products. New entrants are today's ASINs
// not seen on the immediately preceding calendar day; a gap day before
// today makes every ASIN count as new, which keeps the comparison
// anchored to the calendar rather than to the last capture.
func (a *Aggregator) ComputeForDate(ctx context.Context, keywordID int64, day time.Time) (*domain.DailyMetric, error) {
	day = domain.Day(day)

	results, err := a.snapshots.GetResultsByKeywordDate(ctx, keywordID, day)
	if err != nil {
		return nil, fmt.Errorf("load results for keyword %d: %w", keywordID, err)
	}
	if len(results) == 0 {
		a.logger.Debug("no captures for day",
			zap.Int64("keyword_id", keywordID),
			zap.Time("day", day))
		return nil, nil
	}

	var (
		prices    []float64
		ratings   []float64
		sponsored int
	)
	today := make(map[string]struct{})
	for _, res := range results {
		if res.Price != nil {
			prices = append(prices, *res.Price)
		}
		if res.Rating != nil {
			ratings = append(ratings, *res.Rating)
		}
		if res.IsSponsored {
			sponsored++
		}
		today[res.ASIN] = struct{}{}
	}

	previous, err := a.snapshots.GetASINsByKeywordDate(ctx, keywordID, day.AddDate(0, 0, -1))
	if err != nil {
		return nil, fmt.Errorf("load previous-day asins for keyword %d: %w", keywordID, err)
	}
	seen := make(map[string]struct{}, len(previous))
	for _, asin := range previous {
		seen[asin] = struct{}{}
	}
	newEntrants := 0
	for asin := range today {
		if _, ok := seen[asin]; !ok {
			newEntrants++
		}
	}

	metric := &domain.DailyMetric{
		KeywordID:      keywordID,
		Date:           day,
		MedianPrice:    Median(prices),
		AvgRating:      Mean(ratings),
		TotalProducts:  len(results),
		SponsoredCount: sponsored,
		OrganicCount:   len(results) - sponsored,
		NewEntrants:    newEntrants,
	}

	if err := a.metrics.Upsert(ctx, metric); err != nil {
		return nil, fmt.Errorf("upsert metric for keyword %d: %w", keywordID, err)
	}

	a.logger.Debug("daily metric computed",
		zap.Int64("keyword_id", keywordID),
		zap.Time("day", day),
		zap.Int("total_products", metric.TotalProducts),
		zap.Int("new_entrants", metric.NewEntrants))
	return metric, nil
}
