// Package analytics copies the relational facts into the columnar
// store. The mirror runs after the batch, off the transactional path;
// the destination tables absorb re-delivered rows, so the job can be
// rerun from any cutoff.
package analytics

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"serp-market-lab/internal/storage"
)

// Mirror syncs price history and daily metrics between two backends.
type Mirror struct {
	sourcePrices  storage.PriceHistoryStore
	sourceMetrics storage.DailyMetricStore
	destPrices    storage.PriceHistoryStore
	destMetrics   storage.DailyMetricStore
	logger        *zap.Logger
}

// Options for creating a Mirror.
type Options struct {
	SourcePrices  storage.PriceHistoryStore
	SourceMetrics storage.DailyMetricStore
	DestPrices    storage.PriceHistoryStore
	DestMetrics   storage.DailyMetricStore
	Logger        *zap.Logger
}

// New creates a Mirror.
func New(opts Options) *Mirror {
	m := &Mirror{
		sourcePrices:  opts.SourcePrices,
		sourceMetrics: opts.SourceMetrics,
		destPrices:    opts.DestPrices,
		destMetrics:   opts.DestMetrics,
		logger:        opts.Logger,
	}
	if m.logger == nil {
		m.logger = zap.NewNop()
	}
	return m
}

// SyncResult counts the rows delivered in one sync.
type SyncResult struct {
	PricePoints  int
	DailyMetrics int
}

// Sync copies every price point and metric row dated on or after
// cutoff. Price points travel as one bulk insert; metric rows go
// through the destination's upsert.
func (m *Mirror) Sync(ctx context.Context, cutoff time.Time) (*SyncResult, error) {
	result := &SyncResult{}

	prices, err := m.sourcePrices.GetSince(ctx, cutoff)
	if err != nil {
		return nil, fmt.Errorf("load price history since cutoff: %w", err)
	}
	if err := m.destPrices.InsertBulk(ctx, prices); err != nil {
		return nil, fmt.Errorf("mirror price history: %w", err)
	}
	result.PricePoints = len(prices)

	metrics, err := m.sourceMetrics.GetSince(ctx, cutoff)
	if err != nil {
		return nil, fmt.Errorf("load daily metrics since cutoff: %w", err)
	}
	for _, metric := range metrics {
		if err := m.destMetrics.Upsert(ctx, metric); err != nil {
			return nil, fmt.Errorf("mirror daily metric for keyword %d: %w", metric.KeywordID, err)
		}
	}
	result.DailyMetrics = len(metrics)

	m.logger.Info("analytics sync finished",
		zap.Time("cutoff", cutoff),
		zap.Int("price_points", result.PricePoints),
		zap.Int("daily_metrics", result.DailyMetrics))
	return result, nil
}
