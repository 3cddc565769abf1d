// Package orchestrator coordinates the daily batch: metric rollups for
// every active keyword, then opportunity detection over the window.
package orchestrator

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"serp-market-lab/internal/domain"
	"serp-market-lab/internal/metrics"
	"serp-market-lab/internal/opportunity"
	"serp-market-lab/internal/storage"
)

// Options for creating an Orchestrator.
type Options struct {
	// TxRunner wraps the metric computation phase; one run's rows land
	// together or not at all.
	TxRunner storage.TxRunner

	// Stores serves the read-only phases (keyword listing, detection).
	Stores *storage.Stores

	// DaysBack is how many trailing calendar days of metrics to
	// (re)compute, today included. Defaults to 1.
	DaysBack int

	// WindowDays is the opportunity detection window. Defaults to 7.
	WindowDays int

	Clock  func() time.Time
	Logger *zap.Logger
}

// Orchestrator runs the batch phases in order.
type Orchestrator struct {
	tx         storage.TxRunner
	stores     *storage.Stores
	daysBack   int
	windowDays int
	now        func() time.Time
	logger     *zap.Logger
}

// New creates a new Orchestrator.
func New(opts Options) *Orchestrator {
	o := &Orchestrator{
		tx:         opts.TxRunner,
		stores:     opts.Stores,
		daysBack:   opts.DaysBack,
		windowDays: opts.WindowDays,
		now:        opts.Clock,
		logger:     opts.Logger,
	}
	if o.daysBack <= 0 {
		o.daysBack = 1
	}
	if o.windowDays <= 0 {
		o.windowDays = 7
	}
	if o.now == nil {
		o.now = time.Now
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	return o
}

// RunResult contains results from orchestrator execution.
type RunResult struct {
	KeywordsProcessed  int
	MetricsComputed    int
	OpportunitiesFound int
	Opportunities      []*domain.Opportunity
}

// Run executes the batch.
// Phases:
//  1. List active keywords
//  2. Compute daily metrics for each keyword over the trailing days,
//     all inside one transaction
//  3. Detect opportunities over the window
func (o *Orchestrator) Run(ctx context.Context) (*RunResult, error) {
	result := &RunResult{}
	today := domain.Day(o.now().UTC())

	o.logger.Info("phase 1: listing active keywords")
	keywords, err := o.stores.Keywords.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("phase 1 (list keywords) failed: %w", err)
	}
	result.KeywordsProcessed = len(keywords)
	o.logger.Info("active keywords loaded", zap.Int("count", len(keywords)))

	if len(keywords) == 0 {
		return result, nil
	}

	o.logger.Info("phase 2: computing daily metrics",
		zap.Int("days_back", o.daysBack))
	err = o.tx.RunInTx(ctx, func(ctx context.Context, stores *storage.Stores) error {
		aggregator := metrics.New(stores.Snapshots, stores.DailyMetrics,
			metrics.WithLogger(o.logger))
		for _, keyword := range keywords {
			for back := o.daysBack - 1; back >= 0; back-- {
				day := today.AddDate(0, 0, -back)
				m, err := aggregator.ComputeForDate(ctx, keyword.ID, day)
				if err != nil {
					return fmt.Errorf("keyword %q day %s: %w",
						keyword.Text, day.Format("2006-01-02"), err)
				}
				if m != nil {
					result.MetricsComputed++
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("phase 2 (daily metrics) failed: %w", err)
	}
	o.logger.Info("daily metrics computed",
		zap.Int("rows", result.MetricsComputed))

	o.logger.Info("phase 3: detecting opportunities",
		zap.Int("window_days", o.windowDays))
	detector := opportunity.New(o.stores.Keywords, o.stores.DailyMetrics,
		opportunity.WithClock(o.now), opportunity.WithLogger(o.logger))
	opportunities, err := detector.Detect(ctx, o.windowDays)
	if err != nil {
		return nil, fmt.Errorf("phase 3 (detection) failed: %w", err)
	}
	result.Opportunities = opportunities
	result.OpportunitiesFound = len(opportunities)

	return result, nil
}
