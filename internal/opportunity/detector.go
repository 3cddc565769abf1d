// Package opportunity scans recent daily metrics for keywords whose
// competitive shape looks favorable.
package opportunity

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"go.uber.org/zap"

	"serp-market-lab/internal/domain"
	"serp-market-lab/internal/metrics"
	"serp-market-lab/internal/storage"
)

// Detection thresholds. These are policy, not tuning parameters, so
// they stay fixed rather than configurable.
const (
	saturationThreshold    = 20.0
	adCompetitionThreshold = 3.0
	newEntrantThreshold    = 5
)

// Detector evaluates keywords against the opportunity rules.
type Detector struct {
	keywords storage.KeywordStore
	metrics  storage.DailyMetricStore
	now      func() time.Time
	logger   *zap.Logger
}

// Option configures a Detector.
type Option func(*Detector)

// WithClock overrides the window anchor.
func WithClock(now func() time.Time) Option {
	return func(d *Detector) { d.now = now }
}

// WithLogger attaches a logger.
func WithLogger(logger *zap.Logger) Option {
	return func(d *Detector) { d.logger = logger }
}

// New creates a Detector over the given stores.
func New(keywords storage.KeywordStore, dailyMetrics storage.DailyMetricStore, opts ...Option) *Detector {
	d := &Detector{
		keywords: keywords,
		metrics:  dailyMetrics,
		now:      time.Now,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Detect evaluates every keyword with metric rows inside the trailing
// window of windowDays calendar days. Per keyword it derives window
// aggregates and emits, independently of each other:
//
//   - low_saturation (high priority) when mean total_products < 20
//   - low_ad_competition (medium) when mean sponsored_count < 3
//   - growing_market (medium) when summed new_entrants > 5
//
// A keyword can emit several opportunities at once, or none. Keywords
// without any rows in the window contribute nothing. Results are
// ordered by keyword id, then by rule order above.
func (d *Detector) Detect(ctx context.Context, windowDays int) ([]*domain.Opportunity, error) {
	// Today counts as the first of the windowDays days, so a row dated
	// exactly windowDays ago falls outside the window.
	cutoff := domain.Day(d.now().UTC()).AddDate(0, 0, -(windowDays - 1))
	rows, err := d.metrics.GetSince(ctx, cutoff)
	if err != nil {
		return nil, fmt.Errorf("load metrics since %s: %w", cutoff.Format("2006-01-02"), err)
	}

	byKeyword := make(map[int64][]*domain.DailyMetric)
	for _, row := range rows {
		byKeyword[row.KeywordID] = append(byKeyword[row.KeywordID], row)
	}
	ids := make([]int64, 0, len(byKeyword))
	for id := range byKeyword {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var opportunities []*domain.Opportunity
	for _, id := range ids {
		keyword, err := d.keywords.GetByID(ctx, id)
		if errors.Is(err, storage.ErrNotFound) {
			d.logger.Warn("metric rows reference unknown keyword",
				zap.Int64("keyword_id", id))
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("get keyword %d: %w", id, err)
		}

		opportunities = append(opportunities, d.evaluate(keyword, byKeyword[id], windowDays)...)
	}

	d.logger.Info("opportunity detection finished",
		zap.Int("keywords", len(ids)),
		zap.Int("opportunities", len(opportunities)))
	return opportunities, nil
}

func (d *Detector) evaluate(keyword *domain.Keyword, rows []*domain.DailyMetric, windowDays int) []*domain.Opportunity {
	var (
		products  []float64
		sponsored []float64
		prices    []float64
		totalNew  int
	)
	for _, row := range rows {
		products = append(products, float64(row.TotalProducts))
		sponsored = append(sponsored, float64(row.SponsoredCount))
		if row.MedianPrice != nil {
			prices = append(prices, *row.MedianPrice)
		}
		totalNew += row.NewEntrants
	}

	avgProducts := *metrics.Mean(products)
	avgSponsored := *metrics.Mean(sponsored)
	avgPrice := metrics.Mean(prices)

	var out []*domain.Opportunity
	if avgProducts < saturationThreshold {
		out = append(out, &domain.Opportunity{
			Type:        domain.OpportunityLowSaturation,
			Keyword:     keyword.Text,
			AvgProducts: round1(avgProducts),
			AvgPrice:    round2(avgPrice),
			Priority:    domain.PriorityHigh,
			Reason:      fmt.Sprintf("Only %.0f products on average - low competition", avgProducts),
		})
	}
	if avgSponsored < adCompetitionThreshold {
		out = append(out, &domain.Opportunity{
			Type:         domain.OpportunityLowAdCompetition,
			Keyword:      keyword.Text,
			AvgSponsored: round1(avgSponsored),
			Priority:     domain.PriorityMedium,
			Reason:       fmt.Sprintf("Only %.0f sponsored ads on average", avgSponsored),
		})
	}
	if totalNew > newEntrantThreshold {
		entrants := totalNew
		out = append(out, &domain.Opportunity{
			Type:        domain.OpportunityGrowingMarket,
			Keyword:     keyword.Text,
			NewEntrants: &entrants,
			Priority:    domain.PriorityMedium,
			Reason:      fmt.Sprintf("%d new products entered in last %d days", totalNew, windowDays),
		})
	}
	return out
}

func round1(v float64) *float64 {
	r := math.Round(v*10) / 10
	return &r
}

func round2(v *float64) *float64 {
	if v == nil {
		return nil
	}
	r := math.Round(*v*100) / 100
	return &r
}
