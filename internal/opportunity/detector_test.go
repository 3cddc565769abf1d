package opportunity

import (
	"context"
	"testing"
	"time"

	"serp-market-lab/internal/domain"
	"serp-market-lab/internal/storage/memory"
)

func floatPtr(f float64) *float64 { return &f }

type fixture struct {
	keywords *memory.KeywordStore
	metrics  *memory.DailyMetricStore
	detector *Detector
	now      time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	now := time.Date(2025, 6, 8, 12, 0, 0, 0, time.UTC)
	keywords := memory.NewKeywordStore()
	metrics := memory.NewDailyMetricStore()
	return &fixture{
		keywords: keywords,
		metrics:  metrics,
		detector: New(keywords, metrics, WithClock(func() time.Time { return now })),
		now:      now,
	}
}

func (f *fixture) addKeyword(t *testing.T, text string) int64 {
	t.Helper()
	k := &domain.Keyword{Text: text, Marketplace: "US", IsActive: true}
	if err := f.keywords.Insert(context.Background(), k); err != nil {
		t.Fatalf("insert keyword: %v", err)
	}
	return k.ID
}

func (f *fixture) addMetric(t *testing.T, keywordID int64, daysAgo, total, sponsored, entrants int, median *float64) {
	t.Helper()
	m := &domain.DailyMetric{
		KeywordID:      keywordID,
		Date:           f.now.AddDate(0, 0, -daysAgo),
		MedianPrice:    median,
		TotalProducts:  total,
		SponsoredCount: sponsored,
		OrganicCount:   total - sponsored,
		NewEntrants:    entrants,
	}
	if err := f.metrics.Upsert(context.Background(), m); err != nil {
		t.Fatalf("upsert metric: %v", err)
	}
}

func TestDetect_LowSaturation(t *testing.T) {
	f := newFixture(t)
	id := f.addKeyword(t, "walnut desk organizer")
	for day := 1; day <= 3; day++ {
		f.addMetric(t, id, day, 12, 5, 0, floatPtr(19.99))
	}

	opps, err := f.detector.Detect(context.Background(), 7)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if len(opps) != 1 {
		t.Fatalf("expected 1 opportunity, got %d", len(opps))
	}
	opp := opps[0]
	if opp.Type != domain.OpportunityLowSaturation {
		t.Errorf("type = %s, want %s", opp.Type, domain.OpportunityLowSaturation)
	}
	if opp.Priority != domain.PriorityHigh {
		t.Errorf("priority = %s, want %s", opp.Priority, domain.PriorityHigh)
	}
	if opp.Keyword != "walnut desk organizer" {
		t.Errorf("keyword = %q", opp.Keyword)
	}
	if opp.AvgProducts == nil || *opp.AvgProducts != 12.0 {
		t.Errorf("avg_products = %v, want 12.0", opp.AvgProducts)
	}
	if opp.AvgPrice == nil || *opp.AvgPrice != 19.99 {
		t.Errorf("avg_price = %v, want 19.99", opp.AvgPrice)
	}
}

func TestDetect_SaturatedMarketEmitsNothing(t *testing.T) {
	f := newFixture(t)
	id := f.addKeyword(t, "phone case")
	for day := 1; day <= 3; day++ {
		f.addMetric(t, id, day, 35, 8, 1, floatPtr(9.99))
	}

	opps, err := f.detector.Detect(context.Background(), 7)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if len(opps) != 0 {
		t.Errorf("expected no opportunities, got %d", len(opps))
	}
}

func TestDetect_MultipleRulesFireIndependently(t *testing.T) {
	f := newFixture(t)
	id := f.addKeyword(t, "bamboo drawer divider")
	// Sparse results, barely any ads, and a stream of new ASINs.
	f.addMetric(t, id, 1, 10, 1, 4, nil)
	f.addMetric(t, id, 2, 14, 2, 3, nil)

	opps, err := f.detector.Detect(context.Background(), 7)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if len(opps) != 3 {
		t.Fatalf("expected 3 opportunities, got %d", len(opps))
	}

	types := map[domain.OpportunityType]*domain.Opportunity{}
	for _, opp := range opps {
		types[opp.Type] = opp
	}
	if _, ok := types[domain.OpportunityLowSaturation]; !ok {
		t.Error("expected low_saturation")
	}
	if _, ok := types[domain.OpportunityLowAdCompetition]; !ok {
		t.Error("expected low_ad_competition")
	}
	if got := types[domain.OpportunityLowAdCompetition].Reason; got != "Only 2 sponsored ads on average" {
		t.Errorf("low_ad_competition reason = %q", got)
	}
	growing, ok := types[domain.OpportunityGrowingMarket]
	if !ok {
		t.Fatal("expected growing_market")
	}
	if growing.NewEntrants == nil || *growing.NewEntrants != 7 {
		t.Errorf("new_entrants = %v, want 7", growing.NewEntrants)
	}
	if growing.Reason != "7 new products entered in last 7 days" {
		t.Errorf("growing_market reason = %q", growing.Reason)
	}
	// With no priced rows the average price stays null.
	if types[domain.OpportunityLowSaturation].AvgPrice != nil {
		t.Error("expected nil avg_price when no window row had a median")
	}
}

func TestDetect_BoundaryValuesDoNotFire(t *testing.T) {
	f := newFixture(t)
	id := f.addKeyword(t, "edge case")
	// Exactly at each threshold: 20 products, 3 sponsored, 5 entrants.
	f.addMetric(t, id, 1, 20, 3, 5, nil)

	opps, err := f.detector.Detect(context.Background(), 7)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if len(opps) != 0 {
		t.Errorf("expected threshold boundaries not to fire, got %d opportunities", len(opps))
	}
}

func TestDetect_WindowSpansExactlyWindowDays(t *testing.T) {
	f := newFixture(t)
	id := f.addKeyword(t, "cork coaster")
	// Sparse enough to fire every rule if counted. A 7-day window is
	// today plus the 6 preceding days, so only the second row counts.
	f.addMetric(t, id, 7, 4, 0, 20, floatPtr(7.99))
	f.addMetric(t, id, 6, 35, 8, 0, floatPtr(9.99))

	opps, err := f.detector.Detect(context.Background(), 7)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if len(opps) != 0 {
		t.Errorf("row dated windowDays ago leaked into the window: got %d opportunities", len(opps))
	}
}

func TestDetect_RowsOutsideWindowIgnored(t *testing.T) {
	f := newFixture(t)
	id := f.addKeyword(t, "stale keyword")
	f.addMetric(t, id, 30, 5, 0, 10, nil)

	opps, err := f.detector.Detect(context.Background(), 7)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if len(opps) != 0 {
		t.Errorf("expected rows outside the window to be ignored, got %d", len(opps))
	}
}
