package domain

import "time"

// DailyMetric is the per (keyword, calendar day) aggregate over all
// results captured that day. Corresponds to daily_metrics table in
// PostgreSQL. Recomputation for the same pair replaces the prior row.
//
// Invariant: SponsoredCount + OrganicCount == TotalProducts.
type DailyMetric struct {
	KeywordID      int64     // FK to keywords
	Date           time.Time // day-truncated UTC date
	MedianPrice    *float64  // lower median of non-null prices, nil if none
	AvgRating      *float64  // mean of non-null ratings, nil if none
	TotalProducts  int       // count of results that day
	SponsoredCount int       // results with the sponsorship flag
	OrganicCount   int       // remainder
	NewEntrants    int       // |today's ASINs - yesterday's ASINs|
}

// Day truncates a timestamp to UTC day granularity.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
