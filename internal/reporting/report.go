// Package reporting renders the tracked datasets as CSV files for BI
// consumption and the opportunity scan as a Markdown digest.
package reporting

import (
	"time"

	"serp-market-lab/internal/domain"
)

// Report is the rendered summary of one opportunity scan.
type Report struct {
	GeneratedAt   time.Time
	WindowDays    int
	KeywordCount  int
	Opportunities []*domain.Opportunity
}

// DailyAggregateRow is a daily metric joined with its keyword text.
type DailyAggregateRow struct {
	Keyword string
	Metric  *domain.DailyMetric
}
