package clickhouse

import (
	"context"
	"fmt"
	"time"

	"serp-market-lab/internal/domain"
	"serp-market-lab/internal/storage"
)

// DailyMetricStore implements storage.DailyMetricStore using
// ClickHouse. Upsert is a plain insert; the ReplacingMergeTree keyed
// on (keyword_id, date) collapses recomputed rows at merge time and
// reads go through FINAL.
type DailyMetricStore struct {
	conn *Conn
}

// NewDailyMetricStore creates a new DailyMetricStore.
func NewDailyMetricStore(conn *Conn) *DailyMetricStore {
	return &DailyMetricStore{conn: conn}
}

// Compile-time interface check.
var _ storage.DailyMetricStore = (*DailyMetricStore)(nil)

// Upsert writes the metric row for (keyword_id, date).
func (s *DailyMetricStore) Upsert(ctx context.Context, m *domain.DailyMetric) error {
	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO daily_metrics (
			keyword_id, date, median_price, avg_rating,
			total_products, sponsored_count, organic_count, new_entrants
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	err = batch.Append(
		m.KeywordID,
		domain.Day(m.Date),
		m.MedianPrice,
		m.AvgRating,
		uint32(m.TotalProducts),
		uint32(m.SponsoredCount),
		uint32(m.OrganicCount),
		uint32(m.NewEntrants),
	)
	if err != nil {
		return fmt.Errorf("append to batch: %w", err)
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}
	return nil
}

// GetByKeywordDate retrieves one metric row.
// Returns ErrNotFound if not exists.
func (s *DailyMetricStore) GetByKeywordDate(ctx context.Context, keywordID int64, day time.Time) (*domain.DailyMetric, error) {
	query := `
		SELECT keyword_id, date, median_price, avg_rating,
			total_products, sponsored_count, organic_count, new_entrants
		FROM daily_metrics FINAL
		WHERE keyword_id = ? AND date = ?
	`

	rows, err := s.conn.Query(ctx, query, keywordID, domain.Day(day))
	if err != nil {
		return nil, fmt.Errorf("query by keyword date: %w", err)
	}
	defer rows.Close()

	metrics, err := scanDailyMetrics(rows)
	if err != nil {
		return nil, err
	}
	if len(metrics) == 0 {
		return nil, storage.ErrNotFound
	}
	return metrics[0], nil
}

// GetSince retrieves all metric rows dated on or after cutoff, ordered
// by keyword_id ASC then date ASC.
func (s *DailyMetricStore) GetSince(ctx context.Context, cutoff time.Time) ([]*domain.DailyMetric, error) {
	query := `
		SELECT keyword_id, date, median_price, avg_rating,
			total_products, sponsored_count, organic_count, new_entrants
		FROM daily_metrics FINAL
		WHERE date >= ?
		ORDER BY keyword_id ASC, date ASC
	`

	rows, err := s.conn.Query(ctx, query, domain.Day(cutoff))
	if err != nil {
		return nil, fmt.Errorf("query since: %w", err)
	}
	defer rows.Close()

	return scanDailyMetrics(rows)
}

// scanDailyMetrics scans multiple rows into a slice of DailyMetric.
func scanDailyMetrics(rows chRows) ([]*domain.DailyMetric, error) {
	var metrics []*domain.DailyMetric

	for rows.Next() {
		var m domain.DailyMetric
		var total, sponsored, organic, entrants uint32

		err := rows.Scan(
			&m.KeywordID,
			&m.Date,
			&m.MedianPrice,
			&m.AvgRating,
			&total,
			&sponsored,
			&organic,
			&entrants,
		)
		if err != nil {
			return nil, fmt.Errorf("scan daily metric row: %w", err)
		}

		m.Date = m.Date.UTC()
		m.TotalProducts = int(total)
		m.SponsoredCount = int(sponsored)
		m.OrganicCount = int(organic)
		m.NewEntrants = int(entrants)
		metrics = append(metrics, &m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate daily metric rows: %w", err)
	}
	return metrics, nil
}
