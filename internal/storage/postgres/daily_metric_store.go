package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"serp-market-lab/internal/domain"
	"serp-market-lab/internal/storage"
)

// DailyMetricStore implements storage.DailyMetricStore using
// PostgreSQL.
type DailyMetricStore struct {
	db Querier
}

// NewDailyMetricStore creates a new DailyMetricStore.
func NewDailyMetricStore(db Querier) *DailyMetricStore {
	return &DailyMetricStore{db: db}
}

// Compile-time interface check.
var _ storage.DailyMetricStore = (*DailyMetricStore)(nil)

// Upsert writes the metric row for (keyword_id, date), replacing any
// prior row for the pair.
func (s *DailyMetricStore) Upsert(ctx context.Context, m *domain.DailyMetric) error {
	query := `
		INSERT INTO daily_metrics (
			keyword_id, date, median_price, avg_rating,
			total_products, sponsored_count, organic_count, new_entrants
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (keyword_id, date) DO UPDATE SET
			median_price = EXCLUDED.median_price,
			avg_rating = EXCLUDED.avg_rating,
			total_products = EXCLUDED.total_products,
			sponsored_count = EXCLUDED.sponsored_count,
			organic_count = EXCLUDED.organic_count,
			new_entrants = EXCLUDED.new_entrants
	`

	_, err := s.db.Exec(ctx, query,
		m.KeywordID,
		domain.Day(m.Date),
		m.MedianPrice,
		m.AvgRating,
		m.TotalProducts,
		m.SponsoredCount,
		m.OrganicCount,
		m.NewEntrants,
	)
	if err != nil {
		return fmt.Errorf("upsert daily metric: %w", err)
	}
	return nil
}

// GetByKeywordDate retrieves one metric row.
// Returns ErrNotFound if not exists.
func (s *DailyMetricStore) GetByKeywordDate(ctx context.Context, keywordID int64, day time.Time) (*domain.DailyMetric, error) {
	query := `
		SELECT keyword_id, date, median_price, avg_rating,
			total_products, sponsored_count, organic_count, new_entrants
		FROM daily_metrics
		WHERE keyword_id = $1 AND date = $2
	`

	row := s.db.QueryRow(ctx, query, keywordID, domain.Day(day))
	m, err := scanDailyMetric(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get daily metric: %w", err)
	}
	return m, nil
}

// GetSince retrieves all metric rows dated on or after cutoff, ordered
// by keyword_id ASC then date ASC.
func (s *DailyMetricStore) GetSince(ctx context.Context, cutoff time.Time) ([]*domain.DailyMetric, error) {
	query := `
		SELECT keyword_id, date, median_price, avg_rating,
			total_products, sponsored_count, organic_count, new_entrants
		FROM daily_metrics
		WHERE date >= $1
		ORDER BY keyword_id ASC, date ASC
	`

	rows, err := s.db.Query(ctx, query, domain.Day(cutoff))
	if err != nil {
		return nil, fmt.Errorf("get daily metrics since: %w", err)
	}
	defer rows.Close()

	var metrics []*domain.DailyMetric
	for rows.Next() {
		m, err := scanDailyMetric(rows)
		if err != nil {
			return nil, fmt.Errorf("scan daily metric row: %w", err)
		}
		metrics = append(metrics, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate daily metric rows: %w", err)
	}
	return metrics, nil
}

// scanDailyMetric scans a single row into a DailyMetric.
func scanDailyMetric(row pgx.Row) (*domain.DailyMetric, error) {
	var m domain.DailyMetric
	err := row.Scan(
		&m.KeywordID,
		&m.Date,
		&m.MedianPrice,
		&m.AvgRating,
		&m.TotalProducts,
		&m.SponsoredCount,
		&m.OrganicCount,
		&m.NewEntrants,
	)
	if err != nil {
		return nil, err
	}
	m.Date = m.Date.UTC()
	return &m, nil
}
