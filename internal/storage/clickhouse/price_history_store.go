package clickhouse

import (
	"context"
	"fmt"
	"time"

	"serp-market-lab/internal/domain"
	"serp-market-lab/internal/storage"
)

// PriceHistoryStore implements storage.PriceHistoryStore using
// ClickHouse. The ReplacingMergeTree keyed on (asin, date) absorbs
// rows the sync job delivers more than once.
type PriceHistoryStore struct {
	conn *Conn
}

// NewPriceHistoryStore creates a new PriceHistoryStore.
func NewPriceHistoryStore(conn *Conn) *PriceHistoryStore {
	return &PriceHistoryStore{conn: conn}
}

// Compile-time interface check.
var _ storage.PriceHistoryStore = (*PriceHistoryStore)(nil)

// Insert appends one price observation.
func (s *PriceHistoryStore) Insert(ctx context.Context, e *domain.PriceHistory) error {
	return s.InsertBulk(ctx, []*domain.PriceHistory{e})
}

// InsertBulk appends multiple observations in one batch.
func (s *PriceHistoryStore) InsertBulk(ctx context.Context, entries []*domain.PriceHistory) error {
	if len(entries) == 0 {
		return nil
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO price_history (asin, date, price, currency)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, e := range entries {
		if err := batch.Append(e.ASIN, e.Date, e.Price, e.Currency); err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}
	return nil
}

// GetByASIN retrieves all entries for an ASIN, ordered by date ASC.
func (s *PriceHistoryStore) GetByASIN(ctx context.Context, asin string) ([]*domain.PriceHistory, error) {
	query := `
		SELECT asin, date, price, currency
		FROM price_history FINAL
		WHERE asin = ?
		ORDER BY date ASC
	`

	rows, err := s.conn.Query(ctx, query, asin)
	if err != nil {
		return nil, fmt.Errorf("query by asin: %w", err)
	}
	defer rows.Close()

	return scanPriceHistory(rows)
}

// GetSince retrieves all entries on or after cutoff, ordered by asin
// ASC then date ASC.
func (s *PriceHistoryStore) GetSince(ctx context.Context, cutoff time.Time) ([]*domain.PriceHistory, error) {
	query := `
		SELECT asin, date, price, currency
		FROM price_history FINAL
		WHERE date >= ?
		ORDER BY asin ASC, date ASC
	`

	rows, err := s.conn.Query(ctx, query, cutoff)
	if err != nil {
		return nil, fmt.Errorf("query since: %w", err)
	}
	defer rows.Close()

	return scanPriceHistory(rows)
}

// scanPriceHistory scans multiple rows into a slice of PriceHistory.
func scanPriceHistory(rows chRows) ([]*domain.PriceHistory, error) {
	var entries []*domain.PriceHistory

	for rows.Next() {
		var e domain.PriceHistory
		if err := rows.Scan(&e.ASIN, &e.Date, &e.Price, &e.Currency); err != nil {
			return nil, fmt.Errorf("scan price history row: %w", err)
		}
		e.Date = e.Date.UTC()
		entries = append(entries, &e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate price history rows: %w", err)
	}
	return entries, nil
}
