package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"serp-market-lab/internal/domain"
	"serp-market-lab/internal/storage"
)

// PriceHistoryStore implements storage.PriceHistoryStore using
// PostgreSQL. The table is append-only.
type PriceHistoryStore struct {
	db Querier
}

// NewPriceHistoryStore creates a new PriceHistoryStore.
func NewPriceHistoryStore(db Querier) *PriceHistoryStore {
	return &PriceHistoryStore{db: db}
}

// Compile-time interface check.
var _ storage.PriceHistoryStore = (*PriceHistoryStore)(nil)

// Insert appends one price observation.
func (s *PriceHistoryStore) Insert(ctx context.Context, e *domain.PriceHistory) error {
	query := `
		INSERT INTO price_history (asin, date, price, currency)
		VALUES ($1, $2, $3, $4)
	`

	_, err := s.db.Exec(ctx, query, e.ASIN, e.Date, e.Price, e.Currency)
	if err != nil {
		return fmt.Errorf("insert price history: %w", err)
	}
	return nil
}

// InsertBulk appends multiple observations with COPY.
func (s *PriceHistoryStore) InsertBulk(ctx context.Context, entries []*domain.PriceHistory) error {
	if len(entries) == 0 {
		return nil
	}

	rows := make([][]any, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []any{e.ASIN, e.Date, e.Price, e.Currency})
	}

	_, err := s.db.CopyFrom(ctx,
		pgx.Identifier{"price_history"},
		[]string{"asin", "date", "price", "currency"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return fmt.Errorf("copy price history: %w", err)
	}
	return nil
}

// GetByASIN retrieves all entries for an ASIN, ordered by date ASC.
func (s *PriceHistoryStore) GetByASIN(ctx context.Context, asin string) ([]*domain.PriceHistory, error) {
	query := `
		SELECT asin, date, price, currency
		FROM price_history
		WHERE asin = $1
		ORDER BY date ASC
	`

	rows, err := s.db.Query(ctx, query, asin)
	if err != nil {
		return nil, fmt.Errorf("get price history by asin: %w", err)
	}
	defer rows.Close()

	return scanPriceHistory(rows)
}

// GetSince retrieves all entries on or after cutoff, ordered by asin
// ASC then date ASC.
func (s *PriceHistoryStore) GetSince(ctx context.Context, cutoff time.Time) ([]*domain.PriceHistory, error) {
	query := `
		SELECT asin, date, price, currency
		FROM price_history
		WHERE date >= $1
		ORDER BY asin ASC, date ASC
	`

	rows, err := s.db.Query(ctx, query, cutoff)
	if err != nil {
		return nil, fmt.Errorf("get price history since: %w", err)
	}
	defer rows.Close()

	return scanPriceHistory(rows)
}

// scanPriceHistory scans multiple rows into a slice of PriceHistory.
func scanPriceHistory(rows pgx.Rows) ([]*domain.PriceHistory, error) {
	var entries []*domain.PriceHistory

	for rows.Next() {
		var e domain.PriceHistory
		if err := rows.Scan(&e.ASIN, &e.Date, &e.Price, &e.Currency); err != nil {
			return nil, fmt.Errorf("scan price history row: %w", err)
		}
		entries = append(entries, &e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate price history rows: %w", err)
	}
	return entries, nil
}
