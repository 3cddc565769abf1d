package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"serp-market-lab/internal/domain"
	"serp-market-lab/internal/storage"
)

// SnapshotStore implements storage.SnapshotStore using PostgreSQL.
// Results are written with COPY; they only ever arrive as one block
// owned by their snapshot.
type SnapshotStore struct {
	db Querier
}

// NewSnapshotStore creates a new SnapshotStore.
func NewSnapshotStore(db Querier) *SnapshotStore {
	return &SnapshotStore{db: db}
}

// Compile-time interface check.
var _ storage.SnapshotStore = (*SnapshotStore)(nil)

// Insert adds a snapshot together with its results.
// Returns ErrDuplicateKey if snapshot_id exists.
func (s *SnapshotStore) Insert(ctx context.Context, snap *domain.Snapshot) error {
	query := `
		INSERT INTO serp_snapshots (snapshot_id, keyword_id, marketplace, capture_time, total_results)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := s.db.Exec(ctx, query,
		snap.SnapshotID,
		snap.KeywordID,
		snap.Marketplace,
		snap.CaptureTime,
		snap.TotalResults,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert snapshot: %w", err)
	}

	if len(snap.Results) == 0 {
		return nil
	}

	rows := make([][]any, 0, len(snap.Results))
	for _, r := range snap.Results {
		rows = append(rows, []any{
			snap.SnapshotID, r.ASIN, r.Position, r.IsSponsored,
			r.Title, r.Price, r.Currency, r.Rating, r.ReviewCount, r.ImageURL,
		})
	}

	_, err = s.db.CopyFrom(ctx,
		pgx.Identifier{"serp_results"},
		[]string{"snapshot_id", "asin", "position", "is_sponsored", "title", "price", "currency", "rating", "review_count", "image_url"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return fmt.Errorf("copy snapshot results: %w", err)
	}
	return nil
}

// GetByID retrieves a snapshot with its results ordered by position.
// Returns ErrNotFound if not exists.
func (s *SnapshotStore) GetByID(ctx context.Context, snapshotID string) (*domain.Snapshot, error) {
	query := `
		SELECT snapshot_id, keyword_id, marketplace, capture_time, total_results
		FROM serp_snapshots
		WHERE snapshot_id = $1
	`

	var snap domain.Snapshot
	err := s.db.QueryRow(ctx, query, snapshotID).Scan(
		&snap.SnapshotID,
		&snap.KeywordID,
		&snap.Marketplace,
		&snap.CaptureTime,
		&snap.TotalResults,
	)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get snapshot by id: %w", err)
	}

	resultsQuery := `
		SELECT snapshot_id, asin, position, is_sponsored, title, price, currency, rating, review_count, image_url
		FROM serp_results
		WHERE snapshot_id = $1
		ORDER BY position ASC
	`

	rows, err := s.db.Query(ctx, resultsQuery, snapshotID)
	if err != nil {
		return nil, fmt.Errorf("get snapshot results: %w", err)
	}
	defer rows.Close()

	snap.Results, err = scanResults(rows)
	if err != nil {
		return nil, err
	}
	return &snap, nil
}

// GetResultsByKeywordDate retrieves every result captured for a keyword
// on one calendar day, ordered by capture time then position.
func (s *SnapshotStore) GetResultsByKeywordDate(ctx context.Context, keywordID int64, day time.Time) ([]*domain.Result, error) {
	start, end := dayBounds(day)
	query := `
		SELECT r.snapshot_id, r.asin, r.position, r.is_sponsored, r.title, r.price, r.currency, r.rating, r.review_count, r.image_url
		FROM serp_results r
		JOIN serp_snapshots s ON s.snapshot_id = r.snapshot_id
		WHERE s.keyword_id = $1 AND s.capture_time >= $2 AND s.capture_time < $3
		ORDER BY s.capture_time ASC, r.position ASC
	`

	rows, err := s.db.Query(ctx, query, keywordID, start, end)
	if err != nil {
		return nil, fmt.Errorf("get results by keyword date: %w", err)
	}
	defer rows.Close()

	return scanResults(rows)
}

// GetASINsByKeywordDate retrieves the distinct ASINs observed for a
// keyword on one calendar day.
func (s *SnapshotStore) GetASINsByKeywordDate(ctx context.Context, keywordID int64, day time.Time) ([]string, error) {
	start, end := dayBounds(day)
	query := `
		SELECT DISTINCT r.asin
		FROM serp_results r
		JOIN serp_snapshots s ON s.snapshot_id = r.snapshot_id
		WHERE s.keyword_id = $1 AND s.capture_time >= $2 AND s.capture_time < $3
		ORDER BY r.asin ASC
	`

	rows, err := s.db.Query(ctx, query, keywordID, start, end)
	if err != nil {
		return nil, fmt.Errorf("get asins by keyword date: %w", err)
	}
	defer rows.Close()

	var asins []string
	for rows.Next() {
		var asin string
		if err := rows.Scan(&asin); err != nil {
			return nil, fmt.Errorf("scan asin row: %w", err)
		}
		asins = append(asins, asin)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate asin rows: %w", err)
	}
	return asins, nil
}

func dayBounds(day time.Time) (time.Time, time.Time) {
	start := domain.Day(day)
	return start, start.AddDate(0, 0, 1)
}

// scanResults scans multiple rows into a slice of Result.
func scanResults(rows pgx.Rows) ([]*domain.Result, error) {
	var results []*domain.Result

	for rows.Next() {
		var r domain.Result
		err := rows.Scan(
			&r.SnapshotID,
			&r.ASIN,
			&r.Position,
			&r.IsSponsored,
			&r.Title,
			&r.Price,
			&r.Currency,
			&r.Rating,
			&r.ReviewCount,
			&r.ImageURL,
		)
		if err != nil {
			return nil, fmt.Errorf("scan result row: %w", err)
		}
		results = append(results, &r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate result rows: %w", err)
	}
	return results, nil
}
