package storage

import (
	"context"
	"time"

	"serp-market-lab/internal/domain"
)

// KeywordStore provides access to keywords storage.
type KeywordStore interface {
	// Insert adds a new keyword and assigns its ID.
	// Returns ErrDuplicateKey if (text, marketplace) exists.
	Insert(ctx context.Context, k *domain.Keyword) error

	// GetByID retrieves a keyword by ID. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, id int64) (*domain.Keyword, error)

	// GetByText retrieves a keyword by its text within a marketplace.
	// Returns ErrNotFound if not exists.
	GetByText(ctx context.Context, text, marketplace string) (*domain.Keyword, error)

	// ListActive retrieves all active keywords, ordered by ID ASC.
	ListActive(ctx context.Context) ([]*domain.Keyword, error)

	// SetActive toggles a keyword's active flag. Keywords are never
	// deleted while history references them.
	SetActive(ctx context.Context, id int64, active bool) error
}

// SnapshotStore provides access to serp_snapshots and their owned
// serp_results.
type SnapshotStore interface {
	// Insert adds a snapshot together with its results.
	// Returns ErrDuplicateKey if snapshot_id exists.
	Insert(ctx context.Context, snap *domain.Snapshot) error

	// GetByID retrieves a snapshot with its results ordered by position.
	// Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, snapshotID string) (*domain.Snapshot, error)

	// GetResultsByKeywordDate retrieves every result captured for a
	// keyword on one calendar day (capture timestamps truncated to day
	// granularity), ordered by capture time then position.
	GetResultsByKeywordDate(ctx context.Context, keywordID int64, day time.Time) ([]*domain.Result, error)

	// GetASINsByKeywordDate retrieves the distinct ASINs observed for a
	// keyword on one calendar day.
	GetASINsByKeywordDate(ctx context.Context, keywordID int64, day time.Time) ([]string, error)
}

// ProductStore provides access to products storage.
type ProductStore interface {
	// Insert adds a new product. Returns ErrDuplicateKey if asin exists.
	Insert(ctx context.Context, p *domain.Product) error

	// Update overwrites an existing product row.
	// Returns ErrNotFound if the asin does not exist.
	Update(ctx context.Context, p *domain.Product) error

	// GetByASIN retrieves a product. Returns ErrNotFound if not exists.
	GetByASIN(ctx context.Context, asin string) (*domain.Product, error)

	// GetByBrand retrieves all products currently carrying a brand,
	// ordered by asin ASC.
	GetByBrand(ctx context.Context, brand string) ([]*domain.Product, error)

	// GetAll retrieves all products, ordered by asin ASC.
	GetAll(ctx context.Context) ([]*domain.Product, error)
}

// PriceHistoryStore provides access to the append-only price_history
// facts. Rows are never updated or deleted.
type PriceHistoryStore interface {
	// Insert appends one price observation.
	Insert(ctx context.Context, e *domain.PriceHistory) error

	// InsertBulk appends multiple observations in one round trip.
	InsertBulk(ctx context.Context, entries []*domain.PriceHistory) error

	// GetByASIN retrieves all entries for an ASIN, ordered by date ASC.
	GetByASIN(ctx context.Context, asin string) ([]*domain.PriceHistory, error)

	// GetSince retrieves all entries on or after cutoff, ordered by
	// asin ASC then date ASC.
	GetSince(ctx context.Context, cutoff time.Time) ([]*domain.PriceHistory, error)
}

// ReviewStore provides access to reviews storage. Inserts are keyed by
// the external review_id; a duplicate is reported, not merged.
type ReviewStore interface {
	// Insert adds a new review. Returns ErrDuplicateKey if review_id exists.
	Insert(ctx context.Context, r *domain.Review) error

	// Exists reports whether a review_id has been seen.
	Exists(ctx context.Context, reviewID string) (bool, error)

	// GetByASIN retrieves all reviews for an ASIN, ordered by review_id ASC.
	GetByASIN(ctx context.Context, asin string) ([]*domain.Review, error)
}

// SellerStore provides access to the derived per-brand rollups.
type SellerStore interface {
	// Insert adds a new seller. Returns ErrDuplicateKey if brand exists.
	Insert(ctx context.Context, s *domain.Seller) error

	// Update overwrites an existing seller row.
	// Returns ErrNotFound if the brand does not exist.
	Update(ctx context.Context, s *domain.Seller) error

	// GetByBrand retrieves a seller. Returns ErrNotFound if not exists.
	GetByBrand(ctx context.Context, brand string) (*domain.Seller, error)

	// GetAll retrieves all sellers, ordered by brand ASC.
	GetAll(ctx context.Context) ([]*domain.Seller, error)
}

// DailyMetricStore provides access to daily_metrics storage.
type DailyMetricStore interface {
	// Upsert writes the metric row for (keyword_id, date), replacing
	// any prior row for the pair. Recomputation never double-counts.
	Upsert(ctx context.Context, m *domain.DailyMetric) error

	// GetByKeywordDate retrieves one metric row.
	// Returns ErrNotFound if not exists.
	GetByKeywordDate(ctx context.Context, keywordID int64, day time.Time) (*domain.DailyMetric, error)

	// GetSince retrieves all metric rows dated on or after cutoff,
	// ordered by keyword_id ASC then date ASC.
	GetSince(ctx context.Context, cutoff time.Time) ([]*domain.DailyMetric, error)
}
