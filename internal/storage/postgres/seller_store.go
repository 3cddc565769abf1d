package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"serp-market-lab/internal/domain"
	"serp-market-lab/internal/storage"
)

// SellerStore implements storage.SellerStore using PostgreSQL.
type SellerStore struct {
	db Querier
}

// NewSellerStore creates a new SellerStore.
func NewSellerStore(db Querier) *SellerStore {
	return &SellerStore{db: db}
}

// Compile-time interface check.
var _ storage.SellerStore = (*SellerStore)(nil)

// Insert adds a new seller. Returns ErrDuplicateKey if brand exists.
func (s *SellerStore) Insert(ctx context.Context, sel *domain.Seller) error {
	query := `
		INSERT INTO sellers (brand_name, marketplace, first_seen, product_count, avg_rating, total_reviews)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := s.db.Exec(ctx, query,
		sel.BrandName,
		sel.Marketplace,
		sel.FirstSeen,
		sel.ProductCount,
		sel.AvgRating,
		sel.TotalReviews,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert seller: %w", err)
	}
	return nil
}

// Update overwrites an existing seller row.
// Returns ErrNotFound if the brand does not exist.
func (s *SellerStore) Update(ctx context.Context, sel *domain.Seller) error {
	query := `
		UPDATE sellers SET
			marketplace = $2, first_seen = $3, product_count = $4,
			avg_rating = $5, total_reviews = $6
		WHERE brand_name = $1
	`

	tag, err := s.db.Exec(ctx, query,
		sel.BrandName,
		sel.Marketplace,
		sel.FirstSeen,
		sel.ProductCount,
		sel.AvgRating,
		sel.TotalReviews,
	)
	if err != nil {
		return fmt.Errorf("update seller: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// GetByBrand retrieves a seller. Returns ErrNotFound if not exists.
func (s *SellerStore) GetByBrand(ctx context.Context, brand string) (*domain.Seller, error) {
	query := `
		SELECT brand_name, marketplace, first_seen, product_count, avg_rating, total_reviews
		FROM sellers
		WHERE brand_name = $1
	`

	row := s.db.QueryRow(ctx, query, brand)
	sel, err := scanSeller(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get seller by brand: %w", err)
	}
	return sel, nil
}

// GetAll retrieves all sellers, ordered by brand ASC.
func (s *SellerStore) GetAll(ctx context.Context) ([]*domain.Seller, error) {
	query := `
		SELECT brand_name, marketplace, first_seen, product_count, avg_rating, total_reviews
		FROM sellers
		ORDER BY brand_name ASC
	`

	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get all sellers: %w", err)
	}
	defer rows.Close()

	var sellers []*domain.Seller
	for rows.Next() {
		sel, err := scanSeller(rows)
		if err != nil {
			return nil, fmt.Errorf("scan seller row: %w", err)
		}
		sellers = append(sellers, sel)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate seller rows: %w", err)
	}
	return sellers, nil
}

// scanSeller scans a single row into a Seller.
func scanSeller(row pgx.Row) (*domain.Seller, error) {
	var sel domain.Seller
	err := row.Scan(
		&sel.BrandName,
		&sel.Marketplace,
		&sel.FirstSeen,
		&sel.ProductCount,
		&sel.AvgRating,
		&sel.TotalReviews,
	)
	if err != nil {
		return nil, err
	}
	return &sel, nil
}
