package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"serp-market-lab/internal/domain"
	"serp-market-lab/internal/storage"
)

// ProductStore implements storage.ProductStore using PostgreSQL.
type ProductStore struct {
	db Querier
}

// NewProductStore creates a new ProductStore.
func NewProductStore(db Querier) *ProductStore {
	return &ProductStore{db: db}
}

// Compile-time interface check.
var _ storage.ProductStore = (*ProductStore)(nil)

const productColumns = `asin, title, brand, category, subcategory, marketplace,
	first_seen, last_updated, current_price, current_rating, current_review_count`

// Insert adds a new product. Returns ErrDuplicateKey if asin exists.
func (s *ProductStore) Insert(ctx context.Context, p *domain.Product) error {
	query := `
		INSERT INTO products (` + productColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := s.db.Exec(ctx, query,
		p.ASIN,
		p.Title,
		p.Brand,
		p.Category,
		p.Subcategory,
		p.Marketplace,
		p.FirstSeen,
		p.LastUpdated,
		p.CurrentPrice,
		p.CurrentRating,
		p.CurrentReviewCount,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

// Update overwrites an existing product row.
// Returns ErrNotFound if the asin does not exist.
func (s *ProductStore) Update(ctx context.Context, p *domain.Product) error {
	query := `
		UPDATE products SET
			title = $2, brand = $3, category = $4, subcategory = $5,
			marketplace = $6, first_seen = $7, last_updated = $8,
			current_price = $9, current_rating = $10, current_review_count = $11
		WHERE asin = $1
	`

	tag, err := s.db.Exec(ctx, query,
		p.ASIN,
		p.Title,
		p.Brand,
		p.Category,
		p.Subcategory,
		p.Marketplace,
		p.FirstSeen,
		p.LastUpdated,
		p.CurrentPrice,
		p.CurrentRating,
		p.CurrentReviewCount,
	)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// GetByASIN retrieves a product. Returns ErrNotFound if not exists.
func (s *ProductStore) GetByASIN(ctx context.Context, asin string) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE asin = $1`

	row := s.db.QueryRow(ctx, query, asin)
	p, err := scanProduct(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get product by asin: %w", err)
	}
	return p, nil
}

// GetByBrand retrieves all products currently carrying a brand,
// ordered by asin ASC.
func (s *ProductStore) GetByBrand(ctx context.Context, brand string) ([]*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE brand = $1 ORDER BY asin ASC`

	rows, err := s.db.Query(ctx, query, brand)
	if err != nil {
		return nil, fmt.Errorf("get products by brand: %w", err)
	}
	defer rows.Close()

	return scanProducts(rows)
}

// GetAll retrieves all products, ordered by asin ASC.
func (s *ProductStore) GetAll(ctx context.Context) ([]*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products ORDER BY asin ASC`

	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get all products: %w", err)
	}
	defer rows.Close()

	return scanProducts(rows)
}

// scanProduct scans a single row into a Product.
func scanProduct(row pgx.Row) (*domain.Product, error) {
	var p domain.Product
	err := row.Scan(
		&p.ASIN,
		&p.Title,
		&p.Brand,
		&p.Category,
		&p.Subcategory,
		&p.Marketplace,
		&p.FirstSeen,
		&p.LastUpdated,
		&p.CurrentPrice,
		&p.CurrentRating,
		&p.CurrentReviewCount,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// scanProducts scans multiple rows into a slice of Product.
func scanProducts(rows pgx.Rows) ([]*domain.Product, error) {
	var products []*domain.Product

	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product row: %w", err)
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate product rows: %w", err)
	}
	return products, nil
}
