package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"serp-market-lab/internal/domain"
	"serp-market-lab/internal/storage"
)

// KeywordStore implements storage.KeywordStore using PostgreSQL.
type KeywordStore struct {
	db Querier
}

// NewKeywordStore creates a new KeywordStore.
func NewKeywordStore(db Querier) *KeywordStore {
	return &KeywordStore{db: db}
}

// Compile-time interface check.
var _ storage.KeywordStore = (*KeywordStore)(nil)

// Insert adds a new keyword and assigns its ID.
// Returns ErrDuplicateKey if (text, marketplace) exists.
func (s *KeywordStore) Insert(ctx context.Context, k *domain.Keyword) error {
	query := `
		INSERT INTO keywords (keyword, marketplace, is_active, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	err := s.db.QueryRow(ctx, query,
		k.Text,
		k.Marketplace,
		k.IsActive,
		k.CreatedAt,
	).Scan(&k.ID)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert keyword: %w", err)
	}
	return nil
}

// GetByID retrieves a keyword by ID. Returns ErrNotFound if not exists.
func (s *KeywordStore) GetByID(ctx context.Context, id int64) (*domain.Keyword, error) {
	query := `
		SELECT id, keyword, marketplace, is_active, created_at
		FROM keywords
		WHERE id = $1
	`

	row := s.db.QueryRow(ctx, query, id)
	k, err := scanKeyword(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get keyword by id: %w", err)
	}
	return k, nil
}

// GetByText retrieves a keyword by its text within a marketplace.
// Returns ErrNotFound if not exists.
func (s *KeywordStore) GetByText(ctx context.Context, text, marketplace string) (*domain.Keyword, error) {
	query := `
		SELECT id, keyword, marketplace, is_active, created_at
		FROM keywords
		WHERE keyword = $1 AND marketplace = $2
	`

	row := s.db.QueryRow(ctx, query, text, marketplace)
	k, err := scanKeyword(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get keyword by text: %w", err)
	}
	return k, nil
}

// ListActive retrieves all active keywords, ordered by ID ASC.
func (s *KeywordStore) ListActive(ctx context.Context) ([]*domain.Keyword, error) {
	query := `
		SELECT id, keyword, marketplace, is_active, created_at
		FROM keywords
		WHERE is_active
		ORDER BY id ASC
	`

	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list active keywords: %w", err)
	}
	defer rows.Close()

	var keywords []*domain.Keyword
	for rows.Next() {
		k, err := scanKeyword(rows)
		if err != nil {
			return nil, fmt.Errorf("scan keyword row: %w", err)
		}
		keywords = append(keywords, k)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate keyword rows: %w", err)
	}
	return keywords, nil
}

// SetActive toggles a keyword's active flag.
func (s *KeywordStore) SetActive(ctx context.Context, id int64, active bool) error {
	tag, err := s.db.Exec(ctx, `UPDATE keywords SET is_active = $2 WHERE id = $1`, id, active)
	if err != nil {
		return fmt.Errorf("set keyword active: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// scanKeyword scans a single row into a Keyword.
func scanKeyword(row pgx.Row) (*domain.Keyword, error) {
	var k domain.Keyword
	err := row.Scan(
		&k.ID,
		&k.Text,
		&k.Marketplace,
		&k.IsActive,
		&k.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &k, nil
}
