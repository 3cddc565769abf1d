package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"serp-market-lab/internal/domain"
	"serp-market-lab/internal/storage"
)

// ReviewStore implements storage.ReviewStore using PostgreSQL.
type ReviewStore struct {
	db Querier
}

// NewReviewStore creates a new ReviewStore.
func NewReviewStore(db Querier) *ReviewStore {
	return &ReviewStore{db: db}
}

// Compile-time interface check.
var _ storage.ReviewStore = (*ReviewStore)(nil)

// Insert adds a new review. Returns ErrDuplicateKey if review_id exists.
func (s *ReviewStore) Insert(ctx context.Context, r *domain.Review) error {
	query := `
		INSERT INTO reviews (
			review_id, asin, rating, title, body, verified_purchase, review_date, helpful_votes, captured_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := s.db.Exec(ctx, query,
		r.ReviewID,
		r.ASIN,
		r.Rating,
		r.Title,
		r.Text,
		r.VerifiedPurchase,
		r.ReviewDate,
		r.HelpfulVotes,
		r.CapturedAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert review: %w", err)
	}
	return nil
}

// Exists reports whether a review_id has been seen.
func (s *ReviewStore) Exists(ctx context.Context, reviewID string) (bool, error) {
	var exists bool
	err := s.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM reviews WHERE review_id = $1)`, reviewID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check review exists: %w", err)
	}
	return exists, nil
}

// GetByASIN retrieves all reviews for an ASIN, ordered by review_id ASC.
func (s *ReviewStore) GetByASIN(ctx context.Context, asin string) ([]*domain.Review, error) {
	query := `
		SELECT review_id, asin, rating, title, body, verified_purchase, review_date, helpful_votes, captured_at
		FROM reviews
		WHERE asin = $1
		ORDER BY review_id ASC
	`

	rows, err := s.db.Query(ctx, query, asin)
	if err != nil {
		return nil, fmt.Errorf("get reviews by asin: %w", err)
	}
	defer rows.Close()

	return scanReviews(rows)
}

// scanReviews scans multiple rows into a slice of Review.
func scanReviews(rows pgx.Rows) ([]*domain.Review, error) {
	var reviews []*domain.Review

	for rows.Next() {
		var r domain.Review
		err := rows.Scan(
			&r.ReviewID,
			&r.ASIN,
			&r.Rating,
			&r.Title,
			&r.Text,
			&r.VerifiedPurchase,
			&r.ReviewDate,
			&r.HelpfulVotes,
			&r.CapturedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan review row: %w", err)
		}
		reviews = append(reviews, &r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate review rows: %w", err)
	}
	return reviews, nil
}
