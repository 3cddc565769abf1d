package memory

import (
	"context"
	"sort"
	"sync"

	"serp-market-lab/internal/domain"
	"serp-market-lab/internal/storage"
)

// ReviewStore is an in-memory implementation of storage.ReviewStore.
type ReviewStore struct {
	mu   sync.RWMutex
	data map[string]*domain.Review // keyed by review_id
}

// NewReviewStore creates a new in-memory review store.
func NewReviewStore() *ReviewStore {
	return &ReviewStore{
		data: make(map[string]*domain.Review),
	}
}

// Insert adds a new review. Returns ErrDuplicateKey if review_id exists.
func (s *ReviewStore) Insert(_ context.Context, r *domain.Review) error {
	if r == nil || r.ReviewID == "" || r.ASIN == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[r.ReviewID]; exists {
		return storage.ErrDuplicateKey
	}

	reviewCopy := *r
	s.data[r.ReviewID] = &reviewCopy
	return nil
}

// Exists reports whether a review_id has been seen.
func (s *ReviewStore) Exists(_ context.Context, reviewID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, exists := s.data[reviewID]
	return exists, nil
}

// GetByASIN retrieves all reviews for an ASIN, ordered by review_id ASC.
func (s *ReviewStore) GetByASIN(_ context.Context, asin string) ([]*domain.Review, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Review
	for _, r := range s.data {
		if r.ASIN == asin {
			reviewCopy := *r
			result = append(result, &reviewCopy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].ReviewID < result[j].ReviewID
	})

	return result, nil
}

var _ storage.ReviewStore = (*ReviewStore)(nil)
