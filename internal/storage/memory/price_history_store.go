package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"serp-market-lab/internal/domain"
	"serp-market-lab/internal/storage"
)

// PriceHistoryStore is an in-memory implementation of
// storage.PriceHistoryStore. The backing slice is append-only.
type PriceHistoryStore struct {
	mu   sync.RWMutex
	data []*domain.PriceHistory
}

// NewPriceHistoryStore creates a new in-memory price history store.
func NewPriceHistoryStore() *PriceHistoryStore {
	return &PriceHistoryStore{}
}

// Insert appends one price observation.
func (s *PriceHistoryStore) Insert(_ context.Context, e *domain.PriceHistory) error {
	if e == nil || e.ASIN == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entryCopy := *e
	s.data = append(s.data, &entryCopy)
	return nil
}

// InsertBulk appends multiple observations.
func (s *PriceHistoryStore) InsertBulk(_ context.Context, entries []*domain.PriceHistory) error {
	if len(entries) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range entries {
		if e == nil || e.ASIN == "" {
			return storage.ErrInvalidInput
		}
	}
	for _, e := range entries {
		entryCopy := *e
		s.data = append(s.data, &entryCopy)
	}
	return nil
}

// GetByASIN retrieves all entries for an ASIN, ordered by date ASC.
func (s *PriceHistoryStore) GetByASIN(_ context.Context, asin string) ([]*domain.PriceHistory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.PriceHistory
	for _, e := range s.data {
		if e.ASIN == asin {
			entryCopy := *e
			result = append(result, &entryCopy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Date.Before(result[j].Date)
	})

	return result, nil
}

// GetSince retrieves all entries on or after cutoff, ordered by asin
// ASC then date ASC.
func (s *PriceHistoryStore) GetSince(_ context.Context, cutoff time.Time) ([]*domain.PriceHistory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.PriceHistory
	for _, e := range s.data {
		if !e.Date.Before(cutoff) {
			entryCopy := *e
			result = append(result, &entryCopy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].ASIN != result[j].ASIN {
			return result[i].ASIN < result[j].ASIN
		}
		return result[i].Date.Before(result[j].Date)
	})

	return result, nil
}

var _ storage.PriceHistoryStore = (*PriceHistoryStore)(nil)
