package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"serp-market-lab/internal/domain"
	"serp-market-lab/internal/storage"
)

// DailyMetricStore is an in-memory implementation of
// storage.DailyMetricStore.
type DailyMetricStore struct {
	mu   sync.RWMutex
	data map[string]*domain.DailyMetric // keyed by (keyword_id, day)
}

// NewDailyMetricStore creates a new in-memory daily metric store.
func NewDailyMetricStore() *DailyMetricStore {
	return &DailyMetricStore{
		data: make(map[string]*domain.DailyMetric),
	}
}

func metricKey(keywordID int64, day time.Time) string {
	return fmt.Sprintf("%d|%s", keywordID, domain.Day(day).Format("2006-01-02"))
}

// Upsert writes the metric row for (keyword_id, date), replacing any
// prior row for the pair.
func (s *DailyMetricStore) Upsert(_ context.Context, m *domain.DailyMetric) error {
	if m == nil || m.KeywordID == 0 {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	metricCopy := *m
	metricCopy.Date = domain.Day(m.Date)
	s.data[metricKey(m.KeywordID, m.Date)] = &metricCopy
	return nil
}

// GetByKeywordDate retrieves one metric row.
func (s *DailyMetricStore) GetByKeywordDate(_ context.Context, keywordID int64, day time.Time) (*domain.DailyMetric, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, exists := s.data[metricKey(keywordID, day)]
	if !exists {
		return nil, storage.ErrNotFound
	}

	metricCopy := *m
	return &metricCopy, nil
}

// GetSince retrieves all metric rows dated on or after cutoff, ordered
// by keyword_id ASC then date ASC.
func (s *DailyMetricStore) GetSince(_ context.Context, cutoff time.Time) ([]*domain.DailyMetric, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cutoff = domain.Day(cutoff)

	var result []*domain.DailyMetric
	for _, m := range s.data {
		if !m.Date.Before(cutoff) {
			metricCopy := *m
			result = append(result, &metricCopy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].KeywordID != result[j].KeywordID {
			return result[i].KeywordID < result[j].KeywordID
		}
		return result[i].Date.Before(result[j].Date)
	})

	return result, nil
}

var _ storage.DailyMetricStore = (*DailyMetricStore)(nil)
