package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"serp-market-lab/internal/domain"
	"serp-market-lab/internal/storage"
)

// SnapshotStore is an in-memory implementation of storage.SnapshotStore.
type SnapshotStore struct {
	mu   sync.RWMutex
	data map[string]*domain.Snapshot // keyed by snapshot_id
}

// NewSnapshotStore creates a new in-memory snapshot store.
func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{
		data: make(map[string]*domain.Snapshot),
	}
}

// Insert adds a snapshot together with its results.
func (s *SnapshotStore) Insert(_ context.Context, snap *domain.Snapshot) error {
	if snap == nil || snap.SnapshotID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[snap.SnapshotID]; exists {
		return storage.ErrDuplicateKey
	}

	s.data[snap.SnapshotID] = copySnapshot(snap)
	return nil
}

// GetByID retrieves a snapshot with its results ordered by position.
func (s *SnapshotStore) GetByID(_ context.Context, snapshotID string) (*domain.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap, exists := s.data[snapshotID]
	if !exists {
		return nil, storage.ErrNotFound
	}

	out := copySnapshot(snap)
	sort.Slice(out.Results, func(i, j int) bool {
		return out.Results[i].Position < out.Results[j].Position
	})
	return out, nil
}

// GetResultsByKeywordDate retrieves every result captured for a keyword
// on one calendar day, ordered by capture time then position.
func (s *SnapshotStore) GetResultsByKeywordDate(_ context.Context, keywordID int64, day time.Time) ([]*domain.Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	day = domain.Day(day)

	type ordered struct {
		captureTime int64
		result      *domain.Result
	}
	var collected []ordered

	for _, snap := range s.data {
		if snap.KeywordID != keywordID || !domain.Day(snap.CaptureTime).Equal(day) {
			continue
		}
		for _, r := range snap.Results {
			resultCopy := *r
			collected = append(collected, ordered{
				captureTime: snap.CaptureTime.UnixMilli(),
				result:      &resultCopy,
			})
		}
	}

	sort.Slice(collected, func(i, j int) bool {
		if collected[i].captureTime != collected[j].captureTime {
			return collected[i].captureTime < collected[j].captureTime
		}
		return collected[i].result.Position < collected[j].result.Position
	})

	results := make([]*domain.Result, len(collected))
	for i, o := range collected {
		results[i] = o.result
	}
	return results, nil
}

// GetASINsByKeywordDate retrieves the distinct ASINs observed for a
// keyword on one calendar day.
func (s *SnapshotStore) GetASINsByKeywordDate(ctx context.Context, keywordID int64, day time.Time) ([]string, error) {
	results, err := s.GetResultsByKeywordDate(ctx, keywordID, day)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	var asins []string
	for _, r := range results {
		if _, ok := seen[r.ASIN]; ok {
			continue
		}
		seen[r.ASIN] = struct{}{}
		asins = append(asins, r.ASIN)
	}

	sort.Strings(asins)
	return asins, nil
}

// copySnapshot deep-copies a snapshot and its results.
func copySnapshot(snap *domain.Snapshot) *domain.Snapshot {
	out := *snap
	out.Results = make([]*domain.Result, len(snap.Results))
	for i, r := range snap.Results {
		resultCopy := *r
		out.Results[i] = &resultCopy
	}
	return &out
}

var _ storage.SnapshotStore = (*SnapshotStore)(nil)
