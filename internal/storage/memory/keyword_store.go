package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"serp-market-lab/internal/domain"
	"serp-market-lab/internal/storage"
)

// KeywordStore is an in-memory implementation of storage.KeywordStore.
type KeywordStore struct {
	mu     sync.RWMutex
	data   map[int64]*domain.Keyword
	byText map[string]int64 // (text|marketplace) -> id
	nextID int64
}

// NewKeywordStore creates a new in-memory keyword store.
func NewKeywordStore() *KeywordStore {
	return &KeywordStore{
		data:   make(map[int64]*domain.Keyword),
		byText: make(map[string]int64),
		nextID: 1,
	}
}

func textKey(text, marketplace string) string {
	return fmt.Sprintf("%s|%s", text, marketplace)
}

// Insert adds a new keyword and assigns its ID.
func (s *KeywordStore) Insert(_ context.Context, k *domain.Keyword) error {
	if k == nil || k.Text == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := textKey(k.Text, k.Marketplace)
	if _, exists := s.byText[key]; exists {
		return storage.ErrDuplicateKey
	}

	k.ID = s.nextID
	s.nextID++

	keywordCopy := *k
	s.data[k.ID] = &keywordCopy
	s.byText[key] = k.ID
	return nil
}

// GetByID retrieves a keyword by ID.
func (s *KeywordStore) GetByID(_ context.Context, id int64) (*domain.Keyword, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	k, exists := s.data[id]
	if !exists {
		return nil, storage.ErrNotFound
	}

	keywordCopy := *k
	return &keywordCopy, nil
}

// GetByText retrieves a keyword by its text within a marketplace.
func (s *KeywordStore) GetByText(_ context.Context, text, marketplace string) (*domain.Keyword, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, exists := s.byText[textKey(text, marketplace)]
	if !exists {
		return nil, storage.ErrNotFound
	}

	keywordCopy := *s.data[id]
	return &keywordCopy, nil
}

// ListActive retrieves all active keywords, ordered by ID ASC.
func (s *KeywordStore) ListActive(_ context.Context) ([]*domain.Keyword, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Keyword
	for _, k := range s.data {
		if k.IsActive {
			keywordCopy := *k
			result = append(result, &keywordCopy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})

	return result, nil
}

// SetActive toggles a keyword's active flag.
func (s *KeywordStore) SetActive(_ context.Context, id int64, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	k, exists := s.data[id]
	if !exists {
		return storage.ErrNotFound
	}
	k.IsActive = active
	return nil
}

var _ storage.KeywordStore = (*KeywordStore)(nil)
