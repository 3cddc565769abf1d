package memory

import (
	"context"
	"sort"
	"sync"

	"serp-market-lab/internal/domain"
	"serp-market-lab/internal/storage"
)

// SellerStore is an in-memory implementation of storage.SellerStore.
type SellerStore struct {
	mu   sync.RWMutex
	data map[string]*domain.Seller // keyed by brand_name
}

// NewSellerStore creates a new in-memory seller store.
func NewSellerStore() *SellerStore {
	return &SellerStore{
		data: make(map[string]*domain.Seller),
	}
}

// Insert adds a new seller. Returns ErrDuplicateKey if brand exists.
func (s *SellerStore) Insert(_ context.Context, sl *domain.Seller) error {
	if sl == nil || sl.BrandName == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[sl.BrandName]; exists {
		return storage.ErrDuplicateKey
	}

	sellerCopy := *sl
	s.data[sl.BrandName] = &sellerCopy
	return nil
}

// Update overwrites an existing seller row.
func (s *SellerStore) Update(_ context.Context, sl *domain.Seller) error {
	if sl == nil || sl.BrandName == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[sl.BrandName]; !exists {
		return storage.ErrNotFound
	}

	sellerCopy := *sl
	s.data[sl.BrandName] = &sellerCopy
	return nil
}

// GetByBrand retrieves a seller. Returns ErrNotFound if not exists.
func (s *SellerStore) GetByBrand(_ context.Context, brand string) (*domain.Seller, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sl, exists := s.data[brand]
	if !exists {
		return nil, storage.ErrNotFound
	}

	sellerCopy := *sl
	return &sellerCopy, nil
}

// GetAll retrieves all sellers, ordered by brand ASC.
func (s *SellerStore) GetAll(_ context.Context) ([]*domain.Seller, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.Seller, 0, len(s.data))
	for _, sl := range s.data {
		sellerCopy := *sl
		result = append(result, &sellerCopy)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].BrandName < result[j].BrandName
	})

	return result, nil
}

var _ storage.SellerStore = (*SellerStore)(nil)
