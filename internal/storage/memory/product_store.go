package memory

import (
	"context"
	"sort"
	"sync"

	"serp-market-lab/internal/domain"
	"serp-market-lab/internal/storage"
)

// ProductStore is an in-memory implementation of storage.ProductStore.
type ProductStore struct {
	mu   sync.RWMutex
	data map[string]*domain.Product // keyed by asin
}

// NewProductStore creates a new in-memory product store.
func NewProductStore() *ProductStore {
	return &ProductStore{
		data: make(map[string]*domain.Product),
	}
}

// Insert adds a new product. Returns ErrDuplicateKey if asin exists.
func (s *ProductStore) Insert(_ context.Context, p *domain.Product) error {
	if p == nil || p.ASIN == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[p.ASIN]; exists {
		return storage.ErrDuplicateKey
	}

	productCopy := *p
	s.data[p.ASIN] = &productCopy
	return nil
}

// Update overwrites an existing product row.
func (s *ProductStore) Update(_ context.Context, p *domain.Product) error {
	if p == nil || p.ASIN == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[p.ASIN]; !exists {
		return storage.ErrNotFound
	}

	productCopy := *p
	s.data[p.ASIN] = &productCopy
	return nil
}

// GetByASIN retrieves a product. Returns ErrNotFound if not exists.
func (s *ProductStore) GetByASIN(_ context.Context, asin string) (*domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, exists := s.data[asin]
	if !exists {
		return nil, storage.ErrNotFound
	}

	productCopy := *p
	return &productCopy, nil
}

// GetByBrand retrieves all products currently carrying a brand,
// ordered by asin ASC.
func (s *ProductStore) GetByBrand(_ context.Context, brand string) ([]*domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Product
	for _, p := range s.data {
		if p.Brand != nil && *p.Brand == brand {
			productCopy := *p
			result = append(result, &productCopy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].ASIN < result[j].ASIN
	})

	return result, nil
}

// GetAll retrieves all products, ordered by asin ASC.
func (s *ProductStore) GetAll(_ context.Context) ([]*domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.Product, 0, len(s.data))
	for _, p := range s.data {
		productCopy := *p
		result = append(result, &productCopy)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].ASIN < result[j].ASIN
	})

	return result, nil
}

var _ storage.ProductStore = (*ProductStore)(nil)
