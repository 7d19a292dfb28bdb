package store

import (
	"context"
	"slices"
	"sync"

	producterrors "github.com/abgdnv/productcatalog/internal/errors"
	"github.com/google/uuid"
)

// inMemory implements ProductStore using an insertion-ordered slice.
// Each operation holds the lock for its whole duration; ordering between
// concurrent operations on the same product is not coordinated.
type inMemory struct {
	mu       sync.RWMutex
	products []Product
	newID    func() string
}

// NewInMemoryStore creates a new instance of ProductStore
func NewInMemoryStore() ProductStore {
	return &inMemory{
		products: make([]Product, 0),
		newID:    uuid.NewString,
	}
}

// FindByID retrieves a product by its ID.
func (s *inMemory) FindByID(_ context.Context, id string) (*Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.indexOf(id)
	if i < 0 {
		return nil, producterrors.ErrProductNotFound
	}
	found := s.products[i].clone()
	return &found, nil
}

// FindAll retrieves all products.
func (s *inMemory) FindAll(_ context.Context) ([]Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := make([]Product, len(s.products))
	for i, p := range s.products {
		list[i] = p.clone()
	}
	return list, nil
}

// Len returns the number of stored products.
func (s *inMemory) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.products)
}

// Create creates a new product and returns it.
func (s *inMemory) Create(_ context.Context, patch Patch) (*Product, error) {
	product := Product{ID: s.newID()}
	patch.apply(&product)
	product = product.clone()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.products = append(s.products, product)
	created := product.clone()
	return &created, nil
}

// Update merges the patch into the product with the given ID.
func (s *inMemory) Update(_ context.Context, id string, patch Patch) (*Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return nil, producterrors.ErrProductNotFound
	}
	updated := s.products[i].clone()
	patch.apply(&updated)
	s.products[i] = updated
	result := updated.clone()
	return &result, nil
}

// DeleteByID deletes a product by its ID.
func (s *inMemory) DeleteByID(_ context.Context, id string) (*Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return nil, producterrors.ErrProductNotFound
	}
	removed := s.products[i]
	s.products = slices.Delete(s.products, i, i+1)
	return &removed, nil
}

// indexOf returns the position of the product with the given ID, or -1. Callers hold the lock.
func (s *inMemory) indexOf(id string) int {
	for i := range s.products {
		if s.products[i].ID == id {
			return i
		}
	}
	return -1
}
