// Package store provides an interface for product storage operations.
package store

import (
	"context"
	"maps"
)

// ProductStore is an interface for product storage operations.
// It abstracts the underlying data store, allowing for different implementations (e.g., in-memory, database).
type ProductStore interface {
	// FindByID retrieves a single product by its unique identifier.
	// Returns ErrProductNotFound if no product exists with the given ID.
	FindByID(ctx context.Context, id string) (*Product, error)

	// FindAll returns all available products in insertion order.
	// Returns an empty slice if no products exist.
	FindAll(ctx context.Context) ([]Product, error)

	// Create adds a new product built from the patch and assigns it a fresh ID.
	// Returns error if the product cannot be created.
	Create(ctx context.Context, patch Patch) (*Product, error)

	// Update merges the patch into an existing product. Fields not set in the patch are preserved.
	// Returns ErrProductNotFound if no product exists with the given ID.
	Update(ctx context.Context, id string, patch Patch) (*Product, error)

	// DeleteByID removes a product by its ID and returns the removed product.
	// Returns ErrProductNotFound if no product exists with the given ID.
	DeleteByID(ctx context.Context, id string) (*Product, error)

	// Len returns the number of stored products.
	Len() int
}

// Product represents a product entity in the store.
type Product struct {
	ID          string
	Name        string
	Description string
	Price       float64
	Category    string
	InStock     bool
	// Extra holds caller-supplied fields outside the known schema, kept verbatim.
	Extra map[string]any
}

// Patch is a field-level change set. Nil fields are left untouched.
type Patch struct {
	Name        *string
	Description *string
	Price       *float64
	Category    *string
	InStock     *bool
	Extra       map[string]any
}

// apply merges the patch into p. Extra keys are merged one by one, new values win.
func (patch Patch) apply(p *Product) {
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	if patch.Price != nil {
		p.Price = *patch.Price
	}
	if patch.Category != nil {
		p.Category = *patch.Category
	}
	if patch.InStock != nil {
		p.InStock = *patch.InStock
	}
	if len(patch.Extra) > 0 {
		if p.Extra == nil {
			p.Extra = make(map[string]any, len(patch.Extra))
		}
		maps.Copy(p.Extra, patch.Extra)
	}
}

// clone returns a copy of p that shares no map with it.
func (p Product) clone() Product {
	p.Extra = maps.Clone(p.Extra)
	return p
}
