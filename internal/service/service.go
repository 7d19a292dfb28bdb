// Package service provides the implementation of product-related business logic.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/abgdnv/productcatalog/internal/store"
	"github.com/abgdnv/productcatalog/pkg/messaging"
	"github.com/abgdnv/productcatalog/pkg/messaging/events"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// ProductService defines the methods for managing products.
// It abstracts the underlying business logic and data access.
type ProductService interface {
	// FindAll returns the products matching the filter, paginated.
	FindAll(ctx context.Context, filter ListFilter) (*ProductPage, error)

	// FindByID retrieves a single product by its unique identifier.
	// Returns ErrProductNotFound if no product exists with the given ID.
	FindByID(ctx context.Context, id string) (*ProductDto, error)

	// Create adds a new product to the system.
	Create(ctx context.Context, input ProductInput) (*ProductDto, error)

	// Update merges the input into an existing product.
	// Returns ErrProductNotFound if no product exists with the given ID.
	Update(ctx context.Context, id string, input ProductInput) (*ProductDto, error)

	// DeleteByID removes a product by its ID and returns it.
	// Returns ErrProductNotFound if no product exists with the given ID.
	DeleteByID(ctx context.Context, id string) (*ProductDto, error)

	// Search returns all products whose name contains the query, ignoring case.
	Search(ctx context.Context, name string) ([]ProductDto, error)

	// Stats returns the number of products per category.
	Stats(ctx context.Context) (map[string]int, error)

	// Count returns the number of stored products.
	Count(ctx context.Context) (int, error)
}

// service implements ProductService and provides methods to manage products.
type service struct {
	repository       store.ProductStore
	publisher        messaging.Publisher
	mutationsCounter metric.Int64Counter
}

// NewService creates a new instance of ProductService with the provided repository and event publisher.
func NewService(repo store.ProductStore, publisher messaging.Publisher) ProductService {
	meter := otel.Meter("product-service")
	mutationsCounter, err := meter.Int64Counter("product_mutations", metric.WithDescription("Number of product create, update and delete operations"))
	if err != nil {
		panic(fmt.Sprintf("failed to create product_mutations counter: %v", err))
	}
	if publisher == nil {
		publisher = messaging.NopPublisher{}
	}
	return &service{
		repository:       repo,
		publisher:        publisher,
		mutationsCounter: mutationsCounter,
	}
}

// FindAll filters products by exact category, then slices out the requested page.
func (s *service) FindAll(ctx context.Context, filter ListFilter) (*ProductPage, error) {
	products, err := s.repository.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch products: %w", err)
	}

	filtered := make([]ProductDto, 0, len(products))
	for i := range products {
		if filter.Category != "" && products[i].Category != filter.Category {
			continue
		}
		filtered = append(filtered, *toDto(&products[i]))
	}

	return &ProductPage{
		Total: len(filtered),
		Data:  paginate(filtered, filter.Page, filter.Limit),
	}, nil
}

// paginate returns items[(page-1)*limit : page*limit], clamped to the slice bounds.
// An out-of-range page yields an empty, non-nil slice.
func paginate(items []ProductDto, page, limit int) []ProductDto {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = len(items)
	}
	if limit == 0 {
		return []ProductDto{}
	}
	pages := len(items) / limit
	if len(items)%limit != 0 {
		pages++
	}
	if page > pages {
		return []ProductDto{}
	}
	start := (page - 1) * limit
	end := min(start+limit, len(items))
	return items[start:end]
}

// FindByID retrieves a product by its ID and returns it as a ProductDto.
func (s *service) FindByID(ctx context.Context, id string) (*ProductDto, error) {
	product, err := s.repository.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch product by ID %s: %w", id, err)
	}
	return toDto(product), nil
}

// Create creates a new product and returns it as a ProductDto.
func (s *service) Create(ctx context.Context, input ProductInput) (*ProductDto, error) {
	p, err := s.repository.Create(ctx, input.toPatch())
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	s.afterMutation(ctx, events.ActionCreated, p)
	return toDto(p), nil
}

// Update merges the input into the product with the given ID and returns the result.
func (s *service) Update(ctx context.Context, id string, input ProductInput) (*ProductDto, error) {
	p, err := s.repository.Update(ctx, id, input.toPatch())
	if err != nil {
		return nil, fmt.Errorf("failed to update product with ID %s: %w", id, err)
	}
	s.afterMutation(ctx, events.ActionUpdated, p)
	return toDto(p), nil
}

// DeleteByID deletes a product by its ID and returns the removed product.
func (s *service) DeleteByID(ctx context.Context, id string) (*ProductDto, error) {
	p, err := s.repository.DeleteByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to delete product with ID %s: %w", id, err)
	}
	s.afterMutation(ctx, events.ActionDeleted, p)
	return toDto(p), nil
}

// Search matches name as a case-insensitive substring. An empty name matches every product.
func (s *service) Search(ctx context.Context, name string) ([]ProductDto, error) {
	products, err := s.repository.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to search products: %w", err)
	}
	query := strings.ToLower(name)
	result := make([]ProductDto, 0)
	for i := range products {
		if strings.Contains(strings.ToLower(products[i].Name), query) {
			result = append(result, *toDto(&products[i]))
		}
	}
	return result, nil
}

// Stats counts products per category. Only categories present in the store appear.
func (s *service) Stats(ctx context.Context) (map[string]int, error) {
	products, err := s.repository.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compute product stats: %w", err)
	}
	stats := make(map[string]int)
	for i := range products {
		stats[products[i].Category]++
	}
	return stats, nil
}

// Count returns the number of stored products without copying them.
func (s *service) Count(_ context.Context) (int, error) {
	return s.repository.Len(), nil
}

// afterMutation records the mutation metric and publishes the change event.
// A failed publish is logged and does not fail the operation.
func (s *service) afterMutation(ctx context.Context, action string, p *store.Product) {
	s.mutationsCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("operation", action)))

	event := events.NewProductChangedEvent(action, p.ID, p.Name, p.Category)
	if err := s.publisher.Publish(ctx, event); err != nil {
		slog.ErrorContext(ctx, "Failed to publish product event", "subject", event.Subject(), "product_id", p.ID, "error", err)
	}
}
