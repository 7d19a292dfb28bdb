package service

import (
	"context"
	"errors"
	"math"
	"testing"

	producterrors "github.com/abgdnv/productcatalog/internal/errors"
	"github.com/abgdnv/productcatalog/internal/store"
	"github.com/abgdnv/productcatalog/pkg/messaging"
	"github.com/abgdnv/productcatalog/pkg/messaging/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// mockProductStore is a mock implementation of the ProductStore interface
type mockProductStore struct {
	products []store.Product
	product  store.Product
	error    error
}

func (m *mockProductStore) FindByID(_ context.Context, _ string) (*store.Product, error) {
	if m.error != nil {
		return nil, m.error
	}
	return &m.product, nil
}

func (m *mockProductStore) FindAll(_ context.Context) ([]store.Product, error) {
	return m.products, m.error
}

func (m *mockProductStore) Create(_ context.Context, _ store.Patch) (*store.Product, error) {
	if m.error != nil {
		return nil, m.error
	}
	return &m.product, nil
}

func (m *mockProductStore) Update(_ context.Context, _ string, _ store.Patch) (*store.Product, error) {
	if m.error != nil {
		return nil, m.error
	}
	return &m.product, nil
}

func (m *mockProductStore) DeleteByID(_ context.Context, _ string) (*store.Product, error) {
	if m.error != nil {
		return nil, m.error
	}
	return &m.product, nil
}

func (m *mockProductStore) Len() int {
	return len(m.products)
}

// mockPublisher records published events.
type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(ctx context.Context, event messaging.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func ptr[T any](v T) *T {
	return &v
}

func input(name, category string) ProductInput {
	return ProductInput{
		Name:        ptr(name),
		Description: ptr(name + " description"),
		Price:       ptr(10.0),
		Category:    ptr(category),
		InStock:     ptr(true),
	}
}

// seed creates products with the given names and categories (pairs) through the service.
func seed(t *testing.T, s ProductService, pairs ...string) []ProductDto {
	t.Helper()
	var created []ProductDto
	for i := 0; i < len(pairs); i += 2 {
		p, err := s.Create(context.Background(), input(pairs[i], pairs[i+1]))
		require.NoError(t, err)
		created = append(created, *p)
	}
	return created
}

func Test_ProductService_FindAll(t *testing.T) {
	testCases := []struct {
		name          string
		filter        ListFilter
		expectedTotal int
		expectedNames []string
	}{
		{
			name:          "No filter, no pagination",
			filter:        ListFilter{},
			expectedTotal: 3,
			expectedNames: []string{"Phone", "Shirt", "Laptop"},
		},
		{
			name:          "Category filter",
			filter:        ListFilter{Category: "electronics"},
			expectedTotal: 2,
			expectedNames: []string{"Phone", "Laptop"},
		},
		{
			name:          "Category filter is exact",
			filter:        ListFilter{Category: "Electronics"},
			expectedTotal: 0,
			expectedNames: []string{},
		},
		{
			name:          "Second page of size one",
			filter:        ListFilter{Page: 2, Limit: 1},
			expectedTotal: 3,
			expectedNames: []string{"Shirt"},
		},
		{
			name:          "Last partial page",
			filter:        ListFilter{Page: 2, Limit: 2},
			expectedTotal: 3,
			expectedNames: []string{"Laptop"},
		},
		{
			name:          "Out of range page keeps total",
			filter:        ListFilter{Page: 5, Limit: 2},
			expectedTotal: 3,
			expectedNames: []string{},
		},
		{
			name:          "Page without limit beyond first is empty",
			filter:        ListFilter{Page: 2},
			expectedTotal: 3,
			expectedNames: []string{},
		},
		{
			name:          "Filter then paginate",
			filter:        ListFilter{Category: "electronics", Page: 2, Limit: 1},
			expectedTotal: 2,
			expectedNames: []string{"Laptop"},
		},
		{
			name:          "Huge page is out of range",
			filter:        ListFilter{Page: math.MaxInt, Limit: 1},
			expectedTotal: 3,
			expectedNames: []string{},
		},
		{
			name:          "Huge limit returns everything",
			filter:        ListFilter{Page: 1, Limit: math.MaxInt},
			expectedTotal: 3,
			expectedNames: []string{"Phone", "Shirt", "Laptop"},
		},
		{
			name:          "Non-positive values fall back to defaults",
			filter:        ListFilter{Page: -3, Limit: 0},
			expectedTotal: 3,
			expectedNames: []string{"Phone", "Shirt", "Laptop"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			s := NewService(store.NewInMemoryStore(), nil)
			seed(t, s, "Phone", "electronics", "Shirt", "clothing", "Laptop", "electronics")

			// when
			page, err := s.FindAll(context.Background(), tc.filter)

			// then
			require.NoError(t, err)
			assert.Equal(t, tc.expectedTotal, page.Total)
			require.NotNil(t, page.Data)
			names := make([]string, 0, len(page.Data))
			for _, p := range page.Data {
				names = append(names, p.Name)
			}
			assert.Equal(t, tc.expectedNames, names)
		})
	}
}

func Test_ProductService_FindAll_EmptyStore(t *testing.T) {
	// given
	s := NewService(store.NewInMemoryStore(), nil)

	// when
	page, err := s.FindAll(context.Background(), ListFilter{Page: 1, Limit: 10})

	// then
	require.NoError(t, err)
	assert.Equal(t, 0, page.Total)
	assert.Equal(t, []ProductDto{}, page.Data)
}

func Test_ProductService_CreateThenFindByID(t *testing.T) {
	// given
	s := NewService(store.NewInMemoryStore(), nil)
	in := input("Camera", "electronics")
	in.Extra = map[string]any{"brand": "Acme"}

	// when
	created, err := s.Create(context.Background(), in)
	require.NoError(t, err)
	found, err := s.FindByID(context.Background(), created.ID)

	// then
	require.NoError(t, err)
	assert.Equal(t, created, found)
	assert.Equal(t, "Acme", found.Extra["brand"])
}

func Test_ProductService_FindByID_NotFound(t *testing.T) {
	// given
	s := NewService(store.NewInMemoryStore(), nil)

	// when
	found, err := s.FindByID(context.Background(), "missing")

	// then
	assert.ErrorIs(t, err, producterrors.ErrProductNotFound)
	assert.Nil(t, found)
}

func Test_ProductService_Update(t *testing.T) {
	// given
	s := NewService(store.NewInMemoryStore(), nil)
	created := seed(t, s, "Camera", "electronics")[0]
	in := input("Camera v2", "photo")
	in.InStock = ptr(false)

	// when
	updated, err := s.Update(context.Background(), created.ID, in)

	// then
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "Camera v2", updated.Name)
	assert.Equal(t, "photo", updated.Category)
	assert.False(t, updated.InStock)
}

func Test_ProductService_Update_NotFound(t *testing.T) {
	// given
	s := NewService(store.NewInMemoryStore(), nil)

	// when
	updated, err := s.Update(context.Background(), "missing", input("x", "y"))

	// then
	assert.ErrorIs(t, err, producterrors.ErrProductNotFound)
	assert.Nil(t, updated)
}

func Test_ProductService_DeleteThenFindByID(t *testing.T) {
	// given
	s := NewService(store.NewInMemoryStore(), nil)
	created := seed(t, s, "Camera", "electronics")[0]

	// when
	removed, err := s.DeleteByID(context.Background(), created.ID)
	require.NoError(t, err)
	_, findErr := s.FindByID(context.Background(), created.ID)
	_, deleteErr := s.DeleteByID(context.Background(), created.ID)

	// then
	assert.Equal(t, &created, removed)
	assert.ErrorIs(t, findErr, producterrors.ErrProductNotFound)
	assert.ErrorIs(t, deleteErr, producterrors.ErrProductNotFound)
}

func Test_ProductService_Search(t *testing.T) {
	testCases := []struct {
		name          string
		query         string
		expectedNames []string
	}{
		{name: "Case-insensitive substring", query: "ab", expectedNames: []string{"Abc", "xaby"}},
		{name: "Upper-case query", query: "AB", expectedNames: []string{"Abc", "xaby"}},
		{name: "Empty query matches all", query: "", expectedNames: []string{"Abc", "xaby", "xyz"}},
		{name: "No match", query: "qq", expectedNames: []string{}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			s := NewService(store.NewInMemoryStore(), nil)
			seed(t, s, "Abc", "a", "xaby", "b", "xyz", "c")

			// when
			result, err := s.Search(context.Background(), tc.query)

			// then
			require.NoError(t, err)
			require.NotNil(t, result)
			names := make([]string, 0, len(result))
			for _, p := range result {
				names = append(names, p.Name)
			}
			assert.Equal(t, tc.expectedNames, names)
		})
	}
}

func Test_ProductService_Stats(t *testing.T) {
	testCases := []struct {
		name     string
		seed     []string
		expected map[string]int
	}{
		{name: "Empty store", seed: nil, expected: map[string]int{}},
		{name: "Counts per category", seed: []string{"p1", "A", "p2", "A", "p3", "B"}, expected: map[string]int{"A": 2, "B": 1}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			s := NewService(store.NewInMemoryStore(), nil)
			seed(t, s, tc.seed...)

			// when
			stats, err := s.Stats(context.Background())

			// then
			require.NoError(t, err)
			assert.Equal(t, tc.expected, stats)
		})
	}
}

func Test_ProductService_StoreErrors(t *testing.T) {
	ErrStoreError := errors.New("store error")
	s := NewService(&mockProductStore{error: ErrStoreError}, nil)
	ctx := context.Background()

	_, err := s.FindAll(ctx, ListFilter{})
	assert.ErrorIs(t, err, ErrStoreError)
	_, err = s.FindByID(ctx, "1")
	assert.ErrorIs(t, err, ErrStoreError)
	_, err = s.Create(ctx, input("a", "b"))
	assert.ErrorIs(t, err, ErrStoreError)
	_, err = s.Update(ctx, "1", input("a", "b"))
	assert.ErrorIs(t, err, ErrStoreError)
	_, err = s.DeleteByID(ctx, "1")
	assert.ErrorIs(t, err, ErrStoreError)
	_, err = s.Search(ctx, "a")
	assert.ErrorIs(t, err, ErrStoreError)
	_, err = s.Stats(ctx)
	assert.ErrorIs(t, err, ErrStoreError)
}

func Test_ProductService_Count(t *testing.T) {
	testCases := []struct {
		name     string
		products []store.Product
		expected int
	}{
		{name: "Empty store", products: nil, expected: 0},
		{name: "Two products", products: []store.Product{{ID: "1"}, {ID: "2"}}, expected: 2},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			s := NewService(&mockProductStore{products: tc.products}, nil)

			// when
			count, err := s.Count(context.Background())

			// then
			require.NoError(t, err)
			assert.Equal(t, tc.expected, count)
		})
	}
}

func Test_ProductService_PublishesEvents(t *testing.T) {
	// given
	publisher := new(mockPublisher)
	mockStore := &mockProductStore{product: store.Product{ID: "1", Name: "Toy", Category: "toys"}}
	s := NewService(mockStore, publisher)
	ctx := context.Background()
	for _, subject := range []string{messaging.ProductsCreatedSubject, messaging.ProductsUpdatedSubject, messaging.ProductsDeletedSubject} {
		publisher.On("Publish", mock.Anything, mock.MatchedBy(func(e messaging.Event) bool {
			event, ok := e.(events.ProductChangedEvent)
			return ok && e.Subject() == subject && event.ProductID == "1" && event.Category == "toys"
		})).Return(nil).Once()
	}

	// when
	_, err := s.Create(ctx, input("Toy", "toys"))
	require.NoError(t, err)
	_, err = s.Update(ctx, "1", input("Toy", "toys"))
	require.NoError(t, err)
	_, err = s.DeleteByID(ctx, "1")
	require.NoError(t, err)

	// then
	publisher.AssertExpectations(t)
}

func Test_ProductService_PublishFailureDoesNotFailCreate(t *testing.T) {
	// given
	publisher := new(mockPublisher)
	publisher.On("Publish", mock.Anything, mock.Anything).Return(errors.New("nats down"))
	s := NewService(&mockProductStore{product: store.Product{ID: "1", Name: "Toy"}}, publisher)

	// when
	created, err := s.Create(context.Background(), input("Toy", "toys"))

	// then
	require.NoError(t, err)
	assert.Equal(t, "1", created.ID)
	publisher.AssertNumberOfCalls(t, "Publish", 1)
}

func Test_ProductService_NoEventOnFailedMutation(t *testing.T) {
	// given
	publisher := new(mockPublisher)
	s := NewService(store.NewInMemoryStore(), publisher)

	// when
	_, err := s.DeleteByID(context.Background(), "missing")

	// then
	assert.ErrorIs(t, err, producterrors.ErrProductNotFound)
	publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}
