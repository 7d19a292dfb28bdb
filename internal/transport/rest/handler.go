// Package rest provides HTTP handlers for product-related operations.
package rest

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"reflect"
	"strings"

	producterrors "github.com/abgdnv/productcatalog/internal/errors"
	"github.com/abgdnv/productcatalog/internal/service"
	"github.com/abgdnv/productcatalog/pkg/web"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

// ProductsPath is the base path of the product API.
const ProductsPath = "/api/products"

const maxBodyBytes = 1 << 20

type Handler struct {
	service  service.ProductService
	validate *validator.Validate
	apiKey   string
	logger   *slog.Logger
}

// NewHandler creates a new product Handler. Product routes require the given API key.
func NewHandler(service service.ProductService, apiKey string, logger *slog.Logger) *Handler {
	validate := validator.New(validator.WithRequiredStructEnabled())
	// report JSON field names in validation errors
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return &Handler{
		service:  service,
		validate: validate,
		apiKey:   apiKey,
		logger:   logger.With("component", "rest"),
	}
}

// RegisterRoutes registers the HTTP routes for the product service.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.NotFound(Handle(h.logger, func(http.ResponseWriter, *http.Request) error {
		return producterrors.NotFound("Route not found")
	}))
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		web.RespondError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed")
	})

	r.Get("/", h.Root)
	r.Get("/healthz", Handle(h.logger, h.HealthCheck))

	unauthorized := Handle(h.logger, func(http.ResponseWriter, *http.Request) error {
		return producterrors.ErrUnauthorized
	})
	r.Route(ProductsPath, func(r chi.Router) {
		r.Use(web.APIKeyAuth(h.apiKey, unauthorized))

		r.Get("/", Handle(h.logger, h.FindAll))
		r.Post("/", Handle(h.logger, h.Create))
		r.Get("/search", Handle(h.logger, h.Search))
		r.Get("/stats", Handle(h.logger, h.Stats))

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", Handle(h.logger, h.FindByID))
			r.Put("/", Handle(h.logger, h.Update))
			r.Delete("/", Handle(h.logger, h.DeleteByID))
		})
	})
}

// Root answers the unauthenticated root path.
func (h *Handler) Root(w http.ResponseWriter, _ *http.Request) {
	web.RespondText(w, http.StatusOK, "Hello World")
}

// FindAll lists products, optionally filtered by category and paginated with page/limit.
func (h *Handler) FindAll(w http.ResponseWriter, r *http.Request) error {
	filter := service.ListFilter{
		Category: r.URL.Query().Get("category"),
		Page:     web.QueryIntOrDefault(r, "page", web.Gt(0), 1),
		Limit:    web.QueryIntOrDefault(r, "limit", web.Gt(0), 0),
	}
	h.logger.DebugContext(r.Context(), "Received request to find all products", "category", filter.Category, "page", filter.Page, "limit", filter.Limit)
	page, err := h.service.FindAll(r.Context(), filter)
	if err != nil {
		return err
	}
	h.logger.DebugContext(r.Context(), "Successfully retrieved product list", "total", page.Total, "count", len(page.Data))
	web.RespondJSON(w, h.logger, http.StatusOK, page)
	return nil
}

// FindByID retrieves a product by its ID.
func (h *Handler) FindByID(w http.ResponseWriter, r *http.Request) error {
	id := pathID(r)
	h.logger.DebugContext(r.Context(), "Received request to find product by ID", "ID", id)
	found, err := h.service.FindByID(r.Context(), id)
	if err != nil {
		return err
	}
	web.RespondJSON(w, h.logger, http.StatusOK, found)
	return nil
}

// Create handles the creation of a new product.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) error {
	input, err := h.decodeProduct(w, r)
	if err != nil {
		return err
	}
	created, err := h.service.Create(r.Context(), input)
	if err != nil {
		return err
	}
	h.logger.InfoContext(r.Context(), "Product created successfully", "ID", created.ID, "Name", created.Name)
	web.RespondJSON(w, h.logger, http.StatusCreated, created)
	return nil
}

// Update replaces the known fields of a product and merges any extra fields.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) error {
	id := pathID(r)
	h.logger.DebugContext(r.Context(), "Received request to update product", "ID", id)
	input, err := h.decodeProduct(w, r)
	if err != nil {
		return err
	}
	updated, err := h.service.Update(r.Context(), id, input)
	if err != nil {
		return err
	}
	h.logger.InfoContext(r.Context(), "Product updated successfully", "ID", updated.ID, "Name", updated.Name)
	web.RespondJSON(w, h.logger, http.StatusOK, updated)
	return nil
}

// DeleteByID deletes a product by its ID and returns the removed product.
func (h *Handler) DeleteByID(w http.ResponseWriter, r *http.Request) error {
	id := pathID(r)
	removed, err := h.service.DeleteByID(r.Context(), id)
	if err != nil {
		return err
	}
	h.logger.InfoContext(r.Context(), "Product deleted successfully", "ID", id)
	web.RespondJSON(w, h.logger, http.StatusOK, removed)
	return nil
}

// Search returns products whose name contains the "name" query parameter, ignoring case.
// A missing parameter matches every product.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) error {
	result, err := h.service.Search(r.Context(), r.URL.Query().Get("name"))
	if err != nil {
		return err
	}
	web.RespondJSON(w, h.logger, http.StatusOK, result)
	return nil
}

// Stats returns the product count per category.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) error {
	stats, err := h.service.Stats(r.Context())
	if err != nil {
		return err
	}
	web.RespondJSON(w, h.logger, http.StatusOK, stats)
	return nil
}

// HealthCheck reports liveness and the current number of products.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) error {
	count, err := h.service.Count(r.Context())
	if err != nil {
		return err
	}
	web.RespondJSON(w, h.logger, http.StatusOK, map[string]any{"status": "ok", "products": count})
	return nil
}

// decodeProduct reads and validates a product payload. Every failure is an InvalidPayload error.
func (h *Handler) decodeProduct(w http.ResponseWriter, r *http.Request) (service.ProductInput, error) {
	var input service.ProductInput
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(&input); err != nil {
		h.logger.WarnContext(r.Context(), "Error decoding request body", "error", err)
		if producterrors.KindOf(err) == producterrors.KindInvalidPayload {
			return input, err
		}
		return input, producterrors.ErrInvalidProduct
	}
	// the body must hold exactly one JSON value
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		h.logger.WarnContext(r.Context(), "Unexpected data after request body", "error", err)
		return service.ProductInput{}, producterrors.ErrInvalidProduct
	}

	if err := h.validate.Struct(input); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			errorResponse := make(map[string]string)
			for _, fieldErr := range validationErrors {
				// fieldErr.Tag() returns "required", "min", etc.
				errorResponse[fieldErr.Field()] = "failed on rule: " + fieldErr.Tag()
			}
			h.logger.WarnContext(r.Context(), "Validation errors occurred", "errors", errorResponse)
		} else {
			h.logger.ErrorContext(r.Context(), "Error validating request body", "error", err)
		}
		return input, producterrors.ErrInvalidProduct
	}
	return input, nil
}

// pathID returns the {id} path parameter.
func pathID(r *http.Request) string {
	if id := chi.URLParam(r, "id"); id != "" {
		return id
	}
	return r.PathValue("id")
}
