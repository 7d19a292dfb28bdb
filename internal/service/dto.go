package service

import (
	"encoding/json"
	"fmt"

	producterrors "github.com/abgdnv/productcatalog/internal/errors"
	"github.com/abgdnv/productcatalog/internal/store"
)

// ProductDto represents the data transfer object for a product.
// Extra fields are flattened into the top-level JSON object.
type ProductDto struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Price       float64        `json:"price"`
	Category    string         `json:"category"`
	InStock     bool           `json:"inStock"`
	Extra       map[string]any `json:"-"`
}

// MarshalJSON writes the known fields and the extra fields as one object.
// Known fields win over extra fields with the same key.
func (p ProductDto) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(p.Extra)+6)
	for k, v := range p.Extra {
		out[k] = v
	}
	out["id"] = p.ID
	out["name"] = p.Name
	out["description"] = p.Description
	out["price"] = p.Price
	out["category"] = p.Category
	out["inStock"] = p.InStock
	return json.Marshal(out)
}

// ProductPage is a paginated product listing. Total counts the filtered products before pagination.
type ProductPage struct {
	Total int          `json:"total"`
	Data  []ProductDto `json:"data"`
}

// ListFilter selects and paginates products.
// Page and Limit values below 1 mean "use the default" (first page, everything on one page).
type ListFilter struct {
	Category string
	Page     int
	Limit    int
}

// ProductInput is the payload for creating or updating a product.
// Known fields are decoded with their Go types, so a mistyped value fails decoding;
// everything else lands in Extra. A client-supplied "id" is ignored.
type ProductInput struct {
	Name        *string        `json:"name" validate:"required,min=1"`
	Description *string        `json:"description" validate:"required,min=1"`
	Price       *float64       `json:"price" validate:"required"`
	Category    *string        `json:"category" validate:"required,min=1"`
	InStock     *bool          `json:"inStock" validate:"required"`
	Extra       map[string]any `json:"-" validate:"-"`
}

// UnmarshalJSON decodes a JSON object into the input. Non-object bodies and
// known fields of the wrong type are rejected with an InvalidPayload error.
func (in *ProductInput) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return producterrors.InvalidPayload("Request body must be a JSON object")
	}
	if raw == nil {
		return producterrors.InvalidPayload("Request body must be a JSON object")
	}

	*in = ProductInput{}
	fields := map[string]any{
		"name":        &in.Name,
		"description": &in.Description,
		"price":       &in.Price,
		"category":    &in.Category,
		"inStock":     &in.InStock,
	}
	for key, value := range raw {
		if key == "id" {
			continue
		}
		if target, ok := fields[key]; ok {
			if err := json.Unmarshal(value, target); err != nil {
				return producterrors.InvalidPayload(fmt.Sprintf("Invalid type for field %q", key))
			}
			continue
		}
		var v any
		if err := json.Unmarshal(value, &v); err != nil {
			return producterrors.InvalidPayload(fmt.Sprintf("Invalid value for field %q", key))
		}
		if in.Extra == nil {
			in.Extra = make(map[string]any)
		}
		in.Extra[key] = v
	}
	return nil
}

// toPatch converts the input into a store patch.
func (in ProductInput) toPatch() store.Patch {
	return store.Patch{
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		Category:    in.Category,
		InStock:     in.InStock,
		Extra:       in.Extra,
	}
}

// toDto converts a store.Product to a ProductDto.
func toDto(product *store.Product) *ProductDto {
	return &ProductDto{
		ID:          product.ID,
		Name:        product.Name,
		Description: product.Description,
		Price:       product.Price,
		Category:    product.Category,
		InStock:     product.InStock,
		Extra:       product.Extra,
	}
}
