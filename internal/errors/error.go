// Package errors provides the domain error kinds for product-related operations.
package errors

import "errors"

// Kind classifies a domain error. The transport layer maps each kind to a status code.
type Kind int

const (
	KindUnclassified Kind = iota
	KindNotFound
	KindInvalidPayload
	KindUnauthorized
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindInvalidPayload:
		return "invalid_payload"
	case KindUnauthorized:
		return "unauthorized"
	default:
		return "unclassified"
	}
}

// ErrProductNotFound is returned when no product has the requested ID.
var ErrProductNotFound = NotFound("Product not found")

// ErrInvalidProduct is returned for a product payload that cannot be decoded or fails validation.
var ErrInvalidProduct = InvalidPayload("Invalid product fields")

// ErrUnauthorized is returned when the API key is missing or wrong.
var ErrUnauthorized = New(KindUnauthorized, "Unauthorized")

// Error is a domain error carrying its kind and a message that is safe to show to clients.
type Error struct {
	Kind    Kind
	Message string
}

// New creates a domain error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// NotFound creates a NotFound error with the given message.
func NotFound(message string) *Error {
	return New(KindNotFound, message)
}

// InvalidPayload creates an InvalidPayload error with the given message.
func InvalidPayload(message string) *Error {
	return New(KindInvalidPayload, message)
}

func (e *Error) Error() string {
	return e.Message
}

// Is matches any domain error of the same kind,
// so errors.Is(err, ErrProductNotFound) holds for every NotFound error.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

// KindOf returns the kind of the first domain error in the chain of err.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnclassified
}
