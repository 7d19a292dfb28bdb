// Package messaging defines the event publishing contract used by services.
package messaging

import (
	"context"
)

// Subjects for product change events. ProductsWildcardSubject matches all of them.
const (
	ProductsCreatedSubject  = "products.created"
	ProductsUpdatedSubject  = "products.updated"
	ProductsDeletedSubject  = "products.deleted"
	ProductsWildcardSubject = "products.>"
)

type Event interface {
	Subject() string
	Payload() ([]byte, error)
}

// Identified is implemented by events that carry a unique ID, used for publisher-side deduplication.
type Identified interface {
	EventID() string
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// NopPublisher discards every event. It is used when event publishing is disabled.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error {
	return nil
}
