package events

import (
	"encoding/json"
	"time"

	"github.com/abgdnv/productcatalog/pkg/messaging"
	"github.com/google/uuid"
)

// Product change actions.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// ProductChangedEvent is published after a product is created, updated or deleted.
type ProductChangedEvent struct {
	ID         uuid.UUID `json:"event_id"`
	Action     string    `json:"action"`
	ProductID  string    `json:"product_id"`
	Name       string    `json:"name"`
	Category   string    `json:"category"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewProductChangedEvent creates an event for the given action with a fresh event ID.
func NewProductChangedEvent(action, productID, name, category string) ProductChangedEvent {
	return ProductChangedEvent{
		ID:         uuid.New(),
		Action:     action,
		ProductID:  productID,
		Name:       name,
		Category:   category,
		OccurredAt: time.Now().UTC(),
	}
}

func (e ProductChangedEvent) Subject() string {
	switch e.Action {
	case ActionCreated:
		return messaging.ProductsCreatedSubject
	case ActionDeleted:
		return messaging.ProductsDeletedSubject
	default:
		return messaging.ProductsUpdatedSubject
	}
}

func (e ProductChangedEvent) Payload() ([]byte, error) {
	return json.Marshal(e)
}

func (e ProductChangedEvent) EventID() string {
	return e.ID.String()
}
