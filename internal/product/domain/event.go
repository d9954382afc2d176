package domain

import (
	"context"
	"time"
)

// Event types
const (
	EventTypeProductCreated      = "product.created"
	EventTypeProductUpdated      = "product.updated"
	EventTypeProductDiscontinued = "product.discontinued"
	EventTypeProductDeleted      = "product.deleted"
)

// ProductEvent is emitted after a product change has been committed
type ProductEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	ProductID uint      `json:"product_id"`
	SKU       string    `json:"sku"`
	Status    Status    `json:"status,omitempty"`
	Note      string    `json:"note,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewProductEvent builds an event of the given type from the product state
func NewProductEvent(eventType string, p *Product) ProductEvent {
	event := ProductEvent{
		EventType: eventType,
		ProductID: p.ID,
		SKU:       p.SKU,
		Status:    p.Status,
	}
	if p.DiscontinuedNote != nil {
		event.Note = *p.DiscontinuedNote
	}
	return event
}

// EventPublisher delivers product events to interested consumers
type EventPublisher interface {
	Publish(ctx context.Context, event ProductEvent) error
}

// ProductCache caches product representations by id.
//
// Get reports the id's invalidation version alongside a miss. Set only stores
// the product when that version is still current, so a read that raced with a
// committed write and its Invalidate cannot repopulate the cache with the old
// row.
type ProductCache interface {
	Get(ctx context.Context, id uint) (product *ProductResponse, version uint64, ok bool)
	Set(ctx context.Context, product *ProductResponse, version uint64)
	Invalidate(ctx context.Context, id uint)
}

// NoopPublisher drops every event
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, ProductEvent) error { return nil }

// NoopCache never holds anything
type NoopCache struct{}

func (NoopCache) Get(context.Context, uint) (*ProductResponse, uint64, bool) { return nil, 0, false }
func (NoopCache) Set(context.Context, *ProductResponse, uint64)             {}
func (NoopCache) Invalidate(context.Context, uint)                          {}
