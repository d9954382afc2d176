package command

import (
	"context"
	"time"

	"github.com/tair/product-catalog/internal/product/domain"
	"github.com/tair/product-catalog/pkg/logger"
)

// Clock returns the current time
type Clock func() time.Time

// publishAfterCommit emits the event for a change that is already durable.
// Delivery failures are logged, not returned.
func publishAfterCommit(ctx context.Context, publisher domain.EventPublisher, eventType string, product *domain.Product) {
	if publisher == nil {
		return
	}

	event := domain.NewProductEvent(eventType, product)
	if err := publisher.Publish(ctx, event); err != nil {
		logger.Warn(ctx).
			Err(err).
			Str("event_type", eventType).
			Uint("product_id", product.ID).
			Msg("Failed to publish product event")
	}
}

func invalidate(ctx context.Context, cache domain.ProductCache, id uint) {
	if cache != nil {
		cache.Invalidate(ctx, id)
	}
}
