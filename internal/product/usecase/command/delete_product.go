package command

import (
	"context"

	"github.com/tair/product-catalog/internal/product/domain"
	"github.com/tair/product-catalog/pkg/logger"
)

// DeleteProductCommand represents the command to delete a product
type DeleteProductCommand struct {
	ID uint
}

// DeleteProductHandler handles product deletion command
type DeleteProductHandler struct {
	uow       domain.UnitOfWork
	publisher domain.EventPublisher
	cache     domain.ProductCache
}

// NewDeleteProductHandler creates a new delete product handler
func NewDeleteProductHandler(uow domain.UnitOfWork, publisher domain.EventPublisher, cache domain.ProductCache) *DeleteProductHandler {
	return &DeleteProductHandler{uow: uow, publisher: publisher, cache: cache}
}

// Handle executes the delete product command. Any status may be deleted.
func (h *DeleteProductHandler) Handle(ctx context.Context, cmd DeleteProductCommand) error {
	var product *domain.Product
	err := h.uow.Within(ctx, func(ctx context.Context, repo domain.ProductRepository) error {
		// Check if product exists
		var err error
		product, err = repo.FindByIDForUpdate(ctx, cmd.ID)
		if err != nil {
			return err
		}

		return repo.Delete(ctx, cmd.ID)
	})
	if err != nil {
		return err
	}

	logger.Info(ctx).
		Uint("product_id", cmd.ID).
		Str("sku", product.SKU).
		Msg("Product deleted")

	invalidate(ctx, h.cache, cmd.ID)
	publishAfterCommit(ctx, h.publisher, domain.EventTypeProductDeleted, product)
	return nil
}
