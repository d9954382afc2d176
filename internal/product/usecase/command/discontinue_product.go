package command

import (
	"context"
	"time"

	"github.com/tair/product-catalog/internal/product/domain"
	"github.com/tair/product-catalog/pkg/logger"
)

// DiscontinueProductCommand represents the command to discontinue a product
type DiscontinueProductCommand struct {
	ID   uint
	Note string
}

// Validate checks the discontinue note
func (cmd DiscontinueProductCommand) Validate() error {
	var fields domain.FieldErrors
	fields.Add(domain.ValidateNote(cmd.Note))
	return fields.Err()
}

// DiscontinueProductHandler handles product discontinuation command
type DiscontinueProductHandler struct {
	uow       domain.UnitOfWork
	publisher domain.EventPublisher
	cache     domain.ProductCache
	now       Clock
}

// NewDiscontinueProductHandler creates a new discontinue product handler
func NewDiscontinueProductHandler(uow domain.UnitOfWork, publisher domain.EventPublisher, cache domain.ProductCache) *DiscontinueProductHandler {
	return &DiscontinueProductHandler{uow: uow, publisher: publisher, cache: cache, now: time.Now}
}

// WithClock replaces the time source
func (h *DiscontinueProductHandler) WithClock(clock Clock) *DiscontinueProductHandler {
	h.now = clock
	return h
}

// Handle executes the discontinue product command. Discontinuing an already
// inactive product refreshes the timestamp and note.
func (h *DiscontinueProductHandler) Handle(ctx context.Context, cmd DiscontinueProductCommand) (*domain.ProductResponse, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	var product *domain.Product
	err := h.uow.Within(ctx, func(ctx context.Context, repo domain.ProductRepository) error {
		var err error
		product, err = repo.FindByIDForUpdate(ctx, cmd.ID)
		if err != nil {
			return err
		}

		product.Discontinue(cmd.Note, h.now())
		return repo.Update(ctx, product)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx).
		Uint("product_id", product.ID).
		Str("sku", product.SKU).
		Msg("Product discontinued")

	invalidate(ctx, h.cache, product.ID)
	publishAfterCommit(ctx, h.publisher, domain.EventTypeProductDiscontinued, product)
	return domain.NewProductResponse(product), nil
}
