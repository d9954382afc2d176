package command

import (
	"context"

	"github.com/tair/product-catalog/internal/product/domain"
	"github.com/tair/product-catalog/pkg/logger"
)

// UpdateProductCommand represents a partial update. Only non-nil fields are
// applied; the sku cannot be changed.
type UpdateProductCommand struct {
	ID          uint
	Name        *string
	Description *string
	Status      *domain.Status
}

// Validate checks the supplied fields
func (cmd UpdateProductCommand) Validate() error {
	var fields domain.FieldErrors
	if cmd.Name != nil {
		fields.Add(domain.ValidateName(*cmd.Name))
	}
	if cmd.Description != nil {
		fields.Add(domain.ValidateDescription(*cmd.Description))
	}
	if cmd.Status != nil && !cmd.Status.Valid() {
		fields = append(fields, domain.FieldError{Field: "status", Message: "status must be ACTIVE or INACTIVE", RejectedValue: string(*cmd.Status)})
	}
	return fields.Err()
}

// UpdateProductHandler handles product update command
type UpdateProductHandler struct {
	uow       domain.UnitOfWork
	publisher domain.EventPublisher
	cache     domain.ProductCache
}

// NewUpdateProductHandler creates a new update product handler
func NewUpdateProductHandler(uow domain.UnitOfWork, publisher domain.EventPublisher, cache domain.ProductCache) *UpdateProductHandler {
	return &UpdateProductHandler{uow: uow, publisher: publisher, cache: cache}
}

// Handle executes the update product command
func (h *UpdateProductHandler) Handle(ctx context.Context, cmd UpdateProductCommand) (*domain.ProductResponse, error) {
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

		if cmd.Name != nil {
			product.Name = *cmd.Name
		}
		if cmd.Description != nil {
			description := *cmd.Description
			product.Description = &description
		}
		if cmd.Status != nil {
			product.SetStatus(*cmd.Status)
		}

		return repo.Update(ctx, product)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx).
		Uint("product_id", product.ID).
		Str("sku", product.SKU).
		Str("status", string(product.Status)).
		Msg("Product updated")

	invalidate(ctx, h.cache, product.ID)
	publishAfterCommit(ctx, h.publisher, domain.EventTypeProductUpdated, product)
	return domain.NewProductResponse(product), nil
}
