package command

import (
	"context"
	"errors"

	"github.com/tair/product-catalog/internal/product/domain"
	"github.com/tair/product-catalog/pkg/logger"
)

// CreateProductCommand represents the command to create a new product.
// A nil Description or Status means the field was not supplied.
type CreateProductCommand struct {
	SKU         string
	Name        string
	Description *string
	Status      *domain.Status
}

// Validate checks the command independently of any transport validation
func (cmd CreateProductCommand) Validate() error {
	var fields domain.FieldErrors
	fields.Add(domain.ValidateSKU(cmd.SKU))
	fields.Add(domain.ValidateName(cmd.Name))
	if cmd.Description != nil {
		fields.Add(domain.ValidateDescription(*cmd.Description))
	}
	if cmd.Status != nil && !cmd.Status.Valid() {
		fields = append(fields, domain.FieldError{Field: "status", Message: "status must be ACTIVE or INACTIVE", RejectedValue: string(*cmd.Status)})
	}
	return fields.Err()
}

// CreateProductHandler handles product creation command
type CreateProductHandler struct {
	uow       domain.UnitOfWork
	publisher domain.EventPublisher
}

// NewCreateProductHandler creates a new create product handler
func NewCreateProductHandler(uow domain.UnitOfWork, publisher domain.EventPublisher) *CreateProductHandler {
	return &CreateProductHandler{uow: uow, publisher: publisher}
}

// Handle executes the create product command
func (h *CreateProductHandler) Handle(ctx context.Context, cmd CreateProductCommand) (*domain.ProductResponse, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	status := domain.StatusActive
	if cmd.Status != nil {
		status = *cmd.Status
	}

	product := &domain.Product{
		SKU:    cmd.SKU,
		Name:   cmd.Name,
		Status: status,
	}
	if cmd.Description != nil {
		description := *cmd.Description
		product.Description = &description
	}

	err := h.uow.Within(ctx, func(ctx context.Context, repo domain.ProductRepository) error {
		// Check if SKU already exists
		existing, err := repo.FindBySKU(ctx, cmd.SKU)
		if err != nil && !errors.Is(err, domain.ErrProductNotFound) {
			return err
		}
		if existing != nil {
			return domain.NewDuplicateSKUError(cmd.SKU)
		}

		return repo.Create(ctx, product)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx).
		Uint("product_id", product.ID).
		Str("sku", product.SKU).
		Str("status", string(product.Status)).
		Msg("Product created")

	publishAfterCommit(ctx, h.publisher, domain.EventTypeProductCreated, product)
	return domain.NewProductResponse(product), nil
}
