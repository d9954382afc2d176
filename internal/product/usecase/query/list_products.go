package query

import (
	"context"

	"github.com/tair/product-catalog/internal/product/domain"
)

// ListProductsQuery represents the query to list products.
// Status is optional; Limit 0 returns every matching product.
type ListProductsQuery struct {
	Status *domain.Status
	Limit  int
	Offset int
}

// ListProductsHandler handles list products query
type ListProductsHandler struct {
	uow domain.UnitOfWork
}

// NewListProductsHandler creates a new list products handler
func NewListProductsHandler(uow domain.UnitOfWork) *ListProductsHandler {
	return &ListProductsHandler{uow: uow}
}

// Handle executes the list products query. Results are ordered by id.
func (h *ListProductsHandler) Handle(ctx context.Context, query ListProductsQuery) ([]domain.ProductResponse, error) {
	var fields domain.FieldErrors
	if query.Limit < 0 {
		fields = append(fields, domain.FieldError{Field: "limit", Message: "limit cannot be negative", RejectedValue: query.Limit})
	}
	if query.Offset < 0 {
		fields = append(fields, domain.FieldError{Field: "offset", Message: "offset cannot be negative", RejectedValue: query.Offset})
	}
	if query.Status != nil && !query.Status.Valid() {
		fields = append(fields, domain.FieldError{Field: "status", Message: "status must be ACTIVE or INACTIVE", RejectedValue: string(*query.Status)})
	}
	if err := fields.Err(); err != nil {
		return nil, err
	}

	var products []domain.Product
	err := h.uow.WithinReadOnly(ctx, func(ctx context.Context, repo domain.ProductRepository) error {
		var err error
		products, err = repo.FindAll(ctx, domain.ListFilter{
			Status: query.Status,
			Limit:  query.Limit,
			Offset: query.Offset,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	return domain.NewProductResponses(products), nil
}
