package query

import (
	"context"

	"github.com/tair/product-catalog/internal/product/domain"
)

// GetProductQuery represents the query to get a product by ID
type GetProductQuery struct {
	ID uint
}

// GetProductHandler handles get product query
type GetProductHandler struct {
	uow   domain.UnitOfWork
	cache domain.ProductCache
}

// NewGetProductHandler creates a new get product handler
func NewGetProductHandler(uow domain.UnitOfWork, cache domain.ProductCache) *GetProductHandler {
	return &GetProductHandler{uow: uow, cache: cache}
}

// Handle executes the get product query
func (h *GetProductHandler) Handle(ctx context.Context, query GetProductQuery) (*domain.ProductResponse, error) {
	var version uint64
	if h.cache != nil {
		cached, v, ok := h.cache.Get(ctx, query.ID)
		if ok {
			return cached, nil
		}
		version = v
	}

	var product *domain.Product
	err := h.uow.WithinReadOnly(ctx, func(ctx context.Context, repo domain.ProductRepository) error {
		var err error
		product, err = repo.FindByID(ctx, query.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	resp := domain.NewProductResponse(product)
	if h.cache != nil {
		h.cache.Set(ctx, resp, version)
	}
	return resp, nil
}
