package query

import (
	"context"

	"github.com/tair/product-catalog/internal/product/domain"
)

// GetStatsQuery represents the query to get product statistics
type GetStatsQuery struct{}

// GetStatsHandler handles get stats query
type GetStatsHandler struct {
	uow domain.UnitOfWork
}

// NewGetStatsHandler creates a new get stats handler
func NewGetStatsHandler(uow domain.UnitOfWork) *GetStatsHandler {
	return &GetStatsHandler{uow: uow}
}

// Handle executes the get stats query
func (h *GetStatsHandler) Handle(ctx context.Context, _ GetStatsQuery) (*domain.ProductStats, error) {
	var counts map[domain.Status]int64
	err := h.uow.WithinReadOnly(ctx, func(ctx context.Context, repo domain.ProductRepository) error {
		var err error
		counts, err = repo.CountByStatus(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}

	stats := &domain.ProductStats{
		ActiveProducts:   counts[domain.StatusActive],
		InactiveProducts: counts[domain.StatusInactive],
	}
	stats.TotalProducts = stats.ActiveProducts + stats.InactiveProducts
	return stats, nil
}
