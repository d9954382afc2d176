// Package product wires the product service together.
package product

import (
	"github.com/google/wire"
	"gorm.io/gorm"

	"github.com/tair/product-catalog/internal/product/delivery/http"
	"github.com/tair/product-catalog/internal/product/domain"
	"github.com/tair/product-catalog/internal/product/repository"
	"github.com/tair/product-catalog/internal/product/usecase/command"
	"github.com/tair/product-catalog/internal/product/usecase/query"
)

// ProvideUnitOfWork provides the transactional product storage
func ProvideUnitOfWork(db *gorm.DB) domain.UnitOfWork {
	return repository.NewGormUnitOfWork(db)
}

// Wire sets
var RepositorySet = wire.NewSet(
	ProvideUnitOfWork,
)

var CommandHandlerSet = wire.NewSet(
	command.NewCreateProductHandler,
	command.NewUpdateProductHandler,
	command.NewDiscontinueProductHandler,
	command.NewDeleteProductHandler,
)

var QueryHandlerSet = wire.NewSet(
	query.NewGetProductHandler,
	query.NewListProductsHandler,
	query.NewGetStatsHandler,
)

var AllHandlersSet = wire.NewSet(
	RepositorySet,
	CommandHandlerSet,
	QueryHandlerSet,
	http.NewMetrics,
	http.NewProductHandler,
)
