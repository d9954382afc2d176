//go:build wireinject
// +build wireinject

package product

import (
	"github.com/google/wire"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"

	"github.com/tair/product-catalog/internal/product/delivery/http"
	"github.com/tair/product-catalog/internal/product/domain"
)

// InitializeHTTPHandler initializes HTTP handler with all dependencies
func InitializeHTTPHandler(
	db *gorm.DB,
	publisher domain.EventPublisher,
	cache domain.ProductCache,
	reg prometheus.Registerer,
) (*http.ProductHandler, error) {
	wire.Build(AllHandlersSet)
	return nil, nil
}
