package http

import (
	"net/http"

	"github.com/gorilla/mux"
)

// RegisterSwaggerDocs registers Swagger documentation routes
// @Summary Swagger documentation
// @Description Swagger API documentation
// @Tags Swagger
// @Success 200 {string} string "Swagger UI"
// @Router /swagger/ [get]
func RegisterSwaggerDocs(router *mux.Router, swaggerHandler http.Handler) {
	router.PathPrefix("/swagger/").Handler(swaggerHandler)
}

// CreateProductDoc godoc
// @Summary Create a new product
// @Description Create a product. Status defaults to ACTIVE. The sku must be unique.
// @Tags Products
// @Accept json
// @Produce json
// @Param request body CreateProductRequest true "Product data"
// @Success 201 {object} domain.ProductResponse
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/products [post]
func (h *ProductHandler) CreateProductDoc() {}

// ListProductsDoc godoc
// @Summary List products
// @Description List products ordered by id, optionally filtered by status
// @Tags Products
// @Produce json
// @Param status query string false "Status filter" Enums(ACTIVE, INACTIVE)
// @Param limit query int false "Limit"
// @Param offset query int false "Offset"
// @Success 200 {array} domain.ProductResponse
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/products [get]
func (h *ProductHandler) ListProductsDoc() {}

// GetProductDoc godoc
// @Summary Get product by ID
// @Tags Products
// @Produce json
// @Param id path int true "Product ID"
// @Success 200 {object} domain.ProductResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/products/{id} [get]
func (h *ProductHandler) GetProductDoc() {}

// UpdateProductDoc godoc
// @Summary Update a product
// @Description Partially update name, description and status. Omitted fields are unchanged. ACTIVE clears discontinuation data.
// @Tags Products
// @Accept json
// @Produce json
// @Param id path int true "Product ID"
// @Param request body UpdateProductRequest true "Fields to change"
// @Success 200 {object} domain.ProductResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/products/{id} [put]
func (h *ProductHandler) UpdateProductDoc() {}

// DiscontinueProductDoc godoc
// @Summary Discontinue a product
// @Description Mark a product INACTIVE with a note and the current time
// @Tags Products
// @Accept json
// @Produce json
// @Param id path int true "Product ID"
// @Param request body DiscontinueProductRequest true "Discontinuation note"
// @Success 200 {object} domain.ProductResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/products/{id}/discontinue [post]
func (h *ProductHandler) DiscontinueProductDoc() {}

// DeleteProductDoc godoc
// @Summary Delete a product
// @Tags Products
// @Param id path int true "Product ID"
// @Success 204
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/products/{id} [delete]
func (h *ProductHandler) DeleteProductDoc() {}

// GetStatsDoc godoc
// @Summary Get product statistics
// @Description Product counts by status
// @Tags Products
// @Produce json
// @Success 200 {object} domain.ProductStats
// @Failure 500 {object} ErrorResponse
// @Router /api/products/stats [get]
func (h *ProductHandler) GetStatsDoc() {}

// HealthCheckDoc godoc
// @Summary Health check
// @Description Check service health and database connectivity
// @Tags Health
// @Produce json
// @Success 200 {object} object{status=string,message=string}
// @Failure 503 {object} object{status=string,error=string}
// @Router /health [get]
func (h *ProductHandler) HealthCheckDoc() {}
