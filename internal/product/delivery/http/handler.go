package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/tair/product-catalog/internal/product/domain"
	"github.com/tair/product-catalog/internal/product/usecase/command"
	"github.com/tair/product-catalog/internal/product/usecase/query"
	"github.com/tair/product-catalog/pkg/logger"
)

// Pinger reports database reachability for the health check
type Pinger interface {
	PingContext(ctx context.Context) error
}

// ProductHandler handles HTTP requests for products using CQRS pattern
type ProductHandler struct {
	// Command handlers
	createHandler      *command.CreateProductHandler
	updateHandler      *command.UpdateProductHandler
	discontinueHandler *command.DiscontinueProductHandler
	deleteHandler      *command.DeleteProductHandler

	// Query handlers
	getProductHandler *query.GetProductHandler
	listHandler       *query.ListProductsHandler
	statsHandler      *query.GetStatsHandler

	metrics *Metrics
}

// NewProductHandler creates a product handler. Used by Wire.
func NewProductHandler(
	createHandler *command.CreateProductHandler,
	updateHandler *command.UpdateProductHandler,
	discontinueHandler *command.DiscontinueProductHandler,
	deleteHandler *command.DeleteProductHandler,
	getProductHandler *query.GetProductHandler,
	listHandler *query.ListProductsHandler,
	statsHandler *query.GetStatsHandler,
	metrics *Metrics,
) *ProductHandler {
	return &ProductHandler{
		createHandler:      createHandler,
		updateHandler:      updateHandler,
		discontinueHandler: discontinueHandler,
		deleteHandler:      deleteHandler,
		getProductHandler:  getProductHandler,
		listHandler:        listHandler,
		statsHandler:       statsHandler,
		metrics:            metrics,
	}
}

// metricsMiddleware wraps handlers with Prometheus metrics
func (h *ProductHandler) metricsMiddleware(endpoint string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()

		h.metrics.requestCounter.WithLabelValues(r.Method, endpoint, strconv.Itoa(rw.statusCode)).Inc()
		h.metrics.requestLatency.WithLabelValues(r.Method, endpoint).Observe(duration)
		h.metrics.requestSummary.WithLabelValues(r.Method, endpoint).Observe(duration)
	}
}

// RegisterRoutes registers the product API. /stats is registered before
// /{id} so it is not captured as an id.
func (h *ProductHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/products", h.metricsMiddleware("/api/products", h.ListProducts)).Methods(http.MethodGet)
	router.HandleFunc("/api/products", h.metricsMiddleware("/api/products", h.CreateProduct)).Methods(http.MethodPost)
	router.HandleFunc("/api/products/stats", h.metricsMiddleware("/api/products/stats", h.GetStats)).Methods(http.MethodGet)
	router.HandleFunc("/api/products/{id}", h.metricsMiddleware("/api/products/{id}", h.GetProduct)).Methods(http.MethodGet)
	router.HandleFunc("/api/products/{id}", h.metricsMiddleware("/api/products/{id}", h.UpdateProduct)).Methods(http.MethodPut)
	router.HandleFunc("/api/products/{id}", h.metricsMiddleware("/api/products/{id}", h.DeleteProduct)).Methods(http.MethodDelete)
	router.HandleFunc("/api/products/{id}/discontinue", h.metricsMiddleware("/api/products/{id}/discontinue", h.DiscontinueProduct)).Methods(http.MethodPost)
}

// CreateProduct handles POST /api/products
func (h *ProductHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req CreateProductRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	cmd, err := req.toCommand()
	if err != nil {
		respondError(w, r, err)
		return
	}

	product, err := h.createHandler.Handle(r.Context(), cmd)
	if err != nil {
		respondError(w, r, err)
		return
	}

	h.updateProductsMetric(r.Context())
	respondJSON(w, http.StatusCreated, product)
}

// ListProducts handles GET /api/products
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	q, err := listQuery(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	products, err := h.listHandler.Handle(r.Context(), q)
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, products)
}

// GetProduct handles GET /api/products/{id}
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := productID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	product, err := h.getProductHandler.Handle(r.Context(), query.GetProductQuery{ID: id})
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, product)
}

// UpdateProduct handles PUT /api/products/{id}
func (h *ProductHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := productID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	var req UpdateProductRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	cmd, err := req.toCommand(id)
	if err != nil {
		respondError(w, r, err)
		return
	}

	product, err := h.updateHandler.Handle(r.Context(), cmd)
	if err != nil {
		respondError(w, r, err)
		return
	}

	h.updateProductsMetric(r.Context())
	respondJSON(w, http.StatusOK, product)
}

// DiscontinueProduct handles POST /api/products/{id}/discontinue
func (h *ProductHandler) DiscontinueProduct(w http.ResponseWriter, r *http.Request) {
	id, err := productID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	var req DiscontinueProductRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	cmd, err := req.toCommand(id)
	if err != nil {
		respondError(w, r, err)
		return
	}

	product, err := h.discontinueHandler.Handle(r.Context(), cmd)
	if err != nil {
		respondError(w, r, err)
		return
	}

	h.updateProductsMetric(r.Context())
	respondJSON(w, http.StatusOK, product)
}

// DeleteProduct handles DELETE /api/products/{id}
func (h *ProductHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := productID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	if err := h.deleteHandler.Handle(r.Context(), command.DeleteProductCommand{ID: id}); err != nil {
		respondError(w, r, err)
		return
	}

	h.updateProductsMetric(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

// GetStats handles GET /api/products/stats
func (h *ProductHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.statsHandler.Handle(r.Context(), query.GetStatsQuery{})
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, stats)
}

// RegisterHealthCheck registers GET /health backed by a database ping
func (h *ProductHandler) RegisterHealthCheck(router *mux.Router, db Pinger) {
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := db.PingContext(ctx); err != nil {
			logger.Warn(r.Context()).Err(err).Msg("Health check failed")
			respondJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "unavailable",
				"error":  "Database unavailable",
			})
			return
		}

		respondJSON(w, http.StatusOK, map[string]string{
			"status":  "ok",
			"message": "Product service is healthy",
		})
	}).Methods(http.MethodGet)
}

// updateProductsMetric refreshes the per-status product gauge
func (h *ProductHandler) updateProductsMetric(ctx context.Context) {
	stats, err := h.statsHandler.Handle(ctx, query.GetStatsQuery{})
	if err != nil {
		logger.Debug(ctx).Err(err).Msg("Failed to refresh products metric")
		return
	}
	h.metrics.totalProducts.WithLabelValues(string(domain.StatusActive)).Set(float64(stats.ActiveProducts))
	h.metrics.totalProducts.WithLabelValues(string(domain.StatusInactive)).Set(float64(stats.InactiveProducts))
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Logger.Error().Err(err).Msg("Failed to encode response")
	}
}
