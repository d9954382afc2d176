package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/tair/product-catalog/internal/product/domain"
	"github.com/tair/product-catalog/pkg/logger"
)

// Error categories
const (
	CategoryNotFound   = "Resource Not Found"
	CategoryValidation = "Validation Error"
	CategoryInternal   = "Internal Server Error"
)

const internalErrorMessage = "An unexpected error occurred"

var errPanic = errors.New("handler panicked")

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	RequestID   string              `json:"request_id"`
	Timestamp   time.Time           `json:"timestamp"`
	Error       string              `json:"error"`
	Message     string              `json:"message"`
	FieldErrors []domain.FieldError `json:"field_errors,omitempty"`
	Path        string              `json:"path"`
}

// MapError translates a service error into a status code and the
// transport-independent part of the error body.
func MapError(err error) (int, ErrorResponse) {
	var verr *domain.ValidationError
	switch {
	case errors.Is(err, domain.ErrProductNotFound):
		return http.StatusNotFound, ErrorResponse{
			Error:   CategoryNotFound,
			Message: err.Error(),
		}
	case errors.As(err, &verr):
		return http.StatusBadRequest, ErrorResponse{
			Error:       CategoryValidation,
			Message:     verr.Message,
			FieldErrors: verr.Fields,
		}
	default:
		return http.StatusInternalServerError, ErrorResponse{
			Error:   CategoryInternal,
			Message: internalErrorMessage,
		}
	}
}

// respondError maps err and writes the full error body
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	status, body := MapError(err)

	ctx := r.Context()
	if status >= http.StatusInternalServerError {
		logger.Error(ctx).Err(err).Str("path", r.URL.Path).Msg("Unexpected error occurred")
	} else {
		logger.Warn(ctx).Err(err).Str("path", r.URL.Path).Msg("Request rejected")
	}

	body.RequestID = logger.RequestIDFromContext(ctx)
	body.Timestamp = time.Now()
	body.Path = r.URL.Path

	respondJSON(w, status, body)
}
