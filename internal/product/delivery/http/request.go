package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/tair/product-catalog/internal/product/domain"
	"github.com/tair/product-catalog/internal/product/usecase/command"
	"github.com/tair/product-catalog/internal/product/usecase/query"
)

const maxBodyBytes = 1 << 20

// CreateProductRequest is the body of POST /api/products
type CreateProductRequest struct {
	SKU         string  `json:"sku"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
}

// UpdateProductRequest is the body of PUT /api/products/{id}.
// Omitted and null fields are left unchanged.
type UpdateProductRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
}

// DiscontinueProductRequest is the body of POST /api/products/{id}/discontinue
type DiscontinueProductRequest struct {
	Note string `json:"note"`
}

func (req CreateProductRequest) toCommand() (command.CreateProductCommand, error) {
	var fields domain.FieldErrors
	fields.Add(domain.ValidateSKU(req.SKU))
	fields.Add(domain.ValidateName(req.Name))
	if req.Description != nil {
		fields.Add(domain.ValidateDescription(*req.Description))
	}
	status, fe := parseOptionalStatus(req.Status)
	fields.Add(fe)
	if err := fields.Err(); err != nil {
		return command.CreateProductCommand{}, err
	}

	return command.CreateProductCommand{
		SKU:         req.SKU,
		Name:        req.Name,
		Description: req.Description,
		Status:      status,
	}, nil
}

func (req UpdateProductRequest) toCommand(id uint) (command.UpdateProductCommand, error) {
	var fields domain.FieldErrors
	if req.Name != nil {
		fields.Add(domain.ValidateName(*req.Name))
	}
	if req.Description != nil {
		fields.Add(domain.ValidateDescription(*req.Description))
	}
	status, fe := parseOptionalStatus(req.Status)
	fields.Add(fe)
	if err := fields.Err(); err != nil {
		return command.UpdateProductCommand{}, err
	}

	return command.UpdateProductCommand{
		ID:          id,
		Name:        req.Name,
		Description: req.Description,
		Status:      status,
	}, nil
}

func (req DiscontinueProductRequest) toCommand(id uint) (command.DiscontinueProductCommand, error) {
	var fields domain.FieldErrors
	fields.Add(domain.ValidateNote(req.Note))
	if err := fields.Err(); err != nil {
		return command.DiscontinueProductCommand{}, err
	}
	return command.DiscontinueProductCommand{ID: id, Note: req.Note}, nil
}

func parseOptionalStatus(raw *string) (*domain.Status, *domain.FieldError) {
	if raw == nil {
		return nil, nil
	}
	status, err := domain.ParseStatus(*raw)
	if err != nil {
		return nil, &domain.FieldError{Field: "status", Message: "status must be ACTIVE or INACTIVE", RejectedValue: *raw}
	}
	return &status, nil
}

// decodeBody reads a JSON body into dst
func decodeBody(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return domain.NewValidationError("Request body is required")
		}
		return domain.NewValidationError("Invalid request body")
	}
	return nil
}

// productID parses the {id} route variable
func productID(r *http.Request) (uint, error) {
	raw := mux.Vars(r)["id"]
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, domain.NewFieldValidationError("id", "Invalid product ID", raw)
	}
	return uint(id), nil
}

// listQuery parses the query string of GET /api/products
func listQuery(r *http.Request) (query.ListProductsQuery, error) {
	values := r.URL.Query()
	var (
		q      query.ListProductsQuery
		fields domain.FieldErrors
	)

	if raw := values.Get("status"); raw != "" {
		status, fe := parseOptionalStatus(&raw)
		fields.Add(fe)
		q.Status = status
	}
	if raw := values.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			fields = append(fields, domain.FieldError{Field: "limit", Message: "limit must be a non-negative integer", RejectedValue: raw})
		}
		q.Limit = limit
	}
	if raw := values.Get("offset"); raw != "" {
		offset, err := strconv.Atoi(raw)
		if err != nil || offset < 0 {
			fields = append(fields, domain.FieldError{Field: "offset", Message: "offset must be a non-negative integer", RejectedValue: raw})
		}
		q.Offset = offset
	}

	return q, fields.Err()
}
