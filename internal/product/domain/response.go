package domain

import "time"

// ProductResponse is the externally visible representation of a product.
// It mirrors the entity field for field.
type ProductResponse struct {
	ID               uint       `json:"id"`
	SKU              string     `json:"sku"`
	Name             string     `json:"name"`
	Description      *string    `json:"description"`
	Status           Status     `json:"status"`
	DiscontinuedAt   *time.Time `json:"discontinued_at"`
	DiscontinuedNote *string    `json:"discontinued_note"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// NewProductResponse converts an entity into its response form
func NewProductResponse(p *Product) *ProductResponse {
	return &ProductResponse{
		ID:               p.ID,
		SKU:              p.SKU,
		Name:             p.Name,
		Description:      copyString(p.Description),
		Status:           p.Status,
		DiscontinuedAt:   copyTime(p.DiscontinuedAt),
		DiscontinuedNote: copyString(p.DiscontinuedNote),
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
}

// NewProductResponses converts a slice of entities
func NewProductResponses(products []Product) []ProductResponse {
	out := make([]ProductResponse, 0, len(products))
	for i := range products {
		out = append(out, *NewProductResponse(&products[i]))
	}
	return out
}

// ProductStats summarises the catalog
type ProductStats struct {
	TotalProducts    int64 `json:"total_products"`
	ActiveProducts   int64 `json:"active_products"`
	InactiveProducts int64 `json:"inactive_products"`
}

func copyString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
