package domain

import (
	"strings"
	"time"
)

// Status is the sales state of a product
type Status string

const (
	StatusActive   Status = "ACTIVE"
	StatusInactive Status = "INACTIVE"
)

// Field limits, counted in characters
const (
	MaxSKULength         = 64
	MaxNameLength        = 200
	MaxDescriptionLength = 5000
	MaxNoteLength        = 500
)

// ParseStatus converts the external spelling of a status into a Status
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusActive, StatusInactive:
		return Status(s), nil
	}
	return "", NewFieldValidationError("status", "status must be ACTIVE or INACTIVE", s)
}

// Valid reports whether s is one of the known statuses
func (s Status) Valid() bool {
	return s == StatusActive || s == StatusInactive
}

// Product represents the product entity
type Product struct {
	ID               uint       `json:"id" gorm:"primaryKey"`
	SKU              string     `json:"sku" gorm:"size:64;not null;uniqueIndex"`
	Name             string     `json:"name" gorm:"size:200;not null"`
	Description      *string    `json:"description"`
	Status           Status     `json:"status" gorm:"size:16;not null;default:ACTIVE"`
	DiscontinuedAt   *time.Time `json:"discontinued_at"`
	DiscontinuedNote *string    `json:"discontinued_note" gorm:"size:500"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// TableName specifies the table name
func (Product) TableName() string {
	return "products"
}

// Activate marks the product ACTIVE and drops any discontinue metadata.
// Clearing metadata that is already empty is a no-op.
func (p *Product) Activate() {
	p.Status = StatusActive
	p.DiscontinuedAt = nil
	p.DiscontinuedNote = nil
}

// Deactivate marks the product INACTIVE without touching discontinue metadata
func (p *Product) Deactivate() {
	p.Status = StatusInactive
}

// Discontinue marks the product INACTIVE and records why and when,
// replacing whatever was recorded before.
func (p *Product) Discontinue(note string, at time.Time) {
	p.Status = StatusInactive
	p.DiscontinuedAt = &at
	p.DiscontinuedNote = &note
}

// IsDiscontinued reports whether discontinue metadata is present
func (p *Product) IsDiscontinued() bool {
	return p.DiscontinuedAt != nil
}

// SetStatus applies a status change with its transition rule
func (p *Product) SetStatus(s Status) {
	if s == StatusActive {
		p.Activate()
		return
	}
	p.Deactivate()
}

// ValidateSKU checks a sku for presence and length
func ValidateSKU(sku string) *FieldError {
	if strings.TrimSpace(sku) == "" {
		return &FieldError{Field: "sku", Message: "sku is required", RejectedValue: sku}
	}
	if tooLong(sku, MaxSKULength) {
		return &FieldError{Field: "sku", Message: "sku must be at most 64 characters", RejectedValue: sku}
	}
	return nil
}

// ValidateName checks a name for presence and length
func ValidateName(name string) *FieldError {
	if strings.TrimSpace(name) == "" {
		return &FieldError{Field: "name", Message: "name is required", RejectedValue: name}
	}
	if tooLong(name, MaxNameLength) {
		return &FieldError{Field: "name", Message: "name must be at most 200 characters", RejectedValue: name}
	}
	return nil
}

// ValidateDescription checks the optional description length
func ValidateDescription(description string) *FieldError {
	if tooLong(description, MaxDescriptionLength) {
		return &FieldError{Field: "description", Message: "description must be at most 5000 characters", RejectedValue: description}
	}
	return nil
}

// ValidateNote checks a discontinue note for presence and length
func ValidateNote(note string) *FieldError {
	if strings.TrimSpace(note) == "" {
		return &FieldError{Field: "note", Message: "note is required", RejectedValue: note}
	}
	if tooLong(note, MaxNoteLength) {
		return &FieldError{Field: "note", Message: "note must be at most 500 characters", RejectedValue: note}
	}
	return nil
}

func tooLong(s string, max int) bool {
	return len([]rune(s)) > max
}
