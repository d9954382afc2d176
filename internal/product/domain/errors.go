package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrProductNotFound is returned when a product id or sku does not exist
	ErrProductNotFound = errors.New("product not found")

	// ErrValidation is matched by every ValidationError
	ErrValidation = errors.New("validation failed")
)

// MessageDuplicateSKU is the validation message for a sku that is already taken
const MessageDuplicateSKU = "duplicate sku"

// NotFoundError carries the id that could not be found
type NotFoundError struct {
	ID uint
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("product not found: id=%d", e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrProductNotFound
}

// NewNotFoundError creates a not found error for id
func NewNotFoundError(id uint) error {
	return &NotFoundError{ID: id}
}

// FieldError describes a single rejected input field
type FieldError struct {
	Field         string      `json:"field"`
	Message       string      `json:"message"`
	RejectedValue interface{} `json:"rejected_value"`
}

// ValidationError is a business rule or input violation
type ValidationError struct {
	Message string
	Fields  []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}

	var b strings.Builder
	b.WriteString(e.Message)
	for i, f := range e.Fields {
		if i == 0 {
			b.WriteString(": ")
		} else {
			b.WriteString("; ")
		}
		b.WriteString(f.Field)
		b.WriteString(" ")
		b.WriteString(f.Message)
	}
	return b.String()
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// NewValidationError creates a validation error without field details
func NewValidationError(message string) error {
	return &ValidationError{Message: message}
}

// NewFieldValidationError creates a validation error for one field
func NewFieldValidationError(field, message string, rejected interface{}) error {
	return &ValidationError{
		Message: message,
		Fields:  []FieldError{{Field: field, Message: message, RejectedValue: rejected}},
	}
}

// NewDuplicateSKUError reports a sku that already belongs to another product
func NewDuplicateSKUError(sku string) error {
	return &ValidationError{
		Message: MessageDuplicateSKU,
		Fields:  []FieldError{{Field: "sku", Message: MessageDuplicateSKU, RejectedValue: sku}},
	}
}

// FieldErrors collects field errors and turns them into one ValidationError
type FieldErrors []FieldError

// Add appends fe when it is not nil
func (fs *FieldErrors) Add(fe *FieldError) {
	if fe != nil {
		*fs = append(*fs, *fe)
	}
}

// Err returns nil when nothing was collected
func (fs FieldErrors) Err() error {
	if len(fs) == 0 {
		return nil
	}
	return &ValidationError{Message: "invalid input", Fields: fs}
}
