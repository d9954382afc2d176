package domain

import "context"

// ListFilter narrows FindAll. A nil Status lists every product; Limit 0 means no limit.
type ListFilter struct {
	Status *Status
	Limit  int
	Offset int
}

// ProductRepository defines the contract for product data access
type ProductRepository interface {
	FindByID(ctx context.Context, id uint) (*Product, error)
	// FindByIDForUpdate loads the product and locks its row until the transaction ends
	FindByIDForUpdate(ctx context.Context, id uint) (*Product, error)
	FindBySKU(ctx context.Context, sku string) (*Product, error)
	FindAll(ctx context.Context, filter ListFilter) ([]Product, error)
	Create(ctx context.Context, product *Product) error
	// Update and Delete return a NotFoundError when the row no longer exists
	Update(ctx context.Context, product *Product) error
	Delete(ctx context.Context, id uint) error
	CountByStatus(ctx context.Context) (map[Status]int64, error)
}

// TxFunc is the body of a transaction. repo is bound to the transaction.
type TxFunc func(ctx context.Context, repo ProductRepository) error

// UnitOfWork scopes repository access to a single transaction.
// The transaction commits when fn returns nil and rolls back otherwise,
// including when fn panics.
type UnitOfWork interface {
	Within(ctx context.Context, fn TxFunc) error
	WithinReadOnly(ctx context.Context, fn TxFunc) error
}
