package repository

import (
	"context"
	"database/sql"

	"gorm.io/gorm"

	"github.com/tair/product-catalog/internal/product/domain"
)

// GormUnitOfWork runs repository calls inside gorm transactions.
// gorm rolls back when the callback returns an error or panics.
type GormUnitOfWork struct {
	db *gorm.DB
}

func NewGormUnitOfWork(db *gorm.DB) *GormUnitOfWork {
	return &GormUnitOfWork{db: db}
}

func (u *GormUnitOfWork) Within(ctx context.Context, fn domain.TxFunc) error {
	return u.run(ctx, fn, nil)
}

func (u *GormUnitOfWork) WithinReadOnly(ctx context.Context, fn domain.TxFunc) error {
	return u.run(ctx, fn, &sql.TxOptions{ReadOnly: true})
}

func (u *GormUnitOfWork) run(ctx context.Context, fn domain.TxFunc, opts *sql.TxOptions) error {
	ctx, span := tracer.Start(ctx, "repository.Transaction")
	defer span.End()

	var txOpts []*sql.TxOptions
	if opts != nil {
		txOpts = append(txOpts, opts)
	}

	err := u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, NewTracingProductRepository(NewGormProductRepository(tx)))
	}, txOpts...)
	addDBErrorToSpan(span, err)
	return err
}
