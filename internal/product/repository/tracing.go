package repository

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tair/product-catalog/internal/product/domain"
)

var tracer = otel.Tracer("product-repository")

// TracingProductRepository wraps a ProductRepository with a span per call
type TracingProductRepository struct {
	next domain.ProductRepository
}

// NewTracingProductRepository creates a new repository with tracing
func NewTracingProductRepository(next domain.ProductRepository) *TracingProductRepository {
	return &TracingProductRepository{next: next}
}

// FindByID with tracing
func (r *TracingProductRepository) FindByID(ctx context.Context, id uint) (*domain.Product, error) {
	ctx, span := tracer.Start(ctx, "repository.FindByID",
		trace.WithAttributes(
			attribute.Int("product.id", int(id)),
		),
	)
	defer span.End()

	product, err := r.next.FindByID(ctx, id)
	if err != nil {
		addDBErrorToSpan(span, err)
		return nil, err
	}

	span.SetAttributes(
		attribute.String("product.sku", product.SKU),
		attribute.String("product.status", string(product.Status)),
	)
	return product, nil
}

// FindByIDForUpdate with tracing
func (r *TracingProductRepository) FindByIDForUpdate(ctx context.Context, id uint) (*domain.Product, error) {
	ctx, span := tracer.Start(ctx, "repository.FindByIDForUpdate",
		trace.WithAttributes(
			attribute.Int("product.id", int(id)),
			attribute.String("db.lock", "FOR UPDATE"),
		),
	)
	defer span.End()

	product, err := r.next.FindByIDForUpdate(ctx, id)
	if err != nil {
		addDBErrorToSpan(span, err)
		return nil, err
	}
	return product, nil
}

// FindBySKU with tracing
func (r *TracingProductRepository) FindBySKU(ctx context.Context, sku string) (*domain.Product, error) {
	ctx, span := tracer.Start(ctx, "repository.FindBySKU",
		trace.WithAttributes(
			attribute.String("product.sku", sku),
		),
	)
	defer span.End()

	product, err := r.next.FindBySKU(ctx, sku)
	if err != nil {
		addDBErrorToSpan(span, err)
		return nil, err
	}

	span.SetAttributes(attribute.Int("product.id", int(product.ID)))
	return product, nil
}

// FindAll with tracing
func (r *TracingProductRepository) FindAll(ctx context.Context, filter domain.ListFilter) ([]domain.Product, error) {
	attrs := []attribute.KeyValue{
		attribute.Int("query.limit", filter.Limit),
		attribute.Int("query.offset", filter.Offset),
	}
	if filter.Status != nil {
		attrs = append(attrs, attribute.String("query.status", string(*filter.Status)))
	}

	ctx, span := tracer.Start(ctx, "repository.FindAll", trace.WithAttributes(attrs...))
	defer span.End()

	products, err := r.next.FindAll(ctx, filter)
	if err != nil {
		addDBErrorToSpan(span, err)
		return nil, err
	}

	span.SetAttributes(attribute.Int("result.count", len(products)))
	return products, nil
}

// Create with tracing
func (r *TracingProductRepository) Create(ctx context.Context, product *domain.Product) error {
	ctx, span := tracer.Start(ctx, "repository.Create",
		trace.WithAttributes(
			attribute.String("product.sku", product.SKU),
			attribute.String("product.status", string(product.Status)),
		),
	)
	defer span.End()

	if err := r.next.Create(ctx, product); err != nil {
		addDBErrorToSpan(span, err)
		return err
	}

	span.SetAttributes(attribute.Int("product.id", int(product.ID)))
	return nil
}

// Update with tracing
func (r *TracingProductRepository) Update(ctx context.Context, product *domain.Product) error {
	ctx, span := tracer.Start(ctx, "repository.Update",
		trace.WithAttributes(
			attribute.Int("product.id", int(product.ID)),
			attribute.String("product.status", string(product.Status)),
			attribute.Bool("product.discontinued", product.IsDiscontinued()),
		),
	)
	defer span.End()

	if err := r.next.Update(ctx, product); err != nil {
		addDBErrorToSpan(span, err)
		return err
	}
	return nil
}

// Delete with tracing
func (r *TracingProductRepository) Delete(ctx context.Context, id uint) error {
	ctx, span := tracer.Start(ctx, "repository.Delete",
		trace.WithAttributes(
			attribute.Int("product.id", int(id)),
		),
	)
	defer span.End()

	if err := r.next.Delete(ctx, id); err != nil {
		addDBErrorToSpan(span, err)
		return err
	}
	return nil
}

// CountByStatus with tracing
func (r *TracingProductRepository) CountByStatus(ctx context.Context) (map[domain.Status]int64, error) {
	ctx, span := tracer.Start(ctx, "repository.CountByStatus")
	defer span.End()

	counts, err := r.next.CountByStatus(ctx)
	if err != nil {
		addDBErrorToSpan(span, err)
		return nil, err
	}
	return counts, nil
}

// addDBErrorToSpan records unexpected errors. Not found is an expected outcome
// of a lookup and leaves the span status alone.
func addDBErrorToSpan(span trace.Span, err error) {
	if err == nil || errors.Is(err, domain.ErrProductNotFound) {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, fmt.Sprintf("database error: %v", err))
}
