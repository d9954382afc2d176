package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tair/product-catalog/internal/product/domain"
)

// uniqueViolation is the postgres SQLSTATE for a unique constraint failure
const uniqueViolation = "23505"

type GormProductRepository struct {
	db *gorm.DB
}

func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

func (r *GormProductRepository) FindByID(ctx context.Context, id uint) (*domain.Product, error) {
	return r.findByID(r.db.WithContext(ctx), id)
}

// FindByIDForUpdate takes a row lock (SELECT ... FOR UPDATE), so concurrent
// writers of the same product run one after the other.
func (r *GormProductRepository) FindByIDForUpdate(ctx context.Context, id uint) (*domain.Product, error) {
	return r.findByID(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (r *GormProductRepository) findByID(db *gorm.DB, id uint) (*domain.Product, error) {
	var product domain.Product
	err := db.First(&product, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.NewNotFoundError(id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find product %d: %w", id, err)
	}
	return &product, nil
}

func (r *GormProductRepository) FindBySKU(ctx context.Context, sku string) (*domain.Product, error) {
	var product domain.Product
	err := r.db.WithContext(ctx).Where("sku = ?", sku).First(&product).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find product by sku: %w", err)
	}
	return &product, nil
}

func (r *GormProductRepository) FindAll(ctx context.Context, filter domain.ListFilter) ([]domain.Product, error) {
	q := r.db.WithContext(ctx).Order("id ASC")
	if filter.Status != nil {
		q = q.Where("status = ?", *filter.Status)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		q = q.Offset(filter.Offset)
	}

	products := []domain.Product{}
	if err := q.Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

func (r *GormProductRepository) Create(ctx context.Context, product *domain.Product) error {
	err := r.db.WithContext(ctx).Create(product).Error
	if isUniqueViolation(err) {
		return domain.NewDuplicateSKUError(product.SKU)
	}
	if err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

func (r *GormProductRepository) Update(ctx context.Context, product *domain.Product) error {
	// Select("*") writes nil columns too, so cleared discontinue fields reach the row
	result := r.db.WithContext(ctx).
		Model(product).
		Select("*").
		Omit("id", "sku", "created_at").
		Updates(product)
	if result.Error != nil {
		return fmt.Errorf("failed to update product %d: %w", product.ID, result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError(product.ID)
	}
	return nil
}

func (r *GormProductRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&domain.Product{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete product %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError(id)
	}
	return nil
}

func (r *GormProductRepository) CountByStatus(ctx context.Context) (map[domain.Status]int64, error) {
	var rows []struct {
		Status domain.Status
		Count  int64
	}
	err := r.db.WithContext(ctx).
		Model(&domain.Product{}).
		Select("status, count(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}

	counts := make(map[domain.Status]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}
