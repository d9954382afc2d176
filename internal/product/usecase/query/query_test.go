package query

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tair/product-catalog/internal/product/domain"
	"github.com/tair/product-catalog/internal/product/producttest"
	"github.com/tair/product-catalog/internal/product/usecase/command"
)

func seed(store *producttest.Store) []domain.Product {
	note := "EOL"
	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	return store.Seed(
		domain.Product{SKU: "SKU-1", Name: "Widget"},
		domain.Product{SKU: "SKU-2", Name: "Gadget", Status: domain.StatusInactive, DiscontinuedAt: &at, DiscontinuedNote: &note},
		domain.Product{SKU: "SKU-3", Name: "Doohickey"},
	)
}

func TestListProducts(t *testing.T) {
	store := producttest.NewStore()
	seeded := seed(store)
	h := NewListProductsHandler(store)

	all, err := h.Handle(context.Background(), ListProductsQuery{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	for i, p := range all {
		assert.Equal(t, seeded[i].ID, p.ID)
	}

	active := domain.StatusActive
	got, err := h.Handle(context.Background(), ListProductsQuery{Status: &active})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "SKU-1", got[0].SKU)
	assert.Equal(t, "SKU-3", got[1].SKU)

	inactive := domain.StatusInactive
	got, err = h.Handle(context.Background(), ListProductsQuery{Status: &inactive})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "EOL", *got[0].DiscontinuedNote)
}

func TestListProducts_Paging(t *testing.T) {
	store := producttest.NewStore()
	seed(store)
	h := NewListProductsHandler(store)

	got, err := h.Handle(context.Background(), ListProductsQuery{Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "SKU-2", got[0].SKU)

	got, err = h.Handle(context.Background(), ListProductsQuery{Offset: 10})
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NotNil(t, got)
}

func TestListProducts_Invalid(t *testing.T) {
	h := NewListProductsHandler(producttest.NewStore())
	bogus := domain.Status("BOGUS")

	for _, q := range []ListProductsQuery{{Limit: -1}, {Offset: -1}, {Status: &bogus}} {
		_, err := h.Handle(context.Background(), q)
		assert.ErrorIs(t, err, domain.ErrValidation)
	}
}

func TestListProducts_StorageFailure(t *testing.T) {
	store := producttest.NewStore()
	boom := errors.New("db down")
	store.FailOn(boom, "FindAll")

	_, err := NewListProductsHandler(store).Handle(context.Background(), ListProductsQuery{})
	assert.ErrorIs(t, err, boom)
}

func TestGetProduct(t *testing.T) {
	store := producttest.NewStore()
	seeded := seed(store)
	h := NewGetProductHandler(store, nil)

	got, err := h.Handle(context.Background(), GetProductQuery{ID: seeded[1].ID})
	require.NoError(t, err)
	assert.Equal(t, "SKU-2", got.SKU)
	assert.Equal(t, domain.StatusInactive, got.Status)
	assert.Equal(t, seeded[1].CreatedAt, got.CreatedAt)

	_, err = h.Handle(context.Background(), GetProductQuery{ID: 404})
	assert.ErrorIs(t, err, domain.ErrProductNotFound)

	_, err = h.Handle(context.Background(), GetProductQuery{ID: 0})
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestGetProduct_Cache(t *testing.T) {
	store := producttest.NewStore()
	seeded := seed(store)
	cache := producttest.NewCache()
	h := NewGetProductHandler(store, cache)

	first, err := h.Handle(context.Background(), GetProductQuery{ID: seeded[0].ID})
	require.NoError(t, err)
	assert.Equal(t, 0, cache.Hits)

	second, err := h.Handle(context.Background(), GetProductQuery{ID: seeded[0].ID})
	require.NoError(t, err)
	assert.Equal(t, 1, cache.Hits)
	assert.Equal(t, first, second)
}

// writeAfterReadUnitOfWork runs afterRead once, between the end of a
// read-only transaction and the moment its caller sees the result.
type writeAfterReadUnitOfWork struct {
	*producttest.Store
	afterRead func()
}

func (u *writeAfterReadUnitOfWork) WithinReadOnly(ctx context.Context, fn domain.TxFunc) error {
	err := u.Store.WithinReadOnly(ctx, fn)
	if hook := u.afterRead; hook != nil {
		u.afterRead = nil
		hook()
	}
	return err
}

func TestGetProduct_DeleteDuringCacheFillIsNotServedStale(t *testing.T) {
	store := producttest.NewStore()
	seeded := seed(store)
	cache := producttest.NewCache()
	deleteHandler := command.NewDeleteProductHandler(store, &producttest.Publisher{}, cache)
	uow := &writeAfterReadUnitOfWork{Store: store}
	uow.afterRead = func() {
		require.NoError(t, deleteHandler.Handle(context.Background(), command.DeleteProductCommand{ID: seeded[0].ID}))
	}
	h := NewGetProductHandler(uow, cache)

	first, err := h.Handle(context.Background(), GetProductQuery{ID: seeded[0].ID})
	require.NoError(t, err)
	assert.Equal(t, seeded[0].ID, first.ID)

	_, err = h.Handle(context.Background(), GetProductQuery{ID: seeded[0].ID})
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
	assert.Equal(t, 0, cache.Hits)
	assert.Equal(t, 1, cache.StaleSets)
}

func TestGetProduct_UpdateDuringCacheFillIsNotServedStale(t *testing.T) {
	store := producttest.NewStore()
	seeded := seed(store)
	cache := producttest.NewCache()
	updateHandler := command.NewUpdateProductHandler(store, &producttest.Publisher{}, cache)
	renamed := "Renamed"
	uow := &writeAfterReadUnitOfWork{Store: store}
	uow.afterRead = func() {
		_, err := updateHandler.Handle(context.Background(), command.UpdateProductCommand{ID: seeded[0].ID, Name: &renamed})
		require.NoError(t, err)
	}
	h := NewGetProductHandler(uow, cache)

	first, err := h.Handle(context.Background(), GetProductQuery{ID: seeded[0].ID})
	require.NoError(t, err)
	assert.Equal(t, "Widget", first.Name)

	second, err := h.Handle(context.Background(), GetProductQuery{ID: seeded[0].ID})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", second.Name)

	third, err := h.Handle(context.Background(), GetProductQuery{ID: seeded[0].ID})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", third.Name)
	assert.Equal(t, 1, cache.Hits)
}

func TestGetStats(t *testing.T) {
	store := producttest.NewStore()
	seed(store)

	stats, err := NewGetStatsHandler(store).Handle(context.Background(), GetStatsQuery{})

	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.TotalProducts)
	assert.Equal(t, int64(2), stats.ActiveProducts)
	assert.Equal(t, int64(1), stats.InactiveProducts)
}
