package command

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tair/product-catalog/internal/product/domain"
	"github.com/tair/product-catalog/internal/product/producttest"
	"github.com/tair/product-catalog/pkg/logger"
)

func strPtr(s string) *string { return &s }

func statusPtr(s domain.Status) *domain.Status { return &s }

type fixture struct {
	store       *producttest.Store
	publisher   *producttest.Publisher
	cache       *producttest.Cache
	create      *CreateProductHandler
	update      *UpdateProductHandler
	discontinue *DiscontinueProductHandler
	delete      *DeleteProductHandler
}

func newFixture() *fixture {
	store := producttest.NewStore()
	publisher := &producttest.Publisher{}
	cache := producttest.NewCache()
	return &fixture{
		store:       store,
		publisher:   publisher,
		cache:       cache,
		create:      NewCreateProductHandler(store, publisher),
		update:      NewUpdateProductHandler(store, publisher, cache),
		discontinue: NewDiscontinueProductHandler(store, publisher, cache),
		delete:      NewDeleteProductHandler(store, publisher, cache),
	}
}

func (f *fixture) mustCreate(t *testing.T, sku, name string) *domain.ProductResponse {
	t.Helper()
	resp, err := f.create.Handle(context.Background(), CreateProductCommand{SKU: sku, Name: name})
	require.NoError(t, err)
	return resp
}

func TestCreateProduct(t *testing.T) {
	f := newFixture()

	resp, err := f.create.Handle(context.Background(), CreateProductCommand{
		SKU:         "SKU-1",
		Name:        "Widget",
		Description: strPtr("A widget"),
	})

	require.NoError(t, err)
	assert.NotZero(t, resp.ID)
	assert.Equal(t, "SKU-1", resp.SKU)
	assert.Equal(t, domain.StatusActive, resp.Status)
	assert.Nil(t, resp.DiscontinuedAt)
	assert.Nil(t, resp.DiscontinuedNote)
	assert.False(t, resp.CreatedAt.IsZero())
	assert.Equal(t, []string{domain.EventTypeProductCreated}, f.publisher.Types())
}

func TestCreateProduct_DoesNotAliasCallerDescription(t *testing.T) {
	f := newFixture()
	description := "original"

	resp, err := f.create.Handle(context.Background(), CreateProductCommand{
		SKU:         "SKU-1",
		Name:        "Widget",
		Description: &description,
	})
	require.NoError(t, err)

	description = "changed by caller"

	require.NotNil(t, resp.Description)
	assert.Equal(t, "original", *resp.Description)
	stored := f.store.Products()[0]
	require.NotNil(t, stored.Description)
	assert.Equal(t, "original", *stored.Description)
}

func TestCreateProduct_ExplicitStatus(t *testing.T) {
	f := newFixture()

	resp, err := f.create.Handle(context.Background(), CreateProductCommand{
		SKU:    "SKU-1",
		Name:   "Widget",
		Status: statusPtr(domain.StatusInactive),
	})

	require.NoError(t, err)
	assert.Equal(t, domain.StatusInactive, resp.Status)
	assert.Nil(t, resp.DiscontinuedAt)
}

func TestCreateProduct_DistinctSKUsGetUniqueIDs(t *testing.T) {
	f := newFixture()

	ids := map[uint]bool{}
	for i := 0; i < 20; i++ {
		resp := f.mustCreate(t, fmt.Sprintf("SKU-%d", i), "Widget")
		assert.False(t, ids[resp.ID], "id %d reused", resp.ID)
		ids[resp.ID] = true
	}
	assert.Len(t, f.store.Products(), 20)
}

func TestCreateProduct_DuplicateSKU(t *testing.T) {
	f := newFixture()
	f.mustCreate(t, "SKU-1", "Widget")

	_, err := f.create.Handle(context.Background(), CreateProductCommand{
		SKU:         "SKU-1",
		Name:        "Completely different",
		Description: strPtr("other"),
		Status:      statusPtr(domain.StatusInactive),
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrValidation))
	var verr *domain.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, domain.MessageDuplicateSKU, verr.Message)
	assert.Len(t, f.store.Products(), 1)
	assert.Equal(t, []string{domain.EventTypeProductCreated}, f.publisher.Types())
}

func TestCreateProduct_SKUIsCaseSensitive(t *testing.T) {
	f := newFixture()
	f.mustCreate(t, "sku-1", "Widget")

	_, err := f.create.Handle(context.Background(), CreateProductCommand{SKU: "SKU-1", Name: "Widget"})
	assert.NoError(t, err)
}

func TestCreateProduct_Validation(t *testing.T) {
	tests := []struct {
		name   string
		cmd    CreateProductCommand
		fields []string
	}{
		{"empty sku", CreateProductCommand{Name: "Widget"}, []string{"sku"}},
		{"empty name", CreateProductCommand{SKU: "SKU-1"}, []string{"name"}},
		{"both empty", CreateProductCommand{}, []string{"sku", "name"}},
		{"sku too long", CreateProductCommand{SKU: strings.Repeat("s", 65), Name: "Widget"}, []string{"sku"}},
		{"name too long", CreateProductCommand{SKU: "SKU-1", Name: strings.Repeat("n", 201)}, []string{"name"}},
		{"description too long", CreateProductCommand{SKU: "SKU-1", Name: "Widget", Description: strPtr(strings.Repeat("d", 5001))}, []string{"description"}},
		{"unknown status", CreateProductCommand{SKU: "SKU-1", Name: "Widget", Status: statusPtr("DELETED")}, []string{"status"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()

			_, err := f.create.Handle(context.Background(), tt.cmd)

			var verr *domain.ValidationError
			require.True(t, errors.As(err, &verr))
			var got []string
			for _, fe := range verr.Fields {
				got = append(got, fe.Field)
			}
			assert.Equal(t, tt.fields, got)
			assert.Empty(t, f.store.Products())
		})
	}
}

func TestCreateProduct_StorageFailureLeavesNothing(t *testing.T) {
	f := newFixture()
	boom := errors.New("connection reset")
	f.store.FailOn(boom, "Create")

	_, err := f.create.Handle(context.Background(), CreateProductCommand{SKU: "SKU-1", Name: "Widget"})

	assert.ErrorIs(t, err, boom)
	assert.False(t, errors.Is(err, domain.ErrValidation))
	assert.Empty(t, f.store.Products())
	assert.Empty(t, f.publisher.Events())
}

func TestCreateProduct_ConcurrentSameSKU(t *testing.T) {
	f := newFixture()

	var wg sync.WaitGroup
	errs := make(chan error, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.create.Handle(context.Background(), CreateProductCommand{SKU: "SKU-1", Name: "Widget"})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var ok, dup int
	for err := range errs {
		if err == nil {
			ok++
		} else if errors.Is(err, domain.ErrValidation) {
			dup++
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 9, dup)
	assert.Len(t, f.store.Products(), 1)
}

func TestUpdateProduct_PartialFields(t *testing.T) {
	f := newFixture()
	created, err := f.create.Handle(context.Background(), CreateProductCommand{
		SKU: "SKU-1", Name: "Widget", Description: strPtr("original"),
	})
	require.NoError(t, err)

	resp, err := f.update.Handle(context.Background(), UpdateProductCommand{
		ID:   created.ID,
		Name: strPtr("Gadget"),
	})

	require.NoError(t, err)
	assert.Equal(t, "Gadget", resp.Name)
	require.NotNil(t, resp.Description)
	assert.Equal(t, "original", *resp.Description)
	assert.Equal(t, "SKU-1", resp.SKU)
	assert.Equal(t, domain.StatusActive, resp.Status)
	assert.Equal(t, []uint{created.ID}, f.cache.Invalidated)
}

func TestUpdateProduct_NoFields(t *testing.T) {
	f := newFixture()
	created := f.mustCreate(t, "SKU-1", "Widget")

	resp, err := f.update.Handle(context.Background(), UpdateProductCommand{ID: created.ID})

	require.NoError(t, err)
	assert.Equal(t, created.ID, resp.ID)
	assert.Equal(t, created.SKU, resp.SKU)
	assert.Equal(t, created.Name, resp.Name)
	assert.Equal(t, created.Description, resp.Description)
	assert.Equal(t, created.Status, resp.Status)
	assert.Equal(t, created.CreatedAt, resp.CreatedAt)
	assert.False(t, resp.UpdatedAt.Before(created.UpdatedAt))
}

func TestUpdateProduct_ActivateClearsDiscontinueMetadata(t *testing.T) {
	f := newFixture()
	created := f.mustCreate(t, "SKU-1", "Widget")
	_, err := f.discontinue.Handle(context.Background(), DiscontinueProductCommand{ID: created.ID, Note: "EOL"})
	require.NoError(t, err)

	resp, err := f.update.Handle(context.Background(), UpdateProductCommand{ID: created.ID, Status: statusPtr(domain.StatusActive)})

	require.NoError(t, err)
	assert.Equal(t, domain.StatusActive, resp.Status)
	assert.Nil(t, resp.DiscontinuedAt)
	assert.Nil(t, resp.DiscontinuedNote)

	stored := f.store.Products()[0]
	assert.Nil(t, stored.DiscontinuedAt)
	assert.Nil(t, stored.DiscontinuedNote)
}

func TestUpdateProduct_ActivateNeverDiscontinued(t *testing.T) {
	f := newFixture()
	created := f.mustCreate(t, "SKU-1", "Widget")

	resp, err := f.update.Handle(context.Background(), UpdateProductCommand{ID: created.ID, Status: statusPtr(domain.StatusActive)})

	require.NoError(t, err)
	assert.Nil(t, resp.DiscontinuedAt)
	assert.Nil(t, resp.DiscontinuedNote)
}

func TestUpdateProduct_InactiveKeepsMetadata(t *testing.T) {
	f := newFixture()
	created := f.mustCreate(t, "SKU-1", "Widget")

	resp, err := f.update.Handle(context.Background(), UpdateProductCommand{ID: created.ID, Status: statusPtr(domain.StatusInactive)})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusInactive, resp.Status)
	assert.Nil(t, resp.DiscontinuedAt, "plain status update must not set discontinue metadata")

	_, err = f.discontinue.Handle(context.Background(), DiscontinueProductCommand{ID: created.ID, Note: "EOL"})
	require.NoError(t, err)

	resp, err = f.update.Handle(context.Background(), UpdateProductCommand{ID: created.ID, Status: statusPtr(domain.StatusInactive)})
	require.NoError(t, err)
	require.NotNil(t, resp.DiscontinuedNote)
	assert.Equal(t, "EOL", *resp.DiscontinuedNote)
}

func TestUpdateProduct_Validation(t *testing.T) {
	f := newFixture()
	created := f.mustCreate(t, "SKU-1", "Widget")

	_, err := f.update.Handle(context.Background(), UpdateProductCommand{ID: created.ID, Name: strPtr("")})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.update.Handle(context.Background(), UpdateProductCommand{ID: created.ID, Description: strPtr(strings.Repeat("d", 5001))})
	assert.ErrorIs(t, err, domain.ErrValidation)

	assert.Equal(t, "Widget", f.store.Products()[0].Name)
}

func TestDiscontinueProduct(t *testing.T) {
	f := newFixture()
	created := f.mustCreate(t, "SKU-1", "Widget")

	before := time.Now()
	resp, err := f.discontinue.Handle(context.Background(), DiscontinueProductCommand{ID: created.ID, Note: "EOL"})

	require.NoError(t, err)
	assert.Equal(t, domain.StatusInactive, resp.Status)
	require.NotNil(t, resp.DiscontinuedAt)
	assert.False(t, resp.DiscontinuedAt.Before(before))
	require.NotNil(t, resp.DiscontinuedNote)
	assert.Equal(t, "EOL", *resp.DiscontinuedNote)

	events := f.publisher.Events()
	require.Len(t, events, 2)
	assert.Equal(t, domain.EventTypeProductDiscontinued, events[1].EventType)
	assert.Equal(t, "EOL", events[1].Note)
}

func TestDiscontinueProduct_TwiceKeepsSecondNote(t *testing.T) {
	f := newFixture()
	created := f.mustCreate(t, "SKU-1", "Widget")

	t1 := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	t2 := t1.Add(24 * time.Hour)
	clock := t1
	f.discontinue.WithClock(func() time.Time { return clock })

	_, err := f.discontinue.Handle(context.Background(), DiscontinueProductCommand{ID: created.ID, Note: "first"})
	require.NoError(t, err)

	clock = t2
	resp, err := f.discontinue.Handle(context.Background(), DiscontinueProductCommand{ID: created.ID, Note: "second"})
	require.NoError(t, err)

	assert.Equal(t, "second", *resp.DiscontinuedNote)
	assert.Equal(t, t2, *resp.DiscontinuedAt)
	stored := f.store.Products()[0]
	assert.Equal(t, "second", *stored.DiscontinuedNote)
}

func TestDiscontinueProduct_NoteValidation(t *testing.T) {
	f := newFixture()
	created := f.mustCreate(t, "SKU-1", "Widget")

	for _, note := range []string{"", "   ", strings.Repeat("n", 501)} {
		_, err := f.discontinue.Handle(context.Background(), DiscontinueProductCommand{ID: created.ID, Note: note})
		assert.ErrorIs(t, err, domain.ErrValidation)
	}
	assert.Equal(t, domain.StatusActive, f.store.Products()[0].Status)
}

func TestDeleteProduct(t *testing.T) {
	f := newFixture()
	active := f.mustCreate(t, "SKU-1", "Widget")
	inactive := f.mustCreate(t, "SKU-2", "Gadget")
	_, err := f.discontinue.Handle(context.Background(), DiscontinueProductCommand{ID: inactive.ID, Note: "EOL"})
	require.NoError(t, err)

	require.NoError(t, f.delete.Handle(context.Background(), DeleteProductCommand{ID: active.ID}))
	require.NoError(t, f.delete.Handle(context.Background(), DeleteProductCommand{ID: inactive.ID}))

	assert.Empty(t, f.store.Products())
	assert.Contains(t, f.publisher.Types(), domain.EventTypeProductDeleted)
}

func TestMissingProduct_NotFoundAndNoMutation(t *testing.T) {
	f := newFixture()
	f.mustCreate(t, "SKU-1", "Widget")
	before := f.store.Products()
	commits := f.store.Commits()
	const missing = uint(999)

	_, err := f.update.Handle(context.Background(), UpdateProductCommand{ID: missing, Name: strPtr("x")})
	assert.ErrorIs(t, err, domain.ErrProductNotFound)

	_, err = f.discontinue.Handle(context.Background(), DiscontinueProductCommand{ID: missing, Note: "EOL"})
	assert.ErrorIs(t, err, domain.ErrProductNotFound)

	err = f.delete.Handle(context.Background(), DeleteProductCommand{ID: missing})
	assert.ErrorIs(t, err, domain.ErrProductNotFound)

	assert.Equal(t, before, f.store.Products())
	assert.Equal(t, commits, f.store.Commits())
	assert.Len(t, f.publisher.Events(), 1)
}

func TestPublishFailureDoesNotFailOperation(t *testing.T) {
	f := newFixture()
	f.publisher.Err = errors.New("broker down")

	resp, err := f.create.Handle(context.Background(), CreateProductCommand{SKU: "SKU-1", Name: "Widget"})

	require.NoError(t, err)
	assert.NotZero(t, resp.ID)
	assert.Len(t, f.store.Products(), 1)
}

func TestUpdateFailureRollsBack(t *testing.T) {
	f := newFixture()
	created := f.mustCreate(t, "SKU-1", "Widget")
	boom := errors.New("deadlock detected")
	f.store.FailOn(boom, "Update")

	_, err := f.discontinue.Handle(context.Background(), DiscontinueProductCommand{ID: created.ID, Note: "EOL"})

	assert.ErrorIs(t, err, boom)
	stored := f.store.Products()[0]
	assert.Equal(t, domain.StatusActive, stored.Status)
	assert.Nil(t, stored.DiscontinuedNote)
	assert.Empty(t, f.cache.Invalidated)
}

func TestUpdateProduct_LogsUpdate(t *testing.T) {
	var buf bytes.Buffer
	previous := logger.Logger
	logger.InitWithWriter("product-service", &buf)
	t.Cleanup(func() { logger.Logger = previous })

	f := newFixture()
	created := f.mustCreate(t, "SKU-1", "Widget")
	buf.Reset()

	_, err := f.update.Handle(context.Background(), UpdateProductCommand{ID: created.ID, Name: strPtr("Gadget")})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, `"message":"Product updated"`)
	assert.Contains(t, out, `"sku":"SKU-1"`)
	assert.Contains(t, out, fmt.Sprintf(`"product_id":%d`, created.ID))
}

// vanishingUnitOfWork deletes the row right after it is loaded for update,
// so the following write finds nothing to change.
type vanishingUnitOfWork struct {
	*producttest.Store
}

func (u vanishingUnitOfWork) Within(ctx context.Context, fn domain.TxFunc) error {
	return u.Store.Within(ctx, func(ctx context.Context, repo domain.ProductRepository) error {
		return fn(ctx, vanishingRepo{repo})
	})
}

type vanishingRepo struct {
	domain.ProductRepository
}

func (r vanishingRepo) FindByIDForUpdate(ctx context.Context, id uint) (*domain.Product, error) {
	product, err := r.ProductRepository.FindByIDForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := r.ProductRepository.Delete(ctx, id); err != nil {
		return nil, err
	}
	return product, nil
}

func TestUpdateProduct_RowGoneBeforeWriteIsNotFound(t *testing.T) {
	f := newFixture()
	created := f.mustCreate(t, "SKU-1", "Widget")
	update := NewUpdateProductHandler(vanishingUnitOfWork{f.store}, f.publisher, f.cache)
	discontinue := NewDiscontinueProductHandler(vanishingUnitOfWork{f.store}, f.publisher, f.cache)

	_, err := update.Handle(context.Background(), UpdateProductCommand{ID: created.ID, Name: strPtr("Gadget")})
	assert.ErrorIs(t, err, domain.ErrProductNotFound)

	_, err = discontinue.Handle(context.Background(), DiscontinueProductCommand{ID: created.ID, Note: "EOL"})
	assert.ErrorIs(t, err, domain.ErrProductNotFound)

	require.Len(t, f.store.Products(), 1, "failed transactions must roll back the delete")
	assert.Equal(t, "Widget", f.store.Products()[0].Name)
	assert.Empty(t, f.cache.Invalidated)
	assert.Equal(t, []string{domain.EventTypeProductCreated}, f.publisher.Types())
}

func TestWriteHandlers_LoadRowForUpdate(t *testing.T) {
	f := newFixture()
	created := f.mustCreate(t, "SKU-1", "Widget")
	boom := errors.New("lock timeout")
	f.store.FailOn(boom, "FindByIDForUpdate")

	_, err := f.update.Handle(context.Background(), UpdateProductCommand{ID: created.ID, Name: strPtr("Gadget")})
	assert.ErrorIs(t, err, boom)

	_, err = f.discontinue.Handle(context.Background(), DiscontinueProductCommand{ID: created.ID, Note: "EOL"})
	assert.ErrorIs(t, err, boom)

	err = f.delete.Handle(context.Background(), DeleteProductCommand{ID: created.ID})
	assert.ErrorIs(t, err, boom)

	assert.Len(t, f.store.Products(), 1)
}
