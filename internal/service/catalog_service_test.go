package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/phrazzld/catalog-api/internal/domain"
	"github.com/phrazzld/catalog-api/internal/events"
	"github.com/phrazzld/catalog-api/internal/mocks"
	"github.com/phrazzld/catalog-api/internal/platform/logger"
	"github.com/phrazzld/catalog-api/internal/service"
	"github.com/phrazzld/catalog-api/internal/store"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingEmitter captures emitted event types in order.
type recordingEmitter struct {
	mu    sync.Mutex
	types []string
}

func (r *recordingEmitter) EmitEvent(_ context.Context, e *events.CatalogEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.types = append(r.types, e.Type)
	return nil
}

func (r *recordingEmitter) Types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.types...)
}

type serviceFixture struct {
	catalog *mocks.MockCatalog
	events  *recordingEmitter
	cat     service.CatalogService
	tagging service.TaggingService
}

func newServiceFixture(t *testing.T) serviceFixture {
	t.Helper()

	log, _ := logger.NewTestLogger()
	f := serviceFixture{catalog: mocks.NewMockCatalog(), events: &recordingEmitter{}}

	var err error
	f.cat, err = service.NewCatalogService(f.catalog.Stores, f.catalog.Items, f.catalog.Tags, f.events, log)
	require.NoError(t, err)
	f.tagging, err = service.NewTaggingService(f.catalog.Stores, f.catalog.Items, f.catalog.Tags, f.events, log)
	require.NoError(t, err)
	return f
}

func price(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestCatalogService_CreateStore(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(t)
	ctx := context.Background()

	st, err := f.cat.CreateStore(ctx, "Shop")
	require.NoError(t, err)
	assert.Equal(t, int64(1), st.ID)
	assert.Equal(t, "Shop", st.Name)

	_, err = f.cat.CreateStore(ctx, "Shop")
	assert.ErrorIs(t, err, store.ErrStoreNameExists)

	_, err = f.cat.CreateStore(ctx, "  ")
	assert.ErrorIs(t, err, domain.ErrValidation)

	assert.Equal(t, []string{events.StoreCreated}, f.events.Types())
}

func TestCatalogService_GetStoreNestsItemsAndTags(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(t)
	ctx := context.Background()

	st, err := f.cat.CreateStore(ctx, "Shop")
	require.NoError(t, err)
	_, err = f.cat.CreateItem(ctx, st.ID, "Chair", price("15.99"))
	require.NoError(t, err)
	_, err = f.tagging.CreateTag(ctx, st.ID, "Furniture")
	require.NoError(t, err)

	got, err := f.cat.GetStore(ctx, st.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	require.Len(t, got.Tags, 1)
	assert.Equal(t, "Chair", got.Items[0].Name)
	assert.Equal(t, "Furniture", got.Tags[0].Name)

	all, err := f.cat.ListStores(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Len(t, all[0].Items, 1)

	_, err = f.cat.GetStore(ctx, 99)
	assert.ErrorIs(t, err, store.ErrStoreNotFound)
}

func TestCatalogService_CreateItem(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(t)
	ctx := context.Background()

	st, err := f.cat.CreateStore(ctx, "Shop")
	require.NoError(t, err)

	tests := []struct {
		name    string
		storeID int64
		item    string
		price   string
		wantErr error
	}{
		{name: "valid", storeID: st.ID, item: "Chair", price: "15.99"},
		{name: "unknown store", storeID: 42, item: "Chair", price: "1", wantErr: store.ErrStoreNotFound},
		{name: "negative price", storeID: st.ID, item: "Chair", price: "-1", wantErr: domain.ErrNegativePrice},
		{name: "missing store", storeID: 0, item: "Chair", price: "1", wantErr: domain.ErrMissingStoreID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item, err := f.cat.CreateItem(ctx, tt.storeID, tt.item, price(tt.price))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.NotZero(t, item.ID)
			assert.Equal(t, "15.99", item.Price.StringFixed(2))
		})
	}
}

func TestCatalogService_UpdateItemUpserts(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(t)
	ctx := context.Background()

	st, err := f.cat.CreateStore(ctx, "Shop")
	require.NoError(t, err)
	other, err := f.cat.CreateStore(ctx, "Other")
	require.NoError(t, err)
	item, err := f.cat.CreateItem(ctx, st.ID, "Chair", price("10"))
	require.NoError(t, err)

	t.Run("existing item keeps its store", func(t *testing.T) {
		updated, created, err := f.cat.UpdateItem(ctx, item.ID, "Armchair", price("12.50"), other.ID)
		require.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, "Armchair", updated.Name)
		assert.Equal(t, st.ID, updated.StoreID)
	})

	t.Run("absent item is created with the given id", func(t *testing.T) {
		created, wasCreated, err := f.cat.UpdateItem(ctx, 50, "Desk", price("80"), st.ID)
		require.NoError(t, err)
		assert.True(t, wasCreated)
		assert.Equal(t, int64(50), created.ID)

		got, err := f.cat.GetItem(ctx, 50)
		require.NoError(t, err)
		assert.Equal(t, "Desk", got.Name)
	})

	t.Run("absent item without store", func(t *testing.T) {
		_, _, err := f.cat.UpdateItem(ctx, 60, "Lamp", price("5"), 0)
		assert.ErrorIs(t, err, domain.ErrMissingStoreID)
	})

	t.Run("absent item with unknown store", func(t *testing.T) {
		_, _, err := f.cat.UpdateItem(ctx, 61, "Lamp", price("5"), 999)
		assert.ErrorIs(t, err, store.ErrStoreNotFound)
	})

	types := f.events.Types()
	assert.Contains(t, types, events.ItemUpdated)
	assert.Contains(t, types, events.ItemCreated)
}

func TestCatalogService_DeleteStoreCascades(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(t)
	ctx := context.Background()

	st, err := f.cat.CreateStore(ctx, "Shop")
	require.NoError(t, err)
	item, err := f.cat.CreateItem(ctx, st.ID, "Chair", price("1"))
	require.NoError(t, err)
	tag, err := f.tagging.CreateTag(ctx, st.ID, "Sale")
	require.NoError(t, err)
	_, err = f.tagging.LinkTagToItem(ctx, item.ID, tag.ID)
	require.NoError(t, err)

	require.NoError(t, f.cat.DeleteStore(ctx, st.ID))

	_, err = f.cat.GetItem(ctx, item.ID)
	assert.ErrorIs(t, err, store.ErrItemNotFound)
	_, err = f.tagging.GetTag(ctx, tag.ID)
	assert.ErrorIs(t, err, store.ErrTagNotFound)
	assert.Zero(t, f.catalog.Tags.LinkCount())

	assert.ErrorIs(t, f.cat.DeleteStore(ctx, st.ID), store.ErrStoreNotFound)
}

func TestCatalogService_DeleteItem(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(t)
	ctx := context.Background()

	st, err := f.cat.CreateStore(ctx, "Shop")
	require.NoError(t, err)
	item, err := f.cat.CreateItem(ctx, st.ID, "Chair", price("1"))
	require.NoError(t, err)
	tag, err := f.tagging.CreateTag(ctx, st.ID, "Sale")
	require.NoError(t, err)
	_, err = f.tagging.LinkTagToItem(ctx, item.ID, tag.ID)
	require.NoError(t, err)

	require.NoError(t, f.cat.DeleteItem(ctx, item.ID))
	assert.ErrorIs(t, f.cat.DeleteItem(ctx, item.ID), store.ErrItemNotFound)

	// The tag is no longer in use once its only item is gone.
	assert.NoError(t, f.tagging.DeleteTag(ctx, tag.ID))
}

func TestCatalogService_StorageErrorsAreWrapped(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(t)
	dbErr := errors.New("connection reset by peer")
	f.catalog.Stores.ListFn = func(context.Context) ([]*domain.Store, error) {
		return nil, dbErr
	}

	_, err := f.cat.ListStores(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, dbErr)

	var serviceErr *service.ServiceError
	require.ErrorAs(t, err, &serviceErr)
	assert.Equal(t, "list_stores", serviceErr.Op)
}

func TestNewCatalogService_RequiresStores(t *testing.T) {
	t.Parallel()

	c := mocks.NewMockCatalog()
	_, err := service.NewCatalogService(nil, c.Items, c.Tags, nil, nil)
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = service.NewTaggingService(c.Stores, c.Items, nil, nil, nil)
	assert.ErrorIs(t, err, domain.ErrValidation)
}
