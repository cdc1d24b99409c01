package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/phrazzld/catalog-api/internal/domain"
	"github.com/phrazzld/catalog-api/internal/events"
	"github.com/phrazzld/catalog-api/internal/platform/logger"
	"github.com/phrazzld/catalog-api/internal/store"
	"github.com/shopspring/decimal"
)

const catalogServiceName = "catalog"

// CatalogService provides store and item operations.
type CatalogService interface {
	// CreateStore creates a store. Returns store.ErrStoreNameExists if the name is taken.
	CreateStore(ctx context.Context, name string) (*domain.Store, error)

	// GetStore returns a store with its items and tags.
	GetStore(ctx context.Context, id int64) (*domain.Store, error)

	// ListStores returns every store with its items and tags.
	ListStores(ctx context.Context) ([]*domain.Store, error)

	// DeleteStore removes a store together with its items, tags and their links.
	DeleteStore(ctx context.Context, id int64) error

	// CreateItem creates an item in an existing store.
	// Returns store.ErrStoreNotFound if the store does not exist.
	CreateItem(ctx context.Context, storeID int64, name string, price decimal.Decimal) (*domain.Item, error)

	// GetItem returns an item with its tags.
	GetItem(ctx context.Context, id int64) (*domain.Item, error)

	// ListItems returns every item with its tags.
	ListItems(ctx context.Context) ([]*domain.Item, error)

	// UpdateItem sets the name and price of item id, creating the item with
	// that id when it does not exist. storeID is only used on creation, where
	// it is required. created reports which of the two happened.
	UpdateItem(ctx context.Context, id int64, name string, price decimal.Decimal, storeID int64) (item *domain.Item, created bool, err error)

	// DeleteItem removes an item and its tag links.
	DeleteItem(ctx context.Context, id int64) error
}

type catalogServiceImpl struct {
	stores  store.StoreStore
	items   store.ItemStore
	tags    store.TagStore
	emitter events.EventEmitter
	logger  *slog.Logger
}

// NewCatalogService creates a CatalogService. emitter may be nil, in which
// case no events are emitted.
func NewCatalogService(
	stores store.StoreStore,
	items store.ItemStore,
	tags store.TagStore,
	emitter events.EventEmitter,
	logger *slog.Logger,
) (CatalogService, error) {
	if stores == nil {
		return nil, domain.NewValidationError("stores", "cannot be nil", domain.ErrValidation)
	}
	if items == nil {
		return nil, domain.NewValidationError("items", "cannot be nil", domain.ErrValidation)
	}
	if tags == nil {
		return nil, domain.NewValidationError("tags", "cannot be nil", domain.ErrValidation)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &catalogServiceImpl{
		stores:  stores,
		items:   items,
		tags:    tags,
		emitter: emitter,
		logger:  logger.With(slog.String("component", "catalog_service")),
	}, nil
}

// CreateStore implements CatalogService.CreateStore
func (s *catalogServiceImpl) CreateStore(ctx context.Context, name string) (*domain.Store, error) {
	st, err := domain.NewStore(name)
	if err != nil {
		return nil, NewServiceError(catalogServiceName, "create_store", err)
	}

	if err := s.stores.Create(ctx, st); err != nil {
		return nil, NewServiceError(catalogServiceName, "create_store", err)
	}

	emit(ctx, s.emitter, s.logger, events.StoreCreated, st.ID, st.ID, st)
	return st, nil
}

// GetStore implements CatalogService.GetStore
func (s *catalogServiceImpl) GetStore(ctx context.Context, id int64) (*domain.Store, error) {
	st, err := s.stores.GetByID(ctx, id)
	if err != nil {
		return nil, NewServiceError(catalogServiceName, "get_store", err)
	}
	if err := s.loadStoreContents(ctx, st); err != nil {
		return nil, NewServiceError(catalogServiceName, "get_store", err)
	}
	return st, nil
}

// ListStores implements CatalogService.ListStores
func (s *catalogServiceImpl) ListStores(ctx context.Context) ([]*domain.Store, error) {
	stores, err := s.stores.List(ctx)
	if err != nil {
		return nil, NewServiceError(catalogServiceName, "list_stores", err)
	}
	for _, st := range stores {
		if err := s.loadStoreContents(ctx, st); err != nil {
			return nil, NewServiceError(catalogServiceName, "list_stores", err)
		}
	}
	return stores, nil
}

func (s *catalogServiceImpl) loadStoreContents(ctx context.Context, st *domain.Store) error {
	items, err := s.items.ListByStore(ctx, st.ID)
	if err != nil {
		return err
	}
	tags, err := s.tags.ListByStore(ctx, st.ID)
	if err != nil {
		return err
	}
	st.Items = items
	st.Tags = tags
	return nil
}

// DeleteStore implements CatalogService.DeleteStore
func (s *catalogServiceImpl) DeleteStore(ctx context.Context, id int64) error {
	if err := s.stores.Delete(ctx, id); err != nil {
		return NewServiceError(catalogServiceName, "delete_store", err)
	}

	emit(ctx, s.emitter, s.logger, events.StoreDeleted, id, id, nil)
	return nil
}

// CreateItem implements CatalogService.CreateItem
func (s *catalogServiceImpl) CreateItem(
	ctx context.Context,
	storeID int64,
	name string,
	price decimal.Decimal,
) (*domain.Item, error) {
	item, err := domain.NewItem(storeID, name, price)
	if err != nil {
		return nil, NewServiceError(catalogServiceName, "create_item", err)
	}

	// The foreign key reports a missing store too; checking first keeps the
	// common case out of the error log.
	if _, err := s.stores.GetByID(ctx, storeID); err != nil {
		return nil, NewServiceError(catalogServiceName, "create_item", err)
	}

	if err := s.items.Create(ctx, item); err != nil {
		return nil, NewServiceError(catalogServiceName, "create_item", err)
	}

	emit(ctx, s.emitter, s.logger, events.ItemCreated, item.ID, item.StoreID, item)
	return item, nil
}

// GetItem implements CatalogService.GetItem
func (s *catalogServiceImpl) GetItem(ctx context.Context, id int64) (*domain.Item, error) {
	item, err := s.items.GetByID(ctx, id)
	if err != nil {
		return nil, NewServiceError(catalogServiceName, "get_item", err)
	}
	if item.Tags, err = s.tags.ListByItem(ctx, id); err != nil {
		return nil, NewServiceError(catalogServiceName, "get_item", err)
	}
	return item, nil
}

// ListItems implements CatalogService.ListItems
func (s *catalogServiceImpl) ListItems(ctx context.Context) ([]*domain.Item, error) {
	items, err := s.items.List(ctx)
	if err != nil {
		return nil, NewServiceError(catalogServiceName, "list_items", err)
	}
	for _, item := range items {
		if item.Tags, err = s.tags.ListByItem(ctx, item.ID); err != nil {
			return nil, NewServiceError(catalogServiceName, "list_items", err)
		}
	}
	return items, nil
}

// UpdateItem implements CatalogService.UpdateItem
func (s *catalogServiceImpl) UpdateItem(
	ctx context.Context,
	id int64,
	name string,
	price decimal.Decimal,
	storeID int64,
) (*domain.Item, bool, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	item, err := domain.NewItemUpsert(id, storeID, name, price)
	if err != nil {
		return nil, false, NewServiceError(catalogServiceName, "update_item", err)
	}

	created, err := s.items.Upsert(ctx, item)
	if err != nil {
		if errors.Is(err, domain.ErrMissingStoreID) {
			log.Debug("item does not exist and no store given", slog.Int64("item_id", id))
		}
		return nil, false, NewServiceError(catalogServiceName, "update_item", err)
	}

	if item.Tags, err = s.tags.ListByItem(ctx, item.ID); err != nil {
		return nil, false, NewServiceError(catalogServiceName, "update_item", err)
	}

	eventType := events.ItemUpdated
	if created {
		eventType = events.ItemCreated
	}
	emit(ctx, s.emitter, s.logger, eventType, item.ID, item.StoreID, item)
	return item, created, nil
}

// DeleteItem implements CatalogService.DeleteItem
func (s *catalogServiceImpl) DeleteItem(ctx context.Context, id int64) error {
	item, err := s.items.GetByID(ctx, id)
	if err != nil {
		return NewServiceError(catalogServiceName, "delete_item", err)
	}
	if err := s.items.Delete(ctx, id); err != nil {
		return NewServiceError(catalogServiceName, "delete_item", err)
	}

	emit(ctx, s.emitter, s.logger, events.ItemDeleted, id, item.StoreID, nil)
	return nil
}
