package store

import (
	"context"
	"database/sql"

	"github.com/phrazzld/catalog-api/internal/domain"
)

// StoreStore defines persistence for catalog stores.
type StoreStore interface {
	// Create saves a new store and sets s.ID.
	// Returns ErrStoreNameExists if the name is taken.
	Create(ctx context.Context, s *domain.Store) error

	// GetByID retrieves a store without its items and tags.
	// Returns ErrStoreNotFound if the store does not exist.
	GetByID(ctx context.Context, id int64) (*domain.Store, error)

	// List returns every store ordered by ID, without items and tags.
	List(ctx context.Context) ([]*domain.Store, error)

	// Delete removes the store, its items, its tags and every item-tag
	// association touching them, atomically.
	// Returns ErrStoreNotFound if the store does not exist.
	Delete(ctx context.Context, id int64) error

	WithTx(tx *sql.Tx) StoreStore
}

// ItemStore defines persistence for items.
type ItemStore interface {
	// Create saves a new item and sets item.ID.
	// Returns ErrStoreNotFound if item.StoreID does not reference a store.
	Create(ctx context.Context, item *domain.Item) error

	// GetByID retrieves an item without its tags.
	// Returns ErrItemNotFound if the item does not exist.
	GetByID(ctx context.Context, id int64) (*domain.Item, error)

	// List returns every item ordered by ID.
	List(ctx context.Context) ([]*domain.Item, error)

	// ListByStore returns the items owned by a store ordered by ID.
	ListByStore(ctx context.Context, storeID int64) ([]*domain.Item, error)

	// Upsert updates the name and price of the item with item.ID, or inserts
	// it with that ID when absent. StoreID is only used on insert.
	// created reports whether a new row was inserted.
	// Returns ErrStoreNotFound when inserting with an unknown StoreID.
	Upsert(ctx context.Context, item *domain.Item) (created bool, err error)

	// Delete removes the item and its tag associations.
	// Returns ErrItemNotFound if the item does not exist.
	Delete(ctx context.Context, id int64) error

	WithTx(tx *sql.Tx) ItemStore
}

// TagStore defines persistence for tags and the item-tag association.
type TagStore interface {
	// Create saves a new tag and sets tag.ID.
	// Returns ErrStoreNotFound if tag.StoreID does not reference a store.
	Create(ctx context.Context, tag *domain.Tag) error

	// GetByID retrieves a tag without its items.
	// Returns ErrTagNotFound if the tag does not exist.
	GetByID(ctx context.Context, id int64) (*domain.Tag, error)

	// ListByStore returns the tags owned by a store ordered by ID.
	ListByStore(ctx context.Context, storeID int64) ([]*domain.Tag, error)

	// ListByItem returns the tags linked to an item ordered by ID.
	ListByItem(ctx context.Context, itemID int64) ([]*domain.Tag, error)

	// ListItems returns the items linked to a tag ordered by ID.
	ListItems(ctx context.Context, tagID int64) ([]*domain.Item, error)

	// Link associates an item with a tag. Linking an existing pair is a no-op.
	// Returns ErrItemNotFound or ErrTagNotFound if either side is missing.
	Link(ctx context.Context, itemID, tagID int64) error

	// Unlink removes the association and reports whether one existed.
	Unlink(ctx context.Context, itemID, tagID int64) (removed bool, err error)

	// DeleteIfUnused deletes the tag only when no item references it. The
	// check and the delete happen atomically with respect to concurrent Link calls.
	// Returns ErrTagNotFound if the tag does not exist and ErrTagInUse if
	// any item is still linked.
	DeleteIfUnused(ctx context.Context, id int64) error

	WithTx(tx *sql.Tx) TagStore
}
