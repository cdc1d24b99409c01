package mocks

import (
	"context"
	"database/sql"
	"sort"
	"sync"

	"github.com/phrazzld/catalog-api/internal/domain"
	"github.com/phrazzld/catalog-api/internal/store"
)

// MockCatalog bundles StoreStore, ItemStore and TagStore mocks over one shared
// in-memory dataset, so cascades, links and the tag deletion guard behave
// like the PostgreSQL schema.
type MockCatalog struct {
	Stores *MockStoreStore
	Items  *MockItemStore
	Tags   *MockTagStore
}

// NewMockCatalog creates an empty catalog.
func NewMockCatalog() *MockCatalog {
	state := &catalogState{
		stores: make(map[int64]*domain.Store),
		items:  make(map[int64]*domain.Item),
		tags:   make(map[int64]*domain.Tag),
		links:  make(map[link]struct{}),
	}
	return &MockCatalog{
		Stores: &MockStoreStore{state: state},
		Items:  &MockItemStore{state: state},
		Tags:   &MockTagStore{state: state},
	}
}

type link struct {
	itemID, tagID int64
}

type catalogState struct {
	mu sync.Mutex

	lastStoreID, lastItemID, lastTagID int64

	stores map[int64]*domain.Store
	items  map[int64]*domain.Item
	tags   map[int64]*domain.Tag
	links  map[link]struct{}
}

func copyStore(s *domain.Store) *domain.Store {
	return &domain.Store{ID: s.ID, Name: s.Name}
}

func copyItem(i *domain.Item) *domain.Item {
	return &domain.Item{ID: i.ID, Name: i.Name, Price: i.Price, StoreID: i.StoreID}
}

func copyTag(t *domain.Tag) *domain.Tag {
	return &domain.Tag{ID: t.ID, Name: t.Name, StoreID: t.StoreID}
}

func sortedIDs[T any](m map[int64]T, keep func(T) bool) []int64 {
	ids := make([]int64, 0, len(m))
	for id, v := range m {
		if keep(v) {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// deleteTagLocked removes a tag and every association touching it.
func (c *catalogState) deleteTagLocked(id int64) {
	delete(c.tags, id)
	for l := range c.links {
		if l.tagID == id {
			delete(c.links, l)
		}
	}
}

func (c *catalogState) deleteItemLocked(id int64) {
	delete(c.items, id)
	for l := range c.links {
		if l.itemID == id {
			delete(c.links, l)
		}
	}
}

// MockStoreStore implements store.StoreStore for testing.
type MockStoreStore struct {
	CreateFn  func(ctx context.Context, s *domain.Store) error
	GetByIDFn func(ctx context.Context, id int64) (*domain.Store, error)
	ListFn    func(ctx context.Context) ([]*domain.Store, error)
	DeleteFn  func(ctx context.Context, id int64) error

	state *catalogState
}

var _ store.StoreStore = (*MockStoreStore)(nil)

// Create implements store.StoreStore.Create
func (m *MockStoreStore) Create(ctx context.Context, s *domain.Store) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, s)
	}
	if err := s.Validate(); err != nil {
		return err
	}

	c := m.state
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, existing := range c.stores {
		if existing.Name == s.Name {
			return store.ErrStoreNameExists
		}
	}
	c.lastStoreID++
	s.ID = c.lastStoreID
	c.stores[s.ID] = copyStore(s)
	return nil
}

// GetByID implements store.StoreStore.GetByID
func (m *MockStoreStore) GetByID(ctx context.Context, id int64) (*domain.Store, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}

	c := m.state
	c.mu.Lock()
	defer c.mu.Unlock()

	s, ok := c.stores[id]
	if !ok {
		return nil, store.ErrStoreNotFound
	}
	return copyStore(s), nil
}

// List implements store.StoreStore.List
func (m *MockStoreStore) List(ctx context.Context) ([]*domain.Store, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx)
	}

	c := m.state
	c.mu.Lock()
	defer c.mu.Unlock()

	ids := sortedIDs(c.stores, func(*domain.Store) bool { return true })
	out := make([]*domain.Store, 0, len(ids))
	for _, id := range ids {
		out = append(out, copyStore(c.stores[id]))
	}
	return out, nil
}

// Delete implements store.StoreStore.Delete
func (m *MockStoreStore) Delete(ctx context.Context, id int64) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}

	c := m.state
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.stores[id]; !ok {
		return store.ErrStoreNotFound
	}
	for tagID, t := range c.tags {
		if t.StoreID == id {
			c.deleteTagLocked(tagID)
		}
	}
	for itemID, i := range c.items {
		if i.StoreID == id {
			c.deleteItemLocked(itemID)
		}
	}
	delete(c.stores, id)
	return nil
}

// WithTx implements store.StoreStore.WithTx
func (m *MockStoreStore) WithTx(tx *sql.Tx) store.StoreStore {
	return m
}

// MockItemStore implements store.ItemStore for testing.
type MockItemStore struct {
	CreateFn      func(ctx context.Context, item *domain.Item) error
	GetByIDFn     func(ctx context.Context, id int64) (*domain.Item, error)
	ListFn        func(ctx context.Context) ([]*domain.Item, error)
	ListByStoreFn func(ctx context.Context, storeID int64) ([]*domain.Item, error)
	UpsertFn      func(ctx context.Context, item *domain.Item) (bool, error)
	DeleteFn      func(ctx context.Context, id int64) error

	state *catalogState
}

var _ store.ItemStore = (*MockItemStore)(nil)

// Create implements store.ItemStore.Create
func (m *MockItemStore) Create(ctx context.Context, item *domain.Item) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, item)
	}
	if err := item.Validate(); err != nil {
		return err
	}

	c := m.state
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.stores[item.StoreID]; !ok {
		return store.ErrStoreNotFound
	}
	c.lastItemID++
	item.ID = c.lastItemID
	c.items[item.ID] = copyItem(item)
	return nil
}

// GetByID implements store.ItemStore.GetByID
func (m *MockItemStore) GetByID(ctx context.Context, id int64) (*domain.Item, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}

	c := m.state
	c.mu.Lock()
	defer c.mu.Unlock()

	item, ok := c.items[id]
	if !ok {
		return nil, store.ErrItemNotFound
	}
	return copyItem(item), nil
}

// List implements store.ItemStore.List
func (m *MockItemStore) List(ctx context.Context) ([]*domain.Item, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx)
	}
	return m.list(func(*domain.Item) bool { return true }), nil
}

// ListByStore implements store.ItemStore.ListByStore
func (m *MockItemStore) ListByStore(ctx context.Context, storeID int64) ([]*domain.Item, error) {
	if m.ListByStoreFn != nil {
		return m.ListByStoreFn(ctx, storeID)
	}
	return m.list(func(i *domain.Item) bool { return i.StoreID == storeID }), nil
}

func (m *MockItemStore) list(keep func(*domain.Item) bool) []*domain.Item {
	c := m.state
	c.mu.Lock()
	defer c.mu.Unlock()

	ids := sortedIDs(c.items, keep)
	out := make([]*domain.Item, 0, len(ids))
	for _, id := range ids {
		out = append(out, copyItem(c.items[id]))
	}
	return out
}

// Upsert implements store.ItemStore.Upsert
func (m *MockItemStore) Upsert(ctx context.Context, item *domain.Item) (bool, error) {
	if m.UpsertFn != nil {
		return m.UpsertFn(ctx, item)
	}
	if err := domain.ValidatePrice(item.Price); err != nil {
		return false, err
	}

	c := m.state
	c.mu.Lock()
	defer c.mu.Unlock()

	if existing, ok := c.items[item.ID]; ok {
		existing.Name = item.Name
		existing.Price = item.Price
		item.StoreID = existing.StoreID
		return false, nil
	}
	if item.StoreID <= 0 {
		return false, domain.ErrMissingStoreID
	}
	if _, ok := c.stores[item.StoreID]; !ok {
		return false, store.ErrStoreNotFound
	}
	c.items[item.ID] = copyItem(item)
	if item.ID > c.lastItemID {
		c.lastItemID = item.ID
	}
	return true, nil
}

// Delete implements store.ItemStore.Delete
func (m *MockItemStore) Delete(ctx context.Context, id int64) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}

	c := m.state
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.items[id]; !ok {
		return store.ErrItemNotFound
	}
	c.deleteItemLocked(id)
	return nil
}

// WithTx implements store.ItemStore.WithTx
func (m *MockItemStore) WithTx(tx *sql.Tx) store.ItemStore {
	return m
}

// MockTagStore implements store.TagStore for testing.
type MockTagStore struct {
	CreateFn         func(ctx context.Context, tag *domain.Tag) error
	GetByIDFn        func(ctx context.Context, id int64) (*domain.Tag, error)
	LinkFn           func(ctx context.Context, itemID, tagID int64) error
	UnlinkFn         func(ctx context.Context, itemID, tagID int64) (bool, error)
	DeleteIfUnusedFn func(ctx context.Context, id int64) error

	state *catalogState
}

var _ store.TagStore = (*MockTagStore)(nil)

// LinkCount returns the number of item-tag associations.
func (m *MockTagStore) LinkCount() int {
	m.state.mu.Lock()
	defer m.state.mu.Unlock()
	return len(m.state.links)
}

// Create implements store.TagStore.Create
func (m *MockTagStore) Create(ctx context.Context, tag *domain.Tag) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, tag)
	}
	if err := tag.Validate(); err != nil {
		return err
	}

	c := m.state
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.stores[tag.StoreID]; !ok {
		return store.ErrStoreNotFound
	}
	c.lastTagID++
	tag.ID = c.lastTagID
	c.tags[tag.ID] = copyTag(tag)
	return nil
}

// GetByID implements store.TagStore.GetByID
func (m *MockTagStore) GetByID(ctx context.Context, id int64) (*domain.Tag, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}

	c := m.state
	c.mu.Lock()
	defer c.mu.Unlock()

	tag, ok := c.tags[id]
	if !ok {
		return nil, store.ErrTagNotFound
	}
	return copyTag(tag), nil
}

// ListByStore implements store.TagStore.ListByStore
func (m *MockTagStore) ListByStore(ctx context.Context, storeID int64) ([]*domain.Tag, error) {
	c := m.state
	c.mu.Lock()
	defer c.mu.Unlock()

	ids := sortedIDs(c.tags, func(t *domain.Tag) bool { return t.StoreID == storeID })
	out := make([]*domain.Tag, 0, len(ids))
	for _, id := range ids {
		out = append(out, copyTag(c.tags[id]))
	}
	return out, nil
}

// ListByItem implements store.TagStore.ListByItem
func (m *MockTagStore) ListByItem(ctx context.Context, itemID int64) ([]*domain.Tag, error) {
	c := m.state
	c.mu.Lock()
	defer c.mu.Unlock()

	ids := sortedIDs(c.tags, func(t *domain.Tag) bool {
		_, ok := c.links[link{itemID: itemID, tagID: t.ID}]
		return ok
	})
	out := make([]*domain.Tag, 0, len(ids))
	for _, id := range ids {
		out = append(out, copyTag(c.tags[id]))
	}
	return out, nil
}

// ListItems implements store.TagStore.ListItems
func (m *MockTagStore) ListItems(ctx context.Context, tagID int64) ([]*domain.Item, error) {
	c := m.state
	c.mu.Lock()
	defer c.mu.Unlock()

	ids := sortedIDs(c.items, func(i *domain.Item) bool {
		_, ok := c.links[link{itemID: i.ID, tagID: tagID}]
		return ok
	})
	out := make([]*domain.Item, 0, len(ids))
	for _, id := range ids {
		out = append(out, copyItem(c.items[id]))
	}
	return out, nil
}

// Link implements store.TagStore.Link
func (m *MockTagStore) Link(ctx context.Context, itemID, tagID int64) error {
	if m.LinkFn != nil {
		return m.LinkFn(ctx, itemID, tagID)
	}

	c := m.state
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.items[itemID]; !ok {
		return store.ErrItemNotFound
	}
	if _, ok := c.tags[tagID]; !ok {
		return store.ErrTagNotFound
	}
	c.links[link{itemID: itemID, tagID: tagID}] = struct{}{}
	return nil
}

// Unlink implements store.TagStore.Unlink
func (m *MockTagStore) Unlink(ctx context.Context, itemID, tagID int64) (bool, error) {
	if m.UnlinkFn != nil {
		return m.UnlinkFn(ctx, itemID, tagID)
	}

	c := m.state
	c.mu.Lock()
	defer c.mu.Unlock()

	key := link{itemID: itemID, tagID: tagID}
	if _, ok := c.links[key]; !ok {
		return false, nil
	}
	delete(c.links, key)
	return true, nil
}

// DeleteIfUnused implements store.TagStore.DeleteIfUnused
func (m *MockTagStore) DeleteIfUnused(ctx context.Context, id int64) error {
	if m.DeleteIfUnusedFn != nil {
		return m.DeleteIfUnusedFn(ctx, id)
	}

	c := m.state
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.tags[id]; !ok {
		return store.ErrTagNotFound
	}
	for l := range c.links {
		if l.tagID == id {
			return store.ErrTagInUse
		}
	}
	c.deleteTagLocked(id)
	return nil
}

// WithTx implements store.TagStore.WithTx
func (m *MockTagStore) WithTx(tx *sql.Tx) store.TagStore {
	return m
}
