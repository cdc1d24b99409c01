package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/phrazzld/catalog-api/internal/domain"
	"github.com/phrazzld/catalog-api/internal/events"
	"github.com/phrazzld/catalog-api/internal/platform/logger"
	"github.com/phrazzld/catalog-api/internal/store"
)

const taggingServiceName = "tagging"

// TaggingService manages tags, their links to items and guarded tag deletion.
type TaggingService interface {
	// ListTagsForStore returns the tags owned by a store.
	// Returns store.ErrStoreNotFound if the store does not exist.
	ListTagsForStore(ctx context.Context, storeID int64) ([]*domain.Tag, error)

	// CreateTag creates a tag in an existing store.
	CreateTag(ctx context.Context, storeID int64, name string) (*domain.Tag, error)

	// GetTag returns a tag with the items linked to it.
	GetTag(ctx context.Context, id int64) (*domain.Tag, error)

	// LinkTagToItem links an item and a tag. Linking an already linked pair
	// succeeds without creating a second association.
	LinkTagToItem(ctx context.Context, itemID, tagID int64) (*domain.Tag, error)

	// UnlinkTagFromItem removes the link between an item and a tag if there
	// is one. Both must exist; a missing link is not an error.
	UnlinkTagFromItem(ctx context.Context, itemID, tagID int64) (*domain.Item, *domain.Tag, error)

	// DeleteTag deletes a tag that no item is linked to.
	// Returns store.ErrTagInUse while any item is still linked.
	DeleteTag(ctx context.Context, id int64) error
}

type taggingServiceImpl struct {
	stores  store.StoreStore
	items   store.ItemStore
	tags    store.TagStore
	emitter events.EventEmitter
	logger  *slog.Logger
}

// NewTaggingService creates a TaggingService. emitter may be nil.
func NewTaggingService(
	stores store.StoreStore,
	items store.ItemStore,
	tags store.TagStore,
	emitter events.EventEmitter,
	logger *slog.Logger,
) (TaggingService, error) {
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

	return &taggingServiceImpl{
		stores:  stores,
		items:   items,
		tags:    tags,
		emitter: emitter,
		logger:  logger.With(slog.String("component", "tagging_service")),
	}, nil
}

// ListTagsForStore implements TaggingService.ListTagsForStore
func (s *taggingServiceImpl) ListTagsForStore(ctx context.Context, storeID int64) ([]*domain.Tag, error) {
	if _, err := s.stores.GetByID(ctx, storeID); err != nil {
		return nil, NewServiceError(taggingServiceName, "list_tags", err)
	}

	tags, err := s.tags.ListByStore(ctx, storeID)
	if err != nil {
		return nil, NewServiceError(taggingServiceName, "list_tags", err)
	}
	return tags, nil
}

// CreateTag implements TaggingService.CreateTag
func (s *taggingServiceImpl) CreateTag(ctx context.Context, storeID int64, name string) (*domain.Tag, error) {
	tag, err := domain.NewTag(storeID, name)
	if err != nil {
		return nil, NewServiceError(taggingServiceName, "create_tag", err)
	}

	if _, err := s.stores.GetByID(ctx, storeID); err != nil {
		return nil, NewServiceError(taggingServiceName, "create_tag", err)
	}

	if err := s.tags.Create(ctx, tag); err != nil {
		return nil, NewServiceError(taggingServiceName, "create_tag", err)
	}

	emit(ctx, s.emitter, s.logger, events.TagCreated, tag.ID, tag.StoreID, tag)
	return tag, nil
}

// GetTag implements TaggingService.GetTag
func (s *taggingServiceImpl) GetTag(ctx context.Context, id int64) (*domain.Tag, error) {
	tag, err := s.tags.GetByID(ctx, id)
	if err != nil {
		return nil, NewServiceError(taggingServiceName, "get_tag", err)
	}
	if tag.Items, err = s.tags.ListItems(ctx, id); err != nil {
		return nil, NewServiceError(taggingServiceName, "get_tag", err)
	}
	return tag, nil
}

// getPair loads both ends of a link, item first.
func (s *taggingServiceImpl) getPair(ctx context.Context, itemID, tagID int64) (*domain.Item, *domain.Tag, error) {
	item, err := s.items.GetByID(ctx, itemID)
	if err != nil {
		return nil, nil, err
	}
	tag, err := s.tags.GetByID(ctx, tagID)
	if err != nil {
		return nil, nil, err
	}
	return item, tag, nil
}

// LinkTagToItem implements TaggingService.LinkTagToItem
func (s *taggingServiceImpl) LinkTagToItem(ctx context.Context, itemID, tagID int64) (*domain.Tag, error) {
	item, tag, err := s.getPair(ctx, itemID, tagID)
	if err != nil {
		return nil, NewServiceError(taggingServiceName, "link", err)
	}

	// Either side may disappear between the lookups and the insert; the
	// store reports that as not found as well.
	if err := s.tags.Link(ctx, itemID, tagID); err != nil {
		return nil, NewServiceError(taggingServiceName, "link", err)
	}

	if tag.Items, err = s.tags.ListItems(ctx, tagID); err != nil {
		return nil, NewServiceError(taggingServiceName, "link", err)
	}

	emit(ctx, s.emitter, s.logger, events.TagLinked, tagID, tag.StoreID,
		map[string]int64{"item_id": item.ID, "tag_id": tag.ID})
	return tag, nil
}

// UnlinkTagFromItem implements TaggingService.UnlinkTagFromItem
func (s *taggingServiceImpl) UnlinkTagFromItem(
	ctx context.Context,
	itemID, tagID int64,
) (*domain.Item, *domain.Tag, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	item, tag, err := s.getPair(ctx, itemID, tagID)
	if err != nil {
		return nil, nil, NewServiceError(taggingServiceName, "unlink", err)
	}

	removed, err := s.tags.Unlink(ctx, itemID, tagID)
	if err != nil {
		return nil, nil, NewServiceError(taggingServiceName, "unlink", err)
	}

	if removed {
		emit(ctx, s.emitter, s.logger, events.TagUnlinked, tagID, tag.StoreID,
			map[string]int64{"item_id": item.ID, "tag_id": tag.ID})
	} else {
		log.Debug("unlink of unlinked pair ignored",
			slog.Int64("item_id", itemID),
			slog.Int64("tag_id", tagID))
	}

	if item.Tags, err = s.tags.ListByItem(ctx, itemID); err != nil {
		return nil, nil, NewServiceError(taggingServiceName, "unlink", err)
	}
	if tag.Items, err = s.tags.ListItems(ctx, tagID); err != nil {
		return nil, nil, NewServiceError(taggingServiceName, "unlink", err)
	}
	return item, tag, nil
}

// DeleteTag implements TaggingService.DeleteTag
func (s *taggingServiceImpl) DeleteTag(ctx context.Context, id int64) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	tag, err := s.tags.GetByID(ctx, id)
	if err != nil {
		return NewServiceError(taggingServiceName, "delete_tag", err)
	}

	// The guard itself runs inside the store's transaction.
	if err := s.tags.DeleteIfUnused(ctx, id); err != nil {
		if errors.Is(err, store.ErrTagInUse) {
			log.Debug("tag still linked to items", slog.Int64("tag_id", id))
		}
		return NewServiceError(taggingServiceName, "delete_tag", err)
	}

	emit(ctx, s.emitter, s.logger, events.TagDeleted, id, tag.StoreID, tag)
	return nil
}
