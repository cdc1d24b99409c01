package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/phrazzld/catalog-api/internal/domain"
	"github.com/phrazzld/catalog-api/internal/platform/logger"
	"github.com/phrazzld/catalog-api/internal/store"
)

// PostgresTagStore implements store.TagStore, including the items_tags association.
type PostgresTagStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresTagStore creates a new PostgreSQL implementation of the TagStore interface.
// If logger is nil, a default logger will be used.
func NewPostgresTagStore(db store.DBTX, logger *slog.Logger) *PostgresTagStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresTagStore{
		db:     db,
		logger: logger.With(slog.String("component", "tag_store")),
	}
}

var _ store.TagStore = (*PostgresTagStore)(nil)

// Create implements store.TagStore.Create
func (s *PostgresTagStore) Create(ctx context.Context, tag *domain.Tag) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := tag.Validate(); err != nil {
		return err
	}

	err := s.db.QueryRowContext(ctx, `
		INSERT INTO tags (name, store_id)
		VALUES ($1, $2)
		RETURNING id
	`, tag.Name, tag.StoreID).Scan(&tag.ID)
	if err != nil {
		mapped := MapError(err)
		if errors.Is(mapped, store.ErrStoreNotFound) {
			log.Debug("store not found for new tag", slog.Int64("store_id", tag.StoreID))
			return store.ErrStoreNotFound
		}
		log.Error("failed to create tag",
			slog.String("error", err.Error()),
			slog.Int64("store_id", tag.StoreID))
		return mapped
	}

	log.Info("tag created successfully",
		slog.Int64("tag_id", tag.ID),
		slog.Int64("store_id", tag.StoreID))
	return nil
}

// GetByID implements store.TagStore.GetByID
func (s *PostgresTagStore) GetByID(ctx context.Context, id int64) (*domain.Tag, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var tag domain.Tag
	err := s.db.QueryRowContext(ctx, `SELECT id, name, store_id FROM tags WHERE id = $1`, id).
		Scan(&tag.ID, &tag.Name, &tag.StoreID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("tag not found", slog.Int64("tag_id", id))
			return nil, store.ErrTagNotFound
		}
		log.Error("failed to get tag by ID",
			slog.String("error", err.Error()),
			slog.Int64("tag_id", id))
		return nil, err
	}
	return &tag, nil
}

// ListByStore implements store.TagStore.ListByStore
func (s *PostgresTagStore) ListByStore(ctx context.Context, storeID int64) ([]*domain.Tag, error) {
	return s.queryTags(ctx, `
		SELECT id, name, store_id
		FROM tags
		WHERE store_id = $1
		ORDER BY id
	`, storeID)
}

// ListByItem implements store.TagStore.ListByItem
func (s *PostgresTagStore) ListByItem(ctx context.Context, itemID int64) ([]*domain.Tag, error) {
	return s.queryTags(ctx, `
		SELECT t.id, t.name, t.store_id
		FROM tags t
		JOIN items_tags it ON it.tag_id = t.id
		WHERE it.item_id = $1
		ORDER BY t.id
	`, itemID)
}

func (s *PostgresTagStore) queryTags(ctx context.Context, query string, args ...any) ([]*domain.Tag, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query tags", slog.String("error", err.Error()))
		return nil, err
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			log.Error("failed to close rows", slog.String("error", closeErr.Error()))
		}
	}()

	tags := []*domain.Tag{}
	for rows.Next() {
		var tag domain.Tag
		if err := rows.Scan(&tag.ID, &tag.Name, &tag.StoreID); err != nil {
			log.Error("failed to scan tag row", slog.String("error", err.Error()))
			return nil, err
		}
		tags = append(tags, &tag)
	}
	if err := rows.Err(); err != nil {
		log.Error("error iterating tag rows", slog.String("error", err.Error()))
		return nil, err
	}
	return tags, nil
}

// ListItems implements store.TagStore.ListItems
func (s *PostgresTagStore) ListItems(ctx context.Context, tagID int64) ([]*domain.Item, error) {
	return queryItems(ctx, s.db, logger.FromContextOrDefault(ctx, s.logger), `
		SELECT i.id, i.name, i.price, i.store_id
		FROM items i
		JOIN items_tags it ON it.item_id = i.id
		WHERE it.tag_id = $1
		ORDER BY i.id
	`, tagID)
}

// Link implements store.TagStore.Link. The foreign keys report which side is missing.
func (s *PostgresTagStore) Link(ctx context.Context, itemID, tagID int64) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO items_tags (item_id, tag_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`, itemID, tagID)
	if err != nil {
		if IsForeignKeyViolation(err) {
			if violatedConstraint(err) == constraintLinkTag {
				return store.ErrTagNotFound
			}
			return store.ErrItemNotFound
		}
		log.Error("failed to link tag to item",
			slog.String("error", err.Error()),
			slog.Int64("item_id", itemID),
			slog.Int64("tag_id", tagID))
		return MapError(err)
	}

	log.Info("tag linked to item",
		slog.Int64("item_id", itemID),
		slog.Int64("tag_id", tagID))
	return nil
}

// Unlink implements store.TagStore.Unlink
func (s *PostgresTagStore) Unlink(ctx context.Context, itemID, tagID int64) (bool, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `
		DELETE FROM items_tags
		WHERE item_id = $1 AND tag_id = $2
	`, itemID, tagID)
	if err != nil {
		log.Error("failed to unlink tag from item",
			slog.String("error", err.Error()),
			slog.Int64("item_id", itemID),
			slog.Int64("tag_id", tagID))
		return false, MapError(err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	log.Info("tag unlinked from item",
		slog.Int64("item_id", itemID),
		slog.Int64("tag_id", tagID),
		slog.Bool("removed", n > 0))
	return n > 0, nil
}

// DeleteIfUnused implements store.TagStore.DeleteIfUnused.
//
// The tag row is locked FOR UPDATE before counting associations. Inserting
// into items_tags takes a FOR KEY SHARE lock on the referenced tag, so a
// concurrent Link either commits before the count or waits until the tag is
// gone and then fails its foreign key check.
func (s *PostgresTagStore) DeleteIfUnused(ctx context.Context, id int64) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	err := store.WithinTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		var locked int64
		err := tx.QueryRowContext(ctx, `SELECT id FROM tags WHERE id = $1 FOR UPDATE`, id).Scan(&locked)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return store.ErrTagNotFound
			}
			return err
		}

		var links int64
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM items_tags WHERE tag_id = $1`, id).
			Scan(&links); err != nil {
			return err
		}
		if links > 0 {
			return store.ErrTagInUse
		}

		_, err = tx.ExecContext(ctx, `DELETE FROM tags WHERE id = $1`, id)
		if err != nil && IsForeignKeyViolation(err) {
			return store.ErrTagInUse
		}
		return err
	})
	if err != nil {
		switch {
		case errors.Is(err, store.ErrTagNotFound):
			log.Debug("tag not found for deletion", slog.Int64("tag_id", id))
			return err
		case errors.Is(err, store.ErrTagInUse):
			log.Info("refused to delete tag still linked to items", slog.Int64("tag_id", id))
			return err
		}
		log.Error("failed to delete tag",
			slog.String("error", err.Error()),
			slog.Int64("tag_id", id))
		return MapError(err)
	}

	log.Info("tag deleted successfully", slog.Int64("tag_id", id))
	return nil
}

// WithTx implements store.TagStore.WithTx
func (s *PostgresTagStore) WithTx(tx *sql.Tx) store.TagStore {
	return &PostgresTagStore{db: tx, logger: s.logger}
}
