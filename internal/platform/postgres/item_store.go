package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/phrazzld/catalog-api/internal/domain"
	"github.com/phrazzld/catalog-api/internal/platform/logger"
	"github.com/phrazzld/catalog-api/internal/store"
)

// PostgresItemStore implements store.ItemStore.
type PostgresItemStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresItemStore creates a new PostgreSQL implementation of the ItemStore interface.
// If logger is nil, a default logger will be used.
func NewPostgresItemStore(db store.DBTX, logger *slog.Logger) *PostgresItemStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresItemStore{
		db:     db,
		logger: logger.With(slog.String("component", "item_store")),
	}
}

var _ store.ItemStore = (*PostgresItemStore)(nil)

// Create implements store.ItemStore.Create
func (s *PostgresItemStore) Create(ctx context.Context, item *domain.Item) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := item.Validate(); err != nil {
		return err
	}

	query := `
		INSERT INTO items (name, price, store_id)
		VALUES ($1, $2, $3)
		RETURNING id
	`
	err := s.db.QueryRowContext(ctx, query, item.Name, item.Price, item.StoreID).Scan(&item.ID)
	if err != nil {
		mapped := MapError(err)
		if errors.Is(mapped, store.ErrStoreNotFound) {
			log.Debug("store not found for new item", slog.Int64("store_id", item.StoreID))
			return store.ErrStoreNotFound
		}
		log.Error("failed to create item",
			slog.String("error", err.Error()),
			slog.Int64("store_id", item.StoreID))
		return mapped
	}

	log.Info("item created successfully",
		slog.Int64("item_id", item.ID),
		slog.Int64("store_id", item.StoreID))
	return nil
}

// GetByID implements store.ItemStore.GetByID
func (s *PostgresItemStore) GetByID(ctx context.Context, id int64) (*domain.Item, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var item domain.Item
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, price, store_id
		FROM items
		WHERE id = $1
	`, id).Scan(&item.ID, &item.Name, &item.Price, &item.StoreID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("item not found", slog.Int64("item_id", id))
			return nil, store.ErrItemNotFound
		}
		log.Error("failed to get item by ID",
			slog.String("error", err.Error()),
			slog.Int64("item_id", id))
		return nil, err
	}
	return &item, nil
}

// List implements store.ItemStore.List
func (s *PostgresItemStore) List(ctx context.Context) ([]*domain.Item, error) {
	return queryItems(ctx, s.db, logger.FromContextOrDefault(ctx, s.logger), `
		SELECT id, name, price, store_id
		FROM items
		ORDER BY id
	`)
}

// ListByStore implements store.ItemStore.ListByStore
func (s *PostgresItemStore) ListByStore(ctx context.Context, storeID int64) ([]*domain.Item, error) {
	return queryItems(ctx, s.db, logger.FromContextOrDefault(ctx, s.logger), `
		SELECT id, name, price, store_id
		FROM items
		WHERE store_id = $1
		ORDER BY id
	`, storeID)
}

// queryItems runs a query selecting (id, name, price, store_id) rows.
// It returns an empty slice, not nil, when nothing matches.
func queryItems(ctx context.Context, db store.DBTX, log *slog.Logger, query string, args ...any) ([]*domain.Item, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query items", slog.String("error", err.Error()))
		return nil, err
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			log.Error("failed to close rows", slog.String("error", closeErr.Error()))
		}
	}()

	items := []*domain.Item{}
	for rows.Next() {
		var item domain.Item
		if err := rows.Scan(&item.ID, &item.Name, &item.Price, &item.StoreID); err != nil {
			log.Error("failed to scan item row", slog.String("error", err.Error()))
			return nil, err
		}
		items = append(items, &item)
	}
	if err := rows.Err(); err != nil {
		log.Error("error iterating item rows", slog.String("error", err.Error()))
		return nil, err
	}
	return items, nil
}

// Upsert implements store.ItemStore.Upsert. When a row is inserted with a
// caller-chosen ID the items.id sequence is moved past it so that later
// server-assigned IDs cannot collide.
func (s *PostgresItemStore) Upsert(ctx context.Context, item *domain.Item) (bool, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := validateNameAndPrice(item); err != nil {
		return false, err
	}

	var created bool
	err := store.WithinTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx, `
			UPDATE items SET name = $2, price = $3
			WHERE id = $1
			RETURNING store_id
		`, item.ID, item.Name, item.Price).Scan(&item.StoreID)
		if err == nil {
			return nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return err
		}

		if item.StoreID <= 0 {
			return domain.ErrMissingStoreID
		}

		// A concurrent insert of the same ID falls back to the update path.
		err = tx.QueryRowContext(ctx, `
			INSERT INTO items (id, name, price, store_id)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, price = EXCLUDED.price
			RETURNING store_id, (xmax = 0) AS inserted
		`, item.ID, item.Name, item.Price, item.StoreID).Scan(&item.StoreID, &created)
		if err != nil {
			return err
		}
		if !created {
			return nil
		}

		_, err = tx.ExecContext(ctx, `
			SELECT setval(pg_get_serial_sequence('items', 'id'), GREATEST((SELECT MAX(id) FROM items), 1))
		`)
		return err
	})
	if err != nil {
		if errors.Is(err, domain.ErrValidation) {
			return false, err
		}
		mapped := MapError(err)
		if errors.Is(mapped, store.ErrStoreNotFound) {
			log.Debug("store not found for upserted item", slog.Int64("store_id", item.StoreID))
			return false, store.ErrStoreNotFound
		}
		log.Error("failed to upsert item",
			slog.String("error", err.Error()),
			slog.Int64("item_id", item.ID))
		return false, mapped
	}

	log.Info("item upserted successfully",
		slog.Int64("item_id", item.ID),
		slog.Bool("created", created))
	return created, nil
}

func validateNameAndPrice(item *domain.Item) error {
	probe := *item
	if probe.StoreID <= 0 {
		probe.StoreID = 1
	}
	return probe.Validate()
}

// Delete implements store.ItemStore.Delete. Associations cascade.
func (s *PostgresItemStore) Delete(ctx context.Context, id int64) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM items WHERE id = $1`, id)
	if err != nil {
		log.Error("failed to delete item",
			slog.String("error", err.Error()),
			slog.Int64("item_id", id))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, store.ErrItemNotFound); err != nil {
		log.Debug("item not found for deletion", slog.Int64("item_id", id))
		return err
	}

	log.Info("item deleted successfully", slog.Int64("item_id", id))
	return nil
}

// WithTx implements store.ItemStore.WithTx
func (s *PostgresItemStore) WithTx(tx *sql.Tx) store.ItemStore {
	return &PostgresItemStore{db: tx, logger: s.logger}
}
