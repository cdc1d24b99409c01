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

// PostgresStoreStore implements store.StoreStore for catalog stores.
type PostgresStoreStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresStoreStore creates a new PostgreSQL implementation of the StoreStore interface.
// If logger is nil, a default logger will be used.
func NewPostgresStoreStore(db store.DBTX, logger *slog.Logger) *PostgresStoreStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresStoreStore{
		db:     db,
		logger: logger.With(slog.String("component", "store_store")),
	}
}

var _ store.StoreStore = (*PostgresStoreStore)(nil)

// Create implements store.StoreStore.Create
func (s *PostgresStoreStore) Create(ctx context.Context, st *domain.Store) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := st.Validate(); err != nil {
		return err
	}

	err := s.db.QueryRowContext(ctx, `INSERT INTO stores (name) VALUES ($1) RETURNING id`, st.Name).
		Scan(&st.ID)
	if err != nil {
		mapped := MapError(err)
		if errors.Is(mapped, store.ErrStoreNameExists) {
			log.Debug("store name already exists", slog.String("name", st.Name))
			return store.ErrStoreNameExists
		}
		log.Error("failed to create store",
			slog.String("error", err.Error()),
			slog.String("name", st.Name))
		return mapped
	}

	log.Info("store created successfully",
		slog.Int64("store_id", st.ID),
		slog.String("name", st.Name))
	return nil
}

// GetByID implements store.StoreStore.GetByID
func (s *PostgresStoreStore) GetByID(ctx context.Context, id int64) (*domain.Store, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var st domain.Store
	err := s.db.QueryRowContext(ctx, `SELECT id, name FROM stores WHERE id = $1`, id).
		Scan(&st.ID, &st.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("store not found", slog.Int64("store_id", id))
			return nil, store.ErrStoreNotFound
		}
		log.Error("failed to get store by ID",
			slog.String("error", err.Error()),
			slog.Int64("store_id", id))
		return nil, err
	}
	return &st, nil
}

// List implements store.StoreStore.List
func (s *PostgresStoreStore) List(ctx context.Context) ([]*domain.Store, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, `SELECT id, name FROM stores ORDER BY id`)
	if err != nil {
		log.Error("failed to list stores", slog.String("error", err.Error()))
		return nil, err
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			log.Error("failed to close rows", slog.String("error", closeErr.Error()))
		}
	}()

	stores := []*domain.Store{}
	for rows.Next() {
		var st domain.Store
		if err := rows.Scan(&st.ID, &st.Name); err != nil {
			log.Error("failed to scan store row", slog.String("error", err.Error()))
			return nil, err
		}
		stores = append(stores, &st)
	}
	if err := rows.Err(); err != nil {
		log.Error("error iterating store rows", slog.String("error", err.Error()))
		return nil, err
	}

	return stores, nil
}

// Delete implements store.StoreStore.Delete. Associations of the store's tags
// are cleared first because items_tags.tag_id does not cascade; items, tags
// and item associations then go with the store row.
func (s *PostgresStoreStore) Delete(ctx context.Context, id int64) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	err := store.WithinTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
			DELETE FROM items_tags
			WHERE tag_id IN (SELECT id FROM tags WHERE store_id = $1)
		`, id); err != nil {
			return err
		}

		result, err := tx.ExecContext(ctx, `DELETE FROM stores WHERE id = $1`, id)
		if err != nil {
			return err
		}
		return CheckRowsAffected(result, store.ErrStoreNotFound)
	})
	if err != nil {
		if errors.Is(err, store.ErrStoreNotFound) {
			log.Debug("store not found for deletion", slog.Int64("store_id", id))
			return err
		}
		log.Error("failed to delete store",
			slog.String("error", err.Error()),
			slog.Int64("store_id", id))
		return MapError(err)
	}

	log.Info("store deleted successfully", slog.Int64("store_id", id))
	return nil
}

// WithTx implements store.StoreStore.WithTx
func (s *PostgresStoreStore) WithTx(tx *sql.Tx) store.StoreStore {
	return &PostgresStoreStore{db: tx, logger: s.logger}
}
