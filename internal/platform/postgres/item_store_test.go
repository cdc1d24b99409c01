package postgres

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/phrazzld/catalog-api/internal/domain"
	"github.com/phrazzld/catalog-api/internal/platform/logger"
	"github.com/phrazzld/catalog-api/internal/store"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newItemStore(t *testing.T) (*PostgresItemStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	l, _ := logger.NewTestLogger()
	return NewPostgresItemStore(db, l), mock
}

var (
	updateItemSQL = regexp.QuoteMeta(`UPDATE items SET name = $2, price = $3`)
	insertItemSQL = regexp.QuoteMeta(`INSERT INTO items (id, name, price, store_id)`)
	setvalSQL     = regexp.QuoteMeta(`SELECT setval(pg_get_serial_sequence('items', 'id')`)
)

func TestPostgresItemStore_Create(t *testing.T) {
	t.Parallel()

	s, mock := newItemStore(t)
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO items (name, price, store_id)`)).
		WithArgs("Chair", sqlmock.AnyArg(), int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(3))
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO items (name, price, store_id)`)).
		WithArgs("Chair", sqlmock.AnyArg(), int64(42)).
		WillReturnError(&pgconn.PgError{Code: foreignKeyViolationCode, ConstraintName: constraintItemsStore})

	item := &domain.Item{Name: "Chair", Price: decimal.RequireFromString("15.99"), StoreID: 1}
	require.NoError(t, s.Create(context.Background(), item))
	assert.Equal(t, int64(3), item.ID)

	err := s.Create(context.Background(), &domain.Item{Name: "Chair", Price: decimal.NewFromInt(1), StoreID: 42})
	assert.ErrorIs(t, err, store.ErrStoreNotFound)

	err = s.Create(context.Background(), &domain.Item{Name: "", Price: decimal.NewFromInt(1), StoreID: 1})
	assert.ErrorIs(t, err, domain.ErrValidation)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresItemStore_GetByID(t *testing.T) {
	t.Parallel()

	s, mock := newItemStore(t)
	mock.ExpectQuery(regexp.QuoteMeta(`FROM items`)).WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "price", "store_id"}).AddRow(1, "Chair", "15.99", 2))
	mock.ExpectQuery(regexp.QuoteMeta(`FROM items`)).WithArgs(int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "price", "store_id"}))

	item, err := s.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Chair", item.Name)
	assert.Equal(t, "15.99", item.Price.StringFixed(2))
	assert.Equal(t, int64(2), item.StoreID)

	_, err = s.GetByID(context.Background(), 2)
	assert.ErrorIs(t, err, store.ErrItemNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresItemStore_Upsert(t *testing.T) {
	t.Parallel()

	t.Run("updates existing item and keeps its store", func(t *testing.T) {
		s, mock := newItemStore(t)
		mock.ExpectBegin()
		mock.ExpectQuery(updateItemSQL).WithArgs(int64(7), "Desk", sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"store_id"}).AddRow(2))
		mock.ExpectCommit()

		item := &domain.Item{ID: 7, Name: "Desk", Price: decimal.NewFromInt(80), StoreID: 5}
		created, err := s.Upsert(context.Background(), item)
		require.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, int64(2), item.StoreID, "store_id is immutable")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("inserts with caller ID and advances the sequence", func(t *testing.T) {
		s, mock := newItemStore(t)
		mock.ExpectBegin()
		mock.ExpectQuery(updateItemSQL).WithArgs(int64(50), "Desk", sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"store_id"}))
		mock.ExpectQuery(insertItemSQL).WithArgs(int64(50), "Desk", sqlmock.AnyArg(), int64(1)).
			WillReturnRows(sqlmock.NewRows([]string{"store_id", "inserted"}).AddRow(1, true))
		mock.ExpectExec(setvalSQL).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		item := &domain.Item{ID: 50, Name: "Desk", Price: decimal.NewFromInt(80), StoreID: 1}
		created, err := s.Upsert(context.Background(), item)
		require.NoError(t, err)
		assert.True(t, created)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("insert without store is a validation error", func(t *testing.T) {
		s, mock := newItemStore(t)
		mock.ExpectBegin()
		mock.ExpectQuery(updateItemSQL).WithArgs(int64(50), "Desk", sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"store_id"}))
		mock.ExpectRollback()

		_, err := s.Upsert(context.Background(), &domain.Item{ID: 50, Name: "Desk", Price: decimal.NewFromInt(80)})
		assert.ErrorIs(t, err, domain.ErrMissingStoreID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("insert into unknown store", func(t *testing.T) {
		s, mock := newItemStore(t)
		mock.ExpectBegin()
		mock.ExpectQuery(updateItemSQL).WithArgs(int64(50), "Desk", sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"store_id"}))
		mock.ExpectQuery(insertItemSQL).
			WillReturnError(&pgconn.PgError{Code: foreignKeyViolationCode, ConstraintName: constraintItemsStore})
		mock.ExpectRollback()

		_, err := s.Upsert(context.Background(),
			&domain.Item{ID: 50, Name: "Desk", Price: decimal.NewFromInt(80), StoreID: 9})
		assert.ErrorIs(t, err, store.ErrStoreNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rejects negative price before touching the database", func(t *testing.T) {
		s, mock := newItemStore(t)
		_, err := s.Upsert(context.Background(),
			&domain.Item{ID: 1, Name: "Desk", Price: decimal.NewFromInt(-1)})
		assert.ErrorIs(t, err, domain.ErrNegativePrice)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgresItemStore_Delete(t *testing.T) {
	t.Parallel()

	s, mock := newItemStore(t)
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM items WHERE id = $1`)).WithArgs(int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM items WHERE id = $1`)).WithArgs(int64(2)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, s.Delete(context.Background(), 1))
	assert.ErrorIs(t, s.Delete(context.Background(), 2), store.ErrItemNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
