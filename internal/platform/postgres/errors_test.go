package postgres

import (
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/phrazzld/catalog-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want error
	}{
		{name: "no rows", err: sql.ErrNoRows, want: store.ErrNotFound},
		{
			name: "duplicate store name",
			err:  &pgconn.PgError{Code: uniqueViolationCode, ConstraintName: constraintStoreName},
			want: store.ErrStoreNameExists,
		},
		{
			name: "duplicate username",
			err:  &pgconn.PgError{Code: uniqueViolationCode, ConstraintName: constraintUsername},
			want: store.ErrUsernameExists,
		},
		{
			name: "unknown unique constraint",
			err:  &pgconn.PgError{Code: uniqueViolationCode, ConstraintName: "other_key"},
			want: store.ErrDuplicate,
		},
		{
			name: "item references missing store",
			err:  &pgconn.PgError{Code: foreignKeyViolationCode, ConstraintName: constraintItemsStore},
			want: store.ErrStoreNotFound,
		},
		{
			name: "link references missing item",
			err:  &pgconn.PgError{Code: foreignKeyViolationCode, ConstraintName: constraintLinkItem},
			want: store.ErrItemNotFound,
		},
		{
			name: "check violation",
			err:  &pgconn.PgError{Code: checkViolationCode, ConstraintName: "items_price_check"},
			want: store.ErrInvalidEntity,
		},
		{
			name: "not null violation",
			err:  &pgconn.PgError{Code: notNullViolationCode, ColumnName: "name"},
			want: store.ErrInvalidEntity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err)
			assert.ErrorIs(t, got, tt.want)
		})
	}

	assert.NoError(t, MapError(nil))
	plain := errors.New("connection refused")
	assert.Same(t, plain, MapError(plain))
}

func TestViolationHelpers(t *testing.T) {
	t.Parallel()

	fk := &pgconn.PgError{Code: foreignKeyViolationCode, ConstraintName: constraintLinkTag}
	assert.True(t, IsForeignKeyViolation(fk))
	assert.False(t, IsUniqueViolation(fk))
	assert.Equal(t, constraintLinkTag, violatedConstraint(fk))
	assert.Empty(t, violatedConstraint(errors.New("plain")))
}

func TestCheckRowsAffected(t *testing.T) {
	t.Parallel()

	assert.NoError(t, CheckRowsAffected(sqlmock.NewResult(0, 1), store.ErrItemNotFound))
	assert.ErrorIs(t, CheckRowsAffected(sqlmock.NewResult(0, 0), store.ErrItemNotFound), store.ErrItemNotFound)
	assert.ErrorIs(t, CheckRowsAffected(sqlmock.NewResult(0, 0), nil), store.ErrNotFound)

	err := CheckRowsAffected(sqlmock.NewErrorResult(errors.New("driver")), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to get rows affected")
}
