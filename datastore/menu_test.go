package datastore

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreybb/menuorders/models"
)

func setupMockRepository(t *testing.T) (*MenuRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})
	return NewMenuRepository(db), mock
}

func menuRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "item", "price"})
}

func TestMenuRepository_EnsureSchema(t *testing.T) {
	repo, mock := setupMockRepository(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS menu")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	require.NoError(t, repo.EnsureSchema(context.Background()))
}

func TestMenuRepository_CreateAndGet(t *testing.T) {
	repo, mock := setupMockRepository(t)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO menu (item, price) VALUES ($1, $2) RETURNING id")).
		WithArgs("pasta", 12).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))
	mock.ExpectCommit()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, item, price FROM menu WHERE id = $1")).
		WithArgs(int64(7)).
		WillReturnRows(menuRows().AddRow(7, "pasta", 12))
	mock.ExpectCommit()

	id, err := repo.Create(ctx, "pasta", 12)
	require.NoError(t, err)
	assert.Equal(t, int64(7), id)

	item, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.MenuItem{ID: 7, Item: "pasta", Price: 12}, *item)
}

func TestMenuRepository_CreateRollsBackOnError(t *testing.T) {
	repo, mock := setupMockRepository(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO menu")).
		WithArgs("pasta", 12).
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	id, err := repo.Create(context.Background(), "pasta", 12)
	assert.Error(t, err)
	assert.Zero(t, id)
}

func TestMenuRepository_GetByIDNotFound(t *testing.T) {
	repo, mock := setupMockRepository(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, item, price FROM menu WHERE id = $1")).
		WithArgs(int64(42)).
		WillReturnRows(menuRows())
	mock.ExpectRollback()

	item, err := repo.GetByID(context.Background(), 42)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.Nil(t, item)
}

func TestMenuRepository_List(t *testing.T) {
	repo, mock := setupMockRepository(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, item, price FROM menu ORDER BY id")).
		WillReturnRows(menuRows().AddRow(1, "pasta", 12).AddRow(2, "soup", 7))
	mock.ExpectCommit()

	items, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []models.MenuItem{
		{ID: 1, Item: "pasta", Price: 12},
		{ID: 2, Item: "soup", Price: 7},
	}, items)
}

func TestMenuRepository_FindByName(t *testing.T) {
	repo, mock := setupMockRepository(t)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, item, price FROM menu WHERE item = $1")).
		WithArgs("pasta").
		WillReturnRows(menuRows().AddRow(1, "pasta", 12).AddRow(3, "pasta", 14))
	mock.ExpectCommit()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, item, price FROM menu WHERE item = $1")).
		WithArgs("pizza'; DROP TABLE menu; --").
		WillReturnRows(menuRows())
	mock.ExpectCommit()

	items, err := repo.FindByName(ctx, "pasta")
	require.NoError(t, err)
	assert.Len(t, items, 2)

	items, err = repo.FindByName(ctx, "pizza'; DROP TABLE menu; --")
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestMenuRepository_DeleteByName(t *testing.T) {
	repo, mock := setupMockRepository(t)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM menu WHERE item = $1")).
		WithArgs("pasta").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM menu WHERE item = $1")).
		WithArgs("nothing").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	removed, err := repo.DeleteByName(ctx, "pasta")
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)

	removed, err = repo.DeleteByName(ctx, "nothing")
	require.NoError(t, err)
	assert.Zero(t, removed)
}

func TestWithTx_BeginFailure(t *testing.T) {
	repo, mock := setupMockRepository(t)

	mock.ExpectBegin().WillReturnError(errors.New("too many connections"))

	_, err := repo.List(context.Background())
	assert.ErrorContains(t, err, "failed to begin transaction")
}

func TestWithTx_CommitFailure(t *testing.T) {
	repo, mock := setupMockRepository(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM menu")).
		WithArgs("pasta").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit().WillReturnError(errors.New("serialization failure"))

	_, err := repo.DeleteByName(context.Background(), "pasta")
	assert.ErrorContains(t, err, "failed to commit transaction")
}

func TestWithTx_RollsBackOnPanic(t *testing.T) {
	repo, mock := setupMockRepository(t)

	mock.ExpectBegin()
	mock.ExpectRollback()

	assert.Panics(t, func() {
		_ = withTx(context.Background(), repo.db, func(tx *sql.Tx) error {
			panic("boom")
		})
	})
}
