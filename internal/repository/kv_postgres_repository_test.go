package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/painel-admin-api/pkg/kvstore"
)

func newKVRepoMock(t *testing.T) (*PostgresKVRepository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	sqlxDB := sqlx.NewDb(db, "postgres")
	return NewPostgresKVRepository(sqlxDB), mock, func() {
		sqlxDB.Close()
	}
}

func TestPostgresKVRepositoryGet(t *testing.T) {
	repo, mock, cleanup := newKVRepoMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT value::text FROM painel_kv WHERE key = $1")).
		WithArgs("painel:notas:v1").
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow(`{"a":1}`))

	raw, err := repo.Get(context.Background(), "painel:notas:v1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":1}`, string(raw))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresKVRepositoryGetMissing(t *testing.T) {
	repo, mock, cleanup := newKVRepoMock(t)
	defer cleanup()

	mock.ExpectQuery("SELECT value::text FROM painel_kv").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.Get(context.Background(), "missing")
	assert.True(t, errors.Is(err, kvstore.ErrNotFound))
}

func TestPostgresKVRepositoryGetFailure(t *testing.T) {
	repo, mock, cleanup := newKVRepoMock(t)
	defer cleanup()

	mock.ExpectQuery("SELECT value::text FROM painel_kv").
		WithArgs("k").
		WillReturnError(errors.New("connection reset"))

	_, err := repo.Get(context.Background(), "k")
	require.Error(t, err)
	assert.False(t, errors.Is(err, kvstore.ErrNotFound))
}

func TestPostgresKVRepositorySet(t *testing.T) {
	repo, mock, cleanup := newKVRepoMock(t)
	defer cleanup()

	mock.ExpectExec("INSERT INTO painel_kv").
		WithArgs("painel:notas:seed:v1", `{"c::t":true}`).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, repo.Set(context.Background(), "painel:notas:seed:v1", []byte(`{"c::t":true}`)))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresKVRepositoryEnsureSchema(t *testing.T) {
	repo, mock, cleanup := newKVRepoMock(t)
	defer cleanup()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS painel_kv").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.EnsureSchema(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresKVRepositoryWorksAsStore(t *testing.T) {
	var _ kvstore.Store = (*PostgresKVRepository)(nil)
	var _ kvstore.Store = (*RedisKVRepository)(nil)
}
