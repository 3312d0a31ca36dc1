package source_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhouzirui/user-lookup/backend/internal/model/user"
	"github.com/zhouzirui/user-lookup/backend/internal/source"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := source.Open(context.Background(), "sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
		CREATE TABLE users (
			id         INTEGER PRIMARY KEY,
			first_name TEXT,
			last_name  TEXT,
			email      TEXT,
			gender     TEXT,
			ip_address TEXT
		)`)
	require.NoError(t, err)
	return db
}

func insert(t *testing.T, db *sql.DB, id int, email any) {
	t.Helper()
	_, err := db.Exec(`INSERT INTO users (id, first_name, last_name, email, gender, ip_address) VALUES (?, 'F', 'L', ?, 'G', '127.0.0.1')`, id, email)
	require.NoError(t, err)
}

func TestLoadSQLOrdersByID(t *testing.T) {
	db := newTestDB(t)
	insert(t, db, 2, "b@y.com")
	insert(t, db, 1, "a@x.com")

	store, err := source.LoadSQL(context.Background(), db, "users")
	require.NoError(t, err)

	all := store.All()
	require.Len(t, all, 2)
	assert.Equal(t, 1, all[0].ID)
	assert.Equal(t, "a@x.com", all[0].Email)
	assert.Equal(t, "127.0.0.1", all[1].IPAddress)
}

func TestLoadSQLNullEmail(t *testing.T) {
	db := newTestDB(t)
	insert(t, db, 1, "a@x.com")
	insert(t, db, 2, nil)

	_, err := source.LoadSQL(context.Background(), db, "users")

	var loadErr *user.LoadError
	require.True(t, errors.As(err, &loadErr))
	assert.Equal(t, 1, loadErr.Index)
	assert.Equal(t, "email", loadErr.Field)
}

func TestLoadSQLRejectsTableName(t *testing.T) {
	db := newTestDB(t)

	_, err := source.LoadSQL(context.Background(), db, "users; DROP TABLE users")
	assert.ErrorIs(t, err, source.ErrInvalidTable)
}

func TestLoadSQLMissingTable(t *testing.T) {
	db := newTestDB(t)

	_, err := source.LoadSQL(context.Background(), db, "people")
	var loadErr *user.LoadError
	assert.True(t, errors.As(err, &loadErr))
}

func TestOpenUnsupportedDriver(t *testing.T) {
	_, err := source.Open(context.Background(), "oracle", "")
	assert.Error(t, err)
	assert.False(t, source.SupportedDriver("oracle"))
	assert.True(t, source.SupportedDriver("postgres"))
}
