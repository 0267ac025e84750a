package database

import (
	"context"
	"database/sql"
	"errors"
	"io/fs"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func stubGoose(t *testing.T, up, down func(context.Context, *sql.DB, string, ...goose.OptionsFunc) error) {
	t.Helper()
	origUp, origDown := gooseUpContext, gooseDownContext
	if up != nil {
		gooseUpContext = up
	}
	if down != nil {
		gooseDownContext = down
	}
	t.Cleanup(func() {
		gooseUpContext, gooseDownContext = origUp, origDown
	})
}

func TestUp_Success(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectPing()

	var gotDir string
	stubGoose(t, func(_ context.Context, _ *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		gotDir = dir
		assert.Empty(t, opts)
		return nil
	}, nil)

	require.NoError(t, Up(context.Background(), db))
	assert.Equal(t, migrationsDir, gotDir)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUp_PingFailure(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectPing().WillReturnError(errors.New("connection refused"))

	called := false
	stubGoose(t, func(context.Context, *sql.DB, string, ...goose.OptionsFunc) error {
		called = true
		return nil
	}, nil)

	err := Up(context.Background(), db)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to ping database")
	assert.False(t, called)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUp_GooseFailure(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectPing()

	boom := errors.New("boom")
	stubGoose(t, func(context.Context, *sql.DB, string, ...goose.OptionsFunc) error {
		return boom
	}, nil)

	err := Up(context.Background(), db)
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "failed to apply migrations")
}

func TestDown(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectPing()

	called := false
	stubGoose(t, nil, func(_ context.Context, _ *sql.DB, dir string, _ ...goose.OptionsFunc) error {
		called = true
		assert.Equal(t, migrationsDir, dir)
		return nil
	})

	require.NoError(t, Down(context.Background(), db))
	assert.True(t, called)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrations_Embedded(t *testing.T) {
	entries, err := fs.ReadDir(migrations, migrationsDir)
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	body, err := fs.ReadFile(migrations, migrationsDir+"/"+entries[0].Name())
	require.NoError(t, err)

	sql := string(body)
	assert.Contains(t, sql, "-- +goose Up")
	assert.Contains(t, sql, "-- +goose Down")
	assert.True(t, strings.Contains(sql, "CONSTRAINT users_email_key UNIQUE (email)"))
	assert.True(t, strings.Contains(sql, "CONSTRAINT users_username_key UNIQUE (username)"))
	assert.Contains(t, sql, "DEFAULT 'USER'")
}
