package database

import (
	"context"
	"database/sql"
	"errors"
	"io/fs"
	"testing"

	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrations_Embedded(t *testing.T) {
	entries, err := fs.Glob(migrations, "migrations/*.sql")
	require.NoError(t, err)
	assert.Len(t, entries, 4)

	body, err := fs.ReadFile(migrations, "migrations/00002_confirmation_tokens.sql")
	require.NoError(t, err)
	assert.Contains(t, string(body), "-- +goose Up")
	assert.Contains(t, string(body), "consumed_at")
}

func TestMigrate_UsesEmbeddedDir(t *testing.T) {
	orig := gooseUpContext
	defer func() { gooseUpContext = orig }()

	var gotDir string
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		gotDir = dir
		return nil
	}

	require.NoError(t, Migrate(context.Background(), nil))
	assert.Equal(t, "migrations", gotDir)
}

func TestMigrate_Error(t *testing.T) {
	orig := gooseUpContext
	defer func() { gooseUpContext = orig }()

	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		return errors.New("boom")
	}

	err := Migrate(context.Background(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}
