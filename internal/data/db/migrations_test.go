package db

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMigrations(t *testing.T) {
	migrations, err := loadMigrations()
	require.NoError(t, err)
	require.NotEmpty(t, migrations)

	// Sorted, positive, paired.
	last := 0
	for _, m := range migrations {
		assert.Greater(t, m.Version, last)
		assert.NotEmpty(t, m.Name)
		assert.NotEmpty(t, m.UpSQL)
		assert.NotEmpty(t, m.DownSQL)
		last = m.Version
	}
}

func TestParseFilename(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		version, name, direction, err := parseFilename("0001_review_sessions.up.sql")
		require.NoError(t, err)
		assert.Equal(t, 1, version)
		assert.Equal(t, "review_sessions", name)
		assert.Equal(t, "up", direction)
	})

	for _, bad := range []string{
		"0001_review_sessions.sql",
		"review_sessions.up.sql",
		"0001_.up.sql",
		"abcd_name.down.sql",
		"0000_name.up.sql",
	} {
		t.Run(bad, func(t *testing.T) {
			_, _, _, err := parseFilename(bad)
			assert.Error(t, err)
		})
	}
}

func TestOpen_MigratesSchema(t *testing.T) {
	database, err := Open(t.TempDir())
	require.NoError(t, err)
	defer func() { _ = database.Close() }()

	ctx := context.Background()

	for _, table := range []string{"review_sessions", "suggestions", "schema_migrations"} {
		var name string
		err := database.Conn().QueryRowContext(ctx,
			"SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?", table,
		).Scan(&name)
		require.NoError(t, err, table)
	}

	t.Run("reopen is idempotent", func(t *testing.T) {
		require.NoError(t, migrateUp(ctx, database.Conn()))
	})

	t.Run("migrate down drops the schema", func(t *testing.T) {
		migrations, err := loadMigrations()
		require.NoError(t, err)
		require.NoError(t, MigrateDown(ctx, database.Conn(), len(migrations)))

		var name string
		err = database.Conn().QueryRowContext(ctx,
			"SELECT name FROM sqlite_master WHERE type = 'table' AND name = 'review_sessions'",
		).Scan(&name)
		assert.Error(t, err)

		err = MigrateDown(ctx, database.Conn(), 1)
		assert.Error(t, err, "nothing left to revert")
	})
}
