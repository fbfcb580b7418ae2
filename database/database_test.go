package database

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// setupTestDB opens a fresh database in a per-test temp directory.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := InitDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestInitDB_CreatesSchema(t *testing.T) {
	db := setupTestDB(t)

	for _, table := range []string{
		"guild_config", "guilds", "ads", "posted_messages",
		"ad_clicks", "counters", "meta", "user_post_cooldowns",
	} {
		var name string
		err := db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table,
		).Scan(&name)
		require.NoError(t, err, "table %s should exist", table)
	}
}
