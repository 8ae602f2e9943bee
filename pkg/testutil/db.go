package testutil

import (
	"context"
	"database/sql"
	"testing"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	_ "modernc.org/sqlite"

	"github.com/stretchr/testify/require"
)

// NewTestDB opens an in-memory sqlite-backed bun.DB with the scheduling
// core's schema, for internal/store and internal/queue integration tests.
func NewTestDB(t *testing.T) *bun.DB {
	t.Helper()

	sqldb, err := sql.Open("sqlite", "file::memory:?cache=shared")
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)
	t.Cleanup(func() { sqldb.Close() })

	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() { db.Close() })

	ctx := context.Background()
	for _, stmt := range testSchema {
		_, err := db.ExecContext(ctx, stmt)
		require.NoError(t, err, "schema statement: %s", stmt)
	}
	return db
}

var testSchema = []string{
	`CREATE TABLE channels (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		title TEXT NOT NULL,
		destination_id TEXT NOT NULL,
		credential_token TEXT NOT NULL,
		timezone TEXT NOT NULL DEFAULT 'Europe/Moscow',
		daily_time TEXT NOT NULL,
		allowed_window_start TEXT NOT NULL,
		allowed_window_end TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE posts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		channel_id INTEGER NOT NULL,
		title TEXT NOT NULL,
		body_html TEXT NOT NULL,
		media TEXT,
		buttons TEXT,
		options TEXT,
		blacklist_check_status TEXT NOT NULL DEFAULT 'ok',
		blacklist_reason TEXT,
		status TEXT NOT NULL DEFAULT 'draft',
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE publications (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		post_id INTEGER NOT NULL,
		planned_at TIMESTAMP NOT NULL,
		ready_at TIMESTAMP NOT NULL,
		status TEXT NOT NULL DEFAULT 'scheduled',
		attempts INTEGER NOT NULL DEFAULT 0,
		locked_at TIMESTAMP,
		locked_by TEXT,
		message_id TEXT,
		sent_at TIMESTAMP,
		last_error TEXT,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE blacklist_rules (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		type TEXT NOT NULL,
		pattern TEXT NOT NULL,
		is_enabled BOOLEAN NOT NULL DEFAULT 1
	)`,
	`CREATE TABLE audit_logs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		entity_type TEXT NOT NULL,
		entity_id INTEGER NOT NULL,
		action TEXT NOT NULL,
		meta TEXT,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
}
