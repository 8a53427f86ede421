package repository

import (
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a lookup resolves to nothing, including
// tenant-scoped lookups where the id exists but belongs to another account.
var ErrNotFound = errors.New("not found")

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id TEXT PRIMARY KEY,
	account_id TEXT NOT NULL,
	name TEXT NOT NULL DEFAULT '',
	email TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	pin_hash TEXT NOT NULL DEFAULT '',
	role TEXT NOT NULL,
	plan TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL,
	last_login_at TIMESTAMP
);

CREATE TABLE IF NOT EXISTS sessions (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	device_id TEXT NOT NULL,
	refresh_token_hash TEXT NOT NULL,
	expires_at TIMESTAMP NOT NULL,
	revoked_at TIMESTAMP,
	version INTEGER NOT NULL DEFAULT 1,
	created_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_sessions_user_device ON sessions (user_id, device_id);

CREATE TABLE IF NOT EXISTS products (
	id TEXT PRIMARY KEY,
	account_id TEXT NOT NULL,
	sku TEXT NOT NULL,
	name TEXT NOT NULL,
	category TEXT NOT NULL DEFAULT '',
	cost_price TEXT NOT NULL,
	selling_price TEXT NOT NULL,
	quantity INTEGER NOT NULL DEFAULT 0,
	status TEXT NOT NULL,
	version INTEGER NOT NULL,
	sync_status TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_products_account ON products (account_id);

CREATE TABLE IF NOT EXISTS outbox (
	id TEXT PRIMARY KEY,
	entity_type TEXT NOT NULL,
	entity_id TEXT NOT NULL,
	operation TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL,
	attempt_count INTEGER NOT NULL DEFAULT 0,
	last_attempt_at TIMESTAMP,
	error TEXT
);
CREATE INDEX IF NOT EXISTS idx_outbox_created ON outbox (created_at);
`

// OpenLocal opens (creating if needed) the SQLite database that backs the
// local store and applies the schema.
func OpenLocal(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open local store: %w", err)
	}

	// The request path and the sync worker share this handle; a single
	// connection sidesteps SQLITE_BUSY between them.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply local schema: %w", err)
	}

	return db, nil
}
