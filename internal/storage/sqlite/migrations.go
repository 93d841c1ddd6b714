package sqlite

import "database/sql"

// schema sets up the cache table. It runs on startup to ensure the table exists.
// Values are opaque to SQLite; the cache layer owns their encoding and expiry.
const schema = `
CREATE TABLE IF NOT EXISTS cache_entries (
    scope TEXT NOT NULL,
    key TEXT NOT NULL,
    value BLOB NOT NULL,
    updated_at INTEGER NOT NULL,
    PRIMARY KEY (scope, key)
);
`

// runMigrations executes the schema setup.
func runMigrations(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
