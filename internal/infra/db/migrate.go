package db

import (
	"database/sql"
	"fmt"
)

// schemaStatements holds the per-driver DDL. Both dialects produce the same
// logical schema; they differ in key generation and column types.
var schemaStatements = map[string][]string{
	DriverPostgres: {
		`
CREATE TABLE IF NOT EXISTS products (
    id         SERIAL PRIMARY KEY,
    name       TEXT NOT NULL,
    url        TEXT NOT NULL UNIQUE,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`,
		`
CREATE TABLE IF NOT EXISTS reviews (
    id              SERIAL PRIMARY KEY,
    product_id      INTEGER NOT NULL REFERENCES products(id) ON DELETE CASCADE,
    author          TEXT NOT NULL,
    rating          INTEGER NOT NULL CHECK (rating BETWEEN 1 AND 5),
    body            TEXT NOT NULL,
    sentiment_score DOUBLE PRECISION NOT NULL DEFAULT 0,
    sentiment_label VARCHAR(10) NOT NULL DEFAULT 'neutral',
    reviewed_at     TIMESTAMPTZ NOT NULL,
    created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
    UNIQUE (product_id, author, reviewed_at)
)`,
		`
CREATE TABLE IF NOT EXISTS product_stats (
    id          SERIAL PRIMARY KEY,
    stats_type  VARCHAR(100) NOT NULL,
    identifier  VARCHAR(255) NOT NULL,
    payload     JSONB NOT NULL,
    computed_at TIMESTAMPTZ NOT NULL,
    expires_at  TIMESTAMPTZ NOT NULL,
    UNIQUE (stats_type, identifier)
)`,
	},
	DriverSQLite: {
		`
CREATE TABLE IF NOT EXISTS products (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    name       TEXT NOT NULL,
    url        TEXT NOT NULL UNIQUE,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
)`,
		`
CREATE TABLE IF NOT EXISTS reviews (
    id              INTEGER PRIMARY KEY AUTOINCREMENT,
    product_id      INTEGER NOT NULL REFERENCES products(id) ON DELETE CASCADE,
    author          TEXT NOT NULL,
    rating          INTEGER NOT NULL CHECK (rating BETWEEN 1 AND 5),
    body            TEXT NOT NULL,
    sentiment_score REAL NOT NULL DEFAULT 0,
    sentiment_label TEXT NOT NULL DEFAULT 'neutral',
    reviewed_at     TIMESTAMP NOT NULL,
    created_at      TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    UNIQUE (product_id, author, reviewed_at)
)`,
		`
CREATE TABLE IF NOT EXISTS product_stats (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    stats_type  TEXT NOT NULL,
    identifier  TEXT NOT NULL,
    payload     TEXT NOT NULL,
    computed_at TIMESTAMP NOT NULL,
    expires_at  TIMESTAMP NOT NULL,
    UNIQUE (stats_type, identifier)
)`,
	},
}

// schemaIndexes is shared: the index DDL is identical in both dialects.
var schemaIndexes = []string{
	// reviews are always read newest-first per product
	`CREATE INDEX IF NOT EXISTS idx_reviews_product_reviewed_at ON reviews(product_id, reviewed_at DESC)`,
	// trend aggregation scans the trailing window
	`CREATE INDEX IF NOT EXISTS idx_reviews_reviewed_at ON reviews(reviewed_at)`,
	// the expiration sweep scans by expires_at
	`CREATE INDEX IF NOT EXISTS idx_product_stats_expires_at ON product_stats(expires_at)`,
}

// MigrateUp creates the schema for the given driver. Statements are
// idempotent so the migration can run on every startup.
func MigrateUp(db *sql.DB, driver string) error {
	stmts, ok := schemaStatements[driver]
	if !ok {
		return fmt.Errorf("unsupported database driver %q", driver)
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	for _, idx := range schemaIndexes {
		if _, err := db.Exec(idx); err != nil {
			return err
		}
	}
	return nil
}

// MigrateDown rolls back the database schema.
// Use with caution: this will delete all data in the affected tables.
func MigrateDown(db *sql.DB) error {
	dropStatements := []string{
		`DROP TABLE IF EXISTS product_stats`,
		`DROP TABLE IF EXISTS reviews`,
		`DROP TABLE IF EXISTS products`,
	}
	for _, stmt := range dropStatements {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
