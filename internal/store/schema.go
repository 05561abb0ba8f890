package store

import (
	"database/sql"

	"github.com/startificial/requireflow/internal/errors"
	"github.com/startificial/requireflow/internal/logger"
)

const (
	SchemaVersion = 1

	createTablesSQL = `
	CREATE TABLE IF NOT EXISTS schema_versions (
	    version     INTEGER PRIMARY KEY,
	    applied_at  TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS users (
	    id            TEXT PRIMARY KEY,
	    email         TEXT NOT NULL UNIQUE,
	    name          TEXT NOT NULL,
	    password_hash TEXT NOT NULL,
	    created_at    INTEGER NOT NULL
	);
	CREATE TABLE IF NOT EXISTS sessions (
	    token      TEXT PRIMARY KEY,
	    user_id    TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	    expires_at INTEGER NOT NULL,
	    created_at INTEGER NOT NULL
	);
	CREATE TABLE IF NOT EXISTS customers (
	    id          TEXT PRIMARY KEY,
	    name        TEXT NOT NULL UNIQUE,
	    industry    TEXT NOT NULL DEFAULT '',
	    description TEXT NOT NULL DEFAULT '',
	    created_at  INTEGER NOT NULL,
	    updated_at  INTEGER NOT NULL
	);
	CREATE TABLE IF NOT EXISTS projects (
	    id          TEXT PRIMARY KEY,
	    customer_id TEXT NOT NULL REFERENCES customers(id) ON DELETE CASCADE,
	    name        TEXT NOT NULL,
	    description TEXT NOT NULL DEFAULT '',
	    created_at  INTEGER NOT NULL,
	    updated_at  INTEGER NOT NULL,
	    UNIQUE (customer_id, name)
	);
	CREATE TABLE IF NOT EXISTS input_sources (
	    id           TEXT PRIMARY KEY,
	    project_id   TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
	    type         TEXT NOT NULL CHECK (type IN ('document', 'audio', 'video', 'manual')),
	    name         TEXT NOT NULL,
	    content_type TEXT NOT NULL DEFAULT '',
	    size_bytes   INTEGER NOT NULL DEFAULT 0,
	    created_at   INTEGER NOT NULL
	);
	CREATE TABLE IF NOT EXISTS requirements (
	    id          TEXT PRIMARY KEY,
	    project_id  TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
	    source_id   TEXT NOT NULL DEFAULT '',
	    title       TEXT NOT NULL,
	    description TEXT NOT NULL DEFAULT '',
	    category    TEXT NOT NULL CHECK (category IN ('functional', 'non-functional', 'security', 'performance')),
	    priority    TEXT NOT NULL CHECK (priority IN ('high', 'medium', 'low')),
	    created_at  INTEGER NOT NULL,
	    updated_at  INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_requirements_project ON requirements(project_id);
	CREATE INDEX IF NOT EXISTS idx_sessions_expires ON sessions(expires_at);`
)

// InitSchema creates a new database schema with the current version
func InitSchema(db *sql.DB, log logger.Logger) error {
	log.Debug().Msg("Creating database schema...")

	tx, err := db.Begin()
	if err != nil {
		return errors.NewDatabase("begin schema transaction", err)
	}

	// Track transaction state
	committed := false
	defer func() {
		if !committed {
			if err := tx.Rollback(); err != nil {
				if !errors.Is(err, sql.ErrTxDone) {
					log.Debug().Err(err).Msg("Failed to rollback transaction")
				}
			}
		}
	}()

	if _, err := tx.Exec(createTablesSQL); err != nil {
		return errors.NewDatabase("create tables", err)
	}

	if _, err := tx.Exec(`
        INSERT INTO schema_versions (version, applied_at)
        VALUES (?, datetime('now'))
    `, SchemaVersion); err != nil {
		return errors.NewDatabase("record schema version", err)
	}

	if err := tx.Commit(); err != nil {
		return errors.NewDatabase("commit schema transaction", err)
	}
	committed = true

	log.Info().
		Int("version", SchemaVersion).
		Msg("Schema initialized successfully")

	return nil
}

// GetSchemaVersion returns the current schema version, or 0 for a fresh
// database.
func GetSchemaVersion(db *sql.DB) (int, error) {
	exists, err := TableExists(db, "schema_versions")
	if err != nil {
		return 0, err
	}
	if !exists {
		return 0, nil
	}

	var version int
	err = db.QueryRow(`
        SELECT version
        FROM schema_versions
        ORDER BY version DESC
        LIMIT 1
    `).Scan(&version)

	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, errors.NewDatabase("get schema version", err)
	}

	return version, nil
}

// TableExists checks if a table exists
func TableExists(db *sql.DB, tableName string) (bool, error) {
	var exists bool
	err := db.QueryRow(`
        SELECT EXISTS (
            SELECT 1 FROM sqlite_master
            WHERE type='table' AND name=?
        )
    `, tableName).Scan(&exists)
	if err != nil {
		return false, errors.NewDatabase("check table exists", err)
	}
	return exists, nil
}
