package store

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"time"

	"github.com/startificial/requireflow/internal/errors"
	"github.com/startificial/requireflow/internal/logger"
)

// EnsureSchema initializes a fresh database and rejects one whose schema
// version does not match. Migration is destructive, so it never happens
// implicitly on startup; the migrate command is the explicit path.
func EnsureSchema(db *sql.DB, log logger.Logger) error {
	version, err := GetSchemaVersion(db)
	if err != nil {
		return err
	}

	if version == 0 {
		return InitSchema(db, log)
	}
	if version != SchemaVersion {
		return errors.NewDatabase(
			fmt.Sprintf("schema version check: database has version %d, expected %d (run `requireflow migrate`)", version, SchemaVersion),
			nil,
		)
	}

	log.Debug().
		Int("version", version).
		Msg("Schema version is current")
	return nil
}

// Migrate brings the database to the current schema version. An existing
// schema is backed up beside the database file and recreated.
func Migrate(db *sql.DB, dbPath string, log logger.Logger) error {
	version, err := GetSchemaVersion(db)
	if err != nil {
		return err
	}

	if version == SchemaVersion {
		log.Info().
			Int("version", version).
			Msg("Schema is already current")
		return nil
	}

	if version != 0 {
		backupPath, err := backupDatabase(db, dbPath, version, log)
		if err != nil {
			return err
		}
		log.Info().
			Str("backup", backupPath).
			Msg("Existing data backed up before migration")

		if err := dropTables(db, log); err != nil {
			return err
		}
	}

	return InitSchema(db, log)
}

func backupDatabase(db *sql.DB, dbPath string, version int, log logger.Logger) (string, error) {
	timestamp := time.Now().UTC().Format("20060102T150405Z")
	backupPath := filepath.Join(filepath.Dir(dbPath),
		fmt.Sprintf("requireflow_v%d_%s.db", version, timestamp))

	// VACUUM INTO requires no active transaction
	if _, err := db.Exec(fmt.Sprintf("VACUUM INTO '%s'", backupPath)); err != nil {
		return "", errors.NewDatabase("create backup", err)
	}

	log.Info().
		Str("path", backupPath).
		Int("version", version).
		Msg("Database backup created")

	return backupPath, nil
}

func dropTables(db *sql.DB, log logger.Logger) error {
	tx, err := db.Begin()
	if err != nil {
		return errors.NewDatabase("begin drop transaction", err)
	}

	committed := false
	defer func() {
		if !committed {
			if err := tx.Rollback(); err != nil {
				if !errors.Is(err, sql.ErrTxDone) {
					log.Debug().Err(err).Msg("Failed to rollback drop tables")
				}
			}
		}
	}()

	tables := []string{"requirements", "input_sources", "projects", "customers", "sessions", "users", "schema_versions"}
	for _, table := range tables {
		if _, err := tx.Exec("DROP TABLE IF EXISTS " + table); err != nil {
			return errors.NewDatabase("drop table "+table, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.NewDatabase("commit drop transaction", err)
	}
	committed = true

	return nil
}
