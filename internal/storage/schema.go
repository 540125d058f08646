package storage

import (
	"database/sql"
	"fmt"
)

const currentSchemaVersion = 1

// initializeSchema creates all tables for a new database
func (db *DB) initializeSchema() error {
	return db.WithTx(func(tx *sql.Tx) error {
		if err := createSchemaVersionTable(tx); err != nil {
			return err
		}
		if err := createOwnershipRulesTable(tx); err != nil {
			return err
		}
		if err := setSchemaVersion(tx, currentSchemaVersion); err != nil {
			return err
		}

		db.logger.Info("Rule database schema initialized", map[string]interface{}{
			"version": currentSchemaVersion,
		})

		return nil
	})
}

// runMigrations runs any pending schema migrations
func (db *DB) runMigrations() error {
	version, err := db.getSchemaVersion()
	if err != nil {
		return err
	}

	if version == currentSchemaVersion {
		db.logger.Debug("Rule database schema is up to date", map[string]interface{}{
			"version": version,
		})
		return nil
	}

	if version == 0 {
		// Database file exists but carries no schema yet
		return db.initializeSchema()
	}

	db.logger.Info("Running rule database migrations", map[string]interface{}{
		"from_version": version,
		"to_version":   currentSchemaVersion,
	})

	// Add migration steps here as the schema evolves

	return nil
}

func (db *DB) getSchemaVersion() (int, error) {
	var tableName string
	err := db.QueryRow(`
		SELECT name FROM sqlite_master
		WHERE type='table' AND name='schema_version'
	`).Scan(&tableName)

	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	var version int
	err = db.QueryRow("SELECT version FROM schema_version LIMIT 1").Scan(&version)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	return version, nil
}

func setSchemaVersion(tx *sql.Tx, version int) error {
	if _, err := tx.Exec("DELETE FROM schema_version"); err != nil {
		return err
	}
	_, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", version)
	return err
}

func createSchemaVersionTable(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER NOT NULL
		)
	`)
	return err
}

// createOwnershipRulesTable creates the ownership_rules table.
// The uniqueness constraint on (file_pattern, owner_name) is what makes
// UpsertRule an update rather than a duplicate insert; strengths are
// integers on a fixed 0-100 scale so scoring stays deterministic.
func createOwnershipRulesTable(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS ownership_rules (
			file_pattern TEXT NOT NULL,
			owner_type TEXT NOT NULL CHECK(owner_type IN ('file', 'module')),
			owner_name TEXT NOT NULL,
			canonical_handle TEXT NOT NULL,
			strength INTEGER NOT NULL CHECK(strength BETWEEN 0 AND 100),
			source TEXT NOT NULL CHECK(source IN ('manifest', 'store', 'history')),
			last_verified TEXT NOT NULL,

			UNIQUE(file_pattern, owner_name)
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create ownership_rules table: %w", err)
	}

	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_ownership_rules_owner_type ON ownership_rules(owner_type)",
		"CREATE INDEX IF NOT EXISTS idx_ownership_rules_canonical_handle ON ownership_rules(canonical_handle)",
	}

	for _, indexSQL := range indexes {
		if _, err := tx.Exec(indexSQL); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}

	return nil
}
