package storage

import (
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"time"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

const migrationLedger = `CREATE TABLE IF NOT EXISTS schema_migrations (
    version TEXT PRIMARY KEY,
    applied_at TEXT NOT NULL
)`

// MigrateUp applies every embedded .up.sql file not yet recorded in
// schema_migrations, in version order.
func MigrateUp(db *sql.DB) error {
	if _, err := db.Exec(migrationLedger); err != nil {
		return fmt.Errorf("create migration ledger: %w", err)
	}
	applied, err := appliedVersions(db)
	if err != nil {
		return err
	}
	versions, err := migrationVersions(".up.sql")
	if err != nil {
		return err
	}
	for _, version := range versions {
		if applied[version] {
			continue
		}
		err := applyMigration(db, version+".up.sql", func(tx *sql.Tx) error {
			_, err := tx.Exec(`INSERT INTO schema_migrations (version, applied_at) VALUES (?, ?)`, version, time.Now().UTC().Format(sqliteTimeLayout))
			return err
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// MigrateDown reverts applied migrations, newest first.
func MigrateDown(db *sql.DB) error {
	if _, err := db.Exec(migrationLedger); err != nil {
		return fmt.Errorf("create migration ledger: %w", err)
	}
	applied, err := appliedVersions(db)
	if err != nil {
		return err
	}
	versions, err := migrationVersions(".down.sql")
	if err != nil {
		return err
	}
	sort.Sort(sort.Reverse(sort.StringSlice(versions)))
	for _, version := range versions {
		if !applied[version] {
			continue
		}
		err := applyMigration(db, version+".down.sql", func(tx *sql.Tx) error {
			_, err := tx.Exec(`DELETE FROM schema_migrations WHERE version = ?`, version)
			return err
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// AppliedMigrations lists recorded versions in order.
func AppliedMigrations(db *sql.DB) ([]string, error) {
	applied, err := appliedVersions(db)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(applied))
	for version := range applied {
		out = append(out, version)
	}
	sort.Strings(out)
	return out, nil
}

func appliedVersions(db *sql.DB) (map[string]bool, error) {
	rows, err := db.Query(`SELECT version FROM schema_migrations`)
	if err != nil {
		return nil, fmt.Errorf("read migration ledger: %w", err)
	}
	defer rows.Close()
	out := make(map[string]bool)
	for rows.Next() {
		var version string
		if err := rows.Scan(&version); err != nil {
			return nil, fmt.Errorf("scan migration ledger: %w", err)
		}
		out[version] = true
	}
	return out, rows.Err()
}

// migrationVersions returns file names without suffix, e.g. "0001_init".
func migrationVersions(suffix string) ([]string, error) {
	entries, err := fs.Glob(migrationFiles, "migrations/*"+suffix)
	if err != nil {
		return nil, fmt.Errorf("glob migrations: %w", err)
	}
	versions := make([]string, 0, len(entries))
	for _, name := range entries {
		versions = append(versions, strings.TrimSuffix(path.Base(name), suffix))
	}
	sort.Strings(versions)
	return versions, nil
}

func applyMigration(db *sql.DB, file string, record func(*sql.Tx) error) error {
	sqlBytes, err := migrationFiles.ReadFile("migrations/" + file)
	if err != nil {
		return fmt.Errorf("read migration %s: %w", file, err)
	}
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin migration %s: %w", file, err)
	}
	if _, err := tx.Exec(string(sqlBytes)); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("apply migration %s: %w", file, err)
	}
	if err := record(tx); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("record migration %s: %w", file, err)
	}
	return tx.Commit()
}
