// Package migrations owns the snapshot schema and applies it on startup.
package migrations

import (
	"database/sql"
	"embed"
	"fmt"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed *.sql
var schemaFiles embed.FS

// RunMigrations brings the snapshot schema up to the latest embedded version.
// With autoMigrate false it reports the current version and applies nothing,
// for deployments where schema changes are rolled out separately.
func RunMigrations(db *sql.DB, autoMigrate bool) error {
	sourceDriver, err := iofs.New(schemaFiles, ".")
	if err != nil {
		return fmt.Errorf("open embedded migrations: %w", err)
	}

	dbDriver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("create postgres migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, "postgres", dbDriver)
	if err != nil {
		return fmt.Errorf("create migrate instance: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil && err != migrate.ErrNilVersion {
		return fmt.Errorf("read schema version: %w", err)
	}

	if dirty {
		// An interrupted run leaves the version flagged dirty. The snapshot
		// DDL is idempotent-safe to re-run from the recorded version, so
		// clear the flag and let Up() take it from there.
		slog.Warn("[Migrations] Schema version is dirty, recovering",
			"version", version,
		)
		if err := m.Force(int(version)); err != nil {
			return fmt.Errorf("clear dirty schema version %d: %w", version, err)
		}
		slog.Info("[Migrations] Cleared dirty schema version", "version", version)
	}

	if !autoMigrate {
		slog.Info("[Migrations] Auto-migration disabled, leaving schema as is",
			"version", version,
			"dirty", dirty,
		)
		return nil
	}

	slog.Info("[Migrations] Applying pending migrations", "version", version)

	if err := m.Up(); err != nil {
		if err == migrate.ErrNoChange {
			slog.Info("[Migrations] Schema already current", "version", version)
			return nil
		}
		return fmt.Errorf("apply migrations: %w", err)
	}

	newVersion, _, err := m.Version()
	if err != nil {
		return fmt.Errorf("read schema version after migrating: %w", err)
	}

	slog.Info("[Migrations] Schema migrated",
		"from_version", version,
		"to_version", newVersion,
	)

	return nil
}
