// Package migration wraps golang-migrate for the schema behind the fact
// stores and report tables, plus helpers for authoring migration files.
package migration

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"go.uber.org/zap"
)

// Migrator drives file-based migrations against a postgres connection
type Migrator struct {
	m   *migrate.Migrate
	log *zap.Logger
}

// New builds a Migrator reading .sql pairs from migrationsPath
func New(db *sql.DB, migrationsPath string, log *zap.Logger) (*Migrator, error) {
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return nil, fmt.Errorf("postgres migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance("file://"+migrationsPath, "postgres", driver)
	if err != nil {
		return nil, fmt.Errorf("migrate instance: %w", err)
	}

	return &Migrator{m: m, log: log}, nil
}

// Up applies every pending migration
func (mg *Migrator) Up() error {
	mg.log.Info("Applying pending migrations")

	if err := mg.m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			mg.log.Info("Schema already up to date")
			return nil
		}
		return fmt.Errorf("apply migrations: %w", err)
	}

	mg.logVersion("Schema migrated")
	return nil
}

// Down rolls every migration back
func (mg *Migrator) Down() error {
	mg.log.Info("Rolling back all migrations")

	if err := mg.m.Down(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			mg.log.Info("Nothing to roll back")
			return nil
		}
		return fmt.Errorf("roll back migrations: %w", err)
	}

	mg.log.Info("All migrations rolled back")
	return nil
}

// Steps applies n migrations; negative n rolls back
func (mg *Migrator) Steps(n int) error {
	mg.log.Info("Stepping migrations", zap.Int("steps", n))

	if err := mg.m.Steps(n); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			mg.log.Info("Schema already up to date")
			return nil
		}
		return fmt.Errorf("step migrations: %w", err)
	}

	mg.logVersion("Migration steps applied")
	return nil
}

// GoTo migrates up or down to exactly the given version
func (mg *Migrator) GoTo(version uint) error {
	mg.log.Info("Migrating to version", zap.Uint("target", version))

	if err := mg.m.Migrate(version); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			mg.log.Info("Already at target version")
			return nil
		}
		return fmt.Errorf("migrate to version %d: %w", version, err)
	}

	mg.log.Info("Schema migrated", zap.Uint("version", version))
	return nil
}

// Version reports the current schema version; (0, false) when none applied
func (mg *Migrator) Version() (uint, bool, error) {
	version, dirty, err := mg.m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("read schema version: %w", err)
	}
	return version, dirty, nil
}

// Force stamps the version without running SQL; only for repairing a
// dirty schema state.
func (mg *Migrator) Force(version int) error {
	mg.log.Warn("Stamping schema version without running SQL", zap.Int("version", version))

	if err := mg.m.Force(version); err != nil {
		return fmt.Errorf("force version %d: %w", version, err)
	}
	return nil
}

// Drop destroys everything in the target database
func (mg *Migrator) Drop() error {
	mg.log.Warn("Dropping all database objects")

	if err := mg.m.Drop(); err != nil {
		return fmt.Errorf("drop database: %w", err)
	}
	return nil
}

// Close releases the source and database handles
func (mg *Migrator) Close() error {
	sourceErr, dbErr := mg.m.Close()
	if sourceErr != nil {
		return fmt.Errorf("close migration source: %w", sourceErr)
	}
	if dbErr != nil {
		return fmt.Errorf("close migration database handle: %w", dbErr)
	}
	return nil
}

func (mg *Migrator) logVersion(msg string) {
	version, dirty, err := mg.Version()
	if err != nil {
		mg.log.Warn("Could not read schema version after migrating", zap.Error(err))
		return
	}
	mg.log.Info(msg, zap.Uint("version", version), zap.Bool("dirty", dirty))
}
