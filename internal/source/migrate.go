package source

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/mysql"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/regpulse/regpulse/schema"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// MigrationTable is the table created by the embedded migrations.
const MigrationTable = "registration_events"

// MigrateResult describes what a migration run did.
type MigrateResult struct {
	From    uint
	To      uint
	Changed bool
}

// Migrate lays down the snapshot table schema for an upstream loader to write to.
// - If targetVersion < 0, it migrates to the latest version.
// - If targetVersion == 0, it rolls back all migrations (to initial state).
// - If targetVersion > 0, it migrates to the specified version.
func Migrate(backend schema.SourceBackend, connStr string, targetVersion int) (MigrateResult, error) {
	m, db, err := newMigrator(backend, connStr)
	if err != nil {
		return MigrateResult{}, err
	}
	defer func() { _ = db.Close() }()

	currentVersion, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return MigrateResult{}, fmt.Errorf("failed to get current migration version: %w", err)
	}
	if dirty {
		return MigrateResult{}, fmt.Errorf("database is in a dirty state at version %d. Please fix manually or force version", currentVersion)
	}

	switch {
	case targetVersion < 0:
		err = m.Up()
	case targetVersion == 0:
		err = m.Down()
	default:
		err = m.Migrate(uint(targetVersion))
	}
	result := MigrateResult{From: currentVersion, To: currentVersion}
	if errors.Is(err, migrate.ErrNoChange) {
		return result, nil
	}
	if err != nil {
		return result, fmt.Errorf("failed to migrate to version %d: %w", targetVersion, err)
	}

	newVersion, _, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return result, fmt.Errorf("failed to read migrated version: %w", err)
	}
	result.To = newVersion
	result.Changed = true
	return result, nil
}

// SchemaVersion returns the applied migration version and dirty flag. A database
// without migrations reports version 0.
func SchemaVersion(backend schema.SourceBackend, connStr string) (uint, bool, error) {
	m, db, err := newMigrator(backend, connStr)
	if err != nil {
		return 0, false, err
	}
	defer func() { _ = db.Close() }()

	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to get current migration version: %w", err)
	}
	return version, dirty, nil
}

func newMigrator(backend schema.SourceBackend, connStr string) (*migrate.Migrate, *sql.DB, error) {
	if _, ok := schema.SQLBackends[backend]; !ok {
		return nil, nil, fmt.Errorf("migrations are not supported for %s source", backend)
	}

	db, err := openDB(backend, connStr)
	if err != nil {
		return nil, nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("failed to ping database: %w", err)
	}

	var driver database.Driver
	switch backend {
	case schema.SQLiteSource:
		driver, err = sqlite.WithInstance(db, &sqlite.Config{})
	case schema.MySQLSource:
		driver, err = mysql.WithInstance(db, &mysql.Config{})
	case schema.PostgreSQLSource:
		driver, err = postgres.WithInstance(db, &postgres.Config{})
	}
	if err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("failed to create %s migrate driver: %w", backend, err)
	}

	migrationFS, err := fs.Sub(migrationsFS, "migrations")
	if err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("failed to access migrations directory: %w", err)
	}
	sourceDriver, err := iofs.New(migrationFS, ".")
	if err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("failed to create migration source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, "regpulse", driver)
	if err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}
	return m, db, nil
}
