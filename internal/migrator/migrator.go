package migrator

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

// простая обертка над golang-migrator для удобства использования.

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Migrator основная структура.
type Migrator struct {
	migrate *migrate.Migrate
}

// NewMigrator создает мигратор. Пустой migrationsDir означает встроенные миграции.
func NewMigrator(db *sql.DB, migrationsDir string) (*Migrator, error) {
	if db == nil {
		return nil, errors.New("database connection is nil")
	}

	if migrationsDir != "" {
		if err := checkDir(migrationsDir); err != nil {
			return nil, err
		}
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize postgres driver: %w", err)
	}

	var m *migrate.Migrate
	if migrationsDir == "" {
		src, err := embeddedSource()
		if err != nil {
			return nil, err
		}
		m, err = migrate.NewWithInstance("iofs", src, "postgres", driver)
		if err != nil {
			return nil, fmt.Errorf("failed to create migrate instance: %w", err)
		}
		return &Migrator{m}, nil
	}

	m, err = migrate.NewWithDatabaseInstance(
		normalizePath(migrationsDir),
		"postgres",
		driver,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}

	return &Migrator{m}, nil
}

func embeddedSource() (source.Driver, error) {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to open embedded migrations: %w", err)
	}
	return src, nil
}

func checkDir(migrationsDir string) error {
	info, err := os.Stat(migrationsDir)
	if err != nil {
		return fmt.Errorf("cannot access migrations path %q: %w", migrationsDir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("migrations path %q is not a directory", migrationsDir)
	}
	return nil
}

// Up накатываем все непримененные миграции.
func (m *Migrator) Up() error {
	err := m.migrate.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		return nil
	}
	return err
}

// Down откатываем все примененные миграции.
func (m *Migrator) Down() error {
	err := m.migrate.Down()
	if errors.Is(err, migrate.ErrNoChange) {
		return nil
	}
	return err
}

// Version возвращает текущую версию.
func (m *Migrator) Version() (uint, error) {
	ver, dirty, err := m.migrate.Version()
	if err != nil {
		if errors.Is(err, migrate.ErrNilVersion) {
			return 0, nil
		}
		return 0, err
	}
	if dirty {
		return ver, fmt.Errorf("database is dirty at version %d (migration failed midway)", ver)
	}
	return ver, nil
}

// Close освобождаем ресурсы.
func (m *Migrator) Close() error {
	if m.migrate == nil {
		return nil
	}
	serr, derr := m.migrate.Close()
	if serr != nil || derr != nil {
		return fmt.Errorf("close error: source error: %v, database error: %v", serr, derr)
	}
	return nil
}
