package database

import (
	"database/sql"
	"embed"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/mbolis/survey-admin/log"
	"github.com/pkg/errors"
)

//go:embed migrations
var schema embed.FS

// migrateDB brings the key/value schema up to the newest embedded version.
func migrateDB(db *sql.DB) error {
	src, err := iofs.New(schema, "migrations")
	if err != nil {
		return errors.Wrap(err, "migrations.source")
	}

	target, err := sqlite3.WithInstance(db, &sqlite3.Config{})
	if err != nil {
		return errors.Wrap(err, "migrations.target")
	}

	m, err := migrate.NewWithInstance("iofs", src, "sqlite3", target)
	if err != nil {
		return errors.Wrap(err, "migrations.init")
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return errors.Wrap(err, "migrations.up")
	}

	version, dirty, err := m.Version()
	if err != nil {
		return errors.Wrap(err, "migrations.version")
	}
	if dirty {
		return errors.Errorf("schema version %d is dirty", version)
	}
	log.Debugf("database: schema at version %d", version)
	return nil
}
