package driver

import (
	"database/sql"
	"embed"

	"github.com/golang-migrate/migrate/v4"
	migratemysql "github.com/golang-migrate/migrate/v4/database/mysql"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/pkg/errors"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

func newMigrate(db *sql.DB) (*migrate.Migrate, error) {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return nil, errors.Wrap(err, "load migrations")
	}
	target, err := migratemysql.WithInstance(db, &migratemysql.Config{})
	if err != nil {
		return nil, errors.Wrap(err, "migration driver")
	}
	return migrate.NewWithInstance("iofs", src, "mysql", target)
}

// migrator is the part of *migrate.Migrate the commands use.
type migrator interface {
	Up() error
	Steps(n int) error
	Close() (source error, database error)
}

var openMigrator = func(db *sql.DB) (migrator, error) {
	return newMigrate(db)
}

// withMigrator runs fn and always closes the migrator, which releases the
// dedicated connection it holds from the pool.
func withMigrator(db *sql.DB, fn func(m migrator) error) (err error) {
	m, err := openMigrator(db)
	if err != nil {
		return err
	}
	defer func() {
		srcErr, dbErr := m.Close()
		if err != nil {
			return
		}
		if srcErr != nil {
			err = errors.Wrap(srcErr, "close migration source")
		} else if dbErr != nil {
			err = errors.Wrap(dbErr, "close migration database")
		}
	}()
	return fn(m)
}

// MigrateUp applies all pending migrations. It is a no-op on an up-to-date schema.
func MigrateUp(db *sql.DB) error {
	return withMigrator(db, func(m migrator) error {
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return errors.Wrap(err, "migrate up")
		}
		return nil
	})
}

// MigrateDown rolls back the given number of migrations.
func MigrateDown(db *sql.DB, steps int) error {
	return withMigrator(db, func(m migrator) error {
		if err := m.Steps(-steps); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return errors.Wrap(err, "migrate down")
		}
		return nil
	})
}
