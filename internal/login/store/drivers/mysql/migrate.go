package mysql

import (
	"database/sql"
	"errors"

	"github.com/golang-migrate/migrate/v4"
	migratemysql "github.com/golang-migrate/migrate/v4/database/mysql"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/aussiebroadwan/headcount/internal/login/store"
	"github.com/aussiebroadwan/headcount/internal/login/store/drivers/mysql/migrations"
)

// migrateUp applies any pending migrations from the embedded MySQL set. The
// connection must have been opened with multiStatements enabled.
func migrateUp(db *sql.DB) error {
	driver, err := migratemysql.WithInstance(db, &migratemysql.Config{MigrationsTable: store.MigrationsTable})
	if err != nil {
		return err
	}

	source, err := iofs.New(migrations.Migrations, ".")
	if err != nil {
		return err
	}

	instance, err := migrate.NewWithInstance("iofs", source, DriverName, driver)
	if err != nil {
		return err
	}

	err = instance.Up()
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}

	return nil
}
