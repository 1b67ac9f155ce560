// Package sqlite is the default storage engine, backed by the pure-Go
// modernc.org/sqlite driver.
package sqlite

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	moderncsqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/aussiebroadwan/headcount/internal/login/store"
	"github.com/aussiebroadwan/headcount/internal/login/store/drivers/sqlstore"
)

const DriverName = "sqlite"

var dialect = sqlstore.Dialect{
	Name: DriverName,
	DescribeQuery: `SELECT name, type,
			CASE WHEN "notnull" = 1 OR pk = 1 THEN 0 ELSE 1 END AS nullable,
			dflt_value AS dflt
		FROM pragma_table_info('login')
		ORDER BY cid`,
	TablesQuery: `SELECT name FROM sqlite_master
		WHERE type = 'table' AND name NOT LIKE 'sqlite\_%' ESCAPE '\'
		ORDER BY name`,
	Classify: classify,
	Migrate:  migrateUp,
}

// FileDSN builds a DSN for a database file with the pragmas the store relies
// on applied to every connection.
func FileDSN(path string) string {
	return fmt.Sprintf(
		"file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)",
		path,
	)
}

// NewStore opens the database at dsn. The returned store has not been
// migrated yet; call ApplyMigrations.
func NewStore(dsn string, opts ...sqlstore.Option) (*sqlstore.Store, error) {
	db, err := sqlx.Connect(DriverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite connect: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite doesn't support concurrent writes

	// Enforce FKs
	if _, err := db.ExecContext(context.Background(), `PRAGMA foreign_keys = ON;`); err != nil {
		_ = db.Close()
		return nil, err
	}

	return sqlstore.New(db, dialect, opts...), nil
}

func classify(err error) error {
	var se *moderncsqlite.Error
	if !errors.As(err, &se) {
		return err
	}

	switch se.Code() {
	case sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_ROWID:
		return fmt.Errorf("%w: %v", store.ErrAlreadyExists, err)
	case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
		return fmt.Errorf("%w: %v", store.ErrInvalidReference, err)
	}

	// Extended codes disabled: fall back to the message.
	msg := se.Error()
	switch {
	case strings.Contains(msg, "UNIQUE constraint failed"):
		return fmt.Errorf("%w: %v", store.ErrAlreadyExists, err)
	case strings.Contains(msg, "FOREIGN KEY constraint failed"):
		return fmt.Errorf("%w: %v", store.ErrInvalidReference, err)
	}
	return err
}
