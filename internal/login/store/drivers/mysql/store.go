// Package mysql stores credentials in MySQL/MariaDB, the engine the login
// table was originally exported from.
package mysql

import (
	"errors"
	"fmt"
	"time"

	gomysql "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"

	"github.com/aussiebroadwan/headcount/internal/login/store"
	"github.com/aussiebroadwan/headcount/internal/login/store/drivers/sqlstore"
)

const DriverName = "mysql"

// MySQL server error numbers the store cares about.
const (
	errDupEntry        = 1062
	errNoReferencedRow = 1452
)

var dialect = sqlstore.Dialect{
	Name: DriverName,
	DescribeQuery: `SELECT column_name AS name, column_type AS type,
			is_nullable = 'YES' AS nullable,
			column_default AS dflt
		FROM information_schema.columns
		WHERE table_schema = DATABASE() AND table_name = 'login'
		ORDER BY ordinal_position`,
	TablesQuery: `SELECT table_name AS name
		FROM information_schema.tables
		WHERE table_schema = DATABASE() AND table_type = 'BASE TABLE'
		ORDER BY table_name`,
	Classify: classify,
	Migrate:  migrateUp,
}

// NormalizeDSN forces the connection options the store depends on: parsed
// UTC timestamps, multi-statement migrations and matched (not changed) row
// counts for updates.
func NormalizeDSN(dsn string) (string, error) {
	cfg, err := gomysql.ParseDSN(dsn)
	if err != nil {
		return "", fmt.Errorf("mysql: parse dsn: %w", err)
	}
	cfg.ParseTime = true
	cfg.Loc = time.UTC
	cfg.MultiStatements = true
	cfg.ClientFoundRows = true
	return cfg.FormatDSN(), nil
}

// NewStore connects to the database named in dsn. The returned store has not
// been migrated yet; call ApplyMigrations.
func NewStore(dsn string, opts ...sqlstore.Option) (*sqlstore.Store, error) {
	normalized, err := NormalizeDSN(dsn)
	if err != nil {
		return nil, err
	}

	db, err := sqlx.Connect(DriverName, normalized)
	if err != nil {
		return nil, fmt.Errorf("mysql connect: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	return sqlstore.New(db, dialect, opts...), nil
}

func classify(err error) error {
	var me *gomysql.MySQLError
	if !errors.As(err, &me) {
		return err
	}

	switch me.Number {
	case errDupEntry:
		return fmt.Errorf("%w: %v", store.ErrAlreadyExists, err)
	case errNoReferencedRow:
		return fmt.Errorf("%w: %v", store.ErrInvalidReference, err)
	}
	return err
}
