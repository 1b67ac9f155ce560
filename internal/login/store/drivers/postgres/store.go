// Package postgres stores credentials in PostgreSQL through pgx's
// database/sql adapter.
package postgres

import (
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver
	"github.com/jmoiron/sqlx"

	"github.com/aussiebroadwan/headcount/internal/login/store"
	"github.com/aussiebroadwan/headcount/internal/login/store/drivers/sqlstore"
)

const (
	DriverName = "postgres"

	// sqlDriver is the database/sql name pgx registers under. sqlx keys its
	// bind style off this name.
	sqlDriver = "pgx"
)

// SQLSTATE codes the store maps onto its sentinels.
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
)

var dialect = sqlstore.Dialect{
	Name:        DriverName,
	ReturningID: true,
	SyncIdentity: `SELECT setval(pg_get_serial_sequence('login', 'id'),
		COALESCE((SELECT MAX(id) FROM login), 0) + 1, false)`,
	DescribeQuery: `SELECT column_name::text AS name, data_type::text AS type,
			is_nullable = 'YES' AS nullable,
			column_default::text AS dflt
		FROM information_schema.columns
		WHERE table_schema = current_schema() AND table_name = 'login'
		ORDER BY ordinal_position`,
	TablesQuery: `SELECT table_name::text AS name
		FROM information_schema.tables
		WHERE table_schema = current_schema() AND table_type = 'BASE TABLE'
		ORDER BY table_name`,
	Classify: classify,
	Migrate:  migrateUp,
}

// NewStore connects using a postgres:// URL or key=value DSN.
func NewStore(dsn string, opts ...sqlstore.Option) (*sqlstore.Store, error) {
	db, err := sqlx.Connect(sqlDriver, dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres connect: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	return sqlstore.New(db, dialect, opts...), nil
}

func classify(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case codeUniqueViolation:
		return fmt.Errorf("%w: %v", store.ErrAlreadyExists, err)
	case codeForeignKeyViolation:
		return fmt.Errorf("%w: %v", store.ErrInvalidReference, err)
	}
	return err
}
