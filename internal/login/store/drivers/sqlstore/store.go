// Package sqlstore implements store.Store on top of sqlx. The engine drivers
// (sqlite, mysql, postgres) open the connection, supply a Dialect and their
// embedded migrations, and hand back a *Store.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/aussiebroadwan/headcount/internal/login/domain"
	"github.com/aussiebroadwan/headcount/internal/login/store"
)

// Dialect captures what differs between engines.
type Dialect struct {
	// Name is the driver name used in configuration ("sqlite", "mysql", "postgres").
	Name string

	// ReturningID reads generated ids with INSERT ... RETURNING id instead of
	// LastInsertId (pgx does not support the latter).
	ReturningID bool

	// SyncIdentity, when set, runs after an explicit-id insert so the engine's
	// identity sequence stays ahead of the highest id.
	SyncIdentity string

	// DescribeQuery selects name, type, nullable and dflt for every column of
	// the login table in declared order.
	DescribeQuery string

	// TablesQuery selects the name of every base table in the current
	// schema, ordered by name.
	TablesQuery string

	// Classify maps engine errors onto the store sentinels. It returns err
	// unchanged when it has nothing to say about it.
	Classify func(err error) error

	// Migrate applies the embedded migrations to db.
	Migrate func(db *sql.DB) error
}

func (d *Dialect) classify(err error) error {
	if err == nil || d.Classify == nil {
		return err
	}
	return d.Classify(err)
}

// Option configures a Store.
type Option func(*Store)

// WithClock replaces the clock used for created_at and updated_at.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.clock = now
		}
	}
}

type Store struct {
	db      *sqlx.DB
	dialect *Dialect
	clock   func() time.Time
}

// New wraps an open connection pool.
func New(db *sqlx.DB, d Dialect, opts ...Option) *Store {
	s := &Store{
		db:      db,
		dialect: &d,
		clock:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// DB exposes the underlying pool for tooling and tests that need raw SQL.
func (s *Store) DB() *sqlx.DB { return s.db }

// Dialect returns the engine name.
func (s *Store) Dialect() string { return s.dialect.Name }

func (s *Store) Close() error { return s.db.Close() }

// Ping verifies the database connection is still alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) ApplyMigrations() error {
	if s.dialect.Migrate == nil {
		return errors.New("sqlstore: dialect has no migrations")
	}
	return s.dialect.Migrate(s.db.DB)
}

// Tx starts a read/write transaction and returns a Tx-scoped Store.
func (s *Store) Tx(ctx context.Context) (store.Tx, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return newTx(tx, s.dialect, s.now), nil
}

// WithTx executes fn within a transaction, automatically handling commit/rollback.
func (s *Store) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	tx, err := s.Tx(ctx)
	if err != nil {
		return err
	}

	defer func() {
		_ = tx.Rollback() // no-op after commit
	}()

	if err := fn(tx); err != nil {
		return err
	}

	return tx.Commit()
}

func (s *Store) Credentials() store.Credentials {
	return &credentialsRepo{ext: s.db, d: s.dialect, now: s.now}
}

func (s *Store) Describe(ctx context.Context) ([]domain.Column, error) {
	return describe(ctx, s.db, s.dialect)
}

// Tables lists the base tables of the schema, including the migration
// bookkeeping table.
func (s *Store) Tables(ctx context.Context) ([]string, error) {
	var names []string
	if err := sqlx.SelectContext(ctx, s.db, &names, s.dialect.TablesQuery); err != nil {
		return nil, err
	}
	return names, nil
}

// now truncates to microseconds, the finest precision every engine keeps.
func (s *Store) now() time.Time {
	return s.clock().UTC().Truncate(time.Microsecond)
}

type columnRow struct {
	Name     string         `db:"name"`
	Type     string         `db:"type"`
	Nullable bool           `db:"nullable"`
	Default  sql.NullString `db:"dflt"`
}

func describe(ctx context.Context, q sqlx.QueryerContext, d *Dialect) ([]domain.Column, error) {
	var rows []columnRow
	if err := sqlx.SelectContext(ctx, q, &rows, d.DescribeQuery); err != nil {
		return nil, err
	}

	cols := make([]domain.Column, len(rows))
	for i, r := range rows {
		cols[i] = domain.Column{
			Name:     r.Name,
			Type:     r.Type,
			Nullable: r.Nullable,
			Default:  mapNullStringPtr(r.Default),
		}
	}
	return cols, nil
}

func mapNotFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	return err
}

func mapNullStringPtr(ns sql.NullString) *string {
	if ns.Valid {
		val := ns.String
		return &val
	}
	return nil
}
