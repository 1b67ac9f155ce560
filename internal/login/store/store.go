package store

import (
	"context"
	"errors"

	"github.com/aussiebroadwan/headcount/internal/login/domain"
)

var (
	ErrNotFound         = errors.New("store: not found")
	ErrAlreadyExists    = errors.New("store: already exists")
	ErrInvalidReference = errors.New("store: invalid reference")
)

// TableName is the single table this store owns.
const TableName = "login"

// MigrationsTable is where golang-migrate records the applied version. It is
// the only other table the migrations create.
const MigrationsTable = "schema_migrations"

// Store is the root data access interface. Concrete drivers (sqlite, mysql,
// postgres) implement this. The repositories hang off it as methods so a Tx
// hands out the same repositories bound to the transaction.
type Store interface {
	Credentials() Credentials

	// Describe reports the columns of the login table in declared order.
	Describe(ctx context.Context) ([]domain.Column, error)

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction. If fn returns an error the
	// transaction is rolled back, otherwise it is committed.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Credentials interface {
	// Create inserts a row and lets the engine assign the id, which is returned.
	// created_at and updated_at are both set to the store clock.
	Create(ctx context.Context, c domain.Credential) (int64, error)

	// Insert writes a row with the caller's id (seed path). A taken id or
	// username yields ErrAlreadyExists.
	Insert(ctx context.Context, c domain.Credential) error

	GetByID(ctx context.Context, id int64) (domain.Credential, error)

	// GetByUsername is served by the unique username index.
	GetByUsername(ctx context.Context, username string) (domain.Credential, error)

	// List returns rows ordered by id. A non-positive limit returns every row
	// and ignores offset.
	List(ctx context.Context, limit, offset int) ([]domain.Credential, error)

	// Update applies the non-nil data fields of u, writes updated_by (NULL
	// when u.UpdatedBy is nil) and bumps updated_at. created_at is never
	// written.
	Update(ctx context.Context, id int64, u domain.CredentialUpdate) error

	Exists(ctx context.Context, id int64) (bool, error)
	Count(ctx context.Context) (int, error)
	IsEmpty(ctx context.Context) (bool, error)
}
