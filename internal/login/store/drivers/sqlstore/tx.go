package sqlstore

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/aussiebroadwan/headcount/internal/login/domain"
	"github.com/aussiebroadwan/headcount/internal/login/store"
)

type txStore struct {
	tx  *sqlx.Tx
	d   *Dialect
	now func() time.Time
}

func newTx(tx *sqlx.Tx, d *Dialect, now func() time.Time) *txStore {
	return &txStore{tx: tx, d: d, now: now}
}

func (t *txStore) Commit() error   { return t.tx.Commit() }
func (t *txStore) Rollback() error { return t.tx.Rollback() }

func (t *txStore) Close() error { return nil } // the outer pool stays open

// Ping is a no-op: the connection is pinned for the lifetime of the transaction.
func (t *txStore) Ping(ctx context.Context) error {
	return nil
}

func (t *txStore) Tx(ctx context.Context) (store.Tx, error) {
	// Nested tx not supported; could emulate with SAVEPOINT if needed
	return nil, sql.ErrTxDone
}

func (t *txStore) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	return sql.ErrTxDone
}

func (t *txStore) Credentials() store.Credentials {
	return &credentialsRepo{ext: t.tx, d: t.d, now: t.now}
}

func (t *txStore) Describe(ctx context.Context) ([]domain.Column, error) {
	return describe(ctx, t.tx, t.d)
}

func (t *txStore) ApplyMigrations() error { return nil } // migrations run before any tx
