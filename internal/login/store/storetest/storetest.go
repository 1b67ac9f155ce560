// Package storetest is a conformance suite every storage driver runs against
// a freshly migrated, empty database.
package storetest

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/headcount/internal/login/domain"
	"github.com/aussiebroadwan/headcount/internal/login/store"
	"github.com/aussiebroadwan/headcount/internal/login/store/drivers/sqlstore"
)

// Clock returns a clock starting at start that moves forward one second on
// every call, so consecutive writes never share a timestamp.
func Clock(start time.Time) func() time.Time {
	var mu sync.Mutex
	next := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		now := next
		next = next.Add(time.Second)
		return now
	}
}

// Epoch is the first instant handed out by the suite clock. It is far enough
// in the past that a timestamp written by the database itself always differs.
var Epoch = time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

// Opener returns a migrated, empty store built with the given options.
type Opener func(t *testing.T, opts ...sqlstore.Option) *sqlstore.Store

// Run executes the conformance suite. Each subtest opens its own store.
func Run(t *testing.T, open Opener) {
	ctx := context.Background()

	fresh := func(t *testing.T) *sqlstore.Store {
		t.Helper()
		return open(t, sqlstore.WithClock(Clock(Epoch)))
	}

	t.Run("describe reports the login columns in order", func(t *testing.T) {
		st := fresh(t)

		cols, err := st.Describe(ctx)
		require.NoError(t, err)

		names := make([]string, len(cols))
		nullable := make(map[string]bool, len(cols))
		for i, c := range cols {
			names[i] = c.Name
			nullable[c.Name] = c.Nullable
		}

		require.Equal(t, []string{
			"id", "username", "is_admin", "password",
			"created_at", "updated_at", "created_by", "updated_by",
		}, names)

		require.False(t, nullable["id"])
		require.False(t, nullable["created_at"])
		for _, col := range []string{"username", "is_admin", "password", "updated_at", "created_by", "updated_by"} {
			require.True(t, nullable[col], col)
		}
	})

	t.Run("login is the only application table", func(t *testing.T) {
		st := fresh(t)

		tables, err := st.Tables(ctx)
		require.NoError(t, err)
		require.Contains(t, tables, store.MigrationsTable)

		var owned []string
		for _, name := range tables {
			if name != store.MigrationsTable {
				owned = append(owned, name)
			}
		}
		require.Equal(t, []string{store.TableName}, owned)
	})

	t.Run("create assigns strictly increasing ids", func(t *testing.T) {
		st := fresh(t)
		repo := st.Credentials()

		empty, err := repo.IsEmpty(ctx)
		require.NoError(t, err)
		require.True(t, empty)

		var last int64
		for _, name := range []string{"alpha", "bravo", "charlie", "delta"} {
			id, err := repo.Create(ctx, domain.Credential{Username: name, PasswordHash: "h"})
			require.NoError(t, err)
			require.Greater(t, id, last)
			last = id
		}

		count, err := repo.Count(ctx)
		require.NoError(t, err)
		require.Equal(t, 4, count)
	})

	t.Run("create sets both timestamps", func(t *testing.T) {
		st := fresh(t)
		repo := st.Credentials()

		id, err := repo.Create(ctx, domain.Credential{Username: "alpha", IsAdmin: true, PasswordHash: "h"})
		require.NoError(t, err)

		got, err := repo.GetByID(ctx, id)
		require.NoError(t, err)
		require.Equal(t, "alpha", got.Username)
		require.True(t, got.IsAdmin)
		require.Equal(t, "h", got.PasswordHash)
		require.True(t, got.CreatedAt.Equal(Epoch), "created_at %s", got.CreatedAt)
		require.True(t, got.UpdatedAt.Equal(got.CreatedAt))
		require.Nil(t, got.CreatedBy)
		require.Nil(t, got.UpdatedBy)
	})

	t.Run("insert keeps explicit ids and later creates move past them", func(t *testing.T) {
		st := fresh(t)
		repo := st.Credentials()

		require.NoError(t, repo.Insert(ctx, domain.Credential{ID: 1, Username: "Admin", IsAdmin: true}))
		require.NoError(t, repo.Insert(ctx, domain.Credential{ID: 2, Username: "User"}))

		id, err := repo.Create(ctx, domain.Credential{Username: "third"})
		require.NoError(t, err)
		require.Greater(t, id, int64(2))

		err = repo.Insert(ctx, domain.Credential{ID: 1, Username: "someone-else"})
		require.ErrorIs(t, err, store.ErrAlreadyExists)

		err = repo.Insert(ctx, domain.Credential{ID: 0, Username: "zero"})
		require.Error(t, err)
	})

	t.Run("lookups", func(t *testing.T) {
		st := fresh(t)
		repo := st.Credentials()

		id, err := repo.Create(ctx, domain.Credential{Username: "alpha"})
		require.NoError(t, err)

		byName, err := repo.GetByUsername(ctx, "alpha")
		require.NoError(t, err)
		require.Equal(t, id, byName.ID)

		_, err = repo.GetByUsername(ctx, "nobody")
		require.ErrorIs(t, err, store.ErrNotFound)

		_, err = repo.GetByID(ctx, id+100)
		require.ErrorIs(t, err, store.ErrNotFound)

		ok, err := repo.Exists(ctx, id)
		require.NoError(t, err)
		require.True(t, ok)

		ok, err = repo.Exists(ctx, id+100)
		require.NoError(t, err)
		require.False(t, ok)
	})

	t.Run("list pages by id", func(t *testing.T) {
		st := fresh(t)
		repo := st.Credentials()

		for _, name := range []string{"a", "b", "c", "d", "e"} {
			_, err := repo.Create(ctx, domain.Credential{Username: name})
			require.NoError(t, err)
		}

		all, err := repo.List(ctx, 0, 0)
		require.NoError(t, err)
		require.Len(t, all, 5)
		for i := 1; i < len(all); i++ {
			require.Greater(t, all[i].ID, all[i-1].ID)
		}

		page, err := repo.List(ctx, 2, 2)
		require.NoError(t, err)
		require.Len(t, page, 2)
		require.Equal(t, "c", page[0].Username)
		require.Equal(t, "d", page[1].Username)
	})

	t.Run("username is unique", func(t *testing.T) {
		st := fresh(t)
		repo := st.Credentials()

		_, err := repo.Create(ctx, domain.Credential{Username: "alpha"})
		require.NoError(t, err)

		_, err = repo.Create(ctx, domain.Credential{Username: "alpha"})
		require.ErrorIs(t, err, store.ErrAlreadyExists)

		id, err := repo.Create(ctx, domain.Credential{Username: "bravo"})
		require.NoError(t, err)

		name := "alpha"
		err = repo.Update(ctx, id, domain.CredentialUpdate{Username: &name})
		require.ErrorIs(t, err, store.ErrAlreadyExists)
	})

	t.Run("attribution must reference an existing row", func(t *testing.T) {
		st := fresh(t)
		repo := st.Credentials()

		admin, err := repo.Create(ctx, domain.Credential{Username: "admin", IsAdmin: true})
		require.NoError(t, err)

		id, err := repo.Create(ctx, domain.Credential{Username: "child", CreatedBy: &admin, UpdatedBy: &admin})
		require.NoError(t, err)

		got, err := repo.GetByID(ctx, id)
		require.NoError(t, err)
		require.NotNil(t, got.CreatedBy)
		require.Equal(t, admin, *got.CreatedBy)

		ghost := admin + 1000
		_, err = repo.Create(ctx, domain.Credential{Username: "orphan", CreatedBy: &ghost})
		require.ErrorIs(t, err, store.ErrInvalidReference)

		err = repo.Update(ctx, id, domain.CredentialUpdate{UpdatedBy: &ghost})
		require.ErrorIs(t, err, store.ErrInvalidReference)

		demoted := false
		require.NoError(t, repo.Update(ctx, id, domain.CredentialUpdate{IsAdmin: &demoted}))
		got, err = repo.GetByID(ctx, id)
		require.NoError(t, err)
		require.Nil(t, got.UpdatedBy, "an update without an actor clears updated_by")
		require.Equal(t, admin, *got.CreatedBy)
	})

	t.Run("update accepts any content and moves updated_at only", func(t *testing.T) {
		st := fresh(t)
		repo := st.Credentials()

		id, err := repo.Create(ctx, domain.Credential{Username: "alpha", PasswordHash: "h"})
		require.NoError(t, err)
		before, err := repo.GetByID(ctx, id)
		require.NoError(t, err)

		name, pw, admin := "ALPHA with spaces ", "", true
		require.NoError(t, repo.Update(ctx, id, domain.CredentialUpdate{
			Username:     &name,
			PasswordHash: &pw,
			IsAdmin:      &admin,
		}))

		after, err := repo.GetByID(ctx, id)
		require.NoError(t, err)
		require.Equal(t, name, after.Username)
		require.Empty(t, after.PasswordHash)
		require.True(t, after.IsAdmin)
		require.True(t, after.CreatedAt.Equal(before.CreatedAt))
		require.True(t, after.UpdatedAt.After(before.UpdatedAt))

		require.ErrorIs(t, repo.Update(ctx, id+100, domain.CredentialUpdate{IsAdmin: &admin}), store.ErrNotFound)
	})

	t.Run("schema guards timestamps against raw sql", func(t *testing.T) {
		st := fresh(t)
		repo := st.Credentials()
		db := st.DB()

		id, err := repo.Create(ctx, domain.Credential{Username: "alpha"})
		require.NoError(t, err)
		before, err := repo.GetByID(ctx, id)
		require.NoError(t, err)

		_, err = db.ExecContext(ctx, db.Rebind(`UPDATE login SET created_at = ? WHERE id = ?`),
			before.CreatedAt.Add(time.Hour), id)
		require.Error(t, err)

		_, err = db.ExecContext(ctx, db.Rebind(`UPDATE login SET is_admin = ? WHERE id = ?`), true, id)
		require.NoError(t, err)

		after, err := repo.GetByID(ctx, id)
		require.NoError(t, err)
		require.True(t, after.IsAdmin)
		require.True(t, after.CreatedAt.Equal(before.CreatedAt))
		require.False(t, after.UpdatedAt.Equal(before.UpdatedAt), "updated_at was not bumped")
	})

	t.Run("with tx rolls back on error", func(t *testing.T) {
		st := fresh(t)

		err := st.WithTx(ctx, func(tx store.Tx) error {
			if _, err := tx.Credentials().Create(ctx, domain.Credential{Username: "ghost"}); err != nil {
				return err
			}
			return store.ErrAlreadyExists
		})
		require.ErrorIs(t, err, store.ErrAlreadyExists)

		empty, err := st.Credentials().IsEmpty(ctx)
		require.NoError(t, err)
		require.True(t, empty)

		err = st.WithTx(ctx, func(tx store.Tx) error {
			_, err := tx.Credentials().Create(ctx, domain.Credential{Username: "kept"})
			return err
		})
		require.NoError(t, err)

		_, err = st.Credentials().GetByUsername(ctx, "kept")
		require.NoError(t, err)
	})

	t.Run("nested transactions are refused", func(t *testing.T) {
		st := fresh(t)

		tx, err := st.Tx(ctx)
		require.NoError(t, err)
		defer func() { _ = tx.Rollback() }()

		_, err = tx.Tx(ctx)
		require.ErrorIs(t, err, sql.ErrTxDone)

		cols, err := tx.Describe(ctx)
		require.NoError(t, err)
		require.Len(t, cols, 8)
	})

	t.Run("migrations are idempotent", func(t *testing.T) {
		st := fresh(t)
		require.NoError(t, st.ApplyMigrations())
	})
}
