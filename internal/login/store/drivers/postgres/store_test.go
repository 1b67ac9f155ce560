package postgres

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/aussiebroadwan/headcount/internal/login/store"
	"github.com/aussiebroadwan/headcount/internal/login/store/drivers/sqlstore"
	"github.com/aussiebroadwan/headcount/internal/login/store/storetest"
)

const (
	postgresImage    = "postgres:17-alpine"
	postgresPassword = "headcount-test"
)

// setupPostgresContainer starts a throwaway server and returns a URL template
// taking the database name.
func setupPostgresContainer(t *testing.T) string {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping PostgreSQL container test in -short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	req := testcontainers.ContainerRequest{
		Image:        postgresImage,
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_PASSWORD": postgresPassword,
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(time.Minute),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	mappedPort, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)
	host, err := container.Host(ctx)
	require.NoError(t, err)

	return fmt.Sprintf("postgres://postgres:%s@%s:%s/%%s?sslmode=disable", postgresPassword, host, mappedPort.Port())
}

func TestStoreConformance(t *testing.T) {
	urlFor := setupPostgresContainer(t)

	admin, err := sqlx.Connect(sqlDriver, fmt.Sprintf(urlFor, "postgres"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = admin.Close() })

	var seq atomic.Int32
	storetest.Run(t, func(t *testing.T, opts ...sqlstore.Option) *sqlstore.Store {
		t.Helper()

		name := fmt.Sprintf("headcount_%d", seq.Add(1))
		_, err := admin.Exec("CREATE DATABASE " + name)
		require.NoError(t, err)

		st, err := NewStore(fmt.Sprintf(urlFor, name), opts...)
		require.NoError(t, err)
		t.Cleanup(func() { _ = st.Close() })

		require.NoError(t, st.ApplyMigrations())
		return st
	})
}

func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   error
		want error
	}{
		{"unique violation", &pgconn.PgError{Code: codeUniqueViolation}, store.ErrAlreadyExists},
		{"foreign key violation", &pgconn.PgError{Code: codeForeignKeyViolation}, store.ErrInvalidReference},
		{"wrapped unique violation", fmt.Errorf("exec: %w", &pgconn.PgError{Code: codeUniqueViolation}), store.ErrAlreadyExists},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.ErrorIs(t, classify(tt.in), tt.want)
		})
	}

	t.Run("other errors pass through", func(t *testing.T) {
		in := errors.New("connection refused")
		require.Same(t, in, classify(in))
	})
}
