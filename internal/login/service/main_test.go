package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/headcount/internal/login/store/drivers/sqlite"
	"github.com/aussiebroadwan/headcount/internal/login/store/drivers/sqlstore"
	"github.com/aussiebroadwan/headcount/internal/login/store/storetest"
	"github.com/aussiebroadwan/headcount/pkg/cryptox"
)

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "service-test")
	if err != nil {
		panic(err)
	}
	cryptox.SetPepperPath(filepath.Join(dir, "pepper"))

	code := m.Run()
	_ = os.RemoveAll(dir)
	os.Exit(code)
}

func newStore(t *testing.T) *sqlstore.Store {
	t.Helper()

	st, err := sqlite.NewStore(":memory:", sqlstore.WithClock(storetest.Clock(storetest.Epoch)))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())
	return st
}

func ptr[T any](v T) *T { return &v }

var bg = context.Background()
