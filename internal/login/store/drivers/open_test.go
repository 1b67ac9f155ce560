package drivers

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOpen(t *testing.T) {
	t.Run("sqlite from bare path", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "login.db")

		st, err := Open("sqlite", path)
		require.NoError(t, err)
		t.Cleanup(func() { _ = st.Close() })

		require.NoError(t, st.Ping(context.Background()))
		require.Equal(t, "sqlite", st.Dialect())
	})

	t.Run("empty driver defaults to sqlite", func(t *testing.T) {
		st, err := Open("", filepath.Join(t.TempDir(), "login.db"))
		require.NoError(t, err)
		t.Cleanup(func() { _ = st.Close() })
		require.Equal(t, "sqlite", st.Dialect())
	})

	t.Run("sqlite without path", func(t *testing.T) {
		_, err := Open("sqlite", "")
		require.Error(t, err)
	})

	t.Run("unknown driver", func(t *testing.T) {
		_, err := Open("oracle", "whatever")
		require.ErrorContains(t, err, `unknown driver "oracle"`)
	})

	t.Run("bad mysql dsn", func(t *testing.T) {
		_, err := Open("mysql", "not a dsn")
		require.Error(t, err)
	})
}

func TestCanonical(t *testing.T) {
	tests := map[string]string{
		"":           "sqlite",
		"SQLite3":    "sqlite",
		"mariadb":    "mysql",
		"MySQL":      "mysql",
		"postgresql": "postgres",
		"pgx":        "postgres",
		"oracle":     "",
	}
	for in, want := range tests {
		require.Equal(t, want, Canonical(in), "driver %q", in)
		require.Equal(t, want != "", Known(in), "driver %q", in)
	}
}
