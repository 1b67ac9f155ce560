package cli

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/headcount/internal/login/app"
	"github.com/aussiebroadwan/headcount/internal/login/service"
	"github.com/aussiebroadwan/headcount/pkg/loginsdk"
)

// setup points the commands at a fresh sqlite file.
func setup(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("LOGIN_DATABASE_DRIVER", "sqlite")
	t.Setenv("LOGIN_DATABASE_DSN", filepath.Join(dir, "login.db"))
	t.Setenv("LOGIN_AUTH_PEPPER_FILE", filepath.Join(dir, "pepper"))
	t.Setenv("LOGIN_LOG_LEVEL", "error")
}

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	cmd := newRootCmd("abc123", "2026-10-15")
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetIn(strings.NewReader(stdin))

	err := cmd.Execute()
	return out.String(), err
}

func listAccounts(t *testing.T) []accountRow {
	t.Helper()
	out, err := run(t, "", "account", "list", "--json")
	require.NoError(t, err)

	var rows []accountRow
	require.NoError(t, json.Unmarshal([]byte(out), &rows))
	return rows
}

func TestVersion(t *testing.T) {
	out, err := run(t, "", "version", "--json")
	require.NoError(t, err)

	var info map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	require.Equal(t, app.BuildVersion, info["version"])
	require.Equal(t, "abc123", info["commit"])
	require.Equal(t, "2026-10-15", info["built"])
}

func TestMigrateAndSchema(t *testing.T) {
	setup(t)

	out, err := run(t, "", "migrate")
	require.NoError(t, err)
	require.Contains(t, out, "sqlite")
	require.Contains(t, out, "Tables: login, schema_migrations")

	out, err = run(t, "", "schema", "--json")
	require.NoError(t, err)

	var schema loginsdk.SchemaResponse
	require.NoError(t, json.Unmarshal([]byte(out), &schema))
	require.Equal(t, "login", schema.Table)
	require.Equal(t, "sqlite", schema.Driver)

	names := make([]string, len(schema.Columns))
	for i, c := range schema.Columns {
		names[i] = c.Name
	}
	require.Equal(t, []string{"id", "username", "is_admin", "password", "created_at", "updated_at", "created_by", "updated_by"}, names)

	out, err = run(t, "", "schema")
	require.NoError(t, err)
	require.Contains(t, out, "COLUMN")
	require.Contains(t, out, "created_by")
}

func TestSeed(t *testing.T) {
	setup(t)

	out, err := run(t, "", "seed")
	require.NoError(t, err)
	require.Contains(t, out, "Inserted 2 of 2")

	out, err = run(t, "", "seed")
	require.NoError(t, err)
	require.Contains(t, out, "Inserted 0 of 2")

	_, err = run(t, "", "seed", "--strict")
	require.ErrorIs(t, err, service.ErrSeedConflict)

	rows := listAccounts(t)
	require.Len(t, rows, 2)
	require.Equal(t, "Admin", rows[0].Username)
	require.True(t, rows[0].IsAdmin)
	require.Equal(t, "User", rows[1].Username)
	require.False(t, rows[1].IsAdmin)
}

func TestSeedCustomFile(t *testing.T) {
	setup(t)

	fixture := filepath.Join(t.TempDir(), "accounts.yaml")
	require.NoError(t, writeFile(fixture, `
accounts:
  - id: 10
    username: operator
    is_admin: true
    password: hunter2
`))

	out, err := run(t, "", "seed", "--strict", "--file", fixture)
	require.NoError(t, err)
	require.Contains(t, out, "Inserted 1 seed accounts")

	rows := listAccounts(t)
	require.Len(t, rows, 1)
	require.Equal(t, int64(10), rows[0].ID)
}

func TestAccountLifecycle(t *testing.T) {
	setup(t)

	out, err := run(t, "", "account", "create", "--username", "alice", "--password", "wonderland", "--admin")
	require.NoError(t, err)
	require.Contains(t, out, "Created credential 1 (alice)")

	out, err = run(t, "s3cret\n", "account", "create", "--username", "bob")
	require.NoError(t, err)
	require.Contains(t, out, "Created credential 2 (bob)")

	out, err = run(t, "", "account", "create", "--username", "carol", "--generate")
	require.NoError(t, err)
	require.Contains(t, out, "password: ")

	_, err = run(t, "", "account", "create", "--username", "alice", "--password", "again")
	require.ErrorIs(t, err, service.ErrUsernameTaken)

	_, err = run(t, "", "account", "create", "--username", " padded ", "--password", "x")
	require.ErrorIs(t, err, service.ErrInvalidUsername)

	_, err = run(t, "", "account", "create", "--username", "dave", "--password", "x", "--generate")
	require.Error(t, err)

	out, err = run(t, "", "account", "demote", "1")
	require.NoError(t, err)
	require.Contains(t, out, "admin=false")

	out, err = run(t, "", "account", "promote", "2")
	require.NoError(t, err)
	require.Contains(t, out, "admin=true")

	_, err = run(t, "n3w-pass\n", "account", "passwd", "bob")
	require.NoError(t, err)

	out, err = run(t, "", "account", "demote", "carol")
	require.NoError(t, err)
	require.Contains(t, out, "Credential 3 (carol) admin=false")

	rows := listAccounts(t)
	require.Len(t, rows, 3)
	require.False(t, rows[0].IsAdmin)
	require.True(t, rows[1].IsAdmin)
	for _, r := range rows {
		require.Nil(t, r.CreatedBy, "shell changes carry no actor")
		require.Nil(t, r.UpdatedBy)
		require.False(t, r.UpdatedAt.Before(r.CreatedAt))
	}

	cfg, err := app.LoadConfig("")
	require.NoError(t, err)
	db, err := app.OpenStore(cfg, app.NewLogger(cfg, io.Discard))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	svc := &service.CredentialService{Store: db}
	_, err = svc.Authenticate(t.Context(), "bob", "n3w-pass")
	require.NoError(t, err)
	_, err = svc.Authenticate(t.Context(), "bob", "s3cret")
	require.ErrorIs(t, err, service.ErrInvalidCredentials)
}

func TestAccountErrors(t *testing.T) {
	setup(t)

	_, err := run(t, "", "account", "promote", "0")
	require.ErrorContains(t, err, "invalid credential id")

	_, err = run(t, "", "account", "promote", "nobody")
	require.ErrorIs(t, err, service.ErrNotFound)

	_, err = run(t, "", "account", "passwd", "nobody", "--password", "x")
	require.ErrorIs(t, err, service.ErrNotFound)

	_, err = run(t, "", "account", "promote", "42")
	require.ErrorIs(t, err, service.ErrNotFound)

	_, err = run(t, "", "account", "create")
	require.ErrorContains(t, err, "username")

	out, err := run(t, "", "account", "list")
	require.NoError(t, err)
	require.Contains(t, out, "No credentials")
}

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0o600)
}
