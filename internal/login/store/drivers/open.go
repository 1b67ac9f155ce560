// Package drivers selects a storage engine by name.
package drivers

import (
	"fmt"
	"strings"

	"github.com/aussiebroadwan/headcount/internal/login/store/drivers/mysql"
	"github.com/aussiebroadwan/headcount/internal/login/store/drivers/postgres"
	"github.com/aussiebroadwan/headcount/internal/login/store/drivers/sqlite"
	"github.com/aussiebroadwan/headcount/internal/login/store/drivers/sqlstore"
)

// Names lists the accepted driver names.
var Names = []string{sqlite.DriverName, mysql.DriverName, postgres.DriverName}

// Canonical maps an accepted driver name or alias onto its Names entry. It
// returns "" for unknown names.
func Canonical(driver string) string {
	switch strings.ToLower(driver) {
	case "", sqlite.DriverName, "sqlite3":
		return sqlite.DriverName
	case mysql.DriverName, "mariadb":
		return mysql.DriverName
	case postgres.DriverName, "postgresql", "pgx":
		return postgres.DriverName
	}
	return ""
}

// Known reports whether Open accepts driver.
func Known(driver string) bool {
	return Canonical(driver) != ""
}

// Open connects to the named engine. For sqlite a bare file path is accepted
// and expanded with FileDSN.
func Open(driver, dsn string, opts ...sqlstore.Option) (*sqlstore.Store, error) {
	switch Canonical(driver) {
	case sqlite.DriverName:
		if dsn == "" {
			return nil, fmt.Errorf("drivers: sqlite needs a database path")
		}
		if !strings.HasPrefix(dsn, "file:") && dsn != ":memory:" {
			dsn = sqlite.FileDSN(dsn)
		}
		return sqlite.NewStore(dsn, opts...)
	case mysql.DriverName:
		return mysql.NewStore(dsn, opts...)
	case postgres.DriverName:
		return postgres.NewStore(dsn, opts...)
	default:
		return nil, fmt.Errorf("drivers: unknown driver %q (want one of %s)", driver, strings.Join(Names, ", "))
	}
}
