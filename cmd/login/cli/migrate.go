package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newMigrateCmd(cfgFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply schema migrations to the credential store",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cmd, *cfgFile)
			if err != nil {
				return err
			}
			defer e.close()

			tables, err := e.db.Tables(e.ctx)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Schema of %s is up to date\n", e.db.Dialect())
			fmt.Fprintf(cmd.OutOrStdout(), "Tables: %s\n", strings.Join(tables, ", "))
			return nil
		},
	}
}
