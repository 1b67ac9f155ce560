package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aussiebroadwan/headcount/internal/login/app"
	"github.com/aussiebroadwan/headcount/internal/login/service"
)

func newSeedCmd(cfgFile *string) *cobra.Command {
	var (
		strict bool
		file   string
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert the seed accounts",
		Long: `Insert the seed accounts (Admin and User unless --file or seed.file names
another fixture).

By default accounts whose id or username is already present are skipped, so
the command can run any number of times. With --strict every account is
inserted as is and the command fails on the first collision.`,
		Example: `  login seed
  login seed --strict
  login seed --file ./fixtures/accounts.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cmd, *cfgFile)
			if err != nil {
				return err
			}
			defer e.close()

			if file != "" {
				e.cfg.Seed.File = file
			}
			accounts, err := app.SeedAccounts(e.cfg)
			if err != nil {
				return err
			}

			svc := &service.SeedService{Store: e.db, Accounts: accounts}
			if strict {
				if err := svc.Seed(e.ctx); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Inserted %d seed accounts\n", len(accounts))
				return nil
			}

			n, err := svc.EnsureSeed(e.ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Inserted %d of %d seed accounts\n", n, len(accounts))
			return nil
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "Fail when a seed id or username is already taken")
	cmd.Flags().StringVar(&file, "file", "", "Seed fixture (overrides seed.file)")

	return cmd
}
