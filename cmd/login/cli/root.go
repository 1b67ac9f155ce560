// Package cli holds the cobra command tree of the login binary.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/aussiebroadwan/headcount/internal/login/app"
)

// Execute creates the root command tree and runs it.
func Execute(version, commit, date string) error {
	if version != "" {
		app.BuildVersion = version
	}
	return newRootCmd(commit, date).Execute()
}

func newRootCmd(commit, date string) *cobra.Command {
	var cfgFile string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Credential store and login service for headcount",
		Long: `login owns the credential table behind headcount: usernames, admin flags
and password hashes, with attribution of who created and last changed each row.

It serves the login HTTP API and carries the maintenance commands for the
table (migrations, seeding, account management).`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./login.yaml)")

	cmd.AddCommand(newServeCmd(&cfgFile))
	cmd.AddCommand(newMigrateCmd(&cfgFile))
	cmd.AddCommand(newSeedCmd(&cfgFile))
	cmd.AddCommand(newSchemaCmd(&cfgFile))
	cmd.AddCommand(newAccountCmd(&cfgFile))
	cmd.AddCommand(newVersionCmd(commit, date))

	return cmd
}
