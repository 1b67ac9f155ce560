package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/aussiebroadwan/headcount/internal/login/app"
)

func newServeCmd(cfgFile *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the login HTTP API",
		Long: `Open the credential store, apply migrations, insert any missing seed
accounts (seed.on_start) and serve the login API until SIGINT or SIGTERM.`,
		Example: `  login serve
  login serve --port 9000
  LOGIN_DATABASE_DRIVER=postgres LOGIN_DATABASE_DSN=postgres://... login serve`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.LoadConfig(*cfgFile, func(v *viper.Viper) error {
				return v.BindPFlag("http.port", cmd.Flags().Lookup("port"))
			})
			if err != nil {
				return err
			}

			application, err := app.New(cfg)
			if err != nil {
				return fmt.Errorf("failed to initialize application: %w", err)
			}
			return application.Run()
		},
	}

	cmd.Flags().IntP("port", "p", 8080, "HTTP listen port (overrides http.port)")

	return cmd
}
