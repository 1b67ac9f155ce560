package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/aussiebroadwan/headcount/internal/login/domain"
	"github.com/aussiebroadwan/headcount/internal/login/service"
	"github.com/aussiebroadwan/headcount/pkg/cryptox"
)

// cliActor leaves created_by and updated_by empty: shell access has no
// credential to attribute changes to.
const cliActor int64 = 0

func newAccountCmd(cfgFile *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "account",
		Aliases: []string{"accounts"},
		Short:   "Manage login credentials",
		Long:    "Create, list and modify rows of the login table. Rows are never deleted.",
	}

	cmd.AddCommand(newAccountCreateCmd(cfgFile))
	cmd.AddCommand(newAccountListCmd(cfgFile))
	cmd.AddCommand(newAccountPasswdCmd(cfgFile))
	cmd.AddCommand(newAccountAdminCmd(cfgFile, "promote", true))
	cmd.AddCommand(newAccountAdminCmd(cfgFile, "demote", false))

	return cmd
}

// ---------- account create ----------

func newAccountCreateCmd(cfgFile *string) *cobra.Command {
	var (
		username string
		password string
		admin    bool
		generate bool
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a credential",
		Example: `  login account create --username alice --admin
  login account create --username bob --generate`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if password != "" && generate {
				return errors.New("--password and --generate are mutually exclusive")
			}
			if err := service.ValidateUsername(username); err != nil {
				return err
			}

			var err error
			switch {
			case generate:
				if password, err = cryptox.GeneratePassword(); err != nil {
					return err
				}
			case password == "":
				if password, err = readPassword(cmd, "Password: "); err != nil {
					return err
				}
			}

			e, err := openEnv(cmd, *cfgFile)
			if err != nil {
				return err
			}
			defer e.close()

			svc := &service.CredentialService{Store: e.db}
			c, err := svc.Create(e.ctx, cliActor, service.NewCredential{
				Username: username,
				Password: password,
				IsAdmin:  admin,
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Created credential %d (%s)\n", c.ID, c.Username)
			if generate {
				fmt.Fprintf(cmd.OutOrStdout(), "  password: %s\n", password)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "Username (required)")
	cmd.Flags().StringVar(&password, "password", "", "Password (prompted if omitted)")
	cmd.Flags().BoolVar(&admin, "admin", false, "Grant admin rights")
	cmd.Flags().BoolVar(&generate, "generate", false, "Generate a random password and print it once")
	_ = cmd.MarkFlagRequired("username")

	return cmd
}

// ---------- account list ----------

type accountRow struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	IsAdmin   bool      `json:"is_admin"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	CreatedBy *int64    `json:"created_by"`
	UpdatedBy *int64    `json:"updated_by"`
}

func toAccountRow(c domain.Credential) accountRow {
	return accountRow{
		ID:        c.ID,
		Username:  c.Username,
		IsAdmin:   c.IsAdmin,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
		CreatedBy: c.CreatedBy,
		UpdatedBy: c.UpdatedBy,
	}
}

func newAccountListCmd(cfgFile *string) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List all credentials",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cmd, *cfgFile)
			if err != nil {
				return err
			}
			defer e.close()

			svc := &service.CredentialService{Store: e.db}
			creds, _, err := svc.List(e.ctx, 0, 0)
			if err != nil {
				return err
			}

			rows := make([]accountRow, len(creds))
			for i, c := range creds {
				rows[i] = toAccountRow(c)
			}

			if jsonOutput {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(rows)
			}

			if len(rows) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No credentials. Use 'login seed' or 'login account create' to add one.")
				return nil
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tUSERNAME\tADMIN\tCREATED\tUPDATED\tCREATED BY\tUPDATED BY")
			for _, r := range rows {
				fmt.Fprintf(tw, "%d\t%s\t%t\t%s\t%s\t%s\t%s\n",
					r.ID, orDash(r.Username), r.IsAdmin,
					r.CreatedAt.Format(time.RFC3339), r.UpdatedAt.Format(time.RFC3339),
					idOrDash(r.CreatedBy), idOrDash(r.UpdatedBy))
			}
			return tw.Flush()
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}

// ---------- account passwd ----------

func newAccountPasswdCmd(cfgFile *string) *cobra.Command {
	var password string

	cmd := &cobra.Command{
		Use:   "passwd ID|USERNAME",
		Short: "Set the password of a credential",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				var err error
				if password, err = readPassword(cmd, "New password: "); err != nil {
					return err
				}
			}

			e, err := openEnv(cmd, *cfgFile)
			if err != nil {
				return err
			}
			defer e.close()

			svc := &service.CredentialService{Store: e.db}
			id, err := resolveCredential(e.ctx, svc, args[0])
			if err != nil {
				return err
			}
			if _, err := svc.Update(e.ctx, cliActor, id, service.CredentialPatch{Password: &password}); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Password of credential %d updated\n", id)
			return nil
		},
	}

	cmd.Flags().StringVar(&password, "password", "", "New password (prompted if omitted)")

	return cmd
}

// ---------- account promote / demote ----------

func newAccountAdminCmd(cfgFile *string, use string, admin bool) *cobra.Command {
	short := "Grant admin rights to a credential"
	if !admin {
		short = "Revoke admin rights from a credential"
	}

	return &cobra.Command{
		Use:   use + " ID|USERNAME",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cmd, *cfgFile)
			if err != nil {
				return err
			}
			defer e.close()

			svc := &service.CredentialService{Store: e.db}
			id, err := resolveCredential(e.ctx, svc, args[0])
			if err != nil {
				return err
			}
			c, err := svc.Update(e.ctx, cliActor, id, service.CredentialPatch{IsAdmin: &admin})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Credential %d (%s) admin=%t\n", c.ID, c.Username, c.IsAdmin)
			return nil
		},
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func idOrDash(id *int64) string {
	if id == nil {
		return "-"
	}
	return strconv.FormatInt(*id, 10)
}
