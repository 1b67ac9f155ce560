package cli

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/aussiebroadwan/headcount/internal/login/store"
	"github.com/aussiebroadwan/headcount/pkg/loginsdk"
)

func newSchemaCmd(cfgFile *string) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Describe the columns of the login table",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cmd, *cfgFile)
			if err != nil {
				return err
			}
			defer e.close()

			cols, err := e.db.Describe(e.ctx)
			if err != nil {
				return fmt.Errorf("failed to describe %s: %w", store.TableName, err)
			}

			resp := loginsdk.SchemaResponse{
				Table:   store.TableName,
				Driver:  e.db.Dialect(),
				Columns: make([]loginsdk.Column, len(cols)),
			}
			for i, c := range cols {
				resp.Columns[i] = loginsdk.Column{Name: c.Name, Type: c.Type, Nullable: c.Nullable, Default: c.Default}
			}

			if jsonOutput {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(resp)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "COLUMN\tTYPE\tNULL\tDEFAULT")
			for _, c := range resp.Columns {
				dflt := "-"
				if c.Default != nil {
					dflt = *c.Default
				}
				null := "NO"
				if c.Nullable {
					null = "YES"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", c.Name, c.Type, null, dflt)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}
