// Package cli handles the command-line interface logic using the Cobra
// library.
package cli

import (
	"github.com/spf13/cobra"
)

func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "tablesync",
		Short: "tablesync - propagate each subtable's last row into parent record fields",
		Long: `tablesync keeps summary fields on a parent record synchronized with the
last row of its subtables. The bulk command applies the configured mappings to
every stored record matching a filter, in one idempotent pass.`,
		SilenceUsage: true,
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Help()
		},
	}

	rootCmd.AddCommand(NewBulkCmd())
	rootCmd.AddCommand(NewValidateCmd())

	return rootCmd
}
