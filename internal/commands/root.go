// Package commands wires the CLI surface.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/financas-app/statement-parser/internal/api"
)

// NewRootCommand creates the root CLI command with all subcommands
// registered.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "statement-parser",
		Short:   "Bank statement ingestion and invoice date toolkit",
		Version: api.Version,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newParseCommand())
	rootCmd.AddCommand(newDatesCommand())
	rootCmd.AddCommand(newServeCommand())

	return rootCmd
}
