package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/veldtdb/veldt/internal/cli"
)

// validateCmd validates the migration graph without a database.
func validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the migration graph",
		Long: `Load every migration file, check each document, and resolve the full
dependency graph. No database connection is required.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newFilesClient()
			if err != nil {
				fail(err)
			}

			n, err := client.Validate()
			if err != nil {
				fail(err)
			}

			fmt.Print(cli.FormatSuccess(fmt.Sprintf("Validated %s.", countOf(n, "migration", "migrations"))))
			return nil
		},
	}
}
