package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// sqlCmd prints the DDL the plan would execute.
func sqlCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sql",
		Short: "Print the DDL the plan would execute",
		Long: `Render the full plan's SQL for review without executing anything.
Works offline when a dialect is configured; otherwise the dialect is
detected from the database URL.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newFilesClient()
			if err != nil {
				fail(err)
			}

			statements, err := client.SQL()
			if err != nil {
				fail(err)
			}

			for _, stmt := range statements {
				fmt.Println(stmt + ";")
			}
			return nil
		},
	}
}
