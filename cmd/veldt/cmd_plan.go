package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/veldtdb/veldt/internal/cli"
	"github.com/veldtdb/veldt/internal/migrate"
)

// planCmd shows the resolved apply order.
func planCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Show the resolved apply order",
		Long: `Resolve the migration graph and print the order migrations would be
applied in. No database connection is required.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newFilesClient()
			if err != nil {
				fail(err)
			}

			plan, err := client.Plan()
			if err != nil {
				fail(err)
			}

			if jsonOutput {
				rows := make([]map[string]any, len(plan))
				for i, m := range plan {
					rows[i] = map[string]any{
						"position":   i + 1,
						"id":         m.ID(),
						"atomic":     m.Atomic,
						"operations": len(m.Operations),
					}
				}
				return cli.WriteJSON(cmd.OutOrStdout(), map[string]any{
					"migrations": rows,
					"total":      len(plan),
				})
			}

			if len(plan) == 0 {
				fmt.Println(cli.Dim("No migrations found."))
				return nil
			}

			fmt.Println(cli.Header("Apply order"))
			fmt.Println()
			for i, m := range plan {
				fmt.Printf("  %s %s%s\n",
					cli.Dim(fmt.Sprintf("%3d.", i+1)),
					m.ID(),
					cli.Dim(planAnnotations(m)))
			}
			fmt.Println()
			fmt.Printf("%s in the plan.\n", countOf(len(plan), "migration", "migrations"))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

// planAnnotations renders the flags worth surfacing per plan entry.
func planAnnotations(m *migrate.Migration) string {
	var notes []string
	if !m.Atomic {
		notes = append(notes, "non-atomic")
	}
	if m.StateOnly {
		notes = append(notes, "state-only")
	}
	if m.DatabaseOnly {
		notes = append(notes, "database-only")
	}
	if len(m.Replaces) > 0 {
		notes = append(notes, fmt.Sprintf("replaces %d", len(m.Replaces)))
	}
	if len(notes) == 0 {
		return ""
	}
	return "  (" + strings.Join(notes, ", ") + ")"
}
