package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/veldtdb/veldt/internal/cli"
	"github.com/veldtdb/veldt/internal/ui"
	"github.com/veldtdb/veldt/pkg/veldt"
)

// timeDisplay is the human-readable applied-at format.
const timeDisplay = "2006-01-02 15:04:05"

// statusCmd shows applied/pending migrations and checksum drift.
func statusCmd() *cobra.Command {
	var jsonOutput, interactive bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show applied/pending migrations",
		Long: `Show, for every migration in the plan, whether it has been applied and
whether its recorded checksum still matches the local rendering.
Applied migrations whose ledger rows have no local counterpart are
listed as drifted.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient()
			if err != nil {
				fail(err)
			}
			defer client.Close()

			rows, err := client.Status(cmd.Context())
			if err != nil {
				fail(err)
			}

			var applied, pending, drifted int
			for _, row := range rows {
				if row.Applied {
					applied++
				} else {
					pending++
				}
				if row.Drifted {
					drifted++
				}
			}

			// JSON output mode for CI integration
			if jsonOutput {
				migrations := make([]map[string]any, len(rows))
				for i, row := range rows {
					m := map[string]any{
						"id":         row.ID,
						"applied":    row.Applied,
						"drifted":    row.Drifted,
						"checksum":   row.Checksum,
						"applied_at": nil,
					}
					if !row.AppliedAt.IsZero() {
						m["applied_at"] = row.AppliedAt.Format(time.RFC3339)
					}
					migrations[i] = m
				}
				if err := cli.WriteJSON(os.Stdout, map[string]any{
					"applied":    applied,
					"pending":    pending,
					"drifted":    drifted,
					"migrations": migrations,
				}); err != nil {
					return err
				}
				// Non-zero exit lets pipelines detect pending work or drift.
				if pending > 0 || drifted > 0 {
					os.Exit(1)
				}
				return nil
			}

			if interactive {
				return ui.ShowStatus(ui.StatusData{
					Dialect:  client.Dialect(),
					Database: veldt.RedactURL(client.Config().DatabaseURL),
					Rows:     statusRows(rows),
				})
			}

			if len(rows) == 0 {
				fmt.Println(cli.Dim("No migrations found."))
				return nil
			}

			fmt.Println(cli.Header("Migration Status"))
			fmt.Println()
			summary := fmt.Sprintf("  %s  %s",
				cli.Green(fmt.Sprintf("%d applied", applied)),
				cli.Yellow(fmt.Sprintf("%d pending", pending)))
			if drifted > 0 {
				summary += "  " + cli.Red(fmt.Sprintf("%d drifted", drifted))
			}
			fmt.Println(summary)
			fmt.Println()

			table := cli.NewTable("MIGRATION", "STATUS", "APPLIED AT")
			for _, row := range rows {
				appliedAt := ""
				if !row.AppliedAt.IsZero() {
					appliedAt = row.AppliedAt.Format(timeDisplay)
				}
				table.AddRow(row.ID, statusBadge(row), appliedAt)
			}
			fmt.Print(table.String())
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON for CI")
	cmd.Flags().BoolVar(&interactive, "interactive", false, "Browse the status table interactively")

	return cmd
}

func statusBadge(row veldt.MigrationStatus) string {
	switch {
	case row.Drifted:
		return cli.RenderDriftedBadge()
	case row.Applied:
		return cli.RenderAppliedBadge()
	default:
		return cli.RenderPendingBadge()
	}
}

func statusRows(rows []veldt.MigrationStatus) []ui.MigrationRow {
	out := make([]ui.MigrationRow, len(rows))
	for i, row := range rows {
		appliedAt := ""
		if !row.AppliedAt.IsZero() {
			appliedAt = row.AppliedAt.Format(timeDisplay)
		}
		out[i] = ui.MigrationRow{
			ID:        row.ID,
			Applied:   row.Applied,
			Drifted:   row.Drifted,
			AppliedAt: appliedAt,
			Checksum:  row.Checksum,
		}
	}
	return out
}
