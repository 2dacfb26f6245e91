package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/veldtdb/veldt/internal/cli"
	"github.com/veldtdb/veldt/internal/runner"
	"github.com/veldtdb/veldt/pkg/veldt"
)

// migrateCmd applies pending migrations.
func migrateCmd() *cobra.Command {
	var dryRun, skipLock bool
	var lockTimeout time.Duration

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending migrations",
		Long: `Apply pending migrations to the database in resolved order.

Runs are serialized with a database-level lock so concurrent migrators
cannot interleave. Dry run mode prints the plan's SQL without executing.`,
		Example: `  # Apply all pending migrations
  veldt migrate

  # Preview SQL without applying
  veldt migrate --dry

  # Skip the advisory lock (CI environments)
  veldt migrate --skip-lock

  # Set a custom lock timeout
  veldt migrate --lock-timeout 60s`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if dryRun {
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
			}

			var opts []veldt.Option
			if skipLock {
				opts = append(opts, veldt.WithSkipLock())
			}
			if lockTimeout > 0 {
				opts = append(opts, veldt.WithLockTimeout(lockTimeout))
			}

			spinner := cli.NewSpinner("Connecting and checking migration state")
			spinner.Start()

			client, err := newClient(opts...)
			if err != nil {
				spinner.Stop(false)
				fail(err)
			}
			defer client.Close()

			ctx := cmd.Context()

			rows, err := client.Status(ctx)
			spinner.Stop(err == nil)
			if err != nil {
				fail(err)
			}
			pending := 0
			for _, row := range rows {
				if !row.Applied {
					pending++
				}
			}
			if pending == 0 {
				fmt.Print(cli.FormatSuccess("Migrations are up to date."))
				return nil
			}

			fmt.Printf("Applying %s against %s\n\n",
				countOf(pending, "pending migration", "pending migrations"),
				cli.Code(client.Dialect()))

			start := time.Now()
			results, applyErr := client.Apply(ctx)
			printApplyTrace(os.Stdout, cli.NewSteps(pending), results)
			fmt.Println()
			if applyErr != nil {
				fail(applyErr)
			}

			elapsed := time.Since(start).Round(time.Millisecond)
			fmt.Print(cli.FormatSuccess(fmt.Sprintf("Applied %s in %s.",
				countOf(pending, "migration", "migrations"), elapsed)))
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry", false, "Print the plan's SQL without executing")
	cmd.Flags().BoolVar(&skipLock, "skip-lock", false, "Skip the migration lock")
	cmd.Flags().DurationVar(&lockTimeout, "lock-timeout", 0, "How long to wait for the migration lock")

	return cmd
}

// printApplyTrace renders the per-migration outcome of an apply run.
// Attempted migrations advance the step counter; already-applied ones
// are listed without consuming a step.
func printApplyTrace(w io.Writer, steps *cli.Steps, results []runner.MigrationResult) {
	steps.SetWriter(w)
	for _, res := range results {
		switch res.Status {
		case runner.StatusApplied:
			steps.Step(fmt.Sprintf("%s %s %s",
				cli.Green("✓"), res.Key, cli.Dim(res.Duration.Round(time.Millisecond).String())))
		case runner.StatusSkipped:
			fmt.Fprintf(w, "      %s %s %s\n",
				cli.Dim("-"), res.Key, cli.Dim("already applied"))
		case runner.StatusFailed:
			steps.Step(fmt.Sprintf("%s %s", cli.Red("✗"), res.Key))
		}
	}
}
