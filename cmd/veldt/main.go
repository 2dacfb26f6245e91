// Package main provides the CLI for the veldt schema-migration engine.
// Veldt manages schema evolution for multi-app projects: migrations are
// YAML documents or JavaScript scripts, resolved into a single apply
// order and executed against Postgres, MySQL, or SQLite.
//
// Usage:
//
//	veldt validate               # Validate the migration graph
//	veldt plan                   # Show the resolved apply order
//	veldt sql                    # Print the DDL the plan would run
//	veldt migrate                # Apply pending migrations
//	veldt status                 # Show applied/pending migrations
//	veldt watch                  # Re-validate on file changes
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	// Database drivers
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// version is set via ldflags during build: -ldflags="-X main.version=v1.0.0"
var version = "dev"

// Global flags
var (
	databaseURL   string
	configFile    string
	migrationsDir string
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "veldt",
		Short:   "Multi-app schema-migration engine",
		Long:    `Veldt is a schema-migration engine that resolves per-app migration graphs into a single apply order and executes them against Postgres, MySQL, or SQLite.`,
		Version: version,
	}

	rootCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		customHelp(cmd)
	})

	// Global flags available to all commands
	rootCmd.PersistentFlags().StringVarP(&databaseURL, "database-url", "d", "", "Database connection URL")
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "veldt.yaml", "Path to config file")
	rootCmd.PersistentFlags().StringVarP(&migrationsDir, "migrations-dir", "m", "", "Migrations directory")

	rootCmd.AddCommand(
		validateCmd(),
		planCmd(),
		sqlCmd(),
		migrateCmd(),
		statusCmd(),
		watchCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
