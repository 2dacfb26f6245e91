package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/veldtdb/veldt/internal/cli"
)

// commandInfo pairs a subcommand with its one-line description.
type commandInfo struct {
	name string
	desc string
}

// commandCategory groups related subcommands for the help screen.
type commandCategory struct {
	title    string
	commands []commandInfo
}

// customHelp displays a styled help message for the root command.
func customHelp(cmd *cobra.Command) {
	categories := []commandCategory{
		{
			title: "Planning",
			commands: []commandInfo{
				{"validate", "Validate the migration graph without touching the database"},
				{"plan", "Show the resolved apply order"},
				{"sql", "Print the DDL the plan would execute"},
			},
		},
		{
			title: "Execution",
			commands: []commandInfo{
				{"migrate", "Apply pending migrations"},
				{"status", "Show applied/pending migrations and checksum drift"},
			},
		},
		{
			title: "Development",
			commands: []commandInfo{
				{"watch", "Re-validate the migration graph when files change"},
			},
		},
	}

	flags := []struct{ flag, desc string }{
		{"-c, --config", "Path to config file (default: veldt.yaml)"},
		{"-d, --database-url", "Database connection URL"},
		{"-m, --migrations-dir", "Migrations directory (default: ./migrations)"},
		{"-h, --help", "Show help information"},
		{"-v, --version", "Show version information"},
	}

	fmt.Println(cli.Header("veldt - Schema Migration Engine"))
	fmt.Println(cli.Dim("Multi-app schema migrations from YAML documents and JS scripts"))
	fmt.Println()

	fmt.Println(cli.Header("USAGE"))
	fmt.Printf("  %s\n\n", cli.Code("veldt <command> [flags]"))

	fmt.Println(cli.Header("COMMANDS"))
	for _, cat := range categories {
		fmt.Printf("  %s\n", cli.Highlight(cat.title))
		for _, c := range cat.commands {
			fmt.Printf("    %s %s\n", cli.Code(fmt.Sprintf("%-12s", c.name)), c.desc)
		}
		fmt.Println()
	}

	fmt.Println(cli.Header("FLAGS"))
	for _, f := range flags {
		fmt.Printf("  %s %s\n", cli.Code(fmt.Sprintf("%-24s", f.flag)), f.desc)
	}
	fmt.Println()

	fmt.Printf("Use %s for details on a command.\n", cli.Code("veldt <command> --help"))
}
