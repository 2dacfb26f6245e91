package ui

import (
	"fmt"
	"os"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-isatty"
	"github.com/rivo/tview"
)

// MigrationRow is one migration in the status view.
type MigrationRow struct {
	ID        string // "app.name"
	Applied   bool
	Drifted   bool // applied but local file changed or missing
	AppliedAt string
	Checksum  string
}

// StatusData holds everything the status view renders.
type StatusData struct {
	Dialect  string
	Database string
	Rows     []MigrationRow
}

const statusHints = " j/k move   g/G top/bottom   q quit "

// ShowStatus displays the interactive migration status table. Outside a
// terminal it falls back to a plain listing on stdout.
func ShowStatus(data StatusData) error {
	if !isTerminal() {
		showStatusPlain(data)
		return nil
	}

	app := tview.NewApplication()

	applied, pending, drifted := countRows(data.Rows)

	header := tview.NewTextView().
		SetText(formatHeader(data, applied, pending, drifted)).
		SetTextColor(Theme.Text).
		SetTextAlign(tview.AlignLeft)
	header.SetBackgroundColor(Theme.Primary)

	table := buildStatusTable(data.Rows)

	statusBar := tview.NewTextView().
		SetText(statusHints).
		SetTextColor(Theme.TextDim).
		SetTextAlign(tview.AlignCenter)
	statusBar.SetBackgroundColor(Theme.Background)

	layout := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(header, 1, 0, false).
		AddItem(table, 0, 1, true).
		AddItem(statusBar, 1, 0, false)
	layout.SetBackgroundColor(Theme.Background)

	app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Rune() {
		case 'q':
			app.Stop()
			return nil
		case 'j':
			return tcell.NewEventKey(tcell.KeyDown, 0, tcell.ModNone)
		case 'k':
			return tcell.NewEventKey(tcell.KeyUp, 0, tcell.ModNone)
		case 'g':
			return tcell.NewEventKey(tcell.KeyHome, 0, tcell.ModNone)
		case 'G':
			return tcell.NewEventKey(tcell.KeyEnd, 0, tcell.ModNone)
		}
		if event.Key() == tcell.KeyEscape {
			app.Stop()
			return nil
		}
		return event
	})

	return app.SetRoot(layout, true).EnableMouse(true).Run()
}

// buildStatusTable builds the migration table with a fixed header row.
func buildStatusTable(rows []MigrationRow) *tview.Table {
	table := tview.NewTable().
		SetFixed(1, 0).
		SetSelectable(true, false)
	table.SetBackgroundColor(Theme.Background)
	table.SetSelectedStyle(tcell.StyleDefault.
		Background(Theme.Selection).
		Foreground(Theme.Text))

	headers := []string{"MIGRATION", "STATUS", "APPLIED AT", "CHECKSUM"}
	for col, h := range headers {
		cell := tview.NewTableCell(h).
			SetTextColor(Theme.Header).
			SetSelectable(false).
			SetAttributes(tcell.AttrBold).
			SetExpansion(1)
		table.SetCell(0, col, cell)
	}

	for i, row := range rows {
		status, color := rowStatus(row)

		table.SetCell(i+1, 0, tview.NewTableCell(row.ID).
			SetTextColor(Theme.Text).SetExpansion(1))
		table.SetCell(i+1, 1, tview.NewTableCell(status).
			SetTextColor(color).SetExpansion(1))
		table.SetCell(i+1, 2, tview.NewTableCell(valueOrDash(row.AppliedAt)).
			SetTextColor(Theme.TextDim).SetExpansion(1))
		table.SetCell(i+1, 3, tview.NewTableCell(shortChecksum(row.Checksum)).
			SetTextColor(Theme.TextDim).SetExpansion(1))
	}

	if len(rows) > 0 {
		table.Select(1, 0)
	}
	return table
}

func rowStatus(row MigrationRow) (string, tcell.Color) {
	switch {
	case row.Drifted:
		return "drifted", Theme.Error
	case row.Applied:
		return "applied", Theme.Success
	default:
		return "pending", Theme.Warning
	}
}

func formatHeader(data StatusData, applied, pending, drifted int) string {
	head := fmt.Sprintf(" veldt status  %s", data.Dialect)
	if data.Database != "" {
		head += "  " + data.Database
	}
	head += fmt.Sprintf("  │  %d applied, %d pending", applied, pending)
	if drifted > 0 {
		head += fmt.Sprintf(", %d drifted", drifted)
	}
	return head
}

func countRows(rows []MigrationRow) (applied, pending, drifted int) {
	for _, row := range rows {
		switch {
		case row.Drifted:
			drifted++
		case row.Applied:
			applied++
		default:
			pending++
		}
	}
	return applied, pending, drifted
}

// showStatusPlain prints the status as text when stdout is not a terminal.
func showStatusPlain(data StatusData) {
	fmt.Printf("veldt status (%s)\n\n", data.Dialect)
	for _, row := range data.Rows {
		status, _ := rowStatus(row)
		fmt.Printf("  %-10s %s\n", status, row.ID)
	}
}

func valueOrDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func shortChecksum(sum string) string {
	if len(sum) > 12 {
		return sum[:12]
	}
	if sum == "" {
		return "-"
	}
	return sum
}

func isTerminal() bool {
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}
