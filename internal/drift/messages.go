package drift

import (
	"fmt"
	"strings"
)

// FormatResult formats a drift detection result for CLI output.
func FormatResult(result *Result) string {
	if result == nil {
		return "No drift detection result available."
	}
	if !result.HasDrift {
		return formatNoDrift(result)
	}
	return formatDrift(result)
}

func formatNoDrift(result *Result) string {
	var b strings.Builder

	b.WriteString("Checksum check passed\n\n")
	b.WriteString(fmt.Sprintf("  Applied:      %d\n", result.Comparison.Applied))
	b.WriteString(fmt.Sprintf("  Ledger root:  %s\n", truncateHash(result.ActualRoot)))
	if n := len(result.Comparison.Pending); n > 0 {
		b.WriteString(fmt.Sprintf("  Pending:      %d\n", n))
	}
	b.WriteString("\n  Applied migrations match their local files.\n")

	return b.String()
}

func formatDrift(result *Result) string {
	var b strings.Builder

	b.WriteString("Checksum drift detected\n\n")
	b.WriteString(fmt.Sprintf("  Expected root: %s\n", truncateHash(result.ExpectedRoot)))
	b.WriteString(fmt.Sprintf("  Ledger root:   %s\n", truncateHash(result.ActualRoot)))
	b.WriteString("\n")

	comp := result.Comparison

	if len(comp.Missing) > 0 {
		b.WriteString("  Applied migrations with no local file:\n")
		for _, key := range comp.Missing {
			b.WriteString(fmt.Sprintf("    - %s\n", key))
		}
		b.WriteString("\n")
	}

	if len(comp.Modified) > 0 {
		b.WriteString("  Applied migrations whose local file changed:\n")
		for _, key := range comp.Modified {
			b.WriteString(fmt.Sprintf("    ~ %s\n", key))
		}
		b.WriteString("\n")
	}

	if len(comp.Pending) > 0 {
		b.WriteString("  Not yet applied:\n")
		for _, key := range comp.Pending {
			b.WriteString(fmt.Sprintf("    + %s\n", key))
		}
		b.WriteString("\n")
	}

	b.WriteString("Fix:\n")
	b.WriteString("  Restore the original migration files, or add a new migration\n")
	b.WriteString("  instead of editing applied ones:\n")
	b.WriteString("    veldt plan\n")

	return b.String()
}

// FormatSummary formats a drift summary for brief output.
func FormatSummary(summary *Summary) string {
	if summary == nil {
		return "No summary available."
	}

	total := summary.Missing + summary.Modified
	if total == 0 {
		if summary.Pending > 0 {
			return fmt.Sprintf("No drift detected. %d applied, %d pending.", summary.Applied, summary.Pending)
		}
		return fmt.Sprintf("No drift detected. %d migrations in sync.", summary.Applied)
	}

	var parts []string
	if summary.Missing > 0 {
		parts = append(parts, fmt.Sprintf("%d missing", summary.Missing))
	}
	if summary.Modified > 0 {
		parts = append(parts, fmt.Sprintf("%d modified", summary.Modified))
	}

	return fmt.Sprintf("Drift detected: %s", strings.Join(parts, ", "))
}

// FormatQuickStatus formats a one-line status for drift detection.
func FormatQuickStatus(hasDrift bool, expectedRoot, actualRoot string) string {
	if !hasDrift {
		return fmt.Sprintf("OK  %s", truncateHash(actualRoot))
	}
	return fmt.Sprintf("DRIFT  expected: %s  ledger: %s",
		truncateHash(expectedRoot), truncateHash(actualRoot))
}

// truncateHash returns the first 12 characters of a hash for display.
func truncateHash(hash string) string {
	if len(hash) <= 12 {
		return hash
	}
	return hash[:12]
}
