package ui

import (
	"strings"
	"testing"

	"github.com/gdamore/tcell/v2"
)

func TestRowStatus(t *testing.T) {
	cases := []struct {
		name string
		row  MigrationRow
		want string
		col  tcell.Color
	}{
		{"applied", MigrationRow{Applied: true}, "applied", Theme.Success},
		{"pending", MigrationRow{}, "pending", Theme.Warning},
		{"drifted", MigrationRow{Applied: true, Drifted: true}, "drifted", Theme.Error},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, color := rowStatus(tc.row)
			if status != tc.want || color != tc.col {
				t.Errorf("rowStatus = %q/%v, want %q/%v", status, color, tc.want, tc.col)
			}
		})
	}
}

func TestCountRows(t *testing.T) {
	rows := []MigrationRow{
		{ID: "blog.0001_initial", Applied: true},
		{ID: "blog.0002_add_slug", Applied: true, Drifted: true},
		{ID: "blog.0003_add_bio"},
	}
	applied, pending, drifted := countRows(rows)
	if applied != 1 || pending != 1 || drifted != 1 {
		t.Errorf("countRows = %d/%d/%d, want 1/1/1", applied, pending, drifted)
	}
}

func TestFormatHeader(t *testing.T) {
	data := StatusData{Dialect: "postgres", Database: "app_db"}
	head := formatHeader(data, 3, 1, 0)
	for _, want := range []string{"postgres", "app_db", "3 applied", "1 pending"} {
		if !strings.Contains(head, want) {
			t.Errorf("header missing %q: %q", want, head)
		}
	}
	if strings.Contains(head, "drifted") {
		t.Errorf("header mentions drift with zero drifted rows: %q", head)
	}

	if head := formatHeader(data, 2, 0, 1); !strings.Contains(head, "1 drifted") {
		t.Errorf("header missing drift count: %q", head)
	}
}

func TestBuildStatusTable(t *testing.T) {
	rows := []MigrationRow{
		{ID: "blog.0001_initial", Applied: true, AppliedAt: "2026-08-01 10:00", Checksum: strings.Repeat("ab", 32)},
		{ID: "blog.0002_add_slug"},
	}
	table := buildStatusTable(rows)

	if got := table.GetRowCount(); got != 3 {
		t.Fatalf("row count = %d, want 3 (header + 2)", got)
	}
	if got := table.GetCell(0, 0).Text; got != "MIGRATION" {
		t.Errorf("header cell = %q", got)
	}
	if got := table.GetCell(1, 0).Text; got != "blog.0001_initial" {
		t.Errorf("first row ID = %q", got)
	}
	if got := table.GetCell(1, 3).Text; got != "abababababab" {
		t.Errorf("checksum cell = %q, want 12-char prefix", got)
	}
	if got := table.GetCell(2, 2).Text; got != "-" {
		t.Errorf("pending applied-at = %q, want -", got)
	}
}

func TestShortChecksum(t *testing.T) {
	if got := shortChecksum(""); got != "-" {
		t.Errorf("shortChecksum(\"\") = %q", got)
	}
	if got := shortChecksum("abc"); got != "abc" {
		t.Errorf("shortChecksum(abc) = %q", got)
	}
}
