//go:build integration

// Package testutil provides shared helpers for database-backed tests.
// Run them with:
//
//	go test ./... -tags=integration
package testutil

import (
	"database/sql"
	"os"
	"testing"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// OpenSQLite creates an in-memory SQLite database. The connection is
// closed when the test completes.
func OpenSQLite(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// OpenPostgres connects to the Postgres test database named by the
// POSTGRES_URL environment variable. Tests are skipped when it is not
// set, so the suite stays green without a running server.
func OpenPostgres(t *testing.T) *sql.DB {
	t.Helper()

	url := os.Getenv("POSTGRES_URL")
	if url == "" {
		t.Skip("POSTGRES_URL not set; skipping Postgres test")
	}

	db, err := sql.Open("postgres", url)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.Ping(); err != nil {
		t.Fatalf("failed to reach Postgres at POSTGRES_URL: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TableExists reports whether a table is present in the SQLite catalog.
func TableExists(t *testing.T, db *sql.DB, table string) bool {
	t.Helper()

	var name string
	err := db.QueryRow(
		"SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?",
		table,
	).Scan(&name)
	if err == sql.ErrNoRows {
		return false
	}
	if err != nil {
		t.Fatalf("failed to check table %q: %v", table, err)
	}
	return true
}
