package runner

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/veldtdb/veldt/internal/dialect"
	"github.com/veldtdb/veldt/internal/merr"
)

// LedgerTableName is the name of the applied-migrations table.
const LedgerTableName = "veldt_migrations"

// AppliedRecord is one row of the ledger: a migration that has been
// applied to the target database.
type AppliedRecord struct {
	App        string
	Name       string
	AppliedAt  time.Time
	Checksum   string
	ExecTimeMs int
}

// Key returns the (app, name) identity of the record.
func (r AppliedRecord) Key() string { return r.App + "." + r.Name }

// execer is satisfied by both *sql.DB and *sql.Tx so ledger writes can
// join an atomic migration's transaction.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Ledger reads and writes the veldt_migrations table.
type Ledger struct {
	db      *sql.DB
	dialect dialect.Dialect
	logger  *slog.Logger
}

// NewLedger creates a ledger bound to a database and dialect.
func NewLedger(db *sql.DB, d dialect.Dialect) *Ledger {
	return &Ledger{db: db, dialect: d, logger: slog.Default()}
}

// SetLogger replaces the ledger's logger.
func (l *Ledger) SetLogger(log *slog.Logger) {
	if log != nil {
		l.logger = log
	}
}

// EnsureTable creates the ledger table if it does not exist.
func (l *Ledger) EnsureTable(ctx context.Context) error {
	stmt := l.createTableSQL()
	if _, err := l.db.ExecContext(ctx, stmt); err != nil {
		return merr.Wrap(merr.ErrLedger, err, "failed to create migrations table").
			WithSQL(stmt)
	}
	return nil
}

func (l *Ledger) createTableSQL() string {
	table := l.dialect.QuoteIdent(LedgerTableName)

	switch l.dialect.Name() {
	case "postgres":
		return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
    app          VARCHAR(100) NOT NULL,
    name         VARCHAR(255) NOT NULL,
    applied_at   TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
    checksum     VARCHAR(64),
    exec_time_ms INTEGER,
    PRIMARY KEY (app, name)
)`, table)

	case "mysql":
		return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
    app          VARCHAR(100) NOT NULL,
    name         VARCHAR(255) NOT NULL,
    applied_at   TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    checksum     VARCHAR(64),
    exec_time_ms INTEGER,
    PRIMARY KEY (app, name)
)`, table)

	default:
		return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
    app          TEXT NOT NULL,
    name         TEXT NOT NULL,
    applied_at   TEXT NOT NULL DEFAULT (datetime('now')),
    checksum     TEXT,
    exec_time_ms INTEGER,
    PRIMARY KEY (app, name)
)`, table)
	}
}

// placeholders renders n dialect placeholders, comma separated.
func (l *Ledger) placeholders(n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = l.dialect.Placeholder(i + 1)
	}
	return strings.Join(parts, ", ")
}

// Applied returns all ledger rows ordered by (app, name).
func (l *Ledger) Applied(ctx context.Context) ([]AppliedRecord, error) {
	query := fmt.Sprintf(
		"SELECT app, name, applied_at, checksum, exec_time_ms FROM %s ORDER BY app, name",
		l.dialect.QuoteIdent(LedgerTableName),
	)

	rows, err := l.db.QueryContext(ctx, query)
	if err != nil {
		return nil, merr.Wrap(merr.ErrLedger, err, "failed to query applied migrations").
			WithSQL(query)
	}
	defer rows.Close()

	var records []AppliedRecord
	for rows.Next() {
		var r AppliedRecord
		var checksum sql.NullString
		var execTime sql.NullInt64
		var appliedAt any

		if err := rows.Scan(&r.App, &r.Name, &appliedAt, &checksum, &execTime); err != nil {
			return nil, merr.Wrap(merr.ErrLedger, err, "failed to scan ledger row")
		}

		at, ok := parseAppliedAt(appliedAt)
		if !ok {
			l.logger.Warn("unrecognized applied_at value in ledger row",
				"app", r.App, "name", r.Name, "value", fmt.Sprintf("%v", appliedAt))
		}
		r.AppliedAt = at
		if checksum.Valid {
			r.Checksum = checksum.String
		}
		if execTime.Valid {
			r.ExecTimeMs = int(execTime.Int64)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, merr.Wrap(merr.ErrLedger, err, "error iterating ledger rows")
	}
	return records, nil
}

// parseAppliedAt converts a scanned applied_at value to time.Time.
// SQLite hands timestamps back as strings. The second return is false
// when no known representation matched, so the caller can report the
// row instead of silently labeling it with the zero time.
func parseAppliedAt(val any) (time.Time, bool) {
	switch t := val.(type) {
	case time.Time:
		return t, true
	case string:
		formats := []string{
			time.RFC3339,
			"2006-01-02 15:04:05",
			"2006-01-02T15:04:05Z",
			"2006-01-02T15:04:05",
		}
		for _, format := range formats {
			if parsed, err := time.Parse(format, t); err == nil {
				return parsed, true
			}
		}
		return time.Time{}, false
	case []byte:
		return parseAppliedAt(string(t))
	default:
		return time.Time{}, false
	}
}

// IsApplied reports whether the migration is recorded in the ledger.
func (l *Ledger) IsApplied(ctx context.Context, app, name string) (bool, error) {
	query := fmt.Sprintf(
		"SELECT 1 FROM %s WHERE app = %s AND name = %s LIMIT 1",
		l.dialect.QuoteIdent(LedgerTableName),
		l.dialect.Placeholder(1), l.dialect.Placeholder(2),
	)

	var exists int
	err := l.db.QueryRowContext(ctx, query, app, name).Scan(&exists)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, merr.Wrap(merr.ErrLedger, err, "failed to check ledger").
			WithMigration(app, name)
	}
	return true, nil
}

// Record inserts one applied-migration row. When ex is a transaction
// the record is discarded with the migration on rollback.
func (l *Ledger) Record(ctx context.Context, ex execer, rec AppliedRecord) error {
	query := fmt.Sprintf(
		"INSERT INTO %s (app, name, checksum, exec_time_ms) VALUES (%s)",
		l.dialect.QuoteIdent(LedgerTableName),
		l.placeholders(4),
	)

	if _, err := ex.ExecContext(ctx, query, rec.App, rec.Name, rec.Checksum, rec.ExecTimeMs); err != nil {
		return merr.Wrap(merr.ErrLedger, err, "failed to record applied migration").
			WithMigration(rec.App, rec.Name)
	}
	return nil
}

// Remove deletes a ledger row. Missing rows are an error so that a
// stale unapply is noticed.
func (l *Ledger) Remove(ctx context.Context, app, name string) error {
	query := fmt.Sprintf(
		"DELETE FROM %s WHERE app = %s AND name = %s",
		l.dialect.QuoteIdent(LedgerTableName),
		l.dialect.Placeholder(1), l.dialect.Placeholder(2),
	)

	result, err := l.db.ExecContext(ctx, query, app, name)
	if err != nil {
		return merr.Wrap(merr.ErrLedger, err, "failed to remove ledger record").
			WithMigration(app, name)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return merr.Wrap(merr.ErrLedger, err, "failed to get rows affected")
	}
	if affected == 0 {
		return merr.New(merr.ErrLedger, "migration not found in ledger").
			WithMigration(app, name)
	}
	return nil
}

// Checksum returns the recorded checksum for an applied migration.
func (l *Ledger) Checksum(ctx context.Context, app, name string) (string, error) {
	query := fmt.Sprintf(
		"SELECT checksum FROM %s WHERE app = %s AND name = %s",
		l.dialect.QuoteIdent(LedgerTableName),
		l.dialect.Placeholder(1), l.dialect.Placeholder(2),
	)

	var checksum sql.NullString
	err := l.db.QueryRowContext(ctx, query, app, name).Scan(&checksum)
	if err == sql.ErrNoRows {
		return "", merr.New(merr.ErrLedger, "migration not found in ledger").
			WithMigration(app, name)
	}
	if err != nil {
		return "", merr.Wrap(merr.ErrLedger, err, "failed to get ledger checksum").
			WithMigration(app, name)
	}
	return checksum.String, nil
}

// VerifyChecksum compares the recorded checksum against the local one.
// Empty checksums on either side are skipped; migrations recorded
// before checksums existed stay verifiable.
func (l *Ledger) VerifyChecksum(ctx context.Context, app, name, expected string) error {
	actual, err := l.Checksum(ctx, app, name)
	if err != nil {
		return err
	}
	if actual != "" && expected != "" && actual != expected {
		return merr.New(merr.ErrChecksumDrift, "migration was edited after being applied").
			WithMigration(app, name).
			With("recorded", actual).
			With("local", expected)
	}
	return nil
}
