// Package runner executes resolved migration plans against a database
// and keeps the applied-migrations ledger in sync.
package runner

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"log/slog"
	"strings"
	"time"

	"github.com/veldtdb/veldt/internal/dialect"
	"github.com/veldtdb/veldt/internal/merr"
	"github.com/veldtdb/veldt/internal/migrate"
)

// lockReleaseTimeout bounds the lock release after a cancelled run.
const lockReleaseTimeout = 5 * time.Second

// Status is a migration's position in the apply lifecycle.
type Status int

const (
	StatusPending Status = iota
	StatusApplying
	StatusApplied
	StatusSkipped
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusApplying:
		return "applying"
	case StatusApplied:
		return "applied"
	case StatusSkipped:
		return "skipped"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// MigrationResult traces one migration's outcome. OpIndex is the
// zero-based index of the failing operation, or -1 when the failure
// was not tied to a single operation (or there was no failure).
type MigrationResult struct {
	Key        migrate.Key
	Status     Status
	OpIndex    int
	Err        error
	Duration   time.Duration
	Statements []string
}

// BeforeApplyHook inspects a migration before any of its DDL runs.
// Returning an error vetoes the migration and aborts the run.
type BeforeApplyHook func(ctx context.Context, m *migrate.Migration) error

// Runner applies migration plans sequentially, single-writer.
type Runner struct {
	db      *sql.DB
	dialect dialect.Dialect
	ledger  *Ledger
	state   *migrate.ProjectState
	hooks   []BeforeApplyHook
	logger  *slog.Logger

	// lockConn pins the session holding the cross-process lock.
	// Advisory locks are session-scoped, so acquire and release must
	// run on this one connection.
	lockConn *sql.Conn
}

// NewRunner creates a runner. Returns nil if db or d is nil.
func NewRunner(db *sql.DB, d dialect.Dialect) *Runner {
	if db == nil || d == nil {
		return nil
	}
	return &Runner{
		db:      db,
		dialect: d,
		ledger:  NewLedger(db, d),
		state:   migrate.NewProjectState(),
		logger:  slog.Default(),
	}
}

// SetLogger replaces the runner's logger.
func (r *Runner) SetLogger(l *slog.Logger) {
	if l != nil {
		r.logger = l
		r.ledger.SetLogger(l)
	}
}

// AddBeforeApply appends a pre-apply hook. Hooks run in registration
// order; the first error aborts the migration before any DDL.
func (r *Runner) AddBeforeApply(h BeforeApplyHook) {
	r.hooks = append(r.hooks, h)
}

// Ledger exposes the applied-migrations ledger for direct queries.
func (r *Runner) Ledger() *Ledger { return r.ledger }

// State returns the project state accumulated by Apply. It reflects
// every projected migration, including ones skipped as already applied.
func (r *Runner) State() *migrate.ProjectState { return r.state }

// Apply executes the plan in order. Already-applied migrations are
// skipped but still projected onto the state, so the returned state
// always reflects the full plan. The trace covers every migration the
// run reached; the first failure stops the run.
func (r *Runner) Apply(ctx context.Context, plan []*migrate.Migration) ([]MigrationResult, error) {
	if len(plan) == 0 {
		return nil, nil
	}

	if err := r.ledger.EnsureTable(ctx); err != nil {
		return nil, err
	}

	var results []MigrationResult
	for _, m := range plan {
		res := r.applyOne(ctx, m)
		results = append(results, res)
		if res.Err != nil {
			return results, res.Err
		}
	}
	return results, nil
}

// ApplyWithLock wraps Apply in a cross-process lock so concurrent
// deployments serialize instead of interleaving DDL.
func (r *Runner) ApplyWithLock(ctx context.Context, plan []*migrate.Migration, lockTimeout time.Duration) ([]MigrationResult, error) {
	if len(plan) == 0 {
		return nil, nil
	}

	if err := r.AcquireLock(ctx, lockTimeout); err != nil {
		return nil, err
	}
	defer func() {
		// The run's context may already be cancelled.
		releaseCtx, cancel := context.WithTimeout(context.Background(), lockReleaseTimeout)
		defer cancel()
		if err := r.ReleaseLock(releaseCtx); err != nil {
			r.logger.Warn("failed to release migration lock", "error", err)
		}
	}()

	return r.Apply(ctx, plan)
}

func (r *Runner) applyOne(ctx context.Context, m *migrate.Migration) MigrationResult {
	res := MigrationResult{Key: m.Key(), Status: StatusApplying, OpIndex: -1}
	start := time.Now()

	applied, err := r.ledger.IsApplied(ctx, m.App, m.Name)
	if err != nil {
		res.Status = StatusFailed
		res.Err = err
		return res
	}
	if applied {
		res.Status = StatusSkipped
		res.Duration = time.Since(start)
		if err := r.project(m); err != nil {
			res.Status = StatusFailed
			res.Err = err
		}
		return res
	}

	for _, hook := range r.hooks {
		if err := hook(ctx, m); err != nil {
			res.Status = StatusFailed
			res.Err = merr.Wrap(merr.ErrHookRejected, err, "pre-apply hook rejected migration").
				WithMigration(m.App, m.Name)
			return res
		}
	}

	statements, opIndex, err := r.renderStatements(m)
	if err != nil {
		res.Status = StatusFailed
		res.OpIndex = opIndex
		res.Err = err
		return res
	}
	res.Statements = flattenStatements(statements)

	if !m.StateOnly {
		if err := r.execute(ctx, m, statements, &res); err != nil {
			res.Status = StatusFailed
			res.Err = err
			return res
		}
	} else {
		// State-only migrations still get a ledger row so they are
		// not re-offered on the next run.
		rec := AppliedRecord{App: m.App, Name: m.Name, ExecTimeMs: 0}
		if err := r.ledger.Record(ctx, r.db, rec); err != nil {
			res.Status = StatusFailed
			res.Err = err
			return res
		}
	}

	if err := r.project(m); err != nil {
		res.Status = StatusFailed
		res.Err = err
		return res
	}

	res.Status = StatusApplied
	res.Duration = time.Since(start)
	r.logger.Info("applied migration",
		"migration", m.ID(),
		"statements", len(res.Statements),
		"duration", res.Duration)
	return res
}

// project replays the migration's operations onto the runner state.
// DatabaseOnly migrations do not touch the state.
func (r *Runner) project(m *migrate.Migration) error {
	if m.DatabaseOnly {
		return nil
	}
	for i, op := range m.Operations {
		if err := r.state.Apply(m.App, op); err != nil {
			return merr.Wrap(merr.ErrStateProjection, err, "state projection failed").
				WithMigration(m.App, m.Name).
				WithOperationIndex(i)
		}
	}
	return nil
}

// renderStatements produces the per-operation statement lists for a
// migration. Index i of the result holds operation i's statements;
// metadata-only operations contribute an empty list.
func (r *Runner) renderStatements(m *migrate.Migration) ([][]string, int, error) {
	statements := make([][]string, len(m.Operations))
	for i, op := range m.Operations {
		rendered, err := dialect.Render(r.dialect, op)
		if err != nil {
			return nil, i, merr.Wrap(merr.ErrInvalidOperation, err, "cannot render operation").
				WithMigration(m.App, m.Name).
				WithOperationIndex(i)
		}
		statements[i] = executableStatements(rendered)
	}
	return statements, -1, nil
}

// MigrationChecksum reports the checksum a successful apply would record
// in the ledger for this migration. State-only migrations have no
// statements and record an empty checksum.
func (r *Runner) MigrationChecksum(m *migrate.Migration) (string, error) {
	if m.StateOnly {
		return "", nil
	}
	statements, _, err := r.renderStatements(m)
	if err != nil {
		return "", err
	}
	return ComputeChecksum(flattenStatements(statements)), nil
}

// execute runs a migration's DDL. Atomic migrations on dialects with
// transactional DDL run in one transaction, with the ledger record
// joining it so rollback discards the record too. Everything else runs
// statement-at-a-time, recording the failing operation index so a
// partial run can be resumed.
func (r *Runner) execute(ctx context.Context, m *migrate.Migration, statements [][]string, res *MigrationResult) error {
	start := time.Now()
	rec := AppliedRecord{App: m.App, Name: m.Name, Checksum: ComputeChecksum(res.Statements)}

	if m.Atomic && r.dialect.SupportsTransactionalDDL() {
		tx, err := r.db.BeginTx(ctx, nil)
		if err != nil {
			return merr.Wrap(merr.ErrSQLTransaction, err, "failed to begin transaction").
				WithMigration(m.App, m.Name)
		}
		committed := false
		defer func() {
			if !committed {
				tx.Rollback()
			}
		}()

		for i, ops := range statements {
			for _, stmt := range ops {
				if _, err := tx.ExecContext(ctx, stmt); err != nil {
					return merr.Wrap(merr.ErrSQLExecution, err, "failed to execute statement").
						WithMigration(m.App, m.Name).
						WithOperationIndex(i).
						WithSQL(stmt)
				}
			}
		}

		rec.ExecTimeMs = int(time.Since(start).Milliseconds())
		if err := r.ledger.Record(ctx, tx, rec); err != nil {
			return err
		}
		if err := tx.Commit(); err != nil {
			return merr.Wrap(merr.ErrSQLTransaction, err, "failed to commit transaction").
				WithMigration(m.App, m.Name)
		}
		committed = true
		return nil
	}

	for i, ops := range statements {
		for _, stmt := range ops {
			if _, err := r.db.ExecContext(ctx, stmt); err != nil {
				res.OpIndex = i
				return merr.Wrap(merr.ErrSQLExecution, err, "failed to execute statement").
					WithMigration(m.App, m.Name).
					WithOperationIndex(i).
					WithSQL(stmt)
			}
		}
	}

	rec.ExecTimeMs = int(time.Since(start).Milliseconds())
	return r.ledger.Record(ctx, r.db, rec)
}

// CollectSQL renders the plan's DDL without executing it. Used by the
// sql command for review before applying.
func (r *Runner) CollectSQL(plan []*migrate.Migration) ([]string, error) {
	var all []string
	for _, m := range plan {
		if m.StateOnly {
			continue
		}
		statements, _, err := r.renderStatements(m)
		if err != nil {
			return nil, err
		}
		all = append(all, flattenStatements(statements)...)
	}
	return all, nil
}

// CollectPlanSQL renders a plan's DDL with the given dialect, without a
// database connection. Used for offline review of generated SQL.
func CollectPlanSQL(d dialect.Dialect, plan []*migrate.Migration) ([]string, error) {
	if d == nil {
		return nil, merr.New(merr.ErrUnknownDialect, "no dialect for SQL rendering")
	}
	r := &Runner{dialect: d}
	return r.CollectSQL(plan)
}

func flattenStatements(statements [][]string) []string {
	var flat []string
	for _, ops := range statements {
		flat = append(flat, ops...)
	}
	return flat
}

// executableStatements splits rendered DDL into individual statements
// and drops empty or comment-only ones, such as the marker a dialect
// emits for an unsupported alteration.
func executableStatements(rendered string) []string {
	var out []string
	for _, stmt := range splitStatements(rendered) {
		if isCommentOnly(stmt) {
			continue
		}
		out = append(out, stmt)
	}
	return out
}

func isCommentOnly(stmt string) bool {
	for _, line := range strings.Split(stmt, "\n") {
		line = strings.TrimSpace(line)
		if line != "" && !strings.HasPrefix(line, "--") {
			return false
		}
	}
	return true
}

// splitStatements splits a multi-statement SQL string on semicolons,
// skipping semicolons inside single-quoted and dollar-quoted strings.
func splitStatements(sql string) []string {
	if sql == "" {
		return nil
	}

	var statements []string
	var current strings.Builder
	inSingleQuote := false
	inDollarQuote := false
	dollarTag := ""

	for i := 0; i < len(sql); i++ {
		ch := sql[i]

		if inDollarQuote {
			current.WriteByte(ch)
			if ch == '$' && i+len(dollarTag)-1 < len(sql) && sql[i:i+len(dollarTag)] == dollarTag {
				current.WriteString(dollarTag[1:])
				i += len(dollarTag) - 1
				inDollarQuote = false
				dollarTag = ""
			}
			continue
		}

		if inSingleQuote {
			current.WriteByte(ch)
			if ch == '\'' {
				if i+1 < len(sql) && sql[i+1] == '\'' {
					current.WriteByte(sql[i+1])
					i++
				} else {
					inSingleQuote = false
				}
			}
			continue
		}

		switch ch {
		case '\'':
			inSingleQuote = true
			current.WriteByte(ch)
		case '$':
			end := strings.Index(sql[i+1:], "$")
			if end >= 0 {
				tag := sql[i : i+end+2]
				validTag := true
				for _, r := range tag[1 : len(tag)-1] {
					if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') && (r < '0' || r > '9') && r != '_' {
						validTag = false
						break
					}
				}
				if validTag {
					inDollarQuote = true
					dollarTag = tag
					current.WriteString(tag)
					i += len(tag) - 1
				} else {
					current.WriteByte(ch)
				}
			} else {
				current.WriteByte(ch)
			}
		case ';':
			stmt := strings.TrimSpace(current.String())
			if stmt != "" {
				statements = append(statements, stmt)
			}
			current.Reset()
		default:
			current.WriteByte(ch)
		}
	}

	stmt := strings.TrimSpace(current.String())
	if stmt != "" {
		statements = append(statements, stmt)
	}
	return statements
}

// ComputeChecksum hashes the concatenated statements with SHA-256.
func ComputeChecksum(statements []string) string {
	if len(statements) == 0 {
		return ""
	}
	h := sha256.New()
	for _, s := range statements {
		h.Write([]byte(s))
		h.Write([]byte("\n"))
	}
	return hex.EncodeToString(h.Sum(nil))
}
