//go:build integration

package runner

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/veldtdb/veldt/internal/dialect"
	"github.com/veldtdb/veldt/internal/merr"
	"github.com/veldtdb/veldt/internal/migrate"
	"github.com/veldtdb/veldt/internal/schema"
	"github.com/veldtdb/veldt/internal/testutil"
)

// ----------------------------------------------------------------------------
// Test Helpers
// ----------------------------------------------------------------------------

func setupRunner(t *testing.T) (*Runner, *sql.DB) {
	t.Helper()

	db := testutil.OpenSQLite(t)
	r := NewRunner(db, dialect.Get("sqlite"))
	if r == nil {
		t.Fatal("NewRunner() returned nil")
	}
	return r, db
}

func tableExists(t *testing.T, db *sql.DB, table string) bool {
	return testutil.TableExists(t, db, table)
}

func usersMigration() *migrate.Migration {
	return migrate.NewMigration("auth", "0001_initial").
		AddOperation(&schema.CreateTable{
			TableOp: schema.TableOp{Name: "users"},
			Columns: []schema.ColumnDefinition{
				{Name: "id", Type: schema.Integer(), PrimaryKey: true, AutoIncrement: true},
				{Name: "email", Type: schema.VarChar(255), NotNull: true},
			},
		})
}

// ----------------------------------------------------------------------------
// Apply Tests
// ----------------------------------------------------------------------------

func TestApplySingleMigration(t *testing.T) {
	r, db := setupRunner(t)
	ctx := context.Background()

	results, err := r.Apply(ctx, []*migrate.Migration{usersMigration()})
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	if len(results) != 1 || results[0].Status != StatusApplied {
		t.Fatalf("results = %+v, want one applied", results)
	}
	if !tableExists(t, db, "users") {
		t.Error("users table was not created")
	}

	applied, err := r.Ledger().IsApplied(ctx, "auth", "0001_initial")
	if err != nil {
		t.Fatalf("IsApplied() error = %v", err)
	}
	if !applied {
		t.Error("migration not recorded in ledger")
	}

	if m := r.State().GetModel("auth", "users"); m == nil || !m.HasField("email") {
		t.Error("migration was not projected onto the state")
	}
}

func TestApplyIsIdempotent(t *testing.T) {
	r, _ := setupRunner(t)
	ctx := context.Background()

	if _, err := r.Apply(ctx, []*migrate.Migration{usersMigration()}); err != nil {
		t.Fatalf("first Apply() error = %v", err)
	}

	// Second run skips the applied migration but still projects it, so
	// the state reflects the whole plan.
	r2 := NewRunner(r.db, r.dialect)
	results, err := r2.Apply(ctx, []*migrate.Migration{usersMigration()})
	if err != nil {
		t.Fatalf("second Apply() error = %v", err)
	}
	if results[0].Status != StatusSkipped {
		t.Errorf("status = %v, want skipped", results[0].Status)
	}
	if r2.State().GetModel("auth", "users") == nil {
		t.Error("skipped migration was not projected")
	}
}

func TestApplyAtomicRollsBackOnFailure(t *testing.T) {
	r, db := setupRunner(t)
	ctx := context.Background()

	bad := migrate.NewMigration("auth", "0001_initial").
		AddOperation(&schema.CreateTable{
			TableOp: schema.TableOp{Name: "users"},
			Columns: []schema.ColumnDefinition{{Name: "id", Type: schema.Integer(), PrimaryKey: true}},
		}).
		AddOperation(&schema.RunSQL{SQL: "INSERT INTO no_such_table VALUES (1)"})

	results, err := r.Apply(ctx, []*migrate.Migration{bad})
	if !merr.Is(err, merr.ErrSQLExecution) {
		t.Fatalf("expected ErrSQLExecution, got %v", err)
	}
	if results[0].Status != StatusFailed {
		t.Errorf("status = %v, want failed", results[0].Status)
	}

	// SQLite DDL is transactional: the whole migration rolled back.
	if tableExists(t, db, "users") {
		t.Error("failed atomic migration left the users table behind")
	}
	applied, _ := r.Ledger().IsApplied(ctx, "auth", "0001_initial")
	if applied {
		t.Error("failed migration was recorded in ledger")
	}
}

func TestApplyNonAtomicReportsOperationIndex(t *testing.T) {
	r, db := setupRunner(t)
	ctx := context.Background()

	bad := migrate.NewMigration("auth", "0001_initial").
		SetAtomic(false).
		AddOperation(&schema.CreateTable{
			TableOp: schema.TableOp{Name: "users"},
			Columns: []schema.ColumnDefinition{{Name: "id", Type: schema.Integer(), PrimaryKey: true}},
		}).
		AddOperation(&schema.RunSQL{SQL: "INSERT INTO no_such_table VALUES (1)"})

	results, err := r.Apply(ctx, []*migrate.Migration{bad})
	if err == nil {
		t.Fatal("expected failure")
	}
	if results[0].OpIndex != 1 {
		t.Errorf("OpIndex = %d, want 1", results[0].OpIndex)
	}

	// Non-atomic: the first operation's effect persists for resume.
	if !tableExists(t, db, "users") {
		t.Error("non-atomic run must keep the completed operations")
	}
}

func TestApplyStateOnly(t *testing.T) {
	r, db := setupRunner(t)
	ctx := context.Background()

	m := usersMigration().SetStateOnly(true)

	if _, err := r.Apply(ctx, []*migrate.Migration{m}); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	if tableExists(t, db, "users") {
		t.Error("state-only migration must not emit DDL")
	}
	if r.State().GetModel("auth", "users") == nil {
		t.Error("state-only migration must still project")
	}
	applied, _ := r.Ledger().IsApplied(ctx, "auth", "0001_initial")
	if !applied {
		t.Error("state-only migration must be recorded so it is not re-offered")
	}
}

func TestApplyDatabaseOnly(t *testing.T) {
	r, db := setupRunner(t)
	ctx := context.Background()

	m := usersMigration().SetDatabaseOnly(true)

	if _, err := r.Apply(ctx, []*migrate.Migration{m}); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	if !tableExists(t, db, "users") {
		t.Error("database-only migration must emit DDL")
	}
	if r.State().GetModel("auth", "users") != nil {
		t.Error("database-only migration must not project")
	}
}

func TestApplySkipsCommentOnlyStatements(t *testing.T) {
	r, _ := setupRunner(t)
	ctx := context.Background()

	// SQLite renders AlterColumn as an explanatory comment; the runner
	// must not try to execute it.
	plan := []*migrate.Migration{
		usersMigration(),
		migrate.NewMigration("auth", "0002_widen_email").
			AddDependency("auth", "0001_initial").
			AddOperation(&schema.AlterColumn{
				TableRef:      schema.TableRef{Table_: "users"},
				Name:          "email",
				NewDefinition: schema.ColumnDefinition{Name: "email", Type: schema.VarChar(500)},
			}),
	}

	results, err := r.Apply(ctx, plan)
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if len(results[1].Statements) != 0 {
		t.Errorf("statements = %v, want none", results[1].Statements)
	}
	if results[1].Status != StatusApplied {
		t.Errorf("status = %v, want applied", results[1].Status)
	}
}

func TestApplyHookRejection(t *testing.T) {
	r, db := setupRunner(t)
	ctx := context.Background()

	r.AddBeforeApply(func(ctx context.Context, m *migrate.Migration) error {
		return nil
	})
	r.AddBeforeApply(func(ctx context.Context, m *migrate.Migration) error {
		return errors.New("no deploys on friday")
	})

	_, err := r.Apply(ctx, []*migrate.Migration{usersMigration()})
	if !merr.Is(err, merr.ErrHookRejected) {
		t.Fatalf("expected ErrHookRejected, got %v", err)
	}
	if tableExists(t, db, "users") {
		t.Error("vetoed migration must not run any DDL")
	}
}

func TestApplyEmptyPlan(t *testing.T) {
	r, _ := setupRunner(t)

	results, err := r.Apply(context.Background(), nil)
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if results != nil {
		t.Errorf("results = %v, want nil", results)
	}
}

func TestApplyWithLock(t *testing.T) {
	r, db := setupRunner(t)

	// SQLite takes no cross-process lock; the run must still succeed.
	_, err := r.ApplyWithLock(context.Background(), []*migrate.Migration{usersMigration()}, 0)
	if err != nil {
		t.Fatalf("ApplyWithLock() error = %v", err)
	}
	if !tableExists(t, db, "users") {
		t.Error("users table was not created")
	}
}

// ----------------------------------------------------------------------------
// Status / CollectSQL Tests
// ----------------------------------------------------------------------------

func TestStatus(t *testing.T) {
	r, _ := setupRunner(t)
	ctx := context.Background()

	plan := []*migrate.Migration{
		usersMigration(),
		migrate.NewMigration("blog", "0001_initial").
			AddOperation(&schema.CreateTable{
				TableOp: schema.TableOp{Name: "posts"},
				Columns: []schema.ColumnDefinition{{Name: "id", Type: schema.Integer(), PrimaryKey: true}},
			}),
	}

	if _, err := r.Apply(ctx, plan[:1]); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	statuses, err := r.Status(ctx, plan)
	if err != nil {
		t.Fatalf("Status() error = %v", err)
	}
	if len(statuses) != 2 {
		t.Fatalf("len(statuses) = %d, want 2", len(statuses))
	}
	if !statuses[0].Applied {
		t.Error("auth.0001_initial should be applied")
	}
	if statuses[1].Applied {
		t.Error("blog.0001_initial should be pending")
	}
}

func TestCollectSQL(t *testing.T) {
	r, db := setupRunner(t)

	plan := []*migrate.Migration{usersMigration()}
	statements, err := r.CollectSQL(plan)
	if err != nil {
		t.Fatalf("CollectSQL() error = %v", err)
	}
	if len(statements) != 1 {
		t.Fatalf("statements = %v, want one", statements)
	}

	// Dry run: nothing executed.
	if tableExists(t, db, "users") {
		t.Error("CollectSQL must not execute DDL")
	}
}

// ----------------------------------------------------------------------------
// Ledger Tests
// ----------------------------------------------------------------------------

func TestLedgerRecordAndApplied(t *testing.T) {
	r, db := setupRunner(t)
	ctx := context.Background()
	l := r.Ledger()

	if err := l.EnsureTable(ctx); err != nil {
		t.Fatalf("EnsureTable() error = %v", err)
	}
	// EnsureTable is idempotent.
	if err := l.EnsureTable(ctx); err != nil {
		t.Fatalf("second EnsureTable() error = %v", err)
	}

	rec := AppliedRecord{App: "auth", Name: "0001_initial", Checksum: "abc123", ExecTimeMs: 12}
	if err := l.Record(ctx, db, rec); err != nil {
		t.Fatalf("Record() error = %v", err)
	}

	records, err := l.Applied(ctx)
	if err != nil {
		t.Fatalf("Applied() error = %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("len(records) = %d, want 1", len(records))
	}
	got := records[0]
	if got.App != "auth" || got.Name != "0001_initial" || got.Checksum != "abc123" || got.ExecTimeMs != 12 {
		t.Errorf("record = %+v", got)
	}
	if got.AppliedAt.IsZero() {
		t.Error("applied_at was not populated")
	}
}

func TestLedgerRemove(t *testing.T) {
	r, db := setupRunner(t)
	ctx := context.Background()
	l := r.Ledger()

	if err := l.EnsureTable(ctx); err != nil {
		t.Fatalf("EnsureTable() error = %v", err)
	}
	if err := l.Record(ctx, db, AppliedRecord{App: "auth", Name: "0001_initial"}); err != nil {
		t.Fatalf("Record() error = %v", err)
	}

	if err := l.Remove(ctx, "auth", "0001_initial"); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if err := l.Remove(ctx, "auth", "0001_initial"); !merr.Is(err, merr.ErrLedger) {
		t.Errorf("expected ErrLedger for missing row, got %v", err)
	}
}

func TestLedgerVerifyChecksum(t *testing.T) {
	r, db := setupRunner(t)
	ctx := context.Background()
	l := r.Ledger()

	if err := l.EnsureTable(ctx); err != nil {
		t.Fatalf("EnsureTable() error = %v", err)
	}
	if err := l.Record(ctx, db, AppliedRecord{App: "auth", Name: "0001_initial", Checksum: "abc123"}); err != nil {
		t.Fatalf("Record() error = %v", err)
	}

	if err := l.VerifyChecksum(ctx, "auth", "0001_initial", "abc123"); err != nil {
		t.Errorf("matching checksum rejected: %v", err)
	}
	if err := l.VerifyChecksum(ctx, "auth", "0001_initial", "different"); !merr.Is(err, merr.ErrChecksumDrift) {
		t.Errorf("expected ErrChecksumDrift, got %v", err)
	}
	// Empty local checksum is treated as unknown, not drift.
	if err := l.VerifyChecksum(ctx, "auth", "0001_initial", ""); err != nil {
		t.Errorf("empty checksum must verify: %v", err)
	}
}
