package dialect

import (
	"strings"
	"testing"

	"github.com/veldtdb/veldt/internal/schema"
)

func TestSQLiteCreateTable(t *testing.T) {
	d := SQLite()

	op := &schema.CreateTable{
		TableOp: schema.TableOp{Name: "users"},
		Columns: []schema.ColumnDefinition{
			{Name: "id", Type: schema.Integer(), PrimaryKey: true, AutoIncrement: true},
			{Name: "token", Type: schema.UUID(), NotNull: true},
			{Name: "active", Type: schema.Boolean(), NotNull: true, Default: "1"},
		},
	}

	sql, err := d.CreateTableSQL(op)
	if err != nil {
		t.Fatalf("CreateTableSQL: %v", err)
	}

	for _, want := range []string{
		"CREATE TABLE users",
		"id INTEGER PRIMARY KEY AUTOINCREMENT",
		"token TEXT NOT NULL",
		"active BOOLEAN NOT NULL DEFAULT 1",
	} {
		if !strings.Contains(sql, want) {
			t.Errorf("SQL missing %q:\n%s", want, sql)
		}
	}
}

func TestSQLiteWithoutRowid(t *testing.T) {
	d := SQLite()

	op := &schema.CreateTable{
		TableOp: schema.TableOp{Name: "kv"},
		Columns: []schema.ColumnDefinition{
			{Name: "key", Type: schema.Text(), PrimaryKey: true},
			{Name: "value", Type: schema.Text()},
		},
		WithoutRowid: true,
	}

	sql, err := d.CreateTableSQL(op)
	if err != nil {
		t.Fatalf("CreateTableSQL: %v", err)
	}
	if !strings.HasSuffix(sql, " WITHOUT ROWID") {
		t.Errorf("expected WITHOUT ROWID suffix:\n%s", sql)
	}
}

func TestSQLiteAlterColumn(t *testing.T) {
	d := SQLite()

	sql, err := d.AlterColumnSQL(&schema.AlterColumn{
		TableRef:      schema.TableRef{Table_: "users"},
		Name:          "bio",
		NewDefinition: schema.ColumnDefinition{Name: "bio", Type: schema.Text()},
	})
	if err != nil {
		t.Fatalf("AlterColumnSQL: %v", err)
	}

	want := "-- SQLite does not support ALTER COLUMN, table recreation required for users"
	if sql != want {
		t.Errorf("got %q, want %q", sql, want)
	}
}

func TestSQLiteAlterTableComment(t *testing.T) {
	d := SQLite()

	comment := "ignored"
	sql, err := d.AlterTableCommentSQL(&schema.AlterTableComment{
		TableRef: schema.TableRef{Table_: "users"},
		Comment:  &comment,
	})
	if err != nil {
		t.Fatalf("AlterTableCommentSQL: %v", err)
	}
	if sql != "" {
		t.Errorf("SQLite has no comment DDL, got %q", sql)
	}
}

func TestSQLiteCreateIndex(t *testing.T) {
	d := SQLite()

	sql, err := d.CreateIndexSQL(&schema.CreateIndex{
		TableRef: schema.TableRef{Table_: "users"},
		Columns:  []string{"email"},
		Unique:   true,
		Where:    "deleted_at IS NULL",
	})
	if err != nil {
		t.Fatalf("CreateIndexSQL: %v", err)
	}

	for _, want := range []string{
		"CREATE UNIQUE INDEX uniq_users_email ON users (email)",
		"WHERE deleted_at IS NULL",
	} {
		if !strings.Contains(sql, want) {
			t.Errorf("SQL missing %q:\n%s", want, sql)
		}
	}
}

func TestSQLiteDropIndex(t *testing.T) {
	d := SQLite()

	sql, err := d.DropIndexSQL(&schema.DropIndex{
		TableRef: schema.TableRef{Table_: "users"},
		Name:     "idx_users_email",
	})
	if err != nil {
		t.Fatalf("DropIndexSQL: %v", err)
	}
	if sql != "DROP INDEX idx_users_email" {
		t.Errorf("unexpected SQL: %q", sql)
	}
}

func TestSQLiteRawSQLOverride(t *testing.T) {
	d := SQLite()

	sql, err := d.RawSQLFor(&schema.RunSQL{SQL: "SELECT 1", SQLite: "PRAGMA foreign_keys = ON"})
	if err != nil {
		t.Fatalf("RawSQLFor: %v", err)
	}
	if sql != "PRAGMA foreign_keys = ON" {
		t.Errorf("sqlite override not used: %q", sql)
	}
}
