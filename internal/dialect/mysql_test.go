package dialect

import (
	"strings"
	"testing"

	"github.com/veldtdb/veldt/internal/schema"
)

func TestMySQLCreateTable(t *testing.T) {
	d := MySQL()

	op := &schema.CreateTable{
		TableOp: schema.TableOp{Name: "users"},
		Columns: []schema.ColumnDefinition{
			{Name: "id", Type: schema.BigInteger(), PrimaryKey: true, AutoIncrement: true},
			{Name: "token", Type: schema.UUID(), NotNull: true},
			{Name: "active", Type: schema.Boolean(), NotNull: true},
		},
	}

	sql, err := d.CreateTableSQL(op)
	if err != nil {
		t.Fatalf("CreateTableSQL: %v", err)
	}

	for _, want := range []string{
		"CREATE TABLE users",
		"id BIGINT AUTO_INCREMENT PRIMARY KEY",
		"token CHAR(36) NOT NULL",
		"active TINYINT(1) NOT NULL",
	} {
		if !strings.Contains(sql, want) {
			t.Errorf("SQL missing %q:\n%s", want, sql)
		}
	}
}

func TestMySQLCreateTablePartitioned(t *testing.T) {
	d := MySQL()

	op := &schema.CreateTable{
		TableOp: schema.TableOp{Name: "events"},
		Columns: []schema.ColumnDefinition{
			{Name: "id", Type: schema.BigInteger(), NotNull: true},
			{Name: "created_at", Type: schema.DateTime(), NotNull: true},
		},
		Partition: &schema.PartitionOptions{
			Type:   schema.PartitionRange,
			Column: "id",
			Partitions: []schema.PartitionDef{
				{Name: "p0", LessThan: "1000000"},
				{Name: "pmax", LessThan: "MAXVALUE"},
			},
		},
	}

	sql, err := d.CreateTableSQL(op)
	if err != nil {
		t.Fatalf("CreateTableSQL: %v", err)
	}

	for _, want := range []string{
		"PARTITION BY RANGE(id)",
		"PARTITION p0 VALUES LESS THAN ('1000000')",
		"PARTITION pmax VALUES LESS THAN MAXVALUE",
	} {
		if !strings.Contains(sql, want) {
			t.Errorf("SQL missing %q:\n%s", want, sql)
		}
	}
}

func TestMySQLAlterColumn(t *testing.T) {
	d := MySQL()

	op := &schema.AlterColumn{
		TableRef:      schema.TableRef{Table_: "users"},
		Name:          "bio",
		NewDefinition: schema.ColumnDefinition{Name: "bio", Type: schema.Text()},
		MySQLOptions:  schema.AlterTableOptions{Algorithm: schema.AlgorithmInplace, Lock: schema.LockNone},
	}

	sql, err := d.AlterColumnSQL(op)
	if err != nil {
		t.Fatalf("AlterColumnSQL: %v", err)
	}
	want := "ALTER TABLE users MODIFY COLUMN bio TEXT, ALGORITHM=INPLACE, LOCK=NONE"
	if sql != want {
		t.Errorf("got %q, want %q", sql, want)
	}
}

func TestMySQLAddColumnWithOptions(t *testing.T) {
	d := MySQL()

	op := &schema.AddColumn{
		TableRef:     schema.TableRef{Table_: "users"},
		Column:       schema.ColumnDefinition{Name: "nickname", Type: schema.VarChar(50)},
		MySQLOptions: schema.AlterTableOptions{Algorithm: schema.AlgorithmInstant},
	}

	sql, err := d.AddColumnSQL(op)
	if err != nil {
		t.Fatalf("AddColumnSQL: %v", err)
	}
	want := "ALTER TABLE users ADD COLUMN nickname VARCHAR(50), ALGORITHM=INSTANT"
	if sql != want {
		t.Errorf("got %q, want %q", sql, want)
	}
}

func TestMySQLCreateIndex(t *testing.T) {
	d := MySQL()

	tests := []struct {
		name    string
		op      *schema.CreateIndex
		want    []string
		notWant []string
	}{
		{
			name: "fulltext replaces unique",
			op: &schema.CreateIndex{
				TableRef:  schema.TableRef{Table_: "docs"},
				Columns:   []string{"body"},
				Unique:    true,
				IndexType: schema.IndexFulltext,
			},
			want:    []string{"CREATE FULLTEXT INDEX"},
			notWant: []string{"UNIQUE"},
		},
		{
			name: "spatial index",
			op: &schema.CreateIndex{
				TableRef:  schema.TableRef{Table_: "places"},
				Columns:   []string{"location"},
				IndexType: schema.IndexSpatial,
			},
			want: []string{"CREATE SPATIAL INDEX"},
		},
		{
			name: "where clause ignored",
			op: &schema.CreateIndex{
				TableRef: schema.TableRef{Table_: "users"},
				Columns:  []string{"email"},
				Where:    "deleted_at IS NULL",
			},
			notWant: []string{"WHERE"},
		},
		{
			name: "algorithm suffix",
			op: &schema.CreateIndex{
				TableRef:     schema.TableRef{Table_: "users"},
				Columns:      []string{"email"},
				MySQLOptions: schema.AlterTableOptions{Algorithm: schema.AlgorithmInplace},
			},
			want: []string{", ALGORITHM=INPLACE"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, err := d.CreateIndexSQL(tt.op)
			if err != nil {
				t.Fatalf("CreateIndexSQL: %v", err)
			}
			for _, want := range tt.want {
				if !strings.Contains(sql, want) {
					t.Errorf("SQL missing %q:\n%s", want, sql)
				}
			}
			for _, notWant := range tt.notWant {
				if strings.Contains(sql, notWant) {
					t.Errorf("SQL should not contain %q:\n%s", notWant, sql)
				}
			}
		})
	}
}

func TestMySQLDropIndex(t *testing.T) {
	d := MySQL()

	sql, err := d.DropIndexSQL(&schema.DropIndex{
		TableRef: schema.TableRef{Table_: "users"},
		Name:     "idx_users_email",
	})
	if err != nil {
		t.Fatalf("DropIndexSQL: %v", err)
	}
	if sql != "DROP INDEX idx_users_email ON users" {
		t.Errorf("unexpected SQL: %q", sql)
	}
}

func TestMySQLAlterTableComment(t *testing.T) {
	d := MySQL()

	comment := "user accounts"
	sql, err := d.AlterTableCommentSQL(&schema.AlterTableComment{
		TableRef: schema.TableRef{Table_: "users"},
		Comment:  &comment,
	})
	if err != nil {
		t.Fatalf("AlterTableCommentSQL: %v", err)
	}
	if sql != "ALTER TABLE users COMMENT='user accounts'" {
		t.Errorf("unexpected SQL: %q", sql)
	}

	// Clearing the comment sets it to empty string.
	sql, err = d.AlterTableCommentSQL(&schema.AlterTableComment{
		TableRef: schema.TableRef{Table_: "users"},
	})
	if err != nil {
		t.Fatalf("AlterTableCommentSQL: %v", err)
	}
	if !strings.Contains(sql, "COMMENT=''") {
		t.Errorf("clearing a comment should emit COMMENT='', got %q", sql)
	}
}

func TestMySQLTransactionalDDL(t *testing.T) {
	if MySQL().SupportsTransactionalDDL() {
		t.Error("MySQL DDL causes implicit commits and must not report transactional DDL")
	}
}

func TestMySQLQuoteIdent(t *testing.T) {
	d := MySQL()
	if got := d.QuoteIdent("users"); got != "users" {
		t.Errorf("plain identifier should pass through, got %q", got)
	}
	if got := d.QuoteIdent("Order"); got != "`Order`" {
		t.Errorf("mixed-case identifier should be backtick-quoted, got %q", got)
	}
}
