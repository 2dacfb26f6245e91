package schema

import (
	"testing"
)

func TestOperationTypes(t *testing.T) {
	comment := "user accounts"
	tests := []struct {
		name string
		op   Operation
		want OpType
	}{
		{"create table", &CreateTable{TableOp: TableOp{Name: "users"}}, OpCreateTable},
		{"drop table", &DropTable{TableOp: TableOp{Name: "users"}}, OpDropTable},
		{"rename table", &RenameTable{OldName: "users", NewName: "accounts"}, OpRenameTable},
		{"add column", &AddColumn{TableRef: TableRef{Table_: "users"}}, OpAddColumn},
		{"drop column", &DropColumn{TableRef: TableRef{Table_: "users"}, Name: "bio"}, OpDropColumn},
		{"rename column", &RenameColumn{TableRef: TableRef{Table_: "users"}, OldName: "bio", NewName: "about"}, OpRenameColumn},
		{"alter column", &AlterColumn{TableRef: TableRef{Table_: "users"}, Name: "bio"}, OpAlterColumn},
		{"create index", &CreateIndex{TableRef: TableRef{Table_: "users"}, Columns: []string{"email"}}, OpCreateIndex},
		{"drop index", &DropIndex{TableRef: TableRef{Table_: "users"}, Name: "idx_users_email"}, OpDropIndex},
		{"add constraint", &AddConstraint{TableRef: TableRef{Table_: "users"}, ConstraintSQL: "CHECK (age > 0)"}, OpAddConstraint},
		{"drop constraint", &DropConstraint{TableRef: TableRef{Table_: "users"}, Name: "chk_age"}, OpDropConstraint},
		{"alter table comment", &AlterTableComment{TableRef: TableRef{Table_: "users"}, Comment: &comment}, OpAlterTableComment},
		{"alter unique together", &AlterUniqueTogether{TableRef: TableRef{Table_: "users"}}, OpAlterUniqueTogether},
		{"alter model options", &AlterModelOptions{TableRef: TableRef{Table_: "users"}}, OpAlterModelOptions},
		{"create inherited table", &CreateInheritedTable{TableOp: TableOp{Name: "admins"}}, OpCreateInheritedTable},
		{"add discriminator column", &AddDiscriminatorColumn{TableRef: TableRef{Table_: "people"}}, OpAddDiscriminatorColumn},
		{"run sql", &RunSQL{SQL: "VACUUM"}, OpRunSQL},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.op.Type(); got != tt.want {
				t.Errorf("Type() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestOperationTable(t *testing.T) {
	tests := []struct {
		name string
		op   Operation
		want string
	}{
		{"create table", &CreateTable{TableOp: TableOp{Name: "users"}}, "users"},
		{"rename table reports old name", &RenameTable{OldName: "users", NewName: "accounts"}, "users"},
		{"add column", &AddColumn{TableRef: TableRef{Table_: "posts"}}, "posts"},
		{"run sql has no table", &RunSQL{SQL: "VACUUM"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.op.Table(); got != tt.want {
				t.Errorf("Table() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCreateTableValidate(t *testing.T) {
	tests := []struct {
		name    string
		op      *CreateTable
		wantErr bool
	}{
		{
			name: "valid",
			op: &CreateTable{
				TableOp: TableOp{Name: "users"},
				Columns: []ColumnDefinition{
					{Name: "id", Type: Integer(), PrimaryKey: true, AutoIncrement: true},
					{Name: "email", Type: VarChar(255), NotNull: true, Unique: true},
				},
			},
		},
		{
			name:    "missing name",
			op:      &CreateTable{Columns: []ColumnDefinition{NewColumn("id", Integer())}},
			wantErr: true,
		},
		{
			name:    "no columns",
			op:      &CreateTable{TableOp: TableOp{Name: "users"}},
			wantErr: true,
		},
		{
			name: "duplicate column",
			op: &CreateTable{
				TableOp: TableOp{Name: "users"},
				Columns: []ColumnDefinition{
					NewColumn("id", Integer()),
					NewColumn("id", BigInteger()),
				},
			},
			wantErr: true,
		},
		{
			name: "invalid column type",
			op: &CreateTable{
				TableOp: TableOp{Name: "users"},
				Columns: []ColumnDefinition{NewColumn("email", VarChar(0))},
			},
			wantErr: true,
		},
		{
			name: "composite primary key",
			op: &CreateTable{
				TableOp: TableOp{Name: "order_items"},
				Columns: []ColumnDefinition{
					NewColumn("order_id", Integer()),
					NewColumn("product_id", Integer()),
				},
				Constraints: []Constraint{
					&PrimaryKeyConstraint{Name: "order_items", Columns: []string{"order_id", "product_id"}},
				},
			},
		},
		{
			name: "duplicate constraint names",
			op: &CreateTable{
				TableOp: TableOp{Name: "users"},
				Columns: []ColumnDefinition{NewColumn("id", Integer())},
				Constraints: []Constraint{
					&CheckConstraint{Name: "chk_one", Expression: "id > 0"},
					&CheckConstraint{Name: "chk_one", Expression: "id < 100"},
				},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.op.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestRenameTableValidate(t *testing.T) {
	op := &RenameTable{OldName: "users", NewName: "accounts"}
	if err := op.Validate(); err != nil {
		t.Errorf("Validate() unexpected error: %v", err)
	}

	// Renaming to the same name is allowed and is a no-op.
	same := &RenameTable{OldName: "users", NewName: "users"}
	if err := same.Validate(); err != nil {
		t.Errorf("self-rename should validate, got: %v", err)
	}
	if !same.IsNoop() {
		t.Error("self-rename should be a no-op")
	}
	if op.IsNoop() {
		t.Error("real rename should not be a no-op")
	}

	missing := &RenameTable{OldName: "users"}
	if err := missing.Validate(); err == nil {
		t.Error("expected error for missing new name")
	}
}

func TestCreateIndexValidate(t *testing.T) {
	tests := []struct {
		name    string
		op      *CreateIndex
		wantErr bool
	}{
		{
			name: "column index",
			op:   &CreateIndex{TableRef: TableRef{Table_: "users"}, Columns: []string{"email"}},
		},
		{
			name: "expression index",
			op:   &CreateIndex{TableRef: TableRef{Table_: "users"}, Expressions: []string{"lower(email)"}},
		},
		{
			name:    "no columns or expressions",
			op:      &CreateIndex{TableRef: TableRef{Table_: "users"}},
			wantErr: true,
		},
		{
			name:    "missing table",
			op:      &CreateIndex{Columns: []string{"email"}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.op.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestCreateInheritedTableValidate(t *testing.T) {
	tests := []struct {
		name    string
		op      *CreateInheritedTable
		wantErr bool
	}{
		{
			name: "valid",
			op: &CreateInheritedTable{
				TableOp:    TableOp{Name: "admins"},
				Columns:    []ColumnDefinition{NewColumn("access_level", Integer())},
				BaseTable:  "users",
				JoinColumn: "user_id",
			},
		},
		{
			name: "missing base table",
			op: &CreateInheritedTable{
				TableOp:    TableOp{Name: "admins"},
				JoinColumn: "user_id",
			},
			wantErr: true,
		},
		{
			name: "missing join column",
			op: &CreateInheritedTable{
				TableOp:   TableOp{Name: "admins"},
				BaseTable: "users",
			},
			wantErr: true,
		},
		{
			name: "column collides with join column",
			op: &CreateInheritedTable{
				TableOp:    TableOp{Name: "admins"},
				Columns:    []ColumnDefinition{NewColumn("user_id", Integer())},
				BaseTable:  "users",
				JoinColumn: "user_id",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.op.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestRunSQLValidate(t *testing.T) {
	if err := (&RunSQL{SQL: "VACUUM"}).Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	// A dialect-specific override alone is enough.
	if err := (&RunSQL{Postgres: "CREATE EXTENSION pg_trgm"}).Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := (&RunSQL{}).Validate(); err == nil {
		t.Error("expected error for empty statement")
	}
}

func TestOpTypeString(t *testing.T) {
	tests := []struct {
		op   OpType
		want string
	}{
		{OpCreateTable, "CreateTable"},
		{OpDropTable, "DropTable"},
		{OpRenameTable, "RenameTable"},
		{OpAddColumn, "AddColumn"},
		{OpRunSQL, "RunSQL"},
	}

	for _, tt := range tests {
		if got := tt.op.String(); got != tt.want {
			t.Errorf("OpType(%d).String() = %q, want %q", tt.op, got, tt.want)
		}
	}
}
