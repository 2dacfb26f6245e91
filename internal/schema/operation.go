package schema

import (
	"github.com/veldtdb/veldt/internal/merr"
)

// Operation represents a single atomic change to the database schema.
// Operations are immutable once constructed; they are projected onto
// in-memory state by the migrate package and rendered to SQL by the
// dialect package.
type Operation interface {
	// Type returns the operation type (OpCreateTable, OpAddColumn, etc.)
	Type() OpType

	// Table returns the table name the operation targets.
	// For operations that don't target a specific table (e.g., RunSQL),
	// this returns an empty string.
	Table() string

	// Validate checks that the operation is well-formed.
	// Returns an error if the operation has invalid or missing fields.
	Validate() error
}

// -----------------------------------------------------------------------------
// Embedded types for DRY operation definitions
// -----------------------------------------------------------------------------

// TableOp provides the Name field for operations that create or drop tables.
type TableOp struct {
	Name string
}

// Table returns the table name.
func (t TableOp) Table() string { return t.Name }

// TableRef provides the Table_ field for operations that target an
// existing table.
type TableRef struct {
	Table_ string
}

// Table returns the table name.
func (t TableRef) Table() string { return t.Table_ }

// -----------------------------------------------------------------------------
// CreateTable - creates a new table
// -----------------------------------------------------------------------------

// CreateTable represents creating a new table with columns and constraints.
type CreateTable struct {
	TableOp
	Columns     []ColumnDefinition
	Constraints []Constraint

	// WithoutRowid enables the SQLite WITHOUT ROWID optimization.
	WithoutRowid bool

	// Partition configures MySQL table partitioning.
	Partition *PartitionOptions

	// InterleaveInParent is preserved for round-tripping; no supported
	// dialect renders it.
	InterleaveInParent *InterleaveSpec
}

func (op *CreateTable) Type() OpType { return OpCreateTable }

func (op *CreateTable) Validate() error {
	if op.Name == "" {
		return merr.New(merr.ErrInvalidOperation, "table name is required")
	}
	if len(op.Columns) == 0 {
		return merr.New(merr.ErrInvalidOperation, "table must have at least one column").
			WithTable(op.Name)
	}
	seen := make(map[string]bool)
	for i := range op.Columns {
		col := &op.Columns[i]
		if err := col.Validate(); err != nil {
			return merr.Wrap(merr.ErrInvalidOperation, err, "invalid column").
				WithTable(op.Name).
				WithColumn(col.Name)
		}
		if seen[col.Name] {
			return merr.New(merr.ErrInvalidOperation, "duplicate column name").
				WithTable(op.Name).
				WithColumn(col.Name)
		}
		seen[col.Name] = true
	}
	if err := validateConstraints(op.Constraints); err != nil {
		return merr.Wrap(merr.ErrInvalidOperation, err, "invalid constraint").
			WithTable(op.Name)
	}
	return nil
}

// -----------------------------------------------------------------------------
// DropTable - removes an existing table
// -----------------------------------------------------------------------------

// DropTable represents dropping an existing table.
type DropTable struct {
	TableOp
}

func (op *DropTable) Type() OpType { return OpDropTable }

func (op *DropTable) Validate() error {
	if op.Name == "" {
		return merr.New(merr.ErrInvalidOperation, "table name is required for drop")
	}
	return nil
}

// -----------------------------------------------------------------------------
// RenameTable - renames an existing table
// -----------------------------------------------------------------------------

// RenameTable represents renaming an existing table.
// Renaming a table to its own name is a valid no-op.
type RenameTable struct {
	OldName string
	NewName string
}

func (op *RenameTable) Type() OpType { return OpRenameTable }

func (op *RenameTable) Table() string { return op.OldName }

// IsNoop reports whether the rename leaves the table name unchanged.
func (op *RenameTable) IsNoop() bool { return op.OldName == op.NewName }

func (op *RenameTable) Validate() error {
	if op.OldName == "" {
		return merr.New(merr.ErrInvalidOperation, "old table name is required for rename")
	}
	if op.NewName == "" {
		return merr.New(merr.ErrInvalidOperation, "new table name is required for rename")
	}
	return nil
}

// -----------------------------------------------------------------------------
// AddColumn - adds a column to an existing table
// -----------------------------------------------------------------------------

// AddColumn represents adding a new column to an existing table.
type AddColumn struct {
	TableRef
	Column ColumnDefinition

	// MySQLOptions adds ALGORITHM/LOCK clauses on MySQL.
	MySQLOptions AlterTableOptions
}

func (op *AddColumn) Type() OpType { return OpAddColumn }

func (op *AddColumn) Validate() error {
	if op.Table_ == "" {
		return merr.New(merr.ErrInvalidOperation, "table name is required for add column")
	}
	if err := op.Column.Validate(); err != nil {
		return merr.Wrap(merr.ErrInvalidOperation, err, "invalid column").
			WithTable(op.Table_).
			WithColumn(op.Column.Name)
	}
	return nil
}

// -----------------------------------------------------------------------------
// DropColumn - removes a column from an existing table
// -----------------------------------------------------------------------------

// DropColumn represents removing a column from an existing table.
type DropColumn struct {
	TableRef
	Name string
}

func (op *DropColumn) Type() OpType { return OpDropColumn }

func (op *DropColumn) Validate() error {
	if op.Table_ == "" {
		return merr.New(merr.ErrInvalidOperation, "table name is required for drop column")
	}
	if op.Name == "" {
		return merr.New(merr.ErrInvalidOperation, "column name is required for drop column").
			WithTable(op.Table_)
	}
	return nil
}

// -----------------------------------------------------------------------------
// RenameColumn - renames a column
// -----------------------------------------------------------------------------

// RenameColumn represents renaming a column in an existing table.
type RenameColumn struct {
	TableRef
	OldName string
	NewName string
}

func (op *RenameColumn) Type() OpType { return OpRenameColumn }

func (op *RenameColumn) Validate() error {
	if op.Table_ == "" {
		return merr.New(merr.ErrInvalidOperation, "table name is required for rename column")
	}
	if op.OldName == "" {
		return merr.New(merr.ErrInvalidOperation, "old column name is required for rename").
			WithTable(op.Table_)
	}
	if op.NewName == "" {
		return merr.New(merr.ErrInvalidOperation, "new column name is required for rename").
			WithTable(op.Table_)
	}
	return nil
}

// -----------------------------------------------------------------------------
// AlterColumn - modifies a column's type
// -----------------------------------------------------------------------------

// AlterColumn represents modifying a column's definition.
// OldDefinition is advisory; it is carried for dialects and tools that
// need the before-state and is never required to be populated.
type AlterColumn struct {
	TableRef
	Name          string
	OldDefinition *ColumnDefinition
	NewDefinition ColumnDefinition

	// MySQLOptions adds ALGORITHM/LOCK clauses on MySQL.
	MySQLOptions AlterTableOptions
}

func (op *AlterColumn) Type() OpType { return OpAlterColumn }

func (op *AlterColumn) Validate() error {
	if op.Table_ == "" {
		return merr.New(merr.ErrInvalidOperation, "table name is required for alter column")
	}
	if op.Name == "" {
		return merr.New(merr.ErrInvalidOperation, "column name is required for alter column").
			WithTable(op.Table_)
	}
	if err := op.NewDefinition.Validate(); err != nil {
		return merr.Wrap(merr.ErrInvalidOperation, err, "invalid column definition").
			WithTable(op.Table_).
			WithColumn(op.Name)
	}
	return nil
}

// -----------------------------------------------------------------------------
// CreateIndex - creates a new index
// -----------------------------------------------------------------------------

// CreateIndex represents creating a new index on columns or expressions.
// Indexes are not part of the field model, so this operation never
// mutates project state.
type CreateIndex struct {
	TableRef
	Name    string // auto-generated if empty
	Columns []string
	Unique  bool

	// IndexType selects the access method (USING clause on Postgres,
	// FULLTEXT/SPATIAL prefix on MySQL). Empty means the dialect default.
	IndexType IndexType

	// Where makes the index partial. MySQL does not support partial
	// indexes and ignores it.
	Where string

	// Concurrently builds the index without blocking writes. Postgres only.
	Concurrently bool

	// Expressions index computed expressions instead of plain columns.
	// When non-empty, Columns is ignored for SQL generation.
	Expressions []string

	// OperatorClass applies a non-default operator class per column.
	// Postgres only.
	OperatorClass string

	// MySQLOptions adds ALGORITHM/LOCK clauses on MySQL.
	MySQLOptions AlterTableOptions
}

func (op *CreateIndex) Type() OpType { return OpCreateIndex }

func (op *CreateIndex) Validate() error {
	if op.Table_ == "" {
		return merr.New(merr.ErrInvalidOperation, "table name is required for create index")
	}
	if len(op.Columns) == 0 && len(op.Expressions) == 0 {
		return merr.New(merr.ErrInvalidOperation, "index must have at least one column or expression").
			WithTable(op.Table_)
	}
	return nil
}

// -----------------------------------------------------------------------------
// DropIndex - removes an existing index
// -----------------------------------------------------------------------------

// DropIndex represents removing an existing index.
type DropIndex struct {
	TableRef
	Name string
}

func (op *DropIndex) Type() OpType { return OpDropIndex }

func (op *DropIndex) Validate() error {
	if op.Name == "" {
		return merr.New(merr.ErrInvalidOperation, "index name is required for drop index")
	}
	return nil
}

// -----------------------------------------------------------------------------
// AddConstraint - adds a table constraint from literal SQL
// -----------------------------------------------------------------------------

// AddConstraint represents appending a literal constraint SQL fragment.
// DDL only; project state is not touched.
type AddConstraint struct {
	TableRef
	ConstraintSQL string
}

func (op *AddConstraint) Type() OpType { return OpAddConstraint }

func (op *AddConstraint) Validate() error {
	if op.Table_ == "" {
		return merr.New(merr.ErrInvalidOperation, "table name is required for add constraint")
	}
	if op.ConstraintSQL == "" {
		return merr.New(merr.ErrInvalidOperation, "constraint SQL is required").
			WithTable(op.Table_)
	}
	return nil
}

// -----------------------------------------------------------------------------
// DropConstraint - removes a named table constraint
// -----------------------------------------------------------------------------

// DropConstraint represents removing a named table constraint.
type DropConstraint struct {
	TableRef
	Name string
}

func (op *DropConstraint) Type() OpType { return OpDropConstraint }

func (op *DropConstraint) Validate() error {
	if op.Table_ == "" {
		return merr.New(merr.ErrInvalidOperation, "table name is required for drop constraint")
	}
	if op.Name == "" {
		return merr.New(merr.ErrInvalidOperation, "constraint name is required for drop constraint").
			WithTable(op.Table_)
	}
	return nil
}

// -----------------------------------------------------------------------------
// AlterTableComment - sets or clears a table comment
// -----------------------------------------------------------------------------

// AlterTableComment represents setting or clearing a table comment.
// Comment nil clears the comment. SQLite has no comment DDL and emits
// nothing.
type AlterTableComment struct {
	TableRef
	Comment *string
}

func (op *AlterTableComment) Type() OpType { return OpAlterTableComment }

func (op *AlterTableComment) Validate() error {
	if op.Table_ == "" {
		return merr.New(merr.ErrInvalidOperation, "table name is required for alter table comment")
	}
	return nil
}

// -----------------------------------------------------------------------------
// AlterUniqueTogether - multi-column uniqueness sets
// -----------------------------------------------------------------------------

// AlterUniqueTogether records sets of columns that must be unique together.
// Metadata-only for state purposes; validation is deliberately lax and
// does not require the referenced columns to exist.
type AlterUniqueTogether struct {
	TableRef
	UniqueTogether [][]string
}

func (op *AlterUniqueTogether) Type() OpType { return OpAlterUniqueTogether }

func (op *AlterUniqueTogether) Validate() error {
	if op.Table_ == "" {
		return merr.New(merr.ErrInvalidOperation, "table name is required for alter unique together")
	}
	for _, group := range op.UniqueTogether {
		if len(group) == 0 {
			return merr.New(merr.ErrInvalidOperation, "unique together group must not be empty").
				WithTable(op.Table_)
		}
	}
	return nil
}

// -----------------------------------------------------------------------------
// AlterModelOptions - free-form model metadata
// -----------------------------------------------------------------------------

// AlterModelOptions records free-form model metadata. Metadata-only;
// emits no DDL on any dialect.
type AlterModelOptions struct {
	TableRef
	Options map[string]string
}

func (op *AlterModelOptions) Type() OpType { return OpAlterModelOptions }

func (op *AlterModelOptions) Validate() error {
	if op.Table_ == "" {
		return merr.New(merr.ErrInvalidOperation, "table name is required for alter model options")
	}
	return nil
}

// -----------------------------------------------------------------------------
// CreateInheritedTable - joined-table inheritance
// -----------------------------------------------------------------------------

// CreateInheritedTable creates a child table for joined-table inheritance.
// The child's fields are the join column plus Columns; the join column
// references the base table's primary key.
type CreateInheritedTable struct {
	TableOp
	Columns    []ColumnDefinition
	BaseTable  string
	JoinColumn string
}

func (op *CreateInheritedTable) Type() OpType { return OpCreateInheritedTable }

func (op *CreateInheritedTable) Validate() error {
	if op.Name == "" {
		return merr.New(merr.ErrInvalidOperation, "table name is required for inherited table")
	}
	if op.BaseTable == "" {
		return merr.New(merr.ErrInvalidOperation, "base table is required for inherited table").
			WithTable(op.Name)
	}
	if op.JoinColumn == "" {
		return merr.New(merr.ErrInvalidOperation, "join column is required for inherited table").
			WithTable(op.Name)
	}
	for i := range op.Columns {
		col := &op.Columns[i]
		if err := col.Validate(); err != nil {
			return merr.Wrap(merr.ErrInvalidOperation, err, "invalid column").
				WithTable(op.Name).
				WithColumn(col.Name)
		}
		if col.Name == op.JoinColumn {
			return merr.New(merr.ErrInvalidOperation, "column name collides with join column").
				WithTable(op.Name).
				WithColumn(col.Name)
		}
	}
	return nil
}

// -----------------------------------------------------------------------------
// AddDiscriminatorColumn - single-table inheritance
// -----------------------------------------------------------------------------

// AddDiscriminatorColumn adds the type column for single-table inheritance.
// The column is a VARCHAR(50) defaulting to DefaultValue.
type AddDiscriminatorColumn struct {
	TableRef
	ColumnName   string
	DefaultValue string
}

func (op *AddDiscriminatorColumn) Type() OpType { return OpAddDiscriminatorColumn }

func (op *AddDiscriminatorColumn) Validate() error {
	if op.Table_ == "" {
		return merr.New(merr.ErrInvalidOperation, "table name is required for discriminator column")
	}
	if op.ColumnName == "" {
		return merr.New(merr.ErrInvalidOperation, "column name is required for discriminator column").
			WithTable(op.Table_)
	}
	return nil
}

// -----------------------------------------------------------------------------
// RunSQL - executes raw SQL
// -----------------------------------------------------------------------------

// RunSQL represents a raw SQL statement (escape hatch for unsupported
// operations). Use sparingly; prefer structured operations for better
// dialect support.
type RunSQL struct {
	SQL string
	// Per-dialect overrides (optional)
	Postgres string
	MySQL    string
	SQLite   string
}

func (op *RunSQL) Type() OpType { return OpRunSQL }

func (op *RunSQL) Table() string { return "" }

func (op *RunSQL) Validate() error {
	if op.SQL == "" && op.Postgres == "" && op.MySQL == "" && op.SQLite == "" {
		return merr.New(merr.ErrInvalidOperation, "raw SQL statement is required")
	}
	return nil
}
