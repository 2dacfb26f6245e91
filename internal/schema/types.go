// Package schema defines the operation model for database schema changes.
// Operations represent atomic changes to the database schema that can be
// projected onto in-memory state and serialized to SQL for any supported dialect.
package schema

// OpType represents the type of a schema operation.
type OpType int

const (
	// OpCreateTable creates a new table with columns and constraints.
	OpCreateTable OpType = iota

	// OpDropTable removes an existing table.
	OpDropTable

	// OpRenameTable changes a table's name.
	OpRenameTable

	// OpAddColumn adds a new column to an existing table.
	OpAddColumn

	// OpDropColumn removes a column from an existing table.
	OpDropColumn

	// OpRenameColumn changes a column's name.
	OpRenameColumn

	// OpAlterColumn modifies a column's type.
	OpAlterColumn

	// OpCreateIndex creates a new index on one or more columns or expressions.
	OpCreateIndex

	// OpDropIndex removes an existing index.
	OpDropIndex

	// OpAddConstraint adds a table constraint from a literal SQL fragment.
	OpAddConstraint

	// OpDropConstraint removes a named table constraint.
	OpDropConstraint

	// OpAlterTableComment sets or clears a table comment.
	OpAlterTableComment

	// OpAlterUniqueTogether records multi-column uniqueness sets.
	OpAlterUniqueTogether

	// OpAlterModelOptions records free-form model metadata.
	OpAlterModelOptions

	// OpCreateInheritedTable creates a child table for joined-table inheritance.
	OpCreateInheritedTable

	// OpAddDiscriminatorColumn adds the type column for single-table inheritance.
	OpAddDiscriminatorColumn

	// OpRunSQL executes raw SQL (escape hatch for unsupported operations).
	OpRunSQL
)

// String returns the string representation of an OpType.
func (o OpType) String() string {
	switch o {
	case OpCreateTable:
		return "CreateTable"
	case OpDropTable:
		return "DropTable"
	case OpRenameTable:
		return "RenameTable"
	case OpAddColumn:
		return "AddColumn"
	case OpDropColumn:
		return "DropColumn"
	case OpRenameColumn:
		return "RenameColumn"
	case OpAlterColumn:
		return "AlterColumn"
	case OpCreateIndex:
		return "CreateIndex"
	case OpDropIndex:
		return "DropIndex"
	case OpAddConstraint:
		return "AddConstraint"
	case OpDropConstraint:
		return "DropConstraint"
	case OpAlterTableComment:
		return "AlterTableComment"
	case OpAlterUniqueTogether:
		return "AlterUniqueTogether"
	case OpAlterModelOptions:
		return "AlterModelOptions"
	case OpCreateInheritedTable:
		return "CreateInheritedTable"
	case OpAddDiscriminatorColumn:
		return "AddDiscriminatorColumn"
	case OpRunSQL:
		return "RunSQL"
	default:
		return "Unknown"
	}
}
