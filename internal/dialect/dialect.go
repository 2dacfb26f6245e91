// Package dialect provides database-specific DDL generation.
// Each dialect implements field type mappings, identifier quoting,
// and SQL statement generation for every schema operation.
package dialect

import (
	"github.com/veldtdb/veldt/internal/merr"
	"github.com/veldtdb/veldt/internal/schema"
)

// Dialect defines the interface for database-specific SQL generation.
// Implementations exist for PostgreSQL, MySQL, and SQLite.
type Dialect interface {
	// Name returns the dialect name (postgres, mysql, sqlite).
	Name() string

	// -------------------------------------------------------------------------
	// Type mappings
	// -------------------------------------------------------------------------

	// TypeSQL returns the dialect-specific SQL type for a field type.
	// Types without a dialect override use the generic spelling.
	TypeSQL(ft schema.FieldType) string

	// -------------------------------------------------------------------------
	// Identifiers
	// -------------------------------------------------------------------------

	// QuoteIdent quotes an identifier when it needs quoting.
	// Identifiers matching [a-z_][a-z0-9_]* pass through unchanged;
	// anything else is wrapped in the dialect's quote character.
	QuoteIdent(name string) string

	// Placeholder returns a parameter placeholder for the given index (1-based).
	// PostgreSQL: $1, $2, ... MySQL/SQLite: ?
	Placeholder(index int) string

	// -------------------------------------------------------------------------
	// Feature support
	// -------------------------------------------------------------------------

	// SupportsTransactionalDDL returns true if DDL can run inside a
	// transaction and roll back cleanly.
	// PostgreSQL: true. SQLite: true. MySQL: false (implicit commit).
	SupportsTransactionalDDL() bool

	// -------------------------------------------------------------------------
	// SQL generation for operations
	// -------------------------------------------------------------------------

	// CreateTableSQL generates CREATE TABLE statement.
	CreateTableSQL(op *schema.CreateTable) (string, error)

	// DropTableSQL generates DROP TABLE statement.
	DropTableSQL(op *schema.DropTable) (string, error)

	// RenameTableSQL generates ALTER TABLE RENAME statement.
	// Renaming a table to its own name produces no SQL.
	RenameTableSQL(op *schema.RenameTable) (string, error)

	// AddColumnSQL generates ALTER TABLE ADD COLUMN statement.
	AddColumnSQL(op *schema.AddColumn) (string, error)

	// DropColumnSQL generates ALTER TABLE DROP COLUMN statement.
	DropColumnSQL(op *schema.DropColumn) (string, error)

	// RenameColumnSQL generates ALTER TABLE RENAME COLUMN statement.
	RenameColumnSQL(op *schema.RenameColumn) (string, error)

	// AlterColumnSQL generates column type modification statement.
	// SQLite emits a comment; it has no ALTER COLUMN and requires
	// table recreation.
	AlterColumnSQL(op *schema.AlterColumn) (string, error)

	// CreateIndexSQL generates CREATE INDEX statement.
	CreateIndexSQL(op *schema.CreateIndex) (string, error)

	// DropIndexSQL generates DROP INDEX statement.
	DropIndexSQL(op *schema.DropIndex) (string, error)

	// AddConstraintSQL generates ALTER TABLE ADD statement from a
	// literal constraint fragment.
	AddConstraintSQL(op *schema.AddConstraint) (string, error)

	// DropConstraintSQL generates ALTER TABLE DROP CONSTRAINT statement.
	DropConstraintSQL(op *schema.DropConstraint) (string, error)

	// AlterTableCommentSQL generates table comment statement.
	// SQLite has no comment DDL and produces no SQL.
	AlterTableCommentSQL(op *schema.AlterTableComment) (string, error)

	// AlterUniqueTogetherSQL generates one ADD CONSTRAINT UNIQUE
	// statement per column group.
	AlterUniqueTogetherSQL(op *schema.AlterUniqueTogether) (string, error)

	// CreateInheritedTableSQL generates CREATE TABLE for a joined-table
	// inheritance child.
	CreateInheritedTableSQL(op *schema.CreateInheritedTable) (string, error)

	// AddDiscriminatorColumnSQL generates ADD COLUMN for a single-table
	// inheritance discriminator.
	AddDiscriminatorColumnSQL(op *schema.AddDiscriminatorColumn) (string, error)

	// RawSQLFor returns the SQL for a RunSQL operation, using the
	// dialect-specific override when present.
	RawSQLFor(op *schema.RunSQL) (string, error)
}

// Get returns the dialect implementation for the given name.
// Valid names: "postgres", "postgresql", "mysql", "mariadb",
// "sqlite", "sqlite3". Returns nil if the dialect is not supported.
func Get(name string) Dialect {
	switch name {
	case "postgres", "postgresql":
		return Postgres()
	case "mysql", "mariadb":
		return MySQL()
	case "sqlite", "sqlite3":
		return SQLite()
	default:
		return nil
	}
}

// Names returns the list of supported dialect names.
func Names() []string {
	return []string{"postgres", "mysql", "sqlite"}
}

// Render dispatches an operation to the matching Dialect method and
// returns the generated SQL. Metadata-only operations (AlterModelOptions)
// and operations a dialect cannot express return an empty string; callers
// skip empty results.
func Render(d Dialect, op schema.Operation) (string, error) {
	switch o := op.(type) {
	case *schema.CreateTable:
		return d.CreateTableSQL(o)
	case *schema.DropTable:
		return d.DropTableSQL(o)
	case *schema.RenameTable:
		return d.RenameTableSQL(o)
	case *schema.AddColumn:
		return d.AddColumnSQL(o)
	case *schema.DropColumn:
		return d.DropColumnSQL(o)
	case *schema.RenameColumn:
		return d.RenameColumnSQL(o)
	case *schema.AlterColumn:
		return d.AlterColumnSQL(o)
	case *schema.CreateIndex:
		return d.CreateIndexSQL(o)
	case *schema.DropIndex:
		return d.DropIndexSQL(o)
	case *schema.AddConstraint:
		return d.AddConstraintSQL(o)
	case *schema.DropConstraint:
		return d.DropConstraintSQL(o)
	case *schema.AlterTableComment:
		return d.AlterTableCommentSQL(o)
	case *schema.AlterUniqueTogether:
		return d.AlterUniqueTogetherSQL(o)
	case *schema.AlterModelOptions:
		return "", nil
	case *schema.CreateInheritedTable:
		return d.CreateInheritedTableSQL(o)
	case *schema.AddDiscriminatorColumn:
		return d.AddDiscriminatorColumnSQL(o)
	case *schema.RunSQL:
		return d.RawSQLFor(o)
	default:
		return "", merr.Newf(merr.ErrInvalidOperation, "no SQL generation for operation type %s", op.Type())
	}
}
