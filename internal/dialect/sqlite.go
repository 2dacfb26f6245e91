package dialect

import (
	"fmt"
	"strings"

	"github.com/veldtdb/veldt/internal/schema"
)

// sqlite implements the Dialect interface for SQLite.
type sqlite struct{}

// SQLite returns the SQLite dialect implementation.
func SQLite() Dialect {
	return &sqlite{}
}

func (d *sqlite) Name() string {
	return "sqlite"
}

// -----------------------------------------------------------------------------
// Type mappings
// -----------------------------------------------------------------------------

func (d *sqlite) TypeSQL(ft schema.FieldType) string {
	switch ft.Kind {
	case schema.KindUUID:
		return "TEXT"
	case schema.KindTimestampTz:
		return "DATETIME"
	case schema.KindJSONBinary:
		return "JSON"
	case schema.KindBinary:
		return "BLOB"
	default:
		return genericTypeSQL(ft)
	}
}

// -----------------------------------------------------------------------------
// Identifiers
// -----------------------------------------------------------------------------

func (d *sqlite) QuoteIdent(name string) string {
	return quoteIfNeeded(name, `"`)
}

func (d *sqlite) Placeholder(index int) string {
	return "?"
}

// -----------------------------------------------------------------------------
// Feature support
// -----------------------------------------------------------------------------

func (d *sqlite) SupportsTransactionalDDL() bool {
	return true
}

// -----------------------------------------------------------------------------
// SQL generation
// -----------------------------------------------------------------------------

func (d *sqlite) CreateTableSQL(op *schema.CreateTable) (string, error) {
	sql := buildCreateTableSQL(op, d.QuoteIdent, d.columnDefSQL)
	if op.WithoutRowid {
		sql += " WITHOUT ROWID"
	}
	return sql, nil
}

func (d *sqlite) DropTableSQL(op *schema.DropTable) (string, error) {
	return buildDropTableSQL(op, d.QuoteIdent), nil
}

func (d *sqlite) RenameTableSQL(op *schema.RenameTable) (string, error) {
	return buildRenameTableSQL(op, d.QuoteIdent), nil
}

func (d *sqlite) AddColumnSQL(op *schema.AddColumn) (string, error) {
	return buildAddColumnSQL(op, d.QuoteIdent, d.columnDefSQL), nil
}

func (d *sqlite) DropColumnSQL(op *schema.DropColumn) (string, error) {
	return buildDropColumnSQL(op, d.QuoteIdent), nil
}

func (d *sqlite) RenameColumnSQL(op *schema.RenameColumn) (string, error) {
	return buildRenameColumnSQL(op, d.QuoteIdent), nil
}

// AlterColumnSQL emits a comment only. SQLite cannot change a column's
// type in place; the table must be rebuilt and the data copied.
func (d *sqlite) AlterColumnSQL(op *schema.AlterColumn) (string, error) {
	return fmt.Sprintf("-- SQLite does not support ALTER COLUMN, table recreation required for %s",
		d.QuoteIdent(op.Table_)), nil
}

func (d *sqlite) CreateIndexSQL(op *schema.CreateIndex) (string, error) {
	var b strings.Builder

	b.WriteString("CREATE ")
	if op.Unique {
		b.WriteString("UNIQUE ")
	}
	b.WriteString("INDEX ")
	b.WriteString(d.QuoteIdent(indexName(op)))
	b.WriteString(" ON ")
	b.WriteString(d.QuoteIdent(op.Table_))
	b.WriteString(" (")
	if len(op.Expressions) > 0 {
		b.WriteString(strings.Join(op.Expressions, ", "))
	} else {
		writeQuotedList(&b, op.Columns, d.QuoteIdent)
	}
	b.WriteString(")")

	if op.Where != "" {
		b.WriteString(" WHERE ")
		b.WriteString(op.Where)
	}

	return b.String(), nil
}

func (d *sqlite) DropIndexSQL(op *schema.DropIndex) (string, error) {
	return "DROP INDEX " + d.QuoteIdent(op.Name), nil
}

func (d *sqlite) AddConstraintSQL(op *schema.AddConstraint) (string, error) {
	return buildAddConstraintSQL(op, d.QuoteIdent), nil
}

func (d *sqlite) DropConstraintSQL(op *schema.DropConstraint) (string, error) {
	return buildDropConstraintSQL(op, d.QuoteIdent), nil
}

// AlterTableCommentSQL produces no SQL; SQLite has no comment DDL.
func (d *sqlite) AlterTableCommentSQL(op *schema.AlterTableComment) (string, error) {
	return "", nil
}

func (d *sqlite) AlterUniqueTogetherSQL(op *schema.AlterUniqueTogether) (string, error) {
	return buildAlterUniqueTogetherSQL(op, d.QuoteIdent), nil
}

func (d *sqlite) CreateInheritedTableSQL(op *schema.CreateInheritedTable) (string, error) {
	return buildCreateInheritedTableSQL(op, d.QuoteIdent, d.columnDefSQL), nil
}

func (d *sqlite) AddDiscriminatorColumnSQL(op *schema.AddDiscriminatorColumn) (string, error) {
	return buildAddDiscriminatorColumnSQL(op, d.QuoteIdent), nil
}

func (d *sqlite) RawSQLFor(op *schema.RunSQL) (string, error) {
	if op.SQLite != "" {
		return op.SQLite, nil
	}
	return op.SQL, nil
}

// -----------------------------------------------------------------------------
// Helper methods
// -----------------------------------------------------------------------------

func (d *sqlite) columnDefSQL(col *schema.ColumnDefinition, suppressPK bool) string {
	return buildColumnDefSQL(col, ColumnDefConfig{
		QuoteIdent:         d.QuoteIdent,
		TypeSQL:            d.TypeSQL,
		AutoInc:            AutoIncrementRowid,
		SuppressPrimaryKey: suppressPK,
	})
}
