package dialect

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/veldtdb/veldt/internal/schema"
)

// postgres implements the Dialect interface for PostgreSQL.
type postgres struct{}

// Postgres returns the PostgreSQL dialect implementation.
func Postgres() Dialect {
	return &postgres{}
}

func (d *postgres) Name() string {
	return "postgres"
}

// -----------------------------------------------------------------------------
// Type mappings
// -----------------------------------------------------------------------------

func (d *postgres) TypeSQL(ft schema.FieldType) string {
	switch ft.Kind {
	case schema.KindDateTime:
		return "TIMESTAMP"
	case schema.KindBinary:
		return "BYTEA"
	case schema.KindDouble:
		return "DOUBLE PRECISION"
	default:
		return genericTypeSQL(ft)
	}
}

// -----------------------------------------------------------------------------
// Identifiers
// -----------------------------------------------------------------------------

func (d *postgres) QuoteIdent(name string) string {
	return quoteIfNeeded(name, `"`)
}

func (d *postgres) Placeholder(index int) string {
	return "$" + strconv.Itoa(index)
}

// -----------------------------------------------------------------------------
// Feature support
// -----------------------------------------------------------------------------

func (d *postgres) SupportsTransactionalDDL() bool {
	return true
}

// -----------------------------------------------------------------------------
// SQL generation
// -----------------------------------------------------------------------------

func (d *postgres) CreateTableSQL(op *schema.CreateTable) (string, error) {
	return buildCreateTableSQL(op, d.QuoteIdent, d.columnDefSQL), nil
}

func (d *postgres) DropTableSQL(op *schema.DropTable) (string, error) {
	return buildDropTableSQL(op, d.QuoteIdent), nil
}

func (d *postgres) RenameTableSQL(op *schema.RenameTable) (string, error) {
	return buildRenameTableSQL(op, d.QuoteIdent), nil
}

func (d *postgres) AddColumnSQL(op *schema.AddColumn) (string, error) {
	return buildAddColumnSQL(op, d.QuoteIdent, d.columnDefSQL), nil
}

func (d *postgres) DropColumnSQL(op *schema.DropColumn) (string, error) {
	return buildDropColumnSQL(op, d.QuoteIdent), nil
}

func (d *postgres) RenameColumnSQL(op *schema.RenameColumn) (string, error) {
	return buildRenameColumnSQL(op, d.QuoteIdent), nil
}

func (d *postgres) AlterColumnSQL(op *schema.AlterColumn) (string, error) {
	return fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s TYPE %s",
		d.QuoteIdent(op.Table_), d.QuoteIdent(op.Name), d.TypeSQL(op.NewDefinition.Type)), nil
}

func (d *postgres) CreateIndexSQL(op *schema.CreateIndex) (string, error) {
	var b strings.Builder

	b.WriteString("CREATE ")
	if op.Unique {
		b.WriteString("UNIQUE ")
	}
	b.WriteString("INDEX ")
	if op.Concurrently {
		b.WriteString("CONCURRENTLY ")
	}
	b.WriteString(d.QuoteIdent(indexName(op)))
	b.WriteString(" ON ")
	b.WriteString(d.QuoteIdent(op.Table_))

	// Access method; btree is the default and needs no USING clause.
	if op.IndexType != "" && op.IndexType != schema.IndexBTree {
		b.WriteString(" USING ")
		b.WriteString(string(op.IndexType))
	}

	b.WriteString(" (")
	if len(op.Expressions) > 0 {
		b.WriteString(strings.Join(op.Expressions, ", "))
	} else if op.OperatorClass != "" {
		for i, col := range op.Columns {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(d.QuoteIdent(col))
			b.WriteString(" ")
			b.WriteString(op.OperatorClass)
		}
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

func (d *postgres) DropIndexSQL(op *schema.DropIndex) (string, error) {
	return "DROP INDEX " + d.QuoteIdent(op.Name), nil
}

func (d *postgres) AddConstraintSQL(op *schema.AddConstraint) (string, error) {
	return buildAddConstraintSQL(op, d.QuoteIdent), nil
}

func (d *postgres) DropConstraintSQL(op *schema.DropConstraint) (string, error) {
	return buildDropConstraintSQL(op, d.QuoteIdent), nil
}

func (d *postgres) AlterTableCommentSQL(op *schema.AlterTableComment) (string, error) {
	if op.Comment == nil {
		return fmt.Sprintf("COMMENT ON TABLE %s IS NULL", d.QuoteIdent(op.Table_)), nil
	}
	return fmt.Sprintf("COMMENT ON TABLE %s IS %s",
		d.QuoteIdent(op.Table_), quoteStringLiteral(*op.Comment)), nil
}

func (d *postgres) AlterUniqueTogetherSQL(op *schema.AlterUniqueTogether) (string, error) {
	return buildAlterUniqueTogetherSQL(op, d.QuoteIdent), nil
}

func (d *postgres) CreateInheritedTableSQL(op *schema.CreateInheritedTable) (string, error) {
	return buildCreateInheritedTableSQL(op, d.QuoteIdent, d.columnDefSQL), nil
}

func (d *postgres) AddDiscriminatorColumnSQL(op *schema.AddDiscriminatorColumn) (string, error) {
	return buildAddDiscriminatorColumnSQL(op, d.QuoteIdent), nil
}

func (d *postgres) RawSQLFor(op *schema.RunSQL) (string, error) {
	if op.Postgres != "" {
		return op.Postgres, nil
	}
	return op.SQL, nil
}

// -----------------------------------------------------------------------------
// Helper methods
// -----------------------------------------------------------------------------

// columnDefSQL generates the SQL for a column definition.
func (d *postgres) columnDefSQL(col *schema.ColumnDefinition, suppressPK bool) string {
	return buildColumnDefSQL(col, ColumnDefConfig{
		QuoteIdent:         d.QuoteIdent,
		TypeSQL:            d.TypeSQL,
		AutoInc:            AutoIncrementIdentity,
		SuppressPrimaryKey: suppressPK,
	})
}
