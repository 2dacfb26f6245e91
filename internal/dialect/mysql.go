package dialect

import (
	"fmt"
	"strings"

	"github.com/veldtdb/veldt/internal/schema"
)

// mysql implements the Dialect interface for MySQL and MariaDB.
type mysql struct{}

// MySQL returns the MySQL dialect implementation.
func MySQL() Dialect {
	return &mysql{}
}

func (d *mysql) Name() string {
	return "mysql"
}

// -----------------------------------------------------------------------------
// Type mappings
// -----------------------------------------------------------------------------

func (d *mysql) TypeSQL(ft schema.FieldType) string {
	switch ft.Kind {
	case schema.KindBoolean:
		return "TINYINT(1)"
	case schema.KindUUID:
		// No native UUID type.
		return "CHAR(36)"
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

func (d *mysql) QuoteIdent(name string) string {
	return quoteIfNeeded(name, "`")
}

func (d *mysql) Placeholder(index int) string {
	return "?"
}

// -----------------------------------------------------------------------------
// Feature support
// -----------------------------------------------------------------------------

// SupportsTransactionalDDL is false: MySQL DDL statements cause an
// implicit commit, so a failed migration cannot roll back earlier DDL.
func (d *mysql) SupportsTransactionalDDL() bool {
	return false
}

// -----------------------------------------------------------------------------
// SQL generation
// -----------------------------------------------------------------------------

func (d *mysql) CreateTableSQL(op *schema.CreateTable) (string, error) {
	sql := buildCreateTableSQL(op, d.QuoteIdent, d.columnDefSQL)
	if op.Partition != nil {
		sql += " " + op.Partition.SQL()
	}
	return sql, nil
}

func (d *mysql) DropTableSQL(op *schema.DropTable) (string, error) {
	return buildDropTableSQL(op, d.QuoteIdent), nil
}

func (d *mysql) RenameTableSQL(op *schema.RenameTable) (string, error) {
	return buildRenameTableSQL(op, d.QuoteIdent), nil
}

func (d *mysql) AddColumnSQL(op *schema.AddColumn) (string, error) {
	return buildAddColumnSQL(op, d.QuoteIdent, d.columnDefSQL) + op.MySQLOptions.SQLSuffix(), nil
}

func (d *mysql) DropColumnSQL(op *schema.DropColumn) (string, error) {
	return buildDropColumnSQL(op, d.QuoteIdent), nil
}

func (d *mysql) RenameColumnSQL(op *schema.RenameColumn) (string, error) {
	return buildRenameColumnSQL(op, d.QuoteIdent), nil
}

func (d *mysql) AlterColumnSQL(op *schema.AlterColumn) (string, error) {
	sql := fmt.Sprintf("ALTER TABLE %s MODIFY COLUMN %s %s",
		d.QuoteIdent(op.Table_), d.QuoteIdent(op.Name), d.TypeSQL(op.NewDefinition.Type))
	return sql + op.MySQLOptions.SQLSuffix(), nil
}

func (d *mysql) CreateIndexSQL(op *schema.CreateIndex) (string, error) {
	var b strings.Builder

	b.WriteString("CREATE ")
	// FULLTEXT and SPATIAL replace UNIQUE; they are index categories,
	// not access methods.
	switch op.IndexType {
	case schema.IndexFulltext:
		b.WriteString("FULLTEXT ")
	case schema.IndexSpatial:
		b.WriteString("SPATIAL ")
	default:
		if op.Unique {
			b.WriteString("UNIQUE ")
		}
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

	// No partial index support; Where is ignored.
	b.WriteString(op.MySQLOptions.SQLSuffix())

	return b.String(), nil
}

func (d *mysql) DropIndexSQL(op *schema.DropIndex) (string, error) {
	return fmt.Sprintf("DROP INDEX %s ON %s",
		d.QuoteIdent(op.Name), d.QuoteIdent(op.Table_)), nil
}

func (d *mysql) AddConstraintSQL(op *schema.AddConstraint) (string, error) {
	return buildAddConstraintSQL(op, d.QuoteIdent), nil
}

func (d *mysql) DropConstraintSQL(op *schema.DropConstraint) (string, error) {
	return buildDropConstraintSQL(op, d.QuoteIdent), nil
}

func (d *mysql) AlterTableCommentSQL(op *schema.AlterTableComment) (string, error) {
	comment := ""
	if op.Comment != nil {
		comment = strings.ReplaceAll(*op.Comment, "'", "''")
	}
	return fmt.Sprintf("ALTER TABLE %s COMMENT='%s'", d.QuoteIdent(op.Table_), comment), nil
}

func (d *mysql) AlterUniqueTogetherSQL(op *schema.AlterUniqueTogether) (string, error) {
	return buildAlterUniqueTogetherSQL(op, d.QuoteIdent), nil
}

func (d *mysql) CreateInheritedTableSQL(op *schema.CreateInheritedTable) (string, error) {
	return buildCreateInheritedTableSQL(op, d.QuoteIdent, d.columnDefSQL), nil
}

func (d *mysql) AddDiscriminatorColumnSQL(op *schema.AddDiscriminatorColumn) (string, error) {
	return buildAddDiscriminatorColumnSQL(op, d.QuoteIdent), nil
}

func (d *mysql) RawSQLFor(op *schema.RunSQL) (string, error) {
	if op.MySQL != "" {
		return op.MySQL, nil
	}
	return op.SQL, nil
}

// -----------------------------------------------------------------------------
// Helper methods
// -----------------------------------------------------------------------------

func (d *mysql) columnDefSQL(col *schema.ColumnDefinition, suppressPK bool) string {
	return buildColumnDefSQL(col, ColumnDefConfig{
		QuoteIdent:         d.QuoteIdent,
		TypeSQL:            d.TypeSQL,
		AutoInc:            AutoIncrementKeyword,
		SuppressPrimaryKey: suppressPK,
	})
}
