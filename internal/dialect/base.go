// This file contains shared helper functions used by all dialect implementations.
package dialect

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/veldtdb/veldt/internal/schema"
)

// QuoteIdentFunc is a function that quotes an identifier.
type QuoteIdentFunc func(name string) string

// bareIdentPattern matches identifiers that never need quoting.
var bareIdentPattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// quoteIfNeeded returns the identifier unchanged when it is a plain
// lowercase identifier, otherwise wraps it in the given quote character
// with embedded quotes doubled.
func quoteIfNeeded(name, quote string) string {
	if bareIdentPattern.MatchString(name) {
		return name
	}
	escaped := strings.ReplaceAll(name, quote, quote+quote)
	return quote + escaped + quote
}

// quoteStringLiteral renders a single-quoted SQL string literal.
func quoteStringLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// writeQuotedList writes comma-separated quoted identifiers to the builder.
func writeQuotedList(b *strings.Builder, items []string, quote QuoteIdentFunc) {
	for i, item := range items {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(quote(item))
	}
}

// quotedList returns comma-separated quoted identifiers.
func quotedList(items []string, quote QuoteIdentFunc) string {
	var b strings.Builder
	writeQuotedList(&b, items, quote)
	return b.String()
}

// genericTypeSQL returns the portable SQL spelling for a field type.
// Dialects override individual kinds on top of this.
func genericTypeSQL(ft schema.FieldType) string {
	return ft.String()
}

// AutoIncrementStyle selects how a dialect renders auto-incrementing
// integer columns.
type AutoIncrementStyle int

const (
	// AutoIncrementIdentity replaces the type with
	// "{TYPE} GENERATED BY DEFAULT AS IDENTITY" (PostgreSQL).
	AutoIncrementIdentity AutoIncrementStyle = iota
	// AutoIncrementKeyword appends " AUTO_INCREMENT" after the type (MySQL).
	AutoIncrementKeyword
	// AutoIncrementRowid renders "PRIMARY KEY AUTOINCREMENT" for primary
	// key columns (SQLite).
	AutoIncrementRowid
)

// integerKind reports whether the kind supports identity columns.
func integerKind(k schema.FieldKind) bool {
	return k == schema.KindInteger || k == schema.KindBigInteger || k == schema.KindSmallInteger
}

// ColumnDefConfig holds the callbacks and flags for buildColumnDefSQL.
type ColumnDefConfig struct {
	QuoteIdent QuoteIdentFunc
	TypeSQL    func(ft schema.FieldType) string
	AutoInc    AutoIncrementStyle
	// SuppressPrimaryKey omits per-column PRIMARY KEY, used when the
	// table declares a composite primary key constraint.
	SuppressPrimaryKey bool
}

// buildColumnDefSQL generates the SQL for one column definition.
// Clause order: name, type, NOT NULL, PRIMARY KEY, UNIQUE, DEFAULT.
func buildColumnDefSQL(col *schema.ColumnDefinition, cfg ColumnDefConfig) string {
	parts := []string{cfg.QuoteIdent(col.Name)}

	switch {
	case col.AutoIncrement && cfg.AutoInc == AutoIncrementIdentity && integerKind(col.Type.Kind):
		parts = append(parts, cfg.TypeSQL(col.Type)+" GENERATED BY DEFAULT AS IDENTITY")
	case col.AutoIncrement && cfg.AutoInc == AutoIncrementKeyword:
		parts = append(parts, cfg.TypeSQL(col.Type), "AUTO_INCREMENT")
	case col.AutoIncrement && cfg.AutoInc == AutoIncrementRowid && col.PrimaryKey && !cfg.SuppressPrimaryKey:
		// SQLite rowid alias: PRIMARY KEY must sit next to AUTOINCREMENT.
		parts = append(parts, cfg.TypeSQL(col.Type), "PRIMARY KEY AUTOINCREMENT")
		if col.Unique {
			parts = append(parts, "UNIQUE")
		}
		if col.Default != "" {
			parts = append(parts, "DEFAULT "+col.Default)
		}
		return strings.Join(parts, " ")
	default:
		parts = append(parts, cfg.TypeSQL(col.Type))
	}

	if col.NotNull {
		parts = append(parts, "NOT NULL")
	}
	if col.PrimaryKey && !cfg.SuppressPrimaryKey {
		parts = append(parts, "PRIMARY KEY")
	}
	if col.Unique {
		parts = append(parts, "UNIQUE")
	}
	if col.Default != "" {
		parts = append(parts, "DEFAULT "+col.Default)
	}

	return strings.Join(parts, " ")
}

// buildConstraintSQL renders a table-level constraint clause.
func buildConstraintSQL(c schema.Constraint, quote QuoteIdentFunc) string {
	var b strings.Builder

	switch v := c.(type) {
	case *schema.CheckConstraint:
		b.WriteString("CONSTRAINT ")
		b.WriteString(quote(v.Name))
		b.WriteString(" CHECK (")
		b.WriteString(v.Expression)
		b.WriteString(")")
	case *schema.UniqueConstraint:
		b.WriteString("CONSTRAINT ")
		b.WriteString(quote(v.Name))
		b.WriteString(" UNIQUE (")
		writeQuotedList(&b, v.Columns, quote)
		b.WriteString(")")
	case *schema.PrimaryKeyConstraint:
		b.WriteString("CONSTRAINT ")
		b.WriteString(quote(v.Name))
		b.WriteString(" PRIMARY KEY (")
		writeQuotedList(&b, v.Columns, quote)
		b.WriteString(")")
	case *schema.ForeignKeyConstraint:
		b.WriteString(buildForeignKeyConstraintSQL(v, quote))
	}

	return b.String()
}

// buildForeignKeyConstraintSQL generates a foreign key constraint clause.
func buildForeignKeyConstraintSQL(fk *schema.ForeignKeyConstraint, quote QuoteIdentFunc) string {
	var b strings.Builder

	if fk.Name != "" {
		b.WriteString("CONSTRAINT ")
		b.WriteString(quote(fk.Name))
		b.WriteString(" ")
	}

	b.WriteString("FOREIGN KEY (")
	writeQuotedList(&b, fk.Columns, quote)
	b.WriteString(") REFERENCES ")
	b.WriteString(quote(fk.ReferencedTable))
	b.WriteString(" (")
	writeQuotedList(&b, fk.ReferencedColumns, quote)
	b.WriteString(")")

	if fk.OnDelete != "" {
		b.WriteString(" ON DELETE ")
		b.WriteString(string(fk.OnDelete))
	}
	if fk.OnUpdate != "" {
		b.WriteString(" ON UPDATE ")
		b.WriteString(string(fk.OnUpdate))
	}
	if sql := fk.Deferrable.SQL(); sql != "" {
		b.WriteString(" ")
		b.WriteString(sql)
	}

	return b.String()
}

// compositePKColumns returns the primary key column names when two or
// more columns are marked primary key, nil otherwise.
func compositePKColumns(cols []schema.ColumnDefinition) []string {
	var pk []string
	for _, col := range cols {
		if col.PrimaryKey {
			pk = append(pk, col.Name)
		}
	}
	if len(pk) > 1 {
		return pk
	}
	return nil
}

// buildCreateTableSQL generates CREATE TABLE using the dialect's column
// renderer. A composite primary key (two or more PK columns) is emitted
// as a table-level "{table}_pkey" constraint with per-column PRIMARY KEY
// suppressed.
func buildCreateTableSQL(op *schema.CreateTable, quote QuoteIdentFunc, columnDef func(col *schema.ColumnDefinition, suppressPK bool) string) string {
	pkCols := compositePKColumns(op.Columns)
	suppressPK := pkCols != nil

	var parts []string
	for i := range op.Columns {
		parts = append(parts, "  "+columnDef(&op.Columns[i], suppressPK))
	}

	if suppressPK {
		parts = append(parts, fmt.Sprintf("  CONSTRAINT %s PRIMARY KEY (%s)",
			quote(op.Name+"_pkey"), quotedList(pkCols, quote)))
	}

	for _, c := range op.Constraints {
		parts = append(parts, "  "+buildConstraintSQL(c, quote))
	}

	return fmt.Sprintf("CREATE TABLE %s (\n%s\n)", quote(op.Name), strings.Join(parts, ",\n"))
}

// buildCreateInheritedTableSQL generates CREATE TABLE for a joined-table
// inheritance child. The join column comes first and references the base
// table's id column.
func buildCreateInheritedTableSQL(op *schema.CreateInheritedTable, quote QuoteIdentFunc, columnDef func(col *schema.ColumnDefinition, suppressPK bool) string) string {
	parts := []string{fmt.Sprintf("  %s INTEGER REFERENCES %s(id)",
		quote(op.JoinColumn), quote(op.BaseTable))}
	for i := range op.Columns {
		parts = append(parts, "  "+columnDef(&op.Columns[i], false))
	}
	return fmt.Sprintf("CREATE TABLE %s (\n%s\n)", quote(op.Name), strings.Join(parts, ",\n"))
}

// buildDropTableSQL generates DROP TABLE SQL.
func buildDropTableSQL(op *schema.DropTable, quote QuoteIdentFunc) string {
	return "DROP TABLE " + quote(op.Name)
}

// buildRenameTableSQL generates ALTER TABLE RENAME TO SQL.
// Self-renames produce no SQL.
func buildRenameTableSQL(op *schema.RenameTable, quote QuoteIdentFunc) string {
	if op.IsNoop() {
		return ""
	}
	return fmt.Sprintf("ALTER TABLE %s RENAME TO %s", quote(op.OldName), quote(op.NewName))
}

// buildAddColumnSQL generates ALTER TABLE ADD COLUMN SQL.
func buildAddColumnSQL(op *schema.AddColumn, quote QuoteIdentFunc, columnDef func(col *schema.ColumnDefinition, suppressPK bool) string) string {
	return fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s",
		quote(op.Table_), columnDef(&op.Column, false))
}

// buildDropColumnSQL generates ALTER TABLE DROP COLUMN SQL.
func buildDropColumnSQL(op *schema.DropColumn, quote QuoteIdentFunc) string {
	return fmt.Sprintf("ALTER TABLE %s DROP COLUMN %s", quote(op.Table_), quote(op.Name))
}

// buildRenameColumnSQL generates ALTER TABLE RENAME COLUMN SQL.
// Identical across PostgreSQL, MySQL 8+, and SQLite 3.25+.
func buildRenameColumnSQL(op *schema.RenameColumn, quote QuoteIdentFunc) string {
	return fmt.Sprintf("ALTER TABLE %s RENAME COLUMN %s TO %s",
		quote(op.Table_), quote(op.OldName), quote(op.NewName))
}

// buildAddConstraintSQL generates ALTER TABLE ADD from a literal fragment.
func buildAddConstraintSQL(op *schema.AddConstraint, quote QuoteIdentFunc) string {
	return fmt.Sprintf("ALTER TABLE %s ADD %s", quote(op.Table_), op.ConstraintSQL)
}

// buildDropConstraintSQL generates ALTER TABLE DROP CONSTRAINT SQL.
func buildDropConstraintSQL(op *schema.DropConstraint, quote QuoteIdentFunc) string {
	return fmt.Sprintf("ALTER TABLE %s DROP CONSTRAINT %s", quote(op.Table_), quote(op.Name))
}

// buildAlterUniqueTogetherSQL generates one ADD CONSTRAINT per column
// group, named "{table}_{i}_uniq". Statements are joined with ";\n" so
// the runner can split them.
func buildAlterUniqueTogetherSQL(op *schema.AlterUniqueTogether, quote QuoteIdentFunc) string {
	var stmts []string
	for i, group := range op.UniqueTogether {
		name := fmt.Sprintf("%s_%d_uniq", op.Table_, i)
		stmts = append(stmts, fmt.Sprintf("ALTER TABLE %s ADD CONSTRAINT %s UNIQUE (%s)",
			quote(op.Table_), quote(name), quotedList(group, quote)))
	}
	return strings.Join(stmts, ";\n")
}

// buildAddDiscriminatorColumnSQL generates the discriminator ADD COLUMN.
func buildAddDiscriminatorColumnSQL(op *schema.AddDiscriminatorColumn, quote QuoteIdentFunc) string {
	return fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s VARCHAR(50) DEFAULT %s",
		quote(op.Table_), quote(op.ColumnName), quoteStringLiteral(op.DefaultValue))
}

// indexName returns the explicit index name or generates one:
// "uniq_{table}_{cols}" for unique indexes, "idx_{table}_{cols}"
// otherwise, with "expr" standing in for expression indexes.
func indexName(op *schema.CreateIndex) string {
	if op.Name != "" {
		return op.Name
	}
	suffix := "expr"
	if len(op.Expressions) == 0 {
		suffix = strings.Join(op.Columns, "_")
	}
	if op.Unique {
		return "uniq_" + op.Table_ + "_" + suffix
	}
	return "idx_" + op.Table_ + "_" + suffix
}
