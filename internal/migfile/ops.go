package migfile

import (
	"gopkg.in/yaml.v3"

	"github.com/veldtdb/veldt/internal/merr"
	"github.com/veldtdb/veldt/internal/schema"
)

// operationDoc is the YAML shape of one operation. The op field picks
// the variant; the rest of the fields are variant-specific.
type operationDoc struct {
	Op string `yaml:"op"`

	Table   string `yaml:"table,omitempty"`
	Name    string `yaml:"name,omitempty"`
	OldName string `yaml:"old_name,omitempty"`
	NewName string `yaml:"new_name,omitempty"`

	Columns     []columnDoc     `yaml:"columns,omitempty"`
	Column      *columnDoc      `yaml:"column,omitempty"`
	OldColumn   *columnDoc      `yaml:"old_column,omitempty"`
	Constraints []constraintDoc `yaml:"constraints,omitempty"`

	WithoutRowid bool           `yaml:"without_rowid,omitempty"`
	Partition    *partitionDoc  `yaml:"partition,omitempty"`
	Interleave   *interleaveDoc `yaml:"interleave_in_parent,omitempty"`

	Unique        bool     `yaml:"unique,omitempty"`
	IndexType     string   `yaml:"index_type,omitempty"`
	Where         string   `yaml:"where,omitempty"`
	Concurrently  bool     `yaml:"concurrently,omitempty"`
	Expressions   []string `yaml:"expressions,omitempty"`
	OperatorClass string   `yaml:"operator_class,omitempty"`

	Algorithm string `yaml:"algorithm,omitempty"`
	Lock      string `yaml:"lock,omitempty"`

	ConstraintSQL  string            `yaml:"constraint_sql,omitempty"`
	Comment        *string           `yaml:"comment,omitempty"`
	UniqueTogether [][]string        `yaml:"unique_together,omitempty"`
	Options        map[string]string `yaml:"options,omitempty"`

	BaseTable    string `yaml:"base_table,omitempty"`
	JoinColumn   string `yaml:"join_column,omitempty"`
	ColumnName   string `yaml:"column_name,omitempty"`
	DefaultValue string `yaml:"default_value,omitempty"`

	SQL      string `yaml:"sql,omitempty"`
	Postgres string `yaml:"postgres,omitempty"`
	MySQL    string `yaml:"mysql,omitempty"`
	SQLite   string `yaml:"sqlite,omitempty"`
}

type columnDoc struct {
	Name          string `yaml:"name"`
	Type          string `yaml:"type"`
	NotNull       bool   `yaml:"not_null,omitempty"`
	PrimaryKey    bool   `yaml:"primary_key,omitempty"`
	Unique        bool   `yaml:"unique,omitempty"`
	AutoIncrement bool   `yaml:"auto_increment,omitempty"`
	Default       string `yaml:"default,omitempty"`
}

// UnmarshalYAML accepts either a full column mapping or a bare string,
// so index operations can list columns as plain names.
func (d *columnDoc) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		d.Name = node.Value
		return nil
	}
	type plain columnDoc
	var p plain
	if err := node.Decode(&p); err != nil {
		return err
	}
	*d = columnDoc(p)
	return nil
}

type constraintDoc struct {
	Kind       string   `yaml:"kind"`
	Name       string   `yaml:"name"`
	Expression string   `yaml:"expression,omitempty"`
	Columns    []string `yaml:"columns,omitempty"`
	RefTable   string   `yaml:"ref_table,omitempty"`
	RefColumns []string `yaml:"ref_columns,omitempty"`
	OnDelete   string   `yaml:"on_delete,omitempty"`
	OnUpdate   string   `yaml:"on_update,omitempty"`
	Deferrable string   `yaml:"deferrable,omitempty"` // "", "immediate", "deferred"
}

type partitionDoc struct {
	Type       string            `yaml:"type"`
	Column     string            `yaml:"column"`
	Partitions []partitionDefDoc `yaml:"partitions,omitempty"`
}

type partitionDefDoc struct {
	Name     string   `yaml:"name"`
	LessThan string   `yaml:"less_than,omitempty"`
	In       []string `yaml:"in,omitempty"`
	Count    int      `yaml:"count,omitempty"`
}

type interleaveDoc struct {
	ParentTable   string   `yaml:"parent_table"`
	ParentColumns []string `yaml:"parent_columns,omitempty"`
}

func (d *operationDoc) mysqlOptions() schema.AlterTableOptions {
	return schema.AlterTableOptions{
		Algorithm: schema.MySQLAlgorithm(d.Algorithm),
		Lock:      schema.MySQLLock(d.Lock),
	}
}

func (d *operationDoc) toOperation() (schema.Operation, error) {
	switch d.Op {
	case "create_table":
		op := &schema.CreateTable{
			TableOp:      schema.TableOp{Name: d.Table},
			Columns:      decodeColumns(d.Columns),
			WithoutRowid: d.WithoutRowid,
		}
		for _, c := range d.Constraints {
			con, err := c.toConstraint()
			if err != nil {
				return nil, err
			}
			op.Constraints = append(op.Constraints, con)
		}
		if d.Partition != nil {
			op.Partition = d.Partition.toOptions()
		}
		if d.Interleave != nil {
			op.InterleaveInParent = &schema.InterleaveSpec{
				ParentTable:   d.Interleave.ParentTable,
				ParentColumns: d.Interleave.ParentColumns,
			}
		}
		return op, nil

	case "drop_table":
		return &schema.DropTable{TableOp: schema.TableOp{Name: d.Table}}, nil

	case "rename_table":
		return &schema.RenameTable{OldName: d.OldName, NewName: d.NewName}, nil

	case "add_column":
		if d.Column == nil {
			return nil, merr.New(merr.ErrMigrationFile, "add_column requires a column")
		}
		return &schema.AddColumn{
			TableRef:     schema.TableRef{Table_: d.Table},
			Column:       d.Column.toDefinition(),
			MySQLOptions: d.mysqlOptions(),
		}, nil

	case "drop_column":
		return &schema.DropColumn{TableRef: schema.TableRef{Table_: d.Table}, Name: d.Name}, nil

	case "rename_column":
		return &schema.RenameColumn{
			TableRef: schema.TableRef{Table_: d.Table},
			OldName:  d.OldName,
			NewName:  d.NewName,
		}, nil

	case "alter_column":
		if d.Column == nil {
			return nil, merr.New(merr.ErrMigrationFile, "alter_column requires a column")
		}
		op := &schema.AlterColumn{
			TableRef:      schema.TableRef{Table_: d.Table},
			Name:          d.Name,
			NewDefinition: d.Column.toDefinition(),
			MySQLOptions:  d.mysqlOptions(),
		}
		if op.Name == "" {
			op.Name = op.NewDefinition.Name
		}
		if d.OldColumn != nil {
			old := d.OldColumn.toDefinition()
			op.OldDefinition = &old
		}
		return op, nil

	case "create_index":
		return &schema.CreateIndex{
			TableRef:      schema.TableRef{Table_: d.Table},
			Name:          d.Name,
			Columns:       columnsOf(d.Columns),
			Unique:        d.Unique,
			IndexType:     schema.IndexType(d.IndexType),
			Where:         d.Where,
			Concurrently:  d.Concurrently,
			Expressions:   d.Expressions,
			OperatorClass: d.OperatorClass,
			MySQLOptions:  d.mysqlOptions(),
		}, nil

	case "drop_index":
		return &schema.DropIndex{TableRef: schema.TableRef{Table_: d.Table}, Name: d.Name}, nil

	case "add_constraint":
		return &schema.AddConstraint{
			TableRef:      schema.TableRef{Table_: d.Table},
			ConstraintSQL: d.ConstraintSQL,
		}, nil

	case "drop_constraint":
		return &schema.DropConstraint{TableRef: schema.TableRef{Table_: d.Table}, Name: d.Name}, nil

	case "alter_table_comment":
		return &schema.AlterTableComment{
			TableRef: schema.TableRef{Table_: d.Table},
			Comment:  d.Comment,
		}, nil

	case "alter_unique_together":
		return &schema.AlterUniqueTogether{
			TableRef:       schema.TableRef{Table_: d.Table},
			UniqueTogether: d.UniqueTogether,
		}, nil

	case "alter_model_options":
		return &schema.AlterModelOptions{
			TableRef: schema.TableRef{Table_: d.Table},
			Options:  d.Options,
		}, nil

	case "create_inherited_table":
		return &schema.CreateInheritedTable{
			TableOp:    schema.TableOp{Name: d.Table},
			Columns:    decodeColumns(d.Columns),
			BaseTable:  d.BaseTable,
			JoinColumn: d.JoinColumn,
		}, nil

	case "add_discriminator_column":
		return &schema.AddDiscriminatorColumn{
			TableRef:     schema.TableRef{Table_: d.Table},
			ColumnName:   d.ColumnName,
			DefaultValue: d.DefaultValue,
		}, nil

	case "run_sql":
		return &schema.RunSQL{
			SQL:      d.SQL,
			Postgres: d.Postgres,
			MySQL:    d.MySQL,
			SQLite:   d.SQLite,
		}, nil

	default:
		return nil, merr.New(merr.ErrMigrationFile, "unknown operation").
			With("op", d.Op).
			WithSuggestion(d.Op, opNames)
	}
}

// opNames lists every operation toOperation accepts, for typo hints.
var opNames = []string{
	"create_table", "drop_table", "rename_table",
	"add_column", "drop_column", "rename_column", "alter_column",
	"create_index", "drop_index",
	"add_constraint", "drop_constraint",
	"alter_table_comment", "alter_unique_together", "alter_model_options",
	"create_inherited_table", "add_discriminator_column",
	"run_sql",
}

func fromOperation(op schema.Operation) (*operationDoc, error) {
	switch o := op.(type) {
	case *schema.CreateTable:
		doc := &operationDoc{
			Op:           "create_table",
			Table:        o.Name,
			Columns:      encodeColumns(o.Columns),
			WithoutRowid: o.WithoutRowid,
		}
		for _, con := range o.Constraints {
			cd, err := fromConstraint(con)
			if err != nil {
				return nil, err
			}
			doc.Constraints = append(doc.Constraints, cd)
		}
		if o.Partition != nil {
			doc.Partition = fromPartition(o.Partition)
		}
		if o.InterleaveInParent != nil {
			doc.Interleave = &interleaveDoc{
				ParentTable:   o.InterleaveInParent.ParentTable,
				ParentColumns: o.InterleaveInParent.ParentColumns,
			}
		}
		return doc, nil

	case *schema.DropTable:
		return &operationDoc{Op: "drop_table", Table: o.Name}, nil

	case *schema.RenameTable:
		return &operationDoc{Op: "rename_table", OldName: o.OldName, NewName: o.NewName}, nil

	case *schema.AddColumn:
		col := encodeColumn(o.Column)
		return &operationDoc{
			Op:        "add_column",
			Table:     o.Table(),
			Column:    &col,
			Algorithm: string(o.MySQLOptions.Algorithm),
			Lock:      string(o.MySQLOptions.Lock),
		}, nil

	case *schema.DropColumn:
		return &operationDoc{Op: "drop_column", Table: o.Table(), Name: o.Name}, nil

	case *schema.RenameColumn:
		return &operationDoc{
			Op:      "rename_column",
			Table:   o.Table(),
			OldName: o.OldName,
			NewName: o.NewName,
		}, nil

	case *schema.AlterColumn:
		col := encodeColumn(o.NewDefinition)
		doc := &operationDoc{
			Op:        "alter_column",
			Table:     o.Table(),
			Name:      o.Name,
			Column:    &col,
			Algorithm: string(o.MySQLOptions.Algorithm),
			Lock:      string(o.MySQLOptions.Lock),
		}
		if o.OldDefinition != nil {
			old := encodeColumn(*o.OldDefinition)
			doc.OldColumn = &old
		}
		return doc, nil

	case *schema.CreateIndex:
		doc := &operationDoc{
			Op:            "create_index",
			Table:         o.Table(),
			Name:          o.Name,
			Unique:        o.Unique,
			IndexType:     string(o.IndexType),
			Where:         o.Where,
			Concurrently:  o.Concurrently,
			Expressions:   o.Expressions,
			OperatorClass: o.OperatorClass,
			Algorithm:     string(o.MySQLOptions.Algorithm),
			Lock:          string(o.MySQLOptions.Lock),
		}
		for _, col := range o.Columns {
			doc.Columns = append(doc.Columns, columnDoc{Name: col})
		}
		return doc, nil

	case *schema.DropIndex:
		return &operationDoc{Op: "drop_index", Table: o.Table(), Name: o.Name}, nil

	case *schema.AddConstraint:
		return &operationDoc{Op: "add_constraint", Table: o.Table(), ConstraintSQL: o.ConstraintSQL}, nil

	case *schema.DropConstraint:
		return &operationDoc{Op: "drop_constraint", Table: o.Table(), Name: o.Name}, nil

	case *schema.AlterTableComment:
		return &operationDoc{Op: "alter_table_comment", Table: o.Table(), Comment: o.Comment}, nil

	case *schema.AlterUniqueTogether:
		return &operationDoc{Op: "alter_unique_together", Table: o.Table(), UniqueTogether: o.UniqueTogether}, nil

	case *schema.AlterModelOptions:
		return &operationDoc{Op: "alter_model_options", Table: o.Table(), Options: o.Options}, nil

	case *schema.CreateInheritedTable:
		return &operationDoc{
			Op:         "create_inherited_table",
			Table:      o.Name,
			Columns:    encodeColumns(o.Columns),
			BaseTable:  o.BaseTable,
			JoinColumn: o.JoinColumn,
		}, nil

	case *schema.AddDiscriminatorColumn:
		return &operationDoc{
			Op:           "add_discriminator_column",
			Table:        o.Table(),
			ColumnName:   o.ColumnName,
			DefaultValue: o.DefaultValue,
		}, nil

	case *schema.RunSQL:
		return &operationDoc{
			Op:       "run_sql",
			SQL:      o.SQL,
			Postgres: o.Postgres,
			MySQL:    o.MySQL,
			SQLite:   o.SQLite,
		}, nil

	default:
		return nil, merr.New(merr.ErrMigrationFile, "operation cannot be serialized").
			With("type", op.Type().String())
	}
}

func decodeColumns(docs []columnDoc) []schema.ColumnDefinition {
	cols := make([]schema.ColumnDefinition, len(docs))
	for i, d := range docs {
		cols[i] = d.toDefinition()
	}
	return cols
}

func encodeColumns(cols []schema.ColumnDefinition) []columnDoc {
	docs := make([]columnDoc, len(cols))
	for i, c := range cols {
		docs[i] = encodeColumn(c)
	}
	return docs
}

// columnsOf extracts the names from an index column list, where only
// the name field is meaningful.
func columnsOf(docs []columnDoc) []string {
	if len(docs) == 0 {
		return nil
	}
	names := make([]string, len(docs))
	for i, d := range docs {
		names[i] = d.Name
	}
	return names
}

func (d columnDoc) toDefinition() schema.ColumnDefinition {
	return schema.ColumnDefinition{
		Name:          d.Name,
		Type:          ParseFieldType(d.Type),
		NotNull:       d.NotNull,
		PrimaryKey:    d.PrimaryKey,
		Unique:        d.Unique,
		AutoIncrement: d.AutoIncrement,
		Default:       d.Default,
	}
}

func encodeColumn(c schema.ColumnDefinition) columnDoc {
	return columnDoc{
		Name:          c.Name,
		Type:          FormatFieldType(c.Type),
		NotNull:       c.NotNull,
		PrimaryKey:    c.PrimaryKey,
		Unique:        c.Unique,
		AutoIncrement: c.AutoIncrement,
		Default:       c.Default,
	}
}

func (d constraintDoc) toConstraint() (schema.Constraint, error) {
	switch d.Kind {
	case "check":
		return &schema.CheckConstraint{Name: d.Name, Expression: d.Expression}, nil
	case "unique":
		return &schema.UniqueConstraint{Name: d.Name, Columns: d.Columns}, nil
	case "primary_key":
		return &schema.PrimaryKeyConstraint{Name: d.Name, Columns: d.Columns}, nil
	case "foreign_key":
		fk := &schema.ForeignKeyConstraint{
			Name:              d.Name,
			Columns:           d.Columns,
			ReferencedTable:   d.RefTable,
			ReferencedColumns: d.RefColumns,
			OnDelete:          schema.FKAction(d.OnDelete),
			OnUpdate:          schema.FKAction(d.OnUpdate),
		}
		switch d.Deferrable {
		case "":
		case "immediate":
			fk.Deferrable = schema.DeferrableImmediate
		case "deferred":
			fk.Deferrable = schema.DeferrableDeferred
		default:
			return nil, merr.New(merr.ErrMigrationFile, `deferrable must be "immediate" or "deferred"`).
				With("value", d.Deferrable)
		}
		return fk, nil
	default:
		return nil, merr.New(merr.ErrMigrationFile, "unknown constraint kind").
			With("kind", d.Kind)
	}
}

func fromConstraint(c schema.Constraint) (constraintDoc, error) {
	switch con := c.(type) {
	case *schema.CheckConstraint:
		return constraintDoc{Kind: "check", Name: con.Name, Expression: con.Expression}, nil
	case *schema.UniqueConstraint:
		return constraintDoc{Kind: "unique", Name: con.Name, Columns: con.Columns}, nil
	case *schema.PrimaryKeyConstraint:
		return constraintDoc{Kind: "primary_key", Name: con.Name, Columns: con.Columns}, nil
	case *schema.ForeignKeyConstraint:
		doc := constraintDoc{
			Kind:       "foreign_key",
			Name:       con.Name,
			Columns:    con.Columns,
			RefTable:   con.ReferencedTable,
			RefColumns: con.ReferencedColumns,
			OnDelete:   string(con.OnDelete),
			OnUpdate:   string(con.OnUpdate),
		}
		switch con.Deferrable {
		case schema.DeferrableImmediate:
			doc.Deferrable = "immediate"
		case schema.DeferrableDeferred:
			doc.Deferrable = "deferred"
		}
		return doc, nil
	default:
		return constraintDoc{}, merr.New(merr.ErrMigrationFile, "constraint cannot be serialized").
			With("constraint", c.ConstraintName())
	}
}

func (d *partitionDoc) toOptions() *schema.PartitionOptions {
	opts := &schema.PartitionOptions{
		Type:   schema.PartitionType(d.Type),
		Column: d.Column,
	}
	for _, p := range d.Partitions {
		opts.Partitions = append(opts.Partitions, schema.PartitionDef{
			Name:     p.Name,
			LessThan: p.LessThan,
			In:       p.In,
			Count:    p.Count,
		})
	}
	return opts
}

func fromPartition(p *schema.PartitionOptions) *partitionDoc {
	doc := &partitionDoc{Type: string(p.Type), Column: p.Column}
	for _, def := range p.Partitions {
		doc.Partitions = append(doc.Partitions, partitionDefDoc{
			Name:     def.Name,
			LessThan: def.LessThan,
			In:       def.In,
			Count:    def.Count,
		})
	}
	return doc
}
