package migrate

import (
	"fmt"

	"github.com/veldtdb/veldt/internal/merr"
	"github.com/veldtdb/veldt/internal/schema"
)

// Apply projects one operation onto the state for the given app.
// It mutates exactly the tables the operation names and returns a
// projection error when the operation references an unknown model or
// recreates an existing one. Operations that are not part of the field
// model (indexes, literal constraints, comments, raw SQL) are state
// no-ops.
func (s *ProjectState) Apply(app string, op schema.Operation) error {
	switch o := op.(type) {
	case *schema.CreateTable:
		if s.HasModel(app, o.Name) {
			return merr.New(merr.ErrModelExists, "table already exists").
				With("app", app).
				WithTable(o.Name)
		}
		s.addModel(&ModelState{
			App:         app,
			Table:       o.Name,
			Fields:      append([]schema.ColumnDefinition(nil), o.Columns...),
			Constraints: append([]schema.Constraint(nil), o.Constraints...),
		})

	case *schema.CreateInheritedTable:
		if s.HasModel(app, o.Name) {
			return merr.New(merr.ErrModelExists, "table already exists").
				With("app", app).
				WithTable(o.Name)
		}
		fields := []schema.ColumnDefinition{{
			Name: o.JoinColumn,
			Type: schema.Custom(fmt.Sprintf("INTEGER REFERENCES %s(id)", o.BaseTable)),
		}}
		fields = append(fields, o.Columns...)
		s.addModel(&ModelState{
			App:             app,
			Table:           o.Name,
			Fields:          fields,
			BaseModel:       o.BaseTable,
			InheritanceType: InheritanceJoined,
		})

	case *schema.AddDiscriminatorColumn:
		m, err := s.requireModel(app, o.Table_)
		if err != nil {
			return err
		}
		m.setField(schema.ColumnDefinition{
			Name:    o.ColumnName,
			Type:    schema.VarChar(50),
			Default: "'" + o.DefaultValue + "'",
		})
		m.DiscriminatorColumn = o.ColumnName
		m.InheritanceType = InheritanceSingle

	case *schema.DropTable:
		if _, err := s.requireModel(app, o.Name); err != nil {
			return err
		}
		s.removeModel(app, o.Name)

	case *schema.RenameTable:
		if o.IsNoop() {
			return nil
		}
		m, err := s.requireModel(app, o.OldName)
		if err != nil {
			return err
		}
		s.removeModel(app, o.OldName)
		m.Table = o.NewName
		s.addModel(m)

	case *schema.AddColumn:
		m, err := s.requireModel(app, o.Table_)
		if err != nil {
			return err
		}
		if m.HasField(o.Column.Name) {
			return merr.New(merr.ErrStateProjection, "column already exists").
				With("app", app).
				WithTable(o.Table_).
				WithColumn(o.Column.Name)
		}
		m.setField(o.Column)

	case *schema.AlterColumn:
		m, err := s.requireModel(app, o.Table_)
		if err != nil {
			return err
		}
		if !m.HasField(o.Name) {
			return merr.New(merr.ErrStateProjection, "column does not exist").
				With("app", app).
				WithTable(o.Table_).
				WithColumn(o.Name)
		}
		def := o.NewDefinition
		def.Name = o.Name
		m.setField(def)

	case *schema.DropColumn:
		m, err := s.requireModel(app, o.Table_)
		if err != nil {
			return err
		}
		if !m.removeField(o.Name) {
			return merr.New(merr.ErrStateProjection, "column does not exist").
				With("app", app).
				WithTable(o.Table_).
				WithColumn(o.Name)
		}

	case *schema.RenameColumn:
		m, err := s.requireModel(app, o.Table_)
		if err != nil {
			return err
		}
		if !m.renameField(o.OldName, o.NewName) {
			return merr.New(merr.ErrStateProjection, "column does not exist").
				With("app", app).
				WithTable(o.Table_).
				WithColumn(o.OldName)
		}

	case *schema.AlterUniqueTogether:
		m, err := s.requireModel(app, o.Table_)
		if err != nil {
			return err
		}
		// Lax about columns only: recorded even when the referenced
		// columns are not all present.
		m.UniqueTogether = o.UniqueTogether

	case *schema.AlterModelOptions:
		m, err := s.requireModel(app, o.Table_)
		if err != nil {
			return err
		}
		m.Options = o.Options

	case *schema.CreateIndex, *schema.DropIndex,
		*schema.AddConstraint, *schema.DropConstraint,
		*schema.AlterTableComment, *schema.RunSQL:
		// Not part of the field model.

	default:
		return merr.Newf(merr.ErrStateProjection, "no state projection for operation type %s", op.Type())
	}

	return nil
}

func (s *ProjectState) requireModel(app, table string) (*ModelState, error) {
	m := s.GetModel(app, table)
	if m == nil {
		return nil, merr.New(merr.ErrUnknownModel, "table does not exist").
			With("app", app).
			WithTable(table)
	}
	return m, nil
}
