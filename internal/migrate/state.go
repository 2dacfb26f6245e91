// Package migrate implements the migration model: project state
// projection, migration metadata, dependency resolution, and apply
// ordering across apps.
package migrate

import (
	"sort"

	"github.com/veldtdb/veldt/internal/schema"
)

// InheritanceType classifies how a model relates to its base model.
type InheritanceType string

const (
	// InheritanceJoined is joined-table inheritance: the child table
	// carries a join column referencing the base table.
	InheritanceJoined InheritanceType = "joined_table"
	// InheritanceSingle is single-table inheritance: one table holds
	// every subtype, disambiguated by a discriminator column.
	InheritanceSingle InheritanceType = "single_table"
)

// ModelState is the in-memory snapshot of one table. Field order is
// preserved; it matches the order columns were added.
type ModelState struct {
	App   string
	Table string

	Fields      []schema.ColumnDefinition
	Constraints []schema.Constraint

	// Metadata recorded by AlterUniqueTogether / AlterModelOptions.
	UniqueTogether [][]string
	Options        map[string]string

	// Inheritance bookkeeping.
	BaseModel           string
	InheritanceType     InheritanceType
	DiscriminatorColumn string
}

// FieldNames returns the column names in declaration order.
func (m *ModelState) FieldNames() []string {
	names := make([]string, len(m.Fields))
	for i, f := range m.Fields {
		names[i] = f.Name
	}
	return names
}

// HasField reports whether the model has a column with the given name.
func (m *ModelState) HasField(name string) bool {
	return m.fieldIndex(name) >= 0
}

// Field returns the column definition with the given name.
func (m *ModelState) Field(name string) (schema.ColumnDefinition, bool) {
	if i := m.fieldIndex(name); i >= 0 {
		return m.Fields[i], true
	}
	return schema.ColumnDefinition{}, false
}

func (m *ModelState) fieldIndex(name string) int {
	for i := range m.Fields {
		if m.Fields[i].Name == name {
			return i
		}
	}
	return -1
}

// setField replaces the column with the same name, or appends it.
func (m *ModelState) setField(col schema.ColumnDefinition) {
	if i := m.fieldIndex(col.Name); i >= 0 {
		m.Fields[i] = col
		return
	}
	m.Fields = append(m.Fields, col)
}

// removeField deletes the named column preserving order.
func (m *ModelState) removeField(name string) bool {
	i := m.fieldIndex(name)
	if i < 0 {
		return false
	}
	m.Fields = append(m.Fields[:i], m.Fields[i+1:]...)
	return true
}

// renameField changes a column's name in place, keeping its position.
func (m *ModelState) renameField(oldName, newName string) bool {
	i := m.fieldIndex(oldName)
	if i < 0 {
		return false
	}
	m.Fields[i].Name = newName
	return true
}

// Clone returns a deep copy of the model state.
func (m *ModelState) Clone() *ModelState {
	out := *m
	out.Fields = append([]schema.ColumnDefinition(nil), m.Fields...)
	out.Constraints = append([]schema.Constraint(nil), m.Constraints...)
	if m.UniqueTogether != nil {
		out.UniqueTogether = make([][]string, len(m.UniqueTogether))
		for i, g := range m.UniqueTogether {
			out.UniqueTogether[i] = append([]string(nil), g...)
		}
	}
	if m.Options != nil {
		out.Options = make(map[string]string, len(m.Options))
		for k, v := range m.Options {
			out.Options[k] = v
		}
	}
	return &out
}

// ModelKey identifies a model within the project state.
type ModelKey struct {
	App   string
	Table string
}

// ProjectState is the authoritative in-memory snapshot of every known
// table across every app. It starts empty and is rebuilt by replaying
// each migration's operations in resolver order. It is owned by a
// single runner; never share one instance across goroutines.
type ProjectState struct {
	models map[ModelKey]*ModelState
}

// NewProjectState returns an empty project state.
func NewProjectState() *ProjectState {
	return &ProjectState{models: make(map[ModelKey]*ModelState)}
}

// GetModel returns the model for (app, table), or nil if unknown.
func (s *ProjectState) GetModel(app, table string) *ModelState {
	return s.models[ModelKey{App: app, Table: table}]
}

// HasModel reports whether (app, table) is known.
func (s *ProjectState) HasModel(app, table string) bool {
	_, ok := s.models[ModelKey{App: app, Table: table}]
	return ok
}

func (s *ProjectState) addModel(m *ModelState) {
	s.models[ModelKey{App: m.App, Table: m.Table}] = m
}

func (s *ProjectState) removeModel(app, table string) {
	delete(s.models, ModelKey{App: app, Table: table})
}

// Keys returns every model key sorted by (app, table).
func (s *ProjectState) Keys() []ModelKey {
	keys := make([]ModelKey, 0, len(s.models))
	for k := range s.models {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].App != keys[j].App {
			return keys[i].App < keys[j].App
		}
		return keys[i].Table < keys[j].Table
	})
	return keys
}

// Len returns the number of known models.
func (s *ProjectState) Len() int {
	return len(s.models)
}

// Clone returns a deep copy of the project state.
func (s *ProjectState) Clone() *ProjectState {
	out := NewProjectState()
	for k, m := range s.models {
		out.models[k] = m.Clone()
	}
	return out
}
