package migrate

import (
	"github.com/veldtdb/veldt/internal/merr"
	"github.com/veldtdb/veldt/internal/schema"
)

// Migration is an immutable, versioned, per-app bundle of schema
// operations plus dependency metadata. Migrations are append-only
// historical facts; once authored they are never edited, only replaced
// through a squash.
type Migration struct {
	App  string
	Name string

	Operations []schema.Operation

	// Dependencies are hard edges to (app, name) migrations that must
	// apply first.
	Dependencies []Key

	// SwappableDependencies resolve to hard edges through a settings
	// lookup at resolution time.
	SwappableDependencies []SwappableDependency

	// OptionalDependencies become hard edges only when their condition
	// holds at resolution time.
	OptionalDependencies []OptionalDependency

	// Replaces lists the migrations this one squashes.
	Replaces []Key

	// Atomic wraps all operations in one transaction. On by default.
	Atomic bool

	// Initial overrides initial-migration detection. nil means derive
	// from Dependencies.
	Initial *bool

	// StateOnly projects state without emitting DDL.
	StateOnly bool
	// DatabaseOnly emits DDL without projecting state.
	DatabaseOnly bool
}

// NewMigration returns a migration for app with the given name.
// Migrations are atomic unless switched off.
func NewMigration(app, name string) *Migration {
	return &Migration{App: app, Name: name, Atomic: true}
}

// ID returns the globally unique migration identity "app.name".
func (m *Migration) ID() string {
	return m.App + "." + m.Name
}

// Key returns the migration's (app, name) key.
func (m *Migration) Key() Key {
	return Key{App: m.App, Name: m.Name}
}

// AddOperation appends an operation. Returns m for chaining.
func (m *Migration) AddOperation(op schema.Operation) *Migration {
	m.Operations = append(m.Operations, op)
	return m
}

// AddDependency appends a hard dependency edge.
func (m *Migration) AddDependency(app, name string) *Migration {
	m.Dependencies = append(m.Dependencies, Key{App: app, Name: name})
	return m
}

// AddSwappableDependency appends a settings-bound dependency.
func (m *Migration) AddSwappableDependency(dep SwappableDependency) *Migration {
	m.SwappableDependencies = append(m.SwappableDependencies, dep)
	return m
}

// AddOptionalDependency appends a conditional dependency.
func (m *Migration) AddOptionalDependency(dep OptionalDependency) *Migration {
	m.OptionalDependencies = append(m.OptionalDependencies, dep)
	return m
}

// AddReplaces marks a migration as squashed into this one.
func (m *Migration) AddReplaces(app, name string) *Migration {
	m.Replaces = append(m.Replaces, Key{App: app, Name: name})
	return m
}

// SetAtomic controls transactional execution.
func (m *Migration) SetAtomic(atomic bool) *Migration {
	m.Atomic = atomic
	return m
}

// SetInitial explicitly marks or unmarks the migration as initial.
func (m *Migration) SetInitial(initial bool) *Migration {
	m.Initial = &initial
	return m
}

// SetStateOnly makes the migration project state without emitting DDL.
func (m *Migration) SetStateOnly(stateOnly bool) *Migration {
	m.StateOnly = stateOnly
	return m
}

// SetDatabaseOnly makes the migration emit DDL without projecting state.
func (m *Migration) SetDatabaseOnly(databaseOnly bool) *Migration {
	m.DatabaseOnly = databaseOnly
	return m
}

// IsInitial reports whether this is an app's first migration.
// An explicit Initial value always wins; otherwise a migration with no
// hard dependencies is initial.
func (m *Migration) IsInitial() bool {
	if m.Initial != nil {
		return *m.Initial
	}
	return len(m.Dependencies) == 0
}

// Validate checks the migration's configuration and every operation.
func (m *Migration) Validate() error {
	if m.App == "" {
		return merr.New(merr.ErrInvalidConfig, "migration app label is required")
	}
	if m.Name == "" {
		return merr.New(merr.ErrInvalidConfig, "migration name is required").
			With("app", m.App)
	}
	if m.StateOnly && m.DatabaseOnly {
		return merr.New(merr.ErrInvalidConfig, "state_only and database_only are mutually exclusive").
			WithMigration(m.App, m.Name)
	}
	for i, op := range m.Operations {
		if err := op.Validate(); err != nil {
			return merr.Wrap(merr.ErrInvalidOperation, err, "invalid operation").
				WithMigration(m.App, m.Name).
				WithOperationIndex(i)
		}
	}
	return nil
}
