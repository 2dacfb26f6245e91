package schema

import (
	"strings"

	"github.com/veldtdb/veldt/internal/merr"
)

// FKAction is a referential action for ON DELETE / ON UPDATE clauses.
type FKAction string

const (
	FKNoAction   FKAction = "NO ACTION"
	FKCascade    FKAction = "CASCADE"
	FKSetNull    FKAction = "SET NULL"
	FKSetDefault FKAction = "SET DEFAULT"
	FKRestrict   FKAction = "RESTRICT"
)

// validFKActions is the set of valid ON DELETE / ON UPDATE actions.
// The empty action means no clause is emitted.
var validFKActions = map[FKAction]bool{
	"":           true,
	FKNoAction:   true,
	FKCascade:    true,
	FKSetNull:    true,
	FKSetDefault: true,
	FKRestrict:   true,
}

// ValidateFKAction checks if the given action is a valid FK referential action.
func ValidateFKAction(action FKAction) error {
	upper := FKAction(strings.ToUpper(strings.TrimSpace(string(action))))
	if !validFKActions[upper] {
		return merr.Newf(merr.ErrInvalidOperation,
			"invalid foreign key action %q; must be one of: CASCADE, SET NULL, SET DEFAULT, RESTRICT, NO ACTION", action)
	}
	return nil
}

// Deferrable controls when Postgres checks a constraint within a transaction.
type Deferrable int

const (
	// NotDeferrable emits no deferral clause.
	NotDeferrable Deferrable = iota

	// DeferrableImmediate emits DEFERRABLE INITIALLY IMMEDIATE.
	DeferrableImmediate

	// DeferrableDeferred emits DEFERRABLE INITIALLY DEFERRED.
	DeferrableDeferred
)

// SQL returns the deferral clause, or the empty string for NotDeferrable.
func (d Deferrable) SQL() string {
	switch d {
	case DeferrableImmediate:
		return "DEFERRABLE INITIALLY IMMEDIATE"
	case DeferrableDeferred:
		return "DEFERRABLE INITIALLY DEFERRED"
	default:
		return ""
	}
}

// Constraint is a table-level constraint. Names must be unique per table.
type Constraint interface {
	// ConstraintName returns the constraint's name.
	ConstraintName() string

	// Validate checks that the constraint is well-formed.
	Validate() error
}

// CheckConstraint is a CHECK constraint over a SQL expression.
type CheckConstraint struct {
	Name       string
	Expression string
}

func (c *CheckConstraint) ConstraintName() string { return c.Name }

func (c *CheckConstraint) Validate() error {
	if c.Name == "" {
		return merr.New(merr.ErrInvalidOperation, "check constraint requires a name")
	}
	if c.Expression == "" {
		return merr.New(merr.ErrInvalidOperation, "check constraint requires an expression").
			With("constraint", c.Name)
	}
	return nil
}

// UniqueConstraint is a multi-column UNIQUE constraint.
type UniqueConstraint struct {
	Name    string
	Columns []string
}

func (c *UniqueConstraint) ConstraintName() string { return c.Name }

func (c *UniqueConstraint) Validate() error {
	if c.Name == "" {
		return merr.New(merr.ErrInvalidOperation, "unique constraint requires a name")
	}
	if len(c.Columns) == 0 {
		return merr.New(merr.ErrInvalidOperation, "unique constraint requires at least one column").
			With("constraint", c.Name)
	}
	return nil
}

// PrimaryKeyConstraint is a composite primary key defined at the table level.
// Single-column primary keys are defined directly on the column.
type PrimaryKeyConstraint struct {
	Name    string
	Columns []string
}

func (c *PrimaryKeyConstraint) ConstraintName() string { return c.Name }

func (c *PrimaryKeyConstraint) Validate() error {
	if c.Name == "" {
		return merr.New(merr.ErrInvalidOperation, "primary key constraint requires a name")
	}
	if len(c.Columns) == 0 {
		return merr.New(merr.ErrInvalidOperation, "primary key constraint requires at least one column").
			With("constraint", c.Name)
	}
	return nil
}

// ForeignKeyConstraint is a multi-column foreign key.
type ForeignKeyConstraint struct {
	Name              string
	Columns           []string
	ReferencedTable   string
	ReferencedColumns []string
	OnDelete          FKAction
	OnUpdate          FKAction
	Deferrable        Deferrable
}

func (c *ForeignKeyConstraint) ConstraintName() string { return c.Name }

func (c *ForeignKeyConstraint) Validate() error {
	if c.Name == "" {
		return merr.New(merr.ErrInvalidOperation, "foreign key constraint requires a name")
	}
	if len(c.Columns) == 0 {
		return merr.New(merr.ErrInvalidOperation, "foreign key must have at least one column").
			With("constraint", c.Name)
	}
	if c.ReferencedTable == "" {
		return merr.New(merr.ErrInvalidOperation, "foreign key must reference a table").
			With("constraint", c.Name)
	}
	if len(c.ReferencedColumns) == 0 {
		return merr.New(merr.ErrInvalidOperation, "foreign key must reference at least one column").
			With("constraint", c.Name)
	}
	if len(c.Columns) != len(c.ReferencedColumns) {
		return merr.New(merr.ErrInvalidOperation, "foreign key column count must match referenced column count").
			With("constraint", c.Name).
			With("columns", len(c.Columns)).
			With("referenced_columns", len(c.ReferencedColumns))
	}
	if err := ValidateFKAction(c.OnDelete); err != nil {
		return err
	}
	return ValidateFKAction(c.OnUpdate)
}

// validateConstraints checks each constraint and rejects duplicate names.
func validateConstraints(constraints []Constraint) error {
	seen := make(map[string]bool)
	for _, con := range constraints {
		if err := con.Validate(); err != nil {
			return err
		}
		name := con.ConstraintName()
		if seen[name] {
			return merr.New(merr.ErrInvalidOperation, "duplicate constraint name").
				With("constraint", name)
		}
		seen[name] = true
	}
	return nil
}
