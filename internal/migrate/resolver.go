package migrate

import (
	"github.com/veldtdb/veldt/internal/merr"
)

// Resolver turns an unordered set of migrations into a single total
// apply order. Resolution is pure: given the same migration set and
// environment snapshot it always produces the same plan, and no DDL
// runs until the whole graph has validated.
type Resolver struct {
	env *Env
}

// NewResolver returns a resolver bound to the given environment.
func NewResolver(env *Env) *Resolver {
	if env == nil {
		env = &Env{}
	}
	return &Resolver{env: env}
}

// Resolve produces the apply order for the migration set. Phases:
// bind swappable dependencies, evaluate optional dependencies, merge
// squash chains, then topologically sort with (app, name) lexical
// tie-break. All validation errors (duplicate id, missing dependency,
// cycle, invalid config) are fatal and reported before execution.
func (r *Resolver) Resolve(migrations []*Migration) ([]*Migration, error) {
	byID := make(map[string]*Migration, len(migrations))
	for _, m := range migrations {
		if err := m.Validate(); err != nil {
			return nil, err
		}
		if _, dup := byID[m.ID()]; dup {
			return nil, merr.New(merr.ErrDuplicateMigration, "duplicate migration id").
				WithMigration(m.App, m.Name)
		}
		byID[m.ID()] = m
	}

	// Bind swappable and optional dependencies into hard edges.
	edges := make(map[string][]string, len(byID))
	for id, m := range byID {
		deps := make([]string, 0, len(m.Dependencies))
		for _, k := range m.Dependencies {
			deps = append(deps, k.String())
		}
		for _, swap := range m.SwappableDependencies {
			k, err := swap.Resolve(r.env)
			if err != nil {
				return nil, merr.Wrap(merr.ErrUnresolvedSwappable, err, "cannot bind swappable dependency").
					WithMigration(m.App, m.Name)
			}
			deps = append(deps, k.String())
		}
		for _, opt := range m.OptionalDependencies {
			if k, ok := opt.Resolve(r.env); ok {
				deps = append(deps, k.String())
			}
		}
		edges[id] = deps
	}

	// Merge squash chains: drop replaced migrations, redirect edges at
	// them to the squashing migration, and union the replaced set's
	// external dependencies into the squash's own.
	replacedBy := make(map[string]string)
	for id, m := range byID {
		for _, k := range m.Replaces {
			replacedBy[k.String()] = id
		}
	}
	if len(replacedBy) > 0 {
		for replaced, squash := range replacedBy {
			if replacedDeps, present := edges[replaced]; present {
				edges[squash] = append(edges[squash], replacedDeps...)
				delete(edges, replaced)
				delete(byID, replaced)
			}
		}
		for id, deps := range edges {
			redirected := deps[:0]
			seen := make(map[string]bool, len(deps))
			for _, dep := range deps {
				if squash, ok := replacedBy[dep]; ok {
					dep = squash
				}
				// Self-edges appear when a squash inherited a
				// dependency on a migration it replaces.
				if dep == id || seen[dep] {
					continue
				}
				seen[dep] = true
				redirected = append(redirected, dep)
			}
			edges[id] = redirected
		}
	}

	// Every remaining edge must target a known migration.
	for id, deps := range edges {
		for _, dep := range deps {
			if _, ok := byID[dep]; !ok {
				m := byID[id]
				return nil, merr.New(merr.ErrMissingDependency, "dependency does not exist").
					WithMigration(m.App, m.Name).
					With("dependency", dep)
			}
		}
	}

	order, err := topoSort(edges)
	if err != nil {
		return nil, err
	}

	plan := make([]*Migration, len(order))
	for i, id := range order {
		plan[i] = byID[id]
	}
	return plan, nil
}
