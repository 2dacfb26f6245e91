package migrate

import (
	"strings"

	"github.com/veldtdb/veldt/internal/merr"
)

// Key identifies a migration by (app, name).
type Key struct {
	App  string
	Name string
}

// String returns the "app.name" form used in error messages and the
// applied-migration ledger.
func (k Key) String() string {
	return k.App + "." + k.Name
}

// Env is the external settings snapshot the resolver binds against.
// It is passed in explicitly; the resolver holds no global state.
type Env struct {
	// Settings is the configuration table for swappable dependencies
	// and SettingEnabled conditions.
	Settings map[string]string

	// InstalledApps is the set of installed app labels.
	InstalledApps map[string]bool

	// Features is the feature flag table for FeatureEnabled conditions.
	Features map[string]bool
}

// Setting returns a setting value and whether it is present.
func (e *Env) Setting(key string) (string, bool) {
	v, ok := e.Settings[key]
	return v, ok
}

// AppInstalled reports whether the app label is installed.
func (e *Env) AppInstalled(label string) bool {
	return e.InstalledApps[label]
}

// FeatureEnabled reports whether the feature flag is on.
func (e *Env) FeatureEnabled(name string) bool {
	return e.Features[name]
}

// SwappableDependency is a dependency edge whose target app is chosen
// through a setting rather than hardcoded. The setting value is either
// "app.Model" or a bare app label; only the app part participates in
// edge resolution.
type SwappableDependency struct {
	SettingKey    string
	DefaultApp    string
	DefaultModel  string
	MigrationName string
}

// Resolve binds the dependency against the environment. An absent
// setting falls back to the default app; an absent setting with no
// default is an UnresolvedSwappable error.
func (s SwappableDependency) Resolve(env *Env) (Key, error) {
	value, ok := env.Setting(s.SettingKey)
	if !ok || value == "" {
		if s.DefaultApp == "" {
			return Key{}, merr.New(merr.ErrUnresolvedSwappable, "setting absent and no default app").
				With("setting_key", s.SettingKey)
		}
		return Key{App: s.DefaultApp, Name: s.MigrationName}, nil
	}
	app := value
	if i := strings.IndexByte(value, '.'); i >= 0 {
		app = value[:i]
	}
	return Key{App: app, Name: s.MigrationName}, nil
}

// ConditionKind selects the predicate an optional dependency checks.
type ConditionKind int

const (
	// CondAppInstalled holds when the named app is installed.
	CondAppInstalled ConditionKind = iota
	// CondSettingEnabled holds when the named setting has a truthy value.
	CondSettingEnabled
	// CondFeatureEnabled holds when the named feature flag is on.
	CondFeatureEnabled
)

// DependencyCondition gates an optional dependency edge.
type DependencyCondition struct {
	Kind  ConditionKind
	Value string
}

// AppInstalled returns a condition satisfied when the app is installed.
func AppInstalled(label string) DependencyCondition {
	return DependencyCondition{Kind: CondAppInstalled, Value: label}
}

// SettingEnabled returns a condition satisfied when the setting is truthy.
func SettingEnabled(key string) DependencyCondition {
	return DependencyCondition{Kind: CondSettingEnabled, Value: key}
}

// FeatureEnabled returns a condition satisfied when the feature is on.
func FeatureEnabled(name string) DependencyCondition {
	return DependencyCondition{Kind: CondFeatureEnabled, Value: name}
}

// Satisfied evaluates the condition against the environment. An unmet
// condition is not an error; the edge is simply excluded.
func (c DependencyCondition) Satisfied(env *Env) bool {
	switch c.Kind {
	case CondAppInstalled:
		return env.AppInstalled(c.Value)
	case CondSettingEnabled:
		v, ok := env.Setting(c.Value)
		return ok && isTruthy(v)
	case CondFeatureEnabled:
		return env.FeatureEnabled(c.Value)
	default:
		return false
	}
}

// isTruthy treats any non-empty value other than false/0/no/off as true.
func isTruthy(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "false", "0", "no", "off":
		return false
	default:
		return true
	}
}

// OptionalDependency is a dependency edge enforced only while its
// condition holds.
type OptionalDependency struct {
	App           string
	MigrationName string
	Condition     DependencyCondition
}

// Resolve returns the edge key and whether it applies.
func (o OptionalDependency) Resolve(env *Env) (Key, bool) {
	if !o.Condition.Satisfied(env) {
		return Key{}, false
	}
	return Key{App: o.App, Name: o.MigrationName}, true
}
