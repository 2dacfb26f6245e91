// Package migfile reads and writes migration files. A migration is one
// YAML document; a project's migration set is a directory tree of them.
package migfile

import (
	"crypto/sha256"
	"encoding/hex"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/veldtdb/veldt/internal/merr"
	"github.com/veldtdb/veldt/internal/migrate"
)

// File pairs a decoded migration with its on-disk identity.
type File struct {
	Path      string
	Checksum  string
	Migration *migrate.Migration
}

// document is the YAML shape of one migration file.
type document struct {
	App          string          `yaml:"app"`
	Name         string          `yaml:"name"`
	Dependencies []string        `yaml:"dependencies,omitempty"`
	Swappable    []swappableDoc  `yaml:"swappable_dependencies,omitempty"`
	Optional     []optionalDoc   `yaml:"optional_dependencies,omitempty"`
	Replaces     []string        `yaml:"replaces,omitempty"`
	Atomic       *bool           `yaml:"atomic,omitempty"`
	Initial      *bool           `yaml:"initial,omitempty"`
	StateOnly    bool            `yaml:"state_only,omitempty"`
	DatabaseOnly bool            `yaml:"database_only,omitempty"`
	Operations   []*operationDoc `yaml:"operations"`
}

type swappableDoc struct {
	Setting       string `yaml:"setting"`
	DefaultApp    string `yaml:"default_app,omitempty"`
	DefaultModel  string `yaml:"default_model,omitempty"`
	MigrationName string `yaml:"migration"`
}

type optionalDoc struct {
	App           string `yaml:"app"`
	MigrationName string `yaml:"migration"`
	Condition     string `yaml:"condition"` // "app_installed:x", "setting_enabled:x", "feature_enabled:x"
}

// Decode parses one migration file body.
func Decode(data []byte) (*migrate.Migration, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, merr.Wrap(merr.ErrMigrationFile, err, "cannot parse migration file")
	}
	return doc.toMigration()
}

// Encode serializes a migration back into its file form.
func Encode(m *migrate.Migration) ([]byte, error) {
	doc, err := fromMigration(m)
	if err != nil {
		return nil, err
	}
	data, err := yaml.Marshal(doc)
	if err != nil {
		return nil, merr.Wrap(merr.ErrMigrationFile, err, "cannot serialize migration").
			WithMigration(m.App, m.Name)
	}
	return data, nil
}

// Checksum hashes a migration file body, identifying the file revision.
func Checksum(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Load reads and decodes one migration file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, merr.Wrap(merr.ErrMigrationFile, err, "cannot read migration file").
			With("path", path)
	}
	m, err := Decode(data)
	if err != nil {
		var me *merr.Error
		if w, ok := err.(*merr.Error); ok {
			me = w
		} else {
			me = merr.Wrap(merr.ErrMigrationFile, err, "cannot decode migration file")
		}
		return nil, me.With("path", path)
	}
	return &File{Path: path, Checksum: Checksum(data), Migration: m}, nil
}

// LoadDir walks a directory tree and loads every .yaml/.yml file,
// sorted by path so the set order is stable. The resolver orders the
// migrations; file order never matters semantically.
func LoadDir(dir string) ([]*File, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		if ext == ".yaml" || ext == ".yml" {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, merr.Wrap(merr.ErrMigrationFile, err, "cannot walk migrations directory").
			With("dir", dir)
	}
	sort.Strings(paths)

	files := make([]*File, 0, len(paths))
	for _, path := range paths {
		f, err := Load(path)
		if err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return files, nil
}

// Migrations extracts the migration values from a loaded set.
func Migrations(files []*File) []*migrate.Migration {
	ms := make([]*migrate.Migration, len(files))
	for i, f := range files {
		ms[i] = f.Migration
	}
	return ms
}

// parseKey splits "app.name" on the first dot.
func parseKey(s string) (migrate.Key, error) {
	i := strings.IndexByte(s, '.')
	if i <= 0 || i == len(s)-1 {
		return migrate.Key{}, merr.New(merr.ErrMigrationFile, `dependency must have the form "app.name"`).
			With("value", s)
	}
	return migrate.Key{App: s[:i], Name: s[i+1:]}, nil
}

func (d *document) toMigration() (*migrate.Migration, error) {
	m := migrate.NewMigration(d.App, d.Name)
	if d.Atomic != nil {
		m.Atomic = *d.Atomic
	}
	m.Initial = d.Initial
	m.StateOnly = d.StateOnly
	m.DatabaseOnly = d.DatabaseOnly

	for _, dep := range d.Dependencies {
		k, err := parseKey(dep)
		if err != nil {
			return nil, err
		}
		m.Dependencies = append(m.Dependencies, k)
	}
	for _, rep := range d.Replaces {
		k, err := parseKey(rep)
		if err != nil {
			return nil, err
		}
		m.Replaces = append(m.Replaces, k)
	}
	for _, s := range d.Swappable {
		m.SwappableDependencies = append(m.SwappableDependencies, migrate.SwappableDependency{
			SettingKey:    s.Setting,
			DefaultApp:    s.DefaultApp,
			DefaultModel:  s.DefaultModel,
			MigrationName: s.MigrationName,
		})
	}
	for _, o := range d.Optional {
		cond, err := parseCondition(o.Condition)
		if err != nil {
			return nil, err
		}
		m.OptionalDependencies = append(m.OptionalDependencies, migrate.OptionalDependency{
			App:           o.App,
			MigrationName: o.MigrationName,
			Condition:     cond,
		})
	}

	for i, opDoc := range d.Operations {
		op, err := opDoc.toOperation()
		if err != nil {
			if me, ok := err.(*merr.Error); ok {
				return nil, me.WithOperationIndex(i)
			}
			return nil, err
		}
		m.Operations = append(m.Operations, op)
	}

	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

func fromMigration(m *migrate.Migration) (*document, error) {
	doc := &document{
		App:          m.App,
		Name:         m.Name,
		Initial:      m.Initial,
		StateOnly:    m.StateOnly,
		DatabaseOnly: m.DatabaseOnly,
	}
	// Atomic true is the default; only serialize the exception.
	if !m.Atomic {
		f := false
		doc.Atomic = &f
	}
	for _, k := range m.Dependencies {
		doc.Dependencies = append(doc.Dependencies, k.String())
	}
	for _, k := range m.Replaces {
		doc.Replaces = append(doc.Replaces, k.String())
	}
	for _, s := range m.SwappableDependencies {
		doc.Swappable = append(doc.Swappable, swappableDoc{
			Setting:       s.SettingKey,
			DefaultApp:    s.DefaultApp,
			DefaultModel:  s.DefaultModel,
			MigrationName: s.MigrationName,
		})
	}
	for _, o := range m.OptionalDependencies {
		doc.Optional = append(doc.Optional, optionalDoc{
			App:           o.App,
			MigrationName: o.MigrationName,
			Condition:     formatCondition(o.Condition),
		})
	}
	for _, op := range m.Operations {
		opDoc, err := fromOperation(op)
		if err != nil {
			return nil, err
		}
		doc.Operations = append(doc.Operations, opDoc)
	}
	return doc, nil
}

func parseCondition(s string) (migrate.DependencyCondition, error) {
	kind, value, ok := strings.Cut(s, ":")
	if !ok || value == "" {
		return migrate.DependencyCondition{}, merr.New(merr.ErrMigrationFile,
			`condition must have the form "kind:value"`).
			With("value", s)
	}
	switch kind {
	case "app_installed":
		return migrate.AppInstalled(value), nil
	case "setting_enabled":
		return migrate.SettingEnabled(value), nil
	case "feature_enabled":
		return migrate.FeatureEnabled(value), nil
	default:
		return migrate.DependencyCondition{}, merr.New(merr.ErrMigrationFile, "unknown condition kind").
			With("kind", kind)
	}
}

func formatCondition(c migrate.DependencyCondition) string {
	switch c.Kind {
	case migrate.CondAppInstalled:
		return "app_installed:" + c.Value
	case migrate.CondSettingEnabled:
		return "setting_enabled:" + c.Value
	default:
		return "feature_enabled:" + c.Value
	}
}
