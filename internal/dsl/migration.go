package dsl

import (
	"strings"

	"github.com/dop251/goja"
	"gopkg.in/yaml.v3"

	"github.com/veldtdb/veldt/internal/merr"
	"github.com/veldtdb/veldt/internal/migfile"
	"github.com/veldtdb/veldt/internal/migrate"
)

// bindDSL installs the migration DSL globals into the runtime.
func (s *Sandbox) bindDSL() {
	// sql() marks an expression as raw SQL. Document fields are plain
	// strings, so this is a readability helper for script authors.
	s.vm.Set("sql", func(expr string) string { return expr })

	s.vm.Set("migration", s.migrationFunc())
}

// migrationFunc returns the migration() DSL function. The argument is an
// object with the same shape as a YAML migration document.
func (s *Sandbox) migrationFunc() func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) < 1 {
			s.throw(merr.New(merr.ErrScriptExecution, "migration() requires a document object").
				With("path", s.currentFile))
		}

		doc := call.Arguments[0].Export()
		m, err := documentToMigration(doc)
		if err != nil {
			if me, ok := err.(*merr.Error); ok && s.currentFile != "" {
				err = me.With("path", s.currentFile)
			}
			s.throw(err)
		}

		s.migrations = append(s.migrations, m)
		return goja.Undefined()
	}
}

// documentToMigration converts an exported JS object to a Migration by
// routing it through the YAML codec, so scripts and files share one document
// schema and one set of validation rules.
func documentToMigration(doc any) (*migrate.Migration, error) {
	if _, ok := doc.(map[string]any); !ok {
		return nil, merr.New(merr.ErrScriptExecution, "migration() argument must be an object")
	}
	data, err := yaml.Marshal(doc)
	if err != nil {
		return nil, merr.Wrap(merr.ErrScriptExecution, err, "failed to encode migration document")
	}
	return migfile.Decode(data)
}

// stripExports removes ES6 export statements, which Goja does not support.
func stripExports(code string) string {
	code = strings.Replace(code, "export default ", "", 1)
	return strings.ReplaceAll(code, "export ", "")
}
