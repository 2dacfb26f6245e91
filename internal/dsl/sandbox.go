// Package dsl provides a deterministic JavaScript execution environment for
// migration scripts using the Goja engine. A script calls migration({...})
// with the same document shape the YAML codec accepts; the sandbox collects
// the declared migrations.
package dsl

import (
	"math/rand"
	"os"
	"time"

	"github.com/dop251/goja"

	"github.com/veldtdb/veldt/internal/merr"
	"github.com/veldtdb/veldt/internal/migrate"
)

// FixedSeed seeds the sandbox's random source so script output is
// reproducible across runs and machines.
const FixedSeed = 12345

const defaultTimeout = 5 * time.Second

// Sandbox executes migration scripts in a hardened Goja runtime.
type Sandbox struct {
	vm      *goja.Runtime
	timeout time.Duration

	migrations []*migrate.Migration
	evalErr    error

	// Current file for error context
	currentFile string
}

// NewSandbox creates a hardened JavaScript sandbox with the migration DSL
// bound.
func NewSandbox() *Sandbox {
	vm := goja.New()

	// Resource limits
	vm.SetMaxCallStackSize(500)

	// Deterministic execution
	seeded := rand.New(rand.NewSource(FixedSeed))
	vm.SetRandSource(func() float64 { return seeded.Float64() })

	disableDangerousGlobals(vm)

	s := &Sandbox{
		vm:      vm,
		timeout: defaultTimeout,
	}
	s.bindDSL()

	return s
}

// disableDangerousGlobals removes JS features that would allow
// non-deterministic or unsafe behavior.
func disableDangerousGlobals(vm *goja.Runtime) {
	vm.Set("eval", goja.Undefined())

	_, _ = vm.RunString(`
		(function() {
			try {
				Object.freeze(Object.prototype);
				Object.freeze(Array.prototype);
				Object.freeze(String.prototype);
				Object.freeze(Number.prototype);
				Object.freeze(Boolean.prototype);
			} catch(e) {}
		})();
	`)
}

// SetTimeout sets the execution timeout for scripts.
func (s *Sandbox) SetTimeout(d time.Duration) {
	s.timeout = d
}

// Run executes JavaScript code and returns any error. Migrations declared by
// the code accumulate on the sandbox.
func (s *Sandbox) Run(code string) error {
	s.evalErr = nil

	timer := time.AfterFunc(s.timeout, func() {
		s.vm.Interrupt("execution timeout")
	})
	defer timer.Stop()

	_, err := s.vm.RunString(code)
	if err != nil {
		if s.evalErr != nil {
			return s.evalErr
		}
		if _, ok := err.(*goja.InterruptedError); ok {
			e := merr.New(merr.ErrScriptExecution, "script execution timed out").
				With("timeout", s.timeout.String())
			if s.currentFile != "" {
				e = e.With("path", s.currentFile)
			}
			return e
		}
		e := merr.Wrap(merr.ErrScriptExecution, err, "script execution failed")
		if s.currentFile != "" {
			e = e.With("path", s.currentFile)
		}
		return e
	}
	s.vm.ClearInterrupt()
	return s.evalErr
}

// RunFile reads and executes a migration script, returning the migrations it
// declared. ES6 export statements are stripped since Goja supports ES5.1.
func (s *Sandbox) RunFile(path string) ([]*migrate.Migration, error) {
	s.currentFile = path
	defer func() { s.currentFile = "" }()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, merr.Wrap(merr.ErrScriptExecution, err, "failed to read script").
			With("path", path)
	}

	s.migrations = nil
	if err := s.Run(stripExports(string(data))); err != nil {
		return nil, err
	}
	if len(s.migrations) == 0 {
		return nil, merr.New(merr.ErrScriptExecution, "script declared no migrations").
			With("path", path).
			WithHelp("Call migration({app: ..., name: ..., operations: [...]}) in the script.")
	}
	return s.migrations, nil
}

// Migrations returns the migrations collected so far.
func (s *Sandbox) Migrations() []*migrate.Migration {
	return s.migrations
}

// throw aborts script execution, recording the Go-side error so Run can
// return it with its code intact.
func (s *Sandbox) throw(err error) {
	s.evalErr = err
	panic(s.vm.ToValue(err.Error()))
}
