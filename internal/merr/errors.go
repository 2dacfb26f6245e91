// Package merr provides standardized error handling for Veldt.
// All errors have stable, machine-readable codes, structured context, and proper wrapping.
package merr

import (
	"errors"
	"fmt"
	"runtime"
	"sort"
	"strings"
)

// Code represents a stable, machine-readable error code.
// Format: V{category}{number} where category is 1-5 and number is 001-999.
type Code string

// Error codes organized by category.
const (
	// Definition errors (V1xxx) - problems with operation and migration definitions
	ErrInvalidOperation  Code = "V1001" // Operation payload is malformed
	ErrInvalidIdentifier Code = "V1002" // Identifier does not match allowed pattern
	ErrInvalidFieldType  Code = "V1003" // Field type is not supported or malformed
	ErrInvalidConfig     Code = "V1004" // Migration configuration is contradictory

	// Resolution errors (V2xxx) - problems while ordering the migration graph
	ErrDuplicateMigration  Code = "V2001" // Two migrations share one (app, name) key
	ErrMissingDependency   Code = "V2002" // Dependency edge points at an unknown migration
	ErrDependencyCycle     Code = "V2003" // Dependency graph contains a cycle
	ErrUnresolvedSwappable Code = "V2004" // Swappable dependency has no setting and no default

	// State errors (V3xxx) - problems while projecting operations onto state
	ErrStateProjection Code = "V3001" // Operation cannot apply to the current project state
	ErrUnknownModel    Code = "V3002" // Operation targets a model the state does not hold
	ErrModelExists     Code = "V3003" // CreateTable targets a model that already exists

	// Execution errors (V4xxx) - problems while running migrations against a database
	ErrSQLExecution   Code = "V4001" // SQL statement failed to execute
	ErrSQLConnection  Code = "V4002" // Database connection failed
	ErrSQLTransaction Code = "V4003" // Transaction operation failed
	ErrLedger         Code = "V4004" // Applied-migrations ledger operation failed
	ErrChecksumDrift  Code = "V4005" // Recorded checksum does not match the local file
	ErrHookRejected   Code = "V4006" // A pre-apply hook refused the migration

	// Tooling errors (V5xxx) - problems in the surrounding toolchain
	ErrMigrationFile    Code = "V5001" // Migration file cannot be read or parsed
	ErrScriptExecution  Code = "V5002" // Migration script evaluation failed
	ErrUnknownDialect   Code = "V5003" // Dialect name is not supported
	ErrWatch            Code = "V5004" // Filesystem watch failed
	ErrInternal         Code = "V5999" // Unexpected internal error
)

// Error is the standard error type for Veldt.
// It provides structured error information with codes, context, and wrapping support.
type Error struct {
	code    Code           // Machine-readable error code
	message string         // Human-readable error message
	context map[string]any // Structured context data
	cause   error          // Wrapped underlying error
	stack   string         // Stack trace for debugging
}

// Error returns the formatted error string.
// Format:
//
//	[V2002] migration depends on an unknown migration
//	  dependency: auth.0002_add_email
//	  migration: blog.0001_initial
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("[%s] %s", e.code, e.message))

	// Context in sorted order for deterministic output.
	if len(e.context) > 0 {
		keys := make([]string, 0, len(e.context))
		for k := range e.context {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		for _, k := range keys {
			b.WriteString(fmt.Sprintf("\n  %s: %v", k, e.context[k]))
		}
	}

	if e.cause != nil {
		b.WriteString(fmt.Sprintf("\n  cause: %v", e.cause))
	}

	return b.String()
}

// Unwrap returns the underlying cause error for errors.Unwrap compatibility.
func (e *Error) Unwrap() error {
	return e.cause
}

// Is reports whether the target error matches this error.
// It matches if target is an *Error with the same code.
func (e *Error) Is(target error) bool {
	if target == nil {
		return false
	}

	var targetErr *Error
	if errors.As(target, &targetErr) {
		return e.code == targetErr.code
	}

	return false
}

// GetCode returns the error code.
func (e *Error) GetCode() Code {
	return e.code
}

// GetMessage returns the error message.
func (e *Error) GetMessage() string {
	return e.message
}

// GetContext returns the error context map.
func (e *Error) GetContext() map[string]any {
	return e.context
}

// GetCause returns the underlying cause error.
func (e *Error) GetCause() error {
	return e.cause
}

// GetStack returns the stack trace.
func (e *Error) GetStack() string {
	return e.stack
}

// With adds a key-value pair to the error context.
// Returns the error for method chaining.
func (e *Error) With(key string, value any) *Error {
	if e.context == nil {
		e.context = make(map[string]any)
	}
	e.context[key] = value
	return e
}

// WithMigration adds migration context to the error.
// Format: "app.name".
func (e *Error) WithMigration(app, name string) *Error {
	return e.With("migration", app+"."+name)
}

// WithTable adds table context to the error.
func (e *Error) WithTable(table string) *Error {
	return e.With("table", table)
}

// WithColumn adds column context to the error.
func (e *Error) WithColumn(name string) *Error {
	return e.With("column", name)
}

// WithSQL adds SQL statement context to the error.
func (e *Error) WithSQL(sql string) *Error {
	return e.With("sql", sql)
}

// WithOperationIndex records which operation inside a migration failed.
// Indexes are zero-based and identify the resume point after a partial run.
func (e *Error) WithOperationIndex(i int) *Error {
	return e.With("operation_index", i)
}

// WithHelp adds a help suggestion to the error (displayed as "help: ...").
func (e *Error) WithHelp(help string) *Error {
	helps, _ := e.context["helps"].([]string)
	helps = append(helps, help)
	return e.With("helps", helps)
}

// Helps returns all help suggestions attached to this error.
func (e *Error) Helps() []string {
	helps, _ := e.context["helps"].([]string)
	return helps
}

// OperationIndex returns the failing operation index, or -1 if not set.
func (e *Error) OperationIndex() int {
	i, ok := e.context["operation_index"].(int)
	if !ok {
		return -1
	}
	return i
}

// captureStack captures a stack trace for debugging.
func captureStack(skip int) string {
	const maxDepth = 32
	var pcs [maxDepth]uintptr
	n := runtime.Callers(skip, pcs[:])
	if n == 0 {
		return ""
	}

	var b strings.Builder
	frames := runtime.CallersFrames(pcs[:n])
	for {
		frame, more := frames.Next()
		// Skip runtime internals
		if strings.Contains(frame.File, "runtime/") {
			if !more {
				break
			}
			continue
		}
		b.WriteString(fmt.Sprintf("%s\n\t%s:%d\n", frame.Function, frame.File, frame.Line))
		if !more {
			break
		}
	}
	return b.String()
}

// New creates a new Error with the given code and message.
func New(code Code, msg string) *Error {
	return &Error{
		code:    code,
		message: msg,
		context: make(map[string]any),
		stack:   captureStack(3),
	}
}

// Newf creates a new Error with the given code and formatted message.
func Newf(code Code, format string, args ...any) *Error {
	return &Error{
		code:    code,
		message: fmt.Sprintf(format, args...),
		context: make(map[string]any),
		stack:   captureStack(3),
	}
}

// Wrap creates a new Error that wraps an existing error.
func Wrap(code Code, err error, msg string) *Error {
	if err == nil {
		return New(code, msg)
	}
	return &Error{
		code:    code,
		message: msg,
		context: make(map[string]any),
		cause:   err,
		stack:   captureStack(3),
	}
}

// Wrapf creates a new Error that wraps an existing error with a formatted message.
func Wrapf(code Code, err error, format string, args ...any) *Error {
	return Wrap(code, err, fmt.Sprintf(format, args...))
}

// GetErrorCode extracts the error code from an error chain.
// Returns empty string if no code is found.
func GetErrorCode(err error) Code {
	if err == nil {
		return ""
	}

	var merr *Error
	if errors.As(err, &merr) {
		return merr.code
	}

	return ""
}

// Is checks if an error has the specified code.
func Is(err error, code Code) bool {
	return GetErrorCode(err) == code
}

// HasCode checks if an error has any error code.
func HasCode(err error) bool {
	return GetErrorCode(err) != ""
}

// WrapSQL creates an ErrSQLExecution error with statement context.
// Use for wrapping SQL errors with consistent formatting.
func WrapSQL(err error, op string, sql string) *Error {
	e := Wrap(ErrSQLExecution, err, "failed to "+op)
	if sql != "" {
		e.WithSQL(sql)
	}
	return e
}
