package cli

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/veldtdb/veldt/internal/merr"
)

// FormatError formats an error for CLI display in Cargo/rustc style.
// Coded errors render their code, context, helps, and cause; anything else
// falls back to a single error line.
func FormatError(err error) string {
	if err == nil {
		return ""
	}

	var me *merr.Error
	if errors.As(err, &me) {
		return formatCodedError(me)
	}
	return formatGenericError(err)
}

func formatCodedError(err *merr.Error) string {
	var b strings.Builder

	// First line: error[V2003]: message
	b.WriteString(Error("error"))
	b.WriteString("[")
	b.WriteString(Code(string(err.GetCode())))
	b.WriteString("]: ")
	b.WriteString(err.GetMessage())
	b.WriteString("\n")

	ctx := err.GetContext()

	// File location if available
	if path, ok := ctx["path"].(string); ok && path != "" {
		b.WriteString("  ")
		b.WriteString(stylePipe.Render("-->"))
		b.WriteString(" ")
		b.WriteString(FilePath(path))
		b.WriteString("\n")
	}

	// Context details (sorted for stable output), excluding
	// specially-rendered keys.
	exclude := map[string]bool{"path": true, "helps": true}
	var keys []string
	for k := range ctx {
		if !exclude[k] {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	if len(keys) > 0 {
		b.WriteString("   ")
		b.WriteString(Pipe())
		b.WriteString("\n")
		for _, k := range keys {
			b.WriteString("   ")
			b.WriteString(Pipe())
			b.WriteString(" ")
			b.WriteString(fmt.Sprintf("%s: %v", k, ctx[k]))
			b.WriteString("\n")
		}
	}

	if cause := err.GetCause(); cause != nil {
		b.WriteString("   ")
		b.WriteString(Pipe())
		b.WriteString("\n")
		b.WriteString(Note("cause"))
		b.WriteString(": ")
		b.WriteString(cleanCauseMessage(cause.Error()))
		b.WriteString("\n")
	}

	for _, help := range err.Helps() {
		b.WriteString(Help("help"))
		b.WriteString(": ")
		b.WriteString(help)
		b.WriteString("\n")
	}

	return b.String()
}

// cleanCauseMessage truncates Goja stack traces so script errors stay
// readable.
func cleanCauseMessage(msg string) string {
	if idx := strings.Index(msg, " at github.com"); idx != -1 {
		msg = strings.TrimSpace(msg[:idx])
	}
	return msg
}

func formatGenericError(err error) string {
	var b strings.Builder
	b.WriteString(Error("error"))
	b.WriteString(": ")
	b.WriteString(err.Error())
	b.WriteString("\n")
	return b.String()
}

// FormatWarning formats a warning message in Cargo style.
func FormatWarning(msg string) string {
	return Warning("warning") + ": " + msg + "\n"
}

// FormatNote formats a note message.
func FormatNote(msg string) string {
	return Note("note") + ": " + msg + "\n"
}

// FormatHelp formats a help message.
func FormatHelp(msg string) string {
	return Help("help") + ": " + msg + "\n"
}

// FormatSuccess formats a success message.
func FormatSuccess(msg string) string {
	return Success("success") + ": " + msg + "\n"
}
