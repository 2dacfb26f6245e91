package main

import (
	"fmt"
	"os"

	"github.com/veldtdb/veldt/internal/cli"
)

// fail prints a structured error to stderr and exits non-zero.
func fail(err error) {
	fmt.Fprint(os.Stderr, cli.FormatError(err))
	os.Exit(1)
}

// countOf formats a count with its singular or plural noun.
func countOf(n int, singular, plural string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, singular)
	}
	return fmt.Sprintf("%d %s", n, plural)
}
