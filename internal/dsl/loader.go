package dsl

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/veldtdb/veldt/internal/merr"
	"github.com/veldtdb/veldt/internal/migfile"
)

// LoadDir evaluates every .js migration script under dir and returns the
// declared migrations as files, sorted by path. A script declaring several
// migrations yields one entry per migration, all sharing the script's
// checksum.
func LoadDir(dir string) ([]*migfile.File, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if filepath.Ext(path) == ".js" {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, merr.Wrap(merr.ErrScriptExecution, err, "failed to scan migrations directory").
			With("dir", dir)
	}
	sort.Strings(paths)

	var files []*migfile.File
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, merr.Wrap(merr.ErrScriptExecution, err, "failed to read script").
				With("path", path)
		}
		sum := migfile.Checksum(data)

		// A fresh sandbox per script: no state leaks between files.
		sb := NewSandbox()
		migrations, err := sb.RunFile(path)
		if err != nil {
			return nil, err
		}
		for _, m := range migrations {
			files = append(files, &migfile.File{
				Path:      path,
				Checksum:  sum,
				Migration: m,
			})
		}
	}
	return files, nil
}
