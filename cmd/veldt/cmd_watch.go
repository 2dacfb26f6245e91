package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/veldtdb/veldt/internal/cli"
	"github.com/veldtdb/veldt/internal/merr"
)

// debounceWindow coalesces editor save bursts into one validation run.
const debounceWindow = 250 * time.Millisecond

// watchCmd re-validates the migration graph whenever files change.
func watchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Re-validate the migration graph when files change",
		Long: `Watch the migrations directory and re-run validation whenever a
migration file is created, changed, or removed. No database connection
is required. Stop with Ctrl+C.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				fail(err)
			}

			watcher, err := fsnotify.NewWatcher()
			if err != nil {
				fail(merr.Wrap(merr.ErrWatch, err, "cannot create file watcher"))
			}
			defer watcher.Close()

			// Watch the migrations tree recursively
			err = filepath.Walk(cfg.MigrationsDir, func(path string, info os.FileInfo, err error) error {
				if err != nil {
					return nil
				}
				if info.IsDir() {
					watcher.Add(path)
				}
				return nil
			})
			if err != nil {
				fail(merr.Wrap(merr.ErrWatch, err, "cannot watch migrations directory").
					With("dir", cfg.MigrationsDir))
			}

			fmt.Printf("Watching %s\n\n", cli.FilePath(cfg.MigrationsDir))
			runValidation()

			var debounce *time.Timer
			fire := make(chan struct{}, 1)

			for {
				select {
				case event, ok := <-watcher.Events:
					if !ok {
						return nil
					}
					if !isMigrationFile(event.Name) && event.Op&fsnotify.Create == 0 {
						continue
					}
					// New directories join the watch set
					if event.Op&fsnotify.Create != 0 {
						if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
							watcher.Add(event.Name)
							continue
						}
					}
					if !isMigrationFile(event.Name) {
						continue
					}
					if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0 {
						if debounce != nil {
							debounce.Stop()
						}
						debounce = time.AfterFunc(debounceWindow, func() {
							select {
							case fire <- struct{}{}:
							default:
							}
						})
					}

				case <-fire:
					fmt.Printf("%s change detected\n", cli.Dim(time.Now().Format("15:04:05")))
					runValidation()

				case watchErr, ok := <-watcher.Errors:
					if !ok {
						return nil
					}
					fmt.Fprint(os.Stderr, cli.FormatWarning(watchErr.Error()))

				case <-cmd.Context().Done():
					return nil
				}
			}
		},
	}
}

// runValidation validates the graph and reports without exiting, so the
// watch loop survives broken intermediate states.
func runValidation() {
	client, err := newFilesClient()
	if err != nil {
		fmt.Fprint(os.Stderr, cli.FormatError(err))
		return
	}
	n, err := client.Validate()
	if err != nil {
		fmt.Fprint(os.Stderr, cli.FormatError(err))
		return
	}
	fmt.Print(cli.FormatSuccess(fmt.Sprintf("Validated %s.", countOf(n, "migration", "migrations"))))
}

// isMigrationFile reports whether a path is a migration document or script.
func isMigrationFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".js":
		return true
	}
	return false
}
