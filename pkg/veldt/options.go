package veldt

import (
	"log/slog"
	"time"

	"github.com/veldtdb/veldt/internal/migrate"
)

// Config holds client configuration. Prefer the Option functions over
// constructing this directly.
type Config struct {
	// DatabaseURL is the connection string. Required unless FilesOnly.
	DatabaseURL string

	// Dialect is postgres, mysql, or sqlite. Auto-detected from the URL
	// when empty.
	Dialect string

	// MigrationsDir is the directory scanned for .yaml/.yml migration
	// files and .js migration scripts.
	MigrationsDir string

	// Timeout bounds individual database operations.
	Timeout time.Duration

	// Env is the settings snapshot for swappable and conditional
	// dependencies.
	Env *migrate.Env

	// FilesOnly skips the database connection. Used by validate and sql
	// commands.
	FilesOnly bool

	// Logger receives structured apply logs. Defaults to slog.Default().
	Logger *slog.Logger

	// LockTimeout bounds how long Apply waits for the migration lock.
	// Zero uses the runner default.
	LockTimeout time.Duration

	// SkipLock disables advisory locking during Apply.
	SkipLock bool
}

// Option configures a Client.
type Option func(*Config)

// WithDatabaseURL sets the database connection string.
func WithDatabaseURL(url string) Option {
	return func(c *Config) { c.DatabaseURL = url }
}

// WithDialect overrides dialect auto-detection.
func WithDialect(name string) Option {
	return func(c *Config) { c.Dialect = name }
}

// WithMigrationsDir sets the migrations directory.
func WithMigrationsDir(dir string) Option {
	return func(c *Config) { c.MigrationsDir = dir }
}

// WithTimeout sets the per-operation timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Config) { c.Timeout = d }
}

// WithEnv sets the dependency resolution environment.
func WithEnv(env *migrate.Env) Option {
	return func(c *Config) { c.Env = env }
}

// WithSettings sets the settings table used by swappable dependencies and
// setting_enabled conditions.
func WithSettings(settings map[string]string) Option {
	return func(c *Config) {
		if c.Env == nil {
			c.Env = &migrate.Env{}
		}
		c.Env.Settings = settings
	}
}

// WithInstalledApps sets the installed app labels used by app_installed
// conditions.
func WithInstalledApps(apps []string) Option {
	return func(c *Config) {
		if c.Env == nil {
			c.Env = &migrate.Env{}
		}
		set := make(map[string]bool, len(apps))
		for _, a := range apps {
			set[a] = true
		}
		c.Env.InstalledApps = set
	}
}

// WithFeatures sets the feature flag table used by feature_enabled
// conditions.
func WithFeatures(features map[string]bool) Option {
	return func(c *Config) {
		if c.Env == nil {
			c.Env = &migrate.Env{}
		}
		c.Env.Features = features
	}
}

// WithFilesOnly creates a client without a database connection.
func WithFilesOnly() Option {
	return func(c *Config) { c.FilesOnly = true }
}

// WithLogger sets the structured logger used during Apply.
func WithLogger(l *slog.Logger) Option {
	return func(c *Config) { c.Logger = l }
}

// WithLockTimeout bounds how long Apply waits for the migration lock.
func WithLockTimeout(d time.Duration) Option {
	return func(c *Config) { c.LockTimeout = d }
}

// WithSkipLock disables advisory locking during Apply.
func WithSkipLock() Option {
	return func(c *Config) { c.SkipLock = true }
}
