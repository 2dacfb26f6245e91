package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/veldtdb/veldt/pkg/veldt"
)

// Config represents the veldt.yaml configuration file.
type Config struct {
	DatabaseURL   string            `yaml:"database_url"`
	Dialect       string            `yaml:"dialect"`
	MigrationsDir string            `yaml:"migrations_dir"`
	Settings      map[string]string `yaml:"settings"`
	InstalledApps []string          `yaml:"installed_apps"`
	Features      map[string]bool   `yaml:"features"`
}

// loadConfig loads configuration from file, env vars, and CLI flags.
// Precedence: CLI flags > env vars > config file > defaults
func loadConfig() (*Config, error) {
	cfg := &Config{
		MigrationsDir: "./migrations",
	}

	// Load config file if it exists
	if data, err := os.ReadFile(configFile); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
		// Handle env var interpolation in database_url
		cfg.DatabaseURL = expandEnvVars(cfg.DatabaseURL)
	}

	// Override with env vars
	if envURL := os.Getenv("DATABASE_URL"); envURL != "" && databaseURL == "" {
		cfg.DatabaseURL = envURL
	}
	if envDir := os.Getenv("VELDT_MIGRATIONS_DIR"); envDir != "" && migrationsDir == "" {
		cfg.MigrationsDir = envDir
	}

	// Override with CLI flags (highest priority)
	if databaseURL != "" {
		cfg.DatabaseURL = databaseURL
	}
	if migrationsDir != "" {
		cfg.MigrationsDir = migrationsDir
	}

	return cfg, nil
}

// expandEnvVars expands ${VAR} patterns in a string.
func expandEnvVars(s string) string {
	return os.Expand(s, os.Getenv)
}

// envOptions maps the config's environment sections onto client options.
func envOptions(cfg *Config) []veldt.Option {
	var opts []veldt.Option
	if len(cfg.Settings) > 0 {
		opts = append(opts, veldt.WithSettings(cfg.Settings))
	}
	if len(cfg.InstalledApps) > 0 {
		opts = append(opts, veldt.WithInstalledApps(cfg.InstalledApps))
	}
	if len(cfg.Features) > 0 {
		opts = append(opts, veldt.WithFeatures(cfg.Features))
	}
	return opts
}

// newClient creates a database-backed veldt client from config.
func newClient(extra ...veldt.Option) (*veldt.Client, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	if cfg.DatabaseURL == "" {
		return nil, veldt.ErrMissingDatabaseURL
	}

	opts := []veldt.Option{
		veldt.WithDatabaseURL(cfg.DatabaseURL),
		veldt.WithMigrationsDir(cfg.MigrationsDir),
	}
	if cfg.Dialect != "" {
		opts = append(opts, veldt.WithDialect(cfg.Dialect))
	}
	opts = append(opts, envOptions(cfg)...)
	opts = append(opts, extra...)

	return veldt.New(opts...)
}

// newFilesClient creates a client that only reads migration files.
// It does not require a database connection. Use for validate, plan,
// and offline SQL rendering.
func newFilesClient() (*veldt.Client, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	opts := []veldt.Option{
		veldt.WithFilesOnly(),
		veldt.WithMigrationsDir(cfg.MigrationsDir),
	}
	if cfg.Dialect != "" {
		opts = append(opts, veldt.WithDialect(cfg.Dialect))
	} else if cfg.DatabaseURL != "" {
		opts = append(opts, veldt.WithDialect(veldt.DetectDialect(cfg.DatabaseURL)))
	}
	opts = append(opts, envOptions(cfg)...)

	return veldt.New(opts...)
}
