package veldt

import (
	"context"
	"sort"
	"time"

	"github.com/veldtdb/veldt/internal/drift"
	"github.com/veldtdb/veldt/internal/dsl"
	"github.com/veldtdb/veldt/internal/migfile"
	"github.com/veldtdb/veldt/internal/migrate"
	"github.com/veldtdb/veldt/internal/runner"
)

// LoadFiles reads every migration under the configured migrations
// directory. YAML documents and JS scripts share the same document
// schema; the result is sorted by path.
func (c *Client) LoadFiles() ([]*migfile.File, error) {
	files, err := migfile.LoadDir(c.config.MigrationsDir)
	if err != nil {
		return nil, err
	}
	scripts, err := dsl.LoadDir(c.config.MigrationsDir)
	if err != nil {
		return nil, err
	}
	files = append(files, scripts...)
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

// Plan loads the migration set and resolves it into apply order under
// the configured environment.
func (c *Client) Plan() ([]*migrate.Migration, error) {
	files, err := c.LoadFiles()
	if err != nil {
		return nil, err
	}
	return migrate.NewResolver(c.config.Env).Resolve(migfile.Migrations(files))
}

// Validate loads and resolves the migration set without touching the
// database, reporting how many migrations passed. Works on files-only
// clients.
func (c *Client) Validate() (int, error) {
	plan, err := c.Plan()
	if err != nil {
		return 0, err
	}
	return len(plan), nil
}

// SQL renders the full plan's DDL without executing anything. Works on
// files-only clients when a dialect was configured.
func (c *Client) SQL() ([]string, error) {
	plan, err := c.Plan()
	if err != nil {
		return nil, err
	}
	if c.runner != nil {
		return c.runner.CollectSQL(plan)
	}
	if c.dialect == nil {
		return nil, ErrNoDialect
	}
	return runner.CollectPlanSQL(c.dialect, plan)
}

// Apply runs every pending migration in plan order. Unless the client
// was configured with WithSkipLock, a database-level advisory lock
// guards the run against concurrent migrators.
func (c *Client) Apply(ctx context.Context) ([]runner.MigrationResult, error) {
	if c.runner == nil {
		return nil, ErrNoDatabase
	}
	plan, err := c.Plan()
	if err != nil {
		return nil, err
	}
	if c.config.SkipLock {
		return c.runner.Apply(ctx, plan)
	}
	lockTimeout := c.config.LockTimeout
	if lockTimeout <= 0 {
		lockTimeout = c.config.Timeout
	}
	return c.runner.ApplyWithLock(ctx, plan, lockTimeout)
}

// MigrationStatus is one row of the status report.
type MigrationStatus struct {
	ID        string
	Applied   bool
	Drifted   bool
	AppliedAt time.Time
	Checksum  string
}

// Status reports, for every migration in the plan, whether it has been
// applied and whether its recorded checksum still matches the local
// rendering. Ledger rows with no local migration appear at the end,
// marked as drifted.
func (c *Client) Status(ctx context.Context) ([]MigrationStatus, error) {
	if c.runner == nil {
		return nil, ErrNoDatabase
	}
	plan, err := c.Plan()
	if err != nil {
		return nil, err
	}
	statuses, err := c.runner.Status(ctx, plan)
	if err != nil {
		return nil, err
	}

	local, err := c.planChecksums(plan)
	if err != nil {
		return nil, err
	}
	result, err := c.detector().Detect(ctx, local)
	if err != nil {
		return nil, err
	}
	drifted := make(map[string]bool)
	for _, id := range result.Comparison.Modified {
		drifted[id] = true
	}

	rows := make([]MigrationStatus, 0, len(statuses)+len(result.Comparison.Missing))
	for _, s := range statuses {
		id := s.Key.String()
		rows = append(rows, MigrationStatus{
			ID:        id,
			Applied:   s.Applied,
			Drifted:   drifted[id],
			AppliedAt: s.AppliedAt,
			Checksum:  s.Checksum,
		})
	}

	if len(result.Comparison.Missing) > 0 {
		records, err := c.runner.Ledger().Applied(ctx)
		if err != nil {
			return nil, err
		}
		byID := make(map[string]runner.AppliedRecord, len(records))
		for _, rec := range records {
			byID[rec.Key()] = rec
		}
		for _, id := range result.Comparison.Missing {
			rec := byID[id]
			rows = append(rows, MigrationStatus{
				ID:        id,
				Applied:   true,
				Drifted:   true,
				AppliedAt: rec.AppliedAt,
				Checksum:  rec.Checksum,
			})
		}
	}
	return rows, nil
}

// Drift compares the ledger's recorded checksums against the local
// migration set and reports the breakdown.
func (c *Client) Drift(ctx context.Context) (*drift.Result, error) {
	if c.runner == nil {
		return nil, ErrNoDatabase
	}
	plan, err := c.Plan()
	if err != nil {
		return nil, err
	}
	local, err := c.planChecksums(plan)
	if err != nil {
		return nil, err
	}
	return c.detector().Detect(ctx, local)
}

// CheckDrift returns an error if any applied migration diverges from
// its local rendering. Pending migrations are not drift.
func (c *Client) CheckDrift(ctx context.Context) error {
	if c.runner == nil {
		return ErrNoDatabase
	}
	plan, err := c.Plan()
	if err != nil {
		return err
	}
	local, err := c.planChecksums(plan)
	if err != nil {
		return err
	}
	return c.detector().Check(ctx, local)
}

func (c *Client) detector() *drift.Detector {
	return drift.NewDetector(c.db, c.dialect)
}

// planChecksums computes, per migration, the checksum an apply would
// record in the ledger.
func (c *Client) planChecksums(plan []*migrate.Migration) (map[string]string, error) {
	local := make(map[string]string, len(plan))
	for _, m := range plan {
		sum, err := c.runner.MigrationChecksum(m)
		if err != nil {
			return nil, err
		}
		local[m.ID()] = sum
	}
	return local, nil
}
