package drift

import (
	"context"
	"database/sql"

	"github.com/veldtdb/veldt/internal/dialect"
	"github.com/veldtdb/veldt/internal/merr"
	"github.com/veldtdb/veldt/internal/runner"
)

// Detector compares local migration checksums against the checksums recorded
// in the migration ledger.
type Detector struct {
	ledger *runner.Ledger
}

// NewDetector creates a drift detector for the given database connection.
func NewDetector(db *sql.DB, d dialect.Dialect) *Detector {
	return &Detector{ledger: runner.NewLedger(db, d)}
}

// Result is the complete drift detection result.
type Result struct {
	// HasDrift is true if any applied migration is missing locally or has a
	// checksum different from its local file.
	HasDrift bool

	// ExpectedRoot is the merkle root over local checksums of applied migrations.
	ExpectedRoot string

	// ActualRoot is the merkle root over ledger-recorded checksums.
	ActualRoot string

	// Comparison holds the per-migration breakdown.
	Comparison *Comparison
}

// Detect reads the ledger and compares it against the given local checksums,
// keyed by migration ID. The checksums must be computed the same way the
// runner records them, over the rendered statements.
func (d *Detector) Detect(ctx context.Context, local map[string]string) (*Result, error) {
	if err := d.ledger.EnsureTable(ctx); err != nil {
		return nil, err
	}

	records, err := d.ledger.Applied(ctx)
	if err != nil {
		return nil, err
	}

	recorded := make(map[string]string, len(records))
	for _, rec := range records {
		recorded[rec.Key()] = rec.Checksum
	}

	comp, err := Compare(local, recorded)
	if err != nil {
		return nil, err
	}

	return &Result{
		HasDrift:     !comp.Match,
		ExpectedRoot: comp.ExpectedRoot,
		ActualRoot:   comp.ActualRoot,
		Comparison:   comp,
	}, nil
}

// Check runs detection and returns an error if drift is found. Used by
// commands that should refuse to proceed against a drifted ledger.
func (d *Detector) Check(ctx context.Context, local map[string]string) error {
	result, err := d.Detect(ctx, local)
	if err != nil {
		return err
	}
	if !result.HasDrift {
		return nil
	}

	e := merr.New(merr.ErrChecksumDrift, "applied migrations diverge from local files").
		With("expected_root", truncateHash(result.ExpectedRoot)).
		With("actual_root", truncateHash(result.ActualRoot)).
		WithHelp("Run 'veldt status' to see which migrations drifted.").
		WithHelp("Restore the original migration files, or re-record checksums if the edits were intentional.")
	if len(result.Comparison.Missing) > 0 {
		e = e.With("missing", len(result.Comparison.Missing))
	}
	if len(result.Comparison.Modified) > 0 {
		e = e.With("modified", len(result.Comparison.Modified))
	}
	return e
}

// Summary condenses a detection result for brief output.
type Summary struct {
	Applied  int // Migrations recorded in the ledger
	Missing  int // Applied but no local file
	Modified int // Applied with a different local checksum
	Pending  int // Local files not yet applied
}

// Summarize builds a Summary from a detection result.
func Summarize(result *Result) *Summary {
	if result == nil || result.Comparison == nil {
		return &Summary{}
	}
	comp := result.Comparison
	return &Summary{
		Applied:  comp.Applied,
		Missing:  len(comp.Missing),
		Modified: len(comp.Modified),
		Pending:  len(comp.Pending),
	}
}
