package runner

import (
	"context"
	"time"

	"github.com/veldtdb/veldt/internal/migrate"
)

// PlanStatus pairs a migration in the local plan with its ledger row,
// if any.
type PlanStatus struct {
	Key       migrate.Key
	Applied   bool
	AppliedAt time.Time
	Checksum  string
}

// Status reports, for every migration in the plan, whether the ledger
// records it as applied.
func (r *Runner) Status(ctx context.Context, plan []*migrate.Migration) ([]PlanStatus, error) {
	if err := r.ledger.EnsureTable(ctx); err != nil {
		return nil, err
	}
	records, err := r.ledger.Applied(ctx)
	if err != nil {
		return nil, err
	}

	byKey := make(map[migrate.Key]AppliedRecord, len(records))
	for _, rec := range records {
		byKey[migrate.Key{App: rec.App, Name: rec.Name}] = rec
	}

	statuses := make([]PlanStatus, len(plan))
	for i, m := range plan {
		s := PlanStatus{Key: m.Key()}
		if rec, ok := byKey[m.Key()]; ok {
			s.Applied = true
			s.AppliedAt = rec.AppliedAt
			s.Checksum = rec.Checksum
		}
		statuses[i] = s
	}
	return statuses, nil
}
