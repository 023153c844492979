package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/weidustudio/studio/internal/planner"
)

// DefaultRoster is the crew a fresh install starts with. Nobody on it
// designs, so design stages stay pending until a designer is added.
func DefaultRoster() []*Worker {
	return []*Worker{
		{Name: "Master Zhang", Role: "plumber & electrician", Skills: []string{string(planner.TaskTypePlumbingElectrical)}, MaxConcurrent: 2},
		{Name: "Master Li", Role: "carpenter", Skills: []string{string(planner.TaskTypeCarpentry)}, MaxConcurrent: 1},
		{Name: "Master Wang", Role: "painter", Skills: []string{string(planner.TaskTypePainting)}, MaxConcurrent: 1},
		{Name: "Master Zhao", Role: "all trades", Skills: []string{
			string(planner.TaskTypePlumbingElectrical),
			string(planner.TaskTypeCarpentry),
			string(planner.TaskTypePainting),
		}, MaxConcurrent: 1},
	}
}

// SeedDefaults fills an empty roster with DefaultRoster. A roster that
// already has workers is left alone.
func SeedDefaults(ctx context.Context, repo Repository, now func() time.Time) (int, error) {
	existing, err := repo.List(ctx)
	if err != nil {
		return 0, err
	}
	if len(existing) > 0 {
		return 0, nil
	}
	base := now()
	for i, w := range DefaultRoster() {
		// Distinct creation times keep the seeded order on every backend.
		ts := base.Add(time.Duration(i) * time.Millisecond)
		w.ID = ulid.MustNew(ulid.Timestamp(ts), ulid.DefaultEntropy()).String()
		w.CreatedAt = ts
		w.UpdatedAt = ts
		if err := repo.Create(ctx, w); err != nil {
			return 0, fmt.Errorf("failed to seed worker %s: %w", w.Name, err)
		}
	}
	slog.InfoContext(ctx, "seeded default workers", "count", len(DefaultRoster()))
	return len(DefaultRoster()), nil
}
