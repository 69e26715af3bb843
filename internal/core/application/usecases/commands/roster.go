package commands

import (
	"context"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/roster"
	"orderflow/internal/core/ports"
)

// activateDefaultRoster upserts an active entry for every default-roster
// agent of the outlet. Entries of other agents are left as they are.
func activateDefaultRoster(
	ctx context.Context,
	repo ports.RosterRepository,
	outletID kernel.UUID,
	date kernel.Date,
) (int, error) {
	agents, err := repo.ListAgents(ctx, outletID)
	if err != nil {
		return 0, err
	}

	entries, err := roster.DefaultEntries(outletID, date, agents)
	if err != nil {
		return 0, err
	}
	if len(entries) == 0 {
		return 0, nil
	}

	if err = repo.UpsertEntries(ctx, entries); err != nil {
		return 0, err
	}
	return len(entries), nil
}
