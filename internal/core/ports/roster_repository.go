package ports

import (
	"context"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/roster"
)

// RosterRepository covers the agent directory and daily roster entries.
type RosterRepository interface {
	AddAgent(ctx context.Context, agent *roster.Agent) error

	// ListAgents returns the outlet's agents.
	ListAgents(ctx context.Context, outletID kernel.UUID) ([]*roster.Agent, error)

	// UpsertEntries inserts entries or updates the active flag of existing ones.
	UpsertEntries(ctx context.Context, entries []roster.Entry) error

	// DeactivateExcept marks every entry of (outlet, date) inactive except the given agents.
	DeactivateExcept(ctx context.Context, outletID kernel.UUID, date kernel.Date, keep []kernel.UUID) error

	// ActiveAgentIDs returns the roster: agents with an active entry for
	// (outlet, date) who are still active and in a sales role.
	ActiveAgentIDs(ctx context.Context, outletID kernel.UUID, date kernel.Date) ([]kernel.UUID, error)
}
