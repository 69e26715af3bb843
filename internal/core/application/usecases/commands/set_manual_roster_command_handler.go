package commands

import (
	"context"
	"fmt"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/roster"
	"orderflow/internal/pkg/errs"
)

// SetManualRosterCommandHandler applies an operator-chosen roster.
type SetManualRosterCommandHandler struct {
	uowFactory RosterUoWFactory
	rt         Runtime
}

func NewSetManualRosterCommandHandler(uowFactory RosterUoWFactory, rt Runtime) SetManualRosterCommandHandler {
	return SetManualRosterCommandHandler{
		uowFactory: uowFactory,
		rt:         rt,
	}
}

// Handle rejects agents that do not belong to the outlet or cannot take
// orders, then activates the given agents and deactivates everyone else for
// that date. It returns the resulting roster.
func (h *SetManualRosterCommandHandler) Handle(ctx context.Context, cmd SetManualRosterCommand) ([]kernel.UUID, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	repo := uow.RosterRepository()
	agents, err := repo.ListAgents(ctx, cmd.OutletID())
	if err != nil {
		return nil, err
	}
	byID := make(map[kernel.UUID]*roster.Agent, len(agents))
	for _, a := range agents {
		byID[a.ID()] = a
	}

	keep := cmd.AgentIDs()
	entries := make([]roster.Entry, 0, len(keep))
	for _, id := range keep {
		agent, ok := byID[id]
		if !ok {
			return nil, errs.NewObjectNotFoundError("agent", id)
		}
		if !agent.Eligible() {
			return nil, errs.NewValueIsInvalidErrorWithCause(
				"agent",
				fmt.Errorf("%s is inactive or not in a sales role", agent.Name()),
			)
		}
		entry, err := roster.NewEntry(cmd.OutletID(), cmd.Date(), id, true)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	if len(entries) > 0 {
		if err = repo.UpsertEntries(ctx, entries); err != nil {
			return nil, err
		}
	}
	if err = repo.DeactivateExcept(ctx, cmd.OutletID(), cmd.Date(), keep); err != nil {
		return nil, err
	}

	active, err := repo.ActiveAgentIDs(ctx, cmd.OutletID(), cmd.Date())
	if err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	log := h.rt.log()
	log.Info(log.WithFields(ctx, map[string]any{
		"outlet_id": cmd.OutletID().String(),
		"date":      cmd.Date().String(),
		"agents":    len(active),
	}), "manual roster applied")

	return active, nil
}
