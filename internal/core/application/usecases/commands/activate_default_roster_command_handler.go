package commands

import (
	"context"
)

// ActivateDefaultRosterCommandHandler upserts today's default roster entries.
// Agents added manually stay on the roster.
type ActivateDefaultRosterCommandHandler struct {
	uowFactory RosterUoWFactory
	rt         Runtime
}

func NewActivateDefaultRosterCommandHandler(
	uowFactory RosterUoWFactory,
	rt Runtime,
) ActivateDefaultRosterCommandHandler {
	return ActivateDefaultRosterCommandHandler{
		uowFactory: uowFactory,
		rt:         rt,
	}
}

// Handle returns the number of entries activated.
func (h *ActivateDefaultRosterCommandHandler) Handle(ctx context.Context, cmd ActivateDefaultRosterCommand) (int, error) {
	if err := cmd.Validate(); err != nil {
		return 0, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	activated, err := activateDefaultRoster(ctx, uow.RosterRepository(), cmd.OutletID(), h.rt.today())
	if err != nil {
		return 0, err
	}

	if err = uow.Commit(ctx); err != nil {
		return 0, err
	}

	log := h.rt.log()
	log.Info(log.WithFields(ctx, map[string]any{
		"outlet_id": cmd.OutletID().String(),
		"activated": activated,
	}), "default roster activated")

	return activated, nil
}
