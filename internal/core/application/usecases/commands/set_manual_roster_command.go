package commands

import (
	"errors"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/pkg/errs"
	"orderflow/internal/pkg/guard"
)

var ErrSetManualRosterCommandIsNotConstructed = errors.New(
	"SetManualRosterCommand must be created via NewSetManualRosterCommand constructor",
)

// SetManualRosterCommand replaces the roster of (outlet, date) with exactly
// the given agents. An empty list empties the roster.
type SetManualRosterCommand struct { //nolint:recvcheck //using for validation
	outletID kernel.UUID
	date     kernel.Date
	agentIDs []kernel.UUID

	guard guard.ConstructorGuard
}

func NewSetManualRosterCommand(
	outletID kernel.UUID,
	date kernel.Date,
	agentIDs []kernel.UUID,
) (SetManualRosterCommand, error) {
	cmd := SetManualRosterCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setOutletID(outletID),
		cmd.setDate(date),
		cmd.setAgentIDs(agentIDs),
	); err != nil {
		return SetManualRosterCommand{}, err
	}

	return cmd, nil
}

func (c SetManualRosterCommand) Validate() error {
	return c.guard.Validate(ErrSetManualRosterCommandIsNotConstructed)
}

func (c SetManualRosterCommand) OutletID() kernel.UUID {
	return c.outletID
}

func (c SetManualRosterCommand) Date() kernel.Date {
	return c.date
}

// AgentIDs returns a copy of the requested agents, duplicates removed.
func (c SetManualRosterCommand) AgentIDs() []kernel.UUID {
	out := make([]kernel.UUID, len(c.agentIDs))
	copy(out, c.agentIDs)
	return out
}

func (c *SetManualRosterCommand) setOutletID(outletID kernel.UUID) error {
	if err := outletID.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("outlet", err)
	}

	c.outletID = outletID
	return nil
}

func (c *SetManualRosterCommand) setDate(date kernel.Date) error {
	if err := date.Validate(); err != nil {
		return err
	}

	c.date = date
	return nil
}

func (c *SetManualRosterCommand) setAgentIDs(agentIDs []kernel.UUID) error {
	seen := make(map[kernel.UUID]struct{}, len(agentIDs))
	out := make([]kernel.UUID, 0, len(agentIDs))
	for _, id := range agentIDs {
		if err := id.Validate(); err != nil {
			return errs.NewValueIsInvalidErrorWithCause("agent", err)
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}

	c.agentIDs = out
	return nil
}
