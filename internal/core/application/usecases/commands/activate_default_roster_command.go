package commands

import (
	"errors"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/pkg/errs"
	"orderflow/internal/pkg/guard"
)

var ErrActivateDefaultRosterCommandIsNotConstructed = errors.New(
	"ActivateDefaultRosterCommand must be created via NewActivateDefaultRosterCommand constructor",
)

// ActivateDefaultRosterCommand puts the outlet's default agents on today's roster.
type ActivateDefaultRosterCommand struct { //nolint:recvcheck //using for validation
	outletID kernel.UUID

	guard guard.ConstructorGuard
}

func NewActivateDefaultRosterCommand(outletID kernel.UUID) (ActivateDefaultRosterCommand, error) {
	cmd := ActivateDefaultRosterCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := cmd.setOutletID(outletID); err != nil {
		return ActivateDefaultRosterCommand{}, err
	}

	return cmd, nil
}

func (c ActivateDefaultRosterCommand) Validate() error {
	return c.guard.Validate(ErrActivateDefaultRosterCommandIsNotConstructed)
}

func (c ActivateDefaultRosterCommand) OutletID() kernel.UUID {
	return c.outletID
}

func (c *ActivateDefaultRosterCommand) setOutletID(outletID kernel.UUID) error {
	if err := outletID.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("outlet", err)
	}

	c.outletID = outletID
	return nil
}
