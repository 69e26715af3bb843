package commands

import (
	"errors"
	"fmt"
	"time"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/pkg/errs"
	"orderflow/internal/pkg/guard"
)

var ErrAssignBacklogCommandIsNotConstructed = errors.New(
	"AssignBacklogCommand must be created via NewAssignBacklogCommand constructor",
)

// AssignBacklogCommand sweeps the unassigned orders of an outlet created
// within [from, to].
type AssignBacklogCommand struct { //nolint:recvcheck //using for validation
	outletID kernel.UUID
	from     time.Time
	to       time.Time

	guard guard.ConstructorGuard
}

func NewAssignBacklogCommand(outletID kernel.UUID, from, to time.Time) (AssignBacklogCommand, error) {
	cmd := AssignBacklogCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setOutletID(outletID),
		cmd.setWindow(from, to),
	); err != nil {
		return AssignBacklogCommand{}, err
	}

	return cmd, nil
}

func (c AssignBacklogCommand) Validate() error {
	return c.guard.Validate(ErrAssignBacklogCommandIsNotConstructed)
}

func (c AssignBacklogCommand) OutletID() kernel.UUID {
	return c.outletID
}

func (c AssignBacklogCommand) From() time.Time {
	return c.from
}

func (c AssignBacklogCommand) To() time.Time {
	return c.to
}

func (c *AssignBacklogCommand) setOutletID(outletID kernel.UUID) error {
	if err := outletID.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("outlet", err)
	}

	c.outletID = outletID
	return nil
}

func (c *AssignBacklogCommand) setWindow(from, to time.Time) error {
	if from.IsZero() || to.IsZero() {
		return errs.NewValueIsRequiredError("backlog window")
	}
	if to.Before(from) {
		return errs.NewValueIsInvalidErrorWithCause(
			"backlog window",
			fmt.Errorf("to %s is before from %s", to.Format(time.RFC3339), from.Format(time.RFC3339)),
		)
	}

	c.from = from
	c.to = to
	return nil
}
