package commands

import (
	"errors"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/pkg/errs"
	"orderflow/internal/pkg/guard"
)

var (
	ErrOpenShiftCommandIsNotConstructed = errors.New(
		"OpenShiftCommand must be created via NewOpenShiftCommand constructor",
	)
	ErrCloseShiftCommandIsNotConstructed = errors.New(
		"CloseShiftCommand must be created via NewCloseShiftCommand constructor",
	)
)

// OpenShiftCommand opens today's shift of an outlet. operatorID is nil when
// the scheduler opens the shift.
type OpenShiftCommand struct { //nolint:recvcheck //using for validation
	outletID   kernel.UUID
	operatorID *kernel.UUID

	guard guard.ConstructorGuard
}

func NewOpenShiftCommand(outletID kernel.UUID, operatorID *kernel.UUID) (OpenShiftCommand, error) {
	cmd := OpenShiftCommand{
		guard: guard.NewConstructorGuard(),
	}

	outlet, operator, err := shiftActors(outletID, operatorID)
	if err != nil {
		return OpenShiftCommand{}, err
	}
	cmd.outletID, cmd.operatorID = outlet, operator

	return cmd, nil
}

func (c OpenShiftCommand) Validate() error {
	return c.guard.Validate(ErrOpenShiftCommandIsNotConstructed)
}

func (c OpenShiftCommand) OutletID() kernel.UUID {
	return c.outletID
}

func (c OpenShiftCommand) OperatorID() *kernel.UUID {
	return c.operatorID
}

// CloseShiftCommand closes today's shift of an outlet and runs the reset machine.
type CloseShiftCommand struct { //nolint:recvcheck //using for validation
	outletID   kernel.UUID
	operatorID *kernel.UUID

	guard guard.ConstructorGuard
}

func NewCloseShiftCommand(outletID kernel.UUID, operatorID *kernel.UUID) (CloseShiftCommand, error) {
	cmd := CloseShiftCommand{
		guard: guard.NewConstructorGuard(),
	}

	outlet, operator, err := shiftActors(outletID, operatorID)
	if err != nil {
		return CloseShiftCommand{}, err
	}
	cmd.outletID, cmd.operatorID = outlet, operator

	return cmd, nil
}

func (c CloseShiftCommand) Validate() error {
	return c.guard.Validate(ErrCloseShiftCommandIsNotConstructed)
}

func (c CloseShiftCommand) OutletID() kernel.UUID {
	return c.outletID
}

func (c CloseShiftCommand) OperatorID() *kernel.UUID {
	return c.operatorID
}

func shiftActors(outletID kernel.UUID, operatorID *kernel.UUID) (kernel.UUID, *kernel.UUID, error) {
	var errOutlet, errOperator error
	if err := outletID.Validate(); err != nil {
		errOutlet = errs.NewValueIsRequiredErrorWithCause("outlet", err)
	}

	var operator *kernel.UUID
	if operatorID != nil {
		if err := operatorID.Validate(); err != nil {
			errOperator = errs.NewValueIsInvalidErrorWithCause("operator", err)
		} else {
			id := *operatorID
			operator = &id
		}
	}

	if err := errors.Join(errOutlet, errOperator); err != nil {
		return kernel.UUID{}, nil, err
	}
	return outletID, operator, nil
}
