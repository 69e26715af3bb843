package queries

import (
	"errors"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/pkg/errs"
	"orderflow/internal/pkg/guard"
)

var ErrGetRosterQueryIsNotConstructed = errors.New(
	"GetRosterQuery must be created via NewGetRosterQuery constructor",
)

// GetRosterQuery lists the agents of an outlet with their roster state for a date.
type GetRosterQuery struct { //nolint:recvcheck //using for validation
	outletID kernel.UUID
	date     kernel.Date

	guard guard.ConstructorGuard
}

func NewGetRosterQuery(outletID kernel.UUID, date kernel.Date) (GetRosterQuery, error) {
	if err := outletID.Validate(); err != nil {
		return GetRosterQuery{}, errs.NewValueIsRequiredErrorWithCause("outlet", err)
	}
	if err := date.Validate(); err != nil {
		return GetRosterQuery{}, err
	}
	return GetRosterQuery{outletID: outletID, date: date, guard: guard.NewConstructorGuard()}, nil
}

func (q GetRosterQuery) Validate() error {
	return q.guard.Validate(ErrGetRosterQueryIsNotConstructed)
}

func (q GetRosterQuery) OutletID() kernel.UUID {
	return q.outletID
}

func (q GetRosterQuery) Date() kernel.Date {
	return q.date
}

// GetRosterQueryResponse describes one agent of the outlet. OnRoster is true
// when the agent would receive orders on that date.
type GetRosterQueryResponse struct {
	ID              kernel.UUID
	Name            string
	InDefaultRoster bool
	OnRoster        bool
	ActiveOrders    int
}
