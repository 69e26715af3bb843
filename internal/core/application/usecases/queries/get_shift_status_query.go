// Package queries contains read operations for retrieving system state.
// Implements the Query pattern for read operations in the CQRS architecture.
// Queries return read models built with raw SQL and never create or lock rows.
package queries

import (
	"errors"
	"time"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/pkg/errs"
	"orderflow/internal/pkg/guard"
)

var ErrGetShiftStatusQueryIsNotConstructed = errors.New(
	"GetShiftStatusQuery must be created via NewGetShiftStatusQuery constructor",
)

// GetShiftStatusQuery reads the shift of (outlet, date). A date without a
// shift row reports a closed, never-opened shift.
//
// Example:
//
//	query, err := NewGetShiftStatusQuery(outletID, kernel.DateOf(time.Now(), loc))
//	if err != nil {
//	    return err
//	}
//	status, err := handler.Handle(ctx, query)
//	if status.IsOpen {
//	    fmt.Printf("open since %s with %d agents\n", status.OpenAt, status.ActiveAgents)
//	}
type GetShiftStatusQuery struct { //nolint:recvcheck //using for validation
	outletID kernel.UUID
	date     kernel.Date

	guard guard.ConstructorGuard
}

func NewGetShiftStatusQuery(outletID kernel.UUID, date kernel.Date) (GetShiftStatusQuery, error) {
	q := GetShiftStatusQuery{guard: guard.NewConstructorGuard()}

	if err := outletID.Validate(); err != nil {
		return GetShiftStatusQuery{}, errs.NewValueIsRequiredErrorWithCause("outlet", err)
	}
	if err := date.Validate(); err != nil {
		return GetShiftStatusQuery{}, err
	}
	q.outletID, q.date = outletID, date

	return q, nil
}

// Validate ensures the query was created through the constructor.
func (q GetShiftStatusQuery) Validate() error {
	return q.guard.Validate(ErrGetShiftStatusQueryIsNotConstructed)
}

func (q GetShiftStatusQuery) OutletID() kernel.UUID {
	return q.outletID
}

func (q GetShiftStatusQuery) Date() kernel.Date {
	return q.date
}

// GetShiftStatusQueryResponse is the shift read model.
type GetShiftStatusQueryResponse struct {
	OutletID     kernel.UUID
	Date         kernel.Date
	IsOpen       bool
	OpenAt       *time.Time
	CloseAt      *time.Time
	OpenedBy     *kernel.UUID
	ClosedBy     *kernel.UUID
	ActiveAgents int
}
