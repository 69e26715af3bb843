package queries

import (
	"errors"
	"time"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/pkg/errs"
	"orderflow/internal/pkg/guard"
)

var ErrGetUnassignedOrdersQueryIsNotConstructed = errors.New(
	"GetUnassignedOrdersQuery must be created via NewGetUnassignedOrdersQuery constructor",
)

// GetUnassignedOrdersQuery lists the orders of an outlet that are waiting for
// an agent, including those parked in NoStock, oldest first.
//
// Example:
//
//	query, _ := NewGetUnassignedOrdersQuery(outletID)
//	orders, err := handler.Handle(ctx, query)
//	if err != nil {
//	    return fmt.Errorf("failed to get backlog: %w", err)
//	}
//	fmt.Printf("%d orders wait for an agent\n", len(orders))
type GetUnassignedOrdersQuery struct { //nolint:recvcheck //using for validation
	outletID kernel.UUID

	guard guard.ConstructorGuard
}

func NewGetUnassignedOrdersQuery(outletID kernel.UUID) (GetUnassignedOrdersQuery, error) {
	if err := outletID.Validate(); err != nil {
		return GetUnassignedOrdersQuery{}, errs.NewValueIsRequiredErrorWithCause("outlet", err)
	}
	return GetUnassignedOrdersQuery{outletID: outletID, guard: guard.NewConstructorGuard()}, nil
}

func (q GetUnassignedOrdersQuery) Validate() error {
	return q.guard.Validate(ErrGetUnassignedOrdersQueryIsNotConstructed)
}

func (q GetUnassignedOrdersQuery) OutletID() kernel.UUID {
	return q.outletID
}

// GetUnassignedOrdersQueryResponse is one waiting order.
type GetUnassignedOrdersQueryResponse struct {
	ID         kernel.UUID
	Status     order.Status
	ResetCount int
	CreatedAt  time.Time
}
