// Package ports defines the persistence and collaborator contracts of the
// orchestration engine. Adapters in internal/adapters implement them; command
// handlers depend on them only through a unit of work.
package ports

import (
	"context"
	"time"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
)

// OrderRepository is the order directory: read/write access to the order
// aggregate plus the id queries batch operations walk.
type OrderRepository interface {
	// Add persists a new order aggregate.
	Add(ctx context.Context, aggregate *order.Order) error

	// Update persists status, agent, previous status, reset count and schedule.
	// Line items are immutable after Add.
	Update(ctx context.Context, aggregate *order.Order) error

	// Get retrieves an order without locking it.
	Get(ctx context.Context, id kernel.UUID) (*order.Order, error)

	// GetForUpdate retrieves an order holding a row lock until the transaction ends.
	// Every read-modify-write of status or agent must go through it.
	GetForUpdate(ctx context.Context, id kernel.UUID) (*order.Order, error)

	// ListUnassignedIDs returns ids of orders in the outlet with no agent, an
	// assignable status and created within [from, to], oldest first.
	ListUnassignedIDs(ctx context.Context, outletID kernel.UUID, from, to time.Time) ([]kernel.UUID, error)

	// ListIDsByStatus returns ids of the outlet's orders whose status is one of statuses.
	ListIDsByStatus(ctx context.Context, outletID kernel.UUID, statuses []order.Status) ([]kernel.UUID, error)

	// ListScheduledIDs returns ids of the outlet's orders in status whose
	// scheduled time falls within [from, to).
	ListScheduledIDs(ctx context.Context, outletID kernel.UUID, status order.Status, from, to time.Time) ([]kernel.UUID, error)

	// ListIDsByPartnerProduct returns ids of the partner's orders in one of
	// statuses that have a line item for productID.
	ListIDsByPartnerProduct(
		ctx context.Context,
		partnerID, productID kernel.UUID,
		statuses []order.Status,
	) ([]kernel.UUID, error)

	// CountActiveByAgent counts, per agent, orders created within [from, to)
	// whose status is not terminal.
	CountActiveByAgent(ctx context.Context, agents []kernel.UUID, from, to time.Time) (map[kernel.UUID]int, error)
}
