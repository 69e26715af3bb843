package ports

import (
	"context"

	"orderflow/internal/core/domain/model/assignment"
	"orderflow/internal/core/domain/model/kernel"
)

// AssignmentLog is the append-only assignment audit log.
type AssignmentLog interface {
	Append(ctx context.Context, record assignment.Record) error
	ListForOrder(ctx context.Context, orderID kernel.UUID) ([]assignment.Record, error)
}
