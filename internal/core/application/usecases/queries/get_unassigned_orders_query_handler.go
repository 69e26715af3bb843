package queries

import (
	"context"
	"time"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GetUnassignedOrdersQueryHandler reads waiting orders from the orders table.
type GetUnassignedOrdersQueryHandler struct {
	db *gorm.DB
}

func NewGetUnassignedOrdersQueryHandler(db *gorm.DB) GetUnassignedOrdersQueryHandler {
	return GetUnassignedOrdersQueryHandler{db: db}
}

// Handle returns orders without an agent that still await one, including
// NoStock orders parked by the stock guard.
func (h GetUnassignedOrdersQueryHandler) Handle(
	ctx context.Context,
	query GetUnassignedOrdersQuery,
) ([]GetUnassignedOrdersQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	orders := make([]GetUnassignedOrdersQueryResponse, 0)

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			id,
			status,
			reset_count,
			created_at
		FROM orders
		WHERE outlet_id = ? AND agent_id IS NULL AND status IN ?
		ORDER BY created_at, id
	`, query.OutletID().Bytes(), waitingStatuses()).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id         uuid.UUID
			status     int
			resetCount int
			createdAt  time.Time
		)
		if err = rows.Scan(&id, &status, &resetCount, &createdAt); err != nil {
			return nil, err
		}

		orderID, idErr := kernel.UUIDFromBytes(id[:])
		if idErr != nil {
			return nil, idErr
		}
		orders = append(orders, GetUnassignedOrdersQueryResponse{
			ID:         orderID,
			Status:     order.Status(status),
			ResetCount: resetCount,
			CreatedAt:  createdAt,
		})
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return orders, nil
}

func waitingStatuses() []int {
	statuses := append(order.AwaitingAgentStatuses(), order.NoStock)
	out := make([]int, 0, len(statuses))
	for _, s := range statuses {
		out = append(out, int(s))
	}
	return out
}
