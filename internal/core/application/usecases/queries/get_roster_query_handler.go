package queries

import (
	"context"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GetRosterQueryHandler joins agents with their roster entry and current load.
type GetRosterQueryHandler struct {
	db *gorm.DB
}

func NewGetRosterQueryHandler(db *gorm.DB) GetRosterQueryHandler {
	return GetRosterQueryHandler{db: db}
}

// Handle returns the outlet's agents sorted by id. ActiveOrders counts every
// non-terminal order the agent currently holds.
func (h GetRosterQueryHandler) Handle(ctx context.Context, query GetRosterQuery) ([]GetRosterQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	terminal := make([]int, 0)
	for _, s := range order.Statuses() {
		if s.IsTerminal() {
			terminal = append(terminal, int(s))
		}
	}

	agents := make([]GetRosterQueryResponse, 0)

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			a.id,
			a.name,
			a.default_roster,
			CASE WHEN re.active AND a.active AND a.is_sales THEN 1 ELSE 0 END AS on_roster,
			(SELECT COUNT(*) FROM orders o WHERE o.agent_id = a.id AND o.status NOT IN ?) AS active_orders
		FROM agents a
		LEFT JOIN roster_entries re
			ON re.agent_id = a.id AND re.outlet_id = a.outlet_id AND re.business_date = ?
		WHERE a.outlet_id = ?
		ORDER BY a.id
	`, terminal, query.Date().String(), query.OutletID().Bytes()).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id           uuid.UUID
			name         string
			inDefault    bool
			onRoster     int
			activeOrders int
		)
		if err = rows.Scan(&id, &name, &inDefault, &onRoster, &activeOrders); err != nil {
			return nil, err
		}

		agentID, idErr := kernel.UUIDFromBytes(id[:])
		if idErr != nil {
			return nil, idErr
		}
		agents = append(agents, GetRosterQueryResponse{
			ID:              agentID,
			Name:            name,
			InDefaultRoster: inDefault,
			OnRoster:        onRoster == 1,
			ActiveOrders:    activeOrders,
		})
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return agents, nil
}
