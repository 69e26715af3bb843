// Package orderrepo provides data transfer objects and mapping functions for order persistence.
// This package implements the repository pattern for the order aggregate, handling
// the conversion between domain entities and database representations.
package orderrepo

import (
	"time"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"

	"github.com/google/uuid"
)

// OrderDTO represents the database structure for persisting order aggregates.
// Indexed for the engine's batch queries: by outlet+status, by partner and by agent.
type OrderDTO struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey"`
	OutletID       uuid.UUID  `gorm:"type:uuid;not null;index:idx_orders_outlet_status,priority:1"`
	PartnerID      *uuid.UUID `gorm:"type:uuid;index"`
	Status         int        `gorm:"not null;index:idx_orders_outlet_status,priority:2"`
	AgentID        *uuid.UUID `gorm:"type:uuid;index"`
	PreviousStatus *int
	ResetCount     int `gorm:"not null;default:0"`
	ScheduledAt    *time.Time
	CreatedAt      time.Time      `gorm:"not null;index"`
	Items          []OrderItemDTO `gorm:"foreignKey:OrderID"`
}

// TableName specifies the database table name for order entities.
func (OrderDTO) TableName() string {
	return "orders"
}

// OrderItemDTO stores one required (product, quantity) line of an order.
type OrderItemDTO struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	OrderID   uuid.UUID `gorm:"type:uuid;not null;index"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;index"`
	Quantity  int       `gorm:"not null"`
}

func (OrderItemDTO) TableName() string {
	return "order_items"
}

// fromDomain converts an order aggregate to its database representation.
// Timestamps are stored in UTC.
func fromDomain(o *order.Order) OrderDTO {
	dto := OrderDTO{
		ID:         o.ID().Bytes(),
		OutletID:   o.OutletID().Bytes(),
		PartnerID:  optionalID(o.PartnerID()),
		Status:     int(o.Status()),
		AgentID:    optionalID(o.Agent()),
		ResetCount: o.ResetCount(),
		CreatedAt:  o.CreatedAt().UTC(),
	}
	if prev := o.PreviousStatus(); prev != nil {
		v := int(*prev)
		dto.PreviousStatus = &v
	}
	if at := o.ScheduledAt(); at != nil {
		utc := at.UTC()
		dto.ScheduledAt = &utc
	}
	for _, item := range o.Items() {
		dto.Items = append(dto.Items, OrderItemDTO{
			ID:        uuid.New(),
			OrderID:   dto.ID,
			ProductID: item.ProductID().Bytes(),
			Quantity:  item.Quantity(),
		})
	}
	return dto
}

// mutableColumns are the columns Update writes. Nil values must be written
// too, so updates go through a map instead of the struct.
func mutableColumns(dto OrderDTO) map[string]any {
	return map[string]any{
		"status":          dto.Status,
		"agent_id":        dto.AgentID,
		"previous_status": dto.PreviousStatus,
		"reset_count":     dto.ResetCount,
		"scheduled_at":    dto.ScheduledAt,
	}
}

// toDomain rebuilds the aggregate via RestoreOrder, which re-checks invariants.
func toDomain(dto OrderDTO, items []OrderItemDTO) (*order.Order, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	outletID, err := kernel.UUIDFromBytes(dto.OutletID[:])
	if err != nil {
		return nil, err
	}
	partnerID, err := restoreOptionalID(dto.PartnerID)
	if err != nil {
		return nil, err
	}
	agentID, err := restoreOptionalID(dto.AgentID)
	if err != nil {
		return nil, err
	}

	var prev *order.Status
	if dto.PreviousStatus != nil {
		s := order.Status(*dto.PreviousStatus)
		prev = &s
	}

	lineItems := make([]order.LineItem, 0, len(items))
	for _, item := range items {
		productID, pErr := kernel.UUIDFromBytes(item.ProductID[:])
		if pErr != nil {
			return nil, pErr
		}
		li, lErr := order.NewLineItem(productID, item.Quantity)
		if lErr != nil {
			return nil, lErr
		}
		lineItems = append(lineItems, li)
	}

	return order.RestoreOrder(order.Snapshot{
		ID:             id,
		OutletID:       outletID,
		PartnerID:      partnerID,
		Status:         order.Status(dto.Status),
		AgentID:        agentID,
		PreviousStatus: prev,
		ResetCount:     dto.ResetCount,
		ScheduledAt:    dto.ScheduledAt,
		CreatedAt:      dto.CreatedAt,
		Items:          lineItems,
	})
}

func optionalID(id *kernel.UUID) *uuid.UUID {
	if id == nil {
		return nil
	}
	raw := id.Bytes()
	return &raw
}

func restoreOptionalID(raw *uuid.UUID) (*kernel.UUID, error) {
	if raw == nil {
		return nil, nil
	}
	id, err := kernel.UUIDFromBytes(raw[:])
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func toKernelIDs(raw []uuid.UUID) ([]kernel.UUID, error) {
	out := make([]kernel.UUID, 0, len(raw))
	for _, r := range raw {
		id, err := kernel.UUIDFromBytes(r[:])
		if err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, nil
}

func statusInts(statuses []order.Status) []int {
	out := make([]int, 0, len(statuses))
	for _, s := range statuses {
		out = append(out, int(s))
	}
	return out
}
