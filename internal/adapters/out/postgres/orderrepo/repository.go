package orderrepo

import (
	"context"
	"errors"
	"time"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/pkg/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormOrderRepository implements ports.OrderRepository using GORM.
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GORM order repository.
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// Add saves a new order together with its line items.
func (r *GormOrderRepository) Add(ctx context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	return r.db.WithContext(ctx).Create(&dto).Error
}

// Update writes the mutable columns of an existing order.
func (r *GormOrderRepository) Update(ctx context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	result := r.db.WithContext(ctx).
		Model(&OrderDTO{}).
		Where("id = ?", dto.ID).
		Updates(mutableColumns(dto))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errs.NewObjectNotFoundError("order", aggregate.ID().String())
	}
	return nil
}

// Get retrieves an order by ID.
func (r *GormOrderRepository) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	return r.get(ctx, r.db.WithContext(ctx), id)
}

// GetForUpdate retrieves an order by ID and locks its row (SELECT ... FOR UPDATE).
// Drivers without row locks (sqlite) ignore the clause.
func (r *GormOrderRepository) GetForUpdate(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	return r.get(ctx, r.db.WithContext(ctx).Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate}), id)
}

func (r *GormOrderRepository) get(ctx context.Context, q *gorm.DB, id kernel.UUID) (*order.Order, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto OrderDTO
	if err := q.First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("order", id.String())
		}
		return nil, err
	}

	var items []OrderItemDTO
	if err := r.db.WithContext(ctx).Where("order_id = ?", dto.ID).Order("product_id").Find(&items).Error; err != nil {
		return nil, err
	}

	return toDomain(dto, items)
}

// ListUnassignedIDs returns backlog candidates, oldest first.
func (r *GormOrderRepository) ListUnassignedIDs(
	ctx context.Context,
	outletID kernel.UUID,
	from, to time.Time,
) ([]kernel.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&OrderDTO{}).
		Where("outlet_id = ? AND agent_id IS NULL", outletID.Bytes()).
		Where("status IN ?", statusInts(order.AwaitingAgentStatuses())).
		Where("created_at >= ? AND created_at <= ?", from.UTC(), to.UTC()).
		Order("created_at, id").
		Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}
	return toKernelIDs(ids)
}

// ListIDsByStatus returns ids of the outlet's orders in any of statuses.
func (r *GormOrderRepository) ListIDsByStatus(
	ctx context.Context,
	outletID kernel.UUID,
	statuses []order.Status,
) ([]kernel.UUID, error) {
	if len(statuses) == 0 {
		return nil, nil
	}

	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&OrderDTO{}).
		Where("outlet_id = ? AND status IN ?", outletID.Bytes(), statusInts(statuses)).
		Order("created_at, id").
		Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}
	return toKernelIDs(ids)
}

// ListScheduledIDs returns ids of orders in status scheduled within [from, to).
func (r *GormOrderRepository) ListScheduledIDs(
	ctx context.Context,
	outletID kernel.UUID,
	status order.Status,
	from, to time.Time,
) ([]kernel.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&OrderDTO{}).
		Where("outlet_id = ? AND status = ?", outletID.Bytes(), int(status)).
		Where("scheduled_at >= ? AND scheduled_at < ?", from.UTC(), to.UTC()).
		Order("scheduled_at, id").
		Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}
	return toKernelIDs(ids)
}

// ListIDsByPartnerProduct returns ids of the partner's orders needing productID.
func (r *GormOrderRepository) ListIDsByPartnerProduct(
	ctx context.Context,
	partnerID, productID kernel.UUID,
	statuses []order.Status,
) ([]kernel.UUID, error) {
	if len(statuses) == 0 {
		return nil, nil
	}

	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&OrderDTO{}).
		Distinct("orders.id").
		Joins("JOIN order_items ON order_items.order_id = orders.id").
		Where("orders.partner_id = ? AND order_items.product_id = ?", partnerID.Bytes(), productID.Bytes()).
		Where("orders.status IN ?", statusInts(statuses)).
		Order("orders.id").
		Pluck("orders.id", &ids).Error
	if err != nil {
		return nil, err
	}
	return toKernelIDs(ids)
}

type agentCount struct {
	AgentID uuid.UUID
	Total   int
}

// CountActiveByAgent counts non-terminal orders per agent created within [from, to).
// Agents without orders are absent from the result.
func (r *GormOrderRepository) CountActiveByAgent(
	ctx context.Context,
	agents []kernel.UUID,
	from, to time.Time,
) (map[kernel.UUID]int, error) {
	out := make(map[kernel.UUID]int, len(agents))
	if len(agents) == 0 {
		return out, nil
	}

	raw := make([]uuid.UUID, 0, len(agents))
	for _, a := range agents {
		raw = append(raw, a.Bytes())
	}

	var rows []agentCount
	err := r.db.WithContext(ctx).
		Model(&OrderDTO{}).
		Select("agent_id, COUNT(*) AS total").
		Where("agent_id IN ?", raw).
		Where("created_at >= ? AND created_at < ?", from.UTC(), to.UTC()).
		Where("status NOT IN ?", statusInts(order.StatusesIn(order.CategoryTerminal))).
		Group("agent_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		id, idErr := kernel.UUIDFromBytes(row.AgentID[:])
		if idErr != nil {
			return nil, idErr
		}
		out[id] = row.Total
	}
	return out, nil
}
