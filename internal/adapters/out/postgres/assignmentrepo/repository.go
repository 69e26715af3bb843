// Package assignmentrepo persists the append-only assignment audit log.
package assignmentrepo

import (
	"context"
	"time"

	"orderflow/internal/core/domain/model/assignment"
	"orderflow/internal/core/domain/model/kernel"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AssignmentDTO is one row of order_assignments. Rows are never updated.
type AssignmentDTO struct {
	ID         uuid.UUID         `gorm:"type:uuid;primaryKey"`
	OrderID    uuid.UUID         `gorm:"type:uuid;not null;index"`
	AgentID    uuid.UUID         `gorm:"type:uuid;not null;index"`
	Strategy   string            `gorm:"type:varchar(32);not null"`
	OperatorID *uuid.UUID        `gorm:"type:uuid"`
	Metadata   datatypes.JSONMap
	CreatedAt  time.Time         `gorm:"not null"`
}

func (AssignmentDTO) TableName() string {
	return "order_assignments"
}

type GormAssignmentLog struct {
	db *gorm.DB
}

func NewGormAssignmentLog(db *gorm.DB) *GormAssignmentLog {
	return &GormAssignmentLog{db: db}
}

func (l *GormAssignmentLog) Append(ctx context.Context, record assignment.Record) error {
	dto := AssignmentDTO{
		ID:        record.ID().Bytes(),
		OrderID:   record.OrderID().Bytes(),
		AgentID:   record.AgentID().Bytes(),
		Strategy:  record.Strategy(),
		Metadata:  datatypes.JSONMap(record.Metadata()),
		CreatedAt: record.CreatedAt().UTC(),
	}
	if op := record.OperatorID(); op != nil {
		raw := op.Bytes()
		dto.OperatorID = &raw
	}
	return l.db.WithContext(ctx).Create(&dto).Error
}

func (l *GormAssignmentLog) ListForOrder(ctx context.Context, orderID kernel.UUID) ([]assignment.Record, error) {
	var dtos []AssignmentDTO
	err := l.db.WithContext(ctx).
		Where("order_id = ?", orderID.Bytes()).
		Order("created_at").
		Find(&dtos).Error
	if err != nil {
		return nil, err
	}

	out := make([]assignment.Record, 0, len(dtos))
	for _, dto := range dtos {
		id, err := kernel.UUIDFromBytes(dto.ID[:])
		if err != nil {
			return nil, err
		}
		oID, err := kernel.UUIDFromBytes(dto.OrderID[:])
		if err != nil {
			return nil, err
		}
		aID, err := kernel.UUIDFromBytes(dto.AgentID[:])
		if err != nil {
			return nil, err
		}
		var operator *kernel.UUID
		if dto.OperatorID != nil {
			op, opErr := kernel.UUIDFromBytes(dto.OperatorID[:])
			if opErr != nil {
				return nil, opErr
			}
			operator = &op
		}
		out = append(out, assignment.RestoreRecord(id, oID, aID, dto.Strategy, operator, dto.Metadata, dto.CreatedAt))
	}
	return out, nil
}
