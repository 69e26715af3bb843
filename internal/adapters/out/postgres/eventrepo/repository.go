// Package eventrepo stores dispatched domain events in the order_events outbox.
package eventrepo

import (
	"context"
	"time"

	"orderflow/internal/core/domain/model/event"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type EventDTO struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	EventType   string    `gorm:"type:varchar(64);not null;index"`
	AggregateID uuid.UUID `gorm:"type:uuid;not null;index"`
	OutletID    uuid.UUID `gorm:"type:uuid;not null"`
	Payload     datatypes.JSONMap
	OccurredAt  time.Time `gorm:"not null"`
	CreatedAt   time.Time
}

func (EventDTO) TableName() string {
	return "order_events"
}

type GormEventOutbox struct {
	db *gorm.DB
}

func NewGormEventOutbox(db *gorm.DB) *GormEventOutbox {
	return &GormEventOutbox{db: db}
}

func (o *GormEventOutbox) Append(ctx context.Context, events []event.Event) error {
	if len(events) == 0 {
		return nil
	}

	dtos := make([]EventDTO, 0, len(events))
	for _, e := range events {
		payload := datatypes.JSONMap{}
		for k, v := range e.Attrs() {
			payload[k] = v
		}
		dtos = append(dtos, EventDTO{
			ID:          e.ID().Bytes(),
			EventType:   string(e.Type()),
			AggregateID: e.AggregateID().Bytes(),
			OutletID:    e.OutletID().Bytes(),
			Payload:     payload,
			OccurredAt:  e.OccurredAt().UTC(),
		})
	}
	return o.db.WithContext(ctx).Create(&dtos).Error
}

// CountByType returns how many events of typ were stored.
func (o *GormEventOutbox) CountByType(ctx context.Context, typ event.Type) (int64, error) {
	var n int64
	err := o.db.WithContext(ctx).Model(&EventDTO{}).Where("event_type = ?", string(typ)).Count(&n).Error
	return n, err
}
