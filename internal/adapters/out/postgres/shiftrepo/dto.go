// Package shiftrepo persists the shift ledger: one row per (outlet, business date).
package shiftrepo

import (
	"time"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/shift"

	"github.com/google/uuid"
)

// ShiftDTO maps a shift row. BusinessDate is "YYYY-MM-DD" in the business timezone.
type ShiftDTO struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	OutletID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:ux_shifts_outlet_date,priority:1"`
	BusinessDate string    `gorm:"type:varchar(10);not null;uniqueIndex:ux_shifts_outlet_date,priority:2"`
	OpenAt       *time.Time
	CloseAt      *time.Time
	OpenedBy     *uuid.UUID `gorm:"type:uuid"`
	ClosedBy     *uuid.UUID `gorm:"type:uuid"`
}

func (ShiftDTO) TableName() string {
	return "shifts"
}

func fromDomain(s *shift.Shift) ShiftDTO {
	return ShiftDTO{
		ID:           s.ID().Bytes(),
		OutletID:     s.OutletID().Bytes(),
		BusinessDate: s.Date().String(),
		OpenAt:       utc(s.OpenAt()),
		CloseAt:      utc(s.CloseAt()),
		OpenedBy:     optionalID(s.OpenedBy()),
		ClosedBy:     optionalID(s.ClosedBy()),
	}
}

func toDomain(dto ShiftDTO) (*shift.Shift, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	outletID, err := kernel.UUIDFromBytes(dto.OutletID[:])
	if err != nil {
		return nil, err
	}
	date, err := kernel.ParseDate(dto.BusinessDate)
	if err != nil {
		return nil, err
	}
	openedBy, err := restoreOptionalID(dto.OpenedBy)
	if err != nil {
		return nil, err
	}
	closedBy, err := restoreOptionalID(dto.ClosedBy)
	if err != nil {
		return nil, err
	}
	return shift.RestoreShift(id, outletID, date, dto.OpenAt, dto.CloseAt, openedBy, closedBy)
}

func utc(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := t.UTC()
	return &v
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
