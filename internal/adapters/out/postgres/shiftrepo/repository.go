package shiftrepo

import (
	"context"
	"errors"
	"time"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/shift"
	"orderflow/internal/pkg/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormShiftRepository implements ports.ShiftRepository using GORM.
type GormShiftRepository struct {
	db *gorm.DB
}

func NewGormShiftRepository(db *gorm.DB) *GormShiftRepository {
	return &GormShiftRepository{db: db}
}

// GetOrCreateForUpdate inserts an empty shift if (outlet, date) has none, then
// reads it back with a row lock. Concurrent creators race on the unique index
// and the loser's insert is a no-op.
func (r *GormShiftRepository) GetOrCreateForUpdate(
	ctx context.Context,
	outletID kernel.UUID,
	date kernel.Date,
) (*shift.Shift, error) {
	fresh, err := shift.NewShift(kernel.NewUUID(), outletID, date)
	if err != nil {
		return nil, err
	}

	dto := fromDomain(fresh)
	err = r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "outlet_id"}, {Name: "business_date"}},
			DoNothing: true,
		}).
		Create(&dto).Error
	if err != nil {
		return nil, err
	}

	var locked ShiftDTO
	err = r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate}).
		First(&locked, "outlet_id = ? AND business_date = ?", outletID.Bytes(), date.String()).Error
	if err != nil {
		return nil, err
	}
	return toDomain(locked)
}

func (r *GormShiftRepository) Find(ctx context.Context, outletID kernel.UUID, date kernel.Date) (*shift.Shift, error) {
	var dto ShiftDTO
	err := r.db.WithContext(ctx).
		First(&dto, "outlet_id = ? AND business_date = ?", outletID.Bytes(), date.String()).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("shift", outletID.String()+"/"+date.String())
		}
		return nil, err
	}
	return toDomain(dto)
}

func (r *GormShiftRepository) Update(ctx context.Context, s *shift.Shift) error {
	if err := s.Validate(); err != nil {
		return err
	}
	dto := fromDomain(s)
	result := r.db.WithContext(ctx).
		Model(&ShiftDTO{}).
		Where("id = ?", dto.ID).
		Updates(map[string]any{
			"open_at":   dto.OpenAt,
			"close_at":  dto.CloseAt,
			"opened_by": dto.OpenedBy,
			"closed_by": dto.ClosedBy,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errs.NewObjectNotFoundError("shift", s.ID().String())
	}
	return nil
}

// LatestCloseBefore returns the latest close time among the outlet's earlier shifts.
func (r *GormShiftRepository) LatestCloseBefore(
	ctx context.Context,
	outletID kernel.UUID,
	date kernel.Date,
) (*time.Time, error) {
	var dto ShiftDTO
	err := r.db.WithContext(ctx).
		Where("outlet_id = ? AND business_date < ? AND close_at IS NOT NULL", outletID.Bytes(), date.String()).
		Order("close_at DESC").
		Limit(1).
		Find(&dto).Error
	if err != nil {
		return nil, err
	}
	if dto.ID == uuid.Nil {
		return nil, nil
	}
	return dto.CloseAt, nil
}

// LatestOpenBeforeForUpdate finds a shift left open past its business date.
func (r *GormShiftRepository) LatestOpenBeforeForUpdate(
	ctx context.Context,
	outletID kernel.UUID,
	date kernel.Date,
) (*shift.Shift, error) {
	var dtos []ShiftDTO
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate}).
		Where("outlet_id = ? AND business_date < ? AND open_at IS NOT NULL AND close_at IS NULL", outletID.Bytes(), date.String()).
		Order("business_date DESC").
		Limit(1).
		Find(&dtos).Error
	if err != nil {
		return nil, err
	}
	if len(dtos) == 0 {
		return nil, nil
	}
	return toDomain(dtos[0])
}

func (r *GormShiftRepository) ListOpen(ctx context.Context, date kernel.Date) ([]*shift.Shift, error) {
	var dtos []ShiftDTO
	err := r.db.WithContext(ctx).
		Where("business_date = ? AND open_at IS NOT NULL AND close_at IS NULL", date.String()).
		Order("outlet_id").
		Find(&dtos).Error
	if err != nil {
		return nil, err
	}

	out := make([]*shift.Shift, 0, len(dtos))
	for _, dto := range dtos {
		s, sErr := toDomain(dto)
		if sErr != nil {
			return nil, sErr
		}
		out = append(out, s)
	}
	return out, nil
}
