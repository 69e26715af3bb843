package ports

import (
	"context"
	"time"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/shift"
)

// ShiftRepository is the shift ledger.
type ShiftRepository interface {
	// GetOrCreateForUpdate returns the (outlet, date) shift, creating an empty
	// one if missing, and holds its row lock until the transaction ends.
	GetOrCreateForUpdate(ctx context.Context, outletID kernel.UUID, date kernel.Date) (*shift.Shift, error)

	// Find returns the (outlet, date) shift or an errs.ObjectNotFoundError.
	Find(ctx context.Context, outletID kernel.UUID, date kernel.Date) (*shift.Shift, error)

	Update(ctx context.Context, s *shift.Shift) error

	// LatestCloseBefore returns the most recent close time of the outlet's
	// shifts dated before date, or nil.
	LatestCloseBefore(ctx context.Context, outletID kernel.UUID, date kernel.Date) (*time.Time, error)

	// LatestOpenBeforeForUpdate returns the most recent shift of the outlet
	// dated before date that is still open, locked, or nil.
	LatestOpenBeforeForUpdate(ctx context.Context, outletID kernel.UUID, date kernel.Date) (*shift.Shift, error)

	// ListOpen returns the shifts of date that are open.
	ListOpen(ctx context.Context, date kernel.Date) ([]*shift.Shift, error)
}
