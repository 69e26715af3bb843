// Package shift models the per-outlet business day: one Shift per
// (outlet, date), opened and closed at most once.
package shift

import (
	"errors"
	"time"

	"orderflow/internal/core/domain/model/kernel"
)

var (
	ErrShiftIsNotConstructed = errors.New("Shift must be created via NewShift constructor")

	// ErrAlreadyOpen rejects a second open of the same (outlet, date).
	ErrAlreadyOpen = errors.New("shift is already open")
	// ErrNotOpen rejects closing a shift that was never opened.
	ErrNotOpen = errors.New("shift is not open")
	// ErrAlreadyClosed rejects closing a shift twice.
	ErrAlreadyClosed = errors.New("shift is already closed")
)

// Shift is the open/close record of one outlet on one calendar date.
// Operator references are nil for transitions made by the scheduler.
type Shift struct {
	id       kernel.UUID
	outletID kernel.UUID
	date     kernel.Date

	openAt   *time.Time
	closeAt  *time.Time
	openedBy *kernel.UUID
	closedBy *kernel.UUID

	isConstructed bool
}

// State is the read model returned to callers.
type State struct {
	OutletID kernel.UUID
	Date     kernel.Date
	IsOpen   bool
	OpenAt   *time.Time
	CloseAt  *time.Time
	OpenedBy *kernel.UUID
	ClosedBy *kernel.UUID
}

func NewShift(id, outletID kernel.UUID, date kernel.Date) (*Shift, error) {
	if err := errors.Join(id.Validate(), outletID.Validate(), date.Validate()); err != nil {
		return nil, err
	}
	return &Shift{id: id, outletID: outletID, date: date, isConstructed: true}, nil
}

// RestoreShift rebuilds a shift from persistence.
func RestoreShift(
	id, outletID kernel.UUID,
	date kernel.Date,
	openAt, closeAt *time.Time,
	openedBy, closedBy *kernel.UUID,
) (*Shift, error) {
	s, err := NewShift(id, outletID, date)
	if err != nil {
		return nil, err
	}
	if closeAt != nil && openAt == nil {
		return nil, ErrNotOpen
	}
	s.openAt, s.closeAt = openAt, closeAt
	s.openedBy, s.closedBy = openedBy, closedBy
	return s, nil
}

func (s *Shift) Validate() error {
	if s == nil || !s.isConstructed {
		return ErrShiftIsNotConstructed
	}
	return nil
}

func (s *Shift) ID() kernel.UUID { return s.id }
func (s *Shift) OutletID() kernel.UUID { return s.outletID }
func (s *Shift) Date() kernel.Date { return s.date }
func (s *Shift) OpenAt() *time.Time { return s.openAt }
func (s *Shift) CloseAt() *time.Time { return s.closeAt }
func (s *Shift) OpenedBy() *kernel.UUID { return s.openedBy }
func (s *Shift) ClosedBy() *kernel.UUID { return s.closedBy }

// IsOpen is derived: opened and not yet closed.
func (s *Shift) IsOpen() bool {
	return s.openAt != nil && s.closeAt == nil
}

func (s *Shift) Open(operator *kernel.UUID, at time.Time) error {
	if s.openAt != nil {
		return ErrAlreadyOpen
	}
	s.openAt = &at
	s.openedBy = operator
	return nil
}

func (s *Shift) Close(operator *kernel.UUID, at time.Time) error {
	if s.openAt == nil {
		return ErrNotOpen
	}
	if s.closeAt != nil {
		return ErrAlreadyClosed
	}
	s.closeAt = &at
	s.closedBy = operator
	return nil
}

// IsPrecondition reports whether err is one of the shift transition rejections.
func IsPrecondition(err error) bool {
	return errors.Is(err, ErrAlreadyOpen) || errors.Is(err, ErrNotOpen) || errors.Is(err, ErrAlreadyClosed)
}

func (s *Shift) State() State {
	return State{
		OutletID: s.outletID,
		Date:     s.date,
		IsOpen:   s.IsOpen(),
		OpenAt:   s.openAt,
		CloseAt:  s.closeAt,
		OpenedBy: s.openedBy,
		ClosedBy: s.closedBy,
	}
}
