package order

import (
	"errors"
	"fmt"
	"time"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/pkg/errs"
)

var (
	// ErrOrderIsNotConstructed is returned when an Order instance was not created through
	// NewOrder or RestoreOrder.
	ErrOrderIsNotConstructed = errors.New("Order must be created via NewOrder constructor")

	// ErrAlreadyAssigned is returned by Assign when the order already carries an agent.
	ErrAlreadyAssigned = errors.New("order already has an assigned agent")

	// ErrNotAssignable is returned by Assign when the current status does not accept an agent.
	ErrNotAssignable = errors.New("order status does not allow assignment")

	// ErrNotOutOfStock is returned by the recovery transitions when the order is not in NoStock.
	ErrNotOutOfStock = errors.New("order is not in the no-stock sentinel")

	// ErrInconsistentRecoveryTarget is returned when a NoStock order remembers a terminal
	// previous status. Recovery must never move an order into a terminal status.
	ErrInconsistentRecoveryTarget = errors.New("previous status is terminal")

	// ErrTerminal is returned for transitions attempted on delivered, cancelled or rejected orders.
	ErrTerminal = errors.New("order is in a terminal status")
)

// Order is the aggregate the engine mutates: status, agent, the saved
// previous status used by the stock guard, and the reset counter driving
// shift-close escalation.
//
// Invariants:
//   - the agent is set only while Status().CanHaveAgent() holds, and always set in Assigned
//   - previous status is set only while the status is NoStock
//   - reset count is never negative
type Order struct {
	id        kernel.UUID
	outletID  kernel.UUID
	partnerID *kernel.UUID

	status         Status
	agentID        *kernel.UUID
	previousStatus *Status
	resetCount     int

	scheduledAt *time.Time
	createdAt   time.Time
	items       []LineItem

	isConstructed bool
}

// Snapshot carries the persisted state of an order for RestoreOrder.
type Snapshot struct {
	ID             kernel.UUID
	OutletID       kernel.UUID
	PartnerID      *kernel.UUID
	Status         Status
	AgentID        *kernel.UUID
	PreviousStatus *Status
	ResetCount     int
	ScheduledAt    *time.Time
	CreatedAt      time.Time
	Items          []LineItem
}

// NewOrder creates an unassigned order in status New.
//
// partnerID is the fulfilment partner whose warehouses back the order; it may be nil
// for orders that are not stock-guarded.
func NewOrder(id, outletID kernel.UUID, partnerID *kernel.UUID, items []LineItem, createdAt time.Time) (*Order, error) {
	o := &Order{
		status:        New,
		createdAt:     createdAt,
		isConstructed: true,
	}

	if err := errors.Join(
		o.setID(id),
		o.setOutlet(outletID),
		o.setPartner(partnerID),
		o.setItems(items),
	); err != nil {
		return nil, err
	}

	return o, nil
}

// RestoreOrder rebuilds an order from persistence, re-checking every invariant.
func RestoreOrder(s Snapshot) (*Order, error) {
	o := &Order{
		status:         s.Status,
		agentID:        s.AgentID,
		previousStatus: s.PreviousStatus,
		resetCount:     s.ResetCount,
		scheduledAt:    s.ScheduledAt,
		createdAt:      s.CreatedAt,
		isConstructed:  true,
	}

	if err := errors.Join(
		o.setID(s.ID),
		o.setOutlet(s.OutletID),
		o.setPartner(s.PartnerID),
		o.setItems(s.Items),
		o.status.Validate(),
	); err != nil {
		return nil, err
	}

	if err := o.checkInvariants(); err != nil {
		return nil, err
	}

	return o, nil
}

// Validate ensures the Order instance was properly constructed.
func (o *Order) Validate() error {
	if o == nil || !o.isConstructed {
		return ErrOrderIsNotConstructed
	}
	return nil
}

func (o *Order) ID() kernel.UUID { return o.id }
func (o *Order) OutletID() kernel.UUID { return o.outletID }
func (o *Order) PartnerID() *kernel.UUID { return o.partnerID }
func (o *Order) Status() Status { return o.status }
func (o *Order) Agent() *kernel.UUID { return o.agentID }
func (o *Order) PreviousStatus() *Status { return o.previousStatus }
func (o *Order) ResetCount() int { return o.resetCount }
func (o *Order) ScheduledAt() *time.Time { return o.scheduledAt }
func (o *Order) CreatedAt() time.Time { return o.createdAt }
func (o *Order) HasAgent() bool { return o.agentID != nil }
func (o *Order) IsTerminal() bool { return o.status.IsTerminal() }
func (o *Order) Category() Category { return o.status.Category() }

// Items returns a copy of the order's line items.
func (o *Order) Items() []LineItem {
	out := make([]LineItem, len(o.items))
	copy(out, o.items)
	return out
}

// RequiresProduct reports whether any line item refers to productID.
func (o *Order) RequiresProduct(productID kernel.UUID) bool {
	for _, item := range o.items {
		if item.ProductID().IsEqual(productID) {
			return true
		}
	}
	return false
}

// Assign hands the order to an agent.
//
// New moves to Assigned, ScheduledToday keeps its status and NoStock moves to
// Assigned dropping the saved previous status. Orders that already carry an
// agent are rejected with ErrAlreadyAssigned.
func (o *Order) Assign(agentID kernel.UUID) error {
	if err := agentID.Validate(); err != nil {
		return err
	}
	if o.agentID != nil {
		return ErrAlreadyAssigned
	}
	if !o.status.IsAssignable() {
		return fmt.Errorf("%w: %s", ErrNotAssignable, o.status)
	}

	// orders further along the workflow keep their status
	if o.status == New || o.status == NoStock {
		o.status = Assigned
	}
	o.previousStatus = nil
	o.agentID = &agentID
	return nil
}

// MarkOutOfStock pulls the order out of the active workflow. The current status
// is saved as previous status unless the order already sits in NoStock, so
// repeated shortages never overwrite the saved value. Returns false when the
// order was already in NoStock.
func (o *Order) MarkOutOfStock() (bool, error) {
	if o.status.IsTerminal() {
		return false, ErrTerminal
	}
	if o.status == NoStock {
		o.agentID = nil
		return false, nil
	}

	prev := o.status
	o.previousStatus = &prev
	o.status = NoStock
	o.agentID = nil
	return true, nil
}

// RestorePreviousStatus returns a NoStock order to where it was before the shortage.
// The agent stays cleared.
func (o *Order) RestorePreviousStatus() error {
	if o.status != NoStock {
		return ErrNotOutOfStock
	}
	if o.previousStatus == nil {
		return errs.NewValueIsRequiredError("previous status")
	}
	if o.previousStatus.IsTerminal() {
		return fmt.Errorf("%w: %s", ErrInconsistentRecoveryTarget, o.previousStatus)
	}

	o.status = *o.previousStatus
	o.previousStatus = nil
	if o.status.RequiresAgent() {
		// an Assigned order lost its agent at shortage time; it restarts as New
		o.status = New
	}
	return nil
}

// ReturnToNew moves a NoStock order without a usable previous status back to New.
func (o *Order) ReturnToNew() error {
	if o.status != NoStock {
		return ErrNotOutOfStock
	}
	o.status = New
	o.previousStatus = nil
	o.agentID = nil
	return nil
}

// ResetToNew clears the agent, moves the order to New and counts one more
// survived shift cycle.
func (o *Order) ResetToNew() error {
	if o.status.IsTerminal() {
		return ErrTerminal
	}
	o.status = New
	o.agentID = nil
	o.previousStatus = nil
	o.resetCount++
	return nil
}

// AutoCancel cancels an order that went unresolved through a second shift cycle.
func (o *Order) AutoCancel() error {
	if o.status.IsTerminal() {
		return ErrTerminal
	}
	o.status = Cancelled
	o.agentID = nil
	o.previousStatus = nil
	o.resetCount = 0
	return nil
}

// Reschedule defers the order to at, clearing the agent.
func (o *Order) Reschedule(at time.Time) error {
	if o.status.IsTerminal() {
		return ErrTerminal
	}
	o.status = ScheduledOtherDay
	o.scheduledAt = &at
	o.agentID = nil
	o.previousStatus = nil
	return nil
}

// PromoteToToday moves a deferred order whose date has come into ScheduledToday.
func (o *Order) PromoteToToday() error {
	if o.status != ScheduledOtherDay {
		return errs.NewValueIsInvalidErrorWithCause(
			"status is invalid",
			fmt.Errorf("%s cannot be promoted to %s", o.status, ScheduledToday),
		)
	}
	o.status = ScheduledToday
	return nil
}

// ReleaseAgent clears the agent and leaves everything else untouched.
// Returns false when there was no agent to release.
func (o *Order) ReleaseAgent() bool {
	if o.agentID == nil {
		return false
	}
	o.agentID = nil
	return true
}

// ChangeStatus applies an agent-driven workflow transition (call outcomes,
// confirmation, delivery). It is used by the order directory and fixtures;
// the engine itself only uses the dedicated transitions above.
func (o *Order) ChangeStatus(to Status) error {
	if err := to.Validate(); err != nil {
		return err
	}
	if o.status.IsTerminal() {
		return ErrTerminal
	}
	if to == NoStock {
		_, err := o.MarkOutOfStock()
		return err
	}
	if !to.CanHaveAgent() {
		o.agentID = nil
	}
	if to.RequiresAgent() && o.agentID == nil {
		return errs.NewValueIsRequiredError("agent")
	}
	o.status = to
	o.previousStatus = nil
	return nil
}

func (o *Order) checkInvariants() error {
	if o.agentID != nil {
		if err := o.agentID.Validate(); err != nil {
			return err
		}
		if !o.status.CanHaveAgent() {
			return errs.NewValueIsInvalidErrorWithCause(
				"agent",
				fmt.Errorf("%s orders cannot carry an agent", o.status),
			)
		}
	}
	if o.agentID == nil && o.status.RequiresAgent() {
		return errs.NewValueIsRequiredErrorWithCause("agent", fmt.Errorf("%s orders need an agent", o.status))
	}
	if o.previousStatus != nil && o.status != NoStock {
		return errs.NewValueIsInvalidErrorWithCause(
			"previous status",
			fmt.Errorf("only %s orders keep a previous status, got %s", NoStock, o.status),
		)
	}
	if o.previousStatus != nil {
		if err := o.previousStatus.Validate(); err != nil {
			return err
		}
	}
	if o.resetCount < 0 {
		return errs.NewValueIsOutOfRangeError("reset count", o.resetCount, 0, "unbounded")
	}
	return nil
}

func (o *Order) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	o.id = id
	return nil
}

func (o *Order) setOutlet(outletID kernel.UUID) error {
	if err := outletID.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("outlet", err)
	}
	o.outletID = outletID
	return nil
}

func (o *Order) setPartner(partnerID *kernel.UUID) error {
	if partnerID == nil {
		return nil
	}
	if err := partnerID.Validate(); err != nil {
		return errs.NewValueIsInvalidErrorWithCause("partner", err)
	}
	id := *partnerID
	o.partnerID = &id
	return nil
}

func (o *Order) setItems(items []LineItem) error {
	for i, item := range items {
		if err := item.Validate(); err != nil {
			return errs.NewValueIsInvalidErrorWithCause(fmt.Sprintf("line item %d", i), err)
		}
	}
	o.items = make([]LineItem, len(items))
	copy(o.items, items)
	return nil
}
