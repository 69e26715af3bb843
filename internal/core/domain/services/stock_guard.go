package services

import (
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
)

// Availability maps product ids to the quantity available to a partner.
type Availability map[kernel.UUID]int

// IsSufficient reports whether every product the items need is covered.
func IsSufficient(items []order.LineItem, available Availability) bool {
	for product, needed := range order.RequiredQuantities(items) {
		if available[product] < needed {
			return false
		}
	}
	return true
}

// RecoveryAction is what the stock guard does with a NoStock order whose stock is back.
type RecoveryAction int

const (
	// RecoveryNone leaves the order alone (not NoStock, or still short).
	RecoveryNone RecoveryAction = iota
	// RecoveryRestore returns the order to its saved previous status.
	RecoveryRestore
	// RecoveryReassign routes the order through the assignment engine.
	RecoveryReassign
	// RecoverySkipInconsistent leaves the order parked: its previous status is terminal.
	RecoverySkipInconsistent
)

func (a RecoveryAction) String() string {
	switch a {
	case RecoveryRestore:
		return "restore"
	case RecoveryReassign:
		return "reassign"
	case RecoverySkipInconsistent:
		return "skip_inconsistent"
	default:
		return "none"
	}
}

// StockGuard decides shortage and recovery transitions. It holds no state;
// quantities are read by the caller inside the order's transaction.
type StockGuard struct{}

func NewStockGuard() StockGuard {
	return StockGuard{}
}

// NeedsShortage reports whether o must be pulled out of the workflow.
func (StockGuard) NeedsShortage(o *order.Order, available Availability) bool {
	if o.IsTerminal() || o.Status() == order.NoStock {
		return false
	}
	return !IsSufficient(o.Items(), available)
}

// Recovery picks the recovery action for o.
func (StockGuard) Recovery(o *order.Order, available Availability) RecoveryAction {
	if o.Status() != order.NoStock {
		return RecoveryNone
	}
	if !IsSufficient(o.Items(), available) {
		return RecoveryNone
	}
	prev := o.PreviousStatus()
	switch {
	case prev == nil:
		return RecoveryReassign
	case prev.IsTerminal():
		return RecoverySkipInconsistent
	default:
		return RecoveryRestore
	}
}
