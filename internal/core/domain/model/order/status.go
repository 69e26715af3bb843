package order

import (
	"fmt"

	"orderflow/internal/pkg/errs"
)

// Status is the closed set of order workflow states.
//
// Status values are persisted as integers; new statuses must be appended
// at the end of the list to keep stored rows meaningful.
type Status int

const (
	// Unknown represents an invalid or undefined status.
	// This value (0) helps catch uninitialized Status values.
	Unknown Status = iota

	// New is the initial state: the order waits for an agent.
	New
	// Assigned means the order was handed to an agent who has not contacted the customer yet.
	Assigned
	Call1
	Call2
	Call3
	AwaitingLocation
	CallLater
	// ScheduledToday marks an order promised for delivery today.
	ScheduledToday
	// ScheduledOtherDay marks an order deferred to a future date (see Order.ScheduledAt).
	ScheduledOtherDay
	Confirmed
	UnderReview
	// NoStock is the sentinel an order is forced into when its inventory disappears.
	NoStock
	Delivered
	Cancelled
	Rejected
)

// Category groups statuses by how the engine treats them. The shift-close
// reset machine and the assignment engine branch on Category, never on
// individual statuses or labels.
type Category int

const (
	CategoryUnknown Category = iota
	// CategoryUnassigned holds orders waiting for an agent.
	CategoryUnassigned
	// CategoryFresh holds orders assigned to an agent but not yet contacted.
	CategoryFresh
	// CategoryContactSequence holds orders in the call-attempt sequence.
	CategoryContactSequence
	// CategoryScheduledToday holds orders promised for the current business day.
	CategoryScheduledToday
	// CategoryDeferred holds orders already moved to a future date.
	CategoryDeferred
	// CategoryCommitted holds confirmed orders on their way to delivery.
	CategoryCommitted
	// CategoryHeld holds orders parked outside the workflow (review, no stock).
	CategoryHeld
	// CategoryTerminal holds final outcomes.
	CategoryTerminal
)

type statusInfo struct {
	code     string
	label    string
	category Category
}

func statusTable() map[Status]statusInfo {
	return map[Status]statusInfo{
		New:               {"new", "Nuevo", CategoryUnassigned},
		Assigned:          {"assigned", "Asignado", CategoryFresh},
		Call1:             {"call_1", "Llamado 1", CategoryContactSequence},
		Call2:             {"call_2", "Llamado 2", CategoryContactSequence},
		Call3:             {"call_3", "Llamado 3", CategoryContactSequence},
		AwaitingLocation:  {"awaiting_location", "Esperando ubicación", CategoryContactSequence},
		CallLater:         {"call_later", "Llamar más tarde", CategoryContactSequence},
		ScheduledToday:    {"scheduled_today", "Programado para hoy", CategoryScheduledToday},
		ScheduledOtherDay: {"scheduled_other_day", "Programado otro día", CategoryDeferred},
		Confirmed:         {"confirmed", "Confirmado", CategoryCommitted},
		UnderReview:       {"under_review", "En revisión", CategoryHeld},
		NoStock:           {"no_stock", "Sin stock", CategoryHeld},
		Delivered:         {"delivered", "Entregado", CategoryTerminal},
		Cancelled:         {"cancelled", "Cancelado", CategoryTerminal},
		Rejected:          {"rejected", "Rechazado", CategoryTerminal},
	}
}

// Statuses returns every valid status in declaration order.
func Statuses() []Status {
	out := make([]Status, 0, int(Rejected))
	for s := New; s <= Rejected; s++ {
		out = append(out, s)
	}
	return out
}

// StatusesIn returns the valid statuses belonging to any of the given categories.
func StatusesIn(categories ...Category) []Status {
	out := make([]Status, 0)
	for _, s := range Statuses() {
		for _, c := range categories {
			if s.Category() == c {
				out = append(out, s)
				break
			}
		}
	}
	return out
}

// ParseStatus resolves a status from its machine code, e.g. "call_2".
func ParseStatus(code string) (Status, error) {
	for s, info := range statusTable() {
		if info.code == code {
			return s, nil
		}
	}
	return Unknown, errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%q is not a known status code", code))
}

// Validate checks that s is one of the declared statuses.
func (s Status) Validate() error {
	if _, ok := statusTable()[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("status is invalid", fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

// String returns the machine code of the status ("unknown" for invalid values).
func (s Status) String() string {
	if info, ok := statusTable()[s]; ok {
		return info.code
	}
	return "unknown"
}

// Label returns the operator-facing name of the status.
func (s Status) Label() string {
	if info, ok := statusTable()[s]; ok {
		return info.label
	}
	return "Desconocido"
}

func (s Status) Category() Category {
	if info, ok := statusTable()[s]; ok {
		return info.category
	}
	return CategoryUnknown
}

func (s Status) IsTerminal() bool {
	return s.Category() == CategoryTerminal
}

// IsAssignable reports whether an agentless order in this status may be
// handed to an agent. Held orders under review and terminal orders may not.
func (s Status) IsAssignable() bool {
	switch s.Category() {
	case CategoryTerminal, CategoryUnknown:
		return false
	default:
		return s != UnderReview
	}
}

// AwaitsAgent reports whether the assignment engine picks up agentless orders
// in this status. NoStock orders are left to the stock guard.
func (s Status) AwaitsAgent() bool {
	return s.IsAssignable() && s != NoStock
}

// AwaitingAgentStatuses lists the statuses for which AwaitsAgent holds.
func AwaitingAgentStatuses() []Status {
	out := make([]Status, 0)
	for _, s := range Statuses() {
		if s.AwaitsAgent() {
			out = append(out, s)
		}
	}
	return out
}

// CanHaveAgent reports whether an order in this status may carry an assigned agent.
func (s Status) CanHaveAgent() bool {
	switch s {
	case New, NoStock, UnderReview, Unknown:
		return false
	default:
		return true
	}
}

// RequiresAgent reports whether an order in this status must carry an assigned agent.
func (s Status) RequiresAgent() bool {
	return s == Assigned
}

func (c Category) String() string {
	switch c {
	case CategoryUnassigned:
		return "unassigned"
	case CategoryFresh:
		return "fresh"
	case CategoryContactSequence:
		return "contact_sequence"
	case CategoryScheduledToday:
		return "scheduled_today"
	case CategoryDeferred:
		return "deferred"
	case CategoryCommitted:
		return "committed"
	case CategoryHeld:
		return "held"
	case CategoryTerminal:
		return "terminal"
	default:
		return "unknown"
	}
}
