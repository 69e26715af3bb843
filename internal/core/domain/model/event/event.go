// Package event defines the domain events returned by engine operations.
//
// Handlers never publish events themselves; they return them and the caller
// hands them to a dispatcher. Delivery is best effort.
package event

import (
	"time"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
)

// Type identifies the kind of event.
type Type string

const (
	OrderAssigned      Type = "order.assigned"
	OrderLostToNoStock Type = "order.lost_to_no_stock"
	OrderRecovered     Type = "order.recovered"
	OrderAutoReset     Type = "order.auto_reset"
	OrderAutoCancelled Type = "order.auto_cancelled"
	OrderRescheduled   Type = "order.rescheduled"
	OrderAgentReleased Type = "order.agent_released"
	ShiftOpened        Type = "shift.opened"
	ShiftClosed        Type = "shift.closed"
)

// Event is an immutable fact about an order or shift.
type Event struct {
	id          kernel.UUID
	typ         Type
	aggregateID kernel.UUID
	outletID    kernel.UUID
	occurredAt  time.Time
	attrs       map[string]string
}

func New(typ Type, aggregateID, outletID kernel.UUID, occurredAt time.Time, attrs map[string]string) Event {
	copied := make(map[string]string, len(attrs))
	for k, v := range attrs {
		copied[k] = v
	}
	return Event{
		id:          kernel.NewUUID(),
		typ:         typ,
		aggregateID: aggregateID,
		outletID:    outletID,
		occurredAt:  occurredAt,
		attrs:       copied,
	}
}

func (e Event) ID() kernel.UUID { return e.id }
func (e Event) Type() Type { return e.typ }
func (e Event) AggregateID() kernel.UUID { return e.aggregateID }
func (e Event) OutletID() kernel.UUID { return e.outletID }
func (e Event) OccurredAt() time.Time { return e.occurredAt }

// Attr returns one attribute, or "" when absent.
func (e Event) Attr(key string) string {
	return e.attrs[key]
}

// Attrs returns a copy of all attributes.
func (e Event) Attrs() map[string]string {
	out := make(map[string]string, len(e.attrs))
	for k, v := range e.attrs {
		out[k] = v
	}
	return out
}

// Transition describes one order mutation for events and audit logs.
type Transition struct {
	PriorStatus order.Status
	PriorAgent  *kernel.UUID
	NewStatus   order.Status
	Reason      string
}

// ForOrder builds an order event from a transition and extra attributes.
func ForOrder(typ Type, o *order.Order, tr Transition, at time.Time, extra map[string]string) Event {
	attrs := map[string]string{
		"prior_status": tr.PriorStatus.String(),
		"new_status":   tr.NewStatus.String(),
		"reason":       tr.Reason,
	}
	if tr.PriorAgent != nil {
		attrs["prior_agent"] = tr.PriorAgent.String()
	}
	if agent := o.Agent(); agent != nil {
		attrs["agent"] = agent.String()
	}
	for k, v := range extra {
		attrs[k] = v
	}
	return New(typ, o.ID(), o.OutletID(), at, attrs)
}
