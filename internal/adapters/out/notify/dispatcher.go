// Package notify delivers domain events after the state change that produced
// them committed. Delivery is best effort: failures are logged and counted,
// never returned to the caller.
package notify

import (
	"context"

	"orderflow/internal/core/domain/model/event"
	"orderflow/internal/core/ports"
	"orderflow/internal/pkg/logger"
	"orderflow/internal/pkg/metrics"
)

const (
	outcomeDispatched = "dispatched"
	outcomeFailed     = "failed"
)

var _ ports.EventSink = (*Dispatcher)(nil)

// Dispatcher logs each event, appends the batch to the outbox and counts the result.
type Dispatcher struct {
	outbox  ports.EventOutbox
	logger  *logger.Logger
	metrics *metrics.EngineMetrics
}

// NewDispatcher builds a dispatcher. A nil outbox only logs and counts.
func NewDispatcher(outbox ports.EventOutbox, log *logger.Logger, m *metrics.EngineMetrics) *Dispatcher {
	if log == nil {
		log = logger.Nop()
	}
	return &Dispatcher{outbox: outbox, logger: log, metrics: m}
}

func (d *Dispatcher) Dispatch(ctx context.Context, events []event.Event) {
	if len(events) == 0 {
		return
	}

	for _, e := range events {
		fields := map[string]any{
			"event_id":     e.ID().String(),
			"event_type":   string(e.Type()),
			"aggregate_id": e.AggregateID().String(),
			"outlet_id":    e.OutletID().String(),
		}
		for k, v := range e.Attrs() {
			fields["attr_"+k] = v
		}
		d.logger.Info(d.logger.WithFields(ctx, fields), "domain event")
	}

	outcome := outcomeDispatched
	if d.outbox != nil {
		if err := d.outbox.Append(ctx, events); err != nil {
			outcome = outcomeFailed
			d.logger.Error(d.logger.WithField(ctx, "events", len(events)), "event outbox append failed", err)
		}
	}
	for _, e := range events {
		d.metrics.IncEvent(string(e.Type()), outcome)
	}
}
