package commands

import (
	"context"
	"time"

	"orderflow/internal/core/domain/model/event"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/pkg/logger"
	"orderflow/internal/pkg/metrics"
)

// Runtime carries the collaborators shared by the engine's handlers: the
// business timezone, a clock, the logger and metrics.
type Runtime struct {
	Location *time.Location
	Clock    func() time.Time
	Logger   *logger.Logger
	Metrics  *metrics.EngineMetrics
}

// NewRuntime builds a Runtime reading the wall clock.
func NewRuntime(loc *time.Location, log *logger.Logger, m *metrics.EngineMetrics) Runtime {
	return Runtime{Location: loc, Clock: time.Now, Logger: log, Metrics: m}
}

func (r Runtime) loc() *time.Location {
	if r.Location == nil {
		return time.UTC
	}
	return r.Location
}

func (r Runtime) now() time.Time {
	clock := r.Clock
	if clock == nil {
		clock = time.Now
	}
	return clock().In(r.loc())
}

func (r Runtime) today() kernel.Date {
	return kernel.DateOf(r.now(), r.loc())
}

func (r Runtime) log() *logger.Logger {
	if r.Logger == nil {
		return logger.Nop()
	}
	return r.Logger
}

// audit writes the one log line every order mutation produces.
func (r Runtime) audit(ctx context.Context, o *order.Order, tr event.Transition, extra map[string]any) {
	fields := map[string]any{
		"order_id":     o.ID().String(),
		"outlet_id":    o.OutletID().String(),
		"prior_status": tr.PriorStatus.String(),
		"new_status":   tr.NewStatus.String(),
		"reason":       tr.Reason,
		"reset_count":  o.ResetCount(),
	}
	if tr.PriorAgent != nil {
		fields["prior_agent"] = tr.PriorAgent.String()
	}
	if agent := o.Agent(); agent != nil {
		fields["agent"] = agent.String()
	}
	for k, v := range extra {
		fields[k] = v
	}
	l := r.log()
	l.Info(l.WithFields(ctx, fields), "order transition")
}

// Settings keys.
func cursorKey(outletID kernel.UUID) string { return "round_robin_cursor:" + outletID.String() }
func loadLockKey(outletID kernel.UUID) string { return "load_balance_lock:" + outletID.String() }
func shiftFlagKey(outletID kernel.UUID) string { return "shift_open:" + outletID.String() }
