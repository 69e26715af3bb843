package commands

import (
	"context"
	"time"

	"go.uber.org/multierr"

	"orderflow/internal/core/domain/model/event"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/shift"
	"orderflow/internal/core/domain/services"
)

// ResetSummary reports what the reset machine did at close.
type ResetSummary struct {
	// Outcomes counts orders per outcome code (services.OutcomeReset, ...).
	Outcomes  map[string]int
	Untouched int
	Failed    int
	Err       error
}

// Changed is the number of orders the reset machine modified.
func (s ResetSummary) Changed() int {
	total := 0
	for _, n := range s.Outcomes {
		total += n
	}
	return total
}

type CloseShiftResult struct {
	State  shift.State
	Resets ResetSummary
	Events []event.Event
}

// CloseShiftCommandHandler closes shifts and, before returning, applies the
// reset policy to every order of the outlet in a resettable status.
type CloseShiftCommandHandler struct {
	uowFactory UoWFactory
	policy     services.ResetPolicy
	rt         Runtime
}

func NewCloseShiftCommandHandler(
	uowFactory UoWFactory,
	policy services.ResetPolicy,
	rt Runtime,
) CloseShiftCommandHandler {
	return CloseShiftCommandHandler{
		uowFactory: uowFactory,
		policy:     policy,
		rt:         rt,
	}
}

// Handle returns shift.ErrNotOpen or shift.ErrAlreadyClosed without
// touching any state when the shift cannot be closed.
func (h *CloseShiftCommandHandler) Handle(ctx context.Context, cmd CloseShiftCommand) (CloseShiftResult, error) {
	if err := cmd.Validate(); err != nil {
		return CloseShiftResult{}, err
	}

	today := h.rt.today()
	now := h.rt.now()

	s, err := h.close(ctx, cmd, today, now)
	if err != nil {
		return CloseShiftResult{}, err
	}

	summary, events := h.reset(ctx, cmd.OutletID(), now)

	attrs := map[string]string{"date": s.Date().String()}
	if op := cmd.OperatorID(); op != nil {
		attrs["operator"] = op.String()
	}
	events = append([]event.Event{event.New(event.ShiftClosed, s.ID(), s.OutletID(), now, attrs)}, events...)

	log := h.rt.log()
	log.Info(log.WithFields(ctx, map[string]any{
		"outlet_id": cmd.OutletID().String(),
		"date":      s.Date().String(),
		"changed":   summary.Changed(),
		"untouched": summary.Untouched,
		"failed":    summary.Failed,
	}), "shift closed")

	return CloseShiftResult{State: s.State(), Resets: summary, Events: events}, nil
}

func (h *CloseShiftCommandHandler) close(
	ctx context.Context,
	cmd CloseShiftCommand,
	today kernel.Date,
	now time.Time,
) (*shift.Shift, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	shifts := uow.ShiftRepository()
	s, err := shifts.GetOrCreateForUpdate(ctx, cmd.OutletID(), today)
	if err != nil {
		return nil, err
	}
	if s.OpenAt() == nil {
		// a shift opened before midnight is closed on the following day
		earlier, lookupErr := shifts.LatestOpenBeforeForUpdate(ctx, cmd.OutletID(), today)
		if lookupErr != nil {
			return nil, lookupErr
		}
		if earlier != nil {
			s = earlier
		}
	}
	if err = s.Close(cmd.OperatorID(), now); err != nil {
		return nil, err
	}
	if err = shifts.Update(ctx, s); err != nil {
		return nil, err
	}
	if err = uow.Settings().Set(ctx, shiftFlagKey(cmd.OutletID()), false); err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (h *CloseShiftCommandHandler) reset(
	ctx context.Context,
	outletID kernel.UUID,
	now time.Time,
) (ResetSummary, []event.Event) {
	summary := ResetSummary{Outcomes: make(map[string]int)}

	ids, err := h.uowFactory.Create().OrderRepository().ListIDsByStatus(ctx, outletID, services.ResettableStatuses())
	if err != nil {
		summary.Err = err
		return summary, nil
	}

	var events []event.Event
	for _, id := range ids {
		outcome, ev, err := h.resetOne(ctx, id, now)
		switch {
		case err != nil:
			summary.Failed++
			summary.Err = multierr.Append(summary.Err, err)
			h.rt.log().Error(h.rt.log().WithField(ctx, "order_id", id.String()), "shift close reset failed", err)
		case !outcome.Changed:
			summary.Untouched++
		default:
			summary.Outcomes[outcome.Code]++
			events = append(events, ev)
		}
	}
	return summary, events
}

// resetOne re-reads the order under lock so a concurrent status change since
// the listing is honoured.
func (h *CloseShiftCommandHandler) resetOne(
	ctx context.Context,
	id kernel.UUID,
	now time.Time,
) (services.ResetOutcome, event.Event, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return services.ResetOutcome{}, event.Event{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	o, err := uow.OrderRepository().GetForUpdate(ctx, id)
	if err != nil {
		return services.ResetOutcome{}, event.Event{}, err
	}

	outcome, err := h.policy.Apply(o, now)
	if err != nil || !outcome.Changed {
		return outcome, event.Event{}, err
	}

	if err = uow.OrderRepository().Update(ctx, o); err != nil {
		return services.ResetOutcome{}, event.Event{}, err
	}
	if err = uow.Commit(ctx); err != nil {
		return services.ResetOutcome{}, event.Event{}, err
	}

	h.rt.Metrics.IncReset(string(outcome.Rule))

	tr := event.Transition{
		PriorStatus: outcome.PriorStatus,
		PriorAgent:  outcome.PriorAgent,
		NewStatus:   o.Status(),
		Reason:      outcome.Code,
	}
	h.rt.audit(ctx, o, tr, map[string]any{"rule": string(outcome.Rule)})

	return outcome, event.ForOrder(resetEventType(outcome.Code), o, tr, now, nil), nil
}

func resetEventType(code string) event.Type {
	switch code {
	case services.OutcomeAutoCancelled:
		return event.OrderAutoCancelled
	case services.OutcomeRescheduled:
		return event.OrderRescheduled
	case services.OutcomeAgentReleased:
		return event.OrderAgentReleased
	default:
		return event.OrderAutoReset
	}
}
