package commands

import (
	"context"
	"time"

	"go.uber.org/multierr"

	"orderflow/internal/core/domain/model/event"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/domain/model/shift"
	"orderflow/internal/core/domain/services"
)

const reasonPromotedToToday = "promoted_to_today"

// OpenShiftResult reports the opened shift and the work done around it.
// Backlog is nil when the backlog sweep is disabled.
type OpenShiftResult struct {
	State     shift.State
	Activated int
	Promoted  int
	Backlog   *BacklogResult
	Events    []event.Event
	// Err combines per-order promotion failures.
	Err error
}

// OpenShiftCommandHandler opens shifts.
//
// The open itself runs in one transaction: mark the shift open, activate the
// default roster, reset the round-robin cursor and mirror the legacy flag.
// Promotion of orders scheduled for today and the optional backlog sweep run
// afterwards, one order per transaction.
type OpenShiftCommandHandler struct {
	uowFactory    UoWFactory
	assigner      assigner
	backlogOnOpen bool
	rt            Runtime
}

func NewOpenShiftCommandHandler(
	uowFactory UoWFactory,
	picker services.AgentPicker,
	backlogOnOpen bool,
	rt Runtime,
) OpenShiftCommandHandler {
	return OpenShiftCommandHandler{
		uowFactory:    uowFactory,
		assigner:      newAssigner(uowFactory, picker, rt),
		backlogOnOpen: backlogOnOpen,
		rt:            rt,
	}
}

// Handle returns shift.ErrAlreadyOpen when today's shift was opened before;
// nothing is changed in that case.
func (h *OpenShiftCommandHandler) Handle(ctx context.Context, cmd OpenShiftCommand) (OpenShiftResult, error) {
	if err := cmd.Validate(); err != nil {
		return OpenShiftResult{}, err
	}

	today := h.rt.today()
	now := h.rt.now()

	s, activated, err := h.open(ctx, cmd, today, now)
	if err != nil {
		return OpenShiftResult{}, err
	}

	res := OpenShiftResult{
		State:     s.State(),
		Activated: activated,
	}

	res.Promoted, res.Err = h.promoteScheduled(ctx, cmd.OutletID(), today)

	if h.backlogOnOpen {
		from, err := h.backlogStart(ctx, cmd.OutletID(), today)
		if err != nil {
			res.Err = multierr.Append(res.Err, err)
		} else {
			sweep := h.sweep(ctx, cmd.OutletID(), from, now)
			res.Backlog = &sweep
			res.Events = append(res.Events, sweep.Events...)
		}
	}

	attrs := map[string]string{"date": today.String()}
	if op := cmd.OperatorID(); op != nil {
		attrs["operator"] = op.String()
	}
	res.Events = append([]event.Event{event.New(event.ShiftOpened, s.ID(), s.OutletID(), now, attrs)}, res.Events...)

	log := h.rt.log()
	log.Info(log.WithFields(ctx, map[string]any{
		"outlet_id": cmd.OutletID().String(),
		"date":      today.String(),
		"activated": activated,
		"promoted":  res.Promoted,
	}), "shift opened")

	return res, nil
}

func (h *OpenShiftCommandHandler) open(
	ctx context.Context,
	cmd OpenShiftCommand,
	today kernel.Date,
	now time.Time,
) (*shift.Shift, int, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, 0, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	s, err := uow.ShiftRepository().GetOrCreateForUpdate(ctx, cmd.OutletID(), today)
	if err != nil {
		return nil, 0, err
	}
	if err = s.Open(cmd.OperatorID(), now); err != nil {
		return nil, 0, err
	}
	if err = uow.ShiftRepository().Update(ctx, s); err != nil {
		return nil, 0, err
	}

	activated, err := activateDefaultRoster(ctx, uow.RosterRepository(), cmd.OutletID(), today)
	if err != nil {
		return nil, 0, err
	}

	if err = uow.Settings().Delete(ctx, cursorKey(cmd.OutletID())); err != nil {
		return nil, 0, err
	}
	if err = uow.Settings().Set(ctx, shiftFlagKey(cmd.OutletID()), true); err != nil {
		return nil, 0, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, 0, err
	}
	return s, activated, nil
}

// promoteScheduled moves orders deferred to today (or an earlier day that
// was missed) into ScheduledToday.
func (h *OpenShiftCommandHandler) promoteScheduled(
	ctx context.Context,
	outletID kernel.UUID,
	today kernel.Date,
) (int, error) {
	loc := h.rt.loc()
	from := time.Unix(0, 0).UTC()
	to := today.End(loc)

	ids, err := h.uowFactory.Create().OrderRepository().ListScheduledIDs(ctx, outletID, order.ScheduledOtherDay, from, to)
	if err != nil {
		return 0, err
	}

	var (
		promoted int
		errAll   error
	)
	for _, id := range ids {
		ok, err := h.promoteOne(ctx, id, to)
		if err != nil {
			errAll = multierr.Append(errAll, err)
			continue
		}
		if ok {
			promoted++
		}
	}
	return promoted, errAll
}

func (h *OpenShiftCommandHandler) promoteOne(ctx context.Context, id kernel.UUID, until time.Time) (bool, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return false, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	o, err := uow.OrderRepository().GetForUpdate(ctx, id)
	if err != nil {
		return false, err
	}
	at := o.ScheduledAt()
	if o.Status() != order.ScheduledOtherDay || at == nil || !at.Before(until) {
		return false, nil
	}

	prior, priorAgent := o.Status(), o.Agent()
	if err = o.PromoteToToday(); err != nil {
		return false, err
	}
	if err = uow.OrderRepository().Update(ctx, o); err != nil {
		return false, err
	}
	if err = uow.Commit(ctx); err != nil {
		return false, err
	}

	h.rt.audit(ctx, o, event.Transition{
		PriorStatus: prior,
		PriorAgent:  priorAgent,
		NewStatus:   o.Status(),
		Reason:      reasonPromotedToToday,
	}, nil)
	return true, nil
}

// backlogStart is the previous close of the outlet, or the start of today.
func (h *OpenShiftCommandHandler) backlogStart(ctx context.Context, outletID kernel.UUID, today kernel.Date) (time.Time, error) {
	last, err := h.uowFactory.Create().ShiftRepository().LatestCloseBefore(ctx, outletID, today)
	if err != nil {
		return time.Time{}, err
	}
	if last != nil {
		return *last, nil
	}
	return today.Start(h.rt.loc()), nil
}

func (h *OpenShiftCommandHandler) sweep(ctx context.Context, outletID kernel.UUID, from, to time.Time) BacklogResult {
	ids, err := h.uowFactory.Create().OrderRepository().ListUnassignedIDs(ctx, outletID, from, to)
	if err != nil {
		return BacklogResult{Err: err}
	}
	return sweepBacklog(ctx, h.assigner, ids, h.rt)
}
