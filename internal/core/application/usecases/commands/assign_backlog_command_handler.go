package commands

import (
	"context"

	"go.uber.org/multierr"

	"orderflow/internal/core/domain/model/assignment"
	"orderflow/internal/core/domain/model/event"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/services"
)

// BacklogResult summarises one sweep. Err combines per-order failures; the
// sweep itself never aborts on them.
type BacklogResult struct {
	Assigned int
	Skipped  int
	Failed   int
	Events   []event.Event
	Err      error
}

// AssignBacklogCommandHandler assigns every unassigned order in a time
// window, one transaction per order.
type AssignBacklogCommandHandler struct {
	uowFactory UoWFactory
	assigner   assigner
	rt         Runtime
}

func NewAssignBacklogCommandHandler(
	uowFactory UoWFactory,
	picker services.AgentPicker,
	rt Runtime,
) AssignBacklogCommandHandler {
	return AssignBacklogCommandHandler{
		uowFactory: uowFactory,
		assigner:   newAssigner(uowFactory, picker, rt),
		rt:         rt,
	}
}

// Handle returns an error only when the candidate orders cannot be listed.
func (h *AssignBacklogCommandHandler) Handle(ctx context.Context, cmd AssignBacklogCommand) (BacklogResult, error) {
	if err := cmd.Validate(); err != nil {
		return BacklogResult{}, err
	}

	uow := h.uowFactory.Create()
	ids, err := uow.OrderRepository().ListUnassignedIDs(ctx, cmd.OutletID(), cmd.From(), cmd.To())
	if err != nil {
		return BacklogResult{}, err
	}

	res := sweepBacklog(ctx, h.assigner, ids, h.rt)

	log := h.rt.log()
	log.Info(log.WithFields(ctx, map[string]any{
		"outlet_id":  cmd.OutletID().String(),
		"candidates": len(ids),
		"assigned":   res.Assigned,
		"skipped":    res.Skipped,
		"failed":     res.Failed,
	}), "backlog sweep finished")

	return res, nil
}

func sweepBacklog(ctx context.Context, a assigner, ids []kernel.UUID, rt Runtime) BacklogResult {
	var res BacklogResult
	for _, id := range ids {
		if ctx.Err() != nil {
			res.Err = multierr.Append(res.Err, ctx.Err())
			break
		}

		out, err := a.assignOne(ctx, id, assignment.ReasonBacklog, nil)
		if err != nil {
			res.Failed++
			res.Err = multierr.Append(res.Err, err)
			rt.log().Warn(rt.log().WithField(ctx, "order_id", id.String()), "backlog assignment failed: "+err.Error())
			continue
		}
		if !out.Assigned {
			res.Skipped++
			continue
		}
		res.Assigned++
		res.Events = append(res.Events, out.Events...)
	}
	return res
}
