package commands

import (
	"context"

	"orderflow/internal/core/domain/model/assignment"
	"orderflow/internal/core/domain/model/event"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/services"
)

// AssignOrderResult reports the agent now holding the order. Agent is nil
// when no agent was available; Assigned is false when the order already had one.
type AssignOrderResult struct {
	Agent    *kernel.UUID
	Assigned bool
	Events   []event.Event
}

// AssignOrderCommandHandler assigns single orders. The call is idempotent:
// an order keeps the agent it got first, even under concurrent calls.
type AssignOrderCommandHandler struct {
	assigner assigner
}

func NewAssignOrderCommandHandler(
	uowFactory UoWFactory,
	picker services.AgentPicker,
	rt Runtime,
) AssignOrderCommandHandler {
	return AssignOrderCommandHandler{
		assigner: newAssigner(uowFactory, picker, rt),
	}
}

// Handle returns order.ErrNotAssignable when the order is in a status the
// engine does not hand out, and errs.ObjectNotFoundError for unknown orders.
func (h *AssignOrderCommandHandler) Handle(ctx context.Context, cmd AssignOrderCommand) (AssignOrderResult, error) {
	if err := cmd.Validate(); err != nil {
		return AssignOrderResult{}, err
	}

	res, err := h.assigner.assignOne(ctx, cmd.OrderID(), assignment.ReasonAuto, cmd.OperatorID())
	if err != nil {
		return AssignOrderResult{}, err
	}

	return AssignOrderResult(res), nil
}
