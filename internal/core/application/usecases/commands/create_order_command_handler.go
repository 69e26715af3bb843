package commands

import (
	"context"

	"orderflow/internal/core/domain/model/assignment"
	"orderflow/internal/core/domain/model/event"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/domain/services"
)

// CreateOrderResult carries the agent picked for the new order, if any.
type CreateOrderResult struct {
	Agent  *kernel.UUID
	Events []event.Event
}

// CreateOrderCommandHandler stores new orders in status New and then runs the
// regular assignment for them.
//
// Example:
//
//	handler := NewCreateOrderCommandHandler(uowFactory, picker, rt)
//	res, err := handler.Handle(ctx, cmd)
//	if err != nil {
//	    return fmt.Errorf("order creation failed: %w", err)
//	}
//	// res.Agent is nil when nobody is on today's roster
type CreateOrderCommandHandler struct {
	uowFactory UoWFactory
	assigner   assigner
	rt         Runtime
}

func NewCreateOrderCommandHandler(
	uowFactory UoWFactory,
	picker services.AgentPicker,
	rt Runtime,
) CreateOrderCommandHandler {
	return CreateOrderCommandHandler{
		uowFactory: uowFactory,
		assigner:   newAssigner(uowFactory, picker, rt),
		rt:         rt,
	}
}

// Handle persists the order in its own transaction. A failed assignment does
// not undo the creation; the order waits for the next backlog sweep.
func (h *CreateOrderCommandHandler) Handle(ctx context.Context, cmd CreateOrderCommand) (CreateOrderResult, error) {
	if err := cmd.Validate(); err != nil {
		return CreateOrderResult{}, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return CreateOrderResult{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	o, err := order.NewOrder(cmd.OrderID(), cmd.OutletID(), cmd.PartnerID(), cmd.Items(), h.rt.now())
	if err != nil {
		return CreateOrderResult{}, err
	}

	if err = uow.OrderRepository().Add(ctx, o); err != nil {
		return CreateOrderResult{}, err
	}

	if err = uow.Commit(ctx); err != nil {
		return CreateOrderResult{}, err
	}

	res, err := h.assigner.assignOne(ctx, o.ID(), assignment.ReasonAuto, nil)
	if err != nil {
		log := h.rt.log()
		log.Error(log.WithField(ctx, "order_id", o.ID().String()), "assignment after creation failed", err)
		return CreateOrderResult{}, nil
	}

	return CreateOrderResult{Agent: res.Agent, Events: res.Events}, nil
}
