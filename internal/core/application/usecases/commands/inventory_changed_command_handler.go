package commands

import (
	"context"
	"errors"

	"go.uber.org/multierr"

	"orderflow/internal/core/domain/model/assignment"
	"orderflow/internal/core/domain/model/event"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/domain/services"
)

// Stock transition kinds, used as audit reasons and metric labels.
const (
	stockShortage         = "stock_shortage"
	stockRestored         = "stock_restored"
	stockReassigned       = "stock_reassigned"
	stockReturnedToNew    = "stock_returned_to_new"
	stockSkipInconsistent = "stock_skip_inconsistent"
)

// InventoryChangedResult counts what the stock guard did per path.
type InventoryChangedResult struct {
	PartnerID     kernel.UUID
	Shortages     int
	Restored      int
	Reassigned    int
	ReturnedToNew int
	Skipped       int
	Failed        int
	Events        []event.Event
	Err           error
}

// InventoryChangedCommandHandler is the stock availability guard.
//
// Every candidate order is re-read under its row lock and re-checked against
// the partner's current stock, so bursts of movements for the same product
// process each order at most once per direction.
type InventoryChangedCommandHandler struct {
	uowFactory UoWFactory
	assigner   assigner
	guard      services.StockGuard
	rt         Runtime
}

func NewInventoryChangedCommandHandler(
	uowFactory UoWFactory,
	picker services.AgentPicker,
	rt Runtime,
) InventoryChangedCommandHandler {
	return InventoryChangedCommandHandler{
		uowFactory: uowFactory,
		assigner:   newAssigner(uowFactory, picker, rt),
		guard:      services.NewStockGuard(),
		rt:         rt,
	}
}

// Handle returns an error only when the warehouse owner or the candidate
// orders cannot be resolved. Per-order failures land in the result.
func (h *InventoryChangedCommandHandler) Handle(
	ctx context.Context,
	cmd InventoryChangedCommand,
) (InventoryChangedResult, error) {
	if err := cmd.Validate(); err != nil {
		return InventoryChangedResult{}, err
	}
	if cmd.Delta() == 0 {
		return InventoryChangedResult{}, nil
	}

	uow := h.uowFactory.Create()
	partnerID, err := uow.Inventory().OwnerPartner(ctx, cmd.WarehouseID())
	if err != nil {
		return InventoryChangedResult{}, err
	}

	res := InventoryChangedResult{PartnerID: partnerID}

	statuses := []order.Status{order.NoStock}
	if cmd.Delta() < 0 {
		statuses = shortageCandidates()
	}
	ids, err := uow.OrderRepository().ListIDsByPartnerProduct(ctx, partnerID, cmd.ProductID(), statuses)
	if err != nil {
		return InventoryChangedResult{}, err
	}

	for _, id := range ids {
		if cmd.Delta() < 0 {
			err = h.shortage(ctx, cmd, partnerID, id, &res)
		} else {
			err = h.recover(ctx, cmd, partnerID, id, &res)
		}
		if err != nil {
			res.Failed++
			res.Err = multierr.Append(res.Err, err)
			h.rt.log().Error(h.rt.log().WithField(ctx, "order_id", id.String()), "stock guard failed", err)
		}
	}

	return res, nil
}

func (h *InventoryChangedCommandHandler) shortage(
	ctx context.Context,
	cmd InventoryChangedCommand,
	partnerID, orderID kernel.UUID,
	res *InventoryChangedResult,
) error {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	o, err := uow.OrderRepository().GetForUpdate(ctx, orderID)
	if err != nil {
		return err
	}
	available, err := h.availability(ctx, uow, partnerID, o)
	if err != nil {
		return err
	}
	if !h.guard.NeedsShortage(o, available) {
		return nil
	}

	prior, priorAgent := o.Status(), o.Agent()
	changed, err := o.MarkOutOfStock()
	if err != nil || !changed {
		return err
	}
	if err = uow.OrderRepository().Update(ctx, o); err != nil {
		return err
	}
	if err = uow.Commit(ctx); err != nil {
		return err
	}

	tr := event.Transition{PriorStatus: prior, PriorAgent: priorAgent, NewStatus: o.Status(), Reason: stockShortage}
	h.rt.audit(ctx, o, tr, stockFields(cmd))
	h.rt.Metrics.IncStockTransition(stockShortage)

	res.Shortages++
	res.Events = append(res.Events, event.ForOrder(event.OrderLostToNoStock, o, tr, h.rt.now(), stockAttrs(cmd)))
	return nil
}

func (h *InventoryChangedCommandHandler) recover(
	ctx context.Context,
	cmd InventoryChangedCommand,
	partnerID, orderID kernel.UUID,
	res *InventoryChangedResult,
) error {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	o, err := uow.OrderRepository().GetForUpdate(ctx, orderID)
	if err != nil {
		return err
	}
	available, err := h.availability(ctx, uow, partnerID, o)
	if err != nil {
		return err
	}

	prior, priorAgent := o.Status(), o.Agent()
	var (
		reason string
		extra  []event.Event
	)

	switch h.guard.Recovery(o, available) {
	case services.RecoveryNone:
		return nil

	case services.RecoverySkipInconsistent:
		fields := stockFields(cmd)
		fields["order_id"] = o.ID().String()
		fields["previous_status"] = o.PreviousStatus().String()
		h.rt.log().Warn(h.rt.log().WithFields(ctx, fields), "recovery skipped: previous status is terminal")
		h.rt.Metrics.IncStockTransition(stockSkipInconsistent)
		res.Skipped++
		return nil

	case services.RecoveryRestore:
		if err = o.RestorePreviousStatus(); err != nil {
			return err
		}
		if err = uow.OrderRepository().Update(ctx, o); err != nil {
			return err
		}
		reason = stockRestored

	case services.RecoveryReassign:
		_, extra, err = h.assigner.assignLocked(ctx, uow, o, assignment.ReasonStockRecovery, nil)
		switch {
		case errors.Is(err, services.ErrNoAgentsAvailable):
			if err = o.ReturnToNew(); err != nil {
				return err
			}
			if err = uow.OrderRepository().Update(ctx, o); err != nil {
				return err
			}
			reason = stockReturnedToNew
		case err != nil:
			return err
		default:
			reason = stockReassigned
		}
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	tr := event.Transition{PriorStatus: prior, PriorAgent: priorAgent, NewStatus: o.Status(), Reason: reason}
	h.rt.audit(ctx, o, tr, stockFields(cmd))
	h.rt.Metrics.IncStockTransition(reason)

	switch reason {
	case stockRestored:
		res.Restored++
	case stockReassigned:
		res.Reassigned++
	default:
		res.ReturnedToNew++
	}

	attrs := stockAttrs(cmd)
	attrs["path"] = reason
	res.Events = append(res.Events, event.ForOrder(event.OrderRecovered, o, tr, h.rt.now(), attrs))
	res.Events = append(res.Events, extra...)
	return nil
}

func (h *InventoryChangedCommandHandler) availability(
	ctx context.Context,
	uow UoW,
	partnerID kernel.UUID,
	o *order.Order,
) (services.Availability, error) {
	required := order.RequiredQuantities(o.Items())
	products := make([]kernel.UUID, 0, len(required))
	for id := range required {
		products = append(products, id)
	}
	available, err := uow.Inventory().Available(ctx, partnerID, products)
	if err != nil {
		return nil, err
	}
	return services.Availability(available), nil
}

// shortageCandidates are the statuses the shortage path may pull out of the
// workflow: everything live that is not already parked in NoStock.
func shortageCandidates() []order.Status {
	out := make([]order.Status, 0)
	for _, s := range order.Statuses() {
		if !s.IsTerminal() && s != order.NoStock {
			out = append(out, s)
		}
	}
	return out
}

func stockFields(cmd InventoryChangedCommand) map[string]any {
	return map[string]any{
		"product_id":   cmd.ProductID().String(),
		"warehouse_id": cmd.WarehouseID().String(),
		"delta":        cmd.Delta(),
	}
}

func stockAttrs(cmd InventoryChangedCommand) map[string]string {
	return map[string]string{
		"product_id":   cmd.ProductID().String(),
		"warehouse_id": cmd.WarehouseID().String(),
	}
}
