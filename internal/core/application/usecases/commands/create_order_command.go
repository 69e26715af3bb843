package commands

import (
	"errors"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/pkg/errs"
	"orderflow/internal/pkg/guard"
)

var (
	ErrCreateOrderCommandIsNotConstructed = errors.New(
		"CreateOrderCommand must be created via NewCreateOrderCommand constructor",
	)
	ErrItemsAreRequired = errors.New("at least one line item is required")
)

// CreateOrderCommand registers a new order for an outlet. The order is
// handed to an agent of today's roster right after it is stored.
//
// Example:
//
//	item, _ := order.NewLineItem(productID, 2)
//	cmd, err := NewCreateOrderCommand(kernel.NewUUID(), outletID, &partnerID, []order.LineItem{item})
//	if err != nil {
//	    return fmt.Errorf("invalid order data: %w", err)
//	}
//
//	res, err := handler.Handle(ctx, cmd)
type CreateOrderCommand struct { //nolint:recvcheck //using for validation
	orderID   kernel.UUID
	outletID  kernel.UUID
	partnerID *kernel.UUID
	items     []order.LineItem

	guard guard.ConstructorGuard
}

// NewCreateOrderCommand validates ids and requires at least one line item.
// partnerID may be nil for orders not backed by partner stock.
func NewCreateOrderCommand(
	orderID, outletID kernel.UUID,
	partnerID *kernel.UUID,
	items []order.LineItem,
) (CreateOrderCommand, error) {
	cmd := CreateOrderCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setOrderID(orderID),
		cmd.setOutletID(outletID),
		cmd.setPartnerID(partnerID),
		cmd.setItems(items),
	); err != nil {
		return CreateOrderCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c CreateOrderCommand) Validate() error {
	return c.guard.Validate(ErrCreateOrderCommandIsNotConstructed)
}

func (c CreateOrderCommand) OrderID() kernel.UUID {
	return c.orderID
}

func (c CreateOrderCommand) OutletID() kernel.UUID {
	return c.outletID
}

func (c CreateOrderCommand) PartnerID() *kernel.UUID {
	return c.partnerID
}

// Items returns a copy of the line items.
func (c CreateOrderCommand) Items() []order.LineItem {
	out := make([]order.LineItem, len(c.items))
	copy(out, c.items)
	return out
}

func (c *CreateOrderCommand) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}

	c.orderID = orderID
	return nil
}

func (c *CreateOrderCommand) setOutletID(outletID kernel.UUID) error {
	if err := outletID.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("outlet", err)
	}

	c.outletID = outletID
	return nil
}

func (c *CreateOrderCommand) setPartnerID(partnerID *kernel.UUID) error {
	if partnerID == nil {
		return nil
	}
	if err := partnerID.Validate(); err != nil {
		return errs.NewValueIsInvalidErrorWithCause("partner", err)
	}

	id := *partnerID
	c.partnerID = &id
	return nil
}

func (c *CreateOrderCommand) setItems(items []order.LineItem) error {
	if len(items) == 0 {
		return ErrItemsAreRequired
	}
	for _, item := range items {
		if err := item.Validate(); err != nil {
			return err
		}
	}

	c.items = make([]order.LineItem, len(items))
	copy(c.items, items)
	return nil
}
