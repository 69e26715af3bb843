package commands

import (
	"errors"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/pkg/errs"
	"orderflow/internal/pkg/guard"
)

var ErrInventoryChangedCommandIsNotConstructed = errors.New(
	"InventoryChangedCommand must be created via NewInventoryChangedCommand constructor",
)

// InventoryChangedCommand reports a committed stock movement of one product in
// one warehouse. A negative delta runs the shortage path, a positive one the
// recovery path.
type InventoryChangedCommand struct { //nolint:recvcheck //using for validation
	productID   kernel.UUID
	warehouseID kernel.UUID
	delta       int

	guard guard.ConstructorGuard
}

func NewInventoryChangedCommand(productID, warehouseID kernel.UUID, delta int) (InventoryChangedCommand, error) {
	cmd := InventoryChangedCommand{
		delta: delta,
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setProductID(productID),
		cmd.setWarehouseID(warehouseID),
	); err != nil {
		return InventoryChangedCommand{}, err
	}

	return cmd, nil
}

func (c InventoryChangedCommand) Validate() error {
	return c.guard.Validate(ErrInventoryChangedCommandIsNotConstructed)
}

func (c InventoryChangedCommand) ProductID() kernel.UUID {
	return c.productID
}

func (c InventoryChangedCommand) WarehouseID() kernel.UUID {
	return c.warehouseID
}

func (c InventoryChangedCommand) Delta() int {
	return c.delta
}

func (c *InventoryChangedCommand) setProductID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("product", err)
	}

	c.productID = id
	return nil
}

func (c *InventoryChangedCommand) setWarehouseID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("warehouse", err)
	}

	c.warehouseID = id
	return nil
}
