package ports

import (
	"context"

	"orderflow/internal/core/domain/model/kernel"
)

// InventoryReader reads current stock. The engine never writes inventory.
type InventoryReader interface {
	// OwnerPartner returns the partner owning the warehouse.
	OwnerPartner(ctx context.Context, warehouseID kernel.UUID) (kernel.UUID, error)

	// Available sums, per product, the quantity held in all warehouses of the partner.
	Available(ctx context.Context, partnerID kernel.UUID, products []kernel.UUID) (map[kernel.UUID]int, error)
}
