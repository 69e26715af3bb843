// Package inventoryrepo reads warehouse ownership and stock quantities.
// Inventory is written by the inventory service; the engine only reads it.
package inventoryrepo

import (
	"context"
	"errors"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/pkg/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type WarehouseDTO struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	OwnerPartnerID uuid.UUID `gorm:"type:uuid;not null;index"`
	Name           string    `gorm:"type:varchar(255)"`
}

func (WarehouseDTO) TableName() string {
	return "warehouses"
}

// InventoryDTO holds the quantity of one product in one warehouse.
type InventoryDTO struct {
	WarehouseID uuid.UUID `gorm:"type:uuid;primaryKey"`
	ProductID   uuid.UUID `gorm:"type:uuid;primaryKey;index"`
	Quantity    int       `gorm:"not null;check:quantity >= 0"`
}

func (InventoryDTO) TableName() string {
	return "inventory"
}

type GormInventoryReader struct {
	db *gorm.DB
}

func NewGormInventoryReader(db *gorm.DB) *GormInventoryReader {
	return &GormInventoryReader{db: db}
}

func (r *GormInventoryReader) OwnerPartner(ctx context.Context, warehouseID kernel.UUID) (kernel.UUID, error) {
	var dto WarehouseDTO
	if err := r.db.WithContext(ctx).First(&dto, "id = ?", warehouseID.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return kernel.UUID{}, errs.NewObjectNotFoundError("warehouse", warehouseID.String())
		}
		return kernel.UUID{}, err
	}
	return kernel.UUIDFromBytes(dto.OwnerPartnerID[:])
}

type productTotal struct {
	ProductID uuid.UUID
	Total     int
}

// Available sums quantities of products across every warehouse the partner owns.
// Products with no stock row are reported as 0.
func (r *GormInventoryReader) Available(
	ctx context.Context,
	partnerID kernel.UUID,
	products []kernel.UUID,
) (map[kernel.UUID]int, error) {
	out := make(map[kernel.UUID]int, len(products))
	if len(products) == 0 {
		return out, nil
	}

	raw := make([]uuid.UUID, 0, len(products))
	for _, p := range products {
		raw = append(raw, p.Bytes())
		out[p] = 0
	}

	var rows []productTotal
	err := r.db.WithContext(ctx).
		Table("inventory AS i").
		Select("i.product_id, COALESCE(SUM(i.quantity), 0) AS total").
		Joins("JOIN warehouses AS w ON w.id = i.warehouse_id").
		Where("w.owner_partner_id = ? AND i.product_id IN ?", partnerID.Bytes(), raw).
		Group("i.product_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		id, idErr := kernel.UUIDFromBytes(row.ProductID[:])
		if idErr != nil {
			return nil, idErr
		}
		out[id] = row.Total
	}
	return out, nil
}

// AddWarehouse registers a warehouse owned by partnerID.
func (r *GormInventoryReader) AddWarehouse(ctx context.Context, warehouseID, partnerID kernel.UUID, name string) error {
	dto := WarehouseDTO{ID: warehouseID.Bytes(), OwnerPartnerID: partnerID.Bytes(), Name: name}
	return r.db.WithContext(ctx).Create(&dto).Error
}

// SetQuantity overwrites the quantity of product in warehouse.
func (r *GormInventoryReader) SetQuantity(ctx context.Context, warehouseID, productID kernel.UUID, quantity int) error {
	dto := InventoryDTO{WarehouseID: warehouseID.Bytes(), ProductID: productID.Bytes(), Quantity: quantity}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "warehouse_id"}, {Name: "product_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"quantity"}),
		}).
		Create(&dto).Error
}
