package postgres

import (
	"context"
	"embed"
	"fmt"

	"orderflow/internal/adapters/out/postgres/assignmentrepo"
	"orderflow/internal/adapters/out/postgres/eventrepo"
	"orderflow/internal/adapters/out/postgres/inventoryrepo"
	"orderflow/internal/adapters/out/postgres/orderrepo"
	"orderflow/internal/adapters/out/postgres/rosterrepo"
	"orderflow/internal/adapters/out/postgres/settingsrepo"
	"orderflow/internal/adapters/out/postgres/shiftrepo"

	"github.com/pressly/goose/v3"
	"gorm.io/gorm"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Migrate applies the embedded goose migrations to a postgres database.
func Migrate(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("extracting sql.DB: %w", err)
	}

	goose.SetBaseFS(migrationsFS)
	defer goose.SetBaseFS(nil)

	if err = goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	if err = goose.UpContext(ctx, sqlDB, "migrations"); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	return nil
}

// Models lists every table DTO. Used with AutoMigrate for databases goose
// migrations do not target, such as the in-memory sqlite used by tests.
func Models() []any {
	return []any{
		&rosterrepo.AgentDTO{},
		&orderrepo.OrderDTO{},
		&orderrepo.OrderItemDTO{},
		&shiftrepo.ShiftDTO{},
		&rosterrepo.RosterEntryDTO{},
		&assignmentrepo.AssignmentDTO{},
		&settingsrepo.SettingDTO{},
		&inventoryrepo.WarehouseDTO{},
		&inventoryrepo.InventoryDTO{},
		&eventrepo.EventDTO{},
	}
}

// AutoMigrate creates the schema from the DTOs.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(Models()...)
}
