// Package commands contains business operations that modify system state.
// Implements the Command pattern for write operations in the CQRS architecture.
// All commands follow a consistent pattern: validation, transaction management, and persistence.
//
// Every per-order mutation (assignment, stock shortage or recovery, shift-close
// reset) runs in its own short transaction holding the order's row lock.
// Batch operations therefore never roll back work done for other orders.
package commands

import (
	"context"

	"orderflow/internal/core/ports"
)

// Unit of Work interfaces provide transaction management for command handlers.
type (
	// TxManager handles database transaction lifecycle.
	TxManager interface {
		Begin(ctx context.Context) error
		Commit(ctx context.Context) error
		Rollback(ctx context.Context) error
	}

	// OrderRepoFactory provides access to the order directory within a transaction.
	OrderRepoFactory interface {
		OrderRepository() ports.OrderRepository
	}

	// ShiftRepoFactory provides access to the shift ledger within a transaction.
	ShiftRepoFactory interface {
		ShiftRepository() ports.ShiftRepository
	}

	// RosterRepoFactory provides access to agents and roster entries within a transaction.
	RosterRepoFactory interface {
		RosterRepository() ports.RosterRepository
	}

	// UoW manages transactions across every repository the engine touches.
	//
	// Example:
	//   uow := factory.Create()
	//   err := uow.Begin(ctx)
	//   defer uow.Rollback(ctx)
	//
	//   o, err := uow.OrderRepository().GetForUpdate(ctx, id)
	//   // ... perform operations
	//
	//   err = uow.Commit(ctx)
	UoW interface {
		TxManager
		OrderRepoFactory
		ShiftRepoFactory
		RosterRepoFactory
		AssignmentLog() ports.AssignmentLog
		Settings() ports.SettingsStore
		Inventory() ports.InventoryReader
	}

	// UoWFactory creates new unit of work instances.
	UoWFactory interface {
		Create() UoW
	}

	// RosterUoW is the narrower unit of work used by roster commands.
	RosterUoW interface {
		TxManager
		RosterRepoFactory
	}

	// RosterUoWFactory creates roster unit of work instances.
	RosterUoWFactory interface {
		Create() RosterUoW
	}
)
