package commands_test

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"orderflow/internal/core/application/usecases/commands"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/domain/model/roster"
	"orderflow/internal/core/domain/model/shift"
	"orderflow/internal/core/ports"
)

type MockOrderRepository struct{ mock.Mock }

func (m *MockOrderRepository) Add(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) Update(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	args := m.Called(ctx, id)
	o, _ := args.Get(0).(*order.Order)
	return o, args.Error(1)
}

func (m *MockOrderRepository) GetForUpdate(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	args := m.Called(ctx, id)
	o, _ := args.Get(0).(*order.Order)
	return o, args.Error(1)
}

func (m *MockOrderRepository) ListUnassignedIDs(
	ctx context.Context,
	outletID kernel.UUID,
	from, to time.Time,
) ([]kernel.UUID, error) {
	args := m.Called(ctx, outletID, from, to)
	ids, _ := args.Get(0).([]kernel.UUID)
	return ids, args.Error(1)
}

func (m *MockOrderRepository) ListIDsByStatus(
	ctx context.Context,
	outletID kernel.UUID,
	statuses []order.Status,
) ([]kernel.UUID, error) {
	args := m.Called(ctx, outletID, statuses)
	ids, _ := args.Get(0).([]kernel.UUID)
	return ids, args.Error(1)
}

func (m *MockOrderRepository) ListScheduledIDs(
	ctx context.Context,
	outletID kernel.UUID,
	status order.Status,
	from, to time.Time,
) ([]kernel.UUID, error) {
	args := m.Called(ctx, outletID, status, from, to)
	ids, _ := args.Get(0).([]kernel.UUID)
	return ids, args.Error(1)
}

func (m *MockOrderRepository) ListIDsByPartnerProduct(
	ctx context.Context,
	partnerID, productID kernel.UUID,
	statuses []order.Status,
) ([]kernel.UUID, error) {
	args := m.Called(ctx, partnerID, productID, statuses)
	ids, _ := args.Get(0).([]kernel.UUID)
	return ids, args.Error(1)
}

func (m *MockOrderRepository) CountActiveByAgent(
	ctx context.Context,
	agents []kernel.UUID,
	from, to time.Time,
) (map[kernel.UUID]int, error) {
	args := m.Called(ctx, agents, from, to)
	out, _ := args.Get(0).(map[kernel.UUID]int)
	return out, args.Error(1)
}

type MockShiftRepository struct{ mock.Mock }

func (m *MockShiftRepository) GetOrCreateForUpdate(
	ctx context.Context,
	outletID kernel.UUID,
	date kernel.Date,
) (*shift.Shift, error) {
	args := m.Called(ctx, outletID, date)
	s, _ := args.Get(0).(*shift.Shift)
	return s, args.Error(1)
}

func (m *MockShiftRepository) Find(ctx context.Context, outletID kernel.UUID, date kernel.Date) (*shift.Shift, error) {
	args := m.Called(ctx, outletID, date)
	s, _ := args.Get(0).(*shift.Shift)
	return s, args.Error(1)
}

func (m *MockShiftRepository) Update(ctx context.Context, s *shift.Shift) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockShiftRepository) LatestCloseBefore(
	ctx context.Context,
	outletID kernel.UUID,
	date kernel.Date,
) (*time.Time, error) {
	args := m.Called(ctx, outletID, date)
	t, _ := args.Get(0).(*time.Time)
	return t, args.Error(1)
}

func (m *MockShiftRepository) LatestOpenBeforeForUpdate(
	ctx context.Context,
	outletID kernel.UUID,
	date kernel.Date,
) (*shift.Shift, error) {
	args := m.Called(ctx, outletID, date)
	s, _ := args.Get(0).(*shift.Shift)
	return s, args.Error(1)
}

func (m *MockShiftRepository) ListOpen(ctx context.Context, date kernel.Date) ([]*shift.Shift, error) {
	args := m.Called(ctx, date)
	out, _ := args.Get(0).([]*shift.Shift)
	return out, args.Error(1)
}

type MockRosterRepository struct{ mock.Mock }

func (m *MockRosterRepository) AddAgent(ctx context.Context, a *roster.Agent) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *MockRosterRepository) ListAgents(ctx context.Context, outletID kernel.UUID) ([]*roster.Agent, error) {
	args := m.Called(ctx, outletID)
	out, _ := args.Get(0).([]*roster.Agent)
	return out, args.Error(1)
}

func (m *MockRosterRepository) UpsertEntries(ctx context.Context, entries []roster.Entry) error {
	args := m.Called(ctx, entries)
	return args.Error(0)
}

func (m *MockRosterRepository) DeactivateExcept(
	ctx context.Context,
	outletID kernel.UUID,
	date kernel.Date,
	keep []kernel.UUID,
) error {
	args := m.Called(ctx, outletID, date, keep)
	return args.Error(0)
}

func (m *MockRosterRepository) ActiveAgentIDs(
	ctx context.Context,
	outletID kernel.UUID,
	date kernel.Date,
) ([]kernel.UUID, error) {
	args := m.Called(ctx, outletID, date)
	out, _ := args.Get(0).([]kernel.UUID)
	return out, args.Error(1)
}

type MockInventory struct{ mock.Mock }

func (m *MockInventory) OwnerPartner(ctx context.Context, warehouseID kernel.UUID) (kernel.UUID, error) {
	args := m.Called(ctx, warehouseID)
	id, _ := args.Get(0).(kernel.UUID)
	return id, args.Error(1)
}

func (m *MockInventory) Available(
	ctx context.Context,
	partnerID kernel.UUID,
	products []kernel.UUID,
) (map[kernel.UUID]int, error) {
	args := m.Called(ctx, partnerID, products)
	out, _ := args.Get(0).(map[kernel.UUID]int)
	return out, args.Error(1)
}

type MockUoW struct{ mock.Mock }

func (m *MockUoW) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) OrderRepository() ports.OrderRepository {
	args := m.Called()
	return args.Get(0).(ports.OrderRepository)
}

func (m *MockUoW) ShiftRepository() ports.ShiftRepository {
	args := m.Called()
	return args.Get(0).(ports.ShiftRepository)
}

func (m *MockUoW) RosterRepository() ports.RosterRepository {
	args := m.Called()
	return args.Get(0).(ports.RosterRepository)
}

func (m *MockUoW) AssignmentLog() ports.AssignmentLog {
	args := m.Called()
	return args.Get(0).(ports.AssignmentLog)
}

func (m *MockUoW) Settings() ports.SettingsStore {
	args := m.Called()
	return args.Get(0).(ports.SettingsStore)
}

func (m *MockUoW) Inventory() ports.InventoryReader {
	args := m.Called()
	return args.Get(0).(ports.InventoryReader)
}

type MockUoWFactory struct{ mock.Mock }

func (m *MockUoWFactory) Create() commands.UoW {
	args := m.Called()
	return args.Get(0).(commands.UoW)
}

type MockRosterUoWFactory struct{ mock.Mock }

func (m *MockRosterUoWFactory) Create() commands.RosterUoW {
	args := m.Called()
	return args.Get(0).(commands.RosterUoW)
}

