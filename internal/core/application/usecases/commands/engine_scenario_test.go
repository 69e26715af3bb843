package commands_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"orderflow/internal/adapters/out/postgres"
	"orderflow/internal/adapters/out/postgres/assignmentrepo"
	"orderflow/internal/adapters/out/postgres/inventoryrepo"
	"orderflow/internal/adapters/out/postgres/orderrepo"
	"orderflow/internal/adapters/out/postgres/rosterrepo"
	"orderflow/internal/core/application/usecases/commands"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/domain/model/roster"
	"orderflow/internal/core/domain/model/shift"
	"orderflow/internal/core/domain/services"
)

var (
	agentA = kernel.MustUUIDFromString("10000000-0000-4000-8000-000000000001")
	agentB = kernel.MustUUIDFromString("20000000-0000-4000-8000-000000000002")
	agentC = kernel.MustUUIDFromString("30000000-0000-4000-8000-000000000003")
)

type gormUoWFactory struct {
	inner *postgres.GormUnitOfWorkFactory
}

func (f gormUoWFactory) Create() commands.UoW { return f.inner.Create() }

type gormRosterUoWFactory struct {
	inner *postgres.GormUnitOfWorkFactory
}

func (f gormRosterUoWFactory) Create() commands.RosterUoW { return f.inner.Create() }

// engine wires the handlers to an in-memory sqlite database with a fixed clock.
type engine struct {
	t      *testing.T
	ctx    context.Context
	db     *gorm.DB
	now    time.Time
	outlet kernel.UUID
	uows   gormUoWFactory
	rt     commands.Runtime
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:engine_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	require.NoError(t, err)
	require.NoError(t, postgres.AutoMigrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func newEngine(t *testing.T) *engine {
	t.Helper()
	db := newTestDB(t)
	e := &engine{
		t:      t,
		ctx:    t.Context(),
		db:     db,
		now:    time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC),
		outlet: kernel.NewUUID(),
		uows:   gormUoWFactory{inner: postgres.NewGormUnitOfWorkFactory(db)},
	}
	e.rt = commands.Runtime{
		Location: time.UTC,
		Clock:    func() time.Time { return e.now },
	}
	return e
}

func (e *engine) today() kernel.Date {
	return kernel.DateOf(e.now, time.UTC)
}

func (e *engine) addAgent(id kernel.UUID, inDefaultRoster bool) {
	e.t.Helper()
	a, err := roster.NewAgent(id, e.outlet, "agent "+id.String()[:4], true, inDefaultRoster, true)
	require.NoError(e.t, err)
	require.NoError(e.t, rosterrepo.NewGormRosterRepository(e.db).AddAgent(e.ctx, a))
}

func (e *engine) setRoster(ids ...kernel.UUID) {
	e.t.Helper()
	cmd, err := commands.NewSetManualRosterCommand(e.outlet, e.today(), ids)
	require.NoError(e.t, err)
	h := commands.NewSetManualRosterCommandHandler(gormRosterUoWFactory{inner: e.uows.inner}, e.rt)
	_, err = h.Handle(e.ctx, cmd)
	require.NoError(e.t, err)
}

// addOrder stores a New order and lets mutate shape it before the insert.
func (e *engine) addOrder(partner *kernel.UUID, items []order.LineItem, mutate func(o *order.Order)) kernel.UUID {
	e.t.Helper()
	o, err := order.NewOrder(kernel.NewUUID(), e.outlet, partner, items, e.now)
	require.NoError(e.t, err)
	if mutate != nil {
		mutate(o)
	}
	require.NoError(e.t, orderrepo.NewGormOrderRepository(e.db).Add(e.ctx, o))
	return o.ID()
}

func (e *engine) restoreOrder(s order.Snapshot) kernel.UUID {
	e.t.Helper()
	s.OutletID = e.outlet
	s.CreatedAt = e.now
	o, err := order.RestoreOrder(s)
	require.NoError(e.t, err)
	require.NoError(e.t, orderrepo.NewGormOrderRepository(e.db).Add(e.ctx, o))
	return o.ID()
}

func (e *engine) order(id kernel.UUID) *order.Order {
	e.t.Helper()
	o, err := orderrepo.NewGormOrderRepository(e.db).Get(e.ctx, id)
	require.NoError(e.t, err)
	return o
}

func (e *engine) assign(picker services.AgentPicker, id kernel.UUID) commands.AssignOrderResult {
	e.t.Helper()
	cmd, err := commands.NewAssignOrderCommand(id, nil)
	require.NoError(e.t, err)
	h := commands.NewAssignOrderCommandHandler(e.uows, picker, e.rt)
	res, err := h.Handle(e.ctx, cmd)
	require.NoError(e.t, err)
	return res
}

func (e *engine) openShift(backlog bool) (commands.OpenShiftResult, error) {
	cmd, err := commands.NewOpenShiftCommand(e.outlet, nil)
	require.NoError(e.t, err)
	h := commands.NewOpenShiftCommandHandler(e.uows, services.RoundRobin{}, backlog, e.rt)
	return h.Handle(e.ctx, cmd)
}

func (e *engine) closeShift() (commands.CloseShiftResult, error) {
	cmd, err := commands.NewCloseShiftCommand(e.outlet, nil)
	require.NoError(e.t, err)
	h := commands.NewCloseShiftCommandHandler(e.uows, services.DefaultResetPolicy(time.UTC), e.rt)
	return h.Handle(e.ctx, cmd)
}

func (e *engine) inventoryChanged(product, warehouse kernel.UUID, delta int) commands.InventoryChangedResult {
	e.t.Helper()
	cmd, err := commands.NewInventoryChangedCommand(product, warehouse, delta)
	require.NoError(e.t, err)
	h := commands.NewInventoryChangedCommandHandler(e.uows, services.RoundRobin{}, e.rt)
	res, err := h.Handle(e.ctx, cmd)
	require.NoError(e.t, err)
	return res
}

func (e *engine) assignmentCount(id kernel.UUID) int {
	e.t.Helper()
	records, err := assignmentrepo.NewGormAssignmentLog(e.db).ListForOrder(e.ctx, id)
	require.NoError(e.t, err)
	return len(records)
}

func mustItem(t *testing.T, product kernel.UUID, qty int) order.LineItem {
	t.Helper()
	item, err := order.NewLineItem(product, qty)
	require.NoError(t, err)
	return item
}

func assigned(t *testing.T, agent kernel.UUID) func(o *order.Order) {
	return func(o *order.Order) {
		require.NoError(t, o.Assign(agent))
	}
}

func inStatus(t *testing.T, agent kernel.UUID, s order.Status) func(o *order.Order) {
	return func(o *order.Order) {
		require.NoError(t, o.Assign(agent))
		require.NoError(t, o.ChangeStatus(s))
	}
}

func TestAssignOrder_RoundRobinCyclesThroughRoster(t *testing.T) {
	e := newEngine(t)
	for _, id := range []kernel.UUID{agentC, agentA, agentB} {
		e.addAgent(id, true)
	}
	e.setRoster(agentB, agentC, agentA)

	want := []kernel.UUID{agentA, agentB, agentC, agentA}
	for i, expected := range want {
		id := e.addOrder(nil, nil, nil)
		res := e.assign(services.RoundRobin{}, id)

		require.NotNil(t, res.Agent, "order %d", i)
		assert.Equal(t, expected, *res.Agent, "order %d", i)
		assert.True(t, res.Assigned)
		require.Len(t, res.Events, 1)

		o := e.order(id)
		assert.Equal(t, order.Assigned, o.Status())
		assert.Equal(t, 1, e.assignmentCount(id))
	}
}

func TestAssignOrder_IsIdempotent(t *testing.T) {
	e := newEngine(t)
	e.addAgent(agentA, true)
	e.addAgent(agentB, true)
	e.setRoster(agentA, agentB)

	id := e.addOrder(nil, nil, nil)
	first := e.assign(services.RoundRobin{}, id)
	second := e.assign(services.RoundRobin{}, id)

	require.NotNil(t, first.Agent)
	require.NotNil(t, second.Agent)
	assert.Equal(t, *first.Agent, *second.Agent)
	assert.True(t, first.Assigned)
	assert.False(t, second.Assigned)
	assert.Empty(t, second.Events)
	assert.Equal(t, 1, e.assignmentCount(id))
}

func TestAssignOrder_EmptyRosterLeavesOrderUnassigned(t *testing.T) {
	e := newEngine(t)
	e.addAgent(agentA, true)

	id := e.addOrder(nil, nil, nil)
	res := e.assign(services.RoundRobin{}, id)

	assert.Nil(t, res.Agent)
	assert.False(t, res.Assigned)
	o := e.order(id)
	assert.Equal(t, order.New, o.Status())
	assert.False(t, o.HasAgent())
	assert.Equal(t, 0, e.assignmentCount(id))
}

func TestAssignOrder_RejectsStatusOutsideEngine(t *testing.T) {
	e := newEngine(t)
	e.addAgent(agentA, true)
	e.setRoster(agentA)

	id := e.addOrder(nil, nil, func(o *order.Order) {
		require.NoError(t, o.ChangeStatus(order.UnderReview))
	})

	cmd, err := commands.NewAssignOrderCommand(id, nil)
	require.NoError(t, err)
	h := commands.NewAssignOrderCommandHandler(e.uows, services.RoundRobin{}, e.rt)
	_, err = h.Handle(e.ctx, cmd)
	require.ErrorIs(t, err, order.ErrNotAssignable)
}

func TestAssignOrder_LoadBalancedPicksLeastLoadedThenFirstInOrder(t *testing.T) {
	e := newEngine(t)
	e.addAgent(agentA, true)
	e.addAgent(agentB, true)
	e.setRoster(agentA, agentB)

	e.addOrder(nil, nil, assigned(t, agentA))
	loadA := e.addOrder(nil, nil, assigned(t, agentA))

	res := e.assign(services.LoadBalanced{}, e.addOrder(nil, nil, nil))
	require.NotNil(t, res.Agent)
	assert.Equal(t, agentB, *res.Agent)

	// finishing one of A's orders leaves both agents with one active order
	o := e.order(loadA)
	require.NoError(t, o.ChangeStatus(order.Delivered))
	require.NoError(t, orderrepo.NewGormOrderRepository(e.db).Update(e.ctx, o))

	res = e.assign(services.LoadBalanced{}, e.addOrder(nil, nil, nil))
	require.NotNil(t, res.Agent)
	assert.Equal(t, agentA, *res.Agent)
}

func TestAssignBacklog_AssignsEachOrderAtMostOnce(t *testing.T) {
	e := newEngine(t)
	e.addAgent(agentA, true)
	e.addAgent(agentB, true)
	e.setRoster(agentA, agentB)

	ids := []kernel.UUID{
		e.addOrder(nil, nil, nil),
		e.addOrder(nil, nil, nil),
		e.addOrder(nil, nil, nil),
	}
	e.addOrder(nil, nil, assigned(t, agentB))

	cmd, err := commands.NewAssignBacklogCommand(e.outlet, e.today().Start(time.UTC), e.now)
	require.NoError(t, err)
	h := commands.NewAssignBacklogCommandHandler(e.uows, services.RoundRobin{}, e.rt)

	first, err := h.Handle(e.ctx, cmd)
	require.NoError(t, err)
	assert.Equal(t, 3, first.Assigned)
	assert.NoError(t, first.Err)
	assert.Len(t, first.Events, 3)

	second, err := h.Handle(e.ctx, cmd)
	require.NoError(t, err)
	assert.Equal(t, 0, second.Assigned)

	for _, id := range ids {
		assert.True(t, e.order(id).HasAgent())
		assert.Equal(t, 1, e.assignmentCount(id))
	}
}

func TestAssignBacklog_EmptyRosterSkipsOrders(t *testing.T) {
	e := newEngine(t)
	e.addOrder(nil, nil, nil)
	e.addOrder(nil, nil, nil)

	cmd, err := commands.NewAssignBacklogCommand(e.outlet, e.today().Start(time.UTC), e.now)
	require.NoError(t, err)
	h := commands.NewAssignBacklogCommandHandler(e.uows, services.RoundRobin{}, e.rt)

	res, err := h.Handle(e.ctx, cmd)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Assigned)
	assert.Equal(t, 2, res.Skipped)
	assert.NoError(t, res.Err)
}

func TestOpenShift_SecondOpenIsRejected(t *testing.T) {
	e := newEngine(t)
	e.addAgent(agentA, true)

	first, err := e.openShift(false)
	require.NoError(t, err)
	require.True(t, first.State.IsOpen)
	require.NotNil(t, first.State.OpenAt)
	assert.Equal(t, 1, first.Activated)

	e.now = e.now.Add(time.Hour)
	_, err = e.openShift(false)
	require.ErrorIs(t, err, shift.ErrAlreadyOpen)

	uow := e.uows.Create()
	s, err := uow.ShiftRepository().Find(e.ctx, e.outlet, e.today())
	require.NoError(t, err)
	require.NotNil(t, s.OpenAt())
	assert.True(t, s.OpenAt().Equal(*first.State.OpenAt))

	var flag bool
	found, err := uow.Settings().Get(e.ctx, "shift_open:"+e.outlet.String(), &flag)
	require.NoError(t, err)
	assert.True(t, found)
	assert.True(t, flag)
}

func TestOpenShift_PromotesScheduledOrdersAndSweepsBacklog(t *testing.T) {
	e := newEngine(t)
	e.addAgent(agentA, true)
	e.addAgent(agentB, false)

	laterToday := e.today().At(15, 0, time.UTC)
	tomorrow := e.today().AddDays(1).At(9, 0, time.UTC)

	dueToday := e.addOrder(nil, nil, func(o *order.Order) {
		require.NoError(t, o.Reschedule(laterToday))
	})
	dueTomorrow := e.addOrder(nil, nil, func(o *order.Order) {
		require.NoError(t, o.Reschedule(tomorrow))
	})
	fresh := e.addOrder(nil, nil, nil)

	res, err := e.openShift(true)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Activated)
	assert.Equal(t, 1, res.Promoted)
	require.NotNil(t, res.Backlog)
	assert.Equal(t, 3, res.Backlog.Assigned)
	assert.NoError(t, res.Err)

	rosterIDs, err := rosterrepo.NewGormRosterRepository(e.db).ActiveAgentIDs(e.ctx, e.outlet, e.today())
	require.NoError(t, err)
	assert.Equal(t, []kernel.UUID{agentA}, rosterIDs)

	promoted := e.order(dueToday)
	assert.Equal(t, order.ScheduledToday, promoted.Status())
	require.NotNil(t, promoted.Agent())
	assert.Equal(t, agentA, *promoted.Agent())

	deferred := e.order(dueTomorrow)
	assert.Equal(t, order.ScheduledOtherDay, deferred.Status())
	assert.True(t, deferred.HasAgent())
	assert.Equal(t, order.Assigned, e.order(fresh).Status())
}

func TestCloseShift_RejectsWhenNotOpenOrAlreadyClosed(t *testing.T) {
	e := newEngine(t)

	_, err := e.closeShift()
	require.ErrorIs(t, err, shift.ErrNotOpen)

	_, err = e.openShift(false)
	require.NoError(t, err)
	_, err = e.closeShift()
	require.NoError(t, err)

	_, err = e.closeShift()
	require.ErrorIs(t, err, shift.ErrAlreadyClosed)
}

func TestCloseShift_ClosesShiftOpenedBeforeMidnight(t *testing.T) {
	e := newEngine(t)
	e.now = time.Date(2026, 3, 10, 23, 30, 0, 0, time.UTC)
	opened := e.today()

	_, err := e.openShift(false)
	require.NoError(t, err)

	e.now = time.Date(2026, 3, 11, 0, 30, 0, 0, time.UTC)
	res, err := e.closeShift()
	require.NoError(t, err)
	assert.Equal(t, opened, res.State.Date)
	assert.False(t, res.State.IsOpen)
	require.NotNil(t, res.State.CloseAt)
	assert.True(t, res.State.CloseAt.Equal(e.now))

	_, err = e.closeShift()
	require.ErrorIs(t, err, shift.ErrNotOpen)
}

func TestCloseShift_EscalatesContactSequenceAcrossTwoCloses(t *testing.T) {
	e := newEngine(t)
	e.addAgent(agentA, true)

	id := e.addOrder(nil, nil, inStatus(t, agentA, order.Call1))

	_, err := e.openShift(false)
	require.NoError(t, err)
	res, err := e.closeShift()
	require.NoError(t, err)
	assert.Equal(t, 1, res.Resets.Outcomes[services.OutcomeEscalatedNew])

	o := e.order(id)
	assert.Equal(t, order.New, o.Status())
	assert.Equal(t, 1, o.ResetCount())
	assert.False(t, o.HasAgent())

	// next business day the order is picked up again and left in the call sequence
	e.now = e.now.Add(24 * time.Hour)
	_, err = e.openShift(false)
	require.NoError(t, err)

	o = e.order(id)
	require.NoError(t, o.Assign(agentA))
	require.NoError(t, o.ChangeStatus(order.Call2))
	require.NoError(t, orderrepo.NewGormOrderRepository(e.db).Update(e.ctx, o))

	res, err = e.closeShift()
	require.NoError(t, err)
	assert.Equal(t, 1, res.Resets.Outcomes[services.OutcomeAutoCancelled])

	o = e.order(id)
	assert.Equal(t, order.Cancelled, o.Status())
	assert.Equal(t, 0, o.ResetCount())
	assert.False(t, o.HasAgent())
}

func TestCloseShift_AppliesRulePerCategory(t *testing.T) {
	e := newEngine(t)
	e.addAgent(agentA, true)

	at := e.today().At(15, 30, time.UTC)
	fresh := e.addOrder(nil, nil, assigned(t, agentA))
	today := e.addOrder(nil, nil, func(o *order.Order) {
		require.NoError(t, o.Reschedule(at))
		require.NoError(t, o.PromoteToToday())
		require.NoError(t, o.Assign(agentA))
	})
	deferred := e.addOrder(nil, nil, inStatus(t, agentA, order.ScheduledOtherDay))
	confirmed := e.addOrder(nil, nil, inStatus(t, agentA, order.Confirmed))

	_, err := e.openShift(false)
	require.NoError(t, err)
	res, err := e.closeShift()
	require.NoError(t, err)
	assert.Equal(t, 3, res.Resets.Changed())
	assert.Equal(t, 0, res.Resets.Failed)

	o := e.order(fresh)
	assert.Equal(t, order.New, o.Status())
	assert.Equal(t, 1, o.ResetCount())
	assert.False(t, o.HasAgent())

	o = e.order(today)
	assert.Equal(t, order.ScheduledOtherDay, o.Status())
	require.NotNil(t, o.ScheduledAt())
	assert.True(t, o.ScheduledAt().Equal(e.today().AddDays(1).At(15, 30, time.UTC)))
	assert.False(t, o.HasAgent())

	o = e.order(deferred)
	assert.Equal(t, order.ScheduledOtherDay, o.Status())
	assert.False(t, o.HasAgent())
	assert.Equal(t, 0, o.ResetCount())

	o = e.order(confirmed)
	assert.Equal(t, order.Confirmed, o.Status())
	require.NotNil(t, o.Agent())
	assert.Equal(t, agentA, *o.Agent())
}

type stockFixture struct {
	partner   kernel.UUID
	warehouse kernel.UUID
	product   kernel.UUID
	inventory *inventoryrepo.GormInventoryReader
}

func newStockFixture(e *engine, quantity int) stockFixture {
	e.t.Helper()
	f := stockFixture{
		partner:   kernel.NewUUID(),
		warehouse: kernel.NewUUID(),
		product:   kernel.NewUUID(),
		inventory: inventoryrepo.NewGormInventoryReader(e.db),
	}
	require.NoError(e.t, f.inventory.AddWarehouse(e.ctx, f.warehouse, f.partner, "central"))
	require.NoError(e.t, f.inventory.SetQuantity(e.ctx, f.warehouse, f.product, quantity))
	return f
}

func TestInventoryChanged_ShortageAndRecoveryRoundTrip(t *testing.T) {
	e := newEngine(t)
	e.addAgent(agentA, true)
	e.setRoster(agentA)
	f := newStockFixture(e, 5)

	id := e.addOrder(&f.partner, []order.LineItem{mustItem(t, f.product, 2)}, inStatus(t, agentA, order.Call2))

	require.NoError(t, f.inventory.SetQuantity(e.ctx, f.warehouse, f.product, 1))
	res := e.inventoryChanged(f.product, f.warehouse, -4)
	assert.Equal(t, 1, res.Shortages)
	require.Len(t, res.Events, 1)
	assert.Equal(t, "call_2", res.Events[0].Attr("prior_status"))

	o := e.order(id)
	assert.Equal(t, order.NoStock, o.Status())
	require.NotNil(t, o.PreviousStatus())
	assert.Equal(t, order.Call2, *o.PreviousStatus())
	assert.False(t, o.HasAgent())

	// a second movement in the same direction changes nothing
	res = e.inventoryChanged(f.product, f.warehouse, -1)
	assert.Equal(t, 0, res.Shortages)
	require.NotNil(t, e.order(id).PreviousStatus())
	assert.Equal(t, order.Call2, *e.order(id).PreviousStatus())

	require.NoError(t, f.inventory.SetQuantity(e.ctx, f.warehouse, f.product, 5))
	res = e.inventoryChanged(f.product, f.warehouse, 4)
	assert.Equal(t, 1, res.Restored)

	o = e.order(id)
	assert.Equal(t, order.Call2, o.Status())
	assert.Nil(t, o.PreviousStatus())
	assert.False(t, o.HasAgent())
}

func TestInventoryChanged_RestoredOrderReturnsToBacklog(t *testing.T) {
	e := newEngine(t)
	e.addAgent(agentA, true)
	e.addAgent(agentB, true)
	e.setRoster(agentA, agentB)
	f := newStockFixture(e, 5)

	id := e.addOrder(&f.partner, []order.LineItem{mustItem(t, f.product, 2)}, inStatus(t, agentA, order.Call2))

	require.NoError(t, f.inventory.SetQuantity(e.ctx, f.warehouse, f.product, 1))
	e.inventoryChanged(f.product, f.warehouse, -4)
	require.NoError(t, f.inventory.SetQuantity(e.ctx, f.warehouse, f.product, 5))
	res := e.inventoryChanged(f.product, f.warehouse, 4)
	require.Equal(t, 1, res.Restored)
	require.False(t, e.order(id).HasAgent())

	cmd, err := commands.NewAssignBacklogCommand(e.outlet, e.today().Start(time.UTC), e.now)
	require.NoError(t, err)
	h := commands.NewAssignBacklogCommandHandler(e.uows, services.RoundRobin{}, e.rt)
	backlog, err := h.Handle(e.ctx, cmd)
	require.NoError(t, err)
	assert.Equal(t, 1, backlog.Assigned)
	assert.NoError(t, backlog.Err)

	o := e.order(id)
	assert.Equal(t, order.Call2, o.Status())
	require.NotNil(t, o.Agent())
	assert.Equal(t, agentA, *o.Agent())
	assert.Equal(t, 1, e.assignmentCount(id))

	// the order now has an agent, so a direct assignment returns it unchanged
	again := e.assign(services.RoundRobin{}, id)
	require.NotNil(t, again.Agent)
	assert.Equal(t, agentA, *again.Agent)
	assert.False(t, again.Assigned)
}

func TestAssignOrder_KeepsContactSequenceStatus(t *testing.T) {
	e := newEngine(t)
	e.addAgent(agentA, true)
	e.setRoster(agentA)

	id := e.addOrder(nil, nil, func(o *order.Order) {
		require.NoError(t, o.ChangeStatus(order.CallLater))
	})

	res := e.assign(services.RoundRobin{}, id)
	require.NotNil(t, res.Agent)
	assert.True(t, res.Assigned)

	o := e.order(id)
	assert.Equal(t, order.CallLater, o.Status())
	assert.Equal(t, agentA, *o.Agent())
}

func TestInventoryChanged_RecoveryIgnoresStillShortOrders(t *testing.T) {
	e := newEngine(t)
	f := newStockFixture(e, 1)

	id := e.addOrder(&f.partner, []order.LineItem{mustItem(t, f.product, 3)}, func(o *order.Order) {
		_, err := o.MarkOutOfStock()
		require.NoError(t, err)
	})

	res := e.inventoryChanged(f.product, f.warehouse, 1)
	assert.Equal(t, 0, res.Restored+res.Reassigned+res.ReturnedToNew)
	assert.Equal(t, order.NoStock, e.order(id).Status())
}

func TestInventoryChanged_RecoveryWithoutPreviousStatus(t *testing.T) {
	e := newEngine(t)
	f := newStockFixture(e, 10)
	items := []order.LineItem{mustItem(t, f.product, 1)}

	withoutRoster := e.restoreOrder(order.Snapshot{
		ID:        kernel.NewUUID(),
		PartnerID: &f.partner,
		Status:    order.NoStock,
		Items:     items,
	})
	res := e.inventoryChanged(f.product, f.warehouse, 1)
	assert.Equal(t, 1, res.ReturnedToNew)
	assert.Equal(t, order.New, e.order(withoutRoster).Status())

	e.addAgent(agentA, true)
	e.setRoster(agentA)
	withRoster := e.restoreOrder(order.Snapshot{
		ID:        kernel.NewUUID(),
		PartnerID: &f.partner,
		Status:    order.NoStock,
		Items:     items,
	})
	res = e.inventoryChanged(f.product, f.warehouse, 1)
	assert.Equal(t, 1, res.Reassigned)

	o := e.order(withRoster)
	assert.Equal(t, order.Assigned, o.Status())
	require.NotNil(t, o.Agent())
	assert.Equal(t, agentA, *o.Agent())
	assert.Equal(t, 1, e.assignmentCount(withRoster))
}

func TestInventoryChanged_TerminalPreviousStatusIsSkipped(t *testing.T) {
	e := newEngine(t)
	f := newStockFixture(e, 10)
	delivered := order.Delivered

	id := e.restoreOrder(order.Snapshot{
		ID:             kernel.NewUUID(),
		PartnerID:      &f.partner,
		Status:         order.NoStock,
		PreviousStatus: &delivered,
		Items:          []order.LineItem{mustItem(t, f.product, 1)},
	})

	res := e.inventoryChanged(f.product, f.warehouse, 1)
	assert.Equal(t, 1, res.Skipped)
	assert.Empty(t, res.Events)

	o := e.order(id)
	assert.Equal(t, order.NoStock, o.Status())
	require.NotNil(t, o.PreviousStatus())
	assert.Equal(t, order.Delivered, *o.PreviousStatus())
}

func TestInventoryChanged_ZeroDeltaIsNoop(t *testing.T) {
	e := newEngine(t)
	res := e.inventoryChanged(kernel.NewUUID(), kernel.NewUUID(), 0)
	assert.Equal(t, commands.InventoryChangedResult{}, res)
}

func TestCreateOrder_AssignsFromRoster(t *testing.T) {
	e := newEngine(t)
	e.addAgent(agentA, true)
	e.setRoster(agentA)

	cmd, err := commands.NewCreateOrderCommand(kernel.NewUUID(), e.outlet, nil, []order.LineItem{mustItem(t, kernel.NewUUID(), 1)})
	require.NoError(t, err)
	h := commands.NewCreateOrderCommandHandler(e.uows, services.RoundRobin{}, e.rt)

	res, err := h.Handle(e.ctx, cmd)
	require.NoError(t, err)
	require.NotNil(t, res.Agent)
	assert.Equal(t, agentA, *res.Agent)

	o := e.order(cmd.OrderID())
	assert.Equal(t, order.Assigned, o.Status())
	assert.Len(t, o.Items(), 1)
}
