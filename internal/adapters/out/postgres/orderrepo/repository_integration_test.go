package orderrepo_test

import (
	"context"
	"testing"
	"time"

	postgres_adapter "orderflow/internal/adapters/out/postgres"
	"orderflow/internal/adapters/out/postgres/orderrepo"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/pkg/errs"

	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	postgresdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// OrderRepositoryIntegrationTestSuite verifies order persistence against PostgreSQL.
type OrderRepositoryIntegrationTestSuite struct {
	suite.Suite
	container  *postgres.PostgresContainer
	db         *gorm.DB
	repository *orderrepo.GormOrderRepository
	outlet     kernel.UUID
	partner    kernel.UUID
	base       time.Time
}

func (suite *OrderRepositoryIntegrationTestSuite) SetupSuite() {
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	suite.Require().NoError(err)
	suite.container = container

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	suite.Require().NoError(err)

	db, err := gorm.Open(postgresdriver.Open(connStr), &gorm.Config{})
	suite.Require().NoError(err)
	suite.db = db

	suite.Require().NoError(postgres_adapter.Migrate(ctx, db))
}

func (suite *OrderRepositoryIntegrationTestSuite) SetupTest() {
	suite.Require().NoError(suite.db.Exec("TRUNCATE TABLE order_assignments, order_items, orders").Error)

	suite.repository = orderrepo.NewGormOrderRepository(suite.db)
	suite.outlet = kernel.NewUUID()
	suite.partner = kernel.NewUUID()
	suite.base = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
}

func (suite *OrderRepositoryIntegrationTestSuite) TearDownSuite() {
	if suite.container != nil {
		suite.Require().NoError(suite.container.Terminate(context.Background()))
	}
}

func (suite *OrderRepositoryIntegrationTestSuite) newOrder(createdAt time.Time, items ...order.LineItem) *order.Order {
	o, err := order.NewOrder(kernel.NewUUID(), suite.outlet, &suite.partner, items, createdAt)
	suite.Require().NoError(err)
	suite.Require().NoError(suite.repository.Add(context.Background(), o))
	return o
}

func (suite *OrderRepositoryIntegrationTestSuite) item(product kernel.UUID, qty int) order.LineItem {
	it, err := order.NewLineItem(product, qty)
	suite.Require().NoError(err)
	return it
}

func (suite *OrderRepositoryIntegrationTestSuite) TestAddAndGet_RoundTripsItems() {
	ctx := context.Background()
	productA, productB := kernel.NewUUID(), kernel.NewUUID()
	o := suite.newOrder(suite.base, suite.item(productA, 2), suite.item(productB, 1))

	stored, err := suite.repository.Get(ctx, o.ID())
	suite.Require().NoError(err)

	suite.Equal(o.ID(), stored.ID())
	suite.Equal(suite.outlet, stored.OutletID())
	suite.Require().NotNil(stored.PartnerID())
	suite.Equal(suite.partner, *stored.PartnerID())
	suite.Equal(order.New, stored.Status())
	suite.True(stored.CreatedAt().Equal(suite.base))
	suite.Equal(map[kernel.UUID]int{productA: 2, productB: 1}, order.RequiredQuantities(stored.Items()))
}

func (suite *OrderRepositoryIntegrationTestSuite) TestGet_NotFound() {
	_, err := suite.repository.Get(context.Background(), kernel.NewUUID())

	suite.Require().Error(err)
	suite.ErrorIs(err, errs.ErrObjectNotFound)
}

func (suite *OrderRepositoryIntegrationTestSuite) TestUpdate_PersistsShortageAndClearsIt() {
	ctx := context.Background()
	o := suite.newOrder(suite.base)
	suite.Require().NoError(o.Assign(kernel.NewUUID()))
	suite.Require().NoError(suite.repository.Update(ctx, o))

	_, err := o.MarkOutOfStock()
	suite.Require().NoError(err)
	suite.Require().NoError(suite.repository.Update(ctx, o))

	stored, err := suite.repository.Get(ctx, o.ID())
	suite.Require().NoError(err)
	suite.Equal(order.NoStock, stored.Status())
	suite.Nil(stored.Agent())
	suite.Require().NotNil(stored.PreviousStatus())
	suite.Equal(order.Assigned, *stored.PreviousStatus())

	suite.Require().NoError(stored.RestorePreviousStatus())
	suite.Require().NoError(suite.repository.Update(ctx, stored))

	restored, err := suite.repository.Get(ctx, o.ID())
	suite.Require().NoError(err)
	suite.Equal(order.New, restored.Status())
	suite.Nil(restored.PreviousStatus())
}

func (suite *OrderRepositoryIntegrationTestSuite) TestUpdate_PersistsResetCountAndSchedule() {
	ctx := context.Background()
	o := suite.newOrder(suite.base)
	suite.Require().NoError(o.ResetToNew())
	at := suite.base.Add(48 * time.Hour)
	suite.Require().NoError(o.Reschedule(at))
	suite.Require().NoError(suite.repository.Update(ctx, o))

	stored, err := suite.repository.Get(ctx, o.ID())
	suite.Require().NoError(err)
	suite.Equal(1, stored.ResetCount())
	suite.Equal(order.ScheduledOtherDay, stored.Status())
	suite.Require().NotNil(stored.ScheduledAt())
	suite.True(stored.ScheduledAt().Equal(at))
}

func (suite *OrderRepositoryIntegrationTestSuite) TestUpdate_UnknownOrder() {
	o, err := order.NewOrder(kernel.NewUUID(), suite.outlet, nil, nil, suite.base)
	suite.Require().NoError(err)

	err = suite.repository.Update(context.Background(), o)

	suite.ErrorIs(err, errs.ErrObjectNotFound)
}

func (suite *OrderRepositoryIntegrationTestSuite) TestGetForUpdate_InsideTransaction() {
	ctx := context.Background()
	o := suite.newOrder(suite.base)

	err := suite.db.Transaction(func(tx *gorm.DB) error {
		locked, err := orderrepo.NewGormOrderRepository(tx).GetForUpdate(ctx, o.ID())
		if err != nil {
			return err
		}
		suite.Equal(o.ID(), locked.ID())
		return nil
	})
	suite.Require().NoError(err)
}

func (suite *OrderRepositoryIntegrationTestSuite) TestListUnassignedIDs_WindowAndStatus() {
	ctx := context.Background()
	early := suite.newOrder(suite.base.Add(-2 * time.Hour))
	first := suite.newOrder(suite.base)
	second := suite.newOrder(suite.base.Add(time.Hour))

	assigned := suite.newOrder(suite.base.Add(30 * time.Minute))
	suite.Require().NoError(assigned.Assign(kernel.NewUUID()))
	suite.Require().NoError(suite.repository.Update(ctx, assigned))

	review := suite.newOrder(suite.base.Add(40 * time.Minute))
	suite.Require().NoError(review.ChangeStatus(order.UnderReview))
	suite.Require().NoError(suite.repository.Update(ctx, review))

	short := suite.newOrder(suite.base.Add(45 * time.Minute))
	suite.Require().NoError(short.ChangeStatus(order.NoStock))
	suite.Require().NoError(suite.repository.Update(ctx, short))

	calling := suite.newOrder(suite.base.Add(50 * time.Minute))
	suite.Require().NoError(calling.ChangeStatus(order.Call2))
	suite.Require().NoError(suite.repository.Update(ctx, calling))

	ids, err := suite.repository.ListUnassignedIDs(ctx, suite.outlet, suite.base, suite.base.Add(time.Hour))
	suite.Require().NoError(err)

	suite.Equal([]kernel.UUID{first.ID(), calling.ID(), second.ID()}, ids)
	suite.NotContains(ids, early.ID())
}

func (suite *OrderRepositoryIntegrationTestSuite) TestListIDsByStatus() {
	ctx := context.Background()
	fresh := suite.newOrder(suite.base)
	confirmed := suite.newOrder(suite.base.Add(time.Minute))
	suite.Require().NoError(confirmed.Assign(kernel.NewUUID()))
	suite.Require().NoError(confirmed.ChangeStatus(order.Confirmed))
	suite.Require().NoError(suite.repository.Update(ctx, confirmed))

	ids, err := suite.repository.ListIDsByStatus(ctx, suite.outlet, []order.Status{order.Confirmed})
	suite.Require().NoError(err)
	suite.Equal([]kernel.UUID{confirmed.ID()}, ids)

	ids, err = suite.repository.ListIDsByStatus(ctx, suite.outlet, []order.Status{order.New, order.Confirmed})
	suite.Require().NoError(err)
	suite.Equal([]kernel.UUID{fresh.ID(), confirmed.ID()}, ids)

	ids, err = suite.repository.ListIDsByStatus(ctx, suite.outlet, nil)
	suite.Require().NoError(err)
	suite.Empty(ids)
}

func (suite *OrderRepositoryIntegrationTestSuite) TestListScheduledIDs_HalfOpenWindow() {
	ctx := context.Background()
	inside := suite.newOrder(suite.base)
	suite.Require().NoError(inside.Reschedule(suite.base.Add(2 * time.Hour)))
	suite.Require().NoError(suite.repository.Update(ctx, inside))

	boundary := suite.newOrder(suite.base)
	suite.Require().NoError(boundary.Reschedule(suite.base.Add(24 * time.Hour)))
	suite.Require().NoError(suite.repository.Update(ctx, boundary))

	ids, err := suite.repository.ListScheduledIDs(ctx, suite.outlet, order.ScheduledOtherDay,
		suite.base, suite.base.Add(24*time.Hour))
	suite.Require().NoError(err)
	suite.Equal([]kernel.UUID{inside.ID()}, ids)
}

func (suite *OrderRepositoryIntegrationTestSuite) TestListIDsByPartnerProduct() {
	ctx := context.Background()
	product, other := kernel.NewUUID(), kernel.NewUUID()
	needs := suite.newOrder(suite.base, suite.item(product, 1), suite.item(other, 3))
	suite.newOrder(suite.base, suite.item(other, 1))

	delivered := suite.newOrder(suite.base, suite.item(product, 1))
	suite.Require().NoError(delivered.Assign(kernel.NewUUID()))
	suite.Require().NoError(delivered.ChangeStatus(order.Delivered))
	suite.Require().NoError(suite.repository.Update(ctx, delivered))

	ids, err := suite.repository.ListIDsByPartnerProduct(ctx, suite.partner, product,
		[]order.Status{order.New, order.Assigned})
	suite.Require().NoError(err)
	suite.Equal([]kernel.UUID{needs.ID()}, ids)

	ids, err = suite.repository.ListIDsByPartnerProduct(ctx, kernel.NewUUID(), product, []order.Status{order.New})
	suite.Require().NoError(err)
	suite.Empty(ids)
}

func (suite *OrderRepositoryIntegrationTestSuite) TestCountActiveByAgent() {
	ctx := context.Background()
	busy, idle := kernel.NewUUID(), kernel.NewUUID()

	for i := range 3 {
		o := suite.newOrder(suite.base.Add(time.Duration(i) * time.Minute))
		suite.Require().NoError(o.Assign(busy))
		suite.Require().NoError(suite.repository.Update(ctx, o))
	}
	done := suite.newOrder(suite.base)
	suite.Require().NoError(done.Assign(busy))
	suite.Require().NoError(done.ChangeStatus(order.Delivered))
	suite.Require().NoError(suite.repository.Update(ctx, done))

	yesterday := suite.newOrder(suite.base.Add(-24 * time.Hour))
	suite.Require().NoError(yesterday.Assign(busy))
	suite.Require().NoError(suite.repository.Update(ctx, yesterday))

	counts, err := suite.repository.CountActiveByAgent(ctx, []kernel.UUID{busy, idle},
		suite.base.Add(-time.Hour), suite.base.Add(time.Hour))
	suite.Require().NoError(err)

	suite.Equal(3, counts[busy])
	_, ok := counts[idle]
	suite.False(ok)
}

func TestOrderRepositoryIntegrationTestSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(OrderRepositoryIntegrationTestSuite))
}
