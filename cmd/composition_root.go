package cmd

import (
	"time"

	httpadapter "orderflow/internal/adapters/in/http"
	"orderflow/internal/adapters/out/notify"
	"orderflow/internal/adapters/out/postgres"
	"orderflow/internal/adapters/out/postgres/eventrepo"
	"orderflow/internal/adapters/out/postgres/shiftrepo"
	redisadapter "orderflow/internal/adapters/out/redis"
	"orderflow/internal/core/application/usecases/commands"
	"orderflow/internal/core/application/usecases/queries"
	"orderflow/internal/core/domain/services"
	"orderflow/internal/jobs"
	"orderflow/internal/pkg/logger"
	"orderflow/internal/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"
)

type CompositionRoot struct {
	cfg        Config
	gormDB     *gorm.DB
	uowFactory *postgres.GormUnitOfWorkFactory
	redis      *redisadapter.Client

	loc        *time.Location
	picker     services.AgentPicker
	policy     services.ResetPolicy
	rt         commands.Runtime
	logger     *logger.Logger
	jobMetrics *metrics.JobMetrics
	dispatcher *notify.Dispatcher
}

// NewCompositionRoot wires the engine. redisClient may be nil, in which case
// jobs lock in-process. Collectors are registered on reg.
func NewCompositionRoot(
	cfg Config,
	gormDB *gorm.DB,
	redisClient *redisadapter.Client,
	log *logger.Logger,
	reg prometheus.Registerer,
) (CompositionRoot, error) {
	loc, err := cfg.Location()
	if err != nil {
		return CompositionRoot{}, err
	}
	picker, err := cfg.Picker()
	if err != nil {
		return CompositionRoot{}, err
	}
	hour, minute, err := cfg.RescheduleClock()
	if err != nil {
		return CompositionRoot{}, err
	}

	engineMetrics := metrics.NewEngineMetrics(reg)
	return CompositionRoot{
		cfg:        cfg,
		gormDB:     gormDB,
		uowFactory: postgres.NewGormUnitOfWorkFactory(gormDB),
		redis:      redisClient,
		loc:        loc,
		picker:     picker,
		policy:     services.NewResetPolicy(loc, hour, minute),
		rt:         commands.NewRuntime(loc, log, engineMetrics),
		logger:     log,
		jobMetrics: metrics.NewJobMetrics(reg),
		dispatcher: notify.NewDispatcher(eventrepo.NewGormEventOutbox(gormDB), log, engineMetrics),
	}, nil
}

func (c *CompositionRoot) uow() commands.UoWFactory {
	return FuncUoWFactory(func() commands.UoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) rosterUoW() commands.RosterUoWFactory {
	return FuncRosterUoWFactory(func() commands.RosterUoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) EventDispatcher() *notify.Dispatcher {
	return c.dispatcher
}

func (c *CompositionRoot) CreateCreateOrderCommandHandler() *commands.CreateOrderCommandHandler {
	h := commands.NewCreateOrderCommandHandler(c.uow(), c.picker, c.rt)
	return &h
}

func (c *CompositionRoot) CreateAssignOrderCommandHandler() *commands.AssignOrderCommandHandler {
	h := commands.NewAssignOrderCommandHandler(c.uow(), c.picker, c.rt)
	return &h
}

func (c *CompositionRoot) CreateAssignBacklogCommandHandler() *commands.AssignBacklogCommandHandler {
	h := commands.NewAssignBacklogCommandHandler(c.uow(), c.picker, c.rt)
	return &h
}

func (c *CompositionRoot) CreateOpenShiftCommandHandler() *commands.OpenShiftCommandHandler {
	h := commands.NewOpenShiftCommandHandler(c.uow(), c.picker, c.cfg.BacklogOnOpen, c.rt)
	return &h
}

func (c *CompositionRoot) CreateCloseShiftCommandHandler() *commands.CloseShiftCommandHandler {
	h := commands.NewCloseShiftCommandHandler(c.uow(), c.policy, c.rt)
	return &h
}

func (c *CompositionRoot) CreateActivateDefaultRosterCommandHandler() *commands.ActivateDefaultRosterCommandHandler {
	h := commands.NewActivateDefaultRosterCommandHandler(c.rosterUoW(), c.rt)
	return &h
}

func (c *CompositionRoot) CreateSetManualRosterCommandHandler() *commands.SetManualRosterCommandHandler {
	h := commands.NewSetManualRosterCommandHandler(c.rosterUoW(), c.rt)
	return &h
}

func (c *CompositionRoot) CreateInventoryChangedCommandHandler() *commands.InventoryChangedCommandHandler {
	h := commands.NewInventoryChangedCommandHandler(c.uow(), c.picker, c.rt)
	return &h
}

func (c *CompositionRoot) CreateGetShiftStatusQueryHandler() queries.GetShiftStatusQueryHandler {
	return queries.NewGetShiftStatusQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetRosterQueryHandler() queries.GetRosterQueryHandler {
	return queries.NewGetRosterQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetUnassignedOrdersQueryHandler() queries.GetUnassignedOrdersQueryHandler {
	return queries.NewGetUnassignedOrdersQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateHTTPServer() *httpadapter.Server {
	return httpadapter.NewServer(httpadapter.Handlers{
		CreateOrder:      c.CreateCreateOrderCommandHandler(),
		AssignOrder:      c.CreateAssignOrderCommandHandler(),
		AssignBacklog:    c.CreateAssignBacklogCommandHandler(),
		OpenShift:        c.CreateOpenShiftCommandHandler(),
		CloseShift:       c.CreateCloseShiftCommandHandler(),
		ActivateRoster:   c.CreateActivateDefaultRosterCommandHandler(),
		SetRoster:        c.CreateSetManualRosterCommandHandler(),
		InventoryChanged: c.CreateInventoryChangedCommandHandler(),
		ShiftStatus:      c.CreateGetShiftStatusQueryHandler(),
		Roster:           c.CreateGetRosterQueryHandler(),
		UnassignedOrders: c.CreateGetUnassignedOrdersQueryHandler(),
	}, c.dispatcher, c.loc, c.logger)
}

// CreateLock returns a redis lock when redis is configured and an
// in-process lock otherwise.
func (c *CompositionRoot) CreateLock(name string) (jobs.Lock, error) {
	if c.redis == nil {
		return redisadapter.NewLocalLock(), nil
	}
	return redisadapter.NewLock(c.redis, name, c.cfg.LockTTL)
}

// CreateJobManager builds the shift schedule and backlog jobs. The shift
// schedule job is left out when no schedule file is configured.
func (c *CompositionRoot) CreateJobManager() (*jobs.JobManager, error) {
	schedule, err := jobs.LoadSchedule(c.cfg.ShiftSchedulePath)
	if err != nil {
		return nil, err
	}

	var scheduleJob *jobs.ShiftScheduleJob
	if len(schedule) > 0 {
		lock, lockErr := c.CreateLock("shift_schedule")
		if lockErr != nil {
			return nil, lockErr
		}
		scheduleJob = jobs.NewShiftScheduleJob(
			schedule,
			c.CreateOpenShiftCommandHandler(),
			c.CreateCloseShiftCommandHandler(),
			c.dispatcher,
			lock,
			c.loc,
			c.logger,
			c.jobMetrics,
		)
	}

	backlogLock, err := c.CreateLock("backlog_assignment")
	if err != nil {
		return nil, err
	}
	backlogJob := jobs.NewBacklogAssignmentJob(
		shiftrepo.NewGormShiftRepository(c.gormDB),
		c.CreateAssignBacklogCommandHandler(),
		c.dispatcher,
		backlogLock,
		c.cfg.BacklogJobSpec,
		c.loc,
		c.logger,
		c.jobMetrics,
	)

	return jobs.NewJobManager(scheduleJob, backlogJob), nil
}

type FuncUoWFactory func() commands.UoW

func (f FuncUoWFactory) Create() commands.UoW {
	return f()
}

type FuncRosterUoWFactory func() commands.RosterUoW

func (f FuncRosterUoWFactory) Create() commands.RosterUoW {
	return f()
}
