package jobs

import (
	"context"
	"errors"
	"time"

	"orderflow/internal/core/application/usecases/commands"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/shift"
	"orderflow/internal/core/ports"
	"orderflow/internal/pkg/logger"
	"orderflow/internal/pkg/metrics"

	"github.com/robfig/cron/v3"
)

const (
	backlogJobName     = "backlog_assignment"
	DefaultBacklogSpec = "0 */5 * * * *"
)

type backlogAssigner interface {
	Handle(ctx context.Context, cmd commands.AssignBacklogCommand) (commands.BacklogResult, error)
}

type openShiftLister interface {
	ListOpen(ctx context.Context, date kernel.Date) ([]*shift.Shift, error)
}

// BacklogAssignmentJob sweeps today's unassigned orders of every outlet whose
// shift is open.
type BacklogAssignmentJob struct {
	shifts   openShiftLister
	assigner backlogAssigner
	sink     ports.EventSink
	lock     Lock
	spec     string
	loc      *time.Location
	clock    func() time.Time
	cron     *cron.Cron
	logger   *logger.Logger
	metrics  *metrics.JobMetrics
}

// NewBacklogAssignmentJob builds the sweep job. spec is a six-field cron
// expression (seconds first) or a descriptor such as "@every 2m".
func NewBacklogAssignmentJob(
	shifts openShiftLister,
	assigner backlogAssigner,
	sink ports.EventSink,
	lock Lock,
	spec string,
	loc *time.Location,
	log *logger.Logger,
	m *metrics.JobMetrics,
) *BacklogAssignmentJob {
	if spec == "" {
		spec = DefaultBacklogSpec
	}
	if loc == nil {
		loc = time.UTC
	}
	if log == nil {
		log = logger.Nop()
	}
	return &BacklogAssignmentJob{
		shifts:   shifts,
		assigner: assigner,
		sink:     sink,
		lock:     lock,
		spec:     spec,
		loc:      loc,
		clock:    time.Now,
		cron:     cron.New(cron.WithSeconds()),
		logger:   log,
		metrics:  m,
	}
}

func (j *BacklogAssignmentJob) Start() error {
	_, err := j.cron.AddFunc(j.spec, func() {
		ctx := j.logger.WithField(context.Background(), "job", backlogJobName)
		start := time.Now()
		err := j.tick(ctx, j.clock().In(j.loc))
		j.metrics.Observe(backlogJobName, time.Since(start), err)
		if err != nil {
			j.logger.Error(ctx, "backlog assignment job failed", err)
		}
	})
	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.Info(j.logger.WithField(context.Background(), "spec", j.spec), "backlog assignment job started")
	return nil
}

func (j *BacklogAssignmentJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.Info(context.Background(), "backlog assignment job stopped")
}

func (j *BacklogAssignmentJob) tick(ctx context.Context, now time.Time) error {
	if j.lock != nil {
		ok, err := j.lock.Acquire(ctx)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		defer func() {
			if relErr := j.lock.Release(ctx); relErr != nil {
				j.logger.Error(ctx, "failed to release backlog lock", relErr)
			}
		}()
	}

	today := kernel.DateOf(now, j.loc)
	open, err := j.shifts.ListOpen(ctx, today)
	if err != nil {
		return err
	}

	var errList []error
	for _, s := range open {
		cmd, cmdErr := commands.NewAssignBacklogCommand(s.OutletID(), today.Start(j.loc), now)
		if cmdErr != nil {
			errList = append(errList, cmdErr)
			continue
		}
		res, runErr := j.assigner.Handle(ctx, cmd)
		if runErr != nil {
			errList = append(errList, runErr)
			continue
		}
		if res.Err != nil {
			// per-order failures are already logged by the sweep
			j.logger.Warn(j.logger.WithField(ctx, "outlet_id", s.OutletID().String()),
				"backlog sweep finished with failures")
		}
		if j.sink != nil {
			j.sink.Dispatch(ctx, res.Events)
		}
	}
	return errors.Join(errList...)
}
