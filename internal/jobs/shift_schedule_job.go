package jobs

import (
	"context"
	"errors"
	"time"

	"orderflow/internal/core/application/usecases/commands"
	"orderflow/internal/core/domain/model/event"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/shift"
	"orderflow/internal/core/ports"
	"orderflow/internal/pkg/logger"
	"orderflow/internal/pkg/metrics"

	"github.com/robfig/cron/v3"
)

const shiftScheduleJobName = "shift_schedule"

type shiftOpener interface {
	Handle(ctx context.Context, cmd commands.OpenShiftCommand) (commands.OpenShiftResult, error)
}

type shiftCloser interface {
	Handle(ctx context.Context, cmd commands.CloseShiftCommand) (commands.CloseShiftResult, error)
}

// ShiftScheduleJob opens and closes outlet shifts at their configured times.
// Every minute it opens outlets inside their [open, close) window and closes
// outlets past their close time. Precondition errors mean another replica or
// an operator already acted and are ignored.
type ShiftScheduleJob struct {
	schedule []OutletSchedule
	opener   shiftOpener
	closer   shiftCloser
	sink     ports.EventSink
	lock     Lock
	loc      *time.Location
	clock    func() time.Time
	cron     *cron.Cron
	logger   *logger.Logger
	metrics  *metrics.JobMetrics
}

func NewShiftScheduleJob(
	schedule []OutletSchedule,
	opener shiftOpener,
	closer shiftCloser,
	sink ports.EventSink,
	lock Lock,
	loc *time.Location,
	log *logger.Logger,
	m *metrics.JobMetrics,
) *ShiftScheduleJob {
	if loc == nil {
		loc = time.UTC
	}
	if log == nil {
		log = logger.Nop()
	}
	return &ShiftScheduleJob{
		schedule: schedule,
		opener:   opener,
		closer:   closer,
		sink:     sink,
		lock:     lock,
		loc:      loc,
		clock:    time.Now,
		cron:     cron.New(cron.WithSeconds()),
		logger:   log,
		metrics:  m,
	}
}

// Start registers the job to run at second zero of every minute.
func (j *ShiftScheduleJob) Start() error {
	_, err := j.cron.AddFunc("0 * * * * *", func() {
		ctx := j.logger.WithField(context.Background(), "job", shiftScheduleJobName)
		start := time.Now()
		err := j.tick(ctx, j.clock().In(j.loc))
		j.metrics.Observe(shiftScheduleJobName, time.Since(start), err)
		if err != nil {
			j.logger.Error(ctx, "shift schedule job failed", err)
		}
	})
	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.Info(context.Background(), "shift schedule job started (running every minute)")
	return nil
}

func (j *ShiftScheduleJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.Info(context.Background(), "shift schedule job stopped")
}

func (j *ShiftScheduleJob) tick(ctx context.Context, now time.Time) error {
	if len(j.schedule) == 0 {
		return nil
	}
	if j.lock != nil {
		ok, err := j.lock.Acquire(ctx)
		if err != nil {
			return err
		}
		if !ok {
			j.logger.Debug(ctx, "another replica holds the shift schedule lock; skipping tick")
			return nil
		}
		defer func() {
			if relErr := j.lock.Release(ctx); relErr != nil {
				j.logger.Error(ctx, "failed to release shift schedule lock", relErr)
			}
		}()
	}

	today := kernel.DateOf(now, j.loc)
	var errList []error
	for _, entry := range j.schedule {
		outletCtx := j.logger.WithField(ctx, "outlet_id", entry.OutletID.String())
		var err error
		switch {
		case now.Before(entry.OpenAt(today, j.loc)):
			continue
		case now.Before(entry.CloseAt(today, j.loc)):
			err = j.open(outletCtx, entry.OutletID)
		default:
			err = j.close(outletCtx, entry.OutletID)
		}
		if err != nil && !shift.IsPrecondition(err) {
			errList = append(errList, err)
		}
	}
	return errors.Join(errList...)
}

func (j *ShiftScheduleJob) open(ctx context.Context, outletID kernel.UUID) error {
	cmd, err := commands.NewOpenShiftCommand(outletID, nil)
	if err != nil {
		return err
	}
	res, err := j.opener.Handle(ctx, cmd)
	if err != nil {
		return err
	}
	j.logger.Info(j.logger.WithFields(ctx, map[string]any{
		"activated": res.Activated,
		"promoted":  res.Promoted,
	}), "scheduled shift open")
	j.dispatch(ctx, res.Events)
	return nil
}

func (j *ShiftScheduleJob) close(ctx context.Context, outletID kernel.UUID) error {
	cmd, err := commands.NewCloseShiftCommand(outletID, nil)
	if err != nil {
		return err
	}
	res, err := j.closer.Handle(ctx, cmd)
	if err != nil {
		return err
	}
	j.logger.Info(j.logger.WithFields(ctx, map[string]any{
		"changed":   res.Resets.Changed(),
		"untouched": res.Resets.Untouched,
		"failed":    res.Resets.Failed,
	}), "scheduled shift close")
	j.dispatch(ctx, res.Events)
	return nil
}

func (j *ShiftScheduleJob) dispatch(ctx context.Context, events []event.Event) {
	if j.sink != nil {
		j.sink.Dispatch(ctx, events)
	}
}
