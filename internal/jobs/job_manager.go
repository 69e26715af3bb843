package jobs

import (
	"fmt"
)

// JobManager coordinates all scheduled jobs in the application.
// Provides a unified interface to start and stop all background jobs.
type JobManager struct {
	shiftScheduleJob *ShiftScheduleJob
	backlogJob       *BacklogAssignmentJob
}

// NewJobManager takes already built jobs. A nil job is not scheduled.
func NewJobManager(shiftScheduleJob *ShiftScheduleJob, backlogJob *BacklogAssignmentJob) *JobManager {
	return &JobManager{
		shiftScheduleJob: shiftScheduleJob,
		backlogJob:       backlogJob,
	}
}

// StartAll starts all scheduled jobs.
// Returns an error if any job fails to start.
func (jm *JobManager) StartAll() error {
	if jm.shiftScheduleJob != nil {
		if err := jm.shiftScheduleJob.Start(); err != nil {
			return fmt.Errorf("failed to start shift schedule job: %w", err)
		}
	}

	if jm.backlogJob != nil {
		if err := jm.backlogJob.Start(); err != nil {
			// Stop already started jobs if this one fails
			if jm.shiftScheduleJob != nil {
				jm.shiftScheduleJob.Stop()
			}
			return fmt.Errorf("failed to start backlog assignment job: %w", err)
		}
	}

	return nil
}

// StopAll stops all scheduled jobs and waits for running ticks to finish.
func (jm *JobManager) StopAll() {
	if jm.backlogJob != nil {
		jm.backlogJob.Stop()
	}
	if jm.shiftScheduleJob != nil {
		jm.shiftScheduleJob.Stop()
	}
}
