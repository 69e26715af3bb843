// Package jobs provides scheduled background tasks for the order engine.
//
// This package implements cron-based jobs using github.com/robfig/cron/v3.
//
// # Available Jobs
//
// 1. ShiftScheduleJob - Runs every minute; opens and closes outlet shifts at the
// times listed in the YAML schedule file (see LoadSchedule)
// 2. BacklogAssignmentJob - Sweeps today's unassigned orders of every open outlet
// (default every five minutes)
//
// # Usage
//
//	schedule, err := jobs.LoadSchedule(cfg.ShiftSchedulePath)
//	...
//	jobManager := jobs.NewJobManager(
//		jobs.NewShiftScheduleJob(schedule, openHandler, closeHandler, dispatcher, lock, loc, log, m),
//		jobs.NewBacklogAssignmentJob(shiftRepo, backlogHandler, dispatcher, lock, spec, loc, log, m),
//	)
//	if err := jobManager.StartAll(); err != nil {
//		return err
//	}
//	defer jobManager.StopAll()
//
// # Coordination
//
// Each tick acquires a Lock before acting. With several replicas the lock is
// redis-backed so only one replica opens, closes or sweeps at a time.
//
// # Error Handling
//
// - Shift precondition errors (already open, not open, already closed) are expected and ignored
// - Per-order failures inside a sweep or reset are logged by the handlers and never abort a tick
// - Failed job starts will stop any already running jobs
package jobs
