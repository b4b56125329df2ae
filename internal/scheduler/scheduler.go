package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Job is one schedulable unit of background work. The returned count is
// whatever the job considers its headline number (rows updated, reports
// anonymised); it is logged and nothing else.
type Job func(ctx context.Context) (int64, error)

// JobResult is how outcomes cross the job/driver boundary: the driver logs a
// result either way and keeps dispatching, so a failing job never takes down
// the schedule (or the process hosting it).
type JobResult struct {
	Count int64
	Err   error
}

type Jobs struct {
	// BookingStatuses advances booking lifecycle statuses. Cadence: minutes
	// 0,15,30,45 of every hour (UTC), or every BookingIntervalMin minutes
	// when that is set. Also kicked off once immediately on Start so a
	// restarted or woken process catches up without waiting.
	BookingStatuses Job

	// AnonymiseReports strips personal data from old accident reports.
	// Cadence: nightly at 00:05 UTC, or every AnonIntervalMin minutes.
	AnonymiseReports Job
}

// Scheduler drives the recurring background jobs. Construct one in the
// composition root and call Start once; a second Start on the same instance
// logs and does nothing. There is no global instance.
type Scheduler struct {
	cron *cron.Cron
	log  *zap.Logger
	jobs Jobs

	bookingIntervalMin int
	anonIntervalMin    int

	// runTimeout bounds a single job execution.
	runTimeout time.Duration

	mu      sync.Mutex
	started bool
}

func New(log *zap.Logger, jobs Jobs, bookingIntervalMin, anonIntervalMin int) *Scheduler {
	cronLog := zapCronLogger{log: log}
	c := cron.New(
		cron.WithLocation(time.UTC),
		// Late or overlapping firings coalesce into the run already in
		// flight instead of queueing duplicates; panics stay inside the job.
		cron.WithChain(cron.SkipIfStillRunning(cronLog), cron.Recover(cronLog)),
	)
	return &Scheduler{
		cron:               c,
		log:                log,
		jobs:               jobs,
		bookingIntervalMin: bookingIntervalMin,
		anonIntervalMin:    anonIntervalMin,
		runTimeout:         10 * time.Minute,
	}
}

// Start registers the jobs and begins dispatching. Idempotent per instance.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		s.log.Warn("scheduler already started, ignoring")
		return
	}

	bookingSpec := bookingSpec(s.bookingIntervalMin)
	if _, err := s.cron.AddFunc(bookingSpec, func() { s.runBookingStatuses() }); err != nil {
		// Misconfiguration must not take the web server down with it.
		s.log.Error("failed to schedule booking status job", zap.Error(err))
	}

	anonSpec := anonSpec(s.anonIntervalMin)
	if _, err := s.cron.AddFunc(anonSpec, func() { s.runAnonymise() }); err != nil {
		s.log.Error("failed to schedule anonymiser job", zap.Error(err))
	}

	s.cron.Start()
	s.started = true

	// Immediate catch-up run, so a process that slept through its slots
	// converges as soon as it is back.
	go s.runBookingStatuses()

	s.log.Info("scheduler started",
		zap.String("booking_status_cadence", bookingSpec),
		zap.String("anonymise_cadence", anonSpec))
}

// Stop halts dispatching and waits for in-flight runs. Normal operation never
// calls this; process lifetime bounds the scheduler.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return
	}
	<-s.cron.Stop().Done()
	s.started = false
}

func bookingSpec(intervalMin int) string {
	if intervalMin > 0 {
		return fmt.Sprintf("@every %dm", intervalMin)
	}
	return "0,15,30,45 * * * *"
}

func anonSpec(intervalMin int) string {
	if intervalMin > 0 {
		return fmt.Sprintf("@every %dm", intervalMin)
	}
	return "5 0 * * *"
}

func (s *Scheduler) runBookingStatuses() {
	res := s.run(s.jobs.BookingStatuses)
	if res.Err != nil {
		s.log.Error("booking status job failed", zap.Error(res.Err))
		return
	}
	s.log.Info("booking status job completed", zap.Int64("awaiting_closure", res.Count))
}

func (s *Scheduler) runAnonymise() {
	res := s.run(s.jobs.AnonymiseReports)
	if res.Err != nil {
		s.log.Error("anonymiser job failed", zap.Error(res.Err))
		return
	}
	s.log.Info("anonymiser job completed", zap.Int64("reports", res.Count))
}

func (s *Scheduler) run(job Job) JobResult {
	if job == nil {
		return JobResult{}
	}
	ctx, cancel := context.WithTimeout(context.Background(), s.runTimeout)
	defer cancel()

	count, err := job(ctx)
	return JobResult{Count: count, Err: err}
}

func (s *Scheduler) entryCount() int {
	return len(s.cron.Entries())
}

// zapCronLogger adapts zap to cron's logger interface so chain decorators
// (skip/recover) report through the application log.
type zapCronLogger struct {
	log *zap.Logger
}

func (l zapCronLogger) Info(msg string, keysAndValues ...any) {
	l.log.Sugar().Infow(msg, keysAndValues...)
}

func (l zapCronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.log.Sugar().Errorw(msg, append([]any{"error", err}, keysAndValues...)...)
}
