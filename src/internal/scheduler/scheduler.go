// Package scheduler runs a job on a cron schedule with a seconds field.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/ripe-addrlist/ripe-addrlist/src/internal/log"
)

// DefaultSchedule runs once a day at 04:00.
const DefaultSchedule = "0 0 4 * * *"

var parser = cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// ValidateSpec reports whether spec is a valid six-field cron expression or descriptor.
func ValidateSpec(spec string) error {
	_, err := parser.Parse(spec)
	return err
}

// Job is the unit of work triggered by the scheduler.
type Job func(ctx context.Context) error

// Scheduler triggers a job on a cron schedule. Overlapping triggers are skipped.
type Scheduler struct {
	spec       string
	runOnStart bool
	job        Job

	mu   sync.Mutex
	cron *cron.Cron
	id   cron.EntryID
}

// New creates a scheduler. The spec is validated when Start is called.
func New(spec string, runOnStart bool, job Job) *Scheduler {
	if spec == "" {
		spec = DefaultSchedule
	}
	return &Scheduler{spec: spec, runOnStart: runOnStart, job: job}
}

// Start schedules the job and blocks until ctx is done. A job in progress is waited for
// before Start returns.
func (s *Scheduler) Start(ctx context.Context) error {
	c := cron.New(
		cron.WithParser(parser),
		cron.WithLogger(cronLogger{}),
		cron.WithChain(cron.Recover(cronLogger{}), cron.SkipIfStillRunning(cronLogger{})),
	)

	id, err := c.AddFunc(s.spec, func() { s.execute(ctx, "scheduled") })
	if err != nil {
		return fmt.Errorf("invalid schedule %q: %w", s.spec, err)
	}

	s.mu.Lock()
	s.cron = c
	s.id = id
	s.mu.Unlock()

	if s.runOnStart {
		s.execute(ctx, "initial")
	}

	c.Start()
	log.Infof("Scheduler started with schedule %q, next run at %s", s.spec, s.NextRun().Format(time.RFC3339))

	<-ctx.Done()
	log.Infof("Stopping scheduler...")
	<-c.Stop().Done()

	s.mu.Lock()
	s.cron = nil
	s.mu.Unlock()
	return nil
}

// NextRun returns the next scheduled time, or the zero time if the scheduler is not running.
func (s *Scheduler) NextRun() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cron == nil {
		return time.Time{}
	}
	return s.cron.Entry(s.id).Next
}

func (s *Scheduler) execute(ctx context.Context, trigger string) {
	if ctx.Err() != nil {
		return
	}
	log.Infof("Starting %s run", trigger)
	if err := s.job(ctx); err != nil {
		log.Errorf("%s run failed: %v", trigger, err)
	}
}

// cronLogger forwards cron's internal logging to the application logger.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	log.Debugf("cron: %s %v", msg, keysAndValues)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	log.Errorf("cron: %s: %v %v", msg, err, keysAndValues)
}
