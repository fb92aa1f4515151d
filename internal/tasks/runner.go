// internal/tasks/runner.go
//
// Background job runner.
// Runs one job on a fixed interval and whenever Trigger is called.
// Triggers that arrive while a run is pending coalesce into that run.
// A failed run is logged and retried on the next tick or trigger.

package tasks

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// Job is the unit of work run by a Runner.
type Job func(ctx context.Context) error

// Runner schedules a single named Job.
type Runner struct {
	name     string
	job      Job
	interval time.Duration
	kick     chan struct{}
}

// NewRunner constructs a Runner. An interval <= 0 disables the ticker, so the
// job only runs on Trigger.
func NewRunner(name string, interval time.Duration, job Job) *Runner {
	return &Runner{
		name:     name,
		job:      job,
		interval: interval,
		kick:     make(chan struct{}, 1),
	}
}

// Trigger requests a run without blocking.
func (r *Runner) Trigger() {
	select {
	case r.kick <- struct{}{}:
	default:
	}
}

// Run executes the job once immediately, then on every tick or trigger until
// ctx is cancelled.
func (r *Runner) Run(ctx context.Context) {
	var tick <-chan time.Time
	if r.interval > 0 {
		t := time.NewTicker(r.interval)
		defer t.Stop()
		tick = t.C
	}

	r.runOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-tick:
			r.runOnce(ctx)
		case <-r.kick:
			r.runOnce(ctx)
		}
	}
}

func (r *Runner) runOnce(ctx context.Context) {
	start := time.Now()
	if err := r.job(ctx); err != nil {
		log.Warn().Err(err).Str("task", r.name).Msg("task failed")
		return
	}
	log.Debug().Str("task", r.name).Dur("took", time.Since(start)).Msg("task done")
}
