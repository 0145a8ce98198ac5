// internal/app/system/tasks/runner.go
package tasks

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dalemusser/stratasite/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// ErrUnknownJob is returned by RunOnce for a name no job was registered under.
var ErrUnknownJob = errors.New("unknown job")

// Job is a task run on a fixed interval.
type Job struct {
	Name     string
	Interval time.Duration
	// Timeout bounds each run; zero means the run is bounded only by Stop.
	Timeout time.Duration
	// SkipInitial waits one interval before the first run instead of
	// running immediately on Start.
	SkipInitial bool
	Run         func(ctx context.Context) error
}

// Service is a long-running task, such as a file watcher, that blocks
// until its context is cancelled.
type Service struct {
	Name string
	Run  func(ctx context.Context) error
}

// Runner owns the background jobs and services of the site. All of them
// share one context cancelled by Stop.
type Runner struct {
	logger   *zap.Logger
	jobs     []Job
	services []Service
	wg       sync.WaitGroup
	cancel   context.CancelFunc
	running  atomic.Int32
	active   sync.Map // name -> struct{} while a job run or service is live
}

// New creates a new task runner.
func New(logger *zap.Logger) *Runner {
	return &Runner{logger: logger}
}

// Register adds an interval job. Jobs with a non-positive interval are
// ignored.
func (r *Runner) Register(job Job) {
	if job.Interval <= 0 {
		r.logger.Debug("job disabled", zap.String("job", job.Name))
		return
	}
	r.jobs = append(r.jobs, job)
}

// Go adds a long-running service started alongside the jobs.
func (r *Runner) Go(svc Service) {
	r.services = append(r.services, svc)
}

// Start launches every registered job and service.
// Call Stop to shut them down.
func (r *Runner) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	r.cancel = cancel

	for _, job := range r.jobs {
		r.wg.Add(1)
		go r.runJob(ctx, job)
	}
	for _, svc := range r.services {
		r.wg.Add(1)
		go r.runService(ctx, svc)
	}

	r.logger.Info("background task runner started",
		zap.Int("job_count", len(r.jobs)),
		zap.Int("service_count", len(r.services)))
}

// Stop cancels all jobs and services and waits for them within ctx's
// deadline. If ctx ends first it returns ctx.Err().
func (r *Runner) Stop(ctx context.Context) error {
	if r.cancel != nil {
		r.cancel()
	}

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		r.logger.Info("background task runner stopped gracefully")
		return nil
	case <-ctx.Done():
		var stillRunning []string
		r.active.Range(func(key, _ any) bool {
			stillRunning = append(stillRunning, key.(string))
			return true
		})
		r.logger.Warn("background task runner shutdown timed out",
			zap.Strings("still_running", stillRunning),
			zap.Int32("running_count", r.running.Load()))
		return ctx.Err()
	}
}

func (r *Runner) track(name string) func() {
	r.running.Add(1)
	r.active.Store(name, struct{}{})
	return func() {
		r.running.Add(-1)
		r.active.Delete(name)
	}
}

func (r *Runner) runService(ctx context.Context, svc Service) {
	defer r.wg.Done()
	defer r.track(svc.Name)()

	r.logger.Debug("service starting", zap.String("service", svc.Name))
	err := svc.Run(ctx)
	switch {
	case ctx.Err() != nil:
		r.logger.Debug("service stopped", zap.String("service", svc.Name))
	case err != nil:
		r.logger.Error("service failed", zap.String("service", svc.Name), zap.Error(err))
	default:
		r.logger.Warn("service exited early", zap.String("service", svc.Name))
	}
}

func (r *Runner) runJob(ctx context.Context, job Job) {
	defer r.wg.Done()

	if !job.SkipInitial {
		r.executeJob(ctx, job)
	}

	ticker := time.NewTicker(job.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Debug("job stopped", zap.String("job", job.Name))
			return
		case <-ticker.C:
			r.executeJob(ctx, job)
		}
	}
}

func (r *Runner) executeJob(ctx context.Context, job Job) {
	defer r.track(job.Name)()

	start := time.Now()
	runCtx := ctx
	if job.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = timeouts.WithTimeout(ctx, job.Timeout, r.logger, job.Name)
		defer cancel()
	}

	err := job.Run(runCtx)
	switch {
	case err == nil:
		r.logger.Debug("job completed",
			zap.String("job", job.Name),
			zap.Duration("duration", time.Since(start)))
	case ctx.Err() != nil:
		r.logger.Debug("job cancelled during shutdown", zap.String("job", job.Name))
	default:
		r.logger.Error("job failed",
			zap.String("job", job.Name),
			zap.Duration("duration", time.Since(start)),
			zap.Error(err))
	}
}

// RunOnce executes the named job immediately, outside its schedule.
func (r *Runner) RunOnce(ctx context.Context, name string) error {
	for _, job := range r.jobs {
		if job.Name == name {
			return job.Run(ctx)
		}
	}
	return fmt.Errorf("%w: %s", ErrUnknownJob, name)
}
