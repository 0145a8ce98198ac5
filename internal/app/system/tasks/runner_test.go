package tasks_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dalemusser/stratasite/internal/app/system/tasks"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func stop(t *testing.T, r *tasks.Runner, within time.Duration) error {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), within)
	defer cancel()
	return r.Stop(ctx)
}

func TestRunner_RunsJobsAndServices(t *testing.T) {
	runner := tasks.New(zap.NewNop())

	var pings, reloads atomic.Int32
	runner.Register(tasks.Job{
		Name:     "content-ping",
		Interval: 40 * time.Millisecond,
		Run: func(ctx context.Context) error {
			pings.Add(1)
			return nil
		},
	})
	runner.Register(tasks.Job{
		Name:        "content-reload",
		Interval:    40 * time.Millisecond,
		SkipInitial: true,
		Run: func(ctx context.Context) error {
			reloads.Add(1)
			return nil
		},
	})

	watching := make(chan struct{})
	watchDone := make(chan struct{})
	runner.Go(tasks.Service{
		Name: "content-watch",
		Run: func(ctx context.Context) error {
			close(watching)
			<-ctx.Done()
			close(watchDone)
			return ctx.Err()
		},
	})

	runner.Start()
	<-watching
	time.Sleep(120 * time.Millisecond)

	if err := stop(t, runner, 5*time.Second); err != nil {
		t.Fatalf("Stop() = %v", err)
	}
	select {
	case <-watchDone:
	default:
		t.Error("service context was not cancelled by Stop")
	}
	if pings.Load() < 2 {
		t.Errorf("content-ping ran %d times, want at least 2", pings.Load())
	}
	if reloads.Load() < 1 {
		t.Errorf("content-reload ran %d times, want at least 1", reloads.Load())
	}
}

func TestRunner_RegisterIgnoresDisabledInterval(t *testing.T) {
	runner := tasks.New(zap.NewNop())

	var ran atomic.Bool
	runner.Register(tasks.Job{
		Name:     "content-reload",
		Interval: 0,
		Run: func(ctx context.Context) error {
			ran.Store(true)
			return nil
		},
	})
	runner.Start()
	time.Sleep(30 * time.Millisecond)
	if err := stop(t, runner, time.Second); err != nil {
		t.Fatalf("Stop() = %v", err)
	}
	if ran.Load() {
		t.Error("job with zero interval ran")
	}
	if err := runner.RunOnce(context.Background(), "content-reload"); !errors.Is(err, tasks.ErrUnknownJob) {
		t.Errorf("RunOnce(disabled) = %v, want ErrUnknownJob", err)
	}
}

func TestRunner_StopTimesOut(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	runner := tasks.New(zap.New(core))

	inRun := make(chan struct{})
	release := make(chan struct{})
	defer close(release)
	runner.Register(tasks.Job{
		Name:     "stuck-reload",
		Interval: time.Hour,
		Run: func(ctx context.Context) error {
			close(inRun)
			<-release // ignores ctx
			return nil
		},
	})

	runner.Start()
	<-inRun

	err := stop(t, runner, 50*time.Millisecond)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Stop() = %v, want DeadlineExceeded", err)
	}
	entries := logs.FilterMessage("background task runner shutdown timed out").All()
	if len(entries) != 1 {
		t.Fatalf("timeout warnings = %d, want 1", len(entries))
	}
	if got := entries[0].ContextMap()["still_running"]; got == nil {
		t.Error("still_running field missing")
	}
}

func TestRunner_RunOnce(t *testing.T) {
	runner := tasks.New(zap.NewNop())

	var runs atomic.Int32
	runner.Register(tasks.Job{
		Name:     "content-ping",
		Interval: time.Hour,
		Run: func(ctx context.Context) error {
			runs.Add(1)
			return nil
		},
	})

	if err := runner.RunOnce(context.Background(), "content-ping"); err != nil {
		t.Fatalf("RunOnce() = %v", err)
	}
	if runs.Load() != 1 {
		t.Errorf("runs = %d, want 1", runs.Load())
	}
	if err := runner.RunOnce(context.Background(), "missing"); !errors.Is(err, tasks.ErrUnknownJob) {
		t.Errorf("RunOnce(missing) = %v, want ErrUnknownJob", err)
	}
}

func TestRunner_JobTimeout(t *testing.T) {
	runner := tasks.New(zap.NewNop())

	deadline := make(chan bool, 1)
	runner.Register(tasks.Job{
		Name:     "bounded-ping",
		Interval: time.Hour,
		Timeout:  20 * time.Millisecond,
		Run: func(ctx context.Context) error {
			_, ok := ctx.Deadline()
			<-ctx.Done()
			deadline <- ok
			return ctx.Err()
		},
	})

	runner.Start()
	select {
	case ok := <-deadline:
		if !ok {
			t.Error("job context has no deadline")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("job was not cancelled by its timeout")
	}
	if err := stop(t, runner, 5*time.Second); err != nil {
		t.Errorf("Stop() = %v", err)
	}
}

func TestRunner_ServiceFailureIsLogged(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	runner := tasks.New(zap.New(core))

	runner.Go(tasks.Service{
		Name: "content-watch",
		Run: func(ctx context.Context) error {
			return errors.New("too many open files")
		},
	})
	runner.Start()
	time.Sleep(30 * time.Millisecond)
	if err := stop(t, runner, time.Second); err != nil {
		t.Fatalf("Stop() = %v", err)
	}

	if n := logs.FilterMessage("service failed").Len(); n != 1 {
		t.Errorf("service failed logs = %d, want 1", n)
	}
}
