// internal/app/system/tasks/jobs.go
package tasks

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Reloader re-reads a content source from its backing store.
type Reloader interface {
	Reload() error
	Len() int
}

// Watcher reloads a content source on change until ctx is done.
type Watcher interface {
	Watch(ctx context.Context) error
}

// Pinger checks that a content source is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
	SourceName() string
}

// ContentReloadJob creates a job that periodically re-reads a file-backed
// content source, picking up edits made without the file watcher.
func ContentReloadJob(src Reloader, interval time.Duration, logger *zap.Logger) Job {
	return Job{
		Name:        "content-reload",
		Interval:    interval,
		SkipInitial: true,
		Run: func(ctx context.Context) error {
			before := src.Len()
			if err := src.Reload(); err != nil {
				return err
			}
			if after := src.Len(); after != before {
				logger.Info("content reloaded",
					zap.Int("documents_before", before),
					zap.Int("documents", after))
			}
			return nil
		},
	}
}

// ContentWatchService creates a service that keeps a file-backed content
// source in sync with its directory.
func ContentWatchService(src Watcher, logger *zap.Logger) Service {
	return Service{
		Name: "content-watch",
		Run: func(ctx context.Context) error {
			logger.Info("watching content directory for changes")
			err := src.Watch(ctx)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
}

// ContentProbe records the result of the most recent source ping so that
// health endpoints can report it without a round trip of their own.
type ContentProbe struct {
	healthy atomic.Bool
	checked atomic.Int64
}

// Healthy reports the last ping result and when it ran. A probe that
// has never run reports healthy with a zero time.
func (p *ContentProbe) Healthy() (bool, time.Time) {
	at := p.checked.Load()
	if at == 0 {
		return true, time.Time{}
	}
	return p.healthy.Load(), time.Unix(0, at)
}

// Record stores the outcome of a ping made at at.
func (p *ContentProbe) Record(healthy bool, at time.Time) {
	p.healthy.Store(healthy)
	p.checked.Store(at.UnixNano())
}

// ContentPingJob creates a job that pings the content source and logs
// transitions between reachable and unreachable.
func ContentPingJob(src Pinger, probe *ContentProbe, interval, timeout time.Duration, logger *zap.Logger) Job {
	return Job{
		Name:     "content-ping",
		Interval: interval,
		Timeout:  timeout,
		Run: func(ctx context.Context) error {
			err := src.Ping(ctx)
			if errors.Is(ctx.Err(), context.Canceled) {
				return ctx.Err()
			}
			wasHealthy, _ := probe.Healthy()
			probe.Record(err == nil, time.Now())

			switch {
			case err != nil && wasHealthy:
				logger.Warn("content source unreachable",
					zap.String("source", src.SourceName()),
					zap.Error(err))
			case err == nil && !wasHealthy:
				logger.Info("content source reachable again",
					zap.String("source", src.SourceName()))
			}
			return nil
		},
	}
}
