// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/stratasite/internal/app/resources"
	"github.com/dalemusser/stratasite/internal/app/system/tasks"
	"github.com/dalemusser/stratasite/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Startup runs once after the content source is ready, but before the HTTP
// handler is built and requests are served.
//
// It loads the shared templates, applies the configured timeouts, and starts
// the background jobs: the content ping that feeds readiness, and for the
// files source the periodic reload and the file watcher.
//
// Returning a non-nil error will abort startup and prevent the server from
// starting.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	resources.LoadSharedTemplates()

	timeouts.Configure(timeouts.Config{
		Short:  appCfg.TimeoutShort,
		Medium: appCfg.TimeoutMedium,
	})

	startTaskRunner(appCfg, deps, logger)

	return nil
}

var (
	// taskRunner is the global task runner instance, used for graceful shutdown.
	taskRunner *tasks.Runner

	// contentProbe holds the latest background ping; readiness reports it.
	contentProbe = &tasks.ContentProbe{}
)

// startTaskRunner initializes and starts the background task runner.
func startTaskRunner(appCfg AppConfig, deps DBDeps, logger *zap.Logger) {
	taskRunner = tasks.New(logger)

	if appCfg.ContentPingInterval > 0 {
		taskRunner.Register(tasks.ContentPingJob(deps.Content, contentProbe,
			appCfg.ContentPingInterval, timeouts.Ping(), logger))
	}
	if deps.Files != nil && appCfg.ContentReloadInterval > 0 {
		job := tasks.ContentReloadJob(deps.Files, appCfg.ContentReloadInterval, logger)
		job.Timeout = timeouts.Long()
		taskRunner.Register(job)
	}

	if deps.Files != nil && appCfg.ContentWatch {
		taskRunner.Go(tasks.ContentWatchService(deps.Files, logger))
	}

	taskRunner.Start()
}
