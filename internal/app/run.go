package app

import (
	"context"
	"fmt"
	"os"

	"github.com/vk/spvbatch/internal/batch"
	"github.com/vk/spvbatch/internal/ctxlog"
	"github.com/vk/spvbatch/internal/notify"
)

// Run compiles the configured shader directory. The returned error keeps
// the underlying compiler error in its chain.
func (app *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, app.logger)
	app.ctx = ctx
	app.logger.Debug("App.Run method started.", "config", *app.config)

	if app.config.HealthcheckPort > 0 {
		app.healthCheckServer()
		defer app.closeHealthCheckServer()
	} else {
		app.logger.Debug("Health check server not started: disabled")
	}

	if dir := app.config.OutputDir; dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	exts := app.extensions()
	cfg := batch.Config{
		ShaderDir:  app.config.ShaderDir,
		Extensions: exts,
		Compiler:   app.compilers(exts),
		Jobs:       app.config.Jobs,
	}

	var publisher *notify.Publisher
	if app.config.NotifyURL != "" {
		p, err := notify.Dial(ctx, notify.Options{
			URL:                app.config.NotifyURL,
			Namespace:          app.config.NotifyNamespace,
			InsecureSkipVerify: app.config.NotifyInsecure,
			ConnectTimeout:     app.config.NotifyTimeout,
		})
		if err != nil {
			return fmt.Errorf("failed to connect notifier: %w", err)
		}
		defer p.Close()
		publisher = p
		cfg.Observers = append(cfg.Observers, p)
	}

	report, err := batch.CompileAll(ctx, cfg)
	if publisher != nil {
		publisher.Done(report, err)
	}
	if err != nil {
		return fmt.Errorf("shader batch failed: %w", err)
	}

	app.logger.Debug("App.Run method finished.", "compiled", len(report.Results))
	return nil
}
