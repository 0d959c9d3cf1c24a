package app

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/vk/spvbatch/internal/ctxlog"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	ctx        context.Context
	outW       io.Writer
	logger     *slog.Logger
	config     *Config
	httpServer *http.Server
}

// NewApp is the constructor for the main application. It returns an App
// with its own isolated logger; nothing is touched on disk until Run.
func NewApp(outW io.Writer, cfg *Config) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	logger.Debug("Logger configured successfully.")

	return &App{
		ctx:    ctxlog.WithLogger(context.Background(), logger),
		outW:   outW,
		logger: logger,
		config: cfg,
	}
}

// Config returns the configuration the App was built with.
func (app *App) Config() *Config {
	return app.config
}
