package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/vk/spvbatch/internal/ctxlog"
)

// healthHandler answers liveness probes while a batch is running.
func (app *App) healthHandler(w http.ResponseWriter, r *http.Request) {
	logger := ctxlog.FromContext(app.ctx)
	logger.Debug("Health check endpoint hit.", "remote_addr", r.RemoteAddr, "path", r.URL.Path)
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "OK")
}

// healthCheckServer initializes and runs the health check HTTP server.
func (app *App) healthCheckServer() {
	logger := ctxlog.FromContext(app.ctx)
	logger.Debug("Configuring health check server.")

	mux := http.NewServeMux()
	mux.HandleFunc("/health", app.healthHandler)

	addr := fmt.Sprintf(":%d", app.config.HealthcheckPort)
	app.httpServer = &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	go func() {
		logger.Info("Health check server starting", "address", fmt.Sprintf("http://localhost%s/health", addr))
		if err := app.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Health check server failed unexpectedly", "error", err)
		}
	}()
}

func (app *App) closeHealthCheckServer() error {
	logger := ctxlog.FromContext(app.ctx)

	if app.httpServer == nil {
		logger.Debug("Health check server was not running.")
		return nil
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(app.ctx), 5*time.Second)
	defer cancel()

	logger.Debug("Shutting down health check server...")
	if err := app.httpServer.Shutdown(ctx); err != nil {
		logger.Error("Health check server shutdown failed", "error", err)
		return err
	}
	return nil
}
