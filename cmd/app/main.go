// Command app runs the optical shop admin client headless: it restores the
// session, keeps the ad coordinator alive and follows host lifecycle
// signals until it is asked to stop.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/optica/admin/internal/bootstrap"
	"github.com/optica/admin/internal/infrastructure/config"
	"github.com/optica/admin/internal/infrastructure/logger"
	"go.uber.org/zap"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.FromConfig(cfg.App, cfg.Log)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer logger.Sync(log)

	log.Info("Starting optica admin",
		zap.String("api", cfg.API.BaseURL),
		zap.String("store", cfg.Store.Driver),
		zap.Bool("telemetry", cfg.Telemetry.Enabled),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx = logger.WithContext(ctx, log)

	app, err := bootstrap.New(ctx, cfg, log)
	if err != nil {
		log.Fatal("Failed to assemble app", zap.Error(err))
	}

	loggedIn := app.Start(ctx)
	log.Info("App started", zap.Bool("logged_in", loggedIn))

	lifecycle := make(chan os.Signal, 1)
	signal.Notify(lifecycle, syscall.SIGUSR1, syscall.SIGUSR2)
	defer signal.Stop(lifecycle)

	for running := true; running; {
		select {
		case <-ctx.Done():
			running = false
		case sig := <-lifecycle:
			// SIGUSR1 brings the app to the foreground, SIGUSR2 sends it away
			foreground := sig == syscall.SIGUSR1
			log.Info("Lifecycle signal", zap.String("signal", sig.String()), zap.Bool("foreground", foreground))
			app.SetForeground(foreground)
		}
	}

	log.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := app.Close(shutdownCtx); err != nil {
		log.Error("Error during shutdown", zap.Error(err))
	}
	log.Info("Stopped")
}
