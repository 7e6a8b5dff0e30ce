package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"onboarding-assistant-be/internal/bootstrap"
	"onboarding-assistant-be/internal/config"
	"onboarding-assistant-be/internal/pkg/logger"
	"onboarding-assistant-be/internal/server"
	"onboarding-assistant-be/internal/tracer"
)

func main() {
	// 1. Load Configuration
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 2. Logger & Tracer
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction())
	defer sysLogger.Sync()

	shutdownTracer := tracer.InitTracer(cfg.Tracing, sysLogger)
	defer shutdownTracer(context.Background())

	// 3. Bootstrap Dependencies (Container)
	container, err := bootstrap.NewContainer(ctx, cfg, sysLogger)
	if err != nil {
		sysLogger.Error("main", "Failed to initialize application", map[string]interface{}{"error": err})
		log.Fatalf("Startup error: %v", err)
	}

	// 4. Initialize & Run Server
	srv := server.New(cfg, container)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Run()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			sysLogger.Error("main", "Server stopped", map[string]interface{}{"error": err})
		}
	case <-ctx.Done():
		sysLogger.Info("main", "Shutting down", nil)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			sysLogger.Error("main", "Graceful shutdown failed", map[string]interface{}{"error": err})
		}
	}
}
