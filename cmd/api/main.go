package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"lexiapi/internal/config"
	"lexiapi/internal/database"
	"lexiapi/internal/database/migration"
	"lexiapi/internal/logging"
	"lexiapi/internal/otel"
	"lexiapi/internal/repository/postgres"
	"lexiapi/internal/resilience"
	"lexiapi/internal/service"
)

const shutdownTimeout = 10 * time.Second

// @title Lexi API
// @version 1.0
// @description Legal document upload, analysis and question answering.
// @BasePath /
func main() {
	if err := run(); err != nil {
		slog.Error("server_exited", slog.Any("error", err))
		os.Exit(1)
	}
}

func run() error {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()
	log := logging.New(os.Stdout, cfg.LogLevel, cfg.Location())
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := otel.Init(ctx, log)
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			log.Error("tracing_shutdown_failed", slog.Any("error", err))
		}
	}()

	db, err := database.NewPostgres(ctx, cfg.Database, log)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	if err := migration.EnsureMigrated(ctx, db, log, cfg.Database.Host); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	store, err := newStorage(ctx, cfg.Storage)
	if err != nil {
		return fmt.Errorf("init blob storage: %w", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	guard, err := resilience.NewGuard(resilience.FromAppConfig(cfg.Collaborators), log, reg)
	if err != nil {
		return fmt.Errorf("init collaborator guard: %w", err)
	}

	collab, err := newCollaborators(ctx, cfg, guard)
	if err != nil {
		return fmt.Errorf("init collaborators: %w", err)
	}
	defer collab.Close()

	docRepo := postgres.NewDocumentPostgres(db)
	docSvc := service.NewDocumentService(store, docRepo, collab.extractor, collab.generator, log)

	app, err := newApp(cfg, log, reg, db, docSvc)
	if err != nil {
		return err
	}

	addr := listenAddr(cfg)
	listenErr := make(chan error, 1)
	go func() {
		log.Info("server_starting",
			slog.String("addr", addr),
			slog.String("storage_backend", cfg.Storage.Backend),
			slog.String("extractor", cfg.Extractor.Provider),
			slog.String("generator", cfg.Generator.Provider),
		)
		listenErr <- app.Listen(addr)
	}()

	select {
	case err := <-listenErr:
		if err != nil {
			return fmt.Errorf("start server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("server_shutting_down")
	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("shutdown server: %w", err)
	}
	return nil
}
