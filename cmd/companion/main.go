// Package main implements the entry point for the companion API server,
// which tracks scraped job postings as tasks and reconciles them against
// the remote scoring service.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/jobscout/companion-api/internal/config"
	"github.com/jobscout/companion-api/internal/events"
	"github.com/jobscout/companion-api/internal/platform/logger"
	"github.com/jobscout/companion-api/internal/platform/postgres"
	"github.com/jobscout/companion-api/internal/platform/remote"
	"github.com/jobscout/companion-api/internal/service"
	"github.com/jobscout/companion-api/internal/store"
	"github.com/jobscout/companion-api/internal/task"
)

const migrationsDir = "migrations"

// application holds the wired dependencies for the running server.
type application struct {
	config      *config.Config
	logger      *slog.Logger
	db          *sql.DB
	taskStore   store.TaskStore
	taskService service.TaskService
	reconciler  *task.Reconciler
	backfiller  *task.Backfiller
}

func main() {
	app, err := initializeApp()
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	if err := app.run(); err != nil {
		app.logger.Error("Server exited with error", "error", err)
		os.Exit(1)
	}
}

// initializeApp loads configuration and wires the application components.
func initializeApp() (*application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger, err := logger.Setup(cfg.Server)
	if err != nil {
		return nil, fmt.Errorf("failed to set up logger: %w", err)
	}

	appLogger.Info("Server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"remote_base_url", cfg.Remote.BaseURL,
		"poll_interval", cfg.Poller.Interval)

	db, err := openDatabase(cfg.Database.URL)
	if err != nil {
		return nil, err
	}

	if err := runMigrations(db, appLogger); err != nil {
		return nil, err
	}

	// Every successful mutation publishes a change event; observers are
	// best-effort, so handler failures only get logged.
	notifier := events.NewInMemoryNotifier(appLogger)
	notifier.RegisterHandler(events.ChangeHandlerFunc(
		func(_ context.Context, event *events.TaskChangeEvent) error {
			appLogger.Debug("task store changed",
				"event_id", event.ID,
				"kind", event.Kind,
				"task_id", event.TaskID)
			return nil
		}))

	taskStore := store.NewNotifyingTaskStore(
		postgres.NewPostgresTaskStore(db), notifier, appLogger)

	remoteClient := remote.NewClient(cfg.Remote.BaseURL, cfg.Remote.Timeout, appLogger)

	reconciler := task.NewReconciler(taskStore, remoteClient, task.ReconcilerConfig{
		Interval:    cfg.Poller.Interval,
		Concurrency: cfg.Poller.Concurrency,
	}, appLogger)

	regenerator := task.NewRegenerator(taskStore, remoteClient, remoteClient,
		task.RegeneratorConfig{
			PollInterval: cfg.Regen.PollInterval,
			Timeout:      cfg.Regen.Timeout,
		}, appLogger)

	backfiller := task.NewBackfiller(taskStore, remoteClient, task.BackfillConfig{
		DaysBack: cfg.Backfill.DaysBack,
		Limit:    cfg.Backfill.Limit,
	}, appLogger)

	taskService := service.NewTaskService(taskStore, remoteClient, regenerator, appLogger)

	return &application{
		config:      cfg,
		logger:      appLogger,
		db:          db,
		taskStore:   taskStore,
		taskService: taskService,
		reconciler:  reconciler,
		backfiller:  backfiller,
	}, nil
}

// openDatabase connects to Postgres and verifies the connection.
func openDatabase(url string) (*sql.DB, error) {
	db, err := sql.Open("pgx", url)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// runMigrations applies pending goose migrations.
func runMigrations(db *sql.DB, appLogger *slog.Logger) error {
	goose.SetLogger(&slogGooseLogger{logger: appLogger})
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set migration dialect: %w", err)
	}
	if err := goose.Up(db, migrationsDir); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// run starts the background loops and the HTTP server, then blocks until
// shutdown.
func (app *application) run() error {
	defer func() {
		if err := app.db.Close(); err != nil {
			app.logger.Error("Failed to close database", "error", err)
		}
	}()

	app.reconciler.Start()
	defer app.reconciler.Stop()

	// One-shot repair of tasks predating the applied flag. Failures are
	// logged; the server still comes up.
	go func() {
		updated, err := app.backfiller.BackfillApplied(context.Background())
		if err != nil {
			app.logger.Error("Applied-flag backfill failed", "error", err)
			return
		}
		if updated > 0 {
			app.logger.Info("Applied-flag backfill finished", "updated", updated)
		}
	}()

	return app.startHTTPServer(app.setupRouter())
}

// startHTTPServer starts the HTTP server with graceful shutdown support.
func (app *application) startHTTPServer(router http.Handler) error {
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", app.config.Server.Port),
		Handler: router,
	}

	serverCtx, cancelServer := context.WithCancel(context.Background())
	defer cancelServer()

	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		app.logger.Info("Starting server", "port", app.config.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			app.logger.Error("Server failed", "error", err)
			cancelServer()
		}
	}()

	select {
	case <-shutdownCh:
		app.logger.Info("Shutting down server...")
	case <-serverCtx.Done():
		app.logger.Info("Server context canceled, shutting down...")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	app.logger.Info("Server shutdown completed")
	return nil
}
