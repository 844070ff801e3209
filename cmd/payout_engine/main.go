package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/clearvest/payout_engine/internal/core/services"
	"github.com/clearvest/payout_engine/internal/handlers"
	"github.com/clearvest/payout_engine/internal/middleware"
	"github.com/clearvest/payout_engine/internal/platform/bankfeed"
	"github.com/clearvest/payout_engine/internal/platform/config"
	"github.com/clearvest/payout_engine/internal/platform/notify"
	"github.com/clearvest/payout_engine/internal/queue"
	"github.com/clearvest/payout_engine/internal/repositories/database/pgsql"
	"github.com/clearvest/payout_engine/internal/scheduler"
	"github.com/clearvest/payout_engine/pkg/database"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	migrate "github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Initialize database connection pool (for application use)
	dbPool, err := database.NewPgxPool(context.Background(), cfg.DatabaseURL)
	if err != nil {
		logger.Error("Failed to initialize database pool", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer dbPool.Close()
	logger.Info("Database connection pool established.")

	if err := runMigrations(cfg.DatabaseURL, logger); err != nil {
		logger.Error("Failed to apply migrations", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Repositories and external collaborators
	repos := pgsql.NewRepositoryProvider(dbPool)
	fetcher := bankfeed.New(cfg.BankAPIBaseURL, cfg.BankAPIKey)
	notifier := notify.NewLogNotifier(logger)

	// Queue client first; the dividend engine enqueues through it, and its
	// dispatcher needs the finished service container.
	queueClient := queue.NewClient(repos.JobRepo, queue.DefaultPolicies(), queue.Options{
		PollInterval:   cfg.QueuePollInterval,
		StallTimeout:   cfg.QueueStallTimeout,
		StallMax:       cfg.QueueStallMax,
		ReclaimEvery:   cfg.QueueReclaimEvery,
		HeartbeatEvery: cfg.QueueHeartbeatEvery,
	}, logger)

	container := services.NewServiceContainer(cfg, repos, fetcher, notifier, queueClient)
	queueClient.SetDispatcher(queue.NewServiceDispatcher(container))

	workerCtx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()
	if err := queueClient.Start(middleware.WithLogger(workerCtx, logger)); err != nil {
		logger.Error("Failed to start queue workers", slog.String("error", err.Error()))
		os.Exit(1)
	}

	sched := scheduler.New(cfg, container, repos.LockRepo, logger)
	if err := sched.Start(); err != nil {
		logger.Error("Failed to start scheduler", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.StructuredLoggingMiddleware(logger), gin.Recovery(), cors.Default())

	if err := r.SetTrustedProxies(nil); err != nil {
		logger.Error("Failed to set trusted proxies", slog.String("error", err.Error()))
		os.Exit(1)
	}

	handlers.RegisterRoutes(r, cfg, container)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		logger.Info("Server starting", slog.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed to run", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	// Graceful shutdown: stop accepting HTTP, stop cron, drain queue workers.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", slog.String("error", err.Error()))
	}
	sched.Stop()
	stopWorkers()
	queueClient.Close()
	logger.Info("Shutdown complete")
}

// runMigrations applies all pending schema migrations using a temporary
// database/sql connection compatible with the pgx pool.
func runMigrations(databaseURL string, logger *slog.Logger) error {
	logger.Info("Running database migrations...")

	migrationDB, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := migrationDB.Close(); cerr != nil {
			logger.Error("Error closing migration DB connection", slog.String("error", cerr.Error()))
		}
	}()
	if err := migrationDB.Ping(); err != nil {
		return err
	}

	driver, err := postgres.WithInstance(migrationDB, &postgres.Config{})
	if err != nil {
		return err
	}

	m, err := migrate.NewWithDatabaseInstance("file://migrations", "postgres", driver)
	if err != nil {
		return err
	}

	upErr := m.Up()
	if upErr != nil && upErr != migrate.ErrNoChange {
		return upErr
	}

	sourceErr, dbErr := m.Close()
	if sourceErr != nil {
		return sourceErr
	}
	if dbErr != nil {
		return dbErr
	}

	if upErr == migrate.ErrNoChange {
		logger.Info("No new migrations to apply.")
	} else {
		logger.Info("Database migrations applied successfully.")
	}
	return nil
}
