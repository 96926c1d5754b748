// Copyright (c) 2026 NutriSync. All rights reserved.

// Command api is the entry point for the NutriSync HTTP API server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables (.env in development).
//  3. Connect to PostgreSQL (pgxpool), Redis, and MongoDB.
//  4. Run database migrations (idempotent).
//  5. Wire domain services and HTTP handlers.
//  6. Start the reminder scheduler.
//  7. Start HTTP server with graceful shutdown.
//
// No business logic lives here. All wiring is explicit constructor injection.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/nutrisync/nutrisync/internal/api"
	"github.com/nutrisync/nutrisync/internal/food"
	"github.com/nutrisync/nutrisync/internal/platform/config"
	"github.com/nutrisync/nutrisync/internal/platform/constants"
	"github.com/nutrisync/nutrisync/internal/platform/metrics"
	"github.com/nutrisync/nutrisync/internal/platform/migration"
	mongostore "github.com/nutrisync/nutrisync/internal/platform/mongo"
	pgstore "github.com/nutrisync/nutrisync/internal/platform/postgres"
	redisstore "github.com/nutrisync/nutrisync/internal/platform/redis"
	"github.com/nutrisync/nutrisync/internal/platform/sec"
	"github.com/nutrisync/nutrisync/internal/reminder"
	"github.com/nutrisync/nutrisync/internal/users"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	rawLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	// Add global context to all log entries.
	log := rawLog.With(slog.String("app", "nutrisync"))
	slog.SetDefault(log)

	log.Info("[NutriSync] service_initializing")

	// ── 2. Configuration ──────────────────────────────────────────────────
	// A missing .env file is normal outside local development.
	_ = godotenv.Load()

	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		debugLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
		log = debugLog.With(slog.String("app", "nutrisync"))
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
	)

	// Root context for startup. Use a 30s deadline so misconfiguration is
	// caught quickly rather than hanging indefinitely.
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	// ── 3. PostgreSQL ─────────────────────────────────────────────────────
	pool, err := pgstore.NewPool(startupCtx, cfg.DatabaseURL, log)
	must(log, err, "connect to postgres")
	defer func() {
		log.Info("closing postgres pool")
		pool.Close()
	}()

	// ── 4. Redis ──────────────────────────────────────────────────────────
	rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, log)
	must(log, err, "connect to redis")
	defer func() {
		log.Info("closing redis client")
		if cerr := rdb.Close(); cerr != nil {
			log.Error("redis close error", slog.Any("error", cerr))
		}
	}()

	// ── 5. MongoDB ────────────────────────────────────────────────────────
	mongoClient, err := mongostore.NewClient(startupCtx, cfg.MongoURL, log)
	must(log, err, "connect to mongo")
	defer func() {
		log.Info("closing mongo client")
		if cerr := mongoClient.Disconnect(context.Background()); cerr != nil {
			log.Error("mongo close error", slog.Any("error", cerr))
		}
	}()
	mongoDatabase := mongoClient.Database(cfg.MongoDatabase)

	// ── 6. Migrations ─────────────────────────────────────────────────────
	must(log, migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log), "run migrations")

	// ── 7. Token Service ──────────────────────────────────────────────────
	tokenSecret := cfg.TokenSecret
	if tokenSecret == "" {
		// Documented development caveat: a fixed signing secret so local
		// setups work out of the box. Never acceptable in production.
		log.Warn("token_secret_not_set_using_development_default")
		tokenSecret = sec.DevTokenSecret
	}
	jwtSvc, err := sec.NewTokenService(tokenSecret, constants.AuthIssuer, constants.TokenTTL)
	must(log, err, "initialize jwt service")

	// ── 8. Metrics ────────────────────────────────────────────────────────
	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	// ── 9. Health handlers (wired with real dependency checkers) ──────────
	liveness, readiness := api.NewHealthHandlers(api.HealthDependencies{
		CheckDatabase: func() error {
			return pgstore.Ping(context.Background(), pool)
		},
		CheckCache: func() error {
			return redisstore.Ping(context.Background(), rdb)
		},
		CheckDocuments: func() error {
			return mongostore.Ping(context.Background(), mongoClient)
		},
	}, log)

	// ── 10. Domain Wiring ─────────────────────────────────────────────────
	logRepository := food.NewLogRepository(mongoDatabase)
	if err := logRepository.EnsureIndexes(startupCtx); err != nil {
		// Queries still work without indexes, just slower; don't abort boot.
		log.Warn("mongo_index_creation_failed", slog.Any("error", err))
	}
	usageRepository := food.NewUsageRepository(mongoDatabase)
	analysisCache := food.NewAnalysisCache(rdb)
	analyzer := food.NewHTTPAnalyzer(cfg.AIServiceURL)
	foodService := food.NewService(logRepository, usageRepository, analysisCache, analyzer, collector, log)
	foodHandler := food.NewHandler(foodService)

	userRepository := users.NewUserRepository(pool)
	userService := users.NewService(userRepository, jwtSvc, foodService, foodService, foodService, log)
	authHandler := users.NewAuthHandler(userService)
	adminHandler := users.NewAdminHandler(userService)
	doctorHandler := users.NewDoctorHandler(userService)

	reminderRepository := reminder.NewReminderRepository(pool)
	reminderService := reminder.NewService(reminderRepository, log)
	reminderHandler := reminder.NewHandler(reminderService)

	// ── 11. Reminder Scheduler ────────────────────────────────────────────
	var gateway reminder.Gateway = reminder.NewLogGateway(log)
	if cfg.TwilioAccountSID != "" {
		gateway = reminder.NewTwilioGateway(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioFrom)
		log.Info("reminder_gateway_twilio_enabled")
	}

	// appCtx outlives startup and is cancelled at shutdown; it stops the
	// scheduler and the rate limiter's cleanup goroutine.
	appCtx, appCancel := context.WithCancel(context.Background())
	defer appCancel()

	scheduler := reminder.NewScheduler(
		reminderRepository,
		gateway,
		cfg.ReminderDestination,
		cfg.ReminderPollInterval,
		collector,
		log,
	)
	go scheduler.Start(appCtx)

	// ── 12. HTTP Server ───────────────────────────────────────────────────
	handlers := api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Metrics:   metrics.Handler(registry),
		Auth:      authHandler,
		Admin:     adminHandler,
		Doctor:    doctorHandler,
		Food:      foodHandler,
		Reminder:  reminderHandler,
	}

	server := api.NewServer(appCtx, cfg, log, jwtSvc, userService, handlers)

	// ── 13. Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Block until OS signal or server error.
	select {
	case sig := <-quit:
		log.Info("shutdown signal received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server startup error", slog.Any("error", err))
	}

	// Stop the scheduler before draining HTTP so no new sends start.
	appCancel()

	// Give in-flight requests enough time to complete.
	shutdownTimeout := constants.ShutdownTimeout
	log.Info("shutting down server", slog.Duration("timeout", shutdownTimeout))

	if err := server.Shutdown(shutdownTimeout); err != nil {
		log.Error("shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("server stopped cleanly")
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is intentionally limited to startup wiring. After startup, all errors
// must be returned and handled explicitly (never panic).
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
