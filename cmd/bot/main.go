package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"immunization_reminder_bot/internal/app"
	"immunization_reminder_bot/internal/domain/clock"
	"immunization_reminder_bot/internal/domain/immunization"
	"immunization_reminder_bot/internal/domain/message"
	"immunization_reminder_bot/internal/infra/config"
	idb "immunization_reminder_bot/internal/infra/database"
	"immunization_reminder_bot/internal/infra/httpapi"
	"immunization_reminder_bot/internal/infra/locker"
	"immunization_reminder_bot/internal/infra/logger"
	"immunization_reminder_bot/internal/infra/metrics"
	"immunization_reminder_bot/internal/infra/scheduler"
	infrasms "immunization_reminder_bot/internal/infra/sms"

	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Get().Fatalf("FATAL: Could not load application configuration: %v", err)
	}
	logger.Init(cfg)
	log := logger.Get().WithField("component", "main")
	log.Infof("Configuration loaded. LogLevel: %s, Environment: %s", cfg.LogLevel, cfg.Environment)

	// Startup validation: template catalog and calendar must be complete
	// before the dispatch loop is allowed to start.
	catalog, err := message.NewCatalog()
	if err != nil {
		log.Fatalf("FATAL: Message catalog misconfigured: %v", err)
	}
	calendar := immunization.DefaultCalendar()
	log.Infof("Calendar loaded with %d doses.", calendar.Len())

	db, err := idb.NewPostgresConnection(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("FATAL: Could not connect to database: %v", err)
	}
	defer db.Close()
	log.Info("Database connection established successfully.")

	babyRepo := idb.NewPostgresBabyRepository(db)
	scheduleRepo := idb.NewPostgresScheduleRepository(db)
	workerRepo := idb.NewPostgresWorkerRepository(db)
	log.Info("Repositories initialized.")

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	runLocker := locker.NewRedisRunLocker(redisClient, cfg.DispatchLockTTL)

	dispatchMetrics := metrics.NewDispatchMetrics(nil)

	sender := infrasms.NewGatewayClient(
		cfg.SMSAccountSID, cfg.SMSAuthToken, cfg.SMSFromNumber, cfg.SMSGatewayBase,
		logger.Get().WithField("component", "sms_gateway"),
	)
	if sender.Simulated() {
		log.Warn("SMS gateway credentials not set; running in simulation mode.")
	}

	systemClock := clock.System{}

	dispatchService := app.NewDispatchService(
		babyRepo, scheduleRepo, calendar, sender, catalog, runLocker, systemClock,
		dispatchMetrics, logger.Get().WithField("component", "dispatch"),
		app.DispatchConfig{
			LookaheadDays:      cfg.LookaheadDays,
			CooldownHours:      cfg.CooldownHours,
			MaxAttemptsPerDay:  cfg.MaxAttemptsPerDay,
			SendTimeout:        cfg.SendTimeout,
			MaxConcurrentSends: cfg.MaxConcurrentSends,
			Locale:             cfg.DefaultLocale,
		},
	)

	inboundService := app.NewInboundService(
		babyRepo, scheduleRepo, workerRepo, calendar, catalog, systemClock,
		dispatchMetrics, logger.Get().WithField("component", "inbound"),
		cfg.DefaultLocale,
	)

	adminService := app.NewAdminService(workerRepo)

	dispatchScheduler := scheduler.NewDispatchScheduler(
		dispatchService,
		logger.Get().WithField("component", "scheduler"),
		cfg.CronSpecDispatch,
		cfg.DispatchLockTTL,
	)
	if err := dispatchScheduler.Start(); err != nil {
		log.Fatalf("FATAL: Could not start dispatch scheduler: %v", err)
	}

	apiServer := httpapi.NewServer(
		inboundService, dispatchService, adminService, scheduleRepo,
		logger.Get().WithField("component", "http"),
		cfg.AdminToken,
	)
	httpServer := &http.Server{
		Addr:              cfg.HTTPListenAddr,
		Handler:           apiServer.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Infof("HTTP server listening on %s", cfg.HTTPListenAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("FATAL: HTTP server failed: %v", err)
		}
	}()

	log.Info("Application setup complete.")

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down application...")
	dispatchScheduler.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("HTTP server shutdown failed")
	}
	if err := redisClient.Close(); err != nil {
		log.WithError(err).Error("Redis client close failed")
	}
	log.Info("Application shut down gracefully.")
}
