package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/redis/go-redis/v9"

	"github.com/opencampus-hq/timereport/internal/artifact"
	"github.com/opencampus-hq/timereport/internal/config"
	"github.com/opencampus-hq/timereport/internal/handlers"
	"github.com/opencampus-hq/timereport/internal/jobs"
	"github.com/opencampus-hq/timereport/internal/jobstate"
	"github.com/opencampus-hq/timereport/internal/logging"
	"github.com/opencampus-hq/timereport/internal/messaging/nats"
	"github.com/opencampus-hq/timereport/internal/middleware"
	"github.com/opencampus-hq/timereport/internal/notify"
	"github.com/opencampus-hq/timereport/internal/repository"
	"github.com/opencampus-hq/timereport/internal/server"
	"github.com/opencampus-hq/timereport/internal/service"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := logging.New(logging.ParseLevel(cfg.Logging.Level), cfg.Logging.Format)
	logging.SetDefault(logger)

	if dump, err := cfg.Dump(); err == nil {
		logger.Info("effective configuration", "config", dump)
	}

	connString := cfg.Database.DSN()

	// Run database migrations
	logger.Info("running database migrations")
	m, err := migrate.New(cfg.Database.Migrations, connString)
	if err != nil {
		log.Fatalf("Failed to initialize migrations: %v", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	logger.Info("database migrations completed")

	// Initialize repository
	repo, err := repository.NewPostgresRepository(context.Background(), connString)
	if err != nil {
		log.Fatalf("Failed to connect to PostgreSQL: %v", err)
	}
	defer repo.Close()

	// Initialize Redis job state
	redisOpts, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		log.Fatalf("Failed to parse Redis URL: %v", err)
	}
	redisClient := redis.NewClient(redisOpts)
	defer redisClient.Close()
	state := jobstate.NewManager(redisClient, cfg.Redis.LockTTL, cfg.Redis.ResultTTL)

	// Initialize NATS
	natsCfg := nats.DefaultConfig()
	natsCfg.URL = cfg.NATS.URL
	natsCfg.Name = cfg.NATS.Name
	bus, err := nats.NewClient(natsCfg)
	if err != nil {
		log.Fatalf("Failed to connect to NATS: %v", err)
	}
	defer bus.Close()

	// Initialize artifact store
	store, err := artifact.NewStore(cfg.Report.ArtifactsDir)
	if err != nil {
		log.Fatalf("Failed to create artifact store: %v", err)
	}

	// Initialize notification channel
	var notifier notify.Channel = notify.NewLogChannel(log.Printf)
	if cfg.Notify.WebhookURL != "" {
		notifier = notify.NewMultiChannel(
			notify.NewWebhookChannel(cfg.Notify.WebhookURL, cfg.Notify.Timeout),
			notifier,
		)
	}

	// Initialize service
	publisher := jobs.NewPublisher(bus)
	svc := service.New(repo, store, state, publisher, notifier, logger, service.Config{
		IdleThreshold:  cfg.Report.IdleThresholdSeconds,
		BorrowedTime:   cfg.Report.BorrowedTimeSeconds,
		AllowedTargets: cfg.Report.AllowedTargets,
		PublicBasePath: cfg.Report.PublicBasePath,
	})

	// Start the generation worker
	worker := jobs.NewWorker(bus, svc, state, logger)
	if err := worker.Start(); err != nil {
		log.Fatalf("Failed to start report worker: %v", err)
	}
	defer worker.Stop()

	// Initialize handlers with readiness probes
	ready := map[string]handlers.ReadyChecker{
		"database": func(ctx context.Context) error {
			_, err := repo.GetDistinctTargets(ctx)
			return err
		},
		"redis": func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		},
		"nats": func(ctx context.Context) error {
			if !bus.IsConnected() {
				return fmt.Errorf("not connected")
			}
			return nil
		},
	}
	handler := handlers.NewHandler(svc, logger, ready)

	// Setup HTTP router
	router := server.NewRouter(handler, logger, server.Config{
		ArtifactsDir:   cfg.Report.ArtifactsDir,
		PublicBasePath: cfg.Report.PublicBasePath,
		CORS: middleware.CORSConfig{
			AllowedOrigins: cfg.CORS.AllowedOrigins,
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Content-Type", "X-Request-ID"},
		},
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server in goroutine
	go func() {
		logger.Info("time report service listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	// Stop taking new jobs before closing the HTTP surface, then drain the
	// bus so in-flight generations finish.
	if err := worker.Stop(); err != nil {
		logger.Warn("failed to stop worker", "error", err)
	}
	if err := bus.Drain(); err != nil {
		logger.Warn("failed to drain message bus", "error", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	logger.Info("server stopped gracefully")
}
