package main

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"crmsync/internal/config"
	"crmsync/internal/crm"
	"crmsync/internal/logging"
	"crmsync/internal/source"
	syncsvc "crmsync/internal/sync"
	"crmsync/internal/web"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	// Load and validate configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Setup structured logging based on config
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"db_max_conns", cfg.Database.MaxConns,
		"sync_concurrency", cfg.Sync.Concurrency,
		"sync_batch_size", cfg.Sync.BatchSize,
		"scheduler_interval", cfg.Sync.Interval,
	)

	// Parse and configure connection pool
	poolConfig, err := pgxpool.ParseConfig(cfg.Database.URL)
	if err != nil {
		slog.Error("failed to parse database URL", "error", err)
		os.Exit(1)
	}
	poolConfig.MaxConns = int32(cfg.Database.MaxConns)
	poolConfig.MinConns = int32(cfg.Database.MinConns)
	poolConfig.MaxConnLifetime = cfg.Database.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.Database.MaxConnIdleTime

	// Connect to database
	ctx := context.Background()
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		slog.Error("failed to ping database", "error", err)
		os.Exit(1)
	}

	// Log which database we connected to
	if u, err := url.Parse(cfg.Database.URL); err == nil {
		slog.Info("connected to database", "name", strings.TrimPrefix(u.Path, "/"))
	} else {
		slog.Info("connected to database")
	}

	// Wire the collaborators and the sync service
	store := source.New(pool)
	client := crm.NewClient(crm.Config{
		AuthURL:        cfg.CRM.AuthURL,
		ClientID:       cfg.CRM.ClientID,
		ClientSecret:   cfg.CRM.ClientSecret,
		RequestTimeout: cfg.CRM.RequestTimeout,
		TokenSkew:      cfg.CRM.TokenSkew,
	})
	service := syncsvc.NewService(store, client, syncsvc.NewSession(), syncsvc.Options{
		PageSize:             cfg.Sync.PageSize,
		Concurrency:          cfg.Sync.Concurrency,
		BatchSize:            cfg.Sync.BatchSize,
		MaxAttempts:          cfg.Sync.MaxAttempts,
		RetryBaseDelay:       cfg.Sync.RetryBaseDelay,
		TolerateTotalFailure: cfg.Sync.TolerateTotalFailure,
	})

	server := web.NewServer(service, store, cfg)

	// Create cancellable context for background jobs
	jobCtx, cancelJobs := context.WithCancel(context.Background())

	// Start the periodic scheduler when configured
	if cfg.Sync.Interval > 0 {
		go service.StartScheduler(jobCtx, cfg.Sync.Interval)
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")
		cancelJobs()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	// Start server (uses addr from config internally)
	slog.Info("server starting", "addr", cfg.Server.Addr())
	if err := server.Start(); err != nil {
		slog.Info("server stopped", "error", err)
	}
}
