package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/canstralian/GitUpgradeNavigator/internal/api"
	"github.com/canstralian/GitUpgradeNavigator/internal/config"
	"github.com/canstralian/GitUpgradeNavigator/internal/plans"
	"github.com/canstralian/GitUpgradeNavigator/internal/ratelimit"
	"github.com/canstralian/GitUpgradeNavigator/internal/services"
	"github.com/canstralian/GitUpgradeNavigator/internal/storage"
	"github.com/canstralian/GitUpgradeNavigator/internal/templates"
)

func main() {
	// Setup structured logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	slog.Info("starting upgrade-navigator",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
	)

	// Create context for initialization
	initCtx, initCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer initCancel()

	// Run database migrations
	slog.Info("running database migrations", "dir", cfg.Database.MigrationsDir)
	if err := storage.MigrateFromDSN(initCtx, cfg.Database.DSN, cfg.Database.MigrationsDir); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Initialize database repository
	repo, err := storage.NewPostgresRepository(initCtx, storage.PostgresConfig{
		DSN: cfg.Database.DSN,
	})
	if err != nil {
		slog.Error("failed to create database repository", "error", err)
		os.Exit(1)
	}
	slog.Info("database connected successfully")

	// Seed the resource library and bootstrap credentials
	if err := storage.SeedResources(initCtx, repo); err != nil {
		slog.Error("failed to seed resources", "error", err)
		os.Exit(1)
	}
	if err := storage.SeedBootstrapClient(initCtx, repo); err != nil {
		slog.Error("failed to seed bootstrap client", "error", err)
		os.Exit(1)
	}

	// Initialize service registry
	registry := services.NewRegistry()

	postgresProvider, err := services.NewPostgresProvider(cfg.Database.DSN)
	if err != nil {
		slog.Error("failed to create postgres provider", "error", err)
		os.Exit(1)
	}
	registry.Register("postgres", postgresProvider)

	// Rate limit counters live in Redis when available, in memory otherwise
	var limitStore ratelimit.Store
	if cfg.Redis.Enabled {
		redisProvider, err := services.NewRedisProvider(cfg.Redis.Address, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			slog.Error("failed to create redis provider", "error", err)
			os.Exit(1)
		}
		registry.Register("redis", redisProvider)

		limitStore, err = ratelimit.NewRedisStore(cfg.Redis.Address, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			slog.Error("failed to create redis rate limit store", "error", err)
			os.Exit(1)
		}
	} else {
		limitStore = ratelimit.NewMemoryStore(time.Minute)
	}

	var limiter *api.RateLimitMiddleware
	if cfg.RateLimit.Enabled {
		limiter = api.NewRateLimitMiddleware(limitStore, cfg.RateLimit)
	}

	// Load workflow templates
	templateLoader := templates.NewLoader()
	if err := templateLoader.LoadFromDir(cfg.Templates.Dir); err != nil {
		slog.Warn("failed to load templates from dir", "dir", cfg.Templates.Dir, "error", err)
	}

	// Initialize plan manager
	manager := plans.NewManager(repo, templateLoader)

	// Setup HTTP server
	server := api.NewServer(cfg.Server, manager, templateLoader, repo, registry, limiter)
	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      server.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		slog.Info("HTTP server starting", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down gracefully...")

	// Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	// Release backing connections
	if err := limitStore.Close(); err != nil {
		slog.Error("rate limit store close error", "error", err)
	}
	registry.Close()
	if err := repo.Close(); err != nil {
		slog.Error("repository close error", "error", err)
	}

	slog.Info("upgrade-navigator stopped")
}
