package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/adolfosalasgomez3011/luxpro-apps/api"
	dbfs "github.com/adolfosalasgomez3011/luxpro-apps/db"
	"github.com/adolfosalasgomez3011/luxpro-apps/internal/config"
	"github.com/adolfosalasgomez3011/luxpro-apps/internal/db"
	"github.com/adolfosalasgomez3011/luxpro-apps/internal/events"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	var configPath = flag.String("config", "", "Path to config YAML file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		slog.Error("failed to load config", slog.Any("err", err))
		os.Exit(1)
	}
	logger := config.NewLogger(cfg.Log, os.Stdout)
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid config", slog.Any("err", err))
		os.Exit(1)
	}
	api.SetLogger(logger)

	logger.Info("starting FAMS server", slog.String("version", version), slog.String("build_time", buildTime))

	ctx := context.Background()

	dialect, err := db.ParseDialect(cfg.Database.Driver)
	if err != nil {
		logger.Error("invalid database driver", slog.Any("err", err))
		os.Exit(1)
	}
	conn, err := db.New(ctx, dialect, cfg.Database.DSN)
	if err != nil {
		logger.Error("failed to open DB", slog.Any("err", err))
		os.Exit(1)
	}

	if cfg.MigrateOnStart {
		applied, err := db.Migrate(ctx, conn, dbfs.Migrations)
		if err != nil {
			logger.Error("migration failed", slog.Any("err", err))
			os.Exit(1)
		}
		logger.Info("migrations applied", slog.Any("versions", applied))
	}

	var pub events.Publisher = events.Nop{}
	if cfg.Redis.Addr != "" {
		rp, err := events.NewRedisPublisher(ctx, &redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}, cfg.Redis.Channel)
		if err != nil {
			// Events are notifications; the directory still works without them.
			logger.Warn("event publisher disabled", slog.String("addr", cfg.Redis.Addr), slog.Any("err", err))
		} else {
			pub = events.NewDispatcher(rp, logger, events.DispatcherOptions{})
			logger.Info("publishing events", slog.String("addr", cfg.Redis.Addr), slog.String("channel", cfg.Redis.Channel))
		}
	}

	handler, err := api.SetupRoutes(cfg, version, buildTime, conn, pub)
	if err != nil {
		logger.Error("failed to set up routes", slog.Any("err", err))
		os.Exit(1)
	}

	server := &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		ReadTimeout:  cfg.APITimeout,
		WriteTimeout: cfg.APITimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server starting", slog.String("addr", cfg.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed to start", slog.Any("err", err))
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	// Give outstanding requests 30 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", slog.Any("err", err))
	}
	if err := pub.Close(); err != nil {
		logger.Warn("error closing event publisher", slog.Any("err", err))
	}
	if err := conn.Close(); err != nil {
		logger.Error("error closing DB", slog.Any("err", err))
	}

	logger.Info("server exited")
}
