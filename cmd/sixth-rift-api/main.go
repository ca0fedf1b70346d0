// main is the entry point of The Sixth Rift site API.
//
// STARTUP SEQUENCE:
//  1. Load configuration from a YAML file (+ environment overrides)
//  2. Initialise the logger (stdout, plus an optional rotating file)
//  3. Open the subscriber storage selected by storage.driver
//  4. Load the track catalogue and the newsletter template
//  5. Build the chi router and start the HTTP server in a goroutine
//  6. Block until an OS signal (Ctrl+C / kill) arrives
//  7. Gracefully shut down: finish in-flight requests, close storage
//
// RUNNING THE SERVER:
//
//	go run ./cmd/sixth-rift-api --config=config/local.yaml
//
// or (with the environment variable):
//
//	CONFIG_PATH=config/local.yaml go run ./cmd/sixth-rift-api
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/aanand-mishra/sixth-rift-api/internal/catalog"
	"github.com/aanand-mishra/sixth-rift-api/internal/config"
	"github.com/aanand-mishra/sixth-rift-api/internal/http/router"
	"github.com/aanand-mishra/sixth-rift-api/internal/metrics"
	"github.com/aanand-mishra/sixth-rift-api/internal/newsletter"
	"github.com/aanand-mishra/sixth-rift-api/internal/storage"
	"github.com/aanand-mishra/sixth-rift-api/internal/storage/memory"
	"github.com/aanand-mishra/sixth-rift-api/internal/storage/postgres"
	"github.com/aanand-mishra/sixth-rift-api/internal/storage/redis"
	"github.com/aanand-mishra/sixth-rift-api/internal/storage/sqlite"
)

const storageOpenTimeout = 10 * time.Second

func main() {
	// ── 1. Load Config ────────────────────────────────────────────────────
	cfg := config.MustLoad()

	// ── 2. Initialise Logger ──────────────────────────────────────────────
	log := setupLogger(cfg.Env, logOutput(cfg.Log))
	slog.SetDefault(log)

	log.Info("starting sixth-rift-api",
		slog.String("env", cfg.Env),
		slog.String("version", "1.0.0"),
	)

	if cfg.Admin.UsesDefaults() {
		log.Warn("admin credentials are the built-in defaults; set ADMIN_USERNAME and ADMIN_PASSWORD")
	}

	// ── 3. Initialise Storage ─────────────────────────────────────────────
	// The rest of the code only sees the storage.Storage interface.
	ctx, cancel := context.WithTimeout(context.Background(), storageOpenTimeout)
	store, err := newStorage(ctx, cfg.Storage)
	cancel()
	if err != nil {
		log.Error("failed to initialise storage", slog.String("error", err.Error()))
		os.Exit(1)
	}

	log.Info("storage initialised", slog.String("driver", cfg.Storage.Driver))

	// ── 4. Catalogue + Newsletter ─────────────────────────────────────────
	tracks, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		log.Error("failed to load track catalogue", slog.String("error", err.Error()))
		os.Exit(1)
	}

	renderer, err := newsletter.NewRenderer()
	if err != nil {
		log.Error("failed to prepare newsletter template", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// ── 5. Router + HTTP Server ───────────────────────────────────────────
	handler := router.New(router.Deps{
		Storage:        store,
		Catalog:        tracks,
		Newsletter:     renderer,
		Metrics:        metrics.New("sixth_rift"),
		Logger:         log,
		AdminUsername:  cfg.Admin.Username,
		AdminPassword:  cfg.Admin.Password,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
	})

	server := &http.Server{
		Addr:         cfg.HTTPServer.Addr,
		Handler:      handler,
		ReadTimeout:  cfg.HTTPServer.ReadTimeout,
		WriteTimeout: cfg.HTTPServer.WriteTimeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	go func() {
		log.Info("server started", slog.String("address", cfg.HTTPServer.Addr))

		// ListenAndServe returns http.ErrServerClosed when Shutdown() is
		// called. That's expected — we don't want to log it as an error.
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server encountered an error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	// ── 6. Wait for Shutdown Signal ───────────────────────────────────────
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)
	<-done

	log.Info("shutdown signal received, stopping server...")

	// ── 7. Graceful Shutdown ──────────────────────────────────────────────
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.HTTPServer.ShutdownTimeout)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("failed to shutdown server gracefully", slog.String("error", err.Error()))
	}

	if err := store.Close(); err != nil {
		log.Error("failed to close storage", slog.String("error", err.Error()))
	}

	log.Info("server stopped gracefully")
}

// newStorage opens the backend named by cfg.Driver.
func newStorage(ctx context.Context, cfg config.Storage) (storage.Storage, error) {
	switch cfg.Driver {
	case storage.DriverMemory:
		return memory.New(), nil
	case storage.DriverSQLite:
		return sqlite.New(ctx, cfg.Path)
	case storage.DriverPostgres:
		return postgres.Open(ctx, cfg.DSN)
	case storage.DriverRedis:
		return redis.Dial(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

// logOutput is stdout, fanned out to a size-rotated file when log.file is set.
func logOutput(cfg config.Log) io.Writer {
	if cfg.File == "" {
		return os.Stdout
	}
	return io.MultiWriter(os.Stdout, &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSizeMB,  // megabytes before rotation
		MaxBackups: cfg.MaxBackups, // number of old files to retain
		MaxAge:     cfg.MaxAgeDays, // days to retain rotated files
		Compress:   true,
	})
}

// setupLogger returns a *slog.Logger configured for the given environment.
//
// Development (dev): human-readable text output at DEBUG level.
// Production (prod): machine-readable JSON output at INFO level.
func setupLogger(env string, out io.Writer) *slog.Logger {
	switch env {
	case "prod":
		return slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{Level: slog.LevelInfo}))
	case "staging":
		return slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{Level: slog.LevelDebug}))
	default: // "dev" and anything unrecognised
		return slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
}
