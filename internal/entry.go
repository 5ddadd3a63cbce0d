// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/mindvault/mindvault/internal/api"
	"github.com/mindvault/mindvault/internal/appconfig"
	"github.com/mindvault/mindvault/internal/appdir"
	"github.com/mindvault/mindvault/internal/document"
	"github.com/mindvault/mindvault/internal/mcpserver"
	"github.com/mindvault/mindvault/internal/sse"
	"github.com/mindvault/mindvault/internal/vaultdir"
	"github.com/mindvault/mindvault/internal/watch"
)

// appName names the per-app subdirectory under the platform config dir.
const appName = "mindvault"

// locator picks the app data directory source: an explicit override from
// the bootstrap config, or the platform default. The directory itself is
// created lazily by the services when they first write into it.
func locator(cfg *Config) appdir.Locator {
	if cfg.Data.Dir != "" {
		return appdir.Fixed(cfg.Data.Dir)
	}
	return appdir.Default(appName)
}

// Run starts the HTTP command server with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config

	// Initialize structured JSON logger.
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	locate := app.locate
	if locate == nil {
		locate = locator(cfg)
	}
	dataDir, err := locate()
	if err != nil {
		return fmt.Errorf("resolve app data directory: %w", err)
	}

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("data_dir", dataDir),
		slog.String("extension", cfg.Vault.Extension),
		slog.String("log_level", cfg.App.LogLevel.String()))

	// Initialize services.
	vaults := vaultdir.NewService(locate, cfg.Vault.Extension)
	docs := document.NewService(cfg.Vault.Extension)
	appCfg := appconfig.NewService(locate)

	// SSE broker.
	broker := sse.NewBroker(2 * time.Second)
	defer broker.Close()

	// Vault change watcher, pointed at the last-opened vault if one is
	// recorded.
	watcher := watch.NewManager(cfg.Vault.Extension, logger, broker.PublishFileEvent)
	if saved, ok, err := vaults.SavedPath(ctx); err != nil {
		logger.Warn("saved vault path unavailable", slog.String("error", err.Error()))
	} else if ok {
		watcher.SetVault(saved)
	}

	// Build API handler and router.
	handler := api.NewHandler(vaults, docs, appCfg, watcher)
	apiRouter := api.NewRouter(handler, cfg.Auth.AuthEnabled(), cfg.Auth.Token, http.HandlerFunc(broker.ServeHTTP))

	// Build chi router.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Mount API routes under /api.
	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gCtx := errgroup.WithContext(runCtx)

	// Start vault watcher with SSE callback.
	g.Go(func() error {
		return watcher.Run(gCtx)
	})

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		// Stop the watcher loop alongside the HTTP drain.
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// RunMCP serves the MCP tools over stdio with the given options. Logs go
// to stderr; stdout carries the MCP transport.
func RunMCP(ctx context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	locate := app.locate
	if locate == nil {
		locate = locator(cfg)
	}
	srv := mcpserver.New(
		vaultdir.NewService(locate, cfg.Vault.Extension),
		document.NewService(cfg.Vault.Extension),
		appconfig.NewService(locate),
	)

	logger.Info("MCP server starting on stdio", slog.String("extension", cfg.Vault.Extension))
	return srv.ServeStdio()
}
