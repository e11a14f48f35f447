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

	"github.com/mjelva/laguz/internal/api"
	"github.com/mjelva/laguz/internal/database"
	"github.com/mjelva/laguz/internal/graph"
	"github.com/mjelva/laguz/internal/index"
	"github.com/mjelva/laguz/internal/mcpserver"
	"github.com/mjelva/laguz/internal/noteservice"
	"github.com/mjelva/laguz/internal/notestore"
	"github.com/mjelva/laguz/internal/search"
	"github.com/mjelva/laguz/internal/sse"
	"github.com/mjelva/laguz/internal/storage"
)

// RunMCP serves the MCP tool surface over stdio, sharing the same database
// as the HTTP server.
func RunMCP(ctx context.Context, opts ...Option) error {
	app := &application{}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return fmt.Errorf("config is required")
	}
	cfg := app.config

	// MCP speaks JSON-RPC on stdout, so logs go to stderr.
	logger := app.logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
			Level: cfg.App.LogLevel,
		}))
	}
	slog.SetDefault(logger)

	db, err := database.Open(cfg.SQLite.Path)
	if err != nil {
		return fmt.Errorf("init database: %w", err)
	}
	defer db.Close()

	notes := notestore.New(db)
	linkGraph := graph.New(db, logger)
	indexer := index.New(db)
	engine := search.NewEngine(indexer, cfg.Search)
	svc := noteservice.New(notes, linkGraph, indexer, engine, logger)

	return mcpserver.New(svc).ServeStdio()
}

// Run starts the application with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config

	// Initialize structured JSON logger unless one was injected.
	logger := app.logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: cfg.App.LogLevel,
		}))
	}
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.String("attachments_dir", cfg.Attachments.Dir),
		slog.String("log_level", cfg.App.LogLevel.String()))

	// Ensure attachments directory exists.
	if err := os.MkdirAll(cfg.Attachments.Dir, 0o755); err != nil {
		return fmt.Errorf("create attachments dir: %w", err)
	}

	files, err := storage.NewFS(cfg.Attachments.Dir)
	if err != nil {
		return fmt.Errorf("init attachment storage: %w", err)
	}

	db, err := database.Open(cfg.SQLite.Path)
	if err != nil {
		return fmt.Errorf("init database: %w", err)
	}
	defer db.Close()

	notes := notestore.New(db)
	linkGraph := graph.New(db, logger)
	indexer := index.New(db)
	engine := search.NewEngine(indexer, cfg.Search)
	svc := noteservice.New(notes, linkGraph, indexer, engine, logger)

	// Bring derived state (links + index entries) in line with the notes table.
	if err := svc.RebuildDerived(ctx); err != nil {
		logger.Warn("initial rebuild failed", slog.String("error", err.Error()))
	}

	// SSE broker for note change events.
	broker := sse.NewBroker(2 * time.Second)
	defer broker.Close()

	apiRouter := api.NewRouter(svc, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker, files)

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

	// Attachment files are served unauthenticated (image blocks embed them).
	ah := api.NewAttachmentHandler(files)
	r.Get("/attachments/{filename}", ah.ServeFile)

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	g, gCtx := errgroup.WithContext(ctx)

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

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
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
