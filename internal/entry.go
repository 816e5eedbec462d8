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

	"github.com/starford/quire/internal/api"
	"github.com/starford/quire/internal/docservice"
	"github.com/starford/quire/internal/index"
	"github.com/starford/quire/internal/mcpserver"
	"github.com/starford/quire/internal/metrics"
	"github.com/starford/quire/internal/render"
	"github.com/starford/quire/internal/repository"
	"github.com/starford/quire/internal/search"
	"github.com/starford/quire/internal/storage"
	"github.com/starford/quire/internal/web"
)

// Run starts the HTTP server with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts...)
	if err != nil {
		return err
	}
	cfg := app.config
	logger := app.logger()

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("content_path", cfg.Content.Path),
		slog.String("search_backend", cfg.Search.Backend),
		slog.Bool("dev", cfg.App.Dev),
		slog.String("log_level", cfg.App.LogLevel.String()))

	deps, err := app.build(ctx, logger)
	if err != nil {
		return err
	}
	defer deps.Close()

	site, err := web.New(deps.svc, web.SiteConfig{Title: cfg.Site.Title, Footer: cfg.Site.Footer}, logger)
	if err != nil {
		return fmt.Errorf("init site: %w", err)
	}

	// Build chi router.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(api.DevInvalidate(cfg.App.Dev, deps.svc))

	// Health check endpoints.
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if _, err := os.Stat(deps.store.Root()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"content root unavailable"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Handle("/metrics", metrics.Handler())

	// Mount API routes under /api, the site everywhere else.
	r.Mount("/api", api.NewRouter(deps.svc))
	r.Mount("/", site.Routes())

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Start file watcher; dev mode already invalidates on every request.
	if cfg.Watch.Enabled && !cfg.App.Dev {
		g.Go(func() error {
			opts := index.WatchOptions{Extension: cfg.Content.Extension, Debounce: cfg.Watch.Debounce}
			if err := index.Watch(gCtx, deps.store.Root(), opts, logger, func() { deps.Refresh(gCtx) }); err != nil {
				logger.Error("watcher failed", slog.String("error", err.Error()))
			}
			return nil
		})
	}

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

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return errShutdown
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errShutdown) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// RunMCP serves the MCP tools on stdin/stdout until the client disconnects.
func RunMCP(ctx context.Context, opts ...Option) error {
	opts = append([]Option{WithLogOutput(os.Stderr)}, opts...)
	app, err := newApplication(opts...)
	if err != nil {
		return err
	}
	logger := app.logger()

	deps, err := app.build(ctx, logger)
	if err != nil {
		return err
	}
	defer deps.Close()

	logger.Info("MCP server starting", slog.String("content_path", app.config.Content.Path))

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	if app.config.Watch.Enabled {
		go func() {
			opts := index.WatchOptions{Extension: app.config.Content.Extension, Debounce: app.config.Watch.Debounce}
			if err := index.Watch(ctx, deps.store.Root(), opts, logger, func() { deps.Refresh(ctx) }); err != nil {
				logger.Error("watcher failed", slog.String("error", err.Error()))
			}
		}()
	}

	return mcpserver.New(deps.svc, app.version).ServeStdio()
}

// errShutdown stops the errgroup so the watcher exits with the server.
var errShutdown = errors.New("shutdown")

func newApplication(opts ...Option) (*application, error) {
	app := &application{version: "dev", logOutput: os.Stdout}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	return app, nil
}

// logger initializes the structured JSON logger and installs it as default.
func (a *application) logger() *slog.Logger {
	logger := slog.New(slog.NewJSONHandler(a.logOutput, &slog.HandlerOptions{
		Level: a.config.App.LogLevel,
	}))
	slog.SetDefault(logger)
	return logger
}

// components are the long-lived collaborators shared by every boundary.
type components struct {
	store   *storage.FS
	repo    *repository.Repository
	catalog *index.DB // nil with the scan backend
	svc     *docservice.Service
	logger  *slog.Logger
}

func (a *application) build(ctx context.Context, logger *slog.Logger) (*components, error) {
	cfg := a.config

	store, err := storage.NewFS(cfg.Content.Path,
		storage.WithExtension(cfg.Content.Extension),
		storage.WithExclude(cfg.Content.Exclude...),
		storage.WithLogger(logger),
	)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	repo := repository.New(store, render.New(), logger)
	c := &components{store: store, repo: repo, logger: logger}

	var searcher search.Searcher = search.New(repo, logger)
	if cfg.Search.Backend == SearchBackendSQLite {
		if cfg.App.Dev {
			logger.Warn("dev mode: sqlite search backend disabled, using scan")
		} else {
			db, err := index.Open(cfg.Search.DSN)
			if err != nil {
				return nil, fmt.Errorf("init index: %w", err)
			}
			// Run initial sync.
			if err := index.Sync(ctx, db, repo, logger); err != nil {
				logger.Warn("initial sync failed", slog.String("error", err.Error()))
			}
			c.catalog = db
			searcher = db
		}
	}

	c.svc = docservice.NewService(repo, searcher, logger)
	return c, nil
}

// Refresh drops the repository caches and re-syncs the catalog.
func (c *components) Refresh(ctx context.Context) {
	c.repo.InvalidateAll()
	if c.catalog == nil {
		return
	}
	if err := index.Sync(ctx, c.catalog, c.repo, c.logger); err != nil {
		c.logger.Warn("catalog sync failed", slog.String("error", err.Error()))
	}
}

// Close releases the catalog, if any.
func (c *components) Close() error {
	if c.catalog == nil {
		return nil
	}
	return c.catalog.Close()
}
