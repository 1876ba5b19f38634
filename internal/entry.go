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

	"github.com/starford/mediastore/internal/api"
	"github.com/starford/mediastore/internal/journal"
	"github.com/starford/mediastore/internal/mcpserver"
	"github.com/starford/mediastore/internal/media"
	"github.com/starford/mediastore/internal/metrics"
	"github.com/starford/mediastore/internal/sse"
	"github.com/starford/mediastore/internal/storage"
	"github.com/starford/mediastore/internal/watch"
)

// Run starts the HTTP server with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config
	logger := app.logger()

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("root_path", cfg.Repo.RootPath),
		slog.String("media_base_path", cfg.Media.BasePath),
		slog.String("journal_path", cfg.Journal.Path),
		slog.String("auth_mode", cfg.Auth.Mode),
		slog.String("log_level", cfg.App.LogLevel.String()))

	broker := sse.NewBroker(2 * time.Second)
	defer broker.Close()

	model, db, err := openMedia(cfg, logger, broker.Notify)
	if err != nil {
		return err
	}
	defer db.Close()

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           newRootRouter(cfg, model, db, broker),
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	if cfg.Watch.Enabled {
		g.Go(func() error {
			err := watch.Watch(gCtx, model.Paths(), logger, broker.PublishMediaEvent)
			if err != nil {
				logger.Warn("watcher stopped", slog.String("error", err.Error()))
			}
			return nil
		})
	}

	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

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
		// SSE handlers only return once their subscription is closed.
		broker.Close()
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

// errShutdown cancels the group so the watcher exits with the server.
var errShutdown = errors.New("shutdown")

// RunMCP serves the media tools over stdio until the client disconnects.
// Logs must not go to stdout here, so the default output is stderr.
func RunMCP(ctx context.Context, opts ...Option) error {
	app, err := newApplication(append([]Option{WithLogOutput(os.Stderr)}, opts...))
	if err != nil {
		return err
	}
	logger := app.logger()

	model, db, err := openMedia(app.config, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	logger.Info("MCP server starting on stdio", slog.String("media_dir", model.Paths().MediaDir()))
	return mcpserver.New(model).ServeStdio()
}

func newApplication(opts []Option) (*application, error) {
	app := &application{logOutput: os.Stdout}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	return app, nil
}

// logger builds the structured JSON logger and installs it as the default.
func (a *application) logger() *slog.Logger {
	logger := slog.New(slog.NewJSONHandler(a.logOutput, &slog.HandlerOptions{
		Level: a.config.App.LogLevel,
	}))
	slog.SetDefault(logger)
	return logger
}

// openMedia builds the media model on the configured repository. Every
// mutation is journaled and logged, then passed to the extra notifiers.
func openMedia(cfg *Config, logger *slog.Logger, extra ...media.Notifier) (*media.Model, *journal.DB, error) {
	paths, err := storage.NewPathConfig(cfg.Repo.RootPath, cfg.Repo.PublicFolder, cfg.Repo.MediaRoot)
	if err != nil {
		return nil, nil, fmt.Errorf("init paths: %w", err)
	}
	if err := os.MkdirAll(paths.MediaDir(), 0o755); err != nil {
		return nil, nil, fmt.Errorf("create media dir: %w", err)
	}
	fs, err := storage.OpenFS(paths)
	if err != nil {
		return nil, nil, fmt.Errorf("init storage: %w", err)
	}

	db, err := journal.Open(cfg.Journal.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("init journal: %w", err)
	}

	notifiers := []media.Notifier{
		db.Hook(fs, paths.RootPath),
		func(_ context.Context, repoPath string) error {
			logger.Info("media modified", slog.String("path", repoPath))
			return nil
		},
	}
	notifiers = append(notifiers, extra...)

	model := media.New(paths,
		media.WithFs(fs),
		media.WithLogger(logger),
		media.WithStatWorkers(cfg.Media.StatWorkers),
		media.WithNotifier(media.Chain(notifiers...)),
	)
	return model, db, nil
}

func newRootRouter(cfg *Config, model *media.Model, db *journal.DB, broker *sse.Broker) http.Handler {
	provider := cfg.Auth.Provider()

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(api.Instrument)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", healthOK)
	r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		if _, err := os.Stat(model.Paths().MediaDir()); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"media dir unavailable"}`))
			return
		}
		healthOK(w, r)
	})
	r.Handle("/metrics", metrics.Handler())

	api.MountEvents(r, provider, broker, api.JournalHandler(db))
	r.Mount(cfg.Media.BasePath, api.NewRouter(model, provider, cfg.Media.MaxUploadBytes))

	return r
}

func healthOK(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
