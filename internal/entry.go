// Package internal provides the main application initialization and runtime logic.
package internal

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

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/wikihugo/internal/api"
	"github.com/starford/wikihugo/internal/convert"
	"github.com/starford/wikihugo/internal/mcpserver"
	"github.com/starford/wikihugo/internal/pageservice"
	"github.com/starford/wikihugo/internal/report"
	"github.com/starford/wikihugo/internal/sse"
	"github.com/starford/wikihugo/internal/storage"
)

// Run starts the application with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{
		mode:    ModeConvert,
		out:     os.Stdout,
		logOut:  os.Stderr,
		version: "dev",
	}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config

	// Initialize structured JSON logger. Stdout carries summaries and the
	// MCP transport, so logs go elsewhere.
	logger := slog.New(slog.NewJSONHandler(app.logOut, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("mode", string(app.mode)),
		slog.String("source", cfg.Convert.Source),
		slog.String("destination", cfg.Convert.Destination),
		slog.String("report_path", cfg.Report.Path),
		slog.Bool("dry_run", cfg.Convert.DryRun),
		slog.String("log_level", cfg.App.LogLevel.String()))

	if app.mode != ModeConvert && cfg.Report.Path == "" {
		return fmt.Errorf("report path is required in %s mode", app.mode)
	}

	ext := cfg.Wiki.Extension
	src, err := storage.NewFS(cfg.Convert.Source, ext)
	if err != nil {
		return fmt.Errorf("init source storage: %w", err)
	}
	dst, err := storage.NewFS(cfg.Convert.Destination, ext)
	if err != nil {
		return fmt.Errorf("init destination storage: %w", err)
	}

	convOpts := []convert.Option{}
	var db *report.DB
	if cfg.Report.Path != "" {
		db, err = report.Open(cfg.Report.Path)
		if err != nil {
			return fmt.Errorf("init report: %w", err)
		}
		defer db.Close()
		convOpts = append(convOpts, convert.WithReport(db))
	}

	var broker *sse.Broker
	if app.mode == ModeServe {
		broker = sse.NewBroker(2 * time.Second)
		defer broker.Close()
		convOpts = append(convOpts, convert.WithEvents(broker))
	}

	conv, err := convert.New(src, dst, convert.Config{
		Settings:       cfg.Wiki.Settings,
		XMLData:        cfg.Convert.XMLData,
		DryRun:         cfg.Convert.DryRun,
		PruneRedirects: cfg.Convert.PruneRedirects,
	}, logger, convOpts...)
	if err != nil {
		return err
	}

	switch app.mode {
	case ModeConvert:
		return runConvert(ctx, app, conv, logger)
	case ModeServe:
		return runServe(ctx, app, conv, pageservice.NewService(dst, db, conv), broker, logger)
	case ModeMCP:
		logger.Info("MCP server starting on stdio")
		return mcpserver.New(pageservice.NewService(dst, db, conv), app.version).ServeStdio()
	default:
		return fmt.Errorf("unknown mode %q", app.mode)
	}
}

func printSummary(w io.Writer, sum convert.Summary) {
	prefix := ""
	if sum.DryRun {
		prefix = "dry run: "
	}
	fmt.Fprintf(w, "%s%d written, %d unchanged, %d redirects (%d pruned), %d skipped, %d broken links\n",
		prefix, sum.Written, sum.Unchanged, sum.Redirects, sum.Pruned, sum.Skipped, sum.BrokenLinks)
}

func runConvert(ctx context.Context, app *application, conv *convert.Converter, logger *slog.Logger) error {
	sum, err := conv.Run(ctx)
	if err != nil {
		return err
	}
	printSummary(app.out, sum)

	if !app.config.Convert.Watch {
		return nil
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return conv.Watch(ctx, func(sum convert.Summary, err error) {
		if err == nil {
			printSummary(app.out, sum)
		}
	})
}

func runServe(ctx context.Context, app *application, conv *convert.Converter, svc *pageservice.Service,
	broker *sse.Broker, logger *slog.Logger) error {
	cfg := app.config

	// The API serves the previous report when the initial run fails.
	sum, err := conv.Run(ctx)
	if err != nil {
		logger.Error("initial conversion failed", slog.String("error", err.Error()))
	} else {
		printSummary(app.out, sum)
	}
	broker.PublishRun(sum, err)

	apiRouter := api.NewRouter(svc, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker)

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

	g, gCtx := errgroup.WithContext(ctx)

	// Re-run the conversion on source changes and announce each run.
	g.Go(func() error {
		return conv.Watch(gCtx, func(sum convert.Summary, err error) {
			if err == nil {
				printSummary(app.out, sum)
			}
			broker.PublishRun(sum, err)
		})
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

// errShutdown cancels the group context so the watcher stops with the server.
var errShutdown = errors.New("shutdown")
