// Package app wires configuration, logging, services, and the HTTP server.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"simulcheck/internal/config"
	"simulcheck/internal/infrastructure"
	"simulcheck/internal/middleware"
	"simulcheck/internal/services"
	handlers "simulcheck/internal/transport/http"
	"simulcheck/internal/workbook"

	apierrors "simulcheck/internal/errors"
)

// Version is the application version, overridable at build time.
var Version = "dev"

// Application is the main application container.
type Application struct {
	Config          *config.Config
	Router          *chi.Mux
	Server          *http.Server
	AnalysisService *services.AnalysisService
	Logger          *slog.Logger
}

// New creates a new application instance with all dependencies wired.
func New() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	logger.Info("application starting",
		slog.String("version", Version),
		slog.String("workbook", cfg.Workbook.Path))

	loader := workbook.NewLoader(cfg.Workbook.TimestampColumn, logger)
	cache := workbook.NewCache(loader, logger)
	analysisService := services.NewAnalysisService(cache, cfg.Workbook, logger)

	app := &Application{
		Config:          cfg,
		Logger:          logger,
		AnalysisService: analysisService,
	}

	app.setupRouter()
	app.createServer()

	return app, nil
}

func (a *Application) setupRouter() {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.StructuredLogger(a.Logger))
	r.Use(middleware.Recoverer(a.Logger))
	r.Use(middleware.RateLimit(a.Config.Security.RateLimit, a.Logger))

	errorHandler := apierrors.NewErrorHandler(a.Logger)
	analysisHandler := handlers.NewAnalysisHandler(a.AnalysisService, a.Logger, errorHandler)
	healthHandler := handlers.NewHealthHandler(a.AnalysisService, Version)

	r.Get("/", handlers.ServeIndexPage(a.Config.Paths.WebDir))
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(api chi.Router) {
		api.Get("/health", healthHandler.GetHealth)
		api.Mount("/", analysisHandler.Routes())
	})

	a.Router = r
}

func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:         fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:      a.Router,
		ReadTimeout:  a.Config.Server.ReadTimeout,
		WriteTimeout: a.Config.Server.WriteTimeout,
		IdleTimeout:  a.Config.Server.IdleTimeout,
	}
}

// Run starts the HTTP server and blocks until shutdown completes.
func (a *Application) Run() error {
	errCh := make(chan error, 1)
	go func() {
		a.Logger.Info("HTTP server listening", slog.String("addr", a.Server.Addr))
		if err := a.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case sig := <-quit:
		a.Logger.Info("shutdown signal received", slog.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), a.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.Server.Shutdown(ctx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	if err := infrastructure.CloseLogFile(); err != nil {
		return fmt.Errorf("failed to close log file: %w", err)
	}

	a.Logger.Info("shutdown complete",
		slog.String("uptime_end", time.Now().UTC().Format(time.RFC3339)))
	return nil
}
