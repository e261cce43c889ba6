package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"

	database "github.com/itinera-ai/itinera/app/db"
	appLogger "github.com/itinera-ai/itinera/app/logger"
	"github.com/itinera-ai/itinera/app/observability/metrics"
	"github.com/itinera-ai/itinera/app/tracer"
	"github.com/itinera-ai/itinera/config"
	"github.com/itinera-ai/itinera/internal/api/catalog"
	generativeAI "github.com/itinera-ai/itinera/internal/api/generative_ai"
	"github.com/itinera-ai/itinera/internal/api/planner"
	tripcontext "github.com/itinera-ai/itinera/internal/api/trip_context"
	api "github.com/itinera-ai/itinera/internal/router"
)

func main() {
	// Use standard log until slog is configured, in case godotenv fails.
	err := godotenv.Load()
	if err != nil {
		log.Println("Warning: .env file not found or error loading:", err)
	}

	cfg, err := config.InitConfig()
	if err != nil {
		log.Fatalf("FATAL: Error initializing config: %v", err)
	}

	logger := setupLogger()
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	tracer.InitTracingAndMetrics(cfg.Server.MetricsPort)
	metrics.InitAppMetrics()

	// --- Catalog Setup ---
	catalogRepo, cleanup, err := setupCatalog(ctx, &cfg, logger)
	if err != nil {
		logger.Error("Failed to set up attraction catalog", slog.Any("error", err))
		os.Exit(1)
	}
	defer cleanup()

	// --- External Clients ---
	aiClient, err := generativeAI.New(&cfg)
	if err != nil {
		logger.Error("Failed to create generator client", slog.Any("error", err))
		os.Exit(1)
	}

	weatherClient := tripcontext.NewHTTPWeatherClient(cfg.Providers.Weather.BaseURL, cfg.Providers.Weather.Timeout)
	matrixClient := tripcontext.NewHTTPMatrixClient(cfg.Providers.Matrix.BaseURL, cfg.Providers.Matrix.Timeout)
	contextSvc := tripcontext.NewServiceImpl(weatherClient, matrixClient, cfg.Providers.SnapshotTTL, logger)

	// --- Pipeline ---
	plannerSvc := planner.NewServiceImpl(catalogRepo, contextSvc, aiClient, planner.Options{
		MinRequestChars:   cfg.Server.MinRequestChars,
		CandidateCap:      cfg.Planner.CandidateCap,
		GeneratorTimeout:  cfg.Generator.Timeout,
		InflightBucket:    cfg.Planner.InflightBucket,
		InflightTTL:       cfg.Planner.InflightTTL,
		DefaultStartTime:  cfg.Planner.DefaultStartTime,
		DefaultTravelMin:  cfg.Planner.DefaultTravelMin,
		DefaultVisitMin:   cfg.Planner.DefaultVisitMin,
		FallbackMinVisits: cfg.Planner.FallbackMinVisits,
	}, logger)

	plannerHandler := planner.NewHandler(plannerSvc, logger)
	catalogHandler := catalog.NewHandler(catalogRepo, logger)

	mainRouter := api.SetupRouter(&api.Config{
		PlannerHandler: plannerHandler,
		CatalogHandler: catalogHandler,
		AllowedOrigins: cfg.Server.AllowedOrigins,
	})

	router := chi.NewMux()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(appLogger.StructuredLogger(logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.StripSlashes)
	router.Use(middleware.Timeout(cfg.Server.Timeout))
	router.Use(middleware.Compress(5, "application/json"))
	router.Mount("/", mainRouter)

	serverAddress := fmt.Sprintf(":%s", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         serverAddress,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: cfg.Server.Timeout,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	go func() {
		logger.Info("Starting HTTP server", slog.String("address", serverAddress))
		err := srv.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server ListenAndServe error", slog.Any("error", err))
			cancel()
		}
	}()

	<-ctx.Done()

	logger.Info("Shutdown signal received, starting graceful shutdown...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server graceful shutdown failed", slog.Any("error", err))
	} else {
		logger.Info("HTTP server gracefully stopped")
	}
	logger.Info("Application shut down complete.")
}

// setupCatalog returns the configured catalog repository, falling back to the
// embedded in-memory catalog when no database is configured.
func setupCatalog(ctx context.Context, cfg *config.Config, logger *slog.Logger) (catalog.Repository, func(), error) {
	if cfg.Catalog.Source != "postgres" {
		repo, err := catalog.NewMemoryRepository(logger)
		if err != nil {
			return nil, nil, err
		}
		return repo, func() {}, nil
	}

	dbConfig, err := database.NewDatabaseConfig(cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	if err = database.RunMigrations(dbConfig.ConnectionURL, logger); err != nil {
		return nil, nil, err
	}
	pool, err := database.Init(dbConfig.ConnectionURL, logger)
	if err != nil {
		return nil, nil, err
	}
	if !database.WaitForDB(ctx, pool, logger) {
		pool.Close()
		return nil, nil, errors.New("database not ready after waiting")
	}
	return catalog.NewPostgresRepository(pool, logger), pool.Close, nil
}

// setupLogger configures and returns the application logger.
func setupLogger() *slog.Logger {
	var logger *slog.Logger
	env := os.Getenv("APP_ENV")

	if env == "development" || env == "" {
		tintOpts := &tint.Options{
			Level:      slog.LevelDebug,
			TimeFormat: time.Kitchen,
			AddSource:  true,
		}
		logger = slog.New(tint.NewHandler(os.Stdout, tintOpts))
		log.Println("Initialized development logger (tint)")
	} else {
		jsonOpts := &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}
		logger = slog.New(slog.NewJSONHandler(os.Stdout, jsonOpts))
		log.Println("Initialized production logger (JSON)")
	}
	return logger
}
