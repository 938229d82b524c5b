package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/cenniki/pricelist-service/config"
	_ "github.com/cenniki/pricelist-service/docs"
	"github.com/cenniki/pricelist-service/internal/app"
	"github.com/cenniki/pricelist-service/internal/handlers"
	"github.com/cenniki/pricelist-service/internal/metrics"
	"github.com/cenniki/pricelist-service/internal/middleware"
	"github.com/cenniki/pricelist-service/internal/scheduler"
	"github.com/cenniki/pricelist-service/internal/telemetry"
)

// @title Pricelist Service API
// @version 1.0
// @description Scheduled price changes for producer catalogs: diff, schedule, apply and export.
// @BasePath /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Bearer <token>
func main() {
	cfg, err := config.Load(os.Getenv("PRICELIST_CONFIG"))
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger := app.NewLogger(cfg.Logging, os.Stdout)

	logger.Info().Msg("Starting pricelist service")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Init(ctx, cfg.Telemetry)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialise tracing")
	}

	services, err := app.New(ctx, cfg, logger, "api")
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialise services")
	}

	var sweeper *scheduler.Sweeper
	if cfg.Scheduler.Enabled {
		sweeper = scheduler.NewSweeper(services.Trigger, logger, cfg.Scheduler.Interval, cfg.Scheduler.StaleClaimAfter)
		go sweeper.Start(ctx)
	} else {
		logger.Info().Msg("Scheduler disabled, due change-sets are applied on request only")
	}

	if cfg.Logging.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := setupRouter(ctx, cfg, services, logger)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info().Str("addr", addr).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	<-ctx.Done()

	logger.Info().Msg("Shutting down server...")
	if sweeper != nil {
		sweeper.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Server forced to shutdown")
	}
	if err := services.Close(); err != nil {
		logger.Error().Err(err).Msg("Failed to close services")
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Failed to flush traces")
	}

	logger.Info().Msg("Server exited")
}

func setupRouter(ctx context.Context, cfg *config.Config, services *app.App, logger *zerolog.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger(logger))
	router.Use(metrics.Middleware())

	router.GET("/health", handlers.HealthCheck(map[string]handlers.Check{
		"storage": services.Ping,
	}))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := router.Group("/api")
	if cfg.Auth.Token != "" {
		api.Use(middleware.BearerAuth(cfg.Auth.Token))
	} else {
		logger.Warn().Msg("auth.token not set, API is unauthenticated")
	}
	if cfg.RateLimit.Enabled {
		limiter := middleware.NewIPRateLimiter(middleware.RateLimiterConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			BurstSize:         cfg.RateLimit.Burst,
		})
		limiter.StartCleanup(ctx, 5*time.Minute)
		api.Use(middleware.RateLimitMiddleware(limiter))
	}

	handlers.New(handlers.Deps{
		ChangeSets:     services.ChangeSets,
		Trigger:        services.Trigger,
		Catalogs:       services.Catalogs,
		Uploads:        services.Storage,
		MaxUploadBytes: cfg.Server.MaxUploadBytes,
		Logger:         logger,
	}).Register(api)

	return router
}
