package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	httpapi "github.com/ibonuribe/clima-gateway/internal/api/http"
	"github.com/ibonuribe/clima-gateway/internal/clima"
	"github.com/ibonuribe/clima-gateway/internal/clima/providers"
	"github.com/ibonuribe/clima-gateway/internal/config"
	"github.com/ibonuribe/clima-gateway/internal/geo"
	"github.com/ibonuribe/clima-gateway/internal/logging"
	"github.com/ibonuribe/clima-gateway/internal/model"
	"github.com/ibonuribe/clima-gateway/internal/scheduler"
	"github.com/ibonuribe/clima-gateway/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := logging.New(cfg.LogLevel, cfg.LogFormat)

	// Shared HTTP client for outbound provider calls. Every call is bounded
	// by this timeout; a slow upstream cannot hold a request open.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	resolver := geo.NewResolver(httpClient, cfg.GeocoderAPIKey)
	weatherClient := providers.NewOpenMeteoClient(httpClient)

	observations, err := store.NewPostgres(context.Background(), cfg.DSN())
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to configure observation store")
	}
	defer observations.Close()

	// Artifact store is optional; without it the forecast endpoint reports
	// the models as unavailable instead of blocking startup.
	var fetcher model.ArtifactFetcher
	if cfg.ModelStoreEndpoint != "" {
		minioFetcher, err := model.NewMinioFetcher(
			cfg.ModelStoreEndpoint, cfg.ModelStoreAccessKey, cfg.ModelStoreSecretKey,
			cfg.ModelStoreBucket, cfg.ModelStoreUseSSL,
		)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to configure artifact store")
		}
		fetcher = minioFetcher
	} else {
		logger.Warn().Msg("artifact store not configured; forecast endpoint will report models unavailable")
	}
	runner := model.NewRunner(fetcher, cfg.ModelTempMaxKey, cfg.ModelTempMinKey)

	service := clima.NewService(resolver, weatherClient, observations, runner, logger)

	// Optional station-observation sync into the store.
	if cfg.SyncEnabled() {
		stations := providers.NewAEMETClient(httpClient, cfg.AEMETAPIKey)
		sched := scheduler.New(cfg.SyncLocations, cfg.SyncInterval, stations, observations, logger)
		if err := sched.Start(); err != nil {
			logger.Fatal().Err(err).Msg("failed to start observation sync")
		}
		defer sched.Stop()
	}

	app := fiber.New(fiber.Config{
		AppName:               "clima-gateway",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		ErrorHandler:          httpapi.ErrorHandler(),
	})

	app.Use(fiberlogger.New())
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "clima-gateway",
		})
	})

	httpapi.RegisterRoutes(app, service)

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			logger.Error().Err(err).Msg("fiber server stopped")
		}
	}()
	logger.Info().Str("port", cfg.Port).Msg("clima-gateway listening")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("error during shutdown")
	}
}
