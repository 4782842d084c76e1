package main

import (
	"context"
	"crypto/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/drvaisakhrheumacare-byte/coupon-sheets/internal/config"
	"github.com/drvaisakhrheumacare-byte/coupon-sheets/internal/handler"
	"github.com/drvaisakhrheumacare-byte/coupon-sheets/internal/layout"
	"github.com/drvaisakhrheumacare-byte/coupon-sheets/internal/service"
	"github.com/drvaisakhrheumacare-byte/coupon-sheets/internal/validator"
	"github.com/drvaisakhrheumacare-byte/coupon-sheets/pkg/sheetsource"
)

func main() {
	// Load configuration first
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Initialize zerolog based on configuration
	initLogger(cfg)

	// Initialize Fiber with production-ready configuration
	app := fiber.New(fiber.Config{
		AppName:      "Coupon Sheet Generator",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second, // large rosters take a while to render
		IdleTimeout:  120 * time.Second,
		BodyLimit:    10 * 1024 * 1024, // roster uploads are small spreadsheets
	})

	// Middleware
	app.Use(recover.New())
	app.Use(requestid.New()) // Adds X-Request-ID header to all requests
	app.Use(logger.New())

	// Initialize validator
	validate := validator.New()

	// Initialize generation components (layered architecture)
	fetcher := sheetsource.NewClient(
		time.Duration(cfg.Sheet.FetchTimeout)*time.Second,
		cfg.Sheet.FetchRetries,
	)
	engine := layout.NewEngine(layout.Options{
		ValueLabel:           cfg.Coupon.ValueLabel,
		GridRows:             cfg.Coupon.GridRows,
		GridCols:             cfg.Coupon.GridCols,
		RowHeightCm:          cfg.Coupon.RowHeightCm,
		HeaderIncludesPrefix: cfg.Coupon.HeaderIncludesPrefix,
	})
	generateService := service.NewGenerateService(fetcher, engine)
	sheetHandler := handler.NewSheetHandler(generateService, validate)

	// Health handler
	healthHandler := handler.NewHealthHandler(rand.Reader)
	app.Get("/health", healthHandler.Check)

	// Generation routes, guarded by the shared app password when configured
	api := app.Group("/api", handler.PasswordGate(cfg.Auth.Password))
	api.Post("/coupon-sheets", sheetHandler.GenerateFromSheet)
	api.Post("/coupon-sheets/upload", sheetHandler.GenerateFromUpload)

	// Start server with graceful shutdown
	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("starting server")
		if err := app.Listen(":" + cfg.Server.Port); err != nil {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("received shutdown signal")
	log.Info().Int("timeout_seconds", cfg.Server.ShutdownTimeout).Msg("shutting down server...")

	// Create shutdown context with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer shutdownCancel()

	// Shutdown server (waits for in-flight generations)
	log.Info().Msg("waiting for in-flight requests to complete...")
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("error during server shutdown")
	}
	log.Info().Msg("server stopped")
}

// initLogger configures zerolog based on the application configuration.
func initLogger(cfg *config.Config) {
	// Set log level
	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	// Configure output format
	if cfg.Log.Pretty {
		// Human-readable output for development
		log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).
			With().Timestamp().Logger()
	} else {
		// JSON output for production
		zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
		log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	}
}
