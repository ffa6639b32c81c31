// Package main provides the entrypoint for the Dishpatch API server.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/dishpatch/dishpatch/internal/api"
	"github.com/dishpatch/dishpatch/internal/api/middleware"
	"github.com/dishpatch/dishpatch/internal/audit"
	auditclickhouse "github.com/dishpatch/dishpatch/internal/audit/clickhouse"
	"github.com/dishpatch/dishpatch/internal/auth"
	"github.com/dishpatch/dishpatch/internal/database"
	"github.com/dishpatch/dishpatch/internal/inference/modelserver"
	"github.com/dishpatch/dishpatch/internal/prediction"
	"github.com/dishpatch/dishpatch/internal/provider/resilience"
	"github.com/dishpatch/dishpatch/internal/reference"
	"github.com/dishpatch/dishpatch/internal/telemetry"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "dishpatch-api"

	// Setup structured logging
	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting Dishpatch API")

	// Get configuration from environment
	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	otlpEndpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	if otlpEndpoint == "" {
		otlpEndpoint = "localhost:4317"
	}

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}

	// Initialize OpenTelemetry
	ctx := context.Background()
	telemetryEnabled := os.Getenv("OTEL_ENABLED") == "true"

	tp, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    serviceName,
		ServiceVersion: Version,
		Environment:    env,
		OTLPEndpoint:   otlpEndpoint,
		Enabled:        telemetryEnabled,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize telemetry")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()

	if telemetryEnabled {
		log.Info().
			Str("otlp_endpoint", otlpEndpoint).
			Msg("OpenTelemetry initialized")
	}

	// Initialize metrics
	metrics, err := middleware.NewMetrics()
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize metrics")
		os.Exit(1) //nolint:gocritic // intentional exit, telemetry cleanup is best-effort
	}

	// Connect to the delivery history database
	dbConfig := database.ConfigFromEnv()
	pool, err := database.Connect(ctx, dbConfig)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	log.Info().
		Str("host", dbConfig.Host).
		Int("port", dbConfig.Port).
		Str("database", dbConfig.Database).
		Msg("database connected")

	// Initialize reference data service over the history dataset
	referenceRepo := reference.NewPostgresRepository(pool)
	referenceService := reference.NewService(reference.ServiceConfig{
		Repository: referenceRepo,
		Logger:     log,
	})
	log.Info().Msg("reference service initialized")

	// Initialize JWT service (get signing key from environment)
	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		jwtSigningKey = "local-dev-signing-key-change-in-production"
		log.Warn().Msg("using default JWT signing key - not secure for production")
	}

	jwtIssuer := os.Getenv("JWT_ISSUER")
	if jwtIssuer == "" {
		jwtIssuer = "https://api.dishpatch.io"
	}

	jwtService := auth.NewJWTService(auth.JWTConfig{
		SigningKey: jwtSigningKey,
		Issuer:     jwtIssuer,
		Audience:   serviceName,
	})

	// Initialize the model server client with per-endpoint circuits
	modelRegistry := resilience.NewRegistry()
	modelClient := modelserver.NewClient(modelserver.ClientConfig{
		BaseURL:  os.Getenv("MODEL_SERVER_URL"),
		Registry: modelRegistry,
	})
	log.Info().Msg("model server client initialized")

	// Initialize the optional prediction audit store
	var auditStore audit.Store
	if dsn := os.Getenv("CLICKHOUSE_DSN"); dsn != "" {
		conn, connErr := auditclickhouse.NewConn(ctx, dsn)
		if connErr != nil {
			log.Fatal().Err(connErr).Msg("failed to connect to clickhouse")
		}
		defer conn.Close()
		auditStore = auditclickhouse.NewStore(conn)
		log.Info().Msg("clickhouse audit store initialized")
	} else {
		log.Warn().Msg("CLICKHOUSE_DSN not set - prediction audit disabled")
	}

	// Initialize the prediction service
	predictionService := prediction.NewService(prediction.ServiceConfig{
		Reference:      referenceService,
		EtaPredictor:   modelClient,
		DelayPredictor: modelClient,
		Logger:         log,
		AuditStore:     auditStore,
	})
	log.Info().Msg("prediction service initialized")

	// Create router with configuration
	router := api.NewRouter(api.RouterConfig{
		Version:           Version,
		BuildTime:         BuildTime,
		Logger:            log,
		ServiceName:       serviceName,
		Metrics:           metrics,
		JWTService:        jwtService,
		PredictionService: predictionService,
		ReferenceService:  referenceService,
		ModelRegistry:     modelRegistry,
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("addr", server.Addr).
			Msg("server listening")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		os.Exit(1)
	}

	log.Info().Msg("server stopped")
}
