package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/contractui/api/internal/catalog"
	"github.com/contractui/api/internal/config"
	"github.com/contractui/api/internal/generation"
	"github.com/contractui/api/internal/handlers"
	"github.com/contractui/api/internal/telemetry"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	_ "go.uber.org/automaxprocs"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	// Initialize logger with stdout sync
	zapConfig := zap.NewDevelopmentConfig()
	if cfg.IsProduction() {
		zapConfig = zap.NewProductionConfig()
	}
	zapConfig.OutputPaths = []string{"stdout"}
	zapConfig.ErrorOutputPaths = []string{"stderr"}
	logger, err := zapConfig.Build()
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("contract service starting...",
		zap.String("version", handlers.ServiceVersion),
		zap.String("environment", cfg.Environment),
	)

	if !cfg.HasCredential() {
		logger.Warn("OPENROUTER_API_KEY is not set, generation requests will fail")
	}
	if cfg.IsProduction() && cfg.SecretKey == config.DefaultSecretKey {
		logger.Warn("SECRET_KEY uses the development default")
	}

	shutdownTelemetry, err := telemetry.InitTracer(ctx, handlers.ServiceName, handlers.ServiceVersion, cfg.OTLPEndpoint)
	if err != nil {
		// Log but don't fail, as collector might be down
		logger.Error("failed to initialize telemetry", zap.Error(err))
	} else {
		defer func() {
			if err := shutdownTelemetry(ctx); err != nil {
				logger.Error("failed to shutdown telemetry", zap.Error(err))
			}
		}()
	}

	cat := catalog.Load(cfg.ModelsPath, logger)
	logger.Info("model catalog loaded",
		zap.String("path", cfg.ModelsPath),
		zap.Int("models", cat.Len()),
		zap.String("default", cat.Default()),
	)

	client := generation.New(generation.Options{
		URL:     cfg.OpenRouterURL,
		APIKey:  cfg.OpenRouterAPIKey,
		Referer: cfg.Referer,
		Title:   cfg.AppTitle,
		Timeout: cfg.GenerationTimeout,
	}, logger)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router, err := handlers.NewRouter(handlers.RouterDeps{
		Config:    cfg,
		Catalog:   cat,
		Generator: client,
		Registry:  registry,
		Logger:    logger,
	})
	if err != nil {
		logger.Fatal("failed to build router", zap.Error(err))
	}

	// Generation can take up to the upstream timeout
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.GenerationTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info("starting server", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server exited gracefully")
}
