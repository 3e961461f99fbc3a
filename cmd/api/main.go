package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/pageza/recipebook/backend/config"
	"github.com/pageza/recipebook/backend/internal/api"
	"github.com/pageza/recipebook/backend/internal/app"
	"github.com/pageza/recipebook/backend/internal/database"
	"github.com/pageza/recipebook/backend/internal/metrics"
	"github.com/pageza/recipebook/backend/internal/middleware"
	"github.com/pageza/recipebook/backend/internal/server"
	"github.com/pageza/recipebook/backend/internal/service"
)

func main() {
	configPath := flag.String("config", "", "Path to a config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zl, err := app.NewLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer zl.Sync() //nolint:errcheck

	ctx := context.Background()

	recipeStore, closeStore, err := app.OpenStore(ctx, cfg.Database, zl)
	if err != nil {
		zl.Fatal("Failed to connect to database", zap.Error(err))
	}

	images, err := app.NewImageProvider(ctx, cfg.Images, zl)
	if err != nil {
		zl.Fatal("Failed to initialize image provider", zap.Error(err))
	}

	// Redis is optional; without it the AI limit is enforced per process.
	var redisClient *redis.Client
	if cfg.Redis.URL != "" {
		redisClient, err = database.NewRedisClient(ctx, cfg.Redis.URL, zl)
		if err != nil {
			zl.Warn("Redis unavailable, using in-process rate limiting", zap.Error(err))
			redisClient = nil
		}
	}

	m := metrics.New()

	var ai service.IAIService
	if cfg.AI.Enabled {
		ai = service.NewAIService(cfg.AI, zl, m)
	} else {
		zl.Info("AI features disabled")
	}

	recipes := service.NewRecipeService(recipeStore, images, zl, service.WithMetrics(m))

	srv := server.New(cfg, api.Dependencies{
		Recipes:     recipes,
		AI:          ai,
		Images:      images,
		AIRateLimit: middleware.NewAIRateLimiter(redisClient, cfg.RateLimit.Requests, cfg.RateLimit.Window, zl).RateLimitMiddleware(),
		AdminSecret: cfg.Admin.JWTSecret,
		Metrics:     m,
		Version:     cfg.App.Version,
		Logger:      zl,
	})

	// Channel to listen for errors coming from the server
	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		if err != nil {
			zl.Error("Server error", zap.Error(err))
		}
	case sig := <-quit:
		zl.Info("Received signal", zap.String("signal", sig.String()))
	}

	zl.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zl.Error("Server shutdown error", zap.Error(err))
	}
	if err := recipes.Wait(shutdownCtx); err != nil {
		zl.Warn("Pending image deletions did not finish", zap.Error(err))
	}
	if err := closeStore(shutdownCtx); err != nil {
		zl.Warn("Failed to close database", zap.Error(err))
	}
	if redisClient != nil {
		_ = redisClient.Close()
	}
	zl.Info("Server stopped")
}
