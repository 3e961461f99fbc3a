// Package app wires configuration into the concrete store, image provider
// and logger shared by the server and the command-line tools.
package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/pageza/recipebook/backend/config"
	"github.com/pageza/recipebook/backend/internal/database"
	"github.com/pageza/recipebook/backend/internal/logger"
	"github.com/pageza/recipebook/backend/internal/service"
	"github.com/pageza/recipebook/backend/internal/store"
)

// CloseFunc releases the resources behind a store.
type CloseFunc func(ctx context.Context) error

// NewLogger builds the process logger from the app config.
func NewLogger(cfg *config.Config) (*zap.Logger, error) {
	return logger.New(logger.Config{
		Level:       cfg.App.LogLevel,
		Format:      cfg.App.LogFormat,
		Development: cfg.IsDevelopment(),
	})
}

// OpenStore connects the configured database driver and returns a recipe
// store over it. sqlite tables are created on open; postgres expects
// cmd/migrate to have run.
func OpenStore(ctx context.Context, cfg config.DatabaseConfig, log *zap.Logger) (store.RecipeStore, CloseFunc, error) {
	switch cfg.Driver {
	case config.DriverMongo:
		client, err := database.NewMongoClient(ctx, cfg, log)
		if err != nil {
			return nil, nil, err
		}
		return store.NewMongoStore(client.Database(cfg.Name), log), client.Disconnect, nil

	case config.DriverPostgres, config.DriverSQLite:
		db, err := database.OpenSQL(cfg, log)
		if err != nil {
			return nil, nil, err
		}
		closeFn := func(context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		}

		s := store.NewSQLStore(db, log)
		if cfg.Driver == config.DriverSQLite {
			if err := s.Migrate(ctx); err != nil {
				_ = closeFn(ctx)
				return nil, nil, fmt.Errorf("failed to create tables: %w", err)
			}
		}
		return s, closeFn, nil
	}
	return nil, nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
}

// NewImageProvider returns the configured image host. Cloudflare is returned
// even without credentials; its requests then fail with
// service.ErrImagesNotConfigured.
func NewImageProvider(ctx context.Context, cfg config.ImagesConfig, log *zap.Logger) (service.ImageProvider, error) {
	switch cfg.Provider {
	case config.ImagesS3:
		client, err := config.NewS3Client(ctx, cfg.S3)
		if err != nil {
			return nil, err
		}
		return service.NewS3Images(client, cfg.S3.Bucket, log, service.WithS3Endpoint(cfg.S3.Endpoint)), nil
	case config.ImagesCloudflare, "":
		images := service.NewCloudflareImages(cfg.Cloudflare, log)
		if !images.Configured() {
			log.Warn("Cloudflare credentials not configured, image uploads are disabled")
		}
		return images, nil
	}
	return nil, fmt.Errorf("unsupported image provider %q", cfg.Provider)
}
