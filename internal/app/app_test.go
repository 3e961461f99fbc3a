package app

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pageza/recipebook/backend/config"
	"github.com/pageza/recipebook/backend/internal/model"
	"github.com/pageza/recipebook/backend/internal/service"
)

func TestOpenStoreSQLite(t *testing.T) {
	ctx := context.Background()
	cfg := config.DatabaseConfig{
		Driver:     config.DriverSQLite,
		SQLitePath: filepath.Join(t.TempDir(), "recipes.db"),
	}

	s, closeFn, err := OpenStore(ctx, cfg, zap.NewNop())
	require.NoError(t, err)
	defer closeFn(ctx) //nolint:errcheck

	id, err := s.Insert(ctx, &model.Recipe{Title: "Toast", Ingredients: model.StringArray{"bread"}, Instructions: model.StringArray{"toast it"}})
	require.NoError(t, err)

	got, err := s.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Toast", got.Title)
}

func TestOpenStoreUnknownDriver(t *testing.T) {
	_, _, err := OpenStore(context.Background(), config.DatabaseConfig{Driver: "cassandra"}, zap.NewNop())
	assert.Error(t, err)
}

func TestNewImageProvider(t *testing.T) {
	ctx := context.Background()

	images, err := NewImageProvider(ctx, config.ImagesConfig{Provider: config.ImagesCloudflare}, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &service.CloudflareImages{}, images)

	t.Setenv("AWS_ACCESS_KEY_ID", "test")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "test")
	images, err = NewImageProvider(ctx, config.ImagesConfig{
		Provider: config.ImagesS3,
		S3:       config.S3Config{Bucket: "recipes", Region: "us-east-1"},
	}, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, "S3", images.Name())

	_, err = NewImageProvider(ctx, config.ImagesConfig{Provider: "ftp"}, zap.NewNop())
	assert.Error(t, err)
}

func TestNewLogger(t *testing.T) {
	l, err := NewLogger(&config.Config{App: config.AppConfig{LogLevel: "warn"}})
	require.NoError(t, err)
	assert.NotNil(t, l)
}
