// Package testdb starts throwaway database containers for integration tests.
package testdb

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/pageza/recipebook/backend/config"
	"github.com/pageza/recipebook/backend/internal/database"
)

// MongoDB wraps a MongoDB container and a connected client
type MongoDB struct {
	Client    *mongo.Client
	DB        *mongo.Database
	Config    config.DatabaseConfig
	Container testcontainers.Container
}

// Close disconnects the client and terminates the container
func (m *MongoDB) Close() error {
	ctx := context.Background()
	if m.Client != nil {
		_ = m.Client.Disconnect(ctx)
	}
	if m.Container != nil {
		return m.Container.Terminate(ctx)
	}
	return nil
}

// SetupMongo starts a MongoDB container. The test is skipped under -short or
// when no container runtime is reachable.
func SetupMongo(t *testing.T) *MongoDB {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	ctx := context.Background()
	req := testcontainers.ContainerRequest{
		Image:        "mongo:7",
		ExposedPorts: []string{"27017/tcp"},
		WaitingFor: wait.ForAll(
			wait.ForLog("Waiting for connections"),
			wait.ForListeningPort("27017/tcp"),
		).WithDeadline(2 * time.Minute),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Skipf("container runtime unavailable: %v", err)
	}

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "27017")
	require.NoError(t, err)

	cfg := config.DatabaseConfig{
		Driver:  config.DriverMongo,
		URI:     fmt.Sprintf("mongodb://%s:%s", host, port.Port()),
		Name:    "recipes_test",
		Timeout: 30 * time.Second,
	}

	client, err := database.NewMongoClient(ctx, cfg, zap.NewNop())
	require.NoError(t, err)

	m := &MongoDB{
		Client:    client,
		DB:        client.Database(cfg.Name),
		Config:    cfg,
		Container: container,
	}

	t.Cleanup(func() {
		if err := m.Close(); err != nil {
			t.Logf("Error cleaning up test database: %v", err)
		}
	})

	return m
}

// Postgres wraps a PostgreSQL container
type Postgres struct {
	Config    config.DatabaseConfig
	Container testcontainers.Container
}

// SetupPostgres starts an empty PostgreSQL container. The schema is left to
// the caller so migrations can be exercised. Skips like SetupMongo.
func SetupPostgres(t *testing.T) *Postgres {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	const (
		user     = "postgres"
		password = "postpass"
		dbName   = "recipes_test"
	)
	dsn := func(host string, port nat.Port) string {
		return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", user, password, host, port.Port(), dbName)
	}

	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     user,
				"POSTGRES_PASSWORD": password,
				"POSTGRES_DB":       dbName,
			},
			WaitingFor: wait.ForAll(
				wait.ForListeningPort("5432/tcp"),
				wait.ForSQL("5432/tcp", "postgres", dsn),
			).WithStartupTimeout(90 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Skipf("container runtime unavailable: %v", err)
	}

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	p := &Postgres{
		Config: config.DatabaseConfig{
			Driver:  config.DriverPostgres,
			URI:     dsn(host, port),
			Timeout: 30 * time.Second,
		},
		Container: container,
	}

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})
	return p
}
