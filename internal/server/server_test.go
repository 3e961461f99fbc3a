package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/pageza/recipebook/backend/config"
	"github.com/pageza/recipebook/backend/internal/api"
	"github.com/pageza/recipebook/backend/internal/metrics"
	"github.com/pageza/recipebook/backend/internal/mocks"
)

func testConfig() *config.Config {
	return &config.Config{
		Environment: config.Test,
		App:         config.AppConfig{Version: "v9.9.9"},
		Server: config.ServerConfig{
			Host:           "127.0.0.1",
			Port:           "0",
			ReadTimeout:    time.Second,
			WriteTimeout:   time.Second,
			AllowedOrigins: []string{"http://localhost:5173"},
		},
	}
}

func TestNew(t *testing.T) {
	srv := New(testConfig(), api.Dependencies{
		Recipes: new(mocks.MockRecipeService),
		Metrics: metrics.New(),
	})
	require.NotNil(t, srv)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	srv.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "v9.9.9")
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestPanicsAreCountedInMetrics(t *testing.T) {
	recipes := new(mocks.MockRecipeService)
	recipes.On("GetRecipe", mock.Anything, "boom").
		Run(func(mock.Arguments) { panic("handler exploded") }).
		Return(nil, nil)

	srv := New(testConfig(), api.Dependencies{Recipes: recipes, Metrics: metrics.New()})

	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/recipes/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	w = httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(),
		`http_requests_total{method="GET",path="/api/recipes/:id",status_code="500"} 1`)
}

func TestStartAndShutdown(t *testing.T) {
	srv := New(testConfig(), api.Dependencies{Recipes: new(mocks.MockRecipeService)})

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	time.Sleep(50 * time.Millisecond)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, srv.Shutdown(ctx))

	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop")
	}
}
