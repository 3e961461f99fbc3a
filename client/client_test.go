package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/pageza/recipebook/backend/internal/api"
	"github.com/pageza/recipebook/backend/internal/apperrors"
	"github.com/pageza/recipebook/backend/internal/mocks"
	"github.com/pageza/recipebook/backend/internal/model"
	"github.com/pageza/recipebook/backend/internal/service"
	"github.com/pageza/recipebook/backend/internal/store"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// newTestAPI serves the real routes over an in-memory sqlite store.
func newTestAPI(t *testing.T) (*Client, *mocks.MockAIService, *mocks.MockImageProvider) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	s := store.NewSQLStore(db, nil)
	require.NoError(t, s.Migrate(context.Background()))

	ai := new(mocks.MockAIService)
	images := new(mocks.MockImageProvider)

	router := gin.New()
	api.RegisterRoutes(router, api.Dependencies{
		Recipes: service.NewRecipeService(s, images, nil),
		AI:      ai,
		Images:  images,
	})
	srv := httptest.NewServer(router)
	t.Cleanup(func() {
		srv.Close()
		_ = sqlDB.Close()
	})
	return New(srv.URL, WithHTTPClient(srv.Client())), ai, images
}

func TestClientRecipeLifecycle(t *testing.T) {
	c, _, _ := newTestAPI(t)
	ctx := context.Background()

	id, err := c.CreateRecipe(ctx, &model.Recipe{
		Title:        "Pancakes",
		Ingredients:  model.StringArray{"flour", " ", "milk"},
		Instructions: model.StringArray{"mix", "fry"},
		PrepTime:     10,
		CookTime:     15,
		CuisineType:  "American",
		Tags:         model.StringArray{"breakfast"},
	})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	got, err := c.GetRecipe(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, model.StringArray{"flour", "milk"}, got.Ingredients)
	assert.False(t, got.CreatedAt.IsZero())

	list, err := c.ListRecipes(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Pancakes", list[0].Title)

	got.Title = "Fluffy Pancakes"
	updated, err := c.UpdateRecipe(ctx, id, got)
	require.NoError(t, err)
	assert.Equal(t, "Fluffy Pancakes", updated.Title)
	assert.True(t, updated.CreatedAt.Equal(got.CreatedAt))

	require.NoError(t, c.DeleteRecipe(ctx, id))

	_, err = c.GetRecipe(ctx, id)
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "Recipe not found", nf.Message)
}

func TestClientValidationError(t *testing.T) {
	c, _, _ := newTestAPI(t)

	_, err := c.CreateRecipe(context.Background(), &model.Recipe{Title: "  "})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, http.StatusBadRequest, ve.StatusCode())
}

func TestClientAI(t *testing.T) {
	c, ai, _ := newTestAPI(t)
	ctx := context.Background()

	ai.On("SuggestTags", mock.Anything, "Soup", []string{"water"}, []string{"boil"}).Return([]string{"easy", "warm"}, nil).Once()
	ai.On("GenerateCompleteRecipe", mock.Anything, "Soup").
		Return(nil, apperrors.NewAIServiceError("AI request failed", errors.New("quota exceeded"))).Once()

	tags, err := c.SuggestTags(ctx, "Soup", []string{"water"}, []string{"boil"})
	require.NoError(t, err)
	assert.Equal(t, []string{"easy", "warm"}, tags)

	_, err = c.GenerateCompleteRecipe(ctx, "Soup")
	var aiErr *AIServiceError
	require.ErrorAs(t, err, &aiErr)
	assert.Equal(t, "Failed to process AI request", aiErr.Message)
	assert.Equal(t, "quota exceeded", aiErr.Details)
	ai.AssertExpectations(t)
}

func TestClientUploadImage(t *testing.T) {
	c, _, images := newTestAPI(t)
	images.On("Upload", mock.Anything, "cake.png", mock.Anything, mock.Anything).
		Return(&service.UploadedImage{ID: "i1", Filename: "cake.png", URL: "https://imagedelivery.net/h/i1/recipe"}, nil).Once()

	res, err := c.UploadImage(context.Background(), "cake.png", strings.NewReader("png"))
	require.NoError(t, err)
	assert.Equal(t, "https://imagedelivery.net/h/i1/recipe", res.URL)
	images.AssertExpectations(t)
}

func TestClassifyResponse(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		check  func(t *testing.T, err error)
	}{
		{"bad request", 400, `{"error":"bad title","details":["title"]}`, func(t *testing.T, err error) {
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, "bad title", ve.Message)
		}},
		{"not found without body", 404, ``, func(t *testing.T, err error) {
			var nf *NotFoundError
			require.ErrorAs(t, err, &nf)
			assert.Equal(t, "Resource not found", nf.Message)
		}},
		{"ai failure", 500, `{"error":"Failed to process AI request","code":"AI_SERVICE_ERROR"}`, func(t *testing.T, err error) {
			assert.True(t, apperrors.IsAIService(err))
		}},
		{"generic 500", 500, `{"error":"Failed to fetch recipes","details":"db down"}`, func(t *testing.T, err error) {
			assert.False(t, apperrors.IsAIService(err))
			assert.Equal(t, "Internal server error", err.Error())
			assert.Equal(t, 500, apperrors.StatusOf(err))
		}},
		{"other status", 429, `{"error":"Rate limit exceeded"}`, func(t *testing.T, err error) {
			assert.Equal(t, "Rate limit exceeded", err.Error())
			assert.Equal(t, 429, apperrors.StatusOf(err))
		}},
		{"other status without body", 503, `not json`, func(t *testing.T, err error) {
			assert.Equal(t, "An unexpected error occurred", err.Error())
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := New(srv.URL).ListRecipes(context.Background())
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

func TestNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := New(url).ListRecipes(context.Background())
	assert.True(t, apperrors.IsNetwork(err))
	assert.Equal(t, MsgNetworkError, UserMessage(err, "fallback"))
}

func TestUserMessage(t *testing.T) {
	assert.Equal(t, "", UserMessage(nil, "x"))
	assert.Equal(t, MsgAIServiceError, UserMessage(apperrors.NewAIServiceError("x", nil), "fallback"))
	assert.Equal(t, MsgValidationError, UserMessage(apperrors.NewValidationError("x", nil), "fallback"))
	assert.Equal(t, "fallback", UserMessage(errors.New("boom"), "fallback"))
	assert.Equal(t, MsgServerError, UserMessage(apperrors.New("Internal server error", 500, "", nil), ""))
}
