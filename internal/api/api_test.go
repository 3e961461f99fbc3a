package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/pageza/recipebook/backend/internal/apperrors"
	"github.com/pageza/recipebook/backend/internal/metrics"
	"github.com/pageza/recipebook/backend/internal/middleware"
	"github.com/pageza/recipebook/backend/internal/mocks"
	"github.com/pageza/recipebook/backend/internal/model"
	"github.com/pageza/recipebook/backend/internal/service"
	"github.com/pageza/recipebook/backend/internal/store"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testEnv struct {
	router  *gin.Engine
	recipes *mocks.MockRecipeService
	ai      *mocks.MockAIService
	images  *mocks.MockImageProvider
}

func setupRouter(t *testing.T, adminSecret string) *testEnv {
	t.Helper()
	env := &testEnv{
		recipes: new(mocks.MockRecipeService),
		ai:      new(mocks.MockAIService),
		images:  new(mocks.MockImageProvider),
	}
	env.router = gin.New()
	RegisterRoutes(env.router, Dependencies{
		Recipes:     env.recipes,
		AI:          env.ai,
		Images:      env.images,
		AdminSecret: adminSecret,
		Metrics:     metrics.New(),
		Version:     "test",
	})
	t.Cleanup(func() {
		env.recipes.AssertExpectations(t)
		env.ai.AssertExpectations(t)
		env.images.AssertExpectations(t)
	})
	return env
}

func (e *testEnv) do(method, path string, body interface{}) *httptest.ResponseRecorder {
	var r io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestHealth(t *testing.T) {
	env := setupRouter(t, "")
	for _, path := range []string{"/health", "/api/health"} {
		w := env.do(http.MethodGet, path, nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "healthy", decode(t, w)["status"])
	}
}

func TestListRecipesFilters(t *testing.T) {
	env := setupRouter(t, "")
	summaries := []model.RecipeSummary{{ID: "1", Title: "Pie", Tags: []string{"dessert"}}}

	env.recipes.On("ListRecipes", mock.Anything, model.RecipeFilter{
		Title:        "pie",
		CuisineType:  "American",
		MaxTotalTime: model.IntPtr(60),
		Tags:         []string{"dessert", "baking"},
	}).Return(summaries, nil).Once()

	w := env.do(http.MethodGet, "/api/recipes?q=pie&cuisine=American&maxTotalTime=60&tags=dessert,+baking,", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var got []model.RecipeSummary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, summaries, got)
}

func TestListRecipesEmptyIsArray(t *testing.T) {
	env := setupRouter(t, "")
	env.recipes.On("ListRecipes", mock.Anything, model.RecipeFilter{}).Return(nil, nil).Once()

	w := env.do(http.MethodGet, "/api/recipes", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", w.Body.String())
}

func TestListRecipesBadMaxTime(t *testing.T) {
	env := setupRouter(t, "")
	w := env.do(http.MethodGet, "/api/recipes?maxTotalTime=soon", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListRecipesFailure(t *testing.T) {
	env := setupRouter(t, "")
	env.recipes.On("ListRecipes", mock.Anything, mock.Anything).Return(nil, errors.New("db down")).Once()

	w := env.do(http.MethodGet, "/api/recipes", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Failed to fetch recipes", decode(t, w)["error"])
}

func TestGetRecipe(t *testing.T) {
	env := setupRouter(t, "")
	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	env.recipes.On("GetRecipe", mock.Anything, "abc").
		Return(&model.Recipe{ID: "abc", Title: "Soup", CreatedAt: created, UpdatedAt: created}, nil).Once()
	env.recipes.On("GetRecipe", mock.Anything, "missing").
		Return(nil, apperrors.NewNotFoundError("Recipe")).Once()

	w := env.do(http.MethodGet, "/api/recipes/abc", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "abc", body["_id"])
	assert.Equal(t, "2024-01-02T03:04:05Z", body["createdAt"])

	w = env.do(http.MethodGet, "/api/recipes/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Recipe not found", decode(t, w)["error"])
}

func TestCreateRecipe(t *testing.T) {
	env := setupRouter(t, "")
	env.recipes.On("CreateRecipe", mock.Anything, mock.MatchedBy(func(r *model.Recipe) bool {
		return r.Title == "Soup" && len(r.Ingredients) == 2
	})).Return("new-id", nil).Once()

	w := env.do(http.MethodPost, "/api/recipes", map[string]interface{}{
		"title":        "Soup",
		"ingredients":  []string{"water", "salt"},
		"instructions": []string{"boil"},
		"prepTime":     5,
		"cookTime":     10,
	})
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "new-id", decode(t, w)["id"])
}

func TestCreateRecipeValidation(t *testing.T) {
	env := setupRouter(t, "")
	env.recipes.On("CreateRecipe", mock.Anything, mock.Anything).
		Return("", apperrors.NewValidationError("title: cannot be blank.", nil)).Once()

	w := env.do(http.MethodPost, "/api/recipes", map[string]interface{}{"title": ""})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := decode(t, w)
	assert.Equal(t, "title: cannot be blank.", body["error"])
	assert.Equal(t, apperrors.CodeValidation, body["code"])
}

func TestCreateRecipeMalformedBody(t *testing.T) {
	env := setupRouter(t, "")
	req := httptest.NewRequest(http.MethodPost, "/api/recipes", bytes.NewBufferString("{"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateRecipe(t *testing.T) {
	env := setupRouter(t, "")
	env.recipes.On("UpdateRecipe", mock.Anything, "abc", mock.Anything).
		Return(&model.Recipe{ID: "abc", Title: "New"}, nil).Once()
	env.recipes.On("UpdateRecipe", mock.Anything, "gone", mock.Anything).
		Return(nil, apperrors.NewNotFoundError("Recipe")).Once()
	env.recipes.On("UpdateRecipe", mock.Anything, "boom", mock.Anything).
		Return(nil, errors.New("write failed")).Once()

	w := env.do(http.MethodPut, "/api/recipes/abc", map[string]interface{}{"title": "New"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "New", decode(t, w)["title"])

	w = env.do(http.MethodPut, "/api/recipes/gone", map[string]interface{}{"title": "New"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(http.MethodPut, "/api/recipes/boom", map[string]interface{}{"title": "New"})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	body := decode(t, w)
	assert.Equal(t, "Failed to update recipe", body["error"])
	assert.Equal(t, "write failed", body["details"])
}

func TestDeleteRecipe(t *testing.T) {
	env := setupRouter(t, "")
	env.recipes.On("DeleteRecipe", mock.Anything, "abc").Return(nil).Once()
	env.recipes.On("DeleteRecipe", mock.Anything, "gone").Return(apperrors.NewNotFoundError("Recipe")).Once()

	w := env.do(http.MethodDelete, "/api/recipes/abc", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decode(t, w)["success"])

	w = env.do(http.MethodDelete, "/api/recipes/gone", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Recipe not found", decode(t, w)["error"])
}

func TestFacets(t *testing.T) {
	env := setupRouter(t, "")
	env.recipes.On("Facets", mock.Anything).
		Return(&service.Facets{CuisineTypes: []string{"Thai"}, Tags: []string{"spicy"}}, nil).Once()

	w := env.do(http.MethodGet, "/api/recipes/facets", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"cuisineTypes":["Thai"],"tags":["spicy"]}`, w.Body.String())
}

func TestAIActions(t *testing.T) {
	env := setupRouter(t, "")
	ingredients := []string{"eggs"}
	instructions := []string{"whisk"}

	env.ai.On("GenerateDescription", mock.Anything, "Omelette", ingredients, instructions).Return("Fluffy.", nil).Once()
	env.ai.On("SuggestTags", mock.Anything, "Omelette", ingredients, instructions).Return([]string{"a", "b", "c"}, nil).Once()
	env.ai.On("GenerateCompleteRecipe", mock.Anything, "Omelette").
		Return(&service.RecipeDraft{Description: "d", CuisineType: "French", PrepTime: 5, CookTime: 5}, nil).Once()

	req := AIRequest{Title: "Omelette", Ingredients: ingredients, Instructions: instructions}

	req.Action = service.ActionGenerateDescription
	w := env.do(http.MethodPost, "/api/ai", req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Fluffy.", decode(t, w)["description"])

	req.Action = service.ActionSuggestTags
	w = env.do(http.MethodPost, "/api/ai", req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"tags":["a","b","c"]}`, w.Body.String())

	req.Action = service.ActionGenerateComplete
	w = env.do(http.MethodPost, "/api/ai", req)
	assert.Equal(t, http.StatusOK, w.Code)
	recipe := decode(t, w)["recipe"].(map[string]interface{})
	assert.Equal(t, "French", recipe["cuisineType"])
}

func TestAIInvalidAction(t *testing.T) {
	env := setupRouter(t, "")
	w := env.do(http.MethodPost, "/api/ai", AIRequest{Action: "make-coffee"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid action", decode(t, w)["error"])
}

func TestAIFailures(t *testing.T) {
	env := setupRouter(t, "")
	env.ai.On("SuggestTags", mock.Anything, "", mock.Anything, mock.Anything).
		Return(nil, apperrors.NewValidationError("missing required fields", []string{"title"})).Once()
	env.ai.On("GenerateCompleteRecipe", mock.Anything, "Soup").
		Return(nil, apperrors.NewAIServiceError("AI request failed", errors.New("upstream 502"))).Once()

	w := env.do(http.MethodPost, "/api/ai", AIRequest{Action: service.ActionSuggestTags})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, apperrors.CodeValidation, decode(t, w)["code"])

	w = env.do(http.MethodPost, "/api/ai", AIRequest{Action: service.ActionGenerateComplete, Title: "Soup"})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	body := decode(t, w)
	assert.Equal(t, "Failed to process AI request", body["error"])
	assert.Equal(t, "upstream 502", body["details"])
	assert.Equal(t, apperrors.CodeAIService, body["code"])
}

func TestAIDisabled(t *testing.T) {
	r := gin.New()
	RegisterRoutes(r, Dependencies{Recipes: new(mocks.MockRecipeService)})

	b, _ := json.Marshal(AIRequest{Action: service.ActionGenerateComplete, Title: "x"})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/ai", bytes.NewReader(b)))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func multipartBody(t *testing.T, field, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if field != "" {
		part, err := w.CreateFormFile(field, filename)
		require.NoError(t, err)
		_, _ = part.Write([]byte(content))
	} else {
		require.NoError(t, w.WriteField("other", "value"))
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func TestImageUpload(t *testing.T) {
	env := setupRouter(t, "")
	env.images.On("Upload", mock.Anything, "pie.jpg", mock.Anything, mock.Anything).
		Return(&service.UploadedImage{ID: "img", Filename: "pie.jpg", URL: "https://imagedelivery.net/h/img/recipe"}, nil).Once()

	body, contentType := multipartBody(t, "file", "pie.jpg", "bytes")
	req := httptest.NewRequest(http.MethodPost, "/api/images", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"id":"img","filename":"pie.jpg","url":"https://imagedelivery.net/h/img/recipe"}`, w.Body.String())
}

func TestImageUploadNoFile(t *testing.T) {
	env := setupRouter(t, "")
	body, contentType := multipartBody(t, "", "", "")
	req := httptest.NewRequest(http.MethodPost, "/api/images", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "No file provided", decode(t, w)["error"])
}

func TestImageUploadFailures(t *testing.T) {
	env := setupRouter(t, "")
	env.images.On("Upload", mock.Anything, "a.png", mock.Anything, mock.Anything).
		Return(nil, service.ErrImagesNotConfigured).Once()
	env.images.On("Upload", mock.Anything, "b.png", mock.Anything, mock.Anything).
		Return(nil, errors.New("provider said no")).Once()

	for name, want := range map[string]string{
		"a.png": "Cloudflare credentials not configured",
		"b.png": "Failed to upload image",
	} {
		body, contentType := multipartBody(t, "file", name, "x")
		req := httptest.NewRequest(http.MethodPost, "/api/images", body)
		req.Header.Set("Content-Type", contentType)
		w := httptest.NewRecorder()
		env.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, want, decode(t, w)["error"])
	}
}

func TestImageCheck(t *testing.T) {
	env := setupRouter(t, "")
	env.images.On("Check", mock.Anything).Return(7, nil).Once()

	w := env.do(http.MethodGet, "/api/images", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "Successfully connected to Mock Images", body["message"])
	assert.EqualValues(t, 7, body["imagesCount"])
}

func TestAdminEndpoints(t *testing.T) {
	env := setupRouter(t, "")
	env.recipes.On("Seed", mock.Anything).Return([]string{"a", "b"}, nil).Once()
	env.recipes.On("Cleanup", mock.Anything).Return(&service.CleanupResult{DeletedRecipes: 2, DeletedImages: 1}, nil).Once()
	env.recipes.On("CheckConnection", mock.Anything).
		Return(&store.ConnectionInfo{DatabaseName: "recipes", Collections: []string{}}, nil).Once()

	w := env.do(http.MethodPost, "/api/seed", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Successfully seeded database with 2 recipes", decode(t, w)["message"])

	w = env.do(http.MethodPost, "/api/cleanup", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"deletedRecipes":2,"deletedImages":1}`, w.Body.String())

	w = env.do(http.MethodGet, "/api/test-db", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "Database is empty, which is expected for a new setup", body["message"])
	assert.Equal(t, "recipes", body["databaseName"])
}

func TestAdminEndpointsRequireToken(t *testing.T) {
	env := setupRouter(t, "secret")
	env.recipes.On("Seed", mock.Anything).Return([]string{"a"}, nil).Once()

	w := env.do(http.MethodPost, "/api/seed", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	token, err := middleware.NewAdminToken("secret", nil)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/seed", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSeedFailure(t *testing.T) {
	env := setupRouter(t, "")
	env.recipes.On("Seed", mock.Anything).Return(nil, errors.New("insert failed")).Once()

	w := env.do(http.MethodPost, "/api/seed", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Failed to seed database", decode(t, w)["error"])
}

func TestMetricsEndpoint(t *testing.T) {
	env := setupRouter(t, "")
	w := env.do(http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "go_goroutines")
}
