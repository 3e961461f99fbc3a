package service

import (
	"context"
	"io"

	"github.com/pageza/recipebook/backend/internal/model"
	"github.com/pageza/recipebook/backend/internal/store"
)

// IRecipeService defines the interface for recipe operations
type IRecipeService interface {
	GetRecipe(ctx context.Context, id string) (*model.Recipe, error)
	ListRecipes(ctx context.Context, filter model.RecipeFilter) ([]model.RecipeSummary, error)
	CreateRecipe(ctx context.Context, recipe *model.Recipe) (string, error)
	UpdateRecipe(ctx context.Context, id string, recipe *model.Recipe) (*model.Recipe, error)
	DeleteRecipe(ctx context.Context, id string) error
	Facets(ctx context.Context) (*Facets, error)
	Seed(ctx context.Context) ([]string, error)
	Cleanup(ctx context.Context) (*CleanupResult, error)
	CheckConnection(ctx context.Context) (*store.ConnectionInfo, error)
}

// IAIService defines the language-model assisted operations
type IAIService interface {
	GenerateDescription(ctx context.Context, title string, ingredients, instructions []string) (string, error)
	SuggestTags(ctx context.Context, title string, ingredients, instructions []string) ([]string, error)
	GenerateCompleteRecipe(ctx context.Context, title string) (*RecipeDraft, error)
}

// ImageProvider stores recipe images with a remote host.
type ImageProvider interface {
	// Name is the human readable provider name used in status messages.
	Name() string
	Upload(ctx context.Context, filename, contentType string, body io.Reader) (*UploadedImage, error)
	// Delete removes the image behind url. URLs the provider does not
	// recognise are ignored.
	Delete(ctx context.Context, url string) error
	// Check verifies credentials and returns the number of stored images
	// when the provider reports one.
	Check(ctx context.Context) (int, error)
}

// UploadedImage describes a stored image
type UploadedImage struct {
	ID       string `json:"id"`
	Filename string `json:"filename"`
	URL      string `json:"url"`
}
