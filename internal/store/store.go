// Package store persists recipes. MongoStore is the primary backend;
// SQLStore serves postgres and sqlite deployments.
package store

import (
	"context"
	"sort"

	"github.com/pageza/recipebook/backend/internal/apperrors"
	"github.com/pageza/recipebook/backend/internal/model"
)

// RecipeStore is the data-access contract the recipe service depends on.
// Lookups by an id the backend cannot parse report not found.
type RecipeStore interface {
	Get(ctx context.Context, id string) (*model.Recipe, error)
	List(ctx context.Context, filter model.RecipeFilter) ([]model.RecipeSummary, error)
	All(ctx context.Context) ([]model.Recipe, error)
	Insert(ctx context.Context, recipe *model.Recipe) (string, error)
	InsertMany(ctx context.Context, recipes []model.Recipe) ([]string, error)
	// Replace overwrites the stored recipe and returns it as persisted.
	Replace(ctx context.Context, id string, recipe *model.Recipe) (*model.Recipe, error)
	Delete(ctx context.Context, id string) (int64, error)
	DeleteAll(ctx context.Context) (int64, error)
	DistinctCuisineTypes(ctx context.Context) ([]string, error)
	DistinctTags(ctx context.Context) ([]string, error)
	Check(ctx context.Context) (*ConnectionInfo, error)
}

// ConnectionInfo describes the backing database for the connection check.
type ConnectionInfo struct {
	DatabaseName string   `json:"databaseName"`
	Collections  []string `json:"collections"`
}

func errRecipeNotFound() error {
	return apperrors.NewNotFoundError("Recipe")
}

func sortedUnique(values []string) []string {
	set := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := set[v]; ok {
			continue
		}
		set[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
