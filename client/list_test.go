package client

import (
	"context"
	"errors"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/recipebook/backend/internal/model"
)

type listerFunc func(ctx context.Context) ([]model.RecipeSummary, error)

func (f listerFunc) ListRecipes(ctx context.Context) ([]model.RecipeSummary, error) { return f(ctx) }

func fixedLister(calls *int, recipes ...model.RecipeSummary) listerFunc {
	return func(context.Context) ([]model.RecipeSummary, error) {
		*calls++
		return recipes, nil
	}
}

func sample() []model.RecipeSummary {
	return []model.RecipeSummary{
		{ID: "1", Title: "Classic Spaghetti Carbonara", CuisineType: "Italian", PrepTime: 15, CookTime: 20, Tags: model.StringArray{"pasta", "quick", "dinner"}},
		{ID: "2", Title: "Spicy Thai Green Curry", CuisineType: "Thai", PrepTime: 20, CookTime: 25, Tags: model.StringArray{"curry", "spicy", "dinner"}},
		{ID: "3", Title: "Classic Apple Pie", CuisineType: "American", PrepTime: 45, CookTime: 50, Tags: model.StringArray{"dessert", "baking"}},
		{ID: "4", Title: "Slow Braised Short Ribs", CuisineType: "Korean", PrepTime: 30, CookTime: 400},
	}
}

func titles(in []model.RecipeSummary) []string {
	out := []string{}
	for _, r := range in {
		out = append(out, r.Title)
	}
	return out
}

func TestRecipeListLoad(t *testing.T) {
	calls := 0
	l := NewRecipeList(fixedLister(&calls, sample()...))
	assert.True(t, l.IsLoading())

	require.NoError(t, l.Load(context.Background()))
	assert.False(t, l.IsLoading())
	assert.Equal(t, []string{"American", "Italian", "Korean", "Thai"}, l.CuisineTypes())
	assert.Equal(t, []string{"baking", "curry", "dessert", "dinner", "pasta", "quick", "spicy"}, l.AvailableTags())

	// The default time bound hides the 430 minute recipe.
	assert.Len(t, l.Recipes(), 3)
}

func TestRecipeListFiltersWithoutRefetch(t *testing.T) {
	calls := 0
	l := NewRecipeList(fixedLister(&calls, sample()...))
	require.NoError(t, l.Load(context.Background()))

	l.SetSearch("CLASSIC")
	assert.Equal(t, []string{"Classic Spaghetti Carbonara", "Classic Apple Pie"}, titles(l.Recipes()))

	l.SetMaxTotalTime(40)
	assert.Equal(t, []string{"Classic Spaghetti Carbonara"}, titles(l.Recipes()))

	l.SetSearch("")
	l.SetMaxTotalTime(1000)
	l.SetTags([]string{"dinner"})
	assert.Equal(t, []string{"Classic Spaghetti Carbonara", "Spicy Thai Green Curry"}, titles(l.Recipes()))

	l.ToggleTag("spicy")
	assert.Equal(t, []string{"Spicy Thai Green Curry"}, titles(l.Recipes()))
	l.ToggleTag("spicy")
	assert.Equal(t, []string{"dinner"}, l.SelectedTags())

	l.SetCuisine("Italian")
	assert.Equal(t, []string{"Classic Spaghetti Carbonara"}, titles(l.Recipes()))

	l.SetTags([]string{"pasta", "dessert"})
	assert.Empty(t, l.Recipes())

	l.ClearAllFilters()
	assert.Equal(t, model.DefaultMaxTotalTime, *l.Filter().MaxTotalTime)
	assert.Len(t, l.Recipes(), 3)

	assert.Equal(t, 1, calls)
}

func TestRecipeListLoadFailure(t *testing.T) {
	l := NewRecipeList(listerFunc(func(context.Context) ([]model.RecipeSummary, error) {
		return nil, errors.New("offline")
	}))

	assert.Error(t, l.Load(context.Background()))
	assert.False(t, l.IsLoading())
	assert.Error(t, l.Err())
	assert.Empty(t, l.Recipes())
}

func TestRecipeListRemove(t *testing.T) {
	calls := 0
	l := NewRecipeList(fixedLister(&calls, sample()...))
	require.NoError(t, l.Load(context.Background()))

	l.Remove("2")
	assert.NotContains(t, l.CuisineTypes(), "Thai")
	assert.NotContains(t, l.AvailableTags(), "curry")
	assert.Len(t, l.Recipes(), 2)
}

func TestRecipeListTagFilterProperty(t *testing.T) {
	faker := gofakeit.New(7)
	pool := []string{"quick", "vegan", "spicy", "dinner", "dessert"}

	var recipes []model.RecipeSummary
	for i := 0; i < 50; i++ {
		var tags model.StringArray
		for _, tag := range pool {
			if faker.Bool() {
				tags = append(tags, tag)
			}
		}
		recipes = append(recipes, model.RecipeSummary{ID: faker.UUID(), Title: faker.Dinner(), Tags: tags})
	}

	calls := 0
	l := NewRecipeList(fixedLister(&calls, recipes...))
	require.NoError(t, l.Load(context.Background()))

	for i := 0; i < 20; i++ {
		want := []string{pool[faker.Number(0, 4)], pool[faker.Number(0, 4)]}
		l.SetTags(want)
		for _, r := range l.Recipes() {
			for _, tag := range want {
				assert.Contains(t, []string(r.Tags), tag)
			}
		}
	}
}
