package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/recipebook/backend/internal/apperrors"
	"github.com/pageza/recipebook/backend/internal/model"
	"github.com/pageza/recipebook/backend/internal/testdb"
)

func TestMongoStoreIntegration(t *testing.T) {
	mdb := testdb.SetupMongo(t)
	s := NewMongoStore(mdb.DB, nil)
	ctx := context.Background()

	ids := seedStore(t, s)
	require.Len(t, ids, 3)

	t.Run("list newest first", func(t *testing.T) {
		got, err := s.List(ctx, model.RecipeFilter{})
		require.NoError(t, err)
		require.Len(t, got, 3)
		assert.Equal(t, "Classic Apple Pie", got[0].Title)
		assert.Equal(t, "Classic Spaghetti Carbonara", got[2].Title)
	})

	t.Run("filters", func(t *testing.T) {
		got, err := s.List(ctx, model.RecipeFilter{Title: "classic", MaxTotalTime: model.IntPtr(40)})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "Classic Spaghetti Carbonara", got[0].Title)

		got, err = s.List(ctx, model.RecipeFilter{Tags: []string{"dinner", "spicy"}})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "Thai", got[0].CuisineType)
	})

	t.Run("malformed id is not found", func(t *testing.T) {
		_, err := s.Get(ctx, "not-an-object-id")
		assert.True(t, apperrors.IsNotFound(err))
	})

	t.Run("replace returns persisted document", func(t *testing.T) {
		r, err := s.Get(ctx, ids[0])
		require.NoError(t, err)
		r.Title = "Carbonara"
		updated, err := s.Replace(ctx, ids[0], r)
		require.NoError(t, err)
		assert.Equal(t, "Carbonara", updated.Title)
		assert.Equal(t, ids[0], updated.ID)
	})

	t.Run("distinct values", func(t *testing.T) {
		cuisines, err := s.DistinctCuisineTypes(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"American", "Italian", "Thai"}, cuisines)
	})

	t.Run("check lists collections", func(t *testing.T) {
		info, err := s.Check(ctx)
		require.NoError(t, err)
		assert.Equal(t, "recipes_test", info.DatabaseName)
		assert.Contains(t, info.Collections, RecipesCollection)
	})

	t.Run("delete", func(t *testing.T) {
		n, err := s.Delete(ctx, ids[1])
		require.NoError(t, err)
		assert.EqualValues(t, 1, n)

		n, err = s.Delete(ctx, ids[1])
		require.NoError(t, err)
		assert.EqualValues(t, 0, n)

		n, err = s.DeleteAll(ctx)
		require.NoError(t, err)
		assert.EqualValues(t, 2, n)
	})
}
