package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pageza/recipebook/backend/internal/apperrors"
	"github.com/pageza/recipebook/backend/internal/logger"
	"github.com/pageza/recipebook/backend/internal/metrics"
	"github.com/pageza/recipebook/backend/internal/model"
	"github.com/pageza/recipebook/backend/internal/store"
)

const (
	imageDeleteTimeout = 30 * time.Second
	cleanupConcurrency = 8
)

// Facets are the distinct values the recipe list can be filtered by
type Facets struct {
	CuisineTypes []string `json:"cuisineTypes"`
	Tags         []string `json:"tags"`
}

// CleanupResult reports what Cleanup removed
type CleanupResult struct {
	DeletedRecipes int64 `json:"deletedRecipes"`
	DeletedImages  int   `json:"deletedImages"`
}

// RecipeOption configures a RecipeService
type RecipeOption func(*RecipeService)

// WithClock replaces the time source.
func WithClock(now func() time.Time) RecipeOption {
	return func(s *RecipeService) { s.now = now }
}

// WithMetrics records image deletions on m.
func WithMetrics(m *metrics.Collector) RecipeOption {
	return func(s *RecipeService) { s.metrics = m }
}

// RecipeService handles recipe operations
type RecipeService struct {
	store   store.RecipeStore
	images  ImageProvider
	logger  *zap.Logger
	metrics *metrics.Collector
	now     func() time.Time

	// pending tracks image deletions running after their request returned
	pending sync.WaitGroup
}

// NewRecipeService creates a new RecipeService instance. images may be nil,
// in which case stored image URLs are never deleted remotely.
func NewRecipeService(s store.RecipeStore, images ImageProvider, log *zap.Logger, opts ...RecipeOption) *RecipeService {
	svc := &RecipeService{
		store:  s,
		images: images,
		logger: logger.OrNop(log).Named("recipes"),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// GetRecipe retrieves a recipe by ID
func (s *RecipeService) GetRecipe(ctx context.Context, id string) (*model.Recipe, error) {
	return s.store.Get(ctx, id)
}

// ListRecipes returns summaries matching filter, newest first
func (s *RecipeService) ListRecipes(ctx context.Context, filter model.RecipeFilter) ([]model.RecipeSummary, error) {
	return s.store.List(ctx, filter)
}

// CreateRecipe stores a new recipe and returns its id
func (s *RecipeService) CreateRecipe(ctx context.Context, recipe *model.Recipe) (string, error) {
	r := *recipe
	r.ID = ""
	r.Normalize()
	if err := validateRecipe(&r); err != nil {
		return "", err
	}

	now := s.now().UTC()
	r.CreatedAt = now
	r.UpdatedAt = now

	id, err := s.store.Insert(ctx, &r)
	if err != nil {
		return "", err
	}
	s.logger.Info("recipe created", zap.String("id", id), zap.String("title", r.Title))
	return id, nil
}

// UpdateRecipe replaces the editable fields of an existing recipe. When the
// image changed, the previous one is deleted in the background.
func (s *RecipeService) UpdateRecipe(ctx context.Context, id string, recipe *model.Recipe) (*model.Recipe, error) {
	current, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	r := *recipe
	r.Normalize()
	if err := validateRecipe(&r); err != nil {
		return nil, err
	}

	r.ID = current.ID
	r.CreatedAt = current.CreatedAt
	r.UpdatedAt = s.now().UTC()
	if r.UpdatedAt.Before(current.UpdatedAt) {
		r.UpdatedAt = current.UpdatedAt
	}

	updated, err := s.store.Replace(ctx, id, &r)
	if err != nil {
		return nil, err
	}

	if current.ImageURL != "" && current.ImageURL != r.ImageURL {
		s.deleteImageAsync(current.ImageURL)
	}
	return updated, nil
}

// DeleteRecipe removes a recipe and, best effort, its image
func (s *RecipeService) DeleteRecipe(ctx context.Context, id string) error {
	current, err := s.store.Get(ctx, id)
	if err != nil {
		return err
	}

	if current.ImageURL != "" {
		s.deleteImage(ctx, current.ImageURL)
	}

	n, err := s.store.Delete(ctx, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return apperrors.NewNotFoundError("Recipe")
	}
	s.logger.Info("recipe deleted", zap.String("id", id))
	return nil
}

func (s *RecipeService) ListCuisineTypes(ctx context.Context) ([]string, error) {
	return s.store.DistinctCuisineTypes(ctx)
}

func (s *RecipeService) ListTags(ctx context.Context) ([]string, error) {
	return s.store.DistinctTags(ctx)
}

// Facets returns the sorted distinct cuisine types and tags
func (s *RecipeService) Facets(ctx context.Context) (*Facets, error) {
	cuisines, err := s.ListCuisineTypes(ctx)
	if err != nil {
		return nil, err
	}
	tags, err := s.ListTags(ctx)
	if err != nil {
		return nil, err
	}
	return &Facets{CuisineTypes: cuisines, Tags: tags}, nil
}

// Seed wipes the collection and inserts the sample recipes
func (s *RecipeService) Seed(ctx context.Context) ([]string, error) {
	if _, err := s.store.DeleteAll(ctx); err != nil {
		return nil, err
	}

	recipes := SeedRecipes(s.now().UTC())
	for i := range recipes {
		recipes[i].Normalize()
	}

	ids, err := s.store.InsertMany(ctx, recipes)
	if err != nil {
		return nil, err
	}
	s.logger.Info("database seeded", zap.Int("count", len(ids)))
	return ids, nil
}

// Cleanup deletes every remote image concurrently, then every recipe.
func (s *RecipeService) Cleanup(ctx context.Context) (*CleanupResult, error) {
	recipes, err := s.store.All(ctx)
	if err != nil {
		return nil, err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cleanupConcurrency)

	images := 0
	for _, r := range recipes {
		if r.ImageURL == "" {
			continue
		}
		images++
		url := r.ImageURL
		g.Go(func() error {
			s.deleteImage(gctx, url)
			return nil
		})
	}
	_ = g.Wait()

	n, err := s.store.DeleteAll(ctx)
	if err != nil {
		return nil, err
	}
	s.logger.Info("cleanup complete", zap.Int64("recipes", n), zap.Int("images", images))
	return &CleanupResult{DeletedRecipes: n, DeletedImages: images}, nil
}

// CheckConnection reports the database name and its collections
func (s *RecipeService) CheckConnection(ctx context.Context) (*store.ConnectionInfo, error) {
	return s.store.Check(ctx)
}

// Wait blocks until background image deletions finish or ctx is done.
func (s *RecipeService) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.pending.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *RecipeService) deleteImageAsync(url string) {
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		ctx, cancel := context.WithTimeout(context.Background(), imageDeleteTimeout)
		defer cancel()
		s.deleteImage(ctx, url)
	}()
}

// deleteImage never fails the caller; errors are logged and counted.
func (s *RecipeService) deleteImage(ctx context.Context, url string) {
	if s.images == nil {
		s.metrics.ImageDeleted(metrics.OutcomeSkipped)
		return
	}
	if err := s.images.Delete(ctx, url); err != nil {
		s.metrics.ImageDeleted(metrics.OutcomeError)
		s.logger.Error("failed to delete image", zap.String("url", url), zap.Error(err))
		return
	}
	s.metrics.ImageDeleted(metrics.OutcomeSuccess)
}

// validateRecipe reports field errors as a ValidationError whose details map
// each field to its message.
func validateRecipe(r *model.Recipe) error {
	if err := r.Validate(); err != nil {
		return apperrors.NewValidationError(err.Error(), err)
	}
	return nil
}
