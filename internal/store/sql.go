package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pageza/recipebook/backend/internal/apperrors"
	"github.com/pageza/recipebook/backend/internal/logger"
	"github.com/pageza/recipebook/backend/internal/model"
)

// SQLStore keeps recipes in a relational table through gorm.
type SQLStore struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewSQLStore wraps db. Call Migrate before first use on a fresh database.
func NewSQLStore(db *gorm.DB, log *zap.Logger) *SQLStore {
	return &SQLStore{db: db, logger: logger.OrNop(log)}
}

// Migrate creates or updates the recipes table.
func (s *SQLStore) Migrate(ctx context.Context) error {
	return s.db.WithContext(ctx).AutoMigrate(&model.Recipe{})
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func (s *SQLStore) Get(ctx context.Context, id string) (*model.Recipe, error) {
	var recipe model.Recipe
	err := s.db.WithContext(ctx).First(&recipe, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errRecipeNotFound()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find recipe: %w", err)
	}
	return &recipe, nil
}

func (s *SQLStore) List(ctx context.Context, filter model.RecipeFilter) ([]model.RecipeSummary, error) {
	query := s.db.WithContext(ctx).Model(&model.Recipe{})

	if filter.Title != "" {
		like := "%" + likeEscaper.Replace(strings.ToLower(filter.Title)) + "%"
		query = query.Where(`LOWER(title) LIKE ? ESCAPE '\'`, like)
	}
	if filter.CuisineType != "" {
		query = query.Where("cuisine_type = ?", filter.CuisineType)
	}
	if filter.MaxTotalTime != nil {
		query = query.Where("prep_time + cook_time <= ?", *filter.MaxTotalTime)
	}

	var recipes []model.Recipe
	if err := query.Order("created_at DESC").Find(&recipes).Error; err != nil {
		return nil, fmt.Errorf("failed to list recipes: %w", err)
	}

	// Tag containment is checked here so the query stays portable across
	// postgres jsonb and sqlite text columns.
	out := make([]model.RecipeSummary, 0, len(recipes))
	for _, r := range recipes {
		if model.HasAllTags(r.Tags, filter.Tags) {
			out = append(out, r.Summary())
		}
	}
	return out, nil
}

func (s *SQLStore) All(ctx context.Context) ([]model.Recipe, error) {
	var recipes []model.Recipe
	if err := s.db.WithContext(ctx).Order("created_at DESC").Find(&recipes).Error; err != nil {
		return nil, fmt.Errorf("failed to load recipes: %w", err)
	}
	return recipes, nil
}

func (s *SQLStore) Insert(ctx context.Context, recipe *model.Recipe) (string, error) {
	row := *recipe
	row.ID = uuid.NewString()
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return "", fmt.Errorf("failed to insert recipe: %w", err)
	}
	return row.ID, nil
}

func (s *SQLStore) InsertMany(ctx context.Context, recipes []model.Recipe) ([]string, error) {
	if len(recipes) == 0 {
		return []string{}, nil
	}

	rows := make([]model.Recipe, len(recipes))
	ids := make([]string, len(recipes))
	for i, r := range recipes {
		r.ID = uuid.NewString()
		rows[i] = r
		ids[i] = r.ID
	}

	if err := s.db.WithContext(ctx).Create(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to insert recipes: %w", err)
	}
	return ids, nil
}

func (s *SQLStore) Replace(ctx context.Context, id string, recipe *model.Recipe) (*model.Recipe, error) {
	var out model.Recipe
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.Recipe{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return errRecipeNotFound()
		}

		row := *recipe
		row.ID = id
		if err := tx.Select("*").Where("id = ?", id).Updates(&row).Error; err != nil {
			return err
		}
		return tx.First(&out, "id = ?", id).Error
	})
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to replace recipe: %w", err)
	}
	return &out, nil
}

func (s *SQLStore) Delete(ctx context.Context, id string) (int64, error) {
	res := s.db.WithContext(ctx).Delete(&model.Recipe{}, "id = ?", id)
	if res.Error != nil {
		return 0, fmt.Errorf("failed to delete recipe: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func (s *SQLStore) DeleteAll(ctx context.Context) (int64, error) {
	res := s.db.WithContext(ctx).Where("1 = 1").Delete(&model.Recipe{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to delete recipes: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func (s *SQLStore) DistinctCuisineTypes(ctx context.Context) ([]string, error) {
	var values []string
	if err := s.db.WithContext(ctx).Model(&model.Recipe{}).Distinct().Pluck("cuisine_type", &values).Error; err != nil {
		return nil, fmt.Errorf("failed to read cuisine types: %w", err)
	}
	return sortedUnique(values), nil
}

func (s *SQLStore) DistinctTags(ctx context.Context) ([]string, error) {
	var rows []model.Recipe
	if err := s.db.WithContext(ctx).Select("tags").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to read tags: %w", err)
	}

	var values []string
	for _, r := range rows {
		values = append(values, r.Tags...)
	}
	return sortedUnique(values), nil
}

func (s *SQLStore) Check(ctx context.Context) (*ConnectionInfo, error) {
	sqlDB, err := s.db.DB()
	if err != nil {
		return nil, err
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	tables, err := s.db.WithContext(ctx).Migrator().GetTables()
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	return &ConnectionInfo{DatabaseName: s.db.Migrator().CurrentDatabase(), Collections: nonNil(tables)}, nil
}
