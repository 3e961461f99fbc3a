package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/pageza/recipebook/backend/config"
	"github.com/pageza/recipebook/backend/internal/app"
	"github.com/pageza/recipebook/backend/internal/metrics"
	"github.com/pageza/recipebook/backend/internal/model"
	"github.com/pageza/recipebook/backend/internal/service"
)

const batchSize = 5 // Number of recipes to generate before pausing

// batchPause is the wait between batches; tests set it to zero.
var batchPause = 2 * time.Second

var recipeTitles = []string{
	"Lemon Herb Roast Chicken",
	"Mushroom Risotto",
	"Black Bean Tacos",
	"Miso Glazed Salmon",
	"Shakshuka",
	"Butternut Squash Soup",
	"Chicken Tikka Masala",
	"Greek Salad",
	"Beef Bulgogi",
	"Pad Thai",
	"French Onion Soup",
	"Banana Bread",
	"Falafel Wraps",
	"Paella Valenciana",
	"Korean Fried Cauliflower",
}

func main() {
	configPath := flag.String("config", "", "Path to a config file")
	generate := flag.Int("generate", 0, "Also generate this many recipes with the AI assistant")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zl, err := app.NewLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer zl.Sync() //nolint:errcheck

	ctx := context.Background()
	recipeStore, closeStore, err := app.OpenStore(ctx, cfg.Database, zl)
	if err != nil {
		zl.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer closeStore(ctx) //nolint:errcheck

	// Seeding replaces the collection outright, so no image host is needed.
	recipes := service.NewRecipeService(recipeStore, nil, zl)

	ids, err := recipes.Seed(ctx)
	if err != nil {
		zl.Fatal("Failed to seed database", zap.Error(err))
	}
	zl.Info("Seeded sample recipes", zap.Int("count", len(ids)))

	if *generate > 0 {
		if !cfg.AI.Enabled {
			zl.Fatal("AI features are disabled, cannot generate recipes")
		}
		ai := service.NewAIService(cfg.AI, zl, metrics.New())
		created := generateRecipes(ctx, ai, recipes, *generate, zl)
		zl.Info("Generated recipes", zap.Int("requested", *generate), zap.Int("created", created))
	}
}

// generateRecipes asks the assistant for complete recipes and stores them.
// Failures are logged and skipped.
func generateRecipes(ctx context.Context, ai service.IAIService, recipes service.IRecipeService, n int, zl *zap.Logger) int {
	created := 0
	for i := 0; i < n; i++ {
		title := recipeTitles[i%len(recipeTitles)]
		if i >= len(recipeTitles) {
			title = fmt.Sprintf("%s #%d", title, i/len(recipeTitles)+1)
		}

		draft, err := ai.GenerateCompleteRecipe(ctx, title)
		if err != nil {
			zl.Warn("Failed to generate recipe", zap.String("title", title), zap.Error(err))
			continue
		}

		recipe := model.Recipe{
			Title:        title,
			Description:  draft.Description,
			Ingredients:  draft.Ingredients,
			Instructions: draft.Instructions,
			PrepTime:     draft.PrepTime,
			CookTime:     draft.CookTime,
			CuisineType:  draft.CuisineType,
			Tags:         draft.Tags,
		}
		id, err := recipes.CreateRecipe(ctx, &recipe)
		if err != nil {
			zl.Warn("Failed to save recipe", zap.String("title", title), zap.Error(err))
			continue
		}
		created++
		zl.Info("Created recipe", zap.String("id", id), zap.String("title", title))

		// Small pause between batches to stay under provider rate limits
		if (i+1)%batchSize == 0 && i+1 < n {
			time.Sleep(batchPause)
		}
	}
	return created
}
