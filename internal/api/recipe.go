package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pageza/recipebook/backend/internal/apperrors"
	"github.com/pageza/recipebook/backend/internal/model"
	"github.com/pageza/recipebook/backend/internal/service"
)

type RecipeHandler struct {
	recipes service.IRecipeService
	logger  *zap.Logger
}

func NewRecipeHandler(recipes service.IRecipeService, log *zap.Logger) *RecipeHandler {
	return &RecipeHandler{recipes: recipes, logger: log}
}

func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup) {
	recipes := router.Group("/recipes")
	{
		recipes.GET("", h.ListRecipes)
		recipes.POST("", h.CreateRecipe)
		recipes.GET("/facets", h.Facets)
		recipes.GET("/:id", h.GetRecipe)
		recipes.PUT("/:id", h.UpdateRecipe)
		recipes.DELETE("/:id", h.DeleteRecipe)
	}
}

// parseFilter reads q, cuisine, maxTotalTime and tags from the query string.
func parseFilter(c *gin.Context) (model.RecipeFilter, error) {
	f := model.RecipeFilter{
		Title:       strings.TrimSpace(c.Query("q")),
		CuisineType: strings.TrimSpace(c.Query("cuisine")),
	}

	if raw := c.Query("maxTotalTime"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			return f, apperrors.NewValidationError("Invalid maxTotalTime", raw)
		}
		f.MaxTotalTime = &v
	}

	if raw := c.Query("tags"); raw != "" {
		for _, tag := range strings.Split(raw, ",") {
			if tag = strings.TrimSpace(tag); tag != "" {
				f.Tags = append(f.Tags, tag)
			}
		}
	}
	return f, nil
}

func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	filter, err := parseFilter(c)
	if err != nil {
		respondError(c, err, "Failed to fetch recipes")
		return
	}

	recipes, err := h.recipes.ListRecipes(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err, "Failed to fetch recipes")
		return
	}
	if recipes == nil {
		recipes = []model.RecipeSummary{}
	}
	c.JSON(http.StatusOK, recipes)
}

func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	recipe, err := h.recipes.GetRecipe(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to fetch recipe")
		return
	}
	c.JSON(http.StatusOK, recipe)
}

func (h *RecipeHandler) CreateRecipe(c *gin.Context) {
	var recipe model.Recipe
	if err := c.ShouldBindJSON(&recipe); err != nil {
		respondError(c, apperrors.NewValidationError("Invalid request body", err.Error()), "Failed to create recipe")
		return
	}

	id, err := h.recipes.CreateRecipe(c.Request.Context(), &recipe)
	if err != nil {
		respondError(c, err, "Failed to create recipe")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

func (h *RecipeHandler) UpdateRecipe(c *gin.Context) {
	var recipe model.Recipe
	if err := c.ShouldBindJSON(&recipe); err != nil {
		respondError(c, apperrors.NewValidationError("Invalid request body", err.Error()), "Failed to update recipe")
		return
	}

	updated, err := h.recipes.UpdateRecipe(c.Request.Context(), c.Param("id"), &recipe)
	if err != nil {
		respondError(c, err, "Failed to update recipe")
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *RecipeHandler) DeleteRecipe(c *gin.Context) {
	if err := h.recipes.DeleteRecipe(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err, "Failed to delete recipe")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Facets returns the distinct cuisine types and tags
func (h *RecipeHandler) Facets(c *gin.Context) {
	facets, err := h.recipes.Facets(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to fetch recipes")
		return
	}
	c.JSON(http.StatusOK, facets)
}
