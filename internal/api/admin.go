package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pageza/recipebook/backend/internal/service"
)

// AdminHandler serves the maintenance endpoints
type AdminHandler struct {
	recipes service.IRecipeService
	logger  *zap.Logger
}

func NewAdminHandler(recipes service.IRecipeService, log *zap.Logger) *AdminHandler {
	return &AdminHandler{recipes: recipes, logger: log}
}

func (h *AdminHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/seed", h.Seed)
	router.POST("/cleanup", h.Cleanup)
	router.GET("/test-db", h.TestDB)
}

func (h *AdminHandler) Seed(c *gin.Context) {
	ids, err := h.recipes.Seed(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to seed database")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"message":     fmt.Sprintf("Successfully seeded database with %d recipes", len(ids)),
		"insertedIds": ids,
	})
}

func (h *AdminHandler) Cleanup(c *gin.Context) {
	res, err := h.recipes.Cleanup(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to cleanup")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":        true,
		"deletedRecipes": res.DeletedRecipes,
		"deletedImages":  res.DeletedImages,
	})
}

// TestDB lists the database collections as a connection smoke test
func (h *AdminHandler) TestDB(c *gin.Context) {
	info, err := h.recipes.CheckConnection(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to connect to database")
		return
	}

	message := fmt.Sprintf("Found %d collection(s)", len(info.Collections))
	if len(info.Collections) == 0 {
		message = "Database is empty, which is expected for a new setup"
	}
	c.JSON(http.StatusOK, gin.H{
		"status":       "Connected successfully!",
		"collections":  info.Collections,
		"message":      message,
		"databaseName": info.DatabaseName,
	})
}
