package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pageza/recipebook/backend/internal/apperrors"
	"github.com/pageza/recipebook/backend/internal/logger"
	"github.com/pageza/recipebook/backend/internal/metrics"
	"github.com/pageza/recipebook/backend/internal/middleware"
	"github.com/pageza/recipebook/backend/internal/service"
)

// Dependencies holds everything the route handlers need. AI and Images may
// be nil when the feature is not configured.
type Dependencies struct {
	Recipes     service.IRecipeService
	AI          service.IAIService
	Images      service.ImageProvider
	AIRateLimit gin.HandlerFunc
	AdminSecret string
	Metrics     *metrics.Collector
	Version     string
	Logger      *zap.Logger
}

// HealthCheck returns the health status of the API
func HealthCheck(version string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"message": "Recipe API is running",
			"version": version,
		})
	}
}

// RegisterRoutes registers all API routes
func RegisterRoutes(router *gin.Engine, deps Dependencies) {
	log := logger.OrNop(deps.Logger)

	router.GET("/health", HealthCheck(deps.Version))
	router.GET("/api/health", HealthCheck(deps.Version))
	if deps.Metrics != nil {
		router.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	}

	apiGroup := router.Group("/api")

	NewRecipeHandler(deps.Recipes, log).RegisterRoutes(apiGroup)
	NewAIHandler(deps.AI, deps.AIRateLimit, log).RegisterRoutes(apiGroup)
	NewImageHandler(deps.Images, log).RegisterRoutes(apiGroup)

	admin := apiGroup.Group("", middleware.AdminOnly(deps.AdminSecret))
	NewAdminHandler(deps.Recipes, log).RegisterRoutes(admin)
}

// respondError writes the {error, details, code} envelope. Not-found and
// validation errors carry their own message; everything else uses fallback.
func respondError(c *gin.Context, err error, fallback string) {
	_ = c.Error(err)

	status := apperrors.StatusOf(err)
	resp := middleware.ErrorResponse{
		Error: fallback,
		Code:  apperrors.CodeOf(err),
	}

	switch {
	case apperrors.IsNotFound(err):
		resp.Error = notFoundMessage(err)
	case apperrors.IsValidation(err):
		resp.Error = validationMessage(err)
		resp.Details = apperrors.DetailsOf(err)
	default:
		resp.Details = apperrors.DetailsOf(err)
	}

	c.JSON(status, resp)
}

func notFoundMessage(err error) string {
	var nf *apperrors.NotFoundError
	if errors.As(err, &nf) {
		return nf.Message
	}
	return "Recipe not found"
}

func validationMessage(err error) string {
	var ve *apperrors.ValidationError
	if errors.As(err, &ve) {
		return ve.Message
	}
	return err.Error()
}
