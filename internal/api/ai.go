package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pageza/recipebook/backend/internal/apperrors"
	"github.com/pageza/recipebook/backend/internal/service"
)

const aiFailureMessage = "Failed to process AI request"

// AIRequest is the body of POST /api/ai
type AIRequest struct {
	Action       string   `json:"action"`
	Title        string   `json:"title"`
	Ingredients  []string `json:"ingredients"`
	Instructions []string `json:"instructions"`
}

type AIHandler struct {
	ai        service.IAIService
	rateLimit gin.HandlerFunc
	logger    *zap.Logger
}

func NewAIHandler(ai service.IAIService, rateLimit gin.HandlerFunc, log *zap.Logger) *AIHandler {
	return &AIHandler{ai: ai, rateLimit: rateLimit, logger: log}
}

func (h *AIHandler) RegisterRoutes(router *gin.RouterGroup) {
	handlers := []gin.HandlerFunc{}
	if h.rateLimit != nil {
		handlers = append(handlers, h.rateLimit)
	}
	router.POST("/ai", append(handlers, h.Handle)...)
}

// Handle dispatches on the request action
func (h *AIHandler) Handle(c *gin.Context) {
	var req AIRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperrors.NewValidationError("Invalid request body", err.Error()), aiFailureMessage)
		return
	}

	switch req.Action {
	case service.ActionGenerateDescription, service.ActionSuggestTags, service.ActionGenerateComplete:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid action"})
		return
	}

	if h.ai == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "AI features are disabled"})
		return
	}

	ctx := c.Request.Context()
	switch req.Action {
	case service.ActionGenerateDescription:
		description, err := h.ai.GenerateDescription(ctx, req.Title, req.Ingredients, req.Instructions)
		if err != nil {
			respondError(c, err, aiFailureMessage)
			return
		}
		c.JSON(http.StatusOK, gin.H{"description": description})

	case service.ActionSuggestTags:
		tags, err := h.ai.SuggestTags(ctx, req.Title, req.Ingredients, req.Instructions)
		if err != nil {
			respondError(c, err, aiFailureMessage)
			return
		}
		c.JSON(http.StatusOK, gin.H{"tags": tags})

	case service.ActionGenerateComplete:
		recipe, err := h.ai.GenerateCompleteRecipe(ctx, req.Title)
		if err != nil {
			respondError(c, err, aiFailureMessage)
			return
		}
		c.JSON(http.StatusOK, gin.H{"recipe": recipe})
	}
}
