package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"
	"go.uber.org/zap"

	"github.com/pageza/recipebook/backend/config"
	"github.com/pageza/recipebook/backend/internal/apperrors"
	"github.com/pageza/recipebook/backend/internal/logger"
	"github.com/pageza/recipebook/backend/internal/metrics"
	"github.com/pageza/recipebook/backend/internal/model"
)

// AI actions
const (
	ActionGenerateDescription = "generate-description"
	ActionSuggestTags         = "suggest-tags"
	ActionGenerateComplete    = "generate-complete"
)

const (
	descriptionSystemPrompt = "You are a culinary copywriter crafting engaging, professional recipe descriptions for expert chefs. Based on the recipe title, ingredients, and first few instructions, generate a concise, vivid, and appetizing 2–3 sentence description. Highlight key flavors, techniques, and any special cultural or seasonal relevance. Avoid exaggeration and maintain a refined tone. Emphasize flavor dynamics, texture, and cooking techniques. Avoid generic phrases like 'delicious' or 'tasty'. Reflect the sophistication of a professional kitchen."

	tagsSystemPrompt = "You are an expert culinary categorization assistant. Based on the recipe's title, ingredients, and instructions, generate exactly three unique, relevant tags that describe flavor profiles, cooking methods, or dietary categories. Do not repeat any words already present in the recipe title or the cuisine type. Tags should be concise and descriptive. Prefer culinary terminology used by professionals (e.g., 'Umami', 'Poached', 'Low Carb')."

	completeSystemPrompt = "You are a professional chef and recipe developer. Given only the recipe title, generate a complete, realistic, high-quality recipe as JSON. Ensure all components are present: description (string), ingredients (array of strings), instructions (array of strings with numbered steps), preparation and cook time in minutes (numbers), cuisine type (string), and three relevant tags (array of strings). Keep it chef-level but accessible for other professionals. Prioritize clarity, realism, and efficiency. Assume a professional kitchen context with appropriate shorthand. Each instruction should be a clear, concise string describing a single step."

	keySteps = 3
)

// AIService drives the chat completion model for recipe assistance
type AIService struct {
	client  openai.Client
	model   string
	logger  *zap.Logger
	metrics *metrics.Collector
}

// NewAIService creates a new AIService instance. Provider calls are never
// retried.
func NewAIService(cfg config.AIConfig, log *zap.Logger, m *metrics.Collector) *AIService {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.Timeout))
	}

	chatModel := cfg.Model
	if chatModel == "" {
		chatModel = string(openai.ChatModelGPT3_5Turbo)
	}

	return &AIService{
		client:  openai.NewClient(opts...),
		model:   chatModel,
		logger:  logger.OrNop(log).Named("ai"),
		metrics: m,
	}
}

func recipePrompt(verb, title string, ingredients, instructions []string) string {
	steps := instructions
	if len(steps) > keySteps {
		steps = steps[:keySteps]
	}
	return fmt.Sprintf("%s for a recipe with the following details:\nTitle: %s\nIngredients: %s\nKey Steps: %s...",
		verb, title, strings.Join(ingredients, ", "), strings.Join(steps, ", "))
}

// requireRecipeInputs checks the inputs the description and tag prompts need.
func requireRecipeInputs(title string, ingredients, instructions []string) ([]string, []string, error) {
	ingredients = model.CompactStrings(ingredients)
	instructions = model.CompactStrings(instructions)

	var missing []string
	if strings.TrimSpace(title) == "" {
		missing = append(missing, "title")
	}
	if len(ingredients) == 0 {
		missing = append(missing, "ingredients")
	}
	if len(instructions) == 0 {
		missing = append(missing, "instructions")
	}
	if len(missing) > 0 {
		return nil, nil, apperrors.NewValidationError("missing required fields", missing)
	}
	return ingredients, instructions, nil
}

// GenerateDescription writes a short description for a recipe
func (s *AIService) GenerateDescription(ctx context.Context, title string, ingredients, instructions []string) (string, error) {
	ingredients, instructions, err := requireRecipeInputs(title, ingredients, instructions)
	if err != nil {
		return "", err
	}

	content, err := s.complete(ctx, ActionGenerateDescription, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(descriptionSystemPrompt),
			openai.UserMessage(recipePrompt("Write a description", title, ingredients, instructions)),
		},
		Temperature: openai.Float(0.7),
		MaxTokens:   openai.Int(100),
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(content), nil
}

// SuggestTags asks for three tags. At most three are ever returned.
func (s *AIService) SuggestTags(ctx context.Context, title string, ingredients, instructions []string) ([]string, error) {
	ingredients, instructions, err := requireRecipeInputs(title, ingredients, instructions)
	if err != nil {
		return nil, err
	}

	content, err := s.complete(ctx, ActionSuggestTags, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(tagsSystemPrompt),
			openai.UserMessage(recipePrompt("Suggest exactly 3 tags", title, ingredients, instructions)),
		},
		Temperature: openai.Float(0.5),
		MaxTokens:   openai.Int(25),
	})
	if err != nil {
		return nil, err
	}
	return ParseTags(content), nil
}

// GenerateCompleteRecipe drafts a full recipe from its title
func (s *AIService) GenerateCompleteRecipe(ctx context.Context, title string) (*RecipeDraft, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, apperrors.NewValidationError("missing required fields", []string{"title"})
	}

	content, err := s.complete(ctx, ActionGenerateComplete, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(completeSystemPrompt),
			openai.UserMessage("Create a complete recipe for: " + title),
		},
		Temperature: openai.Float(0.6),
		MaxTokens:   openai.Int(700),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		},
	})
	if err != nil {
		return nil, err
	}

	draft, err := ParseRecipeDraft([]byte(content))
	if err != nil {
		s.logger.Warn("unusable recipe payload", zap.String("content", content), zap.Error(err))
		return nil, apperrors.NewAIServiceError("Failed to parse generated recipe", err)
	}
	return draft, nil
}

// complete runs one chat completion and returns the first choice's content.
func (s *AIService) complete(ctx context.Context, action string, params openai.ChatCompletionNewParams) (string, error) {
	params.Model = openai.ChatModel(s.model)

	start := time.Now()
	resp, err := s.client.Chat.Completions.New(ctx, params)
	if err == nil && len(resp.Choices) == 0 {
		err = fmt.Errorf("provider returned no choices")
	}
	if err != nil {
		s.metrics.AIRequest(action, metrics.OutcomeError, time.Since(start))
		s.logger.Error("AI request failed", zap.String("action", action), zap.Error(err))
		return "", apperrors.NewAIServiceError("AI request failed", err)
	}

	s.metrics.AIRequest(action, metrics.OutcomeSuccess, time.Since(start))
	s.logger.Debug("AI request complete",
		zap.String("action", action),
		zap.Duration("duration", time.Since(start)),
		zap.Int64("total_tokens", resp.Usage.TotalTokens),
	)
	return resp.Choices[0].Message.Content, nil
}

// ParseTags splits a comma separated model reply into at most three tags.
func ParseTags(content string) []string {
	parts := strings.Split(content, ",")
	tags := make([]string, 0, model.MaxTags)
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		tags = append(tags, p)
		if len(tags) == model.MaxTags {
			break
		}
	}
	return tags
}

// encodeCompact renders an arbitrary JSON value on one line.
func encodeCompact(v interface{}) string {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}
