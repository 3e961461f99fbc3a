package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/pageza/recipebook/backend/internal/service"
)

// MockAIService is a mock implementation of the AI service
type MockAIService struct {
	mock.Mock
}

func (m *MockAIService) GenerateDescription(ctx context.Context, title string, ingredients, instructions []string) (string, error) {
	args := m.Called(ctx, title, ingredients, instructions)
	return args.String(0), args.Error(1)
}

func (m *MockAIService) SuggestTags(ctx context.Context, title string, ingredients, instructions []string) ([]string, error) {
	args := m.Called(ctx, title, ingredients, instructions)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockAIService) GenerateCompleteRecipe(ctx context.Context, title string) (*service.RecipeDraft, error) {
	args := m.Called(ctx, title)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.RecipeDraft), args.Error(1)
}
