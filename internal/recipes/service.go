package recipes

import (
	"context"
	"fmt"

	"github.com/fdg312/weekplan/internal/ai"
	"github.com/fdg312/weekplan/internal/planner"
)

// Completer is satisfied by *ai.Client.
type Completer interface {
	Complete(ctx context.Context, req ai.CompletionRequest) (string, error)
}

// DefaultsSource supplies stored generator preferences for a user.
type DefaultsSource interface {
	GeneratorDefaults(ctx context.Context, userID string) (GeneratorInput, error)
}

// GenerateRequest: POST /v1/recipes/generate
type GenerateRequest struct {
	Provider string         `json:"provider"`
	APIKey   string         `json:"api_key,omitempty"`
	Model    string         `json:"model"`
	Prefs    GeneratorInput `json:"prefs"`
}

type Service struct {
	completer Completer
	defaults  DefaultsSource
}

func NewService(completer Completer, defaults DefaultsSource) *Service {
	return &Service{completer: completer, defaults: defaults}
}

// Generate asks the model for a week of dinners.
func (s *Service) Generate(ctx context.Context, userID string, req GenerateRequest) ([]planner.RecipePayload, error) {
	input := req.Prefs
	if s.defaults != nil && userID != "" {
		stored, err := s.defaults.GeneratorDefaults(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("failed to load preferences: %w", err)
		}
		input = input.Merge(stored)
	}

	text, err := s.completer.Complete(ctx, ai.CompletionRequest{
		Provider: req.Provider,
		APIKey:   req.APIKey,
		Model:    req.Model,
		Prompt:   BuildPrompt(input),
	})
	if err != nil {
		return nil, err
	}

	parsed, err := ParseJSONFromModel(text)
	if err != nil {
		return nil, err
	}
	return EnsureRecipes(parsed)
}
