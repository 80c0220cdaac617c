package preferences

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/fdg312/weekplan/internal/recipes"
	"github.com/fdg312/weekplan/internal/storage"
)

type Service struct {
	storage storage.PreferencesStorage
	now     func() time.Time
}

func NewService(preferencesStorage storage.PreferencesStorage) *Service {
	return &Service{
		storage: preferencesStorage,
		now:     time.Now,
	}
}

func (s *Service) GetOrDefault(ctx context.Context, userID string) (PreferencesResponse, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return PreferencesResponse{}, fmt.Errorf("user_id is required")
	}

	rec, found, err := s.storage.GetPreferences(ctx, userID)
	if err != nil {
		return PreferencesResponse{}, err
	}
	if !found {
		d := Defaults()
		return PreferencesResponse{Preferences: d, IsDefault: true, SetTopics: SetTopics(d)}, nil
	}

	state := Defaults()
	if err := json.Unmarshal(rec.Payload, &state); err != nil {
		return PreferencesResponse{}, fmt.Errorf("decode preferences: %w", err)
	}
	state = state.normalize()
	return PreferencesResponse{Preferences: state, IsDefault: false, SetTopics: SetTopics(state)}, nil
}

// Upsert validates and stores the document, stamping meta.saved_at.
func (s *Service) Upsert(ctx context.Context, userID string, state State) (State, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return State{}, fmt.Errorf("user_id is required")
	}
	if err := state.Validate(); err != nil {
		return State{}, err
	}

	state = state.normalize()
	savedAt := s.now().UTC().Format(time.RFC3339)
	state.Meta.SavedAt = &savedAt

	payload, err := json.Marshal(state)
	if err != nil {
		return State{}, err
	}
	if _, err := s.storage.UpsertPreferences(ctx, userID, payload); err != nil {
		return State{}, err
	}
	return state, nil
}

// GeneratorDefaults maps stored preferences onto recipe generator input.
func (s *Service) GeneratorDefaults(ctx context.Context, userID string) (recipes.GeneratorInput, error) {
	resp, err := s.GetOrDefault(ctx, userID)
	if err != nil {
		return recipes.GeneratorInput{}, err
	}
	return ToGeneratorInput(resp.Preferences), nil
}

func ToGeneratorInput(state State) recipes.GeneratorInput {
	in := recipes.GeneratorInput{
		Allergens: strings.Join(append(append([]string{}, state.Dietary.Allergies...), state.Dietary.Intolerances...), ", "),
		Cuisines:  strings.Join(state.Taste.Cuisines, ", "),
		MaxMins:   state.MealRules.TimePerDinnerMin,
		Servings:  state.MealRules.ServingsPerRecipe,
	}
	if IsTopicSet(state, "diet") {
		in.Diet = state.Dietary.DietStyle
	}
	return in
}
