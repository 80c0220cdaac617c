package recipes

import (
	"errors"
	"testing"
)

func TestParseJSONFromModel(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"raw", `{"week":[{"title":"A"}]}`},
		{"json fence", "Her:\n```json\n{\"week\":[{\"title\":\"A\"}]}\n```\nVelbekomme"},
		{"plain fence", "```\n{\"week\":[{\"title\":\"A\"}]}\n```"},
		{"smart quotes", "{“week”:[{“title”:“A”}]}"},
		{"trailing commas", `{"week":[{"title":"A",},],}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := ParseJSONFromModel(tt.text)
			if err != nil {
				t.Fatalf("ParseJSONFromModel: %v", err)
			}
			recipes, err := EnsureRecipes(v)
			if err != nil {
				t.Fatalf("EnsureRecipes: %v", err)
			}
			if len(recipes) != 1 || recipes[0].Title == nil || *recipes[0].Title != "A" {
				t.Fatalf("unexpected recipes: %+v", recipes)
			}
		})
	}

	t.Run("garbage", func(t *testing.T) {
		if _, err := ParseJSONFromModel("beklager, jeg kan ikke"); err == nil {
			t.Fatal("expected error")
		}
	})
}

func TestEnsureRecipes(t *testing.T) {
	if _, err := EnsureRecipes([]any{}); !errors.Is(err, ErrNoRecipes) {
		t.Errorf("array: expected ErrNoRecipes, got %v", err)
	}
	if _, err := EnsureRecipes(map[string]any{"days": []any{}}); !errors.Is(err, ErrNoRecipes) {
		t.Errorf("no week: expected ErrNoRecipes, got %v", err)
	}
	if _, err := EnsureRecipes(map[string]any{"week": []any{}}); !errors.Is(err, ErrEmptyRecipes) {
		t.Errorf("empty week: expected ErrEmptyRecipes, got %v", err)
	}

	recipes, err := EnsureRecipes(map[string]any{"week": []any{
		map[string]any{"day": "Mandag", "minutes": 20.0, "nutrition": map[string]any{"kcal": 500.0}},
		map[string]any{"title": 42.0},
	}})
	if err != nil {
		t.Fatalf("EnsureRecipes: %v", err)
	}
	if len(recipes) != 2 {
		t.Fatalf("expected 2 recipes, got %d", len(recipes))
	}
	if recipes[0].SlotTitle() != "Mandag" || *recipes[0].Minutes != 20 || *recipes[0].Nutrition.Kcal != 500 {
		t.Errorf("unexpected first recipe: %+v", recipes[0])
	}
	if recipes[1].Title != nil {
		t.Errorf("expected mistyped title to be dropped, got %q", *recipes[1].Title)
	}
}
