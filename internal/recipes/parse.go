package recipes

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/fdg312/weekplan/internal/planner"
)

var (
	ErrNoRecipes    = errors.New("Fant ingen oppskrifter i svaret.")
	ErrEmptyRecipes = errors.New("Oppskriftlisten er tom.")
)

var (
	jsonFence     = regexp.MustCompile("(?is)```json\\s*(.*?)```")
	anyFence      = regexp.MustCompile("(?s)```\\s*(.*?)```")
	trailingComma = regexp.MustCompile(`,\s*([\]}])`)
	quoteFixer    = strings.NewReplacer("“", `"`, "”", `"`, "‘", "'", "’", "'")
)

// ParseJSONFromModel decodes the JSON in model output. A fenced block wins
// over the raw text. On failure it retries once with smart quotes and
// trailing commas cleaned up.
func ParseJSONFromModel(text string) (any, error) {
	raw := text
	if m := jsonFence.FindStringSubmatch(text); m != nil {
		raw = m[1]
	} else if m := anyFence.FindStringSubmatch(text); m != nil {
		raw = m[1]
	}

	var v any
	if err := json.Unmarshal([]byte(raw), &v); err == nil {
		return v, nil
	}

	normalized := trailingComma.ReplaceAllString(quoteFixer.Replace(raw), "$1")
	if err := json.Unmarshal([]byte(normalized), &v); err != nil {
		return nil, fmt.Errorf("parse model JSON: %w", err)
	}
	return v, nil
}

// EnsureRecipes extracts the non-empty "week" list.
func EnsureRecipes(data any) ([]planner.RecipePayload, error) {
	obj, ok := data.(map[string]any)
	if !ok {
		return nil, ErrNoRecipes
	}
	week, ok := obj["week"]
	if !ok {
		return nil, ErrNoRecipes
	}
	list, ok := week.([]any)
	if !ok || len(list) == 0 {
		return nil, ErrEmptyRecipes
	}

	recipes := make([]planner.RecipePayload, 0, len(list))
	for _, item := range list {
		var r planner.RecipePayload
		// fields of the wrong type are left unset
		if raw, err := json.Marshal(item); err == nil {
			_ = json.Unmarshal(raw, &r)
		}
		recipes = append(recipes, r)
	}
	return recipes, nil
}
