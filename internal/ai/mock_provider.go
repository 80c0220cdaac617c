package ai

import (
	"context"
	"encoding/json"
	"fmt"
)

// MockProvider returns a fixed seven-day week. Used for AI_MODE=mock and
// in tests.
type MockProvider struct{}

func NewMockProvider() *MockProvider {
	return &MockProvider{}
}

var mockWeek = []struct {
	day, title string
	minutes    int
	kcal       int
}{
	{"Mandag", "Kyllingwok med grønnsaker", 25, 540},
	{"Tirsdag", "Ovnsbakt laks med potet", 30, 610},
	{"Onsdag", "Linsesuppe med brød", 20, 420},
	{"Torsdag", "Pasta med tomatsaus", 20, 560},
	{"Fredag", "Hjemmelaget taco", 30, 650},
	{"Lørdag", "Ovnsbakt torsk med rotgrønnsaker", 30, 480},
	{"Søndag", "Kjøttkaker i brun saus", 30, 700},
}

func (p *MockProvider) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	week := make([]map[string]any, 0, len(mockWeek))
	for _, d := range mockWeek {
		week = append(week, map[string]any{
			"day":          d.day,
			"title":        d.title,
			"image":        "",
			"minutes":      d.minutes,
			"tags":         []string{"rask"},
			"ingredients":  []string{"2 porsjoner " + d.title},
			"instructions": []string{"Forbered ingrediensene", "Tilbered " + d.title},
			"nutrition":    map[string]any{"kcal": d.kcal, "protein_g": 30, "carbs_g": 50, "fat_g": 18},
		})
	}
	raw, err := json.MarshalIndent(map[string]any{"week": week}, "", "  ")
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Her er ukens middager:\n```json\n%s\n```", raw), nil
}
