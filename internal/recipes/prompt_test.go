package recipes

import (
	"strings"
	"testing"
)

func TestBuildPrompt(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		p := BuildPrompt(GeneratorInput{})
		for _, want := range []string{
			"Allergier/intoleranser: ingen spesifisert",
			"Kosthold/tema: valgfritt",
			"Maks tilberedningstid: 30 minutter",
			"Kjøkken/smaker: variert",
			"Antall porsjoner: 2",
			"minutes ≤ 30",
		} {
			if !strings.Contains(p, want) {
				t.Errorf("prompt missing %q", want)
			}
		}
	})

	t.Run("values", func(t *testing.T) {
		p := BuildPrompt(GeneratorInput{Allergens: "gluten, melk", Diet: "Vegan", MaxMins: 20, Cuisines: "asiatisk", Servings: 4})
		for _, want := range []string{"gluten, melk", "Vegan", "20 minutter", "asiatisk", "porsjoner: 4", "minutes ≤ 20"} {
			if !strings.Contains(p, want) {
				t.Errorf("prompt missing %q", want)
			}
		}
		if strings.HasPrefix(p, " ") || strings.HasSuffix(p, "\n") {
			t.Error("prompt should be trimmed")
		}
	})
}

func TestGeneratorInputMerge(t *testing.T) {
	got := GeneratorInput{Diet: "Vegetar"}.Merge(GeneratorInput{Diet: "Vegan", Allergens: "nøtter", MaxMins: 45, Servings: 3})
	want := GeneratorInput{Diet: "Vegetar", Allergens: "nøtter", MaxMins: 45, Servings: 3}
	if got != want {
		t.Fatalf("Merge: got %+v, want %+v", got, want)
	}
}
