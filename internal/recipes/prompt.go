package recipes

import (
	"fmt"
	"strings"
)

const (
	DefaultMaxMins  = 30
	DefaultServings = 2
)

// GeneratorInput: пожелания к недельному меню
type GeneratorInput struct {
	Allergens string `json:"allergens"`
	Diet      string `json:"diet"`
	MaxMins   int    `json:"max_mins"`
	Cuisines  string `json:"cuisines"`
	Servings  int    `json:"servings"`
}

// WithDefaults fills zero numeric fields.
func (in GeneratorInput) WithDefaults() GeneratorInput {
	if in.MaxMins <= 0 {
		in.MaxMins = DefaultMaxMins
	}
	if in.Servings <= 0 {
		in.Servings = DefaultServings
	}
	return in
}

// Merge fills empty fields of in from fallback.
func (in GeneratorInput) Merge(fallback GeneratorInput) GeneratorInput {
	if strings.TrimSpace(in.Allergens) == "" {
		in.Allergens = fallback.Allergens
	}
	if strings.TrimSpace(in.Diet) == "" {
		in.Diet = fallback.Diet
	}
	if in.MaxMins <= 0 {
		in.MaxMins = fallback.MaxMins
	}
	if strings.TrimSpace(in.Cuisines) == "" {
		in.Cuisines = fallback.Cuisines
	}
	if in.Servings <= 0 {
		in.Servings = fallback.Servings
	}
	return in
}

// BuildPrompt renders the seven-day dinner prompt.
func BuildPrompt(input GeneratorInput) string {
	input = input.WithDefaults()

	prompt := fmt.Sprintf(`Du er en ernærings- og matfagekspert. Lag en 7-dagers middagsliste (én rett per dag) som passer følgende:
- Allergier/intoleranser: %s
- Kosthold/tema: %s
- Maks tilberedningstid: %d minutter
- Kjøkken/smaker: %s
- Antall porsjoner: %d

Svar KUN som gyldig JSON i dette skjemaet (ingen forklaring, ingen tekst utenfor JSON):
{
  "week": [
    {
      "day": "Mandag|Tirsdag|...|Søndag",
      "title": "Kort rettnavn",
      "image": "URL eller tom streng",
      "minutes": 20,
      "tags": ["glutenfri","melkefri","nøttefri","vegan","høy-protein"],
      "ingredients": ["200 g kylling","1 ss sitron"],
      "instructions": ["Sett ovnen på 200°C","Bland ...","Stek ..."],
      "nutrition": { "kcal": 520, "protein_g": 35, "carbs_g": 55, "fat_g": 18 }
    }
  ]
}
Sørg for at alle 7 dager er med (Mandag til Søndag) og at minutes ≤ %d.
Bruk norske dag- og ingrediensnavn.`,
		orDefault(input.Allergens, "ingen spesifisert"),
		orDefault(input.Diet, "valgfritt"),
		input.MaxMins,
		orDefault(input.Cuisines, "variert"),
		input.Servings,
		input.MaxMins,
	)
	return strings.TrimSpace(prompt)
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
