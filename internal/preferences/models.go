package preferences

import (
	"fmt"
	"strings"
)

const CurrentProfileVersion = 1

// State is the preferences document of a user.
type State struct {
	ProfileVersion int         `json:"profile_version"`
	QuickNote      string      `json:"quick_note"`
	Goals          []string    `json:"goals"`
	Dietary        Dietary     `json:"dietary"`
	Taste          Taste       `json:"taste"`
	MealRules      MealRules   `json:"meal_rules"`
	SkillBudget    SkillBudget `json:"skill_budget"`
	Meta           Meta        `json:"meta"`
}

type Dietary struct {
	DietStyle    string   `json:"diet_style"`
	Allergies    []string `json:"allergies"`
	Intolerances []string `json:"intolerances"`
	Avoid        []string `json:"avoid"`
	MustInclude  []string `json:"must_include"`
}

type Taste struct {
	Cuisines       []string `json:"cuisines"`
	SpiceTolerance int      `json:"spice_tolerance"` // 0..10
	AllowDesserts  bool     `json:"allow_desserts"`
	ProteinPrefs   []string `json:"protein_prefs"`
}

type MealRules struct {
	FocusMeals        string `json:"focus_meals"`
	ServingsPerRecipe int    `json:"servings_per_recipe"`
	LeftoversPolicy   string `json:"leftovers_policy"`
	TimePerDinnerMin  int    `json:"time_per_dinner_min"`
	VarietyLevel      int    `json:"variety_level"` // 1..7
}

type SkillBudget struct {
	SkillLevel  string   `json:"skill_level"`
	BudgetLevel string   `json:"budget_level"`
	Equipment   []string `json:"equipment"`
}

type Meta struct {
	Device  string  `json:"device"`
	SavedAt *string `json:"saved_at"` // RFC 3339, nil until first save
	Units   string  `json:"units"`    // metric | us
}

// PreferencesResponse: GET /v1/preferences
type PreferencesResponse struct {
	Preferences State    `json:"preferences"`
	IsDefault   bool     `json:"is_default"`
	SetTopics   []string `json:"set_topics"`
}

// Defaults returns the initial state of a new user.
func Defaults() State {
	return State{
		ProfileVersion: CurrentProfileVersion,
		Goals:          []string{},
		Dietary: Dietary{
			DietStyle:    "omnivore",
			Allergies:    []string{},
			Intolerances: []string{},
			Avoid:        []string{},
			MustInclude:  []string{},
		},
		Taste: Taste{
			Cuisines:       []string{},
			SpiceTolerance: 5,
			AllowDesserts:  true,
			ProteinPrefs:   []string{},
		},
		MealRules: MealRules{
			FocusMeals:        "dinner",
			ServingsPerRecipe: 2,
			LeftoversPolicy:   "none",
			TimePerDinnerMin:  30,
			VarietyLevel:      7,
		},
		SkillBudget: SkillBudget{
			SkillLevel:  "beginner",
			BudgetLevel: "medium",
			Equipment:   []string{},
		},
		Meta: Meta{
			Device: "web",
			Units:  "metric",
		},
	}
}

func (s State) Validate() error {
	if s.ProfileVersion != CurrentProfileVersion {
		return fmt.Errorf("profile_version must be %d", CurrentProfileVersion)
	}
	if len(s.QuickNote) > 2000 {
		return fmt.Errorf("quick_note must be at most 2000 characters")
	}
	if strings.TrimSpace(s.Dietary.DietStyle) == "" {
		return fmt.Errorf("dietary.diet_style is required")
	}
	if s.Taste.SpiceTolerance < 0 || s.Taste.SpiceTolerance > 10 {
		return fmt.Errorf("taste.spice_tolerance must be in range 0..10")
	}
	if s.MealRules.ServingsPerRecipe < 1 || s.MealRules.ServingsPerRecipe > 20 {
		return fmt.Errorf("meal_rules.servings_per_recipe must be in range 1..20")
	}
	if s.MealRules.TimePerDinnerMin < 5 || s.MealRules.TimePerDinnerMin > 480 {
		return fmt.Errorf("meal_rules.time_per_dinner_min must be in range 5..480")
	}
	if s.MealRules.VarietyLevel < 1 || s.MealRules.VarietyLevel > 7 {
		return fmt.Errorf("meal_rules.variety_level must be in range 1..7")
	}
	switch s.Meta.Units {
	case "metric", "us":
	default:
		return fmt.Errorf("meta.units must be metric or us")
	}
	return nil
}

// normalize replaces nil lists so the document always encodes arrays.
func (s State) normalize() State {
	s.Goals = nonNil(s.Goals)
	s.Dietary.Allergies = nonNil(s.Dietary.Allergies)
	s.Dietary.Intolerances = nonNil(s.Dietary.Intolerances)
	s.Dietary.Avoid = nonNil(s.Dietary.Avoid)
	s.Dietary.MustInclude = nonNil(s.Dietary.MustInclude)
	s.Taste.Cuisines = nonNil(s.Taste.Cuisines)
	s.Taste.ProteinPrefs = nonNil(s.Taste.ProteinPrefs)
	s.SkillBudget.Equipment = nonNil(s.SkillBudget.Equipment)
	return s
}

func nonNil(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}
