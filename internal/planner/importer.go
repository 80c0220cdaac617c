package planner

import "errors"

const defaultRecipeTitle = "Recipe"

var ErrNoTargetDay = errors.New("no target day for recipe")

// Nutrition is informational only and never enters the store.
type Nutrition struct {
	Kcal     *float64 `json:"kcal,omitempty"`
	ProteinG *float64 `json:"protein_g,omitempty"`
	CarbsG   *float64 `json:"carbs_g,omitempty"`
	FatG     *float64 `json:"fat_g,omitempty"`
}

// RecipePayload is a recipe as produced by the generator or the clipper.
type RecipePayload struct {
	Day          *string    `json:"day,omitempty"`
	Title        *string    `json:"title,omitempty"`
	Image        *string    `json:"image,omitempty"`
	Minutes      *int       `json:"minutes,omitempty"`
	Tags         []string   `json:"tags,omitempty"`
	Ingredients  []string   `json:"ingredients,omitempty"`
	Instructions []string   `json:"instructions,omitempty"`
	Nutrition    *Nutrition `json:"nutrition,omitempty"`
}

// SlotTitle picks the title a recipe gets in the plan.
func (p RecipePayload) SlotTitle() string {
	if p.Title != nil {
		return *p.Title
	}
	if p.Day != nil {
		return *p.Day
	}
	return defaultRecipeTitle
}

// SlotImage returns the recipe image or "" when it has none.
func (p RecipePayload) SlotImage() string {
	if p.Image != nil {
		return *p.Image
	}
	return ""
}

// DayChooser is asked for a day when the week is full. It returns false
// to abort the import.
type DayChooser func() (int, bool)

// FixedDay returns a chooser that always picks dow.
func FixedDay(dow int) DayChooser {
	return func() (int, bool) { return dow, true }
}

// ImportRecipe writes a recipe into the first empty slot, or into the slot
// the chooser names when the week is full. Choosing an occupied slot
// overwrites it. It returns the dow that was written.
func ImportRecipe(store *Store, payload RecipePayload, choose DayChooser) (int, error) {
	target, ok := store.FindFirstEmpty()
	if !ok {
		if choose == nil {
			return 0, ErrNoTargetDay
		}
		target, ok = choose()
		if !ok || !ValidDay(target) {
			return 0, ErrNoTargetDay
		}
	}

	title := payload.SlotTitle()
	image := payload.SlotImage()
	if err := store.SetItem(target, Patch{Title: &title, ImageURL: &image}); err != nil {
		return 0, err
	}
	return target, nil
}
