package preferences

// Topics lists every preference topic in display order.
var Topics = []string{
	"goals", "diet", "allergies", "avoid", "must", "time", "variety", "skill",
	"budget", "leftovers", "servings", "cuisines", "spice", "dessert", "proteins", "equipment",
}

// IsTopicSet reports whether topic differs from its default.
// Unknown topics are never set.
func IsTopicSet(s State, topic string) bool {
	switch topic {
	case "goals":
		return len(s.Goals) > 0
	case "diet":
		return s.Dietary.DietStyle != "omnivore"
	case "allergies":
		return len(s.Dietary.Allergies) > 0
	case "avoid":
		return len(s.Dietary.Avoid) > 0
	case "must":
		return len(s.Dietary.MustInclude) > 0
	case "time":
		return s.MealRules.TimePerDinnerMin != 30
	case "variety":
		return s.MealRules.VarietyLevel != 7
	case "skill":
		return s.SkillBudget.SkillLevel != "beginner"
	case "budget":
		return s.SkillBudget.BudgetLevel != "medium"
	case "leftovers":
		return s.MealRules.LeftoversPolicy != "none"
	case "servings":
		return s.MealRules.ServingsPerRecipe != 2
	case "cuisines":
		return len(s.Taste.Cuisines) > 0
	case "spice":
		return s.Taste.SpiceTolerance != 5
	case "dessert":
		return !s.Taste.AllowDesserts
	case "proteins":
		return len(s.Taste.ProteinPrefs) > 0
	case "equipment":
		return len(s.SkillBudget.Equipment) > 0
	default:
		return false
	}
}

// SetTopics returns the topics that differ from defaults, in display order.
func SetTopics(s State) []string {
	out := []string{}
	for _, t := range Topics {
		if IsTopicSet(s, t) {
			out = append(out, t)
		}
	}
	return out
}
