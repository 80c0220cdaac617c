package planner

var demoTitles = [DaysInWeek]string{
	"Coconut Lentil Curry",
	"Chicken & Quinoa Bowls",
	"Veggie Pasta (GF)",
	"Salmon Traybake",
	"Chickpea Tabbouleh",
	"Turkey Lettuce Wraps",
	"Roasted Cauli Bowls",
}

var demoImages = [DaysInWeek]string{
	"https://images.unsplash.com/photo-1546069901-ba9599a7e63c?q=80&w=800&auto=format&fit=crop",
	"https://images.unsplash.com/photo-1512058564366-18510be2db19?q=80&w=800&auto=format&fit=crop",
	"https://images.unsplash.com/photo-1617196037304-9a851b1cfa2c?q=80&w=800&auto=format&fit=crop",
	"https://images.unsplash.com/photo-1506086679525-9d3a8e4d1f04?q=80&w=800&auto=format&fit=crop",
	"https://images.unsplash.com/photo-1490645935967-10de6ba17061?q=80&w=800&auto=format&fit=crop",
	"https://images.unsplash.com/photo-1504674900247-0877df9cc836?q=80&w=800&auto=format&fit=crop",
	"https://images.unsplash.com/photo-1543352634-11a8e2d3d6c4?q=80&w=800&auto=format&fit=crop",
}

// ApplyDemoPlan fills all seven slots with sample dinners. Existing colors
// are kept.
func ApplyDemoPlan(store *Store) {
	for i := 0; i < DaysInWeek; i++ {
		title := demoTitles[i]
		image := demoImages[i]
		_ = store.SetItem(i, Patch{Title: &title, ImageURL: &image})
	}
}
