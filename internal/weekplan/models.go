package weekplan

import "github.com/fdg312/weekplan/internal/planner"

// DayView is one rendered day card.
type DayView struct {
	DOW        int    `json:"dow"`
	Day        string `json:"day"`
	Title      string `json:"title"`
	ImageURL   string `json:"image_url"`
	Color      string `json:"color"`
	Background string `json:"background"` // "" means the default card background
	Empty      bool   `json:"empty"`
}

// GridResponse is the dense seven-day grid.
type GridResponse struct {
	PlanID   string    `json:"plan_id"`
	Days     []DayView `json:"days"`
	HasItems bool      `json:"has_items"`
}

// UpdateDayRequest is the edit-modal payload. Omitted fields keep their
// stored value.
type UpdateDayRequest struct {
	Title    *string `json:"title"`
	ImageURL *string `json:"image_url"`
	Color    *string `json:"color"`
}

// DropRequest is a finished drag gesture between two cards.
type DropRequest struct {
	SourceElement []string `json:"source_element"`
	From          string   `json:"from"`
	To            string   `json:"to"`
}

type DropResponse struct {
	planner.DropResult
	Grid GridResponse `json:"grid"`
}

type ImportRequest struct {
	Recipe planner.RecipePayload `json:"recipe"`
	Day    *int                  `json:"day,omitempty"`
}

type ImportResponse struct {
	DOW  int          `json:"dow"`
	Grid GridResponse `json:"grid"`
}

type SaveResponse struct {
	Saved   bool   `json:"saved"`
	Message string `json:"message"`
}

type SlotImageResponse struct {
	ImageID  string       `json:"image_id"`
	ImageURL string       `json:"image_url"`
	Grid     GridResponse `json:"grid"`
}
