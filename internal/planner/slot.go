package planner

import (
	"errors"
	"regexp"
)

// DaysInWeek is the number of slots in a plan. Index 0 is Monday.
const DaysInWeek = 7

const (
	// EmptyTitle marks a slot whose title was never set.
	EmptyTitle = "(empty)"

	// DefaultImage is shown for slots without an image of their own.
	DefaultImage = "https://images.unsplash.com/photo-1512621776951-a57141f2eefd?q=80&w=800&auto=format&fit=crop"
)

// Days holds weekday labels indexed by dow.
var Days = [DaysInWeek]string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

var ErrInvalidDay = errors.New("dow must be between 0 and 6")

var colorPattern = regexp.MustCompile(`(?i)^#([0-9a-f]{3}|[0-9a-f]{6})$`)

// DaySlot is one day of the week plan.
type DaySlot struct {
	DOW      int    `json:"dow"`
	Title    string `json:"title"`
	ImageURL string `json:"image_url"`
	Color    string `json:"color,omitempty"` // "" when unset
}

// Patch is a partial update for SetItem. Nil fields keep the stored value.
type Patch struct {
	Title    *string `json:"title,omitempty"`
	ImageURL *string `json:"image_url,omitempty"`
	Color    *string `json:"color,omitempty"`
}

// ValidDay reports whether dow addresses one of the seven slots.
func ValidDay(dow int) bool {
	return dow >= 0 && dow < DaysInWeek
}

// DayName returns the weekday label for dow, or "" when out of range.
func DayName(dow int) string {
	if !ValidDay(dow) {
		return ""
	}
	return Days[dow]
}

// ValidColor reports whether s is a #rgb or #rrggbb hex color.
func ValidColor(s string) bool {
	return colorPattern.MatchString(s)
}

// EmptySlot returns the implicit slot for a position that holds no item.
func EmptySlot(dow int) DaySlot {
	return DaySlot{DOW: dow, Title: EmptyTitle, ImageURL: DefaultImage}
}

// IsEmpty reports whether the slot shows the empty title.
func (d DaySlot) IsEmpty() bool {
	return d.Title == "" || d.Title == EmptyTitle
}

// Background returns the custom card color, or "" for the default
// background. Invalid colors are treated as unset.
func (d DaySlot) Background() string {
	if ValidColor(d.Color) {
		return d.Color
	}
	return ""
}

// DisplayImage returns the image to render, falling back to DefaultImage.
func (d DaySlot) DisplayImage() string {
	if d.ImageURL == "" {
		return DefaultImage
	}
	return d.ImageURL
}
