package planner

import (
	"strconv"
	"strings"
)

// interactiveTags lists elements whose drags never start a reorder.
var interactiveTags = map[string]bool{
	"button": true,
	"a":      true,
	"input":  true,
}

// Drop describes a completed drag/drop gesture between two day cards.
type Drop struct {
	// Origin holds the tag names from the element the drag started on up
	// to, but not including, the card.
	Origin []string `json:"origin,omitempty"`
	From   string   `json:"from"`
	To     string   `json:"to"`
}

// DropResult tells the caller whether the grid changed.
type DropResult struct {
	Swapped  bool `json:"swapped"`
	Rerender bool `json:"rerender"`
	From     int  `json:"from"`
	To       int  `json:"to"`
}

// StartsReorder reports whether a drag from the given origin may reorder
// cards. Drags started on or inside an interactive element do not.
func StartsReorder(origin []string) bool {
	for _, tag := range origin {
		if interactiveTags[strings.ToLower(strings.TrimSpace(tag))] {
			return false
		}
	}
	return true
}

// ApplyDrop turns a drop into at most one Swap on the store.
func ApplyDrop(store *Store, drop Drop) DropResult {
	if !StartsReorder(drop.Origin) {
		return DropResult{}
	}

	from, ok := parseDayID(drop.From)
	if !ok {
		return DropResult{}
	}
	to, ok := parseDayID(drop.To)
	if !ok {
		return DropResult{}
	}
	if from == to {
		return DropResult{From: from, To: to}
	}

	if err := store.Swap(from, to); err != nil {
		return DropResult{From: from, To: to}
	}
	return DropResult{Swapped: true, Rerender: true, From: from, To: to}
}

func parseDayID(raw string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, false
	}
	return n, true
}
