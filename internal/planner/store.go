package planner

import "sort"

// Snapshot is the persisted form of a plan: its id and the stored slots.
type Snapshot struct {
	PlanID string    `json:"plan_id,omitempty"`
	Items  []DaySlot `json:"items"`
}

// Store holds the in-memory week plan. It is not safe for concurrent use;
// callers serialize access.
type Store struct {
	planID string
	items  map[int]DaySlot
}

func NewStore() *Store {
	return &Store{items: make(map[int]DaySlot)}
}

// Load replaces the plan id and all items with the snapshot contents.
// Items outside 0..6 are dropped.
func (s *Store) Load(snap Snapshot) {
	s.planID = snap.PlanID
	s.items = make(map[int]DaySlot, len(snap.Items))
	for _, item := range snap.Items {
		if !ValidDay(item.DOW) {
			continue
		}
		s.items[item.DOW] = item
	}
}

// Reset clears the plan id and every item.
func (s *Store) Reset() {
	s.planID = ""
	s.items = make(map[int]DaySlot)
}

// PlanID returns the bound plan id, or "" when none is bound.
func (s *Store) PlanID() string {
	return s.planID
}

func (s *Store) SetPlanID(id string) {
	s.planID = id
}

// SetItem creates or updates the slot at dow. Each patch field falls back
// to the stored value and then to the slot defaults.
func (s *Store) SetItem(dow int, patch Patch) error {
	if !ValidDay(dow) {
		return ErrInvalidDay
	}

	prev, ok := s.items[dow]
	if !ok {
		prev = EmptySlot(dow)
	}

	next := DaySlot{DOW: dow, Title: prev.Title, ImageURL: prev.ImageURL, Color: prev.Color}
	if patch.Title != nil {
		next.Title = *patch.Title
	}
	if patch.ImageURL != nil {
		next.ImageURL = *patch.ImageURL
	}
	if patch.Color != nil {
		next.Color = *patch.Color
	}

	s.items[dow] = next
	return nil
}

// RemoveItem deletes the slot at dow. Removing an empty slot is a no-op.
func (s *Store) RemoveItem(dow int) {
	delete(s.items, dow)
}

// Swap exchanges the contents of slots a and b. An empty side moves as an
// absence, so swapping a stored slot with an empty one moves it.
func (s *Store) Swap(a, b int) error {
	if !ValidDay(a) || !ValidDay(b) {
		return ErrInvalidDay
	}

	first, hasFirst := s.items[a]
	second, hasSecond := s.items[b]

	if hasFirst {
		first.DOW = b
		s.items[b] = first
	} else {
		delete(s.items, b)
	}
	if hasSecond {
		second.DOW = a
		s.items[a] = second
	} else {
		delete(s.items, a)
	}
	return nil
}

// Items returns the dense projection: exactly seven slots, with empty
// defaults for positions that hold nothing. Stored slots keep their image
// URL as saved, blank included; render through DaySlot.DisplayImage to get
// the placeholder for a blank URL.
func (s *Store) Items() []DaySlot {
	out := make([]DaySlot, DaysInWeek)
	for i := 0; i < DaysInWeek; i++ {
		if item, ok := s.items[i]; ok {
			out[i] = item
			continue
		}
		out[i] = EmptySlot(i)
	}
	return out
}

// Item returns the stored slot at dow and whether one exists.
func (s *Store) Item(dow int) (DaySlot, bool) {
	item, ok := s.items[dow]
	return item, ok
}

// Len returns the number of stored slots.
func (s *Store) Len() int {
	return len(s.items)
}

// Snapshot returns the plan id and the stored slots ordered by dow.
func (s *Store) Snapshot() Snapshot {
	items := make([]DaySlot, 0, len(s.items))
	for _, item := range s.items {
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].DOW < items[j].DOW })
	return Snapshot{PlanID: s.planID, Items: items}
}

// FindFirstEmpty returns the lowest dow with no stored slot.
func (s *Store) FindFirstEmpty() (int, bool) {
	for i := 0; i < DaysInWeek; i++ {
		if _, ok := s.items[i]; !ok {
			return i, true
		}
	}
	return 0, false
}
