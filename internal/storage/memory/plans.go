package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/fdg312/weekplan/internal/storage"
	"github.com/google/uuid"
)

// PlansMemoryStorage keeps plans and their items. DeleteItems and
// InsertItems are separate critical sections; ReplaceItems is one.
type PlansMemoryStorage struct {
	mu    sync.RWMutex
	plans map[string]storage.Plan
	order map[string]int // plan_id -> creation sequence, breaks created_at ties
	seq   int
	items map[string]map[int]storage.PlanItem // plan_id -> dow -> item
}

func NewPlansMemoryStorage() *PlansMemoryStorage {
	return &PlansMemoryStorage{
		plans: make(map[string]storage.Plan),
		order: make(map[string]int),
		items: make(map[string]map[int]storage.PlanItem),
	}
}

func (s *PlansMemoryStorage) LatestPlan(ctx context.Context, userID string) (storage.Plan, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var latest storage.Plan
	found := false
	for _, p := range s.plans {
		if p.UserID != userID {
			continue
		}
		if !found || p.CreatedAt.After(latest.CreatedAt) ||
			(p.CreatedAt.Equal(latest.CreatedAt) && s.order[p.ID] > s.order[latest.ID]) {
			latest = p
			found = true
		}
	}
	return latest, found, nil
}

func (s *PlansMemoryStorage) CreatePlan(ctx context.Context, userID, title string) (storage.Plan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	plan := storage.Plan{
		ID:        uuid.New().String(),
		UserID:    userID,
		Title:     title,
		CreatedAt: time.Now().UTC(),
	}
	s.seq++
	s.plans[plan.ID] = plan
	s.order[plan.ID] = s.seq
	return plan, nil
}

func (s *PlansMemoryStorage) ListItems(ctx context.Context, planID string) ([]storage.PlanItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	byDOW := s.items[planID]
	out := make([]storage.PlanItem, 0, len(byDOW))
	for _, item := range byDOW {
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DOW < out[j].DOW })
	return out, nil
}

func (s *PlansMemoryStorage) DeleteItems(ctx context.Context, planID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.items, planID)
	return nil
}

func (s *PlansMemoryStorage) InsertItems(ctx context.Context, planID string, items []storage.PlanItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.insertLocked(planID, items)
}

func (s *PlansMemoryStorage) ReplaceItems(ctx context.Context, planID string, items []storage.PlanItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	previous := s.items[planID]
	delete(s.items, planID)
	if err := s.insertLocked(planID, items); err != nil {
		if previous != nil {
			s.items[planID] = previous
		}
		return err
	}
	return nil
}

func (s *PlansMemoryStorage) insertLocked(planID string, items []storage.PlanItem) error {
	if _, ok := s.plans[planID]; !ok {
		return fmt.Errorf("plan %s: %w", planID, storage.ErrNotFound)
	}

	existing := s.items[planID]
	seen := make(map[int]bool, len(items))
	for _, item := range items {
		if item.DOW < 0 || item.DOW > 6 {
			return fmt.Errorf("plan_items: dow %d out of range", item.DOW)
		}
		if _, dup := existing[item.DOW]; dup || seen[item.DOW] {
			return fmt.Errorf("plan_items: duplicate dow %d for plan %s", item.DOW, planID)
		}
		seen[item.DOW] = true
	}

	if existing == nil {
		existing = make(map[int]storage.PlanItem, len(items))
		s.items[planID] = existing
	}
	for _, item := range items {
		item.PlanID = planID
		existing[item.DOW] = item
	}
	return nil
}
