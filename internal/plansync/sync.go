// Package plansync moves a planner.Store to and from the remote plan storage
// using full-replace semantics.
package plansync

import (
	"context"
	"log"
	"strings"

	"github.com/fdg312/weekplan/internal/planner"
	"github.com/fdg312/weekplan/internal/storage"
)

// DefaultPlanTitle is used when a user gets their first plan.
const DefaultPlanTitle = "My Week Plan"

// Remote is the plan persistence the service talks to.
type Remote interface {
	LatestPlan(ctx context.Context, userID string) (storage.Plan, bool, error)
	CreatePlan(ctx context.Context, userID, title string) (storage.Plan, error)
	ListItems(ctx context.Context, planID string) ([]storage.PlanItem, error)
	DeleteItems(ctx context.Context, planID string) error
	InsertItems(ctx context.Context, planID string, items []storage.PlanItem) error
}

// Replacer is implemented by remotes that can swap a plan's items in one
// atomic step. SavePlan prefers it over delete-then-insert.
type Replacer interface {
	ReplaceItems(ctx context.Context, planID string, items []storage.PlanItem) error
}

type Logger interface {
	Printf(format string, v ...any)
}

// Service loads and saves week plans. Remote failures are logged and
// reported as false, never returned as errors.
type Service struct {
	remote       Remote
	logger       Logger
	defaultTitle string
	atomic       bool
}

func NewService(remote Remote, logger Logger) *Service {
	if logger == nil {
		logger = log.Default()
	}
	_, atomic := remote.(Replacer)
	return &Service{
		remote:       remote,
		logger:       logger,
		defaultTitle: DefaultPlanTitle,
		atomic:       atomic,
	}
}

// WithDefaultTitle overrides the title of newly created plans.
func (s *Service) WithDefaultTitle(title string) *Service {
	if strings.TrimSpace(title) != "" {
		s.defaultTitle = title
	}
	return s
}

// WithAtomicSave toggles the Replacer path. Disabling it restores plain
// delete-then-insert even when the remote supports atomic replace.
func (s *Service) WithAtomicSave(enabled bool) *Service {
	_, ok := s.remote.(Replacer)
	s.atomic = enabled && ok
	return s
}

// EnsurePlan returns the user's latest plan id, creating a plan when the
// user has none. It returns false when no plan could be resolved.
func (s *Service) EnsurePlan(ctx context.Context, userID string) (string, bool) {
	if strings.TrimSpace(userID) == "" {
		return "", false
	}

	plan, found, err := s.remote.LatestPlan(ctx, userID)
	if err != nil {
		s.logger.Printf("WARN plansync: failed to fetch plans user=%s err=%v", userID, err)
		return "", false
	}
	if found {
		return plan.ID, true
	}

	plan, err = s.remote.CreatePlan(ctx, userID, s.defaultTitle)
	if err != nil {
		s.logger.Printf("WARN plansync: failed to create plan user=%s err=%v", userID, err)
		return "", false
	}
	return plan.ID, true
}

// LoadPlan resolves the user's plan and replaces the store contents with
// its items. On any failure the store is left untouched.
func (s *Service) LoadPlan(ctx context.Context, userID string, store *planner.Store) bool {
	planID, ok := s.EnsurePlan(ctx, userID)
	if !ok {
		return false
	}

	rows, err := s.remote.ListItems(ctx, planID)
	if err != nil {
		s.logger.Printf("WARN plansync: failed to fetch plan items plan=%s err=%v", planID, err)
		return false
	}

	store.Load(planner.Snapshot{PlanID: planID, Items: Normalize(rows)})
	return true
}

// SavePlan writes the store snapshot over the remote items of the bound
// plan. The store is never rolled back when the save fails.
func (s *Service) SavePlan(ctx context.Context, store *planner.Store) bool {
	planID := store.PlanID()
	if planID == "" {
		return false
	}

	rows := ToRows(store.Snapshot())

	if s.atomic {
		if err := s.remote.(Replacer).ReplaceItems(ctx, planID, rows); err != nil {
			s.logger.Printf("WARN plansync: failed to replace plan items plan=%s err=%v", planID, err)
			return false
		}
		return true
	}

	// Not transactional: a failed insert leaves the remote plan empty.
	if err := s.remote.DeleteItems(ctx, planID); err != nil {
		s.logger.Printf("WARN plansync: failed to delete plan items plan=%s err=%v", planID, err)
		return false
	}
	if len(rows) == 0 {
		return true
	}
	if err := s.remote.InsertItems(ctx, planID, rows); err != nil {
		s.logger.Printf("WARN plansync: failed to save plan items plan=%s err=%v", planID, err)
		return false
	}
	return true
}

// Normalize maps remote rows to slots. Missing titles become the empty
// title and missing images become "".
func Normalize(rows []storage.PlanItem) []planner.DaySlot {
	out := make([]planner.DaySlot, 0, len(rows))
	for _, row := range rows {
		slot := planner.DaySlot{DOW: row.DOW, Title: planner.EmptyTitle}
		if row.Title != nil {
			slot.Title = *row.Title
		}
		if row.ImageURL != nil {
			slot.ImageURL = *row.ImageURL
		}
		if row.Color != nil {
			slot.Color = *row.Color
		}
		out = append(out, slot)
	}
	return out
}

// ToRows maps a snapshot to remote rows. An unset color is stored as NULL.
func ToRows(snap planner.Snapshot) []storage.PlanItem {
	rows := make([]storage.PlanItem, 0, len(snap.Items))
	for _, item := range snap.Items {
		title := item.Title
		image := item.ImageURL
		row := storage.PlanItem{
			PlanID:   snap.PlanID,
			DOW:      item.DOW,
			Title:    &title,
			ImageURL: &image,
		}
		if item.Color != "" {
			color := item.Color
			row.Color = &color
		}
		rows = append(rows, row)
	}
	return rows
}
