package weekplan

import (
	"context"
	"errors"
	"log"
	"mime/multipart"
	"strings"

	"github.com/fdg312/weekplan/internal/auth"
	"github.com/fdg312/weekplan/internal/events"
	"github.com/fdg312/weekplan/internal/export"
	"github.com/fdg312/weekplan/internal/images"
	"github.com/fdg312/weekplan/internal/planner"
)

var (
	ErrPlanNotReady = errors.New("Plan ikke klar enda.")
	ErrSaveFailed   = errors.New("Kunne ikke lagre planen.")
	ErrNoImages     = errors.New("image uploads are not configured")
)

// SavedMessage is shown after a successful save.
const SavedMessage = "Lagret!"

// Syncer is satisfied by *plansync.Service.
type Syncer interface {
	LoadPlan(ctx context.Context, c Caller, store *planner.Store) bool
	SavePlan(ctx context.Context, store *planner.Store) bool
}

// ImageUploader is satisfied by *images.Service.
type ImageUploader interface {
	Upload(ctx context.Context, c Caller, fileHeader *multipart.FileHeader) (*images.ImageDTO, error)
}

type Logger interface {
	Printf(format string, v ...any)
}

// Service runs planner operations on per-session workspaces.
type Service struct {
	sync     Syncer
	spaces   *Registry
	bus      *events.Bus
	uploader ImageUploader
	logger   Logger
	title    string
	shareURL string
}

// NewService creates the service and subscribes it to recipe:selected.
func NewService(sync Syncer, bus *events.Bus, logger Logger) *Service {
	if logger == nil {
		logger = log.Default()
	}
	if bus == nil {
		bus = events.NewBus()
	}
	s := &Service{
		sync:   sync,
		spaces: NewRegistry(),
		bus:    bus,
		logger: logger,
		title:  "My Week Plan",
	}
	bus.SubscribeRecipeSelected(s.importSelected)
	return s
}

// WithImages enables slot image uploads.
func (s *Service) WithImages(uploader ImageUploader) *Service {
	s.uploader = uploader
	return s
}

// WithExport sets the plan title and the planner URL printed in exports.
func (s *Service) WithExport(title, shareURL string) *Service {
	if strings.TrimSpace(title) != "" {
		s.title = title
	}
	s.shareURL = shareURL
	return s
}

// HandleSessionChange follows the auth lifecycle: sign-in loads the plan
// into the new session's workspace, sign-out drops that workspace. Other
// sessions of the same user are not touched. Register with
// auth.OnSessionChange.
func (s *Service) HandleSessionChange(ctx context.Context, event auth.SessionEvent, session auth.Session) {
	c := Caller{UserID: session.UserID, SessionID: session.TokenID, ExpiresAt: session.ExpiresAt}
	switch event {
	case auth.SessionSignedIn:
		ws := s.spaces.Get(c)
		ws.mu.Lock()
		s.loadLocked(ctx, c, ws)
		ws.mu.Unlock()
	case auth.SessionSignedOut:
		if ws := s.spaces.Remove(c); ws != nil {
			ws.mu.Lock()
			ws.store.Reset()
			ws.loaded = false
			ws.mu.Unlock()
		}
		s.logger.Printf("INFO weekplan: workspace cleared user=%s session=%s", c.UserID, c.SessionID)
	}
}

// loadLocked replaces the workspace contents with the remote plan. A failed
// load leaves the store untouched; a workspace that never loaded retries on
// its next use.
func (s *Service) loadLocked(ctx context.Context, c Caller, ws *Workspace) bool {
	ok := s.sync.LoadPlan(ctx, c.UserID, ws.store)
	if ok {
		ws.loaded = true
		s.logger.Printf("INFO weekplan: plan loaded user=%s plan=%s items=%d", c.UserID, ws.store.PlanID(), ws.store.Len())
	}
	return ok
}

// acquire locks the caller's workspace, loading the plan until a load
// succeeds. Callers must unlock ws.mu.
func (s *Service) acquire(ctx context.Context, c Caller) *Workspace {
	ws := s.spaces.Get(c)
	ws.mu.Lock()
	if !ws.loaded {
		s.loadLocked(ctx, c, ws)
	}
	return ws
}

// Grid returns the current dense grid.
func (s *Service) Grid(ctx context.Context, c Caller) GridResponse {
	ws := s.acquire(ctx, c)
	defer ws.mu.Unlock()
	return gridOf(ws.store)
}

// Load forces a reload from the remote. It reports false when the remote
// could not be read; the grid is then unchanged.
func (s *Service) Load(ctx context.Context, c Caller) (GridResponse, bool) {
	ws := s.spaces.Get(c)
	ws.mu.Lock()
	defer ws.mu.Unlock()

	ok := s.loadLocked(ctx, c, ws)
	return gridOf(ws.store), ok
}

// SetDay applies the edit modal. The title is trimmed and a blank title
// becomes the empty title; the image URL is trimmed.
func (s *Service) SetDay(ctx context.Context, c Caller, dow int, req UpdateDayRequest) (GridResponse, error) {
	if !planner.ValidDay(dow) {
		return GridResponse{}, planner.ErrInvalidDay
	}

	patch := planner.Patch{Color: req.Color}
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			title = planner.EmptyTitle
		}
		patch.Title = &title
	}
	if req.ImageURL != nil {
		image := strings.TrimSpace(*req.ImageURL)
		patch.ImageURL = &image
	}

	ws := s.acquire(ctx, c)
	defer ws.mu.Unlock()

	if err := ws.store.SetItem(dow, patch); err != nil {
		return GridResponse{}, err
	}
	return gridOf(ws.store), nil
}

// RemoveDay clears one slot.
func (s *Service) RemoveDay(ctx context.Context, c Caller, dow int) (GridResponse, error) {
	if !planner.ValidDay(dow) {
		return GridResponse{}, planner.ErrInvalidDay
	}

	ws := s.acquire(ctx, c)
	defer ws.mu.Unlock()

	ws.store.RemoveItem(dow)
	return gridOf(ws.store), nil
}

// Drop applies a drag/drop gesture.
func (s *Service) Drop(ctx context.Context, c Caller, req DropRequest) DropResponse {
	ws := s.acquire(ctx, c)
	defer ws.mu.Unlock()

	result := planner.ApplyDrop(ws.store, planner.Drop{Origin: req.SourceElement, From: req.From, To: req.To})
	return DropResponse{DropResult: result, Grid: gridOf(ws.store)}
}

// Save writes the workspace over the remote plan. The workspace keeps its
// contents when the save fails.
func (s *Service) Save(ctx context.Context, c Caller) error {
	ws := s.acquire(ctx, c)
	defer ws.mu.Unlock()

	if ws.store.PlanID() == "" {
		return ErrPlanNotReady
	}
	if !s.sync.SavePlan(ctx, ws.store) {
		return ErrSaveFailed
	}
	s.logger.Printf("INFO weekplan: plan saved user=%s plan=%s items=%d", c.UserID, ws.store.PlanID(), ws.store.Len())
	return nil
}

// Demo fills every day with the sample plan.
func (s *Service) Demo(ctx context.Context, c Caller) GridResponse {
	ws := s.acquire(ctx, c)
	defer ws.mu.Unlock()

	planner.ApplyDemoPlan(ws.store)
	return gridOf(ws.store)
}

// Import publishes recipe:selected for the session and returns the slot that
// received the recipe.
func (s *Service) Import(ctx context.Context, c Caller, req ImportRequest) (int, GridResponse, error) {
	if req.Day != nil && !planner.ValidDay(*req.Day) {
		return 0, GridResponse{}, planner.ErrInvalidDay
	}

	dow, err := s.bus.PublishRecipeSelected(ctx, events.RecipeSelected{
		UserID:    c.UserID,
		SessionID: c.SessionID,
		Recipe:    req.Recipe,
		Day:       req.Day,
	})
	if err != nil {
		return 0, GridResponse{}, err
	}
	return dow, s.Grid(ctx, c), nil
}

func (s *Service) importSelected(ctx context.Context, ev events.RecipeSelected) (int, error) {
	ws := s.acquire(ctx, Caller{UserID: ev.UserID, SessionID: ev.SessionID})
	defer ws.mu.Unlock()

	var choose planner.DayChooser
	if ev.Day != nil {
		choose = planner.FixedDay(*ev.Day)
	}
	return planner.ImportRecipe(ws.store, ev.Recipe, choose)
}

// SetDayImage uploads an image and points the slot at it.
func (s *Service) SetDayImage(ctx context.Context, c Caller, dow int, fileHeader *multipart.FileHeader) (*images.ImageDTO, GridResponse, error) {
	if !planner.ValidDay(dow) {
		return nil, GridResponse{}, planner.ErrInvalidDay
	}
	if s.uploader == nil {
		return nil, GridResponse{}, ErrNoImages
	}

	dto, err := s.uploader.Upload(ctx, c.UserID, fileHeader)
	if err != nil {
		return nil, GridResponse{}, err
	}

	ws := s.acquire(ctx, c)
	defer ws.mu.Unlock()

	url := dto.URL
	if err := ws.store.SetItem(dow, planner.Patch{ImageURL: &url}); err != nil {
		return nil, GridResponse{}, err
	}
	return dto, gridOf(ws.store), nil
}

// Export renders the current grid. owner is printed under the title when set.
func (s *Service) Export(ctx context.Context, c Caller, owner, format string) (*export.Document, error) {
	ws := s.acquire(ctx, c)
	days := ws.store.Items()
	ws.mu.Unlock()

	return export.Render(format, export.Plan{
		Title:    s.title,
		Owner:    owner,
		Days:     days,
		ShareURL: s.shareURL,
	})
}

func gridOf(store *planner.Store) GridResponse {
	items := store.Items()
	days := make([]DayView, len(items))
	for i, item := range items {
		days[i] = DayView{
			DOW:        item.DOW,
			Day:        planner.DayName(item.DOW),
			Title:      item.Title,
			ImageURL:   item.DisplayImage(),
			Color:      item.Color,
			Background: item.Background(),
			Empty:      item.IsEmpty(),
		}
	}
	return GridResponse{
		PlanID:   store.PlanID(),
		Days:     days,
		HasItems: store.Len() > 0,
	}
}
