package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/fdg312/weekplan/internal/ai"
	"github.com/fdg312/weekplan/internal/auth"
	"github.com/fdg312/weekplan/internal/blob"
	"github.com/fdg312/weekplan/internal/config"
	"github.com/fdg312/weekplan/internal/events"
	"github.com/fdg312/weekplan/internal/images"
	"github.com/fdg312/weekplan/internal/mailer"
	"github.com/fdg312/weekplan/internal/plansync"
	"github.com/fdg312/weekplan/internal/preferences"
	"github.com/fdg312/weekplan/internal/recipes"
	"github.com/fdg312/weekplan/internal/storage"
	"github.com/fdg312/weekplan/internal/storage/memory"
	"github.com/fdg312/weekplan/internal/storage/postgres"
	"github.com/fdg312/weekplan/internal/weekplan"
)

// Server представляет HTTP сервер
type Server struct {
	config         *config.Config
	mux            *http.ServeMux
	storage        storage.Storage
	stores         stores
	bus            *events.Bus
	authMiddleware *auth.Middleware
	httpServer     *http.Server
}

// stores are the per-domain views of the active backend.
type stores struct {
	users       storage.UsersStorage
	profiles    storage.ProfilesStorage
	plans       storage.PlansStorage
	preferences storage.PreferencesStorage
	images      storage.ImagesStorage
}

// New создаёт новый HTTP сервер
func New(cfg *config.Config) *Server {
	s := &Server{
		config: cfg,
		mux:    http.NewServeMux(),
		bus:    events.NewBus(),
	}

	// Инициализируем storage
	s.initStorage()

	// Регистрируем маршруты
	s.routes()
	return s
}

// initStorage инициализирует storage (Memory или Postgres)
func (s *Server) initStorage() {
	if s.config.DatabaseURL == "" {
		log.Println("INFO storage: mode=memory (DATABASE_URL not set)")
		s.useMemory(memory.New())
		return
	}

	log.Println("INFO storage: connecting to PostgreSQL...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pgStorage, err := postgres.New(ctx, s.config.DatabaseURL)
	if err != nil {
		log.Printf("WARN storage: postgres connect failed err=%v, fallback=memory", err)
		s.useMemory(memory.New())
		return
	}

	log.Println("INFO storage: mode=postgres")
	s.storage = pgStorage
	s.stores = stores{
		users:       pgStorage.GetUsersStorage(),
		profiles:    pgStorage.GetProfilesStorage(),
		plans:       pgStorage.GetPlansStorage(),
		preferences: pgStorage.GetPreferencesStorage(),
		images:      pgStorage.GetImagesStorage(),
	}
}

func (s *Server) useMemory(m *memory.MemoryStorage) {
	s.storage = m
	s.stores = stores{
		users:       m.GetUsersStorage(),
		profiles:    m.GetProfilesStorage(),
		plans:       m.GetPlansStorage(),
		preferences: m.GetPreferencesStorage(),
		images:      m.GetImagesStorage(),
	}
}

// routes регистрирует маршруты
func (s *Server) routes() {
	// Health check (no auth required)
	s.mux.HandleFunc("/healthz", s.handleHealthz)

	// Auth API (no auth required)
	emailSender, err := mailer.NewSenderFromConfig(s.config, log.Default())
	if err != nil {
		log.Printf("WARN mailer: init_failed=%q, fallback=local", err.Error())
		emailSender = mailer.NewLocalSender(log.Default())
	}
	authService := auth.NewService(s.config, s.stores.users, s.stores.profiles, emailSender, log.Default())
	authHandler := auth.NewHandlers(authService)
	s.authMiddleware = auth.NewMiddleware(s.config, authService)

	// POST /v1/auth/sign-in - sign in (unknown email signs up)
	s.mux.HandleFunc("POST /v1/auth/sign-in", authHandler.HandleSignIn)

	// POST /v1/auth/sign-up - create account
	s.mux.HandleFunc("POST /v1/auth/sign-up", authHandler.HandleSignUp)

	// POST /v1/auth/sign-out - revoke the bearer token
	s.mux.HandleFunc("POST /v1/auth/sign-out", authHandler.HandleSignOut)

	// GET /v1/auth/session - inspect the bearer token
	s.mux.HandleFunc("GET /v1/auth/session", authHandler.HandleSession)

	// Images API
	imagesBlobStore := s.initBlobStore()
	imagesService := images.NewService(s.stores.images, imagesBlobStore, images.Options{
		MaxUploadMB:     s.config.UploadMaxMB,
		AllowedMimes:    s.config.UploadAllowedMime,
		MaxWidth:        s.config.ImageMaxWidth,
		PublicBaseURL:   s.config.Blob.S3.PublicBaseURL,
		PreferPublicURL: s.config.Blob.S3.PreferPublicURL,
		PresignTTL:      s.config.Blob.S3.PresignTTLSeconds,
	})
	imagesHandler := images.NewHandlers(imagesService)

	// POST /v1/images - upload image
	s.mux.HandleFunc("POST /v1/images", imagesHandler.HandleUpload)

	// GET /v1/images/{id} - serve or redirect (public)
	s.mux.HandleFunc("GET /v1/images/{id}", imagesHandler.HandleGet)

	// DELETE /v1/images/{id} - delete own image
	s.mux.HandleFunc("DELETE /v1/images/{id}", imagesHandler.HandleDelete)

	// Planner API
	syncService := plansync.NewService(s.stores.plans, log.Default()).
		WithDefaultTitle(s.config.PlanDefaultTitle).
		WithAtomicSave(s.config.PlanAtomicSave)
	plannerService := weekplan.NewService(syncService, s.bus, log.Default()).
		WithImages(imagesService).
		WithExport(s.config.PlanDefaultTitle, s.config.AppPublicURL+"/weekplan.html")
	authService.OnSessionChange(plannerService.HandleSessionChange)
	plannerHandler := weekplan.NewHandler(plannerService, imagesService)

	// GET /v1/planner - current grid
	s.mux.HandleFunc("GET /v1/planner", plannerHandler.HandleGet)

	// POST /v1/planner/load - reload from storage
	s.mux.HandleFunc("POST /v1/planner/load", plannerHandler.HandleLoad)

	// PUT /v1/planner/days/{dow} - edit a day
	s.mux.HandleFunc("PUT /v1/planner/days/{dow}", plannerHandler.HandleSetDay)

	// DELETE /v1/planner/days/{dow} - clear a day
	s.mux.HandleFunc("DELETE /v1/planner/days/{dow}", plannerHandler.HandleRemoveDay)

	// POST /v1/planner/days/{dow}/image - upload a day image
	s.mux.HandleFunc("POST /v1/planner/days/{dow}/image", plannerHandler.HandleSetDayImage)

	// POST /v1/planner/drop - drag/drop reorder
	s.mux.HandleFunc("POST /v1/planner/drop", plannerHandler.HandleDrop)

	// POST /v1/planner/save - save plan
	s.mux.HandleFunc("POST /v1/planner/save", plannerHandler.HandleSave)

	// POST /v1/planner/demo - demo plan
	s.mux.HandleFunc("POST /v1/planner/demo", plannerHandler.HandleDemo)

	// POST /v1/planner/import - recipe:selected
	s.mux.HandleFunc("POST /v1/planner/import", plannerHandler.HandleImport)

	// GET /v1/planner/export - PDF/CSV export
	s.mux.HandleFunc("GET /v1/planner/export", plannerHandler.HandleExport)

	// Preferences API
	preferencesService := preferences.NewService(s.stores.preferences)
	preferencesHandler := preferences.NewHandler(preferencesService)
	s.mux.HandleFunc("GET /v1/preferences", preferencesHandler.HandleGet)
	s.mux.HandleFunc("PUT /v1/preferences", preferencesHandler.HandlePut)

	// Recipes API
	aiClient := ai.NewClient(s.config)
	recipesService := recipes.NewService(aiClient, preferencesService)
	clipper := recipes.NewClipper(time.Duration(s.config.ClipperTimeoutSeconds)*time.Second, s.config.ClipperUserAgent)
	recipesHandler := recipes.NewHandler(recipesService, clipper, aiClient)
	s.mux.HandleFunc("GET /v1/recipes/models", recipesHandler.HandleModels)
	s.mux.HandleFunc("POST /v1/recipes/generate", recipesHandler.HandleGenerate)
	s.mux.HandleFunc("POST /v1/recipes/clip", recipesHandler.HandleClip)
}

// initBlobStore resolves BLOB_MODE for slot images. nil means local mode.
func (s *Server) initBlobStore() blob.Store {
	log.Printf("INFO blob: initializing images store (BLOB_MODE=%s)", s.config.Blob.Mode)
	store, mode, err := blob.NewBlobStore(context.Background(), s.config.Blob, log.Default())
	if err != nil {
		log.Fatalf("FATAL blob: failed to initialize images store: %v", err)
	}
	log.Printf("INFO blob: images blob mode: %s", mode)
	return store
}

// Handler returns the routes wrapped in the middleware chain.
// Outermost first: CORS → Rate Limit → Auth → Router.
func (s *Server) Handler() http.Handler {
	var handler http.Handler = s.mux
	if s.authMiddleware != nil {
		if s.config.AuthRequired {
			handler = s.authMiddleware.RequireAuth(handler)
		} else {
			handler = s.authMiddleware.OptionalAuth(handler)
		}
	}
	handler = RateLimitMiddleware(s.config, handler)
	handler = CORSMiddleware(s.config, handler)
	return handler
}

// handleHealthz возвращает статус сервера
func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{
		"status": "ok",
	})
}

// Start запускает HTTP сервер
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.config.Port)

	log.Printf("INFO server: listening on http://localhost%s", addr)
	log.Printf("INFO server: health check http://localhost%s/healthz", addr)
	log.Printf("INFO server: planner API http://localhost%s/v1/planner", addr)

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	err := s.httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown stops accepting requests and waits for in-flight ones.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

// Close закрывает storage и освобождает ресурсы
func (s *Server) Close() error {
	if s.storage != nil {
		return s.storage.Close()
	}
	return nil
}
