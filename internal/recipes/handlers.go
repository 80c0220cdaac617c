package recipes

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/fdg312/weekplan/internal/ai"
	"github.com/fdg312/weekplan/internal/planner"
	"github.com/fdg312/weekplan/internal/userctx"
)

// ModelLister is satisfied by *ai.Client.
type ModelLister interface {
	Models(ctx context.Context, freeOnly bool) ([]ai.Model, error)
}

type Handler struct {
	service *Service
	clipper *Clipper
	models  ModelLister
}

func NewHandler(service *Service, clipper *Clipper, models ModelLister) *Handler {
	return &Handler{service: service, clipper: clipper, models: models}
}

type recipesResponse struct {
	Recipes []planner.RecipePayload `json:"recipes"`
}

type clipRequest struct {
	URL string `json:"url"`
}

type clipResponse struct {
	Recipe planner.RecipePayload `json:"recipe"`
}

type modelsResponse struct {
	Models []ai.Model `json:"models"`
}

// HandleModels handles GET /v1/recipes/models?free_only=1
func (h *Handler) HandleModels(w http.ResponseWriter, r *http.Request) {
	freeOnly := r.URL.Query().Get("free_only") != "0"

	models, err := h.models.Models(r.Context(), freeOnly)
	if err != nil {
		writeError(w, http.StatusBadGateway, "ai_error", "Failed to load OpenRouter models")
		return
	}
	writeJSON(w, http.StatusOK, modelsResponse{Models: models})
}

// HandleGenerate handles POST /v1/recipes/generate
func (h *Handler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_payload", "Invalid request body")
		return
	}

	userID, _ := userctx.GetUserID(r.Context())
	recipes, err := h.service.Generate(r.Context(), userID, req)
	if err != nil {
		switch {
		case errors.Is(err, ai.ErrAPIKeyRequired),
			errors.Is(err, ai.ErrModelRequired),
			errors.Is(err, ai.ErrUnsupportedProvider):
			writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		default:
			writeError(w, http.StatusBadGateway, "ai_error", err.Error())
		}
		return
	}
	writeJSON(w, http.StatusOK, recipesResponse{Recipes: recipes})
}

// HandleClip handles POST /v1/recipes/clip
func (h *Handler) HandleClip(w http.ResponseWriter, r *http.Request) {
	var req clipRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_payload", "Invalid request body")
		return
	}

	recipe, err := h.clipper.Clip(r.Context(), req.URL)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidURL):
			writeError(w, http.StatusBadRequest, "invalid_request", "url must be an absolute http(s) URL")
		case errors.Is(err, ErrRecipeMissing):
			writeError(w, http.StatusUnprocessableEntity, "recipe_not_found", "No recipe found on page")
		default:
			writeError(w, http.StatusBadGateway, "fetch_failed", err.Error())
		}
		return
	}
	writeJSON(w, http.StatusOK, clipResponse{Recipe: recipe})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes an error response in the standard format.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]interface{}{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}
