package weekplan

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/fdg312/weekplan/internal/export"
	"github.com/fdg312/weekplan/internal/images"
	"github.com/fdg312/weekplan/internal/planner"
	"github.com/fdg312/weekplan/internal/userctx"
)

// Handler exposes the planner over HTTP.
type Handler struct {
	service *Service
	images  *images.Service // for upload error messages; may be nil
}

func NewHandler(service *Service, imagesService *images.Service) *Handler {
	return &Handler{service: service, images: imagesService}
}

// HandleGet handles GET /v1/planner
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, h.service.Grid(r.Context(), caller))
}

// HandleLoad handles POST /v1/planner/load
func (h *Handler) HandleLoad(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}

	grid, loaded := h.service.Load(r.Context(), caller)
	if !loaded {
		writeError(w, http.StatusBadGateway, "load_failed", "Kunne ikke hente planen.")
		return
	}
	writeJSON(w, http.StatusOK, grid)
}

// HandleSetDay handles PUT /v1/planner/days/{dow}
func (h *Handler) HandleSetDay(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	dow, ok := pathDay(w, r)
	if !ok {
		return
	}

	var req UpdateDayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}

	grid, err := h.service.SetDay(r.Context(), caller, dow, req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, grid)
}

// HandleRemoveDay handles DELETE /v1/planner/days/{dow}
func (h *Handler) HandleRemoveDay(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	dow, ok := pathDay(w, r)
	if !ok {
		return
	}

	grid, err := h.service.RemoveDay(r.Context(), caller, dow)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, grid)
}

// HandleDrop handles POST /v1/planner/drop
func (h *Handler) HandleDrop(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}

	var req DropRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}
	writeJSON(w, http.StatusOK, h.service.Drop(r.Context(), caller, req))
}

// HandleSave handles POST /v1/planner/save
func (h *Handler) HandleSave(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}

	if err := h.service.Save(r.Context(), caller); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, SaveResponse{Saved: true, Message: SavedMessage})
}

// HandleDemo handles POST /v1/planner/demo
func (h *Handler) HandleDemo(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, h.service.Demo(r.Context(), caller))
}

// HandleImport handles POST /v1/planner/import
func (h *Handler) HandleImport(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}

	var req ImportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}

	dow, grid, err := h.service.Import(r.Context(), caller, req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ImportResponse{DOW: dow, Grid: grid})
}

// HandleExport handles GET /v1/planner/export?format=pdf|csv
func (h *Handler) HandleExport(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	id, _ := userctx.GetIdentity(r.Context())

	doc, err := h.service.Export(r.Context(), caller, id.Email, r.URL.Query().Get("format"))
	if err != nil {
		if errors.Is(err, export.ErrUnsupportedFormat) {
			writeError(w, http.StatusBadRequest, "invalid_request", "format must be pdf or csv")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", "Failed to export plan")
		return
	}

	w.Header().Set("Content-Type", doc.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", doc.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(doc.Data)))
	w.WriteHeader(http.StatusOK)
	w.Write(doc.Data)
}

// HandleSetDayImage handles POST /v1/planner/days/{dow}/image
func (h *Handler) HandleSetDayImage(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	dow, ok := pathDay(w, r)
	if !ok {
		return
	}

	fileHeader, ok := images.ReadUpload(w, r)
	if !ok {
		return
	}

	dto, grid, err := h.service.SetDayImage(r.Context(), caller, dow, fileHeader)
	if err != nil {
		switch {
		case errors.Is(err, planner.ErrInvalidDay):
			writeServiceError(w, err)
		case errors.Is(err, ErrNoImages) || h.images == nil:
			writeError(w, http.StatusServiceUnavailable, "images_disabled", "Image uploads are not available")
		default:
			images.WriteUploadError(w, h.images, err)
		}
		return
	}
	writeJSON(w, http.StatusCreated, SlotImageResponse{ImageID: dto.ID, ImageURL: dto.URL, Grid: grid})
}

// requireCaller resolves the session whose workspace the request uses.
func requireCaller(w http.ResponseWriter, r *http.Request) (Caller, bool) {
	id, ok := userctx.GetIdentity(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "Authentication required")
		return Caller{}, false
	}
	return CallerFrom(id), true
}

func pathDay(w http.ResponseWriter, r *http.Request) (int, bool) {
	dow, err := strconv.Atoi(r.PathValue("dow"))
	if err != nil || !planner.ValidDay(dow) {
		writeError(w, http.StatusBadRequest, "invalid_day", planner.ErrInvalidDay.Error())
		return 0, false
	}
	return dow, true
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, planner.ErrInvalidDay):
		writeError(w, http.StatusBadRequest, "invalid_day", err.Error())
	case errors.Is(err, planner.ErrNoTargetDay):
		writeError(w, http.StatusConflict, "no_target_day", "Uken er full. Velg en dag (0=Monday … 6=Sunday).")
	case errors.Is(err, ErrPlanNotReady):
		writeError(w, http.StatusConflict, "plan_not_ready", err.Error())
	case errors.Is(err, ErrSaveFailed):
		writeError(w, http.StatusBadGateway, "save_failed", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", "Internal server error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}
