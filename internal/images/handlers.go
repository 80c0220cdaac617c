package images

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/fdg312/weekplan/internal/userctx"
)

// maxMemory bounds the in-memory part of multipart parsing.
const maxMemory = 32 << 20

// Handlers serves image uploads and downloads.
type Handlers struct {
	service *Service
}

func NewHandlers(service *Service) *Handlers {
	return &Handlers{service: service}
}

// HandleUpload handles POST /v1/images
func (h *Handlers) HandleUpload(w http.ResponseWriter, r *http.Request) {
	userID, ok := userctx.GetUserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "Authentication required")
		return
	}

	fileHeader, ok := ReadUpload(w, r)
	if !ok {
		return
	}

	dto, err := h.service.Upload(r.Context(), userID, fileHeader)
	if err != nil {
		WriteUploadError(w, h.service, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(dto)
}

// HandleGet handles GET /v1/images/{id}
func (h *Handlers) HandleGet(w http.ResponseWriter, r *http.Request) {
	redirectURL, img, err := h.service.Resolve(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, ErrImageNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "Image not found")
		} else {
			writeError(w, http.StatusInternalServerError, "internal_error", "Failed to load image")
		}
		return
	}

	if redirectURL != "" {
		http.Redirect(w, r, redirectURL, http.StatusFound)
		return
	}

	w.Header().Set("Content-Type", img.ContentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(img.Data)))
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.Write(img.Data)
}

// HandleDelete handles DELETE /v1/images/{id}
func (h *Handlers) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID, ok := userctx.GetUserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "Authentication required")
		return
	}

	if err := h.service.Delete(r.Context(), userID, r.PathValue("id")); err != nil {
		if errors.Is(err, ErrImageNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "Image not found")
		} else {
			writeError(w, http.StatusInternalServerError, "internal_error", "Failed to delete image")
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ReadUpload parses the multipart "file" field. On failure it writes the
// error response and returns false.
func ReadUpload(w http.ResponseWriter, r *http.Request) (*multipart.FileHeader, bool) {
	if err := r.ParseMultipartForm(maxMemory); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "Failed to parse multipart form")
		return nil, false
	}

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing_file", "File is required")
		return nil, false
	}
	file.Close() // service reopens it
	return fileHeader, true
}

// WriteUploadError maps Upload errors to responses.
func WriteUploadError(w http.ResponseWriter, service *Service, err error) {
	switch {
	case errors.Is(err, ErrFileTooLarge):
		writeError(w, http.StatusBadRequest, "file_too_large", fmt.Sprintf("File exceeds maximum size of %d MB", service.MaxUploadMB()))
	case errors.Is(err, ErrUnsupportedMime):
		writeError(w, http.StatusBadRequest, "unsupported_mime", "File type not supported")
	case errors.Is(err, ErrInvalidImage):
		writeError(w, http.StatusBadRequest, "invalid_image", "File is not a valid image")
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", "Failed to store image")
	}
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
