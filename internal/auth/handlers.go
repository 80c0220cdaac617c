package auth

import (
	"encoding/json"
	"errors"
	"net/http"
)

type Handlers struct {
	service *Service
}

func NewHandlers(service *Service) *Handlers {
	return &Handlers{service: service}
}

// HandleSignIn handles POST /v1/auth/sign-in.
// Unknown emails are registered on the fly.
func (h *Handlers) HandleSignIn(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeCredentials(w, r)
	if !ok {
		return
	}

	resp, err := h.service.SignInOrSignUp(r.Context(), req.Email, req.Password)
	if err != nil {
		writeAuthError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleSignUp handles POST /v1/auth/sign-up
func (h *Handlers) HandleSignUp(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeCredentials(w, r)
	if !ok {
		return
	}

	resp, err := h.service.SignUp(r.Context(), req.Email, req.Password)
	if err != nil {
		writeAuthError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

// HandleSignOut handles POST /v1/auth/sign-out
func (h *Handlers) HandleSignOut(w http.ResponseWriter, r *http.Request) {
	token, ok := bearerToken(r.Header.Get("Authorization"))
	if !ok {
		writeErrorResponse(w, http.StatusUnauthorized, "unauthorized", "Unauthorized")
		return
	}

	if err := h.service.SignOut(r.Context(), token); err != nil {
		writeErrorResponse(w, http.StatusUnauthorized, "unauthorized", "Invalid or expired token")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleSession handles GET /v1/auth/session
func (h *Handlers) HandleSession(w http.ResponseWriter, r *http.Request) {
	token, _ := bearerToken(r.Header.Get("Authorization"))
	session := h.service.GetSession(token)
	if session == nil {
		writeJSON(w, http.StatusOK, SessionInfoResponse{Authenticated: false})
		return
	}

	expiresAt := session.ExpiresAt
	writeJSON(w, http.StatusOK, SessionInfoResponse{
		Authenticated: true,
		UserID:        session.UserID,
		Email:         session.Email,
		ExpiresAt:     &expiresAt,
	})
}

func decodeCredentials(w http.ResponseWriter, r *http.Request) (CredentialsRequest, bool) {
	var req CredentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return req, false
	}
	if req.Email == "" || req.Password == "" {
		writeErrorResponse(w, http.StatusBadRequest, "invalid_request", "email and password are required")
		return req, false
	}
	return req, true
}

func writeAuthError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidEmail):
		writeErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid email address")
	case errors.Is(err, ErrPasswordTooShort):
		writeErrorResponse(w, http.StatusBadRequest, "invalid_request", "Password is too short")
	case errors.Is(err, ErrEmailTaken):
		writeErrorResponse(w, http.StatusConflict, "email_taken", "User already registered")
	case errors.Is(err, ErrInvalidCredentials):
		writeErrorResponse(w, http.StatusUnauthorized, "invalid_credentials", "Invalid login credentials")
	default:
		writeErrorResponse(w, http.StatusInternalServerError, "internal_error", "Authentication failed")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeErrorResponse(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{
		Error: ErrorDetail{
			Code:    code,
			Message: message,
		},
	})
}
