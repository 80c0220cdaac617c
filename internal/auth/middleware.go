package auth

import (
	"context"
	"log"
	"net/http"
	"strings"

	"github.com/fdg312/weekplan/internal/config"
	"github.com/fdg312/weekplan/internal/userctx"
)

// LocalUserID owns requests that arrive without a token when auth is
// optional (AUTH_REQUIRED=false).
const LocalUserID = "00000000-0000-0000-0000-000000000001"

// Middleware: middleware для проверки авторизации
type Middleware struct {
	config  *config.Config
	service *Service
}

func NewMiddleware(cfg *config.Config, service *Service) *Middleware {
	return &Middleware{
		config:  cfg,
		service: service,
	}
}

// RequireAuth: middleware для защиты эндпоинтов
func (m *Middleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !m.config.AuthRequired || isPublicPath(r.Method, r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		session, err := m.authenticateHeader(r.Header.Get("Authorization"))
		if err != nil {
			writeErrorResponse(w, http.StatusUnauthorized, "unauthorized", "Unauthorized")
			return
		}

		next.ServeHTTP(w, r.WithContext(withSession(r, session)))
	})
}

// OptionalAuth validates Bearer token only when it is provided.
// Without token, requests run as LocalUserID.
func (m *Middleware) OptionalAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if isPublicPath(r.Method, r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		authHeader := r.Header.Get("Authorization")
		if strings.TrimSpace(authHeader) == "" {
			local := userctx.Identity{UserID: LocalUserID, Local: true}
			next.ServeHTTP(w, r.WithContext(userctx.WithIdentity(r.Context(), local)))
			return
		}

		session, err := m.authenticateHeader(authHeader)
		if err != nil {
			writeErrorResponse(w, http.StatusUnauthorized, "unauthorized", "Invalid or expired token")
			return
		}

		log.Printf("INFO auth: token accepted sub=%s method=%s path=%s", session.UserID, r.Method, r.URL.Path)
		next.ServeHTTP(w, r.WithContext(withSession(r, session)))
	})
}

func withSession(r *http.Request, session *Session) context.Context {
	return userctx.WithIdentity(r.Context(), userctx.Identity{
		UserID:    session.UserID,
		Email:     session.Email,
		SessionID: session.TokenID,
		ExpiresAt: session.ExpiresAt,
	})
}

func (m *Middleware) authenticateHeader(authHeader string) (*Session, error) {
	token, ok := bearerToken(authHeader)
	if !ok {
		return nil, ErrInvalidToken
	}
	return m.service.VerifyJWT(token)
}

func bearerToken(authHeader string) (string, bool) {
	parts := strings.SplitN(strings.TrimSpace(authHeader), " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || strings.TrimSpace(parts[1]) == "" {
		return "", false
	}
	return strings.TrimSpace(parts[1]), true
}

// isPublicPath lists routes served without a token. Image ids are random
// UUIDs so <img> tags can load them directly.
func isPublicPath(method, path string) bool {
	if path == "/healthz" || strings.HasPrefix(path, "/v1/auth/") {
		return true
	}
	return method == http.MethodGet && strings.HasPrefix(path, "/v1/images/")
}
