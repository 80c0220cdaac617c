package httpserver

import (
	"net/http"
	"strings"

	"github.com/fdg312/weekplan/internal/config"
	"github.com/rs/cors"
)

// CORSMiddleware adds CORS headers for the configured origins. An empty
// origin list denies every cross-origin request.
func CORSMiddleware(cfg *config.Config, next http.Handler) http.Handler {
	origins := make([]string, 0, len(cfg.CORSAllowedOrigins))
	for _, o := range cfg.CORSAllowedOrigins {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}

	opts := cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: cfg.CORSAllowCredentials,
		MaxAge:           600,
	}
	// rs/cors treats an empty list as "*".
	if len(origins) == 0 {
		opts.AllowOriginFunc = func(string) bool { return false }
	}

	return cors.New(opts).Handler(next)
}
