package controller

import (
	"net/http"

	"github.com/go-chi/cors"
)

// WithCORS returns a middleware allowing cross-origin requests from the given
// origins. "*" allows any origin, in which case credentials are not allowed.
// Preflight requests are answered without reaching the next handler.
func WithCORS(allowedOrigins []string) func(http.Handler) http.Handler {
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}

	wildcard := false
	for _, o := range allowedOrigins {
		if o == "*" {
			wildcard = true
		}
	}

	return cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{
			"Accept", "Authorization", "Content-Type", "Content-Length", "Accept-Encoding",
			"Cache-Control", "X-Request-Id",
		},
		ExposedHeaders:   []string{"X-Request-Id", "Content-Disposition"},
		AllowCredentials: !wildcard,
		MaxAge:           300,
	})
}
