package middleware

import (
	"net/http"

	"github.com/go-chi/cors"

	"github.com/angelmondragon/localdrop-backend/pkg/config"
)

// CORS applies the browser origin policy. Preflight answers are cached by
// the browser for cfg.MaxAge seconds.
func CORS(cfg config.CORSConfig) func(http.Handler) http.Handler {
	opts := cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut,
			http.MethodPatch, http.MethodDelete, http.MethodOptions,
		},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", IdempotencyKeyHeader, GuestKeyHeader},
		ExposedHeaders:   []string{requestIDHeader, replayedHeader},
		AllowCredentials: true,
		MaxAge:           cfg.MaxAge,
	}
	return cors.Handler(opts)
}
