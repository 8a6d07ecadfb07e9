package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"
)

const APIKeyHeader = "X-Api-Key"

// APIKeyMiddleware checks the X-Api-Key header against the bcrypt hash
// configured for the {provider} route parameter. It must be attached with
// chi's With so that the parameter is already resolved.
func APIKeyMiddleware(hashes map[string]string, logger *slog.Logger) func(next http.Handler) http.Handler {
	log := logger.With("component", "api_key_middleware")
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			provider := chi.URLParam(r, "provider")
			hash, ok := hashes[provider]
			if !ok {
				log.WarnContext(r.Context(), "Unknown provider", "provider", provider)
				http.Error(w, "Unknown provider", http.StatusUnauthorized)
				return
			}
			key := r.Header.Get(APIKeyHeader)
			if key == "" {
				http.Error(w, "API key required", http.StatusUnauthorized)
				return
			}
			if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(key)); err != nil {
				log.WarnContext(r.Context(), "API key rejected", "provider", provider)
				http.Error(w, "Invalid API key", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
