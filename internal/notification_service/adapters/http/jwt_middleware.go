package http

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

const SubjectContextKey = contextKey("jwtSubject")

// JWTMiddleware accepts HS256 bearer tokens signed with secret and stores the
// token subject in the request context.
func JWTMiddleware(secret []byte, logger *slog.Logger) func(next http.Handler) http.Handler {
	log := logger.With("component", "jwt_middleware")
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			scheme, tokenString, ok := strings.Cut(r.Header.Get("Authorization"), " ")
			if !ok || scheme != "Bearer" || tokenString == "" {
				http.Error(w, "Bearer token required", http.StatusUnauthorized)
				return
			}

			claims := jwt.MapClaims{}
			_, err := parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
				return secret, nil
			})
			if err != nil {
				log.WarnContext(r.Context(), "Token validation failed", "error", err)
				http.Error(w, "Invalid or expired token", http.StatusUnauthorized)
				return
			}
			sub, _ := claims.GetSubject()
			ctx := context.WithValue(r.Context(), SubjectContextKey, sub)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
