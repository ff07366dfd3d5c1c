package auth

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/sechenov-plus/quiz-lambda/internal/config"
)

func secretMatches(given, expected string) bool {
	if expected == "" || given == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(given), []byte(expected)) == 1
}

// QueryTokenGuard admits requests whose ?token= equals secret. An empty
// secret rejects everything.
func QueryTokenGuard(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if secret == "" {
				config.WithContext(r.Context()).Error("Admin migration token is not configured")
			}
			if !secretMatches(r.URL.Query().Get("token"), secret) {
				config.Error(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// BearerSecretGuard admits requests carrying "Authorization: Bearer <secret>".
func BearerSecretGuard(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if secret == "" {
				config.WithContext(r.Context()).Error("Cron secret is not configured")
			}
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") || !secretMatches(strings.TrimPrefix(header, "Bearer "), secret) {
				config.Error(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
