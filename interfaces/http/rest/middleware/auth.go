package middleware

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"planner-backend/application/ports"
	"planner-backend/domain/core/entities"
	"planner-backend/pkg/common"
	pkgerrors "planner-backend/pkg/errors"
)

type userContextKey struct{}

// Authenticate resolves the caller from a static API key. Clients send
// the key as a Bearer token or in X-API-Key; only the SHA-256 hash is
// ever stored or compared.
func Authenticate(users ports.UserRepository, logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := extractAPIKey(r)
			if key == "" {
				respondUnauthorized(w, "Missing API key")
				return
			}

			hash := HashAPIKey(key)
			user, err := users.GetByAPIKeyHash(r.Context(), hash)
			if err != nil {
				if pkgerrors.IsType(err, pkgerrors.ErrorTypeNotFound) {
					respondUnauthorized(w, "Invalid API key")
					return
				}
				logger.Error("failed to resolve api key", zap.Error(err))
				respondWithError(w, http.StatusServiceUnavailable, "Authentication temporarily unavailable")
				return
			}

			// Constant-time check of the stored hash against the derived
			// one; the GSI lookup already matched but this keeps the
			// comparison honest if the index is ever rebuilt loosely
			if subtle.ConstantTimeCompare([]byte(user.APIKeyHash()), []byte(hash)) != 1 {
				respondUnauthorized(w, "Invalid API key")
				return
			}

			if !user.IsActive() {
				respondUnauthorized(w, "Account is deactivated")
				return
			}

			ctx := common.WithUserID(r.Context(), user.ID())
			ctx = context.WithValue(ctx, userContextKey{}, user)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserFromContext returns the authenticated user placed by Authenticate
func UserFromContext(ctx context.Context) (*entities.User, bool) {
	user, ok := ctx.Value(userContextKey{}).(*entities.User)
	return user, ok
}

// HashAPIKey derives the stored lookup hash for an API key
func HashAPIKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}

func extractAPIKey(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return strings.TrimSpace(parts[1])
		}
	}
	return strings.TrimSpace(r.Header.Get("X-API-Key"))
}

// respondUnauthorized sends an unauthorized response
func respondUnauthorized(w http.ResponseWriter, message string) {
	respondWithError(w, http.StatusUnauthorized, message)
}

// respondWithError sends an error response with a specific status code
func respondWithError(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error":   true,
		"message": message,
		"code":    code,
	})
}
