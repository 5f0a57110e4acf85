package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/elibrary/backend/internal/models"
	pkghttp "github.com/elibrary/backend/pkg/http"
)

// contextKey is a custom type for context keys
type contextKey string

const (
	// UserContextKey is the key for storing the authenticated user in context
	UserContextKey contextKey = "user"
)

// UserRepository is the subset of the user repository needed for
// per-request re-resolution of the authenticated user.
type UserRepository interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
}

// Authenticate validates the bearer token and injects the freshly fetched
// user into the request context. Claims identify the user row but are never
// trusted as current truth: role and status can change after a token is
// signed and tokens cannot be revoked, so the row is re-fetched every time.
func Authenticate(tm *TokenManager, userRepo UserRepository) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				pkghttp.WriteUnauthorized(w, "Authentication token required.")
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" {
				pkghttp.WriteUnauthorized(w, "Invalid authorization header format.")
				return
			}

			claims, err := tm.ValidateToken(parts[1])
			if err != nil {
				pkghttp.WriteUnauthorized(w, "Invalid or expired token.")
				return
			}

			user, err := userRepo.GetByID(r.Context(), claims.UserID)
			if err != nil {
				if errors.Is(err, models.ErrNotFound) {
					pkghttp.WriteNotFound(w, "User not found.")
					return
				}
				pkghttp.WriteInternalError(w, "Internal server error during authentication.")
				return
			}

			// A block takes effect on the next request, not at token expiry
			if user.Status == models.StatusBlocked {
				pkghttp.WriteForbidden(w, "Your account has been blocked.")
				return
			}

			ctx := context.WithValue(r.Context(), UserContextKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole permits the request only when the authenticated user's role
// is in the allowed set. Must run after Authenticate; fails closed with 401
// when no user is attached.
func RequireRole(roles ...models.Role) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := GetUserFromContext(r)
			if user == nil {
				pkghttp.WriteUnauthorized(w, "Authentication required.")
				return
			}

			for _, role := range roles {
				if user.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}

			pkghttp.WriteForbidden(w, "You do not have permission to perform this action.")
		})
	}
}

// GetUserFromContext extracts the authenticated user from request context
func GetUserFromContext(r *http.Request) *models.User {
	user, ok := r.Context().Value(UserContextKey).(*models.User)
	if !ok {
		return nil
	}
	return user
}
