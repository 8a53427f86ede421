package middleware

import (
	"context"
	"net/http"
	"strings"

	"pos-sync-server/internal/domain"
	"pos-sync-server/pkg/jwt"
	"pos-sync-server/pkg/response"
)

type contextKey string

const IdentityKey contextKey = "identity"

// AuthMiddleware resolves the caller's identity (user, account, role, plan)
// from the bearer token and stores it on the request context. Everything
// downstream consumes only this decoded identity.
func AuthMiddleware(jwtSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				response.Unauthorized(w, "Missing authorization header")
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				response.Unauthorized(w, "Invalid authorization header format")
				return
			}

			claims, err := jwt.ValidateToken(parts[1], jwtSecret)
			if err != nil {
				response.Unauthorized(w, "Invalid or expired token")
				return
			}

			identity := &domain.Identity{
				UserID:    claims.UserID,
				AccountID: claims.AccountID,
				Role:      domain.Role(claims.Role),
				Plan:      domain.Plan(claims.Plan),
			}

			ctx := context.WithValue(r.Context(), IdentityKey, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole gates an endpoint to callers holding one of the given roles.
func RequireRole(roles ...domain.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity := GetIdentity(r)
			if identity == nil {
				response.Unauthorized(w, "Missing identity")
				return
			}

			for _, role := range roles {
				if identity.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}

			response.Forbidden(w, "Insufficient role")
		})
	}
}

func GetIdentity(r *http.Request) *domain.Identity {
	identity, ok := r.Context().Value(IdentityKey).(*domain.Identity)
	if !ok {
		return nil
	}
	return identity
}

func GetUserID(r *http.Request) string {
	if identity := GetIdentity(r); identity != nil {
		return identity.UserID
	}
	return ""
}
