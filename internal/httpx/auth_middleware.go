package httpx

import (
	"context"
	"net/http"
	"strings"

	"bookreview/internal/platform/crypto"
	"bookreview/internal/policy"
)

// TokenChecker reports whether an access token id was revoked by logout.
type TokenChecker interface {
	IsBlacklisted(ctx context.Context, jti string) (bool, error)
}

// AuthMiddleware rejects requests without a valid bearer token.
func AuthMiddleware(secret string, checker TokenChecker) func(http.Handler) http.Handler {
	return authenticate(secret, checker, true)
}

// OptionalAuthMiddleware attaches the actor when a bearer token is present
// and lets anonymous requests through. A present but invalid token is still
// rejected.
func OptionalAuthMiddleware(secret string, checker TokenChecker) func(http.Handler) http.Handler {
	return authenticate(secret, checker, false)
}

func authenticate(secret string, checker TokenChecker, required bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" && !required {
				next.ServeHTTP(w, r)
				return
			}
			if !strings.HasPrefix(authHeader, "Bearer ") {
				JSONError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "Missing bearer token", nil)
				return
			}

			claims, err := crypto.ParseToken(secret, strings.TrimPrefix(authHeader, "Bearer "))
			if err != nil {
				JSONError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid or expired token", nil)
				return
			}

			if checker != nil {
				revoked, err := checker.IsBlacklisted(r.Context(), claims.ID)
				if err != nil {
					WriteError(w, r, err)
					return
				}
				if revoked {
					JSONError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "Token has been revoked", nil)
					return
				}
			}

			token := TokenInfo{ID: claims.ID}
			if claims.ExpiresAt != nil {
				token.ExpiresAt = claims.ExpiresAt.Time
			}
			noteUser(w, claims.Sub)
			ctx := ContextWithActor(r.Context(), policy.Actor{ID: claims.Sub}, token)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
