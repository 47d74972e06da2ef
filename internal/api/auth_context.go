package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/mybglist/mybglist-server/internal/auth"
	"github.com/mybglist/mybglist-server/internal/domain"
	domainerrors "github.com/mybglist/mybglist-server/internal/errors"
)

// TokenVerifier checks access tokens.
type TokenVerifier interface {
	VerifyAccessToken(token string) (*auth.AccessClaims, error)
}

// ctxKey is the type for context keys to avoid collisions.
type ctxKey string

const (
	claimsKey  ctxKey = "claims"
	authErrKey ctxKey = "authErr"
)

// authMiddleware validates Bearer tokens and stores the claims in context.
// Requests without a valid token continue anonymously; the verification
// error is kept so protected operations can report why they refused.
func authMiddleware(tokens TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || token == "" {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := tokens.VerifyAccessToken(token)
			if err != nil {
				next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), authErrKey, err)))
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), claimsKey, claims)))
		})
	}
}

// GetClaims returns the authenticated caller's claims.
// Returns a 401 error if the request carried no valid token.
func GetClaims(ctx context.Context) (*auth.AccessClaims, error) {
	if claims, ok := ctx.Value(claimsKey).(*auth.AccessClaims); ok && claims != nil {
		return claims, nil
	}
	if err, ok := ctx.Value(authErrKey).(error); ok {
		return nil, err
	}
	return nil, domainerrors.Unauthorized("authentication required")
}

// requireRole returns 401 for anonymous callers and 403 when the caller lacks role.
func requireRole(ctx context.Context, role domain.Role) (*auth.AccessClaims, error) {
	claims, err := GetClaims(ctx)
	if err != nil {
		return nil, err
	}
	if !claims.HasRole(role) {
		return nil, domainerrors.Forbiddenf("%s role required", role)
	}
	return claims, nil
}
