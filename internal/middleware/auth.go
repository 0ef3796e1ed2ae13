package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/profissa/profissa/internal/auth"
	"github.com/profissa/profissa/internal/http/respond"
)

type ctxKey string

const claimsKey ctxKey = "claims"

// RequireAuth rejects requests without a valid bearer token and stores the
// token's claims on the request context. Websocket clients cannot set headers
// from a browser, so a token query parameter is accepted as well.
func RequireAuth(tokens *auth.TokenManager, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw := strings.TrimSpace(strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer "))
		if raw == "" {
			raw = r.URL.Query().Get("token")
		}
		if raw == "" {
			respond.Error(w, http.StatusUnauthorized, "missing token")
			return
		}
		claims, err := tokens.Parse(raw)
		if err != nil {
			respond.Error(w, http.StatusUnauthorized, "invalid token")
			return
		}
		next(w, r.WithContext(WithClaims(r.Context(), claims)))
	}
}

// WithClaims returns a copy of ctx carrying claims.
func WithClaims(ctx context.Context, claims *auth.Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

// ClaimsFrom returns the claims stored by RequireAuth.
func ClaimsFrom(ctx context.Context) (*auth.Claims, bool) {
	c, ok := ctx.Value(claimsKey).(*auth.Claims)
	return c, ok
}
