package httpx

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/aitooling/internal/auth"
	"github.com/dmitrijs2005/aitooling/internal/common"
)

type ctxKey string

const claimsKey ctxKey = "claims"

// TokenParser validates a bearer token; *auth.TokenVerifier implements it.
type TokenParser interface {
	Parse(token string) (*auth.Claims, error)
}

// Authenticator rejects requests without a valid bearer token and stores
// the token's claims in the request context.
func Authenticator(p TokenParser) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := r.Header.Get(common.AuthorizationHeaderName)
			if !strings.HasPrefix(h, common.BearerPrefix) {
				w.Header().Set("WWW-Authenticate", "Bearer")
				WriteError(w, http.StatusUnauthorized, "missing bearer token")
				return
			}

			claims, err := p.Parse(strings.TrimSpace(strings.TrimPrefix(h, common.BearerPrefix)))
			if err != nil {
				msg := "invalid token"
				if errors.Is(err, common.ErrTokenExpired) {
					msg = "token expired"
				}
				w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token"`)
				WriteError(w, http.StatusUnauthorized, msg)
				return
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), claimsKey, claims)))
		})
	}
}

// ClaimsFromContext returns the claims stored by Authenticator.
func ClaimsFromContext(ctx context.Context) (*auth.Claims, bool) {
	c, ok := ctx.Value(claimsKey).(*auth.Claims)
	return c, ok
}
