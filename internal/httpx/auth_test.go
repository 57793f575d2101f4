package httpx

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dmitrijs2005/aitooling/internal/auth"
	"github.com/dmitrijs2005/aitooling/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeParser struct {
	claims *auth.Claims
	err    error
	got    string
}

func (f *fakeParser) Parse(token string) (*auth.Claims, error) {
	f.got = token
	return f.claims, f.err
}

func protected(p TokenParser) (http.Handler, *bool) {
	called := false
	h := Authenticator(p)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		c, ok := ClaimsFromContext(r.Context())
		if !ok {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(c.Subject))
	}))
	return h, &called
}

func TestAuthenticator_ValidToken(t *testing.T) {
	p := &fakeParser{claims: &auth.Claims{Name: "alice"}}
	p.claims.Subject = "alice"
	h, called := protected(p)

	req := httptest.NewRequest(http.MethodGet, "/api/data", nil)
	req.Header.Set("Authorization", "Bearer abc.def.ghi")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.True(t, *called)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "alice", rec.Body.String())
	assert.Equal(t, "abc.def.ghi", p.got)
}

func TestAuthenticator_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		header string
		err    error
		msg    string
	}{
		{"no header", "", nil, "missing bearer token"},
		{"basic auth", "Basic dXNlcjpwYXNz", nil, "missing bearer token"},
		{"invalid", "Bearer x", common.ErrInvalidToken, "invalid token"},
		{"expired", "Bearer x", common.ErrTokenExpired, "token expired"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, called := protected(&fakeParser{err: tt.err})

			req := httptest.NewRequest(http.MethodGet, "/api/data", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.False(t, *called)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.JSONEq(t, `{"message":"`+tt.msg+`"}`, rec.Body.String())
			assert.NotEmpty(t, rec.Header().Get("WWW-Authenticate"))
		})
	}
}

func TestAuthenticator_RealVerifier(t *testing.T) {
	const secret = "0123456789abcdef0123456789abcdef"
	tok, err := auth.NewTokenIssuer(secret, "security", "dataloader").Issue("bob", "Admin")
	require.NoError(t, err)

	h, _ := protected(auth.NewTokenVerifier(secret, "security", "dataloader"))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "bob", rec.Body.String())
}

func TestClaimsFromContext_Missing(t *testing.T) {
	_, ok := ClaimsFromContext(httptest.NewRequest(http.MethodGet, "/", nil).Context())
	assert.False(t, ok)
}
