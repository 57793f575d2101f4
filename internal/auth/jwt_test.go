package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/aitooling/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testSecret   = "test-secret-at-least-32-bytes-long!!"
	testIssuer   = "security"
	testAudience = "dataloader"
)

func TestTokenIssuer_IssueAndParse(t *testing.T) {
	t.Parallel()

	issuer := NewTokenIssuer(testSecret, testIssuer, testAudience)
	verifier := NewTokenVerifier(testSecret, testIssuer, testAudience)

	before := time.Now()
	tok, err := issuer.Issue("alice", "Admin")
	require.NoError(t, err)
	assert.Len(t, strings.Split(tok, "."), 3)

	claims, err := verifier.Parse(tok)
	require.NoError(t, err)

	assert.Equal(t, "alice", claims.Subject)
	assert.Equal(t, "alice", claims.Name)
	assert.Equal(t, "Admin", claims.Role)
	assert.Equal(t, testIssuer, claims.Issuer)
	assert.Equal(t, jwt.ClaimStrings{testAudience}, claims.Audience)

	require.NotNil(t, claims.ExpiresAt)
	assert.WithinDuration(t, before.Add(TokenLifetime), claims.ExpiresAt.Time, 5*time.Second)
}

func TestTokenVerifier_WrongSecret(t *testing.T) {
	t.Parallel()

	tok, err := NewTokenIssuer(testSecret, testIssuer, testAudience).Issue("bob", "User")
	require.NoError(t, err)

	_, err = NewTokenVerifier("another-secret", testIssuer, testAudience).Parse(tok)
	assert.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestTokenVerifier_WrongIssuerOrAudience(t *testing.T) {
	t.Parallel()

	tok, err := NewTokenIssuer(testSecret, testIssuer, testAudience).Issue("bob", "User")
	require.NoError(t, err)

	_, err = NewTokenVerifier(testSecret, "someone-else", testAudience).Parse(tok)
	assert.ErrorIs(t, err, common.ErrInvalidToken)

	_, err = NewTokenVerifier(testSecret, testIssuer, "other-api").Parse(tok)
	assert.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestTokenVerifier_Expired(t *testing.T) {
	t.Parallel()

	issuer := NewTokenIssuer(testSecret, testIssuer, testAudience)
	issuer.now = func() time.Time { return time.Now().Add(-3 * time.Hour) }

	tok, err := issuer.Issue("carol", "User")
	require.NoError(t, err)

	_, err = NewTokenVerifier(testSecret, testIssuer, testAudience).Parse(tok)
	assert.ErrorIs(t, err, common.ErrTokenExpired)
}

func TestTokenVerifier_RejectsOtherAlgorithms(t *testing.T) {
	t.Parallel()

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "mallory",
			Issuer:    testIssuer,
			Audience:  jwt.ClaimStrings{testAudience},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Role: "Admin",
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = NewTokenVerifier(testSecret, testIssuer, testAudience).Parse(tok)
	assert.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestTokenVerifier_Garbage(t *testing.T) {
	t.Parallel()

	v := NewTokenVerifier(testSecret, testIssuer, testAudience)
	for _, s := range []string{"", "abc", "a.b.c"} {
		_, err := v.Parse(s)
		assert.ErrorIs(t, err, common.ErrInvalidToken, s)
	}
}

func TestTokenIssuer_DistinctSubjects(t *testing.T) {
	t.Parallel()

	issuer := NewTokenIssuer(testSecret, testIssuer, testAudience)
	verifier := NewTokenVerifier(testSecret, testIssuer, testAudience)

	for _, name := range []string{"a", "alice", "user_with_a_long_name_0123456789", "Ünïcødé"} {
		tok, err := issuer.Issue(name, common.DefaultRole)
		require.NoError(t, err)
		c, err := verifier.Parse(tok)
		require.NoError(t, err)
		assert.Equal(t, name, c.Subject)
		assert.Equal(t, common.DefaultRole, c.Role)
	}
}
