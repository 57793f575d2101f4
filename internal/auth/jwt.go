// Package auth holds the credential primitives shared by the services:
// password hashing and HS256 access tokens.
package auth

import (
	"errors"
	"time"

	"github.com/dmitrijs2005/aitooling/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// TokenLifetime is how long an issued access token stays valid.
const TokenLifetime = 2 * time.Hour

// Claims carries the standard registered claims plus the caller's name and role.
type Claims struct {
	jwt.RegisteredClaims
	Name string `json:"name"`
	Role string `json:"role"`
}

type TokenIssuer struct {
	secret   []byte
	issuer   string
	audience string
	now      func() time.Time
}

func NewTokenIssuer(secret, issuer, audience string) *TokenIssuer {
	return &TokenIssuer{
		secret:   []byte(secret),
		issuer:   issuer,
		audience: audience,
		now:      time.Now,
	}
}

// Issue signs a token for subject with the given role, expiring
// TokenLifetime from now.
func (i *TokenIssuer) Issue(subject, role string) (string, error) {
	now := i.now()

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    i.issuer,
			Audience:  jwt.ClaimStrings{i.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenLifetime)),
		},
		Name: subject,
		Role: role,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", err
	}
	return signed, nil
}

type TokenVerifier struct {
	secret   []byte
	issuer   string
	audience string
}

func NewTokenVerifier(secret, issuer, audience string) *TokenVerifier {
	return &TokenVerifier{secret: []byte(secret), issuer: issuer, audience: audience}
}

// Parse validates signature, issuer, audience and expiry.
func (v *TokenVerifier) Parse(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return v.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(v.issuer),
		jwt.WithAudience(v.audience),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, common.ErrInvalidToken
	}

	if !token.Valid {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}
