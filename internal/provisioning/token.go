package provisioning

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const tokenScope = "provision"

// TokenIssuer signs and verifies the service tokens that let trusted
// automation call the provisioning endpoint without an admin session.
type TokenIssuer struct {
	secret []byte
	issuer string
}

// NewTokenIssuer constructs a TokenIssuer around an HS256 secret.
func NewTokenIssuer(secret []byte, issuer string) *TokenIssuer {
	return &TokenIssuer{secret: secret, issuer: issuer}
}

type serviceClaims struct {
	Scope string `json:"scope"`
	jwt.RegisteredClaims
}

// Issue mints a token for a named caller.
func (t *TokenIssuer) Issue(subject string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := serviceClaims{
		Scope: tokenScope,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    t.issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
}

// Verify checks signature, expiry and scope, returning the caller subject.
func (t *TokenIssuer) Verify(raw string) (string, error) {
	var claims serviceClaims
	token, err := jwt.ParseWithClaims(raw, &claims, func(tok *jwt.Token) (any, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", tok.Header["alg"])
		}
		return t.secret, nil
	}, jwt.WithIssuer(t.issuer), jwt.WithExpirationRequired())
	if err != nil {
		return "", err
	}
	if !token.Valid || claims.Scope != tokenScope {
		return "", fmt.Errorf("token lacks the %s scope", tokenScope)
	}
	return claims.Subject, nil
}
