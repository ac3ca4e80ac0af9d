// Package token signs opaque session ids into the cookie value carried by
// clients. The signed wrapper only authenticates the id; all session state
// stays server-side in the session store.
package token

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// Codec issues and verifies HMAC-signed session tokens.
type Codec struct {
	secret []byte
	issuer string
}

func NewCodec(secret, issuer string) *Codec {
	return &Codec{secret: []byte(secret), issuer: issuer}
}

// Issue wraps the session id in a signed token.
func (c *Codec) Issue(sessionID string, expiresAt time.Time) (string, error) {
	claims := jwt.RegisteredClaims{
		ID:        sessionID,
		Issuer:    c.issuer,
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
}

// Parse verifies the signature and returns the embedded session id. Any
// failure means the token is not ours; callers treat that as an absent
// session, never as a server error.
func (c *Codec) Parse(tokenString string) (string, error) {
	var claims jwt.RegisteredClaims
	parsed, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return c.secret, nil
	})
	if err != nil {
		return "", fmt.Errorf("invalid session token: %w", err)
	}
	if !parsed.Valid || claims.ID == "" {
		return "", fmt.Errorf("invalid session token")
	}
	return claims.ID, nil
}
