// Package token issues and verifies the stateless capability tokens used for
// shared file links. A token binds exactly one storage key to an expiry; there
// is no revocation list, so validity is entirely signature plus expiry.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrTokenInvalid covers malformed tokens, bad signatures and wrong
	// issuer/audience claims.
	ErrTokenInvalid = errors.New("share token is invalid")
	// ErrTokenExpired means the signature checked out but the expiry is in
	// the past. Kept separate so callers can produce a more specific message.
	ErrTokenExpired = errors.New("share token has expired")
)

// shareClaims carries the single business claim: the storage key of the shared
// object.
type shareClaims struct {
	FileKey string `json:"fileKey"`
	jwt.RegisteredClaims
}

// Codec signs and verifies share tokens with a symmetric key.
type Codec struct {
	key      []byte
	issuer   string
	audience string
}

// NewCodec creates a Codec. The key is supplied by configuration; the codec
// holds no other state.
func NewCodec(key []byte, issuer, audience string) *Codec {
	return &Codec{key: key, issuer: issuer, audience: audience}
}

// Issue signs a token granting access to storageKey until now+ttl.
func (c *Codec) Issue(storageKey string, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	claims := shareClaims{
		FileKey: storageKey,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    c.issuer,
			Audience:  jwt.ClaimStrings{c.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(c.key)
	if err != nil {
		return "", fmt.Errorf("sign share token: %w", err)
	}
	return signed, nil
}

// Verify checks signature, issuer, audience and expiry (with zero leeway) and
// returns the storage key the token grants access to.
func (c *Codec) Verify(tokenString string) (string, error) {
	var claims shareClaims
	_, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (any, error) {
		return c.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(c.issuer),
		jwt.WithAudience(c.audience),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrTokenExpired
		}
		return "", ErrTokenInvalid
	}
	if claims.FileKey == "" {
		return "", ErrTokenInvalid
	}
	return claims.FileKey, nil
}
