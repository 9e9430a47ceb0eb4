package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTokenTTL matches the default bearer-token window.
const DefaultTokenTTL = 30 * time.Minute

// claims is the gateway's bearer-token payload: subject, role, and the
// standard registered expiry claim.
type claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies bearer tokens with a single symmetric
// key, read-only after construction so it can be shared across goroutines
// without locking.
type TokenIssuer struct {
	signingKey []byte
	ttl        time.Duration
}

// NewTokenIssuer constructs a TokenIssuer. ttl of zero uses DefaultTokenTTL.
func NewTokenIssuer(signingKey []byte, ttl time.Duration) *TokenIssuer {
	if ttl == 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenIssuer{signingKey: signingKey, ttl: ttl}
}

// Issue signs a token for subject/role, expiring after the issuer's TTL.
func (i *TokenIssuer) Issue(subject, role string) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(i.ttl)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	})

	signed, err := token.SignedString(i.signingKey)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// Verified is the result of successfully verifying a bearer token.
type Verified struct {
	Subject string
	Role    string
}

// Verify rejects tampered, expired, and wrong-algorithm tokens with
// ErrInvalidToken.
func (i *TokenIssuer) Verify(tokenString string) (*Verified, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("%w: unexpected signing method %v", ErrInvalidToken, t.Header["alg"])
		}
		return i.signingKey, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	c, ok := parsed.Claims.(*claims)
	if !ok || !parsed.Valid {
		return nil, fmt.Errorf("%w: unrecognized claims", ErrInvalidToken)
	}
	return &Verified{Subject: c.Subject, Role: c.Role}, nil
}
