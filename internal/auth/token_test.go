package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndVerifyRoundTrip(t *testing.T) {
	issuer := NewTokenIssuer([]byte("signing-key"), time.Hour)

	token, expiresAt, err := issuer.Issue("user-1", "admin")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, time.Second)

	verified, err := issuer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", verified.Subject)
	assert.Equal(t, "admin", verified.Role)
}

func TestVerifyRejectsTamperedToken(t *testing.T) {
	issuer := NewTokenIssuer([]byte("signing-key"), time.Hour)
	token, _, err := issuer.Issue("user-1", "user")
	require.NoError(t, err)

	tampered := token[:len(token)-1] + "x"
	_, err = issuer.Verify(tampered)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	issuer := NewTokenIssuer([]byte("signing-key"), -time.Minute)
	token, _, err := issuer.Issue("user-1", "user")
	require.NoError(t, err)

	_, err = issuer.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsWrongSigningKey(t *testing.T) {
	issuer := NewTokenIssuer([]byte("signing-key"), time.Hour)
	token, _, err := issuer.Issue("user-1", "user")
	require.NoError(t, err)

	other := NewTokenIssuer([]byte("different-key"), time.Hour)
	_, err = other.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsWrongAlgorithm(t *testing.T) {
	issuer := NewTokenIssuer([]byte("signing-key"), time.Hour)

	// A token signed with "none" must never verify, regardless of claims.
	tok := jwt.NewWithClaims(jwt.SigningMethodNone, claims{Role: "admin", RegisteredClaims: jwt.RegisteredClaims{Subject: "attacker"}})
	signed, err := tok.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = issuer.Verify(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
