package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPasswordProducesDistinctHashesForSameInput(t *testing.T) {
	h1, err := HashPassword("correct horse battery staple")
	require.NoError(t, err)
	h2, err := HashPassword("correct horse battery staple")
	require.NoError(t, err)

	assert.NotEqual(t, h1, h2, "bcrypt must salt each invocation")
}

func TestVerifyPasswordAcceptsCorrectRejectsWrong(t *testing.T) {
	hash, err := HashPassword("s3cr3t")
	require.NoError(t, err)

	assert.True(t, VerifyPassword(hash, "s3cr3t"))
	assert.False(t, VerifyPassword(hash, "wrong"))
}
