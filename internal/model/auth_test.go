package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAPIKeyExpired(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	assert.False(t, (&APIKey{}).Expired(now), "nil expiry never expires")
	assert.True(t, (&APIKey{ExpiresAt: &past}).Expired(now))
	assert.False(t, (&APIKey{ExpiresAt: &future}).Expired(now))
}

func TestAPIKeyHasScope(t *testing.T) {
	unscoped := &APIKey{}
	assert.True(t, unscoped.HasScope("admin"))

	scoped := &APIKey{Scopes: []string{"tools:call"}}
	assert.True(t, scoped.HasScope("tools:call"))
	assert.False(t, scoped.HasScope("admin"))
}

func TestPrincipalIsAdmin(t *testing.T) {
	adminUser := Principal{User: &User{Admin: true}}
	assert.True(t, adminUser.IsAdmin())

	nonAdminUser := Principal{User: &User{Admin: false}}
	assert.False(t, nonAdminUser.IsAdmin())

	adminKeyOwner := Principal{APIKey: &APIKey{Scopes: []string{"tools:call"}}}
	assert.False(t, adminKeyOwner.IsAdmin(), "api key without admin scope is never admin regardless of owner")

	adminScopedKey := Principal{APIKey: &APIKey{Scopes: []string{"admin"}}}
	assert.True(t, adminScopedKey.IsAdmin())
}

func TestPrincipalActive(t *testing.T) {
	assert.True(t, Principal{User: &User{Active: true}}.Active())
	assert.False(t, Principal{User: &User{Active: false}}.Active())
	assert.True(t, Principal{APIKey: &APIKey{Active: true}}.Active())
	assert.False(t, Principal{}.Active())
}
