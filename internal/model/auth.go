package model

import "time"

// User is a password-authenticated principal.
type User struct {
	ID           string
	Username     string
	PasswordHash string
	Active       bool
	Admin        bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// APIKey is a long-lived credential scoped to a user.
type APIKey struct {
	ID         string
	UserID     string
	Name       string
	KeyHash    string
	Scopes     []string
	Active     bool
	ExpiresAt  *time.Time
	LastUsedAt *time.Time
	CreatedAt  time.Time
}

// Expired reports whether the key's expiry, if any, is in the past.
func (k *APIKey) Expired(now time.Time) bool {
	return k.ExpiresAt != nil && now.After(*k.ExpiresAt)
}

// HasScope reports whether the key carries scope, or any scope when the key
// was issued unscoped (nil Scopes means "all scopes its owning user has").
func (k *APIKey) HasScope(scope string) bool {
	if len(k.Scopes) == 0 {
		return true
	}
	for _, s := range k.Scopes {
		if s == scope {
			return true
		}
	}
	return false
}

// Principal is the resolved identity of an authenticated request. User is
// set for password and bearer-token auth; API-key auth sets APIKey and also
// sets User to the key's owning user.
type Principal struct {
	User   *User
	APIKey *APIKey
}

// ID returns a stable identifier for logging: the user id for password
// auth, the API key id for key auth.
func (p Principal) ID() string {
	if p.APIKey != nil {
		return p.APIKey.ID
	}
	if p.User != nil {
		return p.User.ID
	}
	return ""
}

// IsAdmin reports whether the principal may perform admin-only operations.
// An API key inherits admin status from its owning user only when the key
// carries the "admin" scope explicitly — a narrower key never silently
// grants admin access just because its owner is an admin.
func (p Principal) IsAdmin() bool {
	if p.APIKey != nil {
		if p.User != nil && !p.User.Admin {
			return false
		}
		for _, s := range p.APIKey.Scopes {
			if s == "admin" {
				return true
			}
		}
		return false
	}
	if p.User != nil {
		return p.User.Admin
	}
	return false
}

// HasScope reports whether the principal carries scope. User principals
// (password/bearer-token auth) implicitly have every scope; API keys are
// limited to what they were issued with.
func (p Principal) HasScope(scope string) bool {
	if p.APIKey != nil {
		return p.APIKey.HasScope(scope)
	}
	return p.User != nil
}

// Active reports whether the underlying user/key is enabled.
func (p Principal) Active() bool {
	if p.APIKey != nil {
		return p.APIKey.Active
	}
	if p.User != nil {
		return p.User.Active
	}
	return false
}
