// Package auth implements the Auth Gate: password hashing, bearer-token
// issuance/verification, API-key issuance/verification, scope checks, and
// a sliding-window rate limiter guarding authentication attempts.
//
// Passwords are hashed with golang.org/x/crypto/bcrypt. Bearer tokens are
// signed JWTs via github.com/golang-jwt/jwt/v5. API keys are random,
// URL-safe, "mcp_"-prefixed strings generated with crypto/rand; only their
// SHA-256 hash is ever stored, so a stolen database snapshot cannot be
// replayed as a live key.
package auth
