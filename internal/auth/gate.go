package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/giantswarm/mcp-gateway/internal/model"
)

// UserStore is the slice of user persistence the Gate needs.
type UserStore interface {
	GetByUsername(ctx context.Context, username string) (*model.User, error)
}

// APIKeyStore is the slice of API-key persistence the Gate needs.
type APIKeyStore interface {
	GetByHash(ctx context.Context, keyHash string) (*model.APIKey, error)
	GetUser(ctx context.Context, userID string) (*model.User, error)
	TouchLastUsed(ctx context.Context, keyID string, at time.Time) error
}

// Gate resolves an Authorization header into a Principal and enforces
// scope/admin requirements.
type Gate struct {
	users   UserStore
	keys    APIKeyStore
	tokens  *TokenIssuer
	limiter *RateLimiter
}

// NewGate constructs a Gate. limiter may be nil to disable rate limiting.
func NewGate(users UserStore, keys APIKeyStore, tokens *TokenIssuer, limiter *RateLimiter) *Gate {
	return &Gate{users: users, keys: keys, tokens: tokens, limiter: limiter}
}

// Authenticate resolves headerValue — either "Bearer <token>" or a raw
// "mcp_..." API key — into an active Principal, or fails with
// ErrUnauthenticated. clientKey identifies the caller for rate-limiting
// purposes (typically the remote address).
func (g *Gate) Authenticate(ctx context.Context, headerValue, clientKey string) (*model.Principal, error) {
	headerValue = strings.TrimSpace(headerValue)
	if headerValue == "" {
		return nil, g.rateLimitedFailure(clientKey, fmt.Errorf("%w: missing credentials", ErrUnauthenticated))
	}

	if token, ok := strings.CutPrefix(headerValue, "Bearer "); ok {
		principal, err := g.authenticateBearer(ctx, token)
		if err != nil {
			return nil, g.rateLimitedFailure(clientKey, err)
		}
		return principal, nil
	}
	if strings.HasPrefix(headerValue, APIKeyPrefix) {
		principal, err := g.authenticateAPIKey(ctx, headerValue)
		if err != nil {
			return nil, g.rateLimitedFailure(clientKey, err)
		}
		return principal, nil
	}
	return nil, g.rateLimitedFailure(clientKey, fmt.Errorf("%w: unrecognized credential format", ErrUnauthenticated))
}

// rateLimitedFailure records a failed authentication attempt against
// clientKey and escalates to a rate-limit error once too many have
// accumulated within the window; a valid credential never reaches this
// path, so the limiter only ever throttles repeated invalid attempts.
func (g *Gate) rateLimitedFailure(clientKey string, err error) error {
	if g.limiter != nil && !g.limiter.Allow(clientKey) {
		return fmt.Errorf("%w: rate limit exceeded", ErrUnauthenticated)
	}
	return err
}

func (g *Gate) authenticateBearer(ctx context.Context, token string) (*model.Principal, error) {
	verified, err := g.tokens.Verify(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}
	user, err := g.keys.GetUser(ctx, verified.Subject)
	if err != nil || user == nil {
		return nil, fmt.Errorf("%w: unknown user", ErrUnauthenticated)
	}
	principal := &model.Principal{User: user}
	if !principal.Active() {
		return nil, fmt.Errorf("%w: principal inactive", ErrUnauthenticated)
	}
	return principal, nil
}

func (g *Gate) authenticateAPIKey(ctx context.Context, rawKey string) (*model.Principal, error) {
	hash := HashAPIKey(rawKey)
	apiKey, err := g.keys.GetByHash(ctx, hash)
	if err != nil || apiKey == nil {
		return nil, fmt.Errorf("%w: unknown api key", ErrUnauthenticated)
	}
	if !apiKey.Active {
		return nil, fmt.Errorf("%w: api key inactive", ErrUnauthenticated)
	}
	if apiKey.Expired(time.Now()) {
		return nil, fmt.Errorf("%w: api key expired", ErrUnauthenticated)
	}

	user, err := g.keys.GetUser(ctx, apiKey.UserID)
	if err != nil || user == nil || !user.Active {
		return nil, fmt.Errorf("%w: owning user inactive", ErrUnauthenticated)
	}

	if err := g.keys.TouchLastUsed(ctx, apiKey.ID, time.Now()); err != nil {
		return nil, fmt.Errorf("touch api key last_used: %w", err)
	}

	return &model.Principal{User: user, APIKey: apiKey}, nil
}

// AuthenticatePassword verifies username/password against the UserStore
// and, on success, issues a bearer token — the backing call for
// POST /gateway/auth/token.
func (g *Gate) AuthenticatePassword(ctx context.Context, username, password string) (token string, expiresAt time.Time, err error) {
	user, err := g.users.GetByUsername(ctx, username)
	if err != nil || user == nil || !user.Active {
		return "", time.Time{}, fmt.Errorf("%w: invalid credentials", ErrUnauthenticated)
	}
	if !VerifyPassword(user.PasswordHash, password) {
		return "", time.Time{}, fmt.Errorf("%w: invalid credentials", ErrUnauthenticated)
	}
	role := "user"
	if user.Admin {
		role = "admin"
	}
	return g.tokens.Issue(user.ID, role)
}

// RequireAdmin returns ErrForbidden unless principal is an admin.
func RequireAdmin(principal *model.Principal) error {
	if principal == nil || !principal.IsAdmin() {
		return ErrForbidden
	}
	return nil
}

// RequireScope returns ErrForbidden unless principal carries scope.
func RequireScope(principal *model.Principal, scope string) error {
	if principal == nil || !principal.HasScope(scope) {
		return ErrForbidden
	}
	return nil
}
