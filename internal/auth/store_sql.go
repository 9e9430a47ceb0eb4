package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/giantswarm/mcp-gateway/internal/model"
)

// SQLStore implements UserStore and APIKeyStore against the same
// database/sql handle the Registry's SQLPersistence opens, so a
// relational-mode deployment needs exactly one database file.
type SQLStore struct {
	db *sql.DB
}

// NewSQLStore wraps an already-migrated *sql.DB. The users/api_keys
// tables are created by registry.SQLPersistence's migration.
func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

func (s *SQLStore) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, username, password_hash, admin, active, created_at
		FROM users WHERE username = ?`, username)
	return scanUser(row)
}

func (s *SQLStore) GetUser(ctx context.Context, userID string) (*model.User, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, username, password_hash, admin, active, created_at
		FROM users WHERE id = ?`, userID)
	return scanUser(row)
}

func scanUser(row *sql.Row) (*model.User, error) {
	var u model.User
	var admin, active int
	if err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &admin, &active, &u.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	u.Admin = admin != 0
	u.Active = active != 0
	return &u, nil
}

// CreateUser inserts a new user with an already-hashed password.
func (s *SQLStore) CreateUser(ctx context.Context, username, passwordHash string, admin bool) (*model.User, error) {
	u := &model.User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: passwordHash,
		Admin:        admin,
		Active:       true,
		CreatedAt:    time.Now(),
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, username, password_hash, admin, active, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		u.ID, u.Username, u.PasswordHash, boolToInt(u.Admin), boolToInt(u.Active), u.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return u, nil
}

func (s *SQLStore) GetByHash(ctx context.Context, keyHash string) (*model.APIKey, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, key_hash, scopes, active, expires_at, last_used_at, created_at
		FROM api_keys WHERE key_hash = ?`, keyHash)
	return scanAPIKey(row)
}

func scanAPIKey(row *sql.Row) (*model.APIKey, error) {
	var k model.APIKey
	var scopes string
	var active int
	var expiresAt, lastUsedAt sql.NullTime
	if err := row.Scan(&k.ID, &k.UserID, &k.KeyHash, &scopes, &active, &expiresAt, &lastUsedAt, &k.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan api key: %w", err)
	}
	k.Active = active != 0
	if scopes != "" {
		k.Scopes = strings.Split(scopes, ",")
	}
	if expiresAt.Valid {
		k.ExpiresAt = &expiresAt.Time
	}
	if lastUsedAt.Valid {
		k.LastUsedAt = &lastUsedAt.Time
	}
	return &k, nil
}

// CreateAPIKey inserts a new key record; keyHash is the SHA-256 hash
// returned by GenerateAPIKey, never the live key.
func (s *SQLStore) CreateAPIKey(ctx context.Context, userID, keyHash string, scopes []string, expiresAt *time.Time) (*model.APIKey, error) {
	k := &model.APIKey{
		ID:        uuid.NewString(),
		UserID:    userID,
		KeyHash:   keyHash,
		Scopes:    scopes,
		Active:    true,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now(),
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO api_keys (id, user_id, key_hash, scopes, active, expires_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		k.ID, k.UserID, k.KeyHash, strings.Join(scopes, ","), boolToInt(k.Active), k.ExpiresAt, k.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert api key: %w", err)
	}
	return k, nil
}

// RevokeAPIKey marks a key inactive rather than deleting it, preserving
// the audit trail.
func (s *SQLStore) RevokeAPIKey(ctx context.Context, keyID string) error {
	_, err := s.db.ExecContext(ctx, `UPDATE api_keys SET active = 0 WHERE id = ?`, keyID)
	if err != nil {
		return fmt.Errorf("revoke api key: %w", err)
	}
	return nil
}

func (s *SQLStore) TouchLastUsed(ctx context.Context, keyID string, at time.Time) error {
	_, err := s.db.ExecContext(ctx, `UPDATE api_keys SET last_used_at = ? WHERE id = ?`, at, keyID)
	if err != nil {
		return fmt.Errorf("touch api key last_used: %w", err)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
