package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/giantswarm/mcp-gateway/internal/model"
)

// MemoryStore implements UserStore and APIKeyStore for file-snapshot
// deployments that have no relational database. It persists to a single
// JSON file using the same atomic tmp+fsync+rename pattern as
// registry.FileSnapshotPersistence.
type MemoryStore struct {
	mu       sync.Mutex
	path     string
	users    map[string]*model.User
	apiKeys  map[string]*model.APIKey
}

type memoryStoreDocument struct {
	Users   []*model.User   `json:"users"`
	APIKeys []*model.APIKey `json:"api_keys"`
}

// NewMemoryStore loads (or initializes) a MemoryStore backed by path.
func NewMemoryStore(path string) (*MemoryStore, error) {
	s := &MemoryStore{path: path, users: map[string]*model.User{}, apiKeys: map[string]*model.APIKey{}}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *MemoryStore) load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read auth store: %w", err)
	}
	var doc memoryStoreDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parse auth store: %w", err)
	}
	for _, u := range doc.Users {
		s.users[u.ID] = u
	}
	for _, k := range doc.APIKeys {
		s.apiKeys[k.ID] = k
	}
	return nil
}

func (s *MemoryStore) saveLocked() error {
	doc := memoryStoreDocument{}
	for _, u := range s.users {
		doc.Users = append(doc.Users, u)
	}
	for _, k := range s.apiKeys {
		doc.APIKeys = append(doc.APIKeys, k)
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal auth store: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp auth store file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp auth store file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("fsync temp auth store file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp auth store file: %w", err)
	}
	return os.Rename(tmpPath, s.path)
}

func (s *MemoryStore) GetByUsername(_ context.Context, username string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, nil
}

func (s *MemoryStore) GetUser(_ context.Context, userID string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.users[userID], nil
}

func (s *MemoryStore) CreateUser(_ context.Context, username, passwordHash string, admin bool) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := &model.User{ID: uuid.NewString(), Username: username, PasswordHash: passwordHash, Admin: admin, Active: true, CreatedAt: time.Now()}
	s.users[u.ID] = u
	return u, s.saveLocked()
}

func (s *MemoryStore) GetByHash(_ context.Context, keyHash string) (*model.APIKey, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range s.apiKeys {
		if k.KeyHash == keyHash {
			return k, nil
		}
	}
	return nil, nil
}

func (s *MemoryStore) CreateAPIKey(_ context.Context, userID, keyHash string, scopes []string, expiresAt *time.Time) (*model.APIKey, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := &model.APIKey{ID: uuid.NewString(), UserID: userID, KeyHash: keyHash, Scopes: scopes, Active: true, ExpiresAt: expiresAt, CreatedAt: time.Now()}
	s.apiKeys[k.ID] = k
	return k, s.saveLocked()
}

func (s *MemoryStore) RevokeAPIKey(_ context.Context, keyID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k, ok := s.apiKeys[keyID]
	if !ok {
		return fmt.Errorf("api key %s not found", keyID)
	}
	k.Active = false
	return s.saveLocked()
}

func (s *MemoryStore) TouchLastUsed(_ context.Context, keyID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k, ok := s.apiKeys[keyID]
	if !ok {
		return fmt.Errorf("api key %s not found", keyID)
	}
	k.LastUsedAt = &at
	return s.saveLocked()
}

var (
	_ UserStore    = (*MemoryStore)(nil)
	_ APIKeyStore  = (*MemoryStore)(nil)
)
