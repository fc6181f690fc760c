package provider

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/moneyflow/moneyflow/pkg/auth"
)

// UserStore persists user accounts and password hashes.
type UserStore interface {
	// CreateUser stores a new user with its password hash. Returns
	// auth.ErrEmailAlreadyExists when the email is taken.
	CreateUser(ctx context.Context, user *auth.User, passwordHash []byte) error

	// GetUserByID returns auth.ErrUserNotFound for unknown IDs.
	GetUserByID(ctx context.Context, id uuid.UUID) (*auth.User, error)

	// GetUserByEmail returns auth.ErrUserNotFound for unknown emails.
	GetUserByEmail(ctx context.Context, email string) (*auth.User, error)

	// GetPasswordHash returns the stored hash for a user.
	GetPasswordHash(ctx context.Context, id uuid.UUID) ([]byte, error)

	// UpdateMetadata replaces the user's metadata record.
	UpdateMetadata(ctx context.Context, id uuid.UUID, metadata auth.Metadata) error
}

// MemoryUserStore is the in-memory UserStore used by the demo deployment and
// tests. It also serves as the application's profile store: profile-sync
// upserts land in the same user records.
type MemoryUserStore struct {
	mu      sync.RWMutex
	byID    map[uuid.UUID]*auth.User
	byEmail map[string]uuid.UUID
	hashes  map[uuid.UUID][]byte
}

func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{
		byID:    make(map[uuid.UUID]*auth.User),
		byEmail: make(map[string]uuid.UUID),
		hashes:  make(map[uuid.UUID][]byte),
	}
}

func (s *MemoryUserStore) CreateUser(_ context.Context, user *auth.User, passwordHash []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	email := normalizeEmail(user.Email)
	if _, exists := s.byEmail[email]; exists {
		return auth.ErrEmailAlreadyExists
	}

	cp := *user
	cp.Email = email
	s.byID[cp.ID] = &cp
	s.byEmail[email] = cp.ID
	if passwordHash != nil {
		s.hashes[cp.ID] = passwordHash
	}
	return nil
}

func (s *MemoryUserStore) GetUserByID(_ context.Context, id uuid.UUID) (*auth.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.byID[id]
	if !ok {
		return nil, auth.ErrUserNotFound
	}
	cp := *user
	return &cp, nil
}

func (s *MemoryUserStore) GetUserByEmail(_ context.Context, email string) (*auth.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[normalizeEmail(email)]
	if !ok {
		return nil, auth.ErrUserNotFound
	}
	cp := *s.byID[id]
	return &cp, nil
}

func (s *MemoryUserStore) GetPasswordHash(_ context.Context, id uuid.UUID) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	hash, ok := s.hashes[id]
	if !ok {
		return nil, auth.ErrUserNotFound
	}
	return hash, nil
}

func (s *MemoryUserStore) UpdateMetadata(_ context.Context, id uuid.UUID, metadata auth.Metadata) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.byID[id]
	if !ok {
		return auth.ErrUserNotFound
	}
	user.Metadata = metadata
	return nil
}

// UpsertProfile implements auth.ProfileStore by merging synced fields into
// the user's metadata.
func (s *MemoryUserStore) UpsertProfile(_ context.Context, userID uuid.UUID, data auth.ProfileData) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.byID[userID]
	if !ok {
		return auth.ErrUserNotFound
	}

	if data.DisplayName != "" {
		user.Metadata.DisplayName = data.DisplayName
	}
	if data.AvatarURL != "" {
		user.Metadata.AvatarURL = data.AvatarURL
	}
	if data.LineUserID != "" {
		user.Metadata.LineUserID = data.LineUserID
	}
	if data.AuthProvider != "" {
		user.Metadata.AuthProvider = data.AuthProvider
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
