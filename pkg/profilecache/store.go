package profilecache

import (
	"context"
	"errors"
	"sync"

	"github.com/moneyflow/moneyflow/pkg/liff"
)

// ErrNotFound is returned by Load when no profile is cached.
var ErrNotFound = errors.New("no cached LINE profile")

// Store persists one LINE profile per installation scope.
type Store interface {
	// Save writes the profile, replacing any previous entry.
	Save(ctx context.Context, profile liff.Profile) error

	// Load returns the cached profile or ErrNotFound.
	Load(ctx context.Context) (liff.Profile, error)

	// Clear removes the entry. Clearing an absent entry is not an error.
	Clear(ctx context.Context) error
}

// MemoryStore keeps the profile in process memory. Suitable for tests and
// single-process development setups.
type MemoryStore struct {
	mu      sync.RWMutex
	profile *liff.Profile
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Save(_ context.Context, profile liff.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profile = &profile
	return nil
}

func (s *MemoryStore) Load(context.Context) (liff.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.profile == nil {
		return liff.Profile{}, ErrNotFound
	}
	return *s.profile, nil
}

func (s *MemoryStore) Clear(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profile = nil
	return nil
}
