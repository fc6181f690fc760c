package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/moneyflow/moneyflow/pkg/auth"
)

// StateData is what an OAuth state token resolves back to on the callback.
type StateData struct {
	Provider   string `json:"provider"`
	RedirectTo string `json:"redirect_to,omitempty"`
}

// StateStore persists one-time OAuth state tokens for CSRF protection.
type StateStore interface {
	// Store saves the state with an expiry.
	Store(ctx context.Context, state string, data StateData, ttl time.Duration) error

	// Consume atomically resolves and removes the state. Returns
	// auth.ErrStateNotFound when absent, expired, or already consumed.
	Consume(ctx context.Context, state string) (StateData, error)
}

type stateEntry struct {
	data      StateData
	expiresAt time.Time
}

// MemoryStateStore keeps states in process memory.
type MemoryStateStore struct {
	mu     sync.Mutex
	states map[string]stateEntry
}

func NewMemoryStateStore() *MemoryStateStore {
	return &MemoryStateStore{states: make(map[string]stateEntry)}
}

func (s *MemoryStateStore) Store(_ context.Context, state string, data StateData, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[state] = stateEntry{data: data, expiresAt: time.Now().Add(ttl)}
	return nil
}

func (s *MemoryStateStore) Consume(_ context.Context, state string) (StateData, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.states[state]
	if !ok {
		return StateData{}, auth.ErrStateNotFound
	}
	delete(s.states, state)

	if time.Now().After(entry.expiresAt) {
		return StateData{}, auth.ErrStateNotFound
	}
	return entry.data, nil
}

const stateKeyPrefix = "moneyflow:oauth_state:"

// RedisStateStore keeps states in Redis so callbacks can land on any process.
type RedisStateStore struct {
	client redis.UniversalClient
}

func NewRedisStateStore(client redis.UniversalClient) *RedisStateStore {
	return &RedisStateStore{client: client}
}

func (s *RedisStateStore) Store(ctx context.Context, state string, data StateData, ttl time.Duration) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal oauth state: %w", err)
	}
	if err := s.client.Set(ctx, stateKeyPrefix+state, payload, ttl).Err(); err != nil {
		return fmt.Errorf("store oauth state: %w", err)
	}
	return nil
}

func (s *RedisStateStore) Consume(ctx context.Context, state string) (StateData, error) {
	payload, err := s.client.GetDel(ctx, stateKeyPrefix+state).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return StateData{}, auth.ErrStateNotFound
		}
		return StateData{}, fmt.Errorf("consume oauth state: %w", err)
	}

	var data StateData
	if err := json.Unmarshal(payload, &data); err != nil {
		return StateData{}, fmt.Errorf("decode oauth state: %w", err)
	}
	return data, nil
}
